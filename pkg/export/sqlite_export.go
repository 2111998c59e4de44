package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/render"
	"github.com/DipokalLab/intellect/pkg/version"
)

// SQLiteExporter writes a document, and optionally a settled frame's
// positions, to a single SQLite file.
type SQLiteExporter struct {
	Doc    *model.GraphDocument
	Frame  *render.Frame // Optional; positions are skipped when nil
	Fields []string      // Selection the frame was laid out with

	now func() time.Time
}

// NewSQLiteExporter creates an exporter for doc.
func NewSQLiteExporter(doc *model.GraphDocument, frame *render.Frame, fields []string) *SQLiteExporter {
	return &SQLiteExporter{Doc: doc, Frame: frame, Fields: fields, now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if e.Doc == nil || e.Doc.NodeCount() == 0 {
		return ErrNoNodes
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertPersons(db); err != nil {
		return fmt.Errorf("insert persons: %w", err)
	}
	if err := e.insertAchievements(db); err != nil {
		return fmt.Errorf("insert achievements: %w", err)
	}
	if err := e.insertEdges(db); err != nil {
		return fmt.Errorf("insert edges: %w", err)
	}
	if e.Frame != nil {
		if err := e.insertPositions(db); err != nil {
			return fmt.Errorf("insert positions: %w", err)
		}
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	debug.Log("export: wrote %s", path)
	return nil
}

func (e *SQLiteExporter) insertPersons(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO persons (id, name, birth, death, field, nationality, photo_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	fieldStmt, err := tx.Prepare(`INSERT OR IGNORE INTO person_fields (person_id, field) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer fieldStmt.Close()

	for _, p := range e.Doc.Persons {
		var death *int
		if p.Death != 0 {
			d := p.Death
			death = &d
		}
		if _, err := stmt.Exec(p.ID, p.Name, p.Birth, death, p.Field, p.Nationality, p.PhotoURL); err != nil {
			return fmt.Errorf("insert person %s: %w", p.ID, err)
		}
		for _, f := range p.Fields {
			if _, err := fieldStmt.Exec(p.ID, f); err != nil {
				return fmt.Errorf("insert field %s for %s: %w", f, p.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertAchievements(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO achievements (id, year, title, category, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range e.Doc.Achievements {
		if _, err := stmt.Exec(a.ID, a.Year, a.Title, a.Category, a.Text); err != nil {
			return fmt.Errorf("insert achievement %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertEdges(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO edges (source, target, ordinal) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seen := make(map[string]int, len(e.Doc.Edges))
	for _, edge := range e.Doc.Edges {
		k := edge.Key()
		seen[k]++
		if _, err := stmt.Exec(edge.Source, edge.Target, seen[k]); err != nil {
			return fmt.Errorf("insert edge %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertPositions(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO positions (node_id, kind, x, y, radius) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range e.Frame.Nodes {
		if _, err := stmt.Exec(n.ID, string(n.Kind), n.X, n.Y, n.Radius); err != nil {
			return fmt.Errorf("insert position %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	meta := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"generator":      "intellect " + version.Version,
		"exported_at":    e.now().UTC().Format(time.RFC3339),
		"fields":         strings.Join(e.Fields, ","),
		"node_count":     strconv.Itoa(e.Doc.NodeCount()),
		"edge_count":     strconv.Itoa(len(e.Doc.Edges)),
	}
	for k, v := range meta {
		if err := InsertMetaValue(db, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return nil
}
