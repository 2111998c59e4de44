package datasource

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/loader"
	"github.com/DipokalLab/intellect/pkg/model"
)

// SQLiteReader reads a document back out of a SQLite export.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens source read-only.
func NewSQLiteReader(source Source) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro", source.Location)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: source.Location}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadDocument reads every table and sanitises the result the same way a
// JSON document is.
func (r *SQLiteReader) LoadDocument(opts loader.ParseOptions) (*model.GraphDocument, error) {
	doc := &model.GraphDocument{}
	var err error
	if doc.Persons, err = r.loadPersons(); err != nil {
		return nil, fmt.Errorf("read persons: %w", err)
	}
	if doc.Achievements, err = r.loadAchievements(); err != nil {
		return nil, fmt.Errorf("read achievements: %w", err)
	}
	if doc.Edges, err = r.loadEdges(); err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}

	report := &loader.Report{}
	loader.Sanitize(doc, report)
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("datasource: %s", msg) }
	}
	for _, issue := range report.Issues {
		warn(issue.String())
	}
	if doc.NodeCount() == 0 && !opts.AllowEmpty {
		return doc, loader.ErrEmptyDocument
	}
	debug.Log("datasource: read %d nodes from %s", doc.NodeCount(), r.path)
	return doc, nil
}

func (r *SQLiteReader) loadPersons() ([]model.PersonNode, error) {
	rows, err := r.db.Query(`
		SELECT id, name, birth, death, field, nationality, photo_url
		FROM persons ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []model.PersonNode
	for rows.Next() {
		var p model.PersonNode
		var death sql.NullInt64
		var field, nationality, photo sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Birth, &death, &field, &nationality, &photo); err != nil {
			return nil, err
		}
		if death.Valid {
			p.Death = int(death.Int64)
		}
		p.Field = strings.TrimSpace(field.String)
		p.Nationality = nationality.String
		p.PhotoURL = photo.String
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (r *SQLiteReader) loadAchievements() ([]model.AchievementNode, error) {
	rows, err := r.db.Query(`SELECT id, year, title, category, text FROM achievements ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AchievementNode
	for rows.Next() {
		var a model.AchievementNode
		var category, text sql.NullString
		if err := rows.Scan(&a.ID, &a.Year, &a.Title, &category, &text); err != nil {
			return nil, err
		}
		a.Category = category.String
		a.Text = text.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteReader) loadEdges() ([]model.Edge, error) {
	rows, err := r.db.Query(`SELECT source, target FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		var e model.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
