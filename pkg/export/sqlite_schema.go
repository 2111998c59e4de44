package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in export_meta.
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createLayoutTables(db); err != nil {
		return fmt.Errorf("create layout tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// createCoreTables creates the persons, person_fields, achievements and
// edges tables.
func createCoreTables(db *sql.DB) error {
	tables := []struct {
		name string
		ddl  string
	}{
		{"persons", `
			CREATE TABLE IF NOT EXISTS persons (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				birth INTEGER NOT NULL,
				death INTEGER,
				field TEXT,
				nationality TEXT,
				photo_url TEXT
			)`},
		// One row per normalised field token
		{"person_fields", `
			CREATE TABLE IF NOT EXISTS person_fields (
				person_id TEXT NOT NULL,
				field TEXT NOT NULL,
				PRIMARY KEY (person_id, field),
				FOREIGN KEY (person_id) REFERENCES persons(id)
			)`},
		{"achievements", `
			CREATE TABLE IF NOT EXISTS achievements (
				id TEXT PRIMARY KEY,
				year INTEGER NOT NULL,
				title TEXT NOT NULL,
				category TEXT,
				text TEXT
			)`},
		// Parallel edges are kept; ordinal separates them
		{"edges", `
			CREATE TABLE IF NOT EXISTS edges (
				source TEXT NOT NULL,
				target TEXT NOT NULL,
				ordinal INTEGER NOT NULL DEFAULT 1,
				PRIMARY KEY (source, target, ordinal)
			)`},
	}
	for _, t := range tables {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}
	return nil
}

// createLayoutTables creates the table of computed positions.
func createLayoutTables(db *sql.DB) error {
	positionsSQL := `
		CREATE TABLE IF NOT EXISTS positions (
			node_id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			radius REAL NOT NULL
		)
	`
	if _, err := db.Exec(positionsSQL); err != nil {
		return fmt.Errorf("create positions table: %w", err)
	}
	return nil
}

// createIndexes creates indexes for common queries.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_persons_birth ON persons(birth)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_year ON achievements(year)`,
		`CREATE INDEX IF NOT EXISTS idx_fields_field ON person_fields(field)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target)`,
	}
	for _, sql := range indexes {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}
	return nil
}

// OptimizeDatabase compacts the file. Call it last, before closing.
func OptimizeDatabase(db *sql.DB) error {
	for _, pragma := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		if _, err := db.Exec(pragma); err != nil {
			// Some pragmas may fail depending on state, continue
			continue
		}
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
