package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dgamaster/reading"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Snapshot table names as stored in readings.tbl.
const (
	TableDatos  = "datos"
	TableLatest = "latest"
)

const dateLayout = "2006-01-02"

type SQLiteStore struct {
	db *sql.DB
}

var ErrSnapshotNotFound = errors.New("snapshot not found")

// BuildRun describes one stored build.
type BuildRun struct {
	ID         string
	StartedAt  time.Time
	Plants     int
	RowsDatos  int
	RowsLatest int
}

// NewBuildRun starts a run record with a fresh identifier.
func NewBuildRun(startedAt time.Time, plants int) BuildRun {
	return BuildRun{ID: uuid.NewString(), StartedAt: startedAt.UTC(), Plants: plants}
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS build_runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	plants INTEGER NOT NULL CHECK(plants >= 0),
	rows_datos INTEGER NOT NULL CHECK(rows_datos >= 0),
	rows_latest INTEGER NOT NULL CHECK(rows_latest >= 0)
);
CREATE TABLE IF NOT EXISTS schema_columns (
	run_id TEXT NOT NULL REFERENCES build_runs(id),
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY(run_id, position)
);
CREATE TABLE IF NOT EXISTS readings (
	run_id TEXT NOT NULL REFERENCES build_runs(id),
	tbl TEXT NOT NULL CHECK(tbl IN ('datos', 'latest')),
	seq INTEGER NOT NULL,
	planta TEXT NOT NULL,
	transformador TEXT NOT NULL,
	ubicacion TEXT NOT NULL,
	fecha_muestra TEXT NOT NULL DEFAULT '',
	fecha_informe TEXT NOT NULL DEFAULT '',
	compania TEXT NOT NULL DEFAULT '',
	gases_json TEXT NOT NULL,
	PRIMARY KEY(run_id, tbl, seq)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveSnapshot replaces the stored snapshot with the given run and tables.
// The row counts on run are taken from the tables.
func (s *SQLiteStore) SaveSnapshot(run BuildRun, datos, latest *reading.Table) (BuildRun, error) {
	if run.ID == "" {
		return run, fmt.Errorf("build run id must not be empty")
	}
	run.RowsDatos = datos.Len()
	run.RowsLatest = latest.Len()

	tx, err := s.db.Begin()
	if err != nil {
		return run, fmt.Errorf("begin transaction: %w", err)
	}

	for _, stmt := range []string{`DELETE FROM readings;`, `DELETE FROM schema_columns;`, `DELETE FROM build_runs;`} {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return run, fmt.Errorf("clear previous snapshot: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO build_runs (id, started_at, plants, rows_datos, rows_latest) VALUES (?, ?, ?, ?, ?);`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.Plants,
		run.RowsDatos,
		run.RowsLatest,
	); err != nil {
		_ = tx.Rollback()
		return run, fmt.Errorf("insert build run: %w", err)
	}

	for position, name := range datos.Schema {
		if _, err := tx.Exec(`INSERT INTO schema_columns (run_id, position, name) VALUES (?, ?, ?);`, run.ID, position, name); err != nil {
			_ = tx.Rollback()
			return run, fmt.Errorf("insert schema column %q: %w", name, err)
		}
	}

	const insertStmt = `
INSERT INTO readings (
	run_id,
	tbl,
	seq,
	planta,
	transformador,
	ubicacion,
	fecha_muestra,
	fecha_informe,
	compania,
	gases_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return run, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, part := range []struct {
		name  string
		table *reading.Table
	}{{TableDatos, datos}, {TableLatest, latest}} {
		for seq, record := range part.table.Records {
			gases, err := json.Marshal(record.Gases)
			if err != nil {
				_ = tx.Rollback()
				return run, fmt.Errorf("encode gases: %w", err)
			}
			if _, err := stmt.Exec(
				run.ID,
				part.name,
				seq,
				record.Plant,
				record.Transformer,
				record.Location,
				formatDate(record.SampleDate),
				formatDate(record.ReportDate),
				record.Company,
				string(gases),
			); err != nil {
				_ = tx.Rollback()
				return run, fmt.Errorf("insert %s reading %d: %w", part.name, seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("commit transaction: %w", err)
	}
	return run, nil
}

// LastRun returns the stored build run.
func (s *SQLiteStore) LastRun() (BuildRun, error) {
	const query = `
SELECT id, started_at, plants, rows_datos, rows_latest
FROM build_runs
ORDER BY started_at DESC
LIMIT 1;
`
	var (
		run        BuildRun
		startedRaw string
	)
	err := s.db.QueryRow(query).Scan(&run.ID, &startedRaw, &run.Plants, &run.RowsDatos, &run.RowsLatest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BuildRun{}, ErrSnapshotNotFound
		}
		return BuildRun{}, fmt.Errorf("query build run: %w", err)
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedRaw)
	if err != nil {
		return BuildRun{}, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
	}
	return run, nil
}

// LoadSnapshot returns one stored table (TableDatos or TableLatest) of the
// last build run.
func (s *SQLiteStore) LoadSnapshot(tbl string) (*reading.Table, error) {
	if tbl != TableDatos && tbl != TableLatest {
		return nil, fmt.Errorf("unknown snapshot table %q (expected %s or %s)", tbl, TableDatos, TableLatest)
	}

	run, err := s.LastRun()
	if err != nil {
		return nil, err
	}

	schema, err := s.loadSchema(run.ID)
	if err != nil {
		return nil, err
	}
	table := &reading.Table{Schema: schema}

	const query = `
SELECT
	planta,
	transformador,
	ubicacion,
	fecha_muestra,
	fecha_informe,
	compania,
	gases_json
FROM readings
WHERE run_id = ? AND tbl = ?
ORDER BY seq;
`
	rows, err := s.db.Query(query, run.ID, tbl)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			record    reading.Record
			sampleRaw string
			reportRaw string
			gasesRaw  string
		)
		if err := rows.Scan(
			&record.Plant,
			&record.Transformer,
			&record.Location,
			&sampleRaw,
			&reportRaw,
			&record.Company,
			&gasesRaw,
		); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}

		if record.SampleDate, err = parseDate(sampleRaw); err != nil {
			return nil, err
		}
		if record.ReportDate, err = parseDate(reportRaw); err != nil {
			return nil, err
		}
		record.SampleRaw = sampleRaw
		record.ReportRaw = reportRaw
		if err := json.Unmarshal([]byte(gasesRaw), &record.Gases); err != nil {
			return nil, fmt.Errorf("decode gases: %w", err)
		}

		table.Append(record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return table, nil
}

func (s *SQLiteStore) loadSchema(runID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM schema_columns WHERE run_id = ? ORDER BY position;`, runID)
	if err != nil {
		return nil, fmt.Errorf("query schema columns: %w", err)
	}
	defer rows.Close()

	var schema []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema column: %w", err)
		}
		schema = append(schema, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema columns: %w", err)
	}
	return schema, nil
}

func formatDate(date reading.Date) string {
	if !date.Valid {
		return ""
	}
	return date.Time.Format(dateLayout)
}

func parseDate(raw string) (reading.Date, error) {
	if raw == "" {
		return reading.Date{}, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return reading.Date{}, fmt.Errorf("parse stored date %q: %w", raw, err)
	}
	return reading.NewDate(parsed), nil
}
