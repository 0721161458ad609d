// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive stores annotated measurement rows in a SQL
// database so results from different runs can be compared later.
package archive

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/ompbench/ompplot/measfmt"
	"golang.org/x/net/context"
)

// DB is a high-level interface to the archive database. It's safe
// for concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun    *sql.Stmt
	insertRecord *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a
// connection to driverName. It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is evaluated with . as a map containing one entry whose
// key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Host VARCHAR(255),
	Platform VARCHAR(255),
	CPUs INTEGER,
	Started VARCHAR(64)
);
CREATE TABLE IF NOT EXISTS Records (
	RunID BIGINT UNSIGNED,
	RecordID BIGINT UNSIGNED,
	Analysis VARCHAR(32),
	Content BLOB,
	Columns BLOB,
	PRIMARY KEY (RunID, RecordID),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS RecordLabels (
	RunID BIGINT UNSIGNED,
	RecordID BIGINT UNSIGNED,
	Name VARCHAR(255),
	Value VARCHAR(8192),
{{if not .sqlite3}}
	Index (Name(100), Value(100)),
{{end}}
	FOREIGN KEY (RunID, RecordID) REFERENCES Records(RunID, RecordID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS RecordLabelsNameValue ON RecordLabels(Name, Value);
{{end}}
`))

// createTables creates any missing tables. driverName selects the
// SQL dialect.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Host, Platform, CPUs, Started) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertRecord, err = db.sql.Prepare("INSERT INTO Records(RunID, RecordID, Analysis, Content, Columns) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// RunInfo describes the host and time of a plotting run.
type RunInfo struct {
	Host     string
	Platform string
	CPUs     int
	Started  time.Time
}

// A Run is a collection of records that share a run ID.
type Run struct {
	// ID is the numeric primary key of the run.
	ID int64

	// recordid is the index of the next record to insert.
	recordid int64
	db       *DB
}

// NewRun inserts a Runs row and returns a Run for storing records.
func (db *DB) NewRun(ctx context.Context, info RunInfo) (*Run, error) {
	res, err := db.insertRun.ExecContext(ctx, info.Host, info.Platform, info.CPUs, info.Started.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, db: db}, nil
}

// InsertTable inserts every row of t, tagged with analysis.
func (r *Run) InsertTable(ctx context.Context, analysis string, t *measfmt.Table) error {
	for _, row := range t.Rows {
		if err := r.InsertRecord(ctx, analysis, row); err != nil {
			return err
		}
	}
	return nil
}

// InsertRecord inserts a single row. The row is stored as one CSV
// line in Records, and each cell becomes a RecordLabels entry named
// after its column. Empty cells are not labeled.
func (r *Run) InsertRecord(ctx context.Context, analysis string, row *measfmt.Row) (err error) {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	content, err := csvLine(row.Cells)
	if err != nil {
		return err
	}
	columns, err := csvLine(row.Columns)
	if err != nil {
		return err
	}
	if _, err = tx.StmtContext(ctx, r.db.insertRecord).ExecContext(ctx, r.ID, r.recordid, analysis, content, columns); err != nil {
		return err
	}
	var args []interface{}
	for i, col := range row.Columns {
		if i >= len(row.Cells) || row.Cells[i] == "" {
			continue
		}
		args = append(args, r.ID, r.recordid, col, row.Cells[i])
	}
	if len(args) > 0 {
		query := "INSERT INTO RecordLabels VALUES " + strings.Repeat("(?, ?, ?, ?), ", len(args)/4)
		query = strings.TrimSuffix(query, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	r.recordid++
	return nil
}

func csvLine(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write(fields)
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func parseCSVLine(b []byte) ([]string, error) {
	return csv.NewReader(bytes.NewReader(b)).Read()
}

// RunColumn is the column Search adds to record the run of each row.
const RunColumn = "Run"

// Search returns the records of analysis that carry every label in
// query, in run and insertion order. query is a space-separated list
// of name:value words, such as "N:100 Threads:4". An empty query
// matches every record of analysis. The result has the union of the
// matched records' columns plus RunColumn.
func (db *DB) Search(ctx context.Context, analysis, query string) (*measfmt.Table, error) {
	q := "SELECT RunID, Content, Columns FROM Records r WHERE Analysis = ?"
	args := []interface{}{analysis}
	for _, word := range strings.Fields(query) {
		name, value, ok := strings.Cut(word, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("query %q: expected name:value, got %q", query, word)
		}
		q += " AND EXISTS (SELECT 1 FROM RecordLabels l WHERE l.RunID = r.RunID AND l.RecordID = r.RecordID AND l.Name = ? AND l.Value = ?)"
		args = append(args, name, value)
	}
	q += " ORDER BY RunID, RecordID"

	rows, err := db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	t := measfmt.NewTable(RunColumn)
	for rows.Next() {
		var (
			run              int64
			content, columns []byte
		)
		if err := rows.Scan(&run, &content, &columns); err != nil {
			return nil, err
		}
		cells, err := parseCSVLine(content)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", run, err)
		}
		cols, err := parseCSVLine(columns)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", run, err)
		}
		t.Add(&measfmt.Row{
			Columns: append([]string{RunColumn}, cols...),
			Cells:   append([]string{fmt.Sprint(run)}, cells...),
		})
	}
	return t, rows.Err()
}

// CountRecords returns the number of records stored for analysis
// across all runs. An empty analysis counts every record.
func (db *DB) CountRecords(ctx context.Context, analysis string) (int, error) {
	q, args := "SELECT COUNT(*) FROM Records", []interface{}{}
	if analysis != "" {
		q += " WHERE Analysis = ?"
		args = append(args, analysis)
	}
	var n int
	err := db.sql.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// Values returns the distinct values recorded for label name in
// run, sorted.
func (db *DB) Values(ctx context.Context, run int64, name string) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT DISTINCT Value FROM RecordLabels WHERE RunID = ? AND Name = ? ORDER BY Value", run, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vals []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, rows.Err()
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertRecord.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
