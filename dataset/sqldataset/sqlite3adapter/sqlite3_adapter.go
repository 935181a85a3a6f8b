/*
Package sqlite3adapter provides an implementation of the Adapter interface
in the sqldataset package that works over an SQLite3 database.
*/
package sqlite3adapter

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/sqldataset"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

/*
MaxSampleInsertionsPerStatement is the maximum number of samples that are
added with a single insert command with the AddSamples method of the
adapter. Adding more results in several insert commands.
*/
const MaxSampleInsertionsPerStatement = 10

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and returns an Adapter that
works on the file's database or an error if it fails to open as an sqlite3
database. The ":memory:" path opens an in-memory database.
*/
func New(path string) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: opens a different database
	db.SetMaxOpenConns(1)
	return &adapter{db}, nil
}

func (a *adapter) ColumnName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("column names cannot be empty")
	}
	if strings.ContainsAny(name, `"`) {
		return "", fmt.Errorf(`column name '%s' contains invalid character '"'`, name)
	}
	return `"` + name + `"`, nil
}

func (a *adapter) columnNames(names []string) (string, error) {
	quoted := make([]string, len(names))
	for i, n := range names {
		q, err := a.ColumnName(n)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}

func (a *adapter) CreateSampleTable(ctx context.Context, table string, columns []sqldataset.Column) error {
	var createStmtBuf bytes.Buffer
	t, err := a.ColumnName(table)
	if err != nil {
		return err
	}
	createStmtBuf.WriteString("CREATE TABLE IF NOT EXISTS ")
	createStmtBuf.WriteString(t)
	createStmtBuf.WriteString("(")
	for i, c := range columns {
		name, err := a.ColumnName(c.Name)
		if err != nil {
			return err
		}
		if i > 0 {
			createStmtBuf.WriteString(", ")
		}
		createStmtBuf.WriteString(name)
		if c.Type == dataset.Continuous {
			createStmtBuf.WriteString(" REAL NOT NULL")
		} else {
			createStmtBuf.WriteString(" TEXT NOT NULL")
		}
	}
	createStmtBuf.WriteString(")")
	_, err = a.db.ExecContext(ctx, createStmtBuf.String())
	if err != nil {
		return fmt.Errorf("running %s creation statement: %v", table, err)
	}
	return nil
}

func (a *adapter) AddSamples(ctx context.Context, table string, columns []string, rows [][]interface{}) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("no columns to store")
	}
	t, err := a.ColumnName(table)
	if err != nil {
		return 0, err
	}
	cs, err := a.columnNames(columns)
	if err != nil {
		return 0, err
	}
	rowPlaceholders := "(?" + strings.Repeat(", ?", len(columns)-1) + ")"
	var inserted int
	for inserted < len(rows) {
		end := inserted + MaxSampleInsertionsPerStatement
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[inserted:end]
		var insertStmtBuf bytes.Buffer
		insertStmtBuf.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", t, cs, rowPlaceholders))
		for i := 1; i < len(chunk); i++ {
			insertStmtBuf.WriteString(", ")
			insertStmtBuf.WriteString(rowPlaceholders)
		}
		values := make([]interface{}, 0, len(chunk)*len(columns))
		for _, r := range chunk {
			if len(r) != len(columns) {
				return inserted, fmt.Errorf("row has %d values for %d columns", len(r), len(columns))
			}
			values = append(values, r...)
		}
		_, err = a.db.ExecContext(ctx, insertStmtBuf.String(), values...)
		if err != nil {
			return inserted, fmt.Errorf("inserting %d samples after the first %d: %v", len(chunk), inserted, err)
		}
		inserted = end
	}
	return inserted, nil
}

func (a *adapter) IterateOnSamples(ctx context.Context, table string, columns []string, lambda func(int, []interface{}) (bool, error)) error {
	t, err := a.ColumnName(table)
	if err != nil {
		return err
	}
	cs, err := a.columnNames(columns)
	if err != nil {
		return err
	}
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s", cs, t))
	if err != nil {
		return err
	}
	defer rows.Close()
	for j := 0; rows.Next(); j++ {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err = rows.Scan(pointers...); err != nil {
			return err
		}
		ok, err := lambda(j, values)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return rows.Err()
}

func (a *adapter) ListColumns(ctx context.Context, table string) ([]string, error) {
	t, err := a.ColumnName(table)
	if err != nil {
		return nil, err
	}
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

func (a *adapter) Close() error {
	return a.db.Close()
}
