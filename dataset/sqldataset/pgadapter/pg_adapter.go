/*
Package pgadapter provides an implementation of the Adapter interface in the
sqldataset package that works over a PostgreSQL database.
*/
package pgadapter

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pbanos/arbor/dataset"
	"github.com/pbanos/arbor/dataset/sqldataset"
)

// MaxSampleInsertionsPerStatement is the maximum number
// of samples that are added with a single insert command
// with the AddSamples method of the adapter.
const MaxSampleInsertionsPerStatement = 10

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and returns an Adapter that
works on the database or an error if it fails to connect to it.
*/
func New(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) ColumnName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("column names cannot be empty")
	}
	return pq.QuoteIdentifier(name), nil
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
			createStmtBuf.WriteString(" DOUBLE PRECISION NOT NULL")
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
	txn, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	var inserted int
	for inserted < len(rows) {
		end := inserted + MaxSampleInsertionsPerStatement
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[inserted:end]
		values := make([]interface{}, 0, len(chunk)*len(columns))
		for _, r := range chunk {
			if len(r) != len(columns) {
				txn.Rollback()
				return inserted, fmt.Errorf("row has %d values for %d columns", len(r), len(columns))
			}
			values = append(values, r...)
		}
		_, err = txn.ExecContext(ctx, insertStatement(t, cs, len(chunk), len(columns)), values...)
		if err != nil {
			txn.Rollback()
			return 0, fmt.Errorf("inserting %d samples after the first %d: %v", len(chunk), inserted, err)
		}
		inserted = end
	}
	if err = txn.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// insertStatement returns an INSERT statement on the quoted table and
// columns for the given number of rows, numbering its placeholders from $1.
func insertStatement(table, columns string, rows, width int) string {
	var insertStmtBuf bytes.Buffer
	insertStmtBuf.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, columns))
	for i := 0; i < rows; i++ {
		if i > 0 {
			insertStmtBuf.WriteString(", ")
		}
		insertStmtBuf.WriteString("(")
		for j := 0; j < width; j++ {
			if j > 0 {
				insertStmtBuf.WriteString(", ")
			}
			insertStmtBuf.WriteString(fmt.Sprintf("$%d", i*width+j+1))
		}
		insertStmtBuf.WriteString(")")
	}
	return insertStmtBuf.String()
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
