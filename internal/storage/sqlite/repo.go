// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. SQLite has no bulk-load API like Postgres COPY; the drop,
// create and prepared-statement inserts of one table run in a single
// transaction instead, so a failed load leaves the previous table in place.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"salesdw/internal/schema"
	sqliteddl "salesdw/internal/storage/sqlite/ddl"
)

// Time layouts for values stored in TEXT columns.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05.000000"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens the database named by cfg.DSN, creating the parent
// directory of a file-backed database first, and returns a Repository plus a
// Close function for cleanup. The pool is capped at one connection so a
// ":memory:" database survives for the life of the Repository.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if err := ensureParentDir(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("sqlite: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// ReplaceTable drops and recreates c.Name from the contract and inserts rows
// with one prepared statement, all inside one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, c schema.Contract, columns []string, rows [][]any) (int64, error) {
	create, err := sqliteddl.CreateTableSQL(c)
	if err != nil {
		return 0, err
	}
	kinds := make([]string, len(columns))
	for i, name := range columns {
		f, ok := c.Field(name)
		if !ok {
			return 0, fmt.Errorf("sqlite: column %q is not part of %s", name, c.Name)
		}
		kinds[i] = f.Type
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqliteddl.DropTableSQL(c.Name)); err != nil {
		return 0, fmt.Errorf("sqlite: drop %s: %w", c.Name, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("sqlite: create %s: %w", c.Name, err)
	}

	var inserted int64
	if len(rows) > 0 {
		if len(columns) == 0 {
			return 0, fmt.Errorf("sqlite: columns must not be empty")
		}
		stmt, err := tx.PrepareContext(ctx, insertSQL(c.Name, columns))
		if err != nil {
			return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
		}
		defer stmt.Close()

		args := make([]any, len(columns))
		for _, row := range rows {
			if len(row) != len(columns) {
				return 0, fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns))
			}
			for i, v := range row {
				args[i] = toSQLite(v, kinds[i])
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return 0, fmt.Errorf("sqlite: insert into %s (row %d): %w", c.Name, inserted+1, err)
			}
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Columns lists the persisted columns of table in ordinal order.
func (r *Repository) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: table info %s: %w", table, err)
	}
	defer rows.Close()

	cols := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scan column: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = sqliteddl.QuoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sqliteddl.Dialect.QuoteFQN(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// toSQLite converts a cell to the representation its STRICT column stores.
// Values of an unexpected kind pass through so SQLite rejects them.
func toSQLite(v any, kind string) any {
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		if kind == schema.TypeDate {
			return x.Format(DateLayout)
		}
		return x.Format(TimestampLayout)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}
