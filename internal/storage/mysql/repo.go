// Package mysql implements a MySQL warehouse backend on
// github.com/go-sql-driver/mysql.
//
// MySQL commits DDL implicitly, so DROP and CREATE run on their own and only
// the multi-row INSERT batches share a transaction. A failed insert therefore
// leaves an empty table rather than the previous contents.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"salesdw/internal/schema"
	"salesdw/internal/storage"
	myddl "salesdw/internal/storage/mysql/ddl"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN       string
	BatchSize int
	Logger    zerolog.Logger
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository parses the DSN (forcing parseTime), connects and returns a
// Repository plus a Close function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true

	conn, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(conn)
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = storage.DefaultBatchSize
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// ReplaceTable implements storage.Repository.
func (r *Repository) ReplaceTable(ctx context.Context, c schema.Contract, columns []string, rows [][]any) (int64, error) {
	create, err := myddl.CreateTableSQL(c)
	if err != nil {
		return 0, err
	}
	if _, err := r.db.ExecContext(ctx, myddl.DropTableSQL(c.Name)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", c.Name, err)
	}
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", c.Name, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	log := r.cfg.Logger.With().Str("table", c.Name).Logger()
	n, err := storage.CopyInBatches(ctx, log, columns, rows, r.cfg.BatchSize,
		func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
			query, args := insertSQL(c.Name, columns, batch)
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, fmt.Errorf("insert into %s: %w", c.Name, err)
			}
			return res.RowsAffected()
		})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Columns implements storage.Repository. Unqualified names resolve against
// DATABASE().
func (r *Repository) Columns(ctx context.Context, table string) ([]string, error) {
	const q = `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

	schemaName, name := "", table
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		schemaName, name = table[:i], table[i+1:]
	}
	rows, err := r.db.QueryContext(ctx, q, schemaName, name)
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", table, err)
	}
	defer rows.Close()

	cols := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// insertSQL builds one multi-row INSERT for batch and flattens its args.
func insertSQL(table string, columns []string, batch [][]any) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", myddl.Dialect.QuoteFQN(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(batch)*len(columns))
	for i, row := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args
}
