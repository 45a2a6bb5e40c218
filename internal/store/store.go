// Package store adapts a pgx connection pool to the narrow surface the
// benchmark strategies need.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one row returned by a lookup: the single response column.
type Record struct {
	Response string
}

// Queryer runs statements.
type Queryer interface {
	// Query runs sql and returns the first column of every row as a Record.
	Query(ctx context.Context, sql string, args ...any) ([]Record, error)
	// Exec runs sql and discards any rows.
	Exec(ctx context.Context, sql string, args ...any) error
}

// Tx is a transaction that also exposes the raw COPY FROM STDIN channel.
type Tx interface {
	Queryer
	// CopyFrom streams r as the payload of the COPY statement sql and returns
	// the number of rows loaded.
	CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error)
	Rollback(ctx context.Context) error
}

// DB is a pooled database handle.
type DB interface {
	Queryer
	Begin(ctx context.Context) (Tx, error)
}

// Options configures the connection pool.
type Options struct {
	MaxConns int32
	ExecMode pgx.QueryExecMode
}

// ParseExecMode maps a command-line spelling to a pgx query exec mode.
func ParseExecMode(s string) (pgx.QueryExecMode, error) {
	switch strings.ToLower(s) {
	case "", "cache_statement":
		return pgx.QueryExecModeCacheStatement, nil
	case "cache_describe":
		return pgx.QueryExecModeCacheDescribe, nil
	case "describe_exec":
		return pgx.QueryExecModeDescribeExec, nil
	case "exec":
		return pgx.QueryExecModeExec, nil
	case "simple_protocol":
		return pgx.QueryExecModeSimpleProtocol, nil
	default:
		return 0, fmt.Errorf("unknown exec mode %q", s)
	}
}

// Pool is a DB backed by pgxpool.
type Pool struct {
	pool *pgxpool.Pool
}

// Open connects a pool and verifies it with a ping.
func Open(ctx context.Context, url string, opts Options) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.ConnConfig.DefaultQueryExecMode = opts.ExecMode

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Close releases every pooled connection.
func (p *Pool) Close() {
	p.pool.Close()
}

// Query implements Queryer.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) ([]Record, error) {
	return collect(p.pool.Query(ctx, sql, args...))
}

// Exec implements Queryer.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := p.pool.Exec(ctx, sql, args...)
	return err
}

// Begin implements DB.
func (p *Pool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &poolTx{tx: tx}, nil
}

type poolTx struct {
	tx pgx.Tx
}

func (t *poolTx) Query(ctx context.Context, sql string, args ...any) ([]Record, error) {
	return collect(t.tx.Query(ctx, sql, args...))
}

func (t *poolTx) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	return err
}

func (t *poolTx) CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error) {
	tag, err := t.tx.Conn().PgConn().CopyFrom(ctx, r, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *poolTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func collect(rows pgx.Rows, err error) ([]Record, error) {
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(&r.Response)
		return r, err
	})
}
