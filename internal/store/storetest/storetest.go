// Package storetest provides an in-memory store.DB for strategy and harness
// tests.
//
// The fake understands just enough of the statements the strategies issue to
// answer them: keys come from bound parameters, from the literal IN list of
// an unbound statement, or from the scratch table filled by COPY.
package storetest

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/pkg/copyframe"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

// ErrInjected is returned by failure hooks that want a generic error.
var ErrInjected = errors.New("injected failure")

// Call is one recorded Query.
type Call struct {
	SQL  string
	Args []any
}

// DB is a fake store.DB. It is not safe for concurrent use.
type DB struct {
	rows      map[string]string
	tempTable string

	// Execs lists every executed statement, transactional or not, in order.
	Execs []string
	// Queries lists every query in order.
	Queries []Call
	// Frames holds the raw payload of every COPY.
	Frames [][]byte
	// Begun and RolledBack count transactions.
	Begun, RolledBack int

	// FailQuery, when set, is consulted before each query with its 1-based
	// sequence number; a non-nil result fails the query.
	FailQuery func(n int, sql string) error
	// FailExec is consulted before each statement.
	FailExec func(sql string) error
	// FailCopy is consulted before each COPY.
	FailCopy func(sql string) error

	temp [][]byte
}

// New returns an empty fake whose scratch table is named tempTable.
func New(tempTable string) *DB {
	return &DB{
		rows:      make(map[string]string),
		tempTable: tempTable,
	}
}

// Put stores response under the wire form of a key.
func (d *DB) Put(wire []byte, response string) {
	d.rows[string(wire)] = response
}

// Load stores "response-<i>" for the i-th key.
func Load[K any](d *DB, repr keys.Repr[K], ks []K) {
	for i, k := range ks {
		wire := make([]byte, repr.Width)
		repr.Put(wire, k)
		d.Put(wire, store.ResponseFor(int64(i)))
	}
}

// Query implements store.Queryer.
func (d *DB) Query(_ context.Context, sql string, args ...any) ([]store.Record, error) {
	d.Queries = append(d.Queries, Call{SQL: sql, Args: args})
	if d.FailQuery != nil {
		if err := d.FailQuery(len(d.Queries), sql); err != nil {
			return nil, err
		}
	}

	wanted, err := d.lookupKeys(sql, args)
	if err != nil {
		return nil, err
	}
	out := []store.Record{}
	for _, k := range wanted {
		if r, ok := d.rows[string(k)]; ok {
			out = append(out, store.Record{Response: r})
		}
	}
	return out, nil
}

// Exec implements store.Queryer.
func (d *DB) Exec(_ context.Context, sql string, _ ...any) error {
	d.Execs = append(d.Execs, sql)
	if d.FailExec != nil {
		return d.FailExec(sql)
	}
	return nil
}

// Begin implements store.DB.
func (d *DB) Begin(context.Context) (store.Tx, error) {
	d.Begun++
	return &tx{db: d}, nil
}

// Temp returns the keys currently loaded in the scratch table.
func (d *DB) Temp() [][]byte {
	return d.temp
}

func (d *DB) lookupKeys(sql string, args []any) ([][]byte, error) {
	if d.tempTable != "" && strings.Contains(sql, `"`+d.tempTable+`"`) {
		return d.temp, nil
	}
	if len(args) == 0 {
		return parseLiteralList(sql)
	}
	if len(args) == 1 {
		switch v := args[0].(type) {
		case [][]byte:
			return v, nil
		case []int64:
			out := make([][]byte, len(v))
			for i, n := range v {
				out[i] = bigEndian(n)
			}
			return out, nil
		}
	}
	out := make([][]byte, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case []byte:
			out = append(out, v)
		case int64:
			out = append(out, bigEndian(v))
		default:
			return nil, fmt.Errorf("storetest: unsupported argument %T", a)
		}
	}
	return out, nil
}

func parseLiteralList(sql string) ([][]byte, error) {
	open := strings.Index(sql, " IN (")
	end := strings.LastIndex(sql, ")")
	if open < 0 || end < open {
		return nil, fmt.Errorf("storetest: no IN list in %q", sql)
	}
	list := sql[open+len(" IN (") : end]
	if list == "" {
		return nil, nil
	}

	tokens := strings.Split(list, ",")
	out := make([][]byte, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if strings.HasPrefix(tok, "'") {
			d, err := keys.ParseDigestLiteral(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, d[:])
			continue
		}
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("storetest: bad literal %q: %w", tok, err)
		}
		out = append(out, bigEndian(n))
	}
	return out, nil
}

func bigEndian(n int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(n))
}

type tx struct {
	db     *DB
	closed bool
}

func (t *tx) Query(ctx context.Context, sql string, args ...any) ([]store.Record, error) {
	return t.db.Query(ctx, sql, args...)
}

func (t *tx) Exec(ctx context.Context, sql string, args ...any) error {
	return t.db.Exec(ctx, sql, args...)
}

func (t *tx) CopyFrom(_ context.Context, r io.Reader, sql string) (int64, error) {
	if t.db.FailCopy != nil {
		if err := t.db.FailCopy(sql); err != nil {
			return 0, err
		}
	}
	frame, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	t.db.Frames = append(t.db.Frames, frame)
	loaded, err := copyframe.Decode(frame)
	if err != nil {
		return 0, err
	}
	t.db.temp = loaded
	return int64(len(loaded)), nil
}

// Rollback discards the scratch table. Rolling back twice is a no-op.
func (t *tx) Rollback(context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.db.RolledBack++
	t.db.temp = nil
	return nil
}
