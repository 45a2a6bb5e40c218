package strategy

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/eunmann/pg-keybench/internal/bencherr"
	"github.com/eunmann/pg-keybench/internal/logctx"
	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/pkg/copyframe"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

// Column layouts of the scratch table.
const (
	idPrimaryKey      = "%s PRIMARY KEY"
	idPlainPrimaryKey = "%s STORAGE PLAIN PRIMARY KEY"
	idPlain           = "%s STORAGE PLAIN"
)

// tempCleanup drops the scratch table after the caches are reset.
type tempCleanup struct {
	base
	target store.Target
}

func (c tempCleanup) Cleanup(ctx context.Context, env *Env) error {
	err := env.ClearCaches(ctx)
	_ = env.DB.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", c.target.QTemp()))
	return err
}

// tempTable loads the keys into an unlogged scratch table with binary COPY
// inside a transaction, runs one lookup against it and rolls back.
type tempTable[K any] struct {
	tempCleanup
	repr      keys.Repr[K]
	create    string
	copySQL   string
	query     string
	streaming bool
}

func newTempTable[K any](name, description string, repr keys.Repr[K], t store.Target, column, query string, streaming bool) *tempTable[K] {
	col := fmt.Sprintf(column, repr.ColumnType)
	return &tempTable[K]{
		tempCleanup: tempCleanup{
			base:   base{name: name, description: description},
			target: t,
		},
		repr:      repr,
		create:    fmt.Sprintf("CREATE UNLOGGED TABLE %s (id %s);", t.QTemp(), col),
		copySQL:   fmt.Sprintf("COPY %s (id) FROM STDIN WITH (FORMAT BINARY)", t.QTemp()),
		query:     query,
		streaming: streaming,
	}
}

// NewTempTableBinaryCopy streams the keys into an indexed scratch table and
// filters with IN (SELECT id FROM temp).
func NewTempTableBinaryCopy[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	return newTempTable("temp_table_binary_copy",
		"Creates temporary table and uses COPY with binary format",
		repr, t, idPrimaryKey, inTempQuery(t), true)
}

// NewTempTableOptimizedBinary loads one pre-built frame into an indexed
// scratch table with uncompressed storage.
func NewTempTableOptimizedBinary[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	return newTempTable("temp_table_optimized_binary",
		"Uses temporary table with pre-built COPY BINARY payload and plain column storage",
		repr, t, idPlainPrimaryKey, inTempQuery(t), false)
}

// NewTempTableJoin joins the lookup table against the scratch table.
func NewTempTableJoin[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	query := fmt.Sprintf("SELECT %s.%s AS response FROM %s JOIN %s ON %s.%s = %s.id;",
		t.QTable(), t.QValue(), t.QTable(), t.QTemp(), t.QTable(), t.QKey(), t.QTemp())
	return newTempTable("temp_table_join",
		"Creates temporary table with binary COPY and uses JOIN instead of IN clause",
		repr, t, idPlainPrimaryKey, query, false)
}

// NewTempTableAny collects the scratch table into an array and filters with
// = ANY.
func NewTempTableAny[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	query := selectPrefix(t) + fmt.Sprintf(" = ANY(ARRAY(SELECT id FROM %s));", t.QTemp())
	return newTempTable("temp_table_any",
		"Uses temporary table with binary COPY and ANY over the collected temp table array",
		repr, t, idPlainPrimaryKey, query, false)
}

// NewTempTableBinaryNoIndex loads into a scratch table without a primary key.
func NewTempTableBinaryNoIndex[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	return newTempTable("temp_table_binary_no_index",
		"Benchmark using a temporary table without index and binary COPY format",
		repr, t, idPlain, inTempQuery(t), false)
}

func inTempQuery(t store.Target) string {
	return selectPrefix(t) + fmt.Sprintf(" IN (SELECT id FROM %s);", t.QTemp())
}

func (s *tempTable[K]) payload(ks []K) io.Reader {
	if s.streaming {
		return copyframe.NewStreamer(ks, s.repr.Width, copyframe.PutFunc[K](s.repr.Put))
	}
	return bytes.NewReader(copyframe.Encode(ks, s.repr.Width, copyframe.PutFunc[K](s.repr.Put)))
}

func (s *tempTable[K]) Run(ctx context.Context, env *Env, ks []K) ([]store.Record, error) {
	if len(ks) == 0 {
		return []store.Record{}, nil
	}

	tx, err := env.DB.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin", err)
	}
	// The scratch table never outlives the transaction.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.Exec(ctx, s.create); err != nil {
		return nil, storeErr("create temp table", err)
	}

	loaded, err := tx.CopyFrom(ctx, s.payload(ks), s.copySQL)
	if err != nil {
		return nil, storeErr("copy keys", err)
	}
	log := logctx.FromContext(ctx)
	log.Debug().
		Int64("rows_loaded", loaded).
		Int("frame_bytes", copyframe.FrameLen(len(ks), s.repr.Width)).
		Bool("streaming", s.streaming).
		Msg("temp table loaded")

	records, err := tx.Query(ctx, s.query)
	if err != nil {
		return nil, storeErr("query temp table", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		return nil, storeErr("rollback", err)
	}
	return records, nil
}

// textCopy is kept in the listing for comparison but refuses to run: the
// text COPY path is not supported.
type textCopy[K any] struct {
	tempCleanup
}

// NewTempTableTextCopy returns the disabled text-format COPY strategy.
func NewTempTableTextCopy[K any](_ keys.Repr[K], t store.Target) Strategy[K] {
	return &textCopy[K]{tempCleanup{
		base: base{
			name:        "temp_table_text_copy",
			description: "Creates temporary table and uses COPY with text format",
		},
		target: t,
	}}
}

func (s *textCopy[K]) Run(_ context.Context, _ *Env, ks []K) ([]store.Record, error) {
	if len(ks) == 0 {
		return []store.Record{}, nil
	}
	return nil, fmt.Errorf("%w: COPY with text format is not supported", bencherr.ErrSetup)
}
