package strategy

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/eunmann/pg-keybench/internal/bencherr"
	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/internal/store/storetest"
	"github.com/eunmann/pg-keybench/pkg/copyframe"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

func newEnv() (*Env, *storetest.DB) {
	db := storetest.New(store.DefaultTarget().TempTable)
	return NewEnv(db), db
}

func responses(records []store.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Response
	}
	slices.Sort(out)
	return out
}

func expectedResponses(n int) []string {
	out := make([]string, n)
	for i := range n {
		out[i] = store.ResponseFor(int64(i))
	}
	slices.Sort(out)
	return out
}

func TestEmptyInputYieldsEmptyResult(t *testing.T) {
	ctx := context.Background()
	for _, st := range All(keys.DigestRepr, store.DefaultTarget()) {
		t.Run(st.Name(), func(t *testing.T) {
			env, db := newEnv()
			records, err := st.Run(ctx, env, nil)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if records == nil || len(records) != 0 {
				t.Errorf("expected empty non-nil result, got %#v", records)
			}
			if len(db.Queries) != 0 || len(db.Execs) != 0 || db.Begun != 0 {
				t.Errorf("expected no store work, got %d queries %d execs %d tx",
					len(db.Queries), len(db.Execs), db.Begun)
			}
		})
	}
}

func TestStrategiesResolveDigestKeys(t *testing.T) {
	ids := keys.Generate(60, 1000, 7)
	present := keys.Digests(ids[:50])
	all := keys.Digests(ids)

	for _, st := range All(keys.DigestRepr, store.DefaultTarget()) {
		if st.Name() == "temp_table_text_copy" {
			continue
		}
		t.Run(st.Name(), func(t *testing.T) {
			env, db := newEnv()
			storetest.Load(db, keys.DigestRepr, present)

			records, err := st.Run(context.Background(), env, all)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got, want := responses(records), expectedResponses(50); !slices.Equal(got, want) {
				t.Errorf("got %d records, want %d matching the stored keys", len(got), len(want))
			}
		})
	}
}

func TestStrategiesResolveBigIntKeys(t *testing.T) {
	ids := keys.Generate(30, 1000, 9)

	for _, st := range All(keys.BigIntRepr, store.DefaultTarget()) {
		if st.Name() == "temp_table_text_copy" {
			continue
		}
		t.Run(st.Name(), func(t *testing.T) {
			env, db := newEnv()
			storetest.Load(db, keys.BigIntRepr, ids[:20])

			records, err := st.Run(context.Background(), env, ids)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got, want := responses(records), expectedResponses(20); !slices.Equal(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestPreparedQuery(t *testing.T) {
	const prefix = `SELECT "response" FROM "overrides" WHERE "hash"`
	tests := []struct {
		n    int
		want string
	}{
		{1, prefix + " IN ($1);"},
		{3, prefix + " IN ($1, $2, $3);"},
	}
	for _, tt := range tests {
		if got := PreparedQuery(prefix, tt.n); got != tt.want {
			t.Errorf("PreparedQuery(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}

	for _, m := range []int{1, 2, 17, MaxPlaceholders} {
		q := PreparedQuery(prefix, m)
		if got := strings.Count(q, "$"); got != m {
			t.Errorf("M=%d: %d markers", m, got)
		}
		if got := strings.Count(q, ", "); got != m-1 {
			t.Errorf("M=%d: %d separators", m, got)
		}
		if strings.Count(q, ";") != 1 || !strings.HasSuffix(q, ");") {
			t.Errorf("M=%d: bad terminator in %q", m, q[len(q)-10:])
		}
	}
}

func TestChunkedPreparedSplitsKeys(t *testing.T) {
	env, db := newEnv()
	ids := keys.Generate(2*MaxPlaceholders+500, 1_000_000, 3)
	storetest.Load(db, keys.BigIntRepr, ids)

	st := NewChunkedPrepared(keys.BigIntRepr, store.DefaultTarget())
	records, err := st.Run(context.Background(), env, ids)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != len(ids) {
		t.Errorf("got %d records, want %d", len(records), len(ids))
	}

	if len(db.Queries) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(db.Queries))
	}
	for i, want := range []int{MaxPlaceholders, MaxPlaceholders, 500} {
		if got := len(db.Queries[i].Args); got != want {
			t.Errorf("chunk %d: %d args, want %d", i, got, want)
		}
	}
	if db.Queries[0].SQL != db.Queries[1].SQL {
		t.Error("full chunks should share one statement")
	}
	// Results concatenate in chunk order.
	if records[0].Response != store.ResponseFor(0) || records[len(records)-1].Response != store.ResponseFor(int64(len(ids)-1)) {
		t.Errorf("unexpected order: first %q last %q", records[0].Response, records[len(records)-1].Response)
	}
}

func TestChunkedPreparedFailureReturnsNoRecords(t *testing.T) {
	env, db := newEnv()
	db.FailQuery = func(n int, _ string) error {
		if n == 2 {
			return storetest.ErrInjected
		}
		return nil
	}
	ids := keys.Generate(MaxPlaceholders+1, 1_000_000, 3)
	storetest.Load(db, keys.BigIntRepr, ids)

	records, err := NewChunkedPrepared(keys.BigIntRepr, store.DefaultTarget()).Run(context.Background(), env, ids)
	if !errors.Is(err, bencherr.ErrStore) || !errors.Is(err, storetest.ErrInjected) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
	if records != nil {
		t.Errorf("expected no partial records, got %d", len(records))
	}
}

func TestArrayStrategiesBindOneParameter(t *testing.T) {
	tests := []struct {
		name string
		st   Strategy[int64]
		tail string
	}{
		{"any_array", NewAnyArray(keys.BigIntRepr, store.DefaultTarget()), ` = ANY($1);`},
		{"unnest_array", NewUnnestArray(keys.BigIntRepr, store.DefaultTarget()), ` IN (SELECT UNNEST($1::BIGINT[]));`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, db := newEnv()
			if _, err := tt.st.Run(context.Background(), env, []int64{4, 5, 6}); err != nil {
				t.Fatalf("Run: %v", err)
			}
			q := db.Queries[0]
			if !strings.HasSuffix(q.SQL, tt.tail) {
				t.Errorf("SQL %q does not end with %q", q.SQL, tt.tail)
			}
			if len(q.Args) != 1 || !slices.Equal(q.Args[0].([]int64), []int64{4, 5, 6}) {
				t.Errorf("unexpected args %#v", q.Args)
			}
		})
	}
}

func TestUnnestArrayCastsParameter(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"bigint", NewUnnestArray(keys.BigIntRepr, store.DefaultTarget()).(*arrayParam[int64]).query, "UNNEST($1::BIGINT[])"},
		{"digest", NewUnnestArray(keys.DigestRepr, store.DefaultTarget()).(*arrayParam[keys.Digest]).query, "UNNEST($1::BYTEA[])"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.sql, tt.want) {
				t.Errorf("statement %q lacks typed parameter %q", tt.sql, tt.want)
			}
		})
	}
}

func TestRawSQLLargeInStatement(t *testing.T) {
	st := NewRawSQLLargeIn(keys.BigIntRepr, store.DefaultTarget()).(*literalList[int64])
	want := `SELECT "response" FROM "overrides" WHERE "hash" IN (5,7);`
	if got := st.Query([]int64{5, 7}); got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}

	dst := NewRawSQLLargeIn(keys.DigestRepr, store.DefaultTarget()).(*literalList[keys.Digest])
	var d keys.Digest
	d[0], d[31] = 0xAB, 0x01
	got := dst.Query([]keys.Digest{d})
	if !strings.Contains(got, `IN ('\xab`) || !strings.HasSuffix(got, `01');`) {
		t.Errorf("unexpected digest statement %q", got)
	}
}

func TestTempTableStatements(t *testing.T) {
	env, db := newEnv()
	ks := keys.Digests([]int64{1, 2, 3})
	storetest.Load(db, keys.DigestRepr, ks)

	st := NewTempTableJoin(keys.DigestRepr, store.DefaultTarget())
	records, err := st.Run(context.Background(), env, ks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}

	wantCreate := `CREATE UNLOGGED TABLE "temp_ids" (id BYTEA STORAGE PLAIN PRIMARY KEY);`
	if len(db.Execs) != 1 || db.Execs[0] != wantCreate {
		t.Errorf("Execs = %q, want [%q]", db.Execs, wantCreate)
	}
	wantQuery := `SELECT "overrides"."response" AS response FROM "overrides" JOIN "temp_ids" ON "overrides"."hash" = "temp_ids".id;`
	if db.Queries[0].SQL != wantQuery {
		t.Errorf("query = %q, want %q", db.Queries[0].SQL, wantQuery)
	}
	if db.Begun != 1 || db.RolledBack != 1 {
		t.Errorf("expected one rolled back tx, got begun=%d rolledback=%d", db.Begun, db.RolledBack)
	}
	if db.Temp() != nil {
		t.Error("scratch table survived the transaction")
	}
}

func TestTempTableColumnLayouts(t *testing.T) {
	tgt := store.DefaultTarget()
	tests := []struct {
		st   Strategy[int64]
		want string
	}{
		{NewTempTableBinaryCopy(keys.BigIntRepr, tgt), "(id BIGINT PRIMARY KEY);"},
		{NewTempTableOptimizedBinary(keys.BigIntRepr, tgt), "(id BIGINT STORAGE PLAIN PRIMARY KEY);"},
		{NewTempTableAny(keys.BigIntRepr, tgt), "(id BIGINT STORAGE PLAIN PRIMARY KEY);"},
		{NewTempTableBinaryNoIndex(keys.BigIntRepr, tgt), "(id BIGINT STORAGE PLAIN);"},
	}
	for _, tt := range tests {
		t.Run(tt.st.Name(), func(t *testing.T) {
			env, db := newEnv()
			if _, err := tt.st.Run(context.Background(), env, []int64{1}); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !strings.HasSuffix(db.Execs[0], tt.want) {
				t.Errorf("create = %q, want suffix %q", db.Execs[0], tt.want)
			}
		})
	}
}

func TestTempTableStreamingAndBatchedFramesMatch(t *testing.T) {
	ks := keys.Digests(keys.Generate(300, 100_000, 11))
	want := copyframe.Encode(ks, keys.DigestRepr.Width, keys.DigestRepr.Put)

	for _, st := range []Strategy[keys.Digest]{
		NewTempTableBinaryCopy(keys.DigestRepr, store.DefaultTarget()),
		NewTempTableOptimizedBinary(keys.DigestRepr, store.DefaultTarget()),
	} {
		env, db := newEnv()
		if _, err := st.Run(context.Background(), env, ks); err != nil {
			t.Fatalf("%s: %v", st.Name(), err)
		}
		if string(db.Frames[0]) != string(want) {
			t.Errorf("%s: frame differs from batched encoding", st.Name())
		}
	}
}

func TestTempTableRollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		inject func(db *storetest.DB)
	}{
		{"create", func(db *storetest.DB) {
			db.FailExec = func(string) error { return storetest.ErrInjected }
		}},
		{"copy", func(db *storetest.DB) {
			db.FailCopy = func(string) error { return storetest.ErrInjected }
		}},
		{"query", func(db *storetest.DB) {
			db.FailQuery = func(int, string) error { return storetest.ErrInjected }
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, db := newEnv()
			tt.inject(db)

			st := NewTempTableOptimizedBinary(keys.BigIntRepr, store.DefaultTarget())
			records, err := st.Run(context.Background(), env, []int64{1, 2})
			if !errors.Is(err, bencherr.ErrStore) {
				t.Errorf("expected store error, got %v", err)
			}
			if records != nil {
				t.Errorf("expected no records, got %v", records)
			}
			if db.RolledBack != 1 {
				t.Errorf("expected rollback, got %d", db.RolledBack)
			}
		})
	}
}

func TestTextCopyIsUnavailable(t *testing.T) {
	env, db := newEnv()
	st := NewTempTableTextCopy(keys.BigIntRepr, store.DefaultTarget())

	_, err := st.Run(context.Background(), env, []int64{1})
	if !errors.Is(err, bencherr.ErrSetup) {
		t.Errorf("expected setup error, got %v", err)
	}
	if db.Begun != 0 || len(db.Queries) != 0 {
		t.Error("expected no store work before refusing")
	}
}

func TestClearCaches(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env, db := newEnv()
		env.DisableCache = false
		if err := env.ClearCaches(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(db.Execs) != 0 {
			t.Errorf("expected no statements, got %q", db.Execs)
		}
	})

	t.Run("reload refused", func(t *testing.T) {
		env, db := newEnv()
		db.FailExec = func(sql string) error {
			if strings.Contains(sql, "pg_reload_conf") {
				return storetest.ErrInjected
			}
			return nil
		}
		if err := env.ClearCaches(context.Background()); err != nil {
			t.Fatalf("reload failure should be ignored: %v", err)
		}
		want := []string{"DISCARD PLANS;", "SELECT pg_stat_reset();", "SELECT pg_reload_conf();"}
		if !slices.Equal(db.Execs, want) {
			t.Errorf("Execs = %q, want %q", db.Execs, want)
		}
	})

	t.Run("discard fails", func(t *testing.T) {
		env, db := newEnv()
		db.FailExec = func(string) error { return storetest.ErrInjected }
		err := env.ClearCaches(context.Background())
		if !errors.Is(err, bencherr.ErrStore) {
			t.Errorf("expected store error, got %v", err)
		}
		if len(db.Execs) != 1 {
			t.Errorf("expected to stop after first statement, got %q", db.Execs)
		}
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()

	env, db := newEnv()
	if err := NewAnyArray(keys.BigIntRepr, store.DefaultTarget()).Cleanup(ctx, env); err != nil {
		t.Fatal(err)
	}
	if len(db.Execs) != 3 {
		t.Errorf("expected cache reset only, got %q", db.Execs)
	}

	env, db = newEnv()
	db.FailExec = func(sql string) error {
		if strings.HasPrefix(sql, "DROP") {
			return storetest.ErrInjected
		}
		return nil
	}
	if err := NewTempTableJoin(keys.BigIntRepr, store.DefaultTarget()).Cleanup(ctx, env); err != nil {
		t.Fatalf("drop failure should be ignored: %v", err)
	}
	if last := db.Execs[len(db.Execs)-1]; last != `DROP TABLE IF EXISTS "temp_ids";` {
		t.Errorf("last statement = %q", last)
	}
}

func TestValidate(t *testing.T) {
	rec := func(s ...string) []store.Record {
		out := make([]store.Record, len(s))
		for i := range s {
			out[i].Response = s[i]
		}
		return out
	}
	tests := []struct {
		name    string
		records []store.Record
		max     int
		wantErr bool
	}{
		{"empty", nil, 10, false},
		{"within bound", rec("a", "b"), 2, false},
		{"too many", rec("a", "b", "c"), 2, true},
		{"empty response", rec("a", ""), 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.records, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, bencherr.ErrBenchmarkFailed) {
				t.Errorf("expected ErrBenchmarkFailed, got %v", err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	want := []string{
		"chunked_prepared",
		"any_array",
		"unnest_array",
		"temp_table_text_copy",
		"temp_table_binary_copy",
		"temp_table_optimized_binary",
		"temp_table_join",
		"temp_table_any",
		"raw_sql_large_in",
		"temp_table_binary_no_index",
	}
	if got := Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	for _, name := range want {
		st, ok := ByName(name, keys.DigestRepr, store.DefaultTarget())
		if !ok {
			t.Fatalf("ByName(%q) not found", name)
		}
		if st.Description() == "" {
			t.Errorf("%s has no description", name)
		}
		if st.NeedsWarmup() {
			t.Errorf("%s unexpectedly needs warmup", name)
		}
	}
	if _, ok := ByName("nope", keys.DigestRepr, store.DefaultTarget()); ok {
		t.Error("ByName found an unknown strategy")
	}
}

// Descriptions are written to both CSV files and must stay stable.
func TestDescriptionsStable(t *testing.T) {
	want := map[string]string{
		"chunked_prepared":           "Splits IDs into chunks and uses prepared statements with placeholders",
		"any_array":                  "Uses PostgreSQL's ANY operator with array parameters",
		"unnest_array":               "Uses PostgreSQL's UNNEST function to convert array to table",
		"temp_table_text_copy":       "Creates temporary table and uses COPY with text format",
		"temp_table_binary_copy":     "Creates temporary table and uses COPY with binary format",
		"temp_table_join":            "Creates temporary table with binary COPY and uses JOIN instead of IN clause",
		"raw_sql_large_in":           "Builds large IN clause as raw SQL string to eliminate network/parameter binding overhead",
		"temp_table_binary_no_index": "Benchmark using a temporary table without index and binary COPY format",
	}
	for name, desc := range want {
		st, ok := ByName(name, keys.BigIntRepr, store.DefaultTarget())
		if !ok {
			t.Fatalf("ByName(%q) not found", name)
		}
		if st.Description() != desc {
			t.Errorf("%s description = %q, want %q", name, st.Description(), desc)
		}
	}
}
