package strategy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/eunmann/pg-keybench/internal/logctx"
	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

// MaxPlaceholders is the number of keys bound per chunked statement.
const MaxPlaceholders = 2000

// PreparedQuery returns prefix followed by an IN list of n placeholders
// ($1 .. $n) and a terminating semicolon.
func PreparedQuery(prefix string, n int) string {
	var b strings.Builder
	b.Grow(len(prefix) + 6 + n*7)
	b.WriteString(prefix)
	b.WriteString(" IN (")
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i))
	}
	b.WriteString(");")
	return b.String()
}

type chunkedPrepared[K any] struct {
	base
	repr      keys.Repr[K]
	prefix    string
	fullQuery string
}

// NewChunkedPrepared splits keys into chunks of MaxPlaceholders and runs one
// placeholder statement per chunk.
func NewChunkedPrepared[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	prefix := selectPrefix(t)
	return &chunkedPrepared[K]{
		base: base{
			name:        "chunked_prepared",
			description: "Splits IDs into chunks and uses prepared statements with placeholders",
		},
		repr:      repr,
		prefix:    prefix,
		fullQuery: PreparedQuery(prefix, MaxPlaceholders),
	}
}

func (s *chunkedPrepared[K]) Run(ctx context.Context, env *Env, ks []K) ([]store.Record, error) {
	out := []store.Record{}
	args := make([]any, 0, min(len(ks), MaxPlaceholders))

	chunks := 0
	for start := 0; start < len(ks); start += MaxPlaceholders {
		chunk := ks[start:min(start+MaxPlaceholders, len(ks))]

		query := s.fullQuery
		if len(chunk) < MaxPlaceholders {
			query = PreparedQuery(s.prefix, len(chunk))
		}

		args = args[:0]
		for _, k := range chunk {
			args = append(args, s.repr.Param(k))
		}

		records, err := env.DB.Query(ctx, query, args...)
		if err != nil {
			return nil, storeErr(fmt.Sprintf("chunk at offset %d", start), err)
		}
		out = append(out, records...)
		chunks++
	}

	log := logctx.FromContext(ctx)
	log.Debug().Int("chunks", chunks).Int("rows", len(out)).Msg("chunked lookup done")
	return out, nil
}
