package strategy

import (
	"context"
	"strings"

	"github.com/eunmann/pg-keybench/internal/logctx"
	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/pkg/humanfmt"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

type literalList[K any] struct {
	base
	repr   keys.Repr[K]
	prefix string
}

// NewRawSQLLargeIn writes every key into the statement text as a literal,
// so nothing is bound.
func NewRawSQLLargeIn[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	return &literalList[K]{
		base: base{
			name:        "raw_sql_large_in",
			description: "Builds large IN clause as raw SQL string to eliminate network/parameter binding overhead",
		},
		repr:   repr,
		prefix: selectPrefix(t),
	}
}

// Query returns the statement for ks.
func (s *literalList[K]) Query(ks []K) string {
	var b strings.Builder
	b.Grow(len(s.prefix) + 7 + len(ks)*(s.repr.Width*2+5))
	b.WriteString(s.prefix)
	b.WriteString(" IN (")
	s.repr.AppendLiterals(&b, ks)
	b.WriteString(");")
	return b.String()
}

func (s *literalList[K]) Run(ctx context.Context, env *Env, ks []K) ([]store.Record, error) {
	if len(ks) == 0 {
		return []store.Record{}, nil
	}
	query := s.Query(ks)

	log := logctx.FromContext(ctx)
	log.Debug().Str("statement_size", humanfmt.Bytes(int64(len(query)))).Msg("literal statement built")

	records, err := env.DB.Query(ctx, query)
	if err != nil {
		return nil, storeErr(s.name, err)
	}
	return records, nil
}
