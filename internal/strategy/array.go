package strategy

import (
	"context"
	"fmt"

	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

// arrayParam binds the whole key set as a single array parameter.
type arrayParam[K any] struct {
	base
	repr  keys.Repr[K]
	query string
}

// NewAnyArray filters with key = ANY($1).
func NewAnyArray[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	return &arrayParam[K]{
		base: base{
			name:        "any_array",
			description: "Uses PostgreSQL's ANY operator with array parameters",
		},
		repr:  repr,
		query: selectPrefix(t) + " = ANY($1);",
	}
}

// NewUnnestArray filters with key IN (SELECT UNNEST($1)). The parameter is
// cast to the key's array type since unnest is polymorphic and a statement
// prepared without parameter types cannot resolve it.
func NewUnnestArray[K any](repr keys.Repr[K], t store.Target) Strategy[K] {
	return &arrayParam[K]{
		base: base{
			name:        "unnest_array",
			description: "Uses PostgreSQL's UNNEST function to convert array to table",
		},
		repr:  repr,
		query: selectPrefix(t) + fmt.Sprintf(" IN (SELECT UNNEST($1::%s[]));", repr.ColumnType),
	}
}

func (s *arrayParam[K]) Run(ctx context.Context, env *Env, ks []K) ([]store.Record, error) {
	if len(ks) == 0 {
		return []store.Record{}, nil
	}
	records, err := env.DB.Query(ctx, s.query, s.repr.Array(ks))
	if err != nil {
		return nil, storeErr(s.name, err)
	}
	return records, nil
}
