package strategy

import (
	"github.com/eunmann/pg-keybench/internal/store"
	"github.com/eunmann/pg-keybench/pkg/keys"
)

// All returns every strategy in listing order.
func All[K any](repr keys.Repr[K], t store.Target) []Strategy[K] {
	return []Strategy[K]{
		NewChunkedPrepared(repr, t),
		NewAnyArray(repr, t),
		NewUnnestArray(repr, t),
		NewTempTableTextCopy(repr, t),
		NewTempTableBinaryCopy(repr, t),
		NewTempTableOptimizedBinary(repr, t),
		NewTempTableJoin(repr, t),
		NewTempTableAny(repr, t),
		NewRawSQLLargeIn(repr, t),
		NewTempTableBinaryNoIndex(repr, t),
	}
}

// ByName returns the strategy called name.
func ByName[K any](name string, repr keys.Repr[K], t store.Target) (Strategy[K], bool) {
	for _, s := range All(repr, t) {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns the name of every strategy in listing order.
func Names() []string {
	all := All(keys.BigIntRepr, store.DefaultTarget())
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}
