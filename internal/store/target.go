package store

import "github.com/jackc/pgx/v5"

// Target names the lookup table and the scratch table used by temp-table
// strategies.
type Target struct {
	Table       string
	KeyColumn   string
	ValueColumn string
	TempTable   string
}

// DefaultTarget is the schema the benchmark was designed against.
func DefaultTarget() Target {
	return Target{
		Table:       "overrides",
		KeyColumn:   "hash",
		ValueColumn: "response",
		TempTable:   "temp_ids",
	}
}

// QTable returns the quoted lookup table name.
func (t Target) QTable() string { return pgx.Identifier{t.Table}.Sanitize() }

// QKey returns the quoted key column.
func (t Target) QKey() string { return pgx.Identifier{t.KeyColumn}.Sanitize() }

// QValue returns the quoted response column.
func (t Target) QValue() string { return pgx.Identifier{t.ValueColumn}.Sanitize() }

// QTemp returns the quoted scratch table name.
func (t Target) QTemp() string { return pgx.Identifier{t.TempTable}.Sanitize() }
