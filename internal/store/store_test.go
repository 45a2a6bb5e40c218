package store

import (
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestParseExecMode(t *testing.T) {
	tests := []struct {
		in   string
		want pgx.QueryExecMode
	}{
		{"", pgx.QueryExecModeCacheStatement},
		{"cache_statement", pgx.QueryExecModeCacheStatement},
		{"CACHE_DESCRIBE", pgx.QueryExecModeCacheDescribe},
		{"describe_exec", pgx.QueryExecModeDescribeExec},
		{"exec", pgx.QueryExecModeExec},
		{"simple_protocol", pgx.QueryExecModeSimpleProtocol},
	}
	for _, tt := range tests {
		got, err := ParseExecMode(tt.in)
		if err != nil {
			t.Errorf("ParseExecMode(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseExecMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseExecMode("pipelined"); err == nil {
		t.Error("ParseExecMode(pipelined) succeeded, want error")
	}
}

func TestTargetQuoting(t *testing.T) {
	tg := DefaultTarget()
	if tg.QTable() != `"overrides"` || tg.QKey() != `"hash"` || tg.QValue() != `"response"` || tg.QTemp() != `"temp_ids"` {
		t.Errorf("quoted default target = %s %s %s %s", tg.QTable(), tg.QKey(), tg.QValue(), tg.QTemp())
	}

	tg.Table = `odd"name`
	if tg.QTable() != `"odd""name"` {
		t.Errorf("QTable() = %s, want escaped quote", tg.QTable())
	}
}

func TestResponseFor(t *testing.T) {
	if ResponseFor(42) != "response-42" {
		t.Errorf("ResponseFor(42) = %q", ResponseFor(42))
	}
}
