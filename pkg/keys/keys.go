// Package keys describes the key representations a benchmark can run with and
// generates test populations for them.
package keys

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Digest is a 32-byte key, stored as BYTEA.
type Digest = [32]byte

// Repr describes how keys of type K are stored, bound, and spelled in SQL.
// Every key of one Repr has the same wire width.
type Repr[K any] struct {
	// Name identifies the representation on the command line.
	Name string
	// Width is the size of one key in the binary COPY format.
	Width int
	// ColumnType is the SQL type of a column holding the key.
	ColumnType string

	// Put writes the big-endian wire form of k into dst (len(dst) == Width).
	Put func(dst []byte, k K)
	// Param returns the value bound to a single placeholder.
	Param func(k K) any
	// Array returns the value bound to an array placeholder.
	Array func(keys []K) any
	// Literal returns an SQL literal that round-trips to k.
	Literal func(k K) string
}

// AppendLiterals writes the comma-separated literal list of keys to b.
func (r Repr[K]) AppendLiterals(b *strings.Builder, keys []K) {
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.Literal(k))
	}
}

// DigestRepr is the 32-byte BYTEA representation.
var DigestRepr = Repr[Digest]{
	Name:       "digest",
	Width:      32,
	ColumnType: "BYTEA",
	Put: func(dst []byte, k Digest) {
		copy(dst, k[:])
	},
	Param: func(k Digest) any {
		return k[:]
	},
	Array: func(keys []Digest) any {
		out := make([][]byte, len(keys))
		for i := range keys {
			out[i] = keys[i][:]
		}
		return out
	},
	Literal: DigestLiteral,
}

// BigIntRepr is the 8-byte BIGINT representation.
var BigIntRepr = Repr[int64]{
	Name:       "bigint",
	Width:      8,
	ColumnType: "BIGINT",
	Put: func(dst []byte, k int64) {
		binary.BigEndian.PutUint64(dst, uint64(k))
	},
	Param: func(k int64) any {
		return k
	},
	Array: func(keys []int64) any {
		return keys
	},
	Literal: func(k int64) string {
		return strconv.FormatInt(k, 10)
	},
}

// DigestLiteral spells k as a standard-conforming bytea hex literal: '\x<hex>'.
func DigestLiteral(k Digest) string {
	var buf [2 + 2 + 64 + 1]byte
	buf[0], buf[1], buf[2] = '\'', '\\', 'x'
	hex.Encode(buf[3:67], k[:])
	buf[67] = '\''
	return string(buf[:68])
}

// ParseDigestLiteral reverses DigestLiteral.
func ParseDigestLiteral(s string) (Digest, error) {
	var k Digest
	body, ok := strings.CutPrefix(s, `'\x`)
	if !ok {
		return k, fmt.Errorf("digest literal %q: missing '\\x prefix", s)
	}
	body, ok = strings.CutSuffix(body, `'`)
	if !ok {
		return k, fmt.Errorf("digest literal %q: missing closing quote", s)
	}
	if hex.DecodedLen(len(body)) != len(k) {
		return k, fmt.Errorf("digest literal %q: want %d hex digits", s, 2*len(k))
	}
	if _, err := hex.Decode(k[:], []byte(body)); err != nil {
		return k, fmt.Errorf("digest literal %q: %w", s, err)
	}
	return k, nil
}
