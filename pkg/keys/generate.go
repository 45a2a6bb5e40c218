package keys

import (
	"crypto/sha256"
	"math/rand/v2"
	"strconv"
)

// DefaultSeed is used when a generator is asked for seed zero.
const DefaultSeed = 42

// Generate returns count distinct ids drawn uniformly from [1, idRange).
// The same seed yields the same ids in the same order.
//
// It panics if the range cannot supply count distinct non-zero ids.
func Generate(count int, idRange int64, seed uint64) []int64 {
	if int64(count) >= idRange {
		panic("keys: id range too small for requested count")
	}
	if seed == 0 {
		seed = DefaultSeed
	}
	rng := rand.New(rand.NewPCG(seed, seed*0x9E3779B97F4A7C15))

	seen := make(map[int64]struct{}, count)
	ids := make([]int64, 0, count)
	for len(ids) < count {
		id := rng.Int64N(idRange)
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// DigestOf hashes the decimal spelling of id, matching how seeded rows are keyed.
func DigestOf(id int64) Digest {
	return sha256.Sum256([]byte(strconv.FormatInt(id, 10)))
}

// Digests maps ids to their digests, preserving order.
func Digests(ids []int64) []Digest {
	out := make([]Digest, len(ids))
	for i, id := range ids {
		out[i] = DigestOf(id)
	}
	return out
}
