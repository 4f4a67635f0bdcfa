// Package attack implements two volume-leakage adversaries: a
// query-recovery attacker that guesses the queried plaintext value from
// observed volume alone, and a database-recovery attacker that
// additionally binds returned record identifiers to plaintext values
// using the sub-tree prefix.
package attack

import (
	"math/rand"

	"github.com/etclab/oramlab/leakage"
)

// buildPaddedSizeBuckets groups plaintext values by their padded count,
// a construction shared by both attacks below. values fixes the
// iteration order buckets are built in: Go map iteration order is
// randomized per process, so ranging over valueCounts directly would
// make which candidate a tied RNG draw picks depend on that randomized
// order, breaking run-to-run determinism (the Python original this is
// ported from is safe here only because plain dicts preserve insertion
// order; Go maps make no such guarantee).
func buildPaddedSizeBuckets(values []leakage.Value, valueCounts map[leakage.Value]int, x *int) (map[int][]leakage.Value, error) {
	buckets := make(map[int][]leakage.Value)
	for _, v := range values {
		ps, err := leakage.NextPower(valueCounts[v], x)
		if err != nil {
			return nil, err
		}
		buckets[ps] = append(buckets[ps], v)
	}
	return buckets, nil
}

// QueryRecoveryResult is the outcome of a query-recovery run.
type QueryRecoveryResult struct {
	QRSR    float64
	Guesses []leakage.Value // guesses[i] is the guess for observations[i]; nil entries mean "no guess"
}

// QueryRecovery implements the query-recovery attack: for each
// observation in order, guess uniformly among the not-yet-guessed values
// whose padded count matches the observed volume, scoring +1 when the
// guess equals the true value. Candidates exhausted or empty is a
// graceful miss, never an error. values fixes a stable iteration order
// over valueCounts's keys (see buildPaddedSizeBuckets); callers
// typically pass a Dataset's Values().
func QueryRecovery(values []leakage.Value, valueCounts map[leakage.Value]int, observations []leakage.ObservedQuery, x *int, rngSeed int64) (QueryRecoveryResult, error) {
	buckets, err := buildPaddedSizeBuckets(values, valueCounts, x)
	if err != nil {
		return QueryRecoveryResult{}, err
	}

	remaining := make(map[leakage.Value]bool, len(valueCounts))
	for v := range valueCounts {
		remaining[v] = true
	}

	rnd := rand.New(rand.NewSource(rngSeed))
	guesses := make([]leakage.Value, len(observations))
	correct := 0

	for i, o := range observations {
		guess := pickCandidate(rnd, buckets[o.Obs.ObservedVolume], remaining)
		guesses[i] = guess
		if guess != nil {
			remaining[guess] = false
		}
		if guess == o.Value {
			correct++
		}
	}

	var qrsr float64
	if len(observations) > 0 {
		qrsr = float64(correct) / float64(len(observations))
	}
	return QueryRecoveryResult{QRSR: qrsr, Guesses: guesses}, nil
}

// pickCandidate returns a uniformly random not-yet-guessed value from
// bucket, or nil if none remain: a graceful miss, never an error.
func pickCandidate(rnd *rand.Rand, bucket []leakage.Value, remaining map[leakage.Value]bool) leakage.Value {
	candidates := make([]leakage.Value, 0, len(bucket))
	for _, v := range bucket {
		if remaining[v] {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[rnd.Intn(len(candidates))]
}
