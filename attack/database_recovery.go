package attack

import (
	"math/rand"

	"github.com/etclab/oramlab/leakage"
)

// DatabaseRecoveryResult is the outcome of a database-recovery run.
type DatabaseRecoveryResult struct {
	DRSR    float64
	Correct int
	Denom   int
}

// DatabaseRecovery implements the database-recovery attack. It shares
// the query-recovery bookkeeping (same `remaining` pool, same RNG
// stream) but additionally maintains a mutable live_by_prefix mapping
// seeded from encryptedTuples: for each returned prefix in an
// observation, a live tuple with that prefix is drawn and removed, and
// scored correct when the query-recovery guess for that observation is
// non-nil and matches the drawn tuple's value.
func DatabaseRecovery(
	values []leakage.Value,
	valueCounts map[leakage.Value]int,
	encryptedTuples []leakage.EncryptedTuple,
	observations []leakage.ObservedQuery,
	x *int,
	rngSeed int64,
) (DatabaseRecoveryResult, error) {
	buckets, err := buildPaddedSizeBuckets(values, valueCounts, x)
	if err != nil {
		return DatabaseRecoveryResult{}, err
	}

	remaining := make(map[leakage.Value]bool, len(valueCounts))
	for v := range valueCounts {
		remaining[v] = true
	}

	liveByPrefix := make(map[int][]leakage.EncryptedTuple)
	for _, t := range encryptedTuples {
		liveByPrefix[t.AlphaPrefix] = append(liveByPrefix[t.AlphaPrefix], t)
	}

	rnd := rand.New(rand.NewSource(rngSeed))
	correct, denom := 0, 0

	for _, o := range observations {
		guess := pickCandidate(rnd, buckets[o.Obs.ObservedVolume], remaining)
		if guess != nil {
			remaining[guess] = false
		}

		for _, prefix := range o.Obs.ReturnedPrefixes {
			denom++
			pool := liveByPrefix[prefix]
			if len(pool) == 0 {
				continue
			}
			chosenIdx := rnd.Intn(len(pool))
			chosen := pool[chosenIdx]
			liveByPrefix[prefix] = append(pool[:chosenIdx], pool[chosenIdx+1:]...)

			if guess != nil && chosen.Value == guess {
				correct++
			}
		}
	}

	var drsr float64
	if denom > 0 {
		drsr = float64(correct) / float64(denom)
	}
	return DatabaseRecoveryResult{DRSR: drsr, Correct: correct, Denom: denom}, nil
}
