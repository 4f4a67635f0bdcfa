// Package session drives a sequence of independent attacker sessions
// against a single leakage oracle: given value sequences already
// produced by an external workload layer, it runs one query-recovery/
// database-recovery pair per session and reports the resulting QRSR/DRSR
// time series. It does not generate the sequences themselves.
package session

import (
	"github.com/etclab/oramlab/attack"
	"github.com/etclab/oramlab/leakage"
)

// Result is one session's outcome.
type Result struct {
	SessionIndex int
	QRSR         float64
	DRSR         float64
	Observations int
}

// Plan runs a sequence of sessions against a single leakage oracle. Seed
// is combined with each session's index to derive that session's
// attacker RNG seed, so a Plan run twice with the same oracle state and
// the same sequences reproduces identical results.
type Plan struct {
	Oracle   *leakage.SealOracle
	PaddingX *int
	Seed     int64
}

// Run drives one session per entry of sequences: each entry is an
// ordered, distinct sequence of plaintext values to query. valueCounts
// is the public per-value histogram both attackers are assumed to know;
// it is constant across sessions. The oracle's dataset Values() order is
// used as the stable candidate-bucket iteration order both attackers
// require for run-to-run determinism.
func (p Plan) Run(valueCounts map[leakage.Value]int, sequences [][]leakage.Value) ([]Result, error) {
	tuples, err := p.Oracle.BuildEncryptedTuples()
	if err != nil {
		return nil, err
	}
	values := p.Oracle.Dataset.Values()

	results := make([]Result, 0, len(sequences))
	for i, seq := range sequences {
		sessionSeed := p.Seed + int64(i)

		observations, err := p.Oracle.ObserveQueryStream(seq)
		if err != nil {
			return nil, err
		}

		qr, err := attack.QueryRecovery(values, valueCounts, observations, p.PaddingX, sessionSeed)
		if err != nil {
			return nil, err
		}
		dr, err := attack.DatabaseRecovery(values, valueCounts, tuples, observations, p.PaddingX, sessionSeed)
		if err != nil {
			return nil, err
		}

		results = append(results, Result{
			SessionIndex: i,
			QRSR:         qr.QRSR,
			DRSR:         dr.DRSR,
			Observations: len(observations),
		})

		p.Oracle.Seal.ResetLog()
	}
	return results, nil
}
