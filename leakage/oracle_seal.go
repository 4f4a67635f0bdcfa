package leakage

import (
	"math/rand"

	"github.com/etclab/oramlab/seal"
)

// SealOracle is the partitioned-scheme leakage oracle: it drives a
// seal.Client's routing function over a Dataset's record ids and emits
// exactly the leakage stream an adversary observes for point queries.
type SealOracle struct {
	Seal     *seal.Client
	Dataset  Dataset
	PaddingX *int
	RNGSeed  int64
}

// NewSealOracle constructs an oracle over the given partitioned client
// and dataset. paddingX is nil for "no padding."
func NewSealOracle(s *seal.Client, dataset Dataset, paddingX *int, rngSeed int64) *SealOracle {
	return &SealOracle{Seal: s, Dataset: dataset, PaddingX: paddingX, RNGSeed: rngSeed}
}

// BuildEncryptedTuples iterates the dataset's index and routes every
// record id, producing the attacker's (conceptual) view of the
// encrypted database: one EncryptedTuple per record, in dataset
// iteration order, consumed only by the database-recovery attacker.
func (o *SealOracle) BuildEncryptedTuples() ([]EncryptedTuple, error) {
	var out []EncryptedTuple
	encID := 0
	for _, value := range o.Dataset.Values() {
		for _, rid := range o.Dataset.Index(value) {
			sub, _, err := o.Seal.Route(rid)
			if err != nil {
				return nil, err
			}
			out = append(out, EncryptedTuple{EncID: encID, Value: value, AlphaPrefix: sub})
			encID++
		}
	}
	return out, nil
}

// ObserveQuery computes the leakage for a single point query on value,
// labelled with tokenID: the true record ids' alpha-prefixes, padded up
// to next_power(real_volume, x); any padding-induced dummy
// prefixes are drawn uniformly from [0, m) using an RNG seeded by
// RNGSeed+tokenID so the same (dataset, client, seed) always produces
// the same observation.
func (o *SealOracle) ObserveQuery(value Value, tokenID int) (Value, QueryObservation, error) {
	ids := o.Dataset.Index(value)
	prefixes := make([]int, 0, len(ids))
	for _, rid := range ids {
		sub, _, err := o.Seal.Route(rid)
		if err != nil {
			return value, QueryObservation{}, err
		}
		prefixes = append(prefixes, sub)
	}

	realVol := len(prefixes)
	paddedVol, err := NextPower(realVol, o.PaddingX)
	if err != nil {
		return value, QueryObservation{}, err
	}

	if paddedVol > realVol {
		rnd := rand.New(rand.NewSource(o.RNGSeed + int64(tokenID)))
		m := o.Seal.Params().M
		for i := 0; i < paddedVol-realVol; i++ {
			prefixes = append(prefixes, rnd.Intn(m))
		}
	}

	return value, QueryObservation{TokenID: tokenID, ObservedVolume: paddedVol, ReturnedPrefixes: prefixes}, nil
}

// ObservedQuery pairs a query's true plaintext value with its leakage.
type ObservedQuery struct {
	Value Value
	Obs   QueryObservation
}

// ObserveQueryStream maps ObserveQuery across an ordered sequence of
// distinct plaintext query values, assigning token_id = i.
func (o *SealOracle) ObserveQueryStream(values []Value) ([]ObservedQuery, error) {
	out := make([]ObservedQuery, 0, len(values))
	for i, v := range values {
		value, obs, err := o.ObserveQuery(v, i)
		if err != nil {
			return nil, err
		}
		out = append(out, ObservedQuery{Value: value, Obs: obs})
	}
	return out, nil
}

// ObserveAllValues observes one query per distinct value in the
// dataset's natural order, a convenience wrapper over ObserveQueryStream
// with no new semantics.
func (o *SealOracle) ObserveAllValues() ([]ObservedQuery, error) {
	return o.ObserveQueryStream(o.Dataset.Values())
}
