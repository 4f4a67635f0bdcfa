package leakage

// ConstantVolumeOracle is the baseline oracle for the monolithic
// oblivious tree: every access to the baseline scheme touches the same
// number of buckets regardless of which value is queried, so it leaks a
// constant observed volume and no sub-tree prefixes at all.
type ConstantVolumeOracle struct {
	ConstantVolume int
	PaddingX       *int
}

// ObserveQuery emits a QueryObservation whose volume is
// next_power(ConstantVolume, x) and whose returned prefixes are always
// empty, used to score an attacker that has no alpha-prefix signal at
// all; database-recovery against this oracle is conventionally reported
// as 0.
func (o *ConstantVolumeOracle) ObserveQuery(value Value, tokenID int) (Value, QueryObservation, error) {
	vol, err := NextPower(o.ConstantVolume, o.PaddingX)
	if err != nil {
		return value, QueryObservation{}, err
	}
	return value, QueryObservation{TokenID: tokenID, ObservedVolume: vol, ReturnedPrefixes: nil}, nil
}

// ObserveQueryStream maps ObserveQuery across an ordered sequence of
// distinct plaintext query values, assigning token_id = i.
func (o *ConstantVolumeOracle) ObserveQueryStream(values []Value) ([]ObservedQuery, error) {
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
