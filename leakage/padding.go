package leakage

// NextPower pads s up to the smallest power of x that is >= s. A nil x
// (the "no padding" sentinel) returns s unchanged. s <= 1 is
// special-cased to return s unpadded even though x^0 == 1 would
// otherwise pad s=0 up to 1; this is a known, deliberately preserved
// quirk that leaves an empty result distinguishable from any
// padded-to-1 result.
func NextPower(s int, x *int) (int, error) {
	if x == nil {
		return s, nil
	}
	if *x < 2 {
		return 0, ErrBadX
	}
	if s <= 1 {
		return s, nil
	}
	p := 1
	for p < s {
		p *= *x
	}
	return p, nil
}
