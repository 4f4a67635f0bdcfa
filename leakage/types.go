// Package leakage implements the leakage oracles: given a
// partitioned-scheme client (package seal) and a plaintext dataset index,
// it emits exactly the leakage an adversary would observe for a point
// query: an observed volume and, per returned record, the queried
// record's sub-tree prefix.
package leakage

import "errors"

// ErrBadX reports a padding base less than 2.
var ErrBadX = errors.New("leakage: padding base x must be >= 2")

// Value is a plaintext attribute value. The core treats it as an opaque,
// comparable identifier (an int-coded vocabulary entry, a string, …);
// callers choose a concrete comparable type.
type Value = any

// EncryptedTuple is one entry of the attacker's view of the encrypted
// database: the attacker never sees Value in a real deployment, only
// EncID and AlphaPrefix; Value is retained here only so an attack
// (package attack) can score itself against ground truth.
type EncryptedTuple struct {
	EncID       int
	Value       Value
	AlphaPrefix int
}

// QueryObservation is the per-query leakage an adversary sees: the
// position of the query in the observed stream, the (possibly padded)
// response volume, and the sub-tree prefix of each returned record.
type QueryObservation struct {
	TokenID          int
	ObservedVolume   int
	ReturnedPrefixes []int
}

// Dataset is the external contract an orchestration layer supplies: a
// plaintext value's matching record ids, and the public per-value counts
// an adversary is assumed to know. Generating a Dataset (Zipf sampling,
// workload shaping) is out of scope here; this interface only describes
// what the oracles consume.
type Dataset interface {
	// Index returns the record ids whose attribute equals value, in a
	// stable order.
	Index(value Value) []int
	// Values returns every distinct value present in the dataset, in a
	// stable order.
	Values() []Value
	// ValueCounts returns the public count of records per value.
	ValueCounts() map[Value]int
}

// MapDataset is a minimal, already-materialized Dataset backed by a
// plain map. It exists so package leakage and package attack are
// independently testable and so cmd/oramlab has a concrete dataset to
// route against; it is not a synthetic generator (no Zipf sampling, no
// workload shaping); those remain an external, excluded concern.
type MapDataset struct {
	order []Value
	index map[Value][]int
}

// NewMapDataset builds a MapDataset from an ordered list of (value,
// record ids) pairs. The order given is preserved by Values().
func NewMapDataset(entries []struct {
	Value Value
	IDs   []int
}) *MapDataset {
	d := &MapDataset{index: make(map[Value][]int, len(entries))}
	for _, e := range entries {
		if _, exists := d.index[e.Value]; !exists {
			d.order = append(d.order, e.Value)
		}
		d.index[e.Value] = e.IDs
	}
	return d
}

func (d *MapDataset) Index(value Value) []int { return d.index[value] }

func (d *MapDataset) Values() []Value {
	out := make([]Value, len(d.order))
	copy(out, d.order)
	return out
}

func (d *MapDataset) ValueCounts() map[Value]int {
	counts := make(map[Value]int, len(d.index))
	for _, v := range d.order {
		counts[v] = len(d.index[v])
	}
	return counts
}
