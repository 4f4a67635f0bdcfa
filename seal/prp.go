// Package seal implements the partitioned scheme under study: a keyed
// pseudorandom permutation over a k-bit address space splits a global
// block id into (sub-tree index, local id), routing each access to one
// of m = 2^alpha independent baseline oblivious trees (package pathoram).
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

// ErrDomain reports a PRP input or output outside [0, 2^k).
var ErrDomain = errors.New("seal: value outside prp domain")

const defaultFeistelRounds = 6

// FeistelPRP is a keyed bijection on [0, 2^k) built from a balanced
// Feistel network over a padded, even-width domain, combined with cycle
// walking to restrict the bijection back down to exactly [0, 2^k) for
// odd k. The round function is a keyed BLAKE2b-256 MAC, domain-separated
// by round index and half-value. An unbalanced split Feistel network
// directly over an odd-width domain is not actually bijective, so this
// pads up to an even width and uses the standard format-preserving-
// encryption cycle-walking technique to restrict back down to the exact
// domain for any k.
//
// k == 0 is the trivial identity permutation. The alpha == k degenerate
// case needs nothing special here: Client.Route still permutes the id
// and splits it with local_k == 0, so the sub-tree index is the whole
// permuted id and the local id is always 0.
type FeistelPRP struct {
	roundKey []byte
	k        int
	rounds   int
	halfBits int // width of each Feistel half in the padded domain
	halfMask uint64
}

// NewFeistelPRP derives a round key from key (any length) via HKDF-SHA256
// and returns a PRP over k-bit integers. If key is nil, a fresh 128-bit
// key is sampled from a CSPRNG.
func NewFeistelPRP(key []byte, k int) (*FeistelPRP, error) {
	if k < 0 {
		return nil, ErrDomain
	}
	if key == nil {
		key = make([]byte, 16)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}

	roundKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, key, nil, []byte("seal-feistel-prp-round-key"))
	if _, err := kdf.Read(roundKey); err != nil {
		return nil, err
	}

	halfBits := (k + 1) / 2
	return &FeistelPRP{
		roundKey: roundKey,
		k:        k,
		rounds:   defaultFeistelRounds,
		halfBits: halfBits,
		halfMask: mask64(halfBits),
	}, nil
}

func mask64(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// roundF is the Feistel round function: a keyed BLAKE2b-256 MAC over
// (round, half), truncated and masked to the half width.
func (p *FeistelPRP) roundF(round int, half uint64) uint64 {
	h, err := blake2b.New256(p.roundKey)
	if err != nil {
		panic("seal: blake2b keyed hash rejected a 32-byte key: " + err.Error())
	}
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(round))
	binary.BigEndian.PutUint64(buf[4:12], half)
	h.Write(buf[:])
	digest := h.Sum(nil)
	return binary.BigEndian.Uint64(digest[:8]) & p.halfMask
}

// feistelForward applies the balanced Feistel network over the padded,
// 2*halfBits-wide domain. This is a bijection on [0, 2^(2*halfBits)).
func (p *FeistelPRP) feistelForward(x uint64) uint64 {
	l := (x >> p.halfBits) & p.halfMask
	r := x & p.halfMask
	for round := 0; round < p.rounds; round++ {
		f := p.roundF(round, r)
		l, r = r, (l^f)&p.halfMask
	}
	return (l << p.halfBits) | r
}

func (p *FeistelPRP) feistelBackward(y uint64) uint64 {
	l := (y >> p.halfBits) & p.halfMask
	r := y & p.halfMask
	for round := p.rounds - 1; round >= 0; round-- {
		f := p.roundF(round, l)
		l, r = (r^f)&p.halfMask, l
	}
	return (l << p.halfBits) | r
}

// Permute returns pi_K(x), the forward PRP.
func (p *FeistelPRP) Permute(x int) (int, error) {
	if p.k == 0 {
		if x != 0 {
			return 0, ErrDomain
		}
		return 0, nil
	}
	if x < 0 || x >= (1<<p.k) {
		return 0, ErrDomain
	}
	domain := uint64(1) << p.k
	v := p.feistelForward(uint64(x))
	for v >= domain {
		v = p.feistelForward(v)
	}
	return int(v), nil
}

// Inverse returns pi_K^{-1}(y), undoing the cycle walk exactly because
// feistelBackward is the forward map's two-sided inverse at every step.
func (p *FeistelPRP) Inverse(y int) (int, error) {
	if p.k == 0 {
		if y != 0 {
			return 0, ErrDomain
		}
		return 0, nil
	}
	if y < 0 || y >= (1<<p.k) {
		return 0, ErrDomain
	}
	domain := uint64(1) << p.k
	v := uint64(y)
	for {
		prev := p.feistelBackward(v)
		if prev < domain {
			return int(prev), nil
		}
		v = prev
	}
}
