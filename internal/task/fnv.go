// Package task implements the deterministic benchmark kernels and their
// binary calling contract. Each kernel is a pure function from a fixed-layout
// parameter record to a 32-bit verification hash; two independent
// implementations of the same contract must produce bit-identical hashes for
// identical inputs.
package task

// FNV-1a/32 constants. Fixed and versionless: any change invalidates every
// stored reference vector.
const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// Digest is an FNV-1a 32-bit accumulator. Multi-byte numeric values are
// folded least-significant byte first.
type Digest uint32

// NewDigest returns a digest primed with the FNV offset basis.
func NewDigest() Digest {
	return Digest(fnvOffsetBasis)
}

// Fold mixes a single byte into the digest.
func (d *Digest) Fold(b byte) {
	h := uint32(*d)
	h ^= uint32(b)
	h *= fnvPrime
	*d = Digest(h)
}

// FoldBytes mixes a byte slice into the digest in order.
func (d *Digest) FoldBytes(p []byte) {
	for _, b := range p {
		d.Fold(b)
	}
}

// FoldUint32 mixes a 32-bit value into the digest, low byte first.
func (d *Digest) FoldUint32(v uint32) {
	d.Fold(byte(v))
	d.Fold(byte(v >> 8))
	d.Fold(byte(v >> 16))
	d.Fold(byte(v >> 24))
}

// FoldInt32 mixes a signed 32-bit value using its two's-complement bytes.
func (d *Digest) FoldInt32(v int32) {
	d.FoldUint32(uint32(v))
}

// FoldBool mixes a boolean as a single byte, 1 for true.
func (d *Digest) FoldBool(v bool) {
	if v {
		d.Fold(1)
	} else {
		d.Fold(0)
	}
}

// Sum32 returns the accumulated hash.
func (d Digest) Sum32() uint32 {
	return uint32(d)
}
