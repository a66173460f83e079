package task

import "testing"

func TestDigestEmptyIsOffsetBasis(t *testing.T) {
	d := NewDigest()
	if got := d.Sum32(); got != 2166136261 {
		t.Fatalf("empty digest = %d, want 2166136261", got)
	}
}

func TestDigestKnownVector(t *testing.T) {
	// FNV-1a/32 of "hello" is a published reference value.
	d := NewDigest()
	d.FoldBytes([]byte("hello"))
	if got := d.Sum32(); got != 0x4f9f2cab {
		t.Fatalf("digest(hello) = %#x, want 0x4f9f2cab", got)
	}
}

func TestDigestUint32LSBFirst(t *testing.T) {
	// Folding a u32 must equal folding its little-endian bytes.
	a := NewDigest()
	a.FoldUint32(0x01020304)
	b := NewDigest()
	b.FoldBytes([]byte{0x04, 0x03, 0x02, 0x01})
	if a.Sum32() != b.Sum32() {
		t.Fatalf("u32 folding differs from LSB-first byte folding: %d vs %d", a.Sum32(), b.Sum32())
	}
}

func TestDigestInt32TwosComplement(t *testing.T) {
	a := NewDigest()
	a.FoldInt32(-1)
	b := NewDigest()
	b.FoldUint32(0xffffffff)
	if a.Sum32() != b.Sum32() {
		t.Fatalf("i32 folding differs from its two's-complement u32: %d vs %d", a.Sum32(), b.Sum32())
	}
}

func TestDigestBool(t *testing.T) {
	a := NewDigest()
	a.FoldBool(true)
	b := NewDigest()
	b.Fold(1)
	if a.Sum32() != b.Sum32() {
		t.Fatal("true must fold as byte 1")
	}
	a = NewDigest()
	a.FoldBool(false)
	b = NewDigest()
	b.Fold(0)
	if a.Sum32() != b.Sum32() {
		t.Fatal("false must fold as byte 0")
	}
}
