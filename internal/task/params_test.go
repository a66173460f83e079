package task

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/pkg/errors"
)

func validMandelbrot() MandelbrotParams {
	return MandelbrotParams{
		Width:       100,
		Height:      200,
		MaxIter:     1000,
		CenterReal:  -0.5,
		CenterImag:  0.25,
		ScaleFactor: 2.0,
	}
}

func TestMandelbrotParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MandelbrotParams)
		ok     bool
	}{
		{"valid", func(*MandelbrotParams) {}, true},
		{"zero width", func(p *MandelbrotParams) { p.Width = 0 }, false},
		{"zero height", func(p *MandelbrotParams) { p.Height = 0 }, false},
		{"width over cap", func(p *MandelbrotParams) { p.Width = 10_001 }, false},
		{"pixel count over cap", func(p *MandelbrotParams) { p.Width = 10_000; p.Height = 10_000 + 1 }, false},
		{"nan center", func(p *MandelbrotParams) { p.CenterReal = math.NaN() }, false},
		{"inf scale", func(p *MandelbrotParams) { p.ScaleFactor = math.Inf(1) }, false},
		{"zero scale", func(p *MandelbrotParams) { p.ScaleFactor = 0 }, false},
		{"negative scale", func(p *MandelbrotParams) { p.ScaleFactor = -1.5 }, false},
		{"zero max iter allowed", func(p *MandelbrotParams) { p.MaxIter = 0 }, true},
	}
	for _, c := range cases {
		p := validMandelbrot()
		c.mutate(&p)
		err := p.Validate()
		if c.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("%s: expected validation error", c.name)
			}
			if !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("%s: error does not wrap ErrInvalidParams: %v", c.name, err)
			}
		}
	}
}

func TestMandelbrotLayoutOffsets(t *testing.T) {
	p := validMandelbrot()
	buf, err := EncodeParams(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(buf) != 40 {
		t.Fatalf("encoded size = %d, want 40", len(buf))
	}
	// Documented byte offsets: u32 at 0/4/8, pad at 12, f64 at 16/24/32.
	if got := binary.LittleEndian.Uint32(buf[0:]); got != p.Width {
		t.Fatalf("width at offset 0 = %d, want %d", got, p.Width)
	}
	if got := binary.LittleEndian.Uint32(buf[4:]); got != p.Height {
		t.Fatalf("height at offset 4 = %d, want %d", got, p.Height)
	}
	if got := binary.LittleEndian.Uint32(buf[8:]); got != p.MaxIter {
		t.Fatalf("maxIter at offset 8 = %d, want %d", got, p.MaxIter)
	}
	if got := binary.LittleEndian.Uint32(buf[12:]); got != 0 {
		t.Fatalf("padding at offset 12 = %d, want 0", got)
	}
	if got := math.Float64frombits(binary.LittleEndian.Uint64(buf[16:])); got != p.CenterReal {
		t.Fatalf("centerReal at offset 16 = %f, want %f", got, p.CenterReal)
	}
	if got := math.Float64frombits(binary.LittleEndian.Uint64(buf[24:])); got != p.CenterImag {
		t.Fatalf("centerImag at offset 24 = %f, want %f", got, p.CenterImag)
	}
	if got := math.Float64frombits(binary.LittleEndian.Uint64(buf[32:])); got != p.ScaleFactor {
		t.Fatalf("scaleFactor at offset 32 = %f, want %f", got, p.ScaleFactor)
	}
}

func TestParamsRoundTripAllKinds(t *testing.T) {
	cases := []Params{
		validMandelbrot(),
		JSONParseParams{RecordCount: 500, Seed: 42},
		Base64Params{InputBytes: 1024, Seed: 7},
		MatrixMulParams{Dimension: 64, Seed: 99},
	}
	for _, p := range cases {
		buf, err := EncodeParams(p)
		if err != nil {
			t.Fatalf("%s: encode: %v", p.Kind(), err)
		}
		decoded, err := DecodeParams(p.Kind(), buf)
		if err != nil {
			t.Fatalf("%s: decode: %v", p.Kind(), err)
		}
		if decoded != p {
			t.Fatalf("%s: round trip changed params: %+v vs %+v", p.Kind(), decoded, p)
		}
	}
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	for _, k := range Kinds() {
		if _, err := DecodeParams(k, make([]byte, 3)); !errors.Is(err, ErrBufferSize) {
			t.Fatalf("%s: short buffer should fail with ErrBufferSize, got %v", k, err)
		}
	}
}

func TestMatrixMulParamsValidate(t *testing.T) {
	if err := (MatrixMulParams{Dimension: 0, Seed: 1}).Validate(); err == nil {
		t.Fatal("zero dimension should be rejected")
	}
	if err := (MatrixMulParams{Dimension: 2001, Seed: 1}).Validate(); err == nil {
		t.Fatal("dimension over cap should be rejected")
	}
	if err := (MatrixMulParams{Dimension: 2000, Seed: 1}).Validate(); err != nil {
		t.Fatalf("dimension at cap should be accepted: %v", err)
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		got, err := KindFromString(k.String())
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if got != k {
			t.Fatalf("round trip %s -> %s", k, got)
		}
	}
	if _, err := KindFromString("array_sort"); err == nil {
		t.Fatal("unknown kind should be rejected")
	}
}
