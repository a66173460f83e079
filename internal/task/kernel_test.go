package task

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"wasmbench/internal/gen"
)

func TestKernelDeterminism(t *testing.T) {
	cases := []Params{
		MandelbrotParams{Width: 16, Height: 16, MaxIter: 100, CenterReal: -0.5, CenterImag: 0.0, ScaleFactor: 4.0},
		JSONParseParams{RecordCount: 100, Seed: 12345},
		Base64Params{InputBytes: 257, Seed: 12345},
		MatrixMulParams{Dimension: 8, Seed: 12345},
	}
	for _, p := range cases {
		k := ForKind(p.Kind())
		first, err := k.Run(p)
		if err != nil {
			t.Fatalf("%s: %v", k.Name(), err)
		}
		second, err := k.Run(p)
		if err != nil {
			t.Fatalf("%s: %v", k.Name(), err)
		}
		if first != second {
			t.Fatalf("%s: identical params hashed to %d then %d", k.Name(), first, second)
		}
	}
}

func TestKernelSeedSensitivity(t *testing.T) {
	a, err := ForKind(JSONParse).Run(JSONParseParams{RecordCount: 50, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := ForKind(JSONParse).Run(JSONParseParams{RecordCount: 50, Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("different seeds produced identical hashes")
	}
}

func TestKernelKindMismatch(t *testing.T) {
	_, err := ForKind(Mandelbrot).Run(Base64Params{InputBytes: 1, Seed: 1})
	if !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestMandelbrotZeroIterations(t *testing.T) {
	// maxIter 0 is a valid edge case: every pixel escapes at count 0.
	p := MandelbrotParams{Width: 2, Height: 2, MaxIter: 0, CenterReal: 0, CenterImag: 0, ScaleFactor: 4.0}
	hash, err := ForKind(Mandelbrot).Run(p)
	if err != nil {
		t.Fatal(err)
	}
	d := NewDigest()
	for i := 0; i < 4; i++ {
		d.FoldUint32(0)
	}
	if hash != d.Sum32() {
		t.Fatalf("hash = %d, want %d (four zero counts)", hash, d.Sum32())
	}
}

func TestMandelbrotRejectsInvalid(t *testing.T) {
	p := MandelbrotParams{Width: 0, Height: 2, MaxIter: 10, ScaleFactor: 1.0}
	if _, err := ForKind(Mandelbrot).Run(p); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestJSONSerializeEmpty(t *testing.T) {
	if got := serializeRecords(nil); got != "[]" {
		t.Fatalf("serialize(nil) = %q, want %q", got, "[]")
	}
}

func TestJSONSerializeCompactFixedOrder(t *testing.T) {
	records := []gen.Record{{ID: 1, Value: -7, Flag: false, Name: "a1"}}
	want := `[{"id":1,"value":-7,"flag":false,"name":"a1"}]`
	if got := serializeRecords(records); got != want {
		t.Fatalf("serialize = %q, want %q", got, want)
	}
}

func TestJSONParseRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 10, 100} {
		records := gen.Records(n, 77)
		parsed, err := parseRecords(serializeRecords(records))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(parsed) != len(records) {
			t.Fatalf("n=%d: parsed %d records, want %d", n, len(parsed), n)
		}
		for i := range records {
			if parsed[i] != records[i] {
				t.Fatalf("n=%d: record %d changed: %+v vs %+v", n, i, parsed[i], records[i])
			}
		}
	}
}

func TestJSONParserAcceptsWhitespace(t *testing.T) {
	input := " [ {\"id\":1,\"value\":2,\"flag\":true,\"name\":\"a1\"} ] "
	parsed, err := parseRecords(input)
	if err != nil {
		t.Fatalf("whitespace between tokens should be accepted: %v", err)
	}
	if len(parsed) != 1 || parsed[0].ID != 1 {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}
}

func TestJSONParserEscapes(t *testing.T) {
	input := `[{"id":1,"value":2,"flag":true,"name":"a\n\t\"b\\"}]`
	parsed, err := parseRecords(input)
	if err != nil {
		t.Fatal(err)
	}
	if parsed[0].Name != "a\n\t\"b\\" {
		t.Fatalf("escapes decoded to %q", parsed[0].Name)
	}
}

func TestJSONParserRejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"not an array", `{"id":1}`},
		{"unknown field", `[{"id":1,"value":2,"flag":true,"name":"a1","extra":0}]`},
		{"duplicate field", `[{"id":1,"id":2,"value":2,"flag":true,"name":"a1"}]`},
		{"missing field", `[{"id":1,"value":2,"flag":true}]`},
		{"invalid escape", `[{"id":1,"value":2,"flag":true,"name":"a\x"}]`},
		{"bad boolean", `[{"id":1,"value":2,"flag":yes,"name":"a1"}]`},
		{"bad number", `[{"id":-,"value":2,"flag":true,"name":"a1"}]`},
		{"unterminated string", `[{"id":1,"value":2,"flag":true,"name":"a1}]`},
		{"unterminated array", `[{"id":1,"value":2,"flag":true,"name":"a1"}`},
		{"trailing garbage separator", `[{"id":1,"value":2,"flag":true,"name":"a1"};]`},
		{"number overflow", `[{"id":1,"value":99999999999,"flag":true,"name":"a1"}]`},
	}
	for _, c := range cases {
		if _, err := parseRecords(c.input); err == nil {
			t.Fatalf("%s: expected parse error", c.name)
		}
	}
}

func TestJSONKernelEmptyCount(t *testing.T) {
	// Zero records round-trip through "[]" and hash to the offset basis.
	hash, err := ForKind(JSONParse).Run(JSONParseParams{RecordCount: 0, Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	if hash != 2166136261 {
		t.Fatalf("hash = %d, want offset basis 2166136261", hash)
	}
}

func TestBase64KernelEmptyInput(t *testing.T) {
	hash, err := ForKind(Base64).Run(Base64Params{InputBytes: 0, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if hash != 2166136261 {
		t.Fatalf("hash = %d, want offset basis 2166136261", hash)
	}
}

func TestBase64KernelPaddingSizes(t *testing.T) {
	// 1, 2 and 3 input bytes exercise the ==, = and no-padding cases.
	for _, n := range []uint32{1, 2, 3, 4, 5, 6} {
		input := gen.Bytes(int(n), 9)
		encoded := base64.StdEncoding.EncodeToString(input)
		hash, err := ForKind(Base64).Run(Base64Params{InputBytes: n, Seed: 9})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		d := NewDigest()
		d.FoldBytes([]byte(encoded))
		d.FoldBytes(input)
		if hash != d.Sum32() {
			t.Fatalf("n=%d: hash = %d, want %d", n, hash, d.Sum32())
		}
		switch n % 3 {
		case 1:
			if !strings.HasSuffix(encoded, "==") {
				t.Fatalf("n=%d: expected double padding, got %q", n, encoded)
			}
		case 2:
			if !strings.HasSuffix(encoded, "=") || strings.HasSuffix(encoded, "==") {
				t.Fatalf("n=%d: expected single padding, got %q", n, encoded)
			}
		default:
			if strings.HasSuffix(encoded, "=") {
				t.Fatalf("n=%d: expected no padding, got %q", n, encoded)
			}
		}
	}
}

func TestMatrixMulIdentityHashStable(t *testing.T) {
	a, err := ForKind(MatrixMul).Run(MatrixMulParams{Dimension: 4, Seed: 11})
	if err != nil {
		t.Fatal(err)
	}
	b, err := ForKind(MatrixMul).Run(MatrixMulParams{Dimension: 4, Seed: 11})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("matrix hashes diverged: %d vs %d", a, b)
	}
	c, err := ForKind(MatrixMul).Run(MatrixMulParams{Dimension: 4, Seed: 12})
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatal("different seeds produced identical matrix hashes")
	}
}
