package task

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Kind enumerates the benchmark task kinds. One canonical kernel exists per
// kind.
type Kind int

const (
	Mandelbrot Kind = iota
	JSONParse
	Base64
	MatrixMul
)

var kindNames = map[Kind]string{
	Mandelbrot: "mandelbrot",
	JSONParse:  "json_parse",
	Base64:     "base64",
	MatrixMul:  "matrix_mul",
}

// String returns the canonical task name used in vector files and reports.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFromString maps a task name back to its Kind.
func KindFromString(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown task kind %q", name)
}

// Kinds returns all task kinds in declaration order.
func Kinds() []Kind {
	return []Kind{Mandelbrot, JSONParse, Base64, MatrixMul}
}

// Resource caps. Kernels reject anything beyond these instead of looping
// unboundedly; the caps are part of the cross-implementation contract.
const (
	maxImageDimension  = 10_000
	maxTotalPixels     = 100_000_000
	maxAllocationSize  = 1_073_741_824 // 1 GiB
	maxRecordCount     = 1_000_000
	maxBase64Input     = 100_000_000
	maxMatrixDimension = 2000
	maxMatrixBytes     = 256 * 1024 * 1024 // three f32 matrices combined
)

// Params is one fixed-layout parameter record. EncodeTo and the per-kind
// decode functions define the exact wire layout; both implementations of a
// kernel must agree on every byte offset.
type Params interface {
	Kind() Kind
	Size() int
	Validate() error
	EncodeTo(buf []byte) error
}

// MandelbrotParams selects a region of the complex plane and an iteration
// budget.
//
// Wire layout (little-endian, 40 bytes):
//
//	offset  0: width       u32
//	offset  4: height      u32
//	offset  8: maxIter     u32
//	offset 12: (padding to 8-byte alignment)
//	offset 16: centerReal  f64
//	offset 24: centerImag  f64
//	offset 32: scaleFactor f64
type MandelbrotParams struct {
	Width       uint32  `json:"width"`
	Height      uint32  `json:"height"`
	MaxIter     uint32  `json:"max_iter"`
	CenterReal  float64 `json:"center_real"`
	CenterImag  float64 `json:"center_imag"`
	ScaleFactor float64 `json:"scale_factor"`
}

const mandelbrotParamSize = 40

func (MandelbrotParams) Kind() Kind { return Mandelbrot }
func (MandelbrotParams) Size() int  { return mandelbrotParamSize }

// Validate rejects dimensions outside the resource caps and non-finite or
// non-positive float parameters.
func (p MandelbrotParams) Validate() error {
	if p.Width == 0 || p.Height == 0 {
		return errors.Wrap(ErrInvalidParams, "width and height must be positive")
	}
	if p.Width > maxImageDimension || p.Height > maxImageDimension {
		return errors.Wrapf(ErrInvalidParams, "dimension exceeds cap %d", maxImageDimension)
	}
	if uint64(p.Width)*uint64(p.Height) > maxTotalPixels {
		return errors.Wrapf(ErrInvalidParams, "pixel count exceeds cap %d", maxTotalPixels)
	}
	if !isFinite(p.CenterReal) || !isFinite(p.CenterImag) || !isFinite(p.ScaleFactor) {
		return errors.Wrap(ErrInvalidParams, "float parameters must be finite")
	}
	if p.ScaleFactor <= 0 {
		return errors.Wrap(ErrInvalidParams, "scale factor must be positive")
	}
	return nil
}

// EncodeTo writes the record into buf, which must be exactly Size() bytes.
func (p MandelbrotParams) EncodeTo(buf []byte) error {
	if len(buf) != mandelbrotParamSize {
		return errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", mandelbrotParamSize, len(buf))
	}
	binary.LittleEndian.PutUint32(buf[0:], p.Width)
	binary.LittleEndian.PutUint32(buf[4:], p.Height)
	binary.LittleEndian.PutUint32(buf[8:], p.MaxIter)
	binary.LittleEndian.PutUint32(buf[12:], 0) // padding, must be zero
	binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(p.CenterReal))
	binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(p.CenterImag))
	binary.LittleEndian.PutUint64(buf[32:], math.Float64bits(p.ScaleFactor))
	return nil
}

// DecodeMandelbrotParams reads a MandelbrotParams record from buf.
func DecodeMandelbrotParams(buf []byte) (MandelbrotParams, error) {
	if len(buf) != mandelbrotParamSize {
		return MandelbrotParams{}, errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", mandelbrotParamSize, len(buf))
	}
	return MandelbrotParams{
		Width:       binary.LittleEndian.Uint32(buf[0:]),
		Height:      binary.LittleEndian.Uint32(buf[4:]),
		MaxIter:     binary.LittleEndian.Uint32(buf[8:]),
		CenterReal:  math.Float64frombits(binary.LittleEndian.Uint64(buf[16:])),
		CenterImag:  math.Float64frombits(binary.LittleEndian.Uint64(buf[24:])),
		ScaleFactor: math.Float64frombits(binary.LittleEndian.Uint64(buf[32:])),
	}, nil
}

// JSONParseParams sizes the JSON round-trip fixture.
//
// Wire layout (little-endian, 8 bytes): recordCount u32 at 0, seed u32 at 4.
type JSONParseParams struct {
	RecordCount uint32 `json:"record_count"`
	Seed        uint32 `json:"seed"`
}

const jsonParseParamSize = 8

func (JSONParseParams) Kind() Kind { return JSONParse }
func (JSONParseParams) Size() int  { return jsonParseParamSize }

func (p JSONParseParams) Validate() error {
	if p.RecordCount > maxRecordCount {
		return errors.Wrapf(ErrInvalidParams, "record count exceeds cap %d", maxRecordCount)
	}
	return nil
}

func (p JSONParseParams) EncodeTo(buf []byte) error {
	if len(buf) != jsonParseParamSize {
		return errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", jsonParseParamSize, len(buf))
	}
	binary.LittleEndian.PutUint32(buf[0:], p.RecordCount)
	binary.LittleEndian.PutUint32(buf[4:], p.Seed)
	return nil
}

// DecodeJSONParseParams reads a JSONParseParams record from buf.
func DecodeJSONParseParams(buf []byte) (JSONParseParams, error) {
	if len(buf) != jsonParseParamSize {
		return JSONParseParams{}, errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", jsonParseParamSize, len(buf))
	}
	return JSONParseParams{
		RecordCount: binary.LittleEndian.Uint32(buf[0:]),
		Seed:        binary.LittleEndian.Uint32(buf[4:]),
	}, nil
}

// Base64Params sizes the Base64 round-trip fixture.
//
// Wire layout (little-endian, 8 bytes): inputBytes u32 at 0, seed u32 at 4.
type Base64Params struct {
	InputBytes uint32 `json:"input_bytes"`
	Seed       uint32 `json:"seed"`
}

const base64ParamSize = 8

func (Base64Params) Kind() Kind { return Base64 }
func (Base64Params) Size() int  { return base64ParamSize }

func (p Base64Params) Validate() error {
	if p.InputBytes > maxBase64Input {
		return errors.Wrapf(ErrInvalidParams, "input size exceeds cap %d", maxBase64Input)
	}
	return nil
}

func (p Base64Params) EncodeTo(buf []byte) error {
	if len(buf) != base64ParamSize {
		return errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", base64ParamSize, len(buf))
	}
	binary.LittleEndian.PutUint32(buf[0:], p.InputBytes)
	binary.LittleEndian.PutUint32(buf[4:], p.Seed)
	return nil
}

// DecodeBase64Params reads a Base64Params record from buf.
func DecodeBase64Params(buf []byte) (Base64Params, error) {
	if len(buf) != base64ParamSize {
		return Base64Params{}, errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", base64ParamSize, len(buf))
	}
	return Base64Params{
		InputBytes: binary.LittleEndian.Uint32(buf[0:]),
		Seed:       binary.LittleEndian.Uint32(buf[4:]),
	}, nil
}

// MatrixMulParams sizes the square matrices for the multiply task.
//
// Wire layout (little-endian, 8 bytes): dimension u32 at 0, seed u32 at 4.
type MatrixMulParams struct {
	Dimension uint32 `json:"dimension"`
	Seed      uint32 `json:"seed"`
}

const matrixMulParamSize = 8

func (MatrixMulParams) Kind() Kind { return MatrixMul }
func (MatrixMulParams) Size() int  { return matrixMulParamSize }

func (p MatrixMulParams) Validate() error {
	if p.Dimension == 0 {
		return errors.Wrap(ErrInvalidParams, "dimension must be positive")
	}
	if p.Dimension > maxMatrixDimension {
		return errors.Wrapf(ErrInvalidParams, "dimension exceeds cap %d", maxMatrixDimension)
	}
	elements := uint64(p.Dimension) * uint64(p.Dimension)
	if elements*4*3 > maxMatrixBytes {
		return errors.Wrapf(ErrInvalidParams, "matrices exceed %d byte budget", maxMatrixBytes)
	}
	return nil
}

func (p MatrixMulParams) EncodeTo(buf []byte) error {
	if len(buf) != matrixMulParamSize {
		return errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", matrixMulParamSize, len(buf))
	}
	binary.LittleEndian.PutUint32(buf[0:], p.Dimension)
	binary.LittleEndian.PutUint32(buf[4:], p.Seed)
	return nil
}

// DecodeMatrixMulParams reads a MatrixMulParams record from buf.
func DecodeMatrixMulParams(buf []byte) (MatrixMulParams, error) {
	if len(buf) != matrixMulParamSize {
		return MatrixMulParams{}, errors.Wrapf(ErrBufferSize, "need %d bytes, have %d", matrixMulParamSize, len(buf))
	}
	return MatrixMulParams{
		Dimension: binary.LittleEndian.Uint32(buf[0:]),
		Seed:      binary.LittleEndian.Uint32(buf[4:]),
	}, nil
}

// EncodeParams serializes any params record into a fresh buffer.
func EncodeParams(p Params) ([]byte, error) {
	buf := make([]byte, p.Size())
	if err := p.EncodeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// DecodeParams deserializes a params record of the given kind.
func DecodeParams(k Kind, buf []byte) (Params, error) {
	switch k {
	case Mandelbrot:
		return DecodeMandelbrotParams(buf)
	case JSONParse:
		return DecodeJSONParseParams(buf)
	case Base64:
		return DecodeBase64Params(buf)
	case MatrixMul:
		return DecodeMatrixMulParams(buf)
	default:
		return nil, errors.Errorf("unknown task kind %d", k)
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
