package validator

import (
	"github.com/pkg/errors"

	"wasmbench/internal/task"
)

// CheckLayout writes a known parameter record into a raw buffer and reads it
// back field by field. A hash mismatch proves divergence somewhere; this
// check localizes struct padding, alignment and endianness problems that the
// hash comparison cannot.
func CheckLayout(kind task.Kind) error {
	switch kind {
	case task.Mandelbrot:
		return checkMandelbrotLayout()
	case task.JSONParse:
		original := task.JSONParseParams{RecordCount: 4096, Seed: 0xdeadbeef}
		return roundTrip(original, func(buf []byte) (task.Params, error) {
			return task.DecodeJSONParseParams(buf)
		})
	case task.Base64:
		original := task.Base64Params{InputBytes: 65535, Seed: 0xcafebabe}
		return roundTrip(original, func(buf []byte) (task.Params, error) {
			return task.DecodeBase64Params(buf)
		})
	case task.MatrixMul:
		original := task.MatrixMulParams{Dimension: 1999, Seed: 0x12345678}
		return roundTrip(original, func(buf []byte) (task.Params, error) {
			return task.DecodeMatrixMulParams(buf)
		})
	default:
		return errors.Errorf("unknown task kind %d", kind)
	}
}

func checkMandelbrotLayout() error {
	original := task.MandelbrotParams{
		Width:       100,
		Height:      200,
		MaxIter:     1000,
		CenterReal:  -0.5,
		CenterImag:  0.25,
		ScaleFactor: 2.0,
	}
	buf, err := task.EncodeParams(original)
	if err != nil {
		return err
	}
	parsed, err := task.DecodeMandelbrotParams(buf)
	if err != nil {
		return err
	}
	// Field-by-field so a single misaligned field names itself.
	switch {
	case parsed.Width != original.Width:
		return errors.Errorf("width: expected %d, got %d", original.Width, parsed.Width)
	case parsed.Height != original.Height:
		return errors.Errorf("height: expected %d, got %d", original.Height, parsed.Height)
	case parsed.MaxIter != original.MaxIter:
		return errors.Errorf("maxIter: expected %d, got %d", original.MaxIter, parsed.MaxIter)
	case parsed.CenterReal != original.CenterReal:
		return errors.Errorf("centerReal: expected %g, got %g", original.CenterReal, parsed.CenterReal)
	case parsed.CenterImag != original.CenterImag:
		return errors.Errorf("centerImag: expected %g, got %g", original.CenterImag, parsed.CenterImag)
	case parsed.ScaleFactor != original.ScaleFactor:
		return errors.Errorf("scaleFactor: expected %g, got %g", original.ScaleFactor, parsed.ScaleFactor)
	}
	return nil
}

func roundTrip(original task.Params, decode func([]byte) (task.Params, error)) error {
	buf, err := task.EncodeParams(original)
	if err != nil {
		return err
	}
	parsed, err := decode(buf)
	if err != nil {
		return err
	}
	if parsed != original {
		return errors.Errorf("layout round trip changed %s params: %+v -> %+v", original.Kind(), original, parsed)
	}
	return nil
}
