package task

import (
	"bytes"
	"encoding/base64"

	"github.com/pkg/errors"

	"wasmbench/internal/gen"
)

type base64Kernel struct{}

func (base64Kernel) Kind() Kind   { return Base64 }
func (base64Kernel) Name() string { return Base64.String() }

// Run generates the pseudo-random input, encodes it with the RFC 4648
// standard alphabet, decodes it back and verifies the round trip. Both the
// encoded string and the decoded bytes feed one digest, encoded string first.
func (k base64Kernel) Run(p Params) (uint32, error) {
	bp, ok := p.(Base64Params)
	if !ok {
		return 0, errors.Wrapf(ErrKindMismatch, "got %s", p.Kind())
	}
	if err := bp.Validate(); err != nil {
		return 0, err
	}

	input := gen.Bytes(int(bp.InputBytes), bp.Seed)
	encoded := base64.StdEncoding.EncodeToString(input)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, errors.Wrap(err, "decode failed")
	}
	if !bytes.Equal(decoded, input) {
		return 0, errors.Wrap(ErrRoundTrip, "decoded bytes differ from input")
	}

	d := NewDigest()
	d.FoldBytes([]byte(encoded))
	d.FoldBytes(decoded)
	return d.Sum32(), nil
}
