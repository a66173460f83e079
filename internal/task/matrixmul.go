package task

import (
	"math"

	"github.com/pkg/errors"

	"wasmbench/internal/gen"
)

// Matrix cells are rounded to six decimal places before hashing so both
// implementations agree despite accumulated f32 noise.
const matrixPrecisionMultiplier = 1e6

type matrixMulKernel struct{}

func (matrixMulKernel) Kind() Kind   { return MatrixMul }
func (matrixMulKernel) Name() string { return MatrixMul.String() }

// Run fills two NxN matrices from a single continuing stream, multiplies
// them with the naive i,j,k loop order and hashes the result in row-major
// order. The loop order is part of the contract: reassociating the f32 sums
// changes the rounded cells.
func (k matrixMulKernel) Run(p Params) (uint32, error) {
	mp, ok := p.(MatrixMulParams)
	if !ok {
		return 0, errors.Wrapf(ErrKindMismatch, "got %s", p.Kind())
	}
	if err := mp.Validate(); err != nil {
		return 0, err
	}

	n := int(mp.Dimension)
	s := gen.New(mp.Seed)
	a := randomMatrix(n, s)
	b := randomMatrix(n, s)

	c := make([]float32, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for kk := 0; kk < n; kk++ {
				c[i*n+j] += a[i*n+kk] * b[kk*n+j]
			}
		}
	}

	d := NewDigest()
	for _, v := range c {
		d.FoldInt32(roundedCell(v))
	}
	return d.Sum32(), nil
}

func randomMatrix(n int, s *gen.Stream) []float32 {
	m := make([]float32, n*n)
	for i := range m {
		m[i] = gen.Float32(s.Next(), -1.0, 1.0)
	}
	return m
}

func roundedCell(v float32) int32 {
	return int32(math.Round(float64(v) * matrixPrecisionMultiplier))
}
