package task

import "github.com/pkg/errors"

// Escape threshold on |z|^2.
const divergenceThreshold = 4.0

type mandelbrotKernel struct{}

func (mandelbrotKernel) Kind() Kind   { return Mandelbrot }
func (mandelbrotKernel) Name() string { return Mandelbrot.String() }

// Run iterates z <- z^2 + c for every pixel of the requested grid and hashes
// the per-pixel iteration counts in row-major order.
func (k mandelbrotKernel) Run(p Params) (uint32, error) {
	mp, ok := p.(MandelbrotParams)
	if !ok {
		return 0, errors.Wrapf(ErrKindMismatch, "got %s", p.Kind())
	}
	if err := mp.Validate(); err != nil {
		return 0, err
	}

	d := NewDigest()
	for y := uint32(0); y < mp.Height; y++ {
		for x := uint32(0); x < mp.Width; x++ {
			xNorm := float64(x)/float64(mp.Width) - 0.5
			yNorm := float64(y)/float64(mp.Height) - 0.5
			cReal := mp.CenterReal + xNorm*mp.ScaleFactor
			cImag := mp.CenterImag + yNorm*mp.ScaleFactor
			d.FoldUint32(escapeIterations(cReal, cImag, mp.MaxIter))
		}
	}
	return d.Sum32(), nil
}

func escapeIterations(cReal, cImag float64, maxIter uint32) uint32 {
	var zReal, zImag float64
	var iterations uint32
	for iterations < maxIter {
		if zReal*zReal+zImag*zImag > divergenceThreshold {
			break
		}
		zReal, zImag = zReal*zReal-zImag*zImag+cReal, 2*zReal*zImag+cImag
		iterations++
	}
	return iterations
}
