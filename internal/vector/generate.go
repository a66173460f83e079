package vector

import (
	"fmt"

	"wasmbench/internal/task"
)

// Generate builds the reference corpus for one task from the native kernel:
// a systematic sweep over the parameter space plus the edge cases both
// implementations must agree on. Expected hashes come from running the
// kernel itself, so a generated corpus pins the current behavior for the
// other implementation to match.
func Generate(kind task.Kind) ([]Vector, error) {
	var vectors []Vector
	switch kind {
	case task.Mandelbrot:
		vectors = mandelbrotVectors()
	case task.JSONParse:
		vectors = jsonParseVectors()
	case task.Base64:
		vectors = base64Vectors()
	case task.MatrixMul:
		vectors = matrixMulVectors()
	default:
		return nil, fmt.Errorf("unknown task kind %d", kind)
	}

	kernel := task.ForKind(kind)
	for i := range vectors {
		hash, err := kernel.Run(vectors[i].Params)
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", vectors[i].Name, err)
		}
		vectors[i].ExpectedHash = hash
	}
	return vectors, nil
}

func mandelbrotVectors() []Vector {
	sizes := [][2]uint32{{2, 2}, {4, 4}, {10, 10}, {50, 50}, {100, 100}}
	iterations := []uint32{10, 100, 1000}
	centers := [][2]float64{{0, 0}, {-0.5, 0}, {-0.75, 0.1}, {0.25, 0.5}}

	var vectors []Vector
	for _, size := range sizes {
		for _, iter := range iterations {
			for _, center := range centers {
				p := task.MandelbrotParams{
					Width:       size[0],
					Height:      size[1],
					MaxIter:     iter,
					CenterReal:  center[0],
					CenterImag:  center[1],
					ScaleFactor: 4.0,
				}
				vectors = append(vectors, Vector{
					Name:        fmt.Sprintf("sys_%dx%d_iter%d_c%g_%g", size[0], size[1], iter, center[0], center[1]),
					Description: fmt.Sprintf("%dx%d grid, %d iterations, center (%g, %g)", size[0], size[1], iter, center[0], center[1]),
					Category:    "systematic",
					Params:      p,
				})
			}
		}
	}

	edges := []struct {
		name, desc string
		params     task.MandelbrotParams
	}{
		{"edge_single_pixel", "1x1 grid", task.MandelbrotParams{Width: 1, Height: 1, MaxIter: 100, ScaleFactor: 4.0}},
		{"edge_zero_iterations", "maxIter 0, every pixel counts 0", task.MandelbrotParams{Width: 8, Height: 8, MaxIter: 0, ScaleFactor: 4.0}},
		{"edge_deep_zoom", "tiny scale factor deep inside the set", task.MandelbrotParams{Width: 16, Height: 16, MaxIter: 500, CenterReal: -0.7436, CenterImag: 0.1318, ScaleFactor: 1e-6}},
		{"edge_asymmetric", "non-square grid", task.MandelbrotParams{Width: 64, Height: 8, MaxIter: 100, CenterReal: -0.5, ScaleFactor: 3.0}},
	}
	for _, e := range edges {
		vectors = append(vectors, Vector{Name: e.name, Description: e.desc, Category: "edge_case", Params: e.params})
	}
	return vectors
}

func jsonParseVectors() []Vector {
	counts := []uint32{0, 1, 10, 100, 1000}
	seeds := []uint32{0, 1, 12345}

	var vectors []Vector
	for _, count := range counts {
		for _, seed := range seeds {
			category := "systematic"
			if count == 0 {
				category = "edge_case"
			}
			vectors = append(vectors, Vector{
				Name:        fmt.Sprintf("sys_n%d_seed%d", count, seed),
				Description: fmt.Sprintf("%d records, seed %d", count, seed),
				Category:    category,
				Params:      task.JSONParseParams{RecordCount: count, Seed: seed},
			})
		}
	}
	return vectors
}

func base64Vectors() []Vector {
	// 1..5 bytes cover every padding remainder twice.
	sizes := []uint32{0, 1, 2, 3, 4, 5, 64, 1000, 65536}
	seeds := []uint32{0, 42}

	var vectors []Vector
	for _, size := range sizes {
		for _, seed := range seeds {
			category := "systematic"
			if size <= 5 {
				category = "edge_case"
			}
			vectors = append(vectors, Vector{
				Name:        fmt.Sprintf("sys_bytes%d_seed%d", size, seed),
				Description: fmt.Sprintf("%d input bytes, seed %d", size, seed),
				Category:    category,
				Params:      task.Base64Params{InputBytes: size, Seed: seed},
			})
		}
	}
	return vectors
}

func matrixMulVectors() []Vector {
	dims := []uint32{1, 2, 4, 8, 16, 32, 64}
	seeds := []uint32{0, 7}

	var vectors []Vector
	for _, dim := range dims {
		for _, seed := range seeds {
			category := "systematic"
			if dim == 1 {
				category = "edge_case"
			}
			vectors = append(vectors, Vector{
				Name:        fmt.Sprintf("sys_dim%d_seed%d", dim, seed),
				Description: fmt.Sprintf("%dx%d matrices, seed %d", dim, dim, seed),
				Category:    category,
				Params:      task.MatrixMulParams{Dimension: dim, Seed: seed},
			})
		}
	}
	return vectors
}
