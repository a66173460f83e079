// Package vector loads and generates the reference-vector corpora used for
// cross-implementation validation. A corpus is a JSON array of named
// parameter sets with the hash the reference implementation produced for
// each; it is read-only to the validator.
package vector

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"wasmbench/internal/task"
)

// ErrEmptyCorpus marks a vector file with no vectors in it.
var ErrEmptyCorpus = errors.New("vector corpus is empty")

// Vector is one immutable reference fixture: parameters plus the hash the
// reference implementation computed for them.
type Vector struct {
	Name         string
	Description  string
	Category     string
	Params       task.Params
	ExpectedHash uint32
}

// rawVector matches the on-disk JSON shape shared with the reference
// implementation's exporter.
type rawVector struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Params       json.RawMessage `json:"params"`
	ExpectedHash uint32          `json:"expected_hash"`
	Category     string          `json:"category"`
}

// Load reads and validates one task's corpus file.
func Load(kind task.Kind, path string) ([]Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read corpus %s", path)
	}
	vectors, err := Parse(kind, data)
	if err != nil {
		return nil, errors.Wrapf(err, "corpus %s", path)
	}
	return vectors, nil
}

// Parse decodes a corpus from raw JSON. Every vector must carry a non-empty
// name and parameters that satisfy the task's own validity invariants.
func Parse(kind task.Kind, data []byte) ([]Vector, error) {
	var raw []rawVector
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse corpus")
	}
	if len(raw) == 0 {
		return nil, ErrEmptyCorpus
	}
	vectors := make([]Vector, 0, len(raw))
	for i, rv := range raw {
		if rv.Name == "" {
			return nil, errors.Errorf("vector %d has no name", i)
		}
		params, err := decodeParams(kind, rv.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "vector %d (%s)", i, rv.Name)
		}
		if err := params.Validate(); err != nil {
			return nil, errors.Wrapf(err, "vector %d (%s)", i, rv.Name)
		}
		vectors = append(vectors, Vector{
			Name:         rv.Name,
			Description:  rv.Description,
			Category:     rv.Category,
			Params:       params,
			ExpectedHash: rv.ExpectedHash,
		})
	}
	return vectors, nil
}

func decodeParams(kind task.Kind, data json.RawMessage) (task.Params, error) {
	switch kind {
	case task.Mandelbrot:
		var p task.MandelbrotParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case task.JSONParse:
		var p task.JSONParseParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case task.Base64:
		var p task.Base64Params
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case task.MatrixMul:
		var p task.MatrixMulParams
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Errorf("unknown task kind %d", kind)
	}
}

// Marshal serializes a corpus back to the on-disk JSON shape.
func Marshal(vectors []Vector) ([]byte, error) {
	raw := make([]rawVector, 0, len(vectors))
	for _, v := range vectors {
		params, err := json.Marshal(v.Params)
		if err != nil {
			return nil, errors.Wrapf(err, "vector %s", v.Name)
		}
		raw = append(raw, rawVector{
			Name:         v.Name,
			Description:  v.Description,
			Params:       params,
			ExpectedHash: v.ExpectedHash,
			Category:     v.Category,
		})
	}
	return json.MarshalIndent(raw, "", "  ")
}
