// Package validator replays reference-vector corpora against the native
// kernels and reports parity or divergence with an independently built
// implementation of the same contract.
package validator

import (
	"sort"

	"github.com/pkg/errors"

	"wasmbench/internal/task"
	"wasmbench/internal/util"
	"wasmbench/internal/vector"
)

// State tracks a validation run. Transitions only move forward:
// Pending -> Evaluated -> Reported.
type State int

const (
	Pending State = iota
	Evaluated
	Reported
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Evaluated:
		return "evaluated"
	case Reported:
		return "reported"
	default:
		return "unknown"
	}
}

// Failure captures the first divergent vector for diagnostics.
type Failure struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Expected    uint32 `json:"expected"`
	Actual      uint32 `json:"actual"`
	Diff        int64  `json:"diff"`
}

// CategoryResult aggregates pass/fail counts for one vector category.
type CategoryResult struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Report is the aggregated outcome of one corpus replay.
type Report struct {
	Task         string                    `json:"task"`
	Total        int                       `json:"total"`
	Passed       int                       `json:"passed"`
	Failed       int                       `json:"failed"`
	Categories   map[string]CategoryResult `json:"categories"`
	FirstFailure *Failure                  `json:"first_failure,omitempty"`
	LayoutOK     bool                      `json:"layout_ok"`
	LayoutError  string                    `json:"layout_error,omitempty"`
}

// OK reports whether every vector passed and the layout check held.
func (r Report) OK() bool {
	return r.Failed == 0 && r.LayoutOK
}

// Validator replays one task's corpus through the kernel's ABI surface.
// A single vector failure never aborts the run; everything is aggregated
// into the report so the caller decides whether the run is fatal.
type Validator struct {
	kernel  task.Kernel
	vectors []vector.Vector
	state   State
	report  Report
}

// New builds a validator for a kernel and its ordered corpus.
func New(kernel task.Kernel, vectors []vector.Vector) *Validator {
	return &Validator{
		kernel:  kernel,
		vectors: vectors,
		state:   Pending,
		report:  Report{Task: kernel.Name(), Categories: make(map[string]CategoryResult)},
	}
}

// State returns the current run state.
func (v *Validator) State() State {
	return v.state
}

// Evaluate replays every vector once and aggregates the results. It is only
// legal in the Pending state.
func (v *Validator) Evaluate() (Report, error) {
	if v.state != Pending {
		return Report{}, errors.Errorf("evaluate in state %s", v.state)
	}

	module := task.NewModule(v.kernel)
	module.Init(0)
	for _, vec := range v.vectors {
		actual := replay(module, vec)
		passed := actual == vec.ExpectedHash

		category := vec.Category
		if category == "" {
			category = "uncategorized"
		}
		result := v.report.Categories[category]
		v.report.Total++
		if passed {
			v.report.Passed++
			result.Passed++
		} else {
			v.report.Failed++
			result.Failed++
			if v.report.FirstFailure == nil {
				v.report.FirstFailure = &Failure{
					Name:        vec.Name,
					Description: vec.Description,
					Category:    category,
					Expected:    vec.ExpectedHash,
					Actual:      actual,
					Diff:        int64(actual) - int64(vec.ExpectedHash),
				}
			}
		}
		v.report.Categories[category] = result
	}

	if err := CheckLayout(v.kernel.Kind()); err != nil {
		v.report.LayoutOK = false
		v.report.LayoutError = err.Error()
	} else {
		v.report.LayoutOK = true
	}

	v.state = Evaluated
	return v.report, nil
}

// replay pushes one vector through alloc/write/run. Parameter encode
// failures surface as the sentinel hash 0, same as on the wire.
func replay(module *task.Module, vec vector.Vector) uint32 {
	h := module.Alloc(uint32(vec.Params.Size()))
	if h == 0 {
		return 0
	}
	defer module.Free(h)
	buf, err := module.Buffer(h)
	if err != nil {
		return 0
	}
	if err := vec.Params.EncodeTo(buf); err != nil {
		return 0
	}
	return module.RunTask(h)
}

// Emit logs the aggregated report and moves to the terminal Reported state.
// It is only legal in the Evaluated state.
func (v *Validator) Emit() error {
	if v.state != Evaluated {
		return errors.Errorf("emit in state %s", v.state)
	}

	categories := make([]string, 0, len(v.report.Categories))
	for name := range v.report.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		result := v.report.Categories[name]
		util.Infof("%s/%s: %d passed, %d failed", v.report.Task, name, result.Passed, result.Failed)
	}
	if !v.report.LayoutOK {
		util.Errorf("%s: parameter layout check failed: %s", v.report.Task, v.report.LayoutError)
	}
	if f := v.report.FirstFailure; f != nil {
		util.Errorf("%s: %d/%d vectors diverged; first: %s (%s) expected %d got %d (diff %+d)",
			v.report.Task, v.report.Failed, v.report.Total, f.Name, f.Description, f.Expected, f.Actual, f.Diff)
	} else {
		util.Infof("%s: all %d vectors passed", v.report.Task, v.report.Total)
	}

	v.state = Reported
	return nil
}
