package registry

import (
	"context"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nastranwrap/internal/bdf"
	"github.com/specialistvlad/nastranwrap/internal/results"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// OutputFunc extracts one scalar from the results of a solver run. args are
// the `args` attributes of the output block.
type OutputFunc func(res *results.Results, args map[string]cty.Value) (cty.Value, error)

// Run is the state of one evaluation as seen by model hooks. Results is nil
// while the deck is being updated.
type Run struct {
	Dir     string
	Deck    *bdf.Deck
	Results *results.Results
	Inputs  map[string]cty.Value
	Outputs map[string]cty.Value
}

// Model holds the Go parts of a component that cannot be declared in a
// manifest.
type Model interface {
	// UpdateDeck is called after the inputs were applied and before the
	// deck is written.
	UpdateDeck(ctx context.Context, run *Run) error
	// PostProcess is called after all declared extractions and may set any
	// output.
	PostProcess(ctx context.Context, run *Run) error
}

// Hooks adapts plain functions to Model. Nil functions are no-ops.
type Hooks struct {
	UpdateDeckFn  func(ctx context.Context, run *Run) error
	PostProcessFn func(ctx context.Context, run *Run) error
}

// UpdateDeck implements Model.
func (h Hooks) UpdateDeck(ctx context.Context, run *Run) error {
	if h.UpdateDeckFn == nil {
		return nil
	}
	return h.UpdateDeckFn(ctx, run)
}

// PostProcess implements Model.
func (h Hooks) PostProcess(ctx context.Context, run *Run) error {
	if h.PostProcessFn == nil {
		return nil
	}
	return h.PostProcessFn(ctx, run)
}

// Registry holds the registered output functions and models for a single
// application instance.
type Registry struct {
	OutputFuncs map[string]OutputFunc
	Models      map[string]Model
}

// New creates a Registry that already contains the built-in output
// functions.
func New() *Registry {
	r := &Registry{
		OutputFuncs: make(map[string]OutputFunc),
		Models:      make(map[string]Model),
	}
	registerBuiltins(r)
	return r
}

// OutputFunc returns the output function registered under name.
func (r *Registry) OutputFunc(name string) (OutputFunc, bool) {
	fn, ok := r.OutputFuncs[name]
	return fn, ok
}

// Model returns the model registered under name.
func (r *Registry) Model(name string) (Model, bool) {
	m, ok := r.Models[name]
	return m, ok
}

// OutputFuncNames returns the registered output function names in sorted
// order.
func (r *Registry) OutputFuncNames() []string {
	names := make([]string, 0, len(r.OutputFuncs))
	for name := range r.OutputFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
