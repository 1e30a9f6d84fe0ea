package nastran

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/specialistvlad/nastranwrap/internal/bdf"
	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
	"github.com/specialistvlad/nastranwrap/internal/registry"
	"github.com/specialistvlad/nastranwrap/internal/results"
	"github.com/specialistvlad/nastranwrap/internal/solver"
	"github.com/specialistvlad/nastranwrap/internal/workdir"
)

const (
	// DeckStem is the base name of the deck and of the result files.
	DeckStem = "input"
	DeckFile = DeckStem + ".bdf"
	// OutputFile is the report name passed to solvers that honor out=<dir>.
	OutputFile = DeckStem + ".out"
)

// Recorder persists finished evaluations.
type Recorder interface {
	Record(ctx context.Context, ev *Evaluation) error
}

// Evaluation is the outcome of one successful Execute.
type Evaluation struct {
	RunID     string
	Component string
	Started   time.Time
	Duration  time.Duration
	// Dir is the working directory; it may already be removed when
	// Retained is false.
	Dir      string
	Retained bool
	Source   results.Source
	Inputs   map[string]cty.Value
	Outputs  map[string]cty.Value
}

// Output returns the numeric value of an output.
func (e *Evaluation) Output(name string) (float64, error) {
	v, ok := e.Outputs[name]
	if !ok {
		return 0, fmt.Errorf("unknown output '%s'", name)
	}
	return toNumber(v)
}

// Option configures a Component.
type Option func(*Component)

// WithRecorder attaches a recorder that receives every evaluation.
func WithRecorder(r Recorder) Option {
	return func(c *Component) { c.recorder = r }
}

// Component evaluates one component definition.
type Component struct {
	def      *config.Component
	reg      *registry.Registry
	model    registry.Model
	plan     *plan
	workdir  *workdir.Manager
	recorder Recorder
	inputs   map[string]cty.Value
}

// New validates def against reg and returns a Component whose inputs hold
// their defaults.
func New(def *config.Component, reg *registry.Registry, opts ...Option) (*Component, error) {
	p, err := classify(def, reg)
	if err != nil {
		return nil, err
	}
	c := &Component{
		def:     def,
		reg:     reg,
		plan:    p,
		workdir: workdir.New(def.Workdir),
		inputs:  make(map[string]cty.Value, len(def.Inputs)),
	}
	if def.Model != "" {
		m, ok := reg.Model(def.Model)
		if !ok {
			return nil, &ConfigError{Component: def.Name, Msg: fmt.Sprintf("model '%s' is not registered", def.Model)}
		}
		c.model = m
	}
	for _, opt := range opts {
		opt(c)
	}
	for name, in := range def.Inputs {
		v := in.Default
		if v.IsNull() {
			v = cty.NullVal(cty.DynamicPseudoType)
		}
		c.inputs[name] = v
	}
	return c, nil
}

// Name returns the component name.
func (c *Component) Name() string { return c.def.Name }

// Definition returns the component definition.
func (c *Component) Definition() *config.Component { return c.def }

// Inputs returns a copy of the current input values.
func (c *Component) Inputs() map[string]cty.Value { return copyValues(c.inputs) }

// Set assigns an input value, checking the declared bounds.
func (c *Component) Set(name string, v cty.Value) error {
	in, ok := c.def.Inputs[name]
	if !ok {
		return &ConfigError{Component: c.def.Name, Field: name, Msg: "unknown input"}
	}
	if in.Type != cty.NilType && in.Type != cty.DynamicPseudoType {
		conv, err := convert.Convert(v, in.Type)
		if err != nil {
			return &ConfigError{Component: c.def.Name, Field: name, Msg: "value must be " + in.Type.FriendlyName(), Err: err}
		}
		v = conv
	}
	if in.Low != nil || in.High != nil {
		f, err := toNumber(v)
		if err != nil {
			return &ConfigError{Component: c.def.Name, Field: name, Msg: "bounded input must be a number", Err: err}
		}
		if in.Low != nil && f < *in.Low {
			return &ConfigError{Component: c.def.Name, Field: name, Msg: fmt.Sprintf("value %g is below the lower bound %g", f, *in.Low)}
		}
		if in.High != nil && f > *in.High {
			return &ConfigError{Component: c.def.Name, Field: name, Msg: fmt.Sprintf("value %g is above the upper bound %g", f, *in.High)}
		}
	}
	c.inputs[name] = v
	return nil
}

// Command returns the solver command of the component.
func (c *Component) Command() solver.Command {
	return solver.Command{
		Executable: c.def.Command,
		Args:       c.def.CommandArgs,
		Env:        c.def.Env,
		Timeout:    c.def.Timeout,
	}
}

// Execute runs one evaluation with the current inputs. On failure after the
// working directory was created the directory is left in place and does not
// count toward the retention policy.
func (c *Component) Execute(ctx context.Context) (*Evaluation, error) {
	p, err := classify(c.def, c.reg)
	if err != nil {
		return nil, err
	}
	c.plan = p
	numbers, err := c.numericInputs()
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		RunID:     uuid.NewString(),
		Component: c.def.Name,
		Started:   time.Now(),
		Inputs:    c.Inputs(),
	}
	ctx, logger := ctxlog.With(ctx, "component", c.def.Name, "run_id", ev.RunID)

	dir, err := c.workdir.Create()
	if err != nil {
		return nil, err
	}
	ev.Dir = dir
	logger.Debug("Created workdir.", "dir", dir)

	deck, err := c.buildDeck(ctx, dir, numbers)
	if err != nil {
		return nil, err
	}

	deckPath := filepath.Join(dir, DeckFile)
	if err := bdf.WriteFile(deckPath, deck, bdf.LargeField); err != nil {
		return nil, fmt.Errorf("writing deck: %w", err)
	}

	cmd := c.Command()
	res, err := c.solve(ctx, cmd, deckPath, dir)
	if err != nil {
		return nil, err
	}
	ev.Source = res.Source

	outputs, err := c.extract(ctx, dir, deck, res, ev.Inputs)
	if err != nil {
		return nil, err
	}
	ev.Outputs = outputs
	ev.Duration = time.Since(ev.Started)

	if err := writeManifest(ev, cmd.Argv(deckPath, dir)); err != nil {
		return nil, err
	}

	ev.Retained, err = c.workdir.Release(ctx, dir)
	if err != nil {
		return nil, err
	}

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, ev); err != nil {
			return nil, fmt.Errorf("recording evaluation: %w", err)
		}
	}

	logger.Info("Evaluation finished.", "duration", ev.Duration, "source", ev.Source, "retained", ev.Retained)
	return ev, nil
}

// numericInputs returns the values of inputs that are written into the deck.
func (c *Component) numericInputs() (map[string]float64, error) {
	out := make(map[string]float64)
	need := make(map[string]struct{})
	for _, t := range c.plan.deckTargets {
		need[t.input] = struct{}{}
	}
	for name := range c.plan.placeholders {
		need[name] = struct{}{}
	}
	for name := range need {
		f, err := toNumber(c.inputs[name])
		if err != nil {
			return nil, &ConfigError{Component: c.def.Name, Field: name, Msg: "deck input needs a numeric value", Err: err}
		}
		out[name] = f
	}
	return out, nil
}

// buildDeck reads the template, substitutes placeholders, patches tagged
// fields and lets the model adjust the result.
func (c *Component) buildDeck(ctx context.Context, dir string, numbers map[string]float64) (*bdf.Deck, error) {
	logger := ctxlog.FromContext(ctx)

	raw, err := os.ReadFile(c.def.Deck)
	if err != nil {
		return nil, fmt.Errorf("reading template deck: %w", err)
	}
	text := string(raw)
	if len(c.plan.placeholders) > 0 {
		vars := make(map[string]float64, len(c.plan.placeholders))
		for input, name := range c.plan.placeholders {
			vars[name] = numbers[input]
		}
		if text, err = bdf.ReplacePlaceholders(text, vars); err != nil {
			return nil, &ConfigError{Component: c.def.Name, Msg: "replacing placeholders", Err: err}
		}
	}

	deck, err := bdf.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template deck %s: %w", c.def.Deck, err)
	}

	for _, t := range c.plan.deckTargets {
		card, err := deck.Find(t.card, t.id)
		if err != nil {
			return nil, &ConfigError{Component: c.def.Name, Field: t.input, Msg: "locating card", Err: err}
		}
		if err := card.Set(t.field, t.index, numbers[t.input]); err != nil {
			return nil, &ConfigError{Component: c.def.Name, Field: t.input, Msg: "setting field", Err: err}
		}
		logger.Debug("Patched deck field.", "input", t.input, "card", t.card, "id", t.id, "field", t.field, "value", numbers[t.input])
	}

	if c.model != nil {
		run := &registry.Run{Dir: dir, Deck: deck, Inputs: c.Inputs(), Outputs: map[string]cty.Value{}}
		if err := c.model.UpdateDeck(ctx, run); err != nil {
			return nil, fmt.Errorf("model %s: updating deck: %w", c.def.Model, err)
		}
	}
	return deck, nil
}

func (c *Component) solve(ctx context.Context, cmd solver.Command, deckPath, dir string) (*results.Results, error) {
	logger := ctxlog.FromContext(ctx)

	runErr := cmd.Run(ctx, deckPath, dir)
	var exitErr *solver.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, runErr
	}

	// FATAL messages explain a failed run better than its exit status.
	res, err := results.Read(dir, DeckStem)
	var fatal *results.FatalError
	switch {
	case err != nil && errors.As(err, &fatal):
	case runErr != nil:
		err = runErr
	}
	if err != nil {
		logger.Error("Solver produced no usable results.", "dir", dir, "error", err)
		return nil, &SolverError{Dir: dir, Err: err}
	}
	logger.Debug("Read results.", "source", res.Source, "path", res.Path)
	return res, nil
}

// extract fills the outputs: defaults first, then locators and funcs in
// name order, then the model hook.
func (c *Component) extract(ctx context.Context, dir string, deck *bdf.Deck, res *results.Results, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	outputs := make(map[string]cty.Value, len(c.def.Outputs))
	for name, out := range c.def.Outputs {
		v := out.Default
		if v.IsNull() {
			v = cty.NullVal(cty.Number)
		}
		outputs[name] = v
	}

	for _, x := range c.plan.outputs {
		switch x.kind {
		case OutputLocator:
			f, err := x.locator.read(res, x.locator.subcase, x.locator.id)
			if err != nil {
				return nil, fmt.Errorf("output '%s': %w", x.name, err)
			}
			outputs[x.name] = cty.NumberFloatVal(f)
		case OutputFunc:
			v, err := x.fn(res, c.def.Outputs[x.name].Args)
			if err != nil {
				return nil, fmt.Errorf("output '%s': func '%s': %w", x.name, c.def.Outputs[x.name].Func, err)
			}
			outputs[x.name] = v
		}
	}

	if c.model != nil {
		run := &registry.Run{Dir: dir, Deck: deck, Results: res, Inputs: inputs, Outputs: outputs}
		if err := c.model.PostProcess(ctx, run); err != nil {
			return nil, fmt.Errorf("model %s: post-processing: %w", c.def.Model, err)
		}
		for name := range run.Outputs {
			if _, ok := c.def.Outputs[name]; !ok {
				return nil, fmt.Errorf("model %s: set undeclared output '%s'", c.def.Model, name)
			}
		}
	}
	return outputs, nil
}
