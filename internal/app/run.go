package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
	"github.com/specialistvlad/nastranwrap/internal/nastran"
	"github.com/specialistvlad/nastranwrap/internal/recorder"
)

// Run evaluates the selected component once per case and prints a report
// of every evaluation. Inputs carry over from one case to the next.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	def, err := a.model.Select(a.config.Component)
	if err != nil {
		return err
	}

	var opts []nastran.Option
	if a.config.RecordPath != "" {
		store, err := recorder.Open(a.config.RecordPath)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				a.logger.Error("Failed to close case recorder.", "path", store.Path(), "error", cerr)
			}
		}()
		opts = append(opts, nastran.WithRecorder(store))
		a.logger.Debug("Recording evaluations.", "path", store.Path())
	}

	comp, err := nastran.New(def, a.registry, opts...)
	if err != nil {
		return err
	}

	names, values, err := parseSets(a.config.Sets)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := comp.Set(name, values[name]); err != nil {
			return err
		}
	}

	cases := []*Case{{Name: "default"}}
	if a.config.CasesPath != "" {
		if cases, err = readCases(a.config.CasesPath); err != nil {
			return err
		}
	}

	a.logger.Info("Starting evaluations.", "component", comp.Name(), "cases", len(cases))
	reports := make([]*Report, 0, len(cases))
	for _, c := range cases {
		if err := applyCase(comp, c); err != nil {
			return err
		}
		ev, err := comp.Execute(ctx)
		if err != nil {
			return fmt.Errorf("case '%s': %w", c.Name, err)
		}
		reports = append(reports, newReport(c.Name, comp, ev))
	}
	a.logger.Info("Evaluations finished.", "count", len(reports))

	return writeReports(a.outW, a.config.Output, reports)
}

// applyCase sets the inputs of c in name order.
func applyCase(comp *nastran.Component, c *Case) error {
	names := make([]string, 0, len(c.Inputs))
	for name := range c.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, err := toCty(c.Inputs[name])
		if err != nil {
			return fmt.Errorf("case '%s', input '%s': %w", c.Name, name, err)
		}
		if v.Type().IsTupleType() {
			// YAML sequences arrive as tuples; numeric ones become lists.
			if l, ok := numberList(v); ok {
				v = l
			}
		}
		if err := comp.Set(name, v); err != nil {
			return fmt.Errorf("case '%s': %w", c.Name, err)
		}
	}
	return nil
}

func numberList(v cty.Value) (cty.Value, bool) {
	if v.LengthInt() == 0 {
		return v, false
	}
	elems := v.AsValueSlice()
	for _, e := range elems {
		if !e.Type().Equals(cty.Number) {
			return v, false
		}
	}
	return cty.ListVal(elems), true
}
