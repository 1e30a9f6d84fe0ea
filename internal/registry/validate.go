package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
)

// Validate performs a strict parity check between the loaded manifests and
// the Go code: every referenced model and output func must be registered.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range model.Names() {
		comp := model.Components[name]
		if comp.Model != "" {
			if _, ok := r.Models[comp.Model]; !ok {
				errs = append(errs, fmt.Sprintf("component '%s': model '%s' is not registered", name, comp.Model))
			}
		}

		for _, outName := range comp.OutputNames() {
			out := comp.Outputs[outName]
			if out.Func != "" {
				if _, ok := r.OutputFuncs[out.Func]; !ok {
					errs = append(errs, fmt.Sprintf("component '%s', output '%s': func '%s' is not registered, available: %v",
						name, outName, out.Func, r.OutputFuncNames()))
				}
				continue
			}
			if out.Table == nil && out.ID == nil && out.Column == nil && comp.Model == "" {
				logger.Warn("Output has no func, no locator and the component has no model; it will keep its default.",
					"component", name, "output", outName)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
