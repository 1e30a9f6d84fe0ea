// Package blade models a blade meshed with CQUAD4 elements. Elements are
// grouped by their PSHELL and each group reports its peak von Mises stress
// in the output group<pid>_stress.
package blade

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
	"github.com/specialistvlad/nastranwrap/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the blade model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("blade", registry.Hooks{PostProcessFn: groupStress})
}

func groupStress(ctx context.Context, run *registry.Run) error {
	groups, err := run.Deck.ElementsByProperty("CQUAD4")
	if err != nil {
		return err
	}
	plate, err := run.Results.Plate(1)
	if err != nil {
		return err
	}

	for pid, eids := range groups {
		name := fmt.Sprintf("group%d_stress", pid)
		if _, ok := run.Outputs[name]; !ok {
			continue
		}
		peak := 0.0
		for _, eid := range eids {
			vm, ok := plate.VonMises[eid]
			if !ok {
				return fmt.Errorf("no von Mises stress for element %d", eid)
			}
			if s := registry.MaxAbs(vm...); s > peak {
				peak = s
			}
		}
		run.SetOutput(name, peak)
		ctxlog.FromContext(ctx).Debug("Computed group stress.", "pid", pid, "elements", len(eids), "stress", peak)
	}
	return nil
}
