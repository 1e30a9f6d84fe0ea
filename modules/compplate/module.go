// Package compplate models a composite plate with three PCOMP laminates of
// four plies each. A thickness input per laminate is spread over its plies
// before the solve; afterwards the largest major and minor strain of every
// laminate is reported.
package compplate

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
	"github.com/specialistvlad/nastranwrap/internal/registry"
)

// Laminates maps each thickness input to its PCOMP id; output names use the
// input's position (property1 for PCOMP 801).
var Laminates = []struct {
	Input string
	PID   int
}{
	{"thick1", 801},
	{"thick2", 802},
	{"thick3", 803},
}

// PlyFractions is the share of the laminate thickness given to each ply.
var PlyFractions = []float64{0.25, 0.25, 0.25, 0.25}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the compplate model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("compplate", registry.Hooks{
		UpdateDeckFn:  distributeThickness,
		PostProcessFn: maxStrains,
	})
}

func distributeThickness(ctx context.Context, run *registry.Run) error {
	logger := ctxlog.FromContext(ctx)
	for _, lam := range Laminates {
		thick, err := run.Input(lam.Input)
		if err != nil {
			return err
		}
		pcomp, err := run.Deck.Find("PCOMP", lam.PID)
		if err != nil {
			return err
		}
		for ply, frac := range PlyFractions {
			if err := pcomp.Set("T", &ply, frac*thick); err != nil {
				return fmt.Errorf("PCOMP %d ply %d: %w", lam.PID, ply+1, err)
			}
		}
		logger.Debug("Distributed laminate thickness.", "pid", lam.PID, "thickness", thick)
	}
	return nil
}

func maxStrains(_ context.Context, run *registry.Run) error {
	groups, err := run.Deck.ElementsByProperty("CQUAD4")
	if err != nil {
		return err
	}
	strain, err := run.Results.Composite(1)
	if err != nil {
		return err
	}

	for i, lam := range Laminates {
		eids := groups[lam.PID]
		if len(eids) == 0 {
			return fmt.Errorf("no CQUAD4 elements reference PCOMP %d", lam.PID)
		}
		major, minor := math.Inf(-1), math.Inf(-1)
		for _, eid := range eids {
			plies, ok := strain.Major[eid]
			if !ok {
				return fmt.Errorf("no composite strain for element %d", eid)
			}
			for _, v := range plies {
				major = math.Max(major, v)
			}
			for _, v := range strain.Minor[eid] {
				minor = math.Max(minor, v)
			}
		}
		prefix := fmt.Sprintf("property%d_max_", i+1)
		run.SetOutput(prefix+"major_strain", major)
		run.SetOutput(prefix+"minor_strain", minor)
		run.SetOutput(prefix+"major_minor_strain", math.Max(major, minor))
	}
	return nil
}
