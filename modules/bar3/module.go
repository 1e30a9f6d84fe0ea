// Package bar3 models a three bar truss whose bar stresses combine the axial
// and torsional rod stress.
package bar3

import (
	"fmt"

	"github.com/specialistvlad/nastranwrap/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the bar3 model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("bar3", registry.Hooks{
		PostProcessFn: registry.RodStressOutputs(1, barStress),
	})
}

func barStress(eid int) string {
	return fmt.Sprintf("bar%d_stress", eid)
}
