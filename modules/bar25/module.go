// Package bar25 models the twenty five bar transmission tower.
package bar25

import (
	"fmt"

	"github.com/specialistvlad/nastranwrap/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the bar25 model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("bar25", registry.Hooks{
		PostProcessFn: registry.RodStressOutputs(1, func(eid int) string {
			return fmt.Sprintf("bar%d_stress", eid)
		}),
	})
}
