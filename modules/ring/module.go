// Package ring models the sixty bar ring truss. Its sixty elements share
// twenty five PROD cards.
package ring

import (
	"fmt"

	"github.com/specialistvlad/nastranwrap/internal/registry"
)

// Properties is the number of PROD cards; element e uses PROD (e-1)%25+1.
const Properties = 25

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the ring model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("ring", registry.Hooks{
		PostProcessFn: registry.RodStressOutputs(1, func(eid int) string {
			return fmt.Sprintf("bar%d_stress", eid)
		}),
	})
}
