package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// DefaultSubcase is used by locator outputs that do not name a subcase.
const DefaultSubcase = 1

// Model is the unified representation of all loaded manifests.
type Model struct {
	Components map[string]*Component
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Components: make(map[string]*Component)}
}

// Names returns the component names in sorted order.
func (m *Model) Names() []string {
	names := make([]string, 0, len(m.Components))
	for name := range m.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the named component. An empty name is accepted only when
// exactly one component was loaded.
func (m *Model) Select(name string) (*Component, error) {
	if name != "" {
		c, ok := m.Components[name]
		if !ok {
			return nil, fmt.Errorf("component '%s' not found, available: %v", name, m.Names())
		}
		return c, nil
	}
	switch len(m.Components) {
	case 0:
		return nil, fmt.Errorf("no component manifests were found")
	case 1:
		for _, c := range m.Components {
			return c, nil
		}
	}
	return nil, fmt.Errorf("several components loaded (%v), choose one explicitly", m.Names())
}

// Component is the format-agnostic representation of a `component` block:
// one Nastran analysis with its tagged inputs and outputs.
type Component struct {
	Name        string
	Description string
	SourceFile  string

	// Deck is the template bulk-data deck. Relative paths are already
	// resolved against the manifest's directory by the loader.
	Deck        string
	Command     string
	CommandArgs []string
	Env         map[string]string
	Timeout     time.Duration

	// Model names a Go model registered in the registry. Optional.
	Model string

	Workdir WorkdirPolicy

	Inputs  map[string]*InputDefinition
	Outputs map[string]*OutputDefinition
}

// InputNames returns input names in sorted order so that deck patching is
// deterministic.
func (c *Component) InputNames() []string {
	names := make([]string, 0, len(c.Inputs))
	for name := range c.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputNames returns output names in sorted order.
func (c *Component) OutputNames() []string {
	names := make([]string, 0, len(c.Outputs))
	for name := range c.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WorkdirPolicy governs where per-run directories are created and which of
// them survive.
type WorkdirPolicy struct {
	Parent    string
	Delete    bool
	KeepFirst bool
	KeepLast  bool
}

// DefaultWorkdirPolicy deletes temporary files but keeps the first and the
// last iteration.
func DefaultWorkdirPolicy() WorkdirPolicy {
	return WorkdirPolicy{
		Parent:    os.TempDir(),
		Delete:    true,
		KeepFirst: true,
		KeepLast:  true,
	}
}

// InputDefinition is a single design variable. Card, ID and Field form the
// deck tag tuple; each is nil when absent from the manifest.
type InputDefinition struct {
	Name string
	// Type is the declared value type; cty.DynamicPseudoType accepts any
	// value.
	Type        cty.Type
	Default     cty.Value
	Low         *float64
	High        *float64
	Units       string
	Description string

	// Var is a `%NAME` placeholder in the template deck text.
	Var string

	Card       *string
	ID         *int
	Field      *string
	FieldIndex *int
}

// OutputDefinition is a single extracted result. Func selects a registered
// callback; Table, ID and Column form the locator tuple.
type OutputDefinition struct {
	Name        string
	Default     cty.Value
	Units       string
	Description string

	Func string
	Args map[string]cty.Value

	Table   *string
	Subcase *int
	ID      *int
	Column  *string
}
