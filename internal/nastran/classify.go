package nastran

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/nastranwrap/internal/bdf"
	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/registry"
	"github.com/specialistvlad/nastranwrap/internal/results"
)

// OutputKind is the extraction strategy of an output.
type OutputKind int

const (
	// OutputPostProcessed outputs are only set by the model hook.
	OutputPostProcessed OutputKind = iota
	OutputFunc
	OutputLocator
)

func (k OutputKind) String() string {
	switch k {
	case OutputFunc:
		return "func"
	case OutputLocator:
		return "locator"
	}
	return "post-processed"
}

// columnReader reads one value of a locator table.
type columnReader func(res *results.Results, subcase, id int) (float64, error)

func vectorColumn(rotation bool, xyz int) columnReader {
	return func(res *results.Results, subcase, id int) (float64, error) {
		if rotation {
			return res.Rotation(subcase, id, xyz)
		}
		return res.Translation(subcase, id, xyz)
	}
}

func rodColumn(pick func(*results.RodStress) map[int]float64) columnReader {
	return func(res *results.Results, subcase, id int) (float64, error) {
		s, err := res.Rod(subcase)
		if err != nil {
			return 0, err
		}
		v, ok := pick(s)[id]
		if !ok {
			return 0, fmt.Errorf("no rod stress for element %d in subcase %d", id, subcase)
		}
		return v, nil
	}
}

// locatorTables maps table and column names to readers. Table names are
// matched in lower case and column names in upper case.
var locatorTables = map[string]map[string]columnReader{
	"displacement vector": {
		"T1": vectorColumn(false, 0),
		"T2": vectorColumn(false, 1),
		"T3": vectorColumn(false, 2),
		"R1": vectorColumn(true, 0),
		"R2": vectorColumn(true, 1),
		"R3": vectorColumn(true, 2),
	},
	"rod stress": {
		"AXIAL":      rodColumn(func(s *results.RodStress) map[int]float64 { return s.Axial }),
		"MS_AXIAL":   rodColumn(func(s *results.RodStress) map[int]float64 { return s.MarginAxial }),
		"TORSION":    rodColumn(func(s *results.RodStress) map[int]float64 { return s.Torsion }),
		"MS_TORSION": rodColumn(func(s *results.RodStress) map[int]float64 { return s.MarginTorsion }),
	},
}

// LocatorTables returns the supported locator table names in sorted order.
func LocatorTables() []string {
	names := make([]string, 0, len(locatorTables))
	for name := range locatorTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type deckTarget struct {
	input string
	card  string
	id    int
	field string
	index *int
}

type locator struct {
	read    columnReader
	subcase int
	id      int
}

type extraction struct {
	name    string
	kind    OutputKind
	fn      registry.OutputFunc
	locator locator
}

// plan is the classified form of a component definition.
type plan struct {
	deckTargets  []deckTarget
	placeholders map[string]string // input name -> placeholder name
	outputs      []extraction
}

// classify validates every field of def and decides its strategy.
func classify(def *config.Component, reg *registry.Registry) (*plan, error) {
	p := &plan{placeholders: make(map[string]string)}

	for _, name := range def.InputNames() {
		in := def.Inputs[name]
		cfgErr := func(format string, args ...any) error {
			return &ConfigError{Component: def.Name, Field: name, Msg: fmt.Sprintf(format, args...)}
		}

		if in.Var != "" {
			if len(in.Var) > bdf.MaxPlaceholderName {
				return nil, cfgErr("var '%s' is longer than %d characters", in.Var, bdf.MaxPlaceholderName)
			}
			p.placeholders[name] = in.Var
		}

		tagged := countSet(in.Card != nil, in.ID != nil, in.Field != nil)
		switch tagged {
		case 0:
			if in.FieldIndex != nil {
				return nil, cfgErr("field_index given without card, id and field")
			}
			continue
		case 3:
		default:
			return nil, cfgErr("card, id and field must be given together, got %s", describeTags(in))
		}

		card := strings.ToUpper(*in.Card)
		if _, err := bdf.FieldPosition(card, *in.Field, in.FieldIndex); err != nil {
			return nil, &ConfigError{Component: def.Name, Field: name, Msg: "invalid deck field", Err: err}
		}
		p.deckTargets = append(p.deckTargets, deckTarget{
			input: name,
			card:  card,
			id:    *in.ID,
			field: *in.Field,
			index: in.FieldIndex,
		})
	}

	for _, name := range def.OutputNames() {
		out := def.Outputs[name]
		cfgErr := func(format string, args ...any) error {
			return &ConfigError{Component: def.Name, Field: name, Msg: fmt.Sprintf(format, args...)}
		}

		located := countSet(out.Table != nil, out.ID != nil, out.Column != nil)
		if located != 0 && located != 3 {
			return nil, cfgErr("table, id and column must be given together")
		}

		switch {
		case out.Func != "" && located == 3:
			return nil, cfgErr("func and table locator are mutually exclusive")
		case out.Func != "":
			fn, ok := reg.OutputFunc(out.Func)
			if !ok {
				return nil, cfgErr("func '%s' is not registered, available: %v", out.Func, reg.OutputFuncNames())
			}
			p.outputs = append(p.outputs, extraction{name: name, kind: OutputFunc, fn: fn})
		case located == 3:
			table, ok := locatorTables[strings.ToLower(*out.Table)]
			if !ok {
				return nil, cfgErr("unknown table '%s', supported: %v", *out.Table, LocatorTables())
			}
			read, ok := table[strings.ToUpper(*out.Column)]
			if !ok {
				return nil, cfgErr("unknown column '%s' of table '%s'", *out.Column, *out.Table)
			}
			subcase := config.DefaultSubcase
			if out.Subcase != nil {
				subcase = *out.Subcase
			}
			p.outputs = append(p.outputs, extraction{
				name:    name,
				kind:    OutputLocator,
				locator: locator{read: read, subcase: subcase, id: *out.ID},
			})
		default:
			if out.Subcase != nil {
				return nil, cfgErr("subcase given without table, id and column")
			}
			p.outputs = append(p.outputs, extraction{name: name, kind: OutputPostProcessed})
		}
	}

	return p, nil
}

func countSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func describeTags(in *config.InputDefinition) string {
	var have []string
	if in.Card != nil {
		have = append(have, "card")
	}
	if in.ID != nil {
		have = append(have, "id")
	}
	if in.Field != nil {
		have = append(have, "field")
	}
	return "only " + strings.Join(have, " and ")
}
