package app

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Case is one named input set of a cases file.
type Case struct {
	Name   string         `yaml:"name"`
	Inputs map[string]any `yaml:"inputs"`
}

// splitAssignment splits "name=value".
func splitAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid assignment '%s': expected name=value", s)
	}
	return name, strings.TrimSpace(value), nil
}

// parseValue reads a command-line value as an HCL literal expression, so
// `2.5`, `true` and `[1, 2]` keep their types. Anything that is not a
// literal is taken as a plain string.
func parseValue(raw string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "-set", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(raw)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() {
		return cty.StringVal(raw)
	}
	return v
}

// parseSets turns name=value assignments into values, in order.
func parseSets(sets []string) ([]string, map[string]cty.Value, error) {
	names := make([]string, 0, len(sets))
	values := make(map[string]cty.Value, len(sets))
	for _, s := range sets {
		name, raw, err := splitAssignment(s)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := values[name]; !ok {
			names = append(names, name)
		}
		values[name] = parseValue(raw)
	}
	return names, values, nil
}

// readCases loads a YAML list of cases. Unnamed cases are numbered from 1.
func readCases(path string) ([]*Case, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cases: %w", err)
	}
	var cases []*Case
	if err := yaml.Unmarshal(raw, &cases); err != nil {
		return nil, fmt.Errorf("parsing cases %s: %w", path, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("cases file %s lists no cases", path)
	}
	for i, c := range cases {
		if c == nil {
			return nil, fmt.Errorf("case %d in %s is empty", i+1, path)
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("case%d", i+1)
		}
	}
	return cases, nil
}

// toCty converts a decoded YAML scalar or sequence through its JSON form.
func toCty(v any) (cty.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, err
	}
	t, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, t)
}
