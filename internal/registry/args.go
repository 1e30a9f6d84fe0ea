package registry

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// IntArg decodes the integer argument name. def is used when the argument is
// absent; a nil def makes the argument required.
func IntArg(args map[string]cty.Value, name string, def *int) (int, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		if def == nil {
			return 0, fmt.Errorf("missing required argument '%s'", name)
		}
		return *def, nil
	}
	var out int
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return 0, fmt.Errorf("argument '%s': %w", name, err)
	}
	return out, nil
}

// IntListArg decodes a list of integers, such as element ids.
func IntListArg(args map[string]cty.Value, name string) ([]int, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return nil, fmt.Errorf("missing required argument '%s'", name)
	}
	list, err := convert.Convert(v, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("argument '%s': %w", name, err)
	}
	var out []int
	if err := gocty.FromCtyValue(list, &out); err != nil {
		return nil, fmt.Errorf("argument '%s': %w", name, err)
	}
	return out, nil
}

// Number decodes a cty number into a float64.
func Number(v cty.Value) (float64, error) {
	if v.IsNull() || !v.IsKnown() {
		return 0, fmt.Errorf("value is null or unknown")
	}
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// Input returns the numeric value of a run input.
func (r *Run) Input(name string) (float64, error) {
	v, ok := r.Inputs[name]
	if !ok {
		return 0, fmt.Errorf("unknown input '%s'", name)
	}
	f, err := Number(v)
	if err != nil {
		return 0, fmt.Errorf("input '%s': %w", name, err)
	}
	return f, nil
}

// SetOutput stores a numeric output value.
func (r *Run) SetOutput(name string, f float64) {
	r.Outputs[name] = cty.NumberFloatVal(f)
}
