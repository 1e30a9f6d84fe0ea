package nastran

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// toNumber converts v to a float64, accepting strings that hold numbers.
func toNumber(v cty.Value) (float64, error) {
	if v.IsNull() {
		return 0, fmt.Errorf("value is not set")
	}
	if !v.IsKnown() {
		return 0, fmt.Errorf("value is unknown")
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, err
	}
	f, _ := n.AsBigFloat().Float64()
	return f, nil
}

// PlainValue converts a cty value into a value that encoding packages
// understand: numbers become float64, or int64 when they are whole.
func PlainValue(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	switch v.Type() {
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	case cty.String:
		return v.AsString()
	case cty.Bool:
		return v.True()
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(raw)
}

// PlainValues applies PlainValue to every entry of m.
func PlainValues(m map[string]cty.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = PlainValue(v)
	}
	return out
}

func copyValues(m map[string]cty.Value) map[string]cty.Value {
	out := make(map[string]cty.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
