package registry

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/results"
)

func registerBuiltins(r *Registry) {
	r.RegisterOutputFunc("displacement", displacement)
	r.RegisterOutputFunc("rotation", rotation)
	r.RegisterOutputFunc("mass", mass)
	r.RegisterOutputFunc("rod_axial", rodAxial)
}

var defaultSubcase = config.DefaultSubcase

func gridComponent(args map[string]cty.Value) (subcase, grid, xyz int, err error) {
	if subcase, err = IntArg(args, "isubcase", &defaultSubcase); err != nil {
		return
	}
	if grid, err = IntArg(args, "id", nil); err != nil {
		return
	}
	xyz, err = IntArg(args, "xyz", nil)
	return
}

// displacement(isubcase = 1, id, xyz) is a translation component of a grid.
func displacement(res *results.Results, args map[string]cty.Value) (cty.Value, error) {
	subcase, grid, xyz, err := gridComponent(args)
	if err != nil {
		return cty.NilVal, err
	}
	v, err := res.Translation(subcase, grid, xyz)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberFloatVal(v), nil
}

// rotation(isubcase = 1, id, xyz) is a rotation component of a grid.
func rotation(res *results.Results, args map[string]cty.Value) (cty.Value, error) {
	subcase, grid, xyz, err := gridComponent(args)
	if err != nil {
		return cty.NilVal, err
	}
	v, err := res.Rotation(subcase, grid, xyz)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberFloatVal(v), nil
}

// mass(axis = 0) is the structure mass from the grid point weight generator.
func mass(res *results.Results, args map[string]cty.Value) (cty.Value, error) {
	zero := 0
	axis, err := IntArg(args, "axis", &zero)
	if err != nil {
		return cty.NilVal, err
	}
	m, err := res.Mass(axis)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberFloatVal(m), nil
}

// rod_axial(isubcase = 1, id) is the axial stress of a rod element.
func rodAxial(res *results.Results, args map[string]cty.Value) (cty.Value, error) {
	subcase, err := IntArg(args, "isubcase", &defaultSubcase)
	if err != nil {
		return cty.NilVal, err
	}
	eid, err := IntArg(args, "id", nil)
	if err != nil {
		return cty.NilVal, err
	}
	rod, err := res.Rod(subcase)
	if err != nil {
		return cty.NilVal, err
	}
	v, ok := rod.Axial[eid]
	if !ok {
		return cty.NilVal, fmt.Errorf("no rod stress for element %d in subcase %d", eid, subcase)
	}
	return cty.NumberFloatVal(v), nil
}
