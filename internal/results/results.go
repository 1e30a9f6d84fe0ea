// Package results holds the subset of Nastran output that components extract
// scalars from, together with readers for the F06 text report and the OP2
// binary file.
package results

import (
	"fmt"
	"sort"
)

// Source names the file a Results value was read from.
type Source string

const (
	SourceOP2 Source = "op2"
	SourceF06 Source = "f06"
)

// Results is everything read from one solver run, keyed by subcase id.
type Results struct {
	Source Source
	Path   string

	Displacements        map[int]*Displacements
	RodStress            map[int]*RodStress
	PlateStress          map[int]*PlateStress
	CompositePlateStrain map[int]*CompositeStrain
	GridPointWeight      *GridPointWeight
}

// New returns an empty result set.
func New(source Source, path string) *Results {
	return &Results{
		Source:               source,
		Path:                 path,
		Displacements:        make(map[int]*Displacements),
		RodStress:            make(map[int]*RodStress),
		PlateStress:          make(map[int]*PlateStress),
		CompositePlateStrain: make(map[int]*CompositeStrain),
	}
}

// Empty reports whether no result table was read.
func (r *Results) Empty() bool {
	return len(r.Displacements) == 0 && len(r.RodStress) == 0 && len(r.PlateStress) == 0 &&
		len(r.CompositePlateStrain) == 0 && r.GridPointWeight == nil
}

// Displacements holds the grid point translations (T1, T2, T3) and rotations
// (R1, R2, R3) of one subcase.
type Displacements struct {
	Translations map[int][3]float64
	Rotations    map[int][3]float64
}

// RodStress holds CROD, CTUBE and CONROD stresses of one subcase.
type RodStress struct {
	Axial         map[int]float64
	MarginAxial   map[int]float64
	Torsion       map[int]float64
	MarginTorsion map[int]float64
}

// ElementIDs returns the element ids in ascending order.
func (s *RodStress) ElementIDs() []int {
	return sortedKeys(s.Axial)
}

// PlateStress holds the von Mises stress of each fiber of CQUAD4 elements.
type PlateStress struct {
	VonMises map[int][]float64
}

// ElementIDs returns the element ids in ascending order.
func (s *PlateStress) ElementIDs() []int {
	return sortedKeys(s.VonMises)
}

// CompositeStrain holds the principal strains of each ply of layered
// composite QUAD4 elements.
type CompositeStrain struct {
	Major map[int][]float64
	Minor map[int][]float64
}

// ElementIDs returns the element ids in ascending order.
func (s *CompositeStrain) ElementIDs() []int {
	return sortedKeys(s.Major)
}

// GridPointWeight is the mass reported by the grid point weight generator in
// the principal mass axis system, one entry per direction.
type GridPointWeight struct {
	Mass [3]float64
}

func (r *Results) displacements(subcase int) *Displacements {
	d, ok := r.Displacements[subcase]
	if !ok {
		d = &Displacements{
			Translations: make(map[int][3]float64),
			Rotations:    make(map[int][3]float64),
		}
		r.Displacements[subcase] = d
	}
	return d
}

func (r *Results) rodStress(subcase int) *RodStress {
	s, ok := r.RodStress[subcase]
	if !ok {
		s = &RodStress{
			Axial:         make(map[int]float64),
			MarginAxial:   make(map[int]float64),
			Torsion:       make(map[int]float64),
			MarginTorsion: make(map[int]float64),
		}
		r.RodStress[subcase] = s
	}
	return s
}

func (r *Results) plateStress(subcase int) *PlateStress {
	s, ok := r.PlateStress[subcase]
	if !ok {
		s = &PlateStress{VonMises: make(map[int][]float64)}
		r.PlateStress[subcase] = s
	}
	return s
}

func (r *Results) compositeStrain(subcase int) *CompositeStrain {
	s, ok := r.CompositePlateStrain[subcase]
	if !ok {
		s = &CompositeStrain{
			Major: make(map[int][]float64),
			Minor: make(map[int][]float64),
		}
		r.CompositePlateStrain[subcase] = s
	}
	return s
}

// Translation returns component xyz (0..2) of the translation of a grid.
func (r *Results) Translation(subcase, grid, xyz int) (float64, error) {
	return r.vector(subcase, grid, xyz, false)
}

// Rotation returns component xyz (0..2) of the rotation of a grid.
func (r *Results) Rotation(subcase, grid, xyz int) (float64, error) {
	return r.vector(subcase, grid, xyz, true)
}

func (r *Results) vector(subcase, grid, xyz int, rotation bool) (float64, error) {
	if xyz < 0 || xyz > 2 {
		return 0, fmt.Errorf("component index %d out of range 0..2", xyz)
	}
	d, ok := r.Displacements[subcase]
	if !ok {
		return 0, fmt.Errorf("no displacements for subcase %d", subcase)
	}
	table := d.Translations
	if rotation {
		table = d.Rotations
	}
	v, ok := table[grid]
	if !ok {
		return 0, fmt.Errorf("no displacement for grid %d in subcase %d", grid, subcase)
	}
	return v[xyz], nil
}

// Rod returns the rod stress table of a subcase.
func (r *Results) Rod(subcase int) (*RodStress, error) {
	s, ok := r.RodStress[subcase]
	if !ok {
		return nil, fmt.Errorf("no rod stresses for subcase %d", subcase)
	}
	return s, nil
}

// Plate returns the plate stress table of a subcase.
func (r *Results) Plate(subcase int) (*PlateStress, error) {
	s, ok := r.PlateStress[subcase]
	if !ok {
		return nil, fmt.Errorf("no plate stresses for subcase %d", subcase)
	}
	return s, nil
}

// Composite returns the composite strain table of a subcase.
func (r *Results) Composite(subcase int) (*CompositeStrain, error) {
	s, ok := r.CompositePlateStrain[subcase]
	if !ok {
		return nil, fmt.Errorf("no composite strains for subcase %d", subcase)
	}
	return s, nil
}

// Mass returns the structure mass along axis (0..2).
func (r *Results) Mass(axis int) (float64, error) {
	if r.GridPointWeight == nil {
		return 0, fmt.Errorf("no grid point weight output, add PARAM,GRDPNT to the deck")
	}
	if axis < 0 || axis > 2 {
		return 0, fmt.Errorf("mass axis %d out of range 0..2", axis)
	}
	return r.GridPointWeight.Mass[axis], nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
