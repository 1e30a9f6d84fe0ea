package registry

import (
	"context"
	"fmt"
	"math"
)

// CombinedRodStress folds the axial and torsional stress of a rod into one
// equivalent stress, sqrt((2*axial^2 + 3*torsion^2) / 2).
func CombinedRodStress(axial, torsion float64) float64 {
	return math.Sqrt(0.5 * (2*axial*axial + 3*torsion*torsion))
}

// MaxAbs returns the largest absolute value of values, or 0 when empty.
func MaxAbs(values ...float64) float64 {
	m := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// rodCards are the element cards whose stresses land in the rod table.
var rodCards = []string{"CROD", "CONROD", "CTUBE"}

// RodStressOutputs returns a PostProcess hook that stores the combined stress
// of every rod element of subcase in the output named by name(eid). A
// declared output whose deck element has no stress in the results is an
// error.
func RodStressOutputs(subcase int, name func(eid int) string) func(context.Context, *Run) error {
	return func(_ context.Context, run *Run) error {
		rod, err := run.Results.Rod(subcase)
		if err != nil {
			return err
		}
		if run.Deck != nil {
			for _, card := range rodCards {
				for _, c := range run.Deck.FindAll(card) {
					eid, ok := c.ID()
					if !ok {
						continue
					}
					out := name(eid)
					if _, declared := run.Outputs[out]; !declared {
						continue
					}
					if _, ok := rod.Axial[eid]; !ok {
						return fmt.Errorf("output '%s': no rod stress for %s %d in subcase %d", out, card, eid, subcase)
					}
				}
			}
		}
		for _, eid := range rod.ElementIDs() {
			out := name(eid)
			if _, ok := run.Outputs[out]; !ok {
				continue
			}
			run.SetOutput(out, CombinedRodStress(rod.Axial[eid], rod.Torsion[eid]))
		}
		return nil
	}
}
