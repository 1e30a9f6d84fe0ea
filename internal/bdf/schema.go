package bdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// fieldSpec locates a named field inside a card. Position 0 is the card name,
// so positions match the field numbers of the Quick Reference Guide minus one.
// List fields repeat every stride positions starting at base; count 0 means
// the list is open-ended (PCOMP plies).
type fieldSpec struct {
	base   int
	stride int
	count  int
	list   bool
}

func scalar(pos int) fieldSpec { return fieldSpec{base: pos} }

func list(base, stride, count int) fieldSpec {
	return fieldSpec{base: base, stride: stride, count: count, list: true}
}

var schemas = map[string]map[string]fieldSpec{
	"GRID": {
		"ID": scalar(1), "CP": scalar(2), "X": list(3, 1, 3),
		"X1": scalar(3), "X2": scalar(4), "X3": scalar(5),
		"CD": scalar(6), "PS": scalar(7), "SEID": scalar(8),
	},
	"CROD": {
		"EID": scalar(1), "PID": scalar(2), "G1": scalar(3), "G2": scalar(4),
	},
	"CONROD": {
		"EID": scalar(1), "G1": scalar(2), "G2": scalar(3), "MID": scalar(4),
		"A": scalar(5), "J": scalar(6), "C": scalar(7), "NSM": scalar(8),
	},
	"CQUAD4": {
		"EID": scalar(1), "PID": scalar(2), "G": list(3, 1, 4),
		"G1": scalar(3), "G2": scalar(4), "G3": scalar(5), "G4": scalar(6),
		"THETA": scalar(7), "ZOFFS": scalar(8),
	},
	"PROD": {
		"PID": scalar(1), "MID": scalar(2), "A": scalar(3), "J": scalar(4),
		"C": scalar(5), "NSM": scalar(6),
	},
	"PBAR": {
		"PID": scalar(1), "MID": scalar(2), "A": scalar(3), "I1": scalar(4),
		"I2": scalar(5), "J": scalar(6), "NSM": scalar(7),
	},
	"PSHELL": {
		"PID": scalar(1), "MID1": scalar(2), "T": scalar(3), "MID2": scalar(4),
		"12I/T**3": scalar(5), "MID3": scalar(6), "TS/T": scalar(7),
		"NSM": scalar(8), "Z1": scalar(9), "Z2": scalar(10), "MID4": scalar(11),
	},
	"PCOMP": {
		"PID": scalar(1), "Z0": scalar(2), "NSM": scalar(3), "SB": scalar(4),
		"FT": scalar(5), "TREF": scalar(6), "GE": scalar(7), "LAM": scalar(8),
		"MID": list(9, 4, 0), "T": list(10, 4, 0), "THETA": list(11, 4, 0),
		"SOUT": list(12, 4, 0),
	},
	"FORCE": {
		"SID": scalar(1), "G": scalar(2), "CID": scalar(3), "F": scalar(4),
		"MAG": scalar(4), "N": list(5, 1, 3), "XYZ": list(5, 1, 3),
		"N1": scalar(5), "N2": scalar(6), "N3": scalar(7),
	},
	"MOMENT": {
		"SID": scalar(1), "G": scalar(2), "CID": scalar(3), "M": scalar(4),
		"MAG": scalar(4), "N": list(5, 1, 3), "XYZ": list(5, 1, 3),
		"N1": scalar(5), "N2": scalar(6), "N3": scalar(7),
	},
	"MAT1": {
		"MID": scalar(1), "E": scalar(2), "G": scalar(3), "NU": scalar(4),
		"RHO": scalar(5), "A": scalar(6), "TREF": scalar(7), "GE": scalar(8),
		"ST": scalar(9), "SC": scalar(10), "SS": scalar(11), "MCSID": scalar(12),
	},
	"CONM2": {
		"EID": scalar(1), "G": scalar(2), "CID": scalar(3), "M": scalar(4),
		"X": list(5, 1, 3), "X1": scalar(5), "X2": scalar(6), "X3": scalar(7),
	},
}

// KnownCard reports whether named fields can be resolved for the card.
func KnownCard(card string) bool {
	_, ok := schemas[strings.ToUpper(card)]
	return ok
}

// KnownCards lists the cards with a field schema.
func KnownCards() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldPosition resolves a field reference to a position within the card.
// The field is either a name from the card's schema or a positive field
// number. List fields require a zero-based index; scalar fields reject one.
func FieldPosition(card, field string, index *int) (int, error) {
	card = strings.ToUpper(strings.TrimSpace(card))
	field = strings.ToUpper(strings.TrimSpace(field))

	if n, err := strconv.Atoi(field); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("card %s: field number %d must be at least 1", card, n)
		}
		if index != nil {
			return 0, fmt.Errorf("card %s: field number %d does not take an index", card, n)
		}
		return n, nil
	}

	schema, ok := schemas[card]
	if !ok {
		return 0, fmt.Errorf("card %s has no named fields, use a field number instead (known cards: %v)", card, KnownCards())
	}
	loc, ok := schema[field]
	if !ok {
		return 0, fmt.Errorf("card %s has no field named %q", card, field)
	}

	if !loc.list {
		if index != nil {
			return 0, fmt.Errorf("card %s: field %s is not a list and does not take an index", card, field)
		}
		return loc.base, nil
	}

	if index == nil {
		return 0, fmt.Errorf("card %s: field %s is a list and requires an index", card, field)
	}
	i := *index
	if i < 0 || (loc.count > 0 && i >= loc.count) {
		return 0, fmt.Errorf("card %s: index %d out of range for field %s", card, i, field)
	}
	return loc.base + i*loc.stride, nil
}
