package bdf

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the type of a single bulk-data field.
type Kind int

const (
	Blank Kind = iota
	Int
	Real
	String
)

// Value is one field of a card.
type Value struct {
	Kind Kind
	I    int
	F    float64
	S    string
}

// BlankValue returns an empty field.
func BlankValue() Value { return Value{Kind: Blank} }

// IntValue returns an integer field.
func IntValue(i int) Value { return Value{Kind: Int, I: i} }

// RealValue returns a real field.
func RealValue(f float64) Value { return Value{Kind: Real, F: f} }

// StringValue returns a character field. Nastran is case-insensitive, so the
// text is upper-cased.
func StringValue(s string) Value { return Value{Kind: String, S: strings.ToUpper(s)} }

// IsBlank reports whether the field is empty.
func (v Value) IsBlank() bool { return v.Kind == Blank }

// Float returns the numeric value of an Int or Real field.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case Int:
		return float64(v.I), true
	case Real:
		return v.F, true
	}
	return 0, false
}

// String renders the field without width constraints.
func (v Value) String() string {
	switch v.Kind {
	case Int:
		return strconv.Itoa(v.I)
	case Real:
		return formatReal(v.F, 16)
	case String:
		return v.S
	}
	return ""
}

var (
	intPattern = regexp.MustCompile(`^[+-]?\d+$`)
	// Nastran allows the exponent letter to be omitted ("1.5+3") and a D
	// exponent for double precision.
	implicitExp = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))([+-]\d+)$`)
)

// ParseValue converts the raw text of a field into a Value.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return BlankValue()
	}
	if intPattern.MatchString(s) {
		i, err := strconv.Atoi(s)
		if err == nil {
			return IntValue(i)
		}
	}
	norm := strings.ToUpper(s)
	norm = strings.Replace(norm, "D", "E", 1)
	if m := implicitExp.FindStringSubmatch(norm); m != nil {
		norm = m[1] + "E" + m[2]
	}
	if f, err := strconv.ParseFloat(norm, 64); err == nil && strings.ContainsAny(norm, ".E") {
		return RealValue(f)
	}
	return StringValue(s)
}

// formatReal renders f so that it fits in width columns and always carries a
// decimal point, which Nastran uses to tell reals from integers. Of the plain
// and exponent forms that fit, the one closest to f wins.
func formatReal(f float64, width int) string {
	if f == 0 {
		return "0."
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Sprint(f)
	}

	best, bestErr := "", math.Inf(1)
	consider := func(s string) bool {
		if len(s) > width {
			return false
		}
		v := ParseValue(s)
		if v.Kind != Real {
			return false
		}
		if e := math.Abs(v.F - f); e < bestErr {
			best, bestErr = s, e
		}
		return true
	}

	if consider(plainReal(f, -1)) && bestErr == 0 {
		return best
	}
	for prec := width; prec >= 0; prec-- {
		if consider(plainReal(f, prec)) {
			break
		}
	}
	// Exponent forms, with and without the exponent letter: 1.2345+5.
	for _, letter := range []string{"E", ""} {
		if letter == "E" && width <= 8 {
			continue
		}
		for prec := width; prec >= 0; prec-- {
			if consider(exponentReal(f, prec, letter)) {
				break
			}
		}
	}
	if best == "" {
		return strconv.FormatFloat(f, 'E', 0, 64)
	}
	return best
}

// plainReal formats f without exponent, dropping trailing zeros and the
// leading zero of a fraction: 0.25 becomes .25.
func plainReal(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
	} else {
		s += "."
	}
	switch {
	case strings.HasPrefix(s, "0.") && len(s) > 2:
		s = s[1:]
	case strings.HasPrefix(s, "-0.") && len(s) > 3:
		s = "-" + s[2:]
	}
	return s
}

func exponentReal(f float64, prec int, letter string) string {
	s := strconv.FormatFloat(f, 'E', prec, 64)
	mant, exp, _ := strings.Cut(s, "E")
	if strings.Contains(mant, ".") {
		mant = strings.TrimRight(mant, "0")
	} else {
		mant += "."
	}
	return mant + letter + compactExponent(exp)
}

// compactExponent strips leading zeros from an exponent such as "+05".
func compactExponent(exp string) string {
	if exp == "" {
		return "+0"
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return sign + digits
}
