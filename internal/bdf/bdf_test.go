package bdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeBarDeck = `SOL 101
CEND
TITLE = THREE BAR TRUSS
SUBCASE 1
  LOAD = 1
BEGIN BULK
$ grids
GRID           1              0.      0.      0.
GRID           2            -10.     10.      0.
GRID,3,,0.,10.,0.
$ rods
CROD          11      11       1       2
CROD          12      12       1       3
PROD          11       1      1.
PROD          12       1      1.      .5
MAT1           1   1.0+7              .3     .1
FORCE          1       1       0   1000.     0.     -1.      0.
FORCE          1       2       0    500.      1.      0.      0.
PCOMP        801                 8100.    STRN
              1 .66405      0.     YES       1  .66405     45.     YES
ENDDATA
`

func TestParse_ThreeBar(t *testing.T) {
	deck, err := Parse(threeBarDeck)
	require.NoError(t, err)

	require.Len(t, deck.Header, 6)
	assert.Equal(t, "BEGIN BULK", deck.Header[5])
	require.Len(t, deck.Cards, 11)

	grid3, err := deck.Find("GRID", 3)
	require.NoError(t, err)
	assert.Equal(t, RealValue(10), grid3.Field(4))

	prod, err := deck.Find("prod", 12)
	require.NoError(t, err)
	a, err := prod.Get("A", nil)
	require.NoError(t, err)
	assert.Equal(t, RealValue(1), a)
	j, err := prod.Get("J", nil)
	require.NoError(t, err)
	assert.Equal(t, RealValue(0.5), j)

	mat, err := deck.Find("MAT1", 1)
	require.NoError(t, err)
	e, err := mat.Get("E", nil)
	require.NoError(t, err)
	assert.Equal(t, RealValue(1.0e7), e)

	force, err := deck.Find("FORCE", 1)
	require.NoError(t, err)
	assert.Equal(t, IntValue(1), force.Field(2), "first FORCE of the set is returned")

	pcomp, err := deck.Find("PCOMP", 801)
	require.NoError(t, err)
	idx := 1
	th, err := pcomp.Get("T", &idx)
	require.NoError(t, err)
	assert.Equal(t, RealValue(0.66405), th)
	theta, err := pcomp.Get("THETA", &idx)
	require.NoError(t, err)
	assert.Equal(t, RealValue(45), theta)

	assert.Len(t, prod.Comment, 0)
	crod, err := deck.Find("CROD", 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"$ rods"}, crod.Comment)
}

func TestParseValue(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Value
	}{
		{"", BlankValue()},
		{"  12 ", IntValue(12)},
		{"-3", IntValue(-3)},
		{"1.", RealValue(1)},
		{".5", RealValue(0.5)},
		{"1.5+3", RealValue(1500)},
		{"-2.5-2", RealValue(-0.025)},
		{"2.D-4", RealValue(2e-4)},
		{"1.0E+07", RealValue(1e7)},
		{"yes", StringValue("YES")},
		{"PROD", StringValue("PROD")},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got := ParseValue(tc.raw)
			if tc.expected.Kind == Real {
				require.Equal(t, Real, got.Kind)
				assert.InDelta(t, tc.expected.F, got.F, 1e-12)
				return
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFormatReal_FitsWidth(t *testing.T) {
	values := []float64{0, 1, -1, 0.5, 123456.789, -0.000123456, 1e20, 3.14159265358979, 1e-12, -987654321.123}
	for _, v := range values {
		for _, width := range []int{8, 16} {
			s := formatReal(v, width)
			assert.LessOrEqual(t, len(s), width, "value %v width %d gave %q", v, width, s)
			parsed := ParseValue(s)
			require.Equal(t, Real, parsed.Kind, "value %v width %d gave %q", v, width, s)
			if v != 0 {
				assert.InEpsilon(t, v, parsed.F, 1e-3, "value %v width %d gave %q", v, width, s)
			}
		}
	}
}

func TestFormatReal_KeepsPrecision(t *testing.T) {
	testCases := []struct {
		value    float64
		width    int
		expected string
	}{
		{0.123456789012345, 16, ".123456789012345"},
		{-0.5, 8, "-.5"},
		{1234567.25, 16, "1234567.25"},
		{1.0 / 3, 16, ".333333333333333"},
		{6.02214076e23, 16, "6.02214076E+23"},
		{-1.2345678901234e-7, 16, "-1.23456789012-7"},
		{1e-12, 8, "1.-12"},
	}
	for _, tc := range testCases {
		got := formatReal(tc.value, tc.width)
		assert.Equal(t, tc.expected, got, "value %v width %d", tc.value, tc.width)
		assert.LessOrEqual(t, len(got), tc.width)
	}
}

func TestFieldPosition(t *testing.T) {
	zero, two, five := 0, 2, 5
	testCases := []struct {
		name      string
		card      string
		field     string
		index     *int
		expected  int
		expectErr bool
	}{
		{name: "prod area", card: "PROD", field: "A", expected: 3},
		{name: "case insensitive", card: "pshell", field: "t", expected: 3},
		{name: "field number", card: "PROD", field: "3", expected: 3},
		{name: "force direction", card: "FORCE", field: "xyz", index: &two, expected: 7},
		{name: "force magnitude alias", card: "FORCE", field: "mag", expected: 4},
		{name: "pcomp ply thickness", card: "PCOMP", field: "T", index: &five, expected: 30},
		{name: "pcomp first ply material", card: "PCOMP", field: "MID", index: &zero, expected: 9},
		{name: "list without index", card: "FORCE", field: "N", expectErr: true},
		{name: "scalar with index", card: "PROD", field: "A", index: &zero, expectErr: true},
		{name: "index out of range", card: "FORCE", field: "N", index: &five, expectErr: true},
		{name: "unknown field", card: "PROD", field: "Q", expectErr: true},
		{name: "unknown card", card: "CBUSH", field: "K", expectErr: true},
		{name: "field number on unknown card", card: "CBUSH", field: "4", expected: 4},
		{name: "field number zero", card: "PROD", field: "0", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := FieldPosition(tc.card, tc.field, tc.index)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, pos)
		})
	}
}

func TestWrite_LargeFieldRoundTrip(t *testing.T) {
	deck, err := Parse(threeBarDeck)
	require.NoError(t, err)

	prod, err := deck.Find("PROD", 11)
	require.NoError(t, err)
	require.NoError(t, prod.Set("A", nil, 0.123456789012345))

	idx := 3
	pcomp, err := deck.Find("PCOMP", 801)
	require.NoError(t, err)
	require.NoError(t, pcomp.Set("T", &idx, 0.25), "setting a ply beyond the card extends it")

	path := filepath.Join(t.TempDir(), "out.bdf")
	require.NoError(t, WriteFile(path, deck, LargeField))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "SOL 101\n"))
	assert.Contains(t, text, "PROD*")
	assert.True(t, strings.HasSuffix(text, "ENDDATA\n"))

	again, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, again.Cards, len(deck.Cards))
	for i := range deck.Cards {
		assert.Equal(t, deck.Cards[i].Name(), again.Cards[i].Name())
		require.Len(t, again.Cards[i].Fields, len(deck.Cards[i].Fields), "card %d (%s)", i, deck.Cards[i].Name())
	}

	prod2, err := again.Find("PROD", 11)
	require.NoError(t, err)
	a, err := prod2.Get("A", nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.123456789012345, a.F, 1e-12)

	pcomp2, err := again.Find("PCOMP", 801)
	require.NoError(t, err)
	th, err := pcomp2.Get("T", &idx)
	require.NoError(t, err)
	assert.Equal(t, RealValue(0.25), th)
}

func TestWrite_SmallField(t *testing.T) {
	c := NewCard("GRID", IntValue(7), BlankValue(), RealValue(1.5), RealValue(-2), RealValue(123456.789))
	out := FormatCard(c, SmallField)
	assert.Equal(t, "GRID           7             1.5     -2.123456.8\n", out)

	parsed, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, parsed.Cards, 1)
	assert.InDelta(t, 123456.8, parsed.Cards[0].Field(5).F, 1e-9)
}

func TestSetNumber_KeepsIntegers(t *testing.T) {
	c := NewCard("PROD", IntValue(11), IntValue(1), RealValue(1))
	require.NoError(t, c.SetNumber(2, 4))
	assert.Equal(t, IntValue(4), c.Field(2))
	require.NoError(t, c.SetNumber(2, 4.5))
	assert.Equal(t, RealValue(4.5), c.Field(2))
	require.Error(t, c.SetField(0, IntValue(1)))
}

func TestRead_ContinuationWithoutParent(t *testing.T) {
	_, err := Parse("+       1.      2.\n")
	require.Error(t, err)
}

func TestRead_NoHeader(t *testing.T) {
	deck, err := Parse("PROD,1,2,3.\n")
	require.NoError(t, err)
	assert.Empty(t, deck.Header)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, deck, SmallField))
	assert.NotContains(t, buf.String(), "ENDDATA")
}

func TestReplacePlaceholders(t *testing.T) {
	text := "PROD          11       1%AREA1  \nPROD          12       1%AREA10 \n$ %AREA1 stays\n"
	out, err := ReplacePlaceholders(text, map[string]float64{"AREA1": 2.5, "AREA10": 0.75})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "PROD          11       12.5     ", lines[0])
	assert.Equal(t, "PROD          12       1.75     ", lines[1])
	assert.Equal(t, "$ %AREA1 stays", lines[2])

	deck, err := Parse(out)
	require.NoError(t, err)
	prod, err := deck.Find("PROD", 12)
	require.NoError(t, err)
	assert.Equal(t, RealValue(0.75), prod.Field(3))

	_, err = ReplacePlaceholders(text, map[string]float64{"TOOLONGX": 1})
	require.Error(t, err)
}

func TestElementsByProperty(t *testing.T) {
	deck, err := Parse(`BEGIN BULK
CQUAD4         1       2       1       2       3       4
CQUAD4         2       1       2       3       4       5
CQUAD4         3       2       3       4       5       6
CROD          11      11       1       2
ENDDATA
`)
	require.NoError(t, err)

	groups, err := deck.ElementsByProperty("cquad4")
	require.NoError(t, err)
	assert.Equal(t, map[int][]int{1: {2}, 2: {1, 3}}, groups)

	bad := NewCard("CQUAD4", IntValue(9), StringValue("P1"))
	deck.Add(bad)
	_, err = deck.ElementsByProperty("CQUAD4")
	assert.ErrorContains(t, err, "not an integer")
}

func TestRead_IncludeKeptVerbatim(t *testing.T) {
	text := `SOL 101
CEND
BEGIN BULK
INCLUDE 'props/Prod.bdf'
GRID           1              0.      0.      0.
include 'mesh/
         Part_A.bdf'
PROD          11       1      1.
ENDDATA
`
	deck, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, deck.Cards, 4)
	assert.Equal(t, "INCLUDE", deck.Cards[0].Name())
	assert.Equal(t, []string{"INCLUDE 'props/Prod.bdf'"}, deck.Cards[0].Raw)
	assert.Equal(t, []string{"include 'mesh/", "         Part_A.bdf'"}, deck.Cards[2].Raw)

	prod, err := deck.Find("PROD", 11)
	require.NoError(t, err)
	require.NoError(t, prod.Set("A", nil, 2.5))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, deck, LargeField))
	out := buf.String()
	assert.Contains(t, out, "\nINCLUDE 'props/Prod.bdf'\nGRID*")
	assert.Contains(t, out, "\ninclude 'mesh/\n         Part_A.bdf'\nPROD*")

	again, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, again.Cards, 4)
	assert.Equal(t, deck.Cards[2].Raw, again.Cards[2].Raw)

	_, err = Parse("INCLUDE 'never/closed.bdf\n")
	require.ErrorContains(t, err, "unterminated INCLUDE")
}
