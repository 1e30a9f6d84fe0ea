package bdf

import (
	"fmt"
	"strings"
)

// Card is a single bulk-data entry. Fields[0] holds the card name and the
// remaining positions follow the entry's field order with continuation
// markers removed.
type Card struct {
	Fields []Value
	// Comment holds the `$` lines that preceded the card.
	Comment []string
	// Raw holds the lines of an entry that is written back verbatim, such
	// as an INCLUDE statement. Fields then only carries the entry name.
	Raw []string
}

// NewCard builds a card from a name and its data fields.
func NewCard(name string, fields ...Value) *Card {
	all := make([]Value, 0, len(fields)+1)
	all = append(all, StringValue(name))
	all = append(all, fields...)
	return &Card{Fields: all}
}

// Name returns the upper-cased card name.
func (c *Card) Name() string {
	if len(c.Fields) == 0 {
		return ""
	}
	return c.Fields[0].S
}

// ID returns the integer in field 1, which identifies most cards.
func (c *Card) ID() (int, bool) {
	v := c.Field(1)
	if v.Kind != Int {
		return 0, false
	}
	return v.I, true
}

// Field returns the value at position pos, or a blank past the end.
func (c *Card) Field(pos int) Value {
	if pos < 0 || pos >= len(c.Fields) {
		return BlankValue()
	}
	return c.Fields[pos]
}

// SetField stores v at pos, padding the card with blanks as needed.
func (c *Card) SetField(pos int, v Value) error {
	if pos < 1 {
		return fmt.Errorf("card %s: cannot overwrite field %d", c.Name(), pos)
	}
	for len(c.Fields) <= pos {
		c.Fields = append(c.Fields, BlankValue())
	}
	c.Fields[pos] = v
	return nil
}

// SetNumber stores a numeric design value, keeping integer fields integer
// when the value allows it.
func (c *Card) SetNumber(pos int, f float64) error {
	cur := c.Field(pos)
	if cur.Kind == Int && f == float64(int(f)) {
		return c.SetField(pos, IntValue(int(f)))
	}
	return c.SetField(pos, RealValue(f))
}

// Get resolves a named field (see FieldPosition) and returns its value.
func (c *Card) Get(field string, index *int) (Value, error) {
	pos, err := FieldPosition(c.Name(), field, index)
	if err != nil {
		return Value{}, err
	}
	return c.Field(pos), nil
}

// Set resolves a named field and stores a numeric value in it.
func (c *Card) Set(field string, index *int, f float64) error {
	pos, err := FieldPosition(c.Name(), field, index)
	if err != nil {
		return err
	}
	return c.SetNumber(pos, f)
}

// trim drops trailing blank fields.
func (c *Card) trim() {
	n := len(c.Fields)
	for n > 1 && c.Fields[n-1].IsBlank() {
		n--
	}
	c.Fields = c.Fields[:n]
}

// Deck is a parsed input file. Everything up to and including the
// `BEGIN BULK` line is kept as raw text so that executive and case control
// decks round-trip untouched.
type Deck struct {
	Header []string
	Cards  []*Card
	// Trailer holds `$` comments after the last card.
	Trailer []string
}

// Find returns the first card with the given name whose field 1 equals id.
// For load cards this is the first entry of the load set.
func (d *Deck) Find(name string, id int) (*Card, error) {
	name = strings.ToUpper(name)
	for _, c := range d.Cards {
		if c.Name() != name {
			continue
		}
		if cid, ok := c.ID(); ok && cid == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no %s card with id %d in deck", name, id)
}

// FindAll returns every card with the given name, in deck order.
func (d *Deck) FindAll(name string) []*Card {
	name = strings.ToUpper(name)
	var out []*Card
	for _, c := range d.Cards {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// Add appends a card to the bulk data.
func (d *Deck) Add(c *Card) {
	d.Cards = append(d.Cards, c)
}

// ElementsByProperty groups the ids of all elements of the given card by
// their PID field, preserving deck order within a group.
func (d *Deck) ElementsByProperty(card string) (map[int][]int, error) {
	groups := make(map[int][]int)
	for _, c := range d.FindAll(card) {
		eid, ok := c.ID()
		if !ok {
			return nil, fmt.Errorf("%s card without element id", c.Name())
		}
		pid, err := c.Get("PID", nil)
		if err != nil {
			return nil, err
		}
		if pid.Kind != Int {
			return nil, fmt.Errorf("%s %d: PID %s is not an integer", c.Name(), eid, pid)
		}
		groups[pid.I] = append(groups[pid.I], eid)
	}
	return groups, nil
}
