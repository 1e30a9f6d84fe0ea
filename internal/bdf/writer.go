package bdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// FieldSize selects the fixed-column format used when writing cards.
type FieldSize int

const (
	SmallField FieldSize = 8
	LargeField FieldSize = 16
)

// WriteFile writes the deck to path, replacing any existing file.
func WriteFile(path string, deck *Deck, size FieldSize) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, deck, size); err != nil {
		f.Close()
		return fmt.Errorf("failed to write deck %s: %w", path, err)
	}
	return f.Close()
}

// Write renders the deck. The header is written verbatim, followed by the
// bulk data and, when the deck had a header, an ENDDATA line.
func Write(w io.Writer, deck *Deck, size FieldSize) error {
	bw := bufio.NewWriter(w)
	for _, line := range deck.Header {
		fmt.Fprintln(bw, line)
	}
	for _, c := range deck.Cards {
		for _, comment := range c.Comment {
			fmt.Fprintln(bw, comment)
		}
		writeCard(bw, c, size)
	}
	for _, comment := range deck.Trailer {
		fmt.Fprintln(bw, comment)
	}
	if len(deck.Header) > 0 {
		fmt.Fprintln(bw, "ENDDATA")
	}
	return bw.Flush()
}

// FormatCard renders a single card in the requested format.
func FormatCard(c *Card, size FieldSize) string {
	var b strings.Builder
	writeCard(&b, c, size)
	return b.String()
}

func writeCard(w io.Writer, c *Card, size FieldSize) {
	if len(c.Raw) > 0 {
		for _, line := range c.Raw {
			fmt.Fprintln(w, line)
		}
		return
	}
	width := int(size)
	perLine := 8
	name := c.Name()
	marker := "+"
	if size == LargeField {
		perLine = 4
		name += "*"
		marker = "*"
	}

	data := c.Fields[1:]
	var b strings.Builder
	b.WriteString(pad(name, 8))
	for i, v := range data {
		if i > 0 && i%perLine == 0 {
			fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
			b.Reset()
			b.WriteString(pad(marker, 8))
		}
		b.WriteString(formatField(v, width))
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
}

func formatField(v Value, width int) string {
	var s string
	switch v.Kind {
	case Int:
		s = fmt.Sprintf("%d", v.I)
	case Real:
		s = formatReal(v.F, width)
	case String:
		s = v.S
	}
	if len(s) > width {
		s = s[:width]
	}
	if v.Kind == Int || v.Kind == Real {
		return fmt.Sprintf("%*s", width, s)
	}
	return pad(s, width)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
