package bdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFile parses the deck stored at path.
func ReadFile(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	deck, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deck %s: %w", path, err)
	}
	return deck, nil
}

// Parse parses deck text held in memory.
func Parse(text string) (*Deck, error) {
	return Read(strings.NewReader(text))
}

// Read parses a Nastran input file. When the text contains no `BEGIN BULK`
// line the whole input is treated as bulk data.
func Read(r io.Reader) (*Deck, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	deck := &Deck{}
	start := 0
	for i, line := range lines {
		if isBeginBulk(line) {
			deck.Header = append([]string(nil), lines[:i+1]...)
			start = i + 1
			break
		}
	}

	p := &parser{deck: deck}
	for n, line := range lines[start:] {
		if err := p.line(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", start+n+1, err)
		}
		if p.done {
			break
		}
	}
	if p.include != nil {
		return nil, fmt.Errorf("unterminated INCLUDE path: %q", p.include.Raw[0])
	}
	p.flush()
	deck.Trailer = p.comments
	return deck, nil
}

func isBeginBulk(line string) bool {
	fields := strings.Fields(strings.ToUpper(line))
	return len(fields) >= 2 && fields[0] == "BEGIN" && strings.HasPrefix(fields[1], "BULK")
}

type parser struct {
	deck     *Deck
	current  *Card
	comments []string
	done     bool
	// include is an INCLUDE entry whose quoted path continues on the next
	// line.
	include *Card
}

func (p *parser) flush() {
	if p.current == nil {
		return
	}
	p.current.trim()
	p.deck.Cards = append(p.deck.Cards, p.current)
	p.current = nil
}

func (p *parser) line(raw string) error {
	if p.include != nil {
		p.include.Raw = append(p.include.Raw, raw)
		if quotesClosed(p.include.Raw) {
			p.include = nil
		}
		return nil
	}
	if strings.HasPrefix(raw, "$") {
		p.comments = append(p.comments, raw)
		return nil
	}
	line := expandTabs(raw)
	if i := strings.IndexByte(line, '$'); i >= 0 {
		line = line[:i]
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "ENDDATA") {
		p.flush()
		p.done = true
		return nil
	}

	if isInclude(line) {
		p.flush()
		c := &Card{Fields: []Value{StringValue("INCLUDE")}, Raw: []string{raw}, Comment: p.comments}
		p.comments = nil
		p.deck.Cards = append(p.deck.Cards, c)
		if !quotesClosed(c.Raw) {
			p.include = c
		}
		return nil
	}

	if isContinuation(line) {
		if p.current == nil {
			return fmt.Errorf("continuation line without a parent card: %q", raw)
		}
		p.current.Fields = append(p.current.Fields, splitFields(line)...)
		return nil
	}

	p.flush()
	name := cardName(line)
	if name == "" {
		return fmt.Errorf("cannot read card name: %q", raw)
	}
	p.current = &Card{
		Fields:  append([]Value{StringValue(name)}, splitFields(line)...),
		Comment: p.comments,
	}
	p.comments = nil
	return nil
}

// isInclude reports whether line is an INCLUDE statement. INCLUDE files are
// not read; the statement is kept as written.
func isInclude(line string) bool {
	words := strings.Fields(strings.ReplaceAll(line, "'", " "))
	return len(words) > 0 && strings.EqualFold(words[0], "INCLUDE")
}

func quotesClosed(lines []string) bool {
	n := 0
	for _, l := range lines {
		n += strings.Count(l, "'")
	}
	return n%2 == 0
}

func isContinuation(line string) bool {
	switch line[0] {
	case '+', '*', ',':
		return true
	}
	if strings.Contains(line, ",") {
		return false
	}
	return strings.TrimSpace(col(line, 0, 8)) == ""
}

func cardName(line string) string {
	var name string
	if i := strings.IndexByte(line, ','); i >= 0 {
		name = line[:i]
	} else {
		name = col(line, 0, 8)
	}
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "*")
	return strings.ToUpper(strings.TrimSpace(name))
}

// splitFields returns the data slots of one physical line: eight for small
// field, four for large field. Every line yields its full slot count so that
// continuation lines stay aligned with the field numbering.
func splitFields(line string) []Value {
	if strings.Contains(line, ",") {
		tokens := strings.Split(line, ",")
		slots := 8
		if strings.HasSuffix(strings.TrimSpace(tokens[0]), "*") {
			slots = 4
		}
		out := make([]Value, slots)
		for i := 0; i < slots; i++ {
			if i+1 < len(tokens) {
				out[i] = ParseValue(tokens[i+1])
			}
		}
		return out
	}

	if strings.Contains(col(line, 0, 8), "*") {
		out := make([]Value, 4)
		for i := range out {
			out[i] = ParseValue(col(line, 8+16*i, 24+16*i))
		}
		return out
	}

	out := make([]Value, 8)
	for i := range out {
		out[i] = ParseValue(col(line, 8+8*i, 16+8*i))
	}
	return out
}

// col returns line[a:b] clipped to the line length.
func col(line string, a, b int) string {
	if a >= len(line) {
		return ""
	}
	if b > len(line) {
		b = len(line)
	}
	return line[a:b]
}

// expandTabs replaces tabs with spaces up to the next 8-column stop.
func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	for _, r := range line {
		if r == '\t' {
			n := 8 - b.Len()%8
			b.WriteString(strings.Repeat(" ", n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
