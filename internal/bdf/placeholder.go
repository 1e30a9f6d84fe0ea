package bdf

import (
	"fmt"
	"sort"
	"strings"
)

// MaxPlaceholderName is the longest variable name that still fits in an
// 8-column field together with its leading '%'.
const MaxPlaceholderName = 7

// ReplacePlaceholders substitutes `%NAME` markers in raw deck text. Each marker
// and the blanks that follow it, up to 8 columns, are replaced by the value
// formatted to the same width so that fixed-column fields stay aligned.
// Markers whose name is not in values are left untouched.
func ReplacePlaceholders(text string, values map[string]float64) (string, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		if len(name) == 0 || len(name) > MaxPlaceholderName {
			return "", fmt.Errorf("placeholder %q must be 1 to %d characters long", name, MaxPlaceholderName)
		}
		names = append(names, name)
	}
	// Longer names first so %AREA10 is not consumed as %AREA1.
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "%") || strings.HasPrefix(line, "$") {
			continue
		}
		for _, name := range names {
			line = replaceMarker(line, name, values[name])
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n"), nil
}

func replaceMarker(line, name string, value float64) string {
	marker := "%" + name
	var b strings.Builder
	for {
		idx := indexFold(line, marker)
		if idx < 0 {
			b.WriteString(line)
			return b.String()
		}
		end := idx + len(marker)
		if end < len(line) && isNameByte(line[end]) {
			b.WriteString(line[:end])
			line = line[end:]
			continue
		}
		for end < len(line) && end-idx < 8 && line[end] == ' ' {
			end++
		}
		width := end - idx
		b.WriteString(line[:idx])
		b.WriteString(pad(formatReal(value, 8), width))
		line = line[end:]
	}
}

func indexFold(s, substr string) int {
	return strings.Index(strings.ToUpper(s), strings.ToUpper(substr))
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
