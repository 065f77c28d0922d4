package annotation

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"swextract/internal/faults"
)

// CodeTable maps a direction label to its integer code.
type CodeTable map[string]int

var directionCodes = CodeTable{
	"Other":                     0,
	"A-P":                       1,
	"P-A":                       2,
	"F-C(Vertical)":             3,
	"C-F(Vertical)":             4,
	"Lateral(L-R)":              5,
	"Lateral(R-L)":              6,
	"No peristalsis visualized": 7,
}

// DirectionCodes returns a copy of the fixed direction code table.
func DirectionCodes() CodeTable {
	return maps.Clone(directionCodes)
}

// UnmappedValueError reports a label that has no entry in the code table.
type UnmappedValueError struct {
	Label string
	// Position is the zero-based index of the label within the remapped column.
	Position int
	// Line is the CSV line of the label when known, otherwise zero.
	Line int
}

func (e *UnmappedValueError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("direction label %q on line %d has no code", e.Label, e.Line)
	}
	return fmt.Sprintf("direction label %q at position %d has no code", e.Label, e.Position)
}

// Is matches faults.ErrUnmappedValue.
func (e *UnmappedValueError) Is(target error) bool {
	return target == faults.ErrUnmappedValue
}

// Code returns the code for label. Surrounding whitespace is ignored; the
// comparison is otherwise exact.
func (c CodeTable) Code(label string) (int, bool) {
	code, ok := c[strings.TrimSpace(label)]
	return code, ok
}

// Remap substitutes every label with its code. The first unknown label stops
// the remap with an *UnmappedValueError.
func (c CodeTable) Remap(labels []string) ([]int, error) {
	codes := make([]int, len(labels))
	for i, label := range labels {
		code, ok := c.Code(label)
		if !ok {
			return nil, &UnmappedValueError{Label: strings.TrimSpace(label), Position: i}
		}
		codes[i] = code
	}
	return codes, nil
}

// Label returns the label registered for code.
func (c CodeTable) Label(code int) (string, bool) {
	for label, value := range c {
		if value == code {
			return label, true
		}
	}
	return "", false
}

// Labels lists the table's labels ordered by code.
func (c CodeTable) Labels() []string {
	labels := slices.Collect(maps.Keys(c))
	slices.SortFunc(labels, func(a, b string) int {
		return c[a] - c[b]
	})
	return labels
}
