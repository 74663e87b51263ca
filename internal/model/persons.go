package model

import (
	"slices"
	"strings"
)

// PersonsDisplay joins speaker names the French way: "A", "A et B",
// "A, B et C". It returns "" for an event without speakers; callers omit
// the persons line in that case.
func (e *Event) PersonsDisplay() string {
	names := make([]string, 0, len(e.personOrder))
	for _, p := range e.personOrder {
		names = append(names, p.Name)
	}
	return JoinNames(names, "et")
}

// JoinNames joins names with ", " and puts conjunction before the last one.
// Blank names are skipped.
func JoinNames(names []string, conjunction string) string {
	names = slices.DeleteFunc(slices.Clone(names), func(n string) bool {
		return strings.TrimSpace(n) == ""
	})
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		last := len(names) - 1
		return strings.Join(names[:last], ", ") + " " + conjunction + " " + names[last]
	}
}
