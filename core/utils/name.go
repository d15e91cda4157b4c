package utils

import "strings"

// NormalizeName folds a display name for identity comparison: names
// differing only in case or surrounding whitespace are the same person.
// Used both for participant dedup on join and for the organizer check.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
