package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a 0-100 similarity of two strings based on the Levenshtein
// distance relative to the longer string.
func Ratio(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// TokenSetRatio compares two sorted token sets. A set fully contained in the
// other scores 100; otherwise the best ratio between the shared tokens and
// each side's remainder is returned.
func TokenSetRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inB := make(map[string]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}
	inA := make(map[string]bool, len(a))
	var shared, onlyA, onlyB []string
	for _, t := range a {
		inA[t] = true
		if inB[t] {
			shared = append(shared, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for _, t := range b {
		if !inA[t] {
			onlyB = append(onlyB, t)
		}
	}

	if len(shared) == 0 {
		return Ratio(strings.Join(onlyA, " "), strings.Join(onlyB, " "))
	}
	if len(onlyA) == 0 || len(onlyB) == 0 {
		return 100
	}

	base := strings.Join(shared, " ")
	withA := base + " " + strings.Join(onlyA, " ")
	withB := base + " " + strings.Join(onlyB, " ")
	best := Ratio(base, withA)
	if r := Ratio(base, withB); r > best {
		best = r
	}
	if r := Ratio(withA, withB); r > best {
		best = r
	}
	return best
}
