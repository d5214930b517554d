// Package names normalizes and compares person names. Legacy perspective
// records carry opponent names as free text, so comparisons must tolerate
// diacritics, punctuation, nicknames, and minor misspellings.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the edit-distance similarity above which two
// normalized names are considered the same person. Tunable via config.
const DefaultThreshold = 0.82

// minPrefixLen is the shortest token prefix accepted as a nickname
// ("Dan" for "Daniel"), to keep single initials from matching everything.
const minPrefixLen = 3

// Aliases maps lowercase nicknames to their canonical lowercase form.
type Aliases map[string]string

// Comparer compares names under a similarity threshold and an optional
// nickname alias table. The zero-cost construction holds no mutable state,
// so a single Comparer is safe for concurrent use.
type Comparer struct {
	threshold float64
	aliases   Aliases
}

// NewComparer creates a comparer. A threshold <= 0 selects DefaultThreshold.
func NewComparer(threshold float64, aliases Aliases) *Comparer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Comparer{threshold: threshold, aliases: aliases}
}

var defaultComparer = NewComparer(DefaultThreshold, nil)

// Match reports whether a and b plausibly name the same person, using the
// default threshold and no alias table.
func Match(a, b string) bool {
	return defaultComparer.Match(a, b)
}

// Similarity returns the 0-1 similarity of a and b under the default comparer.
func Similarity(a, b string) float64 {
	return defaultComparer.Similarity(a, b)
}

// Match reports whether a and b plausibly name the same person.
// A match is declared when the normalized strings are equal, when every
// token of the shorter name is covered by a token of the longer one
// (equal, alias-equivalent, or a nickname prefix), or when edit-distance
// similarity clears the threshold.
func (c *Comparer) Match(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if c.tokensContained(na, nb) {
		return true
	}
	return levenshteinSimilarity(na, nb) >= c.threshold
}

// Similarity returns a 0-1 score for how alike a and b are. Token
// containment counts as a full match so that "Cormier" scores 1.0 against
// "Daniel Cormier".
func (c *Comparer) Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb || c.tokensContained(na, nb) {
		return 1.0
	}
	return levenshteinSimilarity(na, nb)
}

// tokensContained reports whether all tokens of the shorter name are
// covered by tokens of the longer name.
func (c *Comparer) tokensContained(na, nb string) bool {
	ta, tb := strings.Fields(na), strings.Fields(nb)
	if len(ta) == 0 || len(tb) == 0 {
		return false
	}
	shorter, longer := ta, tb
	if len(tb) < len(ta) {
		shorter, longer = tb, ta
	}
	used := make([]bool, len(longer))
	for _, s := range shorter {
		found := false
		for i, l := range longer {
			if used[i] {
				continue
			}
			if c.tokensEquivalent(s, l) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// tokensEquivalent reports whether two single tokens refer to the same name
// part: equal, mapped through the alias table, or one a nickname prefix of
// the other.
func (c *Comparer) tokensEquivalent(a, b string) bool {
	a, b = c.canonical(a), c.canonical(b)
	if a == b {
		return true
	}
	short, long := a, b
	if len(b) < len(a) {
		short, long = b, a
	}
	return len(short) >= minPrefixLen && strings.HasPrefix(long, short)
}

func (c *Comparer) canonical(token string) string {
	if c.aliases != nil {
		if full, ok := c.aliases[token]; ok {
			return full
		}
	}
	return token
}

// Normalize lower-cases a name, folds diacritics, strips punctuation, and
// collapses whitespace.
func Normalize(s string) string {
	s = foldDiacritics(strings.ToLower(s))
	var sb strings.Builder
	sb.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		default:
			// Punctuation and whitespace both collapse to a single separator
			if !lastSpace {
				sb.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// foldDiacritics decomposes the string and drops combining marks,
// so "José" becomes "Jose".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// levenshteinSimilarity converts edit distance into a 0-1 score relative to
// the longer string.
func levenshteinSimilarity(a, b string) float64 {
	distance := levenshteinDistance([]rune(a), []rune(b))
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance computes edit distance with a rolling two-row table.
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}
