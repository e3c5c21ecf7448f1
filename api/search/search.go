/* search.go
 * Contains the fuzzy matching used to filter in-memory lists and to resolve names typed by users into records
 */

package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Filter returns the items whose text fuzzy-matches term, best ranked first. Matching is case insensitive and
// ignores accents. An empty term returns every item in its original order
func Filter[T any](items []T, term string, text func(T) string) []T {
	term = strings.TrimSpace(term)
	if term == "" {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	targets := make([]string, len(items))
	for i, item := range items {
		targets[i] = text(item)
	}

	ranks := fuzzy.RankFindNormalizedFold(term, targets)
	sort.Stable(ranks)

	out := make([]T, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, items[rank.OriginalIndex])
	}
	return out
}

// ResolveName matches a name typed by a user against the valid candidates.
// Preconditions: receives the user input and the list of valid names
// Postconditions: returns the index of the matched candidate, or false if nothing matches. An exact (case insensitive)
// match wins, otherwise the best ranked fuzzy match is taken
func ResolveName(input string, candidates []string) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return -1, false
	}
	for i, candidate := range candidates {
		if strings.EqualFold(candidate, input) {
			return i, true
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(input, candidates)
	if len(ranks) == 0 {
		return -1, false
	}
	sort.Stable(ranks)
	return ranks[0].OriginalIndex, true
}
