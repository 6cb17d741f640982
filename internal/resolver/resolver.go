// Package resolver turns free-text entity names from conversational commands
// into concrete board, list, and card identities. It never performs writes:
// ambiguity and misses come back as outcomes the caller must surface as
// clarification turns.
package resolver

import (
	"sort"
	"strings"
	"time"
)

// Threshold is the minimum normalized edit similarity for a fuzzy
// suggestion. Below it a name resolves to nothing.
const Threshold = 0.6

// maxDisplayed caps how many candidate names a miss carries back for display.
const maxDisplayed = 10

// Candidate is one entity eligible to match a name reference.
type Candidate struct {
	ID   string
	Name string
	// ParentID scopes the candidate (board for lists, list for cards).
	ParentID   string
	ParentName string
	// InContext marks candidates under the conversation's current board.
	InContext bool
	CreatedAt time.Time
}

// Outcome classifies a resolution attempt.
type Outcome string

const (
	// Resolved is a committed match the caller may act on.
	Resolved Outcome = "resolved"
	// Suggestion is a fuzzy match requiring user confirmation before any
	// write.
	Suggestion Outcome = "suggestion"
	// NotFound means no candidate cleared the similarity threshold.
	NotFound Outcome = "not_found"
	// AmbiguousParent means the name matched equally under multiple parents
	// and the caller must ask which one was meant.
	AmbiguousParent Outcome = "ambiguous_parent"
)

// Result is the outcome of resolving one name against a candidate set.
type Result struct {
	Outcome Outcome
	// Match is set for Resolved and Suggestion.
	Match *Candidate
	// Score is the similarity of Match to the query (1.0 for exact).
	Score float64
	// Available carries candidate names for NotFound, capped for display.
	Available []string
	// Parents carries the distinct parent names for AmbiguousParent.
	Parents []string
}

// Resolve matches a free-text name against the candidate set. Exact
// case-insensitive matches always win over fuzzy ones; exact ties prefer
// in-context candidates, then creation order. Without an exact match the
// best fuzzy candidate at or above Threshold comes back as a Suggestion,
// never a Resolved match.
func Resolve(name string, candidates []Candidate) Result {
	query := normalizeString(name)
	if query == "" || len(candidates) == 0 {
		return Result{Outcome: NotFound, Available: availableNames(candidates)}
	}

	if r, ok := resolveExact(query, candidates); ok {
		return r
	}
	if r, ok := resolveFuzzy(query, candidates); ok {
		return r
	}
	return Result{Outcome: NotFound, Available: availableNames(candidates)}
}

// resolveExact finds case-insensitive exact matches. A single winner (after
// context and creation-order tie breaks) resolves; exact matches spread
// across multiple parents with none in context are ambiguous.
func resolveExact(query string, candidates []Candidate) (Result, bool) {
	var exact []Candidate
	for _, c := range candidates {
		if normalizeString(c.Name) == query {
			exact = append(exact, c)
		}
	}
	if len(exact) == 0 {
		return Result{}, false
	}

	sortByPriority(exact)

	if !exact[0].InContext && distinctParents(exact) > 1 {
		return Result{Outcome: AmbiguousParent, Parents: parentNames(exact)}, true
	}

	match := exact[0]
	return Result{Outcome: Resolved, Match: &match, Score: 1.0}, true
}

// resolveFuzzy picks the closest candidate at or above Threshold. Similarity
// ties prefer in-context candidates, then creation order.
func resolveFuzzy(query string, candidates []Candidate) (Result, bool) {
	var (
		best      Candidate
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		score := stringSimilarity(normalizeString(c.Name), query)
		if score < Threshold {
			continue
		}
		if !found || score > bestScore ||
			(score == bestScore && higherPriority(c, best)) {
			best = c
			bestScore = score
			found = true
		}
	}
	if !found {
		return Result{}, false
	}
	return Result{Outcome: Suggestion, Match: &best, Score: bestScore}, true
}

func sortByPriority(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return higherPriority(cs[i], cs[j])
	})
}

func higherPriority(a, b Candidate) bool {
	if a.InContext != b.InContext {
		return a.InContext
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func distinctParents(cs []Candidate) int {
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		seen[c.ParentID] = struct{}{}
	}
	return len(seen)
}

func parentNames(cs []Candidate) []string {
	var names []string
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		if _, ok := seen[c.ParentID]; ok {
			continue
		}
		seen[c.ParentID] = struct{}{}
		names = append(names, c.ParentName)
	}
	return names
}

func availableNames(cs []Candidate) []string {
	names := make([]string, 0, min(len(cs), maxDisplayed))
	for _, c := range cs {
		names = append(names, c.Name)
		if len(names) >= maxDisplayed {
			break
		}
	}
	return names
}

// String similarity functions

// normalizeString normalizes a string for comparison.
func normalizeString(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	return s
}

// stringSimilarity calculates the similarity between two strings (0.0-1.0).
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(a, b)
	maxLen := max(len(a), len(b))

	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
