// Package watchlist resolves recognized plates against the operator
// maintained plate watch-list.
package watchlist

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Candidate is one alternate plate reading offered by a recognition backend.
type Candidate struct {
	Plate string
	Score float64
}

// Match is the result of watch-list resolution. The zero value means no
// match. At most one of Score and FuzzyScore is set: Score carries the
// matching candidate's own confidence, FuzzyScore the string similarity
// ratio when the fuzzy fallback fired.
type Match struct {
	Plate      string
	Score      *float64
	FuzzyScore *float64
}

// IsZero reports whether no watch-list entry was matched.
func (m Match) IsZero() bool {
	return m.Plate == ""
}

// Matcher performs deterministic three-tier plate matching. It is stateless
// after construction and safe for concurrent use.
type Matcher struct {
	plates         []string // normalized, configured order preserved for tie-breaking
	plateSet       map[string]struct{}
	fuzzyThreshold float64
}

// New creates a Matcher over the configured watch-list. Plates are compared
// case-insensitively. A fuzzyThreshold of 0 disables the fuzzy fallback.
func New(plates []string, fuzzyThreshold float64) *Matcher {
	m := &Matcher{
		plates:         make([]string, 0, len(plates)),
		plateSet:       make(map[string]struct{}, len(plates)),
		fuzzyThreshold: fuzzyThreshold,
	}
	for _, plate := range plates {
		normalized := strings.ToLower(plate)
		if _, seen := m.plateSet[normalized]; seen {
			continue
		}
		m.plates = append(m.plates, normalized)
		m.plateSet[normalized] = struct{}{}
	}
	return m
}

// Empty reports whether the watch-list has no entries.
func (m *Matcher) Empty() bool {
	return len(m.plates) == 0
}

// Resolve matches the recognition output against the watch-list,
// first-match-wins across three tiers:
//
//  1. If the top plate itself is a watched plate, return an empty match. The
//     raw recognition is already correct, override semantics are reserved for
//     the candidate list revealing the true watched plate.
//  2. Scan the backend candidates in order and return the first whose plate
//     is watched, carrying that candidate's own confidence. When
//     skipFirstCandidate is set, index 0 is ignored because that backend's
//     first candidate duplicates the top plate.
//  3. If a fuzzy threshold is configured, compute the similarity ratio
//     between the top plate and every watched plate and return the best
//     entry if its ratio reaches the threshold. Ties keep the first entry in
//     configured order.
func (m *Matcher) Resolve(topPlate string, candidates []Candidate, skipFirstCandidate bool) Match {
	if topPlate == "" || m.Empty() {
		return Match{}
	}

	// Tier 1 - exact top-plate suppression.
	if _, watched := m.plateSet[strings.ToLower(topPlate)]; watched {
		return Match{}
	}

	// Tier 2 - candidate scan.
	for idx, candidate := range candidates {
		if skipFirstCandidate && idx == 0 {
			continue
		}
		if candidate.Plate == "" {
			continue
		}
		if _, watched := m.plateSet[strings.ToLower(candidate.Plate)]; watched {
			score := candidate.Score
			return Match{Plate: candidate.Plate, Score: &score}
		}
	}

	// Tier 3 - fuzzy fallback.
	if m.fuzzyThreshold <= 0 {
		return Match{}
	}

	normalizedTop := strings.ToLower(topPlate)
	bestPlate := ""
	bestRatio := 0.0
	for _, watched := range m.plates {
		ratio := levenshtein.Similarity(normalizedTop, watched, levenshtein.NewParams())
		if ratio > bestRatio {
			bestRatio = ratio
			bestPlate = watched
		}
	}

	if bestPlate != "" && bestRatio >= m.fuzzyThreshold {
		return Match{Plate: bestPlate, FuzzyScore: &bestRatio}
	}

	return Match{}
}
