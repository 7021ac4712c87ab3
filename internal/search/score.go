package search

import (
	"strings"

	"github.com/arawak/lumen/internal/store"
)

const viewBonusCap = 2.0

// Score computes the additive relevance of one asset against the raw query
// text. Comparisons are lower-cased; the view-count bonus applies whether or
// not any text field matched.
func Score(a store.Asset, rawQuery string) float64 {
	q := strings.ToLower(strings.TrimSpace(rawQuery))
	score := 0.0

	name := strings.ToLower(a.Name)
	if strings.Contains(name, q) {
		score += 10
		if name == q {
			score += 20
		}
		if strings.HasPrefix(name, q) {
			score += 5
		}
	}

	for _, tag := range a.Tags {
		t := strings.ToLower(tag)
		if strings.Contains(t, q) {
			score += 5
			if t == q {
				score += 10
			}
		}
	}

	if strings.Contains(strings.ToLower(a.Description), q) {
		score += 3
	}
	if a.AIDescription != nil && strings.Contains(strings.ToLower(*a.AIDescription), q) {
		score += 2
	}
	if a.AITextContent != nil && strings.Contains(strings.ToLower(*a.AITextContent), q) {
		score += 1
	}

	bonus := float64(a.ViewCount) * 0.1
	if bonus > viewBonusCap {
		bonus = viewBonusCap
	}
	return score + bonus
}
