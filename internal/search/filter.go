package search

import (
	"strings"
	"time"

	"github.com/arawak/lumen/internal/store"
)

// Filter returns the assets that satisfy every active predicate of the spec.
// The input slice is left untouched; survivors keep their original order.
func Filter(assets []store.Asset, spec Spec) []store.Asset {
	tq := ParseQuery(spec.Query)

	var from, to *time.Time
	if spec.DateFrom != nil {
		t := startOfDay(*spec.DateFrom)
		from = &t
	}
	if spec.DateTo != nil {
		t := endOfDay(*spec.DateTo)
		to = &t
	}

	out := make([]store.Asset, 0, len(assets))
	for _, a := range assets {
		if !matchesText(a, tq) {
			continue
		}
		if !matchesCategory(a, spec.FileTypes) {
			continue
		}
		if !matchesTags(a, spec.Tags) {
			continue
		}
		if from != nil && a.UploadedAt.Before(*from) {
			continue
		}
		if to != nil && a.UploadedAt.After(*to) {
			continue
		}
		if spec.SizeMin != nil && a.Bytes < *spec.SizeMin {
			continue
		}
		if spec.SizeMax != nil && a.Bytes > *spec.SizeMax {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesText(a store.Asset, tq TextQuery) bool {
	switch tq.Kind {
	case Phrase:
		// Phrase matching deliberately skips the extracted text content:
		// a quoted query targets fields a user actually typed or tagged.
		if strings.Contains(strings.ToLower(a.Name), tq.Phrase) ||
			strings.Contains(strings.ToLower(a.Description), tq.Phrase) {
			return true
		}
		if a.AIDescription != nil && strings.Contains(strings.ToLower(*a.AIDescription), tq.Phrase) {
			return true
		}
		for _, tag := range a.Tags {
			if strings.Contains(strings.ToLower(tag), tq.Phrase) {
				return true
			}
		}
		return false
	case Terms:
		hay := haystack(a)
		for _, term := range tq.Include {
			if !strings.Contains(hay, term) {
				return false
			}
		}
		for _, term := range tq.Exclude {
			if strings.Contains(hay, term) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// haystack is the lower-cased concatenation of every searchable text field.
func haystack(a store.Asset) string {
	parts := make([]string, 0, 4+len(a.Tags))
	parts = append(parts, a.Name, a.Description)
	if a.AIDescription != nil {
		parts = append(parts, *a.AIDescription)
	} else {
		parts = append(parts, "")
	}
	if a.AITextContent != nil {
		parts = append(parts, *a.AITextContent)
	} else {
		parts = append(parts, "")
	}
	parts = append(parts, a.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

func matchesCategory(a store.Asset, types []Category) bool {
	if len(types) == 0 {
		return true
	}
	got := CategoryForMime(a.Mime)
	for _, t := range types {
		if t == got {
			return true
		}
	}
	return false
}

// matchesTags requires every requested tag to be an exact, case-sensitive
// member of the asset's tag set.
func matchesTags(a store.Asset, want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(a.Tags))
	for _, t := range a.Tags {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
