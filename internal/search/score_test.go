package search

import (
	"math"
	"testing"

	"github.com/arawak/lumen/internal/store"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreNameSignals(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  float64
	}{
		{"holiday sunset", "sunset", 10},  // contains only
		{"sunset at beach", "sunset", 15}, // contains + prefix
		{"Sunset", "sunset", 35},          // contains + equal + prefix
		{"mountains", "sunset", 0},        // no match
	}
	for _, c := range cases {
		got := Score(store.Asset{Name: c.name}, c.query)
		if !almostEqual(got, c.want) {
			t.Fatalf("score(%q, %q) = %v, expected %v", c.name, c.query, got, c.want)
		}
	}
}

func TestScoreTagAccumulation(t *testing.T) {
	a := store.Asset{
		Name: "pic",
		Tags: []string{"sunset", "sunsets", "Sunset"},
	}
	// two exact matches (case folded) at 15 each, one substring match at 5
	if got := Score(a, "sunset"); !almostEqual(got, 35) {
		t.Fatalf("expected 35, got %v", got)
	}
}

func TestScoreTextFields(t *testing.T) {
	a := store.Asset{
		Name:          "pic",
		Description:   "a sunset over water",
		AIDescription: strPtr("warm sunset colors"),
		AITextContent: strPtr("sunset festival 2024"),
	}
	if got := Score(a, "sunset"); !almostEqual(got, 3+2+1) {
		t.Fatalf("expected 6, got %v", got)
	}
}

func TestScoreMissingOptionalFields(t *testing.T) {
	if got := Score(store.Asset{Name: "pic"}, "sunset"); !almostEqual(got, 0) {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestScoreViewBonusCapped(t *testing.T) {
	if got := Score(store.Asset{Name: "other", ViewCount: 5}, "sunset"); !almostEqual(got, 0.5) {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := Score(store.Asset{Name: "other", ViewCount: 500}, "sunset"); !almostEqual(got, 2) {
		t.Fatalf("view bonus must cap at 2, got %v", got)
	}
}
