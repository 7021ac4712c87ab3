package search

import (
	"reflect"
	"testing"
)

func TestParseQueryBlank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		if tq := ParseQuery(raw); tq.Kind != MatchAll {
			t.Fatalf("parse %q: expected MatchAll, got %+v", raw, tq)
		}
	}
}

func TestParseQueryPhrase(t *testing.T) {
	tq := ParseQuery(`  "Red Car"  `)
	if tq.Kind != Phrase {
		t.Fatalf("expected Phrase, got %+v", tq)
	}
	if tq.Phrase != "red car" {
		t.Fatalf("expected lower-cased phrase %q, got %q", "red car", tq.Phrase)
	}
}

func TestParseQueryTerms(t *testing.T) {
	tq := ParseQuery("Sunset -draft beach -WIP")
	if tq.Kind != Terms {
		t.Fatalf("expected Terms, got %+v", tq)
	}
	if !reflect.DeepEqual(tq.Include, []string{"sunset", "beach"}) {
		t.Fatalf("unexpected inclusions: %v", tq.Include)
	}
	if !reflect.DeepEqual(tq.Exclude, []string{"draft", "wip"}) {
		t.Fatalf("unexpected exclusions: %v", tq.Exclude)
	}
}

func TestParseQueryBareDashDropped(t *testing.T) {
	tq := ParseQuery("cat - dog")
	if !reflect.DeepEqual(tq.Include, []string{"cat", "dog"}) {
		t.Fatalf("unexpected inclusions: %v", tq.Include)
	}
	if len(tq.Exclude) != 0 {
		t.Fatalf("bare dash should strip to nothing, got %v", tq.Exclude)
	}
}

func TestParseQueryUnbalancedQuoteIsLiteral(t *testing.T) {
	tq := ParseQuery(`"red car`)
	if tq.Kind != Terms {
		t.Fatalf("unbalanced quote should tokenize, got %+v", tq)
	}
	if !reflect.DeepEqual(tq.Include, []string{`"red`, "car"}) {
		t.Fatalf("unexpected inclusions: %v", tq.Include)
	}
}

func TestParseQueryExclusionOnly(t *testing.T) {
	tq := ParseQuery("-draft")
	if tq.Kind != Terms {
		t.Fatalf("expected Terms, got %+v", tq)
	}
	if len(tq.Include) != 0 {
		t.Fatalf("expected no inclusions, got %v", tq.Include)
	}
	if !reflect.DeepEqual(tq.Exclude, []string{"draft"}) {
		t.Fatalf("unexpected exclusions: %v", tq.Exclude)
	}
}
