package search

import "strings"

type QueryKind int

const (
	// MatchAll is the blank-query sentinel; the text predicate passes
	// every asset.
	MatchAll QueryKind = iota
	// Phrase carries a quoted query matched as a literal substring.
	Phrase
	// Terms carries free tokens split into inclusion and exclusion lists.
	Terms
)

type TextQuery struct {
	Kind    QueryKind
	Phrase  string
	Include []string
	Exclude []string
}

// ParseQuery turns the raw query string into its structured form. It never
// fails: a lone or unbalanced quote is just a literal character inside a
// token, and a blank query yields MatchAll.
func ParseQuery(raw string) TextQuery {
	q := strings.ToLower(strings.TrimSpace(raw))
	if q == "" {
		return TextQuery{Kind: MatchAll}
	}

	if len(q) >= 2 && strings.HasPrefix(q, `"`) && strings.HasSuffix(q, `"`) {
		return TextQuery{Kind: Phrase, Phrase: q[1 : len(q)-1]}
	}

	var tq TextQuery
	tq.Kind = Terms
	for _, tok := range strings.Fields(q) {
		if strings.HasPrefix(tok, "-") {
			if term := tok[1:]; term != "" {
				tq.Exclude = append(tq.Exclude, term)
			}
			continue
		}
		tq.Include = append(tq.Include, tok)
	}
	return tq
}
