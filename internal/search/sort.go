package search

import (
	"cmp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/arawak/lumen/internal/store"
)

// Sort orders a copy of the assets by the spec's sort key. Each key defines a
// base comparison; OrderDesc negates it. The sort is stable, so assets that
// compare equal keep their incoming relative order.
//
// The relevance key is the odd one out: its base comparison is already
// descending by score (and descending by upload time when the query is
// blank), so the direction flip acts on top of that. The default
// relevance+desc combination therefore yields lowest score first. That
// matches the long-observed behavior of the library UI and is kept as is;
// see DESIGN.md before changing it.
func Sort(assets []store.Asset, spec Spec) []store.Asset {
	out := make([]store.Asset, len(assets))
	copy(out, assets)

	base := baseCompare(out, spec)
	desc := spec.SortOrder == OrderDesc
	sort.SliceStable(out, func(i, j int) bool {
		c := base(out[i], out[j])
		if desc {
			c = -c
		}
		return c < 0
	})
	return out
}

func baseCompare(assets []store.Asset, spec Spec) func(a, b store.Asset) int {
	switch spec.SortBy {
	case SortName:
		col := collate.New(language.Und)
		return func(a, b store.Asset) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortDate:
		return func(a, b store.Asset) int {
			return a.UploadedAt.Compare(b.UploadedAt)
		}
	case SortSize:
		return func(a, b store.Asset) int {
			return cmp.Compare(a.Bytes, b.Bytes)
		}
	case SortViews:
		return func(a, b store.Asset) int {
			return cmp.Compare(a.ViewCount, b.ViewCount)
		}
	default:
		// relevance, and the fallback for any unknown key
		if strings.TrimSpace(spec.Query) != "" {
			scores := make(map[string]float64, len(assets))
			for _, a := range assets {
				scores[a.ID] = Score(a, spec.Query)
			}
			return func(a, b store.Asset) int {
				return cmp.Compare(scores[b.ID], scores[a.ID])
			}
		}
		return func(a, b store.Asset) int {
			return b.UploadedAt.Compare(a.UploadedAt)
		}
	}
}
