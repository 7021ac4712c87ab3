// Package search filters and ranks an in-memory snapshot of library assets.
//
// The engine is pure: Run never mutates its inputs and always returns a fresh
// slice, so concurrent calls over the same snapshot need no coordination.
package search

import "github.com/arawak/lumen/internal/store"

// Run applies the full pipeline: parse the free-text query, drop assets that
// fail any active predicate, then order the survivors.
func Run(assets []store.Asset, spec Spec) []store.Asset {
	return Sort(Filter(assets, spec), spec)
}
