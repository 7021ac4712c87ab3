package search

import "time"

type SortKey string

const (
	SortName      SortKey = "name"
	SortDate      SortKey = "date"
	SortSize      SortKey = "size"
	SortViews     SortKey = "views"
	SortRelevance SortKey = "relevance"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Spec is one search invocation's full configuration. A zero field means the
// corresponding dimension imposes no constraint; active dimensions combine
// with logical AND.
type Spec struct {
	Query     string
	Tags      []string
	FileTypes []Category
	DateFrom  *time.Time
	DateTo    *time.Time
	SizeMin   *int64
	SizeMax   *int64
	SortBy    SortKey
	SortOrder Order
}

// DefaultSpec mirrors the caller-facing defaults: no filters, most relevant
// first.
func DefaultSpec() Spec {
	return Spec{SortBy: SortRelevance, SortOrder: OrderDesc}
}
