// Package analyzer provides the content-analysis capability used by the
// upload pipeline to suggest tags, a description and extracted text for new
// assets. The search engine never calls into this package; it only sees
// whatever results were stored on the asset.
package analyzer

import "context"

type Result struct {
	Tags        []string
	Description string
	TextContent string
}

// Analyzer inspects an uploaded file's metadata and produces suggested
// enrichments. Implementations may call out to a real model; Stub is the
// self-contained variant used by default.
type Analyzer interface {
	Analyze(ctx context.Context, name, mimeType string) (*Result, error)
}
