package analyzer

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

var stubTagPools = map[string][]string{
	"image":    {"photo", "outdoor", "indoor", "people", "landscape", "closeup"},
	"video":    {"clip", "recording", "event", "motion"},
	"audio":    {"recording", "voice", "music", "ambient"},
	"document": {"document", "scan", "text", "report"},
}

var stubDescriptions = map[string]string{
	"image":    "An image showing %s.",
	"video":    "A video clip of %s.",
	"audio":    "An audio recording of %s.",
	"document": "A document about %s.",
}

// Stub is a deterministic stand-in for a real analysis model: the same file
// name and mime type always produce the same result, which keeps upload
// tests and local development reproducible.
type Stub struct {
	seed int64
}

func NewStub(seed int64) *Stub {
	return &Stub{seed: seed}
}

func (s *Stub) Analyze(_ context.Context, name, mimeType string) (*Result, error) {
	kind := coarseKind(mimeType)
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte(mimeType))
	rng := rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))

	pool := stubTagPools[kind]
	n := 1 + rng.Intn(3)
	picked := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(picked) < n {
		tag := pool[rng.Intn(len(pool))]
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		picked = append(picked, tag)
	}

	subject := strings.TrimSuffix(name, extSuffix(name))
	if subject == "" {
		subject = "an uploaded file"
	}
	res := &Result{
		Tags:        picked,
		Description: fmt.Sprintf(stubDescriptions[kind], subject),
	}
	// OCR-style extraction only makes sense for things that carry text
	if kind == "document" || kind == "image" {
		if rng.Intn(2) == 0 {
			res.TextContent = fmt.Sprintf("extracted text from %s", subject)
		}
	}
	return res, nil
}

func coarseKind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	default:
		return "document"
	}
}

func extSuffix(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
