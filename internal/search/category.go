package search

import "strings"

// Category is the coarse classification derived from an asset's raw mime
// string. It is never stored; callers always derive it on the fly.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryArchive  Category = "archive"
)

// CategoryForMime maps a raw mime string to its category, first match wins.
// Anything unrecognized falls through to document.
func CategoryForMime(mime string) Category {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return CategoryImage
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mime, "audio/"):
		return CategoryAudio
	case strings.Contains(mime, "pdf"), strings.Contains(mime, "document"), strings.Contains(mime, "text"):
		return CategoryDocument
	case strings.Contains(mime, "zip"), strings.Contains(mime, "archive"), strings.Contains(mime, "tar"), strings.Contains(mime, "rar"):
		return CategoryArchive
	default:
		return CategoryDocument
	}
}

// ParseCategory validates a caller-supplied category name.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryImage, CategoryVideo, CategoryAudio, CategoryDocument, CategoryArchive:
		return c, true
	default:
		return "", false
	}
}
