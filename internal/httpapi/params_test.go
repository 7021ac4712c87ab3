package httpapi

import (
	"testing"
	"time"

	"github.com/arawak/lumen/internal/search"
)

func strp(s string) *string { return &s }

func TestSpecFromParamsDefaults(t *testing.T) {
	spec, err := specFromParams(SearchAssetsParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.SortBy != search.SortRelevance || spec.SortOrder != search.OrderDesc {
		t.Fatalf("expected relevance/desc defaults, got %s/%s", spec.SortBy, spec.SortOrder)
	}
	if spec.Query != "" || len(spec.Tags) != 0 || len(spec.FileTypes) != 0 {
		t.Fatalf("expected empty filters, got %+v", spec)
	}
}

func TestSpecFromParamsFull(t *testing.T) {
	tags := []string{"beach", "sunset"}
	types := []string{"image", "video"}
	minSize := int64(1024)
	params := SearchAssetsParams{
		Q:       strp("golden hour"),
		Tag:     &tags,
		Type:    &types,
		From:    strp("2024-03-01"),
		To:      strp("2024-03-31"),
		MinSize: &minSize,
		Sort:    strp("size"),
		Order:   strp("asc"),
	}
	spec, err := specFromParams(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Query != "golden hour" {
		t.Fatalf("unexpected query %q", spec.Query)
	}
	if len(spec.FileTypes) != 2 || spec.FileTypes[0] != search.CategoryImage {
		t.Fatalf("unexpected file types %v", spec.FileTypes)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	if spec.DateFrom == nil || !spec.DateFrom.Equal(want) {
		t.Fatalf("unexpected from date %v", spec.DateFrom)
	}
	if spec.SizeMin == nil || *spec.SizeMin != 1024 || spec.SizeMax != nil {
		t.Fatalf("unexpected size bounds %v %v", spec.SizeMin, spec.SizeMax)
	}
	if spec.SortBy != search.SortSize || spec.SortOrder != search.OrderAsc {
		t.Fatalf("unexpected sort %s/%s", spec.SortBy, spec.SortOrder)
	}
}

func TestSpecFromParamsRejectsUnknownType(t *testing.T) {
	types := []string{"spreadsheet"}
	if _, err := specFromParams(SearchAssetsParams{Type: &types}); err == nil {
		t.Fatalf("expected error for unknown file type")
	}
}

func TestSpecFromParamsBadDate(t *testing.T) {
	if _, err := specFromParams(SearchAssetsParams{From: strp("03/01/2024")}); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}
