package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// API surface types, kept in step with openapi.yaml.

type Asset struct {
	Id               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	Mime             string           `json:"mime"`
	Category         string           `json:"category"`
	Bytes            int64            `json:"bytes"`
	UploadedAt       time.Time        `json:"uploadedAt"`
	Tags             []string         `json:"tags"`
	AiDescription    *string          `json:"aiDescription,omitempty"`
	AiTextContent    *string          `json:"aiTextContent,omitempty"`
	ViewCount        int              `json:"viewCount"`
	Width            int              `json:"width,omitempty"`
	Height           int              `json:"height,omitempty"`
	OriginalFilename *string          `json:"originalFilename,omitempty"`
	Sha256           *string          `json:"sha256,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	DeletedAt        *time.Time       `json:"deletedAt,omitempty"`
	Variants         AssetVariantUrls `json:"variants"`
}

type AssetVariantUrls struct {
	Thumb    string `json:"thumb"`
	Content  string `json:"content"`
	Original string `json:"original"`
}

type AssetSearchResponse struct {
	Items    []Asset `json:"items"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Total    int     `json:"total"`
}

type AssetUpdate struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	AiDescription *string   `json:"aiDescription,omitempty"`
	AiTextContent *string   `json:"aiTextContent,omitempty"`
}

type Tag struct {
	Name string `json:"name"`
}

type TagListResponse struct {
	Items []Tag `json:"items"`
	Total int   `json:"total"`
}

type SearchHistoryResponse struct {
	Items []string `json:"items"`
}

type HealthStatus string

const Ok HealthStatus = "ok"

type Health struct {
	Status HealthStatus `json:"status"`
}

type Error struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details *map[string]any `json:"details,omitempty"`
}

type SearchAssetsParams struct {
	Q        *string   `form:"q" json:"q,omitempty"`
	Tag      *[]string `form:"tag" json:"tag,omitempty"`
	Type     *[]string `form:"type" json:"type,omitempty"`
	From     *string   `form:"from" json:"from,omitempty"`
	To       *string   `form:"to" json:"to,omitempty"`
	MinSize  *int64    `form:"min_size" json:"min_size,omitempty"`
	MaxSize  *int64    `form:"max_size" json:"max_size,omitempty"`
	Sort     *string   `form:"sort" json:"sort,omitempty"`
	Order    *string   `form:"order" json:"order,omitempty"`
	Page     *int      `form:"page" json:"page,omitempty"`
	PageSize *int      `form:"page_size" json:"page_size,omitempty"`
}

type ListTagsParams struct {
	Prefix   *string `form:"prefix" json:"prefix,omitempty"`
	Page     *int    `form:"page" json:"page,omitempty"`
	PageSize *int    `form:"page_size" json:"page_size,omitempty"`
}

type GetMediaVariantParamsVariant string

const (
	GetMediaVariantParamsVariantOriginal GetMediaVariantParamsVariant = "original"
	GetMediaVariantParamsVariantContent  GetMediaVariantParamsVariant = "content"
	GetMediaVariantParamsVariantThumb    GetMediaVariantParamsVariant = "thumb"
)

type AssetId = string

// ServerInterface is implemented by Server; the wrapper below binds request
// parameters before dispatching, mirroring generated oapi-codegen glue.
type ServerInterface interface {
	SearchAssets(w http.ResponseWriter, r *http.Request, params SearchAssetsParams)
	UploadAsset(w http.ResponseWriter, r *http.Request)
	GetAsset(w http.ResponseWriter, r *http.Request, id AssetId)
	UpdateAsset(w http.ResponseWriter, r *http.Request, id AssetId)
	DeleteAsset(w http.ResponseWriter, r *http.Request, id AssetId)
	RecordAssetView(w http.ResponseWriter, r *http.Request, id AssetId)
	ListTags(w http.ResponseWriter, r *http.Request, params ListTagsParams)
	GetSearchHistory(w http.ResponseWriter, r *http.Request)
	GetMediaVariant(w http.ResponseWriter, r *http.Request, id AssetId, variant GetMediaVariantParamsVariant)
}

type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) SearchAssets(w http.ResponseWriter, r *http.Request) {
	var params SearchAssetsParams
	q := r.URL.Query()
	for _, bind := range []struct {
		name string
		dst  any
	}{
		{"q", &params.Q},
		{"tag", &params.Tag},
		{"type", &params.Type},
		{"from", &params.From},
		{"to", &params.To},
		{"min_size", &params.MinSize},
		{"max_size", &params.MaxSize},
		{"sort", &params.Sort},
		{"order", &params.Order},
		{"page", &params.Page},
		{"page_size", &params.PageSize},
	} {
		if err := runtime.BindQueryParameter("form", true, false, bind.name, q, bind.dst); err != nil {
			siw.ErrorHandlerFunc(w, r, err)
			return
		}
	}
	siw.Handler.SearchAssets(w, r, params)
}

func (siw *ServerInterfaceWrapper) UploadAsset(w http.ResponseWriter, r *http.Request) {
	siw.Handler.UploadAsset(w, r)
}

func (siw *ServerInterfaceWrapper) GetAsset(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetAsset(w, r, chi.URLParam(r, "id"))
}

func (siw *ServerInterfaceWrapper) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	siw.Handler.UpdateAsset(w, r, chi.URLParam(r, "id"))
}

func (siw *ServerInterfaceWrapper) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	siw.Handler.DeleteAsset(w, r, chi.URLParam(r, "id"))
}

func (siw *ServerInterfaceWrapper) RecordAssetView(w http.ResponseWriter, r *http.Request) {
	siw.Handler.RecordAssetView(w, r, chi.URLParam(r, "id"))
}

func (siw *ServerInterfaceWrapper) ListTags(w http.ResponseWriter, r *http.Request) {
	var params ListTagsParams
	q := r.URL.Query()
	for _, bind := range []struct {
		name string
		dst  any
	}{
		{"prefix", &params.Prefix},
		{"page", &params.Page},
		{"page_size", &params.PageSize},
	} {
		if err := runtime.BindQueryParameter("form", true, false, bind.name, q, bind.dst); err != nil {
			siw.ErrorHandlerFunc(w, r, err)
			return
		}
	}
	siw.Handler.ListTags(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetSearchHistory(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetSearchHistory(w, r)
}

func (siw *ServerInterfaceWrapper) GetMediaVariant(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetMediaVariant(w, r, chi.URLParam(r, "id"), GetMediaVariantParamsVariant(chi.URLParam(r, "variant")))
}
