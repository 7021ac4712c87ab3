package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arawak/lumen/internal/analyzer"
	"github.com/arawak/lumen/internal/config"
	"github.com/arawak/lumen/internal/media"
	"github.com/arawak/lumen/internal/search"
	"github.com/arawak/lumen/internal/store"
	"github.com/arawak/lumen/internal/swaggerui"
)

const defaultPageSize = 30

type Server struct {
	cfg      *config.Config
	store    *store.Store
	media    *media.Manager
	analyzer analyzer.Analyzer
	apiKeys  *APIKeyStore
	history  *SearchHistory
	logger   *slog.Logger
}

var (
	openapiOnce sync.Once
	openapiData []byte
	openapiErr  error
)

func loadOpenAPI() ([]byte, error) {
	openapiOnce.Do(func() {
		path := filepath.Clean("openapi.yaml")
		openapiData, openapiErr = os.ReadFile(path)
	})
	return openapiData, openapiErr
}

func NewRouter(cfg *config.Config, st *store.Store, mediaMgr *media.Manager, an analyzer.Analyzer, apiKeys *APIKeyStore, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	s := &Server{
		cfg:      cfg,
		store:    st,
		media:    mediaMgr,
		analyzer: an,
		apiKeys:  apiKeys,
		history:  NewSearchHistory(cfg.HistorySize),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(loggingMiddleware(logger))

	if len(cfg.CORSAllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "X-Api-Key", "Content-Type", "Accept"},
			AllowCredentials: true,
		})
		r.Use(c.Handler)
	}

	r.Get("/healthz", s.GetHealthz)
	r.Get("/readyz", s.GetReadyz)
	r.Get(cfg.OpenAPIPath, s.serveOpenAPI)
	r.Mount(cfg.SwaggerUIPath, swaggerui.Handler(cfg.OpenAPIPath))

	wrapper := ServerInterfaceWrapper{Handler: s, ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	}}

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware())
		r.With(s.requirePermissions(PermCanSearch)).Get("/api/assets", wrapper.SearchAssets)
		r.With(s.requirePermissions(PermCanUpload)).Post("/api/assets", wrapper.UploadAsset)
		r.With(s.requirePermissions(PermCanSearch)).Get("/api/assets/{id}", wrapper.GetAsset)
		r.With(s.requirePermissions(PermCanUpdate)).Patch("/api/assets/{id}", wrapper.UpdateAsset)
		r.With(s.requirePermissions(PermCanDelete)).Delete("/api/assets/{id}", wrapper.DeleteAsset)
		r.With(s.requirePermissions(PermCanView)).Post("/api/assets/{id}/view", wrapper.RecordAssetView)
		r.With(s.requirePermissions(PermCanView)).Get("/api/search/history", wrapper.GetSearchHistory)
		r.With(s.requirePermissions(PermCanSearch)).Get("/api/tags", wrapper.ListTags)
	})

	r.Group(func(r chi.Router) {
		if !cfg.PublicMedia {
			r.Use(s.authMiddleware())
			r.Use(s.requirePermissions(PermCanSearch))
		}
		r.Get("/media/{id}/{variant}", wrapper.GetMediaVariant)
	})

	return r
}

func (s *Server) authMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch s.cfg.AuthMode {
			case config.AuthNone:
				next.ServeHTTP(w, r)
			case config.AuthAPIKey:
				key := strings.TrimSpace(r.Header.Get("X-Api-Key"))
				if key == "" {
					key = bearerToken(r.Header.Get("Authorization"))
				}
				entry, ok := s.apiKeys.Lookup(key)
				if !ok {
					writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid api key", nil)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), newPrincipalFromAPIKey(entry))))
			case config.AuthOIDC:
				writeError(w, http.StatusNotImplemented, "not_implemented", "oidc auth mode is not implemented yet", nil)
			default:
				writeError(w, http.StatusUnauthorized, "unauthorized", "auth mode not supported", nil)
			}
		})
	}
}

func (s *Server) requirePermissions(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.cfg.AuthMode == config.AuthNone {
				next.ServeHTTP(w, r)
				return
			}
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "no principal", nil)
				return
			}
			for _, perm := range perms {
				if !p.HasPermission(perm) {
					writeError(w, http.StatusForbidden, "forbidden", "missing permission "+perm, nil)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	data, err := loadOpenAPI()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "unable to load openapi.yaml", map[string]any{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) GetHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: Ok})
}

func (s *Server) GetReadyz(w http.ResponseWriter, _ *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "database unreachable", map[string]any{"error": err.Error()})
		return
	}
	if err := s.media.IsWritable(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "storage not writable", map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Health{Status: Ok})
}

func (s *Server) SearchAssets(w http.ResponseWriter, r *http.Request, params SearchAssetsParams) {
	spec, err := specFromParams(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	page := derefInt(params.Page, 1)
	if page <= 0 {
		page = 1
	}
	pageSize := derefInt(params.PageSize, defaultPageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	s.logger.Info("search", "query", spec.Query, "tags", spec.Tags, "types", spec.FileTypes, "sort", spec.SortBy, "order", spec.SortOrder, "page", page)

	library, err := s.store.ListLibrary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to load library", map[string]any{"error": err.Error()})
		return
	}
	ranked := search.Run(library, spec)
	s.history.Record(spec.Query)

	total := len(ranked)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	resp := AssetSearchResponse{Page: page, PageSize: pageSize, Total: total, Items: make([]Asset, 0, end-start)}
	for i := start; i < end; i++ {
		resp.Items = append(resp.Items, s.toAPIAsset(&ranked[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// specFromParams maps bound query parameters onto an engine spec. Unknown
// sort keys and orders pass through untouched; the engine treats them as
// its defaults rather than rejecting the request.
func specFromParams(params SearchAssetsParams) (search.Spec, error) {
	spec := search.DefaultSpec()
	spec.Query = getStringPtr(params.Q)
	spec.Tags = derefStringSlice(params.Tag)

	for _, raw := range derefStringSlice(params.Type) {
		c, ok := search.ParseCategory(raw)
		if !ok {
			return spec, fmt.Errorf("unknown file type %q", raw)
		}
		spec.FileTypes = append(spec.FileTypes, c)
	}

	if params.From != nil {
		t, err := time.ParseInLocation("2006-01-02", *params.From, time.Local)
		if err != nil {
			return spec, fmt.Errorf("invalid from date: %s", *params.From)
		}
		spec.DateFrom = &t
	}
	if params.To != nil {
		t, err := time.ParseInLocation("2006-01-02", *params.To, time.Local)
		if err != nil {
			return spec, fmt.Errorf("invalid to date: %s", *params.To)
		}
		spec.DateTo = &t
	}
	spec.SizeMin = params.MinSize
	spec.SizeMax = params.MaxSize

	if params.Sort != nil {
		spec.SortBy = search.SortKey(*params.Sort)
	}
	if params.Order != nil && search.Order(*params.Order) == search.OrderAsc {
		spec.SortOrder = search.OrderAsc
	}
	return spec, nil
}

func (s *Server) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to parse multipart", map[string]any{"error": err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "file is required", nil)
		return
	}
	defer file.Close()

	save, err := s.media.Save(r.Context(), file, header.Filename, s.cfg.MaxUploadBytes, s.cfg.MaxPixels)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, media.ErrTooLarge) || errors.Is(err, media.ErrInvalidImage) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "upload_failed", err.Error(), nil)
		return
	}

	name := formValue(r.MultipartForm.Value, "name")
	if name == "" {
		name = header.Filename
	}
	tags := r.MultipartForm.Value["tags"]

	assetInput := store.AssetCreate{
		Name:             name,
		Description:      formValue(r.MultipartForm.Value, "description"),
		Tags:             tags,
		Width:            save.Width,
		Height:           save.Height,
		Bytes:            save.Bytes,
		Mime:             save.Mime,
		OriginalFilename: header.Filename,
		SHA256:           save.SHA256,
	}

	if s.analyzer != nil {
		res, err := s.analyzer.Analyze(r.Context(), name, save.Mime)
		if err != nil {
			// analysis is best-effort enrichment, never a reason to fail the upload
			s.logger.Warn("content analysis failed", "name", name, "error", err)
		} else {
			assetInput.Tags = append(assetInput.Tags, res.Tags...)
			if res.Description != "" {
				assetInput.AIDescription = &res.Description
			}
			if res.TextContent != "" {
				assetInput.AITextContent = &res.TextContent
			}
		}
	}

	asset, err := s.store.CreateAsset(r.Context(), assetInput)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) && asset != nil {
			writeJSON(w, http.StatusConflict, s.toAPIAsset(asset))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to persist asset", map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, s.toAPIAsset(asset))
}

func (s *Server) GetAsset(w http.ResponseWriter, r *http.Request, id AssetId) {
	asset, err := s.store.GetAsset(r.Context(), id, false)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "not_found", "asset not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, s.toAPIAsset(asset))
}

func (s *Server) UpdateAsset(w http.ResponseWriter, r *http.Request, id AssetId) {
	var payload AssetUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	upd := store.AssetUpdate{
		Name:          payload.Name,
		Description:   payload.Description,
		Tags:          payload.Tags,
		AIDescription: payload.AiDescription,
		AITextContent: payload.AiTextContent,
	}
	asset, err := s.store.UpdateAsset(r.Context(), id, upd)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "update_failed", "could not update asset", map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.toAPIAsset(asset))
}

func (s *Server) DeleteAsset(w http.ResponseWriter, r *http.Request, id AssetId) {
	if err := s.store.DeleteAsset(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "delete_failed", "could not delete asset", map[string]any{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RecordAssetView(w http.ResponseWriter, r *http.Request, id AssetId) {
	if err := s.store.RecordView(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "view_failed", "could not record view", map[string]any{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetSearchHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SearchHistoryResponse{Items: s.history.Recent()})
}

func (s *Server) ListTags(w http.ResponseWriter, r *http.Request, params ListTagsParams) {
	page := derefInt(params.Page, 1)
	size := derefInt(params.PageSize, 100)
	tags, total, err := s.store.ListTags(r.Context(), getStringPtr(params.Prefix), page, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to list tags", map[string]any{"error": err.Error()})
		return
	}
	resp := TagListResponse{Items: make([]Tag, 0, len(tags)), Total: total}
	for _, t := range tags {
		resp.Items = append(resp.Items, Tag{Name: t})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetMediaVariant(w http.ResponseWriter, r *http.Request, id AssetId, variant GetMediaVariantParamsVariant) {
	asset, err := s.store.GetAsset(r.Context(), id, false)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "not_found", "asset not found", nil)
		return
	}
	var path string
	ext := guessExt(asset.OriginalFilename)
	switch variant {
	case GetMediaVariantParamsVariantThumb:
		path = s.media.PathForVariant(asset.SHA256, media.VariantThumb, ext)
	case GetMediaVariantParamsVariantContent:
		path = s.media.PathForVariant(asset.SHA256, media.VariantContent, ext)
	case GetMediaVariantParamsVariantOriginal:
		path = s.media.PathForVariant(asset.SHA256, media.VariantOriginal, ext)
	default:
		writeError(w, http.StatusNotFound, "not_found", "variant not found", nil)
		return
	}

	etag := fmt.Sprintf("\"%s-%s\"", asset.SHA256, variant)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "variant not found", nil)
		return
	}
	defer file.Close()

	info, _ := file.Stat()
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = asset.Mime
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("ETag", etag)
	cache := "public, max-age=86400"
	if variant != GetMediaVariantParamsVariantOriginal {
		cache = "public, max-age=31536000, immutable"
	}
	w.Header().Set("Cache-Control", cache)
	if info != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, file)
}

func (s *Server) toAPIAsset(a *store.Asset) Asset {
	orig := a.OriginalFilename
	sha := a.SHA256
	return Asset{
		Id:               a.ID,
		Name:             a.Name,
		Description:      a.Description,
		Mime:             a.Mime,
		Category:         string(search.CategoryForMime(a.Mime)),
		Bytes:            a.Bytes,
		UploadedAt:       a.UploadedAt,
		Tags:             a.Tags,
		AiDescription:    a.AIDescription,
		AiTextContent:    a.AITextContent,
		ViewCount:        a.ViewCount,
		Width:            a.Width,
		Height:           a.Height,
		OriginalFilename: &orig,
		Sha256:           &sha,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		DeletedAt:        a.DeletedAt,
		Variants: AssetVariantUrls{
			Thumb:    fmt.Sprintf("/media/%s/thumb", a.ID),
			Content:  fmt.Sprintf("/media/%s/content", a.ID),
			Original: fmt.Sprintf("/media/%s/original", a.ID),
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	e := Error{Code: code, Message: message}
	if details != nil {
		e.Details = &details
	}
	writeJSON(w, status, e)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
		})
	}
}

func getStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefStringSlice(v *[]string) []string {
	if v == nil {
		return nil
	}
	return *v
}

func formValue(values map[string][]string, key string) string {
	if vs := values[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func derefInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func guessExt(filename string) string {
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(filename)))
	if ext == "" {
		ext = ".bin"
	}
	return ext
}
