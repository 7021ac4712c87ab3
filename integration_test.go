//go:build integration

package lumen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/arawak/lumen/internal/analyzer"
	"github.com/arawak/lumen/internal/config"
	"github.com/arawak/lumen/internal/httpapi"
	"github.com/arawak/lumen/internal/media"
	"github.com/arawak/lumen/internal/store"
	"github.com/arawak/lumen/migrations"
)

type assetResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	AiDescription *string  `json:"aiDescription"`
	ViewCount     int      `json:"viewCount"`
}

type searchResponse struct {
	Items []assetResponse `json:"items"`
	Total int             `json:"total"`
}

func startMaria(t *testing.T, ctx context.Context) (testcontainers.Container, string) {
	req := testcontainers.ContainerRequest{
		Image:        "mariadb:11.4",
		Env:          map[string]string{"MARIADB_ROOT_PASSWORD": "root", "MARIADB_DATABASE": "lumen", "MARIADB_USER": "lumen", "MARIADB_PASSWORD": "lumen"},
		ExposedPorts: []string{"3306/tcp"},
		WaitingFor:   wait.ForListeningPort("3306/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("start mariadb: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("lumen:lumen@tcp(%s:%s)/lumen?parseTime=true&multiStatements=true", host, port.Port())
	return container, dsn
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()

	container, dsn := startMaria(t, ctx)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	if err := migrations.Up(dsn); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	root := t.TempDir()
	cfg := &config.Config{
		Bind:           ":0",
		DBDSN:          dsn,
		StorageRoot:    root,
		MaxUploadBytes: config.DefaultMaxUploadBytes,
		MaxPixels:      config.DefaultMaxPixels,
		PublicMedia:    true,
		AuthMode:       config.AuthNone,
		HistorySize:    config.DefaultHistorySize,
		SwaggerUIPath:  "/swagger",
		OpenAPIPath:    "/openapi.yaml",
	}
	st := store.New(db)
	mediaMgr := media.NewManager(root)
	ts := httptest.NewServer(httpapi.NewRouter(cfg, st, mediaMgr, analyzer.NewStub(1), nil, nil))
	t.Cleanup(ts.Close)

	assetID := uploadAsset(t, ts.URL, "Beach sunset", []string{"beach", "sunset"})
	searchFindsAsset(t, ts.URL, "sunset", assetID)
	recordView(t, ts.URL, assetID)
	historyContains(t, ts.URL, "sunset")
	deleteAsset(t, ts.URL, assetID)
	searchIsEmpty(t, ts.URL, "sunset")
}

func uploadAsset(t *testing.T, base, name string, tags []string) string {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	w, err := mw.CreateFormFile("file", "sample.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	if err := png.Encode(w, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	_ = mw.WriteField("name", name)
	for _, tag := range tags {
		_ = mw.WriteField("tags", tag)
	}
	mw.Close()

	resp, err := http.Post(base+"/api/assets", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status %d", resp.StatusCode)
	}
	var created assetResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("empty asset id")
	}
	if created.Category != "image" {
		t.Fatalf("expected image category, got %s", created.Category)
	}
	if created.AiDescription == nil {
		t.Fatalf("expected analyzer to attach a description")
	}
	return created.ID
}

func searchFindsAsset(t *testing.T, base, query, id string) {
	resp, err := http.Get(base + "/api/assets?q=" + query + "&sort=views&order=desc")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	defer resp.Body.Close()
	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	for _, item := range body.Items {
		if item.ID == id {
			return
		}
	}
	t.Fatalf("asset %s not in search results", id)
}

func recordView(t *testing.T, base, id string) {
	resp, err := http.Post(base+"/api/assets/"+id+"/view", "application/json", nil)
	if err != nil {
		t.Fatalf("record view: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("record view status %d", resp.StatusCode)
	}
}

func historyContains(t *testing.T, base, query string) {
	resp, err := http.Get(base + "/api/search/history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Items []string `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	for _, q := range body.Items {
		if q == query {
			return
		}
	}
	t.Fatalf("query %q not in history %v", query, body.Items)
}

func deleteAsset(t *testing.T, base, id string) {
	req, _ := http.NewRequest(http.MethodDelete, base+"/api/assets/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
}

func searchIsEmpty(t *testing.T, base, query string) {
	resp, err := http.Get(base + "/api/assets?q=" + query)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	defer resp.Body.Close()
	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if body.Total != 0 {
		t.Fatalf("expected empty result after delete, got %d", body.Total)
	}
}
