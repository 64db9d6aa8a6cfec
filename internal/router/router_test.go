package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediashelf/internal/blob"
	"mediashelf/internal/config"
	"mediashelf/internal/entries"
	"mediashelf/internal/localcache"
	"mediashelf/internal/model"
	"mediashelf/internal/store"
)

type testServer struct {
	server  *Server
	entries *entries.Memory
}

func newTestServer(t *testing.T, authToken string) *testServer {
	t.Helper()
	cfg := &config.Config{
		Prefix:            store.DefaultPrefix,
		AuthToken:         authToken,
		PresignTTLSeconds: 60,
	}
	entryStore := entries.NewMemory()
	images, err := store.New(context.Background(), store.Options{
		Objects: blob.NewMemory(cfg.Prefix),
		Entries: entryStore,
		Cache:   localcache.New(t.TempDir()),
		Prefix:  cfg.Prefix,
	})
	require.NoError(t, err)
	return &testServer{
		server:  New(images, entryStore, cfg),
		entries: entryStore,
	}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.server.Router.ServeHTTP(rec, req)
	return rec
}

// doJSON performs a request and decodes the response envelope.
func (ts *testServer) doJSON(t *testing.T, method, path string, body string) (int, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := ts.do(t, req)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw),
		"body: %s", rec.Body.String())
	return rec.Code, raw
}

func testPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// upload posts a multipart image with optional tags JSON and returns the
// decoded result object.
func (ts *testServer) upload(t *testing.T, content []byte, tagsJSON string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "test.png")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	if tagsJSON != "" {
		require.NoError(t, w.WriteField("tags", tagsJSON))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	result, ok := raw["result"].(map[string]any)
	require.True(t, ok, "upload result is not an object")
	return result
}

func assertEnvelope(t *testing.T, raw map[string]any, success bool) {
	t.Helper()
	got, ok := raw["success"].(bool)
	require.True(t, ok, "envelope missing success bool")
	assert.Equal(t, success, got)
	_, ok = raw["errors"].([]any)
	assert.True(t, ok, "envelope missing errors array")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t, "secret")

	// No credentials.
	status, raw := ts.doJSON(t, http.MethodGet, "/v1/images", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assertEnvelope(t, raw, false)

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/v1/images", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := ts.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/v1/images", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = ts.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open.
	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadAndList(t *testing.T) {
	ts := newTestServer(t, "")

	result := ts.upload(t, testPNG(t, color.RGBA{R: 255, A: 255}), `{"what":"avatar"}`)
	shortHash, _ := result["short_hash"].(string)
	require.Len(t, shortHash, 8)

	status, raw := ts.doJSON(t, http.MethodGet, "/v1/images", "")
	require.Equal(t, http.StatusOK, status)
	assertEnvelope(t, raw, true)
	images := raw["result"].(map[string]any)["images"].([]any)
	require.Len(t, images, 1)
	first := images[0].(map[string]any)
	assert.Equal(t, shortHash, first["short_hash"])
	assert.Equal(t, "avatar", first["tags"].(map[string]any)["what"])

	// Tag filter picks the image up; its negation does not.
	status, raw = ts.doJSON(t, http.MethodGet, "/v1/images?filter=what%3Davatar", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, raw["result"].(map[string]any)["images"].([]any), 1)

	status, raw = ts.doJSON(t, http.MethodGet, "/v1/images?filter=%21what%3Davatar", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, raw["result"].(map[string]any)["images"].([]any))
}

func TestUploadRejectsNonImage(t *testing.T) {
	ts := newTestServer(t, "")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "junk.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("definitely not an image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := ts.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Nothing was stored.
	status, raw := ts.doJSON(t, http.MethodGet, "/v1/images", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, raw["result"].(map[string]any)["images"].([]any))
}

func TestShowImage(t *testing.T) {
	ts := newTestServer(t, "")

	status, raw := ts.doJSON(t, http.MethodGet, "/v1/images/abcd", "")
	assert.Equal(t, http.StatusNotFound, status)
	assertEnvelope(t, raw, false)

	result := ts.upload(t, testPNG(t, color.RGBA{G: 255, A: 255}), "")
	shortHash := result["short_hash"].(string)

	// A four-character prefix is enough to resolve the image.
	status, raw = ts.doJSON(t, http.MethodGet, "/v1/images/"+shortHash[:4], "")
	require.Equal(t, http.StatusOK, status)
	assertEnvelope(t, raw, true)
	shown := raw["result"].(map[string]any)
	assert.Equal(t, shortHash, shown["short_hash"])
	assert.NotEmpty(t, shown["url"], "show responses carry a presigned URL")
}

func TestDeleteImage(t *testing.T) {
	ts := newTestServer(t, "")
	result := ts.upload(t, testPNG(t, color.RGBA{B: 255, A: 255}), "")
	shortHash := result["short_hash"].(string)

	status, _ := ts.doJSON(t, http.MethodDelete, "/v1/images/"+shortHash, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.doJSON(t, http.MethodGet, "/v1/images/"+shortHash, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSetImageTags(t *testing.T) {
	ts := newTestServer(t, "")
	result := ts.upload(t, testPNG(t, color.RGBA{R: 255, A: 255}), "")
	shortHash := result["short_hash"].(string)

	status, raw := ts.doJSON(t, http.MethodPut, "/v1/images/"+shortHash+"/tags",
		`{"what":"poster","source":"fanart"}`)
	require.Equal(t, http.StatusOK, status)
	assertEnvelope(t, raw, true)

	status, raw = ts.doJSON(t, http.MethodGet, "/v1/images?filter=what%3Dposter", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, raw["result"].(map[string]any)["images"].([]any), 1)
}

func TestAttachDetachFlow(t *testing.T) {
	ts := newTestServer(t, "")
	ctx := context.Background()

	result := ts.upload(t, testPNG(t, color.RGBA{R: 255, A: 255}), "")
	shortHash := result["short_hash"].(string)
	e := model.NewEntry("Dune", 2021)
	require.NoError(t, ts.entries.Create(ctx, e))

	pair := "/v1/images/" + shortHash + "/entries/" + e.ID

	status, raw := ts.doJSON(t, http.MethodPost, pair, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, raw["result"].(map[string]any)["changed"])

	// Attaching again is a no-op, not an error.
	status, raw = ts.doJSON(t, http.MethodPost, pair, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, raw["result"].(map[string]any)["changed"])

	// The listing now reports the back-reference.
	status, raw = ts.doJSON(t, http.MethodGet, "/v1/images?filter=attached", "")
	require.Equal(t, http.StatusOK, status)
	images := raw["result"].(map[string]any)["images"].([]any)
	require.Len(t, images, 1)
	refs := images[0].(map[string]any)["entries"].([]any)
	require.Len(t, refs, 1)
	assert.Equal(t, "Dune", refs[0].(map[string]any)["title"])

	status, raw = ts.doJSON(t, http.MethodDelete, pair, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, raw["result"].(map[string]any)["changed"])

	// Unknown entry id is a 404.
	status, _ = ts.doJSON(t, http.MethodPost, "/v1/images/"+shortHash+"/entries/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDuplicateEndpoints(t *testing.T) {
	ts := newTestServer(t, "")

	same := testPNG(t, color.RGBA{R: 255, A: 255})
	ts.upload(t, same, "")
	ts.upload(t, same, "")

	status, raw := ts.doJSON(t, http.MethodGet, "/v1/duplicates", "")
	require.Equal(t, http.StatusOK, status)
	groups := raw["result"].(map[string]any)["groups"].([]any)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].(map[string]any)["images"].([]any), 2)

	// Cleanup refuses to run without explicit confirmation.
	status, _ = ts.doJSON(t, http.MethodPost, "/v1/duplicates/resolve", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = ts.doJSON(t, http.MethodPost, "/v1/duplicates/resolve", `{"confirm":false}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw = ts.doJSON(t, http.MethodPost, "/v1/duplicates/resolve", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), raw["result"].(map[string]any)["deleted"])

	status, raw = ts.doJSON(t, http.MethodGet, "/v1/duplicates", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, raw["result"].(map[string]any)["groups"].([]any))
}

func TestMaintenanceEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	ts.upload(t, testPNG(t, color.RGBA{R: 255, A: 255}), "")

	status, raw := ts.doJSON(t, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, status)
	stats := raw["result"].(map[string]any)
	assert.Equal(t, float64(1), stats["objects"])

	status, raw = ts.doJSON(t, http.MethodGet, "/v1/consistency", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, raw["result"].(map[string]any)["warnings"].([]any))

	status, raw = ts.doJSON(t, http.MethodPost, "/v1/tags/reload", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), raw["result"].(map[string]any)["loaded"])

	status, raw = ts.doJSON(t, http.MethodPost, "/v1/cache/clear", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), raw["result"].(map[string]any)["removed"])
}
