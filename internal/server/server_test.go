package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/linkgraph/internal/app"
	"github.com/agenthands/linkgraph/internal/config"
)

const contactsCSV = `First Name,Last Name,Company,Position,Location
Ada,Lovelace,Acme,Engineer,Berlin
Bob,Marley,Acme Inc,Engineer,Paris
Cy,Young,Beta,Designer,Berlin
`

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	return NewServer(a.Engine, cfg.Server, nil).SetupRouter()
}

func do(r http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func uploadBody(t *testing.T, csv string, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "connections.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func upload(t *testing.T, r http.Handler, fields map[string]string) *httptest.ResponseRecorder {
	body, ct := uploadBody(t, contactsCSV, fields)
	return do(r, http.MethodPost, "/upload", body, ct)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode(t, rec)["error"].(map[string]any)["code"].(string)
}

func TestHealth(t *testing.T) {
	rec := do(newRouter(t), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestNoGraphYet(t *testing.T) {
	r := newRouter(t)
	for _, path := range []string{"/graph", "/metrics", "/node/0", "/communities"} {
		rec := do(r, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "NOT_FOUND", errorCode(t, rec), path)
	}
}

func TestUploadAndRead(t *testing.T) {
	r := newRouter(t)

	rec := upload(t, r, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	up := decode(t, rec)
	assert.Equal(t, "ok", up["status"])
	assert.Equal(t, 3.0, up["nodes"])
	assert.Equal(t, 1.0, up["edges"])
	graphID := up["graph_id"].(string)

	rec = do(r, http.MethodGet, "/graph?limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	g := decode(t, rec)
	assert.Len(t, g["graph"].(map[string]any)["nodes"], 2)
	assert.Equal(t, graphID, g["metrics"].(map[string]any)["graph_id"])

	rec = do(r, http.MethodGet, "/metrics?top=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)["metrics"].(map[string]any)
	assert.Equal(t, 3.0, m["total_nodes"])
	assert.Len(t, m["top_companies"], 1)

	rec = do(r, http.MethodGet, "/path?source=0&target=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"0", "1"}, decode(t, rec)["path"])

	rec = do(r, http.MethodGet, "/path?source=0&target=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["exists"])

	rec = do(r, http.MethodGet, "/node/0", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	node := decode(t, rec)
	assert.Equal(t, "Ada Lovelace", node["node"].(map[string]any)["label"])
	assert.Len(t, node["connections"], 1)

	rec = do(r, http.MethodGet, "/subgraph/1?depth=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["graph"].(map[string]any)["nodes"], 2)

	rec = do(r, http.MethodGet, "/communities", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	communities := decode(t, rec)["communities"].([]any)
	assert.Equal(t, "Acme network", communities[0].(map[string]any)["name"])

	rec = do(r, http.MethodGet, "/graphs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, graphID, decode(t, rec)["current"])

	rec = do(r, http.MethodGet, "/graph?graph_id=unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilterAndQuery(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusOK, upload(t, r, nil).Code)

	rec := do(r, http.MethodPost, "/filter", []byte(`{"companies":["acme"],"min_degree":1}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	graph := decode(t, rec)["graph"].(map[string]any)
	assert.Len(t, graph["nodes"], 2)
	assert.Len(t, graph["edges"], 1)

	rec = do(r, http.MethodPost, "/filter", []byte(`{"date_from":"someday"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))

	rec = do(r, http.MethodPost, "/query", []byte(`{"q":"people in Berlin"}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode(t, rec)
	assert.Equal(t, "Berlin", q["filter"].(map[string]any)["location"])
	assert.Len(t, q["graph"].(map[string]any)["nodes"], 2)

	rec = do(r, http.MethodPost, "/query", []byte(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadRequests(t *testing.T) {
	r := newRouter(t)

	rec := upload(t, r, map[string]string{"settings": `{"threshold": 0}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))

	rec = upload(t, r, map[string]string{"mapping": `{"x": "company"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct := uploadBody(t, "Name\nAda\n", nil)
	rec = do(r, http.MethodPost, "/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/upload", []byte("nope"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, upload(t, r, map[string]string{"mapping": `{"2": "company", "0": "first_name"}`}).Code)

	rec = do(r, http.MethodGet, "/subgraph/0?depth=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/subgraph/0?depth=two", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/path?source=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/node/99", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteGraph(t *testing.T) {
	r := newRouter(t)
	graphID := decode(t, upload(t, r, nil))["graph_id"].(string)

	rec := do(r, http.MethodDelete, "/graphs/"+graphID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodDelete, "/graphs/"+graphID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.MaxUploadMB = 1
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	r := NewServer(a.Engine, cfg.Server, nil).SetupRouter()

	body, ct := uploadBody(t, contactsCSV+strings.Repeat("x", 2<<20), nil)
	rec := do(r, http.MethodPost, "/upload", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDebugMetrics(t *testing.T) {
	rec := do(newRouter(t), http.MethodGet, "/debug/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
