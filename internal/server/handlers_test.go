package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specgraph/internal/graph"
	"github.com/roach88/specgraph/internal/session"
	"github.com/roach88/specgraph/internal/store"
	"github.com/roach88/specgraph/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *session.Session) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteProject(t, root, testutil.SampleProject)

	j, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	clock := testutil.NewFixedClock(testutil.Epoch)
	sess, err := session.Open(context.Background(), root, session.WithClock(clock.Now), session.WithJournal(j))
	require.NoError(t, err)
	return NewRouter(NewHandlers(sess)), sess
}

func do(router *gin.Engine, method, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleGraph(t *testing.T) {
	router, sess := setupTestRouter(t)

	w := do(router, http.MethodGet, "/v1/graph", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var g graph.Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.Len(t, g.Nodes, 11)
	assert.Equal(t, "2026-01-01T00:00:00Z", g.GeneratedAt)

	fp, err := sess.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, strconv.Quote(fp), w.Header().Get("ETag"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandleGraph_NotModified(t *testing.T) {
	router, _ := setupTestRouter(t)

	first := do(router, http.MethodGet, "/v1/graph", nil, nil)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w := do(router, http.MethodGet, "/v1/graph", nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestHandleView(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodGet, "/v1/graph/view?view=Summary", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var g graph.Graph
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	assert.LessOrEqual(t, len(g.Nodes), 12)

	w = do(router, http.MethodGet, "/v1/graph/view?view=Pipeline&focus=contract", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))
	for _, n := range g.Nodes {
		assert.Equal(t, "Contracts", n.Category)
	}
}

func TestHandleMeta(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodGet, "/v1/meta", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"schema_version":"1.0.0","phases":[{"id":"Ingest","label":"Ingest","order":10},{"id":"Render","label":"Render","order":20}],"positions":{}}`, w.Body.String())
}

func TestHandleNode(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodGet, "/v1/nodes/graph", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "specs/contract_output/graph.schema.json", detail["schema_path"])

	w = do(router, http.MethodGet, "/v1/nodes/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN_NODE", resp.Code)
}

func TestHandleEditEdge(t *testing.T) {
	router, sess := setupTestRouter(t)

	op := map[string]string{"action": "add", "source": "project_scanner", "target": "graph", "type": "produces"}
	w := do(router, http.MethodPost, "/v1/edges", op, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp EditResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Saved)
	fp, err := sess.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, resp.Fingerprint)

	_, ok := sess.Graph().Node("project_scanner")
	require.True(t, ok)
	found := false
	for _, e := range sess.Graph().Edges {
		if e.ID == "project_scanner-produces-graph" {
			found = true
			assert.Equal(t, graph.ConfidenceManual, e.Confidence)
		}
	}
	assert.True(t, found)
}

func TestHandleEditEdge_Rejected(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodPost, "/v1/edges", map[string]string{"action": "add", "source": "a"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp EditResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)

	w = do(router, http.MethodPost, "/v1/edges", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEditPosition(t *testing.T) {
	router, sess := setupTestRouter(t)

	w := do(router, http.MethodPost, "/v1/positions", map[string]any{"id": "graph", "x": 12.5, "y": -4}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	n, ok := sess.Graph().Node("graph")
	require.True(t, ok)
	assert.Equal(t, graph.Point{X: 12.5, Y: -4}, *n.Position)

	w = do(router, http.MethodPost, "/v1/positions", map[string]any{"id": "graph", "clear": true}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/v1/positions", map[string]any{"id": "graph", "clear": true}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandlePreview(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodGet, "/v1/preview?path=docs/00_overview.md", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "# Overview\n\nPipeline overview.\n", resp.Text)

	w = do(router, http.MethodGet, "/v1/preview?path=nope.md", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Text)

	w = do(router, http.MethodGet, "/v1/preview", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHistory(t *testing.T) {
	router, _ := setupTestRouter(t)

	do(router, http.MethodPost, "/v1/edges", map[string]string{"action": "add", "source": "graph_builder", "target": "graph", "type": "verifies"}, nil)
	do(router, http.MethodPost, "/v1/edges", map[string]string{"action": "remove", "source": "x", "target": "y", "type": "verifies"}, nil)

	w := do(router, http.MethodGet, "/v1/history", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Edits, 2)
	assert.True(t, resp.Edits[0].Applied)
	assert.False(t, resp.Edits[1].Applied)

	w = do(router, http.MethodGet, "/v1/history?limit=1", nil, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Edits, 1)
	assert.Equal(t, int64(2), resp.Edits[0].Seq)

	w = do(router, http.MethodGet, "/v1/history?limit=x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHealth(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, http.MethodGet, "/v1/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Recognized)
	assert.Equal(t, 11, resp.Nodes)
	assert.True(t, resp.Journal)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)
	do(router, http.MethodGet, "/v1/graph/view?view=Docs", nil, nil)

	w := do(router, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "specgraph_session_rebuild_duration_seconds")
	assert.Contains(t, w.Body.String(), "specgraph_session_projections_total")
}

func TestRequestIDEchoed(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := do(router, http.MethodGet, "/v1/meta", nil, map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
