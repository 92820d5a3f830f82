package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chipkg "github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marksearch/marksearch/internal/domain"
	"github.com/marksearch/marksearch/internal/index"
	searchuc "github.com/marksearch/marksearch/internal/usecase/search"
	"github.com/marksearch/marksearch/internal/vectorizer"
)

type stubSource struct {
	docs []domain.Document
	err  error
}

func (s *stubSource) All(_ context.Context) ([]domain.Document, error) {
	return s.docs, s.err
}

// stubVectorizer returns a fixed vector per keyword so similarities are exact.
type stubVectorizer struct {
	vecs map[string][]float32
}

func (s *stubVectorizer) Vectorize(_ context.Context, text string) ([]float32, vectorizer.Method) {
	lower := strings.ToLower(text)
	for kw, v := range s.vecs {
		if strings.Contains(lower, kw) {
			return v, vectorizer.MethodLocal
		}
	}
	return []float32{0, 0}, vectorizer.MethodLocal
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(_ context.Context) error { return p.err }

func testDocs() []domain.Document {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return []domain.Document{
		{ID: "react", Title: "React Hooks Guide", Tags: []string{"react", "ui"}, CreatedAt: now},
		// Keyword "weak" maps to a vector with cosine similarity ~0.24
		// against the react query vector, under the default threshold.
		{ID: "weak", Title: "Weak Signal", Tags: []string{"misc"}, CreatedAt: now.Add(-time.Hour)},
	}
}

func testVecs() map[string][]float32 {
	return map[string][]float32{
		"react": {1, 0},
		"weak":  {1, 4},
	}
}

func newTestRouter(t *testing.T, src searchuc.DocumentSource, ping Pinger) *chipkg.Mux {
	t.Helper()
	svc, err := searchuc.New(src, index.New(0, nil), &stubVectorizer{vecs: testVecs()}, 2, nil)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	r := chipkg.NewRouter()
	NewServer(svc, ping, zap.NewNop()).Routes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandleSearch_OK(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search", `{"query":"react"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "react", resp.Results[0].Item.ID)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Contains(t, resp.Suggestions, "#react")
}

func TestHandleSearch_EmptyQueryListsEverything(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
}

func TestHandleSearch_MalformedBody(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search", `{"query":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "bad_request", resp.Code)
}

func TestHandleSearch_InvalidSortKey(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search", `{"sort_by":"popularity"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Code)
}

func TestHandleSearch_TagFilter(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search", `{"filters":{"tags":["misc"]}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "weak", resp.Results[0].Item.ID)
}

func TestHandleSearch_StoreUnavailable(t *testing.T) {
	r := newTestRouter(t, &stubSource{err: domain.ErrStoreUnavailable}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search", `{"query":"react"}`)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "store_unavailable", resp.Code)
}

func TestHandleSemantic_DefaultThresholdApplied(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search/semantic", `{"query":"react"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp semanticResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "react", resp.Results[0].Item.ID)
	assert.Equal(t, "local", resp.Method)
}

func TestHandleSemantic_ExplicitThreshold(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search/semantic", `{"query":"react","threshold":0.1}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp semanticResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "react", resp.Results[0].Item.ID)
	assert.Equal(t, "weak", resp.Results[1].Item.ID)
	assert.Greater(t, resp.Results[0].Similarity, resp.Results[1].Similarity)
}

func TestHandleSemantic_EmptyQuery(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search/semantic", `{"query":"  "}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Code)
}

func TestHandleSemantic_ThresholdOutOfRange(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	rr := doJSON(t, r, "POST", "/api/v1/search/semantic", `{"query":"react","threshold":2}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleSuggestions(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	req := httptest.NewRequest("GET", "/api/v1/suggestions?q=rea", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp suggestionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "tag", resp.Suggestions[0].Type)
	assert.Equal(t, "react", resp.Suggestions[0].Value)
	assert.Equal(t, "#react", resp.Suggestions[0].Label)
}

func TestHandleSuggestions_NoQuery(t *testing.T) {
	r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{})

	req := httptest.NewRequest("GET", "/api/v1/suggestions", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp suggestionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Suggestions)
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"store reachable", nil, http.StatusOK, "ok"},
		{"store unreachable", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, &stubSource{docs: testDocs()}, stubPinger{err: tc.pingErr})

			req := httptest.NewRequest("GET", "/health", http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			require.Equal(t, tc.wantCode, rr.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantStatus, resp["status"])
		})
	}
}
