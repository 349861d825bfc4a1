package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docintel/internal/domain"
	"github.com/kailas-cloud/docintel/internal/domain/content"
	"github.com/kailas-cloud/docintel/internal/domain/search/match"
	"github.com/kailas-cloud/docintel/internal/domain/search/mode"
	"github.com/kailas-cloud/docintel/internal/domain/search/request"
	"github.com/kailas-cloud/docintel/internal/domain/search/result"
	"github.com/kailas-cloud/docintel/internal/transport/wire"
	healthuc "github.com/kailas-cloud/docintel/internal/usecase/health"
)

type mockSearcher struct {
	results []result.Fused
	err     error
	tokens  int
	got     *request.Request
	panics  bool
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	if m.panics {
		panic("boom")
	}
	m.got = req
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	return m.results, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(s *mockSearcher, h *mockHealth, keys ...string) http.Handler {
	if h == nil {
		h = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	return NewRouter(NewServer(s, h), zap.NewNop(), keys)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func waterDamage(t *testing.T) result.Fused {
	t.Helper()
	rec, err := content.NewRecord("a", content.Document, "Water Damage Report", "Basement flooded.",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return result.New(rec, 0.97, []match.Lane{match.Semantic, match.Keyword},
		[]string{"semantic:0.92", "keyword:'water damage'"})
}

func TestSearch_OK(t *testing.T) {
	s := &mockSearcher{results: []result.Fused{waterDamage(t)}, tokens: 7}
	rr := doJSON(t, newTestRouter(s, nil), http.MethodPost, "/v1/search",
		`{"query":"water damage","mode":"literal","limit":3,"why":true}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-Embedding-Tokens"); got != "7" {
		t.Errorf("X-Embedding-Tokens = %q, want 7", got)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if s.got.Mode() != mode.Literal || s.got.Limit() != 3 {
		t.Errorf("request mode/limit = %q/%d", s.got.Mode(), s.got.Limit())
	}

	var out wire.SearchOutput
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Results[0].ID != "a" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(out.Results[0].Reasons) != 2 {
		t.Errorf("reasons = %v", out.Results[0].Reasons)
	}
}

func TestSearch_NoEmbeddingHeaderWithoutUsage(t *testing.T) {
	rr := doJSON(t, newTestRouter(&mockSearcher{}, nil), http.MethodPost, "/v1/search", `{"query":"x"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Embedding-Tokens") != "" {
		t.Error("header must be absent when no embedding was computed")
	}
	var out wire.SearchOutput
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Results == nil {
		t.Error("empty result must encode as [] not null")
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"malformed body", `{"query":`, nil, http.StatusBadRequest, "validation_error"},
		{"empty query", `{"query":"  "}`, nil, http.StatusBadRequest, "validation_error"},
		{"bad filter", `{"query":"x","source_types":["fax"]}`, nil, http.StatusBadRequest, "validation_error"},
		{"zero limit", `{"query":"x","limit":0}`, nil, http.StatusBadRequest, "validation_error"},
		{"vector down", `{"query":"x"}`, fmt.Errorf("probe: %w", domain.ErrVectorUnavailable),
			http.StatusServiceUnavailable, "vector_unavailable"},
		{"embedding", `{"query":"x"}`, fmt.Errorf("embed: %w", domain.ErrEmbedding),
			http.StatusServiceUnavailable, "embedding_error"},
		{"store down", `{"query":"x"}`, fmt.Errorf("query: %w", domain.ErrStoreUnavailable),
			http.StatusServiceUnavailable, "store_unavailable"},
		{"internal", `{"query":"x"}`, fmt.Errorf("unexpected"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, newTestRouter(&mockSearcher{err: tt.err}, nil), http.MethodPost, "/v1/search", tt.body)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			var body wire.ErrorBody
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestSearch_PanicRecovered(t *testing.T) {
	rr := doJSON(t, newTestRouter(&mockSearcher{panics: true}, nil), http.MethodPost, "/v1/search", `{"query":"x"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var body wire.ErrorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "internal_error" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		status healthuc.Status
		want   int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded", healthuc.Degraded, http.StatusOK},
		{"unhealthy", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &mockHealth{report: healthuc.Report{
				Status: tt.status,
				Checks: map[string]healthuc.CheckResult{healthuc.ComponentContentStore: healthuc.CheckOK},
			}}
			rr := doJSON(t, newTestRouter(&mockSearcher{}, h, "secret"), http.MethodGet, "/health", "")
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			var body healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != string(tt.status) || body.Checks[healthuc.ComponentContentStore] != "ok" {
				t.Errorf("unexpected body: %+v", body)
			}
		})
	}
}

func TestRouter_AuthRequiredForSearch(t *testing.T) {
	rr := doJSON(t, newTestRouter(&mockSearcher{}, nil, "secret"), http.MethodPost, "/v1/search", `{"query":"x"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	rr := doJSON(t, newTestRouter(&mockSearcher{}, nil), http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Error("expected default go collector output")
	}
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	router := newTestRouter(&mockSearcher{}, nil)
	if rr := doJSON(t, router, http.MethodGet, "/v1/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route: %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodGet, "/v1/search", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method: %d", rr.Code)
	}
}
