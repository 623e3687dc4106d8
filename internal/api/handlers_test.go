// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/carmatch/internal/catalog"
	"github.com/tomtom215/carmatch/internal/enrich"
	"github.com/tomtom215/carmatch/internal/recommend"
	"github.com/tomtom215/carmatch/internal/session"
)

type stubSafety struct {
	calls  atomic.Int32
	result enrich.Result
}

func (s *stubSafety) Get(_ context.Context, year int, maker, model string) enrich.Result {
	s.calls.Add(1)
	r := s.result
	if r.OK() {
		r.Data.ModelYear, r.Data.Make, r.Data.Model = year, maker, model
	}
	return r
}

type stubBreaker string

func (b stubBreaker) State() string { return string(b) }

type testServer struct {
	router   http.Handler
	sessions *session.Store
	safety   *stubSafety
}

func newTestServer(t *testing.T, mwCfg *ChiMiddlewareConfig) *testServer {
	t.Helper()

	// A missing catalog file serves the built-in sample set.
	provider := catalog.NewProvider(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())
	engine, err := recommend.NewEngine(nil, provider, zerolog.Nop())
	require.NoError(t, err)

	safety := &stubSafety{result: enrich.Result{Data: enrich.Payload{
		ComplaintsCount:  12,
		RecallsCount:     1,
		ReliabilityScore: 0.8,
		SafetyScore:      0.9,
		VehicleAgeYears:  7,
	}}}
	sessions := session.NewStore(session.Options{})

	h, err := NewHandler(Deps{
		Recommender: engine,
		Catalog:     provider,
		Safety:      safety,
		Sessions:    sessions,
		Breaker:     stubBreaker("closed"),
	}, zerolog.Nop())
	require.NoError(t, err)

	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitDisabled = true
	}
	return &testServer{router: NewRouter(h, NewChiMiddleware(mwCfg)), sessions: sessions, safety: safety}
}

func (s *testServer) do(t *testing.T, method, target, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	}
	return rec, envelope
}

func errorCode(t *testing.T, envelope map[string]any) string {
	t.Helper()
	e, ok := envelope["error"].(map[string]any)
	require.True(t, ok, "missing error object: %v", envelope)
	return e["code"].(string)
}

func TestRecommendations_Success(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/recommendations", `{"budget":25000,"passengers":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, env["success"])

	data := env["data"].(map[string]any)
	assert.Equal(t, true, data["using_mock_data"])
	assert.Len(t, data["results"], 3)
	assert.Len(t, data["weights_used"], 7)

	meta := env["meta"].(map[string]any)
	assert.NotEmpty(t, meta["request_id"])
	assert.Equal(t, meta["request_id"], rec.Header().Get("X-Request-ID"))
}

func TestRecommendations_ValidationErrors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"malformed json", `{"budget":`},
		{"unknown field", `{"budget":20000,"passengers":2,"color":"red"}`},
		{"missing budget", `{"passengers":2}`},
		{"zero passengers", `{"budget":20000,"passengers":0}`},
		{"unknown criterion", `{"budget":20000,"passengers":2,"weights":{"speed":1}}`},
		{"negative weight", `{"budget":20000,"passengers":2,"weights":{"safety":-1}}`},
		{"limit above max", `{"budget":20000,"passengers":2,"limit":51}`},
		{"trailing data", `{"budget":20000,"passengers":2} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodPost, "/api/v1/recommendations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, ErrCodeValidationFailed, errorCode(t, env))
			assert.Equal(t, false, env["success"])
		})
	}
}

func TestRecommendations_RecordsSession(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, _ := srv.do(t, http.MethodPost, "/api/v1/recommendations",
		`{"budget":25000,"passengers":4,"limit":1}`, SessionHeader, "chat-1")
	require.Equal(t, http.StatusOK, rec.Code)

	history := srv.sessions.History("chat-1")
	require.Len(t, history, 2)
	assert.Equal(t, session.RoleUser, history[0].Role)
	assert.Contains(t, history[0].Content, "budget 25000")
	assert.Equal(t, session.RoleAssistant, history[1].Role)
	assert.Contains(t, history[1].Content, "Top pick:")
}

func TestVehicle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/vehicles/wrx_2018", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]any)
	assert.Equal(t, "Subaru", data["make"])

	rec, env = srv.do(t, http.MethodGet, "/api/v1/vehicles/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, errorCode(t, env))
	assert.Equal(t, "car_not_found", env["error"].(map[string]any)["message"])
}

func TestCompare(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/vehicles/compare", `{"ids":["leaf_2019","missing","civic_2018"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := env["data"].(map[string]any)
	vehicles := data["vehicles"].([]any)
	require.Len(t, vehicles, 2)
	// Catalog order, not request order.
	assert.Equal(t, "civic_2018", vehicles[0].(map[string]any)["id"])
	assert.Equal(t, "leaf_2019", vehicles[1].(map[string]any)["id"])
	assert.Equal(t, []any{"missing"}, data["not_found"])

	for _, body := range []string{`{"ids":[]}`, `{"ids":"civic_2018"}`, `{}`, `{"ids":["a","b","c","d","e","f","g","h","i","j","k"]}`} {
		rec, env = srv.do(t, http.MethodPost, "/api/v1/vehicles/compare", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, ErrCodeValidationFailed, errorCode(t, env), body)
	}
}

func TestSafety(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/safety?make=Honda&model=Civic&year=2018", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := env["data"].(map[string]any)
	assert.Equal(t, "Honda", data["make"])
	assert.InDelta(t, 2018, data["model_year"], 0)
	assert.InDelta(t, 12, data["complaints_count"], 0)
	assert.Equal(t, false, data["cached"])

	tests := []struct {
		name  string
		query string
	}{
		{"non integer year", "make=Honda&model=Civic&year=20x8"},
		{"missing year", "make=Honda&model=Civic"},
		{"missing make", "model=Civic&year=2018"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodGet, "/api/v1/safety?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, ErrCodeValidationFailed, errorCode(t, env))
		})
	}
	assert.Equal(t, int32(1), srv.safety.calls.Load())
}

func TestSafety_InvalidYearMessage(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	_, env := srv.do(t, http.MethodGet, "/api/v1/safety?make=Honda&model=Civic&year=abc", "")
	assert.Equal(t, "invalid_year", env["error"].(map[string]any)["message"])
}

func TestSafety_ExternalFailure(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	srv.safety.result = enrich.Result{
		Failure: &enrich.ErrorPayload{Error: enrich.ServiceUnavailableMessage, Year: 2018, Make: "Honda", Model: "Civic"},
		Err:     enrich.ErrServiceUnavailable,
	}

	rec, env := srv.do(t, http.MethodGet, "/api/v1/safety?make=Honda&model=Civic&year=2018", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, ErrCodeExternalServiceError, errorCode(t, env))

	details := env["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, enrich.ServiceUnavailableMessage, details["error"])
	assert.Equal(t, "Civic", details["model"])
}

func TestSessions_Lifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := env["data"].(map[string]any)["id"].(string)
	require.NotEmpty(t, id)

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/messages", `{"role":"user","content":"AWD please"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/messages", `{"role":"system","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeValidationFailed, errorCode(t, env))

	rec, env = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	messages := env["data"].(map[string]any)["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "AWD please", messages[0].(map[string]any)["content"])

	rec, _ = srv.do(t, http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, env = srv.do(t, http.MethodDelete, "/api/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, errorCode(t, env))

	_, env = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/history", "")
	assert.Empty(t, env["data"].(map[string]any)["messages"])
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := env["data"].(map[string]any)
	// The sample catalog is served, so the service reports degraded.
	assert.Equal(t, StatusDegraded, data["status"])
	assert.InDelta(t, 3, data["catalog_vehicles"], 0)
	assert.Equal(t, true, data["using_mock_data"])
	assert.Equal(t, "closed", data["circuit_breaker"])
}

func TestHealth_ReportsRecommendationCounters(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	srv.do(t, http.MethodPost, "/api/v1/recommendations", `{"budget":25000,"passengers":4}`)
	srv.do(t, http.MethodPost, "/api/v1/recommendations", `{"budget":25000,"passengers":4,"limit":51}`)

	_, env := srv.do(t, http.MethodGet, "/api/v1/health", "")
	stats, ok := env["data"].(map[string]any)["recommendations"].(map[string]any)
	require.True(t, ok, "missing recommendations: %v", env)
	assert.InDelta(t, 2, stats["requests"], 0)
	assert.InDelta(t, 1, stats["errors"], 0)
}

func TestRecommendations_LimitFollowsEngineConfig(t *testing.T) {
	t.Parallel()

	provider := catalog.NewProvider(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())
	cfg := recommend.DefaultConfig()
	cfg.MaxLimit = 100
	engine, err := recommend.NewEngine(cfg, provider, zerolog.Nop())
	require.NoError(t, err)

	h, err := NewHandler(Deps{
		Recommender: engine,
		Catalog:     provider,
		Safety:      &stubSafety{},
		Sessions:    session.NewStore(session.Options{}),
	}, zerolog.Nop())
	require.NoError(t, err)
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	srv := &testServer{router: NewRouter(h, NewChiMiddleware(mwCfg))}

	rec, _ := srv.do(t, http.MethodPost, "/api/v1/recommendations", `{"budget":25000,"passengers":4,"limit":75}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := srv.do(t, http.MethodPost, "/api/v1/recommendations", `{"budget":25000,"passengers":4,"limit":101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeValidationFailed, errorCode(t, env))
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, errorCode(t, env))

	rec, env = srv.do(t, http.MethodGet, "/api/v1/recommendations", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, ErrCodeMethodNotAllowed, errorCode(t, env))
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	srv := newTestServer(t, cfg)

	for range 2 {
		rec, _ := srv.do(t, http.MethodGet, "/api/v1/vehicles/civic_2018", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := srv.do(t, http.MethodGet, "/api/v1/vehicles/civic_2018", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, ErrCodeTooManyRequests, errorCode(t, env))

	// Health is exempt.
	rec, _ = srv.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	srv.do(t, http.MethodGet, "/api/v1/health", "")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "carmatch_api_requests_total")
}

func TestNewHandler_RequiresDeps(t *testing.T) {
	t.Parallel()
	_, err := NewHandler(Deps{}, zerolog.Nop())
	assert.Error(t, err)
}
