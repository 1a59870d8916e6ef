package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/wellspring/pkg/auth"
	"github.com/kadirpekel/wellspring/pkg/config"
	"github.com/kadirpekel/wellspring/pkg/governance"
	"github.com/kadirpekel/wellspring/pkg/governance/featuregate"
	"github.com/kadirpekel/wellspring/pkg/governance/ratelimit"
	"github.com/kadirpekel/wellspring/pkg/llms"
)

type stubProvider struct {
	output string
	err    error
}

func (p *stubProvider) Generate(ctx context.Context, req *llms.Request) (*llms.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llms.Response{Content: p.output, Model: "gpt-4o-mini"}, nil
}

func (p *stubProvider) Model() string { return "gpt-4o-mini" }
func (p *stubProvider) Name() string  { return "stub" }

func newTestServer(t *testing.T, mutate func(*config.GovernanceConfig)) *Server {
	t.Helper()

	govCfg := &config.GovernanceConfig{}
	govCfg.SetDefaults()
	if mutate != nil {
		mutate(govCfg)
	}

	gate, err := featuregate.NewGate(featuregate.NewMemoryFlagStore(), featuregate.NewMemoryRoleStore())
	require.NoError(t, err)

	limiter, err := ratelimit.NewLimiter(&govCfg.RateLimit, ratelimit.NewMemoryStore())
	require.NoError(t, err)

	provider := &stubProvider{
		output: `{"summary": "Escalated after repeated no-shows.", "suggested_next_steps": ["Schedule a follow-up"]}`,
	}

	orchestrator, err := governance.NewOrchestrator(govCfg, gate, limiter, provider, nil)
	require.NoError(t, err)

	srvCfg := &config.ServerConfig{}
	srvCfg.SetDefaults()

	srv, err := New(srvCfg, orchestrator, nil)
	require.NoError(t, err)
	return srv
}

func postGenerate(t *testing.T, srv *Server, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/ai/generate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func summaryBody() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   "user-1",
		"tenant_id": "tenant-1",
		"feature":   "case_summary",
		"payload": map[string]interface{}{
			"case_title": "Repeated absence",
			"case_notes": "Three unexplained absences in two weeks.",
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postGenerate(t, srv, summaryBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "case_summary", resp.Feature)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.JSONEq(t,
		`{"summary": "Escalated after repeated no-shows.", "suggested_next_steps": ["Schedule a follow-up"]}`,
		string(resp.Output))
	require.Len(t, resp.Usage, 2)
}

func TestGenerate_MalformedBody(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/ai/generate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_MissingIdentity(t *testing.T) {
	srv := newTestServer(t, nil)

	body := summaryBody()
	delete(body, "user_id")

	rec := postGenerate(t, srv, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_InvalidPayload(t *testing.T) {
	srv := newTestServer(t, nil)

	body := summaryBody()
	body["payload"] = map[string]interface{}{"case_title": "Missing notes"}

	rec := postGenerate(t, srv, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ai_response_invalid", resp.Kind)
}

func TestGenerate_PermissionDenied(t *testing.T) {
	srv := newTestServer(t, nil)

	body := summaryBody()
	body["feature"] = "org_report"
	body["payload"] = map[string]interface{}{
		"period": "2026-Q1",
		"sections": []map[string]interface{}{
			{"title": "Engagement", "data": "Participation at 71%."},
		},
	}

	rec := postGenerate(t, srv, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "feature_permission_denied", resp.Kind)
	assert.Equal(t, "rbac", resp.Reason)
}

func TestGenerate_RateLimited(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.GovernanceConfig) {
		cfg.RateLimit.UserLimit = 2
	})

	for i := 0; i < 2; i++ {
		rec := postGenerate(t, srv, summaryBody())
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postGenerate(t, srv, summaryBody())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "user", rec.Header().Get("X-RateLimit-Scope"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp.Kind)
	assert.Equal(t, "user", resp.Scope)
}

func TestGenerate_ProviderFailure(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.orchestrator = failingOrchestrator(t)

	rec := postGenerate(t, srv, summaryBody())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "service_unavailable", resp.Kind)
	// Internal provider detail never leaks to the caller.
	assert.NotContains(t, rec.Body.String(), "backend exploded")
}

func failingOrchestrator(t *testing.T) *governance.Orchestrator {
	t.Helper()

	govCfg := &config.GovernanceConfig{}
	govCfg.SetDefaults()

	gate, err := featuregate.NewGate(featuregate.NewMemoryFlagStore(), featuregate.NewMemoryRoleStore())
	require.NoError(t, err)
	limiter, err := ratelimit.NewLimiter(&govCfg.RateLimit, ratelimit.NewMemoryStore())
	require.NoError(t, err)

	orchestrator, err := governance.NewOrchestrator(govCfg, gate, limiter,
		&stubProvider{err: fmt.Errorf("backend exploded")}, nil)
	require.NoError(t, err)
	return orchestrator
}

func TestUsage_ReportsWithoutConsuming(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postGenerate(t, srv, summaryBody())
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/ai/usage?user_id=user-1&tenant_id=tenant-1", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Usage []ratelimit.Usage `json:"usage"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Usage, 2)
		assert.Equal(t, int64(1), resp.Usage[0].Current)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestResolveIdentity_ClaimsWin(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/ai/generate", nil)
	claims := &auth.Claims{Subject: "token-user", TenantID: "token-tenant"}
	req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))

	userID, tenantID, err := srv.resolveIdentity(req, "body-user", "body-tenant")
	require.NoError(t, err)
	assert.Equal(t, "token-user", userID)
	assert.Equal(t, "token-tenant", tenantID)
}
