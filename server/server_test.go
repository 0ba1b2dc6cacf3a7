package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	advisorx "github.com/tanpawarit/wealth-advisor-agent/agent/advisor"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sessions, err := advisorx.NewSessionRegistry(func(_ context.Context, userID string) (*advisorx.Advisor, error) {
		// Offline advisor: deterministic and no network.
		return advisorx.New(userID, nil, nil, nil)
	})
	if err != nil {
		t.Fatalf("NewSessionRegistry() error = %v", err)
	}
	return New(sessions, false)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "healthy" {
		t.Fatalf("body = %v", body)
	}
	if body["model_configured"] != false {
		t.Fatalf("body = %v", body)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/chat", `{"user_id": "u1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["error"] != "Message is required" {
		t.Fatalf("body = %v", body)
	}
}

func TestChatOfflineRoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/chat", `{"message": "Assess my risk tolerance", "user_id": "u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if body["user_id"] != "u1" {
		t.Fatalf("body = %v", body)
	}
	resp, _ := body["response"].(string)
	if !strings.Contains(resp, "Risk Profile Assessment") {
		t.Fatalf("response = %q", resp)
	}
}

func TestChatDefaultsUserID(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/chat", `{"message": "hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["user_id"] != "default" {
		t.Fatalf("body = %v", body)
	}
}

func TestRiskAssessmentEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/risk-assessment",
		`{"portfolio": [{"symbol": "VTI", "value": 50000, "asset_class": "equity"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if body["success"] != true {
		t.Fatalf("body = %v", body)
	}
	metrics, _ := body["metrics"].(map[string]any)
	if metrics["total_value"] != 50000.0 {
		t.Fatalf("metrics = %v", metrics)
	}
	summary, _ := body["summary"].(string)
	if !strings.Contains(summary, "Portfolio Risk Assessment") {
		t.Fatalf("summary = %q", summary)
	}
}

func TestRiskAssessmentRequiresPortfolio(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/risk-assessment", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["error"] != "Portfolio data is required" {
		t.Fatalf("body = %v", body)
	}
}

func TestDiversificationEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/diversification",
		`{"portfolio": [
			{"symbol": "VTI", "value": 50000, "asset_class": "equity", "sector": "diversified", "geography": "US"},
			{"symbol": "BND", "value": 20000, "asset_class": "bond", "sector": "bonds", "geography": "US"}
		]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	analysis, _ := body["analysis"].(map[string]any)
	if _, ok := analysis["overall_score"]; !ok {
		t.Fatalf("analysis = %v", analysis)
	}
}

func TestStrategyEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/strategy",
		`{"risk_profile": "moderate", "goals": [{"goal_type": "retirement", "target_amount": 1000000, "years": 25}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	strategy, _ := body["strategy"].(map[string]any)
	if strategy["strategy_name"] != "Balanced Growth" {
		t.Fatalf("strategy = %v", strategy)
	}
}

func TestStrategyEndpointRejectsBadGoal(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, _ := doJSON(t, h, http.MethodPost, "/api/strategy",
		`{"goals": [{"goal_type": "lottery"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPreferencesMemoryClearFlow(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/preferences",
		`{"user_id": "flow", "preferences": {"risk_tolerance": "moderate"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("preferences status = %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/portfolio",
		`{"user_id": "flow", "portfolio": {"holdings": [{"symbol": "VTI", "value": 50000}]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("portfolio status = %d", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/chat", `{"user_id": "flow", "message": "hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rec.Code)
	}

	rec, body := doJSON(t, h, http.MethodGet, "/api/memory?user_id=flow", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("memory status = %d", rec.Code)
	}
	summary, _ := body["summary"].(string)
	if !strings.Contains(summary, "Risk Tolerance: moderate") {
		t.Fatalf("summary = %q", summary)
	}
	if !strings.Contains(summary, "$50,000.00") {
		t.Fatalf("summary = %q", summary)
	}
	if !strings.Contains(summary, "2 messages") {
		t.Fatalf("summary = %q", summary)
	}

	rec, body = doJSON(t, h, http.MethodPost, "/api/clear", `{"user_id": "flow"}`)
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("clear status = %d, body = %v", rec.Code, body)
	}

	rec, body = doJSON(t, h, http.MethodGet, "/api/memory?user_id=flow", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("memory status = %d", rec.Code)
	}
	summary, _ = body["summary"].(string)
	if !strings.Contains(summary, "0 messages") {
		t.Fatalf("summary after clear = %q", summary)
	}
	if !strings.Contains(summary, "Risk Tolerance: moderate") {
		t.Fatalf("preferences lost on clear: %q", summary)
	}
}

func TestClearAcceptsEmptyBody(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, body := doJSON(t, h, http.MethodPost, "/api/clear", "")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
