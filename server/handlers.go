package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/wealth-advisor-agent/agent/contract"
	portfoliox "github.com/tanpawarit/wealth-advisor-agent/agent/portfolio"
	toolx "github.com/tanpawarit/wealth-advisor-agent/agent/tool"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func orDefaultUser(userID string) string {
	if userID == "" {
		return defaultUserID
	}
	return userID
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"service":          "Wealth Management AI Chatbot",
		"model_configured": s.modelConfigured,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		UserID  string `json:"user_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	userID := orDefaultUser(req.UserID)
	agent, err := s.sessions.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response, err := agent.Chat(r.Context(), req.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, contractx.ErrValidation) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response": response,
		"user_id":  userID,
	})
}

func (s *Server) handleRiskAssessment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Portfolio []portfoliox.Holding `json:"portfolio"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Portfolio == nil {
		writeError(w, http.StatusBadRequest, "Portfolio data is required")
		return
	}

	metrics := toolx.CalculatePortfolioRisk(req.Portfolio, toolx.DefaultRiskFreeRate)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"metrics": metrics.Dict(),
		"summary": metrics.Summary(),
	})
}

func (s *Server) handleDiversification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Portfolio []portfoliox.Holding `json:"portfolio"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Portfolio == nil {
		writeError(w, http.StatusBadRequest, "Portfolio data is required")
		return
	}

	analysis := toolx.AnalyzeDiversification(req.Portfolio)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analysis": analysis.Dict(),
		"summary":  analysis.Summary(),
	})
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var req toolx.StrategyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	plan, err := toolx.DesignStrategy(req.RiskProfile, req.Goals, req.CurrentPortfolioValue, req.MonthlyContribution)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"strategy": plan.Dict(),
		"summary":  plan.Summary(),
	})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string         `json:"user_id"`
		Preferences map[string]any `json:"preferences"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	agent, err := s.sessions.Get(r.Context(), orDefaultUser(req.UserID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := agent.UpdatePreferences(r.Context(), req.Preferences); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Preferences updated",
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string         `json:"user_id"`
		Portfolio map[string]any `json:"portfolio"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	agent, err := s.sessions.Get(r.Context(), orDefaultUser(req.UserID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := agent.UpdatePortfolio(r.Context(), req.Portfolio); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Portfolio updated",
	})
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	userID := orDefaultUser(r.URL.Query().Get("user_id"))

	agent, err := s.sessions.Get(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	summary, err := agent.MemorySummary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": summary,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	// An empty body clears the default user's session.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	// Only existing sessions have anything to clear.
	if agent, ok := s.sessions.Peek(orDefaultUser(req.UserID)); ok {
		if err := agent.ClearConversation(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Conversation cleared",
	})
}
