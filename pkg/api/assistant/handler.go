// Package assistant exposes the chat endpoint: a user question in, either a
// clarifying question or a computed, explained answer out.
package assistant

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"intelligent_accountant/pkg/core/analyst"
	"intelligent_accountant/pkg/core/insight"
	"intelligent_accountant/pkg/core/store"
	"intelligent_accountant/pkg/core/workspace"
)

// Handler wires the analyst pipeline to HTTP.
type Handler struct {
	analyst  *analyst.Analyst
	insight  *insight.Agent // nil when GEMINI_API_KEY is absent
	ws       *workspace.Workspace
	sessions *store.SessionStore
}

// NewHandler creates an assistant handler. The insight agent is optional.
func NewHandler(a *analyst.Analyst, ins *insight.Agent, ws *workspace.Workspace, sessions *store.SessionStore) *Handler {
	return &Handler{analyst: a, insight: ins, ws: ws, sessions: sessions}
}

// AskRequest is the user's chat turn.
type AskRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	// Mode "insight" routes to the commentary agent instead of the
	// plan/execute pipeline.
	Mode string `json:"mode,omitempty"`
}

// AskResponse mirrors analyst.Answer plus session bookkeeping.
type AskResponse struct {
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"` // "clarification", "answer", "insight", "error"
	Question    string          `json:"question,omitempty"`
	Result      *analyst.Result `json:"result,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Plan        string          `json:"plan,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// HandleAsk processes one chat turn.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Empty message", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = store.NewSessionID()
	}
	h.record(r, sessionID, "user", req.Message)

	resp := AskResponse{SessionID: sessionID}
	switch req.Mode {
	case "insight":
		h.handleInsight(r, req, &resp)
	default:
		h.handleAnalysis(r, req, &resp)
	}

	if resp.Error != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleAnalysis(r *http.Request, req AskRequest, resp *AskResponse) {
	answer, err := h.analyst.Ask(r.Context(), req.Message, h.ws)
	if err != nil {
		log.Printf("[Assistant] ask failed: %v", err)
		resp.Type = "error"
		resp.Error = err.Error()
		return
	}

	resp.Type = answer.Type
	resp.Question = answer.Question
	resp.Result = answer.Result
	resp.Explanation = answer.Explanation
	resp.Plan = answer.PlanJSON

	if answer.Type == "answer" {
		h.record(r, resp.SessionID, "assistant", answer.Explanation)
		h.saveRun(r, resp.SessionID, req.Message, answer)
	} else {
		h.record(r, resp.SessionID, "assistant", answer.Question)
	}
}

func (h *Handler) handleInsight(r *http.Request, req AskRequest, resp *AskResponse) {
	if h.insight == nil {
		resp.Type = "error"
		resp.Error = "insight agent not configured (GEMINI_API_KEY missing)"
		return
	}
	dataInfo := analyst.RenderDataInfo(h.ws.Selections(), h.ws.Failures())
	comment, err := h.insight.Comment(r.Context(), req.Message, dataInfo)
	if err != nil {
		resp.Type = "error"
		resp.Error = err.Error()
		return
	}
	resp.Type = "insight"
	resp.Explanation = comment
	h.record(r, resp.SessionID, "assistant", comment)
}

func (h *Handler) record(r *http.Request, sessionID, role, content string) {
	if h.sessions == nil || content == "" {
		return
	}
	if err := h.sessions.AppendMessage(r.Context(), sessionID, store.Message{Role: role, Content: content}); err != nil {
		log.Printf("[Assistant] failed to persist message: %v", err)
	}
}

func (h *Handler) saveRun(r *http.Request, sessionID, query string, answer *analyst.Answer) {
	if h.sessions == nil {
		return
	}
	resultJSON, _ := json.Marshal(answer.Result)
	run := store.AnalysisRun{
		SessionID:  sessionID,
		Query:      query,
		PlanJSON:   answer.PlanJSON,
		ResultJSON: string(resultJSON),
	}
	if err := h.sessions.SaveRun(r.Context(), run); err != nil {
		log.Printf("[Assistant] failed to persist run: %v", err)
	}
}
