package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/facet/internal/assistant"
	"github.com/hyperengineering/facet/internal/engine"
)

// maxChatMessages bounds conversation history per request.
const maxChatMessages = 50

// ChatRequest is the POST /chat payload: the conversation so far, last
// message from the user.
type ChatRequest struct {
	Messages []assistant.Message `json:"messages"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

// Chat handles POST /api/v1/chat: answers with a reply grounded in the
// current portfolio state.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		WriteProblem(w, r, http.StatusServiceUnavailable, "Assistant is not configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if len(req.Messages) == 0 {
		WriteProblem(w, r, http.StatusBadRequest, "messages must not be empty")
		return
	}
	if len(req.Messages) > maxChatMessages {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("messages must not exceed %d entries", maxChatMessages))
		return
	}

	ctx := r.Context()
	now := h.now()

	portfolio, err := h.store.GetPortfolio(ctx)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	agg, err := engine.AggregateLogs(snap.TimeLogs, snap.Projects, engine.AllTime())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	report, err := engine.Score(agg.CategoryPercentages, portfolio.TargetAllocation)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	insights, err := h.store.ListActiveInsights(ctx, now)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	system := assistant.ComposeSystemPrompt(portfolio, agg, report, insights, snap.TimeLogs)

	reply, err := h.assistant.Chat(ctx, system, req.Messages)
	if err != nil {
		slog.Error("chat failed", "error", err)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Assistant is unavailable")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Reply: reply,
		Model: h.assistant.ModelName(),
	})
}
