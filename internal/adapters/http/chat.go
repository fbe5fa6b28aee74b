package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

type sendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := rt.chat.CreateSession(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"sessionId": session.ID,
		"createdAt": session.CreatedAt,
	})
}

func (rt *Router) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	sessionID, err := parseSessionID(req.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	reply, err := rt.chat.SendMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		rt.observer.RecordChatFailure()
		writeError(w, r, err)
		return
	}
	if reply.Sources == nil {
		reply.Sources = []domain.Source{}
	}
	rt.observer.RecordChatTurn(len(reply.Sources), time.Since(start))

	writeJSON(w, http.StatusOK, reply)
}

func (rt *Router) chatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := bindSessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	messages, err := rt.chat.History(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages":   messages,
		"sessionId":  sessionID,
		"totalCount": len(messages),
	})
}
