package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Motiontography/motiontography-bot/internal/chat"
	"github.com/Motiontography/motiontography-bot/internal/otel"
	"github.com/Motiontography/motiontography-bot/internal/requestctx"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	}
	if r.URL.Query().Get("detail") == "true" {
		components := map[string]string{
			"kb_cache": "ok",
		}
		if s.transcripts == nil {
			components["transcript_store"] = "disabled"
		} else {
			components["transcript_store"] = "ok"
		}
		if s.engine.ModelEnabled() {
			components["model"] = "ok"
		} else {
			components["model"] = "disabled"
		}
		resp["components"] = components
	}
	writeJSON(w, http.StatusOK, resp)
}

type chatRequest struct {
	Message   string          `json:"message"`
	SessionID string          `json:"session_id"`
	Client    json.RawMessage `json:"client"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	// The engine's precondition: message must be non-empty text. Enforced
	// here, before the core is invoked.
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	ctx := requestctx.SetSessionID(r.Context(), sessionID)

	snap, err := s.kbCache.Get(ctx)
	if err != nil {
		log.Error().Err(err).Func(otel.LogTraceFields(ctx)).Msg("kb_unavailable")
		writeError(w, http.StatusServiceUnavailable, "kb_unavailable", "knowledge base is not available")
		return
	}

	result := s.engine.Handle(ctx, req.Message, snap)

	if s.transcripts != nil {
		rec := &chat.AuditRecord{
			Timestamp:  time.Now().UTC(),
			SessionID:  sessionID,
			ClientMeta: string(req.Client),
			Message:    req.Message,
			Result:     result,
		}
		// Transcript failures are operational, never user-visible.
		if err := s.transcripts.Append(ctx, rec); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("transcript_append_failed")
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"result":     result,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.kbCache.Invalidate()
	snap, err := s.kbCache.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reload_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"intents": len(snap.Intents),
	})
}

func (s *Server) handleReviewList(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "transcript store is disabled")
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	candidates, err := s.transcripts.PendingReviews(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

func (s *Server) handleReviewResolve(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "transcript store is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}
	if err := s.transcripts.ResolveReview(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "resolved"})
}

var dayFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func (s *Server) handleTranscriptList(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "transcript store is disabled")
		return
	}
	day := r.URL.Query().Get("day")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if !dayFormat.MatchString(day) {
		writeError(w, http.StatusBadRequest, "invalid_request", "day must be YYYY-MM-DD")
		return
	}
	records, err := s.transcripts.ListDay(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"day":     day,
		"records": records,
		"count":   len(records),
	})
}
