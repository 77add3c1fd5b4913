package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aikodesk/aiko/internal/archive"
	"github.com/aikodesk/aiko/internal/assistant"
	"github.com/aikodesk/aiko/internal/conversation"
	"github.com/aikodesk/aiko/internal/provider"
)

// writeJSON serializes v with the right content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorJSON writes a {"error": msg} body.
func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth reports liveness and uptime.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(g.startedAt).Seconds()),
		})
	}
}

// handleState returns the current emotional state.
func (g *Gateway) handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"state": g.orch.State().Get().String(),
		})
	}
}

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Response string `json:"response"`
	State    string `json:"state"`
}

// handleChat runs one utterance through the orchestrator. A request while
// another is in flight gets 409; requests are never queued.
func (g *Gateway) handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		g.metrics.RecordChat()

		text, state, err := g.orch.Handle(r.Context(), req.Text)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, assistant.ErrBusy):
				status = http.StatusConflict
			case errors.Is(err, provider.ErrAuth):
				status = http.StatusBadGateway
			case errors.Is(err, provider.ErrRateLimit):
				status = http.StatusBadGateway
			case errors.Is(err, provider.ErrEmptyResponse):
				status = http.StatusBadGateway
			}
			errorJSON(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{Response: text, State: state.String()})
	}
}

// handleVoiceStart starts the background voice-capture loop.
func (g *Gateway) handleVoiceStart() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.voice == nil {
			errorJSON(w, http.StatusNotImplemented, "voice capture not available")
			return
		}
		if err := g.voice.Start(); err != nil {
			switch {
			case errors.Is(err, assistant.ErrVoiceAlreadyStarted):
				errorJSON(w, http.StatusConflict, err.Error())
			case errors.Is(err, assistant.ErrNoListener):
				errorJSON(w, http.StatusNotImplemented, err.Error())
			default:
				errorJSON(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleVoiceStop stops the background voice-capture loop.
func (g *Gateway) handleVoiceStop() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.voice == nil {
			errorJSON(w, http.StatusNotImplemented, "voice capture not available")
			return
		}
		if err := g.voice.Stop(); err != nil {
			if errors.Is(err, assistant.ErrVoiceNotStarted) {
				errorJSON(w, http.StatusConflict, err.Error())
			} else {
				errorJSON(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// History endpoints surface persistence errors: the user explicitly asked
// for the action.

func (g *Gateway) handleHistorySave() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := g.orch.SaveHistory(); err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"turns": g.orch.HistoryLen()})
	}
}

func (g *Gateway) handleHistoryLoad() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := g.orch.LoadHistory(); err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"turns": g.orch.HistoryLen()})
	}
}

func (g *Gateway) handleHistoryClear() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		g.orch.ClearHistory()
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSystem returns static host information.
func (g *Gateway) handleSystem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.system == nil {
			errorJSON(w, http.StatusNotImplemented, "sysinfo module not configured")
			return
		}
		info, err := g.system.Info(r.Context())
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// handleSystemUsage returns live resource usage.
func (g *Gateway) handleSystemUsage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.system == nil {
			errorJSON(w, http.StatusNotImplemented, "sysinfo module not configured")
			return
		}
		usage, err := g.system.Usage(r.Context())
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, usage)
	}
}

// handleMetrics returns the counter snapshot.
func (g *Gateway) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, g.metrics.Snapshot())
	}
}

// transcriptEntry is a serializable archived turn.
type transcriptEntry struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	FromCache bool   `json:"from_cache,omitempty"`
	CreatedAt string `json:"created_at"`
}

// handleTranscript returns recent archived turns, optionally filtered by
// the q query parameter. limit defaults to 50.
func (g *Gateway) handleTranscript() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.archive == nil {
			errorJSON(w, http.StatusNotImplemented, "transcript archive not configured")
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				errorJSON(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		var err error
		entries := make([]transcriptEntry, 0, limit)
		if q := r.URL.Query().Get("q"); q != "" {
			results, searchErr := g.archive.Search(r.Context(), q, limit)
			err = searchErr
			for _, e := range results {
				entries = append(entries, toTranscriptEntry(e))
			}
		} else {
			results, recentErr := g.archive.Recent(r.Context(), limit)
			err = recentErr
			for _, e := range results {
				entries = append(entries, toTranscriptEntry(e))
			}
		}
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

func toTranscriptEntry(e archive.Entry) transcriptEntry {
	return transcriptEntry{
		ID:        e.ID,
		Role:      e.Role,
		Content:   e.Content,
		FromCache: e.FromCache,
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
	}
}

// handleHistory returns the retained in-memory conversation window.
func (g *Gateway) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		turns := g.orch.History()
		out := make([]historyTurn, 0, len(turns))
		for _, t := range turns {
			out = append(out, toHistoryTurn(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// historyTurn mirrors conversation.Turn for transport.
type historyTurn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	FromCache bool   `json:"cached,omitempty"`
	CreatedAt string `json:"timestamp"`
}

func toHistoryTurn(t conversation.Turn) historyTurn {
	return historyTurn{
		Role:      string(t.Role),
		Content:   t.Content,
		FromCache: t.FromCache,
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
	}
}
