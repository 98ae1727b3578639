package visitors

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

// SessionCookie carries the browser session id. It has no expiry, so it
// lasts as long as the browser session.
const SessionCookie = "quotegen_session"

// RecordedCookie marks a browser session whose visit has been counted. Like
// SessionCookie it has no expiry, so it outlives server restarts and idle
// server-side flags but not the browser session.
const RecordedCookie = "quotegen_visit_recorded"

// StatsReader reads the stats document.
type StatsReader interface {
	Stats(ctx context.Context, docID string) (docstore.Stats, error)
}

// RegisterRoutes mounts the visit and stats endpoints.
func RegisterRoutes(r chi.Router, counter *Counter, stats StatsReader) {
	r.Post("/api/visits", handleVisit(counter))
	r.Get("/api/stats", handleStats(stats))
}

// SessionID returns the request's session id, issuing a new cookie when
// the request has none.
func SessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func visitRecorded(r *http.Request) bool {
	c, err := r.Cookie(RecordedCookie)
	return err == nil && c.Value == "1"
}

func markRecorded(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RecordedCookie,
		Value:    "1",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func handleVisit(counter *Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionID(w, r)
		if visitRecorded(r) {
			writeJSON(w, http.StatusOK, map[string]any{"counted": false, "recorded": true})
			return
		}

		// Only the request that counted marks the browser; a failed
		// increment leaves it unmarked so a later visit retries.
		counted := counter.Activate(r.Context(), session)
		if counted {
			markRecorded(w)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"counted":  counted,
			"recorded": counted || counter.Recorded(session),
		})
	}
}

func handleStats(stats StatsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := stats.Stats(r.Context(), docstore.StatsGeneral)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"visitor_count": s.VisitorCount})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
