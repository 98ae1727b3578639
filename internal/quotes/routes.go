package quotes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// generateResponse is the JSON response for a generation.
type generateResponse struct {
	ID        string    `json:"id,omitempty"`
	Topic     string    `json:"topic"`
	Language  string    `json:"language"`
	Tone      string    `json:"tone"`
	Quote     string    `json:"quote"`
	Timestamp time.Time `json:"timestamp"`
	Saved     bool      `json:"saved"`
	Warning   string    `json:"warning,omitempty"`
}

// RegisterRoutes mounts the catalog and generation endpoints.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/languages", handleLanguages)
		r.Get("/tones", handleTones)
		r.Get("/surprise", handleSurprise)
	})
	r.Post("/api/quotes", handleGenerate(svc))
}

func handleLanguages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]any{"languages": Languages, "default": DefaultLanguage})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": SuggestLanguages(q)})
}

func handleTones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tones": Tones, "default": DefaultTone})
}

func handleSurprise(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Surprise(nil))
}

func handleGenerate(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		rec, err := svc.Generate(r.Context(), req)
		switch {
		case err == nil:
		case errors.Is(err, ErrTopicRequired):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Please enter a topic first."})
			return
		case errors.Is(err, ErrUnknownTone):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		case errors.Is(err, ErrNotPersisted):
			writeJSON(w, http.StatusOK, generateResponse{
				Topic:     rec.Topic,
				Language:  rec.Language,
				Tone:      rec.Tone,
				Quote:     rec.Quote,
				Timestamp: rec.Timestamp,
				Saved:     false,
				Warning:   ErrNotPersisted.Error(),
			})
			return
		default:
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Error: " + err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, generateResponse{
			ID:        rec.ID,
			Topic:     rec.Topic,
			Language:  rec.Language,
			Tone:      rec.Tone,
			Quote:     rec.Quote,
			Timestamp: rec.Timestamp,
			Saved:     true,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
