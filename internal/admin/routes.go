package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/quotegen/internal/export"
	"github.com/ziadkadry99/quotegen/internal/gate"
	"github.com/ziadkadry99/quotegen/internal/history"
)

// TokenCookie carries the admin token for browser clients. Bearer
// authorization is accepted too.
const TokenCookie = "quotegen_admin"

type ctxKey struct{}

// historyResponse is the JSON shape of a history projection.
type historyResponse struct {
	View    history.View   `json:"view"`
	Rows    []history.Row  `json:"rows,omitempty"`
	Cards   []history.Card `json:"cards,omitempty"`
	Count   int            `json:"count"`
	HasMore bool           `json:"has_more"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
}

// RegisterRoutes mounts the gate and history endpoints under /api/admin.
func RegisterRoutes(r chi.Router, sessions *Sessions) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", handleLogin(sessions))
		r.Post("/logout", handleLogout(sessions))

		r.Group(func(r chi.Router) {
			r.Use(requireSession(sessions))
			r.Get("/history", handleHistory)
			r.Post("/history/more", handleMore)
			r.Post("/history/reload", handleReload)
			r.Get("/history/{id}/text", handleText)
			r.Get("/history/{id}/image", handleImage)
		})
	})
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func requireSession(sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Lookup(tokenFrom(r))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

func sessionFrom(r *http.Request) *Session {
	return r.Context().Value(ctxKey{}).(*Session)
}

func handleLogin(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Secret string `json:"secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		token, sess, err := sessions.Login(r.Context(), body.Secret)
		if errors.Is(err, gate.ErrIncorrectSecret) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Incorrect Password"})
			return
		}
		if sess == nil {
			log.Printf("admin: login: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     TokenCookie,
			Value:    token,
			Path:     "/api/admin",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		resp, perr := project(sess.Pager, history.ViewTable)
		if perr != nil {
			err = errors.Join(err, perr)
		}
		if err != nil {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "history": resp})
	}
}

func handleLogout(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Logout(tokenFrom(r)); err != nil && !errors.Is(err, ErrInvalidToken) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: TokenCookie, Value: "", Path: "/api/admin", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"state": gate.LoggedOut.String()})
	}
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	view, err := history.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	resp, err := project(sessionFrom(r).Pager, view)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleMore(w http.ResponseWriter, r *http.Request) {
	load(w, r, sessionFrom(r).Pager.LoadMore)
}

func handleReload(w http.ResponseWriter, r *http.Request) {
	load(w, r, sessionFrom(r).Pager.LoadInitial)
}

func load(w http.ResponseWriter, r *http.Request, fn func(context.Context) (history.Page, error)) {
	view, err := history.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	pager := sessionFrom(r).Pager
	if _, err := fn(r.Context()); err != nil {
		if errors.Is(err, history.ErrBusy) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		resp, _ := project(pager, view)
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	resp, err := project(pager, view)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleText(w http.ResponseWriter, r *http.Request) {
	text, err := sessionFrom(r).Pager.Text(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func handleImage(w http.ResponseWriter, r *http.Request) {
	rec, err := sessionFrom(r).Pager.Record(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.RenderPNG(&buf, export.Card{Quote: rec.Quote, Topic: rec.Topic}); err != nil {
		log.Printf("admin: rendering image %s: %v", rec.ID, err)
		http.Error(w, "could not render image", http.StatusInternalServerError)
		return
	}

	name := export.Filename(rec.Topic, time.Now())
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Write(buf.Bytes())
}

// project renders the pager's records in the requested view.
func project(p *history.Pager, view history.View) (historyResponse, error) {
	records := p.Records()
	resp := historyResponse{
		View:    view,
		Count:   len(records),
		HasMore: p.HasMore(),
		Loading: p.Loading(),
	}
	switch view {
	case history.ViewGallery:
		cards, err := history.Gallery(records)
		if err != nil {
			return resp, err
		}
		resp.Cards = cards
	default:
		resp.Rows = history.Table(records)
	}
	return resp, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
