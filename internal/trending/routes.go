package trending

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the trending endpoint.
func RegisterRoutes(r chi.Router, feed *Feed) {
	r.Get("/api/trending", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]string{"topics": feed.Topics()})
	})
}
