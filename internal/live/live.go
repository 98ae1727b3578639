// Package live streams the visitor total and trending topics to browser
// clients over a websocket.
package live

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/quotegen/internal/trending"
	"github.com/ziadkadry99/quotegen/internal/visitors"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame is one message sent to the client.
type Frame struct {
	Type         string   `json:"type"` // "visitors" or "trending"
	VisitorCount *int64   `json:"visitor_count,omitempty"`
	Topics       []string `json:"topics,omitempty"`
}

// Stream serves /ws/live. Each connection holds its own visitor and
// trending subscriptions for as long as it is open.
type Stream struct {
	counter *visitors.Counter
	recent  trending.Watcher
	window  int

	mu    sync.Mutex
	conns int
}

// New creates a Stream.
func New(counter *visitors.Counter, recent trending.Watcher, window int) *Stream {
	return &Stream{counter: counter, recent: recent, window: window}
}

// RegisterRoutes mounts the websocket endpoint.
func (s *Stream) RegisterRoutes(r chi.Router) {
	r.Get("/ws/live", s.handleWebSocket)
}

// Connections returns the number of open sockets.
func (s *Stream) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

func (s *Stream) track(delta int) {
	s.mu.Lock()
	s.conns += delta
	s.mu.Unlock()
}

func (s *Stream) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	s.track(1)
	defer s.track(-1)

	var writeMu sync.Mutex
	send := func(f Frame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			log.Printf("live: websocket write: %v", err)
		}
	}

	counts := s.counter.Watch(func(n int64) {
		send(Frame{Type: "visitors", VisitorCount: &n})
	})
	defer counts.Unsubscribe()

	feed := trending.Start(s.recent, s.window, func(topics []string) {
		send(Frame{Type: "trending", Topics: topics})
	})
	defer feed.Close()

	// The client sends nothing; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("live: websocket read: %v", err)
			}
			return
		}
	}
}
