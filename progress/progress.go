// Package progress provides an optional live feed of fit/transform
// progress, broadcast to connected dashboards over a websocket. It plays
// no role in the boilerplate algorithm itself; a Deboiler with no Feed
// configured pays no cost for it.
package progress

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Phase identifies which operation an Event describes.
type Phase string

const (
	PhaseFit       Phase = "fit"
	PhaseTransform Phase = "transform"
)

// Event is one progress update.
type Event struct {
	Phase           Phase `json:"phase"`
	PagesProcessed  int   `json:"pages_processed"`
	PagesTotal      int   `json:"pages_total"`
	BoilerplateSize int   `json:"boilerplate_size"`
}

// upgrader is shared across connections the way pages.go's wsUpgrader is
// in the teacher: it carries no per-request state.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Feed broadcasts Events to every currently-connected websocket client.
// Reports are best-effort: a client whose write fails is dropped. Writes
// are synchronous and carry no deadline, so a client that stops reading
// can hold up the fit/transform loop that's producing events.
type Feed struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewFeed constructs a Feed. logger may be nil, in which case connection
// errors are discarded.
func NewFeed(logger *slog.Logger) *Feed {
	return &Feed{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a broadcast target until it closes.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logf("upgrade progress feed connection", "error", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = struct{}{}
	f.mu.Unlock()

	go func() {
		defer f.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (f *Feed) remove(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.clients, conn)
	f.mu.Unlock()
	_ = conn.Close()
}

// Report broadcasts one progress event to every connected client.
func (f *Feed) Report(phase Phase, processed, total, boilerplateSize int) {
	ev := Event{
		Phase:           phase,
		PagesProcessed:  processed,
		PagesTotal:      total,
		BoilerplateSize: boilerplateSize,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	f.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(f.clients))
	for c := range f.clients {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			f.remove(c)
		}
	}
}

func (f *Feed) logf(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
