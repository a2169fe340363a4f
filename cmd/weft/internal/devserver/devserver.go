// Package devserver serves a rendered scene over HTTP with a websocket
// live-reload channel. The browser holds one connection open; every
// scene update pushes fresh HTML that replaces the page body in place.
package devserver

import (
	"fmt"
	"html"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

const page = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<div id="weft-root">%s</div>
<script>
(function reconnect() {
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "/ws");
  ws.onmessage = (ev) => { document.getElementById("weft-root").innerHTML = ev.data; };
  ws.onclose = () => setTimeout(reconnect, 1000);
})();
</script>
</body>
</html>
`

// Server holds the latest rendered HTML and the set of live-reload
// subscribers.
type Server struct {
	title string

	mu   sync.Mutex
	html string
	subs map[chan string]struct{}
}

// New returns a server seeded with the initial render.
func New(title, initial string) *Server {
	return &Server{
		title: title,
		html:  initial,
		subs:  map[chan string]struct{}{},
	}
}

// Update stores fresh HTML and pushes it to every connected client.
// Slow clients skip intermediate frames rather than blocking the
// update path.
func (s *Server) Update(rendered string) {
	s.mu.Lock()
	s.html = rendered
	for ch := range s.subs {
		select {
		case ch <- rendered:
		default:
		}
	}
	s.mu.Unlock()
}

// Handler returns the HTTP mux: the page at / and the live-reload
// websocket at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	body := s.html
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, page, html.EscapeString(s.title), body)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// The client never sends; CloseRead gives us a context that ends
	// when the connection does.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case rendered := <-ch:
			if err := conn.Write(ctx, websocket.MessageText, []byte(rendered)); err != nil {
				return
			}
		}
	}
}

func (s *Server) subscribe() chan string {
	ch := make(chan string, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan string) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}
