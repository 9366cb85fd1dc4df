package trace

import (
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"mbxctl/log"
)

// Server streams trace events to websocket clients. It implements mbx.Sink;
// events are broadcast as one JSON text message each. A slow or gone client
// is dropped rather than allowed to stall the pump.
type Server struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewServer() *Server {
	return &Server{conns: make(map[*websocket.Conn]struct{})}
}

// ListenAndServe serves the /ws endpoint on addr. It blocks until the
// listener fails.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.ModTrace.InfoZ("trace server listening").String("addr", addr).End()

	server := http.Server{Handler: mux}
	return server.Serve(ln)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	upgrader.CheckOrigin = func(r *http.Request) bool { return true }

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ModTrace.ErrorZ("failed to perform websocket handshake").Error("err", err).End()
		return
	}

	log.ModTrace.DebugZ("trace client attached").String("remote", ws.RemoteAddr().String()).End()
	s.mu.Lock()
	s.conns[ws] = struct{}{}
	s.mu.Unlock()

	// Clients only listen. Reading drains control frames and detects the
	// disconnect.
	go func() {
		defer s.drop(ws)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) drop(ws *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, ws)
	s.mu.Unlock()
	ws.Close()
	log.ModTrace.DebugZ("trace client detached").String("remote", ws.RemoteAddr().String()).End()
}

func (s *Server) broadcast(ev Event) {
	buf, err := ev.MarshalJSON()
	if err != nil {
		log.ModTrace.ErrorZ("failed to encode event").Error("err", err).End()
		return
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for ws := range s.conns {
		conns = append(conns, ws)
	}
	s.mu.Unlock()

	for _, ws := range conns {
		if err := ws.WriteMessage(websocket.TextMessage, buf); err != nil {
			s.drop(ws)
		}
	}
}

func (s *Server) Sent(data, header uint64) {
	s.broadcast(event(Sent, data, header))
}

func (s *Server) Received(data, header uint64) {
	s.broadcast(event(Received, data, header))
}

func (s *Server) Unhandled(data, header uint64) {
	s.broadcast(event(Dropped, data, header))
}
