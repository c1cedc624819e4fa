// Package server is the WebSocket bridge to the browser extension. The
// extension connects to us, streams page-load and tab lifecycle events,
// and executes tab/group commands we send back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lotas/arxivgruppen/internal/applog"
	"nhooyr.io/websocket"
)

// IncomingMsg is a message from the extension: an event or a command
// response.
type IncomingMsg struct {
	Type string `json:"type,omitempty"`

	// Event fields
	TabID    int             `json:"tabId,omitempty"`
	URL      string          `json:"url,omitempty"`
	Title    string          `json:"title,omitempty"`
	Authors  string          `json:"authors,omitempty"`
	Category string          `json:"category,omitempty"`
	Tabs     json.RawMessage `json:"tabs,omitempty"`

	// Command response fields
	ID      string `json:"id,omitempty"`
	OK      *bool  `json:"ok,omitempty"`
	Error   string `json:"error,omitempty"`
	GroupID int    `json:"groupId,omitempty"`
	TabIDs  []int  `json:"tabIds,omitempty"`
}

// OutgoingMsg is a command to the extension.
type OutgoingMsg struct {
	ID      string `json:"id"`
	Action  string `json:"action"`
	TabID   int    `json:"tabId,omitempty"`
	TabIDs  []int  `json:"tabIds,omitempty"`
	GroupID int    `json:"groupId,omitempty"`
	Name    string `json:"name,omitempty"`
	Color   string `json:"color,omitempty"`
	Title   string `json:"title,omitempty"`
}

// ErrNotConnected is returned for commands while no extension is
// connected.
var ErrNotConnected = errors.New("extension not connected")

const callTimeout = 10 * time.Second

// Server manages the WebSocket connection to the extension. Command
// responses are matched to callers by id; everything else goes to the
// events channel.
type Server struct {
	port   int
	events chan IncomingMsg

	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
	pending map[string]chan IncomingMsg
}

// New creates a new Server. Port 0 means the caller manages the
// listener (tests use httptest).
func New(port int) *Server {
	return &Server{
		port:    port,
		events:  make(chan IncomingMsg, 64),
		pending: make(map[string]chan IncomingMsg),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Events returns the channel of extension events (pageLoaded,
// tabRemoved, snapshot).
func (s *Server) Events() <-chan IncomingMsg {
	return s.events
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// send writes a command to the connected extension.
func (s *Server) send(msg OutgoingMsg) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	applog.Info("ws.send", "action", msg.Action, "id", msg.ID)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Call sends a command and waits for the response carrying the same id.
func (s *Server) Call(ctx context.Context, msg OutgoingMsg) (IncomingMsg, error) {
	ch := make(chan IncomingMsg, 1)
	s.mu.Lock()
	s.pending[msg.ID] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, msg.ID)
		s.mu.Unlock()
	}()

	if err := s.send(msg); err != nil {
		return IncomingMsg{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return IncomingMsg{}, fmt.Errorf("%s: %w", msg.Action, ctx.Err())
	}
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("ws.accept", err)
			return
		}

		conn.SetReadLimit(16 << 20) // snapshots with many tabs can be large

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			s.dispatch(msg)
		}
	})
}

// dispatch routes a command response to its waiting Call, or queues an
// event. Events are dropped rather than blocking the read loop.
func (s *Server) dispatch(msg IncomingMsg) {
	if msg.ID != "" {
		s.mu.Lock()
		ch, ok := s.pending[msg.ID]
		s.mu.Unlock()
		if ok {
			// Non-blocking: a duplicate response for an id whose first
			// copy already landed must not stall the read loop.
			select {
			case ch <- msg:
			default:
				applog.Info("ws.duplicate", "id", msg.ID)
			}
			return
		}
		// Late response after a Call timed out; nothing waits for it.
		applog.Info("ws.orphan", "id", msg.ID)
		return
	}

	applog.Info("ws.recv", "type", msg.Type)
	select {
	case s.events <- msg:
	default:
		applog.Info("ws.dropped", "type", msg.Type)
	}
}

// ListenAndServe starts the WebSocket server on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("server.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}
