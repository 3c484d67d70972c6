// Package mirror publishes the console state to browsers over HTTP and a
// websocket feed. It never writes to the device.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/whoisnian/glb/logger"
)

type Param struct {
	Name   string `json:"name"`
	Device string `json:"device"`
}

// Number is a float64 that encodes NaN and infinities as null, which JSON
// cannot represent otherwise.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

type Reading struct {
	Name   string `json:"name"`
	Value  Number `json:"value"`
	Mean   Number `json:"mean"`
	StdDev Number `json:"stddev"`
	Min    Number `json:"min"`
	Max    Number `json:"max"`
}

type Snapshot struct {
	Port      string    `json:"port"`
	Tuning    []Param   `json:"tuning"`
	Telemetry []Reading `json:"telemetry"`
	Gradient  []string  `json:"gradient,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Server struct {
	log *logger.Logger
	hub *Hub
	mux *http.ServeMux

	upgrader websocket.Upgrader

	mu   sync.RWMutex
	last Snapshot

	// 1-slot wakeup for the broadcaster; Publish never waits on clients
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func New(log *logger.Logger) *Server {
	s := &Server{
		log:    log,
		hub:    NewHub(),
		mux:    http.NewServeMux(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			// read-only local feed
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/ws", s.handleWS)
	go s.broadcastLoop()
	return s
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
			if err := s.hub.Broadcast(Message{Type: "snapshot", Data: s.Last()}); err != nil {
				s.log.Warnf(context.Background(), "marshal snapshot: %v", err)
			}
		}
	}
}

// Close stops the broadcaster.
func (s *Server) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) Hub() *Hub { return s.hub }

// Publish stores snap as the latest state and wakes the broadcaster. Bursts
// collapse into one push of the newest snapshot.
func (s *Server) Publish(snap Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Server) Last() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	b, err := json.Marshal(s.Last())
	if err != nil {
		s.log.Warnf(r.Context(), "marshal snapshot: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf(r.Context(), "websocket upgrade: %v", err)
		return
	}
	c := s.hub.add(conn)
	defer s.hub.remove(c)
	s.log.Debugf(r.Context(), "mirror client connected: %s", r.RemoteAddr)

	b, err := json.Marshal(Message{Type: "snapshot", Data: s.Last()})
	if err != nil {
		s.log.Warnf(r.Context(), "marshal snapshot: %v", err)
		return
	}
	if err := c.send(b); err != nil {
		return
	}
	// discard incoming frames; the loop ends when the peer goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.log.Debugf(r.Context(), "mirror client gone: %s", r.RemoteAddr)
			return
		}
	}
}

// ListenAndServe listens on addr and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs on an already bound listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.Close()
	}()
	s.log.Infof(ctx, "mirror listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
