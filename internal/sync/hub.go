package sync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"biodex/internal/metrics"
)

const (
	defaultHistorySize = 50
	pruneEvery         = time.Minute
)

type channel struct {
	conns   map[*websocket.Conn]struct{}
	history []Event
	seen    time.Time
}

// Hub fans session events out to that session's websockets and keeps a
// bounded replay history per session.
type Hub struct {
	// TTL drops sessions with no sockets once they have been idle this
	// long. Zero keeps them until DeleteSession.
	TTL time.Duration

	mu          sync.Mutex
	sessions    map[string]*channel
	historySize int
	now         func() time.Time
	lastPrune   time.Time
}

type Stats struct {
	Sessions  int `json:"sessions"`
	WSClients int `json:"ws_clients"`
}

func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		sessions:    make(map[string]*channel),
		historySize: historySize,
		now:         time.Now,
	}
}

type welcome struct {
	Type      string  `json:"type"`
	SessionID string  `json:"session_id"`
	History   []Event `json:"history"`
}

// Join sends ws a welcome frame carrying the replay history, then registers
// it for sessionID. Both happen under the hub lock so no event is written
// concurrently or lost in between.
func (h *Hub) Join(sessionID string, ws *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	h.pruneLocked(now)
	ch := h.channelLocked(sessionID)
	ch.seen = now

	history := append([]Event{}, ch.history...)
	_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := ws.WriteJSON(welcome{Type: "welcome", SessionID: sessionID, History: history}); err != nil {
		return err
	}
	ch.conns[ws] = struct{}{}
	metrics.WSClients.Inc()
	return nil
}

func (h *Hub) Leave(sessionID string, ws *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.sessions[sessionID]; ok {
		if _, joined := ch.conns[ws]; joined {
			delete(ch.conns, ws)
			metrics.WSClients.Dec()
		}
		ch.seen = h.now()
	}
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) Publish(ev Event) {
	if ev.SessionID == "" {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.pruneLocked(now)
	ch := h.channelLocked(ev.SessionID)
	ch.seen = now
	ch.history = append(ch.history, ev)
	if len(ch.history) > h.historySize {
		ch.history = ch.history[len(ch.history)-h.historySize:]
	}

	for ws := range ch.conns {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = ws.Close()
			delete(ch.conns, ws)
			metrics.WSClients.Dec()
		}
	}
}

func (h *Hub) History(sessionID string) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.sessions[sessionID]; ok {
		return append([]Event(nil), ch.history...)
	}
	return nil
}

// DeleteSession drops the session's history and closes its sockets.
func (h *Hub) DeleteSession(_ context.Context, sessionID string) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.sessions[sessionID]
	if !ok {
		return 0, nil
	}
	for ws := range ch.conns {
		_ = ws.Close()
		metrics.WSClients.Dec()
	}
	delete(h.sessions, sessionID)
	return int64(len(ch.history)), nil
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Stats{Sessions: len(h.sessions)}
	for _, ch := range h.sessions {
		s.WSClients += len(ch.conns)
	}
	return s
}

// pruneLocked forgets idle sessions nobody is connected to. Sessions whose
// tokens expired without an explicit end would otherwise stay forever.
func (h *Hub) pruneLocked(now time.Time) {
	if h.TTL <= 0 || now.Sub(h.lastPrune) < pruneEvery {
		return
	}
	h.lastPrune = now
	for id, ch := range h.sessions {
		if len(ch.conns) == 0 && now.Sub(ch.seen) > h.TTL {
			delete(h.sessions, id)
		}
	}
}

func (h *Hub) channelLocked(sessionID string) *channel {
	ch, ok := h.sessions[sessionID]
	if !ok {
		ch = &channel{conns: make(map[*websocket.Conn]struct{})}
		h.sessions[sessionID] = ch
	}
	return ch
}
