// Package transport delivers race events to websocket and SSE clients.
package transport

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"typerace/race"
)

const sendBufferSize = 256

// Frame is one encoded outbound event.
type Frame struct {
	Type     string
	Payload  []byte
	Terminal bool
}

// Connection is a registered receiver. Its queue is closed on Unregister.
type Connection struct {
	ID   string
	send chan Frame
}

func (c *Connection) Frames() <-chan Frame {
	return c.send
}

// Hub tracks connections and the groups they belong to. Send and Broadcast
// never block: a receiver whose queue is full is dropped.
type Hub struct {
	connections map[string]*Connection
	groups      map[string]map[string]*Connection
	lock        sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		groups:      make(map[string]map[string]*Connection),
	}
}

func (h *Hub) Register() *Connection {
	c := &Connection{ID: uuid.NewString(), send: make(chan Frame, sendBufferSize)}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.connections[c.ID] = c
	return c
}

func (h *Hub) Unregister(connID string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	c, exists := h.connections[connID]
	if !exists {
		return
	}
	delete(h.connections, connID)
	for group, members := range h.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	close(c.send)
}

func (h *Hub) JoinGroup(group, connID string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	c, exists := h.connections[connID]
	if !exists {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[string]*Connection)
	}
	h.groups[group][connID] = c
}

func (h *Hub) LeaveGroup(group, connID string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if members, exists := h.groups[group]; exists {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// DropGroup forgets a group. Its members stay connected.
func (h *Hub) DropGroup(group string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.groups, group)
}

func (h *Hub) Send(connID string, ev race.Event) {
	frame, ok := encode(ev)
	if !ok {
		return
	}
	h.lock.RLock()
	c, exists := h.connections[connID]
	slow := exists && !push(c, frame)
	h.lock.RUnlock()
	if slow {
		h.drop(connID)
	}
}

func (h *Hub) Broadcast(group string, ev race.Event) {
	frame, ok := encode(ev)
	if !ok {
		return
	}
	var slow []string
	h.lock.RLock()
	for id, c := range h.groups[group] {
		if !push(c, frame) {
			slow = append(slow, id)
		}
	}
	h.lock.RUnlock()
	for _, id := range slow {
		h.drop(id)
	}
	log.Debug().Str("room-id", group).Str("event", ev.Type).Msg("Broadcast")
}

// Stats returns the number of connections and groups.
func (h *Hub) Stats() (connections int, groups int) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.connections), len(h.groups)
}

func (h *Hub) drop(connID string) {
	log.Warn().Str("conn-id", connID).Msg("Send queue full, dropping connection")
	h.Unregister(connID)
}

// push must be called with the hub lock held so the queue cannot be closed
// underneath it.
func push(c *Connection, frame Frame) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func encode(ev race.Event) (Frame, bool) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Type).Msg("Error while encoding event")
		return Frame{}, false
	}
	return Frame{Type: ev.Type, Payload: payload, Terminal: ev.IsTerminal()}, true
}
