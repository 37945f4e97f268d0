package race

import (
	"fmt"
	"sync"

	"typerace/code"
)

// TextSource supplies the passage for a new room.
type TextSource interface {
	Fetch() string
}

// TextFunc adapts a plain function to TextSource.
type TextFunc func() string

func (f TextFunc) Fetch() string {
	return f()
}

// Registry maps room ids to active rooms.
type Registry struct {
	rooms     map[string]*Room
	texts     TextSource
	countdown int
	lock      sync.RWMutex
}

func NewRegistry(texts TextSource, countdown int) *Registry {
	return &Registry{rooms: make(map[string]*Room), texts: texts, countdown: countdown}
}

// Create registers a new Waiting room owned by admin and returns it locked;
// the caller must unlock it. The room is locked before it becomes visible, so
// no other handler can observe it half set up. An empty roomID gets a
// generated code.
func (r *Registry) Create(roomID, admin string) (*Room, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if roomID == "" {
		for {
			roomID = code.New()
			if _, exists := r.rooms[roomID]; !exists {
				break
			}
		}
	}
	if _, exists := r.rooms[roomID]; exists {
		return nil, fmt.Errorf("create %q: %w", roomID, ErrDuplicateRoom)
	}
	room := newRoom(roomID, admin, r.texts.Fetch(), r.countdown)
	// Never contended: nothing else can reach room yet.
	room.lock.Lock()
	r.rooms[roomID] = room
	return room, nil
}

func (r *Registry) Get(roomID string) (*Room, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	room, exists := r.rooms[roomID]
	if !exists {
		return nil, fmt.Errorf("get %q: %w", roomID, ErrRoomNotFound)
	}
	return room, nil
}

// Remove drops the entry only; scheduled work is cancelled by the coordinator.
func (r *Registry) Remove(roomID string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.rooms, roomID)
}

func (r *Registry) Rooms() []*Room {
	r.lock.RLock()
	defer r.lock.RUnlock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.rooms)
}
