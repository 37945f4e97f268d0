package race

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

var testText = strings.Repeat("the quick brown fox jumps over the lazy dog ", 5)

type sent struct {
	to    string
	group bool
	event Event
}

type recordingTransport struct {
	events chan sent
	groups map[string]map[string]bool
	lock   sync.Mutex
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{events: make(chan sent, 256), groups: make(map[string]map[string]bool)}
}

func (tr *recordingTransport) Send(connID string, ev Event) {
	tr.events <- sent{to: connID, event: ev}
}

func (tr *recordingTransport) Broadcast(group string, ev Event) {
	tr.events <- sent{to: group, group: true, event: ev}
}

func (tr *recordingTransport) JoinGroup(group, connID string) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.groups[group] == nil {
		tr.groups[group] = make(map[string]bool)
	}
	tr.groups[group][connID] = true
}

func (tr *recordingTransport) LeaveGroup(group, connID string) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	delete(tr.groups[group], connID)
}

func (tr *recordingTransport) DropGroup(group string) {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	delete(tr.groups, group)
}

func (tr *recordingTransport) members(group string) int {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return len(tr.groups[group])
}

func (tr *recordingTransport) next(t *testing.T) sent {
	t.Helper()
	select {
	case s := <-tr.events:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for an event")
		return sent{}
	}
}

func (tr *recordingTransport) expect(t *testing.T, to, eventType string) sent {
	t.Helper()
	s := tr.next(t)
	if s.to != to || s.event.Type != eventType {
		t.Fatalf("wrong event expected: %v to %v got: %v to %v", eventType, to, s.event.Type, s.to)
	}
	return s
}

func (tr *recordingTransport) expectNone(t *testing.T) {
	t.Helper()
	select {
	case s := <-tr.events:
		t.Fatalf("unexpected event %v to %v", s.event.Type, s.to)
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	coordinator *Coordinator
	registry    *Registry
	transport   *recordingTransport
	clock       *clockwork.FakeClock
}

func newFixture(settings Settings) fixture {
	clock := clockwork.NewFakeClock()
	registry := NewRegistry(TextFunc(func() string { return testText }), settings.Countdown)
	transport := newRecordingTransport()
	return fixture{
		coordinator: NewCoordinator(registry, transport, clock, settings),
		registry:    registry,
		transport:   transport,
		clock:       clock,
	}
}

func testSettings() Settings {
	s := DefaultSettings()
	s.IdleTTL = 0
	return s
}

// openRoom creates roomID administered by admin and joins players to it,
// consuming the resulting events.
func (f fixture) openRoom(t *testing.T, roomID, admin string, players ...string) {
	t.Helper()
	if _, err := f.coordinator.CreateRoom(roomID, admin); err != nil {
		t.Fatalf("create room: %v", err)
	}
	f.transport.expect(t, admin, EventRoomCreated)
	for _, p := range players {
		if _, err := f.coordinator.JoinRoom(roomID, p); err != nil {
			t.Fatalf("join room: %v", err)
		}
		f.transport.expect(t, p, EventRoomJoined)
		f.transport.expect(t, roomID, EventPlayerJoined)
	}
}

// runCountdown starts the race and advances the clock until startTyping.
func (f fixture) runCountdown(t *testing.T, roomID, admin string) {
	t.Helper()
	if err := f.coordinator.StartRace(roomID, admin); err != nil {
		t.Fatalf("start race: %v", err)
	}
	for count := f.coordinator.settings.Countdown; count > 0; count-- {
		f.clock.Advance(time.Second)
		s := f.transport.expect(t, roomID, EventCountdown)
		if got := s.event.Data.(CountdownPayload).Count; got != count {
			t.Fatalf("wrong count expected: %d got: %d", count, got)
		}
	}
	f.transport.expect(t, roomID, EventStartTyping)
}

// waitForRooms waits for timer callbacks that remove rooms after broadcasting.
func (f fixture) waitForRooms(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.registry.Len() != n {
		if time.Now().After(deadline) {
			t.Fatalf("wrong room count expected: %d got: %d", n, f.registry.Len())
		}
		time.Sleep(time.Millisecond)
	}
}
