package race

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Transport delivers events to single connections and to room groups.
// Implementations must not block: the coordinator calls them while holding
// a room lock so that every group member sees events in mutation order.
type Transport interface {
	Send(connID string, ev Event)
	Broadcast(group string, ev Event)
	JoinGroup(group, connID string)
	LeaveGroup(group, connID string)
	DropGroup(group string)
}

// MaxTypedFactor bounds submitted text to a multiple of the passage length.
const MaxTypedFactor = 2

type Settings struct {
	Countdown    int
	TickInterval time.Duration
	RaceDuration time.Duration
	// IdleTTL bounds how long a room may wait for its start. Zero disables expiry.
	IdleTTL time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Countdown:    3,
		TickInterval: time.Second,
		RaceDuration: 60 * time.Second,
		IdleTTL:      30 * time.Minute,
	}
}

// Coordinator drives rooms through Waiting, Countdown, Running and Finished.
type Coordinator struct {
	registry *Registry
	out      Transport
	clock    clockwork.Clock
	settings Settings
}

func NewCoordinator(registry *Registry, out Transport, clock clockwork.Clock, settings Settings) *Coordinator {
	return &Coordinator{registry: registry, out: out, clock: clock, settings: settings}
}

// CreateRoom registers a room administered by adminID and returns its id.
func (c *Coordinator) CreateRoom(roomID, adminID string) (string, error) {
	room, err := c.registry.Create(roomID, adminID)
	if err != nil {
		return "", err
	}
	defer room.lock.Unlock()

	c.out.JoinGroup(room.id, adminID)
	c.out.Send(adminID, roomCreatedEvent(room.id))
	if c.settings.IdleTTL > 0 {
		room.idleTask = after(c.clock, c.settings.IdleTTL, func(t *task) { c.expire(room, t) })
	}
	getRoomLogger(room.id).Created(adminID)
	return room.id, nil
}

func (c *Coordinator) JoinRoom(roomID, connID string) (JoinOutcome, error) {
	room, err := c.registry.Get(roomID)
	if err != nil {
		return Joined, err
	}
	room.lock.Lock()
	defer room.lock.Unlock()
	if room.closed {
		return Joined, fmt.Errorf("join %q: %w", roomID, ErrRoomNotFound)
	}

	outcome, err := room.join(connID)
	if err != nil {
		return outcome, fmt.Errorf("join %q: %w", roomID, err)
	}
	c.out.JoinGroup(room.id, connID)
	c.out.Send(connID, Event{Type: EventRoomJoined, Data: RoomJoinedPayload{
		Text:      room.text,
		IsStarted: room.isStarted(),
		IsAdmin:   room.admin == connID,
		Countdown: room.countdown,
	}})
	c.out.Broadcast(room.id, playersEvent(EventPlayerJoined, room.players()))
	getRoomLogger(room.id).Joined(connID, outcome)
	return outcome, nil
}

// StartRace begins the countdown. Only the room admin may start it.
func (c *Coordinator) StartRace(roomID, connID string) error {
	room, err := c.registry.Get(roomID)
	if err != nil {
		return err
	}
	room.lock.Lock()
	defer room.lock.Unlock()

	switch {
	case room.closed:
		return fmt.Errorf("start %q: %w", roomID, ErrRoomNotFound)
	case room.admin != connID:
		return fmt.Errorf("start %q: %w", roomID, ErrForbidden)
	case room.phase != PhaseWaiting:
		return fmt.Errorf("start %q: %w", roomID, ErrAlreadyStarted)
	}

	if room.idleTask != nil {
		room.idleTask.cancel()
		room.idleTask = nil
	}
	room.phase = PhaseCountdown
	getRoomLogger(room.id).CountdownStarted(room.countdown)
	if room.countdown <= 0 {
		c.beginRace(room)
		return nil
	}
	room.countdownTask = every(c.clock, c.settings.TickInterval, func(t *task) bool {
		return c.tick(room, t)
	})
	return nil
}

// tick announces the remaining count and starts the race once it runs out.
// It returns false when no further ticks are wanted.
func (c *Coordinator) tick(room *Room, t *task) bool {
	room.lock.Lock()
	defer room.lock.Unlock()
	if t.cancelled() || room.closed || room.phase != PhaseCountdown {
		return false
	}

	c.out.Broadcast(room.id, countdownEvent(room.countdown))
	room.countdown--
	if room.countdown > 0 {
		return true
	}
	c.beginRace(room)
	return false
}

// beginRace must be called with the room lock held.
func (c *Coordinator) beginRace(room *Room) {
	if room.countdownTask != nil {
		room.countdownTask.cancel()
		room.countdownTask = nil
	}
	room.startedAt = c.clock.Now()
	room.phase = PhaseRunning
	room.raceTask = after(c.clock, c.settings.RaceDuration, func(t *task) { c.finishRace(room, t) })
	c.out.Broadcast(room.id, Event{Type: EventStartTyping})
	getRoomLogger(room.id).RaceStarted()
}

// UpdateProgress scores typedText for connID and broadcasts the leaderboard.
func (c *Coordinator) UpdateProgress(roomID, connID, typedText string) error {
	room, err := c.registry.Get(roomID)
	if err != nil {
		return err
	}
	room.lock.Lock()
	defer room.lock.Unlock()
	if room.closed {
		return fmt.Errorf("progress %q: %w", roomID, ErrRoomNotFound)
	}
	p, ok := room.participants[connID]
	if !ok {
		return fmt.Errorf("progress %q: %w", roomID, ErrNotParticipant)
	}
	if room.phase != PhaseRunning {
		return fmt.Errorf("progress %q: %w", roomID, ErrRaceNotRunning)
	}
	if runeLen(typedText) > MaxTypedFactor*runeLen(room.text) {
		return fmt.Errorf("progress %q: %w", roomID, ErrTextTooLong)
	}

	room.score(p, typedText, c.clock.Since(room.startedAt).Seconds())
	c.out.Broadcast(room.id, playersEvent(EventUpdateLeaderboard, room.players()))
	return nil
}

// finishRace refreshes only wpm; accuracy and progress keep their last values.
func (c *Coordinator) finishRace(room *Room, t *task) {
	room.lock.Lock()
	defer room.lock.Unlock()
	if t.cancelled() || room.closed || room.phase != PhaseRunning {
		return
	}

	elapsed := c.clock.Since(room.startedAt).Seconds()
	if elapsed > 0 {
		for _, p := range room.participants {
			p.WPM = WordsPerMinute(runeLen(p.TypedText), elapsed)
		}
	}
	room.phase = PhaseFinished
	c.out.Broadcast(room.id, playersEvent(EventFinalResults, room.players()))
	getRoomLogger(room.id).RaceFinished(len(room.participants))
	c.destroy(room, "race finished")
}

func (c *Coordinator) expire(room *Room, t *task) {
	room.lock.Lock()
	defer room.lock.Unlock()
	if t.cancelled() || room.closed || room.phase != PhaseWaiting {
		return
	}
	c.out.Broadcast(room.id, Event{Type: EventRoomExpired})
	c.destroy(room, "idle")
}

// Disconnect drops connID from every room it raced in and destroys the rooms
// it administered.
func (c *Coordinator) Disconnect(connID string) {
	for _, room := range c.registry.Rooms() {
		c.leave(room, connID)
	}
}

func (c *Coordinator) leave(room *Room, connID string) {
	room.lock.Lock()
	defer room.lock.Unlock()
	if room.closed {
		return
	}
	_, isParticipant := room.participants[connID]
	isAdmin := room.admin == connID
	if !isParticipant && !isAdmin {
		return
	}

	c.out.LeaveGroup(room.id, connID)
	if isParticipant {
		delete(room.participants, connID)
		c.out.Broadcast(room.id, playersEvent(EventUpdateLeaderboard, room.players()))
		getRoomLogger(room.id).Left(connID)
	}
	if isAdmin {
		c.out.Broadcast(room.id, Event{Type: EventAdminLeft})
		c.destroy(room, "admin left")
	}
}

// destroy cancels all scheduled work before the room leaves the registry.
// It must be called with the room lock held. An open room is always the
// registry entry for its id, since only destroy removes entries.
func (c *Coordinator) destroy(room *Room, reason string) {
	room.cancelTasks()
	room.closed = true
	c.registry.Remove(room.id)
	c.out.DropGroup(room.id)
	getRoomLogger(room.id).Removing(reason)
}

func (c *Coordinator) Snapshot(roomID string) (Snapshot, error) {
	room, err := c.registry.Get(roomID)
	if err != nil {
		return Snapshot{}, err
	}
	return room.Snapshot(), nil
}

// Shutdown destroys every room, cancelling their timers.
func (c *Coordinator) Shutdown() {
	for _, room := range c.registry.Rooms() {
		room.lock.Lock()
		if !room.closed {
			c.destroy(room, "shutdown")
		}
		room.lock.Unlock()
	}
}
