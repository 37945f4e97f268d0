package race

import (
	"sync"
	"time"
)

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseCountdown
	PhaseRunning
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseCountdown:
		return "countdown"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Participant is one connection's racing state within a room.
type Participant struct {
	TypedText    string  `json:"typedText"`
	CorrectChars int     `json:"correctChars"`
	Progress     float64 `json:"progress"`
	WPM          float64 `json:"wpm"`
	Accuracy     float64 `json:"accuracy"`
}

func newParticipant() *Participant {
	return &Participant{Accuracy: 100}
}

// Room is one race session. Every field is guarded by lock.
type Room struct {
	id           string
	admin        string
	text         string
	participants map[string]*Participant
	phase        Phase
	countdown    int
	startedAt    time.Time
	closed       bool

	countdownTask *task
	raceTask      *task
	idleTask      *task

	lock sync.Mutex
}

func newRoom(id, admin, text string, countdown int) *Room {
	return &Room{
		id:           id,
		admin:        admin,
		text:         text,
		participants: make(map[string]*Participant),
		phase:        PhaseWaiting,
		countdown:    countdown,
	}
}

// Snapshot is a copy of a room's state, safe to hand out.
type Snapshot struct {
	RoomID    string                 `json:"roomId"`
	Admin     string                 `json:"admin"`
	Phase     Phase                  `json:"phase"`
	IsStarted bool                   `json:"isStarted"`
	Countdown int                    `json:"countdown"`
	Text      string                 `json:"text"`
	StartedAt *time.Time             `json:"startedAt,omitempty"`
	Players   map[string]Participant `json:"players"`
}

func (r *Room) Snapshot() Snapshot {
	r.lock.Lock()
	defer r.lock.Unlock()
	s := Snapshot{
		RoomID:    r.id,
		Admin:     r.admin,
		Phase:     r.phase,
		IsStarted: r.isStarted(),
		Countdown: r.countdown,
		Text:      r.text,
		Players:   r.players(),
	}
	if !r.startedAt.IsZero() {
		startedAt := r.startedAt
		s.StartedAt = &startedAt
	}
	return s
}

func (r *Room) isStarted() bool {
	return r.phase != PhaseWaiting
}

func (r *Room) players() map[string]Participant {
	players := make(map[string]Participant, len(r.participants))
	for id, p := range r.participants {
		players[id] = *p
	}
	return players
}

// JoinOutcome tells a first join apart from a repeated one.
type JoinOutcome int

const (
	Joined JoinOutcome = iota
	Rejoined
)

func (r *Room) join(connID string) (JoinOutcome, error) {
	if _, exists := r.participants[connID]; exists {
		if r.phase == PhaseCountdown || r.phase == PhaseRunning {
			return Rejoined, ErrAlreadyJoined
		}
		r.participants[connID] = newParticipant()
		return Rejoined, nil
	}
	r.participants[connID] = newParticipant()
	return Joined, nil
}

// score recomputes a participant's snapshot from the submitted text.
func (r *Room) score(p *Participant, typedText string, elapsedSeconds float64) {
	typed := []rune(typedText)
	text := []rune(r.text)
	p.TypedText = typedText
	p.CorrectChars = countCorrect(typed, text)
	p.Progress = progressPercent(len(typed), len(text))
	p.Accuracy = AccuracyPercent(p.CorrectChars, len(typed))
	p.WPM = 0
	if elapsedSeconds > 0 {
		p.WPM = WordsPerMinute(len(typed), elapsedSeconds)
	}
}

// cancelTasks stops every scheduled callback bound to the room.
func (r *Room) cancelTasks() {
	for _, t := range []*task{r.countdownTask, r.raceTask, r.idleTask} {
		if t != nil {
			t.cancel()
		}
	}
	r.countdownTask, r.raceTask, r.idleTask = nil, nil, nil
}
