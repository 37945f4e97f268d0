package race

// Inbound messages. The transport decodes each named event into one of these.
type CreateRoomMessage struct {
	RoomID string `json:"roomId"`
}

type JoinRoomMessage struct {
	RoomID string `json:"roomId"`
}

type StartTestMessage struct {
	RoomID string `json:"roomId"`
}

type UpdateProgressMessage struct {
	RoomID    string `json:"roomId"`
	TypedText string `json:"typedText"`
}

const (
	EventRoomCreated       = "roomCreated"
	EventRoomJoined        = "roomJoined"
	EventRoomError         = "roomError"
	EventPlayerJoined      = "playerJoined"
	EventCountdown         = "countdown"
	EventStartTyping       = "startTyping"
	EventUpdateLeaderboard = "updateLeaderboard"
	EventFinalResults      = "finalResults"
	EventAdminLeft         = "adminLeft"
	EventRoomExpired       = "roomExpired"
)

// Event is an outbound named event with its payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// IsTerminal reports whether the event is the last one a room group receives.
func (e Event) IsTerminal() bool {
	switch e.Type {
	case EventFinalResults, EventAdminLeft, EventRoomExpired:
		return true
	}
	return false
}

type RoomCreatedPayload struct {
	RoomID  string `json:"roomId"`
	IsAdmin bool   `json:"isAdmin"`
}

type RoomJoinedPayload struct {
	Text      string `json:"text"`
	IsStarted bool   `json:"isStarted"`
	IsAdmin   bool   `json:"isAdmin"`
	Countdown int    `json:"countdown"`
}

type PlayersPayload struct {
	Players map[string]Participant `json:"players"`
}

type CountdownPayload struct {
	Count int `json:"count"`
}

func roomCreatedEvent(roomID string) Event {
	return Event{Type: EventRoomCreated, Data: RoomCreatedPayload{RoomID: roomID, IsAdmin: true}}
}

func roomErrorEvent(message string) Event {
	return Event{Type: EventRoomError, Data: message}
}

func playersEvent(eventType string, players map[string]Participant) Event {
	return Event{Type: eventType, Data: PlayersPayload{Players: players}}
}

func countdownEvent(count int) Event {
	return Event{Type: EventCountdown, Data: CountdownPayload{Count: count}}
}
