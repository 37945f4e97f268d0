package race

import (
	"github.com/rs/zerolog/log"
)

// Router maps inbound connection events onto coordinator operations.
type Router struct {
	coordinator *Coordinator
	out         Transport
}

func NewRouter(coordinator *Coordinator, out Transport) *Router {
	return &Router{coordinator: coordinator, out: out}
}

// Handle dispatches one decoded message received from connID.
func (r *Router) Handle(connID string, msg any) {
	switch m := msg.(type) {
	case CreateRoomMessage:
		if _, err := r.coordinator.CreateRoom(m.RoomID, connID); err != nil {
			r.reply(connID, m.RoomID, "createRoom", err)
		}
	case JoinRoomMessage:
		if _, err := r.coordinator.JoinRoom(m.RoomID, connID); err != nil {
			r.reply(connID, m.RoomID, "joinRoom", err)
		}
	case StartTestMessage:
		if err := r.coordinator.StartRace(m.RoomID, connID); err != nil {
			getRoomLogger(m.RoomID).Rejected(connID, "startTest", err)
		}
	case UpdateProgressMessage:
		if err := r.coordinator.UpdateProgress(m.RoomID, connID, m.TypedText); err != nil {
			getRoomLogger(m.RoomID).Rejected(connID, "updateProgress", err)
		}
	default:
		log.Warn().Str("conn-id", connID).Msgf("Unhandled message %T", msg)
	}
}

// Disconnect is called once the connection is gone.
func (r *Router) Disconnect(connID string) {
	r.coordinator.Disconnect(connID)
}

func (r *Router) reply(connID, roomID, op string, err error) {
	getRoomLogger(roomID).Rejected(connID, op, err)
	r.out.Send(connID, roomErrorEvent(replyMessage(err)))
}
