package race

import "errors"

var (
	ErrRoomNotFound   = errors.New("room does not exist")
	ErrDuplicateRoom  = errors.New("room already exists")
	ErrForbidden      = errors.New("only the room admin can start the race")
	ErrAlreadyJoined  = errors.New("already joined this race")
	ErrAlreadyStarted = errors.New("race already started")
	ErrNotParticipant = errors.New("connection is not a participant")
	ErrRaceNotRunning = errors.New("race is not running")
	ErrTextTooLong    = errors.New("typed text too long")
)

// replyMessage is the roomError text sent back to the requesting connection.
func replyMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room does not exist"
	case errors.Is(err, ErrDuplicateRoom):
		return "Room already exists"
	case errors.Is(err, ErrAlreadyJoined):
		return "Already joined this race"
	default:
		return "Something went wrong"
	}
}
