package race

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type roomLogger struct {
	zerolog zerolog.Logger
}

func getRoomLogger(roomID string) roomLogger {
	return roomLogger{log.With().Str("room-id", roomID).Logger()}
}

func (l roomLogger) Created(admin string) {
	l.zerolog.Info().Str("admin", admin).Msg("Room created")
}

func (l roomLogger) Joined(connID string, outcome JoinOutcome) {
	l.zerolog.Info().Str("conn-id", connID).Bool("rejoin", outcome == Rejoined).Msg("Joined room")
}

func (l roomLogger) Left(connID string) {
	l.zerolog.Info().Str("conn-id", connID).Msg("Left room")
}

func (l roomLogger) CountdownStarted(count int) {
	l.zerolog.Info().Int("count", count).Msg("Countdown started")
}

func (l roomLogger) RaceStarted() {
	l.zerolog.Info().Msg("Race started")
}

func (l roomLogger) RaceFinished(players int) {
	l.zerolog.Info().Int("players", players).Msg("Race finished")
}

func (l roomLogger) Removing(reason string) {
	l.zerolog.Info().Str("reason", reason).Msg("Removing room")
}

func (l roomLogger) Rejected(connID, op string, err error) {
	l.zerolog.Debug().Str("conn-id", connID).Str("op", op).Err(err).Msg("Request rejected")
}
