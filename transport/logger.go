package transport

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type connLogger struct {
	zerolog zerolog.Logger
}

func getConnLogger(ip string, connID string) connLogger {
	return connLogger{log.With().Str("ip", ip).Str("conn-id", connID).Logger()}
}

func (l connLogger) Connected() {
	l.zerolog.Info().Msg("Connected")
}

func (l connLogger) Disconnected() {
	l.zerolog.Info().Msg("Disconnected")
}

func (l connLogger) SkippedMessage(err error) {
	l.zerolog.Debug().Err(err).Msg("Skipped message")
}

func (l connLogger) Oversized(err error) {
	l.zerolog.Warn().Err(err).Msg("Closing connection")
}

func (l connLogger) WriteFailed(event string, err error) {
	l.zerolog.Error().Err(err).Str("event", event).Msg("Error while writing message")
}

func LogErrorWhileUpgradingHTTP(err error) {
	log.Error().Err(err).Msg("Error while upgrading HTTP")
}
