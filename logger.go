package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

func setupLogger(level zerolog.Level) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(level)
}

type RoomIPLogger struct {
	zerolog zerolog.Logger
}

func GetRoomIPLogger(ip string, roomID string) RoomIPLogger {
	return RoomIPLogger{log.With().Str("ip", ip).Str("room-id", roomID).Logger()}
}

func (l RoomIPLogger) JoinedRoom() {
	l.zerolog.Info().Msg("Spectator joined room")
}

func (l RoomIPLogger) LeftRoom() {
	l.zerolog.Info().Msg("Spectator left room")
}

func LogStartedServer(port string) {
	log.Info().Msgf("Starting server on port %v", port)
}

func LogLoadedPassages(source string, count int) {
	log.Info().Str("source", source).Int("passages", count).Msg("Loaded passages")
}

func LogShuttingDown(rooms, connections int) {
	log.Info().Int("rooms", rooms).Int("connections", connections).Msg("Shutting down")
}
