package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"typerace/race"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	RateLimit      int
	PassagesFile   string
	LogLevel       zerolog.Level
	Race           race.Settings
}

func MustLoadConfig() *Config {
	godotenv.Load()
	defaults := race.DefaultSettings()
	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimit:      mustInt("RATE_LIMIT_PER_MINUTE", 60),
		PassagesFile:   os.Getenv("PASSAGES_FILE"),
		Race: race.Settings{
			Countdown:    mustInt("COUNTDOWN_SECONDS", defaults.Countdown),
			TickInterval: defaults.TickInterval,
			RaceDuration: mustDuration("RACE_DURATION", defaults.RaceDuration),
			IdleTTL:      mustDuration("ROOM_IDLE_TTL", defaults.IdleTTL),
		},
	}
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		panic(fmt.Sprintf("LOG_LEVEL is invalid: %v", err))
	}
	cfg.LogLevel = level
	if cfg.RateLimit <= 0 {
		panic("RATE_LIMIT_PER_MINUTE must be positive!")
	}
	if cfg.Race.Countdown < 0 {
		panic("COUNTDOWN_SECONDS must not be negative!")
	}
	if cfg.Race.RaceDuration <= 0 {
		panic("RACE_DURATION must be positive!")
	}
	if cfg.Race.IdleTTL < 0 {
		panic("ROOM_IDLE_TTL must not be negative!")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func mustInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		panic(fmt.Sprintf("%s is not a number: %q", key, raw))
	}
	return value
}

func mustDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		panic(fmt.Sprintf("%s is not a duration: %q", key, raw))
	}
	return value
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
