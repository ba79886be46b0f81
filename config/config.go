// Package config reads the server configuration from the environment,
// with the game constants defaulting to the classic rules: 5 players,
// 2 to start, 5 rounds of 120 seconds.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	GinMode        string
	PrettyLogs     bool
	WordsFile      string

	MaxPlayers      int
	MinPlayers      int
	MaxRounds       int
	CountdownFrom   int
	GuessAward      int
	RoundDuration   time.Duration
	InterRoundDelay time.Duration
	PingInterval    time.Duration
}

func Load() Config {
	return Config{
		Addr:           envStr("ADDR", ":3001"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		GinMode:        envStr("GIN_MODE", "debug"),
		PrettyLogs:     envBool("PRETTY_LOGS", true),
		WordsFile:      os.Getenv("WORDS_FILE"),

		MaxPlayers:      envInt("MAX_PLAYERS", 5),
		MinPlayers:      envInt("MIN_PLAYERS", 2),
		MaxRounds:       envInt("MAX_ROUNDS", 5),
		CountdownFrom:   envInt("COUNTDOWN_FROM", 5),
		GuessAward:      envInt("GUESS_AWARD", 10),
		RoundDuration:   envDuration("ROUND_DURATION", 120*time.Second),
		InterRoundDelay: envDuration("INTER_ROUND_DELAY", 5*time.Second),
		PingInterval:    envDuration("PING_INTERVAL", 30*time.Second),
	}
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
