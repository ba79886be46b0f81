package main

import (
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lucashernandez90/GarticProject/config"
	"github.com/lucashernandez90/GarticProject/game"
	"github.com/lucashernandez90/GarticProject/words"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	if len(allowedOrigins) == 0 {
		return r
	}

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(403, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	godotenv.Load()
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	var logger zerolog.Logger
	if cfg.PrettyLogs {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	catalog, err := words.Load(cfg.WordsFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load word catalog")
	}
	logger.Info().Int("words", catalog.Size()).Msg("word catalog loaded")

	session := game.NewSession(game.SessionConfig{
		MaxPlayers:        cfg.MaxPlayers,
		MinPlayers:        cfg.MinPlayers,
		MaxRounds:         cfg.MaxRounds,
		CountdownFrom:     cfg.CountdownFrom,
		GuessAward:        cfg.GuessAward,
		RoundDuration:     cfg.RoundDuration,
		InterRoundDelay:   cfg.InterRoundDelay,
		CountdownInterval: time.Second,
	}, catalog, game.NewTimerFactory(), logger)

	started := make(chan struct{})
	go session.Run(started)
	<-started

	go func() {
		ticker := time.NewTicker(cfg.PingInterval)
		defer ticker.Stop()
		for range ticker.C {
			session.Ping()
		}
	}()

	origins := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = true
	}
	handler := game.NewHandler(session, origins, logger)

	r := CreateServer(cfg.AllowedOrigins)
	r.GET("/ws", handler.ServeWS)

	logger.Info().Str("addr", cfg.Addr).Msg("server listening")
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
