package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/careergap-web/apiclient"
	"github.com/jrsteele09/careergap-web/internal/config"
	"github.com/jrsteele09/careergap-web/server"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/jrsteele09/careergap-web/session/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	configureLogging(c)
	displayAppname(c.GetAppName())

	sessions, sessionOpts, closeSessions, err := newSessionRepo(c)
	if err != nil {
		return err
	}
	defer closeSessions()

	api, err := apiclient.New(apiclient.ConfigFrom(c), apiclient.WithSessionExpiredHook(func(context.Context, session.Store) {
		log.Info().Msg("Session expired, tokens cleared")
	}))
	if err != nil {
		return err
	}

	handler, err := server.New(c, api, sessions, sessionOpts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func configureLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newSessionRepo builds the configured session backend. The returned close
// func releases it on shutdown.
func newSessionRepo(c config.Config) (session.Repo, []server.Option, func() error, error) {
	switch c.GetSessionBackend() {
	case config.SessionBackendMemory:
		log.Info().Msg("Using in-memory session store")
		return session.NewMemoryRepo(), nil, func() error { return nil }, nil

	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", c.GetRedisAddr()).Msg("Redis not reachable at startup")
		} else {
			log.Info().Str("addr", c.GetRedisAddr()).Int("db", c.GetRedisDB()).Msg("Connected to Redis")
		}

		check := server.WithHealthCheck("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		repo := redisstore.New(client, c.GetRedisKeyPrefix(), c.GetSessionTTL())
		return repo, []server.Option{check}, client.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown session backend %q", c.GetSessionBackend())
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
