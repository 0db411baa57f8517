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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sessionworks/go-session-server/internal/config"
	"github.com/sessionworks/go-session-server/server"
	"github.com/sessionworks/go-session-server/session"
	"github.com/sessionworks/go-session-server/session/storefake"
	"github.com/sessionworks/go-session-server/session/storepg"
	"github.com/sessionworks/go-session-server/session/storeredis"
	"github.com/sessionworks/go-session-server/token"
	"github.com/sessionworks/go-session-server/users"
	userrepofake "github.com/sessionworks/go-session-server/users/repofake"
	userrepopg "github.com/sessionworks/go-session-server/users/repopg"
)

func main() {
	log := newLogger()
	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run(log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	handler, cleanup, err := buildServer(c, log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(srv, log)
	waitForStopSignal()
	return shutdown(srv)
}

func buildServer(c config.Config, log zerolog.Logger) (*server.Server, func(), error) {
	secret := c.GetTokenSecret()
	if secret == "" {
		return nil, nil, errors.New("TOKEN_SECRET must be set")
	}

	codec := token.NewCodec(secret)
	cleanup := func() {}

	var (
		tokenStore session.TokenStore
		userRepo   users.Repo
	)

	switch c.GetStoreBackend() {
	case config.StorePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := storepg.RunMigrations(ctx, c.GetDatabaseURL()); err != nil {
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgxpool.New(ctx, c.GetDatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres pool: %w", err)
		}
		cleanup = pool.Close
		tokenStore = storepg.NewPostgresTokenStore(pool)
		userRepo = userrepopg.NewPostgresUserRepo(pool)
		log.Info().Msg("using postgres store")

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
		cleanup = func() { _ = client.Close() }
		tokenStore = storeredis.NewRedisTokenStore(client)
		// Tokens live in Redis; user records need a durable home.
		if c.GetDatabaseURL() != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := storepg.RunMigrations(ctx, c.GetDatabaseURL()); err != nil {
				return nil, nil, fmt.Errorf("migrations: %w", err)
			}
			pool, err := pgxpool.New(ctx, c.GetDatabaseURL())
			if err != nil {
				return nil, nil, fmt.Errorf("postgres pool: %w", err)
			}
			redisCleanup := cleanup
			cleanup = func() { redisCleanup(); pool.Close() }
			userRepo = userrepopg.NewPostgresUserRepo(pool)
		} else {
			userRepo = userrepofake.NewFakeUserRepo()
		}
		log.Info().Msg("using redis store")

	default:
		tokenStore = storefake.NewFakeTokenStore()
		userRepo = userrepofake.NewFakeUserRepo()
		log.Warn().Msg("using in-memory store; sessions do not survive restarts")
	}

	manager, err := session.New(codec, tokenStore, userRepo,
		session.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
		session.WithStoreTimeout(c.GetStoreTimeout()),
		session.WithLogger(log),
	)
	if err != nil {
		return nil, nil, err
	}

	srv, err := server.New(c, manager, userRepo, log)
	if err != nil {
		return nil, nil, err
	}
	return srv, cleanup, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	out := zerolog.New(os.Stdout)

	if config.New().GetEnv() == "DEV" {
		level = zerolog.DebugLevel
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return out.Level(level).With().Timestamp().Logger()
}

func listenAndServe(srv *http.Server, log zerolog.Logger) {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
