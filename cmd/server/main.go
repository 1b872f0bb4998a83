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
	"github.com/jrsteele09/vkid-relay/internal/config"
	"github.com/jrsteele09/vkid-relay/provider"
	"github.com/jrsteele09/vkid-relay/server"
	"github.com/jrsteele09/vkid-relay/server/authflowrepo"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pending, closeStore, err := newPendingStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	client := provider.New(
		provider.EndpointsForHosts(c.GetIDHost(), c.GetAPIHost()),
		c.GetAPIVersion(),
		c.GetProviderTimeout(),
	)
	handler, err := server.New(c, pending, client)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newPendingStore picks Redis when REDIS_ADDR is set so several relay instances can
// share pending logins. Otherwise an in-memory store with a background sweeper is used.
func newPendingStore(ctx context.Context, c config.Config) (authflowrepo.Repo, func(), error) {
	if addr := c.GetRedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", addr, err)
		}
		log.Info().Str("addr", addr).Msg("Pending logins stored in Redis")
		return authflowrepo.NewRedisRepo(rdb, c.GetPendingAuthTTL()), func() { _ = rdb.Close() }, nil
	}

	repo := authflowrepo.NewInMemoryRepo(c.GetPendingAuthTTL())
	go repo.RunSweeper(ctx, c.GetPendingAuthSweepInterval())
	log.Info().Msg("Pending logins stored in memory")
	return repo, func() {}, nil
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
