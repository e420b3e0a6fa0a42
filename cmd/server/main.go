package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-inventory-ui/internal/config"
	"github.com/jrsteele09/go-inventory-ui/internal/fakebackend"
	"github.com/jrsteele09/go-inventory-ui/server"
	"github.com/jrsteele09/go-inventory-ui/server/workspace"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	fakeBackendVar      = "FAKE_BACKEND"
	devSecret           = "dev-secret"
	sweepInterval       = time.Minute
	shutdownGracePeriod = 5 * time.Second
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
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

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	if config.GetEnv(fakeBackendVar, "") == "true" {
		backend, err := startFakeBackend()
		if err != nil {
			return err
		}
		defer backend.Close()
	}

	srv, err := server.New(c, server.WithLogger(log.Logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.SweepWorkspaces(ctx, sweepInterval, workspace.DefaultIdleTimeout)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// setupLogging writes human readable logs in DEV and JSON elsewhere
func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// startFakeBackend serves the seeded in-memory backend on a loopback port and
// points the API client at it
func startFakeBackend() (*http.Server, error) {
	secret := config.GetEnv("AUTH_SECRET", "")
	if secret == "" {
		secret = devSecret
		if err := os.Setenv("AUTH_SECRET", secret); err != nil {
			return nil, err
		}
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("fake backend listen: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()
	if err := os.Setenv("API_BASE_URL", baseURL); err != nil {
		return nil, err
	}

	backend := &http.Server{Handler: fakebackend.NewSeeded(secret), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := backend.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("fake backend stopped")
		}
	}()
	log.Warn().Str("url", baseURL).Msg("Using the in-memory fake backend; every account's password is \"password\"")
	return backend, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
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
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
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
