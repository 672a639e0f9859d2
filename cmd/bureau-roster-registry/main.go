// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-roster-registry is an in-memory activity registry for local
// development and demos of bureau-roster. It serves the same HTTP
// contract as the production registry and authentication service,
// seeded with a few activities and one teacher account. All state is
// lost on exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/bureau-foundation/roster/lib/cli"
	"github.com/bureau-foundation/roster/lib/registry/registrytest"
	"github.com/bureau-foundation/roster/lib/version"
)

// shutdownTimeout bounds how long in-flight requests may take after a
// shutdown signal.
const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(cli.Report(os.Stderr, run(os.Args[1:])))
}

func run(args []string) error {
	var listenAddress string
	var teacherFlags []string
	var logLevel string

	flagSet := pflag.NewFlagSet("bureau-roster-registry", pflag.ContinueOnError)
	flagSet.StringVar(&listenAddress, "listen", "127.0.0.1:8000", "address to listen on")
	flagSet.StringArrayVar(&teacherFlags, "teacher", nil, "teacher account as user:password (repeatable; default teacher:password123)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.Bool("version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return cli.Validation("%w", err)
	}
	if showVersion, _ := flagSet.GetBool("version"); showVersion {
		fmt.Printf("bureau-roster-registry %s\n", version.Full())
		return nil
	}

	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	teachers, err := parseTeachers(teacherFlags)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(level)

	server, err := registrytest.New(registrytest.Config{
		Teachers: teachers,
		Logger:   logger,
		HashCost: bcrypt.DefaultCost,
	})
	if err != nil {
		return cli.Internal("%w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		return cli.Validation("listening on %s: %w", listenAddress, err)
	}
	return serve(ctx, listener, server, logger)
}

// parseTeachers turns user:password flags into an account map. No
// flags selects the default account.
func parseTeachers(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	teachers := make(map[string]string, len(values))
	for _, value := range values {
		username, password, ok := strings.Cut(value, ":")
		if !ok || username == "" || password == "" {
			return nil, cli.Validation("invalid --teacher %q: want user:password", value)
		}
		teachers[username] = password
	}
	return teachers, nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, cli.Validation("invalid --log-level %q: %w", value, err)
	}
	return level, nil
}

// serve runs handler on listener until ctx is cancelled, then shuts
// down gracefully.
func serve(ctx context.Context, listener net.Listener, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Info("registry listening", "address", listener.Addr().String())

	serveDone := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
		logger.Info("registry shutting down")
	case err := <-serveDone:
		if err != nil {
			return cli.Internal("serving: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return cli.Internal("shutdown: %w", err)
	}
	logger.Info("registry stopped")
	return nil
}
