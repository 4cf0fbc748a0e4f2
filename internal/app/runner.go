package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/dig"

	"service-parcel-tracking/internal/logx"
)

var osExit = os.Exit

// Runner runs the HTTP server
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the HTTP server using the provided DI container
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := loggerFrom(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		logger.Error("run error", logx.Err(err))
		osExit(1)
	}
}

func loggerFrom(container *dig.Container) logx.Logger {
	var logger logx.Logger
	if err := container.Invoke(func(l logx.Logger) { logger = l }); err != nil || logger == nil {
		return fallbackLogger()
	}
	return logger
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

type debugServer struct {
	dig.In

	Server *http.Server `name:"pprof_server" optional:"true"`
}

func appRun(ctx context.Context, logger logx.Logger, server *http.Server, debug debugServer, res resources) error {
	defer res.close(logger)

	if debug.Server != nil {
		debugErr := startServer(debug.Server, logger.With(logx.String("server", "pprof")))
		go func() {
			if err := <-debugErr; err != nil {
				logger.Error("pprof listen error", logx.Err(err))
			}
		}()
		defer gracefulShutdown(debug.Server, logger, 5*time.Second)
	}

	errCh := startServer(server, logger)
	select {
	case <-ctx.Done():
		logger.Info("shutting down service-parcel...")
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	gracefulShutdown(server, logger, 15*time.Second)
	return ctx.Err()
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("service-parcel listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}
