// Package server runs the loopback HTTP API. It opens the configured
// storage backend, wires the application services and serves until an
// interrupt arrives.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/medigenie/internal/bootstrap"
	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/config"
	"github.com/dmitrijs2005/medigenie/internal/logging"
	"github.com/dmitrijs2005/medigenie/internal/server/api"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	svc     *services.Services
	closeFn func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogBackend, c.LogLevel, c.LogFormat)

	svc, closeFn, err := bootstrap.Open(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, svc: svc, closeFn: closeFn}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := api.NewServer(app.config.APIAddr, app.svc, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is canceled or the listener fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.closeFn(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}
}
