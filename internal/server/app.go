// Package server wires and runs the DreamTracer development backend: an
// in-memory implementation of the REST API used for local runs and
// integration tests of the client.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/dmitrijs2005/dreamtracer/internal/server/api"
	"github.com/dmitrijs2005/dreamtracer/internal/server/config"
	"github.com/dmitrijs2005/dreamtracer/internal/server/store"
)

const shutdownTimeout = 10 * time.Second

var randomSecret = common.MakeRandHexString

type App struct {
	config *config.Config
	logger logging.Logger
	api    *api.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)
	st := store.New(models.Plan(c.DefaultPlan))

	secret := c.SecretKey
	if secret == "" {
		// tokens issued with a random key do not survive a restart
		var err error
		if secret, err = randomSecret(32); err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		logger.Warn(context.Background(), "no secret key configured, using a random one")
	}

	srv := api.NewServer(st, []byte(secret), c.AccessTokenValidityDuration, logger)
	return &App{config: c, logger: logger, api: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	hs := &http.Server{
		Addr:              app.config.ListenAddr,
		Handler:           app.api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "dev backend listening", "addr", app.config.ListenAddr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	app.logger.Info(shutdownCtx, "shutting down")
	return hs.Shutdown(shutdownCtx)
}
