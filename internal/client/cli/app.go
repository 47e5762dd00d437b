package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/backup"
	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/config"
	"github.com/dmitrijs2005/dreamtracer/internal/client/insights"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/client/services"
	"github.com/dmitrijs2005/dreamtracer/internal/client/stores"
	"github.com/dmitrijs2005/dreamtracer/internal/common"
	"github.com/dmitrijs2005/dreamtracer/internal/filex"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires configuration, the local database, the API client and the
// services and stores the commands work with.
type App struct {
	config *config.Config
	db     *sql.DB
	logger logging.Logger

	auth      *services.AuthService
	manager   *services.HybridDataManager
	remote    *services.ServerSyncService
	analysis  *services.AnalysisService
	visuals   *services.VisualizationService
	dreams    *services.DreamService
	community *services.CommunityService
	patterns  *insights.PatternService

	authStore     *stores.AuthStore
	dreamStore    *stores.DreamStore
	analysisStore *stores.AnalysisStore

	objectStore func(ctx context.Context, cfg *config.Config) (backup.ObjectStore, error)

	in     io.Reader
	reader *bufio.Reader
	out    io.Writer

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	opts = opts.withDefaults()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, opts.Err)

	if _, err := filex.EnsureDBDir(cfg.DatabasePath); err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewHTTPClient(cfg.APIBaseURL,
		client.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
		client.WithLogger(logger),
	)
	auth := services.NewAuthService(api, db, logger)
	api.SetTokenSource(auth)

	limits := models.DefaultLimits()
	local := services.NewLocalStorageService(db, logger)
	if _, err := local.RecoverInterruptedSyncs(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	remote := services.NewServerSyncService(api, local, limits, logger,
		services.WithHealthCheckTimeout(cfg.HealthCheckTimeout))
	manager := services.NewHybridDataManager(local, remote, api, limits, logger)
	analysis := services.NewAnalysisService(api, logger)
	patterns := insights.NewPatternService(manager, cfg.PatternCacheTTL)

	return &App{
		config:        cfg,
		db:            db,
		logger:        logger,
		auth:          auth,
		manager:       manager,
		remote:        remote,
		analysis:      analysis,
		visuals:       services.NewVisualizationService(api),
		dreams:        services.NewDreamService(api),
		community:     services.NewCommunityService(api),
		patterns:      patterns,
		authStore:     stores.NewAuthStore(auth, logger),
		dreamStore:    stores.NewDreamStore(manager, logger),
		analysisStore: stores.NewAnalysisStore(analysis, patterns, logger),
		objectStore:   opts.ObjectStore,
		in:            opts.In,
		reader:        bufio.NewReader(opts.In),
		out:           opts.Out,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// requireUser returns the signed-in user. A missing session becomes a
// hint to log in; an expired one keeps its own error.
func (a *App) requireUser(ctx context.Context) (*models.User, error) {
	if _, err := a.auth.Token(ctx); err != nil {
		if errors.Is(err, common.ErrNotAuthenticated) {
			return nil, errNotLoggedIn
		}
		return nil, err
	}
	u, err := a.auth.User(ctx)
	if errors.Is(err, common.ErrNotAuthenticated) {
		return nil, errNotLoggedIn
	}
	return u, err
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

// setMode reports whether the mode changed.
func (a *App) setMode(mode Mode) bool {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	return true
}

// checkOnline probes the server once and updates the mode. Coming back
// online pushes whatever is pending.
func (a *App) checkOnline(ctx context.Context) {
	if !a.remote.IsNetworkAvailable(ctx) {
		if a.setMode(ModeOffline) {
			a.logger.Info(ctx, "switched to offline mode")
		}
		return
	}
	if !a.setMode(ModeOnline) {
		return
	}
	a.logger.Info(ctx, "switched to online mode")

	if !a.auth.IsAuthenticated(ctx) {
		return
	}
	report, err := a.dreamStore.Sync(ctx)
	if err != nil {
		a.logger.Warn(ctx, "sync after reconnect failed", "error", err)
		return
	}
	if report.Attempted > 0 {
		a.logger.Info(ctx, "pending dreams synced", "synced", report.Synced, "failed", len(report.Failed))
	}
}

// StartOnlineStatusWatcher checks connectivity every interval until ctx
// ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
