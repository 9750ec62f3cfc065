package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Alexrp02/pokemon-team-overlay/internal/bootstrap"
	"github.com/Alexrp02/pokemon-team-overlay/internal/httpapi"
	"github.com/Alexrp02/pokemon-team-overlay/internal/hub"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/config"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/logger"
	"github.com/Alexrp02/pokemon-team-overlay/internal/platform/metrics"
	"github.com/Alexrp02/pokemon-team-overlay/internal/reload"
	"github.com/Alexrp02/pokemon-team-overlay/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()
	cfg := config.FromEnv()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	created, err := bootstrap.Ensure(cfg.TeamDir, cfg.DefaultTeamFile, cfg.SpritesDir)
	if err != nil {
		return err
	}
	if created {
		log.Info("created default team file", zap.String("path", filepath.Join(cfg.TeamDir, cfg.DefaultTeamFile)))
	}

	met := metrics.New()
	ctrl := reload.New(cfg.TeamDir, cfg.TeamPattern,
		reload.WithSettleDelay(cfg.SettleDelay),
		reload.WithLogger(log.Named("reload")),
		reload.WithMetrics(met),
	)
	initial, err := ctrl.Load()
	if err != nil {
		return err
	}

	w, err := watcher.New(cfg.TeamDir, cfg.TeamPattern, log.Named("watcher"))
	if err != nil {
		return err
	}

	h := hub.New(ctx, initial, hub.WithBacklog(cfg.SubscriberBacklog))

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:        h,
			Log:        log,
			Metrics:    met,
			SpritesDir: cfg.SpritesDir,
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ctrl.Run(gctx, w, h)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, draining connections")

		// closing the hub ends every websocket session
		h.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return multierr.Combine(srv.Shutdown(sctx), w.Close())
	})

	log.Info("server starting",
		zap.String("addr", "http://"+cfg.Addr),
		zap.String("team_dir", cfg.TeamDir),
		zap.String("default_team_file", cfg.DefaultTeamFile),
		zap.String("sprites_dir", cfg.SpritesDir),
		zap.Int("teams", len(initial)),
	)
	log.Info("edit any file with '" + cfg.TeamPattern + "' in its name to update the overlay")

	err = g.Wait()
	log.Info("server stopped")
	return err
}
