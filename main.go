package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"exohab/catalog"
	"exohab/config"
	"exohab/db"
	qhttp "exohab/http"
	"exohab/logging"
	"exohab/ml"
	"exohab/monitoring"
	"exohab/pipeline"
	"exohab/render"
)

func main() {
	configName := flag.String("config", "config.yaml", "config file")
	flag.Parse()

	// 1. Load config
	cfg, configPath, err := config.LoadOrDefault(*configName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if configPath != "" {
		cfg.ResolvePaths(filepath.Dir(configPath))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	if configPath == "" {
		logger.Info("no config file found, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load dataset and build the display catalog
	records, source, err := catalog.NewFetcher(cfg.Data.URL, cfg.Data.Path, logger).Fetch(ctx)
	if err != nil {
		logger.Error("failed to load data, starting with an empty catalog", zap.Error(err))
	}
	build := func(records []catalog.Record) *catalog.Catalog {
		return catalog.New(records, pipeline.DisplaySubset(records, cfg.Data.DisplayLimit))
	}
	planets := catalog.NewStore(build(records))
	logger.Info("catalog ready",
		zap.String("source", string(source)),
		zap.Int("records", planets.Current().Len()),
		zap.Int("display", len(planets.Current().Display())),
	)

	// 3. Load model
	predictor := loadPredictor(cfg, logger)

	// 4. Initialize database
	var history *db.Store
	if cfg.Database.Path != "" {
		history, err = db.Open(cfg.Database.Path)
		if err != nil {
			logger.Warn("database unavailable, history disabled", zap.Error(err))
			history = nil
		} else {
			defer history.Close()
		}
	}

	renderer, err := render.NewRenderer(cfg.Render.OutputDir, cfg.Render.Size, cfg.Render.CacheSize, logger)
	if err != nil {
		logger.Fatal("failed to create renderer", zap.Error(err))
	}

	// 5. Start HTTP server
	server, err := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, qhttp.Dependencies{
		Predictor: predictor,
		Catalog:   planets,
		Renderer:  renderer,
		Store:     history,
		Metrics:   monitoring.NewMetrics(),
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	if cfg.Data.Watch {
		watcher := catalog.NewWatcher(cfg.Data.Path, planets, build, logger)
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				logger.Warn("dataset watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	// 6. Handle graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
	logger.Info("exiting")
}

// loadPredictor returns a predictor over the saved artifact, or one that
// reports the model as unavailable when the artifact cannot be loaded.
func loadPredictor(cfg *config.Config, logger *zap.Logger) *ml.Predictor {
	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("model artifact not found, predictions disabled",
				zap.String("path", cfg.Model.Path))
		} else {
			logger.Error("failed to load model, predictions disabled",
				zap.String("path", cfg.Model.Path), zap.Error(err))
		}
		return ml.NewPredictor(nil)
	}
	logger.Info("model loaded", zap.String("type", cfg.Model.Type), zap.String("path", cfg.Model.Path))
	return ml.NewPredictor(model)
}
