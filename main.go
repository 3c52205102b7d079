package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"ayurpredict/config"
	"ayurpredict/db"
	apihttp "ayurpredict/http"
	"ayurpredict/logger"
	"ayurpredict/ml"
	"ayurpredict/monitoring"
	"ayurpredict/predictor"
	"ayurpredict/recommend"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if _, err := os.Stat(*configPath); errors.Is(err, os.ErrNotExist) {
		*configPath = ""
	}

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	// 2. Initialize database
	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()
	log.Info("database initialized", zap.String("path", cfg.Database.Path))

	// 3. Load the recommendation catalog and model
	catalog := recommend.DefaultCatalog()
	if cfg.Catalog.Path != "" {
		if catalog, err = recommend.LoadCatalog(cfg.Catalog.Path); err != nil {
			log.Fatal("failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
		}
	}

	monitoring.Init()
	opts := predictor.Options{
		Threshold: cfg.Predictor.Threshold,
		CacheSize: cfg.Predictor.CacheSize,
		Catalog:   catalog,
	}
	holder := predictor.NewHolder(nil)
	if err := loadModel(holder, cfg, opts); err != nil {
		log.Fatal("failed to load model, train it with cmd/train_model", zap.Error(err))
	}
	monitoring.SetModelLoaded(holder.Loaded())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Predictor.Watch {
		reloader := predictor.NewReloader(holder, cfg.Model.VectorizerPath, cfg.Model.ModelPath, opts, log)
		reloader.OnReload = monitoring.RecordReload
		for _, path := range []string{cfg.Model.VectorizerPath, cfg.Model.ModelPath} {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				log.Fatal("failed to create model dir", zap.Error(err))
			}
		}
		go func() {
			if err := reloader.Run(ctx); err != nil {
				log.Error("model watcher stopped", zap.Error(err))
			}
		}()
	}

	// 4. Start HTTP server
	sessions := monitoring.NewSessionHandler(holder, cfg.HTTP.AllowedOrigins, sessionRecorder(store, log), log)
	server := apihttp.NewServer(apihttp.ServerConfigFrom(cfg.HTTP), apihttp.Dependencies{
		Holder:   holder,
		Catalog:  catalog,
		Store:    store,
		Sessions: sessions,
		Logger:   log,
	})
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")

	if err := server.Stop(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("exiting")
}

func loadModel(holder *predictor.Holder, cfg *config.Config, opts predictor.Options) error {
	artifacts, err := ml.LoadArtifacts(cfg.Model.VectorizerPath, cfg.Model.ModelPath)
	if err != nil {
		return err
	}
	p, err := predictor.New(artifacts, opts)
	if err != nil {
		return err
	}
	holder.Swap(p)
	return nil
}

func sessionRecorder(store *db.Store, log *zap.Logger) monitoring.PredictionHook {
	return func(sessionID string, symptoms []string, result *predictor.PredictionResult) {
		err := store.SavePrediction(db.PredictionRecord{
			RequestID:      sessionID,
			Source:         "ws",
			Symptoms:       symptoms,
			PredictedLabel: string(result.PredictedLabel),
			RawLabel:       string(result.RawLabel),
			Confidence:     result.Confidence,
			LowConfidence:  result.LowConfidence,
		})
		if err != nil {
			log.Warn("save session prediction failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
}
