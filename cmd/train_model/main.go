package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ayurpredict/config"
	"ayurpredict/dataset"
	"ayurpredict/db"
	"ayurpredict/logger"
	"ayurpredict/ml"
	"ayurpredict/pipeline"
)

type options struct {
	configPath string
	regenerate bool
	modelType  string
	estimators int
	maxDepth   int
	seed       int64
	workers    int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&opts.regenerate, "regenerate", false, "regenerate the dataset even if the CSV exists")
	flag.StringVar(&opts.modelType, "model_type", "", "random_forest or decision_tree (default from config)")
	flag.IntVar(&opts.estimators, "estimators", 0, "number of trees (default from config)")
	flag.IntVar(&opts.maxDepth, "max_depth", -1, "max tree depth, 0 for unlimited (default from config)")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed (default from config)")
	flag.IntVar(&opts.workers, "workers", 0, "parallel tree builders, 0 for GOMAXPROCS")
	flag.Parse()

	if _, err := os.Stat(opts.configPath); errors.Is(err, os.ErrNotExist) {
		opts.configPath = ""
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Fatal("training failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, log *zap.Logger) error {
	rows, err := loadDataset(cfg.Model.DatasetPath, opts.regenerate, cfg.Model.Seed, log)
	if err != nil {
		return err
	}

	cleaner := pipeline.NewDataCleaner(log)
	cleaned, issues := cleaner.Clean(rows)
	stats := cleaner.GetStats()
	log.Info("dataset cleaned",
		zap.Int64("processed", stats.TotalProcessed),
		zap.Int64("passed", stats.Passed),
		zap.Int64("rejected", stats.Rejected),
		zap.Int64("corrected", stats.Corrected),
		zap.Int("issues", len(issues)),
	)
	if len(cleaned) == 0 {
		return errors.New("no rows left after cleaning")
	}

	tc := trainingConfig(cfg.Model, opts)
	start := time.Now()
	result, err := ml.Train(ctx, dataset.Samples(cleaned), tc)
	if err != nil {
		return err
	}
	log.Info("model trained",
		zap.String("model_type", tc.ModelType),
		zap.Int("train_size", result.TrainSize),
		zap.Int("test_size", result.TestSize),
		zap.Int("vocabulary", result.Artifacts.Vectorizer.Dim()),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Println(result.Report.String())

	if err := ml.SaveArtifacts(cfg.Model.VectorizerPath, cfg.Model.ModelPath, result.Artifacts); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	log.Info("artifacts saved",
		zap.String("vectorizer", cfg.Model.VectorizerPath),
		zap.String("model", cfg.Model.ModelPath),
	)

	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	return store.SaveTrainingLog(db.TrainingLog{
		ModelName:  tc.ModelType,
		Accuracy:   result.Report.Accuracy,
		Precision:  result.Report.MacroPrecision,
		Recall:     result.Report.MacroRecall,
		TrainedAt:  result.Artifacts.TrainedAt,
		DataPoints: len(cleaned),
		Vocabulary: result.Artifacts.Vectorizer.Dim(),
		Estimators: tc.NEstimators,
	})
}

// loadDataset reads the CSV at path, generating and saving it first when it
// is missing or regenerate is set.
func loadDataset(path string, regenerate bool, seed int64, log *zap.Logger) ([]dataset.Row, error) {
	if !regenerate {
		rows, err := dataset.LoadCSV(path)
		if err == nil {
			log.Info("dataset loaded", zap.String("path", path), zap.Int("rows", len(rows)))
			return rows, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
	}

	genOpts := dataset.DefaultOptions()
	genOpts.Seed = seed
	rows := dataset.Generate(genOpts)
	if err := dataset.SaveCSV(path, rows); err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}
	log.Info("dataset generated", zap.String("path", path), zap.Int("rows", len(rows)))
	return rows, nil
}

func trainingConfig(mc config.ModelConfig, opts options) ml.TrainingConfig {
	tc := ml.DefaultTrainingConfig()
	tc.ModelType = mc.Type
	tc.NEstimators = mc.Estimators
	tc.MaxDepth = mc.MaxDepth
	tc.MaxFeatures = mc.MaxFeatures
	tc.TestRatio = mc.TestRatio
	tc.Seed = mc.Seed
	tc.Workers = opts.workers

	if opts.modelType != "" {
		tc.ModelType = opts.modelType
	}
	if opts.estimators > 0 {
		tc.NEstimators = opts.estimators
	}
	if opts.maxDepth >= 0 {
		tc.MaxDepth = opts.maxDepth
	}
	if opts.seed != 0 {
		tc.Seed = opts.seed
	}
	return tc
}
