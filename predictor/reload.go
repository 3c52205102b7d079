package predictor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"ayurpredict/ml"
)

const defaultDebounce = 500 * time.Millisecond

// Reloader watches the artifact files and swaps a freshly built Predictor
// into a Holder after they change. A failed load keeps the old predictor.
type Reloader struct {
	holder         *Holder
	vectorizerPath string
	modelPath      string
	opts           Options
	logger         *zap.Logger

	// Debounce coalesces the burst of events a training run produces.
	Debounce time.Duration
	// OnReload is called after every reload attempt.
	OnReload func(err error)
}

func NewReloader(holder *Holder, vectorizerPath, modelPath string, opts Options, logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		holder:         holder,
		vectorizerPath: filepath.Clean(vectorizerPath),
		modelPath:      filepath.Clean(modelPath),
		opts:           opts,
		logger:         logger.Named("reloader"),
		Debounce:       defaultDebounce,
	}
}

// Reload loads both artifacts and installs a new Predictor.
func (r *Reloader) Reload() error {
	artifacts, err := ml.LoadArtifacts(r.vectorizerPath, r.modelPath)
	if err == nil {
		var p *Predictor
		p, err = New(artifacts, r.opts)
		if err == nil {
			r.holder.Swap(p)
		}
	}
	if err != nil {
		r.logger.Warn("model reload failed, keeping current model", zap.Error(err))
	} else {
		r.logger.Info("model reloaded",
			zap.String("model_type", artifacts.ModelType),
			zap.Time("trained_at", artifacts.TrainedAt),
			zap.Int("vocabulary", artifacts.Vectorizer.Dim()))
	}
	if r.OnReload != nil {
		r.OnReload(err)
	}
	return err
}

// Run watches the artifact directories until ctx is done.
func (r *Reloader) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := map[string]struct{}{
		filepath.Dir(r.vectorizerPath): {},
		filepath.Dir(r.modelPath):      {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	r.logger.Info("watching model artifacts",
		zap.String("vectorizer", r.vectorizerPath),
		zap.String("model", r.modelPath))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevant(event) {
				continue
			}
			r.logger.Debug("artifact changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(r.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(r.Debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_ = r.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (r *Reloader) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == r.vectorizerPath || name == r.modelPath
}
