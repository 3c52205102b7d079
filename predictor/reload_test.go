package predictor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurpredict/ml"
	"ayurpredict/ml/mltest"
)

func artifactPaths(t *testing.T) (string, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "models")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return filepath.Join(dir, "vectorizer.msgpack"), filepath.Join(dir, "forest.msgpack")
}

func TestReloaderReload(t *testing.T) {
	vecPath, modelPath := artifactPaths(t)
	holder := NewHolder(nil)
	r := NewReloader(holder, vecPath, modelPath, Options{Threshold: 40}, nil)

	var attempts []error
	r.OnReload = func(err error) { attempts = append(attempts, err) }

	err := r.Reload()
	assert.ErrorIs(t, err, ml.ErrArtifactMissing)
	assert.False(t, holder.Loaded())

	require.NoError(t, ml.SaveArtifacts(vecPath, modelPath, mltest.Artifacts(t)))
	require.NoError(t, r.Reload())
	require.True(t, holder.Loaded())
	assert.Equal(t, 40.0, holder.Load().Policy().Threshold)
	first := holder.Load()

	// a corrupt model keeps the current predictor
	require.NoError(t, os.WriteFile(modelPath, []byte("garbage"), 0o644))
	assert.Error(t, r.Reload())
	assert.Same(t, first, holder.Load())

	require.Len(t, attempts, 3)
	assert.Error(t, attempts[0])
	assert.NoError(t, attempts[1])
	assert.Error(t, attempts[2])
}

func TestReloaderRunPicksUpNewArtifacts(t *testing.T) {
	vecPath, modelPath := artifactPaths(t)
	holder := NewHolder(nil)
	r := NewReloader(holder, vecPath, modelPath, Options{}, nil)
	r.Debounce = 50 * time.Millisecond

	reloaded := make(chan error, 16)
	r.OnReload = func(err error) { reloaded <- err }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	artifacts := mltest.Artifacts(t)
	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	// keep rewriting until the watcher is up and a reload succeeds
	for !holder.Loaded() {
		select {
		case <-ticker.C:
			require.NoError(t, ml.SaveArtifacts(vecPath, modelPath, artifacts))
		case <-reloaded:
		case <-deadline:
			t.Fatal("reloader never installed the model")
		}
	}

	result, err := holder.Predict(context.Background(), []string{"dry skin", "constipation", "anxiety", "joint pain"})
	require.NoError(t, err)
	assert.Equal(t, ml.Vata, result.PredictedLabel)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestReloaderIgnoresOtherFiles(t *testing.T) {
	vecPath, modelPath := artifactPaths(t)
	r := NewReloader(NewHolder(nil), vecPath, modelPath, Options{}, nil)

	assert.True(t, r.relevant(fsnotifyEvent(vecPath, true)))
	assert.True(t, r.relevant(fsnotifyEvent(modelPath, true)))
	assert.False(t, r.relevant(fsnotifyEvent(filepath.Join(filepath.Dir(vecPath), "notes.txt"), true)))
	assert.False(t, r.relevant(fsnotifyEvent(modelPath, false)))
}

func fsnotifyEvent(name string, write bool) fsnotify.Event {
	op := fsnotify.Chmod
	if write {
		op = fsnotify.Write
	}
	return fsnotify.Event{Name: name, Op: op}
}
