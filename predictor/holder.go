package predictor

import (
	"context"
	"errors"
	"sync/atomic"

	"ayurpredict/ml"
)

// Holder publishes the current Predictor. Readers always see a whole bundle;
// replacing it never mutates the old one.
type Holder struct {
	current atomic.Pointer[Predictor]
}

// NewHolder returns a holder serving p, which may be nil.
func NewHolder(p *Predictor) *Holder {
	h := &Holder{}
	if p != nil {
		h.current.Store(p)
	}
	return h
}

func (h *Holder) Load() *Predictor {
	return h.current.Load()
}

// Swap installs p and returns the previous predictor.
func (h *Holder) Swap(p *Predictor) *Predictor {
	return h.current.Swap(p)
}

func (h *Holder) Loaded() bool {
	return h.current.Load() != nil
}

func (h *Holder) Predict(ctx context.Context, symptoms []string) (*PredictionResult, error) {
	p := h.current.Load()
	if p == nil {
		return nil, ml.ErrModelNotLoaded
	}
	return p.Predict(ctx, symptoms)
}

func (h *Holder) PredictBatch(ctx context.Context, sets [][]string) ([]BatchItem, error) {
	p := h.current.Load()
	if p == nil {
		return nil, ml.ErrModelNotLoaded
	}
	return p.PredictBatch(ctx, sets)
}

func isFatal(err error) bool {
	return errors.Is(err, ml.ErrModelNotLoaded) || errors.Is(err, ml.ErrArtifactMissing)
}
