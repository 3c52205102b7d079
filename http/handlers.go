package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ayurpredict/db"
	"ayurpredict/ml"
	"ayurpredict/monitoring"
	"ayurpredict/predictor"
	"ayurpredict/recommend"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Dependencies are the collaborators the API handlers read from. Store and
// Sessions are optional; routes backed by a missing one answer 503.
type Dependencies struct {
	Holder   *predictor.Holder
	Catalog  *recommend.Catalog
	Store    *db.Store
	Sessions http.Handler
	Logger   *zap.Logger
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

type predictRequest struct {
	Symptoms ml.SymptomList `json:"symptoms"`
}

type batchRequest struct {
	SymptomsList []ml.SymptomList `json:"symptoms_list"`
}

type handlers struct {
	Dependencies
	log *zap.Logger
}

func RegisterHandlers(mux *http.ServeMux, deps Dependencies) {
	h := &handlers{Dependencies: deps, log: deps.logger().Named("api")}

	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("POST /batch_predict", h.handleBatchPredict)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /api/doshas", h.handleDoshas)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("GET /api/training", h.handleTraining)
	mux.Handle("GET /metrics", monitoring.Handler())
	if deps.Sessions != nil {
		mux.Handle("GET /api/ws/predict", deps.Sessions)
	}
}

func (h *handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Symptoms) == 0 {
		writeError(w, http.StatusBadRequest, "No symptoms provided")
		return
	}
	symptoms := trimBlank(req.Symptoms)
	if len(symptoms) == 0 {
		writeError(w, http.StatusBadRequest, "No valid symptoms provided")
		return
	}

	start := time.Now()
	result, err := h.Holder.Predict(r.Context(), symptoms)
	if err != nil {
		monitoring.RecordPrediction("http", "", "", time.Since(start), err)
		h.fail(w, r, err)
		return
	}
	monitoring.RecordPrediction("http", result.RawLabel, result.PredictedLabel, time.Since(start), nil)
	h.record(r, "api", symptoms, result)

	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleBatchPredict(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.SymptomsList) == 0 {
		writeError(w, http.StatusBadRequest, "No symptoms list provided")
		return
	}
	sets := make([][]string, len(req.SymptomsList))
	for i, set := range req.SymptomsList {
		sets[i] = trimBlank(set)
	}

	start := time.Now()
	items, err := h.Holder.PredictBatch(r.Context(), sets)
	if err != nil {
		monitoring.RecordPrediction("batch", "", "", time.Since(start), err)
		h.fail(w, r, err)
		return
	}
	for _, item := range items {
		if item.Result == nil {
			monitoring.RecordPrediction("batch", "", "", time.Since(start), ml.ErrInvalidInput)
			continue
		}
		monitoring.RecordPrediction("batch", item.Result.RawLabel, item.Result.PredictedLabel, time.Since(start), nil)
		h.record(r, "batch", sets[item.Index], item.Result)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"predictions": items})
}

// sessionCounter is implemented by session handlers that track open
// connections, such as monitoring.SessionHandler.
type sessionCounter interface {
	Active() int64
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status":       "healthy",
		"model_loaded": h.Holder.Loaded(),
	}
	if counter, ok := h.Sessions.(sessionCounter); ok {
		payload["active_sessions"] = counter.Active()
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *handlers) handleDoshas(w http.ResponseWriter, r *http.Request) {
	catalog := h.catalog()
	doshas := make(map[ml.Label]recommend.Profile, len(ml.Doshas))
	for _, label := range ml.Doshas {
		if profile, ok := catalog.Profile(label); ok {
			doshas[label] = profile
		}
	}

	threshold := predictor.DefaultThreshold
	if p := h.Holder.Load(); p != nil {
		threshold = p.Policy().Threshold
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"doshas":    doshas,
		"no_match":  catalog.NoMatch.General,
		"threshold": threshold,
	})
}

func (h *handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	p := h.Holder.Load()
	if p == nil {
		h.fail(w, r, ml.ErrModelNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, p.Info())
}

func (h *handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "history storage disabled")
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.Store.RecentPredictions(limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	counts, err := h.Store.LabelCounts()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": records,
		"counts":      counts,
	})
}

func (h *handlers) handleTraining(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "history storage disabled")
		return
	}
	logs, err := h.Store.LoadTrainingLog()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": logs})
}

func (h *handlers) catalog() *recommend.Catalog {
	if h.Catalog != nil {
		return h.Catalog
	}
	if p := h.Holder.Load(); p != nil {
		return p.Catalog()
	}
	return recommend.DefaultCatalog()
}

// record stores a served prediction. Storage failures are logged and do not
// fail the request.
func (h *handlers) record(r *http.Request, source string, symptoms []string, result *predictor.PredictionResult) {
	if h.Store == nil {
		return
	}
	err := h.Store.SavePrediction(db.PredictionRecord{
		RequestID:      GetRequestID(r.Context()),
		Source:         source,
		Symptoms:       symptoms,
		PredictedLabel: string(result.PredictedLabel),
		RawLabel:       string(result.RawLabel),
		Confidence:     result.Confidence,
		LowConfidence:  result.LowConfidence,
	})
	if err != nil {
		h.log.Warn("save prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
	}
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		if start, ok := GetStartTime(r.Context()); ok {
			fields = append(fields, zap.Duration("elapsed", time.Since(start)))
		}
		h.log.Error("request failed", fields...)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ml.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrModelNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reports whether v was filled. A JSON value of the wrong type,
// such as a number in the symptom list, is rejected rather than coerced.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func trimBlank(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
