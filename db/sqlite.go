package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        request_id TEXT,
        source VARCHAR(20) NOT NULL,
        symptoms TEXT NOT NULL,
        predicted_label VARCHAR(20) NOT NULL,
        raw_label VARCHAR(20) NOT NULL,
        confidence REAL NOT NULL,
        low_confidence INTEGER NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50),
        accuracy REAL,
        precision REAL,
        recall REAL,
        trained_at DATETIME,
        data_points INTEGER,
        vocabulary INTEGER DEFAULT 0,
        estimators INTEGER DEFAULT 0
    );
    `

var errNotInitialized = errors.New("database not initialized")

// Store keeps the prediction history and the training log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type PredictionRecord struct {
	ID             int64     `json:"id"`
	RequestID      string    `json:"request_id,omitempty"`
	Source         string    `json:"source"`
	Symptoms       []string  `json:"symptoms"`
	PredictedLabel string    `json:"predicted_label"`
	RawLabel       string    `json:"raw_label"`
	Confidence     float64   `json:"confidence"`
	LowConfidence  bool      `json:"low_confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *Store) SavePrediction(rec PredictionRecord) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	if rec.PredictedLabel == "" {
		return errors.New("predicted label required")
	}
	symptoms, err := json.Marshal(rec.Symptoms)
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Source == "" {
		rec.Source = "api"
	}
	_, err = s.db.Exec(`
        INSERT INTO predictions (
            request_id, source, symptoms, predicted_label, raw_label,
            confidence, low_confidence, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		rec.RequestID,
		rec.Source,
		string(symptoms),
		rec.PredictedLabel,
		rec.RawLabel,
		rec.Confidence,
		rec.LowConfidence,
		rec.CreatedAt.UTC(),
	)
	return err
}

// RecentPredictions returns up to limit predictions, newest first.
func (s *Store) RecentPredictions(limit int) ([]PredictionRecord, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
        SELECT id, request_id, source, symptoms, predicted_label, raw_label,
               confidence, low_confidence, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var rec PredictionRecord
		var requestID sql.NullString
		var symptoms string
		if err := rows.Scan(&rec.ID, &requestID, &rec.Source, &symptoms, &rec.PredictedLabel, &rec.RawLabel,
			&rec.Confidence, &rec.LowConfidence, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.RequestID = requestID.String
		if err := json.Unmarshal([]byte(symptoms), &rec.Symptoms); err != nil {
			return nil, fmt.Errorf("prediction %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LabelCounts tallies stored predictions by final label.
func (s *Store) LabelCounts() (map[string]int, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	rows, err := s.db.Query(`SELECT predicted_label, COUNT(*) FROM predictions GROUP BY predicted_label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

type TrainingLog struct {
	ModelName  string    `json:"model_name"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
	Vocabulary int       `json:"vocabulary"`
	Estimators int       `json:"estimators"`
}

func (s *Store) SaveTrainingLog(log TrainingLog) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	_, err := s.db.Exec(`
        INSERT INTO training_log (
            model_name, accuracy, precision, recall, trained_at, data_points, vocabulary, estimators
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		log.ModelName,
		log.Accuracy,
		log.Precision,
		log.Recall,
		log.TrainedAt.UTC(),
		log.DataPoints,
		log.Vocabulary,
		log.Estimators,
	)
	return err
}

func (s *Store) LoadTrainingLog() ([]TrainingLog, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	rows, err := s.db.Query(`
        SELECT model_name, accuracy, precision, recall, trained_at, data_points, vocabulary, estimators
        FROM training_log
        ORDER BY trained_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.ModelName, &log.Accuracy, &log.Precision, &log.Recall, &log.TrainedAt,
			&log.DataPoints, &log.Vocabulary, &log.Estimators); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
