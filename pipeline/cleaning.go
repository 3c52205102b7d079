// Package pipeline cleans labeled symptom rows before training.
package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ayurpredict/dataset"
	"ayurpredict/ml"
)

// CleaningRule inspects a row and returns it, possibly corrected, or an error to reject it.
type CleaningRule interface {
	Apply(*dataset.Row) (*dataset.Row, error)
	Name() string
}

type QualityIssue struct {
	Type      string    `json:"type"`
	Severity  string    `json:"severity"` // low, medium, high
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Row       int       `json:"row"`
}

type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Corrected      int64            `json:"corrected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

type DataCleaner struct {
	rules      []CleaningRule
	issues     []QualityIssue
	issuesLock sync.RWMutex

	stats     CleaningStats
	statsLock sync.RWMutex

	logger *zap.Logger
}

// NewDataCleaner returns a cleaner with the default rules in order:
// whitespace, empty text, label, duplicates.
func NewDataCleaner(logger *zap.Logger) *DataCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleaner := &DataCleaner{
		rules:  make([]CleaningRule, 0),
		issues: make([]QualityIssue, 0),
		stats: CleaningStats{
			Issues: make(map[string]int64),
		},
		logger: logger,
	}

	cleaner.AddRule(NewWhitespaceRule())
	cleaner.AddRule(NewEmptyTextRule())
	cleaner.AddRule(NewLabelValidationRule())
	cleaner.AddRule(NewDuplicateDetectionRule())

	return cleaner
}

func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
	dc.logger.Debug("added cleaning rule", zap.String("rule", rule.Name()))
}

// Clean runs every rule over every row. A row is rejected at its first failing rule.
func (dc *DataCleaner) Clean(rows []dataset.Row) ([]dataset.Row, []QualityIssue) {
	var cleaned []dataset.Row
	var issues []QualityIssue

	dc.statsLock.Lock()
	defer dc.statsLock.Unlock()

	for i := range rows {
		dc.stats.TotalProcessed++

		original := rows[i]
		row := &dataset.Row{}
		*row = original
		var rejected *QualityIssue

		for _, rule := range dc.rules {
			next, err := rule.Apply(row)
			if err != nil {
				rejected = &QualityIssue{
					Type:      rule.Name(),
					Severity:  "high",
					Message:   err.Error(),
					Timestamp: time.Now(),
					Row:       i,
				}
				dc.stats.Issues[rule.Name()]++
				break
			}
			if next != nil {
				row = next
			}
		}

		if rejected != nil {
			dc.stats.Rejected++
			issues = append(issues, *rejected)
			dc.issuesLock.Lock()
			dc.issues = append(dc.issues, *rejected)
			dc.issuesLock.Unlock()
			continue
		}
		if *row != original {
			dc.stats.Corrected++
		}
		dc.stats.Passed++
		cleaned = append(cleaned, *row)
	}

	dc.stats.LastClean = time.Now()
	if len(issues) > 0 {
		dc.logger.Info("dataset cleaned",
			zap.Int("rows", len(rows)),
			zap.Int("kept", len(cleaned)),
			zap.Int("rejected", len(issues)))
	}
	return cleaned, issues
}

func (dc *DataCleaner) GetStats() CleaningStats {
	dc.statsLock.RLock()
	defer dc.statsLock.RUnlock()

	stats := dc.stats
	stats.Issues = make(map[string]int64, len(dc.stats.Issues))
	for k, v := range dc.stats.Issues {
		stats.Issues[k] = v
	}
	return stats
}

// GetIssues returns the most recent limit issues; limit <= 0 returns all.
func (dc *DataCleaner) GetIssues(limit int) []QualityIssue {
	dc.issuesLock.RLock()
	defer dc.issuesLock.RUnlock()

	if limit <= 0 || limit > len(dc.issues) {
		limit = len(dc.issues)
	}

	issues := make([]QualityIssue, limit)
	copy(issues, dc.issues[len(dc.issues)-limit:])
	return issues
}

func (dc *DataCleaner) ClearIssues() {
	dc.issuesLock.Lock()
	defer dc.issuesLock.Unlock()

	dc.issues = make([]QualityIssue, 0)
}

// WhitespaceRule lowercases and collapses whitespace in the symptom text.
type WhitespaceRule struct{}

func NewWhitespaceRule() *WhitespaceRule {
	return &WhitespaceRule{}
}

func (r *WhitespaceRule) Name() string {
	return "whitespace_normalization"
}

func (r *WhitespaceRule) Apply(row *dataset.Row) (*dataset.Row, error) {
	if err := ml.ValidatePhrase(row.Symptoms); err != nil {
		return nil, err
	}
	row.Symptoms = ml.NormalizePhrase(row.Symptoms)
	return row, nil
}

// EmptyTextRule rejects rows whose text has fewer than MinRunes characters.
type EmptyTextRule struct {
	MinRunes int
}

func NewEmptyTextRule() *EmptyTextRule {
	return &EmptyTextRule{MinRunes: 2}
}

func (r *EmptyTextRule) Name() string {
	return "empty_text"
}

func (r *EmptyTextRule) Apply(row *dataset.Row) (*dataset.Row, error) {
	if len([]rune(strings.TrimSpace(row.Symptoms))) < r.MinRunes {
		return nil, fmt.Errorf("symptom text %q is too short", row.Symptoms)
	}
	return row, nil
}

// LabelValidationRule rejects rows labeled outside the fixed label set.
type LabelValidationRule struct{}

func NewLabelValidationRule() *LabelValidationRule {
	return &LabelValidationRule{}
}

func (r *LabelValidationRule) Name() string {
	return "label_validation"
}

func (r *LabelValidationRule) Apply(row *dataset.Row) (*dataset.Row, error) {
	label, err := ml.ParseLabel(string(row.Dosha))
	if err != nil {
		return nil, err
	}
	row.Dosha = label
	return row, nil
}

// DuplicateDetectionRule rejects a row whose text and label were already seen.
// It keeps state across Clean calls.
type DuplicateDetectionRule struct {
	seenMap map[string]struct{}
	mu      sync.Mutex
}

func NewDuplicateDetectionRule() *DuplicateDetectionRule {
	return &DuplicateDetectionRule{
		seenMap: make(map[string]struct{}),
	}
}

func (r *DuplicateDetectionRule) Name() string {
	return "duplicate_detection"
}

func (r *DuplicateDetectionRule) Apply(row *dataset.Row) (*dataset.Row, error) {
	key := string(row.Dosha) + "|" + row.Symptoms

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seenMap[key]; exists {
		return nil, fmt.Errorf("duplicate row: %q labeled %s", row.Symptoms, row.Dosha)
	}

	r.seenMap[key] = struct{}{}
	return row, nil
}
