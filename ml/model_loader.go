package ml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the artifact layout changes; older files are rejected as corrupt.
const artifactSchemaVersion uint16 = 1

const (
	ModelTypeRandomForest = "random_forest"
	ModelTypeDecisionTree = "decision_tree"
)

type vectorizerArtifact struct {
	Schema     uint16           `msgpack:"schema"`
	Vectorizer *TfidfVectorizer `msgpack:"vectorizer"`
}

type modelArtifact struct {
	Schema    uint16        `msgpack:"schema"`
	Type      string        `msgpack:"type"`
	Labels    []string      `msgpack:"labels"`
	TrainedAt time.Time     `msgpack:"trained_at"`
	Forest    *RandomForest `msgpack:"forest,omitempty"`
	Tree      *DecisionTree `msgpack:"tree,omitempty"`
}

// Artifacts is the immutable bundle a predictor serves from.
type Artifacts struct {
	Vectorizer *TfidfVectorizer
	Model      Classifier
	ModelType  string
	TrainedAt  time.Time
}

// Validate checks that the vectorizer and model agree on the feature dimension.
func (a *Artifacts) Validate() error {
	if a == nil || a.Vectorizer == nil || a.Model == nil {
		return ErrModelNotLoaded
	}
	if !a.Vectorizer.Fitted() {
		return fmt.Errorf("%w: vectorizer is not fitted", ErrArtifactMissing)
	}
	var dim int
	switch m := a.Model.(type) {
	case *RandomForest:
		dim = m.NFeatures
	case *DecisionTree:
		dim = m.NFeatures
	default:
		return nil
	}
	if dim != a.Vectorizer.Dim() {
		return fmt.Errorf("%w: model expects %d features, vectorizer produces %d", ErrArtifactMissing, dim, a.Vectorizer.Dim())
	}
	return nil
}

// LoadArtifacts reads both blobs. Any failure wraps ErrArtifactMissing.
func LoadArtifacts(vectorizerPath, modelPath string) (*Artifacts, error) {
	vectorizer, err := LoadVectorizer(vectorizerPath)
	if err != nil {
		return nil, err
	}
	model, meta, err := loadModel(modelPath)
	if err != nil {
		return nil, err
	}
	artifacts := &Artifacts{
		Vectorizer: vectorizer,
		Model:      model,
		ModelType:  meta.Type,
		TrainedAt:  meta.TrainedAt,
	}
	if err := artifacts.Validate(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// SaveArtifacts writes both blobs atomically.
func SaveArtifacts(vectorizerPath, modelPath string, artifacts *Artifacts) error {
	if err := artifacts.Validate(); err != nil {
		return err
	}
	if err := SaveVectorizer(vectorizerPath, artifacts.Vectorizer); err != nil {
		return err
	}
	return SaveModel(modelPath, artifacts.Model, artifacts.TrainedAt)
}

func SaveVectorizer(path string, v *TfidfVectorizer) error {
	if !v.Fitted() {
		return errors.New("vectorizer not fitted")
	}
	return writeMsgpack(path, &vectorizerArtifact{Schema: artifactSchemaVersion, Vectorizer: v})
}

func LoadVectorizer(path string) (*TfidfVectorizer, error) {
	var payload vectorizerArtifact
	if err := readMsgpack(path, &payload); err != nil {
		return nil, err
	}
	if payload.Schema != artifactSchemaVersion {
		return nil, fmt.Errorf("%w: %s has schema %d, want %d", ErrArtifactMissing, path, payload.Schema, artifactSchemaVersion)
	}
	if !payload.Vectorizer.Fitted() {
		return nil, fmt.Errorf("%w: %s holds an unfitted vectorizer", ErrArtifactMissing, path)
	}
	return payload.Vectorizer, nil
}

func SaveModel(path string, model Classifier, trainedAt time.Time) error {
	payload := &modelArtifact{Schema: artifactSchemaVersion, TrainedAt: trainedAt.UTC()}
	for _, label := range Labels {
		payload.Labels = append(payload.Labels, string(label))
	}
	switch m := model.(type) {
	case *RandomForest:
		if len(m.Trees) == 0 {
			return errors.New("model not trained")
		}
		payload.Type = ModelTypeRandomForest
		payload.Forest = m
	case *DecisionTree:
		if len(m.Nodes) == 0 {
			return errors.New("model not trained")
		}
		payload.Type = ModelTypeDecisionTree
		payload.Tree = m
	default:
		return fmt.Errorf("unsupported model %T", model)
	}
	return writeMsgpack(path, payload)
}

// LoadModel reads a model blob written by SaveModel.
func LoadModel(path string) (Classifier, error) {
	model, _, err := loadModel(path)
	return model, err
}

func loadModel(path string) (Classifier, *modelArtifact, error) {
	var payload modelArtifact
	if err := readMsgpack(path, &payload); err != nil {
		return nil, nil, err
	}
	if payload.Schema != artifactSchemaVersion {
		return nil, nil, fmt.Errorf("%w: %s has schema %d, want %d", ErrArtifactMissing, path, payload.Schema, artifactSchemaVersion)
	}
	if len(payload.Labels) != NumLabels {
		return nil, nil, fmt.Errorf("%w: %s was trained on %d labels", ErrArtifactMissing, path, len(payload.Labels))
	}
	for i, name := range payload.Labels {
		if Label(name) != Labels[i] {
			return nil, nil, fmt.Errorf("%w: %s label %d is %q, want %q", ErrArtifactMissing, path, i, name, Labels[i])
		}
	}
	switch payload.Type {
	case ModelTypeRandomForest:
		if payload.Forest == nil || len(payload.Forest.Trees) == 0 {
			return nil, nil, fmt.Errorf("%w: %s has no trees", ErrArtifactMissing, path)
		}
		return payload.Forest, &payload, nil
	case ModelTypeDecisionTree:
		if payload.Tree == nil || len(payload.Tree.Nodes) == 0 {
			return nil, nil, fmt.Errorf("%w: %s has no nodes", ErrArtifactMissing, path)
		}
		return payload.Tree, &payload, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported model type %q", ErrArtifactMissing, payload.Type)
	}
}

func writeMsgpack(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMsgpack(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactMissing, err)
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrArtifactMissing, path, err)
	}
	return nil
}
