package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

type DecisionTree struct {
	Nodes       []TreeNode `msgpack:"nodes"`
	MaxDepth    int        `msgpack:"max_depth"`
	MaxFeatures int        `msgpack:"max_features"`
	NFeatures   int        `msgpack:"n_features"`
}

type TreeNode struct {
	FeatureIdx   int               `json:"feature_idx" msgpack:"f"`
	Threshold    float64           `json:"threshold" msgpack:"t"`
	LeftChild    int               `json:"left_child" msgpack:"l"`
	RightChild   int               `json:"right_child" msgpack:"r"`
	Distribution LabelDistribution `json:"distribution" msgpack:"d"`
	IsLeaf       bool              `json:"is_leaf" msgpack:"leaf"`
}

// NewDecisionTree returns an untrained tree. maxDepth <= 0 grows until leaves
// are pure; maxFeatures <= 0 considers every feature at each split.
func NewDecisionTree(maxDepth, maxFeatures int) *DecisionTree {
	return &DecisionTree{MaxDepth: maxDepth, MaxFeatures: maxFeatures}
}

// Train fits the tree on all rows. rng drives feature subsampling and may be nil
// when MaxFeatures covers every feature.
func (dt *DecisionTree) Train(features []FeatureVector, labels []Label, rng *rand.Rand) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	classes := make([]int, len(labels))
	for i, label := range labels {
		idx := label.Index()
		if idx < 0 {
			return errors.New("unknown label " + string(label))
		}
		classes[i] = idx
	}
	samples := make([]int, len(features))
	for i := range samples {
		samples[i] = i
	}
	return dt.train(features, classes, samples, rng)
}

func (dt *DecisionTree) train(features []FeatureVector, classes []int, samples []int, rng *rand.Rand) error {
	dt.NFeatures = len(features[0])
	for _, row := range features {
		if len(row) != dt.NFeatures {
			return errors.New("feature rows differ in length")
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	b := &treeBuilder{
		features:    features,
		classes:     classes,
		maxDepth:    dt.MaxDepth,
		maxFeatures: dt.MaxFeatures,
		rng:         rng,
	}
	dt.Nodes = b.buildNode(samples, 0)
	return nil
}

// PredictProba walks the tree and returns the class distribution of the leaf reached.
func (dt *DecisionTree) PredictProba(features FeatureVector) (LabelDistribution, error) {
	if len(dt.Nodes) == 0 {
		return LabelDistribution{}, ErrModelNotLoaded
	}
	if features.IsZero() {
		return UniformDistribution(), nil
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node.Distribution, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return LabelDistribution{}, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return LabelDistribution{}, errors.New("invalid tree state")
		}
	}
}

// Predict returns the top label and its probability.
func (dt *DecisionTree) Predict(features FeatureVector) (Label, float64, error) {
	dist, err := dt.PredictProba(features)
	if err != nil {
		return "", 0, err
	}
	label, p := dist.Top()
	return label, p, nil
}

// Depth returns the length of the longest root-to-leaf path.
func (dt *DecisionTree) Depth() int {
	if len(dt.Nodes) == 0 {
		return 0
	}
	var walk func(idx int) int
	walk = func(idx int) int {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return 0
		}
		return 1 + max(walk(node.LeftChild), walk(node.RightChild))
	}
	return walk(0)
}

type treeBuilder struct {
	features    []FeatureVector
	classes     []int
	maxDepth    int
	maxFeatures int
	rng         *rand.Rand
}

func (b *treeBuilder) buildNode(samples []int, depth int) []TreeNode {
	counts := b.classCounts(samples)
	leaf := []TreeNode{{
		FeatureIdx:   -1,
		LeftChild:    -1,
		RightChild:   -1,
		Distribution: distributionFromCounts(counts),
		IsLeaf:       true,
	}}
	if (b.maxDepth > 0 && depth >= b.maxDepth) || isPure(counts) || len(samples) < 2 {
		return leaf
	}

	bestFeature, threshold, ok := b.findBestSplit(samples, counts)
	if !ok {
		return leaf
	}

	left, right := b.splitSamples(samples, bestFeature, threshold)
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}

	leftNodes := b.buildNode(left, depth+1)
	rightNodes := b.buildNode(right, depth+1)

	root := TreeNode{
		FeatureIdx:   bestFeature,
		Threshold:    threshold,
		LeftChild:    1,
		RightChild:   1 + len(leftNodes),
		Distribution: leaf[0].Distribution,
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, offsetChildren(leftNodes, 1)...)
	nodes = append(nodes, offsetChildren(rightNodes, 1+len(leftNodes))...)
	return nodes
}

// findBestSplit draws features in random order and evaluates them until
// maxFeatures non-constant ones have been seen, like scikit-learn does.
func (b *treeBuilder) findBestSplit(samples []int, parent [NumLabels]int) (int, float64, bool) {
	featureCount := len(b.features[0])
	budget := b.maxFeatures
	if budget <= 0 || budget > featureCount {
		budget = featureCount
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64
	visited := 0

	order := b.rng.Perm(featureCount)
	sorted := make([]int, len(samples))
	for _, featureIdx := range order {
		if visited >= budget {
			break
		}
		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.features[sorted[i]][featureIdx] < b.features[sorted[j]][featureIdx]
		})
		lo := b.features[sorted[0]][featureIdx]
		hi := b.features[sorted[len(sorted)-1]][featureIdx]
		if lo == hi {
			continue
		}
		visited++

		var leftCounts [NumLabels]int
		rightCounts := parent
		for i := 0; i < len(sorted)-1; i++ {
			class := b.classes[sorted[i]]
			leftCounts[class]++
			rightCounts[class]--
			current := b.features[sorted[i]][featureIdx]
			next := b.features[sorted[i+1]][featureIdx]
			if current == next {
				continue
			}
			impurity := weightedGini(leftCounts, i+1, rightCounts, len(sorted)-i-1)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = featureIdx
				bestThreshold = current + (next-current)/2
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func (b *treeBuilder) splitSamples(samples []int, featureIdx int, threshold float64) ([]int, []int) {
	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))
	for _, s := range samples {
		if b.features[s][featureIdx] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

func (b *treeBuilder) classCounts(samples []int) [NumLabels]int {
	var counts [NumLabels]int
	for _, s := range samples {
		counts[b.classes[s]]++
	}
	return counts
}

func offsetChildren(nodes []TreeNode, offset int) []TreeNode {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
	return nodes
}

func weightedGini(left [NumLabels]int, leftN int, right [NumLabels]int, rightN int) float64 {
	total := float64(leftN + rightN)
	return (float64(leftN)/total)*gini(left, leftN) + (float64(rightN)/total)*gini(right, rightN)
}

func gini(counts [NumLabels]int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, count := range counts {
		prob := float64(count) / float64(n)
		impurity -= prob * prob
	}
	return impurity
}

func isPure(counts [NumLabels]int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
