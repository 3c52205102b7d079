package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Sample is one labeled training row.
type Sample struct {
	Text  string
	Label Label
}

// StratifiedSplit shuffles each label's rows with seed and moves round(testRatio*n)
// of them into the test set, so both sets keep the label proportions.
func StratifiedSplit(samples []Sample, testRatio float64, seed int64) (train, test []Sample, err error) {
	if len(samples) == 0 {
		return nil, nil, errors.New("samples empty")
	}
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	byLabel := make(map[Label][]int)
	for i, s := range samples {
		if s.Label.Index() < 0 {
			return nil, nil, errors.New("unknown label " + string(s.Label))
		}
		byLabel[s.Label] = append(byLabel[s.Label], i)
	}

	rnd := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, label := range Labels {
		indices := byLabel[label]
		if len(indices) == 0 {
			continue
		}
		rnd.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })
		nTest := int(math.Round(float64(len(indices)) * testRatio))
		if nTest >= len(indices) {
			nTest = len(indices) - 1
		}
		testIdx = append(testIdx, indices[:nTest]...)
		trainIdx = append(trainIdx, indices[nTest:]...)
	}
	sort.Ints(trainIdx)
	sort.Ints(testIdx)

	for _, i := range trainIdx {
		train = append(train, samples[i])
	}
	for _, i := range testIdx {
		test = append(test, samples[i])
	}
	return train, test, nil
}

// LabelCounts tallies rows per label.
func LabelCounts(samples []Sample) map[Label]int {
	counts := make(map[Label]int, NumLabels)
	for _, s := range samples {
		counts[s.Label]++
	}
	return counts
}
