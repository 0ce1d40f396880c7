package automl

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// TreeNode is one node of a fitted regression tree. Leaves have Feature -1.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// DecisionTree is a CART regression tree split on squared error.
type DecisionTree struct {
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxDepth        int
	Seed            int64
	Nodes           []TreeNode
}

func (m *DecisionTree) Fit(X *mat.Dense, y []float64) error {
	n, _ := X.Dims()
	if n == 0 || len(y) != n {
		return errEmptyTrainingSet
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	m.Nodes = m.Nodes[:0]
	m.grow(X, y, idx, 0)
	return nil
}

// grow appends the subtree for idx and returns its root position.
func (m *DecisionTree) grow(X *mat.Dense, y []float64, idx []int, depth int) int {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	pos := len(m.Nodes)
	m.Nodes = append(m.Nodes, TreeNode{Feature: -1, Value: sum / float64(len(idx))})

	if len(idx) < m.MinSamplesSplit || depth >= m.MaxDepth {
		return pos
	}
	feature, threshold, ok := m.bestSplit(X, y, idx)
	if !ok {
		return pos
	}

	var left, right []int
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := m.grow(X, y, left, depth+1)
	r := m.grow(X, y, right, depth+1)
	m.Nodes[pos].Feature = feature
	m.Nodes[pos].Threshold = threshold
	m.Nodes[pos].Left = l
	m.Nodes[pos].Right = r
	return pos
}

func (m *DecisionTree) bestSplit(X *mat.Dense, y []float64, idx []int) (int, float64, bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	parent := totalSq - total*total/float64(n)
	if parent <= 1e-12 {
		return 0, 0, false
	}

	_, p := X.Dims()
	best := parent
	bestFeature, bestThreshold, found := 0, 0.0, false
	sorted := make([]int, n)
	for j := 0; j < p; j++ {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return X.At(sorted[a], j) < X.At(sorted[b], j) })

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			v := y[sorted[k]]
			leftSum += v
			leftSq += v * v
			nl, nr := k+1, n-k-1
			if nl < m.MinSamplesLeaf || nr < m.MinSamplesLeaf {
				continue
			}
			lo, hi := X.At(sorted[k], j), X.At(sorted[k+1], j)
			if lo == hi {
				continue
			}
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			sse := leftSq - leftSum*leftSum/float64(nl) + rightSq - rightSum*rightSum/float64(nr)
			if sse < best-1e-12 {
				best = sse
				bestFeature, bestThreshold, found = j, lo+(hi-lo)/2, true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (m *DecisionTree) Predict(X mat.Matrix) []float64 {
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		node := m.Nodes[0]
		for node.Feature >= 0 {
			if X.At(i, node.Feature) <= node.Threshold {
				node = m.Nodes[node.Left]
			} else {
				node = m.Nodes[node.Right]
			}
		}
		out[i] = node.Value
	}
	return out
}

func (m *DecisionTree) String() string {
	return fmt.Sprintf("DecisionTreeRegressor(random_state=%d)", m.Seed)
}
