package automl

import "math/rand/v2"

// trainTestSplit shuffles row positions with seed and cuts them at trainSize.
func trainTestSplit(n int, trainSize float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewPCG(uint64(seed), 0)).Perm(n)
	cut := int(float64(n)*trainSize + 0.5)
	if cut < 2 {
		cut = 2
	}
	if cut > n-1 {
		cut = n - 1
	}
	return perm[:cut], perm[cut:]
}

// kFold cuts positions into k contiguous folds; the first n%k folds get one
// extra row.
func kFold(positions []int, k int) [][]int {
	n := len(positions)
	folds := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		folds[f] = positions[start : start+size]
		start += size
	}
	return folds
}

// without returns positions minus the ones in fold.
func without(positions, fold []int) []int {
	skip := make(map[int]bool, len(fold))
	for _, p := range fold {
		skip[p] = true
	}
	out := make([]int, 0, len(positions)-len(fold))
	for _, p := range positions {
		if !skip[p] {
			out = append(out, p)
		}
	}
	return out
}

func pick[T any](xs []T, positions []int) []T {
	out := make([]T, len(positions))
	for i, p := range positions {
		out[i] = xs[p]
	}
	return out
}
