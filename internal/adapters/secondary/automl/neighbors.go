package automl

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// KNeighbors averages the targets of the K nearest training rows. Features
// are standardized with the training mean and deviation.
type KNeighbors struct {
	K     int
	Mean  []float64
	Scale []float64
	Rows  [][]float64
	Y     []float64
}

func (m *KNeighbors) Fit(X *mat.Dense, y []float64) error {
	n, p := X.Dims()
	if n == 0 || len(y) != n {
		return errEmptyTrainingSet
	}
	m.Mean = make([]float64, p)
	m.Scale = make([]float64, p)
	for j := 0; j < p; j++ {
		mean, std := stat.PopMeanStdDev(mat.Col(nil, j, X), nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.Mean[j], m.Scale[j] = mean, std
	}
	m.Rows = make([][]float64, n)
	for i := 0; i < n; i++ {
		m.Rows[i] = m.scale(mat.Row(nil, i, X))
	}
	m.Y = append([]float64(nil), y...)
	return nil
}

func (m *KNeighbors) scale(row []float64) []float64 {
	for j := range row {
		row[j] = (row[j] - m.Mean[j]) / m.Scale[j]
	}
	return row
}

func (m *KNeighbors) Predict(X mat.Matrix) []float64 {
	r, c := X.Dims()
	k := m.K
	if k > len(m.Rows) {
		k = len(m.Rows)
	}
	out := make([]float64, r)
	order := make([]int, len(m.Rows))
	dist := make([]float64, len(m.Rows))
	query := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			query[j] = X.At(i, j)
		}
		m.scale(query)
		for t, row := range m.Rows {
			var d float64
			for j, v := range row {
				diff := v - query[j]
				d += diff * diff
			}
			dist[t] = d
			order[t] = t
		}
		sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })
		var sum float64
		for _, t := range order[:k] {
			sum += m.Y[t]
		}
		out[i] = sum / float64(k)
	}
	return out
}

func (m *KNeighbors) String() string {
	return fmt.Sprintf("KNeighborsRegressor(n_jobs=-1, n_neighbors=%d)", m.K)
}

// Dummy always predicts the training mean.
type Dummy struct {
	Constant float64
}

func (m *Dummy) Fit(_ *mat.Dense, y []float64) error {
	if len(y) == 0 {
		return errEmptyTrainingSet
	}
	m.Constant = stat.Mean(y, nil)
	return nil
}

func (m *Dummy) Predict(X mat.Matrix) []float64 {
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.Constant
	}
	return out
}

func (m *Dummy) String() string { return "DummyRegressor()" }
