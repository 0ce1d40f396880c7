package automl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// linearData returns y = 3*x0 - 2*x1 + 5.
func linearData(n int) (*mat.Dense, []float64) {
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0, x1 := float64(i), float64((i*7)%11)
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		y[i] = 3*x0 - 2*x1 + 5
	}
	return X, y
}

func TestLinearRegression_RecoversCoefficients(t *testing.T) {
	X, y := linearData(30)
	m := &LinearRegression{}
	require.NoError(t, m.Fit(X, y))

	assert.InDelta(t, 3, m.Coef[0], 1e-8)
	assert.InDelta(t, -2, m.Coef[1], 1e-8)
	assert.InDelta(t, 5, m.Intercept, 1e-8)
	assert.InDeltaSlice(t, y, m.Predict(X), 1e-8)
}

func TestLinearRegression_CollinearColumns(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{1, 2, 2, 4, 3, 6, 4, 8})
	y := []float64{2, 4, 6, 8}
	m := &LinearRegression{}
	require.NoError(t, m.Fit(X, y))
	assert.InDeltaSlice(t, y, m.Predict(X), 1e-8)
}

func TestRidge_ShrinksTowardsZero(t *testing.T) {
	X, y := linearData(30)
	weak := &Ridge{Alpha: 1e-6}
	strong := &Ridge{Alpha: 1e6}
	require.NoError(t, weak.Fit(X, y))
	require.NoError(t, strong.Fit(X, y))

	assert.InDelta(t, 3, weak.Coef[0], 1e-4)
	assert.Less(t, abs(strong.Coef[0]), abs(weak.Coef[0]))
	assert.Equal(t, "Ridge(alpha=1e+06, random_state=0)", strong.String())
}

func TestElasticNet_LargeAlphaZeroesWeights(t *testing.T) {
	X, y := linearData(30)
	m := &ElasticNet{Alpha: 1e6, L1Ratio: 1, MaxIter: 1000, Tol: 1e-4}
	require.NoError(t, m.Fit(X, y))

	assert.Equal(t, []float64{0, 0}, m.Coef)
	assert.InDelta(t, mean(y), m.Intercept, 1e-9)
	assert.Contains(t, m.String(), "Lasso(")
}

func TestElasticNet_SmallAlphaFits(t *testing.T) {
	X, y := linearData(30)
	m := &ElasticNet{Alpha: 1e-4, L1Ratio: 0.5, MaxIter: 10000, Tol: 1e-10}
	require.NoError(t, m.Fit(X, y))
	assert.InDelta(t, 3, m.Coef[0], 1e-2)
	assert.InDelta(t, -2, m.Coef[1], 1e-2)
	assert.Contains(t, m.String(), "ElasticNet(")
}

func TestDecisionTree_FitsStepFunction(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
	y := []float64{5, 5, 5, 20, 20, 20}
	m := &DecisionTree{MinSamplesSplit: 2, MinSamplesLeaf: 1, MaxDepth: 64}
	require.NoError(t, m.Fit(X, y))

	assert.Len(t, m.Nodes, 3)
	assert.InDelta(t, 6.5, m.Nodes[0].Threshold, 1e-12)
	assert.Equal(t, []float64{5, 20}, m.Predict(mat.NewDense(2, 1, []float64{0, 100})))
}

func TestKNeighbors_SingleNeighbourReproducesTraining(t *testing.T) {
	X, y := linearData(10)
	m := &KNeighbors{K: 1}
	require.NoError(t, m.Fit(X, y))
	assert.Equal(t, y, m.Predict(X))
}

func TestKNeighbors_KLargerThanTrainingSet(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	m := &KNeighbors{K: 5}
	require.NoError(t, m.Fit(X, []float64{2, 4}))
	assert.Equal(t, []float64{3}, m.Predict(mat.NewDense(1, 1, []float64{7})))
}

func TestDummy_PredictsMean(t *testing.T) {
	m := &Dummy{}
	require.NoError(t, m.Fit(nil, []float64{1, 2, 3}))
	assert.Equal(t, []float64{2, 2}, m.Predict(mat.NewDense(2, 1, nil)))
	assert.ErrorIs(t, m.Fit(nil, nil), errEmptyTrainingSet)
}

func TestScore(t *testing.T) {
	perfect := Score([]float64{1, 2, 3}, []float64{1, 2, 3})
	assert.Equal(t, 0.0, perfect.MAE)
	assert.Equal(t, 1.0, perfect.R2)

	m := Score([]float64{1, 2, 3, 4}, []float64{2, 2, 2, 2})
	assert.InDelta(t, 1.0, m.MAE, 1e-12)
	assert.InDelta(t, 1.5, m.MSE, 1e-12)
	assert.InDelta(t, -0.2, m.R2, 1e-12)

	constant := Score([]float64{5, 5}, []float64{4, 6})
	assert.Equal(t, 0.0, constant.R2)

	negative := Score([]float64{-1, 2}, []float64{0, 2})
	assert.Equal(t, 0.0, negative.RMSLE)
}

func TestKFold(t *testing.T) {
	folds := kFold([]int{0, 1, 2, 3, 4, 5, 6}, 3)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4}, {5, 6}}, folds)
	assert.Equal(t, []int{0, 1, 2, 5, 6}, without([]int{0, 1, 2, 3, 4, 5, 6}, folds[1]))
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	trainA, testA := trainTestSplit(10, 0.7, 42)
	trainB, testB := trainTestSplit(10, 0.7, 42)
	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)
	assert.Len(t, trainA, 7)
	assert.Len(t, testA, 3)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
