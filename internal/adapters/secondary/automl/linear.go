package automl

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rcond is the relative singular value cutoff used for least squares.
const rcond = 1e-10

// Coefficients holds the fitted weights shared by the linear family.
type Coefficients struct {
	Coef      []float64
	Intercept float64
}

func (m *Coefficients) predict(X mat.Matrix) []float64 {
	r, c := X.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := m.Intercept
		for j := 0; j < c; j++ {
			v += X.At(i, j) * m.Coef[j]
		}
		out[i] = v
	}
	return out
}

// LinearRegression is ordinary least squares solved through the SVD, so
// collinear one-hot columns get the minimum norm solution.
type LinearRegression struct {
	Coefficients
}

func (m *LinearRegression) Fit(X *mat.Dense, y []float64) error {
	xc, xMean, yc, yMean, err := center(X, y)
	if err != nil {
		return err
	}
	_, p := X.Dims()
	m.Coef = make([]float64, p)

	var svd mat.SVD
	if !svd.Factorize(xc, mat.SVDThin) {
		return errors.New("linear regression: SVD did not converge")
	}
	if rank := svd.Rank(rcond); rank > 0 {
		var beta mat.Dense
		svd.SolveTo(&beta, mat.NewDense(len(yc), 1, yc), rank)
		m.Coef = mat.Col(nil, 0, &beta)
	}
	m.Intercept = yMean - floats.Dot(xMean, m.Coef)
	return nil
}

func (m *LinearRegression) Predict(X mat.Matrix) []float64 { return m.predict(X) }

func (m *LinearRegression) String() string { return "LinearRegression(n_jobs=-1)" }

// Ridge is L2 penalized least squares, solved in closed form.
type Ridge struct {
	Coefficients
	Alpha float64
	Seed  int64
}

func (m *Ridge) Fit(X *mat.Dense, y []float64) error {
	xc, xMean, yc, yMean, err := center(X, y)
	if err != nil {
		return err
	}
	_, p := X.Dims()

	var gram mat.SymDense
	gram.SymOuterK(1, xc.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+m.Alpha)
	}
	rhs := mat.NewVecDense(p, nil)
	rhs.MulVec(xc.T(), mat.NewVecDense(len(yc), yc))

	var chol mat.Cholesky
	if !chol.Factorize(&gram) {
		return errors.New("ridge: normal equations are not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, rhs); err != nil {
		return fmt.Errorf("ridge: %w", err)
	}
	m.Coef = mat.Col(nil, 0, &w)
	m.Intercept = yMean - floats.Dot(xMean, m.Coef)
	return nil
}

func (m *Ridge) Predict(X mat.Matrix) []float64 { return m.predict(X) }

func (m *Ridge) String() string {
	return fmt.Sprintf("Ridge(alpha=%g, random_state=%d)", m.Alpha, m.Seed)
}

// ElasticNet minimizes
//
//	1/(2n) ||y - Xw||^2 + Alpha*L1Ratio*||w||_1 + Alpha*(1-L1Ratio)/2 * ||w||^2
//
// by cyclic coordinate descent. L1Ratio 1 is the lasso.
type ElasticNet struct {
	Coefficients
	Alpha   float64
	L1Ratio float64
	MaxIter int
	Tol     float64
	Seed    int64
	// Iterations actually run by the last Fit.
	Iterations int
}

func (m *ElasticNet) Fit(X *mat.Dense, y []float64) error {
	xc, xMean, yc, yMean, err := center(X, y)
	if err != nil {
		return err
	}
	n, p := xc.Dims()
	cols := make([][]float64, p)
	norms := make([]float64, p)
	for j := range cols {
		cols[j] = mat.Col(nil, j, xc)
		norms[j] = floats.Dot(cols[j], cols[j])
	}

	l1 := m.Alpha * m.L1Ratio * float64(n)
	l2 := m.Alpha * (1 - m.L1Ratio) * float64(n)
	w := make([]float64, p)
	residual := append([]float64(nil), yc...)

	m.Iterations = 0
	for iter := 0; iter < m.MaxIter; iter++ {
		m.Iterations = iter + 1
		var maxDelta, maxW float64
		for j := 0; j < p; j++ {
			if norms[j] == 0 {
				continue
			}
			old := w[j]
			rho := floats.Dot(cols[j], residual) + norms[j]*old
			w[j] = softThreshold(rho, l1) / (norms[j] + l2)
			if delta := w[j] - old; delta != 0 {
				floats.AddScaled(residual, -delta, cols[j])
				maxDelta = math.Max(maxDelta, math.Abs(delta))
			}
			maxW = math.Max(maxW, math.Abs(w[j]))
		}
		if maxW == 0 || maxDelta/maxW < m.Tol {
			break
		}
	}

	m.Coef = w
	m.Intercept = yMean - floats.Dot(xMean, w)
	return nil
}

func (m *ElasticNet) Predict(X mat.Matrix) []float64 { return m.predict(X) }

func (m *ElasticNet) String() string {
	if m.L1Ratio == 1 {
		return fmt.Sprintf("Lasso(alpha=%g, random_state=%d)", m.Alpha, m.Seed)
	}
	return fmt.Sprintf("ElasticNet(alpha=%g, l1_ratio=%g, random_state=%d)", m.Alpha, m.L1Ratio, m.Seed)
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	default:
		return 0
	}
}

// center returns X and y with their column means removed, plus the means.
func center(X *mat.Dense, y []float64) (*mat.Dense, []float64, []float64, float64, error) {
	n, p := X.Dims()
	if n == 0 || len(y) != n {
		return nil, nil, nil, 0, errEmptyTrainingSet
	}
	xMean := make([]float64, p)
	for j := 0; j < p; j++ {
		xMean[j] = floats.Sum(mat.Col(nil, j, X)) / float64(n)
	}
	xc := mat.NewDense(n, p, nil)
	xc.Apply(func(i, j int, v float64) float64 { return v - xMean[j] }, X)

	yMean := floats.Sum(y) / float64(n)
	yc := make([]float64, n)
	copy(yc, y)
	floats.AddConst(-yMean, yc)
	return xc, xMean, yc, yMean, nil
}
