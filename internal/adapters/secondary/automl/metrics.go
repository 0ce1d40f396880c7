package automl

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"autostreamml/internal/core/domain"
)

// mapeEpsilon guards against division by zero targets.
const mapeEpsilon = 2.220446049250313e-16

// Score computes the regression metrics of predictions against truth.
func Score(y, pred []float64) domain.HoldoutMetrics {
	n := float64(len(y))
	var absSum, sqSum, pctSum float64
	for i := range y {
		diff := y[i] - pred[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		pctSum += math.Abs(diff) / math.Max(math.Abs(y[i]), mapeEpsilon)
	}
	mse := sqSum / n
	return domain.HoldoutMetrics{
		MAE:   absSum / n,
		MSE:   mse,
		RMSE:  math.Sqrt(mse),
		R2:    rSquared(y, pred),
		RMSLE: rmsle(y, pred),
		MAPE:  pctSum / n,
	}
}

// rSquared is 1 for a perfect fit of a constant target and 0 otherwise.
func rSquared(y, pred []float64) float64 {
	if len(y) < 2 || stat.Variance(y, nil) == 0 {
		if floats.Equal(y, pred) {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(pred, y, nil)
}

// rmsle is reported as 0 when the target has negative values. Negative
// predictions are clipped to zero.
func rmsle(y, pred []float64) float64 {
	var sum float64
	for i := range y {
		if y[i] < 0 {
			return 0
		}
		d := math.Log1p(y[i]) - math.Log1p(math.Max(pred[i], 0))
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(y)))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// metricValue picks the metric used to rank the comparison table.
func metricValue(row domain.ComparisonRow, metric string) float64 {
	switch metric {
	case "MAE":
		return row.MAE
	case "MSE":
		return row.MSE
	case "RMSE":
		return row.RMSE
	case "RMSLE":
		return row.RMSLE
	case "MAPE":
		return row.MAPE
	case "TT":
		return row.TTSecond
	default:
		return row.R2
	}
}

// higherIsBetter reports the ranking direction of a metric.
func higherIsBetter(metric string) bool {
	return metric == "R2"
}

// ranksBefore orders two metric values for the comparison table. NaN ranks
// after every number.
func ranksBefore(va, vb float64, higher bool) bool {
	switch {
	case math.IsNaN(vb):
		return !math.IsNaN(va)
	case math.IsNaN(va):
		return false
	case higher:
		return va > vb
	default:
		return va < vb
	}
}

// finiteMetrics reports whether every metric is a finite number.
func finiteMetrics(m domain.HoldoutMetrics) bool {
	for _, v := range []float64{m.MAE, m.MSE, m.RMSE, m.R2, m.RMSLE, m.MAPE} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ValidSortMetric reports whether metric can rank the comparison table.
func ValidSortMetric(metric string) bool {
	switch metric {
	case "MAE", "MSE", "RMSE", "R2", "RMSLE", "MAPE", "TT":
		return true
	}
	return false
}
