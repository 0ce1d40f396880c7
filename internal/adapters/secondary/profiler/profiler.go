package profiler

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"autostreamml/internal/core/domain"
	"autostreamml/internal/core/ports/output"
)

const (
	histogramBins        = 10
	topValues            = 10
	previewRows          = 10
	highCardinality      = 50
	missingThreshold     = 0.05
	zerosThreshold       = 0.10
	skewnessThreshold    = 20
	correlationThreshold = 0.9
	// cellOverhead approximates the per-cell cost of a Go string header.
	cellOverhead = 16
)

// Profiler computes exploratory statistics with gonum/stat.
type Profiler struct {
	now func() time.Time
}

var _ ports.Profiler = (*Profiler)(nil)

func New() *Profiler {
	return &Profiler{now: time.Now}
}

func (p *Profiler) Profile(ctx context.Context, ds *domain.Dataset, title string) (*domain.ProfileReport, error) {
	if ds.NumColumns() == 0 {
		return nil, fmt.Errorf("profile: dataset has no columns")
	}
	start := p.now()

	report := &domain.ProfileReport{
		Title:       title,
		GeneratedAt: start.UTC(),
		Fingerprint: ds.Fingerprint(),
		Overview:    overview(ds),
		Header:      ds.ColumnNames(),
		HeadRows:    ds.Head(previewRows),
		TailRows:    ds.Tail(previewRows),
	}

	for j := range ds.Columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := variable(ds, j)
		report.Variables = append(report.Variables, v)
		report.Alerts = append(report.Alerts, variableAlerts(v, ds.NumRows())...)
	}

	if corr := correlations(ds); corr != nil {
		report.Correlations = corr
		report.Alerts = append(report.Alerts, correlationAlerts(corr)...)
	}

	log.WithFields(log.Fields{
		"rows":     ds.NumRows(),
		"columns":  ds.NumColumns(),
		"alerts":   len(report.Alerts),
		"duration": time.Since(start),
	}).Debug("Profile report generated")
	return report, nil
}

func overview(ds *domain.Dataset) domain.Overview {
	o := domain.Overview{
		Rows:            ds.NumRows(),
		Columns:         ds.NumColumns(),
		NumericColumns:  len(ds.NumericColumns()),
		CategoricalCols: len(ds.CategoricalColumns()),
	}
	seen := make(map[string]bool, ds.NumRows())
	for _, row := range ds.Rows {
		for _, cell := range row {
			if domain.IsMissing(cell) {
				o.MissingCells++
			}
			o.MemoryBytes += int64(len(cell) + cellOverhead)
		}
		key := strings.Join(row, "\x00")
		if seen[key] {
			o.DuplicateRows++
		}
		seen[key] = true
	}
	o.MissingPercent = percent(o.MissingCells, o.Rows*o.Columns)
	o.DuplicatePercent = percent(o.DuplicateRows, o.Rows)
	return o
}

func variable(ds *domain.Dataset, j int) domain.VariableProfile {
	col := ds.Columns[j]
	v := domain.VariableProfile{Name: col.Name, Kind: col.Kind}

	counts := make(map[string]int)
	var present []string
	for _, cell := range ds.ColumnValues(j) {
		if domain.IsMissing(cell) {
			v.Missing++
			continue
		}
		counts[cell]++
		present = append(present, cell)
	}
	v.Distinct = len(counts)
	v.DistinctPercent = percent(v.Distinct, len(present))
	v.MissingPercent = percent(v.Missing, ds.NumRows())

	if col.Kind == domain.ColumnKindNumeric {
		v.Numeric = numericSummary(present)
	} else {
		v.Categorical = categoricalSummary(present, counts)
	}
	return v
}

// numericSummary describes the finite values of a column. Infinite cells are
// counted apart and left out of every other statistic.
func numericSummary(cells []string) *domain.NumericSummary {
	s := &domain.NumericSummary{}
	xs := make([]float64, 0, len(cells))
	for _, cell := range cells {
		x, ok := domain.ParseNumber(cell)
		switch {
		case !ok:
		case math.IsInf(x, 0) || math.IsNaN(x):
			s.Infinite++
		default:
			xs = append(xs, x)
		}
	}
	if len(xs) == 0 {
		return s
	}
	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	s.Mean = finite(mean)
	s.Std = finite(std)
	s.Min = xs[0]
	s.P5 = finite(stat.Quantile(0.05, stat.LinInterp, xs, nil))
	s.Q1 = finite(stat.Quantile(0.25, stat.LinInterp, xs, nil))
	s.Median = finite(stat.Quantile(0.5, stat.LinInterp, xs, nil))
	s.Q3 = finite(stat.Quantile(0.75, stat.LinInterp, xs, nil))
	s.P95 = finite(stat.Quantile(0.95, stat.LinInterp, xs, nil))
	s.Max = xs[len(xs)-1]
	s.Skewness = finite(stat.Skew(xs, nil))
	s.Kurtosis = finite(stat.ExKurtosis(xs, nil))
	s.Sum = finite(floats.Sum(xs))
	s.Range = finite(s.Max - s.Min)
	s.IQR = finite(s.Q3 - s.Q1)
	if s.Mean != 0 {
		s.CV = finite(s.Std / s.Mean)
	}
	for _, x := range xs {
		switch {
		case x == 0:
			s.Zeros++
		case x < 0:
			s.Negatives++
		}
	}
	s.Histogram = histogram(xs)
	return s
}

// histogram bins sorted finite values into equal-width bins over [min, max].
// A constant column, or one whose range overflows, gets a single bin.
func histogram(xs []float64) []domain.HistogramBin {
	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi || math.IsInf(hi-lo, 0) {
		return []domain.HistogramBin{{Lower: lo, Upper: hi, Count: len(xs)}}
	}

	dividers := make([]float64, histogramBins+1)
	floats.Span(dividers, lo, hi)
	dividers[histogramBins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, xs, nil)
	out := make([]domain.HistogramBin, histogramBins)
	for i := range out {
		out[i] = domain.HistogramBin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	out[histogramBins-1].Upper = hi
	return out
}

func categoricalSummary(cells []string, counts map[string]int) *domain.CategoricalSummary {
	s := &domain.CategoricalSummary{}
	var total int
	for _, cell := range cells {
		n := utf8.RuneCountInString(cell)
		total += n
		if n > s.MaxLength {
			s.MaxLength = n
		}
	}
	if len(cells) > 0 {
		s.MeanLength = float64(total) / float64(len(cells))
	}

	for value, count := range counts {
		s.TopValues = append(s.TopValues, domain.ValueCount{Value: value, Count: count})
	}
	sort.Slice(s.TopValues, func(a, b int) bool {
		if s.TopValues[a].Count != s.TopValues[b].Count {
			return s.TopValues[a].Count > s.TopValues[b].Count
		}
		return s.TopValues[a].Value < s.TopValues[b].Value
	})
	if len(s.TopValues) > topValues {
		s.TopValues = s.TopValues[:topValues]
	}
	return s
}

func variableAlerts(v domain.VariableProfile, rows int) []domain.Alert {
	var alerts []domain.Alert
	present := rows - v.Missing
	switch {
	case v.Distinct == 1:
		alerts = append(alerts, domain.Alert{Type: domain.AlertConstant, Column: v.Name,
			Message: fmt.Sprintf("%s has constant value", v.Name)})
	case present > 1 && v.Distinct == present:
		alerts = append(alerts, domain.Alert{Type: domain.AlertUnique, Column: v.Name,
			Message: fmt.Sprintf("%s has unique values", v.Name)})
	}
	if v.Kind == domain.ColumnKindCategorical && v.Distinct > highCardinality {
		alerts = append(alerts, domain.Alert{Type: domain.AlertHighCardinality, Column: v.Name,
			Message: fmt.Sprintf("%s has a high cardinality: %d distinct values", v.Name, v.Distinct)})
	}
	if v.MissingPercent > missingThreshold*100 {
		alerts = append(alerts, domain.Alert{Type: domain.AlertMissing, Column: v.Name,
			Message: fmt.Sprintf("%s has %d (%.1f%%) missing values", v.Name, v.Missing, v.MissingPercent)})
	}
	if s := v.Numeric; s != nil {
		if zeros := percent(s.Zeros, rows); zeros > zerosThreshold*100 {
			alerts = append(alerts, domain.Alert{Type: domain.AlertZeros, Column: v.Name,
				Message: fmt.Sprintf("%s has %d (%.1f%%) zeros", v.Name, s.Zeros, zeros)})
		}
		if s.Infinite > 0 {
			alerts = append(alerts, domain.Alert{Type: domain.AlertInfinite, Column: v.Name,
				Message: fmt.Sprintf("%s has %d infinite values", v.Name, s.Infinite)})
		}
		if math.Abs(s.Skewness) > skewnessThreshold {
			alerts = append(alerts, domain.Alert{Type: domain.AlertSkewed, Column: v.Name,
				Message: fmt.Sprintf("%s is highly skewed (γ1 = %.2f)", v.Name, s.Skewness)})
		}
	}
	return alerts
}

// correlations computes pairwise complete Pearson coefficients between
// non-constant numeric columns. It returns nil with fewer than two such columns.
func correlations(ds *domain.Dataset) *domain.Correlations {
	type series struct {
		name   string
		values []float64
		ok     []bool
	}
	var cols []series
	for j, c := range ds.Columns {
		if c.Kind != domain.ColumnKindNumeric {
			continue
		}
		s := series{name: c.Name, values: make([]float64, ds.NumRows()), ok: make([]bool, ds.NumRows())}
		distinct := make(map[float64]bool)
		for i, row := range ds.Rows {
			x, ok := domain.ParseNumber(row[j])
			s.values[i], s.ok[i] = x, ok && !math.IsInf(x, 0) && !math.IsNaN(x)
			if s.ok[i] {
				distinct[s.values[i]] = true
			}
		}
		if len(distinct) > 1 {
			cols = append(cols, s)
		}
	}
	if len(cols) < 2 {
		return nil
	}

	corr := &domain.Correlations{Matrix: make([][]float64, len(cols))}
	for a := range cols {
		corr.Columns = append(corr.Columns, cols[a].name)
		corr.Matrix[a] = make([]float64, len(cols))
		corr.Matrix[a][a] = 1
	}
	for a := 0; a < len(cols); a++ {
		for b := a + 1; b < len(cols); b++ {
			var x, y []float64
			for i := range cols[a].values {
				if cols[a].ok[i] && cols[b].ok[i] {
					x = append(x, cols[a].values[i])
					y = append(y, cols[b].values[i])
				}
			}
			var r float64
			if len(x) > 1 {
				r = finite(stat.Correlation(x, y, nil))
			}
			corr.Matrix[a][b], corr.Matrix[b][a] = r, r
		}
	}
	return corr
}

func correlationAlerts(corr *domain.Correlations) []domain.Alert {
	var alerts []domain.Alert
	for a := range corr.Columns {
		for b := a + 1; b < len(corr.Columns); b++ {
			if r := corr.Matrix[a][b]; math.Abs(r) > correlationThreshold {
				alerts = append(alerts, domain.Alert{
					Type:    domain.AlertHighCorrelation,
					Column:  corr.Columns[a],
					Message: fmt.Sprintf("%s is highly correlated with %s (ρ = %.2f)", corr.Columns[a], corr.Columns[b], r),
				})
			}
		}
	}
	return alerts
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// finite maps NaN and infinities to 0 so reports stay JSON encodable.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
