package automl

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"autostreamml/internal/core/domain"
	ports "autostreamml/internal/core/ports/output"
)

const (
	DefaultFolds     = 10
	DefaultTrainSize = 0.7
	DefaultSort      = "R2"
	DefaultMaxOneHot = 25

	experimentName = "reg-default-name"
)

type Options struct {
	Folds     int
	TrainSize float64
	// SessionID seeds every random choice; 0 picks a random seed.
	SessionID int64
	Sort      string
	MaxOneHot int
	// Include restricts the comparison to these model codes.
	Include []string
}

// Engine runs setup, compare and finalize for regression on one dataset.
type Engine struct {
	opts       Options
	candidates []Candidate
}

var _ ports.Trainer = (*Engine)(nil)

func NewEngine(opts Options) (*Engine, error) {
	if opts.Folds == 0 {
		opts.Folds = DefaultFolds
	}
	if opts.TrainSize == 0 {
		opts.TrainSize = DefaultTrainSize
	}
	if opts.Sort == "" {
		opts.Sort = DefaultSort
	}
	if opts.MaxOneHot == 0 {
		opts.MaxOneHot = DefaultMaxOneHot
	}
	if opts.Folds < 2 {
		return nil, fmt.Errorf("folds must be at least 2, got %d", opts.Folds)
	}
	if opts.TrainSize <= 0 || opts.TrainSize >= 1 {
		return nil, fmt.Errorf("train size must be in (0, 1), got %g", opts.TrainSize)
	}
	if !ValidSortMetric(opts.Sort) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMetric, opts.Sort)
	}

	var candidates []Candidate
	for _, c := range Candidates() {
		if len(opts.Include) == 0 || slices.Contains(opts.Include, c.Code) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no known models in %v", opts.Include)
	}
	return &Engine{opts: opts, candidates: candidates}, nil
}

// experiment is the state produced by setup and shared by compare and finalize.
type experiment struct {
	seed        int64
	target      string
	index       map[string]int
	rows        [][]string
	y           []float64
	numeric     []string
	categorical []string
	train       []int
	test        []int
	folds       [][]int
}

func (e *Engine) Train(ctx context.Context, ds *domain.Dataset, req domain.TrainingRequest) (*domain.TrainingResult, error) {
	exp, setup, err := e.setup(ds, req)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields(log.Fields{"target": exp.target, "session_id": exp.seed})
	logger.Info("AutoML setup complete")

	comparison, err := e.compare(ctx, exp)
	if err != nil {
		return nil, &domain.TrainingFailure{Setup: setup, Err: err}
	}
	best := comparison[0]
	logger.WithFields(log.Fields{"model": best.Code, "r2": best.R2}).Info("Best model selected")

	pipeline, holdout, err := e.finalize(exp, best.Code)
	if err != nil {
		return nil, &domain.TrainingFailure{Setup: setup, Err: err}
	}
	payload, err := EncodePipeline(pipeline)
	if err != nil {
		return nil, &domain.TrainingFailure{Setup: setup, Err: err}
	}

	return &domain.TrainingResult{
		Setup:      setup,
		Comparison: comparison,
		Best: domain.BestModel{
			Code:        best.Code,
			Name:        best.Model,
			Description: pipeline.Estimator.String(),
		},
		Holdout: holdout,
		Payload: payload,
	}, nil
}

func (e *Engine) setup(ds *domain.Dataset, req domain.TrainingRequest) (*experiment, []domain.SetupRow, error) {
	j := ds.ColumnIndex(req.Target)
	if j < 0 {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidTarget, req.Target)
	}

	y := make([]float64, ds.NumRows())
	for i, row := range ds.Rows {
		if domain.IsMissing(row[j]) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrTargetHasMissing, req.Target)
		}
		v, ok := domain.ParseNumber(row[j])
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s has value %q", domain.ErrTargetNotNumeric, req.Target, row[j])
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, nil, fmt.Errorf("%w: %s has value %q", domain.ErrTargetNotFinite, req.Target, row[j])
		}
		y[i] = v
	}

	var numeric, categorical []string
	for _, c := range ds.Columns {
		if c.Name == req.Target {
			continue
		}
		if c.Kind == domain.ColumnKindCategorical || slices.Contains(req.CategoricalFeatures, c.Name) {
			categorical = append(categorical, c.Name)
		} else {
			numeric = append(numeric, c.Name)
		}
	}
	if len(numeric)+len(categorical) == 0 {
		return nil, nil, domain.ErrNoFeatures
	}
	if ds.NumRows() < 3 {
		return nil, nil, fmt.Errorf("%w: need at least 3, got %d", domain.ErrNotEnoughRows, ds.NumRows())
	}

	seed := e.opts.SessionID
	if seed == 0 {
		seed = rand.Int64N(9000) + 1
	}
	train, test := trainTestSplit(ds.NumRows(), e.opts.TrainSize, seed)
	k := e.opts.Folds
	if k > len(train) {
		k = len(train)
	}

	exp := &experiment{
		seed:        seed,
		target:      req.Target,
		index:       columnIndex(ds),
		rows:        ds.Rows,
		y:           y,
		numeric:     numeric,
		categorical: categorical,
		train:       train,
		test:        test,
		folds:       kFold(train, k),
	}

	pre := exp.fitPreprocessor(train, e.opts.MaxOneHot)
	width := pre.Width() + 1
	encoding := "one-hot"
	for _, f := range pre.Features {
		if f.Encoding == EncodingTarget {
			encoding = "one-hot, target mean"
			break
		}
	}

	setup := []domain.SetupRow{
		{Description: "Session id", Value: fmt.Sprint(seed)},
		{Description: "Target", Value: req.Target},
		{Description: "Target type", Value: "Regression"},
		{Description: "Original data shape", Value: shape(ds.NumRows(), ds.NumColumns())},
		{Description: "Transformed data shape", Value: shape(ds.NumRows(), width)},
		{Description: "Transformed train set shape", Value: shape(len(train), width)},
		{Description: "Transformed test set shape", Value: shape(len(test), width)},
		{Description: "Numeric features", Value: fmt.Sprint(len(numeric))},
		{Description: "Categorical features", Value: fmt.Sprint(len(categorical))},
		{Description: "Rows with missing values", Value: fmt.Sprintf("%.1f%%", 100*missingRowShare(ds))},
		{Description: "Preprocess", Value: "True"},
		{Description: "Imputation type", Value: "simple"},
		{Description: "Numeric imputation", Value: "mean"},
		{Description: "Categorical imputation", Value: "mode"},
		{Description: "Maximum one-hot encoding", Value: fmt.Sprint(e.opts.MaxOneHot)},
		{Description: "Encoding method", Value: encoding},
		{Description: "Fold Generator", Value: "KFold"},
		{Description: "Fold Number", Value: fmt.Sprint(k)},
		{Description: "Experiment Name", Value: experimentName},
		{Description: "USI", Value: uuid.NewString()[:4]},
	}
	return exp, setup, nil
}

func (exp *experiment) fitPreprocessor(positions []int, maxOneHot int) *Preprocessor {
	return FitPreprocessor(pick(exp.rows, positions), exp.index, exp.numeric, exp.categorical, pick(exp.y, positions), maxOneHot)
}

// fitScore fits a fresh candidate on fit positions and scores it on eval.
func (exp *experiment) fitScore(c Candidate, fit, eval []int, maxOneHot int) (*Pipeline, domain.HoldoutMetrics, error) {
	pre := exp.fitPreprocessor(fit, maxOneHot)
	X, err := pre.Transform(pick(exp.rows, fit), exp.index)
	if err != nil {
		return nil, domain.HoldoutMetrics{}, err
	}
	est := c.New(exp.seed)
	if err := est.Fit(X, pick(exp.y, fit)); err != nil {
		return nil, domain.HoldoutMetrics{}, err
	}
	Xe, err := pre.Transform(pick(exp.rows, eval), exp.index)
	if err != nil {
		return nil, domain.HoldoutMetrics{}, err
	}
	pipeline := &Pipeline{Target: exp.target, Code: c.Code, Name: c.Name, Preprocessor: pre, Estimator: est}
	return pipeline, Score(pick(exp.y, eval), est.Predict(Xe)), nil
}

func (e *Engine) compare(ctx context.Context, exp *experiment) ([]domain.ComparisonRow, error) {
	var rows []domain.ComparisonRow
	for _, c := range e.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := e.crossValidate(exp, c)
		if err != nil {
			log.WithError(err).WithField("model", c.Code).Warn("Model skipped")
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: every model failed to fit", domain.ErrTrainingFailed)
	}

	metric := e.opts.Sort
	sort.SliceStable(rows, func(a, b int) bool {
		return ranksBefore(metricValue(rows[a], metric), metricValue(rows[b], metric), higherIsBetter(metric))
	})
	return rows, nil
}

func (e *Engine) crossValidate(exp *experiment, c Candidate) (domain.ComparisonRow, error) {
	var sum domain.HoldoutMetrics
	var elapsed time.Duration
	for _, fold := range exp.folds {
		start := time.Now()
		_, m, err := exp.fitScore(c, without(exp.train, fold), fold, e.opts.MaxOneHot)
		if err != nil {
			return domain.ComparisonRow{}, err
		}
		elapsed += time.Since(start)
		sum.MAE += m.MAE
		sum.MSE += m.MSE
		sum.RMSE += m.RMSE
		sum.R2 += m.R2
		sum.RMSLE += m.RMSLE
		sum.MAPE += m.MAPE
	}
	k := float64(len(exp.folds))
	avg := domain.HoldoutMetrics{
		MAE: sum.MAE / k, MSE: sum.MSE / k, RMSE: sum.RMSE / k,
		R2: sum.R2 / k, RMSLE: sum.RMSLE / k, MAPE: sum.MAPE / k,
	}
	if !finiteMetrics(avg) {
		return domain.ComparisonRow{}, fmt.Errorf("cross-validation produced non-finite scores")
	}
	return domain.ComparisonRow{
		Code:     c.Code,
		Model:    c.Name,
		MAE:      avg.MAE,
		MSE:      avg.MSE,
		RMSE:     avg.RMSE,
		R2:       avg.R2,
		RMSLE:    avg.RMSLE,
		MAPE:     avg.MAPE,
		TTSecond: elapsed.Seconds() / k,
	}, nil
}

func (e *Engine) finalize(exp *experiment, code string) (*Pipeline, *domain.HoldoutMetrics, error) {
	for _, c := range e.candidates {
		if c.Code != code {
			continue
		}
		pipeline, holdout, err := exp.fitScore(c, exp.train, exp.test, e.opts.MaxOneHot)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: finalize %s: %v", domain.ErrTrainingFailed, code, err)
		}
		if !finiteMetrics(holdout) {
			return nil, nil, fmt.Errorf("%w: finalize %s: holdout scores are not finite", domain.ErrTrainingFailed, code)
		}
		return pipeline, &holdout, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown model %s", domain.ErrTrainingFailed, code)
}

func missingRowShare(ds *domain.Dataset) float64 {
	if ds.NumRows() == 0 {
		return 0
	}
	count := 0
	for _, row := range ds.Rows {
		for _, cell := range row {
			if domain.IsMissing(cell) {
				count++
				break
			}
		}
	}
	return float64(count) / float64(ds.NumRows())
}

func shape(rows, cols int) string {
	return fmt.Sprintf("(%d, %d)", rows, cols)
}
