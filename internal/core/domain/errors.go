package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Artifact Errors
// ============================================================================

var (
	ErrSlotEmpty      = errors.New("storage slot is empty")
	ErrDatasetAbsent  = errors.New("please upload a dataset first")
	ErrModelNotFound  = errors.New("model artifact not found: run modelling first")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrUploadTooLarge = errors.New("uploaded file exceeds the size limit")
	ErrInvalidTarget  = errors.New("target column is not in the dataset")
)

// ============================================================================
// Training Errors
// ============================================================================

var (
	ErrTrainingFailed    = errors.New("training failed")
	ErrTargetNotNumeric  = errors.New("target column must be numeric")
	ErrTargetHasMissing  = errors.New("target column contains missing values")
	ErrTargetNotFinite   = errors.New("target column contains infinite values")
	ErrNotEnoughRows     = errors.New("not enough rows to train")
	ErrNoFeatures        = errors.New("dataset has no feature columns besides the target")
	ErrUnsupportedMetric = errors.New("unsupported sort metric")
)

type FailureKind string

const (
	KindMissingPrecondition FailureKind = "missing_precondition"
	KindInvalidInput        FailureKind = "invalid_input"
	KindExternalCall        FailureKind = "external_call"
	KindIO                  FailureKind = "io"
)

// Failure tags an error with the kind of condition that produced it.
type Failure struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (f *Failure) Error() string {
	if f.Op == "" {
		return f.Err.Error()
	}
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ExternalFailure wraps an error returned by a profiling, training or
// serialization collaborator.
func ExternalFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Failure{Kind: KindExternalCall, Op: op, Err: err}
}

func IOFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Failure{Kind: KindIO, Op: op, Err: err}
}

// TrainingFailure is returned by a trainer that failed after setup. Setup
// holds the experiment table built before the failure.
type TrainingFailure struct {
	Setup []SetupRow
	Err   error
}

func (f *TrainingFailure) Error() string {
	return f.Err.Error()
}

func (f *TrainingFailure) Unwrap() error {
	return f.Err
}

// SetupOf returns the setup table carried by err, if any.
func SetupOf(err error) []SetupRow {
	var f *TrainingFailure
	if errors.As(err, &f) {
		return f.Setup
	}
	return nil
}

// KindOf classifies any error returned by the services.
func KindOf(err error) FailureKind {
	var f *Failure
	switch {
	case errors.Is(err, ErrDatasetAbsent), errors.Is(err, ErrModelNotFound):
		return KindMissingPrecondition
	case errors.Is(err, ErrInvalidDataset),
		errors.Is(err, ErrInvalidTarget),
		errors.Is(err, ErrUploadTooLarge):
		return KindInvalidInput
	case errors.As(err, &f):
		return f.Kind
	default:
		return KindIO
	}
}
