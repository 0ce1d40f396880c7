package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"autostreamml/internal/core/domain"
	"autostreamml/internal/core/ports/output"
)

type ModellingService struct {
	store   *ArtifactStore
	trainer ports.Trainer
}

func NewModellingService(store *ArtifactStore, trainer ports.Trainer) *ModellingService {
	return &ModellingService{store: store, trainer: trainer}
}

// Targets lists the columns that can be chosen as the target.
func (s *ModellingService) Targets(ctx context.Context) ([]domain.Column, error) {
	ds, ok, err := s.store.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDatasetAbsent
	}
	return ds.Columns, nil
}

// Run trains against target and stores the winning model. A trainer failure
// comes back as a domain.Failure of kind external_call and leaves the model
// slot untouched.
func (s *ModellingService) Run(ctx context.Context, target string) (*domain.ModelArtifact, error) {
	ds, ok, err := s.store.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDatasetAbsent
	}
	if !ds.HasColumn(target) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTarget, target)
	}

	req := domain.TrainingRequest{
		Target:              target,
		CategoricalFeatures: ds.CategoricalColumns(),
	}

	logger := log.WithFields(log.Fields{"target": target, "rows": ds.NumRows()})
	logger.Info("modelling started")

	result, err := s.trainer.Train(ctx, ds, req)
	if err != nil {
		logger.WithError(err).Warn("modelling failed")
		return nil, domain.ExternalFailure("modelling", err)
	}
	if len(result.Payload) == 0 {
		return nil, domain.ExternalFailure("modelling", fmt.Errorf("%w: trainer returned an empty model", domain.ErrTrainingFailed))
	}

	artifact := domain.NewModelArtifact(target, result)
	if err := s.store.SaveModel(ctx, artifact); err != nil {
		return nil, err
	}

	logger.WithField("best", result.Best.Code).Info("modelling completed")
	return artifact, nil
}
