package services

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"autostreamml/internal/core/codec"
	"autostreamml/internal/core/domain"
	"autostreamml/internal/core/ports/output"
)

// ArtifactStore hands the dataset and the trained model from one request to
// the next. Nothing is kept in memory: every call goes through the slots.
type ArtifactStore struct {
	slots ports.SlotStore
}

func NewArtifactStore(slots ports.SlotStore) *ArtifactStore {
	return &ArtifactStore{slots: slots}
}

// LoadDataset returns false when no dataset has been uploaded yet.
func (s *ArtifactStore) LoadDataset(ctx context.Context) (*domain.Dataset, bool, error) {
	data, ok, err := s.read(ctx, ports.SlotDataset)
	if err != nil || !ok {
		return nil, false, err
	}

	ds, err := codec.DecodeDataset(data)
	if err != nil {
		return nil, false, domain.IOFailure("load dataset", err)
	}
	return ds, true, nil
}

func (s *ArtifactStore) SaveDataset(ctx context.Context, ds *domain.Dataset) error {
	data, err := codec.EncodeDataset(ds)
	if err != nil {
		return domain.IOFailure("save dataset", err)
	}
	if err := s.slots.Write(ctx, ports.SlotDataset, data); err != nil {
		return domain.IOFailure("save dataset", err)
	}

	log.WithFields(log.Fields{
		"rows":    ds.NumRows(),
		"columns": ds.NumColumns(),
		"bytes":   len(data),
	}).Info("dataset saved")
	return nil
}

// LoadModel returns false when no model has been trained yet.
func (s *ArtifactStore) LoadModel(ctx context.Context) (*domain.ModelArtifact, bool, error) {
	data, ok, err := s.read(ctx, ports.SlotModel)
	if err != nil || !ok {
		return nil, false, err
	}

	artifact, err := codec.DecodeModel(data)
	if err != nil {
		return nil, false, domain.IOFailure("load model", err)
	}
	return artifact, true, nil
}

func (s *ArtifactStore) SaveModel(ctx context.Context, artifact *domain.ModelArtifact) error {
	data, err := codec.EncodeModel(artifact)
	if err != nil {
		return domain.ExternalFailure("serialize model", err)
	}
	if err := s.slots.Write(ctx, ports.SlotModel, data); err != nil {
		return domain.IOFailure("save model", err)
	}

	log.WithFields(log.Fields{
		"model_id":  artifact.Metadata.ID,
		"algorithm": artifact.Metadata.Algorithm.Code,
		"bytes":     len(data),
	}).Info("model saved")
	return nil
}

// ModelBlob returns the serialized model slot as stored.
func (s *ArtifactStore) ModelBlob(ctx context.Context) ([]byte, bool, error) {
	return s.read(ctx, ports.SlotModel)
}

func (s *ArtifactStore) read(ctx context.Context, slot ports.Slot) ([]byte, bool, error) {
	data, err := s.slots.Read(ctx, slot)
	if errors.Is(err, domain.ErrSlotEmpty) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.IOFailure("read "+string(slot), err)
	}
	return data, true, nil
}
