package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"autostreamml/internal/core/codec"
	"autostreamml/internal/core/domain"
)

type UploadService struct {
	store    *ArtifactStore
	maxBytes int64
}

// NewUploadService limits uploads to maxBytes; zero or less disables the limit.
func NewUploadService(store *ArtifactStore, maxBytes int64) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes}
}

// MaxBytes is the upload size limit; zero or less means unlimited.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload parses a CSV file and makes it the current dataset.
func (s *UploadService) Upload(ctx context.Context, filename string, r io.Reader) (*domain.Dataset, error) {
	if s.maxBytes > 0 {
		r = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", filename, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrUploadTooLarge, filename, s.maxBytes)
	}

	ds, err := codec.ReadDataset(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveDataset(ctx, ds); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"file":        filename,
		"rows":        ds.NumRows(),
		"categorical": len(ds.CategoricalColumns()),
	}).Info("dataset uploaded")
	return ds, nil
}

// Current returns the stored dataset or domain.ErrDatasetAbsent.
func (s *UploadService) Current(ctx context.Context) (*domain.Dataset, error) {
	ds, ok, err := s.store.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDatasetAbsent
	}
	return ds, nil
}
