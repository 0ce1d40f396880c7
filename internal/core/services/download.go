package services

import (
	"context"

	"autostreamml/internal/core/domain"
)

type DownloadService struct {
	store *ArtifactStore
}

func NewDownloadService(store *ArtifactStore) *DownloadService {
	return &DownloadService{store: store}
}

// Open returns the stored model bytes. A missing model is always an error.
func (s *DownloadService) Open(ctx context.Context) (*domain.ModelDownload, error) {
	data, ok, err := s.store.ModelBlob(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, domain.ErrModelNotFound
	}
	return &domain.ModelDownload{FileName: domain.ModelFileName, Data: data}, nil
}

func (s *DownloadService) Metadata(ctx context.Context) (*domain.ModelMetadata, error) {
	artifact, ok, err := s.store.LoadModel(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	return &artifact.Metadata, nil
}
