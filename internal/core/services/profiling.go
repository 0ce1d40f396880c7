package services

import (
	"context"

	"autostreamml/internal/core/domain"
	"autostreamml/internal/core/ports/output"
)

const DefaultReportTitle = "Exploratory Data Analysis Report"

type ProfilingService struct {
	store    *ArtifactStore
	profiler ports.Profiler
	title    string
}

func NewProfilingService(store *ArtifactStore, profiler ports.Profiler, title string) *ProfilingService {
	if title == "" {
		title = DefaultReportTitle
	}
	return &ProfilingService{store: store, profiler: profiler, title: title}
}

// Profile reports on the current dataset. It never writes to the store.
func (s *ProfilingService) Profile(ctx context.Context) (*domain.ProfileReport, error) {
	ds, ok, err := s.store.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDatasetAbsent
	}

	report, err := s.profiler.Profile(ctx, ds, s.title)
	if err != nil {
		return nil, domain.ExternalFailure("profiling", err)
	}
	return report, nil
}
