package ports

import (
	"context"

	"autostreamml/internal/core/domain"
)

// Profiler generates an exploratory report for a dataset.
type Profiler interface {
	Profile(ctx context.Context, ds *domain.Dataset, title string) (*domain.ProfileReport, error)
}
