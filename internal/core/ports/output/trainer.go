package ports

import (
	"context"

	"autostreamml/internal/core/domain"
)

// Trainer runs the automated model comparison and returns the best
// candidate together with the setup and comparison tables.
type Trainer interface {
	Train(ctx context.Context, ds *domain.Dataset, req domain.TrainingRequest) (*domain.TrainingResult, error)
}
