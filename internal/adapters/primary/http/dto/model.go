package dto

import (
	"time"

	"github.com/google/uuid"

	"autostreamml/internal/core/domain"
)

type RunModellingRequest struct {
	Target string `json:"target" binding:"required"`
}

type ModelResponse struct {
	ID          uuid.UUID              `json:"id"`
	CreatedAt   string                 `json:"created_at"`
	Target      string                 `json:"target"`
	Algorithm   domain.BestModel       `json:"algorithm"`
	Setup       []domain.SetupRow      `json:"setup"`
	Comparison  []domain.ComparisonRow `json:"comparison"`
	Holdout     *domain.HoldoutMetrics `json:"holdout,omitempty"`
	FileName    string                 `json:"file_name"`
	DownloadURL string                 `json:"download_url"`
}

// ToModelResponse renders metadata with the API download link under basePath.
func ToModelResponse(m *domain.ModelMetadata, basePath string) ModelResponse {
	return ModelResponse{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		Target:      m.Target,
		Algorithm:   m.Algorithm,
		Setup:       m.Setup,
		Comparison:  m.Comparison,
		Holdout:     m.Holdout,
		FileName:    domain.ModelFileName,
		DownloadURL: basePath + "/model/download",
	}
}
