package domain

import (
	"time"

	"github.com/google/uuid"
)

const ModelFileName = "best_model.gob"

// SetupRow is one Description/Value line of the experiment setup table.
type SetupRow struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// ComparisonRow holds the cross-validated scores of one candidate model.
type ComparisonRow struct {
	Code     string  `json:"code"`
	Model    string  `json:"model"`
	MAE      float64 `json:"mae"`
	MSE      float64 `json:"mse"`
	RMSE     float64 `json:"rmse"`
	R2       float64 `json:"r2"`
	RMSLE    float64 `json:"rmsle"`
	MAPE     float64 `json:"mape"`
	TTSecond float64 `json:"tt_sec"`
}

type BestModel struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Scores of the best model on the holdout split.
type HoldoutMetrics struct {
	MAE   float64 `json:"mae"`
	MSE   float64 `json:"mse"`
	RMSE  float64 `json:"rmse"`
	R2    float64 `json:"r2"`
	RMSLE float64 `json:"rmsle"`
	MAPE  float64 `json:"mape"`
}

type TrainingRequest struct {
	Target              string
	CategoricalFeatures []string
}

// TrainingResult is what a trainer hands back: the setup table, the
// comparison table, the winner and its serialized pipeline.
type TrainingResult struct {
	Setup      []SetupRow
	Comparison []ComparisonRow
	Best       BestModel
	Holdout    *HoldoutMetrics
	Payload    []byte
}

type ModelMetadata struct {
	ID         uuid.UUID       `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Target     string          `json:"target"`
	Algorithm  BestModel       `json:"algorithm"`
	Setup      []SetupRow      `json:"setup"`
	Comparison []ComparisonRow `json:"comparison"`
	Holdout    *HoldoutMetrics `json:"holdout,omitempty"`
}

// ModelArtifact is the trained model stored in the model slot.
type ModelArtifact struct {
	Metadata ModelMetadata
	Payload  []byte
}

func NewModelArtifact(target string, result *TrainingResult) *ModelArtifact {
	return &ModelArtifact{
		Metadata: ModelMetadata{
			ID:         uuid.New(),
			CreatedAt:  time.Now().UTC(),
			Target:     target,
			Algorithm:  result.Best,
			Setup:      result.Setup,
			Comparison: result.Comparison,
			Holdout:    result.Holdout,
		},
		Payload: result.Payload,
	}
}

// ModelDownload is the serialized model slot ready to stream.
type ModelDownload struct {
	FileName string
	Data     []byte
}
