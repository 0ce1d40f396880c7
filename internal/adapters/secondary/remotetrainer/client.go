package remotetrainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"autostreamml/internal/config"
	"autostreamml/internal/core/domain"
	ports "autostreamml/internal/core/ports/output"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 4 << 10

type remoteTrainer struct {
	baseURL string
	client  *http.Client
}

// NewRemoteTrainer creates a Trainer that delegates to an external AutoML
// service over HTTP.
func NewRemoteTrainer(cfg *config.TrainerConfig) ports.Trainer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Minute
	}

	return &remoteTrainer{
		baseURL: cfg.RemoteURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *remoteTrainer) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Wire structures of the AutoML service.
type trainRequest struct {
	Target              string     `json:"target"`
	CategoricalFeatures []string   `json:"categorical_features"`
	Columns             []string   `json:"columns"`
	Rows                [][]string `json:"rows"`
}

type trainResponse struct {
	Setup      []domain.SetupRow      `json:"setup"`
	Comparison []domain.ComparisonRow `json:"comparison"`
	Best       domain.BestModel       `json:"best"`
	Holdout    *domain.HoldoutMetrics `json:"holdout,omitempty"`
	// Payload is base64 encoded by encoding/json.
	Payload []byte `json:"payload"`
}

func (c *remoteTrainer) Train(ctx context.Context, ds *domain.Dataset, req domain.TrainingRequest) (*domain.TrainingResult, error) {
	body, err := json.Marshal(trainRequest{
		Target:              req.Target,
		CategoricalFeatures: req.CategoricalFeatures,
		Columns:             ds.ColumnNames(),
		Rows:                ds.Rows,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal training request: %w", err)
	}

	reqURL := c.baseURL + "/v1/automl/regression"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call automl service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: automl service returned %d: %s",
			domain.ErrTrainingFailed, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out trainResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode automl response: %w", err)
	}
	if len(out.Comparison) == 0 {
		return nil, fmt.Errorf("%w: automl service returned no models", domain.ErrTrainingFailed)
	}

	log.WithFields(log.Fields{
		"target":   req.Target,
		"model":    out.Best.Code,
		"duration": time.Since(start),
	}).Info("Remote training finished")

	return &domain.TrainingResult{
		Setup:      out.Setup,
		Comparison: out.Comparison,
		Best:       out.Best,
		Holdout:    out.Holdout,
		Payload:    out.Payload,
	}, nil
}
