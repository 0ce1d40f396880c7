package automl

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"autostreamml/internal/core/domain"
)

// Pipeline is the finalized preprocessing plus estimator. It is what the
// model slot carries as its payload.
type Pipeline struct {
	Target       string
	Code         string
	Name         string
	Preprocessor *Preprocessor
	Estimator    Estimator
}

// Predict scores every row of ds. The target column may be absent. This is
// how a downloaded best_model.gob is used: codec.DecodeModel yields the
// artifact, DecodePipeline its payload, then Predict.
func (p *Pipeline) Predict(ds *domain.Dataset) ([]float64, error) {
	if ds.NumRows() == 0 {
		return nil, nil
	}
	index := columnIndex(ds)
	X, err := p.Preprocessor.Transform(ds.Rows, index)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return p.Estimator.Predict(X), nil
}

func EncodePipeline(p *Pipeline) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encode pipeline: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePipeline restores a pipeline from a model artifact payload, as read
// from best_model.gob with codec.DecodeModel.
func DecodePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	if p.Preprocessor == nil || p.Estimator == nil {
		return nil, fmt.Errorf("decode pipeline: incomplete payload")
	}
	return &p, nil
}

func columnIndex(ds *domain.Dataset) map[string]int {
	index := make(map[string]int, ds.NumColumns())
	for j, c := range ds.Columns {
		index[c.Name] = j
	}
	return index
}
