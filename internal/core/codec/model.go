package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"autostreamml/internal/core/domain"
)

const modelEnvelopeVersion = 1

type modelEnvelope struct {
	Version  int
	Metadata domain.ModelMetadata
	Payload  []byte
}

func EncodeModel(artifact *domain.ModelArtifact) ([]byte, error) {
	var buf bytes.Buffer
	env := modelEnvelope{
		Version:  modelEnvelopeVersion,
		Metadata: artifact.Metadata,
		Payload:  artifact.Payload,
	}
	if err := gob.NewEncoder(&buf).Encode(&env); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeModel(data []byte) (*domain.ModelArtifact, error) {
	var env modelEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if env.Version != modelEnvelopeVersion {
		return nil, fmt.Errorf("decode model: unsupported envelope version %d", env.Version)
	}
	return &domain.ModelArtifact{Metadata: env.Metadata, Payload: env.Payload}, nil
}
