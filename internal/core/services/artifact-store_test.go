package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"autostreamml/internal/core/domain"
	"autostreamml/internal/core/ports/output"
	"autostreamml/internal/testutil"
)

func TestArtifactStore_LoadDatasetAbsent(t *testing.T) {
	store := NewArtifactStore(testutil.NewMemorySlotStore())

	ds, ok, err := store.LoadDataset(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ds)
}

func TestArtifactStore_DatasetRoundTrip(t *testing.T) {
	slots := testutil.NewMemorySlotStore()
	original := testutil.SampleDataset()

	require.NoError(t, NewArtifactStore(slots).SaveDataset(context.Background(), original))

	// a fresh store over the same slots stands in for a later request
	ds, ok, err := NewArtifactStore(slots).LoadDataset(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, original.NumRows(), ds.NumRows())
	assert.Equal(t, original.ColumnNames(), ds.ColumnNames())
	assert.Equal(t, original.Rows, ds.Rows)
}

func TestArtifactStore_LastWriteWins(t *testing.T) {
	store := NewArtifactStore(testutil.NewMemorySlotStore())
	first := domain.NewDataset([]string{"a"}, [][]string{{"1"}})
	second := domain.NewDataset([]string{"b", "c"}, [][]string{{"x", "2"}, {"y", "3"}})

	require.NoError(t, store.SaveDataset(context.Background(), first))
	require.NoError(t, store.SaveDataset(context.Background(), second))

	ds, ok, err := store.LoadDataset(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.ColumnNames(), ds.ColumnNames())
	assert.Equal(t, second.Rows, ds.Rows)
}

func TestArtifactStore_ModelRoundTrip(t *testing.T) {
	store := NewArtifactStore(testutil.NewMemorySlotStore())

	_, ok, err := store.LoadModel(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	artifact := domain.NewModelArtifact("income", testutil.SampleTrainingResult())
	require.NoError(t, store.SaveModel(context.Background(), artifact))

	loaded, ok, err := store.LoadModel(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, artifact.Metadata.ID, loaded.Metadata.ID)
	assert.Equal(t, "lr", loaded.Metadata.Algorithm.Code)
	assert.Equal(t, artifact.Payload, loaded.Payload)

	blob, ok, err := store.ModelBlob(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, blob)
}

func TestArtifactStore_ReadErrorIsIOFailure(t *testing.T) {
	slots := new(testutil.MockSlotStore)
	slots.On("Read", mock.Anything, ports.SlotDataset).Return(nil, errors.New("permission denied"))

	_, ok, err := NewArtifactStore(slots).LoadDataset(context.Background())
	assert.False(t, ok)
	assert.Error(t, err)
	assert.Equal(t, domain.KindIO, domain.KindOf(err))
}

func TestArtifactStore_CorruptModelSlot(t *testing.T) {
	slots := new(testutil.MockSlotStore)
	slots.On("Read", mock.Anything, ports.SlotModel).Return([]byte("garbage"), nil)

	_, ok, err := NewArtifactStore(slots).LoadModel(context.Background())
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestArtifactStore_WriteError(t *testing.T) {
	slots := new(testutil.MockSlotStore)
	slots.On("Write", mock.Anything, ports.SlotDataset, mock.Anything).Return(errors.New("disk full"))

	err := NewArtifactStore(slots).SaveDataset(context.Background(), testutil.SampleDataset())
	assert.ErrorContains(t, err, "disk full")
	slots.AssertExpectations(t)
}
