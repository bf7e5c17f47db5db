package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zipafford/internal/model"
)

func TestBuildCommute(t *testing.T) {
	res := BuildCommute(testDataset(), denverZone, testInputs(), false)

	// Denver, Aurora and the record-less centroid.
	assert.Equal(t, 3, res.Stats.ZipCount)
	assert.Len(t, res.Stats.Entries, 3)
	assert.Len(t, res.Markers, 2)
	assert.Zero(t, res.HiddenCount)
	assert.Equal(t, 1, res.TierCounts[model.TierAffordable])
	assert.Equal(t, 1, res.TierCounts[model.TierUnaffordable])

	require.Len(t, res.States, 1)
	assert.Equal(t, "CO", res.States[0].State)
}

func TestBuildCommute_HideUnaffordable(t *testing.T) {
	res := BuildCommute(testDataset(), denverZone, testInputs(), true)

	require.Len(t, res.Markers, 1)
	assert.Equal(t, "80012", res.Markers[0].Zip)
	assert.Equal(t, 1, res.HiddenCount)
	assert.Len(t, res.AllMarkers, 2)
	assert.Equal(t, 1, res.TierCounts[model.TierUnaffordable], "counts cover hidden markers")
}

func TestCommuteResult_Toggle(t *testing.T) {
	res := BuildCommute(testDataset(), denverZone, testInputs(), true)
	before := res.Stats

	res.Toggle(false)
	assert.Len(t, res.Markers, 2)
	assert.Zero(t, res.HiddenCount)

	res.Toggle(true)
	assert.Len(t, res.Markers, 1)
	assert.Equal(t, before, res.Stats)
}

func TestBuildCommute_EmptyZone(t *testing.T) {
	nowhere := box{minLat: 0, maxLat: 1, minLon: 0, maxLon: 1}
	res := BuildCommute(testDataset(), nowhere, testInputs(), false)

	assert.Zero(t, res.Stats.ZipCount)
	assert.Nil(t, res.Stats.MedianHomeValue)
	assert.Empty(t, res.Markers)
	assert.Empty(t, res.States)
}

func TestPipeline_Commute_RecordsRun(t *testing.T) {
	loader := new(mockLoader)
	st := new(mockStore)
	loader.On("Load", mock.Anything, testSources).Return(testDataset(), nil)
	st.On("RecordRun", mock.Anything, mock.MatchedBy(func(run model.Run) bool {
		return run.Mode == model.RunModeCommute && run.ZipCount == 3
	}), mock.Anything).Return(&model.Run{ID: "run-7"}, nil)

	res, err := New(loader, testSources, st).Commute(context.Background(), denverZone, testInputs(), false)
	require.NoError(t, err)
	assert.Equal(t, "run-7", res.RunID)
	st.AssertExpectations(t)
}
