package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/zipafford/internal/model"
)

func classified(zip string, tier model.Tier) model.ClassifiedEntry {
	return model.ClassifiedEntry{
		HousingDataEntry: model.HousingDataEntry{Zip: zip, Lat: 40, Lon: -75},
		Tier:             tier,
	}
}

func TestBuildMarkers_SkipsUnknown(t *testing.T) {
	entries := []model.ClassifiedEntry{
		classified("19101", model.TierAffordable),
		classified("19102", model.TierUnknown),
		classified("19103", model.TierStretch),
		classified("19104", model.TierUnaffordable),
	}

	markers := BuildMarkers(entries)
	assert.Len(t, markers, 3)
	for _, m := range markers {
		assert.NotEqual(t, model.TierUnknown, m.Tier)
	}
	assert.Equal(t, model.ZipMarker{Lat: 40, Lon: -75, Zip: "19103", Tier: model.TierStretch}, markers[1])
}

func TestBuildMarkers_Empty(t *testing.T) {
	markers := BuildMarkers(nil)
	assert.NotNil(t, markers)
	assert.Empty(t, markers)
}

func TestVisibleMarkers(t *testing.T) {
	markers := []model.ZipMarker{
		{Zip: "1", Tier: model.TierAffordable},
		{Zip: "2", Tier: model.TierUnaffordable},
		{Zip: "3", Tier: model.TierStretch},
	}
	original := append([]model.ZipMarker(nil), markers...)

	assert.Equal(t, markers, VisibleMarkers(markers, false))

	hidden := VisibleMarkers(markers, true)
	assert.Equal(t, []model.ZipMarker{markers[0], markers[2]}, hidden)
	assert.Equal(t, original, markers)

	// Toggling back restores the full list from the same input.
	assert.Len(t, VisibleMarkers(markers, false), 3)
}

func TestCountTiers(t *testing.T) {
	counts := CountTiers([]model.ZipMarker{
		{Tier: model.TierAffordable}, {Tier: model.TierAffordable}, {Tier: model.TierStretch},
	})
	assert.Equal(t, 2, counts[model.TierAffordable])
	assert.Equal(t, 1, counts[model.TierStretch])
	assert.Zero(t, counts[model.TierUnaffordable])
}
