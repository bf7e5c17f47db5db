package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zipafford/internal/model"
)

func entry(zip, state string, value *float64, tier model.Tier) model.ClassifiedEntry {
	return model.ClassifiedEntry{
		HousingDataEntry: model.HousingDataEntry{Zip: zip, State: state, MedianHomeValue: value},
		Tier:             tier,
	}
}

func TestAggregate_ThreeTiers(t *testing.T) {
	got := Aggregate([]model.ClassifiedEntry{
		entry("10001", "NY", model.Float64(150000), model.TierAffordable),
		entry("10002", "NY", model.Float64(250000), model.TierStretch),
		entry("10003", "NY", model.Float64(900000), model.TierUnaffordable),
	})

	require.Len(t, got, 1)
	ny := got[0]
	assert.Equal(t, "NY", ny.State)
	assert.Equal(t, "New York", ny.StateName)
	assert.Equal(t, 3, ny.TotalZips)
	assert.Equal(t, 1, ny.AffordableCount)
	assert.Equal(t, 1, ny.StretchCount)
	assert.Equal(t, 1, ny.UnaffordableCount)
	assert.Equal(t, 67, ny.PctAffordable)
	require.Len(t, ny.Entries, 2)
	assert.Equal(t, "10001", ny.Entries[0].Zip)
	assert.Equal(t, "10002", ny.Entries[1].Zip)
	assert.Equal(t, 250000.0, *ny.MedianHomeValue)
}

func TestAggregate_TotalCountsPricedOnly(t *testing.T) {
	got := Aggregate([]model.ClassifiedEntry{
		entry("73301", "TX", model.Float64(200000), model.TierAffordable),
		entry("73302", "TX", nil, model.TierUnknown),
		entry("73303", "TX", nil, model.TierUnknown),
	})

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].TotalZips)
	assert.Equal(t, 100, got[0].PctAffordable)
	assert.Len(t, got[0].Entries, 1)
}

func TestAggregate_SkipsUnknownAndEmptyStates(t *testing.T) {
	got := Aggregate([]model.ClassifiedEntry{
		entry("00000", "", model.Float64(100000), model.TierAffordable),
		entry("59001", "MT", nil, model.TierUnknown),
		entry("82001", "WY", model.Float64(300000), model.TierUnaffordable),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "WY", got[0].State)
	assert.Zero(t, got[0].PctAffordable)
	assert.Empty(t, got[0].Entries)
}

func TestAggregate_SortedDescendingStable(t *testing.T) {
	got := Aggregate([]model.ClassifiedEntry{
		entry("1", "CA", model.Float64(900000), model.TierUnaffordable),
		entry("2", "OH", model.Float64(150000), model.TierAffordable),
		entry("3", "IN", model.Float64(140000), model.TierAffordable),
		entry("4", "IA", model.Float64(130000), model.TierStretch),
		entry("5", "CA", model.Float64(500000), model.TierStretch),
	})

	var order []string
	for _, s := range got {
		order = append(order, s.State)
	}
	// OH, IN and IA tie at 100 and keep first-seen order.
	assert.Equal(t, []string{"OH", "IN", "IA", "CA"}, order)
	assert.Equal(t, 50, got[3].PctAffordable)
}

func TestAggregate_UnlistedStateKeepsAbbreviation(t *testing.T) {
	got := Aggregate([]model.ClassifiedEntry{entry("96910", "GU", model.Float64(300000), model.TierStretch)})
	require.Len(t, got, 1)
	assert.Equal(t, "GU", got[0].StateName)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPctAffordable(t *testing.T) {
	assert.Equal(t, 67, PctAffordable(1, 1, 3))
	assert.Equal(t, 33, PctAffordable(1, 0, 3))
	assert.Equal(t, 50, PctAffordable(1, 0, 2))
	assert.Equal(t, 1, PctAffordable(1, 0, 200)) // 0.5 rounds up
	assert.Equal(t, 0, PctAffordable(0, 0, 0))
}

func TestDrillDown(t *testing.T) {
	meta := &model.DataMeta{ZHVIDate: "2025-06-30"}
	entries := []model.ClassifiedEntry{
		entry("10001", "NY", model.Float64(100000), model.TierAffordable),
		entry("07001", "NJ", model.Float64(400000), model.TierStretch),
		entry("10002", "NY", nil, model.TierUnknown),
		entry("10003", "NY", model.Float64(300000), model.TierUnaffordable),
	}

	got := DrillDown(entries, "ny", meta)

	assert.Equal(t, 3, got.ZipCount)
	assert.Equal(t, 200000.0, *got.MedianHomeValue)
	assert.Equal(t, 100000.0, *got.MinHomeValue)
	assert.Equal(t, 300000.0, *got.MaxHomeValue)
	assert.Same(t, meta, got.Meta)

	none := DrillDown(entries, "VT", nil)
	assert.Zero(t, none.ZipCount)
	assert.Empty(t, none.Entries)
}
