package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   *float64
	}{
		{name: "empty", values: nil, want: nil},
		{name: "empty non-nil", values: []float64{}, want: nil},
		{name: "single", values: []float64{5}, want: ptr(5)},
		{name: "even", values: []float64{1, 2, 3, 4}, want: ptr(2.5)},
		{name: "odd unsorted", values: []float64{9, 1, 5}, want: ptr(5)},
		{name: "even unsorted", values: []float64{400, 100, 300, 200}, want: ptr(250)},
		{name: "duplicates", values: []float64{7, 7, 7, 1}, want: ptr(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Median(tt.values)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestMinMax(t *testing.T) {
	assert.Nil(t, Min(nil))
	assert.Nil(t, Max(nil))

	values := []float64{42, -3, 17}
	assert.Equal(t, -3.0, *Min(values))
	assert.Equal(t, 42.0, *Max(values))
	assert.Equal(t, []float64{42, -3, 17}, values)
}

func TestPresent(t *testing.T) {
	items := []*float64{ptr(1), nil, ptr(3), nil}
	got := Present(items, func(p *float64) *float64 { return p })
	assert.Equal(t, []float64{1, 3}, got)

	assert.Empty(t, Present([]*float64{nil}, func(p *float64) *float64 { return p }))
}

func ptr(v float64) *float64 { return &v }
