package pipeline

import (
	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
)

var testSources = dataset.Sources{Housing: "housing.json", Centroids: "centroids.csv"}

// box is a Region covering lat [minLat,maxLat] x lon [minLon,maxLon].
type box struct{ minLat, maxLat, minLon, maxLon float64 }

func (b box) Contains(lat, lon float64) bool {
	return lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon
}

var denverZone = box{minLat: 39.5, maxLat: 40.0, minLon: -105.1, maxLon: -104.7}

// At $90k income with default terms: 300k is affordable, 350k a stretch,
// 550k and up unaffordable.
func testDataset() *dataset.Dataset {
	housing := &model.HousingTable{
		Meta: &model.DataMeta{ZHVIDate: "2025-06-30", ZORIDate: "2025-06-30"},
		Zips: map[string]model.ZipRecord{
			"80202": {Name: "Denver", State: "CO", MedianHomeValue: model.Float64(550000), MedianRent: model.Float64(2100)},
			"80012": {Name: "Aurora", State: "CO", MedianHomeValue: model.Float64(300000), MedianRent: model.Float64(1700)},
			"80401": {Name: "Golden", State: "CO"},
			"10001": {Name: "New York", State: "NY", MedianHomeValue: model.Float64(950000)},
			"14201": {Name: "Buffalo", State: "NY", MedianHomeValue: model.Float64(350000)},
			"44101": {Name: "Cleveland", State: "OH", MedianHomeValue: model.Float64(150000), MedianRent: model.Float64(1000)},
			"99501": {Name: "Anchorage", State: "AK", MedianHomeValue: model.Float64(300000)}, // no centroid
		},
	}
	centroids := []model.ZipCentroid{
		{Zip: "80202", Lat: 39.75, Lon: -104.99},
		{Zip: "80012", Lat: 39.70, Lon: -104.83},
		{Zip: "80401", Lat: 39.74, Lon: -105.21},
		{Zip: "80299", Lat: 39.80, Lon: -104.90}, // no housing record
		{Zip: "10001", Lat: 40.75, Lon: -73.99},
		{Zip: "14201", Lat: 42.89, Lon: -78.88},
		{Zip: "44101", Lat: 41.50, Lon: -81.69},
	}
	return dataset.NewDataset(housing, centroids)
}

func testInputs() model.AffordabilityInputs {
	in := model.DefaultInputs()
	in.AnnualIncome = model.Float64(90000)
	return in
}
