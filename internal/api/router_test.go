package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/pipeline"
	"github.com/sells-group/zipafford/internal/report"
	"github.com/sells-group/zipafford/internal/store"
)

type fixedLoader struct {
	ds    *dataset.Dataset
	calls int
}

func (l *fixedLoader) Load(_ context.Context, _ dataset.Sources) (*dataset.Dataset, error) {
	l.calls++
	return l.ds, nil
}

func testDataset() *dataset.Dataset {
	housing := &model.HousingTable{
		Meta: &model.DataMeta{ZHVIDate: "2025-06-30", ZORIDate: "2025-06-30"},
		Zips: map[string]model.ZipRecord{
			"80202": {Name: "Denver", State: "CO", MedianHomeValue: model.Float64(550000), MedianRent: model.Float64(2100)},
			"80012": {Name: "Aurora", State: "CO", MedianHomeValue: model.Float64(300000), MedianRent: model.Float64(1700)},
			"44101": {Name: "Cleveland", State: "OH", MedianHomeValue: model.Float64(150000), MedianRent: model.Float64(1000)},
		},
	}
	centroids := []model.ZipCentroid{
		{Zip: "80202", Lat: 39.75, Lon: -104.99},
		{Zip: "80012", Lat: 39.70, Lon: -104.83},
		{Zip: "44101", Lat: 41.50, Lon: -81.69},
	}
	return dataset.NewDataset(housing, centroids)
}

const denverIsochrone = `{"type":"Polygon","coordinates":[[[-105.1,39.5],[-104.7,39.5],[-104.7,40.0],[-105.1,40.0],[-105.1,39.5]]]}`

func testDefaults() model.AffordabilityInputs {
	in := model.DefaultInputs()
	in.AnnualIncome = model.Float64(90000)
	return in
}

func newTestServer(t *testing.T, st store.Store) (*httptest.Server, *fixedLoader) {
	t.Helper()
	loader := &fixedLoader{ds: testDataset()}
	p := pipeline.New(loader, dataset.Sources{Housing: "housing.json", Centroids: "centroids.csv"}, st)
	srv := httptest.NewServer(NewRouter(Options{
		Pipeline:       p,
		Store:          st,
		Cache:          dataset.NewTableCache(4, 0),
		Defaults:       testDefaults(),
		AllowedOrigins: []string{"https://app.example.com"},
	}))
	t.Cleanup(srv.Close)
	return srv, loader
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/max-price", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close() //nolint:errcheck
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestMaxPrice(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	t.Run("defaults", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/max-price", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var a report.Affordability
		decode(t, resp, &a)
		assert.Greater(t, a.MaxHomePrice, 300000.0)
		require.NotNil(t, a.EffectiveMaxPrice)
		assert.False(t, a.ManualOverride)
	})

	t.Run("manual override", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/max-price",
			`{"inputs":{"manual_max_price":425000,"use_manual_max_price":true}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var a report.Affordability
		decode(t, resp, &a)
		require.NotNil(t, a.EffectiveMaxPrice)
		assert.Equal(t, 425000.0, *a.EffectiveMaxPrice)
		assert.True(t, a.ManualOverride)
	})

	t.Run("no income", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/max-price", `{"inputs":{"annual_income":null}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var a report.Affordability
		decode(t, resp, &a)
		assert.Nil(t, a.EffectiveMaxPrice)
		assert.Zero(t, a.MaxHomePrice)
	})

	t.Run("bad body", func(t *testing.T) {
		resp := do(t, http.MethodPost, srv.URL+"/api/max-price", `{"inputs":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMaxPrice_RequestsDoNotLeakIntoDefaults(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/max-price", `{"inputs":{"annual_income":250000}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/max-price", "")
	var a report.Affordability
	decode(t, resp, &a)
	assert.Less(t, a.MaxHomePrice, 400000.0)
}

func TestTier(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		body string
		want model.Tier
	}{
		{body: `{"price":300000}`, want: model.TierAffordable},
		{body: `{"price":350000}`, want: model.TierStretch},
		{body: `{"price":550000}`, want: model.TierUnaffordable},
		{body: `{"price":120000,"inputs":{"annual_income":60000,"monthly_spending":3500,"include_spending":true}}`, want: model.TierUnaffordable},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/api/tier", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var c report.PriceCheck
			decode(t, resp, &c)
			assert.Equal(t, tt.want, c.Tier)
		})
	}

	resp := do(t, http.MethodPost, srv.URL+"/api/tier", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNationwide(t *testing.T) {
	srv, loader := newTestServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/nationwide", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res pipeline.NationwideResult
	decode(t, resp, &res)
	assert.Equal(t, 3, res.ZipCount)
	require.Len(t, res.States, 2)
	assert.Equal(t, "OH", res.States[0].State)
	assert.Equal(t, 100, res.States[0].PctAffordable)
	assert.Equal(t, "CO", res.States[1].State)
	assert.Equal(t, 50, res.States[1].PctAffordable)
	assert.Empty(t, res.RunID)
	assert.Equal(t, 1, loader.calls)
}

func TestStateDetail(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/nationwide/states/co?annual_income=200000", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res pipeline.StateDetailResult
	decode(t, resp, &res)
	assert.Equal(t, "CO", res.State.Abbr)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 100, res.Summary.PctAffordable)
	assert.Len(t, res.Details, 2)

	resp = do(t, http.MethodGet, srv.URL+"/api/nationwide/states/ZZ", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/nationwide/states/CO?annual_income=lots", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestZipDetail(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/zips/80012", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var d report.EntryDetail
	decode(t, resp, &d)
	assert.Equal(t, "Aurora", d.Name)
	assert.Equal(t, model.TierAffordable, d.Tier)
	require.NotNil(t, d.Payment)
	require.NotNil(t, d.RentToOwn)

	resp = do(t, http.MethodGet, srv.URL+"/api/zips/99999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommute(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/commute",
		`{"isochrone":`+denverIsochrone+`,"hide_unaffordable":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res pipeline.CommuteResult
	decode(t, resp, &res)
	assert.Equal(t, 2, res.Stats.ZipCount)
	require.Len(t, res.Markers, 1)
	assert.Equal(t, "80012", res.Markers[0].Zip)
	assert.Equal(t, 1, res.HiddenCount)

	resp = do(t, http.MethodPost, srv.URL+"/api/commute", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/commute", `{"isochrone":{"type":"Point","coordinates":[1,2]}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCacheStats(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/cache/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats dataset.CacheStats
	decode(t, resp, &stats)
	assert.Equal(t, 4, stats.MaxEntries)
}

func TestStoreEndpoints_WithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/profiles", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestProfiles(t *testing.T) {
	srv, _ := newTestServer(t, newTestStore(t))

	resp := do(t, http.MethodPut, srv.URL+"/api/profiles/family", `{"inputs":{"annual_income":150000,"down_payment_pct":1}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved model.Profile
	decode(t, resp, &saved)
	assert.Equal(t, "family", saved.Name)
	require.NotNil(t, saved.Inputs.AnnualIncome)
	assert.Equal(t, 150000.0, *saved.Inputs.AnnualIncome)
	assert.Equal(t, model.MinDownPaymentPct, saved.Inputs.DownPaymentPct, "inputs are normalized")

	resp = do(t, http.MethodGet, srv.URL+"/api/profiles/family", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/profiles", "")
	var list struct {
		Items []model.Profile `json:"items"`
	}
	decode(t, resp, &list)
	assert.Len(t, list.Items, 1)

	resp = do(t, http.MethodDelete, srv.URL+"/api/profiles/family", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/profiles/family", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/api/profiles/family", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRuns(t *testing.T) {
	srv, _ := newTestServer(t, newTestStore(t))

	resp := do(t, http.MethodPost, srv.URL+"/api/nationwide", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res pipeline.NationwideResult
	decode(t, resp, &res)
	require.NotEmpty(t, res.RunID)

	resp = do(t, http.MethodPost, srv.URL+"/api/commute", `{"isochrone":`+denverIsochrone+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/runs?mode=nationwide", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []model.Run `json:"items"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, res.RunID, list.Items[0].ID)
	assert.Equal(t, 2, list.Items[0].StateCount)

	resp = do(t, http.MethodGet, srv.URL+"/api/runs/"+res.RunID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		ID     string                     `json:"id"`
		States []model.StateAffordability `json:"states"`
	}
	decode(t, resp, &detail)
	assert.Equal(t, res.RunID, detail.ID)
	require.Len(t, detail.States, 2)
	assert.Equal(t, "OH", detail.States[0].State)

	resp = do(t, http.MethodGet, srv.URL+"/api/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/runs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
