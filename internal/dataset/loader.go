// Package dataset loads the raw housing and centroid tables and joins them
// into per-ZIP entries, either inside a commute zone or nationwide.
package dataset

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/zipafford/internal/fetcher"
	"github.com/sells-group/zipafford/internal/geo"
	"github.com/sells-group/zipafford/internal/model"
)

// Sources names where each raw table comes from. Each value is a local path
// or an HTTP(S) URL.
type Sources struct {
	Housing       string // housing JSON: {"meta": {...}, "zips": {...}}
	Centroids     string // centroid CSV (zip,lat,lon) or JSON array
	ZCTAShapefile string // TIGER ZCTA .shp or .zip; replaces Centroids when set
}

// Dataset is the pair of raw tables the joins run over.
type Dataset struct {
	Housing   *model.HousingTable
	Centroids []model.ZipCentroid
	byZip     map[string]model.ZipCentroid
}

// NewDataset indexes centroids by ZIP. A nil housing table is treated as empty.
func NewDataset(housing *model.HousingTable, centroids []model.ZipCentroid) *Dataset {
	if housing == nil {
		housing = &model.HousingTable{}
	}
	if housing.Zips == nil {
		housing.Zips = map[string]model.ZipRecord{}
	}
	return &Dataset{Housing: housing, Centroids: centroids, byZip: IndexCentroids(centroids)}
}

// Centroid returns the centroid for a ZIP.
func (d *Dataset) Centroid(zip string) (model.ZipCentroid, bool) {
	c, ok := d.byZip[zip]
	return c, ok
}

// MissingCentroids counts housing records with no centroid. Those ZIPs are
// absent from nationwide output.
func (d *Dataset) MissingCentroids() int {
	var n int
	for zip := range d.Housing.Zips {
		if _, ok := d.byZip[zip]; !ok {
			n++
		}
	}
	return n
}

// Loader reads raw tables through a fetcher and keeps them in a shared cache.
type Loader struct {
	fetcher fetcher.Fetcher
	cache   *TableCache
	tempDir string
}

// NewLoader creates a Loader. cache may be nil to disable caching.
func NewLoader(f fetcher.Fetcher, cache *TableCache, tempDir string) *Loader {
	return &Loader{fetcher: f, cache: cache, tempDir: tempDir}
}

// Load reads the housing and centroid tables concurrently.
func (l *Loader) Load(ctx context.Context, src Sources) (*Dataset, error) {
	var (
		housing   *model.HousingTable
		centroids []model.ZipCentroid
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		housing, err = l.LoadHousing(gctx, src.Housing)
		return err
	})
	g.Go(func() error {
		var err error
		centroids, err = l.LoadCentroids(gctx, src)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := NewDataset(housing, centroids)
	zap.L().With(zap.String("component", "dataset.loader")).Info("dataset ready",
		zap.Int("zip_count", len(ds.Housing.Zips)),
		zap.Int("centroid_count", len(ds.Centroids)),
	)
	if missing := ds.MissingCentroids(); missing > 0 {
		zap.L().Debug("housing ZIPs without centroid are excluded from nationwide results",
			zap.Int("missing_centroids", missing),
		)
	}
	return ds, nil
}

// LoadHousing reads the housing table from source, normalising ZIP keys to five digits.
func (l *Loader) LoadHousing(ctx context.Context, source string) (*model.HousingTable, error) {
	return cached(ctx, l.cache, "housing:"+source, func(ctx context.Context) (*model.HousingTable, error) {
		rc, err := fetcher.Open(ctx, l.fetcher, source)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: open housing table")
		}
		defer rc.Close() //nolint:errcheck

		raw, err := fetcher.DecodeJSONObject[model.HousingTable](rc)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode housing table")
		}

		table := &model.HousingTable{Meta: raw.Meta, Zips: make(map[string]model.ZipRecord, len(raw.Zips))}
		var dropped int
		for key, rec := range raw.Zips {
			zip, ok := NormalizeZIP(key)
			if !ok {
				dropped++
				continue
			}
			rec.State = strings.ToUpper(strings.TrimSpace(rec.State))
			table.Zips[zip] = rec
		}
		if dropped > 0 {
			zap.L().Warn("dataset: dropped housing records with malformed ZIP", zap.Int("dropped", dropped))
		}
		if len(table.Zips) > 0 && pricedRecords(table.Zips) == 0 {
			zap.L().Warn("dataset: housing table has no record with a median home value",
				zap.String("source", source),
				zap.Int("zip_count", len(table.Zips)),
			)
		}
		return table, nil
	})
}

func pricedRecords(zips map[string]model.ZipRecord) int {
	var n int
	for _, rec := range zips {
		if rec.MedianHomeValue != nil {
			n++
		}
	}
	return n
}

// LoadCentroids reads the centroid table, preferring the ZCTA shapefile when configured.
func (l *Loader) LoadCentroids(ctx context.Context, src Sources) ([]model.ZipCentroid, error) {
	if src.ZCTAShapefile != "" {
		return cached(ctx, l.cache, "zcta:"+src.ZCTAShapefile, func(ctx context.Context) ([]model.ZipCentroid, error) {
			cs, err := geo.LoadZCTACentroids(ctx, l.fetcher, src.ZCTAShapefile, l.tempDir)
			if err != nil {
				return nil, eris.Wrap(err, "dataset: load ZCTA centroids")
			}
			return dedupeCentroids(cs), nil
		})
	}

	return cached(ctx, l.cache, "centroids:"+src.Centroids, func(ctx context.Context) ([]model.ZipCentroid, error) {
		rc, err := fetcher.Open(ctx, l.fetcher, src.Centroids)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: open centroid table")
		}
		defer rc.Close() //nolint:errcheck

		var cs []model.ZipCentroid
		if strings.EqualFold(filepath.Ext(strings.SplitN(src.Centroids, "?", 2)[0]), ".json") {
			cs, err = readCentroidJSON(ctx, rc)
		} else {
			cs, err = readCentroidCSV(ctx, rc)
		}
		if err != nil {
			return nil, eris.Wrap(err, "dataset: load centroids")
		}
		return dedupeCentroids(cs), nil
	})
}

// NormalizeZIP zero-pads a numeric ZIP to five digits. ZIP+4 suffixes are dropped.
func NormalizeZIP(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '-'); i > 0 {
		s = s[:i]
	}
	if s == "" || len(s) > 5 {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return strings.Repeat("0", 5-len(s)) + s, true
}

// IndexCentroids maps each ZIP to its centroid. The first centroid for a ZIP wins.
func IndexCentroids(cs []model.ZipCentroid) map[string]model.ZipCentroid {
	idx := make(map[string]model.ZipCentroid, len(cs))
	for _, c := range cs {
		if _, ok := idx[c.Zip]; !ok {
			idx[c.Zip] = c
		}
	}
	return idx
}

func dedupeCentroids(cs []model.ZipCentroid) []model.ZipCentroid {
	seen := make(map[string]struct{}, len(cs))
	out := cs[:0]
	for _, c := range cs {
		if _, ok := seen[c.Zip]; ok {
			continue
		}
		seen[c.Zip] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Accepted header names for the centroid CSV columns.
var (
	zipColumns = []string{"zip", "zcta", "zipcode", "zip_code"}
	latColumns = []string{"lat", "latitude"}
	lonColumns = []string{"lon", "lng", "long", "longitude"}
)

func readCentroidCSV(ctx context.Context, r io.Reader) ([]model.ZipCentroid, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HeaderCh:  headerCh,
		TrimSpace: true,
		Required:  [][]string{zipColumns, latColumns, lonColumns},
	})

	var (
		out     []model.ZipCentroid
		skipped int
	)
	zipCol, latCol, lonCol := -1, -1, -1
	for row := range rowCh {
		if zipCol < 0 {
			idx := fetcher.HeaderIndex(<-headerCh)
			zipCol = fetcher.Column(idx, zipColumns...)
			latCol = fetcher.Column(idx, latColumns...)
			lonCol = fetcher.Column(idx, lonColumns...)
		}

		c, ok := parseCentroidRow(row, zipCol, latCol, lonCol)
		if !ok {
			skipped++
			continue
		}
		out = append(out, c)
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "dataset: centroid CSV needs zip, lat and lon columns")
		}
	}
	if skipped > 0 {
		zap.L().Debug("dataset: skipped malformed centroid rows", zap.Int("skipped", skipped))
	}
	return out, nil
}

func parseCentroidRow(row []string, zipCol, latCol, lonCol int) (model.ZipCentroid, bool) {
	if zipCol >= len(row) || latCol >= len(row) || lonCol >= len(row) {
		return model.ZipCentroid{}, false
	}
	zip, ok := NormalizeZIP(row[zipCol])
	if !ok {
		return model.ZipCentroid{}, false
	}
	lat, err := strconv.ParseFloat(row[latCol], 64)
	if err != nil || lat < -90 || lat > 90 {
		return model.ZipCentroid{}, false
	}
	lon, err := strconv.ParseFloat(row[lonCol], 64)
	if err != nil || lon < -180 || lon > 180 {
		return model.ZipCentroid{}, false
	}
	return model.ZipCentroid{Zip: zip, Lat: lat, Lon: lon}, true
}

func readCentroidJSON(ctx context.Context, r io.Reader) ([]model.ZipCentroid, error) {
	ch, errCh := fetcher.DecodeJSONArray[model.ZipCentroid](ctx, r)
	var out []model.ZipCentroid
	for c := range ch {
		zip, ok := NormalizeZIP(c.Zip)
		if !ok {
			continue
		}
		c.Zip = zip
		out = append(out, c)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
