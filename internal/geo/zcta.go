package geo

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/fetcher"
	"github.com/sells-group/zipafford/internal/model"
)

// Attribute names used by the Census TIGER ZCTA shapefiles across vintages.
var (
	zctaFields   = []string{"ZCTA5CE20", "ZCTA5CE10", "GEOID20", "GEOID10", "ZCTA5CE"}
	intptLatKeys = []string{"INTPTLAT20", "INTPTLAT10", "INTPTLAT"}
	intptLonKeys = []string{"INTPTLON20", "INTPTLON10", "INTPTLON"}
)

// LoadZCTACentroids reads ZIP centroids from a TIGER ZCTA shapefile. source may be
// a .shp path, a .zip archive containing one, or an HTTP(S) URL to either;
// archives are extracted under tempDir. The Census internal point is used
// when present, otherwise the centre of the shape's bounding box.
func LoadZCTACentroids(ctx context.Context, f fetcher.Fetcher, source, tempDir string) ([]model.ZipCentroid, error) {
	log := zap.L().With(zap.String("component", "geo.zcta"))

	local, err := fetcher.Localize(ctx, f, source, tempDir)
	if err != nil {
		return nil, eris.Wrap(err, "geo: fetch ZCTA shapefile")
	}

	shpPath := local
	if strings.EqualFold(filepath.Ext(local), ".zip") {
		dir, err := os.MkdirTemp(tempDir, "zcta-")
		if err != nil {
			return nil, eris.Wrap(err, "geo: create extract dir")
		}
		defer os.RemoveAll(dir) //nolint:errcheck

		files, err := fetcher.ExtractZIP(local, dir)
		if err != nil {
			return nil, eris.Wrap(err, "geo: extract ZCTA archive")
		}
		var ok bool
		if shpPath, ok = fetcher.FindByExt(files, ".shp"); !ok {
			return nil, eris.Errorf("geo: no .shp file in %s", local)
		}
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrap(err, "geo: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	zipIdx := firstField(reader, zctaFields)
	if zipIdx < 0 {
		return nil, eris.Errorf("geo: shapefile has no ZCTA code field (tried %s)", strings.Join(zctaFields, ", "))
	}
	latIdx := firstField(reader, intptLatKeys)
	lonIdx := firstField(reader, intptLonKeys)

	var (
		out      []model.ZipCentroid
		fromBBox int
		skipped  int
	)
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "geo: load ZCTA centroids")
		}

		_, shape := reader.Shape()
		zip := strings.TrimSpace(reader.Attribute(zipIdx))
		if len(zip) != 5 {
			skipped++
			continue
		}

		lat, latOK := parseCoord(reader, latIdx)
		lon, lonOK := parseCoord(reader, lonIdx)
		if !latOK || !lonOK {
			if shape == nil {
				skipped++
				continue
			}
			box := shape.BBox()
			lat, lon = (box.MinY+box.MaxY)/2, (box.MinX+box.MaxX)/2
			fromBBox++
		}
		out = append(out, model.ZipCentroid{Zip: zip, Lat: lat, Lon: lon})
	}

	log.Info("ZCTA centroids loaded",
		zap.Int("centroids", len(out)),
		zap.Int("from_bbox", fromBBox),
		zap.Int("skipped", skipped),
	)
	return out, nil
}

// firstField returns the index of the first name present in the shapefile, or -1.
func firstField(reader *shp.Reader, names []string) int {
	for _, name := range names {
		if i := fieldIndex(reader, name); i >= 0 {
			return i
		}
	}
	return -1
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// parseCoord reads a TIGER internal-point attribute such as "+40.7506".
func parseCoord(reader *shp.Reader, idx int) (float64, bool) {
	if idx < 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(reader.Attribute(idx)), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
