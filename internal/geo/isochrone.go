// Package geo decodes commute-zone polygons and ZIP centroid shapefiles.
package geo

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// Isochrone is a commute-zone polygon in WGS84 [lon, lat] order. Only the
// outer ring takes part in containment; holes are ignored.
type Isochrone struct {
	ring   *geom.LinearRing
	bounds *geom.Bounds
}

// NewIsochrone builds an isochrone from an outer ring of [lon, lat] pairs.
// The ring is closed if the last point does not repeat the first.
func NewIsochrone(ring [][2]float64) (*Isochrone, error) {
	if len(ring) < 3 {
		return nil, eris.Errorf("geo: isochrone ring needs at least 3 points, got %d", len(ring))
	}
	flat := make([]float64, 0, 2*(len(ring)+1))
	for _, p := range ring {
		flat = append(flat, p[0], p[1])
	}
	if ring[0] != ring[len(ring)-1] {
		flat = append(flat, ring[0][0], ring[0][1])
	}
	return fromRing(geom.NewLinearRingFlat(geom.XY, flat))
}

func fromRing(r *geom.LinearRing) (*Isochrone, error) {
	if r == nil || r.NumCoords() < 4 {
		return nil, eris.New("geo: isochrone outer ring is empty or degenerate")
	}
	return &Isochrone{ring: r, bounds: r.Bounds()}, nil
}

// ParseIsochrone decodes GeoJSON into an isochrone. It accepts a Polygon or
// MultiPolygon geometry, a Feature wrapping one, or a FeatureCollection whose
// first polygonal feature is used. For a MultiPolygon the first polygon is used.
func ParseIsochrone(data []byte) (*Isochrone, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, eris.Wrap(err, "geo: decode isochrone")
	}

	switch probe.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, eris.Wrap(err, "geo: decode isochrone feature collection")
		}
		for _, f := range fc.Features {
			if iso, err := fromGeometry(f.Geometry); err == nil {
				return iso, nil
			}
		}
		return nil, eris.New("geo: feature collection has no polygon feature")
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, eris.Wrap(err, "geo: decode isochrone feature")
		}
		return fromGeometry(f.Geometry)
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, eris.Wrap(err, "geo: decode isochrone geometry")
		}
		return fromGeometry(g)
	}
}

func fromGeometry(g geom.T) (*Isochrone, error) {
	switch t := g.(type) {
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return nil, eris.New("geo: isochrone polygon has no rings")
		}
		return fromRing(t.LinearRing(0))
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 || t.Polygon(0).NumLinearRings() == 0 {
			return nil, eris.New("geo: isochrone multipolygon is empty")
		}
		return fromRing(t.Polygon(0).LinearRing(0))
	case nil:
		return nil, eris.New("geo: isochrone has no geometry")
	default:
		return nil, eris.Errorf("geo: unsupported isochrone geometry %T", g)
	}
}

// Contains reports whether the point lies inside the outer ring or on its edge.
func (iso *Isochrone) Contains(lat, lon float64) bool {
	p := geom.Coord{lon, lat}
	if !iso.bounds.OverlapsPoint(geom.XY, p) {
		return false
	}
	return xy.IsPointInRing(iso.ring.Layout(), p, iso.ring.FlatCoords())
}

// Bounds returns the ring's bounding box as min/max lon and lat.
func (iso *Isochrone) Bounds() (minLon, minLat, maxLon, maxLat float64) {
	return iso.bounds.Min(0), iso.bounds.Min(1), iso.bounds.Max(0), iso.bounds.Max(1)
}

// Ring returns a copy of the outer ring as [lon, lat] pairs.
func (iso *Isochrone) Ring() [][2]float64 {
	coords := iso.ring.Coords()
	out := make([][2]float64, len(coords))
	for i, c := range coords {
		out[i] = [2]float64{c.X(), c.Y()}
	}
	return out
}
