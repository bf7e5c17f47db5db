package pipeline

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/report"
)

// ErrUnknownZip is returned when a ZIP has no housing record or no centroid.
var ErrUnknownZip = errors.New("unknown zip")

// BuildZipDetail prices one ZIP as it appears in the nationwide join. ok is
// false when the ZIP would not appear there.
func BuildZipDetail(ds *dataset.Dataset, zip string, in model.AffordabilityInputs) (report.EntryDetail, bool) {
	norm, ok := dataset.NormalizeZIP(zip)
	if !ok {
		return report.EntryDetail{}, false
	}
	rec, ok := ds.Housing.Zips[norm]
	if !ok {
		return report.EntryDetail{}, false
	}
	c, ok := ds.Centroid(norm)
	if !ok {
		return report.EntryDetail{}, false
	}
	entries := dataset.JoinNationwide(map[string]model.ZipRecord{norm: rec}, map[string]model.ZipCentroid{norm: c})
	return report.Detail(entries[0], in), true
}

// ZipDetail loads the dataset and prices one ZIP for the profile.
func (p *Pipeline) ZipDetail(ctx context.Context, in model.AffordabilityInputs, zip string) (*report.EntryDetail, error) {
	in = in.Normalize()
	ds, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := BuildZipDetail(ds, zip, in)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownZip, "pipeline: zip %q", zip)
	}
	return &d, nil
}
