package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/zipafford/internal/model"
)

// Sheet names in the workbook export.
const (
	StatesSheet = "States"
	ZipsSheet   = "ZIPs"
)

var (
	stateHeader = []string{"state", "state_name", "total_zips", "affordable", "stretch", "unaffordable", "pct_affordable", "median_home_value", "median_rent"}
	zipHeader   = []string{"zip", "name", "state", "lat", "lon", "tier", "median_home_value", "median_rent", "land_share_pct", "land_value_per_acre", "appreciation_5yr"}
)

func stateRow(s model.StateAffordability) []string {
	return []string{
		s.State,
		s.StateName,
		strconv.Itoa(s.TotalZips),
		strconv.Itoa(s.AffordableCount),
		strconv.Itoa(s.StretchCount),
		strconv.Itoa(s.UnaffordableCount),
		strconv.Itoa(s.PctAffordable),
		formatOptional(s.MedianHomeValue),
		formatOptional(s.MedianRent),
	}
}

func zipRow(e model.ClassifiedEntry) []string {
	return []string{
		e.Zip,
		e.Name,
		e.State,
		strconv.FormatFloat(e.Lat, 'f', 6, 64),
		strconv.FormatFloat(e.Lon, 'f', 6, 64),
		string(e.Tier),
		formatOptional(e.MedianHomeValue),
		formatOptional(e.MedianRent),
		formatOptional(e.LandSharePct),
		formatOptional(e.LandValuePerAcre),
		formatOptional(e.Appreciation5yr),
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteStatesCSV writes the state ranking as CSV with a header row.
func WriteStatesCSV(w io.Writer, states []model.StateAffordability) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stateHeader); err != nil {
		return eris.Wrap(err, "report: write states header")
	}
	for _, s := range states {
		if err := cw.Write(stateRow(s)); err != nil {
			return eris.Wrapf(err, "report: write state %s", s.State)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush states csv")
}

// WriteEntriesCSV writes classified ZIP entries as CSV with a header row.
func WriteEntriesCSV(w io.Writer, entries []model.ClassifiedEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(zipHeader); err != nil {
		return eris.Wrap(err, "report: write zip header")
	}
	for _, e := range entries {
		if err := cw.Write(zipRow(e)); err != nil {
			return eris.Wrapf(err, "report: write zip %s", e.Zip)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush zip csv")
}

// BuildWorkbook lays out the state ranking and the ZIP entries on two sheets.
// Counts are written as numbers; missing values are left blank.
func BuildWorkbook(states []model.StateAffordability, entries []model.ClassifiedEntry) (*xlsx.File, error) {
	f := xlsx.NewFile()

	ss, err := f.AddSheet(StatesSheet)
	if err != nil {
		return nil, eris.Wrap(err, "report: add states sheet")
	}
	addHeader(ss, stateHeader)
	for _, s := range states {
		row := ss.AddRow()
		row.AddCell().SetString(s.State)
		row.AddCell().SetString(s.StateName)
		row.AddCell().SetInt(s.TotalZips)
		row.AddCell().SetInt(s.AffordableCount)
		row.AddCell().SetInt(s.StretchCount)
		row.AddCell().SetInt(s.UnaffordableCount)
		row.AddCell().SetInt(s.PctAffordable)
		addOptional(row, s.MedianHomeValue)
		addOptional(row, s.MedianRent)
	}

	zs, err := f.AddSheet(ZipsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "report: add zip sheet")
	}
	addHeader(zs, zipHeader)
	for _, e := range entries {
		row := zs.AddRow()
		row.AddCell().SetString(e.Zip)
		row.AddCell().SetString(e.Name)
		row.AddCell().SetString(e.State)
		row.AddCell().SetFloat(e.Lat)
		row.AddCell().SetFloat(e.Lon)
		row.AddCell().SetString(string(e.Tier))
		addOptional(row, e.MedianHomeValue)
		addOptional(row, e.MedianRent)
		addOptional(row, e.LandSharePct)
		addOptional(row, e.LandValuePerAcre)
		addOptional(row, e.Appreciation5yr)
	}
	return f, nil
}

// WriteXLSX writes the two-sheet workbook to w.
func WriteXLSX(w io.Writer, states []model.StateAffordability, entries []model.ClassifiedEntry) error {
	f, err := BuildWorkbook(states, entries)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "report: write xlsx")
}

func addHeader(sheet *xlsx.Sheet, cols []string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}

func addOptional(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}
