package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/georesolve/internal/model"
)

// Sheet names in the audit workbook.
const (
	SheetResolutions = "resolutions"
	SheetRejections  = "rejections"
)

var resolutionHeader = []string{
	"id", "region_code", "lat", "lng", "confidence", "source", "address",
	"address_geocoded", "coherence", "coherence_distance_m", "exhausted",
	"exhausted_at", "resolved_at",
}

var rejectionHeader = []string{
	"id", "provider", "reason", "lat", "lng", "distance_m", "detail",
}

// WriteWorkbook saves an audit workbook at path with one row per resolution
// and one row per rejected candidate.
func WriteWorkbook(path string, locs []model.ResolvedLocation) error {
	f, err := Workbook(locs)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save workbook")
	}
	return nil
}

// Workbook builds the audit workbook in memory.
func Workbook(locs []model.ResolvedLocation) (*xlsx.File, error) {
	f := xlsx.NewFile()

	res, err := f.AddSheet(SheetResolutions)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add resolutions sheet")
	}
	rej, err := f.AddSheet(SheetRejections)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add rejections sheet")
	}

	addStrings(res.AddRow(), resolutionHeader)
	addStrings(rej.AddRow(), rejectionHeader)

	for i := range locs {
		loc := &locs[i]
		resolutionRow(res.AddRow(), loc)
		for _, r := range loc.Rejected {
			rejectionRow(rej.AddRow(), loc.Object.ID, r)
		}
	}
	return f, nil
}

func resolutionRow(row *xlsx.Row, loc *model.ResolvedLocation) {
	row.AddCell().SetString(loc.Object.ID)
	row.AddCell().SetString(loc.Object.RegionCode)
	if loc.HasCoordinate() {
		row.AddCell().SetFloat(loc.Coordinate.Lat)
		row.AddCell().SetFloat(loc.Coordinate.Lng)
	} else {
		addStrings(row, []string{"", ""})
	}
	row.AddCell().SetString(string(loc.Confidence))
	row.AddCell().SetString(loc.Source)
	row.AddCell().SetString(loc.Address)
	row.AddCell().SetBool(loc.AddressGeocoded)

	if loc.Coherence != nil {
		row.AddCell().SetString(string(loc.Coherence.Status))
		floatCell(row, loc.Coherence.DistanceMeters)
	} else {
		row.AddCell().SetString("")
		row.AddCell().SetString("")
	}

	row.AddCell().SetBool(loc.Exhausted)
	row.AddCell().SetString(timeString(loc.ExhaustedAt))
	row.AddCell().SetString(loc.ResolvedAt.UTC().Format(time.RFC3339))
}

func rejectionRow(row *xlsx.Row, id string, r model.Rejection) {
	row.AddCell().SetString(id)
	row.AddCell().SetString(r.Provider)
	row.AddCell().SetString(string(r.Reason))
	if r.Coordinate != nil {
		row.AddCell().SetFloat(r.Coordinate.Lat)
		row.AddCell().SetFloat(r.Coordinate.Lng)
	} else {
		row.AddCell().SetString("")
		row.AddCell().SetString("")
	}
	floatCell(row, r.DistanceMeters)
	row.AddCell().SetString(r.Detail)
}

func addStrings(row *xlsx.Row, vals []string) {
	for _, v := range vals {
		row.AddCell().SetString(v)
	}
}

func floatCell(row *xlsx.Row, v *float64) {
	if v == nil {
		row.AddCell().SetString("")
		return
	}
	row.AddCell().SetFloat(*v)
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
