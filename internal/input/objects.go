// Package input loads object lists for batch runs from JSON, CSV or XLSX files.
package input

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/georesolve/internal/model"
)

// Column names recognized in CSV and XLSX headers. Matching ignores case.
const (
	ColumnID     = "id"
	ColumnImages = "image_urls"
)

type record struct {
	ID        string   `json:"id"`
	ImageURLs []string `json:"image_urls"`
}

// ReadObjects loads object refs from path. The format follows the extension:
// .json takes an array of ids or of {"id", "image_urls"} objects; .csv and
// .xlsx take a header row with an id column and an optional image_urls
// column holding space or semicolon separated URLs.
func ReadObjects(path string) ([]model.ObjectRef, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err := readXLSX(path)
		if err != nil {
			return nil, err
		}
		return fromRows(rows)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "input: open csv")
		}
		defer f.Close() //nolint:errcheck
		return DecodeCSV(f)
	case ".json", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "input: open json")
		}
		defer f.Close() //nolint:errcheck
		return DecodeJSON(f)
	default:
		return nil, eris.Errorf("input: unsupported file type %q", filepath.Ext(path))
	}
}

// DecodeJSON reads a JSON array of ids or records.
func DecodeJSON(r io.Reader) ([]model.ObjectRef, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "input: decode json array")
	}

	recs := make([]record, 0, len(raw))
	for i, msg := range raw {
		var id string
		if err := json.Unmarshal(msg, &id); err == nil {
			recs = append(recs, record{ID: id})
			continue
		}
		var rec record
		if err := json.Unmarshal(msg, &rec); err != nil {
			return nil, eris.Wrapf(err, "input: element %d", i)
		}
		recs = append(recs, rec)
	}
	return toRefs(recs)
}

// DecodeCSV reads a CSV with a header row.
func DecodeCSV(r io.Reader) ([]model.ObjectRef, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "input: read csv")
	}
	return fromRows(rows)
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "input: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("input: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func fromRows(rows [][]string) ([]model.ObjectRef, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	idCol, imgCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case ColumnID:
			idCol = i
		case ColumnImages:
			imgCol = i
		}
	}
	if idCol < 0 {
		return nil, eris.Errorf("input: header has no %q column", ColumnID)
	}

	recs := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idCol >= len(row) || strings.TrimSpace(row[idCol]) == "" {
			continue
		}
		rec := record{ID: row[idCol]}
		if imgCol >= 0 && imgCol < len(row) {
			rec.ImageURLs = splitURLs(row[imgCol])
		}
		recs = append(recs, rec)
	}
	return toRefs(recs)
}

func splitURLs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// toRefs parses ids and drops duplicates, keeping the first occurrence.
func toRefs(recs []record) ([]model.ObjectRef, error) {
	seen := make(map[string]bool, len(recs))
	refs := make([]model.ObjectRef, 0, len(recs))
	for _, rec := range recs {
		ref, err := model.ParseObjectRef(rec.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "input: object %q", rec.ID)
		}
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		ref.ImageURLs = rec.ImageURLs
		refs = append(refs, ref)
	}
	return refs, nil
}
