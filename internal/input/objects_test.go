package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/georesolve/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ids(refs []model.ObjectRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.ID
	}
	return out
}

func TestDecodeJSON_Mixed(t *testing.T) {
	refs, err := DecodeJSON(strings.NewReader(`["pa-1", {"id": "LDN_12", "image_urls": ["https://img/1.jpg"]}, "PA_1"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"PA_1", "LDN_12"}, ids(refs))
	assert.Equal(t, "LDN", refs[1].RegionCode)
	assert.Equal(t, []string{"https://img/1.jpg"}, refs[1].ImageURLs)
}

func TestDecodeJSON_Errors(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"id": "PA_1"}`))
	require.Error(t, err)

	_, err = DecodeJSON(strings.NewReader(`["PA_1", 42]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 1")

	_, err = DecodeJSON(strings.NewReader(`["not an id"]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedObject))
}

func TestDecodeCSV(t *testing.T) {
	refs, err := DecodeCSV(strings.NewReader("Image_URLs,ID\nhttps://a/1.jpg;https://a/2.jpg,pa_3\n,\n,ldn-4\n"))
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "PA_3", refs[0].ID)
	assert.Equal(t, []string{"https://a/1.jpg", "https://a/2.jpg"}, refs[0].ImageURLs)
	assert.Equal(t, "LDN_4", refs[1].ID)
	assert.Nil(t, refs[1].ImageURLs)
}

func TestDecodeCSV_MissingIDColumn(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("name\nPA_1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no "id" column`)
}

func TestReadObjects_Files(t *testing.T) {
	jsonPath := writeFile(t, "objects.json", `["PA_1","PA_2"]`)
	refs, err := ReadObjects(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"PA_1", "PA_2"}, ids(refs))

	csvPath := writeFile(t, "objects.CSV", "id\nSPACE_7\n")
	refs, err = ReadObjects(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPACE_7"}, ids(refs))

	_, err = ReadObjects(writeFile(t, "objects.txt", "PA_1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ReadObjects(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestReadObjects_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("objects")
	require.NoError(t, err)
	for _, vals := range [][]string{{"id", "image_urls"}, {"PA_10", "https://a/10.jpg"}, {"PA_11", ""}} {
		row := sheet.AddRow()
		for _, v := range vals {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "objects.xlsx")
	require.NoError(t, f.Save(path))

	refs, err := ReadObjects(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"PA_10", "PA_11"}, ids(refs))
	assert.Equal(t, []string{"https://a/10.jpg"}, refs[0].ImageURLs)
	assert.Nil(t, refs[1].ImageURLs)
}
