package provider

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/model"
)

type ifdEntry struct {
	tag, typ uint16
	count    uint32
	value    [4]byte
}

func inlineASCII(s string) [4]byte {
	var v [4]byte
	copy(v[:], s)
	return v
}

func offset(o uint32) [4]byte {
	var v [4]byte
	binary.BigEndian.PutUint32(v[:], o)
	return v
}

// gpsTIFF encodes a minimal big-endian TIFF whose only payload is a GPS IFD
// at 48°51'23.76"N 2°21'7.92"E.
func gpsTIFF(t *testing.T, latRef, lngRef string) []byte {
	t.Helper()
	const (
		ifd0   = 8
		gpsIFD = ifd0 + 2 + 12 + 4
		latOff = gpsIFD + 2 + 4*12 + 4
		lngOff = latOff + 24
	)

	var buf bytes.Buffer
	w := func(v any) { require.NoError(t, binary.Write(&buf, binary.BigEndian, v)) }
	dir := func(entries []ifdEntry) {
		w(uint16(len(entries)))
		for _, e := range entries {
			w(e.tag)
			w(e.typ)
			w(e.count)
			w(e.value)
		}
		w(uint32(0))
	}

	buf.WriteString("MM")
	w(uint16(42))
	w(uint32(ifd0))
	dir([]ifdEntry{{tag: 0x8825, typ: 4, count: 1, value: offset(gpsIFD)}})
	dir([]ifdEntry{
		{tag: 0x0001, typ: 2, count: 2, value: inlineASCII(latRef)},
		{tag: 0x0002, typ: 5, count: 3, value: offset(latOff)},
		{tag: 0x0003, typ: 2, count: 2, value: inlineASCII(lngRef)},
		{tag: 0x0004, typ: 5, count: 3, value: offset(lngOff)},
	})
	for _, r := range [][2]uint32{{48, 1}, {51, 1}, {2376, 100}, {2, 1}, {21, 1}, {792, 100}} {
		w(r[0])
		w(r[1])
	}
	return buf.Bytes()
}

func TestGPSFromEXIF(t *testing.T) {
	c, ok := GPSFromEXIF(gpsTIFF(t, "N", "E"))
	require.True(t, ok)
	assert.InDelta(t, 48.8566, c.Lat, 1e-4)
	assert.InDelta(t, 2.3522, c.Lng, 1e-4)

	c, ok = GPSFromEXIF(gpsTIFF(t, "S", "W"))
	require.True(t, ok)
	assert.InDelta(t, -48.8566, c.Lat, 1e-4)
	assert.InDelta(t, -2.3522, c.Lng, 1e-4)

	_, ok = GPSFromEXIF([]byte("not an image"))
	assert.False(t, ok)
}

func TestEXIFProvider_FirstGeotaggedImage(t *testing.T) {
	images := fakeImages{
		"https://img/1.jpg": []byte("plain"),
		"https://img/2.jpg": gpsTIFF(t, "N", "E"),
	}
	p := NewEXIFProvider(images)

	ref := model.MustParseObjectRef("PA_1")
	ref.ImageURLs = []string{"https://img/missing.jpg", "https://img/1.jpg", "https://img/2.jpg"}

	c, err := p.Resolve(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, NameEXIF, c.Provider)
	assert.Equal(t, "https://img/2.jpg", c.Evidence[model.EvidenceImageURL])

	ref.ImageURLs = []string{"https://img/1.jpg"}
	c, err = p.Resolve(context.Background(), ref)
	assert.NoError(t, err)
	assert.Nil(t, c)

	c, err = p.Resolve(context.Background(), model.MustParseObjectRef("PA_2"))
	assert.NoError(t, err)
	assert.Nil(t, c)
}
