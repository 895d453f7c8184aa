package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/resilience"
)

func TestExpandURL(t *testing.T) {
	ref := model.MustParseObjectRef("pa-0042")
	assert.Equal(t, "https://a.example/PA/0042/PA_0042.json",
		expandURL("https://a.example/{region}/{number}/{id}.json", ref))
}

func TestHTTPCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/objects/PA_1":
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"lat":48.8553,"lng":2.3764,"address":"Rue de la Roquette"}`)
		case "/objects/PA_2":
			_, _ = io.WriteString(w, `{"latitude":"48.86","longitude":"2.35"}`)
		case "/objects/PA_3":
			_, _ = io.WriteString(w, `{"lat":null,"lng":null}`)
		case "/objects/PA_4":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/objects/PA_5":
			_, _ = io.WriteString(w, `<html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cat, err := NewHTTPCatalog(NameCatalogA, srv.URL+"/objects/{id}", "secret", nil)
	require.NoError(t, err)
	ctx := context.Background()

	c, err := cat.Resolve(ctx, model.MustParseObjectRef("PA_1"))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, NameCatalogA, c.Provider)
	assert.InDelta(t, 48.8553, c.Coordinate.Lat, 1e-9)
	assert.Equal(t, "Rue de la Roquette", c.Evidence[model.EvidenceAddress])
	assert.Equal(t, srv.URL+"/objects/PA_1", c.Evidence[model.EvidenceSourceURL])

	c, err = cat.Resolve(ctx, model.MustParseObjectRef("PA_2"))
	require.NoError(t, err)
	assert.InDelta(t, 2.35, c.Coordinate.Lng, 1e-9)

	c, err = cat.Resolve(ctx, model.MustParseObjectRef("PA_3"))
	assert.NoError(t, err)
	assert.Nil(t, c)

	c, err = cat.Resolve(ctx, model.MustParseObjectRef("PA_404"))
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = cat.Resolve(ctx, model.MustParseObjectRef("PA_4"))
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
	assert.True(t, resilience.IsTransient(err))

	_, err = cat.Resolve(ctx, model.MustParseObjectRef("PA_5"))
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
	assert.False(t, resilience.IsTransient(err))

	_, err = NewHTTPCatalog(NameCatalogB, "", "", nil)
	assert.Error(t, err)
}

func TestCrowdsourced_AppliesOffset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "PA_0" {
			_, _ = io.WriteString(w, `{"lat":0,"lon":0}`)
			return
		}
		_, _ = io.WriteString(w, `{"lat":48.8550,"lon":2.3760}`)
	}))
	defer srv.Close()

	p, err := NewCrowdsourced(srv.URL+"/?id={id}", 0.0003, 0.0004, srv.Client())
	require.NoError(t, err)

	c, err := p.Resolve(context.Background(), model.MustParseObjectRef("PA_1"))
	require.NoError(t, err)
	assert.InDelta(t, 48.8553, c.Coordinate.Lat, 1e-9)
	assert.InDelta(t, 2.3764, c.Coordinate.Lng, 1e-9)
	assert.Equal(t, "0.0003,0.0004", c.Evidence[EvidenceOffset])

	c, err = p.Resolve(context.Background(), model.MustParseObjectRef("PA_0"))
	require.NoError(t, err)
	assert.True(t, c.Coordinate.IsZero())
}

func TestPhotoMetadata_MostAccurateGeotag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/PA_9" {
			_, _ = io.WriteString(w, `{"photos":[{"lat":0,"lng":0,"accuracy":16}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"photos":[
			{"lat":0,"lng":0,"accuracy":16},
			{"lat":48.80,"lng":2.30,"accuracy":11,"url":"https://photos.example/1"},
			{"lat":48.8553,"lng":2.3764,"accuracy":16,"url":"https://photos.example/2"},
			{"lat":"","lng":2.1,"accuracy":16}
		]}`)
	}))
	defer srv.Close()

	p, err := NewPhotoMetadata(srv.URL+"/search/{id}", "", nil)
	require.NoError(t, err)

	c, err := p.Resolve(context.Background(), model.MustParseObjectRef("PA_1"))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.InDelta(t, 48.8553, c.Coordinate.Lat, 1e-9)
	assert.Equal(t, "https://photos.example/2", c.Evidence[model.EvidenceSourceURL])

	c, err = p.Resolve(context.Background(), model.MustParseObjectRef("PA_9"))
	require.NoError(t, err)
	assert.Nil(t, c)
}
