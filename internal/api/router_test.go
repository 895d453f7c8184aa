package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/pipeline"
	"github.com/sells-group/georesolve/internal/provider"
	"github.com/sells-group/georesolve/internal/store"
)

// catalog answers PA_1 only.
func catalog(name string, lat, lng float64) provider.Func {
	return provider.Func{ProviderName: name, Fn: func(_ context.Context, ref model.ObjectRef) (*model.Candidate, error) {
		if ref.ID != "PA_1" {
			return nil, nil
		}
		return model.NewCandidate(name, model.Coordinate{Lat: lat, Lng: lng}), nil
	}}
}

func newTestServer(t *testing.T, withStore bool) (*httptest.Server, store.Store) {
	t.Helper()
	table := geo.DefaultTable()
	v, err := geo.NewValidator(table)
	require.NoError(t, err)

	res, err := pipeline.NewResolver(pipeline.Config{}, v,
		catalog(provider.NameCatalogA, 48.8606, 2.3376),
		catalog(provider.NameCatalogB, 48.8607, 2.3377),
		provider.NewInteractive(nil, table),
	)
	require.NoError(t, err)

	var st store.Store
	if withStore {
		s, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		require.NoError(t, s.Migrate(context.Background()))
		t.Cleanup(func() { _ = s.Close() })
		st = s
	}

	srv := httptest.NewServer(NewRouter(Deps{Resolver: res, Table: table, Store: st}))
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	var out map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, false)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRegions(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp, body := do(t, http.MethodGet, srv.URL+"/regions/pa", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PA", body["code"])
	assert.Equal(t, "fr", body["country"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/regions/NOPE", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/regions", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["codes"], "LDN")
}

func TestResolve_CoherentCatalogs(t *testing.T) {
	srv, st := newTestServer(t, true)

	resp, body := do(t, http.MethodPost, srv.URL+"/resolve/pa-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loc, ok := body["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "high", loc["confidence"])
	assert.Equal(t, provider.NameCatalogA, loc["source"])

	stored, err := st.GetResolution(context.Background(), "PA_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.ConfidenceHigh, stored.Confidence)

	resp, body = do(t, http.MethodGet, srv.URL+"/resolutions/PA_1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "high", body["confidence"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/resolutions/PA_2", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResolve_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, false)

	resp, _ := do(t, http.MethodPost, srv.URL+"/resolve/nonsense", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, http.MethodPost, srv.URL+"/resolve/ZZ_1", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode, "unknown region resolves unvalidated")
	assert.Equal(t, true, body["suspended"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/resolve/PA_1", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/resolutions/PA_1", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func suspend(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, body := do(t, http.MethodPost, srv.URL+"/resolve/PA_2", `{"image_urls": []}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, true, body["suspended"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSessions_ResumeWithCoordinate(t *testing.T) {
	srv, st := newTestServer(t, true)
	token := suspend(t, srv)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/sessions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var pending []pipeline.Pending
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))
	_ = resp.Body.Close()
	require.Len(t, pending, 1)
	assert.Equal(t, token, pending[0].Token)
	assert.Equal(t, "PA_2", pending[0].Object.ID)

	resp, body := do(t, http.MethodPost, srv.URL+"/sessions/"+token+"/input", `{"text": "48.8530, 2.3499"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loc, ok := body["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, provider.NameInteractive, loc["source"])
	assert.Equal(t, "medium", loc["confidence"])

	stored, err := st.GetResolution(context.Background(), "PA_2")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 48.853, stored.Coordinate.Lat, 1e-9)

	resp, _ = do(t, http.MethodPost, srv.URL+"/sessions/"+token+"/input", `{"skip": true}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "tokens are single-use")
}

func TestSessions_Cancel(t *testing.T) {
	srv, _ := newTestServer(t, false)
	token := suspend(t, srv)

	resp, body := do(t, http.MethodDelete, srv.URL+"/sessions/"+token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loc, ok := body["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, loc["exhausted"])
	assert.Equal(t, model.SourceRegionCenter, loc["source"])

	resp, _ = do(t, http.MethodDelete, srv.URL+"/sessions/"+token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessions_BadInput(t *testing.T) {
	srv, _ := newTestServer(t, false)
	resp, _ := do(t, http.MethodPost, srv.URL+"/sessions/abc/input", "[")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInputRequest(t *testing.T) {
	c := &model.Coordinate{Lat: 1, Lng: 2}
	assert.Equal(t, provider.Input{Skip: true}, inputRequest{Skip: true, Address: "x"}.input())
	assert.Equal(t, provider.Input{Coordinate: c}, inputRequest{Coordinate: c, Text: "y"}.input())
	assert.Equal(t, provider.Input{Address: "Rue X"}, inputRequest{Address: "Rue X"}.input())
	assert.Equal(t, provider.Input{Skip: true}, inputRequest{}.input())
}
