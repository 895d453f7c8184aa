package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/pipeline"
	"github.com/sells-group/georesolve/internal/provider"
)

type handlers struct {
	deps Deps
}

type errorBody struct {
	Error string `json:"error"`
}

// inputRequest carries an operator answer. Text is parsed like a console
// answer; the explicit fields win when set.
type inputRequest struct {
	Text       string            `json:"text,omitempty"`
	Coordinate *model.Coordinate `json:"coordinate,omitempty"`
	Address    string            `json:"address,omitempty"`
	Skip       bool              `json:"skip,omitempty"`
}

func (r inputRequest) input() provider.Input {
	switch {
	case r.Skip:
		return provider.Input{Skip: true}
	case r.Coordinate != nil:
		return provider.Input{Coordinate: r.Coordinate}
	case r.Address != "":
		return provider.Input{Address: r.Address}
	default:
		return provider.ParseInput(r.Text)
	}
}

type resolveRequest struct {
	ImageURLs []string `json:"image_urls,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrMalformedObject), errors.Is(err, model.ErrInvalidCoordinate):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrMissingRegionTable), errors.Is(err, pipeline.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"codes": h.deps.Table.Codes()})
}

func (h *handlers) getRegion(w http.ResponseWriter, r *http.Request) {
	p, ok := h.deps.Table.Lookup(chi.URLParam(r, "code"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown region")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) resolve(w http.ResponseWriter, r *http.Request) {
	ref, err := model.ParseObjectRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ref.ImageURLs = req.ImageURLs

	out, err := h.deps.Resolver.Resolve(r.Context(), ref)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.save(r.Context(), out)

	status := http.StatusOK
	if out.Suspended {
		status = http.StatusAccepted
	}
	writeJSON(w, status, out)
}

func (h *handlers) getResolution(w http.ResponseWriter, r *http.Request) {
	if h.deps.Store == nil {
		writeError(w, http.StatusNotImplemented, "no store configured")
		return
	}
	ref, err := model.ParseObjectRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := h.deps.Store.GetResolution(r.Context(), ref.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if loc == nil {
		writeError(w, http.StatusNotFound, "no resolution stored")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *handlers) listSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Resolver.Pending())
}

func (h *handlers) submitInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.deps.Resolver.Resume(r.Context(), chi.URLParam(r, "token"), req.input())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.save(r.Context(), out)
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) cancelSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Resolver.Cancel(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.save(r.Context(), out)
	writeJSON(w, http.StatusOK, out)
}

// save persists a finished run. Store failures are logged, not returned;
// the caller still gets the outcome.
func (h *handlers) save(ctx context.Context, out *pipeline.Outcome) {
	if h.deps.Store == nil || out.Location == nil {
		return
	}
	saved, err := h.deps.Store.SaveResolution(ctx, out.Location)
	if err != nil {
		zap.L().Error("api: save resolution", zap.String("object", out.Object.ID), zap.Error(err))
		return
	}
	if !saved {
		zap.L().Info("api: kept stored resolution with higher confidence", zap.String("object", out.Object.ID))
	}
}
