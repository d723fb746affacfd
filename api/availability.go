package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/pkg/export"
)

func (h *Handler) listAvailability(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.svc.ListAvailability(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []availability.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) getAvailability(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.GetAvailability(r.Context(), chi.URLParam(r, "employee"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
		if err := availability.WriteDocument(w, snap.Document, "yaml"); err != nil {
			h.log.Errorf("write yaml: %v", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// bodyFormat picks the document decoder from the Content-Type header.
func bodyFormat(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "json"
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return "yaml"
	default:
		return "json"
	}
}

func (h *Handler) putAvailability(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	doc, err := availability.ReadDocument(r.Body, bodyFormat(r))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	snap, err := h.svc.SaveAvailability(r.Context(), chi.URLParam(r, "employee"), doc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type toggleRequest struct {
	Day  model.Day       `json:"day"`
	Time model.ClockTime `json:"time"`
}

type toggleResponse struct {
	Status   model.Category        `json:"status"`
	Snapshot availability.Snapshot `json:"snapshot"`
}

func (h *Handler) toggleSlot(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	status, snap, err := h.svc.ToggleSlot(r.Context(), chi.URLParam(r, "employee"), req.Day, req.Time)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Status: status, Snapshot: snap})
}

// availabilityGrid renders the employee's grid as text, all days by default
// or the ones listed in ?day=.
func (h *Handler) availabilityGrid(w http.ResponseWriter, r *http.Request) {
	days := model.Week
	if names := r.URL.Query()["day"]; len(names) > 0 {
		days = nil
		for _, n := range names {
			d, err := model.ParseDay(n)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			days = append(days, d)
		}
	}
	grid := h.svc.Grid()
	doc := availability.Document{}
	snap, err := h.svc.GetAvailability(r.Context(), chi.URLParam(r, "employee"))
	switch {
	case err == nil:
		doc = snap.Document
	case statusOf(err) != http.StatusNotFound:
		h.writeError(w, r, err)
		return
	}
	g, err := availability.DecodeDocument(doc, grid.Slot())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	from, to, err := grid.View()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.RenderGrid(w, g, days, from, to); err != nil {
		h.log.Errorf("render grid: %v", err)
	}
}
