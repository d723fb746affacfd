package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/shiftboard/core/layout"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
	"github.com/kilianp07/shiftboard/pkg/export"
)

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.GetSchedule(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *Handler) putSchedule(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	feed, err := shifts.ReadFeed(r.Body)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	res, err := h.svc.UpdateSchedule(r.Context(), feed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) week(w http.ResponseWriter, r *http.Request) {
	week, err := h.svc.Week(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make(map[string]layout.DayLayout, len(week))
	for _, l := range week {
		out[l.Day.String()] = l
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) dayLanes(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	l, err := h.svc.DayLayout(r.Context(), day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteCSV(w, l)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = export.RenderLanes(w, l, model.ClockTime(h.svc.Grid().SlotMinutes))
	default:
		writeJSON(w, http.StatusOK, l)
	}
	if err != nil {
		h.log.Errorf("write lanes: %v", err)
	}
}

func (h *Handler) dayConflicts(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.svc.Conflicts(r.Context(), day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := export.WriteConflictsCSV(w, out); err != nil {
			h.log.Errorf("write conflicts: %v", err)
		}
		return
	}
	if out == nil {
		out = []layout.Conflict{}
	}
	writeJSON(w, http.StatusOK, out)
}
