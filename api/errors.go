package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/shiftboard/app"
	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/storage"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string            `json:"error"`
	Days  map[string]string `json:"days,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	var derr *availability.DocumentError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &derr), errors.Is(err, app.ErrInvalidFeed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, app.ErrInvalidEmployee),
		errors.Is(err, model.ErrUnknownDay),
		errors.Is(err, model.ErrInvalidRange),
		errors.Is(err, availability.ErrMisalignedSlot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error()}
	var (
		derr *availability.DocumentError
		ferr *app.FeedError
	)
	if errors.As(err, &derr) {
		body.Days = map[string]string{}
		for k, v := range derr.Days {
			body.Days[k] = v.Error()
		}
	} else if errors.As(err, &ferr) {
		body.Days = map[string]string{}
		for k, v := range ferr.Days {
			body.Days[k] = v.Error()
		}
	}
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		body.Error = http.StatusText(status)
	}
	writeJSON(w, status, body)
}
