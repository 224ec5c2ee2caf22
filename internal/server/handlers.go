package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/hydrosense/wellspring/internal/source"
	"github.com/hydrosense/wellspring/internal/tsd"
	"github.com/hydrosense/wellspring/internal/well"
	"github.com/hydrosense/wellspring/pkg/metrics"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP handlers for the API server.
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance.
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{controller: ctrl}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.controller.logger.Errorf("error encoding response: %v", err)
	}
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var notFound *source.WellNotFoundError
	var insufficient *tsd.InsufficientDataError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &insufficient):
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) GetWells(w http.ResponseWriter, req *http.Request) {
	wells, err := h.controller.src.AvailableWells()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"wells": wells})
}

func (h *Handlers) GetUnits(w http.ResponseWriter, req *http.Request) {
	units, err := h.controller.src.AvailableUnits()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"units": units})
}

func (h *Handlers) GetDateRange(w http.ResponseWriter, req *http.Request) {
	first, last, err := h.controller.src.DateRange()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"first": first.Format(dateLayout),
		"last":  last.Format(dateLayout),
	})
}

type neighborResponse struct {
	WellID   string  `json:"well_id"`
	Unit     int     `json:"unit"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Distance float64 `json:"distance"`
}

func (h *Handlers) GetNeighbors(w http.ResponseWriter, req *http.Request) {
	wellID := mux.Vars(req)["well"]
	unit, err := queryInt(req, "unit", source.AnyUnit)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	n, err := queryInt(req, "n", 5)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	found, err := h.controller.selector.NearestN(unit, wellID, n, 0)
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	out := make([]neighborResponse, len(found))
	for i, nb := range found {
		out[i] = neighborResponse{
			WellID:   nb.Location.WellID,
			Unit:     nb.Location.Unit,
			X:        nb.Location.X,
			Y:        nb.Location.Y,
			Distance: nb.Distance,
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"neighbors": out})
}

type estimateDay struct {
	Date      string   `json:"date"`
	Observed  *float64 `json:"observed"`
	Trend     float64  `json:"trend"`
	Estimated float64  `json:"estimated"`
}

type estimateResponse struct {
	Target    string        `json:"target"`
	Reference string        `json:"reference"`
	Mode      string        `json:"mode"`
	Quality   string        `json:"quality"`
	Fit       string        `json:"fit,omitempty"`
	Days      []estimateDay `json:"days"`
}

func (h *Handlers) GetEstimate(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	target := q.Get("target")
	reference := q.Get("reference")
	if target == "" || reference == "" {
		h.writeJSON(w, http.StatusBadRequest,
			errorResponse{Error: "target and reference query parameters are required"})
		return
	}

	mode, err := tsd.ParseMode(q.Get("mode"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	unit, err := queryInt(req, "unit", source.AnyUnit)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	window, err := queryWindow(req)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	res, err := h.controller.estimator.EstimateDailyValues(target, reference, unit, window, tsd.Options{Mode: mode})
	if err != nil {
		h.writeError(w, err)
		return
	}

	observed := h.observedOnTimeline(target, unit, window, res)

	resp := estimateResponse{
		Target:    target,
		Reference: reference,
		Mode:      res.Mode.String(),
		Quality:   res.Quality.String(),
		Days:      make([]estimateDay, res.Len()),
	}
	for i := range res.Dates {
		d := estimateDay{
			Date:      res.Dates[i].Format(dateLayout),
			Trend:     res.Trend[i],
			Estimated: res.Estimated[i],
		}
		if observed != nil && !well.IsMissing(observed[i]) {
			v := observed[i]
			d.Observed = &v
		}
		resp.Days[i] = d
	}
	if observed != nil {
		if sum, err := metrics.All(observed, res.Estimated); err == nil && sum.N > 0 {
			resp.Fit = sum.String()
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// observedOnTimeline refetches the target observations and places them on
// the result timeline so the response can report fit statistics.
func (h *Handlers) observedOnTimeline(target string, unit int, window well.Window, res *tsd.Result) []float64 {
	s, err := h.controller.src.WellData(target, unit, window)
	if err != nil {
		return nil
	}

	byDate := make(map[int64]float64, s.Len())
	for i, d := range s.Dates {
		if !well.IsMissing(s.Levels[i]) {
			byDate[d.Unix()] = s.Levels[i]
		}
	}

	out := make([]float64, res.Len())
	for i, d := range res.Dates {
		if v, ok := byDate[d.Unix()]; ok {
			out[i] = v
		} else {
			out[i] = well.Missing()
		}
	}
	return out
}

func queryInt(req *http.Request, name string, def int) (int, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("query parameter " + name + " must be an integer")
	}
	return v, nil
}

func queryWindow(req *http.Request) (well.Window, error) {
	var w well.Window
	q := req.URL.Query()
	if raw := q.Get("start"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return w, errors.New("query parameter start must be YYYY-MM-DD")
		}
		w.Start = t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return w, errors.New("query parameter end must be YYYY-MM-DD")
		}
		w.End = t
	}
	return w, nil
}
