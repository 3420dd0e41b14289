package solubility

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"Gateway/internal/auth"
	"Gateway/internal/history"
	"Gateway/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Store   *Store
	History *history.Store[Calculation]
}

// MaxHistory is how many calculations a session keeps; older ones are dropped.
const MaxHistory = 500

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store, History: history.New[Calculation](MaxHistory)}
}

// Session keys the history by authenticated user.
func Session(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return strconv.Itoa(id)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("encode response")
	}
}

// WriteError maps calculator errors to HTTP statuses.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownSystem):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSystemUnavailable):
		http.Error(w, "System temporarily unavailable", http.StatusServiceUnavailable)
	default:
		logrus.WithError(err).Error("calculation failed")
		http.Error(w, "Calculation error", http.StatusInternalServerError)
	}
}

func parseQuery(r *http.Request) (Query, error) {
	v := r.URL.Query()
	q := Query{System: v.Get("system")}
	temp, err := strconv.ParseFloat(v.Get("temp"), 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return Query{}, errors.New("temp must be a number")
	}
	naclStr := v.Get("nacl")
	if naclStr == "" {
		naclStr = v.Get("mNaCl")
	}
	nacl, err := strconv.ParseFloat(naclStr, 64)
	if err != nil || math.IsNaN(nacl) || math.IsInf(nacl, 0) {
		return Query{}, errors.New("nacl must be a number")
	}
	q.Temperature, q.NaCl = temp, nacl
	return q, nil
}

// Record appends calc to the session history and returns it with its id.
func (h *Handler) Record(r *http.Request, calc Calculation) Calculation {
	calc.ID = h.History.Append(Session(r), calc)
	return calc
}

// Calc runs one query and appends it to the session history.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	calc, err := h.Store.Calculate(q)
	if err != nil {
		WriteError(w, err)
		return
	}
	calc = h.Record(r, calc)
	logrus.WithFields(logrus.Fields{
		"system":   calc.Query.System,
		"temp":     calc.Query.Temperature,
		"nacl":     calc.Query.NaCl,
		"adjusted": calc.Adjusted,
		"user":     auth.Login(r.Context()),
	}).Debug("solubility curve")
	writeJSON(w, calc)
}

func (h *Handler) Systems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Store.Systems())
}

// Calculations returns the session history with ids filled in.
func (h *Handler) Calculations(r *http.Request) []Calculation {
	entries := h.History.List(Session(r))
	out := make([]Calculation, len(entries))
	for i, e := range entries {
		out[i] = e.Item
		out[i].ID = e.ID
	}
	return out
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	calcs := h.Calculations(r)
	if calcs == nil {
		calcs = []Calculation{}
	}
	writeJSON(w, calcs)
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.History.Clear(Session(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) entry(w http.ResponseWriter, r *http.Request) (Calculation, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return Calculation{}, false
	}
	calc, ok := h.History.Get(Session(r), id)
	if !ok {
		http.Error(w, "Calculation not found", http.StatusNotFound)
		return Calculation{}, false
	}
	calc.ID = id
	return calc, true
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func (h *Handler) CSV(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.entry(w, r)
	if !ok {
		return
	}
	b, err := CSV(calc.Curve)
	if err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	metrics.Exports.WithLabelValues("csv").Inc()
	attachment(w, "text/csv", Filename(calc.Curve.System, "csv", calc.CreatedAt))
	w.Write(b)
}

func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.entry(w, r)
	if !ok {
		return
	}
	f, err := ToXLSX(calc.Curve)
	if err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	metrics.Exports.WithLabelValues("xlsx").Inc()
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Filename(calc.Curve.System, "xlsx", calc.CreatedAt))
	if err := f.Write(w); err != nil {
		logrus.WithError(err).Warn("write workbook")
	}
}

func axisParam(r *http.Request, name string, def Axis) (Axis, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return ParseAxis(v)
}

// Chart plots the session history of one system, x=0 y=1 by default.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	x, err := axisParam(r, "x", AxisPressure)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	y, err := axisParam(r, "y", AxisSlot1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	title := ""
	var curves []ResultCurve
	calcs := h.Calculations(r)
	if system := r.URL.Query().Get("system"); system != "" {
		sys, err := LookupSystem(system)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		title = sys.Name
		for _, c := range calcs {
			if c.Query.System == sys.ID {
				curves = append(curves, c.Curve)
			}
		}
	} else {
		for _, c := range calcs {
			curves = append(curves, c.Curve)
		}
	}

	w.Header().Set("Content-Type", "image/png")
	if err := RenderChart(w, title, curves, x, y); err != nil {
		logrus.WithError(err).Error("render chart")
		http.Error(w, "Chart error", http.StatusInternalServerError)
	}
}
