package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	"Gateway/internal/calc/solubility"
)

type Handler struct {
	Calc *solubility.Handler
}

// Run calculates a list of queries and records each in the session history.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(h.Calc.Store, input)
	if err != nil {
		if errors.Is(err, solubility.ErrUnknownSystem) || errors.Is(err, solubility.ErrSystemUnavailable) {
			solubility.WriteError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range res.Results {
		res.Results[i] = h.Calc.Record(r, res.Results[i])
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
