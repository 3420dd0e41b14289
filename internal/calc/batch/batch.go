package batch

import (
	"fmt"

	"Gateway/internal/calc/solubility"
)

// MaxItems bounds one batch request.
const MaxItems = 100

type Input struct {
	Items []solubility.Query `json:"items"`
}

type Result struct {
	Results []solubility.Calculation `json:"results"`
}

// Calculate runs every query in order. The first failing item fails the batch.
func Calculate(store *solubility.Store, in Input) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, fmt.Errorf("no items")
	}
	if len(in.Items) > MaxItems {
		return Result{}, fmt.Errorf("%d items, at most %d allowed", len(in.Items), MaxItems)
	}
	out := Result{Results: make([]solubility.Calculation, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := store.Calculate(item)
		if err != nil {
			return Result{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}
