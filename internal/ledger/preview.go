package ledger

import (
	"github.com/google/uuid"
	"github.com/ukydev/trip-ledger/internal/models"
)

// PreviewResult shows what a draft trip would look like once saved.
type PreviewResult struct {
	Row    GridRow          `json:"row"`
	IsNew  bool             `json:"is_new"`
	Fuel   *ResourceSummary `json:"fuel,omitempty"`
	Energy *ResourceSummary `json:"energy,omitempty"`
}

// Preview inserts draft into the history, or replaces the trip with the
// same ID, and recomputes year. A draft without an ID gets a throwaway one.
func Preview(v models.Vehicle, trips []models.Trip, year int, draft models.Trip, policy Policy) (*PreviewResult, error) {
	isNew := true
	merged := make([]models.Trip, 0, len(trips)+1)
	for _, t := range trips {
		if draft.ID != "" && t.ID == draft.ID {
			isNew = false
			continue
		}
		merged = append(merged, t)
	}
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	draft.VehicleID = v.ID
	merged = append(merged, draft)

	grid, err := BuildGrid(v, merged, year, nil, policy)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(v, merged, year, policy)
	if err != nil {
		return nil, err
	}

	res := &PreviewResult{IsNew: isNew, Fuel: summary.Fuel, Energy: summary.Energy}
	for _, row := range grid.Rows {
		if row.Trip.ID == draft.ID {
			res.Row = row
			break
		}
	}
	return res, nil
}
