package ledger

import (
	"errors"
	"fmt"

	"github.com/ukydev/trip-ledger/internal/models"
)

// Resource is the consumable a period or flow tracks.
type Resource string

const (
	ResourceFuel   Resource = "fuel"
	ResourceEnergy Resource = "energy"
)

var ErrVariantMismatch = errors.New("resource not used by vehicle variant")

// VariantError is returned when a resource is requested from a vehicle
// variant that does not consume it.
type VariantError struct {
	Type     models.VehicleType
	Resource Resource
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("%s accounting requested for %s vehicle", e.Resource, e.Type)
}

func (e *VariantError) Unwrap() error {
	return ErrVariantMismatch
}

func checkResource(v models.Vehicle, r Resource) error {
	switch r {
	case ResourceFuel:
		if v.Type.UsesFuel() {
			return nil
		}
	case ResourceEnergy:
		if v.Type.UsesEnergy() {
			return nil
		}
	}
	return &VariantError{Type: v.Type, Resource: r}
}

// amount is the fill or charge logged on the trip for r.
func (r Resource) amount(t models.Trip) float64 {
	var p *float64
	if r == ResourceFuel {
		p = t.FuelLiters
	} else {
		p = t.EnergyKwh
	}
	if p == nil || *p < 0 {
		return 0
	}
	return *p
}

func (r Resource) cost(t models.Trip) float64 {
	var p *float64
	if r == ResourceFuel {
		p = t.FuelCostEUR
	} else {
		p = t.EnergyCostEUR
	}
	if p == nil {
		return 0
	}
	return *p
}

// closes reports whether the trip ends a period: the full flag is set and
// something was actually added.
func (r Resource) closes(t models.Trip) bool {
	if r.amount(t) <= 0 {
		return false
	}
	if r == ResourceFuel {
		return t.FullTank
	}
	return t.FullCharge
}

func (r Resource) capacity(v models.Vehicle) float64 {
	if r == ResourceFuel {
		return deref(v.TankSizeLiters)
	}
	return deref(v.BatteryCapacityKwh)
}

func (r Resource) baseline(v models.Vehicle) float64 {
	if r == ResourceFuel {
		return deref(v.TPConsumption)
	}
	return deref(v.BaselineConsumptionKwh)
}

func (r Resource) initialLevel(v models.Vehicle) float64 {
	pct := v.InitialFuelPercent
	if r == ResourceEnergy {
		pct = v.InitialBatteryPercent
	}
	capacity := r.capacity(v)
	if pct == nil {
		return capacity
	}
	return capacity * *pct / 100
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func clamp(level, capacity float64) float64 {
	if level < 0 {
		return 0
	}
	if level > capacity {
		return capacity
	}
	return level
}
