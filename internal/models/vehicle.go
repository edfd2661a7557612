package models

import (
	"errors"
	"fmt"
	"time"
)

// VehicleType is the powertrain variant of a vehicle.
type VehicleType string

const (
	VehicleICE  VehicleType = "ICE"
	VehicleBEV  VehicleType = "BEV"
	VehiclePHEV VehicleType = "PHEV"
)

var (
	ErrInvalidVehicle = errors.New("invalid vehicle configuration")
	ErrVariantLocked  = errors.New("vehicle type cannot change once trips exist")
	ErrVehicleInUse   = errors.New("vehicle still has trips")
)

// VariantVisitor handles each vehicle variant. Adding a variant adds a
// method here, so every implementation must be revisited.
type VariantVisitor interface {
	Combustion() error
	BatteryElectric() error
	PluginHybrid() error
}

// Visit dispatches to the visitor method matching the vehicle type.
func (t VehicleType) Visit(v VariantVisitor) error {
	switch t {
	case VehicleICE:
		return v.Combustion()
	case VehicleBEV:
		return v.BatteryElectric()
	case VehiclePHEV:
		return v.PluginHybrid()
	default:
		return fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidVehicle, string(t))
	}
}

// UsesFuel reports whether the variant burns liquid fuel.
func (t VehicleType) UsesFuel() bool {
	return t == VehicleICE || t == VehiclePHEV
}

// UsesEnergy reports whether the variant draws from a traction battery.
func (t VehicleType) UsesEnergy() bool {
	return t == VehicleBEV || t == VehiclePHEV
}

// IsValidVehicleType checks if a vehicle type is known.
func IsValidVehicleType(t VehicleType) bool {
	switch t {
	case VehicleICE, VehicleBEV, VehiclePHEV:
		return true
	default:
		return false
	}
}

// Vehicle is a ledger vehicle together with the baselines the engine needs.
type Vehicle struct {
	ID           string      `bson:"_id" json:"id"`
	Name         string      `bson:"name" json:"name"`
	LicensePlate string      `bson:"license_plate" json:"license_plate"`
	Type         VehicleType `bson:"type" json:"type"`

	// Fuel side, required for ICE and PHEV.
	TankSizeLiters *float64 `bson:"tank_size_liters,omitempty" json:"tank_size_liters,omitempty"`
	TPConsumption  *float64 `bson:"tp_consumption,omitempty" json:"tp_consumption,omitempty"` // L/100km

	// Energy side, required for BEV and PHEV.
	BatteryCapacityKwh     *float64 `bson:"battery_capacity_kwh,omitempty" json:"battery_capacity_kwh,omitempty"`
	BaselineConsumptionKwh *float64 `bson:"baseline_consumption_kwh,omitempty" json:"baseline_consumption_kwh,omitempty"` // kWh/100km

	InitialFuelPercent    *float64 `bson:"initial_fuel_percent,omitempty" json:"initial_fuel_percent,omitempty"`
	InitialBatteryPercent *float64 `bson:"initial_battery_percent,omitempty" json:"initial_battery_percent,omitempty"`
	InitialOdometer       float64  `bson:"initial_odometer" json:"initial_odometer"`

	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidationError describes a vehicle field that is missing or out of range
// for the vehicle's variant.
type ValidationError struct {
	Type   VehicleType
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s vehicle: %s %s", e.Type, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidVehicle
}

// Validate checks that the fields required by the vehicle's variant are present.
func (v *Vehicle) Validate() error {
	if !IsValidVehicleType(v.Type) {
		return &ValidationError{Type: v.Type, Field: "type", Reason: "is not a known vehicle type"}
	}
	if v.Type.UsesFuel() {
		if err := requirePositive(v.Type, "tank_size_liters", v.TankSizeLiters); err != nil {
			return err
		}
		if err := requirePositive(v.Type, "tp_consumption", v.TPConsumption); err != nil {
			return err
		}
	}
	if v.Type.UsesEnergy() {
		if err := requirePositive(v.Type, "battery_capacity_kwh", v.BatteryCapacityKwh); err != nil {
			return err
		}
		if err := requirePositive(v.Type, "baseline_consumption_kwh", v.BaselineConsumptionKwh); err != nil {
			return err
		}
	}
	if err := checkPercent(v.Type, "initial_fuel_percent", v.InitialFuelPercent); err != nil {
		return err
	}
	return checkPercent(v.Type, "initial_battery_percent", v.InitialBatteryPercent)
}

func requirePositive(t VehicleType, field string, value *float64) error {
	if value == nil {
		return &ValidationError{Type: t, Field: field, Reason: "is required"}
	}
	if *value <= 0 {
		return &ValidationError{Type: t, Field: field, Reason: "must be greater than zero"}
	}
	return nil
}

func checkPercent(t VehicleType, field string, value *float64) error {
	if value != nil && (*value < 0 || *value > 100) {
		return &ValidationError{Type: t, Field: field, Reason: "must be between 0 and 100"}
	}
	return nil
}

// CheckVariantChange rejects a type change on a vehicle that already has trips.
func CheckVariantChange(current, updated Vehicle, hasTrips bool) error {
	if hasTrips && current.Type != updated.Type {
		return fmt.Errorf("%w: %s -> %s", ErrVariantLocked, current.Type, updated.Type)
	}
	return nil
}

// Float returns a pointer to f. Handy for the optional vehicle and trip fields.
func Float(f float64) *float64 {
	return &f
}
