package ledger

import (
	"fmt"
	"time"

	"github.com/ukydev/trip-ledger/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 8, 0, 0, 0, time.UTC)
}

func trip(id string, start time.Time, km float64) models.Trip {
	return models.Trip{ID: id, VehicleID: "v1", StartTime: start, DistanceKm: km}
}

func fuel(t models.Trip, liters float64, full bool) models.Trip {
	t.FuelLiters = models.Float(liters)
	t.FullTank = full
	return t
}

func charge(t models.Trip, kwh float64, full bool) models.Trip {
	t.EnergyKwh = models.Float(kwh)
	t.FullCharge = full
	return t
}

func iceVehicle() models.Vehicle {
	return models.Vehicle{
		ID:             "v1",
		Type:           models.VehicleICE,
		TankSizeLiters: models.Float(50),
		TPConsumption:  models.Float(6.0),
	}
}

func bevVehicle() models.Vehicle {
	return models.Vehicle{
		ID:                     "v1",
		Type:                   models.VehicleBEV,
		BatteryCapacityKwh:     models.Float(60),
		BaselineConsumptionKwh: models.Float(15),
	}
}

func phevVehicle() models.Vehicle {
	return models.Vehicle{
		ID:                     "v1",
		Type:                   models.VehiclePHEV,
		TankSizeLiters:         models.Float(40),
		TPConsumption:          models.Float(5.0),
		BatteryCapacityKwh:     models.Float(10),
		BaselineConsumptionKwh: models.Float(20),
	}
}

// dailyTrips returns n trips on consecutive days of year, each km long.
func dailyTrips(year, n int, km float64) []models.Trip {
	out := make([]models.Trip, n)
	for i := range out {
		out[i] = trip(fmt.Sprintf("t%d-%d", year, i), day(year, time.January, 1).AddDate(0, 0, i), km)
	}
	return out
}
