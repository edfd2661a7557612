package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/trip-ledger/internal/models"
)

func TestCompute_Combustion(t *testing.T) {
	trips := []models.Trip{
		fuel(trip("a", day(2024, time.February, 1), 1000), 50, true),
	}
	flow, err := Compute(iceVehicle(), trips, Levels{Fuel: 50})
	require.NoError(t, err)
	assert.Nil(t, flow.Energy)
	require.NotNil(t, flow.Fuel)
	assert.InDelta(t, 5.0, flow.Fuel.Rates[0], 1e-9)
	assert.False(t, flow.Fuel.Estimated[0])
	assert.Equal(t, 50.0, flow.Fuel.EndLevel())

	_, err = flow.Resource(ResourceEnergy)
	assert.ErrorIs(t, err, ErrVariantMismatch)
}

func TestCompute_BatteryElectric(t *testing.T) {
	trips := []models.Trip{
		trip("a", day(2024, time.February, 1), 100),
		charge(trip("b", day(2024, time.February, 2), 100), 36, true),
	}
	flow, err := Compute(bevVehicle(), trips, Levels{Energy: 60})
	require.NoError(t, err)
	assert.Nil(t, flow.Fuel)
	require.NotNil(t, flow.Energy)
	assert.InDelta(t, 18.0, flow.Energy.Rates[0], 1e-9)
	assert.InDelta(t, 42.0, flow.Energy.Remaining[0], 1e-9)
	assert.Equal(t, 60.0, flow.Energy.Remaining[1])

	_, err = flow.Resource(ResourceFuel)
	assert.ErrorIs(t, err, ErrVariantMismatch)
}

func TestCompute_PluginHybridSplitsPerTrip(t *testing.T) {
	trips := []models.Trip{
		trip("a", day(2024, time.February, 1), 80),
		charge(trip("b", day(2024, time.February, 2), 20), 10, true),
		trip("c", day(2024, time.February, 3), 30),
	}
	flow, err := Compute(phevVehicle(), trips, Levels{Fuel: 40, Energy: 10})
	require.NoError(t, err)
	require.NotNil(t, flow.Fuel)
	require.NotNil(t, flow.Energy)

	assert.InDeltaSlice(t, []float64{50, 0, 30}, flow.Energy.Distances, 1e-9)
	assert.InDeltaSlice(t, []float64{30, 20, 0}, flow.Fuel.Distances, 1e-9)
	assert.InDeltaSlice(t, []float64{0, 10, 4}, flow.Energy.Remaining, 1e-9)
	assert.InDeltaSlice(t, []float64{38.5, 37.5, 37.5}, flow.Fuel.Remaining, 1e-9)

	for i := range trips {
		assert.InDelta(t, flow.Trips[i].DistanceKm, flow.Fuel.Distances[i]+flow.Energy.Distances[i], 1e-9)
	}
}

func TestCompute_PluginHybridBatteryMatchesSplit(t *testing.T) {
	trips := []models.Trip{
		trip("t1", day(2024, time.April, 1), 25),
		charge(trip("t2", day(2024, time.April, 2), 25), 16, true),
	}
	flow, err := Compute(phevVehicle(), trips, Levels{Fuel: 40, Energy: 6})
	require.NoError(t, err)

	// 16 kWh over 30 electric km is well above the 20 kWh/100km baseline.
	rate, ok := PeriodRate(flow.Energy.Periods[0])
	require.True(t, ok)
	assert.Greater(t, rate, *phevVehicle().BaselineConsumptionKwh)

	assert.InDeltaSlice(t, []float64{25, 5}, flow.Energy.Distances, 1e-9)
	assert.InDeltaSlice(t, []float64{0, 20}, flow.Fuel.Distances, 1e-9)
	assert.InDeltaSlice(t, []float64{5, 1}, flow.Energy.Consumed, 1e-9)
	assert.InDeltaSlice(t, []float64{1, 10}, flow.Energy.Remaining, 1e-9)

	before := flow.Energy.StartLevel
	for i := range flow.Trips {
		assert.LessOrEqual(t, flow.Energy.Consumed[i], before+1e-9)
		before = flow.Energy.Remaining[i]
	}
}

func TestCompute_PluginHybridFuelMarginUsesFuelShare(t *testing.T) {
	v := phevVehicle()
	trips := []models.Trip{
		// 50 km on battery, 100 km on fuel with 6 L: 6.0 L/100km on the fuel share.
		fuel(trip("a", day(2024, time.March, 1), 150), 6, true),
	}
	flow, err := Compute(v, trips, Levels{Fuel: 40, Energy: 10})
	require.NoError(t, err)

	rate, ok := PeriodRate(flow.Fuel.Periods[0])
	require.True(t, ok)
	assert.InDelta(t, 6.0, rate, 1e-9)
	m := MarginForPeriod(flow.Fuel.Periods[0], *v.TPConsumption)
	require.NotNil(t, m)
	assert.InDelta(t, 0.2, *m, 1e-9)
}

func TestCompute_RejectsInvalidVehicle(t *testing.T) {
	v := bevVehicle()
	v.BaselineConsumptionKwh = nil
	_, err := Compute(v, nil, Levels{})
	assert.ErrorIs(t, err, models.ErrInvalidVehicle)
}

func TestCompute_Idempotent(t *testing.T) {
	trips := []models.Trip{
		charge(trip("b", day(2024, time.February, 2), 20), 4, false),
		trip("a", day(2024, time.February, 1), 80),
		fuel(trip("c", day(2024, time.February, 3), 120), 5, true),
	}
	first, err := Compute(phevVehicle(), trips, Levels{Fuel: 30, Energy: 8})
	require.NoError(t, err)
	second, err := Compute(phevVehicle(), trips, Levels{Fuel: 30, Energy: 8})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
