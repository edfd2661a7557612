package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/models"
)

func TestSummaryKey(t *testing.T) {
	assert.Equal(t, "cache:summary:veh-1:2024", summaryKey("veh-1", 2024))
}

func TestSummaryCache_Disabled(t *testing.T) {
	c := NewSummaryCache(nil, 0)
	assert.Equal(t, DefaultSummaryTTL, c.ttl)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, &ledger.YearSummary{VehicleID: "v", Year: 2024}))

	got, err := c.Get(ctx, "v", 2024)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.InvalidateVehicle(ctx, "v"))
}

// Integration test (requires running Redis)
func TestSummaryCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
	}
	defer client.Close()

	c := NewSummaryCache(client, time.Minute)
	vehicleID := uuid.NewString()
	for _, year := range []int{2023, 2024} {
		require.NoError(t, c.Set(ctx, &ledger.YearSummary{
			VehicleID:  vehicleID,
			Year:       year,
			Type:       models.VehicleICE,
			DistanceKm: 1234.5,
		}))
	}

	got, err := c.Get(ctx, vehicleID, 2024)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1234.5, got.DistanceKm)
	assert.Equal(t, models.VehicleICE, got.Type)

	require.NoError(t, c.InvalidateVehicle(ctx, vehicleID))
	for _, year := range []int{2023, 2024} {
		got, err := c.Get(ctx, vehicleID, year)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}
