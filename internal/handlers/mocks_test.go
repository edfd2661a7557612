package handlers

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/ledger"
	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MockOperatorCollection is a mock implementation of OperatorCollection
type MockOperatorCollection struct {
	mock.Mock
}

func (m *MockOperatorCollection) InsertOperator(ctx context.Context, operator models.Operator) error {
	args := m.Called(ctx, operator)
	return args.Error(0)
}

func (m *MockOperatorCollection) FindOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

func (m *MockOperatorCollection) FindOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

func (m *MockOperatorCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVehicleCollection is a mock implementation of VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (db.Cursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	args := m.Called(ctx, id, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTripCollection is a mock implementation of TripCollection
type MockTripCollection struct {
	mock.Mock
}

func (m *MockTripCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockTripCollection) FindTripsByVehicle(ctx context.Context, vehicleID string) ([]models.Trip, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trip), args.Error(1)
}

func (m *MockTripCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockTripCollection) UpdateTrip(ctx context.Context, id string, trip models.Trip) error {
	args := m.Called(ctx, id, trip)
	return args.Error(0)
}

func (m *MockTripCollection) DeleteTrip(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTripCollection) CountTrips(ctx context.Context, vehicleID string) (int64, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReceiptCollection is a mock implementation of ReceiptCollection
type MockReceiptCollection struct {
	mock.Mock
}

func (m *MockReceiptCollection) InsertReceipt(ctx context.Context, receipt models.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptCollection) FindReceiptsByVehicle(ctx context.Context, vehicleID string) ([]models.Receipt, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Receipt), args.Error(1)
}

func (m *MockReceiptCollection) FindReceiptByID(ctx context.Context, id string) (*models.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}

func (m *MockReceiptCollection) UpdateReceipt(ctx context.Context, id string, receipt models.Receipt) error {
	args := m.Called(ctx, id, receipt)
	return args.Error(0)
}

// MockSummaryStore is a mock implementation of cache.SummaryStore
type MockSummaryStore struct {
	mock.Mock
}

func (m *MockSummaryStore) Get(ctx context.Context, vehicleID string, year int) (*ledger.YearSummary, error) {
	args := m.Called(ctx, vehicleID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.YearSummary), args.Error(1)
}

func (m *MockSummaryStore) Set(ctx context.Context, summary *ledger.YearSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSummaryStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	args := m.Called(ctx, vehicleID)
	return args.Error(0)
}

// MockPublisher records sensor states.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(state string) error {
	args := m.Called(state)
	return args.Error(0)
}

// sliceCursor serves a fixed result set.
type sliceCursor struct {
	items interface{}
}

func (c *sliceCursor) All(ctx context.Context, out interface{}) error {
	reflect.ValueOf(out).Elem().Set(reflect.ValueOf(c.items))
	return nil
}

func (c *sliceCursor) Close(ctx context.Context) error { return nil }

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 8, 0, 0, 0, time.UTC)
}

func iceVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:             "veh-1",
		Name:           "Octavia",
		Type:           models.VehicleICE,
		TankSizeLiters: models.Float(50),
		TPConsumption:  models.Float(6),
		IsActive:       true,
	}
}

// ledgerTrips is a closed 300 km period followed by an open 100 km one.
func ledgerTrips() []models.Trip {
	return []models.Trip{
		{
			ID: "t1", VehicleID: "veh-1", StartTime: at(2024, time.March, 1), DistanceKm: 300,
			FuelLiters: models.Float(18), FuelCostEUR: models.Float(30), FullTank: true,
		},
		{ID: "t2", VehicleID: "veh-1", StartTime: at(2024, time.March, 2), DistanceKm: 100},
	}
}

func errNotFound(id string) error {
	return fmt.Errorf("%s: %w", id, db.ErrNotFound)
}
