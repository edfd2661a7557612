package db

import (
	"context"
	"errors"

	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

// Cursor defines the interface for cursor operations.
type Cursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
}

// TripCollection defines the interface for trip data operations.
type TripCollection interface {
	InsertTrip(ctx context.Context, trip models.Trip) error
	FindTripsByVehicle(ctx context.Context, vehicleID string) ([]models.Trip, error)
	FindTripByID(ctx context.Context, id string) (*models.Trip, error)
	UpdateTrip(ctx context.Context, id string, trip models.Trip) error
	DeleteTrip(ctx context.Context, id string) error
	CountTrips(ctx context.Context, vehicleID string) (int64, error)
}

// ReceiptCollection defines the interface for receipt data operations.
type ReceiptCollection interface {
	InsertReceipt(ctx context.Context, receipt models.Receipt) error
	FindReceiptsByVehicle(ctx context.Context, vehicleID string) ([]models.Receipt, error)
	FindReceiptByID(ctx context.Context, id string) (*models.Receipt, error)
	UpdateReceipt(ctx context.Context, id string, receipt models.Receipt) error
}

// OperatorCollection defines the interface for operator account operations.
type OperatorCollection interface {
	InsertOperator(ctx context.Context, operator models.Operator) error
	FindOperatorByID(ctx context.Context, id string) (*models.Operator, error)
	FindOperatorByUsername(ctx context.Context, username string) (*models.Operator, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
