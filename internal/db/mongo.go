package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	VehiclesCollection  = "vehicles"
	TripsCollection     = "trips"
	ReceiptsCollection  = "receipts"
	OperatorsCollection = "operators"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the lookups the ledger queries rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(TripsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "start_time", Value: 1}, {Key: "sort_index", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("trip index: %w", err)
	}
	_, err = database.Collection(ReceiptsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "trip_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("receipt index: %w", err)
	}
	_, err = database.Collection(OperatorsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("operator index: %w", err)
	}
	return nil
}

// MongoCollection wraps one MongoDB collection. The same type serves
// vehicles, trips and receipts depending on which collection it wraps.
type MongoCollection struct {
	Collection *mongo.Collection
}

var errNilCollection = errors.New("mongo collection is nil")

type mongoCursor struct {
	cursor *mongo.Cursor
}

func (m *mongoCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

func (m *mongoCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicles queries vehicle records from the collection.
func (c *MongoCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoCursor{cursor: cursor}, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var vehicle models.Vehicle
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle); err != nil {
		return nil, notFound("vehicle", id, err)
	}
	return &vehicle, nil
}

// UpdateVehicle replaces a vehicle by its ID.
func (c *MongoCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	vehicle.ID = id
	vehicle.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": id}, vehicle)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoCollection) DeleteVehicle(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return nil
}

// InsertTrip inserts a trip record into the collection.
func (c *MongoCollection) InsertTrip(ctx context.Context, trip models.Trip) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, trip)
	return err
}

// FindTripsByVehicle returns every trip of a vehicle in ledger order.
func (c *MongoCollection) FindTripsByVehicle(ctx context.Context, vehicleID string) ([]models.Trip, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "sort_index", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trips := []models.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// FindTripByID finds a trip by its ID.
func (c *MongoCollection) FindTripByID(ctx context.Context, id string) (*models.Trip, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var trip models.Trip
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&trip); err != nil {
		return nil, notFound("trip", id, err)
	}
	return &trip, nil
}

// UpdateTrip replaces a trip by its ID.
func (c *MongoCollection) UpdateTrip(ctx context.Context, id string, trip models.Trip) error {
	if c.Collection == nil {
		return errNilCollection
	}
	trip.ID = id
	trip.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": id}, trip)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("trip %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTrip deletes a trip by its ID.
func (c *MongoCollection) DeleteTrip(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// CountTrips counts the trips logged for a vehicle.
func (c *MongoCollection) CountTrips(ctx context.Context, vehicleID string) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{"vehicle_id": vehicleID})
}

// InsertReceipt inserts a receipt record into the collection.
func (c *MongoCollection) InsertReceipt(ctx context.Context, receipt models.Receipt) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if err := receipt.ValidateAssignment(); err != nil {
		return err
	}
	now := time.Now()
	receipt.CreatedAt = now
	receipt.UpdatedAt = now
	_, err := c.Collection.InsertOne(ctx, receipt)
	return err
}

// FindReceiptsByVehicle returns the vehicle's receipts plus the ones not yet
// tied to any vehicle.
func (c *MongoCollection) FindReceiptsByVehicle(ctx context.Context, vehicleID string) ([]models.Receipt, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"vehicle_id": vehicleID},
		bson.M{"vehicle_id": bson.M{"$exists": false}},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "receipt_date", Value: 1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	receipts := []models.Receipt{}
	if err := cursor.All(ctx, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindReceiptByID finds a receipt by its ID.
func (c *MongoCollection) FindReceiptByID(ctx context.Context, id string) (*models.Receipt, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var receipt models.Receipt
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&receipt); err != nil {
		return nil, notFound("receipt", id, err)
	}
	return &receipt, nil
}

// UpdateReceipt replaces a receipt by its ID.
func (c *MongoCollection) UpdateReceipt(ctx context.Context, id string, receipt models.Receipt) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if err := receipt.ValidateAssignment(); err != nil {
		return err
	}
	receipt.ID = id
	receipt.UpdatedAt = time.Now()
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": id}, receipt)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("receipt %s: %w", id, ErrNotFound)
	}
	return nil
}
