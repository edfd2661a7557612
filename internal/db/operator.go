package db

import (
	"context"
	"time"

	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOperatorCollection implements OperatorCollection for MongoDB
type MongoOperatorCollection struct {
	Collection *mongo.Collection
}

// InsertOperator stores a new, active operator.
func (c *MongoOperatorCollection) InsertOperator(ctx context.Context, operator models.Operator) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if operator.ID.IsZero() {
		operator.ID = primitive.NewObjectID()
	}
	operator.CreatedAt = time.Now()
	operator.UpdatedAt = operator.CreatedAt
	operator.IsActive = true

	_, err := c.Collection.InsertOne(ctx, operator)
	return err
}

// FindOperatorByID finds an operator by hex ID.
func (c *MongoOperatorCollection) FindOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var operator models.Operator
	if err := c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&operator); err != nil {
		return nil, notFound("operator", id, err)
	}
	return &operator, nil
}

// FindOperatorByUsername finds an operator by login name.
func (c *MongoOperatorCollection) FindOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var operator models.Operator
	if err := c.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&operator); err != nil {
		return nil, notFound("operator", username, err)
	}
	return &operator, nil
}

// UpdateLastLogin stamps the operator's last login time.
func (c *MongoOperatorCollection) UpdateLastLogin(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}
