package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tanmayd/research-hub/internal/models"
)

// RunStore persists research runs in MongoDB.
type RunStore struct {
	col *mongo.Collection
}

func NewRunStore(db *mongo.Database) *RunStore {
	return &RunStore{col: db.Collection("runs")}
}

// Insert stores a run and returns its hex id. Failed runs are stored too so
// their partial trace stays visible.
func (s *RunStore) Insert(ctx context.Context, run *models.Run) (string, error) {
	run.CreatedAt = time.Now()
	res, err := s.col.InsertOne(ctx, run)
	if err != nil {
		return "", fmt.Errorf("mongo insert run: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

// ListByUser returns a user's runs, newest first.
func (s *RunStore) ListByUser(ctx context.Context, userID string) ([]models.Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var runs []models.Run
	if err := cur.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *RunStore) GetByID(ctx context.Context, id string) (*models.Run, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id: %w", err)
	}
	var run models.Run
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *RunStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}
	_, err = s.col.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
