package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parkingapp/auth-service/internal/core/domain"
)

const activityCollection = "auth_activity"

// ActivityStore implements ports.ActivityStore using MongoDB.
type ActivityStore struct {
	coll *mongo.Collection
}

func NewActivityStore(db *mongo.Database) *ActivityStore {
	return &ActivityStore{coll: db.Collection(activityCollection)}
}

// InsertActivity persists one audit event to the auth_activity collection.
func (r *ActivityStore) InsertActivity(ctx context.Context, event *domain.ActivityEvent) error {
	doc := bson.M{
		"username":    event.Username,
		"kind":        string(event.Kind),
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return storeErr("insert activity", err)
	}
	return nil
}

// ListActivity returns the most recent audit events, newest first.
func (r *ActivityStore) ListActivity(ctx context.Context, limit int64) ([]domain.ActivityEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("list activity", err)
	}
	defer cursor.Close(ctx)

	var events []domain.ActivityEvent
	for cursor.Next(ctx) {
		var doc struct {
			Username  string    `bson:"username"`
			Kind      string    `bson:"kind"`
			Timestamp time.Time `bson:"timestamp"`
			Detail    string    `bson:"detail,omitempty"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeErr("decode activity", err)
		}
		events = append(events, domain.ActivityEvent{
			Username:  doc.Username,
			Kind:      domain.ActivityKind(doc.Kind),
			Timestamp: doc.Timestamp,
			Detail:    doc.Detail,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("iterate activity", err)
	}
	return events, nil
}
