package presence

import (
	"context"
	"fmt"
	"time"

	"showroom-presence-svc/src/clients"
	"showroom-presence-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryEntry is an expired session as stored in the history collection.
type HistoryEntry struct {
	Record    `bson:",inline"`
	ExpiredAt time.Time `json:"expired_at" bson:"expired_at"`
}

type Repository interface {
	Archive(ctx context.Context, recs []Record) error
	Recent(ctx context.Context, limit int64) ([]HistoryEntry, error)
}

type repository struct {
	collection *mongo.Collection
}

func NewRepository(db *clients.MongoDB, collectionName string) Repository {
	collection := db.Database.Collection(collectionName)
	return &repository{collection: collection}
}

func (r *repository) Archive(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}

	expiredAt := time.Now()
	documents := make([]interface{}, len(recs))
	for i, rec := range recs {
		documents[i] = HistoryEntry{Record: rec, ExpiredAt: expiredAt}
	}

	result, err := r.collection.InsertMany(ctx, documents)
	if err != nil {
		logrus.WithError(err).WithField("count", len(recs)).Error("Failed to archive sessions")
		return fmt.Errorf("%w: %v", models.ErrDatabaseInsert, err)
	}

	logrus.WithField("count", len(result.InsertedIDs)).Debug("Sessions archived")
	return nil
}

func (r *repository) Recent(ctx context.Context, limit int64) ([]HistoryEntry, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.M{"expired_at": -1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find session history")
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []HistoryEntry
	for cursor.Next(ctx) {
		var entry HistoryEntry
		if err := cursor.Decode(&entry); err != nil {
			logrus.WithError(err).Error("Failed to decode session history entry")
			continue
		}
		entries = append(entries, entry)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, err
	}

	return entries, nil
}
