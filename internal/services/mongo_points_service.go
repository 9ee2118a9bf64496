package services

import (
	"context"
	"crypto/tls"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abusesystem/backend/internal/models"
)

type MongoPointsService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoPointsService(ctx context.Context, mongoURI, dbName string) (*MongoPointsService, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(dbName)
	col := db.Collection("punishpoints")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "player_id", Value: 1},
			{Key: "reason", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})

	return &MongoPointsService{client: client, db: db, col: col}, nil
}

func (s *MongoPointsService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// RecordInfraction atomically increments the tally for (player, reason),
// creating it at 1 on first infraction, and returns the new count. The $inc
// runs server-side so concurrent infractions on any fleet node never lose an
// increment.
func (s *MongoPointsService) RecordInfraction(ctx context.Context, playerUUID, reason string) (int, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$inc": bson.M{"points": 1},
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"player_id": playerUUID,
			"reason":    reason,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.PointsTally
	err := s.col.FindOneAndUpdate(ctx, bson.M{"player_id": playerUUID, "reason": reason}, update, opts).Decode(&out)
	if err != nil {
		return 0, err
	}
	return out.Points, nil
}

// Get returns the current tally for (player, reason); 0 when no infraction
// has been recorded yet.
func (s *MongoPointsService) Get(ctx context.Context, playerUUID, reason string) (int, error) {
	var out models.PointsTally
	err := s.col.FindOne(ctx, bson.M{"player_id": playerUUID, "reason": reason}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return out.Points, nil
}
