package services

import (
	"context"
	"crypto/tls"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abusesystem/backend/internal/models"
)

type MongoMessageService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoMessageService(ctx context.Context, mongoURI, dbName string) (*MongoMessageService, error) {
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
	col := db.Collection("messages")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoMessageService{client: client, db: db, col: col}, nil
}

func (s *MongoMessageService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// GetByName returns the template string for a named notice.
func (s *MongoMessageService) GetByName(ctx context.Context, name string) (string, error) {
	var out models.Message
	err := s.col.FindOne(ctx, bson.M{"name": name}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return "", fmt.Errorf("message %q not found", name)
	}
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Seed inserts the given notices where absent. Existing messages are left
// untouched so operator customizations survive restarts.
func (s *MongoMessageService) Seed(ctx context.Context, messages map[string]string) error {
	for name, message := range messages {
		update := bson.M{
			"$setOnInsert": bson.M{"name": name, "message": message},
		}
		if _, err := s.col.UpdateOne(ctx, bson.M{"name": name}, update, options.Update().SetUpsert(true)); err != nil {
			return err
		}
	}
	return nil
}
