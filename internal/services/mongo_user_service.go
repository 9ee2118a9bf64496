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

type MongoUserService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoUserService(ctx context.Context, mongoURI, dbName string) (*MongoUserService, error) {
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
	col := db.Collection("users")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uuid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoUserService{client: client, db: db, col: col}, nil
}

func (s *MongoUserService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FindByUUID returns the user with the given UUID, or nil when no such user
// exists ("never seen" is not an error).
func (s *MongoUserService) FindByUUID(ctx context.Context, uuid string) (*models.User, error) {
	var out models.User
	err := s.col.FindOne(ctx, bson.M{"uuid": uuid}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByLatestName resolves a player by their most recently seen display
// name. Returns nil when unknown.
func (s *MongoUserService) FindByLatestName(ctx context.Context, name string) (*models.User, error) {
	var out models.User
	err := s.col.FindOne(ctx, bson.M{"latest_name": name}).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoUserService) Create(ctx context.Context, uuid, name string) (*models.User, error) {
	user := &models.User{
		UUID:       uuid,
		LatestName: name,
		Notify:     true,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *MongoUserService) Save(ctx context.Context, user *models.User) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"uuid": user.UUID},
		bson.M{"$set": bson.M{"latest_name": user.LatestName, "notify": user.Notify}},
	)
	return err
}
