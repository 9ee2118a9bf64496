package services

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abusesystem/backend/internal/models"
)

type MongoPunishmentService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoPunishmentService(ctx context.Context, mongoURI, dbName string) (*MongoPunishmentService, error) {
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
	col := db.Collection("punishments")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "player_id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})

	return &MongoPunishmentService{client: client, db: db, col: col}, nil
}

func (s *MongoPunishmentService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Insert persists a new punishment record. The ID and creation time are
// assigned here; the stored record is returned as written.
func (s *MongoPunishmentService) Insert(ctx context.Context, p models.Punishment) (*models.Punishment, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindActive returns the most recent unexpired punishment of the given type
// for the player, or nil when the player has none standing.
func (s *MongoPunishmentService) FindActive(ctx context.Context, playerUUID string, typ models.PunishmentType) (*models.Punishment, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"player_id": playerUUID,
		"type":      typ,
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": now}},
		},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var out models.Punishment
	err := s.col.FindOne(ctx, filter, opts).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByPlayer returns the player's full punishment history, newest first.
func (s *MongoPunishmentService) ListByPlayer(ctx context.Context, playerUUID string) ([]models.Punishment, error) {
	cur, err := s.col.Find(ctx, bson.M{"player_id": playerUUID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	punishments := make([]models.Punishment, 0)
	if err := cur.All(ctx, &punishments); err != nil {
		return nil, err
	}
	return punishments, nil
}
