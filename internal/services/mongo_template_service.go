package services

import (
	"context"
	"crypto/tls"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abusesystem/backend/internal/models"
)

// ErrNoTemplate means no template threshold is satisfied by the player's
// points. This is informational, not a failure: the infraction was recorded
// but does not escalate into a sanction.
var ErrNoTemplate = errors.New("no punishment template matches")

type MongoTemplateService struct {
	client *mongo.Client
	db     *mongo.Database
	col    *mongo.Collection
}

func NewMongoTemplateService(ctx context.Context, mongoURI, dbName string) (*MongoTemplateService, error) {
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
	col := db.Collection("templates")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "reason", Value: 1}},
	})

	return &MongoTemplateService{client: client, db: db, col: col}, nil
}

func (s *MongoTemplateService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Create stores a template, assigning the next configuration sequence
// number. Seq breaks threshold ties in the resolver (first configured wins).
func (s *MongoTemplateService) Create(ctx context.Context, tpl models.PunishmentTemplate) (*models.PunishmentTemplate, error) {
	var last models.PunishmentTemplate
	err := s.col.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})).Decode(&last)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, err
	}
	tpl.Seq = last.Seq + 1

	if _, err := s.col.InsertOne(ctx, tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// FindByReasonAndCount resolves the template to apply for the given reason
// and accumulated points. Returns ErrNoTemplate when the count is below
// every configured threshold.
func (s *MongoTemplateService) FindByReasonAndCount(ctx context.Context, reason string, count int) (*models.PunishmentTemplate, error) {
	cur, err := s.col.Find(ctx, bson.M{"reason": reason}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var all []models.PunishmentTemplate
	if err := cur.All(ctx, &all); err != nil {
		return nil, err
	}

	tpl := SelectTemplate(all, count)
	if tpl == nil {
		return nil, ErrNoTemplate
	}
	return tpl, nil
}

// ListReasons returns the reasons templates are configured for.
func (s *MongoTemplateService) ListReasons(ctx context.Context) ([]string, error) {
	raw, err := s.col.Distinct(ctx, "reason", bson.M{})
	if err != nil {
		return nil, err
	}
	reasons := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			reasons = append(reasons, str)
		}
	}
	return reasons, nil
}

// SelectTemplate picks the template with the largest threshold <= count.
// Ties on threshold go to the first configured (lowest seq). templates must
// be sorted by seq ascending, as FindByReasonAndCount fetches them. Returns
// nil when count is below every threshold.
func SelectTemplate(templates []models.PunishmentTemplate, count int) *models.PunishmentTemplate {
	var best *models.PunishmentTemplate
	for i := range templates {
		tpl := &templates[i]
		if tpl.Points > count {
			continue
		}
		if best == nil || tpl.Points > best.Points {
			best = tpl
		}
	}
	return best
}
