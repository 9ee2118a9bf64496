package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abusesystem/backend/internal/models"
	"github.com/abusesystem/backend/internal/pubsub"
)

var (
	ErrUnknownPlayer = errors.New("player not found")
	ErrUnknownReason = errors.New("reason not configured")
	ErrAlreadyBanned = errors.New("player already banned")
	ErrAlreadyMuted  = errors.New("player already muted")
)

// Storage contracts consumed by the escalation engine. Each fleet node holds
// its own instances; coordination happens through the shared backend and the
// propagation channel, never through in-process state.

type UserStore interface {
	FindByUUID(ctx context.Context, uuid string) (*models.User, error)
	FindByLatestName(ctx context.Context, name string) (*models.User, error)
	Create(ctx context.Context, uuid, name string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

type PointsStore interface {
	RecordInfraction(ctx context.Context, playerUUID, reason string) (int, error)
	Get(ctx context.Context, playerUUID, reason string) (int, error)
}

type TemplateStore interface {
	FindByReasonAndCount(ctx context.Context, reason string, count int) (*models.PunishmentTemplate, error)
	ListReasons(ctx context.Context) ([]string, error)
}

type PunishmentStore interface {
	FindActive(ctx context.Context, playerUUID string, typ models.PunishmentType) (*models.Punishment, error)
	Insert(ctx context.Context, p models.Punishment) (*models.Punishment, error)
	ListByPlayer(ctx context.Context, playerUUID string) ([]models.Punishment, error)
}

// PunishResult is the outcome of a committed infraction. When no template
// threshold was reached the infraction still counted but Punishment is nil.
type PunishResult struct {
	Escalated  bool               `json:"escalated"`
	Points     int                `json:"points"`
	Punishment *models.Punishment `json:"punishment,omitempty"`
}

// PunishmentService turns a committed offense into a concrete sanction:
// record the infraction points, resolve the escalation template, commit the
// punishment record and publish it to the fleet.
type PunishmentService struct {
	users       UserStore
	points      PointsStore
	templates   TemplateStore
	punishments PunishmentStore
	publisher   pubsub.Publisher
}

func NewPunishmentService(users UserStore, points PointsStore, templates TemplateStore, punishments PunishmentStore, publisher pubsub.Publisher) *PunishmentService {
	return &PunishmentService{
		users:       users,
		points:      points,
		templates:   templates,
		punishments: punishments,
		publisher:   publisher,
	}
}

// Punish records an infraction of reason against the named player and issues
// the punishment the player's accumulated points escalate to, if any.
//
// The ledger write always strictly precedes the publish, and a failed publish
// is logged but never rolls the record back: the stored punishment is
// authoritative and the connect-time check is the consistency backstop for
// nodes that missed the broadcast.
func (s *PunishmentService) Punish(ctx context.Context, playerName, issuerUUID, reason, evidence string) (*PunishResult, error) {
	target, err := s.users.FindByLatestName(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if target == nil {
		return nil, ErrUnknownPlayer
	}

	reasons, err := s.templates.ListReasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reasons: %w", err)
	}
	if !contains(reasons, reason) {
		return nil, ErrUnknownReason
	}

	count, err := s.points.RecordInfraction(ctx, target.UUID, reason)
	if err != nil {
		return nil, fmt.Errorf("points ledger: %w", err)
	}

	tpl, err := s.templates.FindByReasonAndCount(ctx, reason, count)
	if err == ErrNoTemplate {
		// Below every threshold: the infraction counted but nothing escalates.
		return &PunishResult{Escalated: false, Points: count}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("template resolve: %w", err)
	}

	p, err := s.issue(ctx, target, issuerUUID, reason, evidence, tpl)
	if err != nil {
		return nil, err
	}

	ev := pubsub.NewEvent(p)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		// Fire and forget: the record is committed either way.
		log.Printf("[punish] publish failed id=%s target=%s err=%v", p.ID, p.PlayerID, err)
	}

	return &PunishResult{Escalated: true, Points: count, Punishment: p}, nil
}

// issue runs the precondition checks in order and persists the record. The
// check-then-insert is not fleet-locked; a concurrent double issue can leave
// a benign duplicate, which the node applier deduplicates by punishment ID.
func (s *PunishmentService) issue(ctx context.Context, target *models.User, issuerUUID, reason, evidence string, tpl *models.PunishmentTemplate) (*models.Punishment, error) {
	ban, err := s.punishments.FindActive(ctx, target.UUID, models.TypeBan)
	if err != nil {
		return nil, fmt.Errorf("ban lookup: %w", err)
	}
	if ban != nil {
		return nil, ErrAlreadyBanned
	}

	if tpl.Type == models.TypeMute {
		mute, err := s.punishments.FindActive(ctx, target.UUID, models.TypeMute)
		if err != nil {
			return nil, fmt.Errorf("mute lookup: %w", err)
		}
		if mute != nil {
			return nil, ErrAlreadyMuted
		}
	}

	now := time.Now().UTC()
	p := models.Punishment{
		PlayerID:  target.UUID,
		IssuerID:  issuerUUID,
		Type:      tpl.Type,
		Reason:    reason,
		Evidence:  evidence,
		CreatedAt: now,
	}
	if tpl.Duration > 0 {
		expires := now.Add(tpl.Duration)
		p.ExpiresAt = &expires
	}

	persisted, err := s.punishments.Insert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("punishment insert: %w", err)
	}
	return persisted, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
