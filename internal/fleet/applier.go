package fleet

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/abusesystem/backend/internal/models"
	"github.com/abusesystem/backend/internal/pubsub"
)

// UserSource is the slice of the user ledger the applier needs.
type UserSource interface {
	FindByUUID(ctx context.Context, uuid string) (*models.User, error)
	Create(ctx context.Context, uuid, name string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// BanSource answers the connect-time ban check.
type BanSource interface {
	FindActive(ctx context.Context, playerUUID string, typ models.PunishmentType) (*models.Punishment, error)
}

// Applier reacts to fleet punishment events on one node: it sanctions the
// target's local session if there is one, and fans the staff notice out to
// this node's sessions. It also runs the synchronous connect-time ban check,
// which is the consistency backstop for events this node never received.
type Applier struct {
	fleet    Fleet
	users    UserSource
	bans     BanSource
	messages MessageSource
	notifier *Notifier

	mu      sync.Mutex
	applied map[string]struct{} // punishment IDs already handled on this node
}

func NewApplier(fl Fleet, users UserSource, bans BanSource, messages MessageSource, notifier *Notifier) *Applier {
	return &Applier{
		fleet:    fl,
		users:    users,
		bans:     bans,
		messages: messages,
		notifier: notifier,
		applied:  make(map[string]struct{}),
	}
}

// HandleEvent applies one punishment event. Redelivery of an already-handled
// punishment ID is a no-op: the transport promises nothing about duplicates,
// and a concurrent double issue can also produce one.
func (a *Applier) HandleEvent(ctx context.Context, e pubsub.Event) {
	a.mu.Lock()
	if _, seen := a.applied[e.ID]; seen {
		a.mu.Unlock()
		log.Printf("[applier] duplicate event id=%s, skipping", e.ID)
		return
	}
	a.applied[e.ID] = struct{}{}
	a.mu.Unlock()

	p := e.Punishment()
	a.applyLocal(ctx, p)
	a.notifier.NotifyPunishment(ctx, p)
}

func (a *Applier) applyLocal(ctx context.Context, p *models.Punishment) {
	sess := a.fleet.SessionFor(p.PlayerID)
	if sess == nil || !sess.IsConnected() {
		// Common case: the target is connected to some other node, or not at all.
		return
	}

	repl := map[string]string{
		"%player":   sess.Name(),
		"%reason":   p.Reason,
		"%punisher": a.issuerName(ctx, p.IssuerID),
		"%date":     formatExpiry(p.ExpiresAt),
	}

	switch p.Type {
	case models.TypeKick:
		sess.Disconnect(renderMessage(ctx, a.messages, models.MsgPlayerKick, repl))
		log.Printf("[applier] kicked %s id=%s", sess.Name(), p.ID)
	case models.TypeBan:
		sess.Disconnect(renderMessage(ctx, a.messages, models.MsgPlayerBanKick, repl))
		log.Printf("[applier] disconnected banned %s id=%s", sess.Name(), p.ID)
	case models.TypeMute:
		sess.SetMuted(true)
		sess.SendMessage(renderMessage(ctx, a.messages, models.MsgPlayerMute, repl))
		log.Printf("[applier] muted %s id=%s", sess.Name(), p.ID)
	default:
		log.Printf("[applier] unknown punishment type %q id=%s", p.Type, p.ID)
	}
}

// OnSessionConnect runs when the host establishes a new session: it
// bootstraps the user record, refreshes the display name, and refuses the
// connection when an active ban exists. refused reports whether the session
// was disconnected.
func (a *Applier) OnSessionConnect(ctx context.Context, sess Session) (refused bool, err error) {
	user, err := a.users.FindByUUID(ctx, sess.UUID())
	if err != nil {
		return false, fmt.Errorf("user lookup: %w", err)
	}
	if user == nil {
		if user, err = a.users.Create(ctx, sess.UUID(), sess.Name()); err != nil {
			return false, fmt.Errorf("user create: %w", err)
		}
	} else if user.LatestName != sess.Name() {
		user.LatestName = sess.Name()
		if err := a.users.Save(ctx, user); err != nil {
			return false, fmt.Errorf("user save: %w", err)
		}
	}

	ban, err := a.bans.FindActive(ctx, sess.UUID(), models.TypeBan)
	if err != nil {
		return false, fmt.Errorf("ban lookup: %w", err)
	}
	if ban == nil || !ban.IsActive(time.Now().UTC()) {
		return false, nil
	}

	repl := map[string]string{
		"%player":   sess.Name(),
		"%reason":   ban.Reason,
		"%punisher": a.issuerName(ctx, ban.IssuerID),
		"%date":     formatExpiry(ban.ExpiresAt),
	}
	sess.Disconnect(renderMessage(ctx, a.messages, models.MsgPlayerBanConnect, repl))
	log.Printf("[applier] refused banned %s at connect, punishment id=%s", sess.Name(), ban.ID)
	return true, nil
}

func (a *Applier) issuerName(ctx context.Context, issuerID string) string {
	issuer, err := a.users.FindByUUID(ctx, issuerID)
	if err != nil || issuer == nil {
		return issuerID
	}
	return issuer.LatestName
}
