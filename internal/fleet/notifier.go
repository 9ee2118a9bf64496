package fleet

import (
	"context"
	"log"

	"github.com/abusesystem/backend/internal/models"
)

// Notifier fans a staff notice out to this node's connected sessions. Each
// node filters against its own sessions; the notice itself is never
// re-propagated.
type Notifier struct {
	fleet    Fleet
	users    UserSource
	messages MessageSource
}

func NewNotifier(fl Fleet, users UserSource, messages MessageSource) *Notifier {
	return &Notifier{fleet: fl, users: users, messages: messages}
}

// NotifyPunishment sends the staff notice for p to every local session whose
// player both opted in and holds the notify permission.
func (n *Notifier) NotifyPunishment(ctx context.Context, p *models.Punishment) {
	var name string
	switch p.Type {
	case models.TypeBan:
		name = models.MsgStaffNotifyBan
	case models.TypeKick:
		name = models.MsgStaffNotifyKick
	case models.TypeMute:
		name = models.MsgStaffNotifyMute
	default:
		return
	}

	repl := map[string]string{
		"%player":   n.playerName(ctx, p.PlayerID),
		"%reason":   p.Reason,
		"%punisher": n.playerName(ctx, p.IssuerID),
		"%date":     formatExpiry(p.ExpiresAt),
	}
	message := renderMessage(ctx, n.messages, name, repl)

	for _, sess := range n.fleet.AllSessions() {
		user, err := n.users.FindByUUID(ctx, sess.UUID())
		if err != nil {
			log.Printf("[notify] user lookup failed uuid=%s err=%v", sess.UUID(), err)
			continue
		}
		if user == nil || !user.Notify {
			continue
		}
		if !sess.HasPermission(PermissionNotify) {
			continue
		}
		sess.SendMessage(message)
	}
}

func (n *Notifier) playerName(ctx context.Context, uuid string) string {
	user, err := n.users.FindByUUID(ctx, uuid)
	if err != nil || user == nil {
		return uuid
	}
	return user.LatestName
}
