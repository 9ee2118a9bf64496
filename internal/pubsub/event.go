package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abusesystem/backend/internal/models"
)

// ChannelName is the fleet-wide channel every node publishes punishment
// events to and subscribes on.
const ChannelName = "punish-punishment-object"

// EventVersion is the wire format version stamped on every published event.
const EventVersion = 1

// Event is the serialized punishment carried over the propagation channel.
// Delivery is at most once, unacknowledged and unordered across events;
// receivers must tolerate both missed and duplicate delivery.
type Event struct {
	Version   int                   `json:"v"`
	ID        string                `json:"id"`
	TargetID  string                `json:"target_id"`
	IssuerID  string                `json:"issuer_id"`
	Type      models.PunishmentType `json:"type"`
	Reason    string                `json:"reason"`
	Evidence  string                `json:"evidence,omitempty"`
	ExpiresAt *time.Time            `json:"expires_at,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// NewEvent wraps a committed punishment record for publishing.
func NewEvent(p *models.Punishment) Event {
	return Event{
		Version:   EventVersion,
		ID:        p.ID,
		TargetID:  p.PlayerID,
		IssuerID:  p.IssuerID,
		Type:      p.Type,
		Reason:    p.Reason,
		Evidence:  p.Evidence,
		ExpiresAt: p.ExpiresAt,
		CreatedAt: p.CreatedAt,
	}
}

// Punishment reconstructs the record carried by the event.
func (e Event) Punishment() *models.Punishment {
	return &models.Punishment{
		ID:        e.ID,
		PlayerID:  e.TargetID,
		IssuerID:  e.IssuerID,
		Type:      e.Type,
		Reason:    e.Reason,
		Evidence:  e.Evidence,
		ExpiresAt: e.ExpiresAt,
		CreatedAt: e.CreatedAt,
	}
}

func EncodeEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a wire payload, rejecting unknown versions so a node
// never misapplies an event from an incompatible fleet release.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Version != EventVersion {
		return Event{}, fmt.Errorf("unsupported event version %d", e.Version)
	}
	if e.ID == "" || e.TargetID == "" || !e.Type.Valid() {
		return Event{}, fmt.Errorf("malformed event: id=%q target=%q type=%q", e.ID, e.TargetID, e.Type)
	}
	return e, nil
}
