package models

import "time"

// PunishmentType classifies a sanction.
type PunishmentType string

const (
	TypeKick PunishmentType = "KICK"
	TypeMute PunishmentType = "MUTE"
	TypeBan  PunishmentType = "BAN"
)

// Severity orders punishment types from least to most severe.
func (t PunishmentType) Severity() int {
	switch t {
	case TypeKick:
		return 1
	case TypeMute:
		return 2
	case TypeBan:
		return 3
	}
	return 0
}

func (t PunishmentType) Valid() bool {
	return t.Severity() > 0
}

// Punishment is the authoritative sanction record. It is written exactly once
// when issued and never mutated afterwards; a player's current status is
// derived from the most recent unexpired record of each type.
type Punishment struct {
	ID        string         `json:"id" bson:"_id"`
	PlayerID  string         `json:"player_id" bson:"player_id"`
	IssuerID  string         `json:"issuer_id" bson:"issuer_id"`
	Type      PunishmentType `json:"type" bson:"type"`
	Reason    string         `json:"reason" bson:"reason"`
	Evidence  string         `json:"evidence,omitempty" bson:"evidence,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

// IsActive reports whether the punishment is still standing at the given
// instant. A nil expiry means permanent.
func (p *Punishment) IsActive(now time.Time) bool {
	return p.ExpiresAt == nil || p.ExpiresAt.After(now)
}
