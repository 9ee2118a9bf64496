package models

import "time"

// PunishmentTemplate maps a reason plus a point threshold to a concrete
// sanction. Templates sharing a reason form an escalation ladder; the
// resolver picks the highest threshold the player's points satisfy.
// Seq records configuration order and breaks threshold ties (first wins).
type PunishmentTemplate struct {
	Reason   string         `json:"reason" bson:"reason"`
	Points   int            `json:"points" bson:"points"`
	Type     PunishmentType `json:"type" bson:"type"`
	Duration time.Duration  `json:"duration" bson:"duration"` // 0 = permanent
	Seq      int            `json:"seq" bson:"seq"`
}
