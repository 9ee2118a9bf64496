package models

import "time"

// PointsTally is the accumulated infraction count for one (player, reason)
// pair. Incremented on every committed infraction; this service never
// decrements it.
type PointsTally struct {
	PlayerID  string    `json:"player_id" bson:"player_id"`
	Reason    string    `json:"reason" bson:"reason"`
	Points    int       `json:"points" bson:"points"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
