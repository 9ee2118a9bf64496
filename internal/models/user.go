package models

import "time"

// User is the identity record for a player on the fleet. Created on first
// connect, updated when the display name changes, never deleted.
type User struct {
	UUID       string    `json:"uuid" bson:"uuid"`
	LatestName string    `json:"latest_name" bson:"latest_name"`
	Notify     bool      `json:"notify" bson:"notify"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
