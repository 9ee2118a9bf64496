package models

import "time"

// StaffAccount authenticates a staff member against the punish API. The
// PlayerUUID links the account to the staff member's in-game identity so
// issued punishments reference a real User.
type StaffAccount struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	PlayerUUID   string    `json:"player_uuid"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterStaffRequest struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	PlayerUUID string `json:"player_uuid"`
}

type LoginStaffRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type StaffAuthResponse struct {
	Token string       `json:"token"`
	Staff StaffAccount `json:"staff"`
}

func (r *RegisterStaffRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}
	if r.PlayerUUID == "" {
		errors["player_uuid"] = "Player UUID is required"
	}

	return errors
}

func (r *LoginStaffRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}
