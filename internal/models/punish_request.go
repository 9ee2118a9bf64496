package models

// PunishRequest is the staff command payload for recording an infraction.
type PunishRequest struct {
	Player   string `json:"player"`
	Reason   string `json:"reason"`
	Evidence string `json:"evidence,omitempty"`
}

func (r *PunishRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Player == "" {
		errors["player"] = "Player is required"
	}
	if r.Reason == "" {
		errors["reason"] = "Reason is required"
	}

	return errors
}
