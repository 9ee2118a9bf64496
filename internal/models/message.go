package models

// Message is a named user-facing notice template. Placeholders %player,
// %reason, %punisher and %date are substituted at render time.
type Message struct {
	Name    string `json:"name" bson:"name"`
	Message string `json:"message" bson:"message"`
}

// Fixed notice names consumed by the node applier and staff notifier.
const (
	MsgPlayerKick       = "player-kick-kick"
	MsgPlayerBanKick    = "player-ban-kick"
	MsgPlayerMute       = "player-mute-mute"
	MsgPlayerBanConnect = "player-ban-connect-cancel"
	MsgStaffNotifyBan   = "staff-notify-ban"
	MsgStaffNotifyKick  = "staff-notify-kick"
	MsgStaffNotifyMute  = "staff-notify-mute"
)

// DefaultMessages seeds the message collection and serves as a fallback when
// a notice is missing from storage.
var DefaultMessages = map[string]string{
	MsgPlayerKick:       "You were kicked by %punisher. Reason: %reason",
	MsgPlayerBanKick:    "You were banned by %punisher until %date. Reason: %reason",
	MsgPlayerMute:       "You were muted by %punisher until %date. Reason: %reason",
	MsgPlayerBanConnect: "You are banned until %date. Reason: %reason",
	MsgStaffNotifyBan:   "%player was banned by %punisher until %date. Reason: %reason",
	MsgStaffNotifyKick:  "%player was kicked by %punisher. Reason: %reason",
	MsgStaffNotifyMute:  "%player was muted by %punisher until %date. Reason: %reason",
}
