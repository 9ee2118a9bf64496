package fleet

// PermissionNotify gates staff-facing punishment notices.
const PermissionNotify = "punish.notify"

// Session is one live player connection on this node, provided by the host
// proxy/game runtime.
type Session interface {
	UUID() string
	Name() string
	IsConnected() bool
	Disconnect(message string)
	SetMuted(muted bool)
	SendMessage(message string)
	HasPermission(name string) bool
}

// Fleet exposes the sessions currently connected to this node. Other nodes'
// sessions are invisible here; cross-node effects travel over the
// propagation channel only.
type Fleet interface {
	AllSessions() []Session
	SessionFor(uuid string) Session
}
