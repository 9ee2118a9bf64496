package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abusesystem/backend/internal/models"
	"github.com/abusesystem/backend/internal/pubsub"
)

type fakeSession struct {
	uuid, name  string
	connected   bool
	perms       map[string]bool
	muted       bool
	disconnects int
	lastMessage string
	inbox       []string
}

func (s *fakeSession) UUID() string        { return s.uuid }
func (s *fakeSession) Name() string        { return s.name }
func (s *fakeSession) IsConnected() bool   { return s.connected }
func (s *fakeSession) SetMuted(muted bool) { s.muted = muted }

func (s *fakeSession) Disconnect(message string) {
	s.connected = false
	s.disconnects++
	s.lastMessage = message
}

func (s *fakeSession) SendMessage(message string) {
	s.inbox = append(s.inbox, message)
}

func (s *fakeSession) HasPermission(name string) bool {
	return s.perms[name]
}

type fakeUsers struct {
	users map[string]*models.User
	saves int
}

func (f *fakeUsers) FindByUUID(ctx context.Context, uuid string) (*models.User, error) {
	return f.users[uuid], nil
}

func (f *fakeUsers) Create(ctx context.Context, uuid, name string) (*models.User, error) {
	u := &models.User{UUID: uuid, LatestName: name, Notify: true, CreatedAt: time.Now()}
	f.users[uuid] = u
	return u, nil
}

func (f *fakeUsers) Save(ctx context.Context, user *models.User) error {
	f.users[user.UUID] = user
	f.saves++
	return nil
}

type fakeBans struct {
	active map[string]*models.Punishment // uuid -> ban
}

func (f *fakeBans) FindActive(ctx context.Context, uuid string, typ models.PunishmentType) (*models.Punishment, error) {
	if typ != models.TypeBan {
		return nil, nil
	}
	ban := f.active[uuid]
	if ban == nil || !ban.IsActive(time.Now().UTC()) {
		return nil, nil
	}
	return ban, nil
}

type fakeMessages struct {
	messages map[string]string
}

func (f *fakeMessages) GetByName(ctx context.Context, name string) (string, error) {
	return f.messages[name], nil
}

type applierFixture struct {
	registry *Registry
	users    *fakeUsers
	bans     *fakeBans
	applier  *Applier
}

func newApplierFixture() *applierFixture {
	users := &fakeUsers{users: map[string]*models.User{
		"uuid-target": {UUID: "uuid-target", LatestName: "Target", Notify: true},
		"uuid-staff":  {UUID: "uuid-staff", LatestName: "Staff", Notify: true},
	}}
	bans := &fakeBans{active: map[string]*models.Punishment{}}
	messages := &fakeMessages{messages: models.DefaultMessages}
	registry := NewRegistry()
	notifier := NewNotifier(registry, users, messages)
	applier := NewApplier(registry, users, bans, messages, notifier)
	return &applierFixture{registry: registry, users: users, bans: bans, applier: applier}
}

func kickEvent(id string) pubsub.Event {
	return pubsub.Event{
		Version:   pubsub.EventVersion,
		ID:        id,
		TargetID:  "uuid-target",
		IssuerID:  "uuid-staff",
		Type:      models.TypeKick,
		Reason:    "spam",
		CreatedAt: time.Now().UTC(),
	}
}

func TestHandleEventKicksLocalSession(t *testing.T) {
	fx := newApplierFixture()
	sess := &fakeSession{uuid: "uuid-target", name: "Target", connected: true, perms: map[string]bool{}}
	fx.registry.Register(sess)

	fx.applier.HandleEvent(context.Background(), kickEvent("p1"))

	assert.Equal(t, 1, sess.disconnects)
	assert.Equal(t, "You were kicked by Staff. Reason: spam", sess.lastMessage)
}

func TestHandleEventBanDisconnectsWithExpiry(t *testing.T) {
	fx := newApplierFixture()
	sess := &fakeSession{uuid: "uuid-target", name: "Target", connected: true, perms: map[string]bool{}}
	fx.registry.Register(sess)

	expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ev := kickEvent("p2")
	ev.Type = models.TypeBan
	ev.ExpiresAt = &expires
	fx.applier.HandleEvent(context.Background(), ev)

	assert.Equal(t, 1, sess.disconnects)
	assert.Equal(t, "You were banned by Staff until 2026-09-01 12:00 UTC. Reason: spam", sess.lastMessage)
}

func TestHandleEventMuteFlagsSessionWithoutDisconnect(t *testing.T) {
	fx := newApplierFixture()
	sess := &fakeSession{uuid: "uuid-target", name: "Target", connected: true, perms: map[string]bool{}}
	fx.registry.Register(sess)

	ev := kickEvent("p3")
	ev.Type = models.TypeMute
	fx.applier.HandleEvent(context.Background(), ev)

	assert.True(t, sess.muted)
	assert.Zero(t, sess.disconnects)
	require.Len(t, sess.inbox, 1)
	assert.Equal(t, "You were muted by Staff until permanent. Reason: spam", sess.inbox[0])
}

func TestHandleEventNoLocalSessionIsNoop(t *testing.T) {
	fx := newApplierFixture()
	// Target is connected to some other node; nothing to do here.
	assert.NotPanics(t, func() {
		fx.applier.HandleEvent(context.Background(), kickEvent("p4"))
	})
}

func TestHandleEventDuplicateDeliveryIsIdempotent(t *testing.T) {
	fx := newApplierFixture()
	sess := &fakeSession{uuid: "uuid-target", name: "Target", connected: true, perms: map[string]bool{}}
	staff := &fakeSession{uuid: "uuid-staff", name: "Staff", connected: true, perms: map[string]bool{PermissionNotify: true}}
	fx.registry.Register(sess)
	fx.registry.Register(staff)

	ev := kickEvent("p5")
	fx.applier.HandleEvent(context.Background(), ev)
	fx.applier.HandleEvent(context.Background(), ev)

	assert.Equal(t, 1, sess.disconnects, "redelivery must not disconnect twice")
	assert.Len(t, staff.inbox, 1, "redelivery must not re-notify staff")
}

func TestHandleEventDistinctPunishmentsBothApply(t *testing.T) {
	fx := newApplierFixture()
	sess := &fakeSession{uuid: "uuid-target", name: "Target", connected: true, perms: map[string]bool{}}
	fx.registry.Register(sess)

	muteA := kickEvent("p6")
	muteA.Type = models.TypeMute
	muteB := kickEvent("p7")
	muteB.Type = models.TypeMute

	fx.applier.HandleEvent(context.Background(), muteA)
	fx.applier.HandleEvent(context.Background(), muteB)

	// Dedup keys on punishment ID, not type.
	assert.Len(t, sess.inbox, 2)
}

func TestConnectRefusedForActiveBan(t *testing.T) {
	fx := newApplierFixture()
	expires := time.Now().UTC().Add(time.Hour)
	// The ban exists only in the ledger: this node never saw the publish.
	fx.bans.active["uuid-target"] = &models.Punishment{
		ID: "missed-ban", PlayerID: "uuid-target", IssuerID: "uuid-staff",
		Type: models.TypeBan, Reason: "spam", ExpiresAt: &expires,
	}

	sess := &fakeSession{uuid: "uuid-target", name: "Target", connected: true, perms: map[string]bool{}}
	refused, err := fx.applier.OnSessionConnect(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, refused)
	assert.Equal(t, 1, sess.disconnects)
	assert.Contains(t, sess.lastMessage, "spam")
}

func TestConnectAllowedWhenBanExpired(t *testing.T) {
	fx := newApplierFixture()
	expired := time.Now().UTC().Add(-time.Minute)
	fx.bans.active["uuid-target"] = &models.Punishment{
		ID: "old-ban", PlayerID: "uuid-target", Type: models.TypeBan, ExpiresAt: &expired,
	}

	sess := &fakeSession{uuid: "uuid-target", name: "Target", connected: true, perms: map[string]bool{}}
	refused, err := fx.applier.OnSessionConnect(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, refused)
	assert.Zero(t, sess.disconnects)
}

func TestConnectBootstrapsUnknownUser(t *testing.T) {
	fx := newApplierFixture()
	sess := &fakeSession{uuid: "uuid-new", name: "Newcomer", connected: true, perms: map[string]bool{}}

	refused, err := fx.applier.OnSessionConnect(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, refused)

	created := fx.users.users["uuid-new"]
	require.NotNil(t, created)
	assert.Equal(t, "Newcomer", created.LatestName)
	assert.True(t, created.Notify)
}

func TestConnectRefreshesChangedName(t *testing.T) {
	fx := newApplierFixture()
	sess := &fakeSession{uuid: "uuid-target", name: "Renamed", connected: true, perms: map[string]bool{}}

	_, err := fx.applier.OnSessionConnect(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fx.users.users["uuid-target"].LatestName)
	assert.Equal(t, 1, fx.users.saves)
}

func TestNotifierFiltersPermissionAndOptIn(t *testing.T) {
	fx := newApplierFixture()
	fx.users.users["uuid-mod"] = &models.User{UUID: "uuid-mod", LatestName: "Mod", Notify: true}
	fx.users.users["uuid-optout"] = &models.User{UUID: "uuid-optout", LatestName: "OptOut", Notify: false}
	fx.users.users["uuid-plain"] = &models.User{UUID: "uuid-plain", LatestName: "Plain", Notify: true}

	mod := &fakeSession{uuid: "uuid-mod", name: "Mod", connected: true, perms: map[string]bool{PermissionNotify: true}}
	optOut := &fakeSession{uuid: "uuid-optout", name: "OptOut", connected: true, perms: map[string]bool{PermissionNotify: true}}
	plain := &fakeSession{uuid: "uuid-plain", name: "Plain", connected: true, perms: map[string]bool{}}
	fx.registry.Register(mod)
	fx.registry.Register(optOut)
	fx.registry.Register(plain)

	fx.applier.HandleEvent(context.Background(), kickEvent("p8"))

	require.Len(t, mod.inbox, 1)
	assert.Equal(t, "Target was kicked by Staff. Reason: spam", mod.inbox[0])
	assert.Empty(t, optOut.inbox, "opted-out staff see nothing")
	assert.Empty(t, plain.inbox, "players without the permission see nothing")
}
