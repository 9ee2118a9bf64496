package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryTracksSessions(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.SessionFor("uuid-1"))
	assert.Empty(t, r.AllSessions())

	sess := &fakeSession{uuid: "uuid-1", name: "One", connected: true}
	r.Register(sess)
	assert.Equal(t, sess, r.SessionFor("uuid-1").(*fakeSession))
	assert.Len(t, r.AllSessions(), 1)

	r.Unregister("uuid-1")
	assert.Nil(t, r.SessionFor("uuid-1"))
}
