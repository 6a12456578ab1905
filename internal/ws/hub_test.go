package ws

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	payload := AllocatePayload{PowerKWc: 250}

	msg, err := NewEnvelope(TypeSiteAllocate, payload)
	require.NoError(t, err)

	var env Envelope
	err = json.Unmarshal(msg, &env)
	require.NoError(t, err)

	assert.Equal(t, TypeSiteAllocate, env.Type)

	var parsed AllocatePayload
	err = json.Unmarshal(env.Payload, &parsed)
	require.NoError(t, err)
	assert.Equal(t, 250.0, parsed.PowerKWc)
}

func TestNewEnvelope_NoPayload(t *testing.T) {
	msg, err := NewEnvelope(TypeSiteLoaded, nil)
	require.NoError(t, err)

	var env Envelope
	err = json.Unmarshal(msg, &env)
	require.NoError(t, err)

	assert.Equal(t, TypeSiteLoaded, env.Type)
	assert.Nil(t, env.Payload)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	c := &Client{
		hub:  hub,
		send: make(chan []byte, 16),
	}

	hub.Register(c)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	// second unregister is a no-op
	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	c1 := &Client{hub: hub, send: make(chan []byte, 16)}
	c2 := &Client{hub: hub, send: make(chan []byte, 16)}

	hub.Register(c1)
	hub.Register(c2)

	msg := []byte(`{"type":"test"}`)
	hub.Broadcast(msg)

	assert.Equal(t, msg, <-c1.send)
	assert.Equal(t, msg, <-c2.send)
}

func TestHub_BroadcastSkipsFullClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	full := &Client{hub: hub, send: make(chan []byte)}
	hub.Register(full)

	hub.Broadcast([]byte(`{"type":"test"}`))
	assert.Len(t, full.send, 0)
}

func TestMessageTypes(t *testing.T) {
	assert.Equal(t, "site:allocate", TypeSiteAllocate)
	assert.Equal(t, "site:sweep", TypeSiteSweep)
	assert.Equal(t, "study:set_price", TypeSetSalePrice)
	assert.Equal(t, "plant:set", TypePlantSet)
	assert.Equal(t, "site:loaded", TypeSiteLoaded)
	assert.Equal(t, "site:result", TypeSiteResult)
	assert.Equal(t, "site:error", TypeSiteError)
	assert.Equal(t, "plant:update", TypePlantUpdate)
	assert.Equal(t, "site:sweep_done", TypeSweepDone)
}
