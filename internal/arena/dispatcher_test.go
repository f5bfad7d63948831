package arena

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/world"
)

// newTestClient returns a client with no connection; tests read its send
// buffer directly.
func newTestClient(id string) *Client {
	return &Client{id: id, send: make(chan []byte, sendBufferSize)}
}

func drain(t *testing.T, c *Client) []world.Event {
	t.Helper()
	var out []world.Event
	for {
		select {
		case raw := <-c.send:
			var ev world.Event
			require.NoError(t, json.Unmarshal(raw, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	c1 := newTestClient("c1")
	c2 := newTestClient("c2")
	d.Register(c1)
	d.Register(c2)

	d.Broadcast(world.Event{Type: "chat_message", Data: map[string]string{"message": "hi"}})

	for _, c := range []*Client{c1, c2} {
		evs := drain(t, c)
		require.Len(t, evs, 1)
		assert.Equal(t, "chat_message", evs[0].Type)
	}
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	c1 := newTestClient("c1")
	c2 := newTestClient("c2")
	d.Register(c1)
	d.Register(c2)

	d.BroadcastExcept("c1", world.Event{Type: "player_moved"})

	assert.Empty(t, drain(t, c1))
	assert.Len(t, drain(t, c2), 1)
}

func TestSendAddressesOneClient(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	c1 := newTestClient("c1")
	c2 := newTestClient("c2")
	d.Register(c1)
	d.Register(c2)

	d.Send("c2", world.Event{Type: "duel_error"})

	assert.Empty(t, drain(t, c1))
	assert.Len(t, drain(t, c2), 1)
}

func TestSendToUnknownClientDropped(t *testing.T) {
	d := NewDispatcher(zap.NewNop())

	d.Send("ghost", world.Event{Type: "duel_error"})
}

func TestUnregisterStopsDelivery(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	c1 := newTestClient("c1")
	d.Register(c1)
	require.Equal(t, 1, d.ClientCount())

	d.Unregister("c1")
	d.Broadcast(world.Event{Type: "game_state"})

	assert.Empty(t, drain(t, c1))
	assert.Zero(t, d.ClientCount())
}
