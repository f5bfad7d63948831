package arena

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/world"
)

// Dispatcher fans world events out to connected clients. It implements
// world.EventSink; the world calls it while holding its lock, so every method
// only enqueues onto per-client buffered channels and never blocks. A client
// whose send buffer is full is disconnected.
type Dispatcher struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewDispatcher creates an empty Dispatcher.
//
// Precondition: logger must be non-nil.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the fan-out set.
//
// Precondition: c must be non-nil with a non-empty id.
func (d *Dispatcher) Register(c *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[c.id] = c
}

// Unregister removes the client for connID, if registered.
func (d *Dispatcher) Unregister(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.clients, connID)
}

// ClientCount returns the number of registered clients.
func (d *Dispatcher) ClientCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.clients)
}

// Broadcast sends ev to every registered client.
func (d *Dispatcher) Broadcast(ev world.Event) {
	msg, ok := d.marshal(ev)
	if !ok {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.clients {
		d.enqueue(c, msg)
	}
}

// BroadcastExcept sends ev to every registered client except exceptID.
func (d *Dispatcher) BroadcastExcept(exceptID string, ev world.Event) {
	msg, ok := d.marshal(ev)
	if !ok {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for id, c := range d.clients {
		if id == exceptID {
			continue
		}
		d.enqueue(c, msg)
	}
}

// Send delivers ev to the client for playerID. Unknown ids are dropped: the
// client disconnected between the world operation and the fan-out.
func (d *Dispatcher) Send(playerID string, ev world.Event) {
	msg, ok := d.marshal(ev)
	if !ok {
		return
	}
	d.mu.RLock()
	c, found := d.clients[playerID]
	d.mu.RUnlock()
	if !found {
		return
	}
	d.enqueue(c, msg)
}

func (d *Dispatcher) marshal(ev world.Event) ([]byte, bool) {
	msg, err := json.Marshal(ev)
	if err != nil {
		d.logger.Error("marshalling event", zap.String("type", ev.Type), zap.Error(err))
		return nil, false
	}
	return msg, true
}

// enqueue pushes msg onto the client's send buffer without blocking. A full
// buffer means the client stopped draining; it is closed from a separate
// goroutine because the caller may hold the world lock.
func (d *Dispatcher) enqueue(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		d.logger.Warn("client send buffer full, disconnecting", zap.String("conn_id", c.id))
		go c.Close()
	}
}
