package arena

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/world"
	"github.com/arcadeworks/arena/internal/records"
)

const (
	// writeWait bounds a single outbound frame write.
	writeWait = 10 * time.Second
	// pongWait is how long the read side tolerates silence before giving up.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client is one live WebSocket connection: a read pump decoding player
// messages into world operations and a write pump draining the send buffer.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	world      *world.World
	dispatcher *Dispatcher
	auth       *records.StaticAuth

	closeOnce sync.Once
}

// newClient wires a freshly upgraded connection into the world.
func newClient(
	id string,
	conn *websocket.Conn,
	logger *zap.Logger,
	w *world.World,
	d *Dispatcher,
	auth *records.StaticAuth,
) *Client {
	return &Client{
		id:         id,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		logger:     logger,
		world:      w,
		dispatcher: d,
		auth:       auth,
	}
}

// Close tears the connection down. Safe to call more than once; the read
// pump's deferred cleanup removes the player from the world.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// run starts both pumps. It returns immediately; cleanup happens when the
// read pump exits.
func (c *Client) run(ctx context.Context) {
	go c.writePump()
	go c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.dispatcher.Unregister(c.id)
		c.world.Leave(ctx, c.id)
		c.auth.Unbind(c.id)
		c.Close()
		close(c.send)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection closed unexpectedly", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Debug("dropping malformed message", zap.String("conn_id", c.id), zap.Error(err))
			continue
		}
		c.dispatch(ctx, env)
	}
}

// dispatch routes one inbound envelope to its world operation. Unknown kinds
// and malformed payloads are dropped.
func (c *Client) dispatch(ctx context.Context, env Envelope) {
	switch env.Type {
	case msgPlayerMove:
		var p movePayload
		if c.decode(env, &p) {
			c.world.Move(c.id, p.X, p.Y)
		}
	case msgAttackMonster:
		var p attackMonsterPayload
		if c.decode(env, &p) {
			c.world.AttackMonster(ctx, c.id, p.MonsterID)
		}
	case msgAttackPlayer:
		var p attackPlayerPayload
		if c.decode(env, &p) {
			c.world.AttackPlayer(ctx, c.id, p.TargetID)
		}
	case msgCollectItem:
		var p collectItemPayload
		if c.decode(env, &p) {
			c.world.CollectItem(ctx, c.id, p.ItemID)
		}
	case msgChatMessage:
		var p chatPayload
		if c.decode(env, &p) {
			c.world.Chat(c.id, p.Message)
		}
	case msgRequestDuel:
		var p requestDuelPayload
		if c.decode(env, &p) {
			c.world.RequestDuel(c.id, p.TargetUsername)
		}
	case msgAcceptDuel:
		var p acceptDuelPayload
		if c.decode(env, &p) {
			c.world.AcceptDuel(c.id, p.RequestID)
		}
	case msgDeclineDuel:
		var p declineDuelPayload
		if c.decode(env, &p) {
			c.world.DeclineDuel(c.id, p.RequestID)
		}
	case msgMonsterAITick:
		c.world.AdvanceSimulation()
	default:
		c.logger.Debug("unknown message type", zap.String("conn_id", c.id), zap.String("type", env.Type))
	}
}

func (c *Client) decode(env Envelope, dst any) bool {
	if err := json.Unmarshal(env.Data, dst); err != nil {
		c.logger.Debug("dropping malformed payload",
			zap.String("conn_id", c.id),
			zap.String("type", env.Type),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
