// Package arena is the WebSocket transport for the world engine: it upgrades
// connections, decodes inbound player messages into world operations, and
// fans world events back out to connected clients.
package arena

import "encoding/json"

// Inbound message kinds.
const (
	msgPlayerMove    = "player_move"
	msgAttackMonster = "attack_monster"
	msgAttackPlayer  = "attack_player"
	msgCollectItem   = "collect_item"
	msgChatMessage   = "chat_message"
	msgRequestDuel   = "request_duel"
	msgAcceptDuel    = "accept_duel"
	msgDeclineDuel   = "decline_duel"
	msgMonsterAITick = "monster_ai_tick"
)

// Envelope frames every message in both directions: a kind plus a payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type movePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type attackMonsterPayload struct {
	MonsterID string `json:"monster_id"`
}

type attackPlayerPayload struct {
	TargetID string `json:"target_player_id"`
}

type collectItemPayload struct {
	ItemID string `json:"item_id"`
}

type chatPayload struct {
	Message string `json:"message"`
}

type requestDuelPayload struct {
	TargetUsername string `json:"target_username"`
}

type acceptDuelPayload struct {
	RequestID string `json:"request_id"`
}

type declineDuelPayload struct {
	RequestID string `json:"request_id"`
}
