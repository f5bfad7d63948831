package world

import "github.com/arcadeworks/arena/internal/game/entity"

// Outbound event kinds. Addressed events go to exactly one connection;
// broadcast events go to every connection in the arena.
const (
	EventGameState             = "game_state"
	EventPlayerJoined          = "player_joined"
	EventPlayerLeft            = "player_left"
	EventPlayerMoved           = "player_moved"
	EventPlayerDamagedByMonster = "player_damaged_by_monster"
	EventMonsterDamaged        = "monster_damaged"
	EventMonsterKilled         = "monster_killed"
	EventItemCollected         = "item_collected"
	EventChatMessage           = "chat_message"
	EventPlayerDamaged         = "player_damaged"
	EventLevelUp               = "level_up"
	EventDuelRequestSent       = "duel_request_sent"
	EventDuelRequestReceived   = "duel_request_received"
	EventDuelError             = "duel_error"
	EventDuelStarted           = "duel_started"
	EventDuelEnded             = "duel_ended"
	EventDuelDeclined          = "duel_declined"
)

// Event is one outbound message: a kind plus its payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventSink fans events out to connected clients. Implementations must not
// block: the world calls them while holding its lock.
type EventSink interface {
	// Broadcast sends ev to every connection in the arena.
	Broadcast(ev Event)
	// BroadcastExcept sends ev to every connection except exceptID.
	BroadcastExcept(exceptID string, ev Event)
	// Send delivers ev to exactly one connection.
	Send(playerID string, ev Event)
}

// GameState is the full world snapshot, addressed to a joining player and
// broadcast after state-changing combat and duel events.
type GameState struct {
	Players  map[string]entity.Player     `json:"players"`
	Monsters map[string]entity.Monster    `json:"monsters"`
	Items    map[string]entity.GroundItem `json:"items"`
	Duels    map[string]entity.Duel       `json:"duels"`
}

type playerJoinedPayload struct {
	SessionID string        `json:"session_id"`
	Player    entity.Player `json:"player"`
}

type playerLeftPayload struct {
	SessionID string `json:"session_id"`
}

type playerMovedPayload struct {
	SessionID string  `json:"session_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type playerDamagedByMonsterPayload struct {
	PlayerID    string `json:"player_id"`
	MonsterID   string `json:"monster_id"`
	MonsterIcon string `json:"monster_icon"`
	Damage      int    `json:"damage"`
	HP          int    `json:"hp"`
}

type monsterDamagedPayload struct {
	MonsterID string `json:"monster_id"`
	Damage    int    `json:"damage"`
	HP        int    `json:"hp"`
}

type monsterKilledPayload struct {
	MonsterID   string `json:"monster_id"`
	Killer      string `json:"killer"`
	ExpGained   int    `json:"exp_gained"`
	ScoreGained int    `json:"score_gained"`
}

type itemCollectedPayload struct {
	ItemID     string          `json:"item_id"`
	Collector  string          `json:"collector"`
	ItemKind   entity.ItemKind `json:"item_kind"`
	ScoreBonus int             `json:"score_bonus"`
}

type chatMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type playerDamagedPayload struct {
	Attacker string `json:"attacker"`
	Target   string `json:"target"`
	Damage   int    `json:"damage"`
	HP       int    `json:"hp"`
}

type levelUpPayload struct {
	NewLevel int `json:"new_level"`
}

type duelRequestSentPayload struct {
	TargetUsername string `json:"target_username"`
	RequestID      string `json:"request_id"`
}

type duelRequestReceivedPayload struct {
	FromUsername string `json:"from_username"`
	RequestID    string `json:"request_id"`
}

type duelErrorPayload struct {
	Message string `json:"message"`
}

type duelStartedPayload struct {
	DuelID   string `json:"duel_id"`
	Opponent string `json:"opponent"`
}

type duelEndedPayload struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Result string `json:"result"`
}

type duelDeclinedPayload struct {
	FromUsername string `json:"from_username"`
}
