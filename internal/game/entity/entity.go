// Package entity defines the ephemeral world entities: players, monsters,
// ground items, duels, and duel requests. All entities live only for the
// process lifetime; the world is rebuilt on startup.
package entity

import "time"

// PlayerMaxHP is the hp ceiling for every player.
const PlayerMaxHP = 100

// Arena bounds. Monsters are clamped to this box when moving.
const (
	ArenaMinX = 25.0
	ArenaMaxX = 775.0
	ArenaMinY = 25.0
	ArenaMaxY = 575.0
)

// MonsterKind distinguishes regular monsters from the boss.
type MonsterKind string

const (
	MonsterNormal MonsterKind = "normal"
	MonsterBoss   MonsterKind = "boss"
)

// ItemKind identifies a ground item pickup.
type ItemKind string

const (
	ItemGem    ItemKind = "gem"
	ItemWeapon ItemKind = "weapon"
	ItemShield ItemKind = "shield"
	ItemCoin   ItemKind = "coin"
)

// ItemKinds lists every spawnable item kind.
var ItemKinds = []ItemKind{ItemGem, ItemWeapon, ItemShield, ItemCoin}

// Player is the transient in-world entity for one live connection.
//
// Invariant: 0 <= HP <= PlayerMaxHP. DuelID, when non-empty, references an
// active duel in which this player participates.
type Player struct {
	// ID is the connection id this player is bound to.
	ID      string    `json:"session_id"`
	Account string    `json:"username"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Level   int       `json:"level"`
	Exp     int       `json:"exp"`
	HP      int       `json:"hp"`
	LastSeen time.Time `json:"last_seen"`
	DuelID  string    `json:"in_duel,omitempty"`
}

// InDuel reports whether the player is currently duelling.
func (p *Player) InDuel() bool { return p.DuelID != "" }

// ApplyDamage subtracts damage from hp, clamping at zero.
//
// Precondition: damage >= 0.
// Postcondition: HP >= 0.
func (p *Player) ApplyDamage(damage int) {
	p.HP -= damage
	if p.HP < 0 {
		p.HP = 0
	}
}

// Heal adds amount to hp, capping at PlayerMaxHP.
//
// Precondition: amount >= 0.
// Postcondition: HP <= PlayerMaxHP.
func (p *Player) Heal(amount int) {
	p.HP += amount
	if p.HP > PlayerMaxHP {
		p.HP = PlayerMaxHP
	}
}

// Monster is a hostile NPC. Created by the spawn controller, destroyed on death.
type Monster struct {
	ID             string      `json:"id"`
	X              float64     `json:"x"`
	Y              float64     `json:"y"`
	HP             int         `json:"hp"`
	MaxHP          int         `json:"max_hp"`
	Icon           string      `json:"icon"`
	Kind           MonsterKind `json:"kind"`
	TargetPlayerID string      `json:"target_player,omitempty"`
	DetectionRange float64     `json:"detection_range"`
	AttackRange    float64     `json:"attack_range"`
	MoveSpeed      float64     `json:"move_speed"`
	LastMove       time.Time   `json:"-"`
	LastAttack     time.Time   `json:"-"`
	// AttackPattern cycles the boss's special attacks; unused for normals.
	AttackPattern int `json:"-"`
}

// Dead reports whether the monster's hp has been exhausted.
func (m *Monster) Dead() bool { return m.HP <= 0 }

// ClampToArena pins the monster's position inside the arena bounds.
func (m *Monster) ClampToArena() {
	if m.X < ArenaMinX {
		m.X = ArenaMinX
	}
	if m.X > ArenaMaxX {
		m.X = ArenaMaxX
	}
	if m.Y < ArenaMinY {
		m.Y = ArenaMinY
	}
	if m.Y > ArenaMaxY {
		m.Y = ArenaMaxY
	}
}

// GroundItem is a collectable pickup. Destroyed on collection.
type GroundItem struct {
	ID   string   `json:"id"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Kind ItemKind `json:"kind"`
}

// DuelRequest is a pending invitation from one player to another.
// Destroyed on accept, decline, expiry, or when either party leaves.
type DuelRequest struct {
	ID           string    `json:"id"`
	FromPlayerID string    `json:"from_player"`
	ToPlayerID   string    `json:"to_player"`
	FromName     string    `json:"from_username"`
	ToName       string    `json:"to_username"`
	CreatedAt    time.Time `json:"-"`
}

// DuelStatusActive is the only duel status; a finished duel is deleted.
const DuelStatusActive = "active"

// Duel arena slots: accepted participants are repositioned to these points.
const (
	DuelSlot1X = 350.0
	DuelSlot2X = 450.0
	DuelSlotY  = 300.0
)

// Duel is an active player-versus-player fight.
//
// Invariant: Player1ID != Player2ID, and both referenced players carry this
// duel's ID while the duel exists.
type Duel struct {
	ID        string    `json:"id"`
	Player1ID string    `json:"player1_id"`
	Player2ID string    `json:"player2_id"`
	Status    string    `json:"status"`
	ArenaX    float64   `json:"arena_x"`
	ArenaY    float64   `json:"arena_y"`
	StartedAt time.Time `json:"-"`
}

// Opponent returns the other participant's id, or "" when playerID is not a
// participant.
func (d *Duel) Opponent(playerID string) string {
	switch playerID {
	case d.Player1ID:
		return d.Player2ID
	case d.Player2ID:
		return d.Player1ID
	}
	return ""
}

// Includes reports whether playerID is one of the duel's participants.
func (d *Duel) Includes(playerID string) bool {
	return playerID == d.Player1ID || playerID == d.Player2ID
}
