package world

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/entity"
)

// moveStepScale converts the per-second MoveSpeed into a per-tick step.
const moveStepScale = 0.3

// AdvanceSimulation runs one simulation tick: pending duel requests past
// their TTL expire, every monster acquires or drops a target, then attacks or
// chases it, and the resulting world snapshot is broadcast.
//
// Postcondition: A game_state event has been broadcast.
func (w *World) AdvanceSimulation() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.clock()
	w.expireDuelRequestsLocked(now)

	for _, m := range w.monsters {
		target := w.nearestEligiblePlayerLocked(m)
		if target == nil {
			m.TargetPlayerID = ""
			continue
		}
		m.TargetPlayerID = target.ID

		dist := distance(m.X, m.Y, target.X, target.Y)
		if dist <= m.AttackRange {
			if now.Sub(m.LastAttack) >= time.Duration(w.tuning.AttackCooldown) {
				w.monsterStrikeLocked(m, target, now)
			}
			continue
		}
		if now.Sub(m.LastMove) >= time.Duration(w.tuning.MoveGate) {
			step := m.MoveSpeed * moveStepScale
			m.X += (target.X - m.X) / dist * step
			m.Y += (target.Y - m.Y) / dist * step
			m.ClampToArena()
			m.LastMove = now
		}
	}

	w.sink.Broadcast(Event{Type: EventGameState, Data: w.snapshotLocked()})
}

// nearestEligiblePlayerLocked returns the closest player within the monster's
// detection range. Duelling players are invisible to monsters.
//
// Precondition: w.mu must be held.
func (w *World) nearestEligiblePlayerLocked(m *entity.Monster) *entity.Player {
	var nearest *entity.Player
	best := m.DetectionRange
	for _, p := range w.players {
		if p.InDuel() {
			continue
		}
		if d := distance(m.X, m.Y, p.X, p.Y); d <= best {
			best = d
			nearest = p
		}
	}
	return nearest
}

func (w *World) monsterStrikeLocked(m *entity.Monster, target *entity.Player, now time.Time) {
	expr := w.exprs.normalAttack
	if m.Kind == entity.MonsterBoss {
		expr = w.exprs.bossAttack
		m.AttackPattern++
	}
	damage := w.roller.Roll(expr).Total()
	target.ApplyDamage(damage)
	m.LastAttack = now

	w.logger.Debug("monster struck player",
		zap.String("monster_id", m.ID),
		zap.String("player_id", target.ID),
		zap.Int("damage", damage),
		zap.Int("hp", target.HP),
	)

	w.sink.Broadcast(Event{Type: EventPlayerDamagedByMonster, Data: playerDamagedByMonsterPayload{
		PlayerID:    target.ID,
		MonsterID:   m.ID,
		MonsterIcon: m.Icon,
		Damage:      damage,
		HP:          target.HP,
	}})
}

// expireDuelRequestsLocked drops pending requests older than RequestTTL and
// tells the requester. A zero TTL disables expiry.
//
// Precondition: w.mu must be held.
func (w *World) expireDuelRequestsLocked(now time.Time) {
	ttl := time.Duration(w.tuning.RequestTTL)
	if ttl <= 0 {
		return
	}
	for id, req := range w.requests {
		if now.Sub(req.CreatedAt) < ttl {
			continue
		}
		delete(w.requests, id)
		w.sink.Send(req.FromPlayerID, Event{Type: EventDuelError, Data: duelErrorPayload{
			Message: "Duel request expired",
		}})
	}
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
