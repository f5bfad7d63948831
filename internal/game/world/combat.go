package world

import (
	"context"

	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/entity"
)

// AttackMonster applies one player strike to a monster. Stale references
// (unknown player or monster) are silently dropped: the client was acting on
// a snapshot that has since changed. A killed monster is removed, its rewards
// are rolled and credited, and the population is topped back up.
//
// Postcondition: Either a monster_damaged or a monster_killed event has been
// broadcast, or nothing happened at all.
func (w *World) AttackMonster(ctx context.Context, connID, monsterID string) {
	w.mu.Lock()

	p, ok := w.players[connID]
	if !ok {
		w.mu.Unlock()
		return
	}
	m, ok := w.monsters[monsterID]
	if !ok {
		w.mu.Unlock()
		return
	}

	hitExpr, expExpr, scoreExpr := w.exprs.normalHit, w.exprs.normalExp, w.exprs.normalScore
	if m.Kind == entity.MonsterBoss {
		hitExpr, expExpr, scoreExpr = w.exprs.bossHit, w.exprs.bossExp, w.exprs.bossScore
	}

	damage := w.roller.Roll(hitExpr).Total()
	m.HP -= damage

	if !m.Dead() {
		w.sink.Broadcast(Event{Type: EventMonsterDamaged, Data: monsterDamagedPayload{
			MonsterID: monsterID,
			Damage:    damage,
			HP:        m.HP,
		}})
		w.mu.Unlock()
		return
	}

	exp := w.roller.Roll(expExpr).Total()
	score := w.roller.Roll(scoreExpr).Total()
	p.Exp += exp

	leveled := false
	if p.Exp >= p.Level*levelExpFactor {
		p.Level++
		p.Exp = 0
		p.HP = entity.PlayerMaxHP
		leveled = true
	}

	delete(w.monsters, monsterID)
	w.ensureMonsterPopulationLocked()

	w.logger.Info("monster killed",
		zap.String("monster_id", monsterID),
		zap.String("kind", string(m.Kind)),
		zap.String("killer", p.Account),
		zap.Int("exp_gained", exp),
		zap.Int("score_gained", score),
	)

	w.sink.Broadcast(Event{Type: EventMonsterKilled, Data: monsterKilledPayload{
		MonsterID:   monsterID,
		Killer:      p.Account,
		ExpGained:   exp,
		ScoreGained: score,
	}})
	if leveled {
		w.sink.Send(connID, Event{Type: EventLevelUp, Data: levelUpPayload{NewLevel: p.Level}})
	}

	level, playerExp, hp := p.Level, p.Exp, p.HP
	w.mu.Unlock()

	w.persistProgress(ctx, connID, level, playerExp, hp, score)
}

// CollectItem picks a ground item up for connID: the item's score bonus is
// credited, a shield additionally heals the collector, and the item stock is
// topped back up. Stale references are silently dropped.
func (w *World) CollectItem(ctx context.Context, connID, itemID string) {
	w.mu.Lock()

	p, ok := w.players[connID]
	if !ok {
		w.mu.Unlock()
		return
	}
	it, ok := w.items[itemID]
	if !ok {
		w.mu.Unlock()
		return
	}

	bonus := w.tuning.ItemScores[it.Kind]
	healed := false
	if it.Kind == entity.ItemShield {
		p.Heal(w.tuning.ShieldHeal)
		healed = true
	}

	delete(w.items, itemID)
	w.ensureItemPopulationLocked()

	w.sink.Broadcast(Event{Type: EventItemCollected, Data: itemCollectedPayload{
		ItemID:     itemID,
		Collector:  p.Account,
		ItemKind:   it.Kind,
		ScoreBonus: bonus,
	}})

	hp := p.HP
	w.mu.Unlock()

	w.persistPickup(ctx, connID, bonus, hp, healed)
}
