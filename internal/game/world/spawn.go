package world

import (
	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/entity"
)

// Spawn position bounds. Normal monsters and items spawn slightly inside the
// arena edges; the boss spawns closer to the middle.
const (
	normalSpawnMinX = 50
	normalSpawnMaxX = 750
	normalSpawnMinY = 50
	normalSpawnMaxY = 550

	bossSpawnMinX = 100
	bossSpawnMaxX = 700
	bossSpawnMinY = 100
	bossSpawnMaxY = 500
)

// ensureMonsterPopulationLocked tops the monster population back up to the
// tuned counts: NormalCount normal monsters and exactly one boss. It emits no
// events; callers announce the state change themselves.
//
// Precondition: w.mu must be held.
func (w *World) ensureMonsterPopulationLocked() {
	normals, bosses := 0, 0
	for _, m := range w.monsters {
		switch m.Kind {
		case entity.MonsterBoss:
			bosses++
		default:
			normals++
		}
	}
	for ; normals < w.tuning.NormalCount; normals++ {
		w.spawnMonsterLocked(entity.MonsterNormal)
	}
	for ; bosses < 1; bosses++ {
		w.spawnMonsterLocked(entity.MonsterBoss)
	}
}

func (w *World) spawnMonsterLocked(kind entity.MonsterKind) {
	t := w.tuning.Normal
	minX, maxX := normalSpawnMinX, normalSpawnMaxX
	minY, maxY := normalSpawnMinY, normalSpawnMaxY
	if kind == entity.MonsterBoss {
		t = w.tuning.Boss
		minX, maxX = bossSpawnMinX, bossSpawnMaxX
		minY, maxY = bossSpawnMinY, bossSpawnMaxY
	}

	m := &entity.Monster{
		ID:             w.newID(),
		Kind:           kind,
		Icon:           t.Icons[w.rng.Intn(len(t.Icons))],
		X:              w.randomCoord(minX, maxX),
		Y:              w.randomCoord(minY, maxY),
		HP:             t.HP,
		MaxHP:          t.HP,
		DetectionRange: t.DetectionRange,
		AttackRange:    t.AttackRange,
		MoveSpeed:      t.MoveSpeed,
	}
	w.monsters[m.ID] = m
	w.logger.Debug("monster spawned",
		zap.String("monster_id", m.ID),
		zap.String("kind", string(kind)),
	)
}

// ensureItemPopulationLocked tops the ground item population back up to the
// tuned count, choosing a uniform random kind and position for each new item.
//
// Precondition: w.mu must be held.
func (w *World) ensureItemPopulationLocked() {
	for len(w.items) < w.tuning.ItemCount {
		it := &entity.GroundItem{
			ID:   w.newID(),
			Kind: entity.ItemKinds[w.rng.Intn(len(entity.ItemKinds))],
			X:    w.randomCoord(normalSpawnMinX, normalSpawnMaxX),
			Y:    w.randomCoord(normalSpawnMinY, normalSpawnMaxY),
		}
		w.items[it.ID] = it
		w.logger.Debug("item spawned",
			zap.String("item_id", it.ID),
			zap.String("kind", string(it.Kind)),
		)
	}
}
