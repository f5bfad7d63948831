package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arcadeworks/arena/internal/game/entity"
)

func TestNewSeedsPopulations(t *testing.T) {
	f := newTestWorld(t)

	normals, bosses := countMonsters(f.world)
	assert.Equal(t, 5, normals)
	assert.Equal(t, 1, bosses)

	snap := f.world.Snapshot()
	assert.Len(t, snap.Items, 3)
	for _, m := range snap.Monsters {
		assert.GreaterOrEqual(t, m.X, entity.ArenaMinX)
		assert.LessOrEqual(t, m.X, entity.ArenaMaxX)
		assert.GreaterOrEqual(t, m.Y, entity.ArenaMinY)
		assert.LessOrEqual(t, m.Y, entity.ArenaMaxY)
		assert.Positive(t, m.HP)
		assert.Equal(t, m.MaxHP, m.HP)
		assert.NotEmpty(t, m.Icon)
	}
	for _, it := range snap.Items {
		assert.Contains(t, entity.ItemKinds, it.Kind)
	}
}

func TestSeedingEmitsNoEvents(t *testing.T) {
	f := newTestWorld(t)

	assert.Empty(t, f.sink.broadcasts)
	assert.Empty(t, f.sink.excepts)
	assert.Empty(t, f.sink.sends)
}

func TestMonsterStatsPerKind(t *testing.T) {
	f := newTestWorld(t)

	for _, m := range f.world.Snapshot().Monsters {
		switch m.Kind {
		case entity.MonsterBoss:
			assert.Equal(t, 150, m.MaxHP)
			assert.Equal(t, 200.0, m.DetectionRange)
			assert.Equal(t, 60.0, m.AttackRange)
			assert.Equal(t, "🐲", m.Icon)
		default:
			assert.Equal(t, 30, m.MaxHP)
			assert.Equal(t, 150.0, m.DetectionRange)
			assert.Equal(t, 40.0, m.AttackRange)
		}
	}
}

// Killing any subset of monsters always restores the population to five
// normals and exactly one boss.
func TestPopulationInvariantHoldsUnderKills(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := newTestWorld(t)
		w := f.world

		ids := make([]string, 0, 6)
		for id := range w.Snapshot().Monsters {
			ids = append(ids, id)
		}
		kills := rapid.SliceOfDistinct(rapid.SampledFrom(ids), rapid.ID).Draw(t, "kills")

		w.mu.Lock()
		for _, id := range kills {
			delete(w.monsters, id)
		}
		w.ensureMonsterPopulationLocked()
		w.mu.Unlock()

		normals, bosses := countMonsters(w)
		if normals != 5 || bosses != 1 {
			t.Fatalf("population drifted: %d normals, %d bosses", normals, bosses)
		}
	})
}

func TestItemPopulationToppedUp(t *testing.T) {
	f := newTestWorld(t)
	w := f.world

	w.mu.Lock()
	for id := range w.items {
		delete(w.items, id)
	}
	w.ensureItemPopulationLocked()
	w.mu.Unlock()

	require.Len(t, w.Snapshot().Items, 3)
}
