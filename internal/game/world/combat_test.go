package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadeworks/arena/internal/game/entity"
)

func TestAttackMonsterDamages(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	placePlayer(t, f, "conn-1", "alice", 400, 300)
	id := soleMonster(f, testMonster("m1", entity.MonsterNormal, 420, 300))
	f.rolls.values = []int{0} // 1d11+4 rolls minimum: 5 damage
	f.sink.reset()

	f.world.AttackMonster(ctx, "conn-1", id)

	hits := f.sink.broadcastsOf(EventMonsterDamaged)
	require.Len(t, hits, 1)
	payload := hits[0].Data.(monsterDamagedPayload)
	assert.Equal(t, id, payload.MonsterID)
	assert.Equal(t, 5, payload.Damage)
	assert.Equal(t, 25, payload.HP)
	assert.Empty(t, f.sink.broadcastsOf(EventMonsterKilled))
}

func TestAttackMonsterStaleReferencesIgnored(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	placePlayer(t, f, "conn-1", "alice", 400, 300)
	f.sink.reset()

	f.world.AttackMonster(ctx, "conn-1", "gone")
	f.world.AttackMonster(ctx, "ghost", "gone")

	assert.Empty(t, f.sink.broadcasts)
	assert.Empty(t, f.sink.sends)
}

func TestKillMonsterRewardsAndRespawns(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	placePlayer(t, f, "conn-1", "alice", 400, 300)
	m := testMonster("m1", entity.MonsterNormal, 420, 300)
	m.HP = 1
	soleMonster(f, m)
	// Hit 1d11+4 minimum, exp 1d11+14 minimum (15), score 1d6+2 minimum (3).
	f.rolls.values = []int{0}
	f.sink.reset()

	f.world.AttackMonster(ctx, "conn-1", "m1")

	kills := f.sink.broadcastsOf(EventMonsterKilled)
	require.Len(t, kills, 1)
	payload := kills[0].Data.(monsterKilledPayload)
	assert.Equal(t, "m1", payload.MonsterID)
	assert.Equal(t, "alice", payload.Killer)
	assert.Equal(t, 15, payload.ExpGained)
	assert.Equal(t, 3, payload.ScoreGained)

	// Exactly one monster_damaged must not also fire for a killing blow.
	assert.Empty(t, f.sink.broadcastsOf(EventMonsterDamaged))

	snap := f.world.Snapshot()
	assert.NotContains(t, snap.Monsters, "m1")
	normals, bosses := countMonsters(f.world)
	assert.Equal(t, 5, normals)
	assert.Equal(t, 1, bosses)
	assert.Equal(t, 15, snap.Players["conn-1"].Exp)
}

func TestKillMonsterLevelUpAtThreshold(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	placePlayer(t, f, "conn-1", "alice", 400, 300)

	f.world.mu.Lock()
	p := f.world.players["conn-1"]
	p.Exp = 85
	p.HP = 40
	f.world.mu.Unlock()

	m := testMonster("m1", entity.MonsterNormal, 420, 300)
	m.HP = 1
	soleMonster(f, m)
	f.rolls.values = []int{0} // exp +15 lands exactly on level*100
	f.sink.reset()

	f.world.AttackMonster(ctx, "conn-1", "m1")

	ups := f.sink.sentTo("conn-1", EventLevelUp)
	require.Len(t, ups, 1)
	assert.Equal(t, 2, ups[0].Data.(levelUpPayload).NewLevel)

	snap := f.world.Snapshot().Players["conn-1"]
	assert.Equal(t, 2, snap.Level)
	assert.Equal(t, 0, snap.Exp)
	assert.Equal(t, entity.PlayerMaxHP, snap.HP)
}

func TestKillMonsterPersistsProgress(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	f.auth.Bind("conn-1", "alice")
	placePlayer(t, f, "conn-1", "alice", 400, 300)

	m := testMonster("m1", entity.MonsterNormal, 420, 300)
	m.HP = 1
	soleMonster(f, m)
	f.rolls.values = []int{0}

	f.world.AttackMonster(ctx, "conn-1", "m1")

	rec, err := f.store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Score)
	assert.Equal(t, 15, rec.Exp)
	assert.Equal(t, 1, rec.Level)
}

func TestKillMonsterUnauthenticatedNotPersisted(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	placePlayer(t, f, "conn-1", "alice", 400, 300)

	m := testMonster("m1", entity.MonsterNormal, 420, 300)
	m.HP = 1
	soleMonster(f, m)
	f.rolls.values = []int{0}

	f.world.AttackMonster(ctx, "conn-1", "m1")

	rec, err := f.store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, rec.Score, "unbound connection must not write records")
}

func TestCollectItemScoresAndRespawns(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	f.auth.Bind("conn-1", "alice")
	placePlayer(t, f, "conn-1", "alice", 400, 300)

	f.world.mu.Lock()
	f.world.items = map[string]*entity.GroundItem{
		"i1": {ID: "i1", Kind: entity.ItemGem, X: 400, Y: 300},
	}
	f.world.mu.Unlock()
	f.sink.reset()

	f.world.CollectItem(ctx, "conn-1", "i1")

	collected := f.sink.broadcastsOf(EventItemCollected)
	require.Len(t, collected, 1)
	payload := collected[0].Data.(itemCollectedPayload)
	assert.Equal(t, "i1", payload.ItemID)
	assert.Equal(t, "alice", payload.Collector)
	assert.Equal(t, entity.ItemGem, payload.ItemKind)
	assert.Equal(t, 20, payload.ScoreBonus)

	snap := f.world.Snapshot()
	assert.NotContains(t, snap.Items, "i1")
	assert.Len(t, snap.Items, 3)

	rec, err := f.store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 20, rec.Score)
}

func TestCollectShieldHealsWithCap(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	placePlayer(t, f, "conn-1", "alice", 400, 300)

	f.world.mu.Lock()
	f.world.players["conn-1"].HP = 90
	f.world.items = map[string]*entity.GroundItem{
		"i1": {ID: "i1", Kind: entity.ItemShield, X: 400, Y: 300},
	}
	f.world.mu.Unlock()

	f.world.CollectItem(ctx, "conn-1", "i1")

	assert.Equal(t, entity.PlayerMaxHP, f.world.Snapshot().Players["conn-1"].HP)
}

func TestCollectItemScoreTable(t *testing.T) {
	cases := map[entity.ItemKind]int{
		entity.ItemGem:    20,
		entity.ItemWeapon: 15,
		entity.ItemShield: 10,
		entity.ItemCoin:   25,
	}
	for kind, want := range cases {
		t.Run(string(kind), func(t *testing.T) {
			f := newTestWorld(t)
			ctx := context.Background()
			placePlayer(t, f, "conn-1", "alice", 400, 300)

			f.world.mu.Lock()
			f.world.items = map[string]*entity.GroundItem{
				"i1": {ID: "i1", Kind: kind, X: 400, Y: 300},
			}
			f.world.mu.Unlock()
			f.sink.reset()

			f.world.CollectItem(ctx, "conn-1", "i1")

			collected := f.sink.broadcastsOf(EventItemCollected)
			require.Len(t, collected, 1)
			assert.Equal(t, want, collected[0].Data.(itemCollectedPayload).ScoreBonus)
		})
	}
}

func TestCollectItemStaleReferenceIgnored(t *testing.T) {
	f := newTestWorld(t)
	ctx := context.Background()
	placePlayer(t, f, "conn-1", "alice", 400, 300)
	f.sink.reset()

	f.world.CollectItem(ctx, "conn-1", "gone")

	assert.Empty(t, f.sink.broadcasts)
}
