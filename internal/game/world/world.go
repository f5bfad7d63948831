// Package world implements the shared arena simulation: the single mutable
// store of players, monsters, ground items, and duels, plus every operation
// that mutates it. All operations are atomic with respect to each other; the
// store is guarded by one mutex because the interesting transitions (kill →
// respawn, duel-pair updates, population top-up) touch several entities at
// once and must not interleave.
package world

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/dice"
	"github.com/arcadeworks/arena/internal/game/entity"
	"github.com/arcadeworks/arena/internal/records"
)

// Join position bounds for freshly connected players.
const (
	joinMinX = 100
	joinMaxX = 700
	joinMinY = 100
	joinMaxY = 500
)

// levelExpFactor: a player levels up when exp >= level * levelExpFactor.
const levelExpFactor = 100

// compiledDice holds the tuning dice expressions parsed once at startup.
type compiledDice struct {
	normalAttack dice.Expression
	bossAttack   dice.Expression
	normalHit    dice.Expression
	bossHit      dice.Expression
	normalExp    dice.Expression
	bossExp      dice.Expression
	normalScore  dice.Expression
	bossScore    dice.Expression
	duel         dice.Expression
}

func compileTuning(t Tuning) (compiledDice, error) {
	var c compiledDice
	var err error
	parse := func(name, expr string, dst *dice.Expression) {
		if err != nil {
			return
		}
		var e dice.Expression
		if e, err = dice.Parse(expr); err != nil {
			err = fmt.Errorf("tuning %s: %w", name, err)
			return
		}
		*dst = e
	}

	parse("normal.attack_dice", t.Normal.AttackDice, &c.normalAttack)
	parse("boss.attack_dice", t.Boss.AttackDice, &c.bossAttack)
	parse("normal.hit_dice", t.Normal.HitDice, &c.normalHit)
	parse("boss.hit_dice", t.Boss.HitDice, &c.bossHit)
	parse("normal.exp_dice", t.Normal.ExpDice, &c.normalExp)
	parse("boss.exp_dice", t.Boss.ExpDice, &c.bossExp)
	parse("normal.score_dice", t.Normal.ScoreDice, &c.normalScore)
	parse("boss.score_dice", t.Boss.ScoreDice, &c.bossScore)
	parse("duel_dice", t.DuelDice, &c.duel)
	return c, err
}

// World is the shared mutable arena state and the owner of every mutation
// entry point. Durable record writes run after the lock is released and are
// best-effort: an unauthenticated connection still mutates in-memory state
// but is never persisted.
type World struct {
	mu     sync.Mutex
	logger *zap.Logger
	roller *dice.Roller
	rng    dice.Source
	store  records.Store
	auth   records.Authenticator
	sink   EventSink
	tuning Tuning
	exprs  compiledDice
	clock  func() time.Time

	players  map[string]*entity.Player
	monsters map[string]*entity.Monster
	items    map[string]*entity.GroundItem
	duels    map[string]*entity.Duel
	requests map[string]*entity.DuelRequest
}

// New creates a World, compiles the tuning dice, and seeds the monster and
// item populations.
//
// Precondition: all arguments must be non-nil; tuning must be valid.
// Postcondition: The population invariants hold: tuning.NormalCount normal
// monsters, one boss, tuning.ItemCount ground items.
func New(
	logger *zap.Logger,
	roller *dice.Roller,
	rng dice.Source,
	store records.Store,
	auth records.Authenticator,
	sink EventSink,
	tuning Tuning,
) (*World, error) {
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("validating tuning: %w", err)
	}
	exprs, err := compileTuning(tuning)
	if err != nil {
		return nil, err
	}

	w := &World{
		logger:   logger,
		roller:   roller,
		rng:      rng,
		store:    store,
		auth:     auth,
		sink:     sink,
		tuning:   tuning,
		exprs:    exprs,
		clock:    time.Now,
		players:  make(map[string]*entity.Player),
		monsters: make(map[string]*entity.Monster),
		items:    make(map[string]*entity.GroundItem),
		duels:    make(map[string]*entity.Duel),
		requests: make(map[string]*entity.DuelRequest),
	}

	w.mu.Lock()
	w.ensureMonsterPopulationLocked()
	w.ensureItemPopulationLocked()
	w.mu.Unlock()

	return w, nil
}

// Join registers a new player for connID, seeded from the account's durable
// record, sends the joiner the full world snapshot, and announces the player
// to everyone else.
//
// Precondition: connID must be non-empty.
// Postcondition: Exactly one player exists for connID, or an error when the
// connection already joined.
func (w *World) Join(ctx context.Context, connID, username string) error {
	rec := records.DefaultRecord()
	if account, ok := w.auth.Account(connID); ok {
		loaded, err := w.store.Get(ctx, account)
		if err != nil {
			w.logger.Warn("loading player record, using defaults",
				zap.String("account", account),
				zap.Error(err),
			)
		} else {
			rec = loaded
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[connID]; exists {
		return fmt.Errorf("connection %q already joined", connID)
	}

	p := &entity.Player{
		ID:       connID,
		Account:  username,
		X:        w.randomCoord(joinMinX, joinMaxX),
		Y:        w.randomCoord(joinMinY, joinMaxY),
		Level:    rec.Level,
		Exp:      rec.Exp,
		HP:       rec.HP,
		LastSeen: w.clock(),
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.HP < 1 || p.HP > entity.PlayerMaxHP {
		p.HP = entity.PlayerMaxHP
	}
	w.players[connID] = p

	w.logger.Info("player joined",
		zap.String("conn_id", connID),
		zap.String("username", username),
		zap.Int("level", p.Level),
	)

	w.sink.Send(connID, Event{Type: EventGameState, Data: w.snapshotLocked()})
	w.sink.BroadcastExcept(connID, Event{Type: EventPlayerJoined, Data: playerJoinedPayload{
		SessionID: connID,
		Player:    *p,
	}})
	return nil
}

// Leave removes the player for connID and announces the departure. A player
// who leaves mid-duel forfeits: the duel ends immediately and the remaining
// participant is awarded the win. Pending duel requests involving the leaver
// are dropped.
func (w *World) Leave(ctx context.Context, connID string) {
	w.mu.Lock()
	p, ok := w.players[connID]
	if !ok {
		w.mu.Unlock()
		return
	}
	delete(w.players, connID)

	for id, req := range w.requests {
		if req.FromPlayerID == connID || req.ToPlayerID == connID {
			delete(w.requests, id)
		}
	}

	var winnerConn string
	if p.InDuel() {
		if d, found := w.duels[p.DuelID]; found {
			oppID := d.Opponent(connID)
			delete(w.duels, d.ID)
			if opp, online := w.players[oppID]; online {
				opp.DuelID = ""
				opp.HP = entity.PlayerMaxHP
				w.sink.Send(oppID, Event{Type: EventDuelEnded, Data: duelEndedPayload{
					Winner: opp.Account,
					Loser:  p.Account,
					Result: "victory",
				}})
				winnerConn = oppID
			}
		}
	}

	w.sink.Broadcast(Event{Type: EventPlayerLeft, Data: playerLeftPayload{SessionID: connID}})
	w.logger.Info("player left", zap.String("conn_id", connID), zap.String("username", p.Account))
	w.mu.Unlock()

	if winnerConn != "" {
		w.creditScore(ctx, winnerConn, w.tuning.DuelWinScore)
	}
}

// Move applies a last-write-wins position update and relays it to everyone
// else. Unknown connections are ignored.
func (w *World) Move(connID string, x, y float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[connID]
	if !ok {
		return
	}
	p.X, p.Y = x, y
	p.LastSeen = w.clock()

	w.sink.BroadcastExcept(connID, Event{Type: EventPlayerMoved, Data: playerMovedPayload{
		SessionID: connID,
		X:         x,
		Y:         y,
	}})
}

// Chat relays a chat message from connID to the whole arena.
func (w *World) Chat(connID, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[connID]
	if !ok {
		return
	}
	w.sink.Broadcast(Event{Type: EventChatMessage, Data: chatMessagePayload{
		Username: p.Account,
		Message:  message,
	}})
}

// Snapshot returns a copy of the full world state.
func (w *World) Snapshot() GameState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *World) snapshotLocked() GameState {
	snap := GameState{
		Players:  make(map[string]entity.Player, len(w.players)),
		Monsters: make(map[string]entity.Monster, len(w.monsters)),
		Items:    make(map[string]entity.GroundItem, len(w.items)),
		Duels:    make(map[string]entity.Duel, len(w.duels)),
	}
	for id, p := range w.players {
		snap.Players[id] = *p
	}
	for id, m := range w.monsters {
		snap.Monsters[id] = *m
	}
	for id, it := range w.items {
		snap.Items[id] = *it
	}
	for id, d := range w.duels {
		snap.Duels[id] = *d
	}
	return snap
}

// randomCoord returns a uniform coordinate in [min, max].
func (w *World) randomCoord(min, max int) float64 {
	return float64(min + w.rng.Intn(max-min+1))
}

func (w *World) newID() string {
	return uuid.NewString()
}

// creditScore adds delta to the durable score of the account behind connID.
// Best-effort: unauthenticated connections and store errors are logged and
// otherwise ignored.
func (w *World) creditScore(ctx context.Context, connID string, delta int) {
	account, ok := w.auth.Account(connID)
	if !ok {
		return
	}
	rec, err := w.store.Get(ctx, account)
	if err != nil {
		w.logger.Warn("reading record for score credit", zap.String("account", account), zap.Error(err))
		return
	}
	rec.Score += delta
	if err := w.store.Put(ctx, account, rec); err != nil {
		w.logger.Warn("persisting score credit", zap.String("account", account), zap.Error(err))
	}
}

// persistProgress writes level/exp/hp and a score delta to the durable record
// of the account behind connID. Best-effort, same rules as creditScore.
func (w *World) persistProgress(ctx context.Context, connID string, level, exp, hp, scoreDelta int) {
	account, ok := w.auth.Account(connID)
	if !ok {
		return
	}
	rec, err := w.store.Get(ctx, account)
	if err != nil {
		w.logger.Warn("reading record for progress", zap.String("account", account), zap.Error(err))
		return
	}
	rec.Level = level
	rec.Exp = exp
	rec.HP = hp
	rec.Score += scoreDelta
	if err := w.store.Put(ctx, account, rec); err != nil {
		w.logger.Warn("persisting progress", zap.String("account", account), zap.Error(err))
	}
}

// persistPickup writes an item pickup's score bonus (and new hp after a
// shield heal) to the durable record of the account behind connID.
func (w *World) persistPickup(ctx context.Context, connID string, scoreDelta, hp int, healed bool) {
	account, ok := w.auth.Account(connID)
	if !ok {
		return
	}
	rec, err := w.store.Get(ctx, account)
	if err != nil {
		w.logger.Warn("reading record for pickup", zap.String("account", account), zap.Error(err))
		return
	}
	rec.Score += scoreDelta
	if healed {
		rec.HP = hp
	}
	if err := w.store.Put(ctx, account, rec); err != nil {
		w.logger.Warn("persisting pickup", zap.String("account", account), zap.Error(err))
	}
}
