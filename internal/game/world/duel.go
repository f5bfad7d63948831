package world

import (
	"context"

	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/game/entity"
)

// RequestDuel creates a pending duel invitation from connID to the player
// named targetName. Rejections (unknown target, self-challenge, either side
// already duelling, duplicate pending request) are reported to the requester
// as a duel_error.
func (w *World) RequestDuel(connID, targetName string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	from, ok := w.players[connID]
	if !ok {
		return
	}
	to, msg := w.resolveDuelTargetLocked(from, targetName)
	if msg != "" {
		w.sink.Send(connID, Event{Type: EventDuelError, Data: duelErrorPayload{Message: msg}})
		return
	}

	req := &entity.DuelRequest{
		ID:           w.newID(),
		FromPlayerID: connID,
		ToPlayerID:   to.ID,
		FromName:     from.Account,
		ToName:       to.Account,
		CreatedAt:    w.clock(),
	}
	w.requests[req.ID] = req

	w.sink.Send(connID, Event{Type: EventDuelRequestSent, Data: duelRequestSentPayload{
		TargetUsername: to.Account,
		RequestID:      req.ID,
	}})
	w.sink.Send(to.ID, Event{Type: EventDuelRequestReceived, Data: duelRequestReceivedPayload{
		FromUsername: from.Account,
		RequestID:    req.ID,
	}})
}

// resolveDuelTargetLocked finds the challenge target by name and checks the
// request preconditions, returning the target or a user-facing rejection
// message.
//
// Precondition: w.mu must be held.
func (w *World) resolveDuelTargetLocked(from *entity.Player, targetName string) (*entity.Player, string) {
	var to *entity.Player
	for _, p := range w.players {
		if p.Account == targetName {
			to = p
			break
		}
	}
	if to == nil {
		return nil, "Player not found"
	}
	if to.ID == from.ID {
		return nil, "You cannot duel yourself"
	}
	if from.InDuel() {
		return nil, "You are already in a duel"
	}
	if to.InDuel() {
		return nil, "That player is already in a duel"
	}
	for _, req := range w.requests {
		if req.FromPlayerID == from.ID && req.ToPlayerID == to.ID {
			return nil, "You already challenged that player"
		}
	}
	return to, ""
}

// AcceptDuel turns a pending request into an active duel: both players are
// repositioned to the duel slots and marked as duelling, and the arena sees
// the updated world state.
//
// Postcondition: On success the request is gone, a duel exists, and both
// participants carry its id.
func (w *World) AcceptDuel(connID, requestID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req, ok := w.requests[requestID]
	if !ok {
		w.sink.Send(connID, Event{Type: EventDuelError, Data: duelErrorPayload{Message: "Duel request not found"}})
		return
	}
	if req.ToPlayerID != connID {
		w.sink.Send(connID, Event{Type: EventDuelError, Data: duelErrorPayload{Message: "That request is not for you"}})
		return
	}
	p1, ok1 := w.players[req.FromPlayerID]
	p2, ok2 := w.players[req.ToPlayerID]
	if !ok1 || !ok2 {
		delete(w.requests, requestID)
		w.sink.Send(connID, Event{Type: EventDuelError, Data: duelErrorPayload{Message: "Player not found"}})
		return
	}

	d := &entity.Duel{
		ID:        w.newID(),
		Player1ID: p1.ID,
		Player2ID: p2.ID,
		Status:    entity.DuelStatusActive,
		ArenaX:    entity.DuelSlot1X,
		ArenaY:    entity.DuelSlotY,
		StartedAt: w.clock(),
	}
	w.duels[d.ID] = d
	delete(w.requests, requestID)

	p1.X, p1.Y = entity.DuelSlot1X, entity.DuelSlotY
	p2.X, p2.Y = entity.DuelSlot2X, entity.DuelSlotY
	p1.DuelID = d.ID
	p2.DuelID = d.ID

	w.logger.Info("duel started",
		zap.String("duel_id", d.ID),
		zap.String("player1", p1.Account),
		zap.String("player2", p2.Account),
	)

	w.sink.Send(p1.ID, Event{Type: EventDuelStarted, Data: duelStartedPayload{DuelID: d.ID, Opponent: p2.Account}})
	w.sink.Send(p2.ID, Event{Type: EventDuelStarted, Data: duelStartedPayload{DuelID: d.ID, Opponent: p1.Account}})
	w.sink.Broadcast(Event{Type: EventGameState, Data: w.snapshotLocked()})
}

// DeclineDuel drops a pending request addressed to connID and notifies the
// requester. Unknown or misaddressed requests are silently ignored.
func (w *World) DeclineDuel(connID, requestID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req, ok := w.requests[requestID]
	if !ok || req.ToPlayerID != connID {
		return
	}
	delete(w.requests, requestID)

	decliner, ok := w.players[connID]
	if !ok {
		return
	}
	w.sink.Send(req.FromPlayerID, Event{Type: EventDuelDeclined, Data: duelDeclinedPayload{
		FromUsername: decliner.Account,
	}})
}

// AttackPlayer applies one duel strike from connID to targetID. Both players
// must share an active duel; otherwise the attacker gets a duel_error. A
// strike that exhausts the target's hp ends the duel: both players are
// restored to full hp and released, the winner is told "victory" and credited
// the duel win score, the loser is told "defeat".
func (w *World) AttackPlayer(ctx context.Context, connID, targetID string) {
	w.mu.Lock()

	attacker, ok := w.players[connID]
	if !ok {
		w.mu.Unlock()
		return
	}
	target, ok := w.players[targetID]
	if !ok {
		w.mu.Unlock()
		w.sink.Send(connID, Event{Type: EventDuelError, Data: duelErrorPayload{Message: "Player not found"}})
		return
	}
	if !attacker.InDuel() || attacker.DuelID != target.DuelID {
		w.mu.Unlock()
		w.sink.Send(connID, Event{Type: EventDuelError, Data: duelErrorPayload{Message: "You are not duelling that player"}})
		return
	}

	damage := w.roller.Roll(w.exprs.duel).Total()
	target.ApplyDamage(damage)

	if target.HP > 0 {
		w.sink.Broadcast(Event{Type: EventPlayerDamaged, Data: playerDamagedPayload{
			Attacker: attacker.Account,
			Target:   target.Account,
			Damage:   damage,
			HP:       target.HP,
		}})
		w.sink.Broadcast(Event{Type: EventGameState, Data: w.snapshotLocked()})
		w.mu.Unlock()
		return
	}

	delete(w.duels, attacker.DuelID)
	attacker.DuelID = ""
	target.DuelID = ""
	attacker.HP = entity.PlayerMaxHP
	target.HP = entity.PlayerMaxHP

	w.logger.Info("duel ended",
		zap.String("winner", attacker.Account),
		zap.String("loser", target.Account),
	)

	w.sink.Send(connID, Event{Type: EventDuelEnded, Data: duelEndedPayload{
		Winner: attacker.Account,
		Loser:  target.Account,
		Result: "victory",
	}})
	w.sink.Send(targetID, Event{Type: EventDuelEnded, Data: duelEndedPayload{
		Winner: attacker.Account,
		Loser:  target.Account,
		Result: "defeat",
	}})
	w.sink.Broadcast(Event{Type: EventGameState, Data: w.snapshotLocked()})
	w.mu.Unlock()

	w.creditScore(ctx, connID, w.tuning.DuelWinScore)
}
