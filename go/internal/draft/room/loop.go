package room

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftkit/draftroom/go/internal/draft/events"
	"github.com/draftkit/draftroom/go/internal/draft/resolver"
	"github.com/draftkit/draftroom/go/internal/models"
)

// Run executes the room's actor loop until ctx is cancelled. The countdown
// tick, the expiry, and the grace window are just more events on the same
// loop as external commands, so everything that mutates state happens on
// this one goroutine.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)

	if r.status == models.RoomStatusLoading {
		r.status = models.RoomStatusWaiting
		r.publishSnapshot()
	}

	ticker := r.clock.NewTicker(time.Second)
	defer ticker.Stop()
	defer r.pickClock.Stop()
	defer r.stopGraceTimer()

	log.Info().Str("room_id", r.id.String()).Int("team_count", r.settings.TeamCount).
		Int("rounds", r.settings.Rounds).Msg("room actor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("room_id", r.id.String()).Msg("room actor stopping")
			return
		case cmd := <-r.cmdCh:
			cmd.reply <- r.handleCommand(ctx, cmd)
		case <-r.pickClock.C():
			r.handleExpiry(ctx)
		case <-r.graceChan():
			r.handleGraceExpiry(ctx)
		case <-ticker.Chan():
			r.handleTick(ctx)
		}
	}
}

func (r *Room) handleCommand(ctx context.Context, cmd command) result {
	if r.haltErr != nil && cmd.kind != cmdSnapshot {
		return result{err: r.haltErr}
	}

	switch cmd.kind {
	case cmdStart:
		return r.handleStart(ctx)
	case cmdPause:
		return r.handlePause(ctx)
	case cmdResume:
		return r.handleResume(ctx)
	case cmdManualPick:
		return r.handleManualPick(ctx, cmd)
	case cmdQueueAdd, cmdQueueRemove, cmdQueueReorder:
		return r.handleQueueEdit(ctx, cmd)
	case cmdSnapshot:
		return result{snap: r.snapshot()}
	default:
		return result{err: fmt.Errorf("unknown command kind %d", cmd.kind)}
	}
}

func (r *Room) handleStart(ctx context.Context) result {
	if r.status != models.RoomStatusWaiting {
		return result{err: fmt.Errorf("cannot start room in status %s", r.status)}
	}
	if err := r.checkConsistency(); err != nil {
		return result{err: err}
	}

	r.status = models.RoomStatusActive
	r.startedAt = r.clock.Now()

	r.emit(ctx, events.EventTypeRoomStarted, events.RoomStartedPayload{
		RoomID:     r.id.String(),
		StartedAt:  r.startedAt,
		TeamCount:  r.settings.TeamCount,
		Rounds:     r.settings.Rounds,
		TotalPicks: r.settings.TotalPicks(),
	})
	r.armPick(ctx)

	log.Info().Str("room_id", r.id.String()).Msg("draft started")
	return result{snap: r.publishSnapshot()}
}

func (r *Room) handlePause(ctx context.Context) result {
	if r.status != models.RoomStatusActive {
		return result{err: fmt.Errorf("cannot pause room in status %s", r.status)}
	}

	if r.inGrace {
		r.gracePaused = r.graceDeadline.Sub(r.clock.Now())
		if r.gracePaused < 0 {
			r.gracePaused = 0
		}
		r.stopGraceTimer()
	} else {
		r.pickClock.Pause()
	}
	r.status = models.RoomStatusPaused

	r.emit(ctx, events.EventTypeRoomPaused, events.RoomPausedPayload{
		RoomID:           r.id.String(),
		PausedAt:         r.clock.Now(),
		TimeRemainingSec: int(r.remaining() / time.Second),
	})
	log.Info().Str("room_id", r.id.String()).Int("pick_number", r.currentPickNumber).Msg("room paused")
	return result{snap: r.publishSnapshot()}
}

func (r *Room) handleResume(ctx context.Context) result {
	if r.status != models.RoomStatusPaused {
		return result{err: fmt.Errorf("cannot resume room in status %s", r.status)}
	}

	if r.inGrace {
		r.graceDeadline = r.clock.Now().Add(r.gracePaused)
		r.armGraceTimer(r.gracePaused)
	} else {
		r.pickClock.Resume()
	}
	r.status = models.RoomStatusActive

	r.emit(ctx, events.EventTypeRoomResumed, events.RoomResumedPayload{
		RoomID:           r.id.String(),
		ResumedAt:        r.clock.Now(),
		TimeRemainingSec: int(r.remaining() / time.Second),
	})
	log.Info().Str("room_id", r.id.String()).Int("pick_number", r.currentPickNumber).Msg("room resumed")
	return result{snap: r.publishSnapshot()}
}

func (r *Room) handleManualPick(ctx context.Context, cmd command) result {
	if r.status != models.RoomStatusActive {
		return r.rejected(ctx, events.ReasonRoomNotActive, cmd, "room status is "+string(r.status))
	}
	if err := r.checkConsistency(); err != nil {
		return result{err: err}
	}

	player, ok := r.playersByID[cmd.playerID]
	if !ok {
		return result{err: fmt.Errorf("unknown player %s", cmd.playerID)}
	}

	pick, rejection, err := r.res.ResolveManual(r.view(), cmd.participantID, player)
	if err != nil {
		return result{err: err}
	}
	if rejection != nil {
		return r.publishRejection(ctx, rejection)
	}
	return r.commit(ctx, pick)
}

func (r *Room) handleQueueEdit(ctx context.Context, cmd command) result {
	// Queue edits are allowed in every state but loading; participants build
	// queues before their turn and while paused.
	if r.status == models.RoomStatusLoading {
		return r.rejected(ctx, events.ReasonRoomNotActive, cmd, "room is still loading")
	}
	if cmd.actorID != cmd.participantID {
		return r.rejected(ctx, events.ReasonInvalidPermission, cmd, "queues are private to their participant")
	}
	if !r.knownParticipant(cmd.participantID) {
		return result{err: fmt.Errorf("unknown participant %s", cmd.participantID)}
	}

	switch cmd.kind {
	case cmdQueueAdd:
		player, ok := r.playersByID[cmd.playerID]
		if !ok {
			return result{err: fmt.Errorf("unknown player %s", cmd.playerID)}
		}
		if r.drafted[player.ID] {
			return r.rejected(ctx, events.ReasonPlayerDrafted, cmd, player.FullName+" is already drafted")
		}
		r.queues.Enqueue(cmd.participantID, player)
	case cmdQueueRemove:
		r.queues.Remove(cmd.participantID, cmd.playerID)
	case cmdQueueReorder:
		if err := r.queues.Reorder(cmd.participantID, cmd.orderIDs); err != nil {
			return result{err: err}
		}
	}
	return result{snap: r.publishSnapshot()}
}

// handleExpiry fires when the pick clock hits zero. With a grace period
// configured the autopick is deferred; a manual pick landing inside the
// window still wins the slot.
func (r *Room) handleExpiry(ctx context.Context) {
	if r.status != models.RoomStatusActive {
		return
	}
	if r.settings.GracePeriodSec > 0 {
		grace := time.Duration(r.settings.GracePeriodSec) * time.Second
		r.inGrace = true
		r.graceDeadline = r.clock.Now().Add(grace)
		r.armGraceTimer(grace)
		log.Debug().Str("room_id", r.id.String()).Int("pick_number", r.currentPickNumber).
			Dur("grace", grace).Msg("pick clock expired; grace window open")
		return
	}
	r.autopick(ctx)
}

func (r *Room) handleGraceExpiry(ctx context.Context) {
	if r.status != models.RoomStatusActive || !r.inGrace {
		return
	}
	r.inGrace = false
	r.autopick(ctx)
}

func (r *Room) handleTick(ctx context.Context) {
	if r.status != models.RoomStatusActive {
		return
	}
	seat, err := r.order.Seat(r.currentPickNumber)
	if err != nil || seat >= len(r.participants) {
		return
	}
	remaining := r.remaining()
	r.emit(ctx, events.EventTypeTimerTick, events.TimerTickPayload{
		PickNumber:       r.currentPickNumber,
		ParticipantID:    r.participants[seat].ID.String(),
		TimeRemainingSec: int(remaining / time.Second),
		Urgency:          string(r.thresholds.Classify(remaining)),
		TickedAt:         r.clock.Now(),
	})
}

func (r *Room) autopick(ctx context.Context) {
	if err := r.checkConsistency(); err != nil {
		log.Error().Err(err).Str("room_id", r.id.String()).Msg("refusing autopick on corrupt room")
		return
	}
	pick, err := r.res.ResolveExpired(r.view())
	if err != nil {
		r.haltErr = fmt.Errorf("%w: autopick at pick %d: %v", ErrCorruptRoom, r.currentPickNumber, err)
		log.Error().Err(err).Str("room_id", r.id.String()).Int("pick_number", r.currentPickNumber).
			Msg("autopick failed; halting room")
		return
	}
	if res := r.commit(ctx, pick); res.err != nil {
		log.Error().Err(res.err).Str("room_id", r.id.String()).Msg("autopick commit failed")
	}
}

// commit applies a resolved pick atomically: append, mark drafted, purge all
// queues, advance the pick number, then either re-arm the clock or complete
// the room. No intermediate state escapes the actor.
func (r *Room) commit(ctx context.Context, pick models.Pick) result {
	if err := r.checkConsistency(); err != nil {
		return result{err: err}
	}

	r.picks = append(r.picks, pick)
	if pick.Player != nil {
		r.drafted[pick.Player.ID] = true
		r.queues.PurgeDrafted(pick.Player.ID)
	}
	r.currentPickNumber++
	r.inGrace = false
	r.stopGraceTimer()

	payload := events.PickMadePayload{
		PickNumber:    pick.PickNumber,
		Round:         pick.Round,
		PickInRound:   pick.PickInRound,
		ParticipantID: pick.ParticipantID.String(),
		Auto:          pick.Auto,
		Skipped:       pick.Skipped,
		MadeAt:        pick.PickedAt,
	}
	if pick.Player != nil {
		payload.PlayerID = pick.Player.ID.String()
		payload.PlayerName = pick.Player.FullName
	}
	r.emit(ctx, events.EventTypePickMade, payload)

	log.Info().Str("room_id", r.id.String()).Int("pick_number", pick.PickNumber).
		Bool("auto", pick.Auto).Msg("pick committed")

	if r.currentPickNumber > r.settings.TotalPicks() {
		r.complete(ctx)
	} else {
		r.armPick(ctx)
	}
	return result{snap: r.publishSnapshot()}
}

func (r *Room) complete(ctx context.Context) {
	r.status = models.RoomStatusComplete
	r.pickClock.Stop()
	r.stopGraceTimer()

	completedAt := r.clock.Now()
	r.emit(ctx, events.EventTypeRoomCompleted, events.RoomCompletedPayload{
		RoomID:      r.id.String(),
		CompletedAt: completedAt,
		TotalPicks:  len(r.picks),
		Duration:    completedAt.Sub(r.startedAt).String(),
	})
	log.Info().Str("room_id", r.id.String()).Int("total_picks", len(r.picks)).Msg("draft complete")
}

// armPick starts the countdown for the current pick number and announces it.
func (r *Room) armPick(ctx context.Context) {
	total := time.Duration(r.settings.TimePerPickSec) * time.Second
	r.pickClock.Arm(total)
	startedAt := r.clock.Now()

	seat, err := r.order.Seat(r.currentPickNumber)
	if err != nil || seat >= len(r.participants) {
		r.haltErr = fmt.Errorf("%w: no seat for pick %d", ErrCorruptRoom, r.currentPickNumber)
		return
	}
	round, _ := r.order.Round(r.currentPickNumber)
	pir, _ := r.order.PickInRound(r.currentPickNumber)

	r.emit(ctx, events.EventTypePickStarted, events.PickStartedPayload{
		PickNumber:     r.currentPickNumber,
		Round:          round,
		PickInRound:    pir,
		ParticipantID:  r.participants[seat].ID.String(),
		StartedAt:      startedAt,
		Deadline:       startedAt.Add(total),
		TimePerPickSec: r.settings.TimePerPickSec,
	})
}

// view assembles the read-only state a resolution needs.
func (r *Room) view() resolver.View {
	available := make([]models.Player, 0, len(r.poolOrder)-len(r.drafted))
	for _, id := range r.poolOrder {
		if !r.drafted[id] {
			available = append(available, r.playersByID[id])
		}
	}
	return resolver.View{
		RoomID:       r.id,
		Order:        r.order,
		PickNumber:   r.currentPickNumber,
		Participants: r.participants,
		Drafted:      r.drafted,
		Available:    available,
	}
}

// checkConsistency enforces the pick-number invariant. Violations halt the
// room; the engine never clamps and keeps going.
func (r *Room) checkConsistency() error {
	if r.haltErr != nil {
		return r.haltErr
	}
	if r.currentPickNumber < 1 || r.currentPickNumber > r.settings.TotalPicks()+1 {
		r.haltErr = fmt.Errorf("%w: current pick number %d outside [1, %d]",
			ErrCorruptRoom, r.currentPickNumber, r.settings.TotalPicks()+1)
		log.Error().Err(r.haltErr).Str("room_id", r.id.String()).Msg("consistency check failed")
		return r.haltErr
	}
	return nil
}

func (r *Room) remaining() time.Duration {
	if r.inGrace {
		return 0
	}
	return r.pickClock.Remaining()
}

func (r *Room) knownParticipant(id uuid.UUID) bool {
	for _, p := range r.participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (r *Room) graceChan() <-chan time.Time {
	if r.graceTimer == nil {
		return nil
	}
	return r.graceTimer.Chan()
}

func (r *Room) armGraceTimer(d time.Duration) {
	if r.graceTimer == nil {
		r.graceTimer = r.clock.NewTimer(d)
		return
	}
	r.graceTimer.Reset(d)
}

func (r *Room) stopGraceTimer() {
	if r.graceTimer == nil {
		return
	}
	if !r.graceTimer.Stop() {
		select {
		case <-r.graceTimer.Chan():
		default:
		}
	}
}

// rejected publishes an ActionRejected event and returns the rejection to
// the caller. Room state is untouched.
func (r *Room) rejected(ctx context.Context, reason events.RejectReason, cmd command, detail string) result {
	rej := &events.Rejection{
		Reason:        reason,
		ParticipantID: cmd.participantID.String(),
		RejectedAt:    r.clock.Now(),
		Detail:        detail,
	}
	if cmd.playerID != uuid.Nil {
		rej.PlayerID = cmd.playerID.String()
	}
	return r.publishRejection(ctx, rej)
}

func (r *Room) publishRejection(ctx context.Context, rej *events.Rejection) result {
	r.emit(ctx, events.EventTypeActionRejected, rej)
	log.Debug().Str("room_id", r.id.String()).Str("reason", string(rej.Reason)).
		Str("participant_id", rej.ParticipantID).Msg("action rejected")
	return result{snap: r.snapshot(), rejection: rej}
}

// publishSnapshot builds a fresh snapshot and hands it to the listener.
func (r *Room) publishSnapshot() Snapshot {
	snap := r.snapshot()
	if r.onSnapshot != nil {
		r.onSnapshot(snap)
	}
	return snap
}

// emit publishes a domain event. Publish failures are logged, not fatal; the
// room's own state transition has already happened.
func (r *Room) emit(ctx context.Context, eventType events.EventType, payload any) {
	if r.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(r.id, eventType, r.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("room_id", r.id.String()).Str("event_type", string(eventType)).
			Msg("failed to build event envelope")
		return
	}
	if err := r.publisher.Publish(ctx, env); err != nil {
		log.Error().Err(err).Str("room_id", r.id.String()).Str("event_type", string(eventType)).
			Msg("failed to publish event")
	}
}
