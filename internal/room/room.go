package room

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"cardroom/engine"
	"cardroom/internal/store"
)

var ErrRoomClosed = errors.New("room closed")

const (
	defaultActionTimeout = 30 * time.Second
	persistTimeout       = 5 * time.Second
)

// EventType enumerates the actor message kinds.
type EventType int

const (
	EventJoin EventType = iota
	EventStart
	EventAction
	EventNextHand
	EventSync
	EventClose
)

// Event is a message to the room actor. Response, when set, receives the
// outcome of handling the event.
type Event struct {
	Type     EventType
	PlayerID string
	Name     string
	Action   engine.ActionType
	Amount   int64
	Response chan error
}

// HandEndInfo is emitted after a hand settles.
type HandEndInfo struct {
	RoomID string
	HandID string
	Result engine.HandResult
	State  engine.State
}

// HandEndHook is a post-settlement callback.
type HandEndHook func(info HandEndInfo)

// Room owns one engine table and serializes all access to it through an
// actor goroutine. Player-visible state flows out through the broadcast
// callback as sanitized per-player snapshots.
type Room struct {
	ID string

	mu       sync.RWMutex
	tbl      *engine.Table
	closed   bool
	stopOnce sync.Once

	events chan Event
	done   chan struct{}

	broadcast func(roomID, playerID string, state engine.State)
	store     store.Service

	handID         string
	actionSeat     int
	actionPhase    engine.Phase
	actionDeadline time.Time
	actionTimeout  time.Duration

	handEndHooks []HandEndHook
}

const noSeat = -1

// New creates a room around a fresh table and starts its actor.
func New(
	id string,
	settings engine.Settings,
	code string,
	broadcastFn func(roomID, playerID string, state engine.State),
	storeService store.Service,
) (*Room, error) {
	tbl, err := engine.NewTable(settings, code)
	if err != nil {
		return nil, err
	}
	r := newRoom(id, tbl, broadcastFn, storeService)
	log.Printf("[Room %s] Created (variant=%s, blinds=%d/%d)",
		id, settings.Variant, settings.SmallBlind, settings.BigBlind)
	return r, nil
}

// Resume rebuilds a room from a persisted snapshot, e.g. after a restart.
func Resume(
	id string,
	state engine.State,
	broadcastFn func(roomID, playerID string, state engine.State),
	storeService store.Service,
) (*Room, error) {
	tbl, err := engine.Restore(state)
	if err != nil {
		return nil, err
	}
	r := newRoom(id, tbl, broadcastFn, storeService)
	r.mu.Lock()
	r.handID = uuid.NewString()
	r.rearmActionClockLocked(tbl.State())
	r.mu.Unlock()
	log.Printf("[Room %s] Resumed at hand %d phase %s", id, state.HandCount, engine.PhaseDictionary[state.Phase])
	return r, nil
}

func newRoom(
	id string,
	tbl *engine.Table,
	broadcastFn func(roomID, playerID string, state engine.State),
	storeService store.Service,
) *Room {
	timeout := tbl.Settings().TimeBank
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}
	r := &Room{
		ID:            id,
		tbl:           tbl,
		events:        make(chan Event, 256),
		done:          make(chan struct{}),
		broadcast:     broadcastFn,
		store:         storeService,
		actionSeat:    noSeat,
		actionTimeout: timeout,
	}
	go r.run()
	return r
}

// SubmitEvent sends an event to the actor and waits for its outcome.
func (r *Room) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrRoomClosed
	}

	select {
	case r.events <- e:
	case <-r.done:
		return ErrRoomClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// State returns the full snapshot. Server-side use only.
func (r *Room) State() engine.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tbl.State()
}

// StateForPlayer returns the sanitized per-player snapshot.
func (r *Room) StateForPlayer(playerID string) engine.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tbl.StateForPlayer(playerID)
}

// OnHandEnd registers a post-settlement hook.
func (r *Room) OnHandEnd(fn HandEndHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handEndHooks = append(r.handEndHooks, fn)
}

// Stop shuts down the actor.
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Room) stopLocked() {
	r.stopOnce.Do(func() {
		r.closed = true
		close(r.done)
		log.Printf("[Room %s] Stopped", r.ID)
	})
}

func (r *Room) run() {
	// Sub-second heartbeat drives the action clock.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case event := <-r.events:
			err := r.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-ticker.C:
			r.tick()
		case <-r.done:
			return
		}
	}
}

func (r *Room) handleEvent(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed && e.Type != EventClose {
		return ErrRoomClosed
	}

	switch e.Type {
	case EventJoin:
		return r.handleJoinLocked(e.PlayerID, e.Name)
	case EventStart:
		return r.handleStartLocked(e.PlayerID)
	case EventAction:
		return r.handleActionLocked(e.PlayerID, e.Action, e.Amount)
	case EventNextHand:
		return r.handleNextHandLocked(e.PlayerID)
	case EventSync:
		r.sendSnapshotLocked(e.PlayerID)
		return nil
	case EventClose:
		r.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (r *Room) handleJoinLocked(playerID, name string) error {
	if err := r.tbl.AddPlayer(playerID, name); err != nil {
		return err
	}
	log.Printf("[Room %s] Player %s joined", r.ID, playerID)
	r.afterMutationLocked()
	return nil
}

func (r *Room) handleStartLocked(playerID string) error {
	if err := r.tbl.StartGame(playerID); err != nil {
		return err
	}
	r.handID = uuid.NewString()
	log.Printf("[Room %s] Hand %s started by %s", r.ID, r.handID, playerID)
	r.afterMutationLocked()
	return nil
}

func (r *Room) handleNextHandLocked(playerID string) error {
	if err := r.tbl.NextHand(playerID); err != nil {
		return err
	}
	r.handID = uuid.NewString()
	log.Printf("[Room %s] Hand %s started by %s", r.ID, r.handID, playerID)
	r.afterMutationLocked()
	return nil
}

func (r *Room) handleActionLocked(playerID string, action engine.ActionType, amount int64) error {
	if err := r.tbl.ProcessAction(playerID, action, amount); err != nil {
		return err
	}
	r.afterMutationLocked()
	return nil
}

// tick fires the action clock: when a player overruns the deadline their
// default action is applied on their behalf.
func (r *Room) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if r.actionSeat == noSeat || r.actionDeadline.IsZero() {
		return
	}
	if time.Now().Before(r.actionDeadline) {
		return
	}

	playerID, action, amount := r.tbl.DefaultAction()
	if playerID == "" {
		r.actionSeat = noSeat
		r.actionDeadline = time.Time{}
		return
	}
	log.Printf("[Room %s] Action timeout player=%s -> auto %s", r.ID, playerID, engine.ActionTypeDictionary[action])
	if err := r.tbl.ProcessAction(playerID, action, amount); err != nil {
		log.Printf("[Room %s] auto action failed: %v", r.ID, err)
		r.actionSeat = noSeat
		r.actionDeadline = time.Time{}
		return
	}
	r.afterMutationLocked()
}

// afterMutationLocked runs after every successful state change: persist,
// rearm the action clock, broadcast, and fire hand-end hooks.
func (r *Room) afterMutationLocked() {
	s := r.tbl.State()

	r.rearmActionClockLocked(s)
	r.persistLocked(s)

	if r.broadcast != nil {
		for _, p := range s.Players {
			r.broadcast(r.ID, p.ID, r.tbl.StateForPlayer(p.ID))
		}
	}

	if s.Phase == engine.PhaseFinished && s.LastHandResult != nil {
		info := HandEndInfo{
			RoomID: r.ID,
			HandID: r.handID,
			Result: *s.LastHandResult,
			State:  s,
		}
		for _, hook := range r.handEndHooks {
			hook(info)
		}
	}
}

// rearmActionClockLocked resets the deadline whenever action moves to a
// different seat or the same seat opens a new street.
func (r *Room) rearmActionClockLocked(s engine.State) {
	if s.ActionSeat == noSeat {
		r.actionSeat = noSeat
		r.actionDeadline = time.Time{}
		return
	}
	if s.ActionSeat != r.actionSeat || s.Phase != r.actionPhase {
		r.actionSeat = s.ActionSeat
		r.actionPhase = s.Phase
		r.actionDeadline = time.Now().Add(r.actionTimeout)
	}
}

func (r *Room) persistLocked(s engine.State) {
	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.store.SaveState(ctx, r.ID, s); err != nil {
		log.Printf("[Room %s] persist state failed: %v", r.ID, err)
	}
	if s.Phase == engine.PhaseFinished && s.LastHandResult != nil {
		err := r.store.SaveHandResult(ctx, r.ID, r.handID, time.Now(), *s.LastHandResult, s)
		if err != nil {
			log.Printf("[Room %s] persist hand result failed: %v", r.ID, err)
		}
	}
}

func (r *Room) sendSnapshotLocked(playerID string) {
	if r.broadcast == nil {
		return
	}
	r.broadcast(r.ID, playerID, r.tbl.StateForPlayer(playerID))
}
