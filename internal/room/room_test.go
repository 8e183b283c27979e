package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"cardroom/engine"
	"cardroom/internal/store"
)

func testSettings() engine.Settings {
	return engine.Settings{
		Variant:       engine.VariantTexasHoldem,
		SmallBlind:    50,
		BigBlind:      100,
		StartingStack: 1000,
		MaxPlayers:    6,
		Seed:          1,
	}
}

type broadcastRecorder struct {
	mu         sync.Mutex
	views      map[string]engine.State
	lastRoomID string
	count      int
}

func (b *broadcastRecorder) fn(roomID, playerID string, s engine.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.views == nil {
		b.views = make(map[string]engine.State)
	}
	b.lastRoomID = roomID
	b.views[playerID] = s
	b.count++
}

func (b *broadcastRecorder) view(playerID string) (engine.State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.views[playerID]
	return s, ok
}

func newTestRoom(t *testing.T, rec *broadcastRecorder, svc store.Service) *Room {
	t.Helper()
	var fn func(string, string, engine.State)
	if rec != nil {
		fn = rec.fn
	}
	r, err := New("room-1", testSettings(), "join-code", fn, svc)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	t.Cleanup(r.Stop)
	return r
}

func submit(t *testing.T, r *Room, e Event) {
	t.Helper()
	if err := r.SubmitEvent(e); err != nil {
		t.Fatalf("SubmitEvent %d err: %v", e.Type, err)
	}
}

func TestRoom_JoinStartAndBroadcast(t *testing.T) {
	rec := &broadcastRecorder{}
	r := newTestRoom(t, rec, nil)

	submit(t, r, Event{Type: EventJoin, PlayerID: "alice", Name: "Alice"})
	submit(t, r, Event{Type: EventJoin, PlayerID: "bob", Name: "Bob"})
	submit(t, r, Event{Type: EventStart, PlayerID: "alice"})

	s := r.State()
	if s.Phase != engine.PhasePreflop {
		t.Fatalf("expected preflop, got %v", s.Phase)
	}

	rec.mu.Lock()
	lastRoom := rec.lastRoomID
	rec.mu.Unlock()
	if lastRoom != "room-1" {
		t.Fatalf("broadcast carried room %q, want room-1", lastRoom)
	}

	// broadcasts are sanitized per viewer
	view, ok := rec.view("alice")
	if !ok {
		t.Fatalf("alice never received a snapshot")
	}
	if len(view.Deck) != 0 {
		t.Fatalf("player view must omit the deck")
	}
	for _, p := range view.Players {
		if p.ID == "alice" && len(p.Cards) != 2 {
			t.Fatalf("alice must see her own cards")
		}
		if p.ID != "alice" && p.Cards != nil {
			t.Fatalf("alice can see %s's cards", p.ID)
		}
	}
}

func TestRoom_ActionErrorsPropagateToCaller(t *testing.T) {
	r := newTestRoom(t, nil, nil)

	submit(t, r, Event{Type: EventJoin, PlayerID: "alice", Name: "Alice"})
	submit(t, r, Event{Type: EventJoin, PlayerID: "bob", Name: "Bob"})

	err := r.SubmitEvent(Event{Type: EventStart, PlayerID: "bob"})
	if !engine.IsCode(err, engine.CodeNotHost) {
		t.Fatalf("expected NotHost through the actor, got %v", err)
	}

	submit(t, r, Event{Type: EventStart, PlayerID: "alice"})
	err = r.SubmitEvent(Event{Type: EventAction, PlayerID: "nobody", Action: engine.ActionFold})
	if !engine.IsCode(err, engine.CodeNotActivePlayer) {
		t.Fatalf("expected NotActivePlayer, got %v", err)
	}
}

func TestRoom_ActionClockAppliesDefaultAction(t *testing.T) {
	settings := testSettings()
	settings.TimeBank = 200 * time.Millisecond
	r, err := New("room-1", settings, "join-code", nil, nil)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	t.Cleanup(r.Stop)

	submit(t, r, Event{Type: EventJoin, PlayerID: "alice", Name: "Alice"})
	submit(t, r, Event{Type: EventJoin, PlayerID: "bob", Name: "Bob"})
	submit(t, r, Event{Type: EventStart, PlayerID: "alice"})

	// nobody acts: the clock folds (or checks) each player in turn until
	// the hand ends by fold
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if r.State().Phase == engine.PhaseFinished {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	s := r.State()
	if s.Phase != engine.PhaseFinished {
		t.Fatalf("action clock never finished the hand, phase %v", s.Phase)
	}
	if s.LastHandResult == nil || s.LastHandResult.Reason != engine.ReasonFold {
		t.Fatalf("expected fold result, got %+v", s.LastHandResult)
	}
}

func TestRoom_PersistsAndResumes(t *testing.T) {
	svc, err := store.NewSQLiteService(":memory:")
	if err != nil {
		t.Fatalf("store err: %v", err)
	}
	defer svc.Close()

	r := newTestRoom(t, nil, svc)
	submit(t, r, Event{Type: EventJoin, PlayerID: "alice", Name: "Alice"})
	submit(t, r, Event{Type: EventJoin, PlayerID: "bob", Name: "Bob"})
	submit(t, r, Event{Type: EventStart, PlayerID: "alice"})

	want := r.State()
	r.Stop()

	saved, err := svc.LoadState(context.Background(), "room-1")
	if err != nil {
		t.Fatalf("LoadState err: %v", err)
	}
	if saved.HandCount != want.HandCount || saved.Phase != want.Phase {
		t.Fatalf("persisted snapshot stale: %+v", saved)
	}

	r2, err := Resume("room-1", saved, nil, svc)
	if err != nil {
		t.Fatalf("Resume err: %v", err)
	}
	defer r2.Stop()

	s := r2.State()
	if s.Phase != want.Phase || len(s.Players) != 2 {
		t.Fatalf("resume mismatch: %+v", s)
	}
	// play continues on the resumed room
	onAction := s.Players[s.ActionSeat].ID
	submit(t, r2, Event{Type: EventAction, PlayerID: onAction, Action: engine.ActionFold})
	if r2.State().Phase != engine.PhaseFinished {
		t.Fatalf("heads-up fold should finish the hand")
	}
}

func TestRoom_HandEndHookFires(t *testing.T) {
	r := newTestRoom(t, nil, nil)

	var (
		mu  sync.Mutex
		got *HandEndInfo
	)
	r.OnHandEnd(func(info HandEndInfo) {
		mu.Lock()
		defer mu.Unlock()
		got = &info
	})

	submit(t, r, Event{Type: EventJoin, PlayerID: "alice", Name: "Alice"})
	submit(t, r, Event{Type: EventJoin, PlayerID: "bob", Name: "Bob"})
	submit(t, r, Event{Type: EventStart, PlayerID: "alice"})

	s := r.State()
	onAction := s.Players[s.ActionSeat].ID
	submit(t, r, Event{Type: EventAction, PlayerID: onAction, Action: engine.ActionFold})

	mu.Lock()
	defer mu.Unlock()
	if got == nil {
		t.Fatalf("hand end hook never fired")
	}
	if got.RoomID != "room-1" || got.HandID == "" {
		t.Fatalf("bad hook info: %+v", got)
	}
	if got.Result.Reason != engine.ReasonFold {
		t.Fatalf("expected fold result in hook, got %+v", got.Result)
	}
}

func TestRoom_ActionClockRearmsOnNewStreet(t *testing.T) {
	r := newTestRoom(t, nil, nil)

	// Heads-up the big blind both closes preflop and opens the flop, so
	// the clock must reset on the street change even though the seat is
	// unchanged.
	r.mu.Lock()
	r.rearmActionClockLocked(engine.State{ActionSeat: 1, Phase: engine.PhasePreflop})
	first := r.actionDeadline
	r.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	r.rearmActionClockLocked(engine.State{ActionSeat: 1, Phase: engine.PhaseFlop})
	second := r.actionDeadline
	r.mu.Unlock()
	if !second.After(first) {
		t.Fatalf("clock did not rearm on the new street")
	}

	// same seat, same street: a rebroadcast must not extend the clock
	r.mu.Lock()
	r.rearmActionClockLocked(engine.State{ActionSeat: 1, Phase: engine.PhaseFlop})
	third := r.actionDeadline
	r.mu.Unlock()
	if !third.Equal(second) {
		t.Fatalf("clock moved without a seat or street change")
	}
}

func TestRoom_SubmitAfterStopFails(t *testing.T) {
	r := newTestRoom(t, nil, nil)
	r.Stop()
	if err := r.SubmitEvent(Event{Type: EventJoin, PlayerID: "alice"}); err != ErrRoomClosed {
		t.Fatalf("expected ErrRoomClosed, got %v", err)
	}
}
