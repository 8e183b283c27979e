package store

import (
	"context"
	"testing"
	"time"

	"cardroom/engine"
)

func newTestService(t *testing.T) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteService err: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func sampleState(handCount int) engine.State {
	return engine.State{
		Code: "abc123",
		Settings: engine.Settings{
			Variant:       engine.VariantTexasHoldem,
			SmallBlind:    50,
			BigBlind:      100,
			StartingStack: 1000,
			MaxPlayers:    6,
		},
		HostID:    "alice",
		Phase:     engine.PhasePreflop,
		HandCount: handCount,
		Players: []engine.PlayerState{
			{ID: "alice", Name: "alice", Seat: 0, Stack: 950, Status: engine.StatusActive},
			{ID: "bob", Name: "bob", Seat: 1, Stack: 900, Status: engine.StatusActive},
		},
	}
}

func TestSQLite_StateRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.LoadState(ctx, "t1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := sampleState(1)
	if err := svc.SaveState(ctx, "t1", want); err != nil {
		t.Fatalf("SaveState err: %v", err)
	}
	got, err := svc.LoadState(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadState err: %v", err)
	}
	if got.Code != want.Code || got.HandCount != want.HandCount || len(got.Players) != 2 {
		t.Fatalf("state round trip mismatch: %+v", got)
	}
	if got.Players[1].Stack != 900 {
		t.Fatalf("player stack lost: %+v", got.Players[1])
	}

	// save again: upsert, not duplicate
	want.HandCount = 2
	if err := svc.SaveState(ctx, "t1", want); err != nil {
		t.Fatalf("SaveState upsert err: %v", err)
	}
	got, err = svc.LoadState(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadState err: %v", err)
	}
	if got.HandCount != 2 {
		t.Fatalf("upsert did not replace state: handCount=%d", got.HandCount)
	}

	if err := svc.DeleteState(ctx, "t1"); err != nil {
		t.Fatalf("DeleteState err: %v", err)
	}
	if _, err := svc.LoadState(ctx, "t1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLite_HandHistoryOrderingAndLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		result := engine.HandResult{
			Winners: []string{"alice"},
			Pot:     int64(100 * (i + 1)),
			Reason:  engine.ReasonShowdown,
		}
		err := svc.SaveHandResult(ctx, "t1", handID(i), base.Add(time.Duration(i)*time.Minute), result, sampleState(i+1))
		if err != nil {
			t.Fatalf("SaveHandResult err: %v", err)
		}
	}

	hands, err := svc.ListHandResults(ctx, "t1", 2)
	if err != nil {
		t.Fatalf("ListHandResults err: %v", err)
	}
	if len(hands) != 2 {
		t.Fatalf("limit ignored: got %d hands", len(hands))
	}
	// newest first
	if hands[0].HandID != handID(2) || hands[1].HandID != handID(1) {
		t.Fatalf("wrong order: %s, %s", hands[0].HandID, hands[1].HandID)
	}
	if hands[0].Result.Pot != 300 {
		t.Fatalf("result payload lost: %+v", hands[0].Result)
	}
	if hands[0].State == nil || hands[0].State.HandCount != 3 {
		t.Fatalf("final state payload lost: %+v", hands[0].State)
	}

	other, err := svc.ListHandResults(ctx, "t2", 10)
	if err != nil {
		t.Fatalf("ListHandResults err: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("table isolation broken: %+v", other)
	}
}

func handID(i int) string {
	return []string{"hand-a", "hand-b", "hand-c"}[i]
}
