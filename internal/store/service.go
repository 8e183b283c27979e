package store

import (
	"context"
	"errors"
	"time"

	"cardroom/engine"
)

var ErrNotFound = errors.New("not found")

// StoredHand is one finished hand as returned by history queries.
type StoredHand struct {
	TableID string            `json:"tableId"`
	HandID  string            `json:"handId"`
	EndedAt time.Time         `json:"endedAt"`
	Result  engine.HandResult `json:"result"`
	State   *engine.State     `json:"state,omitempty"`
}

// Service persists table snapshots and finished hands. Snapshots are the
// full engine.State and let a table resume after a process restart.
type Service interface {
	Close() error
	SaveState(ctx context.Context, tableID string, s engine.State) error
	LoadState(ctx context.Context, tableID string) (engine.State, error)
	DeleteState(ctx context.Context, tableID string) error
	SaveHandResult(ctx context.Context, tableID, handID string, endedAt time.Time, result engine.HandResult, final engine.State) error
	ListHandResults(ctx context.Context, tableID string, limit int) ([]StoredHand, error)
}
