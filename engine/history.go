package engine

import "time"

// HistoryKind names every state-changing event the engine records.
type HistoryKind string

const (
	HistoryPostBlind   HistoryKind = "post-blind"
	HistoryPostAnte    HistoryKind = "post-ante"
	HistoryFold        HistoryKind = "fold"
	HistoryCheck       HistoryKind = "check"
	HistoryCall        HistoryKind = "call"
	HistoryBet         HistoryKind = "bet"
	HistoryRaise       HistoryKind = "raise"
	HistoryAllIn       HistoryKind = "all-in"
	HistoryPhaseChange HistoryKind = "phase-change"
	HistoryHandResult  HistoryKind = "hand-result"
)

// HistoryEntry is an append-only record. Entries are never reordered or
// removed; ordering is causal under the single-writer rule.
type HistoryEntry struct {
	Seq      int         `json:"seq"`
	At       time.Time   `json:"at"`
	Kind     HistoryKind `json:"kind"`
	PlayerID string      `json:"playerId,omitempty"`
	Amount   int64       `json:"amount,omitempty"`
	Note     string      `json:"note,omitempty"`
}

func historyKindForAction(a ActionType) HistoryKind {
	switch a {
	case ActionCheck:
		return HistoryCheck
	case ActionBet:
		return HistoryBet
	case ActionCall:
		return HistoryCall
	case ActionRaise:
		return HistoryRaise
	case ActionFold:
		return HistoryFold
	case ActionAllIn:
		return HistoryAllIn
	}
	return HistoryKind("unknown")
}

func (t *Table) appendHistory(kind HistoryKind, playerID string, amount int64, note string) {
	t.history = append(t.history, HistoryEntry{
		Seq:      len(t.history),
		At:       t.now(),
		Kind:     kind,
		PlayerID: playerID,
		Amount:   amount,
		Note:     note,
	})
}
