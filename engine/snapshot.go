package engine

import (
	"math/rand"
	"time"

	"cardroom/card"
)

// PlayerState is a player's public row in a state snapshot. Cards is
// present only in trusted snapshots and in the owning player's own view;
// for everyone else the field is absent, not empty.
type PlayerState struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Seat       int          `json:"seat"`
	Stack      int64        `json:"stack"`
	StreetBet  int64        `json:"streetBet"`
	HandBet    int64        `json:"handBet"`
	Status     PlayerStatus `json:"status"`
	LastAction ActionType   `json:"lastAction"`
	Cards      []card.Card  `json:"cards,omitempty"`
}

// State is a complete, self-contained snapshot of a table. The full form
// (including Deck and all hole cards) is for trusted use only: persistence
// and server-side logging. Restore rebuilds a live table from it.
type State struct {
	Code      string   `json:"code"`
	Settings  Settings `json:"settings"`
	HostID    string   `json:"hostId"`
	Phase     Phase    `json:"phase"`
	HandCount int      `json:"handCount"`

	Button         int  `json:"button"`
	SmallBlindSeat int  `json:"smallBlindSeat"`
	BigBlindSeat   int  `json:"bigBlindSeat"`
	ActionSeat     int  `json:"actionSeat"`
	HeadsUp        bool `json:"headsUp"`

	CurrentBet       int64      `json:"currentBet"`
	MinRaise         int64      `json:"minRaise"`
	LastRaiser       int        `json:"lastRaiser"`
	NeedAction       int        `json:"needAction"`
	LastStreetAction ActionType `json:"lastStreetAction"`

	Pot       int64       `json:"pot"`
	Community []card.Card `json:"community"`
	Deck      card.Deck   `json:"deck,omitempty"`

	Players        []PlayerState  `json:"players"`
	History        []HistoryEntry `json:"history"`
	LastHandResult *HandResult    `json:"lastHandResult,omitempty"`
}

// State returns the full untruncated snapshot. Never hand this to a
// player transport; use StateForPlayer for that.
func (t *Table) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.stateLocked()
	s.Deck = append(card.Deck(nil), t.deck...)
	for i, p := range t.players {
		s.Players[i].Cards = append([]card.Card(nil), p.holeCards...)
	}
	return s
}

// StateForPlayer returns a deep-copied, player-scoped view: the deck is
// omitted, and only the requesting player's own hole cards are present.
func (t *Table) StateForPlayer(playerID string) State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.stateLocked()
	for i, p := range t.players {
		if p.ID == playerID && len(p.holeCards) > 0 {
			s.Players[i].Cards = append([]card.Card(nil), p.holeCards...)
		}
	}
	return s
}

func (t *Table) stateLocked() State {
	var pot int64
	for _, p := range t.players {
		pot += p.handBet
	}
	settings := t.settings
	if settings.Ante != nil {
		ante := *settings.Ante
		settings.Ante = &ante
	}
	s := State{
		Code:             t.code,
		Settings:         settings,
		HostID:           t.hostID,
		Phase:            t.phase,
		HandCount:        t.handCount,
		Button:           t.button,
		SmallBlindSeat:   t.sbSeat,
		BigBlindSeat:     t.bbSeat,
		ActionSeat:       t.actionSeat,
		HeadsUp:          t.headsUp,
		CurrentBet:       t.curBet,
		MinRaise:         t.minRaise,
		LastRaiser:       t.lastRaiser,
		NeedAction:       t.needAction,
		LastStreetAction: t.lastStreetAct,
		Pot:              pot,
		Community:        append([]card.Card(nil), t.community...),
		History:          append([]HistoryEntry(nil), t.history...),
	}
	for _, p := range t.players {
		s.Players = append(s.Players, PlayerState{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Stack:      p.stack,
			StreetBet:  p.streetBet,
			HandBet:    p.handBet,
			Status:     p.status,
			LastAction: p.lastAction,
		})
	}
	if t.lastResult != nil {
		cp := *t.lastResult
		cp.Winners = append([]string(nil), t.lastResult.Winners...)
		cp.Pots = append([]PotAward(nil), t.lastResult.Pots...)
		s.LastHandResult = &cp
	}
	return s
}

// Restore rebuilds a table from a previously serialized full state, e.g.
// after a process restart. The snapshot must come from State(), not from
// a sanitized player view.
func Restore(s State) (*Table, error) {
	if err := s.Settings.validate(); err != nil {
		return nil, err
	}
	if s.Settings.Ante != nil {
		ante := *s.Settings.Ante
		s.Settings.Ante = &ante
	}
	t := &Table{
		code:          s.Code,
		settings:      s.Settings,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
		hostID:        s.HostID,
		phase:         s.Phase,
		handCount:     s.HandCount,
		button:        s.Button,
		sbSeat:        s.SmallBlindSeat,
		bbSeat:        s.BigBlindSeat,
		actionSeat:    s.ActionSeat,
		headsUp:       s.HeadsUp,
		curBet:        s.CurrentBet,
		minRaise:      s.MinRaise,
		lastRaiser:    s.LastRaiser,
		needAction:    s.NeedAction,
		lastStreetAct: s.LastStreetAction,
		deck:          append(card.Deck(nil), s.Deck...),
		community:     append([]card.Card(nil), s.Community...),
		history:       append([]HistoryEntry(nil), s.History...),
	}
	for _, ps := range s.Players {
		t.players = append(t.players, &Player{
			ID:         ps.ID,
			Name:       ps.Name,
			Seat:       ps.Seat,
			stack:      ps.Stack,
			streetBet:  ps.StreetBet,
			handBet:    ps.HandBet,
			status:     ps.Status,
			lastAction: ps.LastAction,
			holeCards:  append([]card.Card(nil), ps.Cards...),
		})
	}
	if s.LastHandResult != nil {
		cp := *s.LastHandResult
		t.lastResult = &cp
	}
	if t.phase.isStreet() && len(t.deck) == 0 {
		return nil, ErrInvalidState("mid-hand snapshot is missing the deck")
	}
	return t, nil
}
