package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"cardroom/card"
)

const noSeat = -1

// Table owns all game-critical state for a single table. Every mutating
// method is a synchronous, all-or-nothing unit of work; the caller (one
// room actor per table) must serialize mutations. Reads return deep copies
// taken under the same lock, so they never observe a torn write.
type Table struct {
	mu sync.RWMutex

	code     string
	settings Settings
	rng      *rand.Rand
	now      func() time.Time

	players []*Player // seat order, fixed at join time
	hostID  string

	phase      Phase
	handCount  int
	button     int
	sbSeat     int
	bbSeat     int
	actionSeat int

	curBet        int64 // street bet to match
	minRaise      int64 // last full raise delta on this street
	lastRaiser    int   // seat of the last full raise; noSeat when none
	needAction    int   // players still owing action this street
	lastStreetAct ActionType

	headsUp bool // exactly two players dealt this hand

	deck      card.Deck
	community []card.Card

	history    []HistoryEntry
	lastResult *HandResult
}

// NewTable creates a table in the waiting phase. code is the join code
// assigned by the lobby; it is carried verbatim in full state.
func NewTable(settings Settings, code string) (*Table, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Table{
		code:       code,
		settings:   settings,
		rng:        rand.New(rand.NewSource(seed)),
		now:        time.Now,
		phase:      PhaseWaiting,
		button:     noSeat,
		sbSeat:     noSeat,
		bbSeat:     noSeat,
		actionSeat: noSeat,
		lastRaiser: noSeat,
	}, nil
}

func (t *Table) Code() string       { return t.code }
func (t *Table) Settings() Settings { return t.settings }

func (t *Table) HostID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hostID
}

// AddPlayer seats a player. Legal only before the game starts; the first
// player to join becomes the host.
func (t *Table) AddPlayer(id, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseWaiting {
		return errInvalidPhase("players can only join before the game starts")
	}
	if len(t.players) >= t.settings.MaxPlayers {
		return errTableFull(fmt.Sprintf("table seats %d players", t.settings.MaxPlayers))
	}
	for _, p := range t.players {
		if p.ID == id {
			return errInvalidAction("player already seated")
		}
	}

	p := &Player{
		ID:     id,
		Name:   name,
		Seat:   len(t.players),
		stack:  t.settings.StartingStack,
		status: StatusSittingOut,
	}
	t.players = append(t.players, p)
	if t.hostID == "" {
		t.hostID = id
	}
	return nil
}

// StartGame begins the first hand. Host only, waiting phase only.
func (t *Table) StartGame(callerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if callerID != t.hostID {
		return errNotHost("only the host can start the game")
	}
	if t.phase != PhaseWaiting {
		return errInvalidPhase("game already started")
	}
	if len(t.players) < 2 {
		return errInvalidAction("need at least 2 players")
	}

	// first hand: random button among funded seats
	funded := t.fundedSeats()
	if len(funded) < 2 {
		return errInvalidAction("need at least 2 players with chips")
	}
	t.button = funded[t.rng.Intn(len(funded))]

	return t.startHandLocked()
}

// NextHand starts the following hand after a finished one. Host only.
// The button rotates to the next funded seat.
func (t *Table) NextHand(callerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if callerID != t.hostID {
		return errNotHost("only the host can deal the next hand")
	}
	if t.phase != PhaseFinished {
		return errInvalidPhase("current hand is not finished")
	}
	funded := t.fundedSeats()
	if len(funded) < 2 {
		return errInvalidAction("need at least 2 players with chips")
	}
	t.button = t.nextFundedSeat(t.button)

	return t.startHandLocked()
}

func (t *Table) fundedSeats() []int {
	seats := make([]int, 0, len(t.players))
	for _, p := range t.players {
		if p.stack > 0 {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

// nextFundedSeat walks seat order (wrapping) from the seat after `from`.
func (t *Table) nextFundedSeat(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if t.players[seat].stack > 0 {
			return seat
		}
	}
	return noSeat
}

// nextActorSeat walks seat order (wrapping) from the seat after `from`,
// returning the first player who can still act this hand.
func (t *Table) nextActorSeat(from int) int {
	n := len(t.players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if t.players[seat].canAct() {
			return seat
		}
	}
	return noSeat
}

func (t *Table) startHandLocked() error {
	t.lastResult = nil
	t.community = nil
	t.curBet = 0
	t.minRaise = t.settings.BigBlind
	t.lastRaiser = noSeat
	t.lastStreetAct = ActionNone
	t.handCount++

	dealt := make([]*Player, 0, len(t.players))
	for _, p := range t.players {
		sitOut := p.stack <= 0
		p.resetForNewHand(sitOut)
		if !sitOut {
			dealt = append(dealt, p)
		}
	}
	if len(dealt) < 2 {
		return errInvalidAction("need at least 2 players with chips")
	}
	t.headsUp = len(dealt) == 2

	// blinds relative to the button
	if t.headsUp {
		// Heads-up: the button is the small blind.
		t.sbSeat = t.button
		t.bbSeat = t.nextFundedSeat(t.button)
	} else {
		t.sbSeat = t.nextFundedSeat(t.button)
		t.bbSeat = t.nextFundedSeat(t.sbSeat)
	}

	t.deck = card.NewDeck().Shuffle(t.rng)

	t.postAntesLocked(dealt)
	t.postBlindsLocked()
	if err := t.dealHoleCardsLocked(); err != nil {
		return err
	}

	t.phase = PhasePreflop
	t.appendHistory(HistoryPhaseChange, "", 0, PhaseDictionary[PhasePreflop])

	// Blinds count as the opening bet.
	t.curBet = t.settings.BigBlind
	t.minRaise = t.settings.BigBlind
	t.lastStreetAct = ActionBet
	t.needAction = t.countCanAct()

	if t.countCanAct() <= 1 && t.allBetsMatchedLocked() {
		// everyone is all-in from the forced posts
		return t.runOutAndShowdownLocked()
	}

	if t.headsUp {
		// Heads-up preflop: the small blind (button) opens the action.
		if t.playerAt(t.sbSeat).canAct() {
			t.actionSeat = t.sbSeat
		} else {
			t.actionSeat = t.nextActorSeat(t.sbSeat)
		}
	} else {
		t.actionSeat = t.nextActorSeat(t.bbSeat)
	}
	if t.actionSeat == noSeat {
		return t.runOutAndShowdownLocked()
	}
	return nil
}

func (t *Table) playerAt(seat int) *Player { return t.players[seat] }

func (t *Table) postAntesLocked(dealt []*Player) {
	ante := t.settings.Ante
	if ante == nil {
		return
	}
	switch ante.Type {
	case AnteTypeBigBlind:
		p := t.playerAt(t.bbSeat)
		if paid := p.commitAnte(ante.Amount); paid > 0 {
			t.appendHistory(HistoryPostAnte, p.ID, paid, "")
		}
	default: // AnteTypeAll
		for _, p := range dealt {
			if paid := p.commitAnte(ante.Amount); paid > 0 {
				t.appendHistory(HistoryPostAnte, p.ID, paid, "")
			}
		}
	}
}

func (t *Table) postBlindsLocked() {
	sb := t.playerAt(t.sbSeat)
	if paid := sb.commit(t.settings.SmallBlind); paid > 0 {
		t.appendHistory(HistoryPostBlind, sb.ID, paid, "small")
	}
	bb := t.playerAt(t.bbSeat)
	if paid := bb.commit(t.settings.BigBlind); paid > 0 {
		t.appendHistory(HistoryPostBlind, bb.ID, paid, "big")
	}
}

// dealHoleCardsLocked deals one card at a time around the table starting
// left of the button, repeated per the variant's hole-card count.
func (t *Table) dealHoleCardsLocked() error {
	per := t.settings.Variant.HoleCardCount()
	for round := 0; round < per; round++ {
		seat := t.sbSeat
		for i := 0; i < len(t.players); i++ {
			p := t.playerAt(seat)
			if p.status != StatusSittingOut && !p.folded() {
				c, rest, err := t.deck.DealOne()
				if err != nil {
					return err // deck exhaustion: fail loudly, never deal corrupt hands
				}
				t.deck = rest
				p.holeCards = append(p.holeCards, c)
			}
			seat = (seat + 1) % len(t.players)
		}
	}
	return nil
}

// DefaultAction is the deterministic action the surrounding clock submits
// when a player's time bank expires: check when free, otherwise fold.
func (t *Table) DefaultAction() (string, ActionType, int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.actionSeat == noSeat || !t.phase.isStreet() {
		return "", ActionNone, 0
	}
	p := t.playerAt(t.actionSeat)
	if p.streetBet == t.curBet {
		return p.ID, ActionCheck, 0
	}
	return p.ID, ActionFold, 0
}

// ProcessAction validates and applies one player action. amount is the
// player's total commitment for this street ("raise to"), ignored for
// check and fold. All failures are typed and leave state unchanged.
func (t *Table) ProcessAction(playerID string, action ActionType, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.phase.isStreet() {
		return errInvalidPhase("no betting round in progress")
	}
	if t.actionSeat == noSeat {
		return ErrInvalidState("no current player")
	}
	p := t.playerAt(t.actionSeat)
	if p.ID != playerID {
		return errNotActivePlayer(fmt.Sprintf("action is on %s", p.ID))
	}

	switch action {
	case ActionFold:
		return t.applyFoldLocked(p)
	case ActionCheck:
		if p.streetBet != t.curBet {
			return errInvalidAction(fmt.Sprintf("cannot check facing a bet of %d", t.curBet))
		}
		p.lastAction = ActionCheck
		t.appendHistory(HistoryCheck, p.ID, 0, "")
		t.lastStreetAct = ActionCheck
		return t.advanceLocked()
	case ActionCall:
		return t.applyCallLocked(p)
	case ActionBet, ActionRaise:
		return t.applyRaiseLocked(p, action, amount)
	case ActionAllIn:
		return t.applyRaiseLocked(p, action, p.stack+p.streetBet)
	default:
		return errInvalidAction("unknown action")
	}
}

func (t *Table) applyFoldLocked(p *Player) error {
	p.status = StatusFolded
	p.lastAction = ActionFold
	p.holeCards = nil
	t.appendHistory(HistoryFold, p.ID, 0, "")

	if t.countNotFolded() <= 1 {
		return t.finishFoldWinLocked()
	}
	return t.advanceLocked()
}

func (t *Table) applyCallLocked(p *Player) error {
	owed := t.curBet - p.streetBet
	if owed <= 0 {
		return errInvalidAction("nothing to call")
	}
	paid := p.commit(owed)
	kind := HistoryCall
	act := ActionCall
	if p.allIn() {
		kind = HistoryAllIn
		act = ActionAllIn
	}
	p.lastAction = act
	t.appendHistory(kind, p.ID, paid, "")
	t.lastStreetAct = act
	return t.advanceLocked()
}

// applyRaiseLocked handles bet, raise, and all-in. amount is the target
// street total; a short all-in above the current bet raises the amount to
// call but does not reopen action (no minRaise/lastRaiser update), matching
// the no-reopen convention for sub-minimum all-in raises.
func (t *Table) applyRaiseLocked(p *Player, action ActionType, amount int64) error {
	if action == ActionBet && t.curBet > 0 {
		return errInvalidAction("there is already a bet; raise instead")
	}
	if action == ActionRaise && t.curBet == 0 {
		return errInvalidAction("nothing to raise; bet instead")
	}
	if amount <= p.streetBet {
		return errInvalidAction("amount below current commitment")
	}

	// Cap an overbet at the stack: it becomes an all-in.
	available := p.stack + p.streetBet
	if amount >= available {
		amount = available
		action = ActionAllIn
	}

	if amount <= t.curBet && action != ActionAllIn {
		return errInvalidAction(fmt.Sprintf("must exceed current bet of %d", t.curBet))
	}

	minReq := t.minRaise
	if t.curBet == 0 {
		minReq = t.settings.BigBlind
	}
	delta := amount - t.curBet
	fullRaise := delta >= minReq
	if !fullRaise && action != ActionAllIn {
		return errInvalidAction(fmt.Sprintf("minimum raise is to %d", t.curBet+minReq))
	}
	if t.lastRaiser == p.Seat && amount > t.curBet {
		return errInvalidAction("action has not been reopened")
	}

	if amount > t.curBet {
		if fullRaise {
			t.minRaise = delta
			t.lastRaiser = p.Seat
		}
		t.curBet = amount
		t.needAction = t.countCanAct()
	}

	paid := p.commit(amount - p.streetBet)
	kind := historyKindForAction(action)
	if p.allIn() {
		kind = HistoryAllIn
		action = ActionAllIn
	}
	p.lastAction = action
	t.appendHistory(kind, p.ID, paid, "")
	t.lastStreetAct = action
	return t.advanceLocked()
}

// countNotFolded counts players dealt into this hand who have not folded.
func (t *Table) countNotFolded() int {
	n := 0
	for _, p := range t.players {
		if p.status == StatusActive || p.status == StatusAllIn {
			n++
		}
	}
	return n
}

func (t *Table) countCanAct() int {
	n := 0
	for _, p := range t.players {
		if p.canAct() {
			n++
		}
	}
	return n
}

func (t *Table) allBetsMatchedLocked() bool {
	for _, p := range t.players {
		if p.canAct() && p.streetBet != t.curBet {
			return false
		}
	}
	return true
}

// advanceLocked moves the action pointer or closes the street.
func (t *Table) advanceLocked() error {
	t.needAction--

	closed := false
	next := noSeat
	if t.needAction <= 0 {
		closed = true
	} else {
		next = t.nextActorSeat(t.actionSeat)
		if next == noSeat {
			closed = true
		} else if t.countCanAct() == 1 && t.playerAt(next).streetBet >= t.curBet {
			// lone live player with everything matched: nothing to decide
			closed = true
		}
	}

	if !closed {
		t.actionSeat = next
		return nil
	}
	return t.closeStreetLocked()
}

func (t *Table) closeStreetLocked() error {
	for _, p := range t.players {
		p.streetBet = 0
	}
	t.curBet = 0
	t.minRaise = t.settings.BigBlind
	t.lastRaiser = noSeat
	t.lastStreetAct = ActionNone
	t.actionSeat = noSeat

	if t.countCanAct() <= 1 || t.phase == PhaseRiver {
		return t.runOutAndShowdownLocked()
	}

	t.phase++
	t.appendHistory(HistoryPhaseChange, "", 0, PhaseDictionary[t.phase])
	if err := t.dealCommunityLocked(); err != nil {
		return err
	}

	t.needAction = t.countCanAct()
	// Post-flop the first live seat after the button opens. Heads-up the
	// button IS the small blind, so this puts the big blind first and the
	// button last; the preflop order is the reverse.
	t.actionSeat = t.nextActorSeat(t.button)
	if t.actionSeat == noSeat {
		return t.runOutAndShowdownLocked()
	}
	for _, p := range t.players {
		if p.canAct() {
			p.lastAction = ActionNone
		}
	}
	return nil
}

func (t *Table) dealCommunityLocked() error {
	var n int
	switch t.phase {
	case PhaseFlop:
		n = 3
	case PhaseTurn, PhaseRiver:
		n = 1
	case PhaseShowdown:
		n = 5 - len(t.community)
	}
	if n <= 0 {
		return nil
	}
	cards, rest, err := t.deck.Deal(n)
	if err != nil {
		return err
	}
	t.deck = rest
	t.community = append(t.community, cards...)
	return nil
}

func (t *Table) runOutAndShowdownLocked() error {
	t.phase = PhaseShowdown
	t.appendHistory(HistoryPhaseChange, "", 0, PhaseDictionary[PhaseShowdown])
	if err := t.dealCommunityLocked(); err != nil {
		return err
	}
	return t.settleShowdownLocked()
}

// Phase returns the current phase.
func (t *Table) Phase() Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase
}

// LastHandResult returns the result of the most recently finished hand,
// or nil while a hand is running.
func (t *Table) LastHandResult() *HandResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastResult == nil {
		return nil
	}
	cp := *t.lastResult
	cp.Winners = append([]string(nil), t.lastResult.Winners...)
	return &cp
}
