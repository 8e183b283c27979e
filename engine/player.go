package engine

import "cardroom/card"

// PlayerStatus 玩家状态
type PlayerStatus byte

const (
	StatusActive PlayerStatus = iota
	StatusFolded
	StatusAllIn
	StatusSittingOut
)

var PlayerStatusDictionary = map[PlayerStatus]string{
	StatusActive:     "active",
	StatusFolded:     "folded",
	StatusAllIn:      "all-in",
	StatusSittingOut: "sitting-out",
}

func (s PlayerStatus) String() string { return PlayerStatusDictionary[s] }

type Player struct {
	ID   string
	Name string
	Seat int

	stack      int64
	streetBet  int64 // committed this betting round
	handBet    int64 // committed this hand, drives side-pot tiers
	status     PlayerStatus
	lastAction ActionType

	holeCards []card.Card
}

func (p *Player) Stack() int64           { return p.stack }
func (p *Player) StreetBet() int64       { return p.streetBet }
func (p *Player) HandBet() int64         { return p.handBet }
func (p *Player) Status() PlayerStatus   { return p.status }
func (p *Player) LastAction() ActionType { return p.lastAction }
func (p *Player) HoleCards() []card.Card { return p.holeCards }

// dealtIn reports whether the player was dealt into the current hand.
func (p *Player) dealtIn() bool { return len(p.holeCards) > 0 }

func (p *Player) folded() bool { return p.status == StatusFolded }
func (p *Player) allIn() bool  { return p.status == StatusAllIn }

// canAct reports whether the player may still take betting actions.
func (p *Player) canAct() bool { return p.status == StatusActive }

func (p *Player) resetForNewHand(sittingOut bool) {
	p.streetBet = 0
	p.handBet = 0
	p.lastAction = ActionNone
	p.holeCards = nil
	if sittingOut {
		p.status = StatusSittingOut
	} else {
		p.status = StatusActive
	}
}

// commit moves chips from the stack into the current street. The amount is
// capped at the remaining stack; emptying the stack marks the player all-in.
// Returns the amount actually moved.
func (p *Player) commit(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	if amount >= p.stack {
		amount = p.stack
		p.status = StatusAllIn
	}
	p.stack -= amount
	p.streetBet += amount
	p.handBet += amount
	return amount
}

// commitAnte is like commit but bypasses streetBet: antes are dead money
// and never count toward matching the current bet.
func (p *Player) commitAnte(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	if amount >= p.stack {
		amount = p.stack
		p.status = StatusAllIn
	}
	p.stack -= amount
	p.handBet += amount
	return amount
}

func (p *Player) refund(amount int64) {
	p.stack += amount
	p.handBet -= amount
}

func (p *Player) award(amount int64) {
	p.stack += amount
}
