package engine

import "sort"

type ResultReason string

const (
	ReasonFold     ResultReason = "fold"
	ReasonShowdown ResultReason = "showdown"
)

// PotAward records how one settlement tier was paid out.
type PotAward struct {
	Amount  int64    `json:"amount"`
	Winners []string `json:"winners"`
	Shares  []int64  `json:"shares"`
	Low     bool     `json:"low,omitempty"`
}

// HandResult summarizes a finished hand. Winner order follows payout
// order (clockwise from the button); ties share the pot.
type HandResult struct {
	Winners  []string     `json:"winners"`
	Pot      int64        `json:"pot"`
	Reason   ResultReason `json:"reason"`
	HandDesc string       `json:"handDesc,omitempty"`
	Pots     []PotAward   `json:"pots,omitempty"`
}

type showdownHand struct {
	p      *Player
	high   HandRanking
	low    LowRanking
	hasLow bool
}

// finishFoldWinLocked ends the hand when a single non-folded player
// remains. The winner's uncalled chips come back first; everything else
// committed this hand is theirs.
func (t *Table) finishFoldWinLocked() error {
	var winner *Player
	for _, p := range t.players {
		if p.status == StatusActive || p.status == StatusAllIn {
			winner = p
			break
		}
	}
	if winner == nil {
		return ErrInvalidState("no winner in fold-win state")
	}

	for _, p := range t.players {
		p.streetBet = 0
	}

	var maxOther int64
	for _, p := range t.players {
		if p != winner && p.handBet > maxOther {
			maxOther = p.handBet
		}
	}
	if excess := winner.handBet - maxOther; excess > 0 {
		winner.refund(excess)
	}

	var total int64
	for _, p := range t.players {
		total += p.handBet
		p.handBet = 0
	}
	winner.award(total)

	t.lastResult = &HandResult{
		Winners: []string{winner.ID},
		Pot:     total,
		Reason:  ReasonFold,
		Pots: []PotAward{{
			Amount:  total,
			Winners: []string{winner.ID},
			Shares:  []int64{total},
		}},
	}
	t.appendHistory(HistoryHandResult, winner.ID, total, string(ReasonFold))
	t.finishHandLocked()
	return nil
}

// settleShowdownLocked evaluates every contender, awards each pot tier
// independently, and for hi-lo variants splits tiers between the best high
// and the best qualifying low.
func (t *Table) settleShowdownLocked() error {
	for _, p := range t.players {
		p.streetBet = 0
	}

	bySeat := make(map[int]*showdownHand, len(t.players))
	for _, p := range t.players {
		if p.status != StatusActive && p.status != StatusAllIn {
			continue
		}
		high, err := Evaluate(p.holeCards, t.community, t.settings.Variant)
		if err != nil {
			return err
		}
		sh := &showdownHand{p: p, high: high}
		if t.settings.Variant.SplitsLow() {
			sh.low, sh.hasLow = EvaluateLow(p.holeCards, t.community)
		}
		bySeat[p.Seat] = sh
	}
	if len(bySeat) == 0 {
		return ErrInvalidState("no contenders at showdown")
	}

	pots := buildPots(t.players)
	for _, p := range t.players {
		p.handBet = 0
	}

	result := &HandResult{Reason: ReasonShowdown}
	seenWinner := make(map[string]bool)
	var bestDesc string

	addWinners := func(award PotAward) {
		for _, id := range award.Winners {
			if !seenWinner[id] {
				seenWinner[id] = true
				result.Winners = append(result.Winners, id)
			}
		}
	}

	for _, tier := range pots {
		if tier.refundSeat >= 0 {
			t.playerAt(tier.refundSeat).award(tier.amount)
			continue
		}
		if len(tier.eligible) == 0 {
			return ErrInvalidState("pot tier without contenders")
		}

		highSeats := bestHighSeats(tier.eligible, bySeat)
		var lowSeats []int
		if t.settings.Variant.SplitsLow() {
			lowSeats = bestLowSeats(tier.eligible, bySeat)
		}

		highAmt := tier.amount
		var lowAmt int64
		if len(lowSeats) > 0 {
			lowAmt = tier.amount / 2
			highAmt = tier.amount - lowAmt // odd chip to the high side
		}

		award := t.payTierLocked(highAmt, highSeats, false)
		result.Pots = append(result.Pots, award)
		addWinners(award)
		if bestDesc == "" {
			bestDesc = bySeat[highSeats[0]].high.Describe()
		}

		if lowAmt > 0 {
			lowAward := t.payTierLocked(lowAmt, lowSeats, true)
			result.Pots = append(result.Pots, lowAward)
			addWinners(lowAward)
		}

		result.Pot += tier.amount
	}

	result.HandDesc = bestDesc
	t.lastResult = result
	t.appendHistory(HistoryHandResult, "", result.Pot, result.HandDesc)
	t.finishHandLocked()
	return nil
}

// payTierLocked splits amount among the winning seats. The remainder of an
// uneven split goes to the first winner clockwise from the button.
func (t *Table) payTierLocked(amount int64, seats []int, low bool) PotAward {
	ordered := t.payoutOrder(seats)
	share := amount / int64(len(ordered))
	rem := amount % int64(len(ordered))

	award := PotAward{Amount: amount, Low: low}
	for i, seat := range ordered {
		amt := share
		if i == 0 {
			amt += rem
		}
		t.playerAt(seat).award(amt)
		award.Winners = append(award.Winners, t.playerAt(seat).ID)
		award.Shares = append(award.Shares, amt)
	}
	return award
}

// payoutOrder sorts seats clockwise starting from the seat after the button.
func (t *Table) payoutOrder(seats []int) []int {
	n := len(t.players)
	out := append([]int(nil), seats...)
	pos := func(seat int) int { return (seat - t.button - 1 + 2*n) % n }
	sort.Slice(out, func(i, j int) bool { return pos(out[i]) < pos(out[j]) })
	return out
}

func bestHighSeats(eligible []int, bySeat map[int]*showdownHand) []int {
	var winners []int
	for _, seat := range eligible {
		sh := bySeat[seat]
		if sh == nil {
			continue
		}
		if len(winners) == 0 {
			winners = []int{seat}
			continue
		}
		switch cmp := Compare(sh.high, bySeat[winners[0]].high); {
		case cmp > 0:
			winners = []int{seat}
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	return winners
}

func bestLowSeats(eligible []int, bySeat map[int]*showdownHand) []int {
	var winners []int
	for _, seat := range eligible {
		sh := bySeat[seat]
		if sh == nil || !sh.hasLow {
			continue
		}
		if len(winners) == 0 {
			winners = []int{seat}
			continue
		}
		switch cmp := CompareLow(sh.low, bySeat[winners[0]].low); {
		case cmp > 0:
			winners = []int{seat}
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	return winners
}

// finishHandLocked is the common tail of both settlement paths: hole cards
// leave the table (they exist only while a hand is live), the action
// pointer clears, and the phase becomes terminal until NextHand.
func (t *Table) finishHandLocked() {
	for _, p := range t.players {
		p.holeCards = nil
	}
	t.actionSeat = noSeat
	t.curBet = 0
	t.needAction = 0
	t.phase = PhaseFinished
	t.appendHistory(HistoryPhaseChange, "", 0, PhaseDictionary[PhaseFinished])
}
