package engine

import (
	"fmt"
	"sort"
	"strings"

	"cardroom/card"
)

// HandRanking is a comparable best-five ranking: category first, then the
// kicker list lexicographically. Kickers use high values (A=14) except for
// the wheel straight, whose top card is reported as 5.
type HandRanking struct {
	Category HandCategory `json:"category"`
	Kickers  []int        `json:"kickers"`
	Cards    []card.Card  `json:"cards"` // the contributing 5 cards, high to low
}

// Compare returns >0 if a beats b, <0 if b beats a, 0 for an exact tie
// (split pot). Total order consistent with hand strength.
func Compare(a, b HandRanking) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	n := len(a.Kickers)
	if len(b.Kickers) < n {
		n = len(b.Kickers)
	}
	for i := 0; i < n; i++ {
		if a.Kickers[i] != b.Kickers[i] {
			return a.Kickers[i] - b.Kickers[i]
		}
	}
	return 0
}

// Describe renders the ranking for hand-result records, e.g.
// "Full House, As Ah Ac Kd Kh".
func (r HandRanking) Describe() string {
	names := make([]string, 0, len(r.Cards))
	for _, c := range r.Cards {
		names = append(names, c.String())
	}
	return fmt.Sprintf("%s, %s", r.Category, strings.Join(names, " "))
}

// Evaluate computes the best achievable 5-card ranking for the variant.
// Hold'em picks any 5 of hole+community; Omaha variants must use exactly
// 2 hole cards and 3 community cards.
func Evaluate(hole, community []card.Card, variant Variant) (HandRanking, error) {
	switch variant {
	case VariantOmaha, VariantOmahaHiLo:
		return evaluateOmahaHigh(hole, community)
	default:
		return evaluateAnyFive(hole, community)
	}
}

func evaluateAnyFive(hole, community []card.Card) (HandRanking, error) {
	all := make([]card.Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)
	if len(all) < 5 {
		return HandRanking{}, ErrInvalidState(fmt.Sprintf("need at least 5 cards, have %d", len(all)))
	}

	var best HandRanking
	found := false
	var pick [5]card.Card
	n := len(all)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						pick[0], pick[1], pick[2], pick[3], pick[4] = all[a], all[b], all[c], all[d], all[e]
						r := eval5(pick)
						if !found || Compare(r, best) > 0 {
							best = r
							found = true
						}
					}
				}
			}
		}
	}
	return best, nil
}

func evaluateOmahaHigh(hole, community []card.Card) (HandRanking, error) {
	if len(hole) < 2 || len(community) < 3 {
		return HandRanking{}, ErrInvalidState("omaha needs 2 hole and 3 community cards")
	}

	var best HandRanking
	found := false
	var pick [5]card.Card
	for h1 := 0; h1 < len(hole)-1; h1++ {
		for h2 := h1 + 1; h2 < len(hole); h2++ {
			for b1 := 0; b1 < len(community)-2; b1++ {
				for b2 := b1 + 1; b2 < len(community)-1; b2++ {
					for b3 := b2 + 1; b3 < len(community); b3++ {
						pick[0], pick[1] = hole[h1], hole[h2]
						pick[2], pick[3], pick[4] = community[b1], community[b2], community[b3]
						r := eval5(pick)
						if !found || Compare(r, best) > 0 {
							best = r
							found = true
						}
					}
				}
			}
		}
	}
	return best, nil
}

// eval5 classifies exactly five cards.
func eval5(cs [5]card.Card) HandRanking {
	var counts [15]int // high values 2..14
	suit0 := cs[0].Suit()
	flush := true
	var bits uint16

	for _, c := range cs {
		v := c.HighValue()
		counts[v]++
		bits |= 1 << uint(v)
		if c.Suit() != suit0 {
			flush = false
		}
	}

	straightTop := straightTopValue(bits)

	sorted := append([]card.Card(nil), cs[:]...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].HighValue() > sorted[j].HighValue() })

	if flush && straightTop != 0 {
		cards := straightOrder(sorted, straightTop)
		if straightTop == 14 {
			return HandRanking{Category: HandRoyalFlush, Kickers: []int{14}, Cards: cards}
		}
		return HandRanking{Category: HandStraightFlush, Kickers: []int{straightTop}, Cards: cards}
	}

	// Rank groups: higher multiplicity first, then higher rank.
	type group struct {
		value int
		count int
	}
	groups := make([]group, 0, 5)
	for v := 14; v >= 2; v-- {
		if counts[v] > 0 {
			groups = append(groups, group{value: v, count: counts[v]})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].count > groups[j].count })

	byGroups := func() []card.Card {
		out := make([]card.Card, 0, 5)
		for _, g := range groups {
			for _, c := range sorted {
				if c.HighValue() == g.value {
					out = append(out, c)
				}
			}
		}
		return out
	}

	switch {
	case groups[0].count == 4:
		return HandRanking{
			Category: HandFourOfKind,
			Kickers:  []int{groups[0].value, groups[1].value},
			Cards:    byGroups(),
		}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRanking{
			Category: HandFullHouse,
			Kickers:  []int{groups[0].value, groups[1].value},
			Cards:    byGroups(),
		}
	case flush:
		ks := make([]int, 5)
		for i, c := range sorted {
			ks[i] = c.HighValue()
		}
		return HandRanking{Category: HandFlush, Kickers: ks, Cards: sorted}
	case straightTop != 0:
		return HandRanking{Category: HandStraight, Kickers: []int{straightTop}, Cards: straightOrder(sorted, straightTop)}
	case groups[0].count == 3:
		return HandRanking{
			Category: HandThreeOfKind,
			Kickers:  []int{groups[0].value, groups[1].value, groups[2].value},
			Cards:    byGroups(),
		}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandRanking{
			Category: HandTwoPair,
			Kickers:  []int{groups[0].value, groups[1].value, groups[2].value},
			Cards:    byGroups(),
		}
	case groups[0].count == 2:
		return HandRanking{
			Category: HandOnePair,
			Kickers:  []int{groups[0].value, groups[1].value, groups[2].value, groups[3].value},
			Cards:    byGroups(),
		}
	default:
		ks := make([]int, 5)
		for i, c := range sorted {
			ks[i] = c.HighValue()
		}
		return HandRanking{Category: HandHighCard, Kickers: ks, Cards: sorted}
	}
}

// straightTopValue returns the top card value of a 5-card straight in the
// bitset, or 0. The wheel (A-2-3-4-5) reports 5: the ace acts as rank 1
// there and only there.
func straightTopValue(bits uint16) int {
	const wheel = 1<<14 | 1<<5 | 1<<4 | 1<<3 | 1<<2
	run := 0
	for v := 14; v >= 2; v-- {
		if bits&(1<<uint(v)) != 0 {
			run++
			if run == 5 {
				return v + 4
			}
		} else {
			run = 0
		}
	}
	if bits&wheel == wheel {
		return 5
	}
	return 0
}

// straightOrder arranges the five cards top-first; for the wheel the ace
// moves to the back.
func straightOrder(sortedDesc []card.Card, top int) []card.Card {
	out := append([]card.Card(nil), sortedDesc...)
	if top == 5 && len(out) == 5 && out[0].IsAce() {
		out = append(out[1:], out[0])
	}
	return out
}
