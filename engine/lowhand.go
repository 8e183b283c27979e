package engine

import "cardroom/card"

// LowRanking is an eight-or-better low hand: five distinct ranks, all 8 or
// below, ace counting as 1. Ranks are kept high-to-low; the lexicographically
// smaller sequence is the better low.
type LowRanking struct {
	Ranks []int       `json:"ranks"`
	Cards []card.Card `json:"cards"`
}

// CompareLow returns >0 when a is the better (lower) hand, <0 when b is,
// 0 on a tie.
func CompareLow(a, b LowRanking) int {
	for i := 0; i < len(a.Ranks) && i < len(b.Ranks); i++ {
		if a.Ranks[i] != b.Ranks[i] {
			return b.Ranks[i] - a.Ranks[i]
		}
	}
	return 0
}

// EvaluateLow finds the best qualifying low from exactly 2 hole plus 3
// community cards. ok is false when no low exists.
func EvaluateLow(hole, community []card.Card) (low LowRanking, ok bool) {
	if len(hole) < 2 || len(community) < 3 {
		return LowRanking{}, false
	}
	for h1 := 0; h1 < len(hole)-1; h1++ {
		for h2 := h1 + 1; h2 < len(hole); h2++ {
			for b1 := 0; b1 < len(community)-2; b1++ {
				for b2 := b1 + 1; b2 < len(community)-1; b2++ {
					for b3 := b2 + 1; b3 < len(community); b3++ {
						cand, valid := lowFive([5]card.Card{
							hole[h1], hole[h2], community[b1], community[b2], community[b3],
						})
						if !valid {
							continue
						}
						if !ok || CompareLow(cand, low) > 0 {
							low = cand
							ok = true
						}
					}
				}
			}
		}
	}
	return low, ok
}

func lowFive(cs [5]card.Card) (LowRanking, bool) {
	var seen [9]bool // ranks 1..8
	for _, c := range cs {
		r := int(c.Rank()) // ace already 1 here
		if r > 8 {
			return LowRanking{}, false
		}
		if seen[r] {
			return LowRanking{}, false // pairs never qualify
		}
		seen[r] = true
	}
	ranks := make([]int, 0, 5)
	cards := make([]card.Card, 0, 5)
	for r := 8; r >= 1; r-- {
		if !seen[r] {
			continue
		}
		ranks = append(ranks, r)
		for _, c := range cs {
			if int(c.Rank()) == r {
				cards = append(cards, c)
			}
		}
	}
	return LowRanking{Ranks: ranks, Cards: cards}, true
}
