package engine

import "sort"

// pot is one settlement tier. Players who committed at least the tier's
// threshold and have not folded contend for it; a tier fed by a single
// player is an uncalled bet and goes back to them.
type pot struct {
	amount     int64
	eligible   []int // seats, ascending
	refundSeat int   // -1 unless this tier is a pure refund
}

// buildPots partitions whole-hand commitments into main and side pots.
// 按玩家总投入分层；弃牌玩家出资但不参与分配。
func buildPots(players []*Player) []pot {
	contributors := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.handBet > 0 {
			contributors = append(contributors, p)
		}
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].handBet != contributors[j].handBet {
			return contributors[i].handBet < contributors[j].handBet
		}
		return contributors[i].Seat < contributors[j].Seat
	})

	pots := make([]pot, 0, 4)
	covered := int64(0)
	for i, pl := range contributors {
		tier := pl.handBet - covered
		if tier <= 0 {
			continue
		}

		next := pot{refundSeat: -1}
		for j := i; j < len(contributors); j++ {
			part := contributors[j].handBet - covered
			if part > tier {
				part = tier
			}
			next.amount += part
			if st := contributors[j].status; st == StatusActive || st == StatusAllIn {
				next.eligible = append(next.eligible, contributors[j].Seat)
			}
		}
		sort.Ints(next.eligible)

		if len(contributors)-i == 1 {
			// single contributor at this level: uncalled chips
			next.refundSeat = contributors[i].Seat
			next.eligible = nil
		}

		// merge with previous tier when contenders are identical
		if n := len(pots); n > 0 && next.refundSeat == -1 && sameSeats(pots[n-1].eligible, next.eligible) && pots[n-1].refundSeat == -1 {
			pots[n-1].amount += next.amount
		} else {
			pots = append(pots, next)
		}

		covered = pl.handBet
	}
	return pots
}

func sameSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func potTotal(pots []pot) int64 {
	var sum int64
	for _, p := range pots {
		if p.refundSeat == -1 {
			sum += p.amount
		}
	}
	return sum
}
