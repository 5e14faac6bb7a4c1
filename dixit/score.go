/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package dixit

const (
	flatAward        = 2
	storytellerAward = 3
	correctAward     = 3
)

// Score returns the per-seat score deltas for one round.
//
// If nobody or everybody found the storyteller's card, every other seat gets
// 2 and the storyteller nothing. Otherwise the storyteller and each correct
// voter get 3. In both cases the owner of every other table card also gets
// one point per vote that card received.
func Score(storyteller int, storytellerCard Card, table []TableEntry, votes []Vote, playerCount int) []int {
	deltas := make([]int, playerCount)

	received := make(map[int]int, len(table))
	correct := 0
	for _, v := range votes {
		received[v.Card.Key]++
		if v.Card.Key == storytellerCard.Key {
			correct++
		}
	}

	voters := playerCount - 1
	if correct == 0 || correct == voters {
		for seat := range deltas {
			if seat != storyteller {
				deltas[seat] += flatAward
			}
		}
	} else {
		deltas[storyteller] += storytellerAward
		for _, v := range votes {
			if v.Card.Key == storytellerCard.Key {
				deltas[v.Seat] += correctAward
			}
		}
	}

	for _, e := range table {
		if e.Card.Key == storytellerCard.Key {
			continue
		}
		deltas[e.Seat] += received[e.Card.Key]
	}

	return deltas
}
