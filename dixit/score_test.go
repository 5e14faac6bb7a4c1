package dixit

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	c1, c2, c3, c4 := Card{Key: 1}, Card{Key: 2}, Card{Key: 3}, Card{Key: 4}
	table := []TableEntry{
		{Card: c1, Seat: 0},
		{Card: c2, Seat: 1},
		{Card: c3, Seat: 2},
		{Card: c4, Seat: 3},
	}

	tests := []struct {
		name  string
		votes []Vote
		want  []int
	}{
		{
			name:  "nobody correct, every decoy gets one vote",
			votes: []Vote{{1, c3}, {2, c4}, {3, c2}},
			want:  []int{0, 3, 3, 3},
		},
		{
			name:  "nobody correct, votes concentrated on one decoy",
			votes: []Vote{{1, c3}, {2, c2}, {3, c3}},
			want:  []int{0, 3, 4, 2},
		},
		{
			name:  "everybody correct",
			votes: []Vote{{1, c1}, {2, c1}, {3, c1}},
			want:  []int{0, 2, 2, 2},
		},
		{
			name:  "one correct",
			votes: []Vote{{1, c1}, {2, c2}, {3, c2}},
			want:  []int{3, 5, 0, 0},
		},
		{
			name:  "two correct",
			votes: []Vote{{1, c1}, {2, c1}, {3, c3}},
			want:  []int{3, 3, 4, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(0, c1, table, tt.votes, 4))
		})
	}
}

func TestScoreStorytellerSeat(t *testing.T) {
	c1, c2, c3 := Card{Key: 10}, Card{Key: 20}, Card{Key: 30}
	table := []TableEntry{{Card: c1, Seat: 0}, {Card: c2, Seat: 1}, {Card: c3, Seat: 2}}

	// Seat 2 tells; seat 0 finds it, seat 1 falls for seat 0's decoy.
	votes := []Vote{{0, c3}, {1, c1}}
	assert.Equal(t, []int{3 + 1, 0, 3}, Score(2, c3, table, votes, 3))
}

func TestScoreIsOrderIndependent(t *testing.T) {
	cards := testCards(5)
	table := []TableEntry{
		{Card: cards[0], Seat: 0},
		{Card: cards[1], Seat: 1},
		{Card: cards[2], Seat: 2},
		{Card: cards[3], Seat: 3},
		{Card: cards[4], Seat: 4},
	}
	votes := []Vote{{1, cards[0]}, {2, cards[3]}, {3, cards[1]}, {4, cards[3]}}
	want := Score(0, cards[0], table, votes, 5)

	rng := rand.New(rand.NewPCG(7, 7))
	for range 50 {
		rng.Shuffle(len(table), func(i, j int) { table[i], table[j] = table[j], table[i] })
		rng.Shuffle(len(votes), func(i, j int) { votes[i], votes[j] = votes[j], votes[i] })
		assert.Equal(t, want, Score(0, cards[0], table, votes, 5))
	}
}

func TestScoreNeverNegative(t *testing.T) {
	cards := testCards(4)
	table := []TableEntry{
		{Card: cards[0], Seat: 0},
		{Card: cards[1], Seat: 1},
		{Card: cards[2], Seat: 2},
		{Card: cards[3], Seat: 3},
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		votes := make([]Vote, 0, 3)
		for seat := 1; seat < 4; seat++ {
			var pick Card
			for {
				e := table[rng.IntN(len(table))]
				if e.Seat != seat {
					pick = e.Card
					break
				}
			}
			votes = append(votes, Vote{Seat: seat, Card: pick})
		}

		total := 0
		for _, d := range Score(0, cards[0], table, votes, 4) {
			assert.GreaterOrEqual(t, d, 0)
			total += d
		}
		assert.Positive(t, total)
	}
}
