package testenv

import (
	"fmt"
	"math/rand"
	"strconv"
)

// Countdown is a small subtraction game: the state is a number, each
// move subtracts 1, 2 or 3, and the goal is to reach exactly zero.
type Countdown struct {
	// Largest starting number; defaults to 20.
	Max int
}

var _ Domain = Countdown{}

func (Countdown) Name() string { return "countdown" }

func (c Countdown) Generate(r *rand.Rand) ([]string, []string) {
	max := c.Max
	if max < 5 {
		max = 20
	}
	n := 5 + r.Intn(max-4)
	return []string{strconv.Itoa(n)}, []string{"reach 0"}
}

func (Countdown) Expand(current string, _ []string) (bool, []Move) {
	n, err := strconv.Atoi(current)
	if err != nil {
		return false, nil
	}
	if n == 0 {
		return true, nil
	}
	moves := make([]Move, 0, 3)
	for k := 1; k <= 3 && k <= n; k++ {
		moves = append(moves, Move{
			Action: fmt.Sprintf("subtract %d", k),
			State:  strconv.Itoa(n - k),
		})
	}
	return false, moves
}
