package testenv

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
)

// Arith is an expression-simplification domain. A problem is a fully
// parenthesized arithmetic expression; each move evaluates one
// innermost parenthesized binary operation; the goal is a single
// number.
type Arith struct {
	// Depth of the generated expression tree.
	Depth int
}

var _ Domain = Arith{}

func (Arith) Name() string { return "arith" }

var arithOps = []string{"+", "-", "*"}

func (a Arith) Generate(r *rand.Rand) ([]string, []string) {
	depth := a.Depth
	if depth <= 0 {
		depth = 2
	}
	return []string{a.expr(r, depth)}, []string{"reduce to a single number"}
}

func (a Arith) expr(r *rand.Rand, depth int) string {
	if depth == 0 {
		return strconv.Itoa(1 + r.Intn(9))
	}
	op := arithOps[r.Intn(len(arithOps))]
	return fmt.Sprintf("(%s %s %s)", a.expr(r, depth-1), op, a.expr(r, depth-1))
}

// innermost parenthesized binary operation over plain integers
var arithRedex = regexp.MustCompile(`\((-?\d+) ([+*-]) (-?\d+)\)`)

var arithNumber = regexp.MustCompile(`^-?\d+$`)

func (Arith) Expand(current string, _ []string) (bool, []Move) {
	if arithNumber.MatchString(current) {
		return true, nil
	}

	moves := make([]Move, 0)
	for _, loc := range arithRedex.FindAllStringSubmatchIndex(current, -1) {
		left, _ := strconv.Atoi(current[loc[2]:loc[3]])
		op := current[loc[4]:loc[5]]
		right, _ := strconv.Atoi(current[loc[6]:loc[7]])

		var value int
		switch op {
		case "+":
			value = left + right
		case "-":
			value = left - right
		case "*":
			value = left * right
		}

		next := current[:loc[0]] + strconv.Itoa(value) + current[loc[1]:]
		moves = append(moves, Move{
			Action: fmt.Sprintf("compute %d %s %d", left, op, right),
			State:  next,
		})
	}
	return false, moves
}
