package search

import (
	"fmt"

	"solveragent/types"
)

// RecoverSolutions reconstructs root-to-terminal state paths from the
// history of a successful rollout. Every state in the final beam layer
// with strictly positive value is treated as a terminal; its chain of
// parent actions is walked back to the root.
//
// The parent chain is acyclic by construction, but a corrupted chain
// must not hang the caller: traversal is capped at maxSteps+1 states
// and fails loudly beyond that.
func RecoverSolutions(history [][]*types.State, maxSteps int) ([][]*types.State, error) {
	if len(history) == 0 {
		return nil, nil
	}

	solutions := make([][]*types.State, 0)
	for _, terminal := range history[len(history)-1] {
		if terminal.Value <= 0 {
			continue
		}
		path := []*types.State{terminal}
		s := terminal
		for s.ParentAction != nil {
			if len(path) >= maxSteps+1 {
				return nil, fmt.Errorf("parent chain longer than %d states, solution path corrupted", maxSteps+1)
			}
			s = s.ParentAction.State
			path = append(path, s)
		}
		// reverse to root-first order
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		solutions = append(solutions, path)
	}
	return solutions, nil
}
