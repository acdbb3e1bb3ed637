package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"solveragent/types"
)

// RolloutConfig bounds one beam-search attempt at a problem.
type RolloutConfig struct {
	MaxSteps int
	BeamSize int
	Logger   *slog.Logger
}

var errEmptyBeam = errors.New("rollout requires a non-empty initial beam")

// Rollout runs beam search from root, guided by the value function,
// until success, a dead end, or MaxSteps rounds. It returns whether a
// rewarded state was reached and the history of beam layers, starting
// with the initial beam.
//
// Each round is two batched calls: one environment step over the whole
// beam and one scoring call over all candidate actions. States already
// visited in this rollout are pruned, which bounds memory and stops
// cycles in environments with reversible actions.
func Rollout(ctx context.Context, env types.Environment, q types.QFunction, root *types.State, cfg RolloutConfig) (bool, [][]*types.State, error) {
	if root == nil {
		return false, nil, errEmptyBeam
	}
	if cfg.BeamSize <= 0 {
		cfg.BeamSize = 1
	}
	logger := cfg.Logger

	beam := []*types.State{root}
	history := [][]*types.State{beam}
	seen := map[string]bool{root.Hash(): true}
	transform := q.AggregationTransform()
	success := false

	for i := 0; i < cfg.MaxSteps; i++ {
		if len(beam) == 0 {
			break
		}
		if logger != nil {
			logger.Debug("beam", "round", i, "size", len(beam), "top", beam[0].Current())
		}

		results, err := env.Step(ctx, beam)
		if err != nil {
			return false, history, fmt.Errorf("environment step: %w", err)
		}

		for _, r := range results {
			if r.Reward > 0 {
				success = true
			}
		}
		if success {
			break
		}

		actions := make([]*types.Action, 0)
		for _, r := range results {
			actions = append(actions, r.Actions...)
		}
		if len(actions) == 0 {
			// dead end
			break
		}

		scores, err := q.Score(ctx, actions)
		if err != nil {
			return false, history, fmt.Errorf("scoring actions: %w", err)
		}
		if len(scores) != len(actions) {
			return false, history, fmt.Errorf("scorer returned %d values for %d actions", len(scores), len(actions))
		}

		// Path scores compose additively in the transform's domain.
		candidates := make([]*types.State, 0, len(actions))
		inRound := make(map[string]bool)
		for j, a := range actions {
			a.Value = scores[j]
			ns := a.NextState
			ns.Value = a.State.Value + transform(scores[j])
			h := ns.Hash()
			if !seen[h] && !inRound[h] {
				inRound[h] = true
				candidates = append(candidates, ns)
			}
		}
		if len(candidates) == 0 {
			break
		}

		// Stable sort keeps ties deterministic for a fixed input order.
		sort.SliceStable(candidates, func(x, y int) bool {
			return candidates[x].Value > candidates[y].Value
		})

		if len(candidates) > cfg.BeamSize {
			candidates = candidates[:cfg.BeamSize]
		}
		beam = candidates
		history = append(history, beam)
		for _, s := range beam {
			seen[s.Hash()] = true
		}
	}

	return success, history, nil
}
