// Package eval measures the success rate of the policy derived from a
// value function on a reproducible problem set.
package eval

import (
	"context"
	"fmt"
	"log/slog"

	"solveragent/search"
	"solveragent/types"
)

type Config struct {
	Seed      int64 `yaml:"seed" json:"seed"`
	NProblems int   `yaml:"n_problems" json:"n_problems"`
	MaxSteps  int   `yaml:"max_steps" json:"max_steps"`
	BeamSize  int   `yaml:"beam_size" json:"beam_size"`
	Debug     bool  `yaml:"debug" json:"debug"`
}

func (c *Config) applyDefaults() {
	if c.NProblems == 0 {
		c.NProblems = 100
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 30
	}
	if c.BeamSize == 0 {
		c.BeamSize = 1
	}
}

// Result aggregates one evaluation pass.
type Result struct {
	SuccessRate       float64        `json:"success_rate"`
	MaxSolutionLength int            `json:"max_solution_length"`
	Successes         []*types.State `json:"-"`
	Failures          []*types.State `json:"-"`
}

// Evaluate runs one rollout per problem, generating problem i with seed
// base+i so the evaluation set is identical across checkpoints.
// Problems are intentionally not batched together: mixing beams of
// heterogeneous problems would break per-rollout deduplication.
func Evaluate(ctx context.Context, env types.Environment, q types.QFunction, cfg Config, logger *slog.Logger) (*Result, error) {
	cfg.applyDefaults()

	res := &Result{
		Successes: make([]*types.State, 0),
		Failures:  make([]*types.State, 0),
	}
	rcfg := search.RolloutConfig{MaxSteps: cfg.MaxSteps, BeamSize: cfg.BeamSize}
	if cfg.Debug && logger != nil {
		rcfg.Logger = logger
	}

	for i := 0; i < cfg.NProblems; i++ {
		problem, err := env.GenerateNew(ctx, cfg.Seed+int64(i))
		if err != nil {
			return nil, fmt.Errorf("generating problem %d: %w", i, err)
		}
		success, history, err := search.Rollout(ctx, env, q, problem, rcfg)
		if err != nil {
			return nil, fmt.Errorf("rollout on problem %d: %w", i, err)
		}
		if success {
			res.Successes = append(res.Successes, problem)
			if n := len(history) - 1; n > res.MaxSolutionLength {
				res.MaxSolutionLength = n
			}
		} else {
			res.Failures = append(res.Failures, problem)
		}
		if logger != nil {
			logger.Debug("evaluated", "problem", i, "current", problem.Current(), "success", success)
		}
	}
	res.SuccessRate = float64(len(res.Successes)) / float64(cfg.NProblems)
	return res, nil
}
