package env

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"solveragent/agents"
	"solveragent/eval"
	"solveragent/results"
	"solveragent/types"
	"solveragent/util"
)

// ProxyConfig controls evaluation cadence and the interaction budget.
type ProxyConfig struct {
	// Run an evaluation whenever the step counter crosses a multiple of
	// this value.
	EvaluateEvery int `yaml:"evaluate_every" json:"evaluate_every"`
	// Log progress whenever the step counter crosses a multiple of this.
	PrintEvery int `yaml:"print_every" json:"print_every"`
	// Total environment-interaction budget; reaching it raises
	// types.ErrBudgetExhausted from Step.
	MaxSteps int `yaml:"max_steps" json:"max_steps"`

	EvalConfig eval.Config `yaml:"eval_config" json:"eval_config"`
}

func (c *ProxyConfig) applyDefaults() {
	if c.EvaluateEvery == 0 {
		c.EvaluateEvery = 10000
	}
	if c.PrintEvery == 0 {
		c.PrintEvery = 100
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 1000000
	}
}

// Proxy wraps an environment and triggers an evaluation of the agent's
// value function every EvaluateEvery interaction steps. It also owns
// the budget: once MaxSteps states have been stepped, every further
// Step returns types.ErrBudgetExhausted.
type Proxy struct {
	inner  types.Environment
	agent  agents.LearningAgent
	runID  string
	domain string
	cfg    ProxyConfig

	store       results.Store
	checkpoints results.CheckpointStore
	metrics     types.MetricsSink
	logger      *slog.Logger

	nSteps           int
	nNewProblems     int
	nCheckpoints     int
	cumulativeReward float64
	beginTime        time.Time
}

var _ types.Environment = (*Proxy)(nil)

func NewProxy(runID, domain string, agent agents.LearningAgent, inner types.Environment, cfg ProxyConfig,
	store results.Store, checkpoints results.CheckpointStore, metrics types.MetricsSink, logger *slog.Logger) *Proxy {
	cfg.applyDefaults()
	if metrics == nil {
		metrics = types.NoopSink()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{
		inner:       inner,
		agent:       agent,
		runID:       runID,
		domain:      domain,
		cfg:         cfg,
		store:       store,
		checkpoints: checkpoints,
		metrics:     metrics,
		logger:      logger,
		beginTime:   time.Now(),
	}
}

func (p *Proxy) GenerateNew(ctx context.Context, seed int64) (*types.State, error) {
	p.nNewProblems++
	return p.inner.GenerateNew(ctx, seed)
}

func (p *Proxy) Step(ctx context.Context, states []*types.State) ([]types.StepResult, error) {
	before := p.nSteps
	p.nSteps += len(states)

	// The agent may step several states at once, so test whether the
	// batch crossed the next multiple rather than the exact remainder.
	if (before%p.cfg.EvaluateEvery)+len(states) >= p.cfg.EvaluateEvery {
		if err := p.Evaluate(ctx); err != nil {
			p.logger.Error("evaluation failed", "err", err)
		}
	}

	if p.nSteps >= p.cfg.MaxSteps {
		return nil, types.ErrBudgetExhausted
	}

	out, err := p.inner.Step(ctx, states)
	if err != nil {
		return nil, err
	}
	for _, r := range out {
		p.cumulativeReward += r.Reward
	}

	if (before%p.cfg.PrintEvery)+len(states) >= p.cfg.PrintEvery {
		p.printProgress()
	}
	return out, nil
}

// Evaluate runs the held-out evaluation against the raw environment
// (evaluation rollouts do not consume budget), appends the result
// record to the store and checkpoints the value function.
func (p *Proxy) Evaluate(ctx context.Context) error {
	p.logger.Info("evaluating", "agent", p.agent.Name(), "domain", p.domain)

	res, err := eval.Evaluate(ctx, p.inner, p.agent.QFunction(), p.cfg.EvalConfig, p.logger)
	if err != nil {
		return fmt.Errorf("evaluating policy: %w", err)
	}

	rec := results.Record{
		Name:              p.agent.Name(),
		Domain:            p.domain,
		NSteps:            p.nSteps,
		ProblemsSeen:      p.nNewProblems,
		CumulativeReward:  p.cumulativeReward,
		SuccessRate:       res.SuccessRate,
		MaxSolutionLength: res.MaxSolutionLength,
		Time:              time.Now(),
	}

	p.metrics.Observe(map[string]float64{
		"success_rate":        res.SuccessRate,
		"problems_seen":       float64(p.nNewProblems),
		"n_environment_steps": float64(p.nSteps),
		"cumulative_reward":   p.cumulativeReward,
		"max_solution_length": float64(res.MaxSolutionLength),
	})
	p.logger.Info("evaluation done",
		"success_rate", res.SuccessRate, "max_length", res.MaxSolutionLength)

	if p.store != nil {
		if err := p.store.Append(ctx, p.runID, rec); err != nil {
			// log I/O must not kill a long training run
			p.logger.Error("appending results", "err", err)
		}
	}
	if p.checkpoints != nil {
		if trainable, ok := p.agent.QFunction().(types.TrainableQFunction); ok {
			if err := p.checkpoints.Save(ctx, p.runID, p.nCheckpoints, trainable); err != nil {
				p.logger.Error("saving checkpoint", "err", err)
			}
		}
	}
	p.nCheckpoints++
	return nil
}

// EvaluateAgent is the outer control loop: evaluate, learn until the
// budget runs out, then do one final learning pass and evaluation.
// Unexpected per-problem failures are logged and skipped; throughput
// beats halting on an isolated fault.
func (p *Proxy) EvaluateAgent(ctx context.Context) error {
	if err := p.Evaluate(ctx); err != nil {
		p.logger.Error("initial evaluation failed", "err", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.agent.LearnFromEnvironment(ctx, p)
		switch {
		case errors.Is(err, types.ErrBudgetExhausted):
			p.logger.Info("learning budget ended, running final learning round")
			if lerr := p.agent.LearnFromExperience(); lerr != nil {
				p.logger.Error("final learning pass failed", "err", lerr)
			}
			p.logger.Info("running final evaluation")
			return p.Evaluate(ctx)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			p.logger.Error("ignoring failure and continuing", "err", err)
		default:
			// agents loop until the budget interrupts them
			return nil
		}
	}
}

func (p *Proxy) printProgress() {
	p.logger.Info("progress",
		"steps", p.nSteps,
		"percent", fmt.Sprintf("%.3f", 100*float64(p.nSteps)/float64(p.cfg.MaxSteps)),
		"eta", util.FormatETA(time.Since(p.beginTime), p.nSteps, p.cfg.MaxSteps),
		"total_reward", p.cumulativeReward,
		"problems", p.nNewProblems,
		"agent", p.agent.Stats(),
	)
}
