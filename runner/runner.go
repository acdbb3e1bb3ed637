package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"solveragent/agents"
	"solveragent/env"
	"solveragent/eval"
	"solveragent/results"
	"solveragent/types"
	"solveragent/values"
)

func buildAgent(spec AgentSpec, q types.QFunction, metrics types.MetricsSink, logger *slog.Logger) (agents.LearningAgent, error) {
	switch spec.Type {
	case "qlearning":
		return agents.NewQLearning(q, spec.QLearning, metrics, logger), nil
	case "deepening", "":
		return agents.NewBeamSearchIterativeDeepening(q, spec.Deepening, metrics, logger), nil
	default:
		return nil, fmt.Errorf("unknown agent type %q", spec.Type)
	}
}

func buildStores(cfg RunConfig, logger *slog.Logger) (results.Store, results.CheckpointStore, error) {
	if cfg.RedisAddr != "" {
		store := results.NewRedisStore(cfg.RedisAddr)
		return store, store, nil
	}
	dir := cfg.ResultsDir
	if dir == "" {
		dir = "results"
	}
	store, err := results.NewFileStore(dir, logger)
	if err != nil {
		return nil, nil, err
	}
	ckpts, err := results.NewFileCheckpointStore(dir)
	if err != nil {
		return nil, nil, err
	}
	return store, ckpts, nil
}

// RunAgentExperiment trains one agent on one domain until the budget
// runs out, evaluating and checkpointing along the way.
func RunAgentExperiment(ctx context.Context, cfg RunConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	runID := fmt.Sprintf("%s-%s-%s", cfg.ExperimentID, cfg.Agent.Name, cfg.Domain)

	q, err := values.New(cfg.QFunction)
	if err != nil {
		return err
	}

	metrics := types.MultiSink(
		types.SlogSink(logger.With("run", runID)),
		results.NewPromSink(runID, nil),
	)

	agent, err := buildAgent(cfg.Agent, q, metrics, logger)
	if err != nil {
		return err
	}

	store, ckpts, err := buildStores(cfg, logger)
	if err != nil {
		return err
	}

	client := env.NewClient(cfg.EnvironmentURL, cfg.Domain)
	proxy := env.NewProxy(runID, cfg.Domain, agent, client, cfg.EvalEnvironment,
		store, ckpts, metrics, logger.With("run", runID))

	logger.Info("running agent", "agent", agent.Name(), "domain", cfg.Domain, "run", runID)
	return proxy.EvaluateAgent(ctx)
}

// EvaluatePolicy loads (or fakes) a value function and reports its
// success rate on the configured domain.
func EvaluatePolicy(ctx context.Context, cfg EvalPolicyConfig, logger *slog.Logger) (*eval.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var q types.QFunction
	if cfg.RandomPolicy {
		q = values.NewRandom(cfg.EvalConfig.Seed)
	} else {
		f, err := os.Open(cfg.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("opening model: %w", err)
		}
		defer f.Close()
		q, err = values.LoadLinear(f)
		if err != nil {
			return nil, err
		}
	}

	client := env.NewClient(cfg.EnvironmentURL, cfg.Domain)
	res, err := eval.Evaluate(ctx, client, q, cfg.EvalConfig, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("evaluation results",
		"success_rate", res.SuccessRate,
		"max_solution_length", res.MaxSolutionLength,
		"solved", len(res.Successes),
		"unsolved", len(res.Failures))
	return res, nil
}
