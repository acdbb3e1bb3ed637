package eval_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"solveragent/env"
	"solveragent/eval"
	"solveragent/testenv"
	"solveragent/types"
	"solveragent/values"
)

func newCountdownEnv(t *testing.T) *env.Client {
	t.Helper()
	srv := httptest.NewServer(testenv.NewServer().Handler())
	t.Cleanup(srv.Close)
	return env.NewClient(srv.URL, "countdown")
}

func facts(states []*types.State) [][]string {
	out := make([][]string, len(states))
	for i, s := range states {
		out[i] = s.Facts
	}
	return out
}

// The evaluation problem set is seeded, so two passes with identically
// seeded scorers must succeed and fail on exactly the same problems.
func TestEvaluateDeterministicPartition(t *testing.T) {
	e := newCountdownEnv(t)
	cfg := eval.Config{Seed: 100, NProblems: 8, MaxSteps: 6}

	run := func() *eval.Result {
		q, err := values.New(values.Config{Type: "random", Seed: 9})
		require.NoError(t, err)
		res, err := eval.Evaluate(context.Background(), e, q, cfg, nil)
		require.NoError(t, err)
		return res
	}

	first, second := run(), run()
	require.Equal(t, first.SuccessRate, second.SuccessRate)
	require.Equal(t, facts(first.Successes), facts(second.Successes))
	require.Equal(t, facts(first.Failures), facts(second.Failures))
}

func TestEvaluateAccounting(t *testing.T) {
	e := newCountdownEnv(t)
	q, err := values.New(values.Config{Type: "random", Seed: 3})
	require.NoError(t, err)

	cfg := eval.Config{Seed: 50, NProblems: 10, MaxSteps: 8, BeamSize: 2}
	res, err := eval.Evaluate(context.Background(), e, q, cfg, nil)
	require.NoError(t, err)

	require.Len(t, res.Successes, int(res.SuccessRate*float64(cfg.NProblems)+0.5))
	require.Equal(t, cfg.NProblems, len(res.Successes)+len(res.Failures))
	require.LessOrEqual(t, res.MaxSolutionLength, cfg.MaxSteps)
}

func TestEvaluateGenerousBudgetSolvesAll(t *testing.T) {
	e := newCountdownEnv(t)
	q, err := values.New(values.Config{Type: "action"})
	require.NoError(t, err)

	res, err := eval.Evaluate(context.Background(), e, q, eval.Config{Seed: 1, NProblems: 5, MaxSteps: 25}, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, res.SuccessRate)
	require.Greater(t, res.MaxSolutionLength, 0)
}
