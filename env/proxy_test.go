package env

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"solveragent/agents"
	"solveragent/eval"
	"solveragent/results"
	"solveragent/types"
	"solveragent/values"
)

type memStore struct {
	mu      sync.Mutex
	records []results.Record
	saves   int
}

func (m *memStore) Append(_ context.Context, _ string, rec results.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Load(_ context.Context, _ string) ([]results.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]results.Record(nil), m.records...), nil
}

func (m *memStore) Save(_ context.Context, _ string, _ int, _ types.TrainableQFunction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	return nil
}

func countdownState(n string) *types.State {
	return types.NewState([]string{n}, []string{"reach 0"}, 0)
}

func TestProxyBudgetExhaustion(t *testing.T) {
	inner := newTestClient(t, "countdown")
	q, err := values.New(values.Config{Type: "random", Seed: 1})
	require.NoError(t, err)
	agent := agents.NewQLearning(q, agents.QLearningConfig{Seed: 1}, nil, nil)

	p := NewProxy("run", "countdown", agent, inner, ProxyConfig{
		EvaluateEvery: 100000,
		PrintEvery:    100000,
		MaxSteps:      3,
	}, nil, nil, nil, nil)

	for i := 0; i < 2; i++ {
		_, err := p.Step(context.Background(), []*types.State{countdownState("10")})
		require.NoError(t, err)
	}
	_, err = p.Step(context.Background(), []*types.State{countdownState("10")})
	require.ErrorIs(t, err, types.ErrBudgetExhausted)

	// once exhausted, every further call fails too
	_, err = p.Step(context.Background(), []*types.State{countdownState("10")})
	require.ErrorIs(t, err, types.ErrBudgetExhausted)
}

func TestProxyEvaluateRecordsAndCheckpoints(t *testing.T) {
	inner := newTestClient(t, "countdown")
	q, err := values.New(values.Config{Type: "action"})
	require.NoError(t, err)
	agent := agents.NewQLearning(q, agents.QLearningConfig{Seed: 1}, nil, nil)
	store := &memStore{}

	p := NewProxy("run", "countdown", agent, inner, ProxyConfig{
		EvaluateEvery: 100000,
		PrintEvery:    100000,
		MaxSteps:      100000,
		EvalConfig:    eval.Config{Seed: 1, NProblems: 3, MaxSteps: 25},
	}, store, store, nil, nil)

	require.NoError(t, p.Evaluate(context.Background()))

	require.Len(t, store.records, 1)
	rec := store.records[0]
	require.Equal(t, "QLearning", rec.Name)
	require.Equal(t, "countdown", rec.Domain)
	// countdown is always solvable within the step limit
	require.Equal(t, 1.0, rec.SuccessRate)
	require.Greater(t, rec.MaxSolutionLength, 0)
	require.Equal(t, 1, store.saves)
}

func TestEvaluateAgentEndToEnd(t *testing.T) {
	inner := newTestClient(t, "countdown")
	q, err := values.New(values.Config{Type: "action", LearningRate: 0.1})
	require.NoError(t, err)
	agent := agents.NewQLearning(q, agents.QLearningConfig{Seed: 1, MaxDepth: 25}, nil, nil)
	store := &memStore{}

	p := NewProxy("run", "countdown", agent, inner, ProxyConfig{
		EvaluateEvery: 200,
		PrintEvery:    100000,
		MaxSteps:      400,
		EvalConfig:    eval.Config{Seed: 7, NProblems: 3, MaxSteps: 25},
	}, store, store, nil, nil)

	require.NoError(t, p.EvaluateAgent(context.Background()))

	// at least the initial and the final evaluation
	require.GreaterOrEqual(t, len(store.records), 2)
	require.Equal(t, len(store.records), store.saves)
	for i := 1; i < len(store.records); i++ {
		require.GreaterOrEqual(t, store.records[i].NSteps, store.records[i-1].NSteps)
	}
}

func TestEvaluateAgentCancellation(t *testing.T) {
	inner := newTestClient(t, "countdown")
	q, err := values.New(values.Config{Type: "random", Seed: 1})
	require.NoError(t, err)
	agent := agents.NewQLearning(q, agents.QLearningConfig{Seed: 1}, nil, nil)

	p := NewProxy("run", "countdown", agent, inner, ProxyConfig{
		EvaluateEvery: 100000,
		PrintEvery:    100000,
		MaxSteps:      100000,
		EvalConfig:    eval.Config{Seed: 1, NProblems: 1, MaxSteps: 25},
	}, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.EvaluateAgent(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
