package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"solveragent/types"
	"solveragent/values"
)

func TestSampleSoftmaxEmpty(t *testing.T) {
	ql := NewQLearning(fixedQ{0.5}, QLearningConfig{}, nil, nil)
	_, ok := ql.sampleSoftmax(nil)
	require.False(t, ok)
}

func TestSampleSoftmaxPrefersHighScores(t *testing.T) {
	ql := NewQLearning(fixedQ{0.5}, QLearningConfig{SoftmaxAlpha: 50, Seed: 1}, nil, nil)
	for i := 0; i < 20; i++ {
		idx, ok := ql.sampleSoftmax([]float64{0.1, 0.99, 0.2})
		require.True(t, ok)
		require.Equal(t, 1, idx)
	}
}

func TestSampleSoftmaxUniform(t *testing.T) {
	ql := NewQLearning(fixedQ{0.5}, QLearningConfig{SoftmaxAlpha: 1, Seed: 7}, nil, nil)
	counts := make(map[int]int)
	for i := 0; i < 300; i++ {
		idx, ok := ql.sampleSoftmax([]float64{0.5, 0.5, 0.5})
		require.True(t, ok)
		counts[idx]++
	}
	for i := 0; i < 3; i++ {
		require.Greater(t, counts[i], 0, "index %d never sampled", i)
	}
}

func TestQLearningRecordsTransitions(t *testing.T) {
	env := &chainEnv{depth: 3, budgetAfter: 1}
	ql := NewQLearning(fixedQ{0.5}, QLearningConfig{MaxDepth: 10, Seed: 1}, nil, nil)

	err := ql.LearnFromEnvironment(context.Background(), env)
	require.ErrorIs(t, err, types.ErrBudgetExhausted)

	// the chain has a single action per state, so the sampled walk is
	// s0 -> s1 -> s2 -> s3: three transitions, the last one rewarded
	require.Equal(t, 3, ql.buffer.Len())
	require.Equal(t, 1, ql.solutionsFound)

	items := ql.buffer.Items()
	require.Equal(t, 1.0, items[len(items)-1].reward)
	for _, tr := range items[:len(items)-1] {
		require.Zero(t, tr.reward)
	}
}

func TestQLearningTrainsTowardReward(t *testing.T) {
	env := &chainEnv{depth: 2, budgetAfter: 20}
	q, err := values.New(values.Config{Type: "action", LearningRate: 0.5, Seed: 1})
	require.NoError(t, err)
	ql := NewQLearning(q, QLearningConfig{MaxDepth: 5, Seed: 1, DiscountFactor: 0.9}, nil, nil)

	err = ql.LearnFromEnvironment(context.Background(), env)
	require.ErrorIs(t, err, types.ErrBudgetExhausted)
	require.Equal(t, 20, ql.solutionsFound)

	// after repeated rewarded walks the scored value of the rewarded
	// edge should have moved well above the untrained 0.5 baseline
	src := types.NewState([]string{"s0", "s1"}, []string{"reach the end"}, 0)
	next := types.NewState([]string{"s0", "s1", "s2"}, src.Goals, 0)
	scores, err := q.Score(context.Background(), []*types.Action{types.NewAction(src, "advance", next, 0)})
	require.NoError(t, err)
	require.Greater(t, scores[0], 0.6)
}

func TestQLearningSkipsTrivialProblems(t *testing.T) {
	env := &chainEnv{depth: 0, budgetAfter: 3}
	ql := NewQLearning(fixedQ{0.5}, QLearningConfig{MaxDepth: 10, Seed: 1}, nil, nil)

	err := ql.LearnFromEnvironment(context.Background(), env)
	require.ErrorIs(t, err, types.ErrBudgetExhausted)
	require.Zero(t, ql.buffer.Len())
	require.Zero(t, ql.solutionsFound)
}
