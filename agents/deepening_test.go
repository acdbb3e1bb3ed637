package agents

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"solveragent/types"
)

// chainEnv is a deterministic environment: s0 -> s1 -> ... -> sN, with
// the reward at sN. Optionally each state also branches into a dead end.
type chainEnv struct {
	depth        int
	deadEnds     bool
	generated    int
	budgetAfter  int // fail GenerateNew with budget error after this many problems, 0 = never
	stepsPerform int
}

func (c *chainEnv) GenerateNew(ctx context.Context, seed int64) (*types.State, error) {
	if c.budgetAfter > 0 && c.generated >= c.budgetAfter {
		return nil, types.ErrBudgetExhausted
	}
	c.generated++
	return types.NewState([]string{"s0"}, []string{"reach the end"}, 0), nil
}

func (c *chainEnv) Step(ctx context.Context, states []*types.State) ([]types.StepResult, error) {
	c.stepsPerform += len(states)
	out := make([]types.StepResult, len(states))
	for i, s := range states {
		cur := s.Current()
		if strings.HasPrefix(cur, "dead") {
			out[i] = types.StepResult{}
			continue
		}
		n, _ := strconv.Atoi(strings.TrimPrefix(cur, "s"))
		if n == c.depth {
			s.Value = 1
			out[i] = types.StepResult{Reward: 1}
			continue
		}
		next := types.NewState(s.Extend(fmt.Sprintf("s%d", n+1)), s.Goals, 0)
		actions := []*types.Action{types.NewAction(s, "advance", next, 0)}
		if c.deadEnds {
			dead := types.NewState(s.Extend(fmt.Sprintf("dead%d", n)), s.Goals, 0)
			actions = append(actions, types.NewAction(s, "stray", dead, 0))
		}
		out[i] = types.StepResult{Actions: actions}
	}
	return out, nil
}

type fixedQ struct{ v float64 }

func (f fixedQ) Name() string { return "fixed" }

func (f fixedQ) AggregationTransform() func(float64) float64 { return types.LogTransform }

func (f fixedQ) Score(ctx context.Context, actions []*types.Action) ([]float64, error) {
	out := make([]float64, len(actions))
	for i := range out {
		out[i] = f.v
	}
	return out, nil
}

func posRewards(d *BeamSearchIterativeDeepening) []float64 {
	out := make([]float64, 0)
	for _, ex := range d.bufferPos.Items() {
		out = append(out, ex.reward)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

func TestBeamSearchCreditDecay(t *testing.T) {
	env := &chainEnv{depth: 3}
	d := NewBeamSearchIterativeDeepening(fixedQ{0.5}, DeepeningConfig{
		InitialDepth: 5,
		BeamSize:     1,
		RewardDecay:  0.5,
	}, nil, nil)

	root, err := env.GenerateNew(context.Background(), types.NoSeed)
	require.NoError(t, err)
	solved, err := d.beamSearch(context.Background(), env, root)
	require.NoError(t, err)
	require.True(t, solved)

	// edges nearest-to-farthest from the terminal
	require.Equal(t, []float64{1.0, 0.5, 0.25}, posRewards(d))
	require.Zero(t, d.bufferNeg.Len())
}

func TestBeamSearchSuccessAction(t *testing.T) {
	env := &chainEnv{depth: 3}
	d := NewBeamSearchIterativeDeepening(fixedQ{0.5}, DeepeningConfig{
		InitialDepth:     5,
		BeamSize:         1,
		RewardDecay:      0.5,
		AddSuccessAction: true,
	}, nil, nil)

	root, _ := env.GenerateNew(context.Background(), types.NoSeed)
	solved, err := d.beamSearch(context.Background(), env, root)
	require.NoError(t, err)
	require.True(t, solved)

	// one extra edge: the explicit success transition
	require.Equal(t, []float64{1.0, 0.5, 0.25, 0.125}, posRewards(d))
}

func TestBeamSearchHarvestsDeadEnds(t *testing.T) {
	env := &chainEnv{depth: 3, deadEnds: true}
	d := NewBeamSearchIterativeDeepening(fixedQ{0.5}, DeepeningConfig{
		InitialDepth: 5,
		BeamSize:     2,
		RewardDecay:  1.0,
	}, nil, nil)

	root, _ := env.GenerateNew(context.Background(), types.NoSeed)
	solved, err := d.beamSearch(context.Background(), env, root)
	require.NoError(t, err)
	require.True(t, solved)

	// off-path edges carry zero reward
	require.NotZero(t, d.bufferNeg.Len())
	for _, ex := range d.bufferNeg.Items() {
		require.Zero(t, ex.reward)
	}
	// on-path edges keep reward 1 with no decay
	for _, r := range posRewards(d) {
		require.Equal(t, 1.0, r)
	}
}

func TestBeamSearchUnsolvedDiscarded(t *testing.T) {
	env := &chainEnv{depth: 50}
	d := NewBeamSearchIterativeDeepening(fixedQ{0.5}, DeepeningConfig{
		InitialDepth:    2,
		BeamSize:        1,
		DiscardUnsolved: true,
	}, nil, nil)

	root, _ := env.GenerateNew(context.Background(), types.NoSeed)
	solved, err := d.beamSearch(context.Background(), env, root)
	require.NoError(t, err)
	require.False(t, solved)
	require.Zero(t, d.bufferPos.Len()+d.bufferNeg.Len())
}

func TestLearnFromEnvironmentPropagatesBudget(t *testing.T) {
	env := &chainEnv{depth: 3, budgetAfter: 2}
	d := NewBeamSearchIterativeDeepening(fixedQ{0.5}, DeepeningConfig{
		InitialDepth: 5,
		BeamSize:     1,
	}, nil, nil)

	err := d.LearnFromEnvironment(context.Background(), env)
	require.ErrorIs(t, err, types.ErrBudgetExhausted)
	require.Equal(t, 2, d.trainingProblemsSolved)
}

func TestDeepeningCurriculum(t *testing.T) {
	env := &chainEnv{depth: 3, budgetAfter: 4}
	d := NewBeamSearchIterativeDeepening(fixedQ{0.5}, DeepeningConfig{
		InitialDepth: 5,
		DepthStep:    2,
		StepEvery:    2,
		MaxDepth:     8,
		BeamSize:     1,
	}, nil, nil)

	err := d.LearnFromEnvironment(context.Background(), env)
	require.ErrorIs(t, err, types.ErrBudgetExhausted)
	// depth increased after problems 2 and 4
	require.Equal(t, 8, d.currentDepth)
}

func TestDeepeningNames(t *testing.T) {
	mk := func(cfg DeepeningConfig) string {
		return NewBeamSearchIterativeDeepening(fixedQ{0.5}, cfg, nil, nil).Name()
	}
	require.Equal(t, "ImitationLearning", mk(DeepeningConfig{FullImitation: true}))
	require.Equal(t, "DAgger", mk(DeepeningConfig{}))
	require.Equal(t, "CDAgger", mk(DeepeningConfig{BalanceExamples: true}))
	require.Equal(t, "IDDagger", mk(DeepeningConfig{DepthStep: 1}))
	require.Equal(t, "IDCDagger", mk(DeepeningConfig{DepthStep: 1, BalanceExamples: true}))
}
