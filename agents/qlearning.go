package agents

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	mathrand "math/rand"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"

	"solveragent/types"
)

// QLearningConfig configures the one-step off-policy agent.
type QLearningConfig struct {
	ReplayBufferSize int     `yaml:"replay_buffer_size" json:"replay_buffer_size"`
	MaxDepth         int     `yaml:"max_depth" json:"max_depth"`
	DiscountFactor   float64 `yaml:"discount_factor" json:"discount_factor"`
	BatchSize        int     `yaml:"batch_size" json:"batch_size"`
	SoftmaxAlpha     float64 `yaml:"softmax_alpha" json:"softmax_alpha"`
	Seed             int64   `yaml:"seed" json:"seed"`
}

func (c *QLearningConfig) applyDefaults() {
	if c.ReplayBufferSize == 0 {
		c.ReplayBufferSize = 10000
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 30
	}
	if c.DiscountFactor == 0 {
		c.DiscountFactor = 1.0
	}
	if c.BatchSize == 0 {
		c.BatchSize = 64
	}
	if c.SoftmaxAlpha == 0 {
		c.SoftmaxAlpha = 1.0
	}
}

// transition is one replayed experience tuple. The taken action already
// carries its source and resulting state, so only the observed reward
// and the next state's candidate actions need storing; the TD target is
// computed lazily at training time.
type transition struct {
	action      *types.Action
	reward      float64
	nextActions []*types.Action
}

// QLearning walks one stochastic path per problem, sampling actions
// from a temperature-scaled softmax over current Q-values, and trains
// one batch after every single transition.
type QLearning struct {
	q         types.QFunction
	trainable types.TrainableQFunction
	cfg       QLearningConfig

	buffer         *types.ReplayBuffer[transition]
	solutionsFound int

	src     rand.Source
	rand    *mathrand.Rand
	metrics types.MetricsSink
	logger  *slog.Logger
}

var _ LearningAgent = (*QLearning)(nil)

func NewQLearning(q types.QFunction, cfg QLearningConfig, metrics types.MetricsSink, logger *slog.Logger) *QLearning {
	cfg.applyDefaults()
	if metrics == nil {
		metrics = types.NoopSink()
	}
	if logger == nil {
		logger = slog.Default()
	}
	trainable, _ := q.(types.TrainableQFunction)
	return &QLearning{
		q:         q,
		trainable: trainable,
		cfg:       cfg,
		buffer:    types.NewReplayBuffer[transition](cfg.ReplayBufferSize),
		src:       rand.NewSource(uint64(cfg.Seed)),
		rand:      mathrand.New(mathrand.NewSource(cfg.Seed)),
		metrics:   metrics,
		logger:    logger,
	}
}

func (ql *QLearning) Name() string { return "QLearning" }

func (ql *QLearning) QFunction() types.QFunction { return ql.q }

func (ql *QLearning) Stats() string {
	return fmt.Sprintf("replay buffer size = %d, %d solutions found",
		ql.buffer.Len(), ql.solutionsFound)
}

func (ql *QLearning) LearnFromEnvironment(ctx context.Context, env types.Environment) error {
	for {
		state, err := env.GenerateNew(ctx, types.NoSeed)
		if err != nil {
			return err
		}
		results, err := env.Step(ctx, []*types.State{state})
		if err != nil {
			return err
		}
		reward, actions := results[0].Reward, results[0].Actions
		if reward > 0 {
			// trivial problem, already solved: nothing to learn from
			continue
		}

		for j := 0; j < ql.cfg.MaxDepth; j++ {
			if len(actions) == 0 {
				break
			}
			scores, err := ql.q.Score(ctx, actions)
			if err != nil {
				return err
			}
			idx, ok := ql.sampleSoftmax(scores)
			if !ok {
				break
			}
			taken := actions[idx]

			next, err := env.Step(ctx, []*types.State{taken.NextState})
			if err != nil {
				return err
			}
			reward, actions = next[0].Reward, next[0].Actions
			ql.buffer.Append(transition{
				action:      taken,
				reward:      reward,
				nextActions: actions,
			})
			if err := ql.gradientStep(ctx); err != nil {
				return err
			}
			if reward > 0 {
				ql.solutionsFound++
				break
			}
		}
	}
}

// LearnFromExperience is a no-op: Q-learning trains after every step.
func (ql *QLearning) LearnFromExperience() error {
	return nil
}

// sampleSoftmax draws an index from the temperature-scaled categorical
// distribution over the scores.
func (ql *QLearning) sampleSoftmax(scores []float64) (int, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	// shift by the max for numerical stability
	maxScore := floats.Max(scores)
	weights := make([]float64, len(scores))
	sum := 0.0
	for i, v := range scores {
		w := math.Exp(ql.cfg.SoftmaxAlpha * (v - maxScore))
		weights[i] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	return sampleuv.NewWeighted(weights, ql.src).Take()
}

// gradientStep samples one batch and minimizes squared TD error. The
// target for a rewarded transition is the reward itself; otherwise it
// bootstraps from the best next action under the current parameters.
func (ql *QLearning) gradientStep(ctx context.Context) error {
	if ql.trainable == nil {
		return nil
	}
	batchSize := minInt(ql.cfg.BatchSize, ql.buffer.Len())
	if batchSize == 0 {
		return nil
	}
	batch := ql.buffer.Sample(batchSize, ql.rand.Intn)

	examples := make([]types.Example, len(batch))
	for i, t := range batch {
		target := t.reward
		if t.reward <= 0 && len(t.nextActions) > 0 {
			nextScores, err := ql.q.Score(ctx, t.nextActions)
			if err != nil {
				return err
			}
			target = t.reward + ql.cfg.DiscountFactor*floats.Max(nextScores)
		}
		examples[i] = types.Example{Action: t.action, Target: target}
	}

	loss, err := ql.trainable.GradientStep(examples, types.LossMSE)
	if err != nil {
		return fmt.Errorf("gradient step: %w", err)
	}
	ql.metrics.Observe(map[string]float64{"train_loss": loss})
	return nil
}
