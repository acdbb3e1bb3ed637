package agents

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"solveragent/search"
	"solveragent/types"
)

// DeepeningConfig configures the iterative-deepening beam planner.
type DeepeningConfig struct {
	ReplayBufferSize int `yaml:"replay_buffer_size" json:"replay_buffer_size"`

	// Curriculum: search depth starts at InitialDepth and grows by
	// DepthStep every StepEvery problems, capped at MaxDepth.
	InitialDepth int `yaml:"initial_depth" json:"initial_depth"`
	DepthStep    int `yaml:"depth_step" json:"depth_step"`
	StepEvery    int `yaml:"step_every" json:"step_every"`
	MaxDepth     int `yaml:"max_depth" json:"max_depth"`

	BeamSize int `yaml:"beam_size" json:"beam_size"`

	BalanceExamples bool    `yaml:"balance_examples" json:"balance_examples"`
	OptimizeOn      string  `yaml:"optimize_on" json:"optimize_on"` // "problem" or "solution"
	RewardDecay     float64 `yaml:"reward_decay" json:"reward_decay"`
	BatchSize       int     `yaml:"batch_size" json:"batch_size"`
	OptimizeEvery   int     `yaml:"optimize_every" json:"optimize_every"`
	NGradientSteps  int     `yaml:"n_gradient_steps" json:"n_gradient_steps"`

	DiscardUnsolved  bool `yaml:"discard_unsolved" json:"discard_unsolved"`
	AddSuccessAction bool `yaml:"add_success_action" json:"add_success_action"`
	FullImitation    bool `yaml:"full_imitation_learning" json:"full_imitation_learning"`

	Seed int64 `yaml:"seed" json:"seed"`
}

func (c *DeepeningConfig) applyDefaults() {
	if c.ReplayBufferSize == 0 {
		c.ReplayBufferSize = 10000
	}
	if c.InitialDepth == 0 {
		c.InitialDepth = 1
	}
	if c.StepEvery == 0 {
		c.StepEvery = 100
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 30
	}
	if c.BeamSize == 0 {
		c.BeamSize = 1
	}
	if c.OptimizeOn == "" {
		c.OptimizeOn = "problem"
	}
	if c.RewardDecay == 0 {
		c.RewardDecay = 1.0
	}
	if c.BatchSize == 0 {
		c.BatchSize = 64
	}
	if c.OptimizeEvery == 0 {
		c.OptimizeEvery = 1
	}
	if c.NGradientSteps == 0 {
		c.NGradientSteps = 10
	}
}

// replayExample is one harvested edge: the reached state, the edge that
// reached it and the decayed reward attributed to the edge.
type replayExample struct {
	state  *types.State
	action *types.Action
	reward float64
}

// BeamSearchIterativeDeepening runs full-tree beam searches against
// each training problem, harvests every traversed edge into
// class-bucketed replay buffers and trains the value function with
// binary cross-entropy on decayed solution rewards.
type BeamSearchIterativeDeepening struct {
	q         types.QFunction
	trainable types.TrainableQFunction
	cfg       DeepeningConfig

	bufferPos *types.ReplayBuffer[replayExample]
	bufferNeg *types.ReplayBuffer[replayExample]

	currentDepth           int
	trainingProblemsSolved int

	rand    *rand.Rand
	metrics types.MetricsSink
	logger  *slog.Logger
}

var _ LearningAgent = (*BeamSearchIterativeDeepening)(nil)

func NewBeamSearchIterativeDeepening(q types.QFunction, cfg DeepeningConfig, metrics types.MetricsSink, logger *slog.Logger) *BeamSearchIterativeDeepening {
	cfg.applyDefaults()
	if metrics == nil {
		metrics = types.NoopSink()
	}
	if logger == nil {
		logger = slog.Default()
	}
	trainable, _ := q.(types.TrainableQFunction)
	return &BeamSearchIterativeDeepening{
		q:            q,
		trainable:    trainable,
		cfg:          cfg,
		bufferPos:    types.NewReplayBuffer[replayExample](cfg.ReplayBufferSize),
		bufferNeg:    types.NewReplayBuffer[replayExample](cfg.ReplayBufferSize),
		currentDepth: cfg.InitialDepth,
		rand:         rand.New(rand.NewSource(cfg.Seed)),
		metrics:      metrics,
		logger:       logger,
	}
}

func (d *BeamSearchIterativeDeepening) Name() string {
	switch {
	case d.cfg.FullImitation:
		return "ImitationLearning"
	case d.cfg.DepthStep == 0 && !d.cfg.BalanceExamples:
		return "DAgger"
	case d.cfg.DepthStep == 0 && d.cfg.BalanceExamples:
		return "CDAgger"
	case !d.cfg.BalanceExamples:
		return "IDDagger"
	default:
		return "IDCDagger"
	}
}

func (d *BeamSearchIterativeDeepening) QFunction() types.QFunction {
	return d.q
}

func (d *BeamSearchIterativeDeepening) Stats() string {
	return fmt.Sprintf("replay buffer size = %d, %d positive",
		d.bufferPos.Len()+d.bufferNeg.Len(), d.bufferPos.Len())
}

func (d *BeamSearchIterativeDeepening) LearnFromEnvironment(ctx context.Context, env types.Environment) error {
	d.currentDepth = d.cfg.InitialDepth

	for i := 0; ; i++ {
		problem, err := env.GenerateNew(ctx, types.NoSeed)
		if err != nil {
			return err
		}

		solved, err := d.beamSearch(ctx, env, problem)
		if err != nil {
			return err
		}
		if solved {
			d.trainingProblemsSolved++
		}

		if (d.cfg.OptimizeOn == "problem" && (i+1)%d.cfg.OptimizeEvery == 0) ||
			(d.cfg.OptimizeOn == "solution" && solved && d.trainingProblemsSolved%d.cfg.OptimizeEvery == 0) {
			d.logger.Debug("running gradient steps", "agent", d.Name())
			if err := d.gradientSteps(false); err != nil {
				return err
			}
		}

		if (i+1)%d.cfg.StepEvery == 0 {
			d.currentDepth = minInt(d.cfg.MaxDepth, d.currentDepth+d.cfg.DepthStep)
			d.logger.Info("beam search depth increased", "depth", d.currentDepth)
		}
	}
}

func (d *BeamSearchIterativeDeepening) LearnFromExperience() error {
	if d.cfg.FullImitation {
		d.logger.Info("running imitation learning pass")
		return d.gradientSteps(true)
	}
	return nil
}

// beamSearch explores up to currentDepth rounds and records every
// traversed edge in an arena. When a solution turns up, rewards are
// decayed backward along the winning path; every other edge keeps
// reward 0. All edges land in the replay buffers, bucketed by sign.
func (d *BeamSearchIterativeDeepening) beamSearch(ctx context.Context, env types.Environment, root *types.State) (bool, error) {
	ar := search.NewArena()
	ar.AddState(root)

	beam := []*types.State{root}
	seen := map[string]bool{root.Hash(): true}
	transform := d.q.AggregationTransform()

	solutionID := -1
	actionReward := make(map[int]float64)

	for i := 0; i < d.currentDepth; i++ {
		results, err := env.Step(ctx, beam)
		if err != nil {
			return false, err
		}

		for si, r := range results {
			s := beam[si]
			sid := ar.AddState(s)
			for _, a := range r.Actions {
				nsID := ar.AddState(a.NextState)
				aID := ar.AddAction(a)
				ar.SetParent(nsID, sid, aID)
			}
			if r.Reward > 0 && solutionID < 0 {
				if d.cfg.AddSuccessAction {
					succ := types.SuccessState()
					sa := types.NewAction(s, "success", succ, 1.0)
					sa.Value = 1.0
					succID := ar.AddState(succ)
					aID := ar.AddAction(sa)
					ar.SetParent(succID, sid, aID)
					solutionID = succID
				} else {
					solutionID = sid
				}
			}
		}

		if solutionID >= 0 {
			cur := solutionID
			reward := 1.0
			for {
				edge, ok := ar.Parent(cur)
				if !ok {
					break
				}
				actionReward[edge.Action] = reward
				reward *= d.cfg.RewardDecay
				cur = edge.ParentState
			}
			break
		}

		actions := make([]*types.Action, 0)
		for _, r := range results {
			actions = append(actions, r.Actions...)
		}
		if len(actions) == 0 {
			break
		}

		scores, err := d.q.Score(ctx, actions)
		if err != nil {
			return false, err
		}

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
		sort.SliceStable(candidates, func(x, y int) bool {
			return candidates[x].Value > candidates[y].Value
		})
		if len(candidates) > d.cfg.BeamSize {
			candidates = candidates[:d.cfg.BeamSize]
		}
		beam = candidates
		for _, s := range beam {
			seen[s.Hash()] = true
		}
	}

	if solutionID >= 0 || !d.cfg.DiscardUnsolved {
		for stateID, edge := range ar.Edges() {
			r := actionReward[edge.Action]
			ex := replayExample{
				state:  ar.State(stateID),
				action: ar.Action(edge.Action),
				reward: r,
			}
			if r > 0 {
				d.bufferPos.Append(ex)
			} else {
				d.bufferNeg.Append(ex)
			}
		}
	}

	return solutionID >= 0, nil
}

func (d *BeamSearchIterativeDeepening) gradientSteps(lastRound bool) error {
	if d.trainable == nil {
		return nil
	}
	if d.cfg.FullImitation && !lastRound {
		return nil
	}

	var examples []replayExample
	if d.cfg.BalanceExamples {
		nEach := minInt(d.bufferPos.Len(), d.bufferNeg.Len())
		examples = append(d.bufferPos.Sample(nEach, d.rand.Intn),
			d.bufferNeg.Sample(nEach, d.rand.Intn)...)
	} else {
		examples = append(d.bufferPos.Items(), d.bufferNeg.Items()...)
	}

	batchSize := minInt(d.cfg.BatchSize, len(examples))
	if batchSize == 0 {
		return nil
	}
	d.logger.Debug("training", "gradient_steps", d.cfg.NGradientSteps,
		"examples", len(examples), "balanced", d.cfg.BalanceExamples)

	for i := 0; i < d.cfg.NGradientSteps; i++ {
		batch := make([]types.Example, batchSize)
		for j, k := range d.rand.Perm(len(examples))[:batchSize] {
			batch[j] = types.Example{Action: examples[k].action, Target: examples[k].reward}
		}
		loss, err := d.trainable.GradientStep(batch, types.LossBCE)
		if err != nil {
			return fmt.Errorf("gradient step: %w", err)
		}
		d.metrics.Observe(map[string]float64{"train_loss": loss})
	}
	return nil
}
