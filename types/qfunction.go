package types

import (
	"context"
	"io"
	"math"
)

// QFunction estimates the expected reward of taking an action. The
// whole search round is scored with one batched call.
type QFunction interface {
	// Score returns one value per action. The batch may mix actions from
	// different source states. An empty batch returns an empty result.
	// Pure with respect to search state.
	Score(ctx context.Context, actions []*Action) ([]float64, error)

	// AggregationTransform maps a raw score into the additive domain
	// used to compose path values during beam search. Scorers that
	// return probabilities use log; scorers that already produce
	// additive values return the identity.
	AggregationTransform() func(float64) float64

	Name() string
}

// LogTransform is the default aggregation transform for probability
// scorers. Scores are clamped away from zero so a single hopeless
// action cannot poison a path with -Inf.
func LogTransform(v float64) float64 {
	return math.Log(math.Max(v, 1e-9))
}

// IdentityTransform for scorers whose outputs already compose additively.
func IdentityTransform(v float64) float64 {
	return v
}

// Loss selects the training objective for a gradient step.
type Loss int

const (
	// Binary cross-entropy between predicted score and a {0,1}-ish label.
	LossBCE Loss = iota
	// Squared TD-error.
	LossMSE
)

// Example is one labeled transition drawn from a replay buffer.
type Example struct {
	Action *Action
	Target float64
}

// TrainableQFunction is implemented by value functions that learn from
// replayed experience. The agents compute the targets; the model owns
// the parameter update.
type TrainableQFunction interface {
	QFunction

	// GradientStep performs one optimization step on the batch and
	// returns the batch loss.
	GradientStep(batch []Example, loss Loss) (float64, error)

	// Checkpoint serializes the parameters.
	Checkpoint(w io.Writer) error
}
