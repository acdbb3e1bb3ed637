package types

import (
	"fmt"
	"strings"
)

// State is a node in the search space. Facts accumulate the world
// knowledge derived so far; the last fact is the current description.
// Two states with the same fact sequence are the same state.
type State struct {
	Facts []string
	Goals []string

	// Cumulative path score from the root, in the additive domain of the
	// value function's aggregation transform. Overwritten with the
	// observed reward when the state is stepped through the environment:
	// a strictly positive value on a stepped state marks it as solved.
	Value float64

	// Back-reference to the action that produced this state. Nil for
	// roots. Set exactly once, at creation.
	ParentAction *Action
}

func NewState(facts []string, goals []string, value float64) *State {
	return &State{
		Facts: facts,
		Goals: goals,
		Value: value,
	}
}

// SuccessState returns the distinguished terminal sentinel used for
// reward accounting when a search records an explicit success edge.
func SuccessState() *State {
	return &State{Facts: []string{"success"}, Goals: []string{}, Value: 1.0}
}

// Hash identifies the state by its fact sequence.
// Deduplication during search is keyed on this.
func (s *State) Hash() string {
	return strings.Join(s.Facts, "\n")
}

// Current returns the latest fact.
func (s *State) Current() string {
	if len(s.Facts) == 0 {
		return ""
	}
	return s.Facts[len(s.Facts)-1]
}

// Extend returns a new fact sequence with one more fact appended.
// The receiver's facts are never mutated.
func (s *State) Extend(fact string) []string {
	facts := make([]string, len(s.Facts)+1)
	copy(facts, s.Facts)
	facts[len(s.Facts)] = fact
	return facts
}

func (s *State) String() string {
	return fmt.Sprintf("State(%s)", s.Current())
}

// Action is a directed edge between a source state and the state it
// produces. The action is the only creator of its NextState; the state
// points back through ParentAction.
type Action struct {
	State     *State
	Name      string
	NextState *State

	// Success flag observed by the environment for NextState.
	Reward float64

	// Raw score assigned by the value function during search.
	Value float64
}

// NewAction wires both directions of the edge.
func NewAction(source *State, name string, next *State, reward float64) *Action {
	a := &Action{
		State:     source,
		Name:      name,
		NextState: next,
		Reward:    reward,
	}
	next.ParentAction = a
	return a
}

func (a *Action) String() string {
	return fmt.Sprintf("Action(%s)", a.Name)
}
