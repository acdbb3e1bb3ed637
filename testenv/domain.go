// Package testenv serves the environment HTTP contract over a closed
// set of built-in symbolic domains. It stands in for an external
// environment server during tests and local batch runs.
package testenv

import "math/rand"

// Move is one legal step out of a state: a human-readable action label
// and the fact it appends.
type Move struct {
	Action string
	State  string
}

// Domain generates problem instances and expands state descriptions.
// Implementations must be deterministic given the seed and the current
// description.
type Domain interface {
	Name() string
	// Generate returns the initial facts and goals of a fresh problem.
	Generate(r *rand.Rand) (facts []string, goals []string)
	// Expand reports whether the description satisfies the goals and
	// lists the legal moves out of it.
	Expand(current string, goals []string) (success bool, moves []Move)
}
