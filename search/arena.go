package search

import "solveragent/types"

// Arena is an indexed store for the states and actions touched during
// one search. Parent edges are keyed by stable integer ids instead of
// pointer identity, which keeps the bookkeeping serializable and easy
// to assert on in tests.
type Arena struct {
	states  []*types.State
	actions []*types.Action

	stateIDs map[*types.State]int

	// parent edge per state id: the state id and action id we came from
	parents map[int]Edge
}

// Edge records how a state was reached.
type Edge struct {
	ParentState int
	Action      int
}

func NewArena() *Arena {
	return &Arena{
		states:   make([]*types.State, 0),
		actions:  make([]*types.Action, 0),
		stateIDs: make(map[*types.State]int),
		parents:  make(map[int]Edge),
	}
}

// AddState interns the state and returns its id. Adding the same state
// twice returns the existing id.
func (ar *Arena) AddState(s *types.State) int {
	if id, ok := ar.stateIDs[s]; ok {
		return id
	}
	id := len(ar.states)
	ar.states = append(ar.states, s)
	ar.stateIDs[s] = id
	return id
}

// AddAction stores the action and returns its id.
func (ar *Arena) AddAction(a *types.Action) int {
	id := len(ar.actions)
	ar.actions = append(ar.actions, a)
	return id
}

// SetParent records the edge through which the state was first reached.
// Later arrivals at the same state keep the original edge.
func (ar *Arena) SetParent(stateID, parentStateID, actionID int) {
	if _, ok := ar.parents[stateID]; ok {
		return
	}
	ar.parents[stateID] = Edge{ParentState: parentStateID, Action: actionID}
}

func (ar *Arena) Parent(stateID int) (Edge, bool) {
	e, ok := ar.parents[stateID]
	return e, ok
}

func (ar *Arena) State(id int) *types.State {
	return ar.states[id]
}

func (ar *Arena) Action(id int) *types.Action {
	return ar.actions[id]
}

func (ar *Arena) NumStates() int {
	return len(ar.states)
}

// Edges returns every recorded parent edge, keyed by the reached state id.
func (ar *Arena) Edges() map[int]Edge {
	out := make(map[int]Edge, len(ar.parents))
	for k, v := range ar.parents {
		out[k] = v
	}
	return out
}
