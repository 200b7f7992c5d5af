package nfa

import "github.com/noodleword/noodle/bitset"

// Optimize performs the two-step optimization pass from spec.md §4.4:
// it computes the transitive closure of every state's epsilon set
// (Warshall-style fixed point), then merges redundant epsilon-only
// states — states with no character transition whose closure is
// identical to an earlier state's closure minus itself. State 0 and the
// final accept state are never merged away.
func Optimize(expr *Expression) {
	closeEpsilon(expr)
	mergeRedundantStates(expr)
}

// closeEpsilon computes epsilon[i] ← epsilon[i] ∪ {i} then
// repeatedly epsilon[i] ← ⋃_{j∈epsilon[i]} epsilon[j] until no set grows
// any further. O(states⁴) worst case, acceptable at Noodle's scale.
func closeEpsilon(expr *Expression) {
	n := len(expr.States)
	for i := 0; i < n; i++ {
		expr.States[i].Epsilon.Insert(i)
	}

	for {
		changed := false
		for i := 0; i < n; i++ {
			before := bitset.NewSet1D(n)
			before.CopyFrom(&expr.States[i].Epsilon)

			it := expr.States[i].Epsilon.Ones()
			var toUnion []int
			for {
				j, ok := it.Next()
				if !ok {
					break
				}
				toUnion = append(toUnion, j)
			}
			for _, j := range toUnion {
				other := expr.States[j].Epsilon
				expr.States[i].Epsilon.UnionWith(&other)
			}

			if !expr.States[i].Epsilon.Equal(&before) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// mergeRedundantStates removes epsilon-only states that have become
// behaviorally identical to an earlier state once self-membership is
// discounted, and renumbers every remaining state reference.
func mergeRedundantStates(expr *Expression) {
	n := len(expr.States)
	if n == 0 {
		return
	}
	accept := StateID(n - 1)

	// redirect[j] = the surviving state j's references should resolve to.
	redirect := make([]StateID, n)
	for i := range redirect {
		redirect[i] = StateID(i)
	}

	for j := 1; j < n-1; j++ { // never merge state 0 or the accept state
		if !expr.States[j].IsEpsilonOnly() {
			continue
		}
		for i := 0; i < j; i++ {
			if redirect[i] != StateID(i) {
				continue // i was itself merged away; only merge into survivors
			}
			if !expr.States[i].IsEpsilonOnly() {
				continue
			}
			withoutSelf := bitset.NewSet1D(n)
			withoutSelf.CopyFrom(&expr.States[i].Epsilon)
			withoutSelf.Remove(i)
			if expr.States[j].Epsilon.Equal(&withoutSelf) {
				redirect[j] = StateID(i)
				break
			}
		}
	}

	hasMerge := false
	for i, r := range redirect {
		if int(r) != i {
			hasMerge = true
			break
		}
	}
	if !hasMerge {
		return
	}

	// Resolve redirect chains and compute the new, compacted index for
	// every surviving state, preserving relative order.
	resolve := func(id StateID) StateID {
		for redirect[id] != id {
			id = redirect[id]
		}
		return id
	}
	newIndex := make([]StateID, n)
	next := StateID(0)
	for i := 0; i < n; i++ {
		if resolve(StateID(i)) == StateID(i) {
			newIndex[i] = next
			next++
		}
	}
	remap := func(id StateID) StateID {
		return newIndex[resolve(id)]
	}

	newStates := make([]State, 0, next)
	for i := 0; i < n; i++ {
		if resolve(StateID(i)) != StateID(i) {
			continue
		}
		s := expr.States[i]
		var nextID StateID
		if !s.IsEpsilonOnly() {
			nextID = remap(s.Next)
		}
		set := bitset.NewSet1D(int(next))
		it := s.Epsilon.Ones()
		for {
			j, ok := it.Next()
			if !ok {
				break
			}
			set.Insert(int(remap(StateID(j))))
		}
		newStates = append(newStates, State{Class: s.Class, Next: nextID, Epsilon: set})
	}

	expr.States = newStates
	_ = accept // accept's new index is newIndex[n-1]; it remains the final element by construction.
}
