package noumenon

// RecallBySubject gathers every visible valuation of subject across every
// descendant State (same-Mind branches and child-Mind States) that traces back to
// groundState and whose vt equals vt, combining certainty as the product of
// branch certainties along the State chain, times the Belief's own branch
// certainty, times a stored Fuzzy alternative's own certainty.
// requestTraits selects trait paths to recall; nil/empty means every
// registered traittype.
func (m *Mind) RecallBySubject(groundState *State, subject *Subject, vt int64, requestTraits []string) (*Notion, error) {
	w := groundState.world

	paths := requestTraits
	if len(paths) == 0 {
		w.mu.RLock()
		paths = make([]string, 0, len(w.traittypes))
		for label := range w.traittypes {
			paths = append(paths, label)
		}
		w.mu.RUnlock()
	}

	n := &Notion{Subject: subject, Traits: map[string]Value{}}
	for _, path := range paths {
		var alts []Alternative
		collectAlternatives(groundState, subject, path, vt, 1.0, &alts)
		n.Traits[path] = FuzzyValue{F: mergeAlternatives(alts)}
	}
	return n, nil
}

// RecallByArchetype yields one Notion per Subject whose current belief,
// in any descendant State (branch or child-Mind) matching vt, satisfies the named archetype's
// closure.
func (m *Mind) RecallByArchetype(groundState *State, archetypeLabel string, vt int64, requestTraits []string) ([]*Notion, error) {
	w := groundState.world
	w.mu.RLock()
	subjects := map[SID]*Subject{}
	collectArchetypeSubjects(groundState, archetypeLabel, vt, subjects)
	w.mu.RUnlock()

	out := make([]*Notion, 0, len(subjects))
	for _, subj := range subjects {
		n, err := m.RecallBySubject(groundState, subj, vt, requestTraits)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// collectAlternatives recursively walks state's successors: same-Mind
// forks (branches, superposed alternatives) and child-Mind origins
// (dependents). Each successor's own certainty multiplies
// into the running product for everything reachable through it.
func collectAlternatives(state *State, subject *Subject, path string, targetVT int64, certainty float64, out *[]Alternative) {
	visit := func(next *State) {
		hop := certainty * next.Certainty()
		if next.VT() == targetVT {
			if b := next.GetBeliefBySubject(subject); b != nil {
				appendBeliefAlternatives(b, next, path, hop, out)
			}
		}
		collectAlternatives(next, subject, path, targetVT, hop, out)
	}
	for _, br := range state.branches {
		visit(br)
	}
	for _, dep := range state.dependents {
		if dep.Mind() != state.Mind() {
			visit(dep)
		}
	}
}

func appendBeliefAlternatives(b *Belief, state *State, path string, certainty float64, out *[]Alternative) {
	segs := splitPath(path)
	v, ok := b.GetTraitPath(state, segs)
	if !ok {
		return
	}
	cert := certainty
	if b.Meta != nil {
		cert *= b.Meta.Certainty
	}
	if fz, isFuzzy := v.(FuzzyValue); isFuzzy {
		for _, a := range fz.F.Alternatives() {
			*out = append(*out, Alternative{Value: a.Value, Certainty: cert * a.Certainty})
		}
		return
	}
	*out = append(*out, Alternative{Value: v, Certainty: cert})
}

func collectArchetypeSubjects(state *State, archetypeLabel string, targetVT int64, found map[SID]*Subject) {
	visit := func(next *State) {
		if next.VT() == targetVT {
			for _, b := range next.GetBeliefs() {
				for _, a := range b.GetArchetypes() {
					if a.Label == archetypeLabel {
						found[b.Subject.SID] = b.Subject
						break
					}
				}
			}
		}
		collectArchetypeSubjects(next, archetypeLabel, targetVT, found)
	}
	for _, br := range state.branches {
		visit(br)
	}
	for _, dep := range state.dependents {
		if dep.Mind() != state.Mind() {
			visit(dep)
		}
	}
}
