package noumenon

// Archetype is a declarative template/type for Beliefs: a label, an ordered
// set of base Archetypes (multi-inheritance), and a map of default template
// values per Traittype. Archetypes are registered once at world setup and
// are immutable thereafter.
type Archetype struct {
	ID     ID
	Label  string
	Bases  []*Archetype
	Raw    map[*Traittype]Template // template values as supplied at registration
	Values map[*Traittype]Value    // resolved after the second registration pass

	proto *Belief // lazily-created canonical belief representing this archetype as a value
}

// GetArchetypes performs the breadth-first, first-seen-deduplicated closure
// over a's base archetypes, base list order preserved.
func (a *Archetype) GetArchetypes() []*Archetype {
	seen := map[*Archetype]bool{a: true}
	order := []*Archetype{a}
	queue := append([]*Archetype{}, a.Bases...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		order = append(order, cur)
		queue = append(queue, cur.Bases...)
	}
	return order
}

// Satisfies reports whether a is, or derives from, the archetype named
// label.
func (a *Archetype) Satisfies(label string) bool {
	for _, anc := range a.GetArchetypes() {
		if anc.Label == label {
			return true
		}
	}
	return false
}

// archetypeProtoBelief lazily creates (and caches) the canonical Belief used
// when an Archetype is referenced as a template value — e.g. a trait whose
// template names another archetype by label. This Belief has the archetype
// itself as its sole base and no own traits; its Subject is what a
// SubjectRef ends up pointing at.
// Callers hold w.mu.
func (w *World) archetypeProtoBelief(a *Archetype) (*Belief, error) {
	if a.proto != nil {
		return a.proto, nil
	}
	sub, err := w.newSubjectLocked("", nil)
	if err != nil {
		return nil, err
	}
	b := &Belief{
		ID:      w.allocID(),
		Mind:    w.root,
		Subject: sub,
		Bases:   []BaseRef{{Archetype: a}},
		Traits:  map[*Traittype]Value{},
		world:   w,
	}
	w.beliefsByID[b.ID] = b
	a.proto = b
	return b, nil
}
