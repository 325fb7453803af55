package noumenon

// BaseRef is one entry in a Belief's ordered base list: either another
// Belief or an Archetype. Multi-inheritance traversal treats both kinds
// uniformly via BFS with first-seen dedup.
type BaseRef struct {
	Belief    *Belief
	Archetype *Archetype
}

// BranchMeta marks a Belief produced by Belief.Branch as an uncertain
// alternative rather than a definite update, carrying its own certainty
// weight (default 1.0) that recall folds into combined certainty.
type BranchMeta struct {
	Certainty float64
}

// Belief is a single versioned valuation of a Subject: the bases it
// extends, the trait slots it overrides in its own map, and the State that
// created it. Beliefs become read-only once their originating State locks.
type Belief struct {
	ID          ID
	Mind        *Mind
	OriginState *State
	Subject     *Subject
	Label       string
	Bases       []BaseRef
	Traits      map[*Traittype]Value
	Meta        *BranchMeta

	// About, when non-nil, marks this Belief as an imported observation
	// created by State.LearnAbout rather than a direct valuation: it names
	// the Subject the observation concerns (always == Subject here, but
	// kept as a distinct marker).
	About *Subject

	world *World
}

// BeliefTemplate is the input to FromTemplate/Replace/Branch: an ordered
// list of bases (by label, Archetype or Belief) plus a map of trait
// templates, and an optional label.
type BeliefTemplate struct {
	Label string
	Bases []BaseSpec
	Trait map[string]Template
}

// BaseSpec names one base in a BeliefTemplate, resolved by exactly one of
// its fields.
type BaseSpec struct {
	Label     string
	Archetype *Archetype
	Belief    *Belief
}

func (w *World) resolveBaseSpec(spec BaseSpec) (BaseRef, error) {
	if spec.Belief != nil {
		return BaseRef{Belief: spec.Belief}, nil
	}
	if spec.Archetype != nil {
		return BaseRef{Archetype: spec.Archetype}, nil
	}
	if arch, ok := w.archetypes[spec.Label]; ok {
		return BaseRef{Archetype: arch}, nil
	}
	if belief, ok := w.beliefsByName[spec.Label]; ok {
		return BaseRef{Belief: belief}, nil
	}
	return BaseRef{}, errUnknownArchetype(spec.Label)
}

// FromTemplate creates a new Belief in state's Mind. The Belief is
// recorded in state.insert. Fails with LabelInUse/UnknownArchetype/
// TypeMismatch/EnumOutOfRange/ArrayArityViolation.
func (s *State) FromTemplate(tpl BeliefTemplate) (*Belief, error) {
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()

	if s.locked {
		return nil, errStateLocked(s.id)
	}
	if err := w.claimLabel(tpl.Label); err != nil {
		return nil, err
	}

	bases := make([]BaseRef, 0, len(tpl.Bases))
	for _, spec := range tpl.Bases {
		ref, err := w.resolveBaseSpec(spec)
		if err != nil {
			w.releaseLabel(tpl.Label)
			return nil, err
		}
		bases = append(bases, ref)
	}

	sub, err := w.newSubjectLocked("", nil)
	if err != nil {
		w.releaseLabel(tpl.Label)
		return nil, err
	}
	// The Subject shares the belief's label (one claim covers both), so
	// label lookups reach the identity as well as its first valuation.
	if tpl.Label != "" {
		sub.Label = tpl.Label
		w.subjectsByName[tpl.Label] = sub
	}

	b := &Belief{
		ID:          w.allocID(),
		Mind:        s.mind,
		OriginState: s,
		Subject:     sub,
		Label:       tpl.Label,
		Bases:       bases,
		Traits:      map[*Traittype]Value{},
		world:       w,
	}

	cleanup := func() {
		w.releaseLabel(tpl.Label)
		delete(w.subjectsBySID, sub.SID)
		if tpl.Label != "" {
			delete(w.subjectsByName, tpl.Label)
		}
	}
	if err := w.assignTraits(b, tpl.Trait, s); err != nil {
		cleanup()
		return nil, err
	}
	if err := w.autoComposeUnlisted(b, s); err != nil {
		cleanup()
		return nil, err
	}

	w.beliefsByID[b.ID] = b
	if tpl.Label != "" {
		w.beliefsByName[tpl.Label] = b
	}
	s.insert = append(s.insert, b)
	if tpl.Label != "" {
		s.byLabel[tpl.Label] = b
	}
	w.indexReverseTraits(b)
	return b, nil
}

// assignTraits resolves every trait template against its Traittype,
// applying the composition engine for traits marked composable.
// state supplies the query context composition resolves bases against.
func (w *World) assignTraits(b *Belief, raw map[string]Template, state *State) error {
	for label, tpl := range raw {
		tt, ok := w.traittypes[label]
		if !ok {
			return errSchema("unknown traittype referenced by belief", map[string]interface{}{"traittype": label})
		}
		if tt.Composable {
			v, err := w.composeTrait(b, tt, tpl, state)
			if err != nil {
				return err
			}
			b.Traits[tt] = v
			continue
		}
		v, err := w.resolveTemplate(tt, tpl)
		if err != nil {
			return err
		}
		b.Traits[tt] = v
	}
	return nil
}

// newSubjectLocked is NewSubject without re-acquiring w.mu (caller already
// holds it).
func (w *World) newSubjectLocked(label string, ground *Mind) (*Subject, error) {
	if err := w.claimLabel(label); err != nil {
		return nil, err
	}
	sub := &Subject{SID: w.allocSID(), Label: label, GroundMind: ground, world: w}
	w.subjectsBySID[sub.SID] = sub
	if label != "" {
		w.subjectsByName[label] = sub
	}
	return sub, nil
}

// Replace must be called on the Subject's current visible valuation. It
// produces a new Belief with b as its sole base, overriding the listed
// trait slots; state records the new Belief in insert and b in remove.
// Fails if state is locked or b is not visible in state's chain.
func (b *Belief) Replace(state *State, trait map[string]Template) (*Belief, error) {
	return b.replaceOrBranch(state, trait, nil)
}

// Branch is like Replace but marks the new Belief with branch metadata
// (certainty defaults to 1.0), representing an uncertain alternative rather
// than a definite update.
func (b *Belief) Branch(state *State, trait map[string]Template, meta *BranchMeta) (*Belief, error) {
	if meta == nil {
		meta = &BranchMeta{Certainty: 1.0}
	}
	return b.replaceOrBranch(state, trait, meta)
}

func (b *Belief) replaceOrBranch(state *State, trait map[string]Template, meta *BranchMeta) (*Belief, error) {
	w := state.world
	w.mu.Lock()
	defer w.mu.Unlock()

	if state.locked {
		return nil, errStateLocked(state.id)
	}
	if state.getBeliefBySubjectLocked(b.Subject) != b {
		return nil, errUnknownBelief(map[string]interface{}{"belief": uint64(b.ID), "state": uint64(state.id)})
	}

	nb := &Belief{
		ID:          w.allocID(),
		Mind:        state.mind,
		OriginState: state,
		Subject:     b.Subject,
		Bases:       []BaseRef{{Belief: b}},
		Traits:      map[*Traittype]Value{},
		Meta:        meta,
		world:       w,
	}
	for label, tpl := range trait {
		tt, ok := w.traittypes[label]
		if !ok {
			return nil, errSchema("unknown traittype referenced by belief", map[string]interface{}{"traittype": label})
		}
		var v Value
		var err error
		if tt.Composable {
			v, err = w.composeTrait(nb, tt, tpl, state)
		} else {
			v, err = w.resolveTemplate(tt, tpl)
		}
		if err != nil {
			return nil, err
		}
		nb.Traits[tt] = v
	}
	if err := w.autoComposeUnlisted(nb, state); err != nil {
		return nil, err
	}

	w.beliefsByID[nb.ID] = nb
	state.insert = append(state.insert, nb)
	state.remove = append(state.remove, b)
	w.indexReverseTraits(nb)
	return nb, nil
}

// GetTrait resolves the value of traittype as visible from state. The own
// entry always wins if present (this is also where a composable trait's
// creation-time composed value lives); otherwise the base chain
// is walked breadth-first — belief bases, then archetype bases — with
// first-seen dedup, stopping at the first entry found. An explicit null
// blocks further inheritance and is returned as-is.
func (b *Belief) GetTrait(state *State, tt *Traittype) (Value, bool) {
	if v, ok := b.Traits[tt]; ok {
		if lm, isLazy := v.(lazyMind); isLazy {
			return b.resolveLazyMind(state, lm), true
		}
		return v, true
	}
	seen := map[interface{}]bool{}
	var archQueue []*Archetype
	queue := append([]BaseRef{}, b.Bases...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Belief != nil {
			if seen[cur.Belief] {
				continue
			}
			seen[cur.Belief] = true
			if v, ok := cur.Belief.Traits[tt]; ok {
				return v, true
			}
			queue = append(queue, cur.Belief.Bases...)
		} else if cur.Archetype != nil {
			archQueue = append(archQueue, cur.Archetype)
		}
	}
	for len(archQueue) > 0 {
		cur := archQueue[0]
		archQueue = archQueue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if v, ok := cur.Values[tt]; ok {
			return v, true
		}
		archQueue = append(archQueue, cur.Bases...)
	}
	return nil, false
}

// GetTraitPath applies GetTrait to the first path segment, then for each
// following segment resolves the current value as a Subject to its Belief
// in state (via state.GetBeliefBySubject) and recurses. Returns false if any
// hop fails or hits a non-Subject intermediate: a broken path reads as
// "not found", not a hard error.
func (b *Belief) GetTraitPath(state *State, segments []string) (Value, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	tt, ok := b.world.traittypes[segments[0]]
	if !ok {
		return nil, false
	}
	v, ok := b.GetTrait(state, tt)
	if !ok || len(segments) == 1 {
		return v, ok
	}
	ref, ok := v.(SubjectRef)
	if !ok {
		return nil, false
	}
	subj, ok := b.world.SubjectBySID(SID(ref))
	if !ok {
		return nil, false
	}
	next := state.GetBeliefBySubject(subj)
	if next == nil {
		return nil, false
	}
	return next.GetTraitPath(state, segments[1:])
}

// GetArchetypes walks the archetype closure reachable via Bases,
// breadth-first with first-seen dedup, and returns it as a slice.
func (b *Belief) GetArchetypes() []*Archetype {
	seen := map[*Archetype]bool{}
	var order []*Archetype
	queue := append([]BaseRef{}, b.Bases...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Archetype != nil {
			if seen[cur.Archetype] {
				continue
			}
			seen[cur.Archetype] = true
			order = append(order, cur.Archetype)
			for _, base := range cur.Archetype.Bases {
				queue = append(queue, BaseRef{Archetype: base})
			}
		} else if cur.Belief != nil {
			queue = append(queue, cur.Belief.Bases...)
		}
	}
	return order
}

// Sysdesig renders a short human-readable designator, e.g.
// "Belief#42(npc_guard)".
func (b *Belief) Sysdesig() string {
	if b == nil {
		return "Belief(nil)"
	}
	if b.Label != "" {
		return "Belief#" + itoa(uint64(b.ID)) + "(" + b.Label + ")"
	}
	return "Belief#" + itoa(uint64(b.ID)) + "(" + b.Subject.Sysdesig() + ")"
}
