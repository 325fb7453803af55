package noumenon

import "sync"

// Root is implemented by both *State and *Convergence: whatever a Mind or a
// State's base chain can be rooted at. A Mind's origin is always a Root; a
// State's base is a Root (ordinarily another *State, except for the very
// first State branched off a composed Mind's Convergence origin).
type Root interface {
	Locked() bool
	GetBeliefs() []*Belief
	GetBeliefBySubject(subject *Subject) *Belief
}

// State is an immutable-once-locked snapshot of a Mind at a (tt, vt) point:
// insert/remove deltas over a base State, observing a ground State in the
// parent Mind.
type State struct {
	id     ID
	mind   *Mind
	base   Root
	ground *State
	tt     int64
	vt     int64
	self   *Subject

	certainty float64

	insert []*Belief
	remove []*Belief

	mu          sync.RWMutex
	locked      bool
	byLabel     map[string]*Belief
	childByHost map[SID]*State
	dependents  []*State // child-Mind States whose ground is this State
	branches    []*State // same-Mind successor States forked off this one (superposed alternatives)

	world *World
}

// ID returns the state's entity ID.
func (s *State) ID() ID { return s.id }

// Mind returns the owning Mind.
func (s *State) Mind() *Mind { return s.mind }

// Base returns the predecessor State/Convergence within the owning Mind.
func (s *State) Base() Root { return s.base }

// Ground returns the parent-Mind State this State observes, or nil for the
// root Mind's origin State.
func (s *State) Ground() *State { return s.ground }

// TT returns the state's transaction time.
func (s *State) TT() int64 { return s.tt }

// VT returns the state's valid time.
func (s *State) VT() int64 { return s.vt }

// Self returns the Subject this State is "about", if any.
func (s *State) Self() *Subject { return s.self }

// Certainty returns the state's branch weight (default 1.0).
func (s *State) Certainty() float64 {
	if s.certainty == 0 {
		return 1.0
	}
	return s.certainty
}

// Locked reports whether the state is sealed against further mutation.
func (s *State) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}

// GetBeliefByLabel looks up a Belief inserted directly in this State by its
// label.
func (s *State) GetBeliefByLabel(label string) (*Belief, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byLabel[label]
	return b, ok
}

// GetBeliefBySubject walks the insert list of this State, then its base
// chain, respecting removes, returning the most recent Belief for subject
// visible from this State.
func (s *State) GetBeliefBySubject(subject *Subject) *Belief {
	s.world.mu.RLock()
	defer s.world.mu.RUnlock()
	return s.getBeliefBySubjectLocked(subject)
}

func (s *State) getBeliefBySubjectLocked(subject *Subject) *Belief {
	return s.getBeliefBySubjectLockedFrom(subject, s)
}

// getBeliefBySubjectLockedFrom is getBeliefBySubjectLocked but threads the
// originating query State through the base chain, so that crossing into a
// Convergence (the very first State of a composed Mind) can still consult
// that Convergence's registered resolution for the same observer.
//
// Within one State, inserts are scanned newest-first with that State's own
// removes applied to them: a Replace/Branch performed in the State a belief
// was created in leaves the predecessor in both insert and remove, and the
// newest non-removed insert is the visible version.
func (s *State) getBeliefBySubjectLockedFrom(subject *Subject, queryState *State) *Belief {
	var cur Root = s
	for cur != nil {
		st, ok := cur.(*State)
		if !ok {
			return getBeliefBySubjectFromRoot(cur, subject, queryState)
		}
		var removedHere map[ID]bool
		if len(st.remove) > 0 {
			removedHere = make(map[ID]bool, len(st.remove))
			for _, rb := range st.remove {
				removedHere[rb.ID] = true
			}
		}
		for i := len(st.insert) - 1; i >= 0; i-- {
			ib := st.insert[i]
			if ib.Subject == subject && !removedHere[ib.ID] {
				return ib
			}
		}
		for _, rb := range st.remove {
			if rb.Subject == subject {
				return nil
			}
		}
		cur = st.base
	}
	return nil
}

// visibleBelief reports whether cand is the exact Belief visible for its
// Subject when walking from s backward through the base chain: cand must be
// found in some ancestor's insert list, with no later (closer-to-s) state
// having removed it.
func (s *State) visibleBelief(cand *Belief) bool {
	var cur Root = s
	removed := map[ID]bool{}
	for cur != nil {
		st, ok := cur.(*State)
		if !ok {
			return getBeliefBySubjectFromRoot(cur, cand.Subject, s) == cand
		}
		for _, rb := range st.remove {
			removed[rb.ID] = true
		}
		for _, ib := range st.insert {
			if ib == cand {
				return !removed[cand.ID]
			}
		}
		cur = st.base
	}
	return false
}

// GetBeliefs yields every Subject's visible Belief: own inserts (the latest
// non-removed version per Subject), then base's visible beliefs minus own
// removes.
func (s *State) GetBeliefs() []*Belief {
	removedHere := map[ID]bool{}
	removedSubj := map[SID]bool{}
	for _, rb := range s.remove {
		removedHere[rb.ID] = true
		removedSubj[rb.Subject.SID] = true
	}
	// Newest non-removed insert wins per Subject; a Replace/Branch done in
	// this same State leaves the predecessor in both insert and remove.
	winner := map[SID]*Belief{}
	for i := len(s.insert) - 1; i >= 0; i-- {
		ib := s.insert[i]
		if removedHere[ib.ID] {
			continue
		}
		if _, ok := winner[ib.Subject.SID]; !ok {
			winner[ib.Subject.SID] = ib
		}
	}
	seen := map[SID]bool{}
	result := make([]*Belief, 0, len(s.insert))
	for _, ib := range s.insert {
		if winner[ib.Subject.SID] == ib && !seen[ib.Subject.SID] {
			seen[ib.Subject.SID] = true
			result = append(result, ib)
		}
	}
	if s.base != nil {
		for _, bb := range s.base.GetBeliefs() {
			if seen[bb.Subject.SID] || removedSubj[bb.Subject.SID] {
				continue
			}
			seen[bb.Subject.SID] = true
			result = append(result, bb)
		}
	}
	return result
}

// AddBeliefFromTemplate is a bulk-creation convenience over FromTemplate.
func (s *State) AddBeliefFromTemplate(tpl BeliefTemplate) (*Belief, error) {
	return s.FromTemplate(tpl)
}

// AddBeliefsFromTemplate bulk-creates several labeled beliefs in one call,
// keyed by label.
func (s *State) AddBeliefsFromTemplate(templates map[string]BeliefTemplate) (map[string]*Belief, error) {
	out := make(map[string]*Belief, len(templates))
	for label, tpl := range templates {
		tpl.Label = label
		b, err := s.FromTemplate(tpl)
		if err != nil {
			return nil, err
		}
		out[label] = b
	}
	return out, nil
}

// Branch creates the next State in this Mind: base is s, tt equals ground's
// vt (fork invariant), vt is taken from the caller. Fails with
// GroundMindMismatch if ground belongs to a Mind other than this Mind's
// parent, or TimeRegression if the resulting tt would decrease.
func (s *State) Branch(ground *State, vt int64) (*State, error) {
	return s.BranchCertain(ground, vt, 1.0)
}

// BranchCertain is Branch with an explicit branch weight: when several
// States are forked off the same predecessor (alternate possible futures),
// each carries its own certainty, multiplied into Recall's
// combined certainty for any valuation found in it or its descendants.
func (s *State) BranchCertain(ground *State, vt int64, certainty float64) (*State, error) {
	w := s.world
	w.mu.Lock()
	defer w.mu.Unlock()

	if s.mind.parent != nil {
		if ground == nil || ground.mind != s.mind.parent {
			var got ID
			if ground != nil {
				got = ground.mind.id
			}
			return nil, errGroundMindMismatch(s.mind.parent.id, got)
		}
	}

	var tt int64
	if ground != nil {
		tt = ground.vt
	} else {
		tt = s.tt
	}
	if tt < s.tt {
		return nil, errTimeRegression("tt would decrease along base chain", map[string]interface{}{
			"from": s.tt, "to": tt,
		})
	}

	ns := &State{
		id:        w.allocID(),
		mind:      s.mind,
		base:      s,
		ground:    ground,
		tt:        tt,
		vt:        vt,
		certainty: certainty,
		world:     w,
		byLabel:   make(map[string]*Belief),
	}
	w.statesByID[ns.id] = ns
	s.mind.states = append(s.mind.states, ns)
	s.branches = append(s.branches, ns)
	if ground != nil {
		ground.dependents = append(ground.dependents, ns)
	}
	return ns, nil
}

// BranchState is an alias for Branch.
func (s *State) BranchState(ground *State, vt int64) (*State, error) {
	return s.Branch(ground, vt)
}

// Lock atomically seals the State against further mutation and recursively
// seals any open child-Mind States rooted at this State's ground snapshot.
func (s *State) Lock() {
	s.mu.Lock()
	if s.locked {
		s.mu.Unlock()
		return
	}
	s.locked = true
	deps := append([]*State{}, s.dependents...)
	s.mu.Unlock()
	for _, d := range deps {
		d.Lock()
	}
}

// GetActiveStateByHost returns the child-Mind State whose Self is host and
// whose ground State is s, creating it (in host's ground Mind) if absent
// and s is not locked.
func (s *State) GetActiveStateByHost(host *Subject) (*State, error) {
	s.mu.Lock()
	if s.childByHost == nil {
		s.childByHost = make(map[SID]*State)
	}
	if existing, ok := s.childByHost[host.SID]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	locked := s.locked
	s.mu.Unlock()

	if locked {
		return nil, nil
	}
	if host.GroundMind == nil {
		return nil, errUnknownSubject(host.SID)
	}

	child, err := host.GroundMind.CreateState(s, s.vt, s.vt, host)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.childByHost[host.SID] = child
	s.mu.Unlock()
	return child, nil
}

// LearnAbout creates, in s's Mind, a Belief importing a snapshot of the
// listed trait paths off source, sharing source's Subject. Used by nested
// minds to import observations from an outer mind's State.
func (s *State) LearnAbout(source *Belief, traitPaths []string) (*Belief, error) {
	w := s.world

	// Resolve the requested paths before taking the registry write lock:
	// GetTraitPath takes its own read locks along the way.
	resolved := map[*Traittype]Value{}
	for _, path := range traitPaths {
		segs := splitPath(path)
		v, ok := source.GetTraitPath(s, segs)
		if !ok {
			continue
		}
		w.mu.RLock()
		tt, ok := w.traittypes[segs[0]]
		w.mu.RUnlock()
		if !ok {
			continue
		}
		resolved[tt] = v
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if s.locked {
		return nil, errStateLocked(s.id)
	}

	b := &Belief{
		ID:          w.allocID(),
		Mind:        s.mind,
		OriginState: s,
		Subject:     source.Subject,
		About:       source.Subject,
		Traits:      resolved,
		world:       w,
	}

	w.beliefsByID[b.ID] = b
	s.insert = append(s.insert, b)
	w.indexReverseTraits(b)
	return b, nil
}

func splitPath(path string) []string {
	var out []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			out = append(out, path[start:i])
			start = i + 1
		}
	}
	out = append(out, path[start:])
	return out
}
