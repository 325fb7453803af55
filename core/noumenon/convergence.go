package noumenon

import "sync"

// Convergence is a read-only State variant that merges beliefs from an
// ordered list of component States (or nested Convergences), used for
// multi-parent Mind composition. It has no base chain and never
// accepts removes.
type Convergence struct {
	id         ID
	world      *World
	components []Root
	insert     []*Belief

	mu          sync.RWMutex
	locked      bool
	resolutions map[ID]Root
}

// NewConvergence builds a read-only union over components, in order.
func (w *World) NewConvergence(components ...Root) *Convergence {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := &Convergence{
		id:          w.allocID(),
		world:       w,
		components:  append([]Root{}, components...),
		resolutions: make(map[ID]Root),
	}
	return c
}

// ID returns the convergence's entity ID.
func (c *Convergence) ID() ID { return c.id }

// Locked always reports true once Lock is called; Convergences otherwise
// behave as open containers for the insert list used during construction.
func (c *Convergence) Locked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locked
}

// Lock seals the convergence so no further inserts are accepted.
func (c *Convergence) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
}

// Insert adds a belief directly to this convergence's own insert list
// (used when the composed Mind needs fresh own-knowledge layered over its
// components).
func (c *Convergence) Insert(b *Belief) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return errStateLocked(c.id)
	}
	c.insert = append(c.insert, b)
	return nil
}

// Remove is always rejected: a Convergence never accepts removes.
func (c *Convergence) Remove(*Belief) error {
	return errConvergenceImmutable(c.id)
}

// GetBeliefs yields from each component in order (recursing through any
// nested Convergence), then c's own inserts. Each Subject is yielded
// exactly once, first-wins across components; an own insert only
// contributes when no component already covers that Subject. Component-
// local removes are respected because each component's own GetBeliefs
// already applied them; Convergence-level removes do not exist.
func (c *Convergence) GetBeliefs() []*Belief {
	seen := map[SID]bool{}
	var result []*Belief
	for _, comp := range c.components {
		for _, b := range comp.GetBeliefs() {
			if seen[b.Subject.SID] {
				continue
			}
			seen[b.Subject.SID] = true
			result = append(result, b)
		}
	}
	for _, b := range c.insert {
		if seen[b.Subject.SID] {
			continue
		}
		seen[b.Subject.SID] = true
		result = append(result, b)
	}
	return result
}

// RegisterResolution records that, when queried from fromState's ancestry,
// this Convergence collapses to toBranch (one of its components): the
// observer has committed to one branch of the superposition.
func (c *Convergence) RegisterResolution(fromState *State, toBranch Root) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolutions[fromState.id] = toBranch
}

// GetResolution walks state's base chain looking for a registered
// resolution, returning it if found.
func (c *Convergence) GetResolution(state *State) (Root, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var cur Root = state
	for cur != nil {
		st, ok := cur.(*State)
		if !ok {
			break
		}
		if r, ok := c.resolutions[st.id]; ok {
			return r, true
		}
		cur = st.base
	}
	return nil, false
}

// GetBeliefBySubject checks components first, in order, then c's own
// insert — matching GetBeliefs' first-wins-across-components precedence
// (an own insert only contributes a Subject no component already covers).
// This is the plain Root-interface entry point, with no query-state context;
// callers reached through a State's base chain use getBeliefBySubjectFrom
// instead, so a registered resolution is honored.
func (c *Convergence) GetBeliefBySubject(subject *Subject) *Belief {
	return c.getBeliefBySubjectFrom(subject, nil)
}

// getBeliefBySubjectFrom is GetBeliefBySubject but resolution-aware: it
// consults GetResolution(queryState) first and, if resolved,
// delegates to that branch alone; otherwise it falls back to first-wins
// across components, same as GetBeliefBySubject. queryState is threaded
// through unchanged as the traversal descends into nested Convergences, so
// every level along the way resolves against the same original observer.
func (c *Convergence) getBeliefBySubjectFrom(subject *Subject, queryState *State) *Belief {
	if queryState != nil {
		if r, ok := c.GetResolution(queryState); ok {
			return getBeliefBySubjectFromRoot(r, subject, queryState)
		}
	}
	for _, comp := range c.components {
		if b := getBeliefBySubjectFromRoot(comp, subject, queryState); b != nil {
			return b
		}
	}
	for _, b := range c.insert {
		if b.Subject == subject {
			return b
		}
	}
	return nil
}

// getBeliefBySubjectFromRoot dispatches into r, threading queryState through
// so a Convergence reached anywhere along the way can still resolve against
// the same observer.
func getBeliefBySubjectFromRoot(r Root, subject *Subject, queryState *State) *Belief {
	switch v := r.(type) {
	case *State:
		return v.getBeliefBySubjectLockedFrom(subject, queryState)
	case *Convergence:
		return v.getBeliefBySubjectFrom(subject, queryState)
	default:
		return r.GetBeliefBySubject(subject)
	}
}

// RevBase returns the resolved branch for subject/traittype if a resolution
// applies from queryState, else every component.
func (c *Convergence) RevBase(subject *Subject, tt *Traittype, queryState *State) []Root {
	if queryState != nil {
		if r, ok := c.GetResolution(queryState); ok {
			return []Root{r}
		}
	}
	return append([]Root{}, c.components...)
}
