package noumenon

import "sync"

// Mind is a timeline: a tree of States rooted in a parent Mind's State (its
// ground state), or the world root for the top-level world Mind.
type Mind struct {
	id       ID
	label    string
	parent   *Mind
	children []*Mind
	states   []*State
	origin   Root

	mu    sync.RWMutex
	world *World
}

// NewMind creates a new Mind, optionally nested inside parent, optionally
// labeled. Label collisions fail with LabelInUse.
func (w *World) NewMind(parent *Mind, label string) (*Mind, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.claimLabel(label); err != nil {
		return nil, err
	}
	m := &Mind{id: w.allocID(), label: label, parent: parent, world: w}
	w.mindsByID[m.id] = m
	if label != "" {
		w.mindsByName[label] = m
	}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, m)
		parent.mu.Unlock()
	}
	return m, nil
}

// ID returns the mind's entity ID.
func (m *Mind) ID() ID { return m.id }

// Label returns the mind's label, or "" if unlabeled.
func (m *Mind) Label() string { return m.label }

// Parent returns the owning parent Mind, or nil for the world root.
func (m *Mind) Parent() *Mind { return m.parent }

// Children returns the nested child Minds.
func (m *Mind) Children() []*Mind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Mind{}, m.children...)
}

// Origin returns the Mind's root State (or Convergence, for composed
// minds).
func (m *Mind) Origin() Root { return m.origin }

// States returns every State ever created in this Mind, in creation order.
func (m *Mind) States() []*State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*State{}, m.states...)
}

// CreateState creates an open root State for this Mind; the first State
// created this way becomes the Mind's origin.
// If m has a parent Mind, ground must belong to that parent
// (GroundMindMismatch otherwise).
func (m *Mind) CreateState(ground *State, tt, vt int64, self *Subject) (*State, error) {
	w := m.world
	w.mu.Lock()
	defer w.mu.Unlock()

	if m.parent != nil {
		if ground == nil || ground.mind != m.parent {
			var got ID
			if ground != nil {
				got = ground.mind.id
			}
			return nil, errGroundMindMismatch(m.parent.id, got)
		}
	}

	s := &State{
		id:      w.allocID(),
		mind:    m,
		ground:  ground,
		tt:      tt,
		vt:      vt,
		self:    self,
		world:   w,
		byLabel: make(map[string]*Belief),
	}
	w.statesByID[s.id] = s
	m.mu.Lock()
	if m.origin == nil {
		m.origin = s
	}
	m.states = append(m.states, s)
	m.mu.Unlock()

	if ground != nil {
		ground.dependents = append(ground.dependents, s)
	}
	return s, nil
}

// ValidAt returns the Belief-for-Subject visible at transaction time t: the
// State with the largest tt <= t among those in which subject is visible.
// Searches every State of m.
func (m *Mind) ValidAt(subject *Subject, t int64) *Belief {
	m.mu.RLock()
	states := append([]*State{}, m.states...)
	m.mu.RUnlock()

	var best *State
	for _, s := range states {
		if s.tt > t {
			continue
		}
		if best == nil || s.tt > best.tt {
			if s.GetBeliefBySubject(subject) != nil {
				best = s
			}
		}
	}
	if best == nil {
		return nil
	}
	return best.GetBeliefBySubject(subject)
}
