package noumenon

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// World is an explicit handle to the full registry set: Traittypes,
// Archetypes, Subjects, Beliefs, Minds and States, plus the ID allocator and
// reverse trait index. Embedding hosts that want isolated test worlds
// construct their own with NewWorld(); a single process may also keep one
// World as its de-facto global store.
//
// Every stateful field is guarded by mu. The core runs single-threaded from
// the caller's perspective, but embedding hosts may reach the same World
// from more than one goroutine.
type World struct {
	mu sync.RWMutex

	idMu    sync.Mutex
	nextID  uint64
	nextSID uint64

	labels map[string]struct{}

	traittypes     map[string]*Traittype
	archetypes     map[string]*Archetype
	subjectsBySID  map[SID]*Subject
	subjectsByName map[string]*Subject
	beliefsByID    map[ID]*Belief
	beliefsByName  map[string]*Belief
	mindsByID      map[ID]*Mind
	mindsByName    map[string]*Mind
	statesByID     map[ID]*State

	revIndex *reverseIndex

	mindCache *lru.Cache[mindCacheKey, *Mind]

	root      *Mind
	rootState *State
}

// NewWorld constructs a fresh World, already seeded with the root Mind
// ("logos") and its origin State ("logos_state"), matching
// reset_registries()'s re-seeding contract.
func NewWorld() *World {
	w := &World{}
	w.resetLocked()
	return w
}

// ResetRegistries clears every registry, re-seeds the root Mind and its
// origin State, and resets the ID allocator and the Unknown() singleton
// sharing guarantee.
func (w *World) ResetRegistries() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *World) resetLocked() {
	w.idMu.Lock()
	w.nextID = 0
	w.nextSID = 0
	w.idMu.Unlock()

	w.labels = make(map[string]struct{})
	w.traittypes = make(map[string]*Traittype)
	w.archetypes = make(map[string]*Archetype)
	w.subjectsBySID = make(map[SID]*Subject)
	w.subjectsByName = make(map[string]*Subject)
	w.beliefsByID = make(map[ID]*Belief)
	w.beliefsByName = make(map[string]*Belief)
	w.mindsByID = make(map[ID]*Mind)
	w.mindsByName = make(map[string]*Mind)
	w.statesByID = make(map[ID]*State)
	w.revIndex = newReverseIndex()

	cache, _ := lru.New[mindCacheKey, *Mind](4096)
	w.mindCache = cache

	root := &Mind{id: w.allocID(), label: "logos", world: w}
	w.mindsByID[root.id] = root
	w.mindsByName["logos"] = root
	w.labels["logos"] = struct{}{}
	w.root = root

	originState := &State{
		id:      w.allocID(),
		mind:    root,
		tt:      0,
		vt:      0,
		world:   w,
		byLabel: make(map[string]*Belief),
	}
	w.statesByID[originState.id] = originState
	root.origin = originState
	root.states = append(root.states, originState)
	w.rootState = originState
}

// Root returns the world's root Mind ("logos").
func (w *World) Root() *Mind { return w.root }

// RootState returns the origin State of the root Mind ("logos_state").
func (w *World) RootState() *State { return w.rootState }

// claimLabel enforces global label uniqueness across archetypes, traittypes,
// beliefs, minds and subjects. All kinds share one flat namespace: schema
// files key traittypes, archetypes and prototypes by label in one space.
func (w *World) claimLabel(label string) error {
	if label == "" {
		return nil
	}
	if _, exists := w.labels[label]; exists {
		return errLabelInUse(label)
	}
	w.labels[label] = struct{}{}
	return nil
}

func (w *World) releaseLabel(label string) {
	if label == "" {
		return
	}
	delete(w.labels, label)
}

// Stats is a read-only counts snapshot of the registries.
type Stats struct {
	Traittypes int
	Archetypes int
	Subjects   int
	Beliefs    int
	Minds      int
	States     int
}

// Stats reports current registry sizes.
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Stats{
		Traittypes: len(w.traittypes),
		Archetypes: len(w.archetypes),
		Subjects:   len(w.subjectsBySID),
		Beliefs:    len(w.beliefsByID),
		Minds:      len(w.mindsByID),
		States:     len(w.statesByID),
	}
}

// SubjectBySID looks up a Subject by its SID.
func (w *World) SubjectBySID(sid SID) (*Subject, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.subjectsBySID[sid]
	return s, ok
}

// SubjectByLabel looks up a Subject by its (globally unique) label.
func (w *World) SubjectByLabel(label string) (*Subject, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.subjectsByName[label]
	return s, ok
}

// TraittypeByLabel looks up a registered Traittype by label.
func (w *World) TraittypeByLabel(label string) (*Traittype, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tt, ok := w.traittypes[label]
	return tt, ok
}

// ArchetypeByLabel looks up a registered Archetype by label.
func (w *World) ArchetypeByLabel(label string) (*Archetype, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.archetypes[label]
	return a, ok
}

// MindByLabel looks up a Mind by label.
func (w *World) MindByLabel(label string) (*Mind, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.mindsByName[label]
	return m, ok
}

// BeliefByID looks up a Belief by its entity ID, used during deserialization
// reference resolution.
func (w *World) BeliefByID(id ID) (*Belief, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.beliefsByID[id]
	return b, ok
}

// StateByID looks up a State by its entity ID.
func (w *World) StateByID(id ID) (*State, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.statesByID[id]
	return s, ok
}

// MindByID looks up a Mind by its entity ID.
func (w *World) MindByID(id ID) (*Mind, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.mindsByID[id]
	return m, ok
}

// NewSubject allocates a fresh Subject, optionally labeled and optionally
// scoped to a ground Mind. Subjects are created implicitly the first time a
// belief about a new identity is added (see Belief.FromTemplate), but
// exposed here for callers that need to mint an identity ahead of any
// belief about it (e.g. a schema's "prototypes" section).
func (w *World) NewSubject(label string, ground *Mind) (*Subject, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
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
