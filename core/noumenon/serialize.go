package noumenon

import (
	"encoding/json"
	"sort"
	"strconv"
)

// envelope is the common shape every typed entry in a saved document
// carries: a discriminant plus whatever fields that kind needs.
// Field presence is type-dependent; unused fields are omitted on encode.
type envelope struct {
	Type string `json:"_type"`
	ID   uint64 `json:"_id"`

	// Mind
	Label     string  `json:"label,omitempty"`
	Parent    *uint64 `json:"parent,omitempty"`
	OriginRef *uint64 `json:"origin,omitempty"`

	// State
	Mind        uint64   `json:"in_mind,omitempty"`
	Base        *uint64  `json:"base,omitempty"`
	GroundState *uint64  `json:"ground_state,omitempty"`
	TT          int64    `json:"tt,omitempty"`
	VT          int64    `json:"vt,omitempty"`
	Certainty   float64  `json:"certainty,omitempty"`
	Self        *uint64  `json:"self,omitempty"`
	Insert      []uint64 `json:"insert,omitempty"`
	Remove      []uint64 `json:"remove,omitempty"`
	Locked      bool     `json:"locked,omitempty"`

	// Convergence
	Components  []uint64          `json:"components,omitempty"`
	Resolutions map[string]uint64 `json:"resolutions,omitempty"`

	// Subject
	SID        uint64  `json:"sid,omitempty"`
	GroundMind *uint64 `json:"ground_mind,omitempty"`

	// Belief
	Subject         uint64          `json:"subject,omitempty"`
	Bases           []envBaseRef    `json:"bases,omitempty"`
	Traits          []envTraitEntry `json:"traits,omitempty"`
	BranchCertainty *float64        `json:"branch_certainty,omitempty"`
	About           *uint64         `json:"about,omitempty"`
}

type envBaseRef struct {
	Belief    *uint64 `json:"belief,omitempty"`
	Archetype string  `json:"archetype,omitempty"`
}

type envTraitEntry struct {
	Traittype string          `json:"traittype"`
	Value     json.RawMessage `json:"value"`
}

// document is the top-level save_mind payload: a root Mind ID plus every
// entity reachable from it, each as a typed envelope, grouped by type
// (Minds, States, Convergences, Beliefs, Subjects) and sorted by _id (sid for
// Subjects) within each group, so repeated saves of an unchanged graph are
// byte-identical.
type document struct {
	Root     uint64     `json:"root"`
	Entities []envelope `json:"entities"`
}

// SaveMind serializes mind and everything reachable from it — nested
// Minds, their States, the Beliefs and Subjects those States reference —
// into the typed-envelope JSON format.
func SaveMind(mind *Mind) (string, error) {
	w := mind.world
	w.mu.RLock()
	defer w.mu.RUnlock()

	enc := &encoder{w: w, minds: map[ID]*Mind{}, states: map[ID]*State{}, convs: map[ID]*Convergence{}, beliefs: map[ID]*Belief{}, subjects: map[SID]*Subject{}}
	enc.walkMind(mind)

	var entities []envelope
	mindIDs := make([]ID, 0, len(enc.minds))
	for id := range enc.minds {
		mindIDs = append(mindIDs, id)
	}
	sort.Slice(mindIDs, func(i, j int) bool { return mindIDs[i] < mindIDs[j] })
	for _, id := range mindIDs {
		entities = append(entities, enc.encodeMind(enc.minds[id]))
	}

	stateIDs := make([]ID, 0, len(enc.states))
	for id := range enc.states {
		stateIDs = append(stateIDs, id)
	}
	sort.Slice(stateIDs, func(i, j int) bool { return stateIDs[i] < stateIDs[j] })
	for _, id := range stateIDs {
		entities = append(entities, enc.encodeState(enc.states[id]))
	}

	convIDs := make([]ID, 0, len(enc.convs))
	for id := range enc.convs {
		convIDs = append(convIDs, id)
	}
	sort.Slice(convIDs, func(i, j int) bool { return convIDs[i] < convIDs[j] })
	for _, id := range convIDs {
		entities = append(entities, enc.encodeConvergence(enc.convs[id]))
	}

	beliefIDs := make([]ID, 0, len(enc.beliefs))
	for id := range enc.beliefs {
		beliefIDs = append(beliefIDs, id)
	}
	sort.Slice(beliefIDs, func(i, j int) bool { return beliefIDs[i] < beliefIDs[j] })
	for _, id := range beliefIDs {
		env, err := enc.encodeBelief(enc.beliefs[id])
		if err != nil {
			return "", err
		}
		entities = append(entities, env)
	}

	sidList := make([]SID, 0, len(enc.subjects))
	for sid := range enc.subjects {
		sidList = append(sidList, sid)
	}
	sort.Slice(sidList, func(i, j int) bool { return sidList[i] < sidList[j] })
	for _, sid := range sidList {
		entities = append(entities, enc.encodeSubject(enc.subjects[sid]))
	}

	doc := document{Root: uint64(mind.id), Entities: entities}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errSerialization("failed to marshal document", map[string]interface{}{"error": err.Error()})
	}
	return string(data), nil
}

type encoder struct {
	w        *World
	minds    map[ID]*Mind
	states   map[ID]*State
	convs    map[ID]*Convergence
	beliefs  map[ID]*Belief
	subjects map[SID]*Subject
}

func (e *encoder) walkMind(m *Mind) {
	if m == nil || e.minds[m.id] != nil {
		return
	}
	e.minds[m.id] = m
	for _, st := range m.States() {
		e.walkState(st)
	}
	for _, child := range m.Children() {
		e.walkMind(child)
	}
	e.walkRoot(m.Origin())
}

func (e *encoder) walkRoot(r Root) {
	switch v := r.(type) {
	case *State:
		e.walkState(v)
	case *Convergence:
		if e.convs[v.id] != nil {
			return
		}
		e.convs[v.id] = v
		for _, comp := range v.components {
			e.walkRoot(comp)
		}
		for _, b := range v.insert {
			e.walkBelief(b)
		}
		for fromID, branch := range v.resolutions {
			if s, ok := e.w.statesByID[fromID]; ok {
				e.walkState(s)
			}
			e.walkRoot(branch)
		}
	}
}

func (e *encoder) walkState(s *State) {
	if s == nil || e.states[s.id] != nil {
		return
	}
	e.states[s.id] = s
	e.walkMind(s.mind)
	if s.base != nil {
		e.walkRoot(s.base)
	}
	if s.ground != nil {
		e.walkState(s.ground)
	}
	for _, b := range s.insert {
		e.walkBelief(b)
	}
	for _, b := range s.remove {
		e.walkBelief(b)
	}
	if s.self != nil {
		e.walkSubject(s.self)
	}
	for _, d := range s.dependents {
		e.walkMind(d.mind)
	}
}

func (e *encoder) walkBelief(b *Belief) {
	if b == nil || e.beliefs[b.ID] != nil {
		return
	}
	e.beliefs[b.ID] = b
	e.walkSubject(b.Subject)
	for _, base := range b.Bases {
		if base.Belief != nil {
			e.walkBelief(base.Belief)
		}
	}
	for _, v := range b.Traits {
		e.walkValue(v)
	}
}

func (e *encoder) walkValue(v Value) {
	switch val := v.(type) {
	case SubjectRef:
		if sub, ok := e.w.subjectsBySID[SID(val)]; ok {
			e.walkSubject(sub)
		}
	case ArrayValue:
		for _, it := range val {
			e.walkValue(it)
		}
	case FuzzyValue:
		for _, a := range val.F.Alternatives() {
			e.walkValue(a.Value)
		}
	case MindRef:
		if val.M != nil {
			e.walkMind(val.M)
		}
	case StateRef:
		if val.S != nil {
			e.walkState(val.S)
		}
	case BeliefRef:
		if val.B != nil {
			e.walkBelief(val.B)
		}
	case lazyMind:
		for _, r := range val.bases {
			e.walkRoot(r)
		}
		if val.own != nil {
			e.walkMind(val.own)
		}
	}
}

func (e *encoder) walkSubject(s *Subject) {
	if s == nil || e.subjects[s.SID] != nil {
		return
	}
	e.subjects[s.SID] = s
}

func (e *encoder) encodeMind(m *Mind) envelope {
	env := envelope{Type: "Mind", ID: uint64(m.id), Label: m.label}
	if m.parent != nil {
		p := uint64(m.parent.id)
		env.Parent = &p
	}
	if m.origin != nil {
		var id uint64
		switch v := m.origin.(type) {
		case *State:
			id = uint64(v.id)
		case *Convergence:
			id = uint64(v.id)
		}
		env.OriginRef = &id
	}
	return env
}

func (e *encoder) encodeState(s *State) envelope {
	env := envelope{Type: "State", ID: uint64(s.id), Mind: uint64(s.mind.id), TT: s.tt, VT: s.vt, Certainty: s.Certainty(), Locked: s.Locked()}
	if s.base != nil {
		var id uint64
		switch v := s.base.(type) {
		case *State:
			id = uint64(v.id)
		case *Convergence:
			id = uint64(v.id)
		}
		env.Base = &id
	}
	if s.ground != nil {
		g := uint64(s.ground.id)
		env.GroundState = &g
	}
	if s.self != nil {
		sid := uint64(s.self.SID)
		env.Self = &sid
	}
	for _, b := range s.insert {
		env.Insert = append(env.Insert, uint64(b.ID))
	}
	for _, b := range s.remove {
		env.Remove = append(env.Remove, uint64(b.ID))
	}
	return env
}

func (e *encoder) encodeConvergence(c *Convergence) envelope {
	env := envelope{Type: "Convergence", ID: uint64(c.id), Locked: c.Locked()}
	for _, comp := range c.components {
		var id uint64
		switch v := comp.(type) {
		case *State:
			id = uint64(v.id)
		case *Convergence:
			id = uint64(v.id)
		}
		env.Components = append(env.Components, id)
	}
	for _, b := range c.insert {
		env.Insert = append(env.Insert, uint64(b.ID))
	}
	if len(c.resolutions) > 0 {
		env.Resolutions = make(map[string]uint64, len(c.resolutions))
		for fromID, branch := range c.resolutions {
			var toID uint64
			switch v := branch.(type) {
			case *State:
				toID = uint64(v.id)
			case *Convergence:
				toID = uint64(v.id)
			}
			env.Resolutions[strconv.FormatUint(uint64(fromID), 10)] = toID
		}
	}
	return env
}

func (e *encoder) encodeSubject(s *Subject) envelope {
	env := envelope{Type: "Subject", SID: uint64(s.SID), Label: s.Label}
	if s.GroundMind != nil {
		g := uint64(s.GroundMind.id)
		env.GroundMind = &g
	}
	return env
}

func (e *encoder) encodeBelief(b *Belief) (envelope, error) {
	env := envelope{Type: "Belief", ID: uint64(b.ID), Label: b.Label, Subject: uint64(b.Subject.SID), Mind: uint64(b.Mind.id)}
	if b.About != nil {
		sid := uint64(b.About.SID)
		env.About = &sid
	}
	if b.Meta != nil {
		c := b.Meta.Certainty
		env.BranchCertainty = &c
	}
	for _, base := range b.Bases {
		if base.Belief != nil {
			id := uint64(base.Belief.ID)
			env.Bases = append(env.Bases, envBaseRef{Belief: &id})
		} else if base.Archetype != nil {
			env.Bases = append(env.Bases, envBaseRef{Archetype: base.Archetype.Label})
		}
	}

	labels := make([]string, 0, len(b.Traits))
	byLabel := make(map[string]Value, len(b.Traits))
	for tt, v := range b.Traits {
		labels = append(labels, tt.Label)
		byLabel[tt.Label] = v
	}
	sort.Strings(labels)
	for _, label := range labels {
		raw, err := encodeValue(byLabel[label])
		if err != nil {
			return envelope{}, err
		}
		env.Traits = append(env.Traits, envTraitEntry{Traittype: label, Value: raw})
	}
	return env, nil
}

// valueEnvelope is the on-disk shape of a stored trait Value.
type valueEnvelope struct {
	Type         string          `json:"_type"`
	Str          string          `json:"value,omitempty"`
	Num          float64         `json:"num,omitempty"`
	Bool         bool            `json:"bool,omitempty"`
	SID          uint64          `json:"sid,omitempty"`
	Items        []valueEnvelope `json:"items,omitempty"`
	Unknown      bool            `json:"unknown,omitempty"`
	Alternatives []altEnvelope   `json:"alternatives,omitempty"`
	MindID       uint64          `json:"mind_id,omitempty"`
	StateID      uint64          `json:"state_id,omitempty"`
	BeliefID     uint64          `json:"belief_id,omitempty"`
	LazyBases    []uint64        `json:"bases,omitempty"`
	LazyOwn      *uint64         `json:"own,omitempty"`
}

type altEnvelope struct {
	Value     valueEnvelope `json:"value"`
	Certainty float64       `json:"certainty"`
}

func encodeValue(v Value) (json.RawMessage, error) {
	ve, err := toValueEnvelope(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ve)
}

// EncodeValueJSON renders v using the same typed-envelope shape as the Mind
// serialization format, for callers outside the package that need a
// JSON-marshalable form of a trait value or recall result — the CLI's
// `recall` command and the read-only inspect server.
func EncodeValueJSON(v Value) (json.RawMessage, error) {
	return encodeValue(v)
}

func toValueEnvelope(v Value) (valueEnvelope, error) {
	switch val := v.(type) {
	case NullValue:
		return valueEnvelope{Type: "null"}, nil
	case StringValue:
		return valueEnvelope{Type: "string", Str: string(val)}, nil
	case NumberValue:
		return valueEnvelope{Type: "number", Num: float64(val)}, nil
	case BoolValue:
		return valueEnvelope{Type: "boolean", Bool: bool(val)}, nil
	case SubjectRef:
		return valueEnvelope{Type: "subject", SID: uint64(val)}, nil
	case ArrayValue:
		items := make([]valueEnvelope, 0, len(val))
		for _, it := range val {
			ie, err := toValueEnvelope(it)
			if err != nil {
				return valueEnvelope{}, err
			}
			items = append(items, ie)
		}
		return valueEnvelope{Type: "array", Items: items}, nil
	case FuzzyValue:
		if val.F.IsUnknown() {
			return valueEnvelope{Type: "Fuzzy", Unknown: true}, nil
		}
		alts := make([]altEnvelope, 0, len(val.F.Alternatives()))
		for _, a := range val.F.Alternatives() {
			ae, err := toValueEnvelope(a.Value)
			if err != nil {
				return valueEnvelope{}, err
			}
			alts = append(alts, altEnvelope{Value: ae, Certainty: a.Certainty})
		}
		return valueEnvelope{Type: "Fuzzy", Alternatives: alts}, nil
	case MindRef:
		if val.M == nil {
			return valueEnvelope{Type: "mind"}, nil
		}
		return valueEnvelope{Type: "mind", MindID: uint64(val.M.id)}, nil
	case StateRef:
		if val.S == nil {
			return valueEnvelope{Type: "state"}, nil
		}
		return valueEnvelope{Type: "state", StateID: uint64(val.S.id)}, nil
	case BeliefRef:
		if val.B == nil {
			return valueEnvelope{Type: "belief"}, nil
		}
		return valueEnvelope{Type: "belief", BeliefID: uint64(val.B.ID)}, nil
	case lazyMind:
		ve := valueEnvelope{Type: "LazyMind"}
		for _, r := range val.bases {
			switch rv := r.(type) {
			case *State:
				ve.LazyBases = append(ve.LazyBases, uint64(rv.id))
			case *Convergence:
				ve.LazyBases = append(ve.LazyBases, uint64(rv.id))
			}
		}
		if val.own != nil {
			o := uint64(val.own.id)
			ve.LazyOwn = &o
		}
		return ve, nil
	default:
		return valueEnvelope{}, errSerialization("unsupported value kind for serialization", nil)
	}
}

// Load parses a document produced by SaveMind and reconstructs the Mind
// graph into w in two phases: every envelope is instantiated by ID first,
// then cross-references are resolved and base/ground chains and
// resolutions are linked. The ID/SID allocators are advanced past the
// maximum observed ID.
func (w *World) Load(jsonStr string) (*Mind, error) {
	var doc document
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return nil, errSerialization("malformed document", map[string]interface{}{"error": err.Error()})
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	dec := &decoder{
		w:        w,
		minds:    map[uint64]*Mind{},
		states:   map[uint64]*State{},
		convs:    map[uint64]*Convergence{},
		beliefs:  map[uint64]*Belief{},
		subjects: map[uint64]*Subject{},
		envByID:  map[uint64]envelope{},
	}

	var maxID uint64
	var maxSID uint64
	for _, env := range doc.Entities {
		if env.ID > maxID {
			maxID = env.ID
		}
		if env.SID > maxSID {
			maxSID = env.SID
		}
		dec.envByID[env.ID] = env
		switch env.Type {
		case "Mind":
			m := &Mind{id: ID(env.ID), label: env.Label, world: w}
			dec.minds[env.ID] = m
		case "State":
			s := &State{id: ID(env.ID), tt: env.TT, vt: env.VT, certainty: env.Certainty, world: w, byLabel: make(map[string]*Belief)}
			dec.states[env.ID] = s
		case "Convergence":
			c := &Convergence{id: ID(env.ID), world: w, resolutions: make(map[ID]Root)}
			dec.convs[env.ID] = c
		case "Subject":
			sub := &Subject{SID: SID(env.SID), Label: env.Label, world: w}
			dec.subjects[env.SID] = sub
		case "Belief":
			b := &Belief{ID: ID(env.ID), Label: env.Label, Traits: map[*Traittype]Value{}, world: w}
			dec.beliefs[env.ID] = b
		}
	}

	for _, env := range doc.Entities {
		switch env.Type {
		case "Mind":
			m := dec.minds[env.ID]
			if env.Parent != nil {
				m.parent = dec.minds[*env.Parent]
				if m.parent != nil {
					m.parent.children = append(m.parent.children, m)
				}
			}
			if env.OriginRef != nil {
				m.origin = dec.root(*env.OriginRef)
			}
			for _, senv := range doc.Entities {
				if senv.Type == "State" && senv.Mind == env.ID {
					m.states = append(m.states, dec.states[senv.ID])
				}
			}
		case "State":
			s := dec.states[env.ID]
			s.mind = dec.minds[env.Mind]
			s.locked = env.Locked
			if env.Base != nil {
				s.base = dec.root(*env.Base)
				if bs, ok := s.base.(*State); ok {
					bs.branches = append(bs.branches, s)
				}
			}
			if env.GroundState != nil {
				s.ground = dec.states[*env.GroundState]
				if s.ground != nil {
					s.ground.dependents = append(s.ground.dependents, s)
				}
			}
			if env.Self != nil {
				s.self = dec.subjects[*env.Self]
			}
			if s.self != nil && s.ground != nil {
				if s.ground.childByHost == nil {
					s.ground.childByHost = make(map[SID]*State)
				}
				s.ground.childByHost[s.self.SID] = s
			}
			for _, bid := range env.Insert {
				b := dec.beliefs[bid]
				s.insert = append(s.insert, b)
				if b != nil {
					b.OriginState = s
					if b.Label != "" {
						s.byLabel[b.Label] = b
					}
				}
			}
			for _, bid := range env.Remove {
				s.remove = append(s.remove, dec.beliefs[bid])
			}
		case "Convergence":
			c := dec.convs[env.ID]
			c.locked = env.Locked
			for _, cid := range env.Components {
				c.components = append(c.components, dec.root(cid))
			}
			for _, bid := range env.Insert {
				c.insert = append(c.insert, dec.beliefs[bid])
			}
			for fromStr, toID := range env.Resolutions {
				fromID, err := strconv.ParseUint(fromStr, 10, 64)
				if err != nil {
					return nil, errSerialization("malformed resolution key", map[string]interface{}{"key": fromStr})
				}
				if branch := dec.root(toID); branch != nil {
					c.resolutions[ID(fromID)] = branch
				}
			}
		case "Subject":
			sub := dec.subjects[env.SID]
			if env.GroundMind != nil {
				sub.GroundMind = dec.minds[*env.GroundMind]
			}
		case "Belief":
			b := dec.beliefs[env.ID]
			if subj, ok := dec.subjects[env.Subject]; ok {
				b.Subject = subj
			}
			b.Mind = dec.minds[env.Mind]
			if env.About != nil {
				b.About = dec.subjects[*env.About]
			}
			if env.BranchCertainty != nil {
				b.Meta = &BranchMeta{Certainty: *env.BranchCertainty}
			}
			for _, base := range env.Bases {
				if base.Belief != nil {
					b.Bases = append(b.Bases, BaseRef{Belief: dec.beliefs[*base.Belief]})
				} else if base.Archetype != "" {
					if arch, ok := w.archetypes[base.Archetype]; ok {
						b.Bases = append(b.Bases, BaseRef{Archetype: arch})
					}
				}
			}
			for _, te := range env.Traits {
				tt, ok := w.traittypes[te.Traittype]
				if !ok {
					continue
				}
				v, err := dec.decodeValue(te.Value)
				if err != nil {
					return nil, err
				}
				b.Traits[tt] = v
			}
		}
	}

	for id, m := range dec.minds {
		w.mindsByID[ID(id)] = m
		if m.label != "" {
			w.mindsByName[m.label] = m
			w.labels[m.label] = struct{}{}
		}
	}
	for id, s := range dec.states {
		w.statesByID[ID(id)] = s
	}
	for id, b := range dec.beliefs {
		w.beliefsByID[ID(id)] = b
		if b.Label != "" {
			w.beliefsByName[b.Label] = b
			w.labels[b.Label] = struct{}{}
		}
	}
	for sid, sub := range dec.subjects {
		w.subjectsBySID[SID(sid)] = sub
		if sub.Label != "" {
			w.subjectsByName[sub.Label] = sub
			w.labels[sub.Label] = struct{}{}
		}
	}
	for _, b := range dec.beliefs {
		w.indexReverseTraits(b)
	}

	w.bumpIDFloor(ID(maxID))
	w.bumpSIDFloor(SID(maxSID))

	root, ok := dec.minds[doc.Root]
	if !ok {
		return nil, errSerialization("root mind not found in document", map[string]interface{}{"root": doc.Root})
	}
	return root, nil
}

type decoder struct {
	w        *World
	minds    map[uint64]*Mind
	states   map[uint64]*State
	convs    map[uint64]*Convergence
	beliefs  map[uint64]*Belief
	subjects map[uint64]*Subject
	envByID  map[uint64]envelope
}

func (d *decoder) root(id uint64) Root {
	if s, ok := d.states[id]; ok {
		return s
	}
	if c, ok := d.convs[id]; ok {
		return c
	}
	return nil
}

func (d *decoder) decodeValue(raw json.RawMessage) (Value, error) {
	var ve valueEnvelope
	if err := json.Unmarshal(raw, &ve); err != nil {
		return nil, errSerialization("malformed value envelope", map[string]interface{}{"error": err.Error()})
	}
	return d.fromValueEnvelope(ve)
}

func (d *decoder) fromValueEnvelope(ve valueEnvelope) (Value, error) {
	switch ve.Type {
	case "null":
		return NullValue{}, nil
	case "string":
		return StringValue(ve.Str), nil
	case "number":
		return NumberValue(ve.Num), nil
	case "boolean":
		return BoolValue(ve.Bool), nil
	case "subject":
		return SubjectRef(ve.SID), nil
	case "array":
		items := make(ArrayValue, 0, len(ve.Items))
		for _, it := range ve.Items {
			v, err := d.fromValueEnvelope(it)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case "Fuzzy":
		if ve.Unknown {
			return FuzzyValue{F: Unknown()}, nil
		}
		alts := make([]Alternative, 0, len(ve.Alternatives))
		for _, ae := range ve.Alternatives {
			v, err := d.fromValueEnvelope(ae.Value)
			if err != nil {
				return nil, err
			}
			alts = append(alts, Alternative{Value: v, Certainty: ae.Certainty})
		}
		return FuzzyValue{F: NewFuzzy(alts...)}, nil
	case "mind":
		return MindRef{M: d.minds[ve.MindID]}, nil
	case "state":
		return StateRef{S: d.states[ve.StateID]}, nil
	case "belief":
		return BeliefRef{B: d.beliefs[ve.BeliefID]}, nil
	case "LazyMind":
		lm := lazyMind{}
		for _, id := range ve.LazyBases {
			if r := d.root(id); r != nil {
				lm.bases = append(lm.bases, r)
			}
		}
		if ve.LazyOwn != nil {
			lm.own = d.minds[*ve.LazyOwn]
		}
		return lm, nil
	default:
		return nil, errSerialization("unknown value envelope type", map[string]interface{}{"type": ve.Type})
	}
}
