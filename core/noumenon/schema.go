package noumenon

// TraittypeSpec is the input shape for one entry in Register's traittypes
// map: everything needed to construct a Traittype, before the Traittype
// itself is allocated an ID.
type TraittypeSpec struct {
	Label          string
	Kind           TraitKind
	ArchetypeLabel string
	EnumValues     []string
	Array          bool
	Min, Max       int
	Composable     bool
	MindScope      MindScope
	Exposure       string
}

// ArchetypeSpec is the input shape for one entry in Register's archetypes
// (or prototypes) map: a label, an ordered list of base archetype labels,
// and a map of default trait templates.
type ArchetypeSpec struct {
	Label string
	Bases []string
	Trait map[string]Template
}

// Register loads a declarative world schema: traittypes, then archetypes (including the "prototypes" map, which are
// archetypes in every respect except that callers additionally expect a
// canonical Belief for each — see archetypeProtoBelief). Registration is
// two-pass: every Traittype and bare Archetype (with its Bases resolved)
// is registered first, then every Archetype's own Raw template values are
// resolved against the now-complete Traittype/Archetype registries. A
// failure in either pass is fatal for the whole call; the registries are
// restored to what they held before Register was invoked (IDs already
// allocated are not reused).
//
// Pass two runs sequentially: resolving a reference-valued template may
// lazily mint an archetype's shared belief (and its Subject), mutating the
// subject/belief registries, so per-archetype resolution is not independent.
func (w *World) Register(traittypes []TraittypeSpec, archetypes []ArchetypeSpec, prototypes []ArchetypeSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.idMu.Lock()
	floor := ID(w.nextID)
	w.idMu.Unlock()

	if err := w.registerTraittypesLocked(traittypes); err != nil {
		w.rollbackRegisterLocked(traittypes, nil, floor)
		return err
	}

	all := append(append([]ArchetypeSpec{}, archetypes...), prototypes...)
	if err := w.registerArchetypeShellsLocked(all); err != nil {
		w.rollbackRegisterLocked(traittypes, all, floor)
		return err
	}
	if err := w.resolveArchetypeTemplatesLocked(all); err != nil {
		w.rollbackRegisterLocked(traittypes, all, floor)
		return err
	}
	return nil
}

// rollbackRegisterLocked undoes a failed Register call's partial effects:
// a template-resolution error is fatal for the whole registration call and
// must leave the registry clean. Only traittypes/archetypes named in this
// call's specs and created by it (ID above floor, the allocator's value
// when the call began) are touched; specs that collided with a pre-existing
// label are left alone (claimLabel never added them). Shared beliefs that
// archetypeProtoBelief minted during the call are removed as well.
func (w *World) rollbackRegisterLocked(traittypes []TraittypeSpec, archetypes []ArchetypeSpec, floor ID) {
	for _, spec := range traittypes {
		if tt, ok := w.traittypes[spec.Label]; ok && tt.ID > floor {
			delete(w.traittypes, spec.Label)
			w.releaseLabel(spec.Label)
		}
	}
	for _, spec := range archetypes {
		if a, ok := w.archetypes[spec.Label]; ok && a.ID > floor {
			delete(w.archetypes, spec.Label)
			w.releaseLabel(spec.Label)
		}
	}
	for id, b := range w.beliefsByID {
		if id > floor {
			delete(w.beliefsByID, id)
			delete(w.subjectsBySID, b.Subject.SID)
		}
	}
	for _, a := range w.archetypes {
		if a.proto != nil && a.proto.ID > floor {
			a.proto = nil
		}
	}
}

func (w *World) registerTraittypesLocked(specs []TraittypeSpec) error {
	for _, spec := range specs {
		if err := w.claimLabel(spec.Label); err != nil {
			return err
		}
		tt := &Traittype{
			ID:             w.allocID(),
			Label:          spec.Label,
			Kind:           spec.Kind,
			ArchetypeLabel: spec.ArchetypeLabel,
			EnumValues:     spec.EnumValues,
			Array:          spec.Array,
			Min:            spec.Min,
			Max:            spec.Max,
			Composable:     spec.Composable,
			MindScope:      spec.MindScope,
			Exposure:       spec.Exposure,
		}
		w.traittypes[spec.Label] = tt
	}
	return nil
}

func (w *World) registerArchetypeShellsLocked(specs []ArchetypeSpec) error {
	for _, spec := range specs {
		if err := w.claimLabel(spec.Label); err != nil {
			return err
		}
		w.archetypes[spec.Label] = &Archetype{
			ID:    w.allocID(),
			Label: spec.Label,
			Raw:   map[*Traittype]Template{},
		}
	}
	for _, spec := range specs {
		a := w.archetypes[spec.Label]
		for _, baseLabel := range spec.Bases {
			base, ok := w.archetypes[baseLabel]
			if !ok {
				return errUnknownArchetype(baseLabel)
			}
			a.Bases = append(a.Bases, base)
		}
		for label, tpl := range spec.Trait {
			tt, ok := w.traittypes[label]
			if !ok {
				return errSchema("unknown traittype in archetype template", map[string]interface{}{
					"archetype": spec.Label, "traittype": label,
				})
			}
			a.Raw[tt] = tpl
		}
	}
	return nil
}

func (w *World) resolveArchetypeTemplatesLocked(specs []ArchetypeSpec) error {
	results := make([]map[*Traittype]Value, len(specs))
	for i, spec := range specs {
		a := w.archetypes[spec.Label]
		values := make(map[*Traittype]Value, len(a.Raw))
		for tt, tpl := range a.Raw {
			v, err := w.resolveTemplate(tt, tpl)
			if err != nil {
				return err
			}
			values[tt] = v
		}
		results[i] = values
	}
	for i, spec := range specs {
		w.archetypes[spec.Label].Values = results[i]
	}
	return nil
}
