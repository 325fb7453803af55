package noumenon

// mindCacheKey is the (belief, query-state) pair the Mind-trait composition
// cache is keyed on: a composed Mind is built lazily on first read from a
// given query State and reused for that pair afterwards. The cache itself
// lives on World (a bounded LRU) rather than an unbounded per-belief map,
// so long sessions don't leak memory across many query states; a registry
// reset replaces the cache with a fresh, empty one.
type mindCacheKey struct {
	belief ID
	state  ID
}

// lazyMind is the own entry stored for a composable Mind trait: the actual
// Convergence is only built the first time the trait is read from a given
// query State (see Belief.resolveLazyMind), then memoized.
type lazyMind struct {
	bases []Root
	own   *Mind
}

func (lazyMind) isNoumenonValue() {}

// composeTrait runs creation-time composition for one
// composable Traittype on a Belief under construction (via FromTemplate,
// Replace or Branch). state supplies the query context FromTemplate's
// caller is building in, needed to resolve each base's latest value of the
// trait.
func (w *World) composeTrait(b *Belief, tt *Traittype, tpl Template, state *State) (Value, error) {
	if tpl.Kind == TplNull {
		return NullValue{}, nil
	}

	var contributions []Value
	for _, base := range b.Bases {
		var v Value
		var ok bool
		switch {
		case base.Belief != nil:
			v, ok = base.Belief.GetTrait(state, tt)
		case base.Archetype != nil:
			v, ok = base.Archetype.Values[tt]
		}
		if ok && !IsNull(v) {
			contributions = append(contributions, v)
		}
	}

	if len(contributions) == 1 && isEmptyTemplate(tpl) {
		return contributions[0], nil
	}
	if len(contributions) == 0 {
		return w.resolveTemplate(tt, tpl)
	}

	if tt.Kind == TraitMind {
		return w.lazyComposeMind(contributions, tpl)
	}
	return w.composeArrayValue(contributions, tt, tpl)
}

func isEmptyTemplate(tpl Template) bool {
	switch tpl.Kind {
	case TplNull:
		return true
	case TplArray:
		return len(tpl.Array) == 0
	case TplMind:
		return tpl.Mind == nil
	default:
		return false
	}
}

// emptyTemplateFor is the "template supplies nothing" placeholder used when
// a Belief's own template omits a composable trait entirely but one or more
// of its bases still contribute a value — composition still runs: an NPC
// with no explicit `inventory` still merges its bases' inventories.
func emptyTemplateFor(tt *Traittype) Template {
	if tt.Kind == TraitMind {
		return Template{Kind: TplMind}
	}
	return Template{Kind: TplArray}
}

// composeArrayValue concatenates contributions in base order, deduplicating
// by value identity, then appends the template's own list last.
func (w *World) composeArrayValue(contributions []Value, tt *Traittype, tpl Template) (Value, error) {
	var items []Value
	add := func(v Value) {
		for _, existing := range items {
			if valueEqual(existing, v) {
				return
			}
		}
		items = append(items, v)
	}
	for _, c := range contributions {
		if arr, ok := c.(ArrayValue); ok {
			for _, it := range arr {
				add(it)
			}
		} else {
			add(c)
		}
	}
	ownVal, err := w.resolveTemplate(tt, tpl)
	if err != nil {
		return nil, err
	}
	if arr, ok := ownVal.(ArrayValue); ok {
		for _, it := range arr {
			add(it)
		}
	} else if !IsNull(ownVal) {
		add(ownVal)
	}
	if !tt.validArrayArity(len(items)) {
		return nil, errArrayArity(tt.Label, len(items), tt.Min, tt.Max)
	}
	return ArrayValue(items), nil
}

// lazyComposeMind builds the Convergence-over-bases plan for a composable
// Mind trait, deferring the actual Convergence/Mind construction to first
// read (Belief.resolveLazyMind).
func (w *World) lazyComposeMind(contributions []Value, tpl Template) (Value, error) {
	var roots []Root
	for _, c := range contributions {
		if mr, ok := c.(MindRef); ok && mr.M != nil {
			roots = append(roots, mr.M.Origin())
		}
	}
	var own *Mind
	if tpl.Kind == TplMind {
		own = tpl.Mind
	}
	return lazyMind{bases: roots, own: own}, nil
}

// resolveLazyMind materializes (or fetches from World.mindCache) the
// Convergence-backed Mind for a composable Mind trait, as observed from
// state. The composed Mind and its Convergence are derivations scoped to
// the cache, constructed directly so the call stays safe from any lock
// context GetTrait runs under; they are reachable through the owning
// Belief's trait value, not the World registries.
func (b *Belief) resolveLazyMind(state *State, lm lazyMind) Value {
	key := mindCacheKey{belief: b.ID}
	if state != nil {
		key.state = state.id
	}
	if cached, ok := b.world.mindCache.Get(key); ok {
		return MindRef{M: cached}
	}
	roots := append([]Root{}, lm.bases...)
	if lm.own != nil {
		roots = append(roots, lm.own.Origin())
	}
	conv := &Convergence{
		id:          b.world.allocID(),
		world:       b.world,
		components:  roots,
		resolutions: make(map[ID]Root),
	}
	composed := &Mind{id: b.world.allocID(), world: b.world, origin: conv}
	b.world.mindCache.Add(key, composed)
	return MindRef{M: composed}
}

// autoComposeUnlisted runs composition for every composable Traittype that
// b's own template left unmentioned but that at least one of b's bases
// contributes a (non-null) value for. Without this pass, a Belief created
// with only `bases` and no explicit override for a composable trait would
// fall back to GetTrait's plain BFS (first base wins) instead of merging
// every contributing base.
func (w *World) autoComposeUnlisted(b *Belief, state *State) error {
	for _, tt := range w.traittypes {
		if !tt.Composable {
			continue
		}
		if _, already := b.Traits[tt]; already {
			continue
		}
		contributes := false
		for _, base := range b.Bases {
			var v Value
			var ok bool
			switch {
			case base.Belief != nil:
				v, ok = base.Belief.GetTrait(state, tt)
			case base.Archetype != nil:
				v, ok = base.Archetype.Values[tt]
			}
			if ok && !IsNull(v) {
				contributes = true
				break
			}
		}
		if !contributes {
			continue
		}
		v, err := w.composeTrait(b, tt, emptyTemplateFor(tt), state)
		if err != nil {
			return err
		}
		b.Traits[tt] = v
	}
	return nil
}
