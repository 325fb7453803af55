// Package scenario builds small, self-contained worlds that exercise the
// composition engine, recall and serialization end to end, for the CLI's
// "scenario run" and "save" commands to demonstrate without a persistent
// server process.
package scenario

import (
	"fmt"
	"sort"

	"github.com/aigan/noumenon/core/noumenon"
)

// Names lists the scenario identifiers accepted by Run.
func Names() []string {
	return []string{"inheritance", "null-composition", "recall", "certainty", "reverse-index"}
}

// Run dispatches to the named scenario builder and returns a JSON-friendly
// summary of its outcome.
func Run(name string) (interface{}, error) {
	switch name {
	case "inheritance":
		return inheritanceScenario()
	case "null-composition":
		return nullCompositionScenario()
	case "recall":
		return recallScenario()
	case "certainty":
		return certaintyScenario()
	case "reverse-index":
		return reverseIndexScenario()
	default:
		return nil, fmt.Errorf("scenario: unknown scenario %q (want one of %v)", name, Names())
	}
}

func newGameWorld() (*noumenon.World, error) {
	w := noumenon.NewWorld()
	tts := []noumenon.TraittypeSpec{
		{Label: "inventory", Kind: noumenon.TraitSubject, Array: true, Max: noumenon.Unbounded, Composable: true},
		{Label: "name", Kind: noumenon.TraitString},
		{Label: "hostile", Kind: noumenon.TraitBoolean},
		{Label: "location", Kind: noumenon.TraitSubject},
		{Label: "owner", Kind: noumenon.TraitSubject},
	}
	archs := []noumenon.ArchetypeSpec{
		{Label: "Villager", Trait: map[string]noumenon.Template{
			"hostile": noumenon.TBool(false),
		}},
		{Label: "Guard", Trait: map[string]noumenon.Template{
			"hostile": noumenon.TBool(true),
		}},
	}
	if err := w.Register(tts, archs, nil); err != nil {
		return nil, err
	}
	return w, nil
}

// inheritanceScenario mirrors the worked example of an NPC with two
// belief bases (built on the Villager and Guard archetypes) whose composable inventory trait is
// merged from both bases even though the NPC's own template never mentions
// "inventory" (autoComposeUnlisted).
func inheritanceScenario() (interface{}, error) {
	w, err := newGameWorld()
	if err != nil {
		return nil, err
	}
	state := w.RootState()

	sword, err := state.FromTemplate(noumenon.BeliefTemplate{Label: "sword", Trait: map[string]noumenon.Template{"name": noumenon.TString("sword")}})
	if err != nil {
		return nil, err
	}
	shield, err := state.FromTemplate(noumenon.BeliefTemplate{Label: "shield", Trait: map[string]noumenon.Template{"name": noumenon.TString("shield")}})
	if err != nil {
		return nil, err
	}

	villager, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "villager_template",
		Bases: []noumenon.BaseSpec{{Label: "Villager"}},
		Trait: map[string]noumenon.Template{"inventory": noumenon.TSubject(sword.Subject)},
	})
	if err != nil {
		return nil, err
	}
	guard, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "guard_template",
		Bases: []noumenon.BaseSpec{{Label: "Guard"}},
		Trait: map[string]noumenon.Template{"inventory": noumenon.TSubject(shield.Subject)},
	})
	if err != nil {
		return nil, err
	}

	npc, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "npc_guard",
		Bases: []noumenon.BaseSpec{{Belief: villager}, {Belief: guard}},
	})
	if err != nil {
		return nil, err
	}

	inventoryTT, _ := w.TraittypeByLabel("inventory")
	v, ok := npc.GetTrait(state, inventoryTT)
	items := describeInventory(v)
	return map[string]interface{}{
		"npc":          npc.Sysdesig(),
		"got_trait_ok": ok,
		"inventory":    items,
	}, nil
}

func describeInventory(v noumenon.Value) []string {
	arr, ok := v.(noumenon.ArrayValue)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if ref, ok := item.(noumenon.SubjectRef); ok {
			out = append(out, fmt.Sprintf("subject#%d", ref))
		}
	}
	return out
}

// nullCompositionScenario demonstrates that an explicit null template value
// blocks composition entirely rather than falling back to a base's value.
func nullCompositionScenario() (interface{}, error) {
	w, err := newGameWorld()
	if err != nil {
		return nil, err
	}
	state := w.RootState()

	sword, err := state.FromTemplate(noumenon.BeliefTemplate{Label: "sword2", Trait: map[string]noumenon.Template{"name": noumenon.TString("sword")}})
	if err != nil {
		return nil, err
	}
	base, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "looter_base",
		Trait: map[string]noumenon.Template{"inventory": noumenon.TSubject(sword.Subject)},
	})
	if err != nil {
		return nil, err
	}
	robbed, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "robbed_npc",
		Bases: []noumenon.BaseSpec{{Belief: base}},
		Trait: map[string]noumenon.Template{"inventory": noumenon.TNull()},
	})
	if err != nil {
		return nil, err
	}

	inventoryTT, _ := w.TraittypeByLabel("inventory")
	v, ok := robbed.GetTrait(state, inventoryTT)
	return map[string]interface{}{
		"robbed_npc": robbed.Sysdesig(),
		"got_ok":     ok,
		"is_null":    noumenon.IsNull(v),
	}, nil
}

// recallScenario reproduces the bitemporal superposition example: two
// same-Mind branches at the same valid time, each with its own certainty,
// disagreeing about a Subject's location.
func recallScenario() (interface{}, error) {
	w, err := newGameWorld()
	if err != nil {
		return nil, err
	}
	root := w.Root()
	origin := w.RootState()

	npc, err := origin.FromTemplate(noumenon.BeliefTemplate{Label: "wanderer", Trait: map[string]noumenon.Template{"name": noumenon.TString("wanderer")}})
	if err != nil {
		return nil, err
	}
	town, err := origin.FromTemplate(noumenon.BeliefTemplate{Label: "town", Trait: map[string]noumenon.Template{"name": noumenon.TString("town")}})
	if err != nil {
		return nil, err
	}
	forest, err := origin.FromTemplate(noumenon.BeliefTemplate{Label: "forest", Trait: map[string]noumenon.Template{"name": noumenon.TString("forest")}})
	if err != nil {
		return nil, err
	}

	branchA, err := origin.BranchCertain(nil, 2, 0.7)
	if err != nil {
		return nil, err
	}
	branchB, err := origin.BranchCertain(nil, 2, 0.3)
	if err != nil {
		return nil, err
	}
	// Replace, not FromTemplate: each branch must produce a new version of
	// npc's own Subject, not an unrelated one, or RecallBySubject below would
	// never find them.
	if _, err := npc.Replace(branchA, map[string]noumenon.Template{"location": noumenon.TSubject(town.Subject)}); err != nil {
		return nil, err
	}
	if _, err := npc.Replace(branchB, map[string]noumenon.Template{"location": noumenon.TSubject(forest.Subject)}); err != nil {
		return nil, err
	}

	notion, err := root.RecallBySubject(origin, npc.Subject, 2, []string{"location"})
	if err != nil {
		return nil, err
	}
	fz, _ := notion.Trait("location")
	alts := map[string]float64{}
	for _, a := range fz.Alternatives() {
		if ref, ok := a.Value.(noumenon.SubjectRef); ok {
			alts[fmt.Sprintf("subject#%d", ref)] = a.Certainty
		}
	}
	return map[string]interface{}{
		"town":         town.Subject.Sysdesig(),
		"forest":       forest.Subject.Sysdesig(),
		"alternatives": alts,
	}, nil
}

// certaintyScenario layers a belief-level Branch (uncertain alternative, its
// own certainty) on top of a State-level branch weight, checking the
// product.
func certaintyScenario() (interface{}, error) {
	w, err := newGameWorld()
	if err != nil {
		return nil, err
	}
	root := w.Root()
	origin := w.RootState()

	npc, err := origin.FromTemplate(noumenon.BeliefTemplate{Label: "spy", Trait: map[string]noumenon.Template{"name": noumenon.TString("spy")}})
	if err != nil {
		return nil, err
	}
	allegiant, err := origin.FromTemplate(noumenon.BeliefTemplate{Label: "loyalty_true", Trait: map[string]noumenon.Template{"hostile": noumenon.TBool(false)}})
	if err != nil {
		return nil, err
	}

	branch, err := origin.BranchCertain(nil, 3, 0.8)
	if err != nil {
		return nil, err
	}
	if _, err := allegiant.Branch(branch, map[string]noumenon.Template{"hostile": noumenon.TBool(true)}, &noumenon.BranchMeta{Certainty: 0.7}); err != nil {
		return nil, err
	}

	notion, err := root.RecallBySubject(origin, allegiant.Subject, 3, []string{"hostile"})
	if err != nil {
		return nil, err
	}
	fz, _ := notion.Trait("hostile")
	result := map[string]float64{}
	for _, a := range fz.Alternatives() {
		if bv, ok := a.Value.(noumenon.BoolValue); ok {
			result[fmt.Sprintf("%v", bool(bv))] += a.Certainty
		}
	}
	_ = npc
	return map[string]interface{}{
		"expected_combined_certainty": 0.8 * 0.7,
		"recalled":                    result,
	}, nil
}

// reverseIndexScenario shows that RevTrait finds every Belief pointing at a
// Subject through a given traittype.
func reverseIndexScenario() (interface{}, error) {
	w, err := newGameWorld()
	if err != nil {
		return nil, err
	}
	state := w.RootState()

	castle, err := state.FromTemplate(noumenon.BeliefTemplate{Label: "castle", Trait: map[string]noumenon.Template{"name": noumenon.TString("castle")}})
	if err != nil {
		return nil, err
	}
	if _, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "guard_1",
		Trait: map[string]noumenon.Template{"location": noumenon.TSubject(castle.Subject)},
	}); err != nil {
		return nil, err
	}
	if _, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "guard_2",
		Trait: map[string]noumenon.Template{"location": noumenon.TSubject(castle.Subject)},
	}); err != nil {
		return nil, err
	}

	locationTT, _ := w.TraittypeByLabel("location")
	beliefs := castle.Subject.RevTrait(state, locationTT)
	labels := make([]string, 0, len(beliefs))
	for _, b := range beliefs {
		labels = append(labels, b.Sysdesig())
	}
	sort.Strings(labels)
	return map[string]interface{}{
		"castle":      castle.Subject.Sysdesig(),
		"occupants":   labels,
		"occupant_ct": len(labels),
	}, nil
}

// BuildSaveLoadDemo constructs the world exercised by the CLI's "save"
// command: a small but non-trivial graph (archetypes, subject references,
// a same-State Replace) worth round-tripping through SaveMind/World.Load.
func BuildSaveLoadDemo() (*noumenon.World, *noumenon.Mind, error) {
	w, err := newGameWorld()
	if err != nil {
		return nil, nil, err
	}
	state := w.RootState()

	sword, err := state.FromTemplate(noumenon.BeliefTemplate{Label: "demo_sword", Trait: map[string]noumenon.Template{"name": noumenon.TString("sword")}})
	if err != nil {
		return nil, nil, err
	}
	villager, err := state.FromTemplate(noumenon.BeliefTemplate{
		Label: "demo_villager",
		Bases: []noumenon.BaseSpec{{Label: "Villager"}},
		Trait: map[string]noumenon.Template{"inventory": noumenon.TSubject(sword.Subject)},
	})
	if err != nil {
		return nil, nil, err
	}
	if _, err := villager.Replace(state, map[string]noumenon.Template{"name": noumenon.TString("villager")}); err != nil {
		return nil, nil, err
	}
	return w, w.Root(), nil
}
