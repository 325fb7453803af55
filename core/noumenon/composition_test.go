package noumenon

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildInventoryWorld registers the Thing/PortableObject/Person archetype
// family with a composable Array trait (inventory) of PortableObject-kind
// Subjects.
func buildInventoryWorld(t *testing.T) (*World, *Traittype) {
	t.Helper()
	w := NewWorld()
	err := w.Register(
		[]TraittypeSpec{
			{Label: "inventory", Kind: TraitArchetype, ArchetypeLabel: "PortableObject", Array: true, Max: Unbounded, Composable: true},
		},
		[]ArchetypeSpec{
			{Label: "Thing"},
			{Label: "PortableObject", Bases: []string{"Thing"}},
			{Label: "Person", Bases: []string{"Thing"}},
		},
		nil,
	)
	require.NoError(t, err)
	tt, ok := w.TraittypeByLabel("inventory")
	require.True(t, ok)
	return w, tt
}

func TestInheritanceComposition(t *testing.T) {
	w, inventory := buildInventoryWorld(t)
	state := w.RootState()

	token, err := state.FromTemplate(BeliefTemplate{Label: "token", Bases: []BaseSpec{{Label: "PortableObject"}}})
	require.NoError(t, err)
	sword, err := state.FromTemplate(BeliefTemplate{Label: "sword", Bases: []BaseSpec{{Label: "PortableObject"}}})
	require.NoError(t, err)

	villager, err := state.FromTemplate(BeliefTemplate{
		Label: "Villager_inst",
		Bases: []BaseSpec{{Label: "Person"}},
		Trait: map[string]Template{"inventory": TArray(TSubject(token.Subject))},
	})
	require.NoError(t, err)
	guard, err := state.FromTemplate(BeliefTemplate{
		Label: "Guard_inst",
		Bases: []BaseSpec{{Label: "Person"}},
		Trait: map[string]Template{"inventory": TArray(TSubject(sword.Subject))},
	})
	require.NoError(t, err)

	npc, err := state.FromTemplate(BeliefTemplate{
		Label: "NPC",
		Bases: []BaseSpec{{Belief: villager}, {Belief: guard}},
	})
	require.NoError(t, err)

	v, ok := npc.GetTrait(state, inventory)
	require.True(t, ok)
	arr, ok := v.(ArrayValue)
	require.True(t, ok)
	require.Len(t, arr, 2)

	var labels []string
	for _, item := range arr {
		ref := item.(SubjectRef)
		sub, ok := w.SubjectBySID(SID(ref))
		require.True(t, ok)
		labels = append(labels, sub.Label)
	}
	sort.Strings(labels)
	assert.Equal(t, []string{"sword", "token"}, labels)
}

func TestNullBlocksComposition(t *testing.T) {
	w, inventory := buildInventoryWorld(t)
	state := w.RootState()

	token, err := state.FromTemplate(BeliefTemplate{Label: "token2", Bases: []BaseSpec{{Label: "PortableObject"}}})
	require.NoError(t, err)

	villager, err := state.FromTemplate(BeliefTemplate{
		Label: "Villager_inst2",
		Bases: []BaseSpec{{Label: "Person"}},
		Trait: map[string]Template{"inventory": TArray(TSubject(token.Subject))},
	})
	require.NoError(t, err)

	blacksmith, err := state.FromTemplate(BeliefTemplate{
		Label: "Blacksmith",
		Bases: []BaseSpec{{Belief: villager}},
		Trait: map[string]Template{"inventory": TNull()},
	})
	require.NoError(t, err)

	npc, err := state.FromTemplate(BeliefTemplate{
		Label: "NPC2",
		Bases: []BaseSpec{{Belief: blacksmith}},
	})
	require.NoError(t, err)

	v, ok := npc.GetTrait(state, inventory)
	require.True(t, ok)
	assert.True(t, IsNull(v))
}

func TestEmptyArrayDoesNotBlockComposition(t *testing.T) {
	w, inventory := buildInventoryWorld(t)
	state := w.RootState()

	token, err := state.FromTemplate(BeliefTemplate{Label: "token3", Bases: []BaseSpec{{Label: "PortableObject"}}})
	require.NoError(t, err)
	villager, err := state.FromTemplate(BeliefTemplate{
		Label: "Villager_inst3",
		Bases: []BaseSpec{{Label: "Person"}},
		Trait: map[string]Template{"inventory": TArray(TSubject(token.Subject))},
	})
	require.NoError(t, err)

	npc, err := state.FromTemplate(BeliefTemplate{
		Label: "NPC3",
		Bases: []BaseSpec{{Belief: villager}},
		Trait: map[string]Template{"inventory": TArray()},
	})
	require.NoError(t, err)

	v, ok := npc.GetTrait(state, inventory)
	require.True(t, ok)
	arr, ok := v.(ArrayValue)
	require.True(t, ok)
	assert.Len(t, arr, 1)
}

func TestArrayArityViolation(t *testing.T) {
	w := NewWorld()
	err := w.Register(
		[]TraittypeSpec{{Label: "pair", Kind: TraitNumber, Array: true, Min: 2, Max: 2}},
		nil, nil,
	)
	require.NoError(t, err)
	state := w.RootState()
	_, err = state.FromTemplate(BeliefTemplate{
		Label: "bad",
		Trait: map[string]Template{"pair": TArray(TNumber(1))},
	})
	require.Error(t, err)
	nerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindArrayArityViolation, nerr.Kind)
}
