package noumenon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHammerWorld(t *testing.T) (*World, *Mind, *State) {
	t.Helper()
	w := NewWorld()
	err := w.Register(
		[]TraittypeSpec{
			{Label: "color", Kind: TraitString},
			{Label: "weight", Kind: TraitNumber},
			{Label: "location", Kind: TraitSubject},
		},
		nil, nil,
	)
	require.NoError(t, err)
	return w, w.Root(), w.RootState()
}

// TestBitemporalRecallSuperposition: two same-Mind
// branches at the same vt disagree about a Subject's location, each
// carrying its own branch certainty; recall must merge both into one Fuzzy.
func TestBitemporalRecallSuperposition(t *testing.T) {
	w, root, origin := buildHammerWorld(t)
	_ = w

	workshop, err := origin.FromTemplate(BeliefTemplate{Label: "workshop"})
	require.NoError(t, err)
	shed, err := origin.FromTemplate(BeliefTemplate{Label: "shed"})
	require.NoError(t, err)
	hammer, err := origin.FromTemplate(BeliefTemplate{
		Label: "hammer",
		Trait: map[string]Template{"color": TString("black")},
	})
	require.NoError(t, err)

	branchA, err := origin.BranchCertain(nil, 2, 0.7)
	require.NoError(t, err)
	branchB, err := origin.BranchCertain(nil, 2, 0.3)
	require.NoError(t, err)

	_, err = hammer.Replace(branchA, map[string]Template{"location": TSubject(workshop.Subject)})
	require.NoError(t, err)
	_, err = hammer.Replace(branchB, map[string]Template{"location": TSubject(shed.Subject)})
	require.NoError(t, err)

	notion, err := root.RecallBySubject(origin, hammer.Subject, 2, []string{"location"})
	require.NoError(t, err)

	fz, ok := notion.Trait("location")
	require.True(t, ok)
	alts := fz.Alternatives()
	require.Len(t, alts, 2)

	got := map[SID]float64{}
	for _, a := range alts {
		ref := a.Value.(SubjectRef)
		got[SID(ref)] = a.Certainty
	}
	assert.InDelta(t, 0.7, got[workshop.Subject.SID], 1e-9)
	assert.InDelta(t, 0.3, got[shed.Subject.SID], 1e-9)
}

// TestCertaintyCombination: a belief-level Branch
// certainty multiplies into the State-level branch certainty.
func TestCertaintyCombination(t *testing.T) {
	w, root, origin := buildHammerWorld(t)
	_ = w

	hammer, err := origin.FromTemplate(BeliefTemplate{
		Label: "hammer2",
		Trait: map[string]Template{"weight": TNumber(1)},
	})
	require.NoError(t, err)

	branch, err := origin.BranchCertain(nil, 2, 0.7)
	require.NoError(t, err)

	_, err = hammer.Branch(branch, map[string]Template{"weight": TNumber(2)}, &BranchMeta{Certainty: 0.8})
	require.NoError(t, err)

	notion, err := root.RecallBySubject(origin, hammer.Subject, 2, []string{"weight"})
	require.NoError(t, err)
	fz, ok := notion.Trait("weight")
	require.True(t, ok)
	require.Len(t, fz.Alternatives(), 1)
	assert.InDelta(t, 0.56, fz.Alternatives()[0].Certainty, 1e-9)
}

// TestCertaintyClampedToOne: alternatives merging to the same value should
// never report combined mass above 1.0.
func TestCertaintyClampedToOne(t *testing.T) {
	alts := []Alternative{
		{Value: StringValue("x"), Certainty: 0.7},
		{Value: StringValue("x"), Certainty: 0.6},
	}
	merged := mergeAlternatives(alts)
	require.Len(t, merged.Alternatives(), 1)
	assert.Equal(t, 1.0, merged.Alternatives()[0].Certainty)
}

// TestValidAtPicksLargestTTNotExceedingTarget exercises the bitemporal
// "commit" idiom: a tentative future-vt fork is later re-grounded on
// itself, advancing tt to that fork's own vt.
func TestValidAtPicksLargestTTNotExceedingTarget(t *testing.T) {
	w, root, origin := buildHammerWorld(t)
	_ = w

	hammer, err := origin.FromTemplate(BeliefTemplate{Label: "hammer3", Trait: map[string]Template{"color": TString("black")}})
	require.NoError(t, err)

	s1, err := origin.Branch(nil, 3)
	require.NoError(t, err)
	red, err := hammer.Replace(s1, map[string]Template{"color": TString("red")})
	require.NoError(t, err)

	s2, err := s1.Branch(s1, 7)
	require.NoError(t, err)
	blue, err := red.Replace(s2, map[string]Template{"color": TString("blue")})
	require.NoError(t, err)

	assert.Equal(t, hammer, root.ValidAt(hammer.Subject, 0))
	assert.Equal(t, blue, root.ValidAt(hammer.Subject, 3))
	assert.Equal(t, blue, root.ValidAt(hammer.Subject, 100))
}
