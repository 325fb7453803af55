package noumenon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateLockRejectsFurtherMutation(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register([]TraittypeSpec{{Label: "color", Kind: TraitString}}, nil, nil))
	origin := w.RootState()

	rock, err := origin.FromTemplate(BeliefTemplate{Label: "rock", Trait: map[string]Template{"color": TString("grey")}})
	require.NoError(t, err)

	origin.Lock()
	assert.True(t, origin.Locked())

	_, err = origin.FromTemplate(BeliefTemplate{Label: "pebble"})
	require.Error(t, err)
	assert.Equal(t, KindStateLocked, err.(*Error).Kind)

	_, err = rock.Replace(origin, map[string]Template{"color": TString("red")})
	require.Error(t, err)
	assert.Equal(t, KindStateLocked, err.(*Error).Kind)
}

// TestReplaceInOriginatingStateSurfacesNewVersion: a Replace performed in
// the very State the belief was created in leaves the predecessor in both
// insert and remove; lookup and iteration must surface the newest
// non-removed version, not the predecessor.
func TestReplaceInOriginatingStateSurfacesNewVersion(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register([]TraittypeSpec{{Label: "color", Kind: TraitString}}, nil, nil))
	origin := w.RootState()

	boulder, err := origin.FromTemplate(BeliefTemplate{Label: "boulder", Trait: map[string]Template{"color": TString("grey")}})
	require.NoError(t, err)
	red, err := boulder.Replace(origin, map[string]Template{"color": TString("red")})
	require.NoError(t, err)

	assert.Equal(t, red, origin.GetBeliefBySubject(boulder.Subject))

	var versions []*Belief
	for _, b := range origin.GetBeliefs() {
		if b.Subject == boulder.Subject {
			versions = append(versions, b)
		}
	}
	require.Len(t, versions, 1)
	assert.Equal(t, red, versions[0])

	// a second same-State replace keeps surfacing the newest version
	blue, err := red.Replace(origin, map[string]Template{"color": TString("blue")})
	require.NoError(t, err)
	assert.Equal(t, blue, origin.GetBeliefBySubject(boulder.Subject))
}

// TestLockPropagatesToChildMindStates checks the transitive seal: locking
// a ground State also locks any child-Mind State rooted at it.
func TestLockPropagatesToChildMindStates(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register(nil, nil, nil))
	origin := w.RootState()

	childMind, err := w.NewMind(w.Root(), "observerMind")
	require.NoError(t, err)
	npc, err := w.NewSubject("npc", childMind)
	require.NoError(t, err)
	npc2, err := w.NewSubject("npc2", childMind)
	require.NoError(t, err)

	child, err := origin.GetActiveStateByHost(npc)
	require.NoError(t, err)
	require.NotNil(t, child)
	assert.False(t, child.Locked())

	origin.Lock()
	assert.True(t, child.Locked())

	// a host already materialized stays reachable (cached) after lock
	again, err := origin.GetActiveStateByHost(npc)
	require.NoError(t, err)
	assert.Equal(t, child, again)

	// but no NEW child state may be created once the ground is locked
	fresh, err := origin.GetActiveStateByHost(npc2)
	require.NoError(t, err)
	assert.Nil(t, fresh)
}

func TestBranchGroundMindMismatch(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register(nil, nil, nil))
	origin := w.RootState()

	childMind, err := w.NewMind(w.Root(), "childMind")
	require.NoError(t, err)
	childOrigin, err := childMind.CreateState(origin, 0, 0, nil)
	require.NoError(t, err)

	otherMind, err := w.NewMind(nil, "otherMind")
	require.NoError(t, err)
	otherOrigin, err := otherMind.CreateState(nil, 0, 0, nil)
	require.NoError(t, err)

	_, err = childOrigin.Branch(otherOrigin, 1)
	require.Error(t, err)
	assert.Equal(t, KindGroundMindMismatch, err.(*Error).Kind)

	_, err = childOrigin.Branch(nil, 1)
	require.Error(t, err)
	assert.Equal(t, KindGroundMindMismatch, err.(*Error).Kind)
}

func TestBranchTimeRegressionRejected(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register(nil, nil, nil))
	origin := w.RootState()

	s1, err := origin.Branch(nil, 5)
	require.NoError(t, err)
	s2, err := s1.Branch(s1, 9)
	require.NoError(t, err)

	// origin's vt (0) is older than s2's own tt (5): grounding s2's next
	// fork on origin would walk transaction time backwards.
	_, err = s2.Branch(origin, 1)
	require.Error(t, err)
	assert.Equal(t, KindTimeRegression, err.(*Error).Kind)
}

func TestConvergenceFirstWinsAcrossComponents(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register([]TraittypeSpec{{Label: "hp", Kind: TraitNumber}}, nil, nil))
	origin := w.RootState()

	branchA, err := origin.Branch(nil, 1)
	require.NoError(t, err)
	branchB, err := origin.Branch(nil, 1)
	require.NoError(t, err)

	goblin, err := branchA.FromTemplate(BeliefTemplate{Label: "goblin", Trait: map[string]Template{"hp": TNumber(5)}})
	require.NoError(t, err)
	_, err = branchB.FromTemplate(BeliefTemplate{Label: "goblin_shadow_copy"})
	require.NoError(t, err)

	conv := w.NewConvergence(branchA, branchB)
	beliefs := conv.GetBeliefs()
	found := false
	for _, b := range beliefs {
		if b.Subject == goblin.Subject {
			found = true
			assert.Equal(t, goblin, b)
		}
	}
	assert.True(t, found)

	assert.Equal(t, goblin, conv.GetBeliefBySubject(goblin.Subject))

	require.NoError(t, conv.Insert(goblin))
	conv.Lock()
	assert.True(t, conv.Locked())
	err = conv.Insert(goblin)
	require.Error(t, err)
	assert.Equal(t, KindStateLocked, err.(*Error).Kind)

	err = conv.Remove(goblin)
	require.Error(t, err)
	assert.Equal(t, KindConvergenceImmutable, err.(*Error).Kind)
}

func TestConvergenceResolutionCollapsesToRegisteredBranch(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register(nil, nil, nil))
	origin := w.RootState()

	branchA, err := origin.Branch(nil, 1)
	require.NoError(t, err)
	branchB, err := origin.Branch(nil, 1)
	require.NoError(t, err)

	conv := w.NewConvergence(branchA, branchB)
	observer, err := branchA.Branch(branchA, 2)
	require.NoError(t, err)

	conv.RegisterResolution(observer, branchB)
	got, ok := conv.GetResolution(observer)
	require.True(t, ok)
	assert.Equal(t, Root(branchB), got)

	roots := conv.RevBase(nil, nil, observer)
	require.Len(t, roots, 1)
	assert.Equal(t, Root(branchB), roots[0])

	rootsNoQuery := conv.RevBase(nil, nil, nil)
	assert.Len(t, rootsNoQuery, 2)
}

// TestGetBeliefBySubjectHonorsRegisteredResolution exercises the resolution
// rule through actual belief lookup (not RevBase/GetResolution
// directly): a State whose base is a Convergence — the shape of the very
// first State of a composed Mind — must honor a registered resolution when
// answering GetBeliefBySubject, collapsing to the chosen branch instead of
// first-wins across components.
func TestGetBeliefBySubjectHonorsRegisteredResolution(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register([]TraittypeSpec{{Label: "hp", Kind: TraitNumber}}, nil, nil))
	origin := w.RootState()

	goblin, err := origin.FromTemplate(BeliefTemplate{Label: "goblin", Trait: map[string]Template{"hp": TNumber(5)}})
	require.NoError(t, err)

	branchA, err := origin.Branch(nil, 1)
	require.NoError(t, err)
	branchB, err := origin.Branch(nil, 1)
	require.NoError(t, err)

	goblinA, err := goblin.Replace(branchA, map[string]Template{"hp": TNumber(7)})
	require.NoError(t, err)
	goblinB, err := goblin.Replace(branchB, map[string]Template{"hp": TNumber(9)})
	require.NoError(t, err)

	conv := w.NewConvergence(branchA, branchB)

	composed, err := w.NewMind(nil, "")
	require.NoError(t, err)
	composedOrigin := &State{id: w.allocID(), mind: composed, base: conv, world: w, byLabel: map[string]*Belief{}}

	assert.Equal(t, goblinA, composedOrigin.GetBeliefBySubject(goblin.Subject))

	conv.RegisterResolution(composedOrigin, branchB)
	assert.Equal(t, goblinB, composedOrigin.GetBeliefBySubject(goblin.Subject))
}

func TestRegisterRollsBackOnFailure(t *testing.T) {
	w := NewWorld()
	before := w.Stats()

	err := w.Register(
		[]TraittypeSpec{{Label: "dup", Kind: TraitString}},
		[]ArchetypeSpec{
			{Label: "dup"},
		},
		nil,
	)
	require.Error(t, err)

	after := w.Stats()
	assert.Equal(t, before, after)
	_, ok := w.TraittypeByLabel("dup")
	assert.False(t, ok)
	_, ok = w.ArchetypeByLabel("dup")
	assert.False(t, ok)

	require.NoError(t, w.Register([]TraittypeSpec{{Label: "dup", Kind: TraitString}}, nil, nil))
}
