package noumenon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRevTraitTracksLatestVisibleVersion: the reverse index
// records every direct Subject-valued trait at belief-creation time, but
// RevTrait only surfaces a candidate when it is still the visible version
// for its Subject in the queried State's chain.
func TestRevTraitTracksLatestVisibleVersion(t *testing.T) {
	w := NewWorld()
	require.NoError(t, w.Register([]TraittypeSpec{{Label: "location", Kind: TraitSubject}}, nil, nil))
	origin := w.RootState()
	locationTT, ok := w.TraittypeByLabel("location")
	require.True(t, ok)

	townsquare, err := origin.FromTemplate(BeliefTemplate{Label: "townsquare"})
	require.NoError(t, err)
	market, err := origin.FromTemplate(BeliefTemplate{Label: "market"})
	require.NoError(t, err)
	alice, err := origin.FromTemplate(BeliefTemplate{
		Label: "alice",
		Trait: map[string]Template{"location": TSubject(townsquare.Subject)},
	})
	require.NoError(t, err)

	atTownsquare := townsquare.Subject.RevTrait(origin, locationTT)
	require.Len(t, atTownsquare, 1)
	assert.Equal(t, alice, atTownsquare[0])

	branch, err := origin.Branch(nil, 1)
	require.NoError(t, err)
	alice2, err := alice.Replace(branch, map[string]Template{"location": TSubject(market.Subject)})
	require.NoError(t, err)

	// from origin's own chain, alice's move hasn't happened yet
	assert.Len(t, townsquare.Subject.RevTrait(origin, locationTT), 1)
	assert.Empty(t, market.Subject.RevTrait(origin, locationTT))

	// from branch, alice is no longer at townsquare but now at market
	assert.Empty(t, townsquare.Subject.RevTrait(branch, locationTT))
	atMarket := market.Subject.RevTrait(branch, locationTT)
	require.Len(t, atMarket, 1)
	assert.Equal(t, alice2, atMarket[0])

	// the Belief-level convenience matches the Subject-level result
	assert.Equal(t, atMarket, alice2.RevTrait(branch, locationTT))
}
