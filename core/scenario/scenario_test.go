package scenario

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesListsEveryScenario(t *testing.T) {
	assert.Equal(t, []string{"inheritance", "null-composition", "recall", "certainty", "reverse-index"}, Names())
}

func TestRunRejectsUnknownScenario(t *testing.T) {
	_, err := Run("not-a-scenario")
	require.Error(t, err)
}

// TestRecallScenarioProducesTwoAlternativeSplit is the recall scenario's own
// documented claim (a bitemporal superposition over the wanderer's
// location, split 0.7/0.3 between town and forest) exercised end to end:
// the branch beliefs must be new versions of the wanderer's own Subject
// (built via Belief.Replace) for RecallBySubject to ever find them.
func TestRecallScenarioProducesTwoAlternativeSplit(t *testing.T) {
	out, err := Run("recall")
	require.NoError(t, err)

	result, ok := out.(map[string]interface{})
	require.True(t, ok)

	alts, ok := result["alternatives"].(map[string]float64)
	require.True(t, ok)
	require.Len(t, alts, 2, "expected both branch alternatives for the wanderer's location")

	townKey := subjectKey(t, result["town"].(string))
	forestKey := subjectKey(t, result["forest"].(string))

	assert.InDelta(t, 0.7, alts[townKey], 1e-9)
	assert.InDelta(t, 0.3, alts[forestKey], 1e-9)
}

// subjectKey turns a Sysdesig string like "Subject#7(town)" into the
// "subject#7" form recallScenario's alternatives map is keyed by.
func subjectKey(t *testing.T, sysdesig string) string {
	t.Helper()
	open := strings.Index(sysdesig, "#")
	shut := strings.Index(sysdesig, "(")
	require.True(t, open >= 0 && shut > open, "malformed Sysdesig %q", sysdesig)
	id, err := strconv.Atoi(sysdesig[open+1 : shut])
	require.NoError(t, err)
	return fmt.Sprintf("subject#%d", id)
}

func TestInheritanceScenarioComposesInventoryFromBothArchetypeBases(t *testing.T) {
	out, err := Run("inheritance")
	require.NoError(t, err)

	result, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.True(t, result["got_trait_ok"].(bool))
	assert.Len(t, result["inventory"].([]string), 2)
}

func TestCertaintyScenarioMultipliesBranchAndBeliefCertainty(t *testing.T) {
	out, err := Run("certainty")
	require.NoError(t, err)

	result, ok := out.(map[string]interface{})
	require.True(t, ok)
	expected := result["expected_combined_certainty"].(float64)
	assert.InDelta(t, 0.8*0.7, expected, 1e-9)

	recalled := result["recalled"].(map[string]float64)
	assert.InDelta(t, expected, recalled["true"], 1e-9)
}
