package fuzzy_test

import (
	"testing"

	"github.com/fuzzylts/fuzzylts-go/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKnowledgeBase(t *testing.T) {
	kb, err := fuzzy.NewKnowledgeBase(fuzzy.Config{})
	require.NoError(t, err)
	assert.Len(t, kb.Rules, 25)
	assert.Equal(t, 15.0, kb.Output.LMin)
	assert.Equal(t, 50.0, kb.Output.LMax)
	assert.Equal(t, "vehicles", kb.Vehicle.Name)
	assert.Equal(t, fuzzy.DefaultSmallQueueThreshold, kb.SmallQueueThreshold)
	assert.Equal(t, fuzzy.DefaultResolution, kb.Resolution)
}

func TestKnowledgeBaseErrors(t *testing.T) {
	unknownLabel := twoLevelConfig()
	unknownLabel.Rules = append(unknownLabel.Rules, []string{"low", "slow", "forever"})

	shortRule := twoLevelConfig()
	shortRule.Rules = [][]string{{"low", "slow"}}

	noRules := twoLevelConfig()
	noRules.Rules = nil

	missingOutput := twoLevelConfig()
	missingOutput.OutputVariable = "duration"

	extraVariable := twoLevelConfig()
	extraVariable.Functions["speed"] = fuzzy.FunctionDef{LMin: 0, LMax: 1, Levels: []string{"a", "b"}}

	badLevels := twoLevelConfig()
	badLevels.Functions["green"] = fuzzy.FunctionDef{LMin: 10, LMax: 30, Levels: []string{"short"}}

	for name, c := range map[string]fuzzy.Config{
		"unknown label":  unknownLabel,
		"short rule":     shortRule,
		"no rules":       noRules,
		"missing output": missingOutput,
		"extra variable": extraVariable,
		"bad levels":     badLevels,
	} {
		_, err := fuzzy.NewKnowledgeBase(c)
		assert.ErrorIs(t, err, fuzzy.ErrConfiguration, name)
	}
}

func TestGenerateRules(t *testing.T) {
	c := fuzzy.Config{AutoRules: true}
	c.Functions = fuzzy.DefaultFunctions("vehicles", "arrival", "green")
	kb, err := fuzzy.NewKnowledgeBase(c)
	require.NoError(t, err)
	require.Len(t, kb.Rules, 25)

	find := func(v, a string) string {
		for _, r := range kb.Rules {
			if r.Vehicle == v && r.Arrival == a {
				return r.Output
			}
		}
		return ""
	}
	assert.Equal(t, "very_short", find("very_few", "very_slow"))
	assert.Equal(t, "short", find("normal", "slow"))
	assert.Equal(t, "normal", find("normal", "medium"))
	assert.Equal(t, "long", find("many", "medium"))
	assert.Equal(t, "very_long", find("many", "fast"))
}
