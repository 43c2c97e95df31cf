package stress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioSetHashStableUnderReordering(t *testing.T) {
	asOf := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	s1 := Scenario{ScenarioID: "S1", Name: "first", Type: TypeParametricShock, ShockConvention: MultReturn, ShockVector: map[string]float64{"AAPL": -0.1}}
	s2 := Scenario{ScenarioID: "S2", Name: "second", Type: TypeParametricShock, ShockConvention: MultReturn, ShockVector: map[string]float64{"AAPL": -0.2}}

	a := ScenarioSet{AsOf: asOf, MissingShockPolicy: MissingShockZeroWithWarning, Scenarios: []Scenario{s1, s2}}
	b := ScenarioSet{AsOf: asOf, MissingShockPolicy: MissingShockZeroWithWarning, Scenarios: []Scenario{s2, s1}}

	hashA, err := a.Hash()
	require.NoError(t, err)
	hashB, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB)
}

func TestScenarioSetValidateRejectsDuplicateScenarioIDs(t *testing.T) {
	s := Scenario{ScenarioID: "S1", Name: "dup", Type: TypeParametricShock, ShockConvention: MultReturn, ShockVector: map[string]float64{"AAPL": -0.1}}
	set := ScenarioSet{AsOf: time.Now().UTC(), MissingShockPolicy: MissingShockZeroWithWarning, Scenarios: []Scenario{s, s}}
	err := set.Validate()
	require.Error(t, err)
}

func TestScenarioValidateRejectsEmptyShockVector(t *testing.T) {
	s := Scenario{ScenarioID: "S1", Name: "empty", Type: TypeParametricShock, ShockConvention: MultReturn}
	require.Error(t, s.Validate())
}

func TestScenarioSetValidateRejectsConventionMismatch(t *testing.T) {
	s := Scenario{ScenarioID: "S1", Name: "mismatch", Type: TypeParametricShock, ShockConvention: MultFactor, ShockVector: map[string]float64{"AAPL": 0.9}}
	set := ScenarioSet{
		AsOf:               time.Now().UTC(),
		ShockConvention:    MultReturn,
		MissingShockPolicy: MissingShockZeroWithWarning,
		Scenarios:          []Scenario{s},
	}
	require.Error(t, set.Validate())
}
