package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
		expectedArgs    []string
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false, expectedArgs: []string{}},
		{name: "ImplicitTrue", arguments: []string{"--with-forks"}, expectedValue: true, expectedChanged: true, expectedArgs: []string{}},
		{name: "ExplicitYes", arguments: []string{"--with-forks", "yes"}, expectedValue: true, expectedChanged: true, expectedArgs: []string{}},
		{name: "ExplicitTrueUppercase", arguments: []string{"--with-forks", "TRUE"}, expectedValue: true, expectedChanged: true, expectedArgs: []string{}},
		{name: "ExplicitNo", arguments: []string{"--with-forks", "no"}, expectedValue: false, expectedChanged: true, expectedArgs: []string{}},
		{name: "EqualsForm", arguments: []string{"--with-forks=off"}, expectedValue: false, expectedChanged: true, expectedArgs: []string{}},
		{name: "Shorthand", arguments: []string{"-f", "y"}, expectedValue: true, expectedChanged: true, expectedArgs: []string{}},
		{name: "PositionalNotConsumed", arguments: []string{"--with-forks", "alice"}, expectedValue: true, expectedChanged: true, expectedArgs: []string{"alice"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var toggleValue bool
			AddToggleFlag(command.Flags(), &toggleValue, "with-forks", "f", false, "Mirror forks")

			normalizedArguments := NormalizeToggleArguments(command.Flags(), testCase.arguments)
			parseError := command.ParseFlags(normalizedArguments)
			require.NoError(t, parseError)

			require.Equal(t, testCase.expectedValue, toggleValue)
			require.Equal(t, testCase.expectedArgs, command.Flags().Args())

			flag := command.Flags().Lookup("with-forks")
			require.NotNil(t, flag)
			require.Equal(t, testCase.expectedChanged, flag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "dry-run", "", false, "Preview")

	parseError := command.ParseFlags([]string{"--dry-run=maybe"})
	require.Error(t, parseError)
	require.False(t, toggleValue)
}

func TestNormalizeToggleArgumentsIgnoresOtherFlags(t *testing.T) {
	command := &cobra.Command{}
	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "dry-run", "", false, "Preview")
	command.Flags().String("gh-user", "", "GitHub user")

	normalized := NormalizeToggleArguments(command.Flags(), []string{"--gh-user", "yes", "--dry-run", "no", "--", "--dry-run", "yes"})
	require.Equal(t, []string{"--gh-user", "yes", "--dry-run=no", "--", "--dry-run", "yes"}, normalized)
}
