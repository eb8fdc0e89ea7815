package cli_test

import (
	"bytes"
	"testing"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/martenlienen/gogs-github-mirror/cmd/cli"
	"github.com/martenlienen/gogs-github-mirror/internal/mirror"
)

func decodeEmbeddedConfiguration(testInstance *testing.T) cli.ApplicationConfiguration {
	testInstance.Helper()
	content, configurationType := cli.EmbeddedDefaultConfiguration()

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(content)))

	var configuration cli.ApplicationConfiguration
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	require.NoError(testInstance, viperInstance.Unmarshal(&configuration, decodeHook))
	return configuration
}

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configuration := decodeEmbeddedConfiguration(testInstance)

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Equal(testInstance, "https://api.github.com/", configuration.Source.APIURL)
	require.Equal(testInstance, mirror.AuthSchemeBasic, configuration.Source.AuthScheme)
	require.Equal(testInstance, 100, configuration.Source.PerPage)
	require.Equal(testInstance, mirror.TokenPlacementQuery, configuration.Target.TokenPlacement)
	require.False(testInstance, configuration.Mirror.WithForks)
	require.False(testInstance, configuration.Mirror.DryRun)
	require.Equal(testInstance, time.Duration(0), configuration.Mirror.HTTPTimeout)
}

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	configuration := decodeEmbeddedConfiguration(testInstance)
	defaults := mirror.DefaultCommandConfiguration()

	require.Equal(testInstance, defaults.Source.APIURL, configuration.Source.APIURL)
	require.Equal(testInstance, defaults.Source.AuthScheme, configuration.Source.AuthScheme)
	require.Equal(testInstance, defaults.Target.TokenPlacement, configuration.Target.TokenPlacement)
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	first, _ := cli.EmbeddedDefaultConfiguration()
	first[0] = '#'

	second, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)
	require.NotEqual(testInstance, byte('#'), second[0])
}
