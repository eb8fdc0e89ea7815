package credentials_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martenlienen/gogs-github-mirror/internal/credentials"
)

func TestParseTokenSource(testInstance *testing.T) {
	testCases := []struct {
		name          string
		value         string
		expected      credentials.TokenSource
		expectedError string
	}{
		{name: "bare_environment_name", value: "GITHUB_TOKEN", expected: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "GITHUB_TOKEN"}},
		{name: "environment_prefix", value: " env:GOGS_TOKEN ", expected: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "GOGS_TOKEN"}},
		{name: "file_prefix", value: "FILE:/etc/token", expected: credentials.TokenSource{Type: credentials.TokenSourceTypeFile, Reference: "/etc/token"}},
		{name: "empty_value", value: "  ", expectedError: "token source must be provided"},
		{name: "empty_environment_name", value: "env:", expectedError: "environment variable name must be provided"},
		{name: "empty_file_path", value: "file: ", expectedError: "token file path must be provided"},
		{name: "unsupported_type", value: "vault:secret", expectedError: "unsupported token source type"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := credentials.ParseTokenSource(testCase.value)
			if len(testCase.expectedError) > 0 {
				require.ErrorContains(testInstance, parseError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, source)
		})
	}
}

func TestTokenResolverResolveToken(testInstance *testing.T) {
	tokenDirectory := testInstance.TempDir()
	tokenPath := filepath.Join(tokenDirectory, "token")
	require.NoError(testInstance, os.WriteFile(tokenPath, []byte("  file-token\n"), 0o600))
	emptyTokenPath := filepath.Join(tokenDirectory, "empty")
	require.NoError(testInstance, os.WriteFile(emptyTokenPath, []byte("\n"), 0o600))

	environment := map[string]string{"GOGS_TOKEN": " env-token ", "BLANK_TOKEN": "   "}
	lookup := func(key string) (string, bool) {
		value, found := environment[key]
		return value, found
	}

	testCases := []struct {
		name          string
		source        credentials.TokenSource
		fileReader    credentials.FileReader
		expectedToken string
		expectedError string
	}{
		{name: "environment", source: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "GOGS_TOKEN"}, expectedToken: "env-token"},
		{name: "environment_missing", source: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "MISSING"}, expectedError: "environment variable MISSING is not set"},
		{name: "environment_blank", source: credentials.TokenSource{Type: credentials.TokenSourceTypeEnvironment, Reference: "BLANK_TOKEN"}, expectedError: "is not set"},
		{name: "file", source: credentials.TokenSource{Type: credentials.TokenSourceTypeFile, Reference: tokenPath}, expectedToken: "file-token"},
		{name: "file_empty", source: credentials.TokenSource{Type: credentials.TokenSourceTypeFile, Reference: emptyTokenPath}, expectedError: "is empty"},
		{
			name:   "file_read_failure",
			source: credentials.TokenSource{Type: credentials.TokenSourceTypeFile, Reference: "/unreadable"},
			fileReader: func(string) ([]byte, error) {
				return nil, errors.New("permission denied")
			},
			expectedError: "unable to read token file /unreadable: permission denied",
		},
		{name: "unknown_type", source: credentials.TokenSource{Type: "vault"}, expectedError: "unsupported token source type"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := credentials.NewTokenResolver(lookup, testCase.fileReader)
			token, resolveError := resolver.ResolveToken(testCase.source)
			if len(testCase.expectedError) > 0 {
				require.ErrorContains(testInstance, resolveError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}
