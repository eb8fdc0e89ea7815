package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martenlienen/gogs-github-mirror/internal/utils"
)

const (
	testInvalidLogLevelConstant  = "verbose"
	testInvalidLogFormatConstant = "xml"
	testLogMessageConstant       = "logger_factory_test_message"
	testDebugMessageConstant     = "logger_factory_debug_message"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
		expectDebugOutput   bool
	}{
		{name: "debug_structured", requestedLogLevel: utils.LogLevelDebug, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true, expectDebugOutput: true},
		{name: "info_structured", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatStructured, expectStructuredLog: true},
		{name: "info_console", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormatConsole},
		{name: "unsupported_level", requestedLogLevel: utils.LogLevel(testInvalidLogLevelConstant), requestedLogFormat: utils.LogFormatStructured, expectError: true},
		{name: "unsupported_format", requestedLogLevel: utils.LogLevelInfo, requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant), expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			loggerFactory := utils.NewLoggerFactory()

			pipeReader, pipeWriter, pipeError := os.Pipe()
			require.NoError(testInstance, pipeError)

			originalStderr := os.Stderr
			os.Stderr = pipeWriter
			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			os.Stderr = originalStderr

			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				require.NoError(testInstance, pipeWriter.Close())
				require.NoError(testInstance, pipeReader.Close())
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			logger.Debug(testDebugMessageConstant)
			logger.Info(testLogMessageConstant)
			if syncError := logger.Sync(); syncError != nil {
				require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
			}

			require.NoError(testInstance, pipeWriter.Close())
			capturedOutput, readError := io.ReadAll(pipeReader)
			require.NoError(testInstance, readError)
			require.NoError(testInstance, pipeReader.Close())

			lines := bytes.Split(bytes.TrimSpace(capturedOutput), []byte("\n"))
			lastLine := lines[len(lines)-1]
			require.Contains(testInstance, string(lastLine), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(lastLine))
			require.Equal(testInstance, testCase.expectDebugOutput, bytes.Contains(capturedOutput, []byte(testDebugMessageConstant)))
		})
	}
}

func TestLogChoicesMatchFactory(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()
	for _, level := range utils.LogLevelChoices() {
		for _, format := range utils.LogFormatChoices() {
			logger, creationError := loggerFactory.CreateLogger(utils.LogLevel(level), utils.LogFormat(format))
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		}
	}
}
