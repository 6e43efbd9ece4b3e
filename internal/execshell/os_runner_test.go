package execshell_test

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lighthouse-runner/internal/execshell"
)

const (
	testShellExecutableConstant     = "sh"
	testShellCommandFlagConstant    = "-c"
	testEnvironmentVariableConstant = "LIGHTHOUSE_RUNNER_TEST_MARKER"
	testEnvironmentValueConstant    = "chromium"
)

func requireShell(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(testShellExecutableConstant); lookupError != nil {
		testInstance.Skip("sh is not available")
	}
}

func TestOSCommandRunnerRun(testInstance *testing.T) {
	requireShell(testInstance)

	testCases := []struct {
		name             string
		script           string
		environment      map[string]string
		expectedOutput   string
		expectedError    string
		expectedExitCode int
	}{
		{
			name:           "captures_standard_output",
			script:         "printf '{\"categories\":{}}'",
			expectedOutput: "{\"categories\":{}}",
		},
		{
			name:           "injects_environment_variables",
			script:         "printf %s \"$" + testEnvironmentVariableConstant + "\"",
			environment:    map[string]string{testEnvironmentVariableConstant: testEnvironmentValueConstant},
			expectedOutput: testEnvironmentValueConstant,
		},
		{
			name:             "reports_exit_code",
			script:           "printf 'net::ERR' >&2; exit 3",
			expectedError:    "net::ERR",
			expectedExitCode: 3,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := execshell.NewOSCommandRunner()
			command := execshell.ShellCommand{
				Name: execshell.CommandName(testShellExecutableConstant),
				Details: execshell.CommandDetails{
					Arguments:            []string{testShellCommandFlagConstant, testCase.script},
					EnvironmentVariables: testCase.environment,
					Timeout:              10 * time.Second,
				},
			}

			result, runError := runner.Run(context.Background(), command)
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedOutput, result.StandardOutput)
			require.Equal(testInstance, testCase.expectedError, result.StandardError)
			require.Equal(testInstance, testCase.expectedExitCode, result.ExitCode)
		})
	}
}

func TestOSCommandRunnerTimeout(testInstance *testing.T) {
	requireShell(testInstance)

	runner := execshell.NewOSCommandRunner()
	command := execshell.ShellCommand{
		Name: execshell.CommandName(testShellExecutableConstant),
		Details: execshell.CommandDetails{
			Arguments: []string{testShellCommandFlagConstant, "exec sleep 5"},
			Timeout:   100 * time.Millisecond,
		},
	}

	_, runError := runner.Run(context.Background(), command)
	require.Error(testInstance, runError)
	require.ErrorIs(testInstance, runError, context.DeadlineExceeded)

	var timeoutError execshell.CommandTimeoutError
	require.True(testInstance, errors.As(runError, &timeoutError))
	require.Equal(testInstance, 100*time.Millisecond, timeoutError.Timeout)
}

func TestOSCommandRunnerSpawnFailure(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	missingExecutable := filepath.Join(testInstance.TempDir(), "missing-lighthouse")

	_, runError := runner.Run(context.Background(), execshell.ShellCommand{Name: execshell.CommandName(missingExecutable)})
	require.Error(testInstance, runError)

	var exitError *exec.ExitError
	require.False(testInstance, errors.As(runError, &exitError))
}
