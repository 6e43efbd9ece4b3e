package audit_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/lighthouse-runner/internal/audit"
	"github.com/temirov/lighthouse-runner/internal/execshell"
	"github.com/temirov/lighthouse-runner/internal/lighthouse"
)

const (
	fakeRuntimeReportScriptConstant  = "#!/bin/sh\nprintf '{\"chrome\":\"%s\",\"arguments\":\"%s\"}' \"$CHROME_PATH\" \"$*\"\n"
	fakeRuntimeFailureScriptConstant = "#!/bin/sh\necho 'Unable to connect to Chrome' >&2\nexit 2\n"
	fakeRuntimeSlowScriptConstant    = "#!/bin/sh\nexec sleep 5\n"
)

func writeFakeRuntime(testInstance *testing.T, script string) string {
	testInstance.Helper()
	if runtime.GOOS == "windows" {
		testInstance.Skip("fake runtime relies on a POSIX shell")
	}
	runtimePath := filepath.Join(testInstance.TempDir(), "node")
	require.NoError(testInstance, os.WriteFile(runtimePath, []byte(script), 0o700))
	return runtimePath
}

func newProcessService(testInstance *testing.T, logger *zap.Logger, output *bytes.Buffer) *audit.Service {
	testInstance.Helper()
	executor, executorError := audit.ResolveExecutor(nil, logger, false)
	require.NoError(testInstance, executorError)
	service, serviceError := audit.NewService(logger, executor, output)
	require.NoError(testInstance, serviceError)
	return service
}

func TestServiceRunsSubprocess(testInstance *testing.T) {
	runtimePath := writeFakeRuntime(testInstance, fakeRuntimeReportScriptConstant)
	observedCore, observedLogs := observer.New(zap.DebugLevel)
	outputBuffer := &bytes.Buffer{}
	service := newProcessService(testInstance, zap.New(observedCore), outputBuffer)

	runError := service.Run(context.Background(), audit.CommandOptions{
		TargetURL:  serviceTestTargetURLConstant,
		NodePath:   runtimePath,
		ChromePath: "/usr/bin/chromium",
		Categories: []string{lighthouse.CategoryPerformance},
	})
	require.NoError(testInstance, runError)

	report := outputBuffer.String()
	require.True(testInstance, strings.HasPrefix(report, "{\"chrome\":\"/usr/bin/chromium\""))
	require.Contains(testInstance, report, "lighthouse --output=json --quiet --only-categories=performance "+serviceTestTargetURLConstant)
	require.Contains(testInstance, report, "--chrome-flags=--headless --disable-gpu --no-sandbox")
	require.NotZero(testInstance, observedLogs.FilterMessage("Audited "+serviceTestTargetURLConstant).Len())
}

func TestServiceReportsSubprocessFailure(testInstance *testing.T) {
	runtimePath := writeFakeRuntime(testInstance, fakeRuntimeFailureScriptConstant)
	service := newProcessService(testInstance, zap.NewNop(), &bytes.Buffer{})

	runError := service.Run(context.Background(), audit.CommandOptions{TargetURL: serviceTestTargetURLConstant, NodePath: runtimePath})
	require.Error(testInstance, runError)

	var auditFailure lighthouse.AuditFailedError
	require.True(testInstance, errors.As(runError, &auditFailure))
	require.Equal(testInstance, "Unable to connect to Chrome", auditFailure.Output)

	var commandFailure execshell.CommandFailedError
	require.True(testInstance, errors.As(runError, &commandFailure))
	require.Equal(testInstance, 2, commandFailure.Result.ExitCode)
}

func TestServiceReportsSubprocessTimeout(testInstance *testing.T) {
	runtimePath := writeFakeRuntime(testInstance, fakeRuntimeSlowScriptConstant)
	service := newProcessService(testInstance, zap.NewNop(), &bytes.Buffer{})

	runError := service.Run(context.Background(), audit.CommandOptions{
		TargetURL: serviceTestTargetURLConstant,
		NodePath:  runtimePath,
		Timeout:   100 * time.Millisecond,
	})
	require.Error(testInstance, runError)
	require.ErrorIs(testInstance, runError, context.DeadlineExceeded)

	var auditFailure lighthouse.AuditFailedError
	require.True(testInstance, errors.As(runError, &auditFailure))
	require.Equal(testInstance, serviceTestTargetURLConstant, auditFailure.URL)
}
