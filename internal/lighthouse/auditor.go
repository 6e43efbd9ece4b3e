package lighthouse

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/lighthouse-runner/internal/execshell"
)

const (
	// DefaultTimeout bounds a single audit run.
	DefaultTimeout = 60 * time.Second
	// DefaultRuntimePath is the interpreter used to launch Lighthouse.
	DefaultRuntimePath = "node"
	// DefaultToolPath is the Lighthouse CLI entry point.
	DefaultToolPath = "lighthouse"

	chromeFlagsOptionConstant        = "--chrome-flags"
	chromeFlagsSeparatorConstant     = " "
	chromePathEnvironmentKeyConstant = "CHROME_PATH"
	disableDeviceEmulationConstant   = "--disable-device-emulation"
	disableCPUThrottlingConstant     = "--disable-cpu-throttling"
	disableNetworkThrottlingConstant = "--disable-network-throttling"
	executorNotConfiguredMessage     = "lighthouse auditor requires a command executor"
	auditStartedMessageConstant      = "lighthouse audit started"
	auditFailedMessageConstant       = "lighthouse audit failed"
	auditCompletedMessageConstant    = "lighthouse audit completed"
	targetURLLogFieldConstant        = "url"
	reportSizeLogFieldConstant       = "report_bytes"
)

// DefaultChromeFlags launches Chrome headless without GPU or sandbox.
var DefaultChromeFlags = []string{"--headless", "--disable-gpu", "--no-sandbox"}

// ErrExecutorNotConfigured is returned by NewAuditor when no executor is supplied.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessage)

// CommandExecutor runs a resolved command and classifies its outcome.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Auditor accumulates Lighthouse settings and runs audits with them.
type Auditor struct {
	executor             CommandExecutor
	logger               *zap.Logger
	timeout              time.Duration
	runtimePath          string
	toolPath             string
	environmentVariables map[string]string
	categories           []string
	options              optionList
	outputFormats        []OutputFormat
	defaultFormat        OutputFormat
	headers              map[string]string
	configPath           string
	configDocument       ConfigDocument
	ownedConfigPath      string
	temporaryDirectory   string
}

// NewAuditor constructs an Auditor with default settings that runs commands through executor.
func NewAuditor(executor CommandExecutor) (*Auditor, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	auditor := &Auditor{
		executor:             executor,
		logger:               zap.NewNop(),
		timeout:              DefaultTimeout,
		runtimePath:          DefaultRuntimePath,
		toolPath:             DefaultToolPath,
		environmentVariables: map[string]string{},
		outputFormats:        []OutputFormat{OutputFormatJSON},
		defaultFormat:        OutputFormatJSON,
		headers:              map[string]string{},
	}
	auditor.SetChromeFlags(DefaultChromeFlags...)

	return auditor, nil
}

// WithLogger attaches a logger for audit and config file diagnostics.
func (auditor *Auditor) WithLogger(logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	auditor.logger = logger
	return auditor
}

// WithTemporaryDirectory sets where generated config files are created; empty uses os.TempDir.
func (auditor *Auditor) WithTemporaryDirectory(directory string) *Auditor {
	auditor.temporaryDirectory = directory
	return auditor
}

// SetTimeout bounds each audit run. Non-positive durations are ignored.
func (auditor *Auditor) SetTimeout(timeout time.Duration) *Auditor {
	if timeout <= 0 {
		return auditor
	}
	auditor.timeout = timeout
	return auditor
}

// Timeout returns the duration applied to audit runs.
func (auditor *Auditor) Timeout() time.Duration {
	return auditor.timeout
}

// SetRuntimePath sets the interpreter that launches Lighthouse. An empty path runs the tool directly.
func (auditor *Auditor) SetRuntimePath(path string) *Auditor {
	auditor.runtimePath = path
	return auditor
}

// SetToolPath sets the Lighthouse CLI entry point.
func (auditor *Auditor) SetToolPath(path string) *Auditor {
	auditor.toolPath = path
	return auditor
}

// SetBinaryPaths sets both the interpreter and the Lighthouse entry point.
func (auditor *Auditor) SetBinaryPaths(runtimePath string, toolPath string) *Auditor {
	return auditor.SetRuntimePath(runtimePath).SetToolPath(toolPath)
}

// SetEnvironmentVariable adds a variable to the audit process environment.
func (auditor *Auditor) SetEnvironmentVariable(name string, value string) *Auditor {
	auditor.environmentVariables[name] = value
	return auditor
}

// SetChromePath selects the Chrome binary Lighthouse launches.
func (auditor *Auditor) SetChromePath(path string) *Auditor {
	return auditor.SetEnvironmentVariable(chromePathEnvironmentKeyConstant, path)
}

// EnvironmentVariables returns a copy of the variables injected into the audit process.
func (auditor *Auditor) EnvironmentVariables() map[string]string {
	return copyStringMap(auditor.environmentVariables)
}

// SetChromeFlags replaces the flags passed to the spawned Chrome instance.
func (auditor *Auditor) SetChromeFlags(flags ...string) *Auditor {
	if len(flags) == 0 {
		return auditor.RemoveOption(chromeFlagsOptionConstant)
	}
	auditor.options.set(KeyValueFlag(chromeFlagsOptionConstant, strings.Join(flags, chromeFlagsSeparatorConstant)))
	return auditor
}

// SetOption records a bare flag, replacing any existing entry with the same name.
func (auditor *Auditor) SetOption(flag string) *Auditor {
	auditor.options.set(BareFlag(flag))
	return auditor
}

// SetOptionValue records flag=value, replacing any existing entry with the same name.
func (auditor *Auditor) SetOptionValue(flag string, value string) *Auditor {
	auditor.options.set(KeyValueFlag(flag, value))
	return auditor
}

// RemoveOption drops the flag if present.
func (auditor *Auditor) RemoveOption(flag string) *Auditor {
	auditor.options.remove(flag)
	return auditor
}

// Option looks up a recorded flag by name.
func (auditor *Auditor) Option(flag string) (Flag, bool) {
	return auditor.options.lookup(flag)
}

// Options returns the recorded flags in the order they were first set.
func (auditor *Auditor) Options() []Flag {
	return auditor.options.snapshot()
}

// DisableDeviceEmulation turns off mobile device emulation.
func (auditor *Auditor) DisableDeviceEmulation() *Auditor {
	return auditor.SetOption(disableDeviceEmulationConstant)
}

// DisableCPUThrottling turns off simulated CPU throttling.
func (auditor *Auditor) DisableCPUThrottling() *Auditor {
	return auditor.SetOption(disableCPUThrottlingConstant)
}

// DisableNetworkThrottling turns off simulated network throttling.
func (auditor *Auditor) DisableNetworkThrottling() *Auditor {
	return auditor.SetOption(disableNetworkThrottlingConstant)
}

// SetHeaders replaces the extra HTTP headers sent with each request. An empty map clears them.
func (auditor *Auditor) SetHeaders(headers map[string]string) *Auditor {
	auditor.headers = copyStringMap(headers)
	return auditor
}

// Headers returns a copy of the extra HTTP headers.
func (auditor *Auditor) Headers() map[string]string {
	return copyStringMap(auditor.headers)
}

// Audit runs Lighthouse against targetURL and returns its standard output.
func (auditor *Auditor) Audit(executionContext context.Context, targetURL string) (string, error) {
	argumentVector, resolveError := auditor.ResolveCommand(targetURL)
	if resolveError != nil {
		return "", auditor.reportFailure(newAuditFailedError(targetURL, execshell.ExecutionResult{}, resolveError))
	}

	command := execshell.NewShellCommand(argumentVector, execshell.CommandDetails{
		EnvironmentVariables: auditor.EnvironmentVariables(),
		Timeout:              auditor.timeout,
	})

	auditor.logger.Debug(auditStartedMessageConstant, zap.String(targetURLLogFieldConstant, targetURL))
	executionResult, executionError := auditor.executor.Execute(executionContext, command)
	if executionError == nil && executionResult.ExitCode != 0 {
		executionError = execshell.CommandFailedError{Command: command, Result: executionResult}
	}
	if executionError != nil {
		return "", auditor.reportFailure(newAuditFailedError(targetURL, executionResult, executionError))
	}

	auditor.logger.Debug(
		auditCompletedMessageConstant,
		zap.String(targetURLLogFieldConstant, targetURL),
		zap.Int(reportSizeLogFieldConstant, len(executionResult.StandardOutput)),
	)
	return executionResult.StandardOutput, nil
}

func (auditor *Auditor) reportFailure(failure AuditFailedError) error {
	auditor.logger.Debug(auditFailedMessageConstant, zap.String(targetURLLogFieldConstant, failure.URL), zap.Error(failure))
	return failure
}

func copyStringMap(source map[string]string) map[string]string {
	duplicate := make(map[string]string, len(source))
	for key, value := range source {
		duplicate[key] = value
	}
	return duplicate
}
