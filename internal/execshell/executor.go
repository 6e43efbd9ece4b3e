package execshell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	commandNodeStringConstant       = "node"
	commandLighthouseStringConstant = "lighthouse"

	loggerNotConfiguredMessageConstant        = "shell executor requires a logger"
	commandRunnerNotConfiguredMessageConstant = "shell executor requires a command runner"
	commandFailedErrorTemplateConstant        = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %s"
	commandTimeoutErrorTemplateConstant       = "command timed out after %s"
	commandNameLogFieldConstant               = "command"
	commandArgumentsLogFieldConstant          = "arguments"
	commandTimeoutLogFieldConstant            = "timeout"
	commandExitCodeLogFieldConstant           = "exit_code"
)

// CommandName identifies the executable launched for a shell command.
type CommandName string

// Executables known to the lighthouse runner.
const (
	CommandNode       CommandName = CommandName(commandNodeStringConstant)
	CommandLighthouse CommandName = CommandName(commandLighthouseStringConstant)
)

// CommandDetails describes the arguments and process settings of an invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	Timeout              time.Duration
}

// ShellCommand combines an executable name with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs shell commands and reports their raw results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Sentinel errors returned by NewShellExecutor.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command and its standard error output.
func (failure CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(
		commandFailedErrorTemplateConstant,
		string(failure.Command.Name),
		failure.Result.ExitCode,
		formatter.formatStandardErrorSuffix(failure.Result.StandardError),
	)
}

// CommandExecutionError reports a command that could not produce an execution result.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the command and the underlying cause.
func (failure CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, string(failure.Command.Name), formatter.describeFailure(failure.Cause))
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// CommandTimeoutError reports a command terminated because it exceeded its timeout.
// Result holds whatever output was captured before termination.
type CommandTimeoutError struct {
	Timeout time.Duration
	Result  ExecutionResult
}

// Error describes the exceeded timeout.
func (failure CommandTimeoutError) Error() string {
	return fmt.Sprintf(commandTimeoutErrorTemplateConstant, failure.Timeout)
}

// Unwrap reports context.DeadlineExceeded so callers can detect timeouts with errors.Is.
func (failure CommandTimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// ShellExecutor runs commands through a CommandRunner, logging and classifying each outcome.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor that discards lifecycle events.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs a ShellExecutor that forwards lifecycle events to observer.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, runner: runner, observer: observer, formatter: CommandMessageFormatter{}}, nil
}

// Execute runs the command. A non-zero exit code yields CommandFailedError; a runner failure yields CommandExecutionError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	executor.observer.CommandStarted(command)
	executor.logger.Info(
		executor.formatter.BuildStartedMessage(command),
		zap.String(commandNameLogFieldConstant, string(command.Name)),
		zap.Strings(commandArgumentsLogFieldConstant, command.Details.Arguments),
		zap.Duration(commandTimeoutLogFieldConstant, command.Details.Timeout),
	)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError))
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Warn(
			executor.formatter.BuildFailureMessage(command, executionResult),
			zap.Int(commandExitCodeLogFieldConstant, executionResult.ExitCode),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessage(command))
	return executionResult, nil
}

// NewShellCommand splits an argument vector into the executable and its arguments.
func NewShellCommand(argumentVector []string, details CommandDetails) ShellCommand {
	if len(argumentVector) == 0 {
		return ShellCommand{Details: details}
	}
	details.Arguments = append([]string{}, argumentVector[1:]...)
	return ShellCommand{Name: CommandName(argumentVector[0]), Details: details}
}
