package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	flagPrefixConstant                      = "-"
	flagValueSeparatorConstant              = "="
	listSeparatorConstant                   = ", "
)

const (
	lighthouseQuietFlagConstant          = "--quiet"
	lighthouseOnlyCategoriesFlagConstant = "--only-categories"
	lighthouseOutputPathFlagConstant     = "--output-path"
	lighthouseCategoryListSeparator      = ","
)

const (
	lighthouseAuditStartTemplateConstant                 = "Auditing %s"
	lighthouseAuditWithCategoriesStartTemplateConstant   = "Auditing %s for %s"
	lighthouseAuditSuccessTemplateConstant               = "Audited %s"
	lighthouseAuditWithOutputPathSuccessTemplateConstant = "Audited %s (report written to %s)"
	lighthouseAuditFailureTemplateConstant               = "Audit of %s failed with exit code %d%s"
	lighthouseAuditExecutionFailureTemplateConstant      = "Unable to audit %s: %s"
	lighthouseAuditUnknownTargetLabelConstant            = "unknown target"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if formatter.isLighthouseAudit(command.Details.Arguments) {
		return formatter.describeLighthouseAudit(command, result, failure, stage)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

// isLighthouseAudit recognizes resolved audit command lines, which always carry --quiet.
func (formatter CommandMessageFormatter) isLighthouseAudit(arguments []string) bool {
	return containsArgument(arguments, lighthouseQuietFlagConstant)
}

func (formatter CommandMessageFormatter) describeLighthouseAudit(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	targetURL := formatter.extractAuditTarget(arguments)
	switch stage {
	case messageStageStart:
		categories := findFlagValue(arguments, lighthouseOnlyCategoriesFlagConstant)
		if len(categories) == 0 {
			return fmt.Sprintf(lighthouseAuditStartTemplateConstant, targetURL)
		}
		categoryList := strings.Join(strings.Split(categories, lighthouseCategoryListSeparator), listSeparatorConstant)
		return fmt.Sprintf(lighthouseAuditWithCategoriesStartTemplateConstant, targetURL, categoryList)
	case messageStageSuccess:
		outputPath := findFlagValue(arguments, lighthouseOutputPathFlagConstant)
		if len(outputPath) == 0 {
			return fmt.Sprintf(lighthouseAuditSuccessTemplateConstant, targetURL)
		}
		return fmt.Sprintf(lighthouseAuditWithOutputPathSuccessTemplateConstant, targetURL, outputPath)
	case messageStageFailure:
		return fmt.Sprintf(lighthouseAuditFailureTemplateConstant, targetURL, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(lighthouseAuditExecutionFailureTemplateConstant, targetURL, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

// extractAuditTarget returns the last positional argument following --quiet, which is the audited URL.
func (formatter CommandMessageFormatter) extractAuditTarget(arguments []string) string {
	target := emptyStringConstant
	quietSeen := false
	for _, argument := range arguments {
		if argument == lighthouseQuietFlagConstant {
			quietSeen = true
			continue
		}
		if !quietSeen || strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		target = argument
	}
	if len(strings.TrimSpace(target)) == 0 {
		return lighthouseAuditUnknownTargetLabelConstant
	}
	return target
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}

// findFlagValue returns the value of the first flag=value argument matching flag.
func findFlagValue(arguments []string, flag string) string {
	prefix := flag + flagValueSeparatorConstant
	for _, argument := range arguments {
		if strings.HasPrefix(argument, prefix) {
			return strings.TrimPrefix(argument, prefix)
		}
	}
	return emptyStringConstant
}
