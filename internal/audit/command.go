package audit

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lighthouse-runner/internal/lighthouse"
	"github.com/temirov/lighthouse-runner/internal/utils"
	flagutils "github.com/temirov/lighthouse-runner/internal/utils/flags"
	pathutils "github.com/temirov/lighthouse-runner/internal/utils/path"
)

const (
	commandUseConstant                              = "audit <url>"
	commandShortDescriptionConstant                 = "Run a Lighthouse audit against a URL"
	commandLongDescriptionConstant                  = "audit runs Lighthouse through Node.js against the URL and writes the report to standard output. Flags override the tools.audit configuration."
	flagCategoryNameConstant                        = "category"
	flagCategoryDescriptionConstant                 = "Restrict the audit to a category (accessibility, best-practices, performance, pwa, seo); repeatable"
	flagOutputPathNameConstant                      = "output-path"
	flagOutputPathDescriptionConstant               = "Also write the report to this file"
	flagOutputFormatNameConstant                    = "output-format"
	flagOutputFormatDescriptionConstant             = "Report format for --output-path; repeatable. Inferred from the file extension when omitted"
	flagDefaultFormatNameConstant                   = "default-format"
	flagDefaultFormatDescriptionConstant            = "Report format used when the output path has no recognized extension"
	flagConfigPathNameConstant                      = "config-path"
	flagConfigPathDescriptionConstant               = "Existing Lighthouse config file passed through unchanged"
	flagConfigDocumentNameConstant                  = "config-document"
	flagConfigDocumentDescriptionConstant           = "YAML or JSON Lighthouse config written to a temporary config file for this run"
	flagGenerateConfigNameConstant                  = "generate-config"
	flagGenerateConfigDescriptionConstant           = "Generate a temporary config extending lighthouse:default with the selected categories"
	flagHeaderNameConstant                          = "header"
	flagHeaderDescriptionConstant                   = "Extra HTTP header sent with every request (name=value)"
	flagTimeoutNameConstant                         = "timeout"
	flagTimeoutDescriptionConstant                  = "Maximum duration of the audit"
	flagNodePathNameConstant                        = "node-path"
	flagNodePathDescriptionConstant                 = "Node.js executable"
	flagLighthousePathNameConstant                  = "lighthouse-path"
	flagLighthousePathDescriptionConstant           = "Lighthouse CLI script"
	flagChromePathNameConstant                      = "chrome-path"
	flagChromePathDescriptionConstant               = "Chrome executable exported as CHROME_PATH"
	flagChromeFlagNameConstant                      = "chrome-flag"
	flagChromeFlagDescriptionConstant               = "Chrome command-line flag replacing the headless defaults; repeatable"
	flagEnvironmentNameConstant                     = "env"
	flagEnvironmentDescriptionConstant              = "Environment variable for the audit process (NAME=value)"
	flagDisableDeviceEmulationNameConstant          = "disable-device-emulation"
	flagDisableDeviceEmulationDescriptionConstant   = "Disable mobile device emulation"
	flagDisableCPUThrottlingNameConstant            = "disable-cpu-throttling"
	flagDisableCPUThrottlingDescriptionConstant     = "Disable CPU throttling"
	flagDisableNetworkThrottlingNameConstant        = "disable-network-throttling"
	flagDisableNetworkThrottlingDescriptionConstant = "Disable network throttling"
	flagOptionNameConstant                          = "option"
	flagOptionDescriptionConstant                   = "Raw Lighthouse flag (--flag or --flag=value); repeatable"
	flagPrintCommandNameConstant                    = "print-command"
	flagPrintCommandDescriptionConstant             = "Print the resolved command line instead of running it"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the persisted audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	Executor                     lighthouse.CommandExecutor
	HomeExpander                 *pathutils.HomeExpander
}

// Build constructs the cobra command for Lighthouse audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	recognizedFormats := recognizedFormatNames()

	command.Flags().StringSlice(flagCategoryNameConstant, nil, flagCategoryDescriptionConstant)
	command.Flags().String(flagOutputPathNameConstant, "", flagOutputPathDescriptionConstant)
	command.Flags().StringSlice(flagOutputFormatNameConstant, nil, flagutils.FormatChoiceUsage("", recognizedFormats, flagOutputFormatDescriptionConstant))
	command.Flags().String(flagDefaultFormatNameConstant, defaults.DefaultFormat, flagutils.FormatChoiceUsage(defaults.DefaultFormat, recognizedFormats, flagDefaultFormatDescriptionConstant))
	command.Flags().String(flagConfigPathNameConstant, "", flagConfigPathDescriptionConstant)
	command.Flags().String(flagConfigDocumentNameConstant, "", flagConfigDocumentDescriptionConstant)
	command.Flags().Bool(flagGenerateConfigNameConstant, false, flagGenerateConfigDescriptionConstant)
	command.Flags().StringToString(flagHeaderNameConstant, nil, flagHeaderDescriptionConstant)
	command.Flags().Duration(flagTimeoutNameConstant, defaults.Timeout, flagTimeoutDescriptionConstant)
	command.Flags().String(flagNodePathNameConstant, defaults.NodePath, flagNodePathDescriptionConstant)
	command.Flags().String(flagLighthousePathNameConstant, defaults.LighthousePath, flagLighthousePathDescriptionConstant)
	command.Flags().String(flagChromePathNameConstant, "", flagChromePathDescriptionConstant)
	command.Flags().StringArray(flagChromeFlagNameConstant, nil, flagChromeFlagDescriptionConstant)
	command.Flags().StringToString(flagEnvironmentNameConstant, nil, flagEnvironmentDescriptionConstant)
	command.Flags().Bool(flagDisableDeviceEmulationNameConstant, false, flagDisableDeviceEmulationDescriptionConstant)
	command.Flags().Bool(flagDisableCPUThrottlingNameConstant, false, flagDisableCPUThrottlingDescriptionConstant)
	command.Flags().Bool(flagDisableNetworkThrottlingNameConstant, false, flagDisableNetworkThrottlingDescriptionConstant)
	command.Flags().StringArray(flagOptionNameConstant, nil, flagOptionDescriptionConstant)
	command.Flags().Bool(flagPrintCommandNameConstant, false, flagPrintCommandDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	executor, executorError := ResolveExecutor(builder.Executor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(logger, executor, command.OutOrStdout())
	if serviceError != nil {
		return serviceError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	return service.Run(executionContext, options)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()
	contextAccessor := utils.NewCommandContextAccessor()
	homeExpander := builder.resolveHomeExpander()
	flagSet := command.Flags()

	stringValue := func(flagName string, configured string) string {
		if flagSet.Changed(flagName) {
			flagValue, _ := flagSet.GetString(flagName)
			return strings.TrimSpace(flagValue)
		}
		return configured
	}
	boolValue := func(flagName string, configured bool) bool {
		if flagSet.Changed(flagName) {
			flagValue, _ := flagSet.GetBool(flagName)
			return flagValue
		}
		return configured
	}
	stringSliceValue := func(flagName string, configured []string) []string {
		if !flagSet.Changed(flagName) {
			return configured
		}
		flagValues, flagError := flagSet.GetStringSlice(flagName)
		if flagError != nil {
			flagValues, _ = flagSet.GetStringArray(flagName)
		}
		return sanitizeValues(flagValues)
	}
	stringMapValue := func(flagName string, configured map[string]string) map[string]string {
		if !flagSet.Changed(flagName) {
			return configured
		}
		flagValues, _ := flagSet.GetStringToString(flagName)
		return sanitizeEntries(flagValues)
	}

	timeout := configuration.Timeout
	if flagSet.Changed(flagTimeoutNameConstant) {
		timeout, _ = flagSet.GetDuration(flagTimeoutNameConstant)
	}

	// Paths from the configuration file are relative to that file; paths given as flags are relative to the working directory.
	configPath := configuration.ConfigPath
	if !flagSet.Changed(flagConfigPathNameConstant) {
		configPath = contextAccessor.ResolveConfiguredPath(command.Context(), configPath)
	}
	configDocumentPath := configuration.ConfigDocument
	if !flagSet.Changed(flagConfigDocumentNameConstant) {
		configDocumentPath = contextAccessor.ResolveConfiguredPath(command.Context(), configDocumentPath)
	}

	printCommand, _ := flagSet.GetBool(flagPrintCommandNameConstant)

	options := CommandOptions{
		TargetURL:                strings.TrimSpace(arguments[0]),
		Categories:               stringSliceValue(flagCategoryNameConstant, configuration.Categories),
		OutputPath:               homeExpander.Expand(stringValue(flagOutputPathNameConstant, configuration.OutputPath)),
		OutputFormats:            stringSliceValue(flagOutputFormatNameConstant, configuration.OutputFormats),
		DefaultFormat:            stringValue(flagDefaultFormatNameConstant, configuration.DefaultFormat),
		ConfigPath:               homeExpander.Expand(stringValue(flagConfigPathNameConstant, configPath)),
		ConfigDocumentPath:       homeExpander.Expand(stringValue(flagConfigDocumentNameConstant, configDocumentPath)),
		GenerateConfig:           boolValue(flagGenerateConfigNameConstant, configuration.GenerateConfig),
		Headers:                  stringMapValue(flagHeaderNameConstant, configuration.Headers),
		Timeout:                  timeout,
		NodePath:                 homeExpander.Expand(stringValue(flagNodePathNameConstant, configuration.NodePath)),
		LighthousePath:           homeExpander.Expand(stringValue(flagLighthousePathNameConstant, configuration.LighthousePath)),
		ChromePath:               homeExpander.Expand(stringValue(flagChromePathNameConstant, configuration.ChromePath)),
		ChromeFlags:              stringSliceValue(flagChromeFlagNameConstant, configuration.ChromeFlags),
		Environment:              stringMapValue(flagEnvironmentNameConstant, upperCaseKeys(configuration.Environment)),
		DisableDeviceEmulation:   boolValue(flagDisableDeviceEmulationNameConstant, configuration.DisableDeviceEmulation),
		DisableCPUThrottling:     boolValue(flagDisableCPUThrottlingNameConstant, configuration.DisableCPUThrottling),
		DisableNetworkThrottling: boolValue(flagDisableNetworkThrottlingNameConstant, configuration.DisableNetworkThrottling),
		Options:                  stringSliceValue(flagOptionNameConstant, configuration.Options),
		PrintCommand:             printCommand,
	}

	if len(options.DefaultFormat) > 0 {
		normalizedFormat, formatError := flagutils.NormalizeChoice(options.DefaultFormat, recognizedFormatNames())
		if formatError != nil {
			return CommandOptions{}, formatError
		}
		options.DefaultFormat = normalizedFormat
	}

	return options, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander != nil {
		return builder.HomeExpander
	}
	return pathutils.NewHomeExpander()
}

func recognizedFormatNames() []string {
	recognizedFormats := lighthouse.RecognizedOutputFormats()
	names := make([]string, 0, len(recognizedFormats))
	for _, format := range recognizedFormats {
		names = append(names, string(format))
	}
	return names
}

// upperCaseKeys restores conventional variable names; the configuration loader lower-cases map keys.
func upperCaseKeys(entries map[string]string) map[string]string {
	upperCased := make(map[string]string, len(entries))
	for key, value := range entries {
		upperCased[strings.ToUpper(key)] = value
	}
	return upperCased
}
