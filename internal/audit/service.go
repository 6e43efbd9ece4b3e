package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/lighthouse-runner/internal/lighthouse"
	"github.com/temirov/lighthouse-runner/internal/utils"
)

const (
	optionValueSeparatorConstant               = "="
	lineTerminatorConstant                     = "\n"
	missingTargetURLMessageConstant            = "audit requires a target URL"
	conflictingConfigSourcesMessageConstant    = "config path and config document cannot be combined"
	outputWriterNotConfiguredMessageConstant   = "audit service requires an output writer"
	configDocumentReadErrorTemplateConstant    = "unable to read config document %s: %w"
	configDocumentParseErrorTemplateConstant   = "unable to parse config document %s: %w"
	unsupportedDefaultFormatErrorTemplate      = "unsupported default format %q"
	auditorCreationErrorTemplateConstant       = "unable to prepare auditor: %w"
	commandLineResolutionErrorTemplateConstant = "unable to resolve lighthouse command: %w"
	reportWriteErrorTemplateConstant           = "unable to write report: %w"
	auditorCloseFailedMessageConstant          = "unable to release generated lighthouse config"
	auditPreparedMessageConstant               = "audit prepared"
	targetURLLogFieldConstant                  = "url"
	categoriesLogFieldConstant                 = "categories"
	timeoutLogFieldConstant                    = "timeout"
	configPathLogFieldConstant                 = "config_path"
	generatedConfigLogFieldConstant            = "generated_config"
)

var (
	errMissingTargetURL          = errors.New(missingTargetURLMessageConstant)
	errConflictingConfigSources  = errors.New(conflictingConfigSourcesMessageConstant)
	errOutputWriterNotConfigured = errors.New(outputWriterNotConfiguredMessageConstant)
)

// CommandOptions captures the resolved parameters of a single audit run.
type CommandOptions struct {
	TargetURL                string
	Categories               []string
	OutputPath               string
	OutputFormats            []string
	DefaultFormat            string
	ConfigPath               string
	ConfigDocumentPath       string
	GenerateConfig           bool
	Headers                  map[string]string
	Timeout                  time.Duration
	NodePath                 string
	LighthousePath           string
	ChromePath               string
	ChromeFlags              []string
	Environment              map[string]string
	DisableDeviceEmulation   bool
	DisableCPUThrottling     bool
	DisableNetworkThrottling bool
	Options                  []string
	PrintCommand             bool
}

// Service runs audits described by CommandOptions.
type Service struct {
	logger   *zap.Logger
	executor lighthouse.CommandExecutor
	output   io.Writer
}

// NewService constructs a Service writing reports and dry-run command lines to output.
func NewService(logger *zap.Logger, executor lighthouse.CommandExecutor, output io.Writer) (*Service, error) {
	if executor == nil {
		return nil, lighthouse.ErrExecutorNotConfigured
	}
	if output == nil {
		return nil, errOutputWriterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, executor: executor, output: utils.NewFlushingWriter(output)}, nil
}

// Run audits options.TargetURL, or prints the resolved command line when PrintCommand is set.
// Any generated config file is removed before Run returns.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (runError error) {
	targetURL := strings.TrimSpace(options.TargetURL)
	if len(targetURL) == 0 {
		return errMissingTargetURL
	}

	auditor, preparationError := service.prepareAuditor(options)
	if preparationError != nil {
		return preparationError
	}
	defer func() {
		if closeError := auditor.Close(); closeError != nil {
			service.logger.Warn(auditorCloseFailedMessageConstant, zap.Error(closeError))
		}
	}()

	service.logger.Debug(
		auditPreparedMessageConstant,
		zap.String(targetURLLogFieldConstant, targetURL),
		zap.Strings(categoriesLogFieldConstant, auditor.Categories()),
		zap.Duration(timeoutLogFieldConstant, auditor.Timeout()),
		zap.String(configPathLogFieldConstant, auditor.ConfigPath()),
		zap.Bool(generatedConfigLogFieldConstant, options.GenerateConfig),
	)

	if options.PrintCommand {
		commandLine, commandLineError := auditor.ShellCommandLine(targetURL)
		if commandLineError != nil {
			return fmt.Errorf(commandLineResolutionErrorTemplateConstant, commandLineError)
		}
		return service.write(commandLine + lineTerminatorConstant)
	}

	report, auditError := auditor.Audit(executionContext, targetURL)
	if auditError != nil {
		return auditError
	}
	if len(report) == 0 {
		return nil
	}
	return service.write(report)
}

func (service *Service) prepareAuditor(options CommandOptions) (*lighthouse.Auditor, error) {
	if len(options.ConfigPath) > 0 && len(options.ConfigDocumentPath) > 0 {
		return nil, errConflictingConfigSources
	}

	auditor, creationError := lighthouse.NewAuditor(service.executor)
	if creationError != nil {
		return nil, fmt.Errorf(auditorCreationErrorTemplateConstant, creationError)
	}
	auditor.WithLogger(service.logger)

	auditor.SetTimeout(options.Timeout)
	auditor.SetBinaryPaths(valueOrDefault(options.NodePath, lighthouse.DefaultRuntimePath), valueOrDefault(options.LighthousePath, lighthouse.DefaultToolPath))
	for _, variableName := range sortedKeys(options.Environment) {
		auditor.SetEnvironmentVariable(variableName, options.Environment[variableName])
	}
	if len(options.ChromePath) > 0 {
		auditor.SetChromePath(options.ChromePath)
	}
	if len(options.ChromeFlags) > 0 {
		auditor.SetChromeFlags(options.ChromeFlags...)
	}

	auditor.EnableCategories(options.Categories...)
	auditor.SetHeaders(options.Headers)

	if len(options.DefaultFormat) > 0 {
		defaultFormat := lighthouse.OutputFormat(strings.ToLower(options.DefaultFormat))
		if !defaultFormat.IsRecognized() {
			return nil, fmt.Errorf(unsupportedDefaultFormatErrorTemplate, options.DefaultFormat)
		}
		auditor.SetDefaultFormat(defaultFormat)
	}
	if len(options.OutputPath) > 0 {
		auditor.SetOutput(options.OutputPath, outputFormats(options.OutputFormats)...)
	}

	if options.DisableDeviceEmulation {
		auditor.DisableDeviceEmulation()
	}
	if options.DisableCPUThrottling {
		auditor.DisableCPUThrottling()
	}
	if options.DisableNetworkThrottling {
		auditor.DisableNetworkThrottling()
	}
	for _, rawOption := range options.Options {
		applyRawOption(auditor, rawOption)
	}

	switch {
	case len(options.ConfigPath) > 0:
		auditor.SetConfigPath(options.ConfigPath)
	case len(options.ConfigDocumentPath) > 0:
		document, documentError := loadConfigDocument(options.ConfigDocumentPath)
		if documentError != nil {
			return nil, documentError
		}
		auditor.SetConfigDocument(document)
	case options.GenerateConfig:
		auditor.SetConfigDocument(lighthouse.CategoryConfigDocument(auditor.Categories()))
	}

	return auditor, nil
}

func (service *Service) write(text string) error {
	if _, writeError := io.WriteString(service.output, text); writeError != nil {
		return fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
	}
	return nil
}

// loadConfigDocument reads a YAML or JSON Lighthouse configuration document.
func loadConfigDocument(documentPath string) (lighthouse.ConfigDocument, error) {
	documentContent, readError := os.ReadFile(documentPath)
	if readError != nil {
		return nil, fmt.Errorf(configDocumentReadErrorTemplateConstant, documentPath, readError)
	}

	document := lighthouse.ConfigDocument{}
	if unmarshalError := yaml.Unmarshal(documentContent, &document); unmarshalError != nil {
		return nil, fmt.Errorf(configDocumentParseErrorTemplateConstant, documentPath, unmarshalError)
	}
	return document, nil
}

// applyRawOption accepts "--flag" or "--flag=value".
func applyRawOption(auditor *lighthouse.Auditor, rawOption string) {
	flagName, flagValue, hasValue := strings.Cut(rawOption, optionValueSeparatorConstant)
	if hasValue {
		auditor.SetOptionValue(flagName, flagValue)
		return
	}
	auditor.SetOption(flagName)
}

func outputFormats(rawFormats []string) []lighthouse.OutputFormat {
	formats := make([]lighthouse.OutputFormat, 0, len(rawFormats))
	for _, rawFormat := range rawFormats {
		formats = append(formats, lighthouse.OutputFormat(strings.ToLower(strings.TrimSpace(rawFormat))))
	}
	return formats
}

func sortedKeys(entries map[string]string) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func valueOrDefault(value string, fallback string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallback
	}
	return value
}
