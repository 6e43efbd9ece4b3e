package audit

import (
	"strings"
	"time"

	"github.com/temirov/lighthouse-runner/internal/lighthouse"
)

const (
	configurationCategoriesKeyConstant               = "categories"
	configurationOutputPathKeyConstant               = "output_path"
	configurationOutputFormatsKeyConstant            = "output_formats"
	configurationDefaultFormatKeyConstant            = "default_format"
	configurationConfigPathKeyConstant               = "config_path"
	configurationConfigDocumentKeyConstant           = "config_document"
	configurationGenerateConfigKeyConstant           = "generate_config"
	configurationTimeoutKeyConstant                  = "timeout"
	configurationNodePathKeyConstant                 = "node_path"
	configurationLighthousePathKeyConstant           = "lighthouse_path"
	configurationChromePathKeyConstant               = "chrome_path"
	configurationChromeFlagsKeyConstant              = "chrome_flags"
	configurationDisableDeviceEmulationKeyConstant   = "disable_device_emulation"
	configurationDisableCPUThrottlingKeyConstant     = "disable_cpu_throttling"
	configurationDisableNetworkThrottlingKeyConstant = "disable_network_throttling"
	configurationOptionsKeyConstant                  = "options"
	configurationKeySeparatorConstant                = "."
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Categories               []string          `mapstructure:"categories"`
	OutputPath               string            `mapstructure:"output_path"`
	OutputFormats            []string          `mapstructure:"output_formats"`
	DefaultFormat            string            `mapstructure:"default_format"`
	ConfigPath               string            `mapstructure:"config_path"`
	ConfigDocument           string            `mapstructure:"config_document"`
	GenerateConfig           bool              `mapstructure:"generate_config"`
	Headers                  map[string]string `mapstructure:"headers"`
	Timeout                  time.Duration     `mapstructure:"timeout"`
	NodePath                 string            `mapstructure:"node_path"`
	LighthousePath           string            `mapstructure:"lighthouse_path"`
	ChromePath               string            `mapstructure:"chrome_path"`
	ChromeFlags              []string          `mapstructure:"chrome_flags"`
	Environment              map[string]string `mapstructure:"environment"`
	DisableDeviceEmulation   bool              `mapstructure:"disable_device_emulation"`
	DisableCPUThrottling     bool              `mapstructure:"disable_cpu_throttling"`
	DisableNetworkThrottling bool              `mapstructure:"disable_network_throttling"`
	Options                  []string          `mapstructure:"options"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		DefaultFormat:  string(lighthouse.OutputFormatJSON),
		Timeout:        lighthouse.DefaultTimeout,
		NodePath:       lighthouse.DefaultRuntimePath,
		LighthousePath: lighthouse.DefaultToolPath,
	}
}

// DefaultConfigurationValues exposes the defaults as configuration keys rooted at configurationPrefix,
// which also makes every key overridable through the environment.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	keyed := func(key string) string {
		if len(configurationPrefix) == 0 {
			return key
		}
		return configurationPrefix + configurationKeySeparatorConstant + key
	}

	return map[string]any{
		keyed(configurationCategoriesKeyConstant):               []string{},
		keyed(configurationOutputPathKeyConstant):               "",
		keyed(configurationOutputFormatsKeyConstant):            []string{},
		keyed(configurationDefaultFormatKeyConstant):            defaults.DefaultFormat,
		keyed(configurationConfigPathKeyConstant):               "",
		keyed(configurationConfigDocumentKeyConstant):           "",
		keyed(configurationGenerateConfigKeyConstant):           false,
		keyed(configurationTimeoutKeyConstant):                  defaults.Timeout.String(),
		keyed(configurationNodePathKeyConstant):                 defaults.NodePath,
		keyed(configurationLighthousePathKeyConstant):           defaults.LighthousePath,
		keyed(configurationChromePathKeyConstant):               "",
		keyed(configurationChromeFlagsKeyConstant):              []string{},
		keyed(configurationDisableDeviceEmulationKeyConstant):   false,
		keyed(configurationDisableCPUThrottlingKeyConstant):     false,
		keyed(configurationDisableNetworkThrottlingKeyConstant): false,
		keyed(configurationOptionsKeyConstant):                  []string{},
	}
}

// Sanitize trims configuration values and restores defaults for blank binaries, formats, and timeouts.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Categories = sanitizeValues(configuration.Categories)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	sanitized.OutputFormats = sanitizeValues(configuration.OutputFormats)
	sanitized.DefaultFormat = strings.ToLower(strings.TrimSpace(configuration.DefaultFormat))
	if len(sanitized.DefaultFormat) == 0 {
		sanitized.DefaultFormat = defaults.DefaultFormat
	}
	sanitized.ConfigPath = strings.TrimSpace(configuration.ConfigPath)
	sanitized.ConfigDocument = strings.TrimSpace(configuration.ConfigDocument)
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = defaults.Timeout
	}
	sanitized.NodePath = strings.TrimSpace(configuration.NodePath)
	if len(sanitized.NodePath) == 0 {
		sanitized.NodePath = defaults.NodePath
	}
	sanitized.LighthousePath = strings.TrimSpace(configuration.LighthousePath)
	if len(sanitized.LighthousePath) == 0 {
		sanitized.LighthousePath = defaults.LighthousePath
	}
	sanitized.ChromePath = strings.TrimSpace(configuration.ChromePath)
	sanitized.ChromeFlags = sanitizeValues(configuration.ChromeFlags)
	sanitized.Options = sanitizeValues(configuration.Options)
	sanitized.Headers = sanitizeEntries(configuration.Headers)
	sanitized.Environment = sanitizeEntries(configuration.Environment)

	return sanitized
}

func sanitizeValues(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

func sanitizeEntries(raw map[string]string) map[string]string {
	sanitized := make(map[string]string, len(raw))
	for key, value := range raw {
		trimmedKey := strings.TrimSpace(key)
		if len(trimmedKey) == 0 {
			continue
		}
		sanitized[trimmedKey] = value
	}
	return sanitized
}
