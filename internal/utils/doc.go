// Package utils exposes reusable helpers consumed by the CLI commands.
//
// It houses ConfigurationLoader (Viper with environment overrides and an
// embedded default configuration), LoggerFactory (zap), FlushingWriter for
// streaming reports, and CommandContextAccessor for values shared through
// command contexts.
package utils
