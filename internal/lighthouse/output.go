package lighthouse

import (
	"path/filepath"
	"strings"
)

const (
	outputPathFlagConstant     = "--output-path"
	extensionSeparatorConstant = "."
)

// OutputFormat names a report format Lighthouse can write.
type OutputFormat string

// Recognized report formats.
const (
	OutputFormatJSON OutputFormat = "json"
	OutputFormatHTML OutputFormat = "html"
)

var recognizedOutputFormats = []OutputFormat{OutputFormatJSON, OutputFormatHTML}

// RecognizedOutputFormats lists the formats accepted by SetOutput.
func RecognizedOutputFormats() []OutputFormat {
	return append([]OutputFormat{}, recognizedOutputFormats...)
}

// IsRecognized reports whether the format is one Lighthouse can write.
func (format OutputFormat) IsRecognized() bool {
	for _, recognized := range recognizedOutputFormats {
		if format == recognized {
			return true
		}
	}
	return false
}

// SetOutput asks Lighthouse to also write the report to path. Without formats the
// format is inferred from the path extension, falling back to the default format.
// Unrecognized formats are dropped; requested order is kept.
func (auditor *Auditor) SetOutput(path string, formats ...OutputFormat) *Auditor {
	auditor.options.set(KeyValueFlag(outputPathFlagConstant, path))

	if len(formats) == 0 {
		formats = []OutputFormat{auditor.inferOutputFormat(path)}
	}

	accepted := make([]OutputFormat, 0, len(formats))
	for _, format := range formats {
		if !format.IsRecognized() || containsOutputFormat(accepted, format) {
			continue
		}
		accepted = append(accepted, format)
	}
	auditor.outputFormats = accepted

	return auditor
}

// SetDefaultFormat sets the format used when SetOutput cannot infer one from the path.
func (auditor *Auditor) SetDefaultFormat(format OutputFormat) *Auditor {
	auditor.defaultFormat = format
	return auditor
}

// OutputFormats returns the formats passed to Lighthouse as --output tokens.
func (auditor *Auditor) OutputFormats() []OutputFormat {
	return append([]OutputFormat{}, auditor.outputFormats...)
}

func (auditor *Auditor) inferOutputFormat(path string) OutputFormat {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), extensionSeparatorConstant))
	candidate := OutputFormat(extension)
	if candidate.IsRecognized() {
		return candidate
	}
	return auditor.defaultFormat
}

func containsOutputFormat(formats []OutputFormat, format OutputFormat) bool {
	for _, existing := range formats {
		if existing == format {
			return true
		}
	}
	return false
}
