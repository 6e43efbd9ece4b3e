package lighthouse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/lighthouse-runner/internal/execshell"
)

const (
	auditFailedTemplateConstant           = "audit of '%s' failed"
	auditFailedWithOutputTemplateConstant = "audit of '%s' failed: %s"
)

// AuditFailedError reports any failed audit run: a non-zero exit, a timeout, a
// process that could not start, or a config file that could not be written.
type AuditFailedError struct {
	URL    string
	Output string
	Cause  error
}

// Error describes the audited URL and the diagnostic output.
func (failure AuditFailedError) Error() string {
	if len(failure.Output) == 0 {
		return fmt.Sprintf(auditFailedTemplateConstant, failure.URL)
	}
	return fmt.Sprintf(auditFailedWithOutputTemplateConstant, failure.URL, failure.Output)
}

// Unwrap exposes the originating error.
func (failure AuditFailedError) Unwrap() error {
	return failure.Cause
}

// newAuditFailedError picks the diagnostic text: standard error, then standard
// output, then the cause message.
func newAuditFailedError(targetURL string, result execshell.ExecutionResult, cause error) AuditFailedError {
	var commandFailedError execshell.CommandFailedError
	var commandTimeoutError execshell.CommandTimeoutError
	switch {
	case errors.As(cause, &commandFailedError):
		result = commandFailedError.Result
	case errors.As(cause, &commandTimeoutError):
		result = commandTimeoutError.Result
	}

	output := strings.TrimSpace(result.StandardError)
	if len(output) == 0 {
		output = strings.TrimSpace(result.StandardOutput)
	}
	if len(output) == 0 && cause != nil {
		output = cause.Error()
	}

	return AuditFailedError{URL: targetURL, Output: output, Cause: cause}
}
