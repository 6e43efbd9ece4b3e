// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and timeouts via ShellExecutor, exposes
// OSCommandRunner for default process execution, and classifies process
// outcomes into CommandFailedError and CommandExecutionError so callers such
// as the lighthouse auditor can report failures uniformly.
package execshell
