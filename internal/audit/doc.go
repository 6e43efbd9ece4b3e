// Package audit implements the audit command, which runs a single Lighthouse
// audit against a URL and streams the report to standard output.
//
// CommandBuilder wires the Cobra command and merges flags over the persisted
// tools.audit configuration; Service maps the resulting options onto a
// lighthouse.Auditor and owns its lifecycle.
package audit
