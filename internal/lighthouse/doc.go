// Package lighthouse assembles and runs command lines for the Lighthouse
// website auditing CLI.
//
// Auditor accumulates categories, options, output targets, extra headers and
// a config source through chained setters, resolves them into a deterministic
// argument vector, and runs that vector through an execshell-style executor
// with a timeout. Every failure of an audit run is reported as
// AuditFailedError. When the config source is a structured document, the
// Auditor writes it to a temporary file that it owns and removes on
// replacement or Close.
//
// An Auditor is not safe for concurrent use; parallel audits need separate
// instances.
package lighthouse
