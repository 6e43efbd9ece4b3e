// Package cli constructs the lighthouse-runner command-line interface, wiring
// the Cobra command hierarchy, the Viper-backed configuration loader, and zap
// logging. Execute builds a fresh application and runs it.
package cli
