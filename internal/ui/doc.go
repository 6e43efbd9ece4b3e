// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger turns audit process lifecycle events into short
// console lines, while detailed telemetry continues to flow through the
// structured logger.
package ui
