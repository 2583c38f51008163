// Package driving provides interfaces for inbound adapters
// (primary ports). CLI, TUI, console, and MCP surfaces drive the core
// through these interfaces.
package driving
