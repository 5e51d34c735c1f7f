// Package driving is the service surface the CLI, TUI, HTTP API and MCP
// server call into. internal/core/services implements it.
package driving
