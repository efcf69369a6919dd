// Package cli constructs the member-audit command-line interface, wiring the
// Cobra command hierarchy, the layered configuration loader, and structured
// logging around the audit commands.
package cli
