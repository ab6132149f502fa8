// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols prefixed to status and summary lines on terminals.
const (
	// Created marks a record that was created.
	Created = "+"

	// Updated marks a record whose fields were rewritten.
	Updated = "~"

	// Skipped marks a record that already matched.
	Skipped = "="

	// Failed marks a record that could not be written.
	Failed = "✗"

	// Success marks a finished run without failures.
	Success = "✓"

	// Warning marks a finished run with failures, or a dry run.
	Warning = "!"

	// Archived marks a record removed by clean.
	Archived = "-"
)
