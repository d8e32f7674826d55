// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the codebase (tool,
// operation, board, list, card, status, error) and small constructors for
// them, so log lines stay greppable and consistent between packages.
package logging
