// Package logging assembles structured slog loggers used across tonielib
// services.
//
// It owns the console and JSON handlers, centralizes level parsing (including
// the persisted advanced.log_level value), and exposes Attr helpers plus a
// no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
