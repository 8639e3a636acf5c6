// Package logging provides slog-based structured logging with a colorized
// console handler for interactive use and a JSON handler for log files.
// Helpers build typed attributes and component-scoped loggers.
package logging
