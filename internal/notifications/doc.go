// Package notifications delivers task events via pluggable notifiers.
//
// The default implementation posts to an ntfy-style webhook using the target
// configured in inkwell.toml and gracefully degrades to a no-op when
// notifications are disabled. The dispatcher depends only on the Service
// interface, so alternative transports slot in without touching queue logic.
package notifications
