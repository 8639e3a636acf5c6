// Package services defines shared utilities consumed by the generation
// pipeline steps and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp task IDs, step names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (configuration vs transient) uniform across clients.
//
// Use these helpers when wiring new pipeline steps so operational behaviour
// (error handling, observability, degradation) stays uniform.
package services
