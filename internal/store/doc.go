// Package store persists inkwell records as append-only JSON-Lines logs plus a
// small number of whole-file JSON documents rewritten atomically. Records are
// append-only facts: they are never mutated or deleted in place, and readers
// skip lines they cannot parse so one torn write never poisons a log.
package store
