// Package textutil provides text processing utilities for filename
// sanitization and paragraph reflow.
//
// The primary use cases are:
//   - Sanitizing titles and path segments for safe filesystem use
//   - Splitting long article paragraphs at sentence boundaries so rendered
//     documents stay readable on narrow screens
package textutil
