// Package pipeline runs the generation sequence for one task: article text,
// cover and inline images, upload, rendering, and an optional draft push.
// Steps after the initial snapshot never fail the run. An external failure
// becomes a recorded fallback (a placeholder image, a local preview URL, an
// unsent draft) and the task still reaches done.
package pipeline
