package pipeline

import (
	"encoding/json"

	"github.com/tidwall/sjson"

	"inkwell/internal/store"
)

// snapshotFileName is the diagnostic record of one run, kept next to the
// rendered output.
const snapshotFileName = "pipeline_debug.json"

// snapshot is the progressively updated debug document for one run. It is
// written before the first external call and patched field by field after
// each step, so a crash mid-run still leaves a readable trail. Snapshot
// writes are best effort and never fail the run.
type snapshot struct {
	path string
	data []byte
}

func newSnapshot(path string, initial any) *snapshot {
	data, err := json.MarshalIndent(initial, "", "  ")
	if err != nil {
		data = []byte("{}")
	}
	s := &snapshot{path: path, data: data}
	s.flush()
	return s
}

// set patches one field in place and rewrites the file. The document is
// never rebuilt wholesale, so fields from earlier steps survive even when a
// later value fails to encode.
func (s *snapshot) set(key string, value any) {
	if s == nil {
		return
	}
	updated, err := sjson.SetBytes(s.data, key, value)
	if err != nil {
		return
	}
	s.data = updated
	s.flush()
}

func (s *snapshot) flush() {
	if s == nil || s.path == "" {
		return
	}
	_ = store.AtomicWrite(s.path, append(s.data, '\n'))
}
