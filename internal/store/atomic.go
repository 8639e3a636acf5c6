package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite replaces the file at path with data. The temp file lives in the
// same directory so the final rename stays on one filesystem; readers see
// either the old content or the new, never a partial write.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteState marshals a whole-file JSON document and writes it atomically.
func (s *Store) WriteState(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state %s: %w", name, err)
	}
	return AtomicWrite(s.StatePath(name), append(data, '\n'))
}

// ReadState loads a whole-file JSON document into doc. A missing file is not
// an error; doc is left untouched and false is returned.
func (s *Store) ReadState(name string, doc any) (bool, error) {
	data, err := os.ReadFile(s.StatePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read state %s: %w", name, err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return false, fmt.Errorf("decode state %s: %w", name, err)
	}
	return true, nil
}
