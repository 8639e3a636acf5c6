package store

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/config"
)

// Kind identifies one of the append-only record logs.
type Kind string

const (
	KindInspirations Kind = "inspirations"
	KindTopics       Kind = "topics"
	KindDrafts       Kind = "drafts"
	KindPublished    Kind = "published"
)

// ErrUnknownKind reports a record kind no log file is registered for.
// Reaching it is a caller bug, not a runtime condition to retry.
var ErrUnknownKind = errors.New("store: unknown record kind")

var kindFiles = map[Kind]string{
	KindInspirations: "inspirations.jsonl",
	KindTopics:       "topics.jsonl",
	KindDrafts:       "drafts.jsonl",
	KindPublished:    "published.jsonl",
}

// Store manages record persistence rooted at the configured data directory.
type Store struct {
	dir string
}

// Open ensures the data directory exists and returns a store over it.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("store: config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return &Store{dir: cfg.Paths.DataDir}, nil
}

// OpenDir returns a store rooted at an explicit directory, creating it if needed.
func OpenDir(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path resolves the log file for a kind.
func (s *Store) Path(kind Kind) (string, error) {
	name, ok := kindFiles[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return filepath.Join(s.dir, name), nil
}

// StatePath resolves a whole-file JSON document inside the store directory.
func (s *Store) StatePath(name string) string {
	return filepath.Join(s.dir, name)
}

// NewID derives a short stable identifier from a composite seed of kind,
// wall-clock time, process identity, and a content fragment. Collisions are
// treated as negligible, not impossible; this is not a cryptographic token.
func NewID(prefix, content string) string {
	seed := fmt.Sprintf("%s|%d|%d|%s", prefix, time.Now().UnixNano(), os.Getpid(), content)
	sum := sha1.Sum([]byte(seed))
	return prefix + "_" + hex.EncodeToString(sum[:])[:12]
}

// AddInspiration appends a free-form inspiration note.
func (s *Store) AddInspiration(text string, source map[string]string, tags []string) (Inspiration, error) {
	text = strings.TrimSpace(text)
	rec := Inspiration{
		ID:        NewID("insp", clamp(text, 40)),
		CreatedAt: time.Now(),
		Text:      text,
		Source:    source,
		Tags:      tags,
		Status:    "new",
	}
	if err := s.appendRecord(KindInspirations, rec); err != nil {
		return Inspiration{}, err
	}
	return rec, nil
}

// AddTopicCandidate appends a new candidate, assigning its identifier.
func (s *Store) AddTopicCandidate(rec TopicCandidate) (TopicCandidate, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	rec.OriginalTitle = strings.TrimSpace(rec.OriginalTitle)
	rec.ID = NewID("topic", rec.AccountID+"|"+rec.Title)
	rec.CreatedAt = time.Now()
	if rec.Date == "" {
		rec.Date = rec.CreatedAt.Format("2006-01-02")
	}
	if err := s.appendRecord(KindTopics, rec); err != nil {
		return TopicCandidate{}, err
	}
	return rec, nil
}

// AddDraft appends a draft record, assigning its identifier.
func (s *Store) AddDraft(rec DraftRecord) (DraftRecord, error) {
	rec.TopicTitle = strings.TrimSpace(rec.TopicTitle)
	rec.ID = NewID("draft", rec.AccountID+"|"+rec.TopicTitle+"|"+rec.Article.Title)
	rec.CreatedAt = time.Now()
	if rec.Status == "" {
		rec.Status = DraftStatusDraft
	}
	if err := s.appendRecord(KindDrafts, rec); err != nil {
		return DraftRecord{}, err
	}
	return rec, nil
}

// AddPublished appends a published archive record, assigning its identifier.
func (s *Store) AddPublished(rec PublishedRecord) (PublishedRecord, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	rec.ID = NewID("pub", rec.AccountID+"|"+rec.Title)
	rec.CreatedAt = time.Now()
	if err := s.appendRecord(KindPublished, rec); err != nil {
		return PublishedRecord{}, err
	}
	return rec, nil
}

// RecentTopics returns up to limit topic candidates, most recent last.
func (s *Store) RecentTopics(limit int) []TopicCandidate {
	return loadRecent[TopicCandidate](s, KindTopics, limit)
}

// RecentDrafts returns up to limit draft records, most recent last.
func (s *Store) RecentDrafts(limit int) []DraftRecord {
	return loadRecent[DraftRecord](s, KindDrafts, limit)
}

// RecentPublished returns up to limit published records, most recent last.
func (s *Store) RecentPublished(limit int) []PublishedRecord {
	return loadRecent[PublishedRecord](s, KindPublished, limit)
}

// RecentInspirations returns up to limit inspirations, most recent last.
func (s *Store) RecentInspirations(limit int) []Inspiration {
	return loadRecent[Inspiration](s, KindInspirations, limit)
}

func (s *Store) appendRecord(kind Kind, record any) error {
	path, err := s.Path(kind)
	if err != nil {
		return err
	}
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", kind, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s log: %w", kind, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append %s record: %w", kind, err)
	}
	return f.Close()
}

// loadRecent reads a whole log and keeps the tail. Missing or unreadable files
// yield an empty slice: absence of history must never block new writes.
// Unparsable lines (torn appends) are skipped, not fatal.
func loadRecent[T any](s *Store, kind Kind, limit int) []T {
	path, err := s.Path(kind)
	if err != nil {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var rows []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row T
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			continue
		}
		rows = append(rows, row)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows
}

func clamp(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
