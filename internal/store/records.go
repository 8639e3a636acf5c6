package store

import "time"

// Dedup is the similarity verdict attached to a candidate when it is scored
// against historical records. Hit is a rejection hint, not a hard block.
type Dedup struct {
	MaxSimilarity float64 `json:"max_similarity"`
	NearestID     string  `json:"nearest_id,omitempty"`
	NearestKind   string  `json:"nearest_kind,omitempty"`
	Threshold     float64 `json:"threshold"`
	Hit           bool    `json:"hit"`
}

// TopicCandidate is a proposed title for an account, immutable once appended.
type TopicCandidate struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Date          string    `json:"date"`
	AccountID     string    `json:"account_id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Source        string    `json:"source,omitempty"`
	OriginalTitle string    `json:"original_title,omitempty"`
	URL           string    `json:"url,omitempty"`
	Rank          int       `json:"rank,omitempty"`
	Dedup         Dedup     `json:"dedup"`
}

// Section is one titled block of article paragraphs.
type Section struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Article is the structured document produced by a completed task.
type Article struct {
	Title    string    `json:"title"`
	Digest   string    `json:"digest"`
	Subtitle string    `json:"subtitle"`
	Sections []Section `json:"sections"`
}

// Outputs records where a draft's rendered artifacts landed.
type Outputs struct {
	OutputDir  string `json:"output_dir,omitempty"`
	HTMLPath   string `json:"html_path,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// DraftRecord is created exactly once when a generation task completes.
type DraftRecord struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	AccountID  string         `json:"account_id"`
	TopicID    string         `json:"topic_id,omitempty"`
	TopicTitle string         `json:"topic_title"`
	Status     string         `json:"status"`
	Article    Article        `json:"article"`
	Outputs    Outputs        `json:"outputs"`
	Metrics    map[string]any `json:"metrics,omitempty"`
	Dedup      Dedup          `json:"dedup"`
}

// PublishedRecord archives an article confirmed live on the publish target.
type PublishedRecord struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	AccountID string            `json:"account_id"`
	Title     string            `json:"title"`
	Target    map[string]string `json:"target,omitempty"`
	Source    map[string]string `json:"source,omitempty"`
}

// Inspiration is a free-form note captured for later topic work.
type Inspiration struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Text      string            `json:"text"`
	Source    map[string]string `json:"source,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Status    string            `json:"status"`
}

// DraftStatus values for DraftRecord.Status.
const (
	DraftStatusDraft  = "draft"
	DraftStatusPushed = "pushed"
)
