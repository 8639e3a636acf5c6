// Package topics turns hot-trend and evergreen-bank material into scored
// topic candidates for each account, annotating every candidate with a
// similarity verdict against historical records.
package topics

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"inkwell/internal/accounts"
	"inkwell/internal/logging"
	"inkwell/internal/similarity"
	"inkwell/internal/store"
)

// Pool depths when scoring candidates against history.
const (
	topicPoolLimit     = 2000
	draftPoolLimit     = 800
	publishedPoolLimit = 2000
)

// stateFileName holds the point-in-time open candidate set, rewritten
// atomically after each incubation run.
const stateFileName = "incubation_state.json"

// incubationState is the whole-file snapshot of titles currently open per
// account. It survives restarts so reruns on the same day skip titles the
// topic log alone might miss.
type incubationState struct {
	UpdatedAt  time.Time           `json:"updated_at"`
	OpenTitles map[string][]string `json:"open_titles"`
}

// HotTopic is one time-sensitive candidate from a hot supply.
type HotTopic struct {
	Title         string
	OriginalTitle string
	Source        string
	URL           string
	Rank          int
}

// HotSupply provides time-sensitive candidates for an account.
type HotSupply interface {
	Hot(ctx context.Context, profile *accounts.Profile, count int) ([]HotTopic, error)
}

// BankSupply provides evergreen candidate titles for an account.
type BankSupply interface {
	Bank(ctx context.Context, profile *accounts.Profile, count int) ([]string, error)
}

// Counts configures one incubation run.
type Counts struct {
	Hot     int
	Regular int
}

// Incubator produces topic candidates and appends them to the record store.
type Incubator struct {
	store     *store.Store
	logger    *slog.Logger
	threshold float64
}

// NewIncubator wires an incubator over the record store.
func NewIncubator(st *store.Store, threshold float64, logger *slog.Logger) *Incubator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if threshold <= 0 {
		threshold = 0.82
	}
	return &Incubator{store: st, logger: logger, threshold: threshold}
}

// Incubate produces up to counts.Hot + counts.Regular candidates for the
// account. Hot supply shortfall is backfilled from the bank, so a thin news
// day still yields a full slate. Every accepted candidate is appended to the
// topic log with its dedup verdict; exact-title repeats against the account's
// open pool are silently skipped.
func (inc *Incubator) Incubate(ctx context.Context, profile *accounts.Profile, hot HotSupply, bank BankSupply, counts Counts) ([]store.TopicCandidate, error) {
	log := inc.logger.With(
		logging.String(logging.FieldAccountID, profile.AccountID),
		logging.String(logging.FieldComponent, "incubator"),
	)

	refs := inc.historyRefs(profile.AccountID)
	open := inc.openTitles(profile.AccountID)

	var hotTopics []HotTopic
	if hot != nil && counts.Hot > 0 {
		var err error
		hotTopics, err = hot.Hot(ctx, profile, counts.Hot)
		if err != nil {
			// Hot supply failure degrades to bank-only incubation.
			log.Warn("hot supply failed, filling from bank", logging.Error(err))
			hotTopics = nil
		}
		if len(hotTopics) > counts.Hot {
			hotTopics = hotTopics[:counts.Hot]
		}
	}

	regularNeeded := counts.Regular + (counts.Hot - len(hotTopics))
	var bankTitles []string
	if bank != nil && regularNeeded > 0 {
		var err error
		bankTitles, err = bank.Bank(ctx, profile, regularNeeded)
		if err != nil {
			log.Warn("bank supply failed", logging.Error(err))
			bankTitles = nil
		}
		if len(bankTitles) > regularNeeded {
			bankTitles = bankTitles[:regularNeeded]
		}
	}

	var created []store.TopicCandidate
	for _, ht := range hotTopics {
		candidate, ok := inc.accept(profile.AccountID, ht.Title, "hot", ht, refs, open)
		if !ok {
			continue
		}
		created = append(created, candidate)
	}
	for _, title := range bankTitles {
		candidate, ok := inc.accept(profile.AccountID, title, "regular", HotTopic{Source: "topic_bank"}, refs, open)
		if !ok {
			continue
		}
		created = append(created, candidate)
	}

	inc.saveOpenTitles(profile.AccountID, open, log)

	log.Info("incubation run complete",
		logging.Int("hot", len(hotTopics)),
		logging.Int("regular", len(bankTitles)),
		logging.Int("created", len(created)))
	return created, nil
}

// saveOpenTitles rewrites the open-candidate snapshot for one account. The
// snapshot is diagnostic state, so a write failure is logged, not raised.
func (inc *Incubator) saveOpenTitles(accountID string, open map[string]struct{}, log *slog.Logger) {
	state := incubationState{OpenTitles: map[string][]string{}}
	if _, err := inc.store.ReadState(stateFileName, &state); err != nil {
		log.Warn("unreadable incubation state, rewriting", logging.Error(err))
		state.OpenTitles = map[string][]string{}
	}
	if state.OpenTitles == nil {
		state.OpenTitles = map[string][]string{}
	}
	titles := make([]string, 0, len(open))
	for title := range open {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	state.OpenTitles[accountID] = titles
	state.UpdatedAt = time.Now()
	if err := inc.store.WriteState(stateFileName, state); err != nil {
		log.Warn("failed to persist incubation state", logging.Error(err))
	}
}

func (inc *Incubator) accept(accountID, title, category string, origin HotTopic, refs []similarity.Reference, open map[string]struct{}) (store.TopicCandidate, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return store.TopicCandidate{}, false
	}
	if _, exists := open[title]; exists {
		return store.TopicCandidate{}, false
	}
	open[title] = struct{}{}

	match := similarity.Nearest(title, refs)
	candidate := store.TopicCandidate{
		AccountID:     accountID,
		Title:         title,
		Category:      category,
		Source:        origin.Source,
		OriginalTitle: origin.OriginalTitle,
		URL:           origin.URL,
		Rank:          origin.Rank,
		Dedup: store.Dedup{
			MaxSimilarity: match.Score,
			NearestID:     match.ID,
			NearestKind:   match.Kind,
			Threshold:     inc.threshold,
			Hit:           match.ID != "" && match.Score >= inc.threshold,
		},
	}
	saved, err := inc.store.AddTopicCandidate(candidate)
	if err != nil {
		inc.logger.Error("append topic candidate failed",
			logging.String(logging.FieldAccountID, accountID), logging.Error(err))
		return store.TopicCandidate{}, false
	}
	return saved, true
}

// historyRefs assembles the scoring pools in precedence order: published
// records first so they win similarity ties, then drafts, then earlier
// incubated topics.
func (inc *Incubator) historyRefs(accountID string) []similarity.Reference {
	var refs []similarity.Reference
	for _, rec := range inc.store.RecentPublished(publishedPoolLimit) {
		if rec.AccountID != accountID {
			continue
		}
		refs = append(refs, similarity.Reference{ID: rec.ID, Kind: "published", Title: rec.Title})
	}
	for _, rec := range inc.store.RecentDrafts(draftPoolLimit) {
		if rec.AccountID != accountID {
			continue
		}
		refs = append(refs, similarity.Reference{ID: rec.ID, Kind: "draft", Title: rec.TopicTitle})
	}
	for _, rec := range inc.store.RecentTopics(topicPoolLimit) {
		if rec.AccountID != accountID {
			continue
		}
		refs = append(refs, similarity.Reference{ID: rec.ID, Kind: "topic", Title: rec.Title})
	}
	return refs
}

// openTitles unions the persisted open-candidate snapshot with the recent
// topic log.
func (inc *Incubator) openTitles(accountID string) map[string]struct{} {
	open := make(map[string]struct{})
	var state incubationState
	if ok, err := inc.store.ReadState(stateFileName, &state); ok && err == nil {
		for _, title := range state.OpenTitles[accountID] {
			if title = strings.TrimSpace(title); title != "" {
				open[title] = struct{}{}
			}
		}
	}
	for _, rec := range inc.store.RecentTopics(topicPoolLimit) {
		if rec.AccountID != accountID {
			continue
		}
		if title := strings.TrimSpace(rec.Title); title != "" {
			open[title] = struct{}{}
		}
	}
	return open
}
