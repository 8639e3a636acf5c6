package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/accounts"
	"inkwell/internal/config"
	"inkwell/internal/imaging"
	"inkwell/internal/logging"
	"inkwell/internal/newsfetch"
	"inkwell/internal/notifications"
	"inkwell/internal/queue"
	"inkwell/internal/render"
	"inkwell/internal/services"
	"inkwell/internal/services/imagegen"
	"inkwell/internal/services/publisher"
	"inkwell/internal/services/textgen"
	"inkwell/internal/store"
)

// ImageResult is the uniform outcome of one image slot. Path is always set;
// Fallback names the degradation when the external generator or upload was
// bypassed.
type ImageResult struct {
	Success      bool   `json:"success"`
	Path         string `json:"path"`
	URL          string `json:"url,omitempty"`
	MediaID      string `json:"media_id,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
	Fallback     string `json:"fallback,omitempty"`
	AfterSection int    `json:"after_section,omitempty"`
}

// PublishResult records the outcome of the optional draft push.
type PublishResult struct {
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success"`
	MediaID   string `json:"media_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Result is the complete outcome of one orchestrator run.
type Result struct {
	TaskID     string        `json:"task_id"`
	Article    store.Article `json:"article"`
	OutputDir  string        `json:"output_dir"`
	HTMLPath   string        `json:"html_path"`
	PreviewURL string        `json:"preview_url"`
	Cover      ImageResult   `json:"cover"`
	Inline     []ImageResult `json:"inline"`
	Publish    PublishResult `json:"publish"`
	Degraded   []string      `json:"degraded,omitempty"`
}

// RunSpec is everything the image/render/publish sequence needs, with all
// parameters already resolved.
type RunSpec struct {
	TaskID      string
	AccountID   string
	Account     *accounts.Profile
	Article     store.Article
	OutputDir   string
	Theme       string
	InlineCount int
	Publish     bool
}

// Orchestrator drives generation tasks end to end. Collaborator clients are
// optional: a missing client degrades the matching step instead of blocking
// the run.
type Orchestrator struct {
	cfg      *config.Config
	records  *store.Store
	tasks    *queue.FileStore
	text     textgen.Completer
	images   imagegen.Generator
	uploader publisher.Uploader
	fetcher  *newsfetch.Fetcher
	notifier notifications.Service
	logger   *slog.Logger
}

// Option wires an optional collaborator into the orchestrator.
type Option func(*Orchestrator)

func WithTextGenerator(c textgen.Completer) Option {
	return func(o *Orchestrator) { o.text = c }
}

func WithImageGenerator(g imagegen.Generator) Option {
	return func(o *Orchestrator) { o.images = g }
}

func WithUploader(u publisher.Uploader) Option {
	return func(o *Orchestrator) { o.uploader = u }
}

func WithFetcher(f *newsfetch.Fetcher) Option {
	return func(o *Orchestrator) { o.fetcher = f }
}

func WithNotifier(n notifications.Service) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New builds an orchestrator over the record store and task queue.
func New(cfg *config.Config, records *store.Store, tasks *queue.FileStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		records:  records,
		tasks:    tasks,
		notifier: notifications.NewService(cfg.Notify),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "pipeline")
	return o
}

// Run executes the fixed sequence over an already-generated article: debug
// snapshot, cover image, inline images, upload, render, optional publish.
// Steps after the snapshot degrade instead of failing; Run returns an error
// only when the output directory itself is unusable.
func (o *Orchestrator) Run(ctx context.Context, spec RunSpec) (Result, error) {
	if err := os.MkdirAll(spec.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	ctx = services.WithTaskID(ctx, spec.TaskID)
	ctx = services.WithAccountID(ctx, spec.AccountID)
	theme := spec.Theme
	if theme == "" {
		theme = o.cfg.Pipeline.DefaultTheme
	}

	result := Result{
		TaskID:    spec.TaskID,
		Article:   spec.Article,
		OutputDir: spec.OutputDir,
	}

	snap := newSnapshot(filepath.Join(spec.OutputDir, snapshotFileName), map[string]any{
		"task_id":           spec.TaskID,
		"account_id":        spec.AccountID,
		"title":             spec.Article.Title,
		"theme":             theme,
		"inline_count":      spec.InlineCount,
		"publish_requested": spec.Publish,
		"cover_resolution":  o.cfg.Pipeline.CoverResolution,
		"inline_resolution": o.cfg.Pipeline.InlineResolution,
	})

	// Cover image.
	coverCtx := services.WithStep(ctx, "cover")
	coverPrompt := textgen.BuildCoverPrompt(o.cfg.Pipeline.ImageStylePrefix, spec.Article.Title, spec.Article.Digest)
	result.Cover = o.generateImage(coverCtx, coverPrompt, o.cfg.Pipeline.CoverResolution,
		filepath.Join(spec.OutputDir, "cover.jpg"))
	o.noteDegradation(&result, "cover", result.Cover.Fallback)
	snap.set("cover", result.Cover)

	// Inline images, one independent slot per insertion point.
	inlineCtx := services.WithStep(ctx, "inline")
	points := insertionPoints(len(spec.Article.Sections), spec.InlineCount)
	for i, point := range points {
		sectionTitle := spec.Article.Subtitle
		if point >= 0 && point < len(spec.Article.Sections) {
			sectionTitle = spec.Article.Sections[point].Title
		}
		prompt := textgen.BuildInlinePrompt(o.cfg.Pipeline.ImageStylePrefix, spec.Article.Title, sectionTitle)
		img := o.generateImage(inlineCtx, prompt, o.cfg.Pipeline.InlineResolution,
			filepath.Join(spec.OutputDir, fmt.Sprintf("inline_%02d.jpg", i+1)))
		img.AfterSection = point
		o.noteDegradation(&result, fmt.Sprintf("inline_%02d", i+1), img.Fallback)
		result.Inline = append(result.Inline, img)
		snap.set(fmt.Sprintf("inline.%d", i), img)
	}

	// Upload cover and inline images; failure keeps a local preview URL.
	uploadCtx := services.WithStep(ctx, "upload")
	o.noteDegradation(&result, "cover_upload", o.uploadImage(uploadCtx, &result.Cover))
	snap.set("cover", result.Cover)
	for i := range result.Inline {
		o.noteDegradation(&result, fmt.Sprintf("inline_%02d_upload", i+1), o.uploadImage(uploadCtx, &result.Inline[i]))
		snap.set(fmt.Sprintf("inline.%d", i), result.Inline[i])
	}

	// Render always runs over whatever URLs were resolved.
	doc := render.Document{
		Title:    spec.Article.Title,
		Subtitle: spec.Article.Subtitle,
		Sections: spec.Article.Sections,
		CoverURL: result.Cover.URL,
		Theme:    theme,
	}
	for _, img := range result.Inline {
		doc.Images = append(doc.Images, render.ImageInsert{
			AfterSection: img.AfterSection,
			URL:          img.URL,
		})
	}
	html := render.Render(doc)
	result.HTMLPath = filepath.Join(spec.OutputDir, "index.html")
	if err := os.WriteFile(result.HTMLPath, []byte(html), 0o644); err != nil {
		o.noteDegradation(&result, "render", "write_failed: "+err.Error())
	}
	result.PreviewURL = o.previewURL(result.HTMLPath)
	snap.set("render", map[string]any{
		"html_path":   result.HTMLPath,
		"preview_url": result.PreviewURL,
		"theme":       theme,
	})

	// Publish only when asked for and the cover actually landed remotely.
	result.Publish = o.publish(services.WithStep(ctx, "publish"), spec, result.Cover, html)
	snap.set("publish", result.Publish)

	logging.WithContext(ctx, o.logger).Info("pipeline run finished",
		slog.Int("degradations", len(result.Degraded)),
		slog.Bool("published", result.Publish.Success))
	return result, nil
}

// generateImage produces one image file. Any generator problem falls back to
// a locally synthesized placeholder so the path is always usable.
func (o *Orchestrator) generateImage(ctx context.Context, prompt, resolution, path string) ImageResult {
	result := ImageResult{Path: path, Prompt: prompt}
	if o.images == nil {
		result.Fallback = "placeholder_missing_credentials"
	} else {
		url, err := o.images.Generate(ctx, prompt, resolution, path)
		if err == nil {
			result.Success = true
			result.URL = url
			return result
		}
		result.Fallback = "placeholder_error: " + err.Error()
		logging.WithContext(ctx, o.logger).Warn("image generation failed, using placeholder",
			logging.String("path", path),
			logging.Error(err))
	}
	if err := imaging.WritePlaceholder(path, resolution); err != nil {
		result.Fallback += "; placeholder_write_failed: " + err.Error()
	}
	return result
}

// uploadImage swaps the image URL for the publish target's copy and returns
// the degradation reason, if any. On failure the image keeps a locally
// addressable preview URL so the rendered document stays viewable.
func (o *Orchestrator) uploadImage(ctx context.Context, img *ImageResult) string {
	if o.uploader == nil {
		img.URL = o.previewURL(img.Path)
		appendFallback(img, "upload_skipped_missing_credentials")
		return "upload_skipped_missing_credentials"
	}
	uploaded, err := o.uploader.UploadImage(ctx, img.Path)
	if err != nil {
		img.URL = o.previewURL(img.Path)
		reason := "upload_failed: " + err.Error()
		appendFallback(img, reason)
		logging.WithContext(ctx, o.logger).Warn("image upload failed, using local preview",
			logging.String("path", img.Path),
			logging.Error(err))
		return reason
	}
	img.URL = uploaded.URL
	img.MediaID = uploaded.MediaID
	return ""
}

func (o *Orchestrator) publish(ctx context.Context, spec RunSpec, cover ImageResult, html string) PublishResult {
	if !spec.Publish {
		return PublishResult{}
	}
	if cover.MediaID == "" {
		return PublishResult{
			Attempted: false,
			Success:   false,
			Message:   "cannot publish: missing cover reference",
		}
	}
	author := ""
	if spec.Account != nil {
		author = spec.Account.Name
	}
	draft, err := o.uploader.CreateDraft(ctx, publisher.Draft{
		Title:        spec.Article.Title,
		Author:       author,
		Digest:       spec.Article.Digest,
		ContentHTML:  html,
		CoverMediaID: cover.MediaID,
	})
	if err != nil {
		logging.WithContext(ctx, o.logger).Warn("draft push failed", logging.Error(err))
		return PublishResult{Attempted: true, Success: false, Message: err.Error()}
	}
	return PublishResult{Attempted: true, Success: true, MediaID: draft.MediaID}
}

// previewURL maps an output file to the local preview route used when the
// publish target never received the file.
func (o *Orchestrator) previewURL(path string) string {
	rel, err := filepath.Rel(o.cfg.Paths.OutputDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return "/art/api/preview/" + filepath.ToSlash(rel)
}

func (o *Orchestrator) noteDegradation(result *Result, step, reason string) {
	if reason == "" {
		return
	}
	result.Degraded = append(result.Degraded, step+": "+reason)
}

func appendFallback(img *ImageResult, reason string) {
	if img.Fallback == "" {
		img.Fallback = reason
		return
	}
	img.Fallback += "; " + reason
}

// insertionPoints spreads inline image slots across sections. The first slot
// is pinned after the header (index -1); the rest land evenly through the
// section list.
func insertionPoints(sectionCount, inlineCount int) []int {
	if inlineCount <= 0 {
		return nil
	}
	points := make([]int, 0, inlineCount)
	points = append(points, -1)
	for i := 1; i < inlineCount; i++ {
		if sectionCount <= 0 {
			points = append(points, -1)
			continue
		}
		idx := i * sectionCount / inlineCount
		if idx >= sectionCount {
			idx = sectionCount - 1
		}
		points = append(points, idx)
	}
	return points
}
