package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/accounts"
	"inkwell/internal/logging"
	"inkwell/internal/newsfetch"
	"inkwell/internal/queue"
	"inkwell/internal/services"
	"inkwell/internal/services/textgen"
	"inkwell/internal/store"
	"inkwell/internal/textutil"
)

// Execute runs one queued task end to end: article generation, the image and
// render sequence, record keeping, and the status transition to done, error,
// or pushed. Only configuration problems and unusable model output produce an
// error; every external degradation still ends in done.
func (o *Orchestrator) Execute(ctx context.Context, taskID string) (Result, error) {
	task, ok := o.tasks.Get(taskID)
	if !ok {
		return Result{}, services.Wrap(services.ErrNotFound, "pipeline", "execute",
			fmt.Sprintf("task %s not found", taskID), nil)
	}
	account, err := accounts.Find(o.cfg.Paths.AccountsDir, task.AccountID)
	if err != nil {
		o.failTask(taskID, fmt.Sprintf("unknown account %s", task.AccountID))
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "execute",
			fmt.Sprintf("account %s", task.AccountID), err)
	}
	if o.text == nil {
		o.failTask(taskID, "text generation is not configured")
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "execute",
			"text generation client missing", nil)
	}
	if err := o.tasks.SetStatus(taskID, queue.StatusProcessing, ""); err != nil {
		return Result{}, fmt.Errorf("claim task: %w", err)
	}
	ctx = services.WithTaskID(ctx, taskID)
	ctx = services.WithAccountID(ctx, task.AccountID)
	logging.WithContext(ctx, o.logger).Info("task started",
		logging.String("keyword", task.Keyword))

	article, err := o.generateArticle(ctx, account, task)
	if err != nil {
		o.failTask(taskID, err.Error())
		return Result{}, err
	}

	spec := RunSpec{
		TaskID:      taskID,
		AccountID:   task.AccountID,
		Account:     account,
		Article:     article,
		OutputDir:   o.outputDir(task, article),
		Theme:       task.Theme,
		InlineCount: o.inlineCount(task),
		Publish:     task.PushToDraft,
	}
	result, err := o.Run(ctx, spec)
	if err != nil {
		o.failTask(taskID, err.Error())
		return Result{}, err
	}

	o.recordDraft(task, result)
	o.finishTask(task, result)
	return result, nil
}

// generateArticle builds the prompt (enriched with hot-page context when the
// task asks for web search), calls the text model, and extracts the
// structured article. Unusable model output is a hard stop for the task.
func (o *Orchestrator) generateArticle(ctx context.Context, account *accounts.Profile, task queue.Task) (store.Article, error) {
	referenceContext := ""
	if task.DoWebSearch && task.HotURL != "" && o.fetcher != nil {
		fetched := o.fetcher.Fetch(ctx, task.HotURL)
		referenceContext = newsfetch.ReferenceContext(task.HotTitle, task.HotSource, fetched)
		if referenceContext == "" {
			logging.WithContext(ctx, o.logger).Warn("hot page fetch produced nothing usable",
				logging.String("url", task.HotURL))
		}
	}
	prompt := textgen.BuildArticlePrompt(account, task.Keyword, referenceContext)
	raw, err := o.text.Complete(ctx, prompt)
	if err != nil {
		return store.Article{}, services.Wrap(services.ErrExternalService, "pipeline", "generate_article",
			"chat completion failed", err)
	}
	article, err := textgen.ExtractArticle(raw, task.Keyword)
	if err != nil {
		return store.Article{}, fmt.Errorf("extract article for %q: %w", task.Keyword, err)
	}
	return article, nil
}

// outputDir derives the per-task directory. The task id suffix keeps reruns
// of the same title from colliding.
func (o *Orchestrator) outputDir(task queue.Task, article store.Article) string {
	title := article.Title
	if strings.TrimSpace(title) == "" {
		title = task.Keyword
	}
	name := textutil.SanitizeFileName(title) + "_" + strings.TrimPrefix(task.TaskID, "task_")
	return filepath.Join(o.cfg.Paths.OutputDir, textutil.SanitizeToken(task.AccountID), name)
}

func (o *Orchestrator) inlineCount(task queue.Task) int {
	if task.InlineCount > 0 {
		return task.InlineCount
	}
	return o.cfg.Pipeline.InlineCount
}

// recordDraft appends the permanent draft record, carrying the dedup verdict
// from the originating topic candidate when the task references one.
func (o *Orchestrator) recordDraft(task queue.Task, result Result) {
	status := store.DraftStatusDraft
	if result.Publish.Success {
		status = store.DraftStatusPushed
	}
	record := store.DraftRecord{
		AccountID:  task.AccountID,
		TopicID:    task.TopicID,
		TopicTitle: task.Keyword,
		Status:     status,
		Article:    result.Article,
		Outputs: store.Outputs{
			OutputDir:  result.OutputDir,
			HTMLPath:   result.HTMLPath,
			PreviewURL: result.PreviewURL,
		},
		Metrics: map[string]any{
			"sections":      len(result.Article.Sections),
			"inline_images": len(result.Inline),
			"degradations":  len(result.Degraded),
		},
		Dedup: o.topicDedup(task.TopicID),
	}
	if _, err := o.records.AddDraft(record); err != nil {
		o.logger.Error("failed to append draft record",
			logging.String(logging.FieldTaskID, task.TaskID),
			logging.Error(err))
	}
}

func (o *Orchestrator) topicDedup(topicID string) store.Dedup {
	if topicID == "" {
		return store.Dedup{}
	}
	for _, topic := range o.records.RecentTopics(2000) {
		if topic.ID == topicID {
			return topic.Dedup
		}
	}
	return store.Dedup{}
}

// finishTask moves the task to done (then pushed when the draft landed) and
// records the outcome fields the queue exposes to listings and notifiers.
func (o *Orchestrator) finishTask(task queue.Task, result Result) {
	task.Status = queue.StatusDone
	task.Title = result.Article.Title
	task.OutputDir = result.OutputDir
	task.PreviewURL = result.PreviewURL
	task.DoneAt = time.Now()
	if err := o.tasks.Update(task); err != nil {
		o.logger.Error("failed to mark task done",
			logging.String(logging.FieldTaskID, task.TaskID),
			logging.Error(err))
		return
	}
	if result.Publish.Success {
		if err := o.tasks.SetStatus(task.TaskID, queue.StatusPushed, ""); err != nil {
			o.logger.Error("failed to mark task pushed",
				logging.String(logging.FieldTaskID, task.TaskID),
				logging.Error(err))
		}
	}
	if o.notifier != nil {
		if err := o.notifier.NotifyTaskDone(context.Background(), task); err != nil {
			o.logger.Warn("done notification failed", logging.Error(err))
		}
	}
	o.logger.Info("task finished",
		logging.String(logging.FieldTaskID, task.TaskID),
		logging.String("title", task.Title),
		slog.Bool("pushed", result.Publish.Success))
}

// failTask records a terminal error on the task. Invalid transitions are
// logged and swallowed; the task is already terminal in that case.
func (o *Orchestrator) failTask(taskID, message string) {
	if err := o.tasks.SetStatus(taskID, queue.StatusError, message); err != nil {
		o.logger.Error("failed to mark task errored",
			logging.String(logging.FieldTaskID, taskID),
			logging.Error(err))
		return
	}
	if task, ok := o.tasks.Get(taskID); ok && o.notifier != nil {
		if err := o.notifier.NotifyTaskFailed(context.Background(), task); err != nil {
			o.logger.Warn("failure notification failed", logging.Error(err))
		}
	}
}
