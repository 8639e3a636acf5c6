package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/queue"
)

const userAgent = "Inkwell/0.1.0"

// Service defines the notification surface exposed to the dispatcher and
// pipeline.
type Service interface {
	// NotifyTaskReady tells the downstream consumer there is work to pick
	// up. Errors matter here: a failed delivery must leave the task
	// eligible for re-notification.
	NotifyTaskReady(ctx context.Context, task queue.Task) error
	NotifyTaskDone(ctx context.Context, task queue.Task) error
	NotifyTaskFailed(ctx context.Context, task queue.Task) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by the configured webhook.
// When no webhook is configured, a noop implementation is returned.
func NewService(cfg config.Notify) Service {
	endpoint := strings.TrimSpace(cfg.WebhookURL)
	if endpoint == "" {
		return noopService{}
	}
	if target := strings.TrimSpace(cfg.Target); target != "" {
		endpoint = strings.TrimRight(endpoint, "/") + "/" + target
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type webhookService struct {
	endpoint string
	client   *http.Client
}

func (n *webhookService) NotifyTaskReady(ctx context.Context, task queue.Task) error {
	message := fmt.Sprintf("待处理任务：%s\n账号：%s", task.Keyword, task.AccountID)
	if task.HotTitle != "" {
		message += fmt.Sprintf("\n热点：%s", task.HotTitle)
	}
	return n.send(ctx, payload{
		title:   "Inkwell - Task Ready",
		message: message,
		tags:    []string{"inkwell", "task", "ready"},
	})
}

func (n *webhookService) NotifyTaskDone(ctx context.Context, task queue.Task) error {
	title := strings.TrimSpace(task.Title)
	if title == "" {
		title = task.Keyword
	}
	message := fmt.Sprintf("生成完成：%s", title)
	if task.PreviewURL != "" {
		message += fmt.Sprintf("\n预览：%s", task.PreviewURL)
	}
	return n.send(ctx, payload{
		title:    "Inkwell - Task Done",
		message:  message,
		tags:     []string{"inkwell", "task", "done"},
		priority: "high",
	})
}

func (n *webhookService) NotifyTaskFailed(ctx context.Context, task queue.Task) error {
	message := fmt.Sprintf("任务失败：%s\n原因：%s", task.Keyword, strings.TrimSpace(task.Error))
	return n.send(ctx, payload{
		title:    "Inkwell - Task Failed",
		message:  message,
		tags:     []string{"inkwell", "task", "failed"},
		priority: "high",
	})
}

func (n *webhookService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Inkwell - Test",
		message:  "notification system test",
		tags:     []string{"inkwell", "test"},
		priority: "low",
	})
}

func (n *webhookService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTaskReady(context.Context, queue.Task) error  { return nil }
func (noopService) NotifyTaskDone(context.Context, queue.Task) error   { return nil }
func (noopService) NotifyTaskFailed(context.Context, queue.Task) error { return nil }
func (noopService) TestNotification(context.Context) error             { return nil }
