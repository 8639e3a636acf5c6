package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"inkwell/internal/queue"
	"inkwell/internal/services/publisher"
	"inkwell/internal/testsupport"
)

const accountFixture = `account_id: acct-1
name: 冷雪随笔
platform: wechat_mp
writing_style:
  domain: 数字生活
  persona: 理性 克制 的观察者
  tone: 平实
  audience: 都市上班族
  keywords: [专注, 数字极简]
`

const articleJSON = "```json\n" + `{
  "title": "把注意力找回来的四个练习",
  "digest": "碎片化时代的专注力自救指南",
  "subtitle": "从卸载第一个应用开始",
  "sections": [
    {"title": "为什么总是分心", "paragraphs": ["注意力被切碎不是意志力问题。"]},
    {"title": "练习一：物理隔离", "paragraphs": ["把手机放进另一个房间。"]},
    {"title": "练习二：单线程工作", "paragraphs": ["一次只开一个窗口。"]},
    {"title": "练习三：定期断网", "paragraphs": ["每周留一个离线的下午。"]}
  ]
}` + "\n```"

type stubCompleter struct {
	response string
	err      error
}

func (s stubCompleter) Complete(context.Context, string) (string, error) {
	return s.response, s.err
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, string, string) (string, error) {
	return "", errors.New("remote generator exploded")
}

type stubUploader struct {
	uploadErr error
	draftErr  error
	drafts    int
}

func (s *stubUploader) UploadImage(_ context.Context, path string) (publisher.UploadResult, error) {
	if s.uploadErr != nil {
		return publisher.UploadResult{}, s.uploadErr
	}
	return publisher.UploadResult{
		MediaID: "media_" + filepath.Base(path),
		URL:     "https://cdn.example.com/" + filepath.Base(path),
	}, nil
}

func (s *stubUploader) CreateDraft(context.Context, publisher.Draft) (publisher.DraftResult, error) {
	if s.draftErr != nil {
		return publisher.DraftResult{}, s.draftErr
	}
	s.drafts++
	return publisher.DraftResult{MediaID: "draft_media"}, nil
}

func TestExecuteDegradesToPlaceholdersAndFinishesDone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	records := testsupport.NewStore(t, cfg)
	tasks := testsupport.NewQueue(t, cfg)
	testsupport.WriteAccount(t, cfg, "acct-1", accountFixture)

	task, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "找回注意力", InlineCount: 2})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	o := New(cfg, records, tasks,
		WithTextGenerator(stubCompleter{response: articleJSON}),
		WithImageGenerator(failingGenerator{}))

	result, err := o.Execute(context.Background(), task.TaskID)
	if err != nil {
		t.Fatalf("Execute returned error despite degradable failures: %v", err)
	}

	got, _ := tasks.Get(task.TaskID)
	if got.Status != queue.StatusDone {
		t.Fatalf("expected task done, got %s (error=%q)", got.Status, got.Error)
	}

	if result.Cover.Path == "" {
		t.Fatal("cover result must always carry a path")
	}
	if _, err := os.Stat(result.Cover.Path); err != nil {
		t.Errorf("placeholder cover not written: %v", err)
	}
	if result.Cover.Success {
		t.Error("cover should be marked unsuccessful when the generator failed")
	}
	if !strings.Contains(result.Cover.Fallback, "placeholder_error") {
		t.Errorf("cover fallback reason missing: %q", result.Cover.Fallback)
	}
	if len(result.Inline) != 2 {
		t.Fatalf("expected exactly one result per inline slot, got %d", len(result.Inline))
	}
	for i, img := range result.Inline {
		if _, err := os.Stat(img.Path); err != nil {
			t.Errorf("inline placeholder %d not written: %v", i, err)
		}
	}

	html, err := os.ReadFile(result.HTMLPath)
	if err != nil {
		t.Fatalf("rendered document missing: %v", err)
	}
	if !strings.Contains(string(html), result.Cover.URL) {
		t.Error("rendered document does not reference the cover URL")
	}
	for _, img := range result.Inline {
		if !strings.Contains(string(html), img.URL) {
			t.Errorf("rendered document missing inline image URL %s", img.URL)
		}
	}
	if !strings.Contains(result.Cover.URL, "/art/api/preview/") {
		t.Errorf("unuploaded cover should resolve to a local preview URL, got %s", result.Cover.URL)
	}

	drafts := records.RecentDrafts(10)
	if len(drafts) != 1 {
		t.Fatalf("expected one draft record, got %d", len(drafts))
	}
	if drafts[0].Article.Title != "把注意力找回来的四个练习" {
		t.Errorf("draft record carries wrong article title: %s", drafts[0].Article.Title)
	}
}

func TestExecuteRefusesPublishWithoutCoverReference(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	records := testsupport.NewStore(t, cfg)
	tasks := testsupport.NewQueue(t, cfg)
	testsupport.WriteAccount(t, cfg, "acct-1", accountFixture)

	task, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "找回注意力", PushToDraft: true})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	uploader := &stubUploader{uploadErr: errors.New("upload rejected")}
	o := New(cfg, records, tasks,
		WithTextGenerator(stubCompleter{response: articleJSON}),
		WithImageGenerator(failingGenerator{}),
		WithUploader(uploader))

	result, err := o.Execute(context.Background(), task.TaskID)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Publish.Success {
		t.Fatal("publish must not succeed without a cover media id")
	}
	if !strings.Contains(result.Publish.Message, "missing cover reference") {
		t.Errorf("publish message should name the missing cover, got %q", result.Publish.Message)
	}
	if uploader.drafts != 0 {
		t.Errorf("draft creation should never be attempted, got %d calls", uploader.drafts)
	}

	got, _ := tasks.Get(task.TaskID)
	if got.Status != queue.StatusDone {
		t.Errorf("task must end done, not %s", got.Status)
	}
}

func TestExecutePushesDraftWhenCoverUploads(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	records := testsupport.NewStore(t, cfg)
	tasks := testsupport.NewQueue(t, cfg)
	testsupport.WriteAccount(t, cfg, "acct-1", accountFixture)

	task, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "找回注意力", PushToDraft: true})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	uploader := &stubUploader{}
	o := New(cfg, records, tasks,
		WithTextGenerator(stubCompleter{response: articleJSON}),
		WithImageGenerator(failingGenerator{}),
		WithUploader(uploader))

	result, err := o.Execute(context.Background(), task.TaskID)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !result.Publish.Success {
		t.Fatalf("expected publish success, got message %q", result.Publish.Message)
	}
	if uploader.drafts != 1 {
		t.Errorf("expected one draft creation, got %d", uploader.drafts)
	}
	got, _ := tasks.Get(task.TaskID)
	if got.Status != queue.StatusPushed {
		t.Errorf("expected task pushed, got %s", got.Status)
	}
	drafts := records.RecentDrafts(10)
	if len(drafts) != 1 || drafts[0].Status != "pushed" {
		t.Errorf("draft record should be marked pushed: %+v", drafts)
	}
}

func TestExecuteMarksTaskErrorOnUnparsableModelOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	records := testsupport.NewStore(t, cfg)
	tasks := testsupport.NewQueue(t, cfg)
	testsupport.WriteAccount(t, cfg, "acct-1", accountFixture)

	task, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "找回注意力"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	o := New(cfg, records, tasks,
		WithTextGenerator(stubCompleter{response: "抱歉，我无法完成这个请求。"}))

	if _, err := o.Execute(context.Background(), task.TaskID); err == nil {
		t.Fatal("expected error for unparsable model output")
	}
	got, _ := tasks.Get(task.TaskID)
	if got.Status != queue.StatusError {
		t.Errorf("expected task error, got %s", got.Status)
	}
	if got.Error == "" {
		t.Error("task error message should be recorded")
	}
}

func TestDebugSnapshotTracksEveryStep(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	records := testsupport.NewStore(t, cfg)
	tasks := testsupport.NewQueue(t, cfg)
	testsupport.WriteAccount(t, cfg, "acct-1", accountFixture)

	task, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "找回注意力", InlineCount: 2})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	o := New(cfg, records, tasks,
		WithTextGenerator(stubCompleter{response: articleJSON}),
		WithImageGenerator(failingGenerator{}))

	result, err := o.Execute(context.Background(), task.TaskID)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(result.OutputDir, "pipeline_debug.json"))
	if err != nil {
		t.Fatalf("debug snapshot missing: %v", err)
	}
	doc := string(raw)
	if gjson.Get(doc, "task_id").String() != task.TaskID {
		t.Error("snapshot missing task id")
	}
	if !gjson.Get(doc, "cover.path").Exists() {
		t.Error("snapshot missing cover step")
	}
	if int(gjson.Get(doc, "inline.#").Int()) != 2 {
		t.Errorf("snapshot should track both inline slots, got %s", gjson.Get(doc, "inline.#").Raw)
	}
	if !gjson.Get(doc, "render.preview_url").Exists() {
		t.Error("snapshot missing render step")
	}
	if !gjson.Get(doc, "publish").Exists() {
		t.Error("snapshot missing publish step")
	}
}

func TestExecuteLogsCarryTaskAndStepContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	records := testsupport.NewStore(t, cfg)
	tasks := testsupport.NewQueue(t, cfg)
	testsupport.WriteAccount(t, cfg, "acct-1", accountFixture)

	task, err := tasks.Add(queue.Task{AccountID: "acct-1", Keyword: "找回注意力", InlineCount: 1})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	var buf bytes.Buffer
	o := New(cfg, records, tasks,
		WithTextGenerator(stubCompleter{response: articleJSON}),
		WithImageGenerator(failingGenerator{}),
		WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	if _, err := o.Execute(context.Background(), task.TaskID); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	var coverWarn string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if gjson.Get(line, "msg").String() == "image generation failed, using placeholder" &&
			gjson.Get(line, "step").String() == "cover" {
			coverWarn = line
			break
		}
	}
	if coverWarn == "" {
		t.Fatalf("no cover-step warn line found in logs:\n%s", buf.String())
	}
	if got := gjson.Get(coverWarn, "task_id").String(); got != task.TaskID {
		t.Errorf("task_id = %q, want %q", got, task.TaskID)
	}
	if got := gjson.Get(coverWarn, "account_id").String(); got != "acct-1" {
		t.Errorf("account_id = %q", got)
	}
}

func TestInsertionPoints(t *testing.T) {
	tests := []struct {
		name     string
		sections int
		count    int
		want     []int
	}{
		{"no slots", 5, 0, nil},
		{"single slot pinned after header", 5, 1, []int{-1}},
		{"two slots", 4, 2, []int{-1, 2}},
		{"three slots", 6, 3, []int{-1, 2, 4}},
		{"no sections", 0, 2, []int{-1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := insertionPoints(tt.sections, tt.count)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
