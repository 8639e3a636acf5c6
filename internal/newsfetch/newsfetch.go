// Package newsfetch pulls short plaintext snippets from hot-topic URLs so
// article prompts can anchor on concrete facts instead of generic phrasing.
package newsfetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// defaultMaxChars keeps snippets small; prompts only need facts, not
	// the whole article.
	defaultMaxChars = 1200
	userAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122 Safari/537.36"
)

// Result carries the fetched snippet plus enough metadata for the debug
// snapshot.
type Result struct {
	URL         string `json:"url"`
	OK          bool   `json:"ok"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Text        string `json:"text,omitempty"`
	Error       string `json:"error,omitempty"`
	FetchedAt   string `json:"fetched_at"`
}

// Fetcher retrieves page snippets. The zero value is not usable; call New.
type Fetcher struct {
	httpClient *http.Client
	maxChars   int
}

// New builds a fetcher with a short timeout; slow sources are not worth
// blocking generation for.
func New() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 8 * time.Second},
		maxChars:   defaultMaxChars,
	}
}

// WithHTTPClient overrides the transport (useful for tests).
func (f *Fetcher) WithHTTPClient(client *http.Client) *Fetcher {
	if client != nil {
		f.httpClient = client
	}
	return f
}

// Fetch retrieves the URL and reduces HTML to a clamped plaintext snippet.
// Failures are reported in the Result rather than as errors; callers treat a
// missing snippet as a degradation, not a stop.
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	result := Result{URL: strings.TrimSpace(url), FetchedAt: time.Now().Format(time.RFC3339)}
	if result.URL == "" {
		result.Error = "empty url"
		return result
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.URL, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	result.Status = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Error = fmt.Sprintf("http %d", resp.StatusCode)
		return result
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	doc.Find("script, style, noscript").Remove()
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > f.maxChars {
		text = string(runes[:f.maxChars])
	}
	result.Text = text
	result.OK = true
	return result
}

// ReferenceContext formats a fetched snippet into prompt context. Returns ""
// when the fetch produced nothing usable.
func ReferenceContext(hotTitle, hotSource string, result Result) string {
	if !result.OK || strings.TrimSpace(result.Text) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("热点参考（请只抽取事实细节，不要复述新闻）：\n")
	if hotTitle != "" {
		fmt.Fprintf(&b, "- 标题：%s\n", hotTitle)
	}
	if hotSource != "" {
		fmt.Fprintf(&b, "- 来源：%s\n", hotSource)
	}
	fmt.Fprintf(&b, "- URL：%s\n", result.URL)
	fmt.Fprintf(&b, "- 摘要：%s", result.Text)
	return b.String()
}
