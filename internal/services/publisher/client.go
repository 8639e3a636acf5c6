// Package publisher wraps the WeChat MP material and draft APIs used to push
// finished articles to the publishing platform.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/services"
)

const defaultBaseURL = "https://api.weixin.qq.com"

// Uploader pushes rendered artifacts to the publish target. Satisfied by
// Client and by test stubs.
type Uploader interface {
	UploadImage(ctx context.Context, path string) (UploadResult, error)
	CreateDraft(ctx context.Context, draft Draft) (DraftResult, error)
}

// UploadResult identifies an image in the remote material library.
type UploadResult struct {
	MediaID string `json:"media_id"`
	URL     string `json:"url"`
}

// Draft is one article submitted to the draft box.
type Draft struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	Digest       string `json:"digest"`
	ContentHTML  string `json:"content"`
	CoverMediaID string `json:"thumb_media_id"`
}

// DraftResult identifies the created draft.
type DraftResult struct {
	MediaID string `json:"media_id"`
}

// Client calls the MP platform with cached access tokens.
type Client struct {
	appID      string
	secret     string
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient constructs a publisher client from configuration.
func NewClient(cfg config.Publisher) (*Client, error) {
	if strings.TrimSpace(cfg.AppID) == "" || strings.TrimSpace(cfg.Secret) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publisher", "new", "appid and secret required", nil)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		appID:      strings.TrimSpace(cfg.AppID),
		secret:     strings.TrimSpace(cfg.Secret),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		client.baseURL = strings.TrimRight(base, "/")
	}
	return client, nil
}

type apiError struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (e apiError) failed() bool { return e.ErrCode != 0 }

// accessToken returns a cached token or fetches a fresh one. Tokens are
// refreshed a minute early so in-flight requests never race expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}
	endpoint := fmt.Sprintf("%s/cgi-bin/token?grant_type=client_credential&appid=%s&secret=%s",
		c.baseURL, url.QueryEscape(c.appID), url.QueryEscape(c.secret))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "publisher", "token", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "publisher", "token", "request failed", err)
	}
	defer resp.Body.Close()
	var decoded struct {
		apiError
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", services.Wrap(services.ErrExternalService, "publisher", "token", "decode response", err)
	}
	if decoded.failed() || decoded.AccessToken == "" {
		return "", services.Wrap(services.ErrExternalService, "publisher", "token",
			fmt.Sprintf("api error %d: %s", decoded.ErrCode, decoded.ErrMsg), nil)
	}
	c.token = decoded.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(decoded.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// UploadImage adds a local image to the permanent material library.
func (c *Client) UploadImage(ctx context.Context, path string) (UploadResult, error) {
	var empty UploadResult
	data, err := os.ReadFile(path)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "publisher", "upload", "read image", err)
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return empty, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "upload", "build form", err)
	}
	if _, err := part.Write(data); err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "upload", "write form", err)
	}
	if err := writer.Close(); err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "upload", "close form", err)
	}

	endpoint := fmt.Sprintf("%s/cgi-bin/material/add_material?access_token=%s&type=image", c.baseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "upload", "build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "upload", "request failed", err)
	}
	defer resp.Body.Close()
	var decoded struct {
		apiError
		MediaID string `json:"media_id"`
		URL     string `json:"url"`
	}
	if err := decodeBody(resp.Body, &decoded); err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "upload", "decode response", err)
	}
	if decoded.failed() || decoded.MediaID == "" {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "upload",
			fmt.Sprintf("api error %d: %s", decoded.ErrCode, decoded.ErrMsg), nil)
	}
	return UploadResult{MediaID: decoded.MediaID, URL: decoded.URL}, nil
}

// CreateDraft submits one article to the draft box.
func (c *Client) CreateDraft(ctx context.Context, draft Draft) (DraftResult, error) {
	var empty DraftResult
	if strings.TrimSpace(draft.Title) == "" {
		return empty, services.Wrap(services.ErrValidation, "publisher", "draft", "empty title", nil)
	}
	if strings.TrimSpace(draft.CoverMediaID) == "" {
		return empty, services.Wrap(services.ErrValidation, "publisher", "draft", "missing cover reference", nil)
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return empty, err
	}
	payload := map[string]any{"articles": []Draft{draft}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "publisher", "draft", "encode payload", err)
	}
	endpoint := fmt.Sprintf("%s/cgi-bin/draft/add?access_token=%s", c.baseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "draft", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "draft", "request failed", err)
	}
	defer resp.Body.Close()
	var decoded struct {
		apiError
		MediaID string `json:"media_id"`
	}
	if err := decodeBody(resp.Body, &decoded); err != nil {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "draft", "decode response", err)
	}
	if decoded.failed() || decoded.MediaID == "" {
		return empty, services.Wrap(services.ErrExternalService, "publisher", "draft",
			fmt.Sprintf("api error %d: %s", decoded.ErrCode, decoded.ErrMsg), nil)
	}
	return DraftResult{MediaID: decoded.MediaID}, nil
}

func decodeBody(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
