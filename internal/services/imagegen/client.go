// Package imagegen submits text-to-image jobs to the Hunyuan art API and
// downloads the finished result.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/services"
)

const (
	defaultEndpoint = "https://aiart.tencentcloudapi.com"
	service         = "aiart"
	apiVersion      = "2022-12-29"
	apiRegion       = "ap-guangzhou"
	submitAction    = "SubmitTextToImageProJob"
	queryAction     = "QueryTextToImageProJob"

	statusDone      = "5"
	statusFailed    = "6"
	statusFailedAlt = "-1"
)

// Generator produces one image for a prompt. Satisfied by Client and by
// test stubs.
type Generator interface {
	Generate(ctx context.Context, prompt, resolution, outputPath string) (string, error)
}

// Client drives the submit/poll/download job cycle.
type Client struct {
	secretID     string
	secretKey    string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
	now          func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the signing clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs an image generation client from configuration.
func NewClient(cfg config.ImageGen, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.SecretID) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "imagegen", "new", "credentials required", nil)
	}
	client := &Client{
		secretID:     strings.TrimSpace(cfg.SecretID),
		secretKey:    strings.TrimSpace(cfg.SecretKey),
		baseURL:      defaultEndpoint,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 3 * time.Second,
		maxWait:      120 * time.Second,
		now:          time.Now,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		client.baseURL = strings.TrimRight(base, "/")
	}
	if cfg.PollSeconds > 0 {
		client.pollInterval = time.Duration(cfg.PollSeconds) * time.Second
	}
	if cfg.TimeoutSeconds > 0 {
		client.maxWait = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type apiResponse struct {
	Response struct {
		Error *struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error"`
		JobID         string   `json:"JobId"`
		JobStatusCode string   `json:"JobStatusCode"`
		ResultImage   []string `json:"ResultImage"`
		ResultDetails []struct {
			URL string `json:"Url"`
		} `json:"ResultDetails"`
	} `json:"Response"`
}

// Generate runs one full job: submit, poll to completion, download to
// outputPath. Returns the remote image URL.
func (c *Client) Generate(ctx context.Context, prompt, resolution, outputPath string) (string, error) {
	jobID, err := c.submit(ctx, prompt, resolution)
	if err != nil {
		return "", err
	}
	imageURL, err := c.poll(ctx, jobID)
	if err != nil {
		return "", err
	}
	if err := c.download(ctx, imageURL, outputPath); err != nil {
		return "", err
	}
	return imageURL, nil
}

func (c *Client) submit(ctx context.Context, prompt, resolution string) (string, error) {
	payload := map[string]any{
		"Prompt":     prompt,
		"Resolution": resolution,
		"LogoAdd":    0,
		// Prompt rewriting improves output for terse prompts.
		"Revise": 1,
	}
	resp, err := c.call(ctx, submitAction, payload)
	if err != nil {
		return "", err
	}
	if resp.Response.JobID == "" {
		return "", services.Wrap(services.ErrExternalService, "imagegen", "submit", "missing job id", nil)
	}
	return resp.Response.JobID, nil
}

func (c *Client) poll(ctx context.Context, jobID string) (string, error) {
	deadline := c.now().Add(c.maxWait)
	for c.now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
		resp, err := c.call(ctx, queryAction, map[string]any{"JobId": jobID})
		if err != nil {
			return "", err
		}
		switch resp.Response.JobStatusCode {
		case statusDone:
			if len(resp.Response.ResultImage) > 0 && resp.Response.ResultImage[0] != "" {
				return resp.Response.ResultImage[0], nil
			}
			if len(resp.Response.ResultDetails) > 0 && resp.Response.ResultDetails[0].URL != "" {
				return resp.Response.ResultDetails[0].URL, nil
			}
			return "", services.Wrap(services.ErrExternalService, "imagegen", "poll", "job finished without result url", nil)
		case statusFailed, statusFailedAlt:
			return "", services.Wrap(services.ErrExternalService, "imagegen", "poll", "job failed", nil)
		}
	}
	return "", services.Wrap(services.ErrTimeout, "imagegen", "poll", fmt.Sprintf("job %s not finished within %s", jobID, c.maxWait), nil)
}

func (c *Client) call(ctx context.Context, action string, payload map[string]any) (*apiResponse, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "imagegen", action, "encode payload", err)
	}
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "imagegen", action, "invalid base url", err)
	}
	now := c.now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "imagegen", action, "build request", err)
	}
	req.Header.Set("Authorization", signTC3(c.secretID, c.secretKey, parsed.Host, service, string(encoded), now))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-TC-Action", action)
	req.Header.Set("X-TC-Timestamp", fmt.Sprintf("%d", now.Unix()))
	req.Header.Set("X-TC-Version", apiVersion)
	req.Header.Set("X-TC-Region", apiRegion)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "imagegen", action, "request failed", err)
	}
	defer httpResp.Body.Close()
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "imagegen", action, "read body", err)
	}
	if httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalService, "imagegen", action,
			fmt.Sprintf("http %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternalService, "imagegen", action, "decode response", err)
	}
	if decoded.Response.Error != nil {
		return nil, services.Wrap(services.ErrExternalService, "imagegen", action,
			fmt.Sprintf("api error %s: %s", decoded.Response.Error.Code, decoded.Response.Error.Message), nil)
	}
	return &decoded, nil
}

func (c *Client) download(ctx context.Context, imageURL, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return services.Wrap(services.ErrExternalService, "imagegen", "download", "create output directory", err)
	}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
		}
		lastErr = c.downloadOnce(ctx, imageURL, outputPath)
		if lastErr == nil {
			return nil
		}
	}
	return services.Wrap(services.ErrExternalService, "imagegen", "download", "exhausted retries", lastErr)
}

func (c *Client) downloadOnce(ctx context.Context, imageURL, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
