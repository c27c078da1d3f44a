package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/maisquelle/maisquelle/internal/models"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"

	// maxSamplesPerRequest bounds the request body so a large schema scan
	// cannot blow up the prompt.
	maxSamplesPerRequest = 120
)

const systemPrompt = `You are a MySQL performance advisor. You receive threshold
findings and the metric samples behind them from a single monitoring run.
Respond with a JSON object only, no prose, of the shape:
{"recommendations":[{"advice": "...", "command": "...", "priority": "critical|high|medium|low", "metrics": ["metric.name"]}]}
Every recommendation must reference at least one of the provided finding
metrics. Commands are optional and must be single read-only or tuning
statements, never destructive.`

// ServiceError is a failure of the reasoning service call. It is
// recoverable: callers fall back to local recommendations.
type ServiceError struct {
	Reason string
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reasoning service %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("reasoning service %s", e.Reason)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Client talks to the Anthropic Messages API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// New creates a client. Returns nil if apiKey is empty; a nil client is
// safe to call and reports the service as unavailable.
func New(apiKey, model string, timeout time.Duration) *Client {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		maxTokens:  2048,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Available reports whether the client can be used.
func (c *Client) Available() bool { return c != nil }

// AdviceItem is one structured recommendation from the service.
type AdviceItem struct {
	Advice   string   `json:"advice"`
	Command  string   `json:"command,omitempty"`
	Priority string   `json:"priority"`
	Metrics  []string `json:"metrics"`
}

// adviceResponse is the JSON document the model is instructed to emit.
type adviceResponse struct {
	Recommendations []AdviceItem `json:"recommendations"`
}

// analysisRequest is the bounded payload sent as the user message.
type analysisRequest struct {
	Level    string                `json:"level"`
	Findings []models.Finding      `json:"findings"`
	Samples  []models.MetricSample `json:"samples"`
}

// messagesRequest/messagesResponse follow the Messages API wire format.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Advise sends findings plus supporting samples and returns the parsed
// advice items. Any transport, status, or parse failure comes back as a
// *ServiceError so the caller can fall back to local mode.
func (c *Client) Advise(ctx context.Context, level models.Level, findings []models.Finding, samples []models.MetricSample) ([]AdviceItem, error) {
	if c == nil {
		return nil, &ServiceError{Reason: "not configured"}
	}
	if len(findings) == 0 {
		return nil, nil
	}

	if len(samples) > maxSamplesPerRequest {
		samples = samples[:maxSamplesPerRequest]
	}

	payload, err := json.Marshal(analysisRequest{
		Level:    level.String(),
		Findings: findings,
		Samples:  samples,
	})
	if err != nil {
		return nil, &ServiceError{Reason: "encode request", Err: err}
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages: []message{
			{Role: "user", Content: "Analyze this MySQL monitoring run and suggest tuning actions:\n" + string(payload)},
		},
	})
	if err != nil {
		return nil, &ServiceError{Reason: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, &ServiceError{Reason: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Reason: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, &ServiceError{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, msg)}
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, &ServiceError{Reason: "decode response", Err: err}
	}

	text := ""
	for _, block := range mr.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	items, err := parseAdvice(text)
	if err != nil {
		return nil, &ServiceError{Reason: "malformed advice", Err: err}
	}
	return items, nil
}

// parseAdvice extracts the JSON advice document from the model output,
// tolerating surrounding prose or code fences.
func parseAdvice(text string) ([]AdviceItem, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var doc adviceResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return nil, err
	}

	var items []AdviceItem
	for _, item := range doc.Recommendations {
		if strings.TrimSpace(item.Advice) == "" || len(item.Metrics) == 0 {
			continue
		}
		if !models.ValidSeverity(item.Priority) {
			item.Priority = models.SeverityMedium
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("response contained no usable recommendations")
	}
	return items, nil
}

// SetBaseURL overrides the API endpoint, used by tests and self-hosted
// gateways.
func (c *Client) SetBaseURL(u string) {
	if c != nil {
		c.baseURL = strings.TrimRight(u, "/")
	}
}
