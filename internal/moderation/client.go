package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const moderationPrompt = `You are a content moderator for a college placement portal.
Students post placement experiences and admins post company announcements; nothing
offensive, spammy, or disparaging toward the institution may go live.

Classify the user's text and respond with ONLY a JSON object of this exact shape:
{"isApproved": boolean, "confidence": number between 0 and 100, "issues": [strings],
"reason": string, "category": one of "SAFE", "COLLEGE_CRITICISM", "PROFANITY",
"UNPROFESSIONAL", "SPAM"}`

const extractionPrompt = `Extract a company announcement from the user's text. Respond
with ONLY a JSON object: {"companyName": string, "title": string, "content": string}.
Keep the content faithful to the input; do not invent details.`

type Config struct {
	Endpoint string
	Model    string
	APIKey   string
}

// Client moderates text through an OpenAI-compatible chat completions endpoint.
// A nil or unconfigured client means moderation is unavailable, never that
// content is approved.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != "" && c.model != ""
}

// ModerateContent classifies text for publication. Any failure, from a network
// error to an unparseable response, yields a fail-closed verdict; the error is
// returned alongside for logging only.
func (c *Client) ModerateContent(ctx context.Context, text string) (Verdict, error) {
	raw, err := c.complete(ctx, moderationPrompt, text)
	if err != nil {
		return failClosed("moderation call failed"), err
	}

	var payload struct {
		IsApproved bool     `json:"isApproved"`
		Confidence int      `json:"confidence"`
		Issues     []string `json:"issues"`
		Reason     string   `json:"reason"`
		Category   string   `json:"category"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return failClosed("moderation response was not valid JSON"), fmt.Errorf("parse moderation response: %w", err)
	}
	category, ok := ParseCategory(payload.Category)
	if !ok || category == CategoryError || category == CategoryNotChecked {
		return failClosed("moderation response carried an unknown category"), fmt.Errorf("unknown moderation category %q", payload.Category)
	}
	if payload.Confidence < 0 || payload.Confidence > 100 {
		return failClosed("moderation confidence out of range"), fmt.Errorf("confidence %d out of range", payload.Confidence)
	}
	issues := payload.Issues
	if issues == nil {
		issues = []string{}
	}
	return Verdict{
		Success:    true,
		IsApproved: payload.IsApproved,
		Confidence: payload.Confidence,
		Issues:     issues,
		Reason:     payload.Reason,
		Category:   category,
	}, nil
}

// ExtractUpdateInfo drafts announcement fields from free text. On failure the
// original text is kept as the content so the admin loses nothing.
func (c *Client) ExtractUpdateInfo(ctx context.Context, text string) (Draft, error) {
	fallback := Draft{Success: false, Content: text}

	raw, err := c.complete(ctx, extractionPrompt, text)
	if err != nil {
		return fallback, err
	}

	var payload struct {
		CompanyName string `json:"companyName"`
		Title       string `json:"title"`
		Content     string `json:"content"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return fallback, fmt.Errorf("parse extraction response: %w", err)
	}
	if payload.Content == "" {
		payload.Content = text
	}
	return Draft{
		Success:     true,
		CompanyName: payload.CompanyName,
		Title:       payload.Title,
		Content:     payload.Content,
	}, nil
}

func (c *Client) complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("moderation client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	var content string
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("completion endpoint returned %s", resp.Status))
		}
		if resp.StatusCode >= http.StatusBadRequest {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("completion endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
		}

		var completion struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
			return fmt.Errorf("decode completion response: %w", err)
		}
		if len(completion.Choices) == 0 {
			return fmt.Errorf("completion response had no choices")
		}
		content = completion.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// stripCodeFence unwraps ```json ... ``` style fencing that generative
// endpoints tend to add around JSON payloads.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || strings.EqualFold(first, "json") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
