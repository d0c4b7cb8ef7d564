package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	requestTimeout = 30 * time.Second
	maxNewTokens   = 500
	temperature    = 0.7
)

const (
	teamFallback    = "Check out the leaderboard above to see which teams are dominating! 💪"
	playerFallback  = "Player stats are coming soon! For now, check out the team performance metrics."
	defaultFallback = "I'm having trouble with that question right now. Try asking about teams, wins, or matchups! 🏀"
)

// Client proxies chat questions to text-generation inference endpoints.
type Client struct {
	apiKey  string
	urls    []string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewClient(apiKey string, urls []string) *Client {
	return &Client{
		apiKey: apiKey,
		urls:   urls,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         requestTimeout,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: time.Minute,
		},
		timeout: requestTimeout,
	}
}

type generateRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters generateParams `json:"parameters"`
}

type generateParams struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Answer asks each endpoint in order and returns the first generated text.
// When every endpoint fails it answers with a canned reply picked from the
// question's keywords, so it always returns something to show.
func (c *Client) Answer(ctx context.Context, query string, data any) string {
	prompt, err := buildPrompt(query, data)
	if err != nil {
		slog.Error("Error building chat prompt", "error", err)
		return Fallback(query)
	}

	body, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParams{
			MaxNewTokens:   maxNewTokens,
			Temperature:    temperature,
			ReturnFullText: false,
		},
	})
	if err != nil {
		slog.Error("Error encoding chat request", "error", err)
		return Fallback(query)
	}

	for _, url := range c.urls {
		if ctx.Err() != nil {
			break
		}
		text, err := c.generate(ctx, url, body)
		if err != nil {
			slog.Warn("inference endpoint failed", "url", url, "error", err)
			continue
		}
		return text
	}
	return Fallback(query)
}

func buildPrompt(query string, data any) (string, error) {
	contextText, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding chat context: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a fantasy basketball analytics assistant. Answer questions based on the following data:\n\n")
	sb.Write(contextText)
	sb.WriteString("\n\nUser question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nProvide a clear, concise answer based only on the data provided above. If the data doesn't contain the answer, say so.")
	return sb.String(), nil
}

func (c *Client) generate(ctx context.Context, url string, body []byte) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.SetBody(body)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return "", err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("inference API error: %d", resp.StatusCode())
	}
	return parseGenerated(resp.Body())
}

var errNoText = errors.New("no generated text in response")

// parseGenerated accepts the response shapes the inference API returns: a
// list of generations, a single generation object, or a bare string.
func parseGenerated(body []byte) (string, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decoding inference response: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		if len(v) == 0 {
			return "", errNoText
		}
		if first, ok := v[0].(map[string]any); ok {
			if text, _ := first["generated_text"].(string); text != "" {
				return text, nil
			}
		}
	case map[string]any:
		if text, _ := v["generated_text"].(string); text != "" {
			return text, nil
		}
		if text, _ := v["text"].(string); text != "" {
			return text, nil
		}
	case string:
		return v, nil
	}
	return "", errNoText
}

// Fallback picks a canned reply from the question's keywords.
func Fallback(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "team"), strings.Contains(q, "beat"), strings.Contains(q, "win"):
		return teamFallback
	case strings.Contains(q, "player"):
		return playerFallback
	default:
		return defaultFallback
	}
}
