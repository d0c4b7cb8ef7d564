package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/omarshaarawi/hoopsbot/internal/config"
)

const DefaultBaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/fba"

// ErrUnauthorized is returned when ESPN rejects the league cookies.
var ErrUnauthorized = errors.New("espn: league is private or credentials are invalid")

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	Config     config.ESPNAPI
}

func NewClient(cfg config.ESPNAPI) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		Config:     cfg,
	}
}

func (c *Client) leagueEndpoint() string {
	return fmt.Sprintf("/seasons/%s/segments/0/leagues/%s", c.Config.Year, c.Config.LeagueID)
}

func (c *Client) Get(ctx context.Context, endpoint string, params, headers map[string]string, result interface{}) error {
	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	q := req.URL.Query()
	for key, value := range params {
		values := strings.Split(value, ",")
		for _, v := range values {
			q.Add(key, strings.TrimSpace(v))
		}
	}
	req.URL.RawQuery = q.Encode()

	c.setCookies(req)

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

// setCookies attaches SWID and espn_s2 when configured; public leagues work
// without them.
func (c *Client) setCookies(req *http.Request) {
	if c.Config.SWID == "" && c.Config.ESPNS2 == "" {
		return
	}
	cookie := fmt.Sprintf("SWID=%s; espn_s2=%s", c.Config.SWID, c.Config.ESPNS2)
	req.Header.Set("Cookie", cookie)
}

func filterHeader(filter interface{}) (map[string]string, error) {
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("error marshalling filters: %w", err)
	}
	return map[string]string{"x-fantasy-filter": string(filterJSON)}, nil
}
