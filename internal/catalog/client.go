package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 256

// Client is an HTTP client for the sports catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new catalog API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchSports fetches the sports list localized in language.
func (c *Client) FetchSports(ctx context.Context, language string) ([]types.Sport, error) {
	params := url.Values{}
	params.Add("lang", language)
	requestURL := fmt.Sprintf("%s/sports?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sportsbook-boot/1.0")

	c.logger.Debug("fetching-sports", zap.String("url", requestURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &types.HTTPStatusError{
			Endpoint:   "sports",
			StatusCode: resp.StatusCode,
			Body:       string(body[:min(len(body), maxErrorBody)]),
		}
	}

	var sports []types.Sport
	err = json.Unmarshal(body, &sports)
	if err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	c.logger.Debug("fetched-sports", zap.Int("count", len(sports)))

	return sports, nil
}
