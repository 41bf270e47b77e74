// Package gamma consumes Polymarket gamma endpoints.
package gamma

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/daszybak/polyterm/pkg/httpclient"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		// The new-markets poll piggybacks on the trade stream cadence;
		// one request per second is plenty.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type Market struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	ConditionID string `json:"conditionId"`
	Slug        string `json:"slug"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Liquidity   string `json:"liquidity"`
	Volume      string `json:"volume"`
}

// ListNew returns up to limit open markets, newest first.
func (c *Client) ListNew(ctx context.Context, limit int) ([]*Market, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("couldn't wait for rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("/markets?limit=%d&closed=false&order=createdAt&ascending=false", limit)
	markets, err := httpclient.GetResource[[]*Market](c.httpClient, c.baseURL, endpoint, []int{200})
	if err != nil {
		return nil, fmt.Errorf("couldn't list new markets: %w", err)
	}
	return markets, nil
}
