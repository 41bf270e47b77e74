// Package clob is used to call clob polymarket endpoints.
package clob

import (
	"fmt"
	"net/http"
	"time"

	"github.com/daszybak/polyterm/internal/price"
	"github.com/daszybak/polyterm/pkg/httpclient"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

type MarketToken struct {
	Outcome string      `json:"outcome"`
	Price   price.Price `json:"price"`
	TokenID string      `json:"token_id"`
	Winner  bool        `json:"winner"`
}

type Market struct {
	ConditionID string        `json:"condition_id"`
	Description string        `json:"description"`
	Question    string        `json:"question"`
	EndDateISO  string        `json:"end_date_iso"`
	Tokens      []MarketToken `json:"tokens"`
}

func (c *Client) GetMarketByConditionID(conditionID string) (*Market, error) {
	market, err := httpclient.GetResource[*Market](c.httpClient, c.baseURL, "/markets/"+conditionID, []int{200})
	if err != nil {
		return nil, fmt.Errorf("couldn't get market by condition ID %s: %w", conditionID, err)
	}
	return market, nil
}
