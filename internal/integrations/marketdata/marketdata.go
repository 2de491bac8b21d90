package marketdata

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/lending-office/backoffice/internal/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Client fetches instrument prices from the market-data feed used to revalue
// pledged collateral.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new market-data client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.PriceFeedURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// FetchPrices retrieves the current price per instrument from the XML feed.
// Expected payload:
//
//	<prices asOf="...">
//	  <instrument symbol="GOLD-ETF"><price>62.15</price></instrument>
//	  ...
//	</prices>
func (c *Client) FetchPrices() (map[string]decimal.Decimal, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	c.log.Debugf("Price feed XML response: %s", string(body))

	return parsePrices(body)
}

// parsePrices extracts per-instrument prices from the feed payload
func parsePrices(rawBody []byte) (map[string]decimal.Decimal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	instruments := doc.FindElements("//prices/instrument")
	if len(instruments) == 0 {
		return nil, fmt.Errorf("no instrument prices found in XML")
	}

	prices := make(map[string]decimal.Decimal, len(instruments))
	for _, inst := range instruments {
		symbol := inst.SelectAttrValue("symbol", "")
		if symbol == "" {
			return nil, fmt.Errorf("instrument element missing symbol attribute")
		}
		priceElement := inst.FindElement("./price")
		if priceElement == nil {
			return nil, fmt.Errorf("price element not found for instrument %s", symbol)
		}
		price, err := decimal.NewFromString(priceElement.Text())
		if err != nil {
			return nil, fmt.Errorf("failed to parse price for instrument %s: %v", symbol, err)
		}
		prices[symbol] = price
	}
	return prices, nil
}
