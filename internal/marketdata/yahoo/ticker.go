package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const quoteBaseURL = "https://finance.yahoo.com/quote"

// TickerInfo is the scraped summary of a listed symbol.
type TickerInfo struct {
	Symbol string
	Name   string
}

// FetchTickerInfo scrapes the quote page for a symbol's display name.
// The chart API does not expose the long company name, so this is the
// one place the service parses HTML.
func (c *Client) FetchTickerInfo(ctx context.Context, symbol string) (*TickerInfo, error) {
	endpoint := fmt.Sprintf("%s/%s/", quoteBaseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote page for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse quote page for %s: %w", symbol, err)
	}

	info := &TickerInfo{Symbol: symbol}

	// The h1 reads "Apple Inc. (AAPL)"; strip the trailing symbol.
	heading := strings.TrimSpace(doc.Find("h1").First().Text())
	if heading != "" {
		if idx := strings.LastIndex(heading, "("); idx > 0 {
			heading = strings.TrimSpace(heading[:idx])
		}
		info.Name = heading
	}

	if info.Name == "" {
		// Fall back to the <title>, which carries the same prefix.
		title := strings.TrimSpace(doc.Find("title").First().Text())
		if idx := strings.LastIndex(title, "("); idx > 0 {
			info.Name = strings.TrimSpace(title[:idx])
		}
	}

	if info.Name == "" {
		return nil, fmt.Errorf("no ticker name found for %s", symbol)
	}

	return info, nil
}
