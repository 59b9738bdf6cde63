package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	httpclient "SignalFuse/pkg/http"
	"SignalFuse/pkg/util"
)

// HTTPProvider is a configurable social sentiment source. Each provider
// returns a raw score in [-100, 100] for a symbol; aggregation and
// normalization happen in the sentiment signal source.
type HTTPProvider struct {
	name    string
	url     string // {symbol} and {base} placeholders are substituted
	apiKey  string
	header  string // header name carrying the API key, if any
	http    *httpclient.Client
}

type ProviderSpec struct {
	Name      string
	URL       string
	APIKey    string
	KeyHeader string
}

func NewHTTPProvider(spec ProviderSpec, http *httpclient.Client) *HTTPProvider {
	return &HTTPProvider{
		name:   spec.Name,
		url:    spec.URL,
		apiKey: spec.APIKey,
		header: spec.KeyHeader,
		http:   http,
	}
}

func (p *HTTPProvider) Name() string { return p.name }

type scoreResponse struct {
	Score     *float64 `json:"score"`
	Sentiment *float64 `json:"sentiment"`
	Value     string   `json:"value"` // fear & greed style string value
	Data      []struct {
		Value string `json:"value"`
	} `json:"data"` // fear & greed index wraps values in a data array
}

// Score fetches the provider's sentiment score for the symbol.
// Providers disagree on response shape; the first recognized field wins.
func (p *HTTPProvider) Score(ctx context.Context, symbol string) (float64, error) {
	url := strings.NewReplacer(
		"{symbol}", symbol,
		"{base}", util.BaseAsset(symbol),
	).Replace(p.url)

	headers := map[string]string{}
	if p.apiKey != "" && p.header != "" {
		headers[p.header] = p.apiKey
	}

	var resp scoreResponse
	err := p.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method:  httpclient.MethodGet,
		URL:     url,
		Headers: headers,
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("provider %s: %w", p.name, err)
	}

	score, err := resp.score()
	if err != nil {
		return 0, fmt.Errorf("provider %s: %w", p.name, err)
	}
	return clampScore(score), nil
}

func (r *scoreResponse) score() (float64, error) {
	raw := r.Value
	if raw == "" && len(r.Data) > 0 {
		raw = r.Data[0].Value
	}

	switch {
	case r.Score != nil:
		return *r.Score, nil
	case r.Sentiment != nil:
		return *r.Sentiment, nil
	case raw != "":
		// Fear & greed indexes report 0..100; recenter to -100..100.
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parse value %q: %w", raw, err)
		}
		return (v - 50) * 2, nil
	default:
		return 0, fmt.Errorf("no score field in response")
	}
}

func clampScore(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}
