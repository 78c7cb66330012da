package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"DCASimulator/internal/model"
)

// VsTraderFetcher implements Fetcher using the vstrader REST API. The API
// stamps daily bars in unix seconds; Location is the exchange zone used to
// recover each bar's trading date.
type VsTraderFetcher struct {
	BaseURL  string
	APIKey   string
	Location *time.Location
	Client   *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support. A nil
// loc means bars are stamped in UTC.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string, loc *time.Location) *VsTraderFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &VsTraderFetcher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Location: loc,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchHistory requests the bars of the calendar dates from..to as seen on the
// exchange and keeps those with a positive close.
func (f *VsTraderFetcher) FetchHistory(symbol string, from, to time.Time) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	q.Set("tz", f.Location.String())

	var raw []vsBar
	if err := f.getJSON("/api/v1/bars/daily", q, &raw); err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, vb := range raw {
		if vb.Close <= 0 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   tradingDate(vb.Timestamp, f.Location),
			Open:   vb.Open,
			High:   vb.High,
			Low:    vb.Low,
			Close:  vb.Close,
			Volume: vb.Volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *VsTraderFetcher) FetchLatestPrice(symbol string) (float64, error) {
	var quote struct {
		Price float64 `json:"price"`
	}
	if err := f.getJSON("/api/v1/quote", url.Values{"symbol": {symbol}}, &quote); err != nil {
		return 0, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	if quote.Price <= 0 {
		return 0, fmt.Errorf("fetch quote %s: invalid price %v", symbol, quote.Price)
	}
	return quote.Price, nil
}

// getJSON issues an authenticated GET on path and decodes the body into out.
func (f *VsTraderFetcher) getJSON(path string, query url.Values, out any) error {
	req, err := http.NewRequest(http.MethodGet, f.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
