package collector

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartHistory = `{"chart":{"result":[{
  "meta":{"gmtoffset":3600,"regularMarketPrice":1388.2},
  "timestamp":[1704146400,1704232800,1704319200],
  "indicators":{"quote":[{
    "open":[1290.1,null,1301.0],
    "high":[1295.0,null,1310.0],
    "low":[1285.0,null,1299.0],
    "close":[1291.5,null,1305.25],
    "volume":[0,null,0]}]}}],"error":null}}`

func newTestYahoo(t *testing.T, body string, status int) (*YahooFetcher, *string) {
	t.Helper()
	var lastQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return f, &lastQuery
}

func TestYahooFetcher_FetchHistory(t *testing.T) {
	f, query := newTestYahoo(t, chartHistory, http.StatusOK)

	bars, err := f.FetchHistory("USDKRW=X", day(2024, 1, 1), day(2024, 1, 5))
	require.NoError(t, err)
	require.Len(t, bars, 2, "null bar must be skipped")
	assert.Equal(t, day(2024, 1, 1), bars[0].Time)
	assert.Equal(t, 1291.5, bars[0].Close)
	assert.Equal(t, day(2024, 1, 3), bars[1].Time)
	assert.Contains(t, *query, "interval=1d")
	assert.Contains(t, *query, "period1=")
}

func TestYahooFetcher_FetchLatestPrice(t *testing.T) {
	f, query := newTestYahoo(t, chartHistory, http.StatusOK)

	p, err := f.FetchLatestPrice("USDKRW")
	require.NoError(t, err)
	assert.Equal(t, 1388.2, p)
	assert.Contains(t, *query, "range=1d")
}

func TestYahooFetcher_Errors(t *testing.T) {
	f, _ := newTestYahoo(t, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, http.StatusOK)
	_, err := f.FetchHistory("NOPE", day(2024, 1, 1), day(2024, 1, 5))
	assert.ErrorContains(t, err, "No data found")

	f, _ = newTestYahoo(t, "server down", http.StatusBadGateway)
	_, err = f.FetchLatestPrice("NOPE")
	assert.ErrorContains(t, err, "status 502")
}
