// Package gather downloads historical market data for backtesting inputs.
package gather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tradebench/internal/domain"
	"tradebench/internal/util"
)

// DefaultBaseURL is the public Binance REST endpoint.
const DefaultBaseURL = "https://api.binance.com"

const (
	klineLimit    = 1000 // rows per request, the API maximum
	fetchAttempts = 3
	fetchBackoff  = time.Second
)

// KlineFetcher downloads 1-minute OHLCV klines from the Binance REST API,
// batched and rate limited.
type KlineFetcher struct {
	baseURL string
	client  *http.Client
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewKlineFetcher creates a KlineFetcher against baseURL (DefaultBaseURL when
// empty), limited to perMinute requests per minute.
func NewKlineFetcher(baseURL string, perMinute int) *KlineFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &KlineFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: util.NewRateLimiter(perMinute),
		log:     slog.Default().With("gatherer", "binance-klines"),
	}
}

// Fetch downloads 1-minute klines for the exchange symbol (e.g. "ETHUSDT")
// between start and end, labelling each tick with pair. Batches of up to 1000
// rows are requested until the range is exhausted.
func (f *KlineFetcher) Fetch(ctx context.Context, symbol string, pair domain.Pair, start, end time.Time) ([]domain.Tick, error) {
	var ticks []domain.Tick
	since := start.UnixMilli()
	endMs := end.UnixMilli()

	for since < endMs {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		f.log.Info("fetching klines",
			"symbol", symbol,
			"since", time.UnixMilli(since).UTC().Format(time.RFC3339))

		var batch []domain.Tick
		err := util.Retry(ctx, fetchAttempts, fetchBackoff, func() error {
			var err error
			batch, err = f.fetchBatch(ctx, symbol, pair, since, endMs)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetching %s klines since %d: %w", symbol, since, err)
		}
		if len(batch) == 0 {
			break
		}

		ticks = append(ticks, batch...)
		since = batch[len(batch)-1].Timestamp.UnixMilli() + time.Minute.Milliseconds()
	}

	f.log.Info("fetch complete", "symbol", symbol, "rows", len(ticks))
	return ticks, nil
}

func (f *KlineFetcher) fetchBatch(ctx context.Context, symbol string, pair domain.Pair, sinceMs, endMs int64) ([]domain.Tick, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1m")
	q.Set("startTime", strconv.FormatInt(sinceMs, 10))
	q.Set("endTime", strconv.FormatInt(endMs, 10))
	q.Set("limit", strconv.Itoa(klineLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/api/v3/klines?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("klines request: HTTP %d: %s", resp.StatusCode, body)
	}

	return parseKlines(body, pair)
}

// parseKlines decodes the Binance kline payload: an array of rows of the form
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...] with
// prices as strings.
func parseKlines(body []byte, pair domain.Pair) ([]domain.Tick, error) {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding klines: %w", err)
	}

	ticks := make([]domain.Tick, 0, len(raw))
	for i, row := range raw {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline row %d: %d fields, want at least 6", i, len(row))
		}

		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			return nil, fmt.Errorf("kline row %d: open time: %w", i, err)
		}

		var fields [5]float64 // open, high, low, close, volume
		for j := range fields {
			var s string
			if err := json.Unmarshal(row[j+1], &s); err != nil {
				return nil, fmt.Errorf("kline row %d field %d: %w", i, j+1, err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("kline row %d field %d: %w", i, j+1, err)
			}
			fields[j] = v
		}

		ticks = append(ticks, domain.Tick{
			Pair:      pair,
			Timestamp: time.UnixMilli(openTime).UTC(),
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
		})
	}
	return ticks, nil
}
