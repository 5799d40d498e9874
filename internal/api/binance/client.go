// Package binance retrieves USDⓈ-M futures klines from the Binance REST API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Breakout/internal/model"
	httpClient "github.com/Alias1177/Breakout/internal/platform/http"
)

const (
	DefaultBaseURL = "https://fapi.binance.com"
	klinesPath     = "/fapi/v1/klines"

	// MaxLimit is the largest page the klines endpoint returns.
	MaxLimit = 1500
)

var intervals = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"3d":  3 * 24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1M":  30 * 24 * time.Hour,
}

// IntervalDuration returns the nominal length of a kline interval.
func IntervalDuration(interval string) (time.Duration, error) {
	d, ok := intervals[interval]
	if !ok {
		return 0, fmt.Errorf("unsupported binance interval %q", interval)
	}
	return d, nil
}

// Client is the Binance futures klines client
type Client struct {
	baseURL    string
	pageLimit  int
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client
type ClientOptions struct {
	BaseURL        string
	PageLimit      int
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     int
	// HTTP overrides the transport built from the options above.
	HTTP *httpClient.Client
}

// NewClient creates a new Binance klines client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.PageLimit <= 0 || options.PageLimit > MaxLimit {
		options.PageLimit = MaxLimit
	}
	hc := options.HTTP
	if hc == nil {
		hc = httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
			MaxRetries:     options.MaxRetries,
		})
	}

	return &Client{
		baseURL:    options.BaseURL,
		pageLimit:  options.PageLimit,
		httpClient: hc,
		logger:     log.With().Str("component", "binance_client").Logger(),
	}
}

// Name implements model.Source.
func (c *Client) Name() string { return "binance" }

// FetchCandles pages through the klines endpoint from req.From to req.To.
// Records that cannot be converted, or that do not advance in time, are dropped.
func (c *Client) FetchCandles(ctx context.Context, req model.Request) ([]model.Candle, error) {
	step, err := IntervalDuration(req.Interval)
	if err != nil {
		return nil, err
	}
	if !req.To.After(req.From) {
		return nil, fmt.Errorf("empty time range %s - %s", req.From, req.To)
	}

	var candles []model.Candle
	cursor := req.From
	for cursor.Before(req.To) {
		page, rows, err := c.fetchPage(ctx, req.Symbol, req.Interval, cursor, req.To)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, candle := range page {
			if n := len(candles); n > 0 && !candle.OpenTime.After(candles[n-1].OpenTime) {
				c.logger.Warn().Time("open_time", candle.OpenTime).Msg("Dropping kline that does not advance in time")
				continue
			}
			candles = append(candles, candle)
			added++
		}
		if rows < c.pageLimit {
			break
		}
		// A full page may be entirely malformed or stale; skip past it rather than stop.
		next := cursor.Add(time.Duration(c.pageLimit) * step)
		if added > 0 {
			if last := candles[len(candles)-1].OpenTime.Add(step); last.After(cursor) {
				next = last
			}
		}
		cursor = next
	}

	c.logger.Debug().
		Str("symbol", req.Symbol).
		Str("interval", req.Interval).
		Int("count", len(candles)).
		Msg("Fetched candles")
	return candles, nil
}

// fetchPage returns the parsed candles and the number of rows the API sent.
func (c *Client) fetchPage(ctx context.Context, symbol, interval string, from, to time.Time) ([]model.Candle, int, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
	q.Set("endTime", strconv.FormatInt(to.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(c.pageLimit))
	endpoint := c.baseURL + klinesPath + "?" + q.Encode()

	c.logger.Debug().Str("url", endpoint).Msg("Fetching klines page")

	body, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching klines for %s: %w", symbol, err)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("parsing klines JSON: %w", err)
	}

	candles := make([]model.Candle, 0, len(rows))
	for i, row := range rows {
		candle, err := parseKline(row)
		if err != nil {
			c.logger.Warn().Err(err).Int("row", i).Msg("Dropping malformed kline")
			continue
		}
		candles = append(candles, candle)
	}
	return candles, len(rows), nil
}

// parseKline converts [openTime, open, high, low, close, volume, ...].
func parseKline(row []json.RawMessage) (model.Candle, error) {
	if len(row) < 6 {
		return model.Candle{}, fmt.Errorf("kline has %d fields, want at least 6", len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return model.Candle{}, fmt.Errorf("open time: %w", err)
	}

	prices := make([]float64, 5)
	for i := range prices {
		v, err := parseDecimal(row[i+1])
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		prices[i] = v
	}

	return model.Candle{
		OpenTime: time.UnixMilli(openTime).UTC(),
		Open:     prices[0],
		High:     prices[1],
		Low:      prices[2],
		Close:    prices[3],
		Volume:   prices[4],
	}, nil
}

// parseDecimal accepts both quoted and bare numbers.
func parseDecimal(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
