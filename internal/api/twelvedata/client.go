package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/Breakout/internal/model"
	httpClient "github.com/Alias1177/Breakout/internal/platform/http"
)

const DefaultBaseURL = "https://api.twelvedata.com"

// maxOutputSize is the largest outputsize the time_series endpoint accepts.
const maxOutputSize = 5000

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	// HTTP overrides the transport built from the options above.
	HTTP *httpClient.Client
}

// timeSeriesResponse represents the API response from Twelve Data
type timeSeriesResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	hc := options.HTTP
	if hc == nil {
		hc = httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		})
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    options.BaseURL,
		httpClient: hc,
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// Name implements model.Source.
func (c *Client) Name() string { return "twelvedata" }

// FetchCandles fetches enough candles to cover req and keeps those inside [From, To].
func (c *Client) FetchCandles(ctx context.Context, req model.Request) ([]model.Candle, error) {
	interval := NormalizeInterval(req.Interval)
	days := int(math.Ceil(req.To.Sub(req.From).Hours() / 24))
	if days < 1 {
		days = 1
	}
	count := calculateCandlesForRange(interval, days)
	if count <= 0 {
		return nil, fmt.Errorf("unsupported twelvedata interval %q", req.Interval)
	}
	if count > maxOutputSize {
		c.logger.Warn().Int("requested", count).Int("max", maxOutputSize).Msg("Output size capped")
		count = maxOutputSize
	}

	candles, err := c.GetCandles(ctx, req.Symbol, interval, count)
	if err != nil {
		return nil, err
	}

	inRange := candles[:0]
	for _, candle := range candles {
		if candle.OpenTime.Before(req.From) || candle.OpenTime.After(req.To) {
			continue
		}
		inRange = append(inRange, candle)
	}
	return inRange, nil
}

// GetCandles fetches the latest count candles from Twelve Data API, oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol string, interval string, count int) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", fmt.Sprint(count))
	q.Set("timezone", "UTC")
	q.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/time_series?" + q.Encode()

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("outputsize", count).Msg("Fetching candles")

	body, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if data.Status == "error" {
		c.logger.Error().Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		return nil, fmt.Errorf("twelve data API error %d: %s", data.Code, data.Message)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("response", string(body)).Msg("No candles in response")
		return nil, fmt.Errorf("empty data returned")
	}

	candles := make([]model.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		candle, err := parseValue(v.Datetime, v.Open, v.High, v.Low, v.Close, v.Volume)
		if err != nil {
			c.logger.Warn().Err(err).Str("datetime", v.Datetime).Msg("Dropping malformed candle")
			continue
		}
		candles = append(candles, candle)
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

func parseValue(datetime, open, high, low, closePrice, volume string) (model.Candle, error) {
	var t time.Time
	var err error
	if len(datetime) == len(time.DateOnly) {
		t, err = time.Parse(time.DateOnly, datetime)
	} else {
		t, err = time.Parse(time.DateTime, datetime)
	}
	if err != nil {
		return model.Candle{}, fmt.Errorf("datetime: %w", err)
	}

	fields := []string{open, high, low, closePrice}
	prices := make([]float64, len(fields))
	for i, s := range fields {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return model.Candle{}, fmt.Errorf("price %q: %w", s, err)
		}
		prices[i], _ = d.Float64()
	}

	// forex pairs come without volume
	var vol float64
	if volume != "" {
		if d, err := decimal.NewFromString(volume); err == nil {
			vol, _ = d.Float64()
		}
	}

	return model.Candle{
		OpenTime: t.UTC(),
		Open:     prices[0],
		High:     prices[1],
		Low:      prices[2],
		Close:    prices[3],
		Volume:   vol,
	}, nil
}

// NormalizeInterval maps exchange-style intervals ("5m", "1d") to Twelve Data names.
func NormalizeInterval(interval string) string {
	switch {
	case strings.HasSuffix(interval, "min"), strings.HasSuffix(interval, "day"),
		strings.HasSuffix(interval, "week"), strings.HasSuffix(interval, "month"):
		return interval
	case interval == "1M":
		return "1month"
	case strings.HasSuffix(interval, "m"):
		return strings.TrimSuffix(interval, "m") + "min"
	case strings.HasSuffix(interval, "d"):
		return strings.TrimSuffix(interval, "d") + "day"
	case strings.HasSuffix(interval, "w"):
		return strings.TrimSuffix(interval, "w") + "week"
	}
	return interval
}

// calculateCandlesForRange estimates how many candles cover the given number of days
func calculateCandlesForRange(interval string, days int) int {
	candlesPerDay := 0

	switch interval {
	case "1min":
		candlesPerDay = 24 * 60
	case "5min":
		candlesPerDay = 24 * 12
	case "15min":
		candlesPerDay = 24 * 4
	case "30min":
		candlesPerDay = 24 * 2
	case "45min":
		candlesPerDay = 24 * 60 / 45
	case "1h":
		candlesPerDay = 24
	case "2h":
		candlesPerDay = 12
	case "4h":
		candlesPerDay = 6
	case "8h":
		candlesPerDay = 3
	case "1day":
		candlesPerDay = 1
	case "1week":
		// approximately 1/7 of a candle per day
		candlesPerDay = 1
		days = days / 7
		if days < 1 {
			days = 1
		}
	case "1month":
		candlesPerDay = 1
		days = days / 30
		if days < 1 {
			days = 1
		}
	}

	// Add a buffer so the range start is covered
	return int(float64(candlesPerDay) * float64(days) * 1.1)
}
