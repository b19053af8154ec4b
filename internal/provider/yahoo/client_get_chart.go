package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when Yahoo has no chart for the symbol.
var ErrNotFound = errors.New("symbol not found")

// Meta holds the chart metadata. Fields missing or null in the response are nil.
type Meta struct {
	Symbol             string
	Currency           *string
	ShortName          *string
	LongName           *string
	RegularMarketPrice *float64
	PreviousClose      *float64
	ChartPreviousClose *float64
}

// Point is one chart sample.
type Point struct {
	Time  time.Time
	Close float64
}

// Chart is a decoded chart response.
type Chart struct {
	Meta   Meta
	Points []Point
}

// GetChart retrieves the chart for symbol over rng (e.g. "1d", "5d") sampled
// at interval (e.g. "1d").
func (c *Client) GetChart(ctx context.Context, symbol, rng, interval string, opts ...ClientOption) (*Chart, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      cloneValues(c.query),
	}
	for _, opt := range opts {
		opt(override)
	}

	query := override.query
	query.Set("range", rng)
	query.Set("interval", interval)

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", override.baseURL, url.PathEscape(symbol), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return nil, fmt.Errorf("chart %s: %w", symbol, ErrNotFound)

	case http.StatusBadRequest:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("bad request with range=%s interval=%s: %s", rng, interval, string(b))

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}

	// {
	//   "chart": {
	//     "result": [{
	//       "meta": {"symbol": "SPY", "currency": "USD", "regularMarketPrice": 512.1, ...},
	//       "timestamp": [1710423000],
	//       "indicators": {"quote": [{"close": [512.1]}]}
	//     }],
	//     "error": null
	//   }
	// }
	chart, ok := body["chart"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding chart: unexpected type: %T", body["chart"])
	}
	results, _ := chart["result"].([]any)
	if len(results) == 0 {
		return nil, fmt.Errorf("chart %s: %w", symbol, ErrNotFound)
	}
	result, ok := results[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding result: unexpected type: %T", results[0])
	}

	meta, err := decodeMeta(result)
	if err != nil {
		return nil, err
	}
	points, err := decodePoints(result)
	if err != nil {
		return nil, err
	}
	return &Chart{Meta: meta, Points: points}, nil
}

func decodeMeta(result map[string]any) (Meta, error) {
	var meta Meta
	raw, ok := result["meta"]
	if !ok || raw == nil {
		return meta, nil
	}
	data, ok := raw.(map[string]any)
	if !ok {
		return meta, fmt.Errorf("decoding meta: unexpected type: %T", raw)
	}

	var err error
	if symbol, err := parseNullableValue[string](data, "symbol"); err != nil {
		return meta, fmt.Errorf("decoding symbol: %w", err)
	} else if symbol != nil {
		meta.Symbol = *symbol
	}
	if meta.Currency, err = parseNullableValue[string](data, "currency"); err != nil {
		return meta, fmt.Errorf("decoding currency: %w", err)
	}
	if meta.ShortName, err = parseNullableValue[string](data, "shortName"); err != nil {
		return meta, fmt.Errorf("decoding shortName: %w", err)
	}
	if meta.LongName, err = parseNullableValue[string](data, "longName"); err != nil {
		return meta, fmt.Errorf("decoding longName: %w", err)
	}
	if meta.RegularMarketPrice, err = parseNullableValue[float64](data, "regularMarketPrice"); err != nil {
		return meta, fmt.Errorf("decoding regularMarketPrice: %w", err)
	}
	if meta.PreviousClose, err = parseNullableValue[float64](data, "previousClose"); err != nil {
		return meta, fmt.Errorf("decoding previousClose: %w", err)
	}
	if meta.ChartPreviousClose, err = parseNullableValue[float64](data, "chartPreviousClose"); err != nil {
		return meta, fmt.Errorf("decoding chartPreviousClose: %w", err)
	}
	return meta, nil
}

func decodePoints(result map[string]any) ([]Point, error) {
	timestamps, _ := result["timestamp"].([]any)
	if len(timestamps) == 0 {
		return nil, nil
	}
	indicators, _ := result["indicators"].(map[string]any)
	quotes, _ := indicators["quote"].([]any)
	if len(quotes) == 0 {
		return nil, nil
	}
	quote, ok := quotes[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding quote: unexpected type: %T", quotes[0])
	}
	closes, _ := quote["close"].([]any)

	points := make([]Point, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i] == nil {
			// Yahoo pads sessions without trades with nulls.
			continue
		}
		sec, ok := ts.(float64)
		if !ok {
			return nil, fmt.Errorf("decoding timestamp: unexpected type: %T", ts)
		}
		closePrice, ok := closes[i].(float64)
		if !ok {
			return nil, fmt.Errorf("decoding close: unexpected type: %T", closes[i])
		}
		points = append(points, Point{Time: time.Unix(int64(sec), 0).UTC(), Close: closePrice})
	}
	return points, nil
}

// parseNullableValue is a helper function to parse a nullable value.
func parseNullableValue[T any](data map[string]any, key string) (*T, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	if v, ok := v.(T); ok {
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected type: %T", v)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for key, values := range v {
		out[key] = append([]string(nil), values...)
	}
	return out
}
