// Package financego adapts github.com/piquette/finance-go to provider.Provider.
package financego

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"tron/internal/provider"
)

type Config struct {
	Name string
	// Backend serves quote and chart calls. Defaults to the process-wide
	// finance-go Yahoo backend.
	Backend finance.Backend
	Now     func() time.Time
}

// Provider is a finance-go backed provider. The caller's context is passed
// to the backend so cancellation reaches the outbound request.
type Provider struct {
	cfg Config
}

func New(cfg Config) *Provider {
	if cfg.Name == "" { cfg.Name = "finance-go" }
	if cfg.Backend == nil { cfg.Backend = finance.GetBackend(finance.YFinBackend) }
	if cfg.Now == nil { cfg.Now = time.Now }
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Info returns (nil, nil) when the quote endpoint has no result for symbol.
func (p *Provider) Info(ctx context.Context, symbol string) (*provider.Info, error) {
	params := &quote.Params{
		Params:  finance.Params{Context: &ctx},
		Symbols: []string{symbol},
	}
	iter := quote.Client{B: p.cfg.Backend}.ListP(params)
	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("quote %s: %w", symbol, contextErr(ctx, err))
		}
		return nil, nil
	}
	q := iter.Quote()

	// finance-go decodes missing numbers as zero and missing strings as "".
	info := &provider.Info{}
	if q.RegularMarketPrice != 0 { info.RegularMarketPrice = provider.Float(q.RegularMarketPrice) }
	if q.RegularMarketPreviousClose != 0 { info.PreviousClose = provider.Float(q.RegularMarketPreviousClose) }
	if q.ShortName != "" { info.ShortName = provider.String(q.ShortName) }
	if q.CurrencyID != "" { info.Currency = provider.String(q.CurrencyID) }
	return info, nil
}

func (p *Provider) History(ctx context.Context, symbol string, period string) ([]provider.Bar, error) {
	lookback, keep, err := window(period)
	if err != nil {
		return nil, err
	}
	end := p.cfg.Now().UTC()
	start := end.Add(-lookback)
	params := &chart.Params{
		Params:   finance.Params{Context: &ctx},
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	raw, err := p.chart(params)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, contextErr(ctx, err))
	}
	if keep > 0 && len(raw) > keep {
		raw = raw[len(raw)-keep:]
	}

	bars := make([]provider.Bar, 0, len(raw))
	for _, b := range raw {
		closePrice, _ := b.Close.Float64()
		bars = append(bars, provider.Bar{
			Time:  time.Unix(int64(b.Timestamp), 0).UTC(),
			Close: closePrice,
		})
	}
	return bars, nil
}

// chart drains a chart iterator. finance-go indexes the first result without a
// length check, so an empty result set panics inside chart.Get.
func (p *Provider) chart(params *chart.Params) (bars []finance.ChartBar, err error) {
	defer func() {
		if r := recover(); r != nil {
			bars, err = nil, fmt.Errorf("malformed chart response: %v", r)
		}
	}()
	iter := chart.Client{B: p.cfg.Backend}.Get(params)
	for iter.Next() {
		bars = append(bars, *iter.Bar())
	}
	return bars, iter.Err()
}

// contextErr prefers the context's error: finance-go flattens backend errors
// into strings, which loses context.Canceled and DeadlineExceeded.
func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}

// weekendPad widens day windows so "1d" still finds the last session on a Monday.
const weekendPad = 4 * 24 * time.Hour

// window maps a history period ("1d", "5d", "1mo", "1y") to a lookback
// duration and the number of trailing daily bars to keep (0 keeps all).
func window(period string) (time.Duration, int, error) {
	unit := strings.TrimLeft(period, "0123456789")
	n, err := strconv.Atoi(strings.TrimSuffix(period, unit))
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("invalid history period %q", period)
	}
	day := 24 * time.Hour
	switch unit {
	case "d":
		return time.Duration(n)*day + weekendPad, n, nil
	case "mo":
		return time.Duration(n) * 31 * day, 0, nil
	case "y":
		return time.Duration(n) * 366 * day, 0, nil
	default:
		return 0, 0, fmt.Errorf("invalid history period %q", period)
	}
}
