package yahooadapter

import (
	"context"
	"errors"

	"tron/internal/provider"
	"tron/internal/provider/yahoo"
)

const infoRange = "1d"

// ChartGetter is the part of yahoo.Client the adapter needs.
type ChartGetter interface {
	GetChart(ctx context.Context, symbol, rng, interval string, opts ...yahoo.ClientOption) (*yahoo.Chart, error)
}

type Config struct {
	Name     string // display name, default: Yahoo
	Interval string // history sampling interval, default: 1d
}

// Adapter exposes the Yahoo chart API as a provider.Provider.
type Adapter struct {
	cfg    Config
	client ChartGetter
}

func New(cfg Config, client ChartGetter) *Adapter {
	if cfg.Name == "" { cfg.Name = "Yahoo" }
	if cfg.Interval == "" { cfg.Interval = "1d" }
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Info reads the quote fields off the chart metadata.
func (a *Adapter) Info(ctx context.Context, symbol string) (*provider.Info, error) {
	chart, err := a.client.GetChart(ctx, symbol, infoRange, a.cfg.Interval)
	if errors.Is(err, yahoo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := chart.Meta
	prev := m.PreviousClose
	if prev == nil { prev = m.ChartPreviousClose }
	return &provider.Info{
		RegularMarketPrice: m.RegularMarketPrice,
		PreviousClose:      prev,
		ShortName:          m.ShortName,
		LongName:           m.LongName,
		Currency:           m.Currency,
	}, nil
}

func (a *Adapter) History(ctx context.Context, symbol string, period string) ([]provider.Bar, error) {
	chart, err := a.client.GetChart(ctx, symbol, period, a.cfg.Interval)
	if errors.Is(err, yahoo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	bars := make([]provider.Bar, 0, len(chart.Points))
	for _, p := range chart.Points {
		bars = append(bars, provider.Bar{Time: p.Time, Close: p.Close})
	}
	return bars, nil
}
