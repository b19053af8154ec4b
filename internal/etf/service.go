package etf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tron/internal/provider"
)

const (
	defaultCurrency      = "USD"
	defaultHistoryPeriod = "1d"
)

var errNonFinitePrice = errors.New("provider returned a non-finite price")

// Service resolves ticker symbols to prices. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	provider      provider.Provider
	log           logrus.FieldLogger
	now           func() time.Time
	timeout       time.Duration
	historyPeriod string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for provider failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimeout bounds every provider round trip of a lookup. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithHistoryPeriod sets the history window used for the close fallback.
func WithHistoryPeriod(period string) Option {
	return func(s *Service) {
		if period != "" {
			s.historyPeriod = period
		}
	}
}

// New returns a Service backed by p.
func New(p provider.Provider, opts ...Option) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Service{
		provider:      p,
		log:           discard,
		now:           time.Now,
		historyPeriod: defaultHistoryPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup normalizes raw and resolves its price. Errors are always *Error.
func (s *Service) Lookup(ctx context.Context, raw string) (PriceRecord, error) {
	symbol, err := NormalizeSymbol(raw)
	if err != nil {
		return PriceRecord{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.log.WithFields(logrus.Fields{"symbol": symbol, "provider": s.provider.Name()})

	info, err := s.provider.Info(ctx, symbol)
	if err != nil {
		log.WithError(err).Warn("info lookup failed")
		return PriceRecord{}, providerFailure(symbol, err)
	}

	var price float64
	if info == nil || info.RegularMarketPrice == nil {
		bars, err := s.provider.History(ctx, symbol, s.historyPeriod)
		if err != nil {
			log.WithError(err).Warn("history lookup failed")
			return PriceRecord{}, providerFailure(symbol, err)
		}
		if len(bars) == 0 {
			log.Debug("no info and no history")
			return PriceRecord{}, notFound(symbol, fmt.Sprintf("Could not find ETF data for symbol '%s'", symbol), nil)
		}
		price = bars[len(bars)-1].Close
	} else {
		price = livePrice(info)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		log.WithField("price", price).Warn("discarding non-finite price")
		return PriceRecord{}, providerFailure(symbol, errNonFinitePrice)
	}

	return PriceRecord{
		Symbol:    symbol,
		Name:      displayName(info, symbol),
		Price:     round2(price),
		Currency:  currency(info),
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// livePrice prefers a non-zero live price, then the previous close, then 0.
func livePrice(info *provider.Info) float64 {
	if p := info.RegularMarketPrice; p != nil && *p != 0 {
		return *p
	}
	if p := info.PreviousClose; p != nil {
		return *p
	}
	return 0
}

func displayName(info *provider.Info, symbol string) string {
	if info != nil {
		if info.ShortName != nil && *info.ShortName != "" {
			return *info.ShortName
		}
		if info.LongName != nil && *info.LongName != "" {
			return *info.LongName
		}
	}
	return symbol
}

func currency(info *provider.Info) string {
	if info != nil && info.Currency != nil && *info.Currency != "" {
		return *info.Currency
	}
	return defaultCurrency
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
