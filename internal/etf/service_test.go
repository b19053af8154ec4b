package etf_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tron/internal/etf"
	"tron/internal/provider"
	"tron/internal/provider/providermock"
)

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.FixedZone("EST", -5*3600))

func newMockProvider(t *testing.T) *providermock.MockProvider {
	t.Helper()
	p := providermock.NewMockProvider(gomock.NewController(t))
	p.EXPECT().Name().Return("mock").AnyTimes()
	return p
}

func newService(p provider.Provider, opts ...etf.Option) *etf.Service {
	opts = append([]etf.Option{etf.WithClock(func() time.Time { return fixedNow })}, opts...)
	return etf.New(p, opts...)
}

func TestLookup_LivePrice(t *testing.T) {
	t.Parallel()

	// Arrange: live price present, history must not be consulted.
	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "SPY").Return(&provider.Info{
		RegularMarketPrice: provider.Float(512.3456),
		PreviousClose:      provider.Float(510),
		ShortName:          provider.String("SPDR S&P 500"),
		LongName:           provider.String("SPDR S&P 500 ETF Trust"),
		Currency:           provider.String("USD"),
	}, nil)
	p.EXPECT().History(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Act
	rec, err := newService(p).Lookup(t.Context(), " spy ")

	// Assert
	require.NoError(t, err)
	require.Equal(t, etf.PriceRecord{
		Symbol:    "SPY",
		Name:      "SPDR S&P 500",
		Price:     512.35,
		Currency:  "USD",
		Timestamp: "2025-03-14T20:09:26.535Z",
	}, rec)

	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	require.NoError(t, err)
	require.True(t, ts.Equal(fixedNow))
}

func TestLookup_ZeroLivePriceFallsBackToPreviousClose(t *testing.T) {
	t.Parallel()

	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "QQQ").Return(&provider.Info{
		RegularMarketPrice: provider.Float(0),
		PreviousClose:      provider.Float(438.004),
		LongName:           provider.String("Invesco QQQ Trust"),
	}, nil)

	rec, err := newService(p).Lookup(t.Context(), "QQQ")
	require.NoError(t, err)
	require.InDelta(t, 438.0, rec.Price, 1e-9)
	require.Equal(t, "Invesco QQQ Trust", rec.Name)
	require.Equal(t, "USD", rec.Currency)
}

func TestLookup_ZeroLivePriceWithoutPreviousClose(t *testing.T) {
	t.Parallel()

	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "VTI").Return(&provider.Info{RegularMarketPrice: provider.Float(0)}, nil)

	rec, err := newService(p).Lookup(t.Context(), "vti")
	require.NoError(t, err)
	require.Zero(t, rec.Price)
	require.Equal(t, "VTI", rec.Name)
}

func TestLookup_HistoryFallback(t *testing.T) {
	t.Parallel()

	// Arrange: info has metadata but no live price.
	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "VOO").Return(&provider.Info{
		ShortName: provider.String(""),
		LongName:  provider.String("Vanguard S&P 500 ETF"),
		Currency:  provider.String("EUR"),
	}, nil)
	day := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	p.EXPECT().History(gomock.Any(), "VOO", "1d").Return([]provider.Bar{
		{Time: day.AddDate(0, 0, -1), Close: 470.111},
		{Time: day, Close: 471.987},
	}, nil)

	// Act
	rec, err := newService(p).Lookup(t.Context(), "VOO")

	// Assert: last close wins, metadata still comes from info.
	require.NoError(t, err)
	require.InDelta(t, 471.99, rec.Price, 1e-9)
	require.Equal(t, "Vanguard S&P 500 ETF", rec.Name)
	require.Equal(t, "EUR", rec.Currency)
}

func TestLookup_HistoryFallbackWithoutInfo(t *testing.T) {
	t.Parallel()

	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "IWM").Return(nil, nil)
	p.EXPECT().History(gomock.Any(), "IWM", "5d").Return([]provider.Bar{{Close: 201.5}}, nil)

	rec, err := newService(p, etf.WithHistoryPeriod("5d")).Lookup(t.Context(), "IWM")
	require.NoError(t, err)
	require.InDelta(t, 201.5, rec.Price, 1e-9)
	require.Equal(t, "IWM", rec.Name)
	require.Equal(t, "USD", rec.Currency)
}

func TestLookup_NotFound(t *testing.T) {
	t.Parallel()

	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "ZZZZZZZ").Return(nil, nil)
	p.EXPECT().History(gomock.Any(), "ZZZZZZZ", "1d").Return(nil, nil)

	_, err := newService(p).Lookup(t.Context(), "zzzzzzz")
	require.ErrorIs(t, err, etf.ErrNotFound)

	var lookupErr *etf.Error
	require.True(t, errors.As(err, &lookupErr))
	require.Equal(t, etf.ErrorRecord{
		Error:  "ETF not found",
		Detail: "Could not find ETF data for symbol 'ZZZZZZZ'",
	}, lookupErr.Record())
	require.NoError(t, lookupErr.Unwrap())
}

func TestLookup_InvalidSymbolSkipsProvider(t *testing.T) {
	t.Parallel()

	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), gomock.Any()).Times(0)

	_, err := newService(p).Lookup(t.Context(), "INVALID-SYMBOL!")
	require.ErrorIs(t, err, etf.ErrInvalidSymbol)
}

func TestLookup_ProviderErrorsCollapseToNotFound(t *testing.T) {
	t.Parallel()

	boom := errors.New("performing request: connection refused")

	t.Run("info", func(t *testing.T) {
		t.Parallel()

		logger, hook := logtest.NewNullLogger()
		p := newMockProvider(t)
		p.EXPECT().Info(gomock.Any(), "SPY").Return(nil, boom)

		_, err := newService(p, etf.WithLogger(logger)).Lookup(t.Context(), "SPY")
		require.ErrorIs(t, err, etf.ErrNotFound)
		require.ErrorIs(t, err, boom)

		var lookupErr *etf.Error
		require.True(t, errors.As(err, &lookupErr))
		require.Equal(t, "Error fetching data for 'SPY': performing request: connection refused", lookupErr.Detail)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		require.Equal(t, logrus.WarnLevel, entry.Level)
		require.Equal(t, "SPY", entry.Data["symbol"])
		require.Equal(t, "mock", entry.Data["provider"])
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		p := newMockProvider(t)
		p.EXPECT().Info(gomock.Any(), "SPY").Return(&provider.Info{}, nil)
		p.EXPECT().History(gomock.Any(), "SPY", "1d").Return(nil, boom)

		_, err := newService(p).Lookup(t.Context(), "SPY")
		require.ErrorIs(t, err, etf.ErrNotFound)
		require.ErrorIs(t, err, boom)
	})

	t.Run("non-finite", func(t *testing.T) {
		t.Parallel()

		p := newMockProvider(t)
		p.EXPECT().Info(gomock.Any(), "SPY").Return(&provider.Info{RegularMarketPrice: provider.Float(math.Inf(1))}, nil)

		_, err := newService(p).Lookup(t.Context(), "SPY")
		require.ErrorIs(t, err, etf.ErrNotFound)
	})
}

func TestLookup_TimeoutAppliesToProvider(t *testing.T) {
	t.Parallel()

	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "SPY").DoAndReturn(func(ctx context.Context, _ string) (*provider.Info, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := newService(p, etf.WithTimeout(10*time.Millisecond)).Lookup(t.Context(), "SPY")
	require.ErrorIs(t, err, etf.ErrNotFound)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	t.Parallel()

	p := newMockProvider(t)
	p.EXPECT().Info(gomock.Any(), "SPY").Return(&provider.Info{RegularMarketPrice: provider.Float(1)}, nil).Times(2)

	svc := newService(p)
	lower, err := svc.Lookup(t.Context(), "spy")
	require.NoError(t, err)
	upper, err := svc.Lookup(t.Context(), "SPY")
	require.NoError(t, err)
	require.Equal(t, upper, lower)
	require.Equal(t, "SPY", lower.Symbol)
}
