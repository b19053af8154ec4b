package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"tron/internal/app"
	"tron/internal/config"
)

func TestNewProvider(t *testing.T) {
	cfg := config.Default().Provider

	p, err := app.NewProvider(cfg)
	require.NoError(t, err)
	require.Equal(t, "Yahoo", p.Name())

	cfg.Backend = config.BackendFinanceGo
	p, err = app.NewProvider(cfg)
	require.NoError(t, err)
	require.Equal(t, "finance-go", p.Name())

	cfg.Backend = "nope"
	_, err = app.NewProvider(cfg)
	require.Error(t, err)
}

func TestNewService_UsesConfiguredBaseURL(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"SPY","currency":"USD","regularMarketPrice":512.345}}]}}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Provider.BaseURL = srv.URL
	cfg.Provider.UserAgent = "tron-test"

	logger, hook := logtest.NewNullLogger()
	svc, err := app.NewService(cfg, logger)
	require.NoError(t, err)
	require.NotEmpty(t, hook.AllEntries())

	rec, err := svc.Lookup(t.Context(), "spy")
	require.NoError(t, err)
	require.Equal(t, "SPY", rec.Symbol)
	require.Equal(t, "SPY", rec.Name)
	require.InDelta(t, 512.35, rec.Price, 1e-9)
	require.Equal(t, "tron-test", gotUA)
}
