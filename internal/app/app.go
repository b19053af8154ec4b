// Package app wires configuration into the lookup service.
package app

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tron/internal/config"
	"tron/internal/etf"
	"tron/internal/httpx"
	"tron/internal/provider"
	"tron/internal/provider/financego"
	"tron/internal/provider/yahoo"
	"tron/internal/provider/yahooadapter"
)

// NewProvider builds the market data backend named by cfg.Backend.
func NewProvider(cfg config.Provider) (provider.Provider, error) {
	switch cfg.Backend {
	case config.BackendYahoo:
		hc := httpx.New(time.Duration(cfg.TimeoutSec) * time.Second)
		opts := []yahoo.ClientOption{yahoo.WithHTTPClient(hc)}
		if cfg.BaseURL != "" {
			opts = append(opts, yahoo.WithBaseURL(cfg.BaseURL))
		}
		if cfg.UserAgent != "" {
			opts = append(opts, yahoo.WithUserAgent(cfg.UserAgent))
		}
		return yahooadapter.New(yahooadapter.Config{Name: "Yahoo"}, yahoo.NewClient(opts...)), nil
	case config.BackendFinanceGo:
		return financego.New(financego.Config{}), nil
	default:
		return nil, fmt.Errorf("unknown provider backend %q", cfg.Backend)
	}
}

// NewService builds the provider from cfg and the lookup service over it.
func NewService(cfg config.Config, log logrus.FieldLogger) (*etf.Service, error) {
	p, err := NewProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	log.WithField("provider", p.Name()).Info("market data provider ready")
	return etf.New(p,
		etf.WithLogger(log),
		etf.WithTimeout(time.Duration(cfg.Server.RequestTimeoutSec)*time.Second),
		etf.WithHistoryPeriod(cfg.Provider.HistoryPeriod),
	), nil
}
