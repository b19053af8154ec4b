package provider

import (
	"context"
	"time"
)

// Info is the descriptive/quote block a market data provider returns for a
// symbol. Every field is optional: nil means the provider did not report it.
type Info struct {
	RegularMarketPrice *float64
	PreviousClose      *float64
	ShortName          *string
	LongName           *string
	Currency           *string
}

// Bar is one entry of a daily price history.
type Bar struct {
	Time  time.Time
	Close float64
}

// Provider is the market data collaborator behind a price lookup.
//
// Info returns (nil, nil) when the provider has no data for the symbol.
// History returns bars oldest first and an empty slice when there is none.
//
//go:generate mockgen -package=providermock -destination=providermock/provider.go -source=provider.go Provider
type Provider interface {
	Name() string
	Info(ctx context.Context, symbol string) (*Info, error)
	History(ctx context.Context, symbol string, period string) ([]Bar, error)
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
