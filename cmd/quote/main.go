package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tron/internal/app"
	"tron/internal/config"
	"tron/internal/etf"
	"tron/internal/logging"
)

func main() {
	var configPath string
	var backend string
	var timeout int
	var logLevel string

	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.StringVar(&backend, "backend", "", "market data backend: yahoo or financego (default from config)")
	flag.IntVar(&timeout, "timeout", 0, "per-symbol timeout seconds (default from config)")
	flag.StringVar(&logLevel, "log-level", "error", "log level for provider diagnostics on stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  quote [flags] SYMBOL [SYMBOL...]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	symbols := flag.Args()
	if len(symbols) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil { fatalf("config: %v", err) }
	if backend != "" { cfg.Provider.Backend = strings.ToLower(backend) }
	if timeout > 0 { cfg.Server.RequestTimeoutSec = timeout }
	if err := cfg.Validate(); err != nil { fatalf("config: %v", err) }

	log, err := logging.New(logLevel, cfg.Log.Format, os.Stderr)
	if err != nil { fatalf("%v", err) }
	svc, err := app.NewService(cfg, log)
	if err != nil { fatalf("%v", err) }

	if failed := lookupAll(context.Background(), svc, symbols, os.Stdout); failed > 0 {
		os.Exit(1)
	}
}

type lookuper interface {
	Lookup(ctx context.Context, raw string) (etf.PriceRecord, error)
}

// lookupAll resolves each symbol in turn and writes one JSON line per symbol.
// It returns the number of failed lookups.
func lookupAll(ctx context.Context, svc lookuper, symbols []string, out io.Writer) int {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	failed := 0
	for _, s := range symbols {
		rec, err := svc.Lookup(ctx, s)
		if err != nil {
			failed++
			var lookupErr *etf.Error
			if errors.As(err, &lookupErr) {
				_ = enc.Encode(lookupErr.Record())
			} else {
				_ = enc.Encode(etf.ErrorRecord{Error: "Lookup failed", Detail: err.Error()})
			}
			continue
		}
		_ = enc.Encode(rec)
	}
	return failed
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "quote: "+format+"\n", args...)
	os.Exit(1)
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
