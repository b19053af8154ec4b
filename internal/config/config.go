package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendYahoo     = "yahoo"
	BackendFinanceGo = "financego"
)

type Server struct {
	Port               string `json:"port"`
	RequestTimeoutSec  int    `json:"request_timeout_sec"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec"`
	RoutePrefix        string `json:"route_prefix"`
}

type Provider struct {
	Backend       string `json:"backend"`
	BaseURL       string `json:"base_url"`
	// UserAgent overrides the Yahoo client's default agent when set.
	UserAgent     string `json:"user_agent"`
	HistoryPeriod string `json:"history_period"`
	// TimeoutSec bounds each outbound HTTP call. 0 leaves it to the request timeout.
	TimeoutSec int `json:"timeout_sec"`
}

type MCP struct {
	Enabled     bool   `json:"enabled"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HTTPPath    string `json:"http_path"`
	SSEPath     string `json:"sse_path"`
	MessagePath string `json:"message_path"`
	// BaseURL is advertised to SSE clients in the endpoint event; empty means relative.
	BaseURL string `json:"base_url"`
}

type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type Config struct {
	Server   Server   `json:"server"`
	Provider Provider `json:"provider"`
	MCP      MCP      `json:"mcp"`
	Log      Log      `json:"log"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8000", RequestTimeoutSec: 10, ShutdownTimeoutSec: 5, RoutePrefix: "/etf"},
		Provider: Provider{
			Backend:       BackendYahoo,
			BaseURL:       "https://query1.finance.yahoo.com",
			HistoryPeriod: "1d",
			TimeoutSec:    8,
		},
		MCP: MCP{
			Enabled:     true,
			Name:        "Tron MCP Server",
			Description: "MCP server for Tron API - providing AI agents access to the Tron API endpoints",
			HTTPPath:    "/mcp",
			SSEPath:     "/mcp/sse",
			MessagePath: "/mcp/messages",
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads JSON config from path. If path is empty, ./config.json is used
// when present, otherwise defaults. A .env file in the working directory is
// loaded first without overriding variables already set; environment
// variables then override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Provider.Backend {
	case BackendYahoo, BackendFinanceGo:
	default:
		return fmt.Errorf("provider.backend: unknown backend %q", c.Provider.Backend)
	}
	if c.Server.Port == "" {
		return errors.New("server.port: must not be empty")
	}
	if c.Server.RequestTimeoutSec < 0 || c.Server.ShutdownTimeoutSec < 0 || c.Provider.TimeoutSec < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.Provider.HistoryPeriod == "" {
		return errors.New("provider.history_period: must not be empty")
	}
	paths := map[string]string{"server.route_prefix": c.Server.RoutePrefix}
	if c.MCP.Enabled {
		paths["mcp.http_path"] = c.MCP.HTTPPath
		paths["mcp.sse_path"] = c.MCP.SSEPath
		paths["mcp.message_path"] = c.MCP.MessagePath
	}
	for name, p := range paths {
		if !strings.HasPrefix(p, "/") || p == "/" || strings.HasSuffix(p, "/") {
			return fmt.Errorf("%s: %q must start with / and not end with /", name, p)
		}
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// envSeconds reads a non-negative integer from key into dst. Unset leaves dst
// alone; anything that is not a whole number is an error, so a typo cannot
// silently disable a timeout.
func envSeconds(key string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	x, err := strconv.Atoi(v)
	if err != nil || x < 0 {
		return fmt.Errorf("%s: %q is not a non-negative integer", key, v)
	}
	*dst = x
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
	if err := envSeconds("REQUEST_TIMEOUT_SEC", &cfg.Server.RequestTimeoutSec); err != nil { return err }
	if err := envSeconds("SHUTDOWN_TIMEOUT_SEC", &cfg.Server.ShutdownTimeoutSec); err != nil { return err }
	if v := os.Getenv("ROUTE_PREFIX"); v != "" { cfg.Server.RoutePrefix = v }

	if v := os.Getenv("PROVIDER_BACKEND"); v != "" { cfg.Provider.Backend = strings.ToLower(v) }
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" { cfg.Provider.BaseURL = v }
	if v := os.Getenv("PROVIDER_USER_AGENT"); v != "" { cfg.Provider.UserAgent = v }
	if v := os.Getenv("HISTORY_PERIOD"); v != "" { cfg.Provider.HistoryPeriod = v }
	if err := envSeconds("PROVIDER_TIMEOUT_SEC", &cfg.Provider.TimeoutSec); err != nil { return err }

	if v := os.Getenv("MCP_ENABLED"); v != "" {
		switch strings.ToLower(v) {
		case "1","true","yes","y": cfg.MCP.Enabled = true
		case "0","false","no","n": cfg.MCP.Enabled = false
		}
	}
	if v := os.Getenv("MCP_BASE_URL"); v != "" { cfg.MCP.BaseURL = v }

	if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Log.Level = v }
	if v := os.Getenv("LOG_FORMAT"); v != "" { cfg.Log.Format = v }
	return nil
}
