package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"tron/internal/about"
	"tron/internal/etf"
)

// looker is the part of etf.Service the handlers use.
type looker interface {
	Lookup(ctx context.Context, raw string) (etf.PriceRecord, error)
}

// registerRoutes mounts the REST surface on mux. prefix is the ETF route
// prefix, e.g. "/etf".
func registerRoutes(mux *http.ServeMux, prefix string, svc looker, log logrus.FieldLogger) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, about.Hello())
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, about.Healthy())
	})
	mux.HandleFunc("GET "+prefix+"/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		handleGetPrice(w, r, svc, log)
	})
}

func handleGetPrice(w http.ResponseWriter, r *http.Request, svc looker, log logrus.FieldLogger) {
	rec, err := svc.Lookup(r.Context(), r.PathValue("symbol"))
	if err == nil {
		writeJSON(w, log, http.StatusOK, rec)
		return
	}

	var lookupErr *etf.Error
	if !errors.As(err, &lookupErr) {
		log.WithError(err).Error("unexpected lookup error")
		writeJSON(w, log, http.StatusInternalServerError, etf.ErrorRecord{Error: "Internal error", Detail: err.Error()})
		return
	}
	status := http.StatusNotFound
	if lookupErr.Kind == etf.KindInvalidSymbol {
		status = http.StatusBadRequest
	}
	writeJSON(w, log, status, lookupErr.Record())
}

func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Warn("writing response")
	}
}
