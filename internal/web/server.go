// Package web serves the ticket and quote pages over HTTP.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

var timeNow = time.Now

// Options configures the handler.
type Options struct {
	Tickets *sheetdesk.Table[sheetdesk.Ticket]
	Quotes  *sheetdesk.Table[sheetdesk.Quote]
	Logger  *slog.Logger

	// Registerer receives the HTTP collectors and Gatherer is served on
	// /metrics. Both default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewHandler returns the router of the application.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Tickets == nil || opts.Quotes == nil {
		return nil, errors.New("web: tickets and quotes tables are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	rd, err := newRenderer(logger)
	if err != nil {
		return nil, err
	}

	tickets := &resource[sheetdesk.Ticket]{
		path:     "/tickets",
		section:  "tickets",
		title:    "Tickets",
		singular: "Ticket",
		table:    opts.Tickets,
		fields:   ticketFields,
		filter:   "statut",
		render:   rd,
		logger:   logger,
	}
	quotes := &resource[sheetdesk.Quote]{
		path:     "/quotes",
		section:  "quotes",
		title:    "Devis",
		singular: "Devis",
		table:    opts.Quotes,
		fields:   quoteFields,
		amount:   "ttc",
		render:   rd,
		logger:   logger,
	}

	requests := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheetdesk",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "code"})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger, requests))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tickets", http.StatusFound)
	})
	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route(tickets.path, tickets.routes)
	r.Route(quotes.path, quotes.routes)

	return r, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// requestLogger logs every request and counts it by route pattern.
func requestLogger(logger *slog.Logger, requests *prometheus.CounterVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			logger.Debug("http request",
				"method", r.Method, "path", r.URL.Path, "status", status, "duration", time.Since(start))
		})
	}
}
