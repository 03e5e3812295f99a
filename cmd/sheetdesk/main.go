package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	sheetdesk "github.com/ideamans/go-sheetdesk"
	"github.com/ideamans/go-sheetdesk/adapters/excel"
	"github.com/ideamans/go-sheetdesk/adapters/googlesheets"
	"github.com/ideamans/go-sheetdesk/internal/config"
	"github.com/ideamans/go-sheetdesk/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, backend, logLevel, addr string

	flagSet := pflag.NewFlagSet("sheetdesk", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default: $"+config.PathEnv+")")
	flagSet.StringVar(&backend, "backend", "", "spreadsheet backend: sheets or excel")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flagSet.StringVar(&addr, "addr", "", "listen address, overrides server.host and server.port")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := config.Load(configPath, func(c *config.Config) {
		if flagSet.Changed("backend") {
			c.Sheet.Backend = backend
		}
		if flagSet.Changed("log-level") {
			c.Log.Level = logLevel
		}
	})
	if err != nil {
		return err
	}
	listenAddr := cfg.Addr()
	if flagSet.Changed("addr") {
		listenAddr = addr
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendImpl, spreadsheetID, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := sheetdesk.New(backendImpl, &sheetdesk.Config{
		DateFormat: cfg.DateFormat(),
		CacheTTL:   cfg.Cache.TTL,
		CacheSize:  cfg.Cache.Size,
		Logger:     logger,
		Registerer: reg,
	})

	handler, err := web.NewHandler(web.Options{
		Tickets:    sheetdesk.NewTicketTable(client, spreadsheetID, sheetdesk.DefaultTicketLayout),
		Quotes:     sheetdesk.NewQuoteTable(client, spreadsheetID, sheetdesk.DefaultQuoteLayout),
		Logger:     logger,
		Registerer: reg,
		Gatherer:   reg,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", listenAddr, "backend", cfg.Sheet.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openBackend builds the configured backend and returns the spreadsheet id
// tables address.
func openBackend(ctx context.Context, cfg config.Config) (sheetdesk.Backend, string, error) {
	switch cfg.Sheet.Backend {
	case config.BackendExcel:
		adapter, err := excel.New(&excel.Config{
			Dir: cfg.Sheet.ExcelDir,
			Sheets: []excel.SheetSpec{
				{Name: sheetdesk.DefaultTicketLayout.Live.Name, Header: sheetdesk.TicketSchema.Names()},
				{Name: sheetdesk.DefaultQuoteLayout.Live.Name, Header: sheetdesk.QuoteSchema.Names()},
				{Name: sheetdesk.DefaultTicketLayout.Archive.Name, Header: sheetdesk.TicketSchema.Names()},
				{Name: sheetdesk.DefaultQuoteLayout.Archive.Name, Header: sheetdesk.QuoteSchema.Names()},
			},
		})
		if err != nil {
			return nil, "", fmt.Errorf("excel backend: %w", err)
		}
		id := cfg.Sheet.SpreadsheetID
		if id == "" {
			id = "sheetdesk"
		}
		return adapter, id, nil

	default:
		gsConfig := googlesheets.Config{ApplicationName: "sheetdesk"}
		var (
			adapter *googlesheets.SheetsAdaptor
			err     error
		)
		if cfg.Sheet.CredentialsFile != "" || os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
			adapter, err = googlesheets.NewWithJSONKeyFile(ctx, gsConfig, cfg.Sheet.CredentialsFile)
		} else {
			adapter, err = googlesheets.NewWithDefaultCredentials(ctx, gsConfig)
		}
		if err != nil {
			return nil, "", fmt.Errorf("google sheets backend: %w", err)
		}
		return adapter, cfg.Sheet.SpreadsheetID, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `sheetdesk serves the repair tickets and quotes of a shared spreadsheet.

Configuration is read from defaults, the YAML file given by --config or
$%s, then SHEETDESK_* environment variables. Flags override all three.

Usage:
  sheetdesk [flags]

Flags:
`, config.PathEnv)
	flagSet.PrintDefaults()
}
