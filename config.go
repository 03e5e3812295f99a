package sheetdesk

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultCacheTTL is how long a list read is served from the cache.
const DefaultCacheTTL = time.Hour

// Config represents configuration for the Client
type Config struct {
	DateFormat DateFormat            // Layouts for date cells (default: DefaultDateLayout both ways)
	CacheTTL   time.Duration         // Lifetime of cached list reads (default: 1h)
	CacheSize  int                   // Maximum cached lists (default: 64)
	Logger     *slog.Logger          // Defaults to slog.Default()
	Registerer prometheus.Registerer // Metrics are not registered when nil
}
