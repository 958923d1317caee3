package mtr

import (
	"context"
	"log/slog"
	"time"

	"github.com/jusunglee/mtr-progress/internal/config"
	"github.com/jusunglee/mtr-progress/internal/models"
)

// Client defines the interface for tracking station visits across the
// routes of a system map
type Client interface {
	GetRouteNames() ([]string, error)
	GetLinkedRoutes() ([]string, error)
	GetStationNames() ([]string, error)
	GetRouteStations() (map[string]models.StationSet, error)
	GetTotalStationCount() (int, error)

	SearchStations(query string) ([]string, error)
	MarkVisited(ctx context.Context, station string) (models.Progress, error)
	GetVisited() []string

	GetRoute(route string) (models.RouteResponse, error)
	GetRouteProgress(route string) (models.Progress, error)
	GetOverallProgress() (models.Progress, error)
	GetAllRouteProgress() ([]models.Progress, error)
	GetCompletedRoutes() ([]string, error)
	GetProgressReport() (models.ProgressReport, error)

	Refresh(ctx context.Context) error
	GetLastUpdate() time.Time
}

// Config holds configuration for the client
type Config struct {
	// MapURL is an http(s) URL or a local file path
	MapURL   string
	DumpPath string
	Timeout  time.Duration
	// UpdateInterval of zero loads the map once
	UpdateInterval time.Duration
	StateBackend   string
	StatePath      string
	Logger         *slog.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return ConfigFromApp(config.Default())
}

// ConfigFromApp maps an application config onto client settings
func ConfigFromApp(app config.AppConfig) Config {
	return Config{
		MapURL:         app.Source.URL,
		DumpPath:       app.Source.DumpPath,
		Timeout:        app.Source.Timeout,
		UpdateInterval: app.Source.RefreshInterval,
		StateBackend:   app.State.Backend,
		StatePath:      app.State.Path,
	}
}
