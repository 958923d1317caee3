package mtr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/mtr-progress/internal/feed"
	"github.com/jusunglee/mtr-progress/internal/logging"
	"github.com/jusunglee/mtr-progress/internal/models"
	"github.com/jusunglee/mtr-progress/internal/store"
	"github.com/jusunglee/mtr-progress/internal/visited"
)

// LocalClient implements the Client interface for local usage.
// It owns the visited set and saves it after every change.
type LocalClient struct {
	store       *store.Store
	feedManager *feed.Manager
	repo        visited.Repository
	logger      *slog.Logger
}

// NewLocal creates a new local client. The map and the saved visited
// stations are loaded before it returns.
func NewLocal(ctx context.Context, config Config) (*LocalClient, error) {
	repo, err := visited.Open(ctx, config.StateBackend, config.StatePath)
	if err != nil {
		return nil, err
	}
	return newLocal(ctx, config, repo)
}

func newLocal(ctx context.Context, config Config, repo visited.Repository) (*LocalClient, error) {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := store.NewStore()
	fm := feed.NewManager(feed.Options{
		Source:         config.MapURL,
		DumpPath:       config.DumpPath,
		Timeout:        config.Timeout,
		UpdateInterval: config.UpdateInterval,
		Logger:         logger,
	}, s)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := fm.Refresh(gctx)
		return err
	})
	g.Go(func() error {
		names, err := repo.Load(gctx)
		if err != nil {
			return fmt.Errorf("failed to load visited stations: %w", err)
		}
		s.SetVisited(names)
		return nil
	})
	if err := g.Wait(); err != nil {
		logging.SafeClose(repo, logger, "visited_repository")
		return nil, err
	}

	fm.Start()

	return &LocalClient{
		store:       s,
		feedManager: fm,
		repo:        repo,
		logger:      logger,
	}, nil
}

// Close stops background refreshes, saves the visited set and releases
// the repository. Must be called to stop background goroutines.
func (c *LocalClient) Close() error {
	c.feedManager.Stop()

	err := c.save(context.Background())
	if cerr := c.repo.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *LocalClient) save(ctx context.Context) error {
	names := c.store.Visited()
	if err := c.repo.Save(ctx, names); err != nil {
		return fmt.Errorf("failed to save visited stations: %w", err)
	}
	c.logger.Debug("visited stations saved", slog.Int("count", len(names)))
	return nil
}

func (c *LocalClient) GetRouteNames() ([]string, error) {
	return c.store.RouteNames()
}

func (c *LocalClient) GetLinkedRoutes() ([]string, error) {
	return c.store.LinkedRoutes()
}

func (c *LocalClient) GetStationNames() ([]string, error) {
	return c.store.StationNames()
}

func (c *LocalClient) GetRouteStations() (map[string]models.StationSet, error) {
	return c.store.RouteStations()
}

func (c *LocalClient) GetTotalStationCount() (int, error) {
	return c.store.TotalStationCount()
}

func (c *LocalClient) SearchStations(query string) ([]string, error) {
	return c.store.SearchStations(query)
}

// MarkVisited records a visit, saves the set when it changed and returns
// the overall progress
func (c *LocalClient) MarkVisited(ctx context.Context, station string) (models.Progress, error) {
	added, err := c.store.MarkVisited(station)
	if err != nil {
		return models.Progress{}, err
	}
	if added {
		if err := c.save(ctx); err != nil {
			return models.Progress{}, err
		}
	}
	return c.store.OverallProgress()
}

func (c *LocalClient) GetVisited() []string {
	return c.store.Visited()
}

func (c *LocalClient) GetRoute(route string) (models.RouteResponse, error) {
	return c.store.Route(route)
}

func (c *LocalClient) GetRouteProgress(route string) (models.Progress, error) {
	return c.store.RouteProgress(route)
}

func (c *LocalClient) GetOverallProgress() (models.Progress, error) {
	return c.store.OverallProgress()
}

func (c *LocalClient) GetAllRouteProgress() ([]models.Progress, error) {
	return c.store.AllRouteProgress()
}

func (c *LocalClient) GetCompletedRoutes() ([]string, error) {
	return c.store.CompletedRoutes()
}

func (c *LocalClient) GetProgressReport() (models.ProgressReport, error) {
	return c.store.Report()
}

func (c *LocalClient) Refresh(ctx context.Context) error {
	_, err := c.feedManager.Refresh(ctx)
	return err
}

func (c *LocalClient) GetLastUpdate() time.Time {
	return c.store.GetLastUpdate()
}
