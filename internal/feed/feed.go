package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jusunglee/mtr-progress/internal/logging"
	"github.com/jusunglee/mtr-progress/internal/store"
	"github.com/jusunglee/mtr-progress/internal/topology"
)

// Manager handles fetching the map dataset and refreshing the store
type Manager struct {
	source         string
	dumpPath       string
	store          *store.Store
	fetcher        *Fetcher
	updateInterval time.Duration
	logger         *slog.Logger
	group          singleflight.Group
	stopCh         chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup
}

// Options configures a Manager
type Options struct {
	// Source is a URL or local file path
	Source   string
	DumpPath string
	Timeout  time.Duration
	// UpdateInterval of zero disables the background loop
	UpdateInterval time.Duration
	Logger         *slog.Logger
}

// NewManager creates a new feed manager
func NewManager(opts Options, store *store.Store) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Manager{
		source:         opts.Source,
		dumpPath:       opts.DumpPath,
		store:          store,
		fetcher:        NewFetcher(opts.Timeout),
		updateInterval: opts.UpdateInterval,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the periodic refresh loop
func (m *Manager) Start() {
	if m.updateInterval <= 0 {
		return
	}
	m.wg.Add(1)
	go m.updateLoop()
}

// Stop stops the refresh loop and waits for it to exit
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Manager) updateLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.Refresh(context.Background()); err != nil {
				logging.LogError(m.logger, "topology refresh failed", err,
					slog.String("source", m.source))
			}
		case <-m.stopCh:
			return
		}
	}
}

// Refresh fetches and parses the dataset and swaps it into the store.
// Concurrent calls share one fetch. On error the store keeps the previous
// topology.
func (m *Manager) Refresh(ctx context.Context) (*topology.Topology, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.update(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*topology.Topology), nil
}

func (m *Manager) update(ctx context.Context) (*topology.Topology, error) {
	start := time.Now()

	payload, err := m.fetcher.Fetch(ctx, m.source)
	if err != nil {
		return nil, err
	}

	if m.dumpPath != "" {
		if err := WriteDump(m.dumpPath, payload); err != nil {
			logging.LogError(m.logger, "failed to dump map data", err,
				slog.String("path", m.dumpPath))
		}
	}

	raw, err := topology.Parse(payload)
	if err != nil {
		return nil, err
	}

	topo := m.store.UpdateTopology(raw)

	if shadowed := topo.Shadowed(); len(shadowed) > 0 {
		ids := make([]string, 0, len(shadowed))
		for _, st := range shadowed {
			ids = append(ids, st.ID)
		}
		m.logger.Warn("stations share an x coordinate and were left out of route linking",
			slog.Int("count", len(shadowed)),
			slog.Any("ids", ids))
	}

	logging.LogOperation(m.logger, "topology refreshed",
		slog.String("source", m.source),
		slog.Int("segments", len(raw.Segments)),
		slog.Int("stations", topo.TotalStationCount()),
		slog.Int("routes", len(topo.LinkedRoutes())),
		slog.Duration("duration", time.Since(start)))

	return topo, nil
}
