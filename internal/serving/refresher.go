package serving

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/modelyard/modelyard/internal/registry"
)

// DefaultRefreshInterval is used when no interval is configured.
const DefaultRefreshInterval = 15 * time.Second

// Refresher polls the registry pointer file and refreshes the serving state
// when it changes on disk, so promotions done outside the server process
// (e.g. by the CLI) are picked up without a restart.
type Refresher struct {
	state    *State
	root     string
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	lastModTime time.Time
	lastSize    int64
}

// NewRefresher creates a refresher for the given serving state.
func NewRefresher(state *State, root string, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		state:    state,
		root:     root,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the polling loop. The first poll runs immediately.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.logger.Info("serving refresher started", "interval", r.interval)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.poll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.poll()
			}
		}
	}()
}

// Stop terminates the polling loop and waits for it to finish.
func (r *Refresher) Stop(ctx context.Context) {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// poll refreshes the serving state when the pointer file's mtime or size
// changed since the last poll.
func (r *Refresher) poll() {
	path := filepath.Join(r.root, "metadata", registry.ProductionFileName)

	info, err := os.Stat(path)
	var modTime time.Time
	var size int64
	if err == nil {
		modTime = info.ModTime()
		size = info.Size()
	}

	if modTime.Equal(r.lastModTime) && size == r.lastSize {
		return
	}
	r.lastModTime = modTime
	r.lastSize = size

	r.logger.Info("production pointer changed, refreshing serving state")
	r.state.Refresh()
}
