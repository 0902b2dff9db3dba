/*
scheduler.go - Periodic mirror resync

PURPOSE:
  Observers are notified once per committed change and a failed
  notification is only logged. The resync scheduler periodically pushes the
  whole catalog to an observer so a mirror that missed changes during an
  outage converges again.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Each run sends one Change with every product as Updated
  - Products deleted while the mirror was unreachable are not pruned; the
    next change that removes them again, or a scenario load, does that

CONFIGURATION:
  - Interval: How often to resync (default: 5 minutes)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewResyncScheduler(ledger, mirror)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - mirror/redis.go: The observer being resynced
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/stock-ledger/inventory"
)

// ResyncScheduler pushes the full catalog to Target on a fixed interval.
type ResyncScheduler struct {
	Ledger   *inventory.Ledger
	Target   inventory.Observer
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewResyncScheduler creates a new scheduler.
func NewResyncScheduler(ledger *inventory.Ledger, target inventory.Observer) *ResyncScheduler {
	return &ResyncScheduler{
		Ledger:   ledger,
		Target:   target,
		Interval: 5 * time.Minute,
		Enabled:  true,
	}
}

// Start begins the scheduler.
func (rs *ResyncScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		log.Println("[Resync] Disabled, not starting")
		return
	}

	if rs.ticker != nil {
		return
	}

	// Stop closes the channel, so every run gets a fresh one.
	rs.stop = make(chan struct{})
	rs.ticker = time.NewTicker(rs.Interval)
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	log.Printf("[Resync] Started with interval: %v", rs.Interval)
}

// Stop stops the scheduler.
func (rs *ResyncScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		log.Println("[Resync] Stopped")
	}
}

func (rs *ResyncScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.resync(context.Background())

	for {
		select {
		case <-ticker.C:
			rs.resync(context.Background())
		case <-stop:
			return
		}
	}
}

func (rs *ResyncScheduler) resync(ctx context.Context) int {
	products, err := rs.Ledger.Products(ctx)
	if err != nil {
		log.Printf("[Resync] Error listing products: %v", err)
		return 0
	}
	if len(products) == 0 {
		return 0
	}
	if err := rs.Target.Sync(ctx, inventory.Change{Updated: products}); err != nil {
		log.Printf("[Resync] Error syncing %d products: %v", len(products), err)
		return 0
	}
	return len(products)
}
