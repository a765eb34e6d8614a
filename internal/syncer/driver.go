package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lootshop/internal/domain/catalog"
	"lootshop/internal/domain/shop"
	"lootshop/internal/reconcile"
)

// DefaultInterval is the wall-clock refresh period.
const DefaultInterval = 5 * time.Minute

// Source provides the two feeds a refresh cycle consumes.
type Source interface {
	FetchNewIDs(ctx context.Context) (catalog.IDSet, error)
	FetchShop(ctx context.Context) (shop.Mapped, error)
}

// Driver periodically refreshes the snapshot store from the feed source.
// A failed cycle is logged and swallowed: the previously published snapshot
// stays valid and freshness degrades instead of breaking readers.
type Driver struct {
	source   Source
	store    *Store
	interval time.Duration
	lg       *zap.Logger

	// cycles counts successful refreshes; lastOK holds the wall-clock time of
	// the latest one in unix nanoseconds. Both feed the readiness probe.
	cycles atomic.Int64
	lastOK atomic.Int64
}

// NewDriver creates a Driver. A non-positive interval falls back to
// DefaultInterval.
func NewDriver(source Source, store *Store, interval time.Duration, lg *zap.Logger) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{
		source:   source,
		store:    store,
		interval: interval,
		lg:       lg,
	}
}

// Run performs one immediate refresh cycle, then repeats on the configured
// interval until ctx is cancelled. Cancellation also suppresses the result of
// an in-flight cycle: no snapshot is published after Run has been torn down.
func (d *Driver) Run(ctx context.Context) {
	d.refresh(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.refresh(ctx)
		}
	}
}

// Refreshed reports whether at least one cycle has published a snapshot.
func (d *Driver) Refreshed() bool {
	return d.cycles.Load() > 0
}

// LastRefreshed returns the time of the latest successful cycle, zero before
// the first one.
func (d *Driver) LastRefreshed() time.Time {
	nanos := d.lastOK.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// refresh fetches both feeds concurrently and publishes a replacement
// snapshot. Any fetch error leaves the previous snapshot untouched.
func (d *Driver) refresh(ctx context.Context) {
	started := time.Now()

	var (
		newIDs catalog.IDSet
		mapped shop.Mapped
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newIDs, err = d.source.FetchNewIDs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		mapped, err = d.source.FetchShop(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		d.lg.Warn("Sync cycle failed, keeping previous snapshot", zap.Error(err))
		return
	}

	// The driver may have been stopped while the fetches were in flight;
	// a late publish must not land after teardown.
	if ctx.Err() != nil {
		return
	}

	d.store.Publish(&reconcile.Snapshot{
		NewIDs:     newIDs,
		OnSaleIDs:  mapped.OnSale,
		OnPromoIDs: mapped.OnPromotion,
	})
	d.cycles.Add(1)
	d.lastOK.Store(time.Now().UnixNano())

	d.lg.Debug("Sync cycle complete",
		zap.Int("new_ids", newIDs.Len()),
		zap.Int("on_sale", mapped.OnSale.Len()),
		zap.Int("on_promotion", mapped.OnPromotion.Len()),
		zap.Duration("took", time.Since(started)),
	)
}
