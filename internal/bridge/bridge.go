package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/sched"
	"github.com/five82/shopfront/internal/shop"
)

const (
	// DefaultInterval is the poll cadence when none is configured.
	DefaultInterval = 500 * time.Millisecond
	maxBackoff      = 30 * time.Second
)

// Options configure a Bridge.
type Options struct {
	Interval time.Duration
	Logger   *slog.Logger
	// OnRepublish is called after each foreign change is published.
	OnRepublish func(key string)
	// OnError is called for every failed poll.
	OnError func(err error)
}

type watch struct {
	key       string
	republish func()
}

// Bridge republishes writes made by other processes onto the local bus.
type Bridge struct {
	store    *kv.Store
	bus      *bus.Bus
	sched    sched.Scheduler
	interval time.Duration
	logger   *slog.Logger
	opts     Options
	watches  []watch

	mu       sync.Mutex
	seen     map[string]kv.Revision
	failures int
	task     *sched.Task
	stopped  bool
	release  func() bool
}

// New returns a bridge watching the cart, profile, order history and theme
// keys. Revisions present at construction count as already seen.
func New(store *kv.Store, b *bus.Bus, s sched.Scheduler, opts Options) *Bridge {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	br := &Bridge{
		store:    store,
		bus:      b,
		sched:    s,
		interval: interval,
		logger:   logger,
		opts:     opts,
		seen:     make(map[string]kv.Revision),
	}
	br.watches = []watch{
		{key: shop.KeyCart, republish: br.republishCart},
		{key: shop.KeyUserProfile, republish: br.republishProfile},
		{key: shop.KeyOrderHistory, republish: br.republishOrders},
		{key: shop.KeyTheme, republish: br.republishTheme},
	}
	for _, w := range br.watches {
		if rev, err := store.Revision(w.key); err == nil {
			br.seen[w.key] = rev
		}
	}
	return br
}

// Poll checks every watched key once and republishes those changed by
// someone else. It returns how many keys were republished.
func (br *Bridge) Poll() (int, error) {
	var (
		changed int
		errs    []error
	)
	for _, w := range br.watches {
		rev, err := br.store.Revision(w.key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		br.mu.Lock()
		last := br.seen[w.key]
		br.seen[w.key] = rev
		br.mu.Unlock()
		if rev == last || rev == br.store.OwnRevision(w.key) {
			continue
		}
		br.logger.Debug("foreign change", "key", w.key, "revision", rev)
		w.republish()
		changed++
		if br.opts.OnRepublish != nil {
			br.opts.OnRepublish(w.key)
		}
	}
	return changed, errors.Join(errs...)
}

// Start arms the poll loop on the scheduler and returns immediately. The loop
// stops when ctx is done or Stop is called.
// Calling Start again restarts the loop under the new ctx.
func (br *Bridge) Start(ctx context.Context) {
	br.mu.Lock()
	br.stopped = false
	if br.release != nil {
		br.release()
	}
	br.release = context.AfterFunc(ctx, br.Stop)
	br.mu.Unlock()
	br.arm(br.interval)
}

// Stop cancels the pending poll.
func (br *Bridge) Stop() {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.stopped = true
	br.task.Cancel()
	br.task = nil
	if br.release != nil {
		br.release()
		br.release = nil
	}
}

func (br *Bridge) arm(after time.Duration) {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.stopped {
		return
	}
	br.task.Cancel()
	br.task = br.sched.AfterFunc(after, br.tick)
}

func (br *Bridge) tick() {
	_, err := br.Poll()

	br.mu.Lock()
	if err != nil {
		br.failures++
	} else {
		br.failures = 0
	}
	failures := br.failures
	br.mu.Unlock()

	if err != nil {
		br.logger.Warn("sync poll failed", "error", err, "failures", failures)
		if br.opts.OnError != nil {
			br.opts.OnError(err)
		}
	}
	br.arm(calculateBackoff(failures, br.interval))
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func (br *Bridge) republishCart() {
	cart := kv.Get(br.store, shop.KeyCart, shop.Cart{})
	bus.Publish(br.bus, shop.CartChanged, shop.CartChange{Cart: cart, Count: len(cart)})
}

func (br *Bridge) republishProfile() {
	var profile shop.UserProfile
	if !br.store.Load(shop.KeyUserProfile, &profile) {
		return
	}
	bus.Publish(br.bus, shop.ProfileUpdated, profile)
}

func (br *Bridge) republishOrders() {
	bus.Publish(br.bus, shop.OrdersChanged, kv.Get(br.store, shop.KeyOrderHistory, shop.History{}))
}

func (br *Bridge) republishTheme() {
	bus.Publish(br.bus, shop.ThemeChanged, kv.Get(br.store, shop.KeyTheme, ""))
}
