// Package scheduler runs one supervised worker per feed (spec.md §4.6):
// sleep until due, skip the refresh while the feed is idle-suppressed,
// acquire the feed's lock, run the Fetch Pipeline, and persist updated
// timestamps — forever, surviving a panic in any single iteration.
//
// Lifecycle grounded on an errgroup-managed Start/Stop pattern with
// context-driven shutdown, adapted from a single tick-then-fan-out-to-a-
// worker-pool shape to one long-lived goroutine per feed, since here each
// feed has its own cadence and idle window rather than sharing one global
// tick.
package scheduler

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/siriusmart/scrapyard/pkg/domain"
	"github.com/siriusmart/scrapyard/pkg/feedlock"
	"github.com/siriusmart/scrapyard/pkg/pipeline"
	"github.com/siriusmart/scrapyard/pkg/store"
)

// Scheduler owns one goroutine per configured feed.
type Scheduler struct {
	feeds    []domain.FeedOption
	pipeline *pipeline.Pipeline
	store    *store.Store
	locks    *feedlock.Registry

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New builds a Scheduler for feeds, sharing pl, st and locks with the rest
// of the Engine.
func New(feeds []domain.FeedOption, pl *pipeline.Pipeline, st *store.Store, locks *feedlock.Registry) *Scheduler {
	return &Scheduler{feeds: feeds, pipeline: pl, store: st, locks: locks}
}

// Start launches one worker per feed and returns immediately. Call Stop to
// shut them down.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	s.group = g

	for _, feed := range s.feeds {
		feed := feed
		g.Go(func() error {
			s.runWorker(gctx, feed)
			return nil
		})
	}

	lgr.Printf("[INFO] scheduler started for %d feed(s)", len(s.feeds))
}

// Stop cancels every worker and waits for them to exit.
func (s *Scheduler) Stop() error {
	if s.cancel == nil {
		return nil
	}
	lgr.Printf("[INFO] stopping scheduler...")
	s.cancel()
	err := s.group.Wait()
	lgr.Printf("[INFO] scheduler stopped")
	return err
}

// runWorker is the outer "runs forever until process exit" loop of
// spec.md §4.6: it re-enters superviseIteration after every panic or normal
// return, until ctx is cancelled.
func (s *Scheduler) runWorker(ctx context.Context, feed domain.FeedOption) {
	if err := s.store.EnsureDir(feed.Label); err != nil {
		lgr.Printf("[ERROR] %s: could not create store directory: %v", feed.Label, err)
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}
		s.superviseIteration(ctx, feed)
	}
}

// superviseIteration runs one inner supervised block and recovers from a
// panic so the outer loop can simply iterate again (spec.md §4.6 step 3).
func (s *Scheduler) superviseIteration(ctx context.Context, feed domain.FeedOption) {
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[ERROR] %s: worker panic recovered: %v", feed.Label, r)
		}
	}()
	s.iterate(ctx, feed)
}

// iterate performs the sleep-until-due loop, the idle check, and — unless
// suppressed — one Fetch Pipeline run under the feed's lock.
func (s *Scheduler) iterate(ctx context.Context, feed domain.FeedOption) {
	interval := feed.Interval
	if interval <= 0 {
		interval = domain.DefaultInterval
	}
	idleLimit := feed.IdleLimit
	if idleLimit <= 0 {
		idleLimit = domain.DefaultIdleLimit
	}

	for {
		meta, err := s.store.LoadMeta(feed.Label)
		if err != nil {
			lgr.Printf("[ERROR] %s: could not load meta: %v", feed.Label, err)
			return
		}

		remaining, due := meta.TimeTilOutdated(interval)
		if due {
			if !sleepOrDone(ctx, time.Duration(remaining)*time.Second) {
				return
			}
			continue
		}
		break
	}

	meta, err := s.store.LoadMeta(feed.Label)
	if err != nil {
		lgr.Printf("[ERROR] %s: could not load meta: %v", feed.Label, err)
		return
	}

	if meta.Idle(idleLimit) {
		sleepOrDone(ctx, time.Duration(interval)*time.Second)
		return
	}

	release := s.locks.Acquire(feed.Label)
	defer release()

	if _, err := s.pipeline.Run(ctx, feed); err != nil {
		lgr.Printf("[WARN] %s: refresh failed: %v", feed.Label, err)
	}

	meta, err = s.store.LoadMeta(feed.Label)
	if err != nil {
		lgr.Printf("[ERROR] %s: could not reload meta before update: %v", feed.Label, err)
		return
	}
	meta.Fetched()
	if err := s.store.SaveMeta(feed.Label, meta); err != nil {
		lgr.Printf("[ERROR] %s: could not persist meta: %v", feed.Label, err)
	}
}

// sleepOrDone sleeps for d, returning false early if ctx is cancelled
// first.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
