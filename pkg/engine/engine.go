// Package engine bundles the per-process state the scheduler and Read API
// both need — master config, the item ident string, the persistent store,
// the feed lock registry and the configured feed list — behind one handle.
//
// spec.md §9's design notes call for replacing a "set-once, read-everywhere"
// process-wide global with an explicit handle threaded through callers
// instead, following the same dependency-injected service-struct shape
// used elsewhere in this codebase rather than a package-level singleton.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/siriusmart/scrapyard/pkg/domain"
	"github.com/siriusmart/scrapyard/pkg/extractor"
	"github.com/siriusmart/scrapyard/pkg/feedlock"
	"github.com/siriusmart/scrapyard/pkg/pipeline"
	"github.com/siriusmart/scrapyard/pkg/scheduler"
	"github.com/siriusmart/scrapyard/pkg/store"
)

// Kind selects a serialisation for the string-returning Read API
// operations (spec.md §4.7).
type Kind int

const (
	// RSS selects cache.xml.
	RSS Kind = iota
	// JSON selects cache.json.
	JSON
)

// Engine holds everything the scheduler and Read API need, constructed
// once at startup and passed by reference (never a package-level global).
type Engine struct {
	Master domain.MasterConfig
	Ident  string

	store    *store.Store
	pipeline *pipeline.Pipeline
	locks    *feedlock.Registry
	feeds    map[string]domain.FeedOption
}

// New constructs an Engine. master and ident must already be fully
// defaulted and validated (see pkg/config).
func New(master domain.MasterConfig, ident string, feeds []domain.FeedOption) *Engine {
	st := store.New(master.Store)
	runner := extractor.New(st,
		time.Duration(master.RequestTimeout)*time.Second,
		time.Duration(master.ScriptTimeout)*time.Second,
	)
	pl := pipeline.New(st, runner, master.MaxRetries, ident)

	byLabel := make(map[string]domain.FeedOption, len(feeds))
	for _, f := range feeds {
		byLabel[f.Label] = f
	}

	return &Engine{
		Master:   master,
		Ident:    ident,
		store:    st,
		pipeline: pl,
		locks:    feedlock.NewRegistry(),
		feeds:    byLabel,
	}
}

// Scheduler builds a Scheduler covering every configured feed, sharing
// this Engine's store, pipeline and lock registry.
func (e *Engine) Scheduler() *scheduler.Scheduler {
	feeds := make([]domain.FeedOption, 0, len(e.feeds))
	for _, f := range e.feeds {
		feeds = append(feeds, f)
	}
	return scheduler.New(feeds, e.pipeline, e.store, e.locks)
}

// feed looks up a configured feed by label.
func (e *Engine) feed(label string) (domain.FeedOption, error) {
	f, ok := e.feeds[label]
	if !ok {
		return domain.FeedOption{}, fmt.Errorf("no such feed: %q", label)
	}
	return f, nil
}

// touch updates last-requested and persists meta, the effect spec.md §4.7
// says all four Read API operations share.
func (e *Engine) touch(label string) (domain.FetchedMeta, error) {
	meta, err := e.store.LoadMeta(label)
	if err != nil {
		return meta, err
	}
	meta.Requested()
	if err := e.store.SaveMeta(label, meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// LazyObject returns label's channel and items, refreshing first only if
// the cached copy is outdated (spec.md §4.7).
func (e *Engine) LazyObject(ctx context.Context, label string) (domain.FeedDocument, error) {
	feed, err := e.feed(label)
	if err != nil {
		return domain.FeedDocument{}, err
	}

	meta, err := e.store.LoadMeta(label)
	if err != nil {
		return domain.FeedDocument{}, err
	}

	if meta.Outdated(feed.Interval) {
		return e.refreshObject(ctx, feed)
	}

	if _, err := e.touch(label); err != nil {
		return domain.FeedDocument{}, err
	}
	items, err := e.store.LoadCache(label)
	if err != nil {
		return domain.FeedDocument{}, err
	}
	return domain.FeedDocument{Channel: feed.Channel, Items: items}, nil
}

// ForceObject always refreshes before returning (spec.md §4.7).
func (e *Engine) ForceObject(ctx context.Context, label string) (domain.FeedDocument, error) {
	feed, err := e.feed(label)
	if err != nil {
		return domain.FeedDocument{}, err
	}
	return e.refreshObject(ctx, feed)
}

// refreshObject runs the Fetch Pipeline under the feed's lock, stamps
// last-fetch and last-requested, and returns the freshly merged document.
func (e *Engine) refreshObject(ctx context.Context, feed domain.FeedOption) (domain.FeedDocument, error) {
	release := e.locks.Acquire(feed.Label)
	defer release()

	items, err := e.pipeline.Run(ctx, feed)
	if err != nil {
		return domain.FeedDocument{}, err
	}

	meta, err := e.store.LoadMeta(feed.Label)
	if err != nil {
		return domain.FeedDocument{}, err
	}
	meta.Fetched()
	meta.Requested()
	if err := e.store.SaveMeta(feed.Label, meta); err != nil {
		return domain.FeedDocument{}, err
	}

	return domain.FeedDocument{Channel: feed.Channel, Items: items}, nil
}

// LazyString returns the raw cache.xml or cache.json contents for label,
// refreshing first only if outdated (spec.md §4.7).
func (e *Engine) LazyString(ctx context.Context, label string, kind Kind) (string, error) {
	feed, err := e.feed(label)
	if err != nil {
		return "", err
	}

	meta, err := e.store.LoadMeta(label)
	if err != nil {
		return "", err
	}

	if meta.Outdated(feed.Interval) {
		return e.refreshString(ctx, feed, kind)
	}

	if _, err := e.touch(label); err != nil {
		return "", err
	}
	return e.readString(label, kind)
}

// ForceString always refreshes before returning the raw string contents.
func (e *Engine) ForceString(ctx context.Context, label string, kind Kind) (string, error) {
	feed, err := e.feed(label)
	if err != nil {
		return "", err
	}
	return e.refreshString(ctx, feed, kind)
}

func (e *Engine) refreshString(ctx context.Context, feed domain.FeedOption, kind Kind) (string, error) {
	if _, err := e.refreshObject(ctx, feed); err != nil {
		return "", err
	}
	return e.readString(feed.Label, kind)
}

func (e *Engine) readString(label string, kind Kind) (string, error) {
	switch kind {
	case RSS:
		return e.store.ReadCacheXML(label)
	case JSON:
		return e.store.ReadCacheJSON(label)
	default:
		return "", fmt.Errorf("unknown kind %d", kind)
	}
}
