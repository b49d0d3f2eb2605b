package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/onlyhub/internal/models"
	"github.com/desertthunder/onlyhub/internal/services"
	"github.com/desertthunder/onlyhub/internal/shared"
)

const (
	schemaPublic = "public"
	promosTable  = "promos"

	defaultRefreshPerSecond = 2.0
)

// Subscription is a stream of change events for one table.
type Subscription interface {
	Events() <-chan services.ChangeEvent
	Close() error
}

// ChangeFeed opens subscriptions on backend tables.
type ChangeFeed interface {
	Subscribe(ctx context.Context, topic, table string) (Subscription, error)
}

// RealtimeFeed adapts a realtime connection to [ChangeFeed] on the public schema.
type RealtimeFeed struct {
	rt *services.Realtime
}

func NewRealtimeFeed(rt *services.Realtime) *RealtimeFeed {
	return &RealtimeFeed{rt: rt}
}

func (f *RealtimeFeed) Subscribe(ctx context.Context, topic, table string) (Subscription, error) {
	ch, err := f.rt.Subscribe(ctx, topic, schemaPublic, table)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Refresher fetches a fresh snapshot and writes it through to the mirror.
type Refresher[T any] interface {
	Name() string
	Refresh(ctx context.Context) ([]T, error)
}

// Callbacks receive change notifications. Nil callbacks are not subscribed.
type Callbacks struct {
	OnBanners func([]models.Banner)
	OnVideos  func([]models.VideoCard)
	OnNotices func([]models.Notice)
	OnPromos  func()
}

// ListenerOpts configures a [Listener]. A nil Feed selects local-only mode.
type ListenerOpts struct {
	Feed             ChangeFeed
	Banners          Refresher[models.Banner]
	Videos           Refresher[models.VideoCard]
	Notices          Refresher[models.Notice]
	RefreshPerSecond float64
	Updates          chan<- Update
	Logger           *log.Logger
}

// Listener turns backend change events into refreshed snapshots.
type Listener struct {
	feed    ChangeFeed
	banners Refresher[models.Banner]
	videos  Refresher[models.VideoCard]
	notices Refresher[models.Notice]
	limit   rate.Limit
	updates chan<- Update
	logger  *log.Logger
}

func NewListener(opts ListenerOpts) *Listener {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}
	perSecond := opts.RefreshPerSecond
	if perSecond <= 0 {
		perSecond = defaultRefreshPerSecond
	}
	return &Listener{
		feed:    opts.Feed,
		banners: opts.Banners,
		videos:  opts.Videos,
		notices: opts.Notices,
		limit:   rate.Limit(perSecond),
		updates: opts.Updates,
		logger:  shared.WithLogger(logger, "component", "listener"),
	}
}

// Configured reports whether a change feed is attached.
func (l *Listener) Configured() bool { return l.feed != nil }

// Subscribe starts one worker per non-nil callback and returns a function that stops them all.
//
// The returned function closes every subscription, waits for the workers to exit and is safe to
// call more than once. Subscriptions that cannot be opened are logged and skipped. Without a
// change feed Subscribe does nothing.
func (l *Listener) Subscribe(ctx context.Context, cb Callbacks) func() {
	if l.feed == nil {
		l.logger.Debug("no backend configured, change listener disabled")
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	var (
		wg   sync.WaitGroup
		subs []Subscription
	)

	start := func(name string, run func(Subscription)) {
		sub, err := l.feed.Subscribe(ctx, name+"-changes", name)
		if err != nil {
			l.logger.Warn("failed to subscribe", "collection", name, "error", err)
			l.sendUpdate(failedUpdate(name, err))
			return
		}
		subs = append(subs, sub)
		l.sendUpdate(subscribedUpdate(name))

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer l.sendUpdate(closedUpdate(name))
			run(sub)
		}()
	}

	if cb.OnBanners != nil && l.banners != nil {
		start(l.banners.Name(), func(sub Subscription) { watchCollection(ctx, l, sub, l.banners, cb.OnBanners) })
	}
	if cb.OnVideos != nil && l.videos != nil {
		start(l.videos.Name(), func(sub Subscription) { watchCollection(ctx, l, sub, l.videos, cb.OnVideos) })
	}
	if cb.OnNotices != nil && l.notices != nil {
		start(l.notices.Name(), func(sub Subscription) { watchCollection(ctx, l, sub, l.notices, cb.OnNotices) })
	}
	if cb.OnPromos != nil {
		start(promosTable, func(sub Subscription) { l.watchPromos(ctx, sub, cb.OnPromos) })
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			for _, sub := range subs {
				if err := sub.Close(); err != nil {
					l.logger.Debug("failed to close subscription", "error", err)
				}
			}
			wg.Wait()
		})
	}
}

// watchCollection refreshes r once per burst of events and hands the snapshot to fn.
func watchCollection[T any](ctx context.Context, l *Listener, sub Subscription, r Refresher[T], fn func([]T)) {
	limiter := rate.NewLimiter(l.limit, 1)
	name := r.Name()

	for l.next(ctx, sub, limiter) {
		items, err := r.Refresh(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Warn("refresh after change failed", "collection", name, "error", err)
			l.sendUpdate(failedUpdate(name, err))
			continue
		}

		l.logger.Debug("collection refreshed", "collection", name, "count", len(items))
		l.sendUpdate(refreshedUpdate(name, len(items)))
		fn(items)
	}
}

func (l *Listener) watchPromos(ctx context.Context, sub Subscription, fn func()) {
	limiter := rate.NewLimiter(l.limit, 1)
	for l.next(ctx, sub, limiter) {
		l.sendUpdate(invalidatedUpdate(promosTable))
		fn()
	}
}

// next blocks until an event arrives and the limiter allows a refresh, then drops events queued
// meanwhile so they are served by this refresh. It returns false once the worker should stop.
func (l *Listener) next(ctx context.Context, sub Subscription, limiter *rate.Limiter) bool {
	events := sub.Events()
	select {
	case <-ctx.Done():
		return false
	case _, ok := <-events:
		if !ok {
			return false
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		return false
	}

	for {
		select {
		case _, ok := <-events:
			if !ok {
				return ctx.Err() == nil
			}
		default:
			return true
		}
	}
}

// sendUpdate sends an update through the channel without blocking.
func (l *Listener) sendUpdate(update Update) {
	if l.updates == nil {
		return
	}
	select {
	case l.updates <- update:
	default:
	}
}
