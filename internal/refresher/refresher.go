package refresher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// TodayBuilder computes the today view for a date
type TodayBuilder interface {
	Today(ctx context.Context, date time.Time) (*attendance.TodayView, error)
}

// Snapshot is the latest today view kept by the refresher
type Snapshot struct {
	View       *attendance.TodayView
	Err        error // Error of the latest run, the previous view is kept
	Generation uint64
	UpdatedAt  time.Time
}

// Refresher recomputes the today view on a fixed interval.
// A tick is skipped while a run is still in flight. Midnight rollover and
// explicit Refresh calls cancel the running build instead, and only the
// newest generation may replace the snapshot.
type Refresher struct {
	builder  TodayBuilder
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger

	generation atomic.Uint64
	inFlight   atomic.Int32

	runMu     sync.Mutex // Guards cancelRun
	cancelRun context.CancelFunc

	mu       sync.RWMutex
	snapshot Snapshot

	wg sync.WaitGroup
}

// New creates a new refresher
func New(builder TodayBuilder, interval time.Duration, loc *time.Location, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{
		builder:  builder,
		interval: interval,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Run refreshes immediately, then on every tick and at each midnight,
// until ctx is cancelled
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("Refresher started",
		zap.Duration("interval", r.interval),
		zap.String("timezone", r.loc.String()))

	r.refreshAsync(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	midnight := time.NewTimer(r.untilMidnight())
	defer midnight.Stop()

	for {
		select {
		case <-ctx.Done():
			r.stopInFlight()
			r.wg.Wait()
			r.logger.Info("Refresher stopped")
			return nil

		case <-ticker.C:
			if n := r.inFlight.Load(); n > 0 {
				r.logger.Debug("Refresh still running, skipping tick",
					zap.Int32("in_flight", n))
				continue
			}
			r.refreshAsync(ctx)

		case <-midnight.C:
			r.logger.Info("Date rolled over, refreshing",
				zap.String("date", dateutil.FormatDate(r.today())))
			r.refreshAsync(ctx)
			midnight.Reset(r.untilMidnight())
		}
	}
}

// refreshAsync counts the run as in flight before the goroutine starts,
// so the next tick sees it
func (r *Refresher) refreshAsync(ctx context.Context) {
	r.inFlight.Add(1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.inFlight.Add(-1)
		if err := r.refresh(ctx); err != nil {
			r.logger.Error("Refresh failed", zap.Error(err))
		}
	}()
}

// Refresh computes the today view once and stores it unless a newer run
// has already been started. The previous run, if still going, is cancelled.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	return r.refresh(ctx)
}

func (r *Refresher) refresh(ctx context.Context) error {
	runCtx, gen := r.startRun(ctx)
	date := r.today()

	view, err := r.builder.Today(runCtx, date)

	if r.generation.Load() != gen {
		r.logger.Debug("Discarding superseded refresh",
			zap.Uint64("generation", gen))
		return nil
	}
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}

	r.store(gen, view, err)
	return err
}

// startRun cancels the in-flight run and opens a new generation
func (r *Refresher) startRun(ctx context.Context) (context.Context, uint64) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	if r.cancelRun != nil {
		r.cancelRun()
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancelRun = cancel
	return runCtx, r.generation.Add(1)
}

func (r *Refresher) stopInFlight() {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.cancelRun != nil {
		r.cancelRun()
		r.cancelRun = nil
	}
}

func (r *Refresher) store(gen uint64, view *attendance.TodayView, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen <= r.snapshot.Generation {
		return
	}
	r.snapshot.Generation = gen
	r.snapshot.Err = err
	r.snapshot.UpdatedAt = r.now()
	if err == nil {
		r.snapshot.View = view
		r.logger.Debug("Snapshot updated",
			zap.Uint64("generation", gen),
			zap.String("date", dateutil.FormatDate(view.Date)))
	}
}

// Snapshot returns the latest snapshot. ok is false until a view was built.
func (r *Refresher) Snapshot() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot, r.snapshot.View != nil
}

// Current returns the snapshot view when it belongs to date
func (r *Refresher) Current(date time.Time) (*attendance.TodayView, bool) {
	snap, ok := r.Snapshot()
	if !ok || !dateutil.IsSameDay(snap.View.Date, date.In(r.loc)) {
		return nil, false
	}
	return snap.View, true
}

func (r *Refresher) today() time.Time {
	return dateutil.StartOfDay(r.now().In(r.loc))
}

func (r *Refresher) untilMidnight() time.Duration {
	return nextMidnight(r.now(), r.loc).Sub(r.now())
}

// nextMidnight returns the start of the day after now in loc
func nextMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}
