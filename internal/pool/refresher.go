package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/marketdata"
)

// refreshWindow is how far back the refresher looks for the latest close
const refreshWindow = 14 * 24 * time.Hour

// Refresher periodically refreshes last-close prices for every pooled symbol
type Refresher struct {
	cron      *cron.Cron
	store     *Store
	source    marketdata.Source
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewRefresher creates a pool price refresher
func NewRefresher(store *Store, source marketdata.Source, logger *logrus.Logger) *Refresher {
	return &Refresher{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		store:  store,
		source: source,
		logger: logger,
		jobIDs: make([]cron.EntryID, 0),
	}
}

// Schedule registers the refresh job with a cron expression
func (r *Refresher) Schedule(cronExpression string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("cannot schedule job while refresher is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := r.RefreshAll(ctx); err != nil {
			r.logger.Errorf("Scheduled pool refresh failed: %v", err)
		}
	}

	entryID, err := r.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	r.jobIDs = append(r.jobIDs, entryID)
	r.logger.WithField("schedule", cronExpression).Info("Scheduled pool refresh job")

	return nil
}

// RefreshAll refreshes the last close for every symbol in every pool
func (r *Refresher) RefreshAll(ctx context.Context) error {
	var firstErr error
	for _, t := range []Type{Picking, Watching, Trading} {
		if err := r.refreshPool(ctx, t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Refresher) refreshPool(ctx context.Context, t Type) error {
	entries, err := r.store.Load(t)
	if err != nil {
		return err
	}

	end := time.Now().UTC()
	start := end.Add(-refreshWindow)

	refreshed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		bars, err := r.source.FetchBars(ctx, e.Code, start, end)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"pool":   string(t),
				"symbol": e.Code,
			}).Warnf("Failed to refresh symbol: %v", err)
			continue
		}
		if len(bars) == 0 {
			continue
		}

		last := decimal.NewFromFloat(bars[len(bars)-1].Close)
		if err := r.store.SetLastClose(t, e.Code, last); err != nil {
			r.logger.Warnf("Failed to store last close for %s: %v", e.Code, err)
			continue
		}
		refreshed++
	}

	r.logger.WithFields(logrus.Fields{
		"pool":      string(t),
		"symbols":   len(entries),
		"refreshed": refreshed,
	}).Info("Pool refresh completed")

	return nil
}

// Start starts the cron scheduler
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("refresher is already running")
	}
	if len(r.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	r.cron.Start()
	r.isRunning = true
	return nil
}

// Stop gracefully stops the cron scheduler
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return
	}

	<-r.cron.Stop().Done()
	r.isRunning = false
}

// IsRunning returns whether the refresher is currently running
func (r *Refresher) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRunning
}

// NextRun returns the time of the next scheduled refresh
func (r *Refresher) NextRun() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.isRunning {
		return time.Time{}
	}

	next := time.Time{}
	for _, jobID := range r.jobIDs {
		entry := r.cron.Entry(jobID)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}
