package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/config"
	"github.com/staylinehq/stayline/pkg/metrics"
)

// Dispatcher drains the notification outbox: it turns pending outbox rows
// into in-app notifications and optionally publishes them to an external
// stream. Outbox rows are written in the same transaction as the mutation
// that caused them, so the dispatcher never observes a half-applied change.
type Dispatcher struct {
	logger    *zap.Logger
	db        database.Database
	publisher Publisher
	metrics   *metrics.Metrics
	interval  time.Duration
	batch     int
}

// NewDispatcher creates a dispatcher. publisher and m may be nil.
func NewDispatcher(logger *zap.Logger, db database.Database, publisher Publisher, m *metrics.Metrics, cfg config.NotifierConfig) *Dispatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	batch := cfg.Batch
	if batch <= 0 {
		batch = 100
	}
	return &Dispatcher{
		logger:    logger.Named("notifier"),
		db:        db,
		publisher: publisher,
		metrics:   m,
		interval:  interval,
		batch:     batch,
	}
}

// Run polls the outbox until the context is canceled
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("outbox drain failed", zap.Error(err))
			}
		}
	}
}

// DrainOnce processes one batch of pending outbox rows. Each row is
// materialized and marked dispatched individually, so one bad row cannot
// wedge the queue.
func (d *Dispatcher) DrainOnce(ctx context.Context) error {
	rows, err := d.db.PendingOutbox(ctx, d.batch)
	if err != nil {
		return err
	}

	dispatched := make([]uint, 0, len(rows))
	for _, row := range rows {
		n := &database.Notification{
			UserID:     row.UserID,
			Title:      row.Title,
			Message:    row.Message,
			EntityKind: row.EntityKind,
			EntityID:   row.EntityID,
		}
		if err := d.db.CreateNotification(ctx, n); err != nil {
			d.logger.Error("failed to materialize notification",
				zap.Uint("outbox_id", row.ID),
				zap.Error(err))
			d.count("error")
			continue
		}
		if d.publisher != nil {
			// Stream publication is best effort; the in-app notification is
			// already durable.
			if err := d.publisher.Publish(ctx, n); err != nil {
				d.logger.Warn("failed to publish notification event",
					zap.Uint("notification_id", n.ID),
					zap.Error(err))
			}
		}
		dispatched = append(dispatched, row.ID)
		d.count("ok")
	}

	if len(dispatched) == 0 {
		return nil
	}
	return d.db.MarkOutboxDispatched(ctx, dispatched)
}

func (d *Dispatcher) count(status string) {
	if d.metrics != nil {
		d.metrics.OutboxDispatched(status)
	}
}
