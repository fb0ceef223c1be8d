package processor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/whatsheet/whatsheet/internal/cache"
	"github.com/whatsheet/whatsheet/internal/model"
	"github.com/whatsheet/whatsheet/internal/phone"
	"github.com/whatsheet/whatsheet/internal/rate"
	"github.com/whatsheet/whatsheet/internal/sheet"
	"github.com/whatsheet/whatsheet/internal/status"
	"github.com/whatsheet/whatsheet/internal/timeparse"
)

// Queue processes the message-queue sheet: one target per row, scheduled
// times, persisted retry counters.
type Queue struct {
	store   sheet.Store
	deliver Deliverer
	gov     *rate.Governor
	cache   cache.SentCache
	opts    Options
	logger  *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewQueue(store sheet.Store, deliver Deliverer, gov *rate.Governor, opts Options, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		store:   store,
		deliver: deliver,
		gov:     gov,
		opts:    opts.withDefaults(),
		logger:  logger,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// WithCache records successful sends in c in addition to the sheet write.
func (q *Queue) WithCache(c cache.SentCache) *Queue {
	q.cache = c
	return q
}

// Run executes one pass over sheetName. With includeScheduled false only
// rows carrying the "now" token are dispatched; with it true any due row
// is. A fetch failure or empty sheet aborts the pass.
func (q *Queue) Run(ctx context.Context, sheetName string, includeScheduled bool) (model.PassSummary, error) {
	var sum model.PassSummary

	rows, err := q.store.Rows(ctx, sheetName)
	if err != nil {
		return sum, err
	}
	sum.Total = len(rows)

	q.logger.Info("queue pass started",
		"sheet", sheetName, "rows", len(rows), "scheduled", includeScheduled)

	for i, row := range rows {
		log := q.logger.With("sheet", sheetName, "row", row.Index)

		dispatched := q.processRow(ctx, log, sheetName, row, includeScheduled, &sum)
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}

		if dispatched && i < len(rows)-1 {
			if err := q.sleep(ctx, q.gov.DelayFor(q.now())); err != nil {
				return sum, err
			}
		}
	}

	q.logger.Info("queue pass finished",
		"sheet", sheetName, "sent", sum.Sent, "failed", sum.Failed, "skipped", sum.Skipped)
	return sum, nil
}

// processRow applies the gate chain to one row and dispatches when every
// gate passes. It reports whether a send was attempted so the caller can
// pace the next one.
func (q *Queue) processRow(ctx context.Context, log *slog.Logger, sheetName string, row model.Row, includeScheduled bool, sum *model.PassSummary) bool {
	st := status.Parse(row.Status)

	// Sent and terminal failure states are absorbing.
	if st.Kind == status.KindSent || st.Kind == status.KindError || st.Kind == status.KindInvalidPhone {
		sum.Skipped++
		return false
	}

	if !runFlagSet(row.Run) {
		sum.Skipped++
		return false
	}

	if strings.TrimSpace(row.Phone) == "" || strings.TrimSpace(row.Message) == "" {
		log.Warn("missing required fields")
		q.writeStatus(ctx, log, sheetName, row.Index, status.MissingFields())
		sum.Failed++
		return false
	}

	if q.ownedByOther(row.HandledBy) {
		sum.Skipped++
		return false
	}

	if st.Retries >= q.opts.MaxRetries {
		log.Info("retry budget exhausted", "retries", st.Retries)
		sum.Skipped++
		return false
	}

	if !q.due(log, row.Time, includeScheduled) {
		sum.Skipped++
		return false
	}

	target, ok := phone.NormalizeOne(row.Phone, q.opts.Strictness)
	if !ok {
		log.Warn("invalid phone number", "phone", row.Phone)
		q.writeStatus(ctx, log, sheetName, row.Index, status.InvalidPhone())
		sum.Failed++
		return false
	}

	body := substituteName(row.Message, row.Name)

	outcome, err := q.deliver.Deliver(ctx, target, body, row.ImageURL)
	if err != nil {
		q.recordFailure(ctx, log, sheetName, row, err)
		sum.Failed++
		return true
	}

	log.Info("message sent", "target", target, "outcome", outcome.String())
	q.writeStatus(ctx, log, sheetName, row.Index, status.Sent())
	if q.cache != nil {
		if cerr := q.cache.StoreSent(ctx, sheetName, row.Index, target, q.now()); cerr != nil {
			log.Error("failed to cache sent row", "error", cerr)
		}
	}
	sum.Sent++
	return true
}

// ownedByOther applies the ownership gate: skip rows claimed by a different
// operator. Rows without an owner, or workers without an identity, pass.
func (q *Queue) ownedByOther(handledBy string) bool {
	owner := strings.ToLower(strings.TrimSpace(handledBy))
	self := strings.ToLower(strings.TrimSpace(q.opts.Operator))
	return owner != "" && self != "" && owner != self
}

// due applies the due-time gate. The "now" token is always due; an
// unparsable value means the due state cannot be determined and the row is
// skipped without a status write.
func (q *Queue) due(log *slog.Logger, rawTime string, includeScheduled bool) bool {
	if timeparse.IsNow(rawTime) {
		return true
	}
	if !includeScheduled {
		return false
	}

	when, ok := timeparse.Parse(rawTime, q.opts.Timezone)
	if !ok {
		log.Warn("invalid scheduled time", "time", rawTime)
		return false
	}
	if q.now().Before(when) {
		log.Info("not yet due", "scheduled_for", when)
		return false
	}
	return true
}

// recordFailure advances the retry counter, or writes the terminal error
// once the budget is spent.
func (q *Queue) recordFailure(ctx context.Context, log *slog.Logger, sheetName string, row model.Row, sendErr error) {
	next := status.NextRetry(row.Status)
	if status.RetryCount(next) < q.opts.MaxRetries {
		log.Warn("send failed, will retry", "error", sendErr, "status", next)
		q.writeStatus(ctx, log, sheetName, row.Index, next)
		return
	}
	log.Error("send failed, max retries reached", "error", sendErr)
	q.writeStatus(ctx, log, sheetName, row.Index, status.Error(sendErr.Error()))
}

func (q *Queue) writeStatus(ctx context.Context, log *slog.Logger, sheetName string, rowIndex int, value string) {
	if err := q.store.WriteCell(ctx, sheetName, rowIndex, q.opts.StatusColumn, value); err != nil {
		log.Error("failed to write status", "value", value, "error", err)
	}
}
