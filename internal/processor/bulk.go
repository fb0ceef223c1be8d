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
)

// Bulk fans one row out to every number in its phone field. Bulk rows have
// no scheduled time: they send as soon as they are eligible.
type Bulk struct {
	store   sheet.Store
	deliver Deliverer
	gov     *rate.Governor
	cache   cache.SentCache
	opts    Options
	logger  *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewBulk(store sheet.Store, deliver Deliverer, gov *rate.Governor, opts Options, logger *slog.Logger) *Bulk {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bulk{
		store:   store,
		deliver: deliver,
		gov:     gov,
		opts:    opts.withDefaults(),
		logger:  logger,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// WithCache records fully delivered rows in c.
func (b *Bulk) WithCache(c cache.SentCache) *Bulk {
	b.cache = c
	return b
}

// Run executes one bulk pass over sheetName. Sent/Failed count individual
// numbers; Skipped and Total count rows.
func (b *Bulk) Run(ctx context.Context, sheetName string) (model.PassSummary, error) {
	var sum model.PassSummary

	rows, err := b.store.Rows(ctx, sheetName)
	if err != nil {
		return sum, err
	}
	sum.Total = len(rows)

	b.logger.Info("bulk pass started", "sheet", sheetName, "rows", len(rows))

	for i, row := range rows {
		log := b.logger.With("sheet", sheetName, "row", row.Index)

		dispatched, err := b.processRow(ctx, log, sheetName, row, &sum)
		if err != nil {
			return sum, err
		}

		if dispatched && i < len(rows)-1 {
			if err := b.sleep(ctx, b.gov.DelayFor(b.now())); err != nil {
				return sum, err
			}
		}
	}

	b.logger.Info("bulk pass finished",
		"sheet", sheetName, "sent", sum.Sent, "failed", sum.Failed, "skipped", sum.Skipped)
	return sum, nil
}

func (b *Bulk) processRow(ctx context.Context, log *slog.Logger, sheetName string, row model.Row, sum *model.PassSummary) (bool, error) {
	st := status.Parse(row.Status)

	if st.Kind == status.KindSent || st.Kind == status.KindError {
		sum.Skipped++
		return false, nil
	}

	if !runFlagSet(row.Run) {
		sum.Skipped++
		return false, nil
	}

	if strings.TrimSpace(row.Phone) == "" || strings.TrimSpace(row.Message) == "" {
		log.Warn("missing required fields")
		b.writeStatus(ctx, log, sheetName, row.Index, status.MissingFields())
		sum.Failed++
		return false, nil
	}

	numbers := phone.Normalize(row.Phone, b.opts.Strictness)
	if len(numbers) == 0 {
		log.Warn("no valid phone numbers", "phone", row.Phone)
		b.writeStatus(ctx, log, sheetName, row.Index, status.Error("No valid phone numbers"))
		sum.Failed++
		return false, nil
	}

	log.Info("dispatching row", "targets", len(numbers))

	var failures []status.Failure
	for j, num := range numbers {
		lastErr := b.attemptTarget(ctx, log, num, row)
		if ctx.Err() != nil {
			return true, ctx.Err()
		}

		if lastErr == nil {
			sum.Sent++
		} else {
			failures = append(failures, status.Failure{Target: num, Reason: lastErr.Error()})
			sum.Failed++
		}

		if j < len(numbers)-1 {
			if err := b.sleep(ctx, b.gov.DelayFor(b.now())); err != nil {
				return true, err
			}
		}
	}

	if len(failures) == 0 {
		b.writeStatus(ctx, log, sheetName, row.Index, status.SentCount(len(numbers), b.now()))
		if b.cache != nil {
			if cerr := b.cache.StoreSent(ctx, sheetName, row.Index, strings.Join(numbers, ","), b.now()); cerr != nil {
				log.Error("failed to cache sent row", "error", cerr)
			}
		}
	} else {
		b.writeStatus(ctx, log, sheetName, row.Index, status.Partial(len(numbers), failures, b.now()))
	}
	return true, nil
}

// attemptTarget delivers to one number with up to MaxRetries tries spaced
// by the fixed inter-retry delay. It returns the last error, or nil once a
// try succeeds.
func (b *Bulk) attemptTarget(ctx context.Context, log *slog.Logger, target string, row model.Row) error {
	var lastErr error
	for attempt := 1; attempt <= b.opts.MaxRetries; attempt++ {
		outcome, err := b.deliver.Deliver(ctx, target, row.Message, row.ImageURL)
		if err == nil {
			log.Info("message sent", "target", target, "outcome", outcome.String(), "attempt", attempt)
			return nil
		}
		lastErr = err
		log.Warn("send attempt failed", "target", target, "attempt", attempt, "error", err)

		if attempt < b.opts.MaxRetries {
			if serr := b.sleep(ctx, b.opts.RetryDelay); serr != nil {
				return lastErr
			}
		}
	}
	return lastErr
}

func (b *Bulk) writeStatus(ctx context.Context, log *slog.Logger, sheetName string, rowIndex int, value string) {
	if err := b.store.WriteCell(ctx, sheetName, rowIndex, b.opts.StatusColumn, value); err != nil {
		log.Error("failed to write status", "value", value, "error", err)
	}
}
