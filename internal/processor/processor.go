// Package processor holds the row-processing engine: the queue pass that
// evaluates per-row eligibility gates and the bulk dispatcher that fans one
// row out to many numbers. Rows are read fresh on every pass; the status
// column is the only state that survives between passes.
package processor

import (
	"context"
	"strings"
	"time"

	"github.com/whatsheet/whatsheet/internal/model"
	"github.com/whatsheet/whatsheet/internal/phone"
)

// Deliverer is the delivery channel boundary. Implementations must block
// until the channel responds or times out.
type Deliverer interface {
	Deliver(ctx context.Context, target, body, imageURL string) (model.Outcome, error)
}

// Options configures a pass. MaxRetries bounds the persisted retry counter
// on the queue path and the in-pass attempts per number on the bulk path.
type Options struct {
	MaxRetries   int
	RetryDelay   time.Duration
	StatusColumn string
	Strictness   phone.Strictness
	Operator     string
	Timezone     *time.Location
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Timezone == nil {
		o.Timezone = time.Local
	}
	if o.StatusColumn == "" {
		o.StatusColumn = "Status"
	}
	return o
}

func runFlagSet(run string) bool {
	return strings.EqualFold(strings.TrimSpace(run), "yes")
}

// substituteName fills the {name} and <name> placeholders in a message
// template.
func substituteName(message, name string) string {
	message = strings.ReplaceAll(message, "{name}", name)
	return strings.ReplaceAll(message, "<name>", name)
}

// sleepCtx pauses for d but wakes early when ctx is canceled, so a pass can
// be interrupted between sends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
