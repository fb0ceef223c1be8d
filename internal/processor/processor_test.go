package processor

import (
	"context"
	"errors"
	"time"

	"github.com/whatsheet/whatsheet/internal/model"
	"github.com/whatsheet/whatsheet/internal/rate"
)

type cellWrite struct {
	Index  int
	Column string
	Value  string
}

type fakeStore struct {
	rows    []model.Row
	rowsErr error
	writes  []cellWrite
}

func (f *fakeStore) Rows(ctx context.Context, sheetName string) ([]model.Row, error) {
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows, nil
}

func (f *fakeStore) WriteCell(ctx context.Context, sheetName string, rowIndex int, column, value string) error {
	f.writes = append(f.writes, cellWrite{Index: rowIndex, Column: column, Value: value})
	return nil
}

type delivery struct {
	Target   string
	Body     string
	ImageURL string
}

type fakeDeliverer struct {
	calls []delivery
	// fail returns the error for a given call ordinal (1-based); nil
	// means success.
	fail func(call int) error
}

func (f *fakeDeliverer) Deliver(ctx context.Context, target, body, imageURL string) (model.Outcome, error) {
	f.calls = append(f.calls, delivery{Target: target, Body: body, ImageURL: imageURL})
	if f.fail != nil {
		if err := f.fail(len(f.calls)); err != nil {
			return model.Failed, err
		}
	}
	return model.SentTextOnly, nil
}

func alwaysFail(reason string) func(int) error {
	return func(int) error { return errors.New(reason) }
}

// fixedNow is an evening instant inside the peak rate band.
var fixedNow = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return ctx.Err()
}

func testQueue(store *fakeStore, dlv *fakeDeliverer, opts Options) (*Queue, *sleepRecorder) {
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	if opts.StatusColumn == "" {
		opts.StatusColumn = "I"
	}
	q := NewQueue(store, dlv, rate.NewGovernor(rate.DefaultDelays), opts, nil)
	rec := &sleepRecorder{}
	q.now = func() time.Time { return fixedNow }
	q.sleep = rec.sleep
	return q, rec
}

func testBulk(store *fakeStore, dlv *fakeDeliverer, opts Options) (*Bulk, *sleepRecorder) {
	b := NewBulk(store, dlv, rate.NewGovernor(rate.DefaultDelays), opts, nil)
	rec := &sleepRecorder{}
	b.now = func() time.Time { return fixedNow }
	b.sleep = rec.sleep
	return b, rec
}
