package processor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/whatsheet/whatsheet/internal/model"
)

func TestBulk_SendsToAllNumbersAndWritesCount(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []model.Row{
		{Index: 2, Phone: "9876543210, 9876543211", Message: "offer", Run: "yes"},
	}}
	dlv := &fakeDeliverer{}
	b, rec := testBulk(store, dlv, Options{MaxRetries: 3})

	sum, err := b.Run(context.Background(), "BulkMessages_raj")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(dlv.calls) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(dlv.calls))
	}
	if dlv.calls[0].Target != "919876543210" || dlv.calls[1].Target != "919876543211" {
		t.Fatalf("unexpected targets: %+v", dlv.calls)
	}

	if len(store.writes) != 1 || !strings.Contains(store.writes[0].Value, "✅ Sent to 2 numbers") {
		t.Fatalf("expected success count write, got %+v", store.writes)
	}

	want := model.PassSummary{Sent: 2, Total: 1}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}

	// One pacing delay between the two numbers, none after the last row.
	if len(rec.slept) != 1 || rec.slept[0] != 5*time.Second {
		t.Fatalf("expected one peak-band delay between numbers, got %v", rec.slept)
	}
}

func TestBulk_DropsInvalidTokenAndRecordsPartialOnFailure(t *testing.T) {
	t.Parallel()

	row := model.Row{Index: 2, Phone: "98765 43210, 12345", Message: "offer", Run: "yes"}

	t.Run("valid number succeeds", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{rows: []model.Row{row}}
		dlv := &fakeDeliverer{}
		b, _ := testBulk(store, dlv, Options{MaxRetries: 3})

		sum, err := b.Run(context.Background(), "b")
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if len(dlv.calls) != 1 || dlv.calls[0].Target != "919876543210" {
			t.Fatalf("expected single delivery to expanded number, got %+v", dlv.calls)
		}
		if !strings.Contains(store.writes[0].Value, "✅ Sent to 1 numbers") {
			t.Fatalf("expected success write, got %+v", store.writes)
		}
		if sum.Sent != 1 || sum.Failed != 0 {
			t.Fatalf("unexpected summary: %+v", sum)
		}
	})

	t.Run("valid number fails", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{rows: []model.Row{row}}
		dlv := &fakeDeliverer{fail: alwaysFail("blocked")}
		b, _ := testBulk(store, dlv, Options{MaxRetries: 3})

		sum, err := b.Run(context.Background(), "b")
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if len(dlv.calls) != 3 {
			t.Fatalf("expected 3 attempts, got %d", len(dlv.calls))
		}
		w := store.writes[0].Value
		if !strings.Contains(w, "0/1 Sent") || !strings.Contains(w, "919876543210: blocked") {
			t.Fatalf("expected partial write naming the failed number, got %q", w)
		}
		if sum.Failed != 1 || sum.Sent != 0 {
			t.Fatalf("unexpected summary: %+v", sum)
		}
	})
}

func TestBulk_RetriesWithFixedDelayThenSucceeds(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []model.Row{
		{Index: 2, Phone: "9876543210", Message: "offer", Run: "yes"},
	}}
	dlv := &fakeDeliverer{fail: func(call int) error {
		if call < 3 {
			return errors.New("flaky")
		}
		return nil
	}}
	b, rec := testBulk(store, dlv, Options{MaxRetries: 3, RetryDelay: 700 * time.Millisecond})

	sum, err := b.Run(context.Background(), "b")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(dlv.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(dlv.calls))
	}
	if sum.Sent != 1 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	// Two inter-retry delays, no pacing after the single number/row.
	if len(rec.slept) != 2 || rec.slept[0] != 700*time.Millisecond || rec.slept[1] != 700*time.Millisecond {
		t.Fatalf("expected two inter-retry delays, got %v", rec.slept)
	}
}

func TestBulk_MixedOutcomePartialStatus(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []model.Row{
		{Index: 2, Phone: "9876543210, 9876543211", Message: "offer", Run: "yes"},
	}}
	// First number succeeds, all attempts on the second fail.
	dlv := &fakeDeliverer{fail: func(call int) error {
		if call == 1 {
			return nil
		}
		return errors.New("unreachable")
	}}
	b, _ := testBulk(store, dlv, Options{MaxRetries: 2})

	sum, err := b.Run(context.Background(), "b")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if sum.Sent != 1 || sum.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	w := store.writes[0].Value
	if !strings.Contains(w, "1/2 Sent") || !strings.Contains(w, "919876543211: unreachable") {
		t.Fatalf("unexpected partial write: %q", w)
	}
}

func TestBulk_EligibilityGates(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rows: []model.Row{
		{Index: 2, Phone: "9876543210", Message: "x", Run: "yes", Status: "✅ Sent to 1 numbers at 01/01/2026 10:00:00"},
		{Index: 3, Phone: "9876543210", Message: "x", Run: "no"},
		{Index: 4, Phone: "", Message: "x", Run: "yes"},
		{Index: 5, Phone: "12345, 678", Message: "x", Run: "yes"},
	}}
	dlv := &fakeDeliverer{}
	b, _ := testBulk(store, dlv, Options{MaxRetries: 3})

	sum, err := b.Run(context.Background(), "b")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(dlv.calls) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(dlv.calls))
	}
	if sum.Skipped != 2 || sum.Failed != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	var values []string
	for _, w := range store.writes {
		values = append(values, w.Value)
	}
	joined := strings.Join(values, "|")
	if !strings.Contains(joined, "Missing required fields") || !strings.Contains(joined, "No valid phone numbers") {
		t.Fatalf("unexpected writes: %v", values)
	}
}

func TestBulk_FetchErrorAbortsPass(t *testing.T) {
	t.Parallel()

	store := &fakeStore{rowsErr: errors.New("sheet unreachable")}
	b, _ := testBulk(store, &fakeDeliverer{}, Options{})

	if _, err := b.Run(context.Background(), "b"); err == nil {
		t.Fatalf("expected batch-level error")
	}
}

func TestBulk_NoTimeGate(t *testing.T) {
	t.Parallel()

	// Bulk rows dispatch immediately even with a future-looking time cell.
	store := &fakeStore{rows: []model.Row{
		{Index: 2, Phone: "9876543210", Message: "x", Run: "yes", Time: "2030-01-01 00:00"},
	}}
	dlv := &fakeDeliverer{}
	b, _ := testBulk(store, dlv, Options{MaxRetries: 3})

	sum, err := b.Run(context.Background(), "b")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if sum.Sent != 1 {
		t.Fatalf("expected dispatch regardless of time cell, got %+v", sum)
	}
}
