package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/whatsheet/whatsheet/internal/client"
	"github.com/whatsheet/whatsheet/internal/model"
	"github.com/whatsheet/whatsheet/internal/scheduler"
)

// Runner triggers the operator-invoked passes over the configured sheets.
type Runner interface {
	RunBulk(ctx context.Context) (model.PassSummary, error)
	RunQueue(ctx context.Context, includeScheduled bool) (model.PassSummary, error)
}

// ChannelProber reports the delivery channel's session state.
type ChannelProber interface {
	Status(ctx context.Context) (client.ChannelStatus, error)
}

type Handler struct {
	sched   *scheduler.Scheduler
	runner  Runner
	channel ChannelProber
}

func NewHandler(s *scheduler.Scheduler, r Runner, c ChannelProber) *Handler {
	return &Handler{sched: s, runner: r, channel: c}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) AutorunStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running":  h.sched.IsRunning(),
		"lastTick": h.sched.LastTick(),
	})
}

func (h *Handler) AutorunStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) AutorunStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) RunBulkPass(w http.ResponseWriter, r *http.Request) {
	sum, err := h.runner.RunBulk(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, summaryJSON(sum))
}

func (h *Handler) RunQueuePass(w http.ResponseWriter, r *http.Request) {
	immediate, err := h.runner.RunQueue(r.Context(), false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	scheduled, err := h.runner.RunQueue(r.Context(), true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"immediate": summaryJSON(immediate),
		"scheduled": summaryJSON(scheduled),
	})
}

func (h *Handler) ChannelStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.channel.Status(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"connected": st.Connected,
		"phone":     st.Phone,
		"state":     st.State,
	})
}

func summaryJSON(s model.PassSummary) map[string]any {
	return map[string]any{
		"sent":    s.Sent,
		"failed":  s.Failed,
		"skipped": s.Skipped,
		"total":   s.Total,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
