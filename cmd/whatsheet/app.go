package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/whatsheet/whatsheet/internal/cache"
	"github.com/whatsheet/whatsheet/internal/client"
	"github.com/whatsheet/whatsheet/internal/config"
	"github.com/whatsheet/whatsheet/internal/model"
	"github.com/whatsheet/whatsheet/internal/phone"
	"github.com/whatsheet/whatsheet/internal/processor"
	"github.com/whatsheet/whatsheet/internal/rate"
	"github.com/whatsheet/whatsheet/internal/scheduler"
	"github.com/whatsheet/whatsheet/internal/sheet"
)

// app ties the sheet store, the delivery channel and the two processors
// together and implements api.Runner.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	channel *client.WhatsAppClient
	queue   *processor.Queue
	bulk    *processor.Bulk
	sched   *scheduler.Scheduler
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := sheet.NewGoogleStore(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("init sheet store: %w", err)
	}

	channel := client.NewWhatsAppClient(cfg.Gateway.URL, cfg.Gateway.Timeout, logger)

	gov := rate.NewGovernor(rate.Delays{
		Night:  cfg.Rate.Night,
		Normal: cfg.Rate.Normal,
		Peak:   cfg.Rate.Peak,
	})

	strict := phone.LengthOnly
	if cfg.Processing.StrictPhone {
		strict = phone.StrictIndian
	}

	queue := processor.NewQueue(store, channel, gov, processor.Options{
		MaxRetries:   cfg.Processing.MaxRetries,
		RetryDelay:   cfg.Processing.RetryDelay,
		StatusColumn: cfg.Sheets.QueueStatusColumn,
		Strictness:   strict,
		Operator:     cfg.Operator.HandledBy,
		Timezone:     cfg.Operator.Timezone,
	}, logger)

	bulk := processor.NewBulk(store, channel, gov, processor.Options{
		MaxRetries:   cfg.Processing.MaxRetries,
		RetryDelay:   cfg.Processing.RetryDelay,
		StatusColumn: cfg.Sheets.BulkStatusColumn,
		Strictness:   strict,
	}, logger)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sentCache := cache.NewRedisCache(rdb, cfg.Redis.TTL)
		queue.WithCache(sentCache)
		bulk.WithCache(sentCache)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		channel: channel,
		queue:   queue,
		bulk:    bulk,
	}

	a.sched, err = scheduler.New(cfg.Autorun.Interval, a.autorunTick, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// RunBulk runs one bulk pass after checking channel readiness.
func (a *app) RunBulk(ctx context.Context) (model.PassSummary, error) {
	if err := a.channel.Ready(ctx); err != nil {
		return model.PassSummary{}, err
	}
	return a.bulk.Run(ctx, a.cfg.Sheets.BulkSheet)
}

// RunQueue runs one queue pass after checking channel readiness.
func (a *app) RunQueue(ctx context.Context, includeScheduled bool) (model.PassSummary, error) {
	if err := a.channel.Ready(ctx); err != nil {
		return model.PassSummary{}, err
	}
	return a.queue.Run(ctx, a.cfg.Sheets.QueueSheet, includeScheduled)
}

// autorunTick is the unattended equivalent of the "send message queue"
// menu action: immediate rows first, then due scheduled rows.
func (a *app) autorunTick(ctx context.Context) {
	if err := a.channel.Ready(ctx); err != nil {
		a.logger.Warn("autorun skipped, channel not ready", "error", err)
		return
	}
	for _, includeScheduled := range []bool{false, true} {
		sum, err := a.queue.Run(ctx, a.cfg.Sheets.QueueSheet, includeScheduled)
		if err != nil {
			a.logger.Error("autorun queue pass failed",
				"scheduled", includeScheduled, "error", err)
			return
		}
		a.logger.Info("autorun queue pass done",
			"scheduled", includeScheduled,
			"sent", sum.Sent, "failed", sum.Failed, "skipped", sum.Skipped)
	}
}
