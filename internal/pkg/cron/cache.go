package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Evictor drops expired payslip cache entries and reports how many went.
type Evictor interface {
	EvictExpired() int
}

// Pinger checks a remote cache is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheJobs keeps the payslip cache healthy. Either field may be nil.
type CacheJobs struct {
	evictor  Evictor
	pinger   Pinger
	interval time.Duration
	logger   *slog.Logger
}

func NewCacheJobs(evictor Evictor, pinger Pinger, interval time.Duration, logger *slog.Logger) *CacheJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheJobs{
		evictor:  evictor,
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

func (j *CacheJobs) RegisterJobs(scheduler *Scheduler) {
	if j.evictor != nil {
		scheduler.AddJob("evict_expired_payslips", j.interval, j.EvictExpiredPayslips)
	}
	if j.pinger != nil {
		scheduler.AddJob("check_payslip_cache", j.interval, j.CheckPayslipCache)
	}
}

func (j *CacheJobs) EvictExpiredPayslips(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := j.evictor.EvictExpired(); n > 0 {
		j.logger.Info("Cron: Evicted expired payslips", "count", n)
	}
	return nil
}

// CheckPayslipCache only reports; a down cache degrades to recomputation.
func (j *CacheJobs) CheckPayslipCache(ctx context.Context) error {
	if err := j.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("payslip cache unreachable: %w", err)
	}
	return nil
}
