// Package flush owns the process-wide dirty flag and the deferred
// flush scheduler that batches all durable mutations into a single
// periodic persist call.
package flush

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultInterval is how often the scheduler runs a tick.
const DefaultInterval = 15 * time.Second

// DefaultPersistTimeout bounds a single persist call so a stalled
// store cannot wedge the scheduler.
const DefaultPersistTimeout = 10 * time.Second

// Flag marks that unflushed durable mutations exist. It is shared by
// every service that mutates durable state and consumed by the
// scheduler.
type Flag struct {
	dirty atomic.Bool
}

// NewFlag creates a clean flag
func NewFlag() *Flag {
	return &Flag{}
}

// MarkDirty records that durable state changed
func (f *Flag) MarkDirty() {
	f.dirty.Store(true)
}

// Dirty reports whether unflushed mutations exist
func (f *Flag) Dirty() bool {
	return f.dirty.Load()
}

func (f *Flag) clear() bool {
	return f.dirty.Swap(false)
}

// Accumulator is the per-tick pass run before each flush decision.
type Accumulator interface {
	Accumulate(ctx context.Context)
}

// Persister flushes buffered state to durable media.
type Persister interface {
	Persist(ctx context.Context) error
}

// Config holds the scheduler configuration
type Config struct {
	Interval       time.Duration
	PersistTimeout time.Duration
}

// Scheduler drives the accumulate-then-persist cycle from a single
// loop, so the flush timer never races the accumulation pass.
type Scheduler struct {
	flag        *Flag
	accumulator Accumulator
	persister   Persister
	cfg         Config
	logger      *slog.Logger
}

// NewScheduler creates a new flush scheduler
func NewScheduler(flag *Flag, accumulator Accumulator, persister Persister, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}
	return &Scheduler{
		flag:        flag,
		accumulator: accumulator,
		persister:   persister,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run ticks until the context is cancelled, then performs one final
// flush so a clean shutdown never loses marked state.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Tick(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one accumulation pass and, if the flag is set, a single
// persist call. A persist failure re-marks the flag and is retried on
// the next tick; it is never fatal.
func (s *Scheduler) Tick(ctx context.Context) {
	s.accumulator.Accumulate(ctx)
	if !s.flag.clear() {
		return
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()
	if err := s.persister.Persist(pctx); err != nil {
		s.flag.MarkDirty()
		s.logger.Error("persist failed, will retry next tick", "error", err)
		return
	}
	s.logger.Debug("persisted durable state")
}
