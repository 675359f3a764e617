// Package scheduler owns the cron clock. It decides when things run; the
// engine decides what happens.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"CryptoSentry/internal/engine"
	"CryptoSentry/internal/notifier"
)

// Scheduler wires the engine's jobs onto cron expressions.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *engine.Engine
	Notifier notifier.Notifier
	Ctx      context.Context
	logger   zerolog.Logger
}

func NewScheduler(ctx context.Context, eng *engine.Engine, notif notifier.Notifier, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   eng,
		Notifier: notif,
		Ctx:      ctx,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the analysis tick, the evening report and the
// midnight reset. The reset runs before any analysis tick of the new day, so
// the ledger and the profit accumulator always start the day together.
func (s *Scheduler) RegisterAll(analysisCron, dailyReportCron, midnightCron string) error {
	if _, err := s.Cron.AddFunc(analysisCron, s.analysisTick); err != nil {
		return fmt.Errorf("register analysis tick: %w", err)
	}
	if _, err := s.Cron.AddFunc(dailyReportCron, s.dailyReport); err != nil {
		return fmt.Errorf("register daily report: %w", err)
	}
	if _, err := s.Cron.AddFunc(midnightCron, s.midnightReset); err != nil {
		return fmt.Errorf("register midnight reset: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.logger.Info().Msg("scheduler stopped")
}

// RunCycleNow executes one analysis cycle immediately (manual trigger or
// RUN_ON_START).
func (s *Scheduler) RunCycleNow() {
	s.analysisTick()
}

func (s *Scheduler) analysisTick() {
	if s.Ctx.Err() != nil {
		return
	}
	s.Engine.RunCycle(s.Ctx)
}

func (s *Scheduler) dailyReport() {
	s.logger.Info().Msg("running daily report")
	s.trySend(s.Engine.DailyReport())
}

func (s *Scheduler) midnightReset() {
	s.Engine.ResetDaily()
}

// HandleCommand processes a Telegram command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status", "/daily", "/analyze", "/stop":
		return s.Engine.HandleCommand(command)
	default:
		return "commands:\n• /status\n• /daily\n• /analyze\n• /stop"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
