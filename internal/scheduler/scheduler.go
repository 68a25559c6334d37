// Package scheduler drives periodic ranking runs and answers bot commands.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/notifier"
	"github.com/yorkjong/vistock-sub000/internal/ranking"
	"github.com/yorkjong/vistock-sub000/internal/recorder"
)

// Scheduler manages the cron-driven ranking task.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *ranking.Engine
	Recorder recorder.Recorder
	Notifier *notifier.TelegramNotifier

	Symbols []string
	Formula string // ibd | mansfield | financial
	Params  ranking.Params
	TopN    int

	Ctx context.Context
	log *zap.Logger

	mu            sync.Mutex
	lastTable     *model.RankingTable
	lastFinancial *model.FinancialTable
}

// NewScheduler creates a new Scheduler. notifier may be nil when Telegram
// is not configured; runs then only log and record.
func NewScheduler(ctx context.Context, engine *ranking.Engine, rec recorder.Recorder, tn *notifier.TelegramNotifier,
	symbols []string, formula string, params ranking.Params, topN int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Engine:   engine,
		Recorder: rec,
		Notifier: tn,
		Symbols:  symbols,
		Formula:  formula,
		Params:   params,
		TopN:     topN,
		Ctx:      ctx,
		log:      logger,
	}
}

// Register registers the ranking task on the given cron spec.
func (s *Scheduler) Register(rankingCron string) error {
	if _, err := s.Cron.AddFunc(rankingCron, s.rankingTask); err != nil {
		return fmt.Errorf("register ranking task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info("scheduler stopped")
}

// RunNow executes the ranking task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.rankingTask()
}

func (s *Scheduler) rankingTask() {
	s.log.Info("running ranking task",
		zap.String("formula", s.Formula),
		zap.Int("symbols", len(s.Symbols)))
	if s.Formula == "financial" {
		s.runFinancial()
		return
	}
	s.runPrice()
}

func (s *Scheduler) runPrice() {
	var table *model.RankingTable
	var err error
	switch s.Formula {
	case "mansfield":
		table, err = s.Engine.RankMansfield(s.Ctx, s.Symbols, s.Params)
	default:
		table, err = s.Engine.RankIBD(s.Ctx, s.Symbols, s.Params)
	}
	if err != nil {
		s.log.Error("ranking run failed", zap.String("formula", s.Formula), zap.Error(err))
		if !errors.Is(err, ranking.ErrNotEnoughData) {
			s.trySend(notifier.FormatRunError(s.Formula, err))
		}
		return
	}

	s.mu.Lock()
	s.lastTable = table
	s.mu.Unlock()

	run := recorder.NewRankingRun(s.Formula, s.Params.Benchmark, s.Params.Interval, s.Params.RatingMethod, table)
	if err := s.Recorder.RecordRanking(run); err != nil {
		s.log.Error("record ranking run", zap.Error(err))
	}
	s.trySend(notifier.FormatRankingReport(table, s.Formula, s.TopN))
}

func (s *Scheduler) runFinancial() {
	table, err := s.Engine.RankFinancial(s.Ctx, s.Symbols, s.Params)
	if err != nil {
		s.log.Error("financial ranking run failed", zap.Error(err))
		if !errors.Is(err, ranking.ErrNotEnoughData) {
			s.trySend(notifier.FormatRunError(s.Formula, err))
		}
		return
	}

	s.mu.Lock()
	s.lastFinancial = table
	s.mu.Unlock()

	run := recorder.NewFinancialRun(s.Params.RatingMethod, table)
	if err := s.Recorder.RecordFinancial(run); err != nil {
		s.log.Error("record financial run", zap.Error(err))
	}
	s.trySend(notifier.FormatFinancialReport(table, s.TopN))
}

// HandleCommand processes a user command and returns a reply. An empty
// reply means the command produced its own notification.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/rank":
		go s.rankingTask()
		return "Ranking run started."
	case "/top":
		s.mu.Lock()
		table, fin := s.lastTable, s.lastFinancial
		s.mu.Unlock()
		if s.Formula == "financial" {
			if fin == nil {
				return "No ranking yet. Use /rank first."
			}
			return notifier.FormatFinancialReport(fin, s.TopN)
		}
		if table == nil {
			return "No ranking yet. Use /rank first."
		}
		return notifier.FormatRankingReport(table, s.Formula, s.TopN)
	case "/help":
		fallthrough
	default:
		return "Commands:\n• /rank - run the ranking now\n• /top - show the latest ranking\n• /help - this message"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error("send notification", zap.Error(err))
	}
}
