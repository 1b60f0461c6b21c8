package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"marketpipe/internal/model"
	"marketpipe/internal/pipeline"
)

// Scheduler runs the pipeline on a cron schedule for unattended operation.
type Scheduler struct {
	cron       *cron.Cron
	pipe       *pipeline.Pipeline
	logger     *slog.Logger
	fetchNews  bool
	newsAPIKey string
}

// New creates a Scheduler. The news settings apply to every scheduled run.
func New(pipe *pipeline.Pipeline, logger *slog.Logger, fetchNews bool, newsAPIKey string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		pipe:       pipe,
		logger:     logger,
		fetchNews:  fetchNews,
		newsAPIKey: newsAPIKey,
	}
}

// Register adds the daily pipeline run at the given cron expression.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.cron.AddFunc(dailyCron, s.runTask); err != nil {
		return fmt.Errorf("register daily run: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runTask() {
	s.logger.Info("running scheduled pipeline")
	summary := s.pipe.Run(s.fetchNews, s.newsAPIKey)
	if summary.Status == model.StatusFailed {
		s.logger.Error("scheduled run failed", "run_id", summary.RunID, "error", summary.ErrorMessage)
	}
}
