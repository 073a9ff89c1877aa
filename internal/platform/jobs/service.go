package jobs

import (
	"context"
	"log/slog"
	"time"
)

const JobReportRetention = "report_retention"

// Pruner removes generated artifacts older than a cutoff.
type Pruner interface {
	Prune(cutoff time.Time) (int, error)
}

type Service struct {
	Reports   Pruner
	Retention time.Duration
	Interval  time.Duration
	Now       func() time.Time
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (map[string]any, error)
}

func New(reports Pruner, retention, interval time.Duration) *Service {
	return &Service{
		Reports:   reports,
		Retention: retention,
		Interval:  interval,
		Now:       time.Now,
		queue:     make(chan job, 16),
	}
}

// Start runs the worker and, when retention is enabled, the pruning schedule.
// Both stop when ctx ends.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Retention > 0 && s.Interval > 0 && s.Reports != nil {
		go s.scheduleRetention(ctx, s.Interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (map[string]any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

// RunNow executes a job on the calling goroutine, bypassing the queue.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (map[string]any, error)) (map[string]any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// PruneReports deletes report files older than the retention window.
func (s *Service) PruneReports(context.Context) (map[string]any, error) {
	cutoff := s.Now().Add(-s.Retention)
	deleted, err := s.Reports.Prune(cutoff)
	return map[string]any{"cutoff": cutoff, "deleted": deleted}, err
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (map[string]any, error) {
	start := s.Now()
	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	slog.Info("job run", "jobType", j.Type, "status", status, "details", details, "durationMs", s.Now().Sub(start).Milliseconds())
	return details, err
}

func (s *Service) scheduleRetention(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobReportRetention, s.PruneReports)
		}
	}
}
