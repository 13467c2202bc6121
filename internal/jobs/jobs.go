// Package jobs runs periodic housekeeping on a gocron scheduler
package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/gysagsohn/game-tracker-server/internal/metrics"
)

// Job is a named task run at a fixed interval
type Job struct {
	Name     string
	Interval time.Duration
	Run      func() int
}

// HubCleaner removes notification hubs without listeners
type HubCleaner interface {
	CleanupEmptyHubs() int
}

// Pruner forgets idle rate-limit clients
type Pruner interface {
	Prune(idle time.Duration) int
}

// CounterPruner drops expired counters from in-process storage
type CounterPruner interface {
	PruneCounters() int
}

// Config sets how often each housekeeping job runs
type Config struct {
	HubCleanupInterval time.Duration
	LimiterPruneEvery  time.Duration
	LimiterIdle        time.Duration
	CounterPruneEvery  time.Duration
}

// DefaultConfig returns the production schedule
func DefaultConfig() Config {
	return Config{
		HubCleanupInterval: 5 * time.Minute,
		LimiterPruneEvery:  10 * time.Minute,
		LimiterIdle:        10 * time.Minute,
		CounterPruneEvery:  10 * time.Minute,
	}
}

// Housekeeping builds the job list. Nil dependencies are skipped, so a
// Redis-backed deployment has no counter pruning.
func Housekeeping(cfg Config, hubs HubCleaner, limiter Pruner, counters CounterPruner) []Job {
	var jobs []Job
	if hubs != nil {
		jobs = append(jobs, Job{Name: "sse_hub_cleanup", Interval: cfg.HubCleanupInterval, Run: hubs.CleanupEmptyHubs})
	}
	if limiter != nil {
		jobs = append(jobs, Job{Name: "rate_limiter_prune", Interval: cfg.LimiterPruneEvery, Run: func() int {
			return limiter.Prune(cfg.LimiterIdle)
		}})
	}
	if counters != nil {
		jobs = append(jobs, Job{Name: "counter_prune", Interval: cfg.CounterPruneEvery, Run: counters.PruneCounters})
	}
	return jobs
}

// Scheduler runs jobs in the background
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler registers jobs on a new gocron scheduler. Each job runs
// as a singleton: a slow run delays the next instead of overlapping it.
func NewScheduler(jobs []Job, logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{scheduler: sched, logger: logger.With(slog.String("component", "jobs"))}
	for _, job := range jobs {
		if job.Interval <= 0 {
			continue
		}
		_, err := sched.NewJob(
			gocron.DurationJob(job.Interval),
			gocron.NewTask(s.run, job),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("register job %s: %w", job.Name, err)
		}
	}
	return s, nil
}

// Start begins running jobs
func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("background jobs started", slog.Int("jobs", len(s.scheduler.Jobs())))
}

// Shutdown stops the scheduler and waits for running jobs
func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	n := job.Run()
	metrics.RecordJobRun(job.Name)
	s.logger.Debug("job finished",
		slog.String("job", job.Name),
		slog.Int("affected", n),
		slog.Duration("duration", time.Since(start)),
	)
}
