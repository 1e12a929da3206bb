package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coverly/automation/pkg/eventbus"
	"github.com/coverly/automation/pkg/events"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/persistence"
)

// DefaultPollInterval is how often the scheduler scans for due jobs.
const DefaultPollInterval = time.Minute

// Scheduler is the poller that resumes paused executions. Each tick it
// claims due jobs one at a time and runs their remaining actions through the
// shared executor. A resumed failure is retried by putting the job back to
// pending until its attempts are exhausted; only then do the job and its
// execution fail.
type Scheduler struct {
	persistence persistence.Persistence
	executor    *Executor
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	interval    time.Duration
	now         func() time.Time
}

func NewScheduler(p persistence.Persistence, executor *Executor, publisher eventbus.EventPublisher, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Scheduler{
		persistence: p,
		executor:    executor,
		publisher:   publisher,
		logger:      logger.With("module", "job_scheduler"),
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start ticks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduler stopped")

			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick processes every job due at this instant. Job failures are isolated:
// one bad job never stops the rest of the batch.
func (s *Scheduler) Tick(ctx context.Context) {
	due, err := s.persistence.JobRepository().DueJobs(ctx, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list due jobs", "error", err)

		return
	}

	for _, job := range due {
		err := s.processJob(ctx, job.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to process job", "job_id", job.ID, "error", err)
		}
	}
}

// processJob claims the job and resumes its execution from the job's base
// index with the persisted context.
func (s *Scheduler) processJob(ctx context.Context, jobID string) error {
	job, err := s.persistence.JobRepository().Claim(ctx, jobID)
	if err != nil {
		if errors.Is(err, persistence.ErrJobNotClaimable) {
			// Another poller won the race.
			return nil
		}

		return fmt.Errorf("failed to claim job: %w", err)
	}

	logger := s.logger.With("job_id", job.ID, "execution_id", job.ExecutionID, "attempt", job.Attempts)

	execution, err := s.persistence.ExecutionRepository().GetByID(ctx, job.ExecutionID)
	if err != nil {
		s.release(ctx, logger, job, err)

		return fmt.Errorf("failed to load execution %s: %w", job.ExecutionID, err)
	}

	// The job carries the authoritative context for the continuation.
	execution.Context = job.Context

	logger.InfoContext(ctx, "resuming execution", "base_index", job.BaseIndex,
		"remaining_actions", len(job.RemainingActions))

	outcome := s.executor.RunFrom(ctx, execution, job.RemainingActions, job.BaseIndex)

	err = s.applyOutcome(ctx, logger, job, execution, outcome)
	if err != nil {
		s.release(ctx, logger, job, err)

		return err
	}

	return nil
}

// release returns a claimed job to the queue after a failure that prevented
// its outcome from being persisted, so the job cannot be stranded in
// processing. The claim already spent an attempt; an exhausted job fails
// instead of going back to pending. Re-delivery may repeat actions, which is
// within the at-least-once contract.
func (s *Scheduler) release(ctx context.Context, logger *slog.Logger, job *models.Job, cause error) {
	job.LastError = cause.Error()

	if job.Exhausted() {
		job.Status = models.JobStatusFailed
	} else {
		job.Status = models.JobStatusPending
	}

	err := s.persistence.JobRepository().Save(ctx, job)
	if err != nil {
		logger.ErrorContext(ctx, "failed to release claimed job",
			"status", job.Status, "error", err)
	}
}

func (s *Scheduler) applyOutcome(ctx context.Context, logger *slog.Logger, job *models.Job, execution *models.Execution, outcome Outcome) error {
	switch outcome.Status {
	case OutcomeCompleted:
		job.Status = models.JobStatusCompleted
		execution.MarkCompleted()

		err := s.saveBoth(ctx, job, execution)
		if err != nil {
			return err
		}

		s.publish(ctx, execution.ID, &events.ExecutionCompleted{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent),
			ExecutionID: execution.ID,
			WorkflowID:  execution.WorkflowID,
		})

	case OutcomePaused:
		// Another wait: this job's work is done, the chain continues in a
		// new job with a fresh retry budget.
		job.Status = models.JobStatusCompleted

		err := s.saveBoth(ctx, job, execution)
		if err != nil {
			return err
		}

		err = s.persistence.JobRepository().Save(ctx, outcome.Job)
		if err != nil {
			return fmt.Errorf("failed to save chained job: %w", err)
		}

		s.publish(ctx, execution.ID, &events.JobScheduled{
			BaseEvent:    events.NewBaseEvent(events.JobScheduledEvent),
			JobID:        outcome.Job.ID,
			ExecutionID:  execution.ID,
			ScheduledFor: outcome.Job.ScheduledFor,
		})

	case OutcomeFailed:
		return s.applyFailure(ctx, logger, job, execution, outcome)
	}

	return nil
}

// applyFailure spends one attempt. Below the budget the job returns to
// pending and the execution stays running; at the budget both fail.
func (s *Scheduler) applyFailure(ctx context.Context, logger *slog.Logger, job *models.Job, execution *models.Execution, outcome Outcome) error {
	job.LastError = outcome.Err.Error()

	if !job.Exhausted() {
		job.Status = models.JobStatusPending

		logger.WarnContext(ctx, "resumed action failed, will retry",
			"action_index", outcome.FailedIndex,
			"attempts", job.Attempts,
			"max_attempts", job.MaxAttempts,
			"error", outcome.Err)

		err := s.persistence.JobRepository().Save(ctx, job)
		if err != nil {
			return fmt.Errorf("failed to save retried job: %w", err)
		}

		return nil
	}

	job.Status = models.JobStatusFailed
	execution.MarkFailed(outcome.FailedIndex, outcome.Err.Error())

	logger.ErrorContext(ctx, "job exhausted retry budget",
		"action_index", outcome.FailedIndex, "error", outcome.Err)

	err := s.saveBoth(ctx, job, execution)
	if err != nil {
		return err
	}

	s.publish(ctx, execution.ID, &events.ExecutionFailed{
		BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent),
		ExecutionID: execution.ID,
		WorkflowID:  execution.WorkflowID,
		ActionIndex: outcome.FailedIndex,
		Error:       outcome.Err.Error(),
	})

	return nil
}

// saveBoth persists the job and the execution.
func (s *Scheduler) saveBoth(ctx context.Context, job *models.Job, execution *models.Execution) error {
	err := s.persistence.JobRepository().Save(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	err = s.persistence.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	return nil
}

func (s *Scheduler) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.Publish(ctx, key, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}
