package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/persistence"
)

// JobRepository handles job-related database operations.
type JobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *sql.DB, logger *slog.Logger) *JobRepository {
	return &JobRepository{db: db, logger: logger}
}

const jobColumns = `
	id
  , execution_id
  , workflow_id
  , remaining_actions
  , base_index
  , context
  , scheduled_for
  , status
  , attempts
  , max_attempts
  , last_error
  , created_at
  , updated_at
`

// Save upserts a job row.
func (r *JobRepository) Save(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()

	remainingJSON, err := json.Marshal(job.RemainingActions)
	if err != nil {
		return fmt.Errorf("failed to marshal remaining actions: %w", err)
	}

	contextJSON, err := json.Marshal(job.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal job context: %w", err)
	}

	query := `
		INSERT INTO jobs (
			id, execution_id, workflow_id, remaining_actions, base_index,
			context, scheduled_for, status, attempts, max_attempts,
			last_error, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status
		  , attempts = EXCLUDED.attempts
		  , last_error = EXCLUDED.last_error
		  , scheduled_for = EXCLUDED.scheduled_for
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		job.ID, job.ExecutionID, job.WorkflowID, remainingJSON, job.BaseIndex,
		contextJSON, job.ScheduledFor, string(job.Status), job.Attempts,
		job.MaxAttempts, nullString(job.LastError), job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}

	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrJobNotFound
		}

		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	return job, nil
}

// DueJobs returns pending jobs scheduled at or before the given instant,
// oldest first. Jobs with a spent retry budget are excluded even if their
// status has not caught up yet.
func (r *JobRepository) DueJobs(ctx context.Context, before time.Time) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs
		WHERE status = 'pending' AND scheduled_for <= $1 AND attempts < max_attempts
		ORDER BY scheduled_for`

	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query due jobs: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	jobs := make([]*models.Job, 0)

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}

		jobs = append(jobs, job)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}

// Claim races a conditional pending-to-processing update so that exactly one
// poller wins each job. A successful claim also consumes one retry attempt.
func (r *JobRepository) Claim(ctx context.Context, id string) (*models.Job, error) {
	query := `
		UPDATE jobs
		SET status = 'processing', attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + jobColumns

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyClaimFailure(ctx, id)
		}

		return nil, fmt.Errorf("failed to claim job %s: %w", id, err)
	}

	return job, nil
}

// classifyClaimFailure distinguishes a missing job from one already taken.
func (r *JobRepository) classifyClaimFailure(ctx context.Context, id string) error {
	var exists bool

	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check job %s: %w", id, err)
	}

	if !exists {
		return persistence.ErrJobNotFound
	}

	return persistence.ErrJobNotClaimable
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		job           models.Job
		status        string
		remainingJSON []byte
		contextJSON   []byte
		lastError     sql.NullString
	)

	err := row.Scan(
		&job.ID,
		&job.ExecutionID,
		&job.WorkflowID,
		&remainingJSON,
		&job.BaseIndex,
		&contextJSON,
		&job.ScheduledFor,
		&status,
		&job.Attempts,
		&job.MaxAttempts,
		&lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Status = models.JobStatus(status)
	job.LastError = lastError.String

	err = json.Unmarshal(remainingJSON, &job.RemainingActions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal remaining actions: %w", err)
	}

	err = json.Unmarshal(contextJSON, &job.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal job context: %w", err)
	}

	return &job, nil
}
