package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/persistence"
)

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// Save upserts an execution row.
func (r *ExecutionRepository) Save(ctx context.Context, execution *models.Execution) error {
	contextJSON, err := json.Marshal(execution.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal execution context: %w", err)
	}

	actionsJSON, err := json.Marshal(execution.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal execution actions: %w", err)
	}

	query := `
		INSERT INTO executions (
			id, workflow_id, trigger_kind, context, actions,
			current_action_index, status, error_message, failed_action_index,
			started_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			context = EXCLUDED.context
		  , current_action_index = EXCLUDED.current_action_index
		  , status = EXCLUDED.status
		  , error_message = EXCLUDED.error_message
		  , failed_action_index = EXCLUDED.failed_action_index
		  , completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID, execution.WorkflowID, string(execution.Trigger),
		contextJSON, actionsJSON, execution.CurrentActionIndex,
		string(execution.Status), nullString(execution.ErrorMessage),
		execution.FailedActionIndex, execution.StartedAt, execution.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `
		SELECT
			id
		  , workflow_id
		  , trigger_kind
		  , context
		  , actions
		  , current_action_index
		  , status
		  , error_message
		  , failed_action_index
		  , started_at
		  , completed_at
		FROM executions
		WHERE id = $1
	`

	var (
		execution    models.Execution
		trigger      string
		status       string
		contextJSON  []byte
		actionsJSON  []byte
		errorMessage sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&execution.ID,
		&execution.WorkflowID,
		&trigger,
		&contextJSON,
		&actionsJSON,
		&execution.CurrentActionIndex,
		&status,
		&errorMessage,
		&execution.FailedActionIndex,
		&execution.StartedAt,
		&execution.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	execution.Trigger = models.TriggerKind(trigger)
	execution.Status = models.ExecutionStatus(status)
	execution.ErrorMessage = errorMessage.String

	err = json.Unmarshal(contextJSON, &execution.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution context: %w", err)
	}

	err = json.Unmarshal(actionsJSON, &execution.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution actions: %w", err)
	}

	return &execution, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
