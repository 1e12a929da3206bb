package file

import (
	"context"
	"path/filepath"

	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/persistence"
)

// ExecutionRepository stores one JSON document per execution under
// <root>/executions.
type ExecutionRepository struct {
	dir string
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{dir: filepath.Join(root, "executions")}
}

func (er *ExecutionRepository) Save(_ context.Context, execution *models.Execution) error {
	return writeJSON(er.dir, execution.ID, execution)
}

func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	var execution models.Execution

	err := readJSON(er.dir, id, &execution, persistence.ErrExecutionNotFound)
	if err != nil {
		return nil, err
	}

	return &execution, nil
}
