package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/persistence"
)

// JobRepository stores one JSON document per job under <root>/jobs. All
// mutations run under one mutex so the pending-to-processing claim step is
// atomic within the process.
type JobRepository struct {
	dir string
	mu  *sync.Mutex
}

func NewJobRepository(root string, mu *sync.Mutex) *JobRepository {
	return &JobRepository{dir: filepath.Join(root, "jobs"), mu: mu}
}

func (jr *JobRepository) Save(_ context.Context, job *models.Job) error {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	job.UpdatedAt = time.Now().UTC()

	return writeJSON(jr.dir, job.ID, job)
}

func (jr *JobRepository) GetByID(_ context.Context, id string) (*models.Job, error) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	return jr.read(id)
}

func (jr *JobRepository) DueJobs(_ context.Context, before time.Time) ([]*models.Job, error) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	ids, err := listIDs(jr.dir)
	if err != nil {
		return nil, err
	}

	due := make([]*models.Job, 0)

	for _, id := range ids {
		job, err := jr.read(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load job %s: %w", id, err)
		}

		if job.IsDue(before) {
			due = append(due, job)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledFor.Before(due[j].ScheduledFor)
	})

	return due, nil
}

func (jr *JobRepository) Claim(_ context.Context, id string) (*models.Job, error) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	job, err := jr.read(id)
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobStatusPending {
		return nil, persistence.ErrJobNotClaimable
	}

	job.Status = models.JobStatusProcessing
	job.Attempts++
	job.UpdatedAt = time.Now().UTC()

	err = writeJSON(jr.dir, job.ID, job)
	if err != nil {
		return nil, err
	}

	return job, nil
}

func (jr *JobRepository) read(id string) (*models.Job, error) {
	var job models.Job

	err := readJSON(jr.dir, id, &job, persistence.ErrJobNotFound)
	if err != nil {
		return nil, err
	}

	return &job, nil
}
