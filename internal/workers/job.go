package workers

import (
	"context"

	"blsearch/internal/domain/models"
)

type Job struct {
	Description JobDescriptor
	ExecFn      ExecutionFn
	Args        models.Record
}

type ExecutionFn func(ctx context.Context, rec models.Record) (*models.RetrievalAttempt, error)

type JobID string
type jobType string
type jobMetadata map[string]string

type JobDescriptor struct {
	ID       JobID
	JobType  jobType
	Metadata jobMetadata
}

func NewDescriptor(id string, kind string) JobDescriptor {
	return JobDescriptor{
		ID:       JobID(id),
		JobType:  jobType(kind),
		Metadata: jobMetadata{},
	}
}

type Result struct {
	Attempt     *models.RetrievalAttempt
	Err         error
	Description JobDescriptor
}

func (j Job) execute(ctx context.Context) Result {
	attempt, err := j.ExecFn(ctx, j.Args)
	if err != nil {
		return Result{
			Err:         err,
			Description: j.Description,
		}
	}

	return Result{
		Attempt:     attempt,
		Description: j.Description,
	}
}
