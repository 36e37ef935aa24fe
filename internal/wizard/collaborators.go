package wizard

import (
	"context"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
)

// CreateJobRequest is everything needed to create one job.
type CreateJobRequest struct {
	ID             string
	Config         analytics.Config
	CreateDataView bool
	TimeFieldName  string
}

// JobError is a per-job failure reported in an otherwise successful
// creation response.
type JobError struct {
	ID      string
	Message string
}

// CreateJobResult is the outcome of a creation request that reached the
// server.
type CreateJobResult struct {
	Created []string
	Errors  []JobError
}

// StartJobResult is the server's answer to a start request.
type StartJobResult struct {
	Acknowledged bool
	Node         string
}

// DataView is an existing data view.
type DataView struct {
	ID    string
	Title string
}

// JobService creates and starts jobs.
type JobService interface {
	CreateJob(ctx context.Context, req CreateJobRequest) (*CreateJobResult, error)
	StartJob(ctx context.Context, id string) (*StartJobResult, error)
}

// DataViewCatalog lists existing data views through a cache.
type DataViewCatalog interface {
	InvalidateCache(ctx context.Context) error
	RefreshCache(ctx context.Context) error
	List(ctx context.Context) ([]DataView, error)
}

// ListRefresher is told when the job list has changed. It must not block.
type ListRefresher interface {
	RefreshJobList()
}

// MemoryEstimator estimates the model memory a job config needs.
type MemoryEstimator interface {
	EstimateMemory(ctx context.Context, cfg analytics.Config) (string, error)
}
