package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

const analyticsPath = "/internal/ml/data_frame/analytics"

func jobPath(id string) string {
	return analyticsPath + "/" + url.PathEscape(id)
}

type createdItem struct {
	ID string `json:"id"`
}

type errorItem struct {
	ID    string          `json:"id"`
	Error json.RawMessage `json:"error"`
}

// createResponse is Kibana's answer to a create request. Job and data view
// results are reported separately.
type createResponse struct {
	JobsCreated      []createdItem `json:"dataFrameAnalyticsJobsCreated"`
	JobsErrors       []errorItem   `json:"dataFrameAnalyticsJobsErrors"`
	DataViewsCreated []createdItem `json:"dataViewsCreated"`
	DataViewsErrors  []errorItem   `json:"dataViewsErrors"`
}

// CreateJob creates a data frame analytics job and, when asked, a data view
// for its destination index. A response that reached the server is returned
// even when it reports per-job errors.
func (c *Client) CreateJob(ctx context.Context, req wizard.CreateJobRequest) (*wizard.CreateJobResult, error) {
	if req.ID == "" {
		return nil, errors.New("job id is required")
	}

	query := url.Values{}
	query.Set("createDataView", strconv.FormatBool(req.CreateDataView))
	if req.CreateDataView && req.TimeFieldName != "" {
		query.Set("timeFieldName", req.TimeFieldName)
	}

	body := req.Config
	body.ID = ""

	var resp createResponse
	if err := c.do(ctx, nethttp.MethodPut, jobPath(req.ID), query, body, &resp); err != nil {
		return nil, err
	}

	for _, dv := range resp.DataViewsErrors {
		c.logger.Warn().
			Str("job_id", req.ID).
			Str("data_view", dv.ID).
			Str("error", ExtractErrorProperties(dv.Error).Message).
			Msg("job created but its data view could not be created")
	}
	for _, dv := range resp.DataViewsCreated {
		c.logger.Info().Str("job_id", req.ID).Str("data_view", dv.ID).Msg("data view created")
	}

	result := &wizard.CreateJobResult{}
	for _, j := range resp.JobsCreated {
		result.Created = append(result.Created, j.ID)
	}
	for _, j := range resp.JobsErrors {
		result.Errors = append(result.Errors, wizard.JobError{
			ID:      j.ID,
			Message: ExtractErrorProperties(j.Error).Message,
		})
	}
	return result, nil
}

// StartJob starts a created job.
func (c *Client) StartJob(ctx context.Context, id string) (*wizard.StartJobResult, error) {
	var resp struct {
		Acknowledged bool   `json:"acknowledged"`
		Node         string `json:"node"`
	}
	if err := c.do(ctx, nethttp.MethodPost, jobPath(id)+"/_start", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &wizard.StartJobResult{Acknowledged: resp.Acknowledged, Node: resp.Node}, nil
}

type jobsResponse struct {
	Count int               `json:"count"`
	Jobs  []json.RawMessage `json:"data_frame_analytics"`
}

func decodeJobs(raw []json.RawMessage) ([]analytics.Config, error) {
	out := make([]analytics.Config, 0, len(raw))
	for _, r := range raw {
		var cfg analytics.Config
		if err := json.Unmarshal(r, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode job config: %w", err)
		}
		out = append(out, cfg.Clone())
	}
	return out, nil
}

// GetJob returns the configuration of one job. Fields the server adds that
// the config model does not know are ignored.
func (c *Client) GetJob(ctx context.Context, id string) (*analytics.Config, error) {
	var resp jobsResponse
	if err := c.do(ctx, nethttp.MethodGet, jobPath(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	jobs, err := decodeJobs(resp.Jobs)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, newResponseError(nethttp.MethodGet, jobPath(id), nethttp.StatusNotFound,
			[]byte(fmt.Sprintf(`{"message":"No known data frame analytics job with id '%s'"}`, id)))
	}
	return &jobs[0], nil
}

// ListJobs returns every data frame analytics job visible in the space.
func (c *Client) ListJobs(ctx context.Context) ([]analytics.Config, error) {
	var resp jobsResponse
	if err := c.do(ctx, nethttp.MethodGet, analyticsPath, nil, nil, &resp); err != nil {
		return nil, err
	}
	return decodeJobs(resp.Jobs)
}

// JobIDs returns the ids of every job visible in the space.
func (c *Client) JobIDs(ctx context.Context) ([]string, error) {
	jobs, err := c.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids, nil
}

// FieldSelection is one row of the explain response.
type FieldSelection struct {
	Name         string   `json:"name"`
	MappingTypes []string `json:"mapping_types"`
	IsIncluded   bool     `json:"is_included"`
	IsRequired   bool     `json:"is_required"`
	FeatureType  string   `json:"feature_type,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

// MemoryEstimation is the explain API's memory estimate.
type MemoryEstimation struct {
	ExpectedMemoryWithoutDisk string `json:"expected_memory_without_disk"`
	ExpectedMemoryWithDisk    string `json:"expected_memory_with_disk"`
}

// ExplainResult is the explain API's answer for a config.
type ExplainResult struct {
	FieldSelection   []FieldSelection `json:"field_selection"`
	MemoryEstimation MemoryEstimation `json:"memory_estimation"`
}

// Explain asks the cluster which fields a config would analyze and how much
// memory it would need. The config does not need an id or a destination.
func (c *Client) Explain(ctx context.Context, cfg analytics.Config) (*ExplainResult, error) {
	cfg.ID = ""
	var resp ExplainResult
	if err := c.do(ctx, nethttp.MethodPost, analyticsPath+"/_explain", nil, cfg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EstimateMemory returns the memory a job needs without spilling to disk,
// which is what the form proposes as the model memory limit.
func (c *Client) EstimateMemory(ctx context.Context, cfg analytics.Config) (string, error) {
	res, err := c.Explain(ctx, cfg)
	if err != nil {
		return "", err
	}
	if res.MemoryEstimation.ExpectedMemoryWithoutDisk == "" {
		return "", errors.New("explain response has no memory estimate")
	}
	return res.MemoryEstimation.ExpectedMemoryWithoutDisk, nil
}
