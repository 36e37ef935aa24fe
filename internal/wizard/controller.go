package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mlops-tools/dfa-wizard/internal/events"
	"github.com/mlops-tools/dfa-wizard/internal/logging"
)

// Dependencies are the collaborators a Controller talks to. Jobs and
// DataViews are required; everything else is optional.
type Dependencies struct {
	Jobs      JobService
	DataViews DataViewCatalog
	Refresher ListRefresher
	Estimator MemoryEstimator

	// ErrorMessage extracts the user-facing text of a collaborator fault.
	// Defaults to err.Error().
	ErrorMessage func(error) string

	EventBus *events.EventBus
	Logger   *logging.Logger
	Now      func() time.Time
}

// Controller owns one wizard session. Transitions run one at a time; the
// asynchronous operations snapshot the state when called, wait on a
// collaborator without holding the lock, and then dispatch their result.
type Controller struct {
	deps Dependencies

	mu     sync.Mutex
	state  State
	closed bool
}

// NewController creates a controller in the initial state.
func NewController(deps Dependencies) *Controller {
	if deps.ErrorMessage == nil {
		deps.ErrorMessage = func(err error) string { return err.Error() }
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{deps: deps, state: InitialState()}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch runs a single transition and returns the resulting state. After
// Close it returns the last state without applying a.
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatchLocked(a)
}

func (c *Controller) dispatchLocked(a Action) State {
	if c.closed {
		c.deps.Logger.Debug().Str("action", ActionName(a)).Msg("wizard closed, dropping action")
		return c.state
	}

	next := Reduce(c.state, a)
	var added []RequestMessage
	next.RequestMessages, added = c.stamp(next.RequestMessages)
	if m, ok := a.(AddRequestMessage); ok && !m.Message.Time.IsZero() {
		added = append(added, m.Message)
	}
	c.state = next

	c.deps.Logger.Debug().
		Str("action", ActionName(a)).
		Str("mode", next.Mode.String()).
		Int("problems", len(next.Validation)).
		Msg("wizard transition")

	if bus := c.deps.EventBus; bus != nil {
		for _, m := range added {
			bus.PublishRequestMessage(string(m.Kind), m.Message, m.Error, m.Time)
		}
		bus.PublishStateChange(ActionName(a), next.Mode.String(), next.IsJobCreated, next.IsJobStarted, len(next.Validation))
	}
	return next
}

// stamp sets the time on messages the reducer has just added, which are the
// only ones without one, and returns them.
func (c *Controller) stamp(list []RequestMessage) ([]RequestMessage, []RequestMessage) {
	var out, added []RequestMessage
	for i, m := range list {
		if !m.Time.IsZero() {
			continue
		}
		if out == nil {
			out = make([]RequestMessage, len(list))
			copy(out, list)
		}
		out[i].Time = c.deps.Now()
		added = append(added, out[i])
	}
	if out == nil {
		return list, nil
	}
	return out, added
}

// Close ends the session. Results of operations still in flight are
// discarded and later actions are ignored; the collaborator calls themselves
// are not interrupted.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// SwitchToForm tries to load the raw text into the form and reports whether
// the wizard is in simple mode afterwards.
func (c *Controller) SwitchToForm() bool {
	return c.Dispatch(SwitchToForm{}).Mode == ModeSimple
}

// InitiateWizard rebuilds the data view index: the catalog cache is
// invalidated, refreshed and then listed, in that order. On failure an error
// message is added and the previous index is kept.
func (c *Controller) InitiateWizard(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	catalog := c.deps.DataViews

	views, err := func() ([]DataView, error) {
		if err := catalog.InvalidateCache(ctx); err != nil {
			return nil, err
		}
		if err := catalog.RefreshCache(ctx); err != nil {
			return nil, err
		}
		return catalog.List(ctx)
	}()
	if err != nil {
		c.deps.Logger.Warn().Err(err).Msg("failed to load data views")
		c.Dispatch(AddRequestMessage{ErrorMessage(msgDataViewsFailed, c.deps.ErrorMessage(err))})
		return
	}

	index := make(DataViewIndex, len(views))
	for _, v := range views {
		index[v.Title] = DataViewOption{Label: v.Title, Value: v.ID}
	}
	c.Dispatch(SetDataViewTitles{Index: index})
}

// CreateAnalyticsJob submits the current definition and reports whether the
// job was created. Request messages are cleared first. Nothing is retried.
func (c *Controller) CreateAnalyticsJob(ctx context.Context) bool {
	c.mu.Lock()
	s := c.dispatchLocked(ResetRequestMessages{})
	c.mu.Unlock()

	jobID := s.TargetJobID()
	cfg, err := s.Definition()
	if err != nil {
		c.Dispatch(AddRequestMessage{ErrorMessage(msgCreateFailed, err.Error())})
		return false
	}
	cfg.ID = ""

	req := CreateJobRequest{
		ID:             jobID,
		Config:         cfg,
		CreateDataView: s.Draft.CreateDataView,
		TimeFieldName:  s.Draft.TimeFieldName,
	}
	c.deps.Logger.Info().Str("job_id", jobID).Str("mode", s.Mode.String()).Msg("creating data frame analytics job")

	res, err := c.deps.Jobs.CreateJob(context.WithoutCancel(ctx), req)
	if err != nil {
		c.deps.Logger.Error().Err(err).Str("job_id", jobID).Msg("job creation failed")
		c.Dispatch(AddRequestMessage{ErrorMessage(msgCreateFailed, c.deps.ErrorMessage(err))})
		return false
	}
	if res == nil {
		res = &CreateJobResult{}
	}

	c.Dispatch(AddRequestMessage{InfoMessage(msgCreateAcknowledged, jobID)})

	switch {
	case len(res.Created) > 0 && len(res.Errors) == 0:
		if !c.applyResult(SetIsJobCreated{Value: true}) {
			return true
		}
		c.refreshJobList()
		if bus := c.deps.EventBus; bus != nil {
			bus.PublishJob(events.EventJobCreated, jobID, "")
		}
		return true
	case len(res.Errors) > 0:
		// Only the first per-job error is surfaced.
		c.Dispatch(AddRequestMessage{ErrorMessage(msgCreateFailed, res.Errors[0].Message)})
		return false
	default:
		return false
	}
}

// StartAnalyticsJob starts the created job and reports whether the server
// acknowledged it. An unacknowledged response counts as a failure.
func (c *Controller) StartAnalyticsJob(ctx context.Context) bool {
	jobID := c.State().TargetJobID()

	res, err := c.deps.Jobs.StartJob(context.WithoutCancel(ctx), jobID)
	if err == nil && (res == nil || !res.Acknowledged) {
		err = fmt.Errorf("start request for %s was not acknowledged", jobID)
	}
	if err != nil {
		c.deps.Logger.Error().Err(err).Str("job_id", jobID).Msg("job start failed")
		c.Dispatch(AddRequestMessage{ErrorMessage(msgStartFailed, c.deps.ErrorMessage(err))})
		return false
	}

	c.Dispatch(AddRequestMessage{InfoMessage(msgStartAcknowledged, jobID)})
	if !c.applyResult(SetIsJobStarted{Value: true}) {
		return true
	}
	c.refreshJobList()
	if bus := c.deps.EventBus; bus != nil {
		bus.PublishJob(events.EventJobStarted, jobID, res.Node)
	}
	return true
}

// EstimateModelMemoryLimit asks the estimator for the memory the current
// definition needs and records the answer. It returns false when no
// estimator is configured or the estimate failed.
func (c *Controller) EstimateModelMemoryLimit(ctx context.Context) bool {
	if c.deps.Estimator == nil {
		return false
	}
	cfg, err := c.State().Definition()
	if err != nil {
		c.Dispatch(AddRequestMessage{ErrorMessage(msgEstimateFailed, err.Error())})
		return false
	}
	cfg.ID = ""

	value, err := c.deps.Estimator.EstimateMemory(context.WithoutCancel(ctx), cfg)
	if err != nil {
		c.deps.Logger.Warn().Err(err).Msg("memory estimation failed")
		c.Dispatch(AddRequestMessage{ErrorMessage(msgEstimateFailed, c.deps.ErrorMessage(err))})
		return false
	}
	c.Dispatch(SetEstimatedModelMemoryLimit{Value: value})
	return true
}

// applyResult dispatches a and reports whether the controller was still open.
func (c *Controller) applyResult(a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.dispatchLocked(a)
	return true
}

func (c *Controller) refreshJobList() {
	if c.deps.Refresher != nil {
		c.deps.Refresher.RefreshJobList()
	}
}
