package cli

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/mlops-tools/dfa-wizard/internal/api"
	"github.com/mlops-tools/dfa-wizard/internal/constants"
	"github.com/mlops-tools/dfa-wizard/internal/events"
	"github.com/mlops-tools/dfa-wizard/internal/progress"
	"github.com/mlops-tools/dfa-wizard/internal/wizard"
)

// session wires one wizard controller to the Kibana client for the
// duration of a command.
type session struct {
	client   *api.Client
	ctrl     *wizard.Controller
	views    *api.DataViewCache
	jobs     *api.JobListCache
	bus      *events.EventBus
	messages <-chan events.Event
	out      io.Writer
	reporter progress.Reporter
}

func newSession(client *api.Client, out io.Writer, reporter progress.Reporter) *session {
	log := GetLogger()
	bus := events.NewEventBus(constants.EventBusDefaultBuffer)

	s := &session{
		client:   client,
		views:    api.NewDataViewCache(client),
		jobs:     api.NewJobListCache(client, log),
		bus:      bus,
		messages: bus.Subscribe(events.EventRequestMessage),
		out:      out,
		reporter: reporter,
	}
	s.ctrl = wizard.NewController(wizard.Dependencies{
		Jobs:         client,
		DataViews:    s.views,
		Refresher:    s.jobs,
		Estimator:    client,
		ErrorMessage: api.ExtractErrorMessage,
		EventBus:     bus,
		Logger:       log,
	})
	s.jobs.OnChange(func(ids []string) {
		s.ctrl.Dispatch(wizard.SetJobIDs{IDs: ids})
	})
	return s
}

// preload fetches the data view titles and existing job IDs concurrently so
// the draft can be checked against them.
func (s *session) preload(ctx context.Context) error {
	progress.Run(s.reporter, "Loading data views and jobs", func() {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			s.ctrl.InitiateWizard(gctx)
			return nil
		})
		g.Go(func() error {
			if _, err := s.jobs.JobIDs(gctx); err != nil {
				GetLogger().Warn().Err(err).Msg("could not load existing job IDs, duplicates will be reported by Kibana")
			}
			return nil
		})
		_ = g.Wait()
	})
	s.flush()
	return ctx.Err()
}

// flush prints the request messages published since the last flush.
// Publishing happens inside Dispatch, so everything a finished operation
// produced is already buffered.
func (s *session) flush() {
	for {
		select {
		case ev, ok := <-s.messages:
			if !ok {
				return
			}
			if m, ok := ev.(*events.RequestMessageEvent); ok {
				printMessage(s.out, wizard.RequestMessage{
					Kind:    wizard.MessageKind(m.Kind),
					Message: m.Message,
					Error:   m.Error,
					Time:    m.Time,
				})
			}
		default:
			return
		}
	}
}

// close waits for background job list reloads and shuts the wizard down.
func (s *session) close() {
	s.jobs.Wait()
	s.ctrl.Close()
	s.flush()
	s.bus.Close()
	if dropped := s.bus.GetDroppedEventCount(); dropped > 0 {
		GetLogger().Debug().Int64("dropped", dropped).Msg("wizard events dropped")
	}
}
