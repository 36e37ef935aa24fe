package wizard

import (
	"maps"
	"slices"
	"strings"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
)

// Reduce applies a to s and returns the next state. It never fails: bad
// input shows up as request messages or validation problems. Unknown
// actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AddRequestMessage:
		s.RequestMessages = appendMessage(s.RequestMessages, a.Message)

	case ResetRequestMessages:
		s.RequestMessages = nil

	case ResetAdvancedEditorMessages:
		s.AdvancedEditorMessages = nil

	case ResetForm:
		next := InitialState()
		next.DataViews = s.DataViews
		next.JobIDs = s.JobIDs
		s = next

	case CloseModal:
		s.IsModalVisible = false

	case SetFormState:
		s.Draft = a.Patch.Apply(s.Draft)

	case SetJobConfig:
		s = setJobConfig(s, a.Config)

	case SetAdvancedEditorRawString:
		s.AdvancedEditorRawString = a.Raw

	case SwitchToAdvancedEditor:
		s = switchToAdvancedEditor(s)

	case SwitchToForm:
		s = switchToForm(s)

	case SetDataViewTitles:
		s.DataViews = maps.Clone(a.Index)

	case SetJobIDs:
		s.JobIDs = slices.Clone(a.IDs)

	case SetIsJobCreated:
		s.IsJobCreated = a.Value
		if a.Value {
			s.IsModalVisible = true
		}

	case SetIsJobStarted:
		s.IsJobStarted = a.Value

	case SetEstimatedModelMemoryLimit:
		s.EstimatedModelMemoryLimit = a.Value
		s.Draft.MemoryEstimated = a.Value != ""

	case SetJobClone:
		s = setJobClone(s, a.Source)

	default:
		return s
	}

	s.Validation = validate(s)
	return s
}

func setJobConfig(s State, cfg analytics.Config) State {
	if s.Mode != ModeAdvanced {
		s.Draft = analytics.DraftFromConfig(cfg, s.Draft)
		return s
	}
	raw, err := analytics.EncodeConfig(cfg)
	if err != nil {
		s.AdvancedEditorMessages = appendMessage(s.AdvancedEditorMessages, ErrorMessage(msgSwitchToRawFailed, err.Error()))
		return s
	}
	s.AdvancedEditorRawString = raw
	s.AdvancedEditorMessages = unsupportedFieldMessages(cfg)
	return s
}

func switchToAdvancedEditor(s State) State {
	if s.Mode == ModeAdvanced {
		return s
	}
	raw, err := analytics.EncodeDraft(s.Draft)
	if err != nil {
		s.RequestMessages = appendMessage(s.RequestMessages, ErrorMessage(msgSwitchToRawFailed, err.Error()))
		return s
	}
	s.Mode = ModeAdvanced
	s.AdvancedEditorRawString = raw
	s.AdvancedEditorMessages = nil
	return s
}

func switchToForm(s State) State {
	if s.Mode != ModeAdvanced {
		return s
	}
	cfg, err := analytics.DecodeFormConfig(s.AdvancedEditorRawString)
	if err != nil {
		s.RequestMessages = appendMessage(s.RequestMessages, ErrorMessage(msgSwitchToFormFailed, err.Error()))
		return s
	}
	s.Draft = analytics.DraftFromConfig(cfg, s.Draft)
	s.Mode = ModeSimple
	s.AdvancedEditorRawString = ""
	s.AdvancedEditorMessages = nil
	return s
}

func setJobClone(s State, source analytics.Config) State {
	next := InitialState()
	next.DataViews = s.DataViews
	next.JobIDs = s.JobIDs

	cfg := analytics.CloningConfig(source)
	next.Draft = analytics.DraftFromConfig(cfg, next.Draft)

	if analytics.IsAdvancedConfig(cfg) {
		raw, err := analytics.EncodeConfig(cfg)
		if err == nil {
			next.Mode = ModeAdvanced
			next.AdvancedEditorRawString = raw
			next.AdvancedEditorMessages = unsupportedFieldMessages(cfg)
		} else {
			next.RequestMessages = appendMessage(next.RequestMessages, ErrorMessage(msgSwitchToRawFailed, err.Error()))
		}
	} else {
		next.EstimatedModelMemoryLimit = cfg.ModelMemoryLimit
		next.Draft.MemoryEstimated = cfg.ModelMemoryLimit != ""
	}

	next.CloneSourceID = source.ID
	clone := source.Clone()
	next.CloneJob = &clone
	return next
}

func unsupportedFieldMessages(cfg analytics.Config) []RequestMessage {
	fields := analytics.AdvancedFields(cfg)
	if len(fields) == 0 {
		return nil
	}
	return []RequestMessage{InfoMessage("%s %s", msgUnsupportedFields, strings.Join(fields, ", "))}
}

// appendMessage appends without writing into a backing array another State
// may share.
func appendMessage(list []RequestMessage, m RequestMessage) []RequestMessage {
	return append(slices.Clip(list), m)
}

func validate(s State) []analytics.Problem {
	if s.Mode == ModeAdvanced {
		return nil
	}
	return analytics.ValidateDraft(s.Draft, analytics.Lookup{
		JobExists: func(id string) bool {
			return slices.Contains(s.JobIDs, id)
		},
		DataViewExists: func(title string) bool {
			_, ok := s.DataViews[title]
			return ok
		},
	})
}
