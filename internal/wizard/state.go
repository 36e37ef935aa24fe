// Package wizard implements the analytics job creation wizard: a state value,
// a closed set of actions, a pure reducer over them, and a controller that
// runs the asynchronous steps against injected collaborators.
package wizard

import (
	"fmt"
	"time"

	"github.com/mlops-tools/dfa-wizard/internal/analytics"
)

// Mode selects which representation of the job is live.
type Mode int

const (
	// ModeSimple edits the job through the structured draft.
	ModeSimple Mode = iota
	// ModeAdvanced edits the job as raw JSON text.
	ModeAdvanced
)

func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// MessageKind distinguishes informational notices from errors.
type MessageKind string

const (
	MessageInfo  MessageKind = "info"
	MessageError MessageKind = "error"
)

// RequestMessage is a user-facing notice produced by an attempted operation.
type RequestMessage struct {
	Kind    MessageKind
	Message string
	Error   string // extracted fault text, empty for info messages
	Time    time.Time
}

func (m RequestMessage) String() string {
	if m.Error == "" {
		return m.Message
	}
	return m.Message + " " + m.Error
}

// InfoMessage returns an informational request message.
func InfoMessage(format string, args ...any) RequestMessage {
	return RequestMessage{Kind: MessageInfo, Message: fmt.Sprintf(format, args...)}
}

// ErrorMessage returns an error request message carrying errText.
func ErrorMessage(message, errText string) RequestMessage {
	return RequestMessage{Kind: MessageError, Message: message, Error: errText}
}

// DataViewOption is one entry of the data view index.
type DataViewOption struct {
	Label string
	Value string // data view ID
}

// DataViewIndex maps existing data view titles to their options.
type DataViewIndex map[string]DataViewOption

// State is the complete wizard state. Values are treated as immutable: the
// reducer always returns a fresh State and never writes through the slices
// or maps of its input.
type State struct {
	Mode  Mode
	Draft analytics.JobDraft

	// AdvancedEditorRawString is the live job text in ModeAdvanced and empty
	// otherwise.
	AdvancedEditorRawString string
	AdvancedEditorMessages  []RequestMessage

	RequestMessages []RequestMessage

	IsJobCreated   bool
	IsJobStarted   bool
	IsModalVisible bool

	EstimatedModelMemoryLimit string

	CloneSourceID string
	CloneJob      *analytics.Config

	DataViews DataViewIndex
	JobIDs    []string

	// Validation holds the problems found in the draft after the last
	// transition. It is nil in ModeAdvanced.
	Validation []analytics.Problem
}

// InitialState returns the state a new wizard session starts in.
func InitialState() State {
	s := State{
		Mode:  ModeSimple,
		Draft: analytics.NewJobDraft().Clone(),
	}
	s.Validation = validate(s)
	return s
}

// Definition returns the job configuration that would be submitted from s:
// the parsed raw text in advanced mode, the draft's config otherwise.
func (s State) Definition() (analytics.Config, error) {
	if s.Mode == ModeAdvanced {
		return analytics.DecodeConfig(s.AdvancedEditorRawString)
	}
	return analytics.DraftToConfig(s.Draft), nil
}

// TargetJobID returns the ID the job is created and started under. The form
// field wins; in advanced mode an id in the raw text is used as a fallback.
func (s State) TargetJobID() string {
	if s.Draft.JobID != "" || s.Mode != ModeAdvanced {
		return s.Draft.JobID
	}
	cfg, err := analytics.DecodeConfig(s.AdvancedEditorRawString)
	if err != nil {
		return ""
	}
	return cfg.ID
}

// Valid reports whether the state can be submitted as is. In advanced mode
// the server is the judge, so only a non-empty buffer is required.
func (s State) Valid() bool {
	if s.Mode == ModeAdvanced {
		return s.AdvancedEditorRawString != ""
	}
	return len(s.Validation) == 0
}
