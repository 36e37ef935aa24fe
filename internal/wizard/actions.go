package wizard

import "github.com/mlops-tools/dfa-wizard/internal/analytics"

// Action is one of the transitions Reduce understands. The set is closed:
// only the types in this file implement it.
type Action interface {
	actionName() string
}

// ActionName returns a stable name for a, used in logs and events.
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}

type (
	// AddRequestMessage appends a message.
	AddRequestMessage struct{ Message RequestMessage }

	// ResetRequestMessages clears all request messages.
	ResetRequestMessages struct{}

	// ResetAdvancedEditorMessages clears the advanced editor notices.
	ResetAdvancedEditorMessages struct{}

	// ResetForm restores the initial state but keeps the data view index and
	// the known job IDs.
	ResetForm struct{}

	// CloseModal hides the post-creation dialog.
	CloseModal struct{}

	// SetFormState merges a partial draft into the draft.
	SetFormState struct{ Patch analytics.FormPatch }

	// SetJobConfig replaces the raw text wholesale in advanced mode, or loads
	// the config's form fields into the draft in simple mode.
	SetJobConfig struct{ Config analytics.Config }

	// SetAdvancedEditorRawString replaces the raw text without parsing it.
	SetAdvancedEditorRawString struct{ Raw string }

	// SwitchToAdvancedEditor serializes the draft and enters advanced mode.
	SwitchToAdvancedEditor struct{}

	// SwitchToForm parses the raw text back into the draft. On failure the
	// mode is kept and one error message is appended.
	SwitchToForm struct{}

	// SetDataViewTitles replaces the data view index.
	SetDataViewTitles struct{ Index DataViewIndex }

	// SetJobIDs replaces the list of existing job IDs.
	SetJobIDs struct{ IDs []string }

	SetIsJobCreated struct{ Value bool }
	SetIsJobStarted struct{ Value bool }

	// SetEstimatedModelMemoryLimit records the memory estimate; "" means unset.
	SetEstimatedModelMemoryLimit struct{ Value string }

	// SetJobClone resets the form and seeds it from an existing job.
	SetJobClone struct{ Source analytics.Config }
)

func (AddRequestMessage) actionName() string            { return "add_request_message" }
func (ResetRequestMessages) actionName() string         { return "reset_request_messages" }
func (ResetAdvancedEditorMessages) actionName() string  { return "reset_advanced_editor_messages" }
func (ResetForm) actionName() string                    { return "reset_form" }
func (CloseModal) actionName() string                   { return "close_modal" }
func (SetFormState) actionName() string                 { return "set_form_state" }
func (SetJobConfig) actionName() string                 { return "set_job_config" }
func (SetAdvancedEditorRawString) actionName() string   { return "set_advanced_editor_raw_string" }
func (SwitchToAdvancedEditor) actionName() string       { return "switch_to_advanced_editor" }
func (SwitchToForm) actionName() string                 { return "switch_to_form" }
func (SetDataViewTitles) actionName() string            { return "set_data_view_titles" }
func (SetJobIDs) actionName() string                    { return "set_job_ids" }
func (SetIsJobCreated) actionName() string              { return "set_is_job_created" }
func (SetIsJobStarted) actionName() string              { return "set_is_job_started" }
func (SetEstimatedModelMemoryLimit) actionName() string { return "set_estimated_model_memory_limit" }
func (SetJobClone) actionName() string                  { return "set_job_clone" }
