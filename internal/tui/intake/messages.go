package intake

import "github.com/registradesk/registra/internal/record"

// StepSubmittedMsg is sent when the current step's inputs pass validation
// and the wizard should advance.
type StepSubmittedMsg struct{}

// RequestCloseMsg is sent by any exit path (ESC, Cancel button, overlay
// click). The unsaved-change guard decides whether to prompt.
type RequestCloseMsg struct{}

// CloseConfirmedMsg is sent when the user confirms discarding the draft.
type CloseConfirmedMsg struct{}

// CloseDeclinedMsg is sent when the user chooses to continue editing.
type CloseDeclinedMsg struct{}

// SubmitConfirmedMsg is sent when the user confirms the final save/update.
type SubmitConfirmedMsg struct{}

// SubmitDeclinedMsg is sent when the user chooses to review details instead.
type SubmitDeclinedMsg struct{}

// SubmitResultMsg carries the registry's answer to a create/update call.
type SubmitResultMsg struct {
	Record *record.Record
	Err    error
}

// SuccessCloseMsg fires after the success-visible delay so the user sees
// the confirmation before the wizard closes.
type SuccessCloseMsg struct{}

// RemarksEditedMsg is sent when the external editor returns new content
// for the remarks field.
type RemarksEditedMsg struct {
	Content string
}

// TabExitForwardMsg is sent when Tab is pressed on the last input,
// moving focus to the button bar.
type TabExitForwardMsg struct{}

// TabExitBackwardMsg is sent when Shift+Tab is pressed on the first input,
// moving focus to the button bar from the end.
type TabExitBackwardMsg struct{}
