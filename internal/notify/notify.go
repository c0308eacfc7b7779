// Package notify defines the injected notification capability the intake
// wizard depends on. The wizard never talks to a concrete global toast or
// alert surface; it only sees this interface.
package notify

import tea "charm.land/bubbletea/v2"

// Confirmation describes a yes/no prompt.
type Confirmation struct {
	Title    string
	Message  string
	Detail   string // Optional preformatted block (e.g. a change summary)
	YesLabel string
	NoLabel  string
}

// Notifier is the notification capability: transient messages plus
// confirmation prompts. Accept/decline callbacks produce the message to
// feed back into the event loop when the user answers.
type Notifier interface {
	Error(message string)
	Success(message string)
	Processing(message string)
	Confirm(c Confirmation, accept func() tea.Msg, decline func() tea.Msg)
}

// Recorder is a Notifier test double. It records every call and answers
// confirmations according to AcceptAll.
type Recorder struct {
	Errors     []string
	Successes  []string
	Processed  []string
	Confirms   []Confirmation
	AcceptAll  bool
	LastAnswer tea.Msg
}

// NewRecorder creates a recorder that declines confirmations by default.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Error records an error notification.
func (r *Recorder) Error(message string) {
	r.Errors = append(r.Errors, message)
}

// Success records a success notification.
func (r *Recorder) Success(message string) {
	r.Successes = append(r.Successes, message)
}

// Processing records a processing notification.
func (r *Recorder) Processing(message string) {
	r.Processed = append(r.Processed, message)
}

// Confirm records the prompt and immediately answers it per AcceptAll.
func (r *Recorder) Confirm(c Confirmation, accept func() tea.Msg, decline func() tea.Msg) {
	r.Confirms = append(r.Confirms, c)
	if r.AcceptAll {
		r.LastAnswer = accept()
	} else {
		r.LastAnswer = decline()
	}
}
