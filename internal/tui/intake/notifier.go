package intake

import (
	tea "charm.land/bubbletea/v2"
	"github.com/registradesk/registra/internal/notify"
)

// pendingConfirm is a confirmation prompt awaiting a Y/N answer.
type pendingConfirm struct {
	prompt  notify.Confirmation
	accept  func() tea.Msg
	decline func() tea.Msg
}

// modalNotifier is the default notify.Notifier: it renders notifications
// inside the wizard modal itself. Transient messages go to the flash line
// above the button bar; confirmations replace the modal content until
// answered.
type modalNotifier struct {
	w *Wizard
}

func (n *modalNotifier) Error(message string) {
	n.w.flashErr = message
	n.w.flashOK = ""
	n.w.processing = ""
}

func (n *modalNotifier) Success(message string) {
	n.w.flashOK = message
	n.w.flashErr = ""
	n.w.processing = ""
}

func (n *modalNotifier) Processing(message string) {
	n.w.processing = message
	n.w.flashErr = ""
	n.w.flashOK = ""
}

func (n *modalNotifier) Confirm(c notify.Confirmation, accept func() tea.Msg, decline func() tea.Msg) {
	n.w.confirm = &pendingConfirm{prompt: c, accept: accept, decline: decline}
}
