// Package intake implements the record intake wizard: a centered modal
// that walks a clerk through the multi-step death or marriage form with
// per-step validation, background duplicate detection, an unsaved-change
// guard on every exit path, and a confirmation-gated save.
package intake

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/registradesk/registra/internal/dupcheck"
	"github.com/registradesk/registra/internal/logger"
	"github.com/registradesk/registra/internal/notify"
	"github.com/registradesk/registra/internal/record"
	"github.com/registradesk/registra/internal/registry"
	"github.com/registradesk/registra/internal/tui/theme"
	"github.com/registradesk/registra/internal/validate"
)

// Mode selects add vs. edit behavior.
type Mode int

const (
	ModeAdd Mode = iota
	ModeEdit
)

// successCloseDelay keeps the success message visible before the wizard
// closes itself.
const successCloseDelay = 1200 * time.Millisecond

// Saver is the persistence capability the wizard needs from the registry.
// *registry.Client satisfies it; tests substitute a fake.
type Saver interface {
	CreateRecord(ctx context.Context, req registry.SaveRequest) (*record.Record, error)
	UpdateRecord(ctx context.Context, id string, req registry.SaveRequest) (*record.Record, error)
}

// Options configures one wizard session.
type Options struct {
	Type     record.Type
	Mode     Mode
	Existing *record.Record // Required in edit mode
	Registry Saver
	Prober   dupcheck.Prober
	Notifier notify.Notifier // Defaults to the in-modal notifier
	Debounce time.Duration   // Defaults to dupcheck.DefaultDebounce

	// OnSaved fires once per session, after a successful create or update,
	// with the canonical record the registry returned.
	OnSaved func(*record.Record)
}

// Wizard is the BubbleTea model for one intake session.
type Wizard struct {
	opts      Options
	draft     *record.Draft
	detector  *dupcheck.Detector
	notifier  notify.Notifier
	steps     []record.Step
	stepIdx   int    // Index into steps, 0-based
	completed []bool // Per step, true once it has passed validation this session

	// Step components and button bars, cached per step so focus and input
	// state survive re-renders and back-navigation.
	forms         map[int]*FormStep
	buttonBars    map[int]*ButtonBar
	buttonBar     *ButtonBar
	buttonFocused bool

	width  int
	height int

	confirm    *pendingConfirm
	submitting bool
	spin       spinner.Model

	flashErr   string
	flashOK    string
	processing string

	saved     *record.Record // Set after a successful save
	cancelled bool
}

// New creates a wizard session from options. Panics are avoided: invalid
// option combinations surface as errors from Run.
func New(opts Options) *Wizard {
	var draft *record.Draft
	excludeID := ""
	if opts.Mode == ModeEdit && opts.Existing != nil {
		draft = record.NewDraftFrom(opts.Type, opts.Existing.Fields)
		excludeID = opts.Existing.ID
	} else {
		draft = record.NewDraft(opts.Type)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	steps := record.Steps(opts.Type)
	w := &Wizard{
		opts:       opts,
		draft:      draft,
		detector:   dupcheck.New(opts.Prober, opts.Type, excludeID, opts.Debounce),
		steps:      steps,
		completed:  make([]bool, len(steps)),
		forms:      make(map[int]*FormStep),
		buttonBars: make(map[int]*ButtonBar),
		spin:       sp,
	}

	w.notifier = opts.Notifier
	if w.notifier == nil {
		w.notifier = &modalNotifier{w: w}
	}
	return w
}

// Run starts a wizard session as a standalone program. It returns the
// saved record, or (nil, nil) when the user closed without saving.
func Run(opts Options) (*record.Record, error) {
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("unknown record type %q", opts.Type)
	}
	if opts.Mode == ModeEdit && opts.Existing == nil {
		return nil, fmt.Errorf("edit mode requires an existing record")
	}

	w := New(opts)
	p := tea.NewProgram(w)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("intake wizard failed: %w", err)
	}

	final, ok := finalModel.(*Wizard)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if final.cancelled {
		logger.Debug("intake: session closed without saving")
	}
	return final.saved, nil
}

// Saved returns the record persisted this session, or nil.
func (w *Wizard) Saved() *record.Record {
	return w.saved
}

// Draft exposes the session draft, primarily for tests.
func (w *Wizard) Draft() *record.Draft {
	return w.draft
}

// Init initializes the wizard model.
func (w *Wizard) Init() tea.Cmd {
	return w.ensureForm(w.stepIdx).Init()
}

// Update handles messages for the wizard.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if cmd, handled := w.handleKey(msg); handled {
			return w, cmd
		}

	case tea.MouseClickMsg:
		return w, w.handleClick(msg.X, msg.Y)

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.ensureForm(w.stepIdx)
		for _, f := range w.forms {
			f.SetSize(modalContentWidth, w.height-10)
		}
		return w, nil

	case spinner.TickMsg:
		if !w.submitting {
			return w, nil
		}
		var cmd tea.Cmd
		w.spin, cmd = w.spin.Update(msg)
		return w, cmd

	case dupcheck.DebounceElapsedMsg, dupcheck.ProbeResultMsg:
		return w, w.detector.Update(msg)

	case StepSubmittedMsg:
		if w.onLastStep() {
			return w, w.beginSubmit()
		}
		return w, w.advanceStep()

	case RequestCloseMsg:
		return w, w.requestClose()

	case CloseConfirmedMsg:
		w.confirm = nil
		w.cancelled = true
		w.detector.Invalidate()
		return w, tea.Quit

	case CloseDeclinedMsg:
		w.confirm = nil
		return w, nil

	case SubmitConfirmedMsg:
		w.confirm = nil
		return w, w.startSave()

	case SubmitDeclinedMsg:
		w.confirm = nil
		return w, nil

	case SubmitResultMsg:
		return w, w.finishSave(msg)

	case SuccessCloseMsg:
		return w, tea.Quit

	case TabExitForwardMsg:
		w.buttonFocused = true
		w.ensureForm(w.stepIdx).Blur()
		w.ensureButtonBar()
		w.buttonBar.FocusFirst()
		return w, nil

	case TabExitBackwardMsg:
		w.buttonFocused = true
		w.ensureForm(w.stepIdx).Blur()
		w.ensureButtonBar()
		w.buttonBar.FocusLast()
		return w, nil
	}

	// Forward everything else to the current step
	return w, w.ensureForm(w.stepIdx).Update(msg)
}

// handleKey handles keyboard input that the wizard owns. Returns handled
// false when the key should flow through to the current step.
func (w *Wizard) handleKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	// A pending confirmation swallows all input except its answer keys.
	if w.confirm != nil {
		switch msg.String() {
		case "y", "Y":
			c := w.confirm
			return c.accept, true
		case "n", "N", "esc":
			c := w.confirm
			return c.decline, true
		}
		return nil, true
	}

	// While a save is in flight only ctrl+c gets through.
	if w.submitting {
		if msg.String() == "ctrl+c" {
			w.cancelled = true
			return tea.Quit, true
		}
		return nil, true
	}

	// An advisory duplicate alert can be dismissed; an exact match stays
	// until the conflicting fields change.
	if msg.String() == "ctrl+d" && w.detector.Alert().Status == dupcheck.StatusSimilar {
		w.detector.Dismiss()
		return nil, true
	}

	if w.buttonFocused && w.buttonBar != nil {
		switch msg.String() {
		case "tab", "right":
			if !w.buttonBar.FocusNext() {
				w.buttonFocused = false
				w.ensureForm(w.stepIdx).Focus()
			}
			return nil, true
		case "shift+tab", "left":
			if !w.buttonBar.FocusPrev() {
				w.buttonFocused = false
				w.ensureForm(w.stepIdx).FocusLast()
			}
			return nil, true
		case "enter", " ", "space":
			return w.activateButton(w.buttonBar.FocusedButton()), true
		case "esc":
			return w.requestClose(), true
		}
		return nil, true
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return w.requestClose(), true
	}

	return nil, false
}

// handleClick treats a click outside the modal as a close request, same
// as ESC. Clicks inside the modal are ignored (focus is keyboard-driven).
func (w *Wizard) handleClick(x, y int) tea.Cmd {
	if w.confirm != nil || w.submitting {
		return nil
	}
	content := w.renderContent()
	mw := lipgloss.Width(content)
	mh := lipgloss.Height(content)
	x0 := (w.width - mw) / 2
	y0 := (w.height - mh) / 2
	if x >= x0 && x < x0+mw && y >= y0 && y < y0+mh {
		return nil
	}
	return w.requestClose()
}

// requestClose runs every exit path through the unsaved-change guard.
func (w *Wizard) requestClose() tea.Cmd {
	if !w.draft.Dirty() {
		w.cancelled = true
		w.detector.Invalidate()
		return tea.Quit
	}
	w.notifier.Confirm(
		closeConfirmation(w.draft),
		func() tea.Msg { return CloseConfirmedMsg{} },
		func() tea.Msg { return CloseDeclinedMsg{} },
	)
	return nil
}

// advanceStep validates the current step and moves forward on success.
func (w *Wizard) advanceStep() tea.Cmd {
	step := w.steps[w.stepIdx]
	errs := validate.Step(w.opts.Type, step.Number, w.draft.Fields())
	if !errs.OK() {
		w.draft.SetErrors(errs)
		w.notifier.Error(errs.Aggregate(w.opts.Type, step.Number))
		return nil
	}

	w.flashErr = ""
	w.completed[w.stepIdx] = true
	w.stepIdx++
	w.buttonFocused = false
	w.buttonBar = nil
	return w.ensureForm(w.stepIdx).Init()
}

// goBack returns to the previous step without validating; entered values
// stay in the draft.
func (w *Wizard) goBack() tea.Cmd {
	if w.stepIdx == 0 {
		return nil
	}
	w.flashErr = ""
	w.stepIdx--
	w.buttonFocused = false
	w.buttonBar = nil
	return w.ensureForm(w.stepIdx).Init()
}

// beginSubmit runs the save pipeline up to the confirmation prompt:
// duplicate veto, full validation, then the Y/N gate.
func (w *Wizard) beginSubmit() tea.Cmd {
	if alert := w.detector.Alert(); alert.Status == dupcheck.StatusExact {
		w.notifier.Error("Cannot save: " + alert.Message)
		return nil
	}

	if stepNo, errs := validate.All(w.opts.Type, w.draft.Fields()); !errs.OK() {
		w.draft.SetErrors(errs)
		w.notifier.Error(errs.Aggregate(w.opts.Type, stepNo))
		return w.jumpToStep(stepNo)
	}

	title := "Save record?"
	message := fmt.Sprintf("Save this %s record to the registry?", w.opts.Type)
	if w.opts.Mode == ModeEdit {
		title = "Save changes?"
		message = fmt.Sprintf("Save your changes to this %s record?", w.opts.Type)
	}
	w.notifier.Confirm(
		notify.Confirmation{
			Title:    title,
			Message:  message,
			YesLabel: "Save",
			NoLabel:  "Review details",
		},
		func() tea.Msg { return SubmitConfirmedMsg{} },
		func() tea.Msg { return SubmitDeclinedMsg{} },
	)
	return nil
}

// startSave fires the registry call after the user confirms.
func (w *Wizard) startSave() tea.Cmd {
	w.submitting = true
	w.notifier.Processing("Saving record…")

	req := registry.SaveRequest{
		Type:   w.opts.Type,
		Fields: w.draft.Fields(),
	}
	saver := w.opts.Registry
	mode := w.opts.Mode
	var id string
	if w.opts.Existing != nil {
		id = w.opts.Existing.ID
	}

	save := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var rec *record.Record
		var err error
		if mode == ModeEdit {
			rec, err = saver.UpdateRecord(ctx, id, req)
		} else {
			rec, err = saver.CreateRecord(ctx, req)
		}
		return SubmitResultMsg{Record: rec, Err: err}
	}
	return tea.Batch(w.spin.Tick, save)
}

// finishSave applies the registry's answer: commit and schedule close on
// success, surface field or generic errors on failure.
func (w *Wizard) finishSave(msg SubmitResultMsg) tea.Cmd {
	w.submitting = false
	w.processing = ""

	if msg.Err != nil {
		logger.Error("intake: save failed: %v", msg.Err)
		if apiErr, ok := msg.Err.(*registry.APIError); ok && apiErr.HasFieldErrors() {
			// The server is authoritative; merge its errors and return the
			// user to the first offending step.
			fieldErrs := apiErr.FlatFieldErrors()
			w.draft.SetErrors(fieldErrs)
			w.notifier.Error(validate.ErrorMap(fieldErrs).Aggregate(w.opts.Type, 0))
			return w.jumpToStep(w.firstErrorStep(fieldErrs))
		}
		w.notifier.Error("Save failed: " + msg.Err.Error())
		return nil
	}

	w.saved = msg.Record
	w.draft.Commit(msg.Record.Fields)
	w.detector.Invalidate()

	success := "Record updated."
	if w.opts.Mode == ModeAdd && msg.Record.RegistryNo != "" {
		success = "Record saved. Registry No. " + msg.Record.RegistryNo
	}
	w.notifier.Success(success)

	if w.opts.OnSaved != nil {
		w.opts.OnSaved(msg.Record)
	}

	return tea.Tick(successCloseDelay, func(time.Time) tea.Msg {
		return SuccessCloseMsg{}
	})
}

// jumpToStep moves directly to a step by its 1-based number.
func (w *Wizard) jumpToStep(stepNumber int) tea.Cmd {
	for i, s := range w.steps {
		if s.Number == stepNumber {
			if i == w.stepIdx {
				return nil
			}
			w.stepIdx = i
			w.buttonFocused = false
			w.buttonBar = nil
			return w.ensureForm(i).Init()
		}
	}
	return nil
}

// firstErrorStep finds the lowest step carrying one of the given fields.
// Unknown fields fall through to the last step.
func (w *Wizard) firstErrorStep(errs map[string]string) int {
	for _, step := range w.steps {
		for _, f := range step.Fields {
			if _, ok := errs[f.Name]; ok {
				return step.Number
			}
		}
	}
	return w.steps[len(w.steps)-1].Number
}

func (w *Wizard) onLastStep() bool {
	return w.stepIdx == len(w.steps)-1
}

// ensureForm lazily builds and caches the form for a step index.
func (w *Wizard) ensureForm(idx int) *FormStep {
	if f, ok := w.forms[idx]; ok {
		return f
	}
	f := NewFormStep(w.draft, w.steps[idx], w.onFieldChange)
	f.SetSize(modalContentWidth, w.height-10)
	w.forms[idx] = f
	return f
}

// onFieldChange schedules a duplicate probe when an identity field changed.
func (w *Wizard) onFieldChange(name string, identityChanged bool) tea.Cmd {
	if !identityChanged {
		return nil
	}
	identity, complete := w.draft.IdentityValues()
	return w.detector.Schedule(identity, complete)
}

// ensureButtonBar creates the button bar if needed, using the cached
// instance per step so focus state survives re-renders.
func (w *Wizard) ensureButtonBar() {
	if cached, ok := w.buttonBars[w.stepIdx]; ok {
		w.buttonBar = cached
		return
	}

	var buttons []Button
	if w.stepIdx > 0 {
		buttons = append(buttons, Button{ID: ButtonBack, Label: "← Back"})
	}
	if w.onLastStep() {
		buttons = append(buttons, Button{ID: ButtonSubmit, Label: "Save"})
	} else {
		buttons = append(buttons, Button{ID: ButtonNext, Label: "Next →"})
	}
	buttons = append(buttons, Button{ID: ButtonCancel, Label: "Cancel"})

	bar := NewButtonBar(buttons)
	w.buttonBars[w.stepIdx] = bar
	w.buttonBar = bar
}

// activateButton handles button activation.
func (w *Wizard) activateButton(id ButtonID) tea.Cmd {
	switch id {
	case ButtonBack:
		return w.goBack()
	case ButtonNext:
		return w.advanceStep()
	case ButtonSubmit:
		return w.beginSubmit()
	case ButtonCancel:
		return w.requestClose()
	}
	return nil
}

// View renders the wizard.
func (w *Wizard) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion // Clicks outside the modal close it

	if w.width == 0 || w.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	content := w.renderContent()

	centered := lipgloss.Place(
		w.width,
		w.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)

	canvas := uv.NewScreenBuffer(w.width, w.height)
	uv.NewStyledString(centered).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: w.width, Y: w.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderContent renders the modal body: either the pending confirmation
// or the current step with its chrome.
func (w *Wizard) renderContent() string {
	if w.confirm != nil {
		return RenderConfirmationModal(w.confirm.prompt)
	}

	t := theme.Current()
	step := w.steps[w.stepIdx]

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Primary)).
		MarginBottom(1)
	title := titleStyle.Render(fmt.Sprintf(
		"%s Record — Step %d of %d: %s",
		typeLabel(w.opts.Type), step.Number, len(w.steps), step.Title,
	))

	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgMuted)).
		MarginBottom(1)
	progress := progressStyle.Render(w.renderProgress())

	parts := []string{title, progress, w.ensureForm(w.stepIdx).View()}

	if banner := renderDupBanner(w.detector.Alert(), modalContentWidth); banner != "" {
		parts = append(parts, "", banner)
	}

	if flash := w.renderFlash(); flash != "" {
		parts = append(parts, "", flash)
	}

	w.ensureButtonBar()
	parts = append(parts, "", w.buttonBar.Render(), "", w.renderHints())

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	modalStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Padding(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.BorderDefault))

	return modalStyle.Render(content)
}

// renderProgress draws one dot per step: filled for the current step and
// for every step that has passed validation this session. Going back does
// not un-fill a step.
func (w *Wizard) renderProgress() string {
	out := ""
	for i := range w.steps {
		if out != "" {
			out += " "
		}
		if w.completed[i] || i == w.stepIdx {
			out += "●"
		} else {
			out += "○"
		}
	}
	return out
}

// renderFlash renders the transient message line: processing spinner,
// error checklist, or success message.
func (w *Wizard) renderFlash() string {
	t := theme.Current()
	switch {
	case w.submitting && w.processing != "":
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			Render(w.spin.View() + " " + w.processing)
	case w.flashErr != "":
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Error)).
			Width(modalContentWidth).
			Render(w.flashErr)
	case w.flashOK != "":
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Render("✓ " + w.flashOK)
	}
	return ""
}

func (w *Wizard) renderHints() string {
	pairs := []string{"↑↓", "fields", "tab", "buttons", "enter", "next", "esc", "close"}
	if w.ensureForm(w.stepIdx).HasEditorField() {
		pairs = append(pairs, "ctrl+e", "editor")
	}
	if w.detector.Alert().Status == dupcheck.StatusSimilar {
		pairs = append(pairs, "ctrl+d", "dismiss")
	}
	return renderHintBar(pairs...)
}

// typeLabel returns the display name for a record type.
func typeLabel(t record.Type) string {
	switch t {
	case record.TypeDeath:
		return "Death"
	case record.TypeMarriage:
		return "Marriage"
	default:
		return string(t)
	}
}
