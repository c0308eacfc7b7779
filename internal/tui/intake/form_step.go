package intake

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/registradesk/registra/internal/record"
	"github.com/registradesk/registra/internal/tui/theme"
)

const labelWidth = 24

// fieldInput is one field's input state within a form step.
type fieldInput struct {
	spec record.FieldSpec
	text textinput.Model // Text and date fields
}

// FormStep renders the fields one wizard step owns and routes edits into
// the draft. It is deliberately dumb about validation: the wizard gates
// navigation, the form only collects values.
type FormStep struct {
	typ    record.Type
	step   record.Step
	draft  *record.Draft
	inputs []fieldInput
	focus  int // Focused field index, -1 when the button bar has focus
	width  int
	height int

	// onChange is invoked after every draft mutation; the wizard uses it
	// to schedule duplicate probes on identity-field edits.
	onChange func(name string, identityChanged bool) tea.Cmd

	tmpFile string // Temp file for the external remarks editor
}

// NewFormStep creates the form for one step, seeded from the draft.
func NewFormStep(draft *record.Draft, step record.Step, onChange func(string, bool) tea.Cmd) *FormStep {
	f := &FormStep{
		typ:      draft.Type(),
		step:     step,
		draft:    draft,
		focus:    0,
		onChange: onChange,
	}

	for _, spec := range step.Fields {
		in := fieldInput{spec: spec}
		if spec.Kind == record.FieldText || spec.Kind == record.FieldDate {
			ti := textinput.New()
			ti.CharLimit = 120
			if spec.Kind == record.FieldDate {
				ti.Placeholder = "YYYY-MM-DD"
				ti.CharLimit = 10
			}
			ti.SetValue(draft.String(spec.Name))
			in.text = ti
		}
		f.inputs = append(f.inputs, in)
	}

	if len(f.inputs) > 0 {
		f.focusField(0)
	}
	return f
}

// Init initializes the form step.
func (f *FormStep) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize updates the size of the form step.
func (f *FormStep) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// Focus focuses the first field (entry from the button bar going forward).
func (f *FormStep) Focus() {
	f.focusField(0)
}

// FocusLast focuses the last field (entry from the button bar going back).
func (f *FormStep) FocusLast() {
	f.focusField(len(f.inputs) - 1)
}

// Blur removes focus from all fields.
func (f *FormStep) Blur() {
	if f.focus >= 0 && f.focus < len(f.inputs) {
		f.inputs[f.focus].text.Blur()
	}
	f.focus = -1
}

func (f *FormStep) focusField(idx int) {
	if f.focus >= 0 && f.focus < len(f.inputs) {
		f.inputs[f.focus].text.Blur()
	}
	if idx < 0 || idx >= len(f.inputs) {
		f.focus = -1
		return
	}
	f.focus = idx
	spec := f.inputs[idx].spec
	if spec.Kind == record.FieldText || spec.Kind == record.FieldDate {
		f.inputs[idx].text.Focus()
	}
}

// Update handles messages for the form step.
func (f *FormStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return f.handleKey(msg)

	case RemarksEditedMsg:
		// External editor returned with new remarks content.
		content := strings.TrimRight(msg.Content, "\n")
		cmd := f.apply("remarks", content)
		for i := range f.inputs {
			if f.inputs[i].spec.Name == "remarks" {
				f.inputs[i].text.SetValue(content)
			}
		}
		if f.tmpFile != "" {
			_ = os.Remove(f.tmpFile)
			f.tmpFile = ""
		}
		return cmd
	}

	return f.forwardToFocused(msg)
}

func (f *FormStep) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if f.focus < 0 || f.focus >= len(f.inputs) {
		return nil
	}
	in := &f.inputs[f.focus]

	switch msg.String() {
	case "enter":
		return func() tea.Msg { return StepSubmittedMsg{} }

	case "down":
		if f.focus == len(f.inputs)-1 {
			return func() tea.Msg { return TabExitForwardMsg{} }
		}
		f.focusField(f.focus + 1)
		return nil

	case "tab":
		if f.focus == len(f.inputs)-1 {
			return func() tea.Msg { return TabExitForwardMsg{} }
		}
		f.focusField(f.focus + 1)
		return nil

	case "up":
		if f.focus == 0 {
			return func() tea.Msg { return TabExitBackwardMsg{} }
		}
		f.focusField(f.focus - 1)
		return nil

	case "shift+tab":
		if f.focus == 0 {
			return func() tea.Msg { return TabExitBackwardMsg{} }
		}
		f.focusField(f.focus - 1)
		return nil

	case "ctrl+e":
		if in.spec.Editor {
			return f.openEditor(in.spec.Name)
		}
	}

	switch in.spec.Kind {
	case record.FieldSelect:
		switch msg.String() {
		case "left":
			return f.cycleOption(in, -1)
		case "right", " ", "space":
			return f.cycleOption(in, 1)
		}
		return nil

	case record.FieldFlag:
		switch msg.String() {
		case " ", "space", "left", "right":
			return f.apply(in.spec.Name, !f.draft.Bool(in.spec.Name))
		}
		return nil
	}

	return f.forwardToFocused(msg)
}

// forwardToFocused lets the focused textinput consume the message, then
// syncs any value change into the draft.
func (f *FormStep) forwardToFocused(msg tea.Msg) tea.Cmd {
	if f.focus < 0 || f.focus >= len(f.inputs) {
		return nil
	}
	in := &f.inputs[f.focus]
	if in.spec.Kind != record.FieldText && in.spec.Kind != record.FieldDate {
		return nil
	}

	var cmd tea.Cmd
	in.text, cmd = in.text.Update(msg)

	if value := in.text.Value(); value != f.draft.String(in.spec.Name) {
		changeCmd := f.apply(in.spec.Name, value)
		return tea.Batch(cmd, changeCmd)
	}
	return cmd
}

// cycleOption steps a select field through its option list.
func (f *FormStep) cycleOption(in *fieldInput, dir int) tea.Cmd {
	opts := in.spec.Options
	if len(opts) == 0 {
		return nil
	}
	current := f.draft.String(in.spec.Name)
	idx := -1
	for i, opt := range opts {
		if opt == current {
			idx = i
			break
		}
	}
	idx += dir
	if idx < 0 {
		idx = len(opts) - 1
	}
	if idx >= len(opts) {
		idx = 0
	}
	return f.apply(in.spec.Name, opts[idx])
}

// apply writes one field into the draft and fires the change hook.
func (f *FormStep) apply(name string, value any) tea.Cmd {
	identityChanged := f.draft.Set(name, value)
	if f.onChange != nil {
		return f.onChange(name, identityChanged)
	}
	return nil
}

// openEditor launches $EDITOR with the field's current content.
func (f *FormStep) openEditor(fieldName string) tea.Cmd {
	if os.Getenv("EDITOR") == "" {
		return nil
	}

	tmpfile, err := os.CreateTemp("", "registra_remarks_*.txt")
	if err != nil {
		return nil // Silently fail - editor not available
	}
	if _, err := tmpfile.WriteString(f.draft.String(fieldName)); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	f.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("registra", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return nil
		}
		content, err := os.ReadFile(tmpfile.Name())
		if err != nil {
			return nil
		}
		return RemarksEditedMsg{Content: string(content)}
	})
}

// View renders the form fields with labels, values, and inline errors.
func (f *FormStep) View() string {
	t := theme.Current()

	labelStyle := lipgloss.NewStyle().
		Width(labelWidth).
		Foreground(lipgloss.Color(t.FgSubtle))
	focusedLabelStyle := labelStyle.
		Foreground(lipgloss.Color(t.Primary)).
		Bold(true)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgBase))
	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.Error)).
		PaddingLeft(labelWidth)

	var rows []string
	for i, in := range f.inputs {
		label := in.spec.Label
		if in.spec.Required {
			label += " *"
		}
		ls := labelStyle
		if i == f.focus {
			ls = focusedLabelStyle
		}

		var value string
		switch in.spec.Kind {
		case record.FieldSelect:
			value = f.renderSelect(in, i == f.focus)
		case record.FieldFlag:
			value = f.renderFlag(in)
		default:
			value = in.text.View()
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, ls.Render(label), valueStyle.Render(value)))

		if msg := f.draft.Error(in.spec.Name); msg != "" {
			rows = append(rows, errorStyle.Render("✗ "+msg))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (f *FormStep) renderSelect(in fieldInput, focused bool) string {
	current := f.draft.String(in.spec.Name)
	if current == "" {
		current = "— select —"
	}
	if focused {
		return "◀ " + current + " ▶"
	}
	return current
}

func (f *FormStep) renderFlag(in fieldInput) string {
	if f.draft.Bool(in.spec.Name) {
		return "[✓] Yes"
	}
	return "[ ] No"
}

// HasEditorField reports whether any field on this step supports the
// external editor, for the hint bar.
func (f *FormStep) HasEditorField() bool {
	for _, in := range f.inputs {
		if in.spec.Editor {
			return true
		}
	}
	return false
}
