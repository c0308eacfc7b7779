package intake

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/registradesk/registra/internal/dupcheck"
	"github.com/registradesk/registra/internal/notify"
	"github.com/registradesk/registra/internal/record"
	"github.com/registradesk/registra/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Ascii profile keeps rendered output stable across CI/platforms
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// fakeSaver counts registry calls and returns a canned record.
type fakeSaver struct {
	created int
	updated int
	rec     *record.Record
	err     error
}

func (f *fakeSaver) CreateRecord(_ context.Context, req registry.SaveRequest) (*record.Record, error) {
	f.created++
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func (f *fakeSaver) UpdateRecord(_ context.Context, id string, req registry.SaveRequest) (*record.Record, error) {
	f.updated++
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

type nilProber struct{}

func (nilProber) CheckDuplicates(_ context.Context, _ registry.DuplicateCheckRequest) (*registry.DuplicateCheckResponse, error) {
	return &registry.DuplicateCheckResponse{Success: true}, nil
}

func newTestWizard(recorder *notify.Recorder) *Wizard {
	w := New(Options{
		Type:     record.TypeDeath,
		Mode:     ModeAdd,
		Registry: &fakeSaver{},
		Prober:   nilProber{},
		Notifier: recorder,
	})
	w.width = 120
	w.height = 40
	return w
}

// fillValidDraft sets every required death field on the draft.
func fillValidDraft(d *record.Draft) {
	values := map[string]string{
		"first_name":             "Juan",
		"last_name":              "Cruz",
		"sex":                    "Male",
		"date_of_birth":          "1950-01-15",
		"date_of_death":          "2024-03-02",
		"civil_status":           "Married",
		"residence":              "Quezon City",
		"place_of_death":         "Quezon City General Hospital",
		"cause_of_death":         "Cardiac arrest",
		"attendant":              "Hospital Authority",
		"manner_of_death":        "Natural",
		"informant_name":         "Maria Cruz",
		"informant_relationship": "Spouse",
		"informant_address":      "Quezon City",
		"date_of_registration":   "2024-03-05",
		"prepared_by":            "Clerk One",
	}
	for name, value := range values {
		d.Set(name, value)
	}
}

func TestCloseWithoutChangesQuitsImmediately(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)

	_, cmd := w.Update(RequestCloseMsg{})
	require.NotNil(t, cmd, "expected a quit command")

	msg := cmd()
	_, isQuit := msg.(tea.QuitMsg)
	assert.True(t, isQuit, "expected clean close to quit without prompting, got %T", msg)
	assert.Empty(t, recorder.Confirms, "expected no confirmation on clean draft")
}

func TestCloseWithUnsavedChangesPrompts(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	w.draft.Set("first_name", "Juan")

	_, cmd := w.Update(RequestCloseMsg{})
	assert.Nil(t, cmd, "expected no quit while the prompt is open")
	require.Len(t, recorder.Confirms, 1)

	c := recorder.Confirms[0]
	assert.Equal(t, "Discard changes?", c.Title)
	assert.Contains(t, c.Detail, "First Name: Juan")

	// The recorder declines by default: the session continues
	_, isDeclined := recorder.LastAnswer.(CloseDeclinedMsg)
	assert.True(t, isDeclined)
}

func TestCloseConfirmedDiscardsDraft(t *testing.T) {
	recorder := notify.NewRecorder()
	recorder.AcceptAll = true
	w := newTestWizard(recorder)
	w.draft.Set("first_name", "Juan")

	w.Update(RequestCloseMsg{})
	require.Len(t, recorder.Confirms, 1)

	// Feed the accept answer back through the loop
	_, cmd := w.Update(recorder.LastAnswer)
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit, "expected quit after confirming discard")
	assert.Nil(t, w.Saved())
}

func TestStepValidationBlocksAdvance(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)

	w.Update(StepSubmittedMsg{})

	assert.Equal(t, 0, w.stepIdx, "expected wizard to stay on step 1")
	require.Len(t, recorder.Errors, 1)
	assert.Contains(t, recorder.Errors[0], "Please correct the following:")
	assert.Contains(t, recorder.Errors[0], "• First Name: required")

	// Field-level errors are marked on the draft
	assert.Equal(t, "required", w.draft.Error("first_name"))
}

func TestValidStepAdvances(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)

	w.Update(StepSubmittedMsg{})

	assert.Equal(t, 1, w.stepIdx, "expected advance to step 2")
	assert.Empty(t, recorder.Errors)
}

func TestBackPreservesValues(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)

	w.Update(StepSubmittedMsg{})
	require.Equal(t, 1, w.stepIdx)

	w.goBack()
	assert.Equal(t, 0, w.stepIdx)
	assert.Equal(t, "Juan", w.draft.String("first_name"))
}

func TestExactDuplicateBlocksSubmit(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)

	// Detector applies a probe result for its current generation
	w.Update(dupcheck.ProbeResultMsg{
		Gen: 0,
		Resp: &registry.DuplicateCheckResponse{
			Success:     true,
			IsDuplicate: true,
			SimilarRecords: []registry.SimilarRecord{
				{ID: "rec-1", RegistryNo: "2024-000001"},
			},
		},
	})

	w.stepIdx = len(w.steps) - 1
	w.Update(StepSubmittedMsg{})

	require.Len(t, recorder.Errors, 1)
	assert.Contains(t, recorder.Errors[0], "Cannot save:")
	assert.Empty(t, recorder.Confirms, "expected no save confirmation while blocked")
}

func TestSimilarAlertCanBeDismissed(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)

	w.Update(dupcheck.ProbeResultMsg{
		Gen: 0,
		Resp: &registry.DuplicateCheckResponse{
			Success: true,
			SimilarRecords: []registry.SimilarRecord{
				{ID: "rec-1", RegistryNo: "2024-000001"},
			},
		},
	})
	require.Equal(t, dupcheck.StatusSimilar, w.detector.Alert().Status)

	w.Update(tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	assert.Equal(t, dupcheck.StatusNone, w.detector.Alert().Status)
}

func TestExactAlertNotDismissable(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)

	w.Update(dupcheck.ProbeResultMsg{
		Gen: 0,
		Resp: &registry.DuplicateCheckResponse{
			Success:     true,
			IsDuplicate: true,
			SimilarRecords: []registry.SimilarRecord{
				{ID: "rec-1", RegistryNo: "2024-000001"},
			},
		},
	})

	w.Update(tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	assert.Equal(t, dupcheck.StatusExact, w.detector.Alert().Status)
}

func TestSubmitRequiresConfirmation(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)
	w.stepIdx = len(w.steps) - 1

	w.Update(StepSubmittedMsg{})

	require.Len(t, recorder.Confirms, 1)
	assert.Equal(t, "Save record?", recorder.Confirms[0].Title)
	// Declined by default: nothing submitted
	_, isDeclined := recorder.LastAnswer.(SubmitDeclinedMsg)
	assert.True(t, isDeclined)
	assert.Equal(t, 0, w.opts.Registry.(*fakeSaver).created)
}

func TestSubmitInvalidJumpsToFailingStep(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)
	w.draft.Set("residence", "") // Break step 2
	w.stepIdx = len(w.steps) - 1

	w.Update(StepSubmittedMsg{})

	assert.Equal(t, 1, w.stepIdx, "expected jump to the failing step")
	require.Len(t, recorder.Errors, 1)
	assert.Contains(t, recorder.Errors[0], "• Residence: required")
	assert.Empty(t, recorder.Confirms)
}

func TestSuccessfulSaveCommitsAndNotifies(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)

	var savedCount int
	w.opts.OnSaved = func(rec *record.Record) { savedCount++ }

	canonical := &record.Record{
		ID:         "rec-1",
		Type:       record.TypeDeath,
		RegistryNo: "2024-000042",
		Fields:     w.draft.Fields(),
	}

	cmd := w.finishSave(SubmitResultMsg{Record: canonical})
	require.NotNil(t, cmd, "expected delayed close command")

	assert.Equal(t, canonical, w.Saved())
	assert.Equal(t, 1, savedCount, "expected OnSaved exactly once")
	assert.False(t, w.draft.Dirty(), "expected draft committed after save")
	require.Len(t, recorder.Successes, 1)
	assert.Contains(t, recorder.Successes[0], "2024-000042")
}

func TestServerFieldErrorsMergeIntoDraft(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)
	w.stepIdx = len(w.steps) - 1

	apiErr := &registry.APIError{
		StatusCode: 422,
		FieldErrors: map[string][]string{
			"residence": {"unknown barangay"},
		},
	}
	w.finishSave(SubmitResultMsg{Err: apiErr})

	assert.Equal(t, "unknown barangay", w.draft.Error("residence"))
	assert.Equal(t, 1, w.stepIdx, "expected jump to the step owning the field")
	require.Len(t, recorder.Errors, 1)
	assert.Contains(t, recorder.Errors[0], "unknown barangay")
	assert.Nil(t, w.Saved())
}

func TestGenericSaveErrorKeepsSession(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)

	w.finishSave(SubmitResultMsg{Err: errors.New("connection refused")})

	require.Len(t, recorder.Errors, 1)
	assert.Contains(t, recorder.Errors[0], "Save failed:")
	assert.True(t, w.draft.Dirty(), "expected draft untouched on failure")
	assert.Nil(t, w.Saved())
}

func TestDefaultNotifierConfirmKeys(t *testing.T) {
	// Without an injected notifier, confirmations render in-modal and are
	// answered with Y/N keys.
	w := New(Options{
		Type:     record.TypeDeath,
		Mode:     ModeAdd,
		Registry: &fakeSaver{},
		Prober:   nilProber{},
	})
	w.width = 120
	w.height = 40
	w.draft.Set("first_name", "Juan")

	w.Update(RequestCloseMsg{})
	require.NotNil(t, w.confirm, "expected pending confirmation")

	// N keeps editing
	_, cmd := w.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	require.NotNil(t, cmd)
	w.Update(cmd())
	assert.Nil(t, w.confirm, "expected prompt dismissed after decline")

	// Y on a fresh prompt discards
	w.Update(RequestCloseMsg{})
	require.NotNil(t, w.confirm)
	_, cmd = w.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	require.NotNil(t, cmd)
	answer := cmd()
	_, isConfirmed := answer.(CloseConfirmedMsg)
	assert.True(t, isConfirmed)
}

func TestEditModeSeedsDraftAndUsesUpdate(t *testing.T) {
	saver := &fakeSaver{}
	existing := &record.Record{
		ID:     "rec-7",
		Type:   record.TypeDeath,
		Fields: record.Fields{"first_name": "Juan", "last_name": "Cruz"},
	}
	w := New(Options{
		Type:     record.TypeDeath,
		Mode:     ModeEdit,
		Existing: existing,
		Registry: saver,
		Prober:   nilProber{},
		Notifier: notify.NewRecorder(),
	})

	assert.Equal(t, "Juan", w.draft.String("first_name"))
	assert.False(t, w.draft.Dirty(), "expected edit session to start clean")

	saver.rec = existing
	cmd := w.startSave()
	require.NotNil(t, cmd)

	// Drain the batched command to run the save
	drainCmd(t, cmd)
	assert.Equal(t, 1, saver.updated)
	assert.Equal(t, 0, saver.created)
}

// drainCmd executes a command tree, following batches, until exhausted.
func drainCmd(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if sub != nil {
				sub()
			}
		}
	}
}

func TestViewEnablesMouseReporting(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)

	view := w.View()
	assert.True(t, view.AltScreen, "expected alt screen")
	assert.Equal(t, tea.MouseModeCellMotion, view.MouseMode, "expected cell-motion reporting so outside clicks close the modal")
}

func TestProgressKeepsValidatedStepsFilled(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)

	for i := 0; i < 3; i++ {
		w.Update(StepSubmittedMsg{})
	}
	require.Equal(t, 3, w.stepIdx)

	for i := 0; i < 3; i++ {
		w.goBack()
	}
	require.Equal(t, 0, w.stepIdx)

	assert.Equal(t, "● ● ● ○ ○ ○", w.renderProgress(), "validated steps must stay filled after going back")
}

func TestResizeReachesCachedForms(t *testing.T) {
	recorder := notify.NewRecorder()
	w := newTestWizard(recorder)
	fillValidDraft(w.draft)

	// Leaving step 1 keeps its form cached
	w.Update(StepSubmittedMsg{})
	require.Equal(t, 1, w.stepIdx)

	w.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	for idx, f := range w.forms {
		assert.Equal(t, 50, f.height, "form %d missed the resize", idx)
	}
}
