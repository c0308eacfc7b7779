package record

import (
	"testing"
)

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft(TypeDeath)

	// Declared default is prefilled
	if got := d.String("citizenship"); got != "Filipino" {
		t.Errorf("Expected citizenship default 'Filipino', got %q", got)
	}

	// Flags default to false
	if d.Bool("autopsy") {
		t.Errorf("Expected autopsy to default to false")
	}

	// Text fields default to empty
	if got := d.String("first_name"); got != "" {
		t.Errorf("Expected empty first_name, got %q", got)
	}

	// A freshly created draft is not dirty
	if d.Dirty() {
		t.Errorf("Expected new draft to be clean")
	}
}

func TestNewDraftFromExisting(t *testing.T) {
	existing := Fields{
		"first_name": "Juan",
		"last_name":  "Cruz",
		"autopsy":    true,
	}
	d := NewDraftFrom(TypeDeath, existing)

	if got := d.String("first_name"); got != "Juan" {
		t.Errorf("Expected first_name 'Juan', got %q", got)
	}
	if !d.Bool("autopsy") {
		t.Errorf("Expected autopsy true from existing record")
	}

	// Server-absent fields still get prefill defaults
	if got := d.String("citizenship"); got != "Filipino" {
		t.Errorf("Expected citizenship default for absent field, got %q", got)
	}

	// Edit mode starts clean: the snapshot is the loaded record
	if d.Dirty() {
		t.Errorf("Expected draft loaded from existing record to be clean")
	}
}

func TestSetReportsIdentityChange(t *testing.T) {
	d := NewDraft(TypeDeath)

	if !d.Set("first_name", "Juan") {
		t.Errorf("Expected identity change for first_name")
	}
	if d.Set("religion", "Catholic") {
		t.Errorf("Expected no identity change for religion")
	}

	// Setting the same identity value again is not a change
	if d.Set("first_name", "Juan") {
		t.Errorf("Expected no identity change when value is unchanged")
	}
}

func TestSetClearsFieldError(t *testing.T) {
	d := NewDraft(TypeDeath)
	d.SetErrors(map[string]string{"first_name": "required"})

	if d.Error("first_name") == "" {
		t.Fatalf("Expected error to be set")
	}

	d.Set("first_name", "Juan")

	if got := d.Error("first_name"); got != "" {
		t.Errorf("Expected error cleared after edit, got %q", got)
	}
}

func TestDirtyRevertsWhenValuesRestored(t *testing.T) {
	d := NewDraft(TypeDeath)

	d.Set("first_name", "Juan")
	if !d.Dirty() {
		t.Fatalf("Expected draft dirty after edit")
	}

	// Reverting to the original value makes the draft clean again
	d.Set("first_name", "")
	if d.Dirty() {
		t.Errorf("Expected draft clean after reverting edit")
	}
}

func TestDirtyWithPendingAttachment(t *testing.T) {
	d := NewDraft(TypeDeath)

	d.SetPendingAttachment(true)
	if !d.Dirty() {
		t.Errorf("Expected pending attachment to mark draft dirty")
	}

	d.SetPendingAttachment(false)
	if d.Dirty() {
		t.Errorf("Expected draft clean after attachment cleared")
	}
}

func TestCommitResetsState(t *testing.T) {
	d := NewDraft(TypeDeath)
	d.Set("first_name", "Juan")
	d.SetErrors(map[string]string{"last_name": "required"})
	d.SetPendingAttachment(true)

	canonical := Fields{
		"first_name": "Juan",
		"last_name":  "Cruz",
	}
	d.Commit(canonical)

	if d.Dirty() {
		t.Errorf("Expected committed draft to be clean")
	}
	if got := d.String("last_name"); got != "Cruz" {
		t.Errorf("Expected canonical last_name 'Cruz', got %q", got)
	}
	if len(d.Errors()) != 0 {
		t.Errorf("Expected errors cleared on commit, got %v", d.Errors())
	}
}

func TestFieldsCopyIsStable(t *testing.T) {
	d := NewDraft(TypeDeath)
	snapshot := d.Fields()

	d.Set("first_name", "Juan")

	// The copy taken before the edit must not observe it
	if got := snapshot.String("first_name"); got != "" {
		t.Errorf("Expected stable copy, got first_name=%q", got)
	}
}

func TestIdentityValues(t *testing.T) {
	d := NewDraft(TypeDeath)

	_, complete := d.IdentityValues()
	if complete {
		t.Errorf("Expected incomplete identity on empty draft")
	}

	d.Set("first_name", "Juan")
	d.Set("last_name", "Cruz")
	d.Set("date_of_birth", "1950-01-15")
	d.Set("date_of_death", "2024-03-02")

	values, complete := d.IdentityValues()
	if !complete {
		t.Errorf("Expected complete identity after all fields set")
	}
	if values["first_name"] != "Juan" || values["date_of_death"] != "2024-03-02" {
		t.Errorf("Unexpected identity values: %v", values)
	}
}
