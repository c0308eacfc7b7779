package intake

import (
	"strings"
	"testing"

	"github.com/registradesk/registra/internal/record"
)

func TestChangeSummaryShowsEdits(t *testing.T) {
	d := record.NewDraft(record.TypeDeath)
	d.Set("first_name", "Juan")
	d.Set("citizenship", "American")

	summary := changeSummary(d)

	if !strings.Contains(summary, "+First Name: Juan") {
		t.Errorf("Expected added line for first_name, got:\n%s", summary)
	}
	if !strings.Contains(summary, "-Citizenship: Filipino") {
		t.Errorf("Expected removed line for the old citizenship, got:\n%s", summary)
	}
	if !strings.Contains(summary, "+Citizenship: American") {
		t.Errorf("Expected added line for the new citizenship, got:\n%s", summary)
	}

	// File headers are stripped from the unified diff
	if strings.Contains(summary, "---") || strings.Contains(summary, "+++") {
		t.Errorf("Expected diff headers stripped, got:\n%s", summary)
	}
}

func TestChangeSummaryEmptyForCleanDraft(t *testing.T) {
	d := record.NewDraft(record.TypeDeath)
	if got := changeSummary(d); got != "" {
		t.Errorf("Expected empty summary for clean draft, got:\n%s", got)
	}
}

func TestChangeSummaryIgnoresOutOfBandChanges(t *testing.T) {
	d := record.NewDraft(record.TypeDeath)
	d.SetPendingAttachment(true)

	// Dirty, but nothing to diff
	if !d.Dirty() {
		t.Fatalf("Expected dirty draft")
	}
	if got := changeSummary(d); got != "" {
		t.Errorf("Expected empty summary for attachment-only change, got:\n%s", got)
	}
}

func TestCloseConfirmationLabels(t *testing.T) {
	d := record.NewDraft(record.TypeDeath)
	d.Set("first_name", "Juan")

	c := closeConfirmation(d)
	if c.Title != "Discard changes?" {
		t.Errorf("Unexpected title: %q", c.Title)
	}
	if c.YesLabel != "Discard" || c.NoLabel != "Keep editing" {
		t.Errorf("Unexpected button labels: %q / %q", c.YesLabel, c.NoLabel)
	}
	if c.Detail == "" {
		t.Errorf("Expected change summary in detail")
	}
}

func TestFieldLinesFlagRendering(t *testing.T) {
	fields := record.Fields{
		"first_name": "Juan",
		"autopsy":    true,
	}
	lines := fieldLines(record.TypeDeath, fields)

	if !strings.Contains(lines, "First Name: Juan") {
		t.Errorf("Expected labeled text line, got:\n%s", lines)
	}
	if !strings.Contains(lines, "Autopsy Performed: yes") {
		t.Errorf("Expected flag rendered as yes, got:\n%s", lines)
	}

	// False flags and empty fields are omitted
	if strings.Contains(lines, "Middle Name") {
		t.Errorf("Expected empty fields omitted, got:\n%s", lines)
	}
}
