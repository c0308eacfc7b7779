package intake

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/registradesk/registra/internal/notify"
	"github.com/registradesk/registra/internal/record"
)

// closeConfirmation builds the unsaved-change prompt for a dirty draft,
// with a unified diff of saved vs. draft values so the user can see what
// they would lose.
func closeConfirmation(d *record.Draft) notify.Confirmation {
	return notify.Confirmation{
		Title:    "Discard changes?",
		Message:  "You have unsaved changes. Close the form and discard them?",
		Detail:   changeSummary(d),
		YesLabel: "Discard",
		NoLabel:  "Keep editing",
	}
}

// changeSummary renders the draft's divergence from the last-committed
// snapshot as a unified diff, trimmed of file headers. Returns "" when the
// only pending change is out-of-band (nothing to diff).
func changeSummary(d *record.Draft) string {
	before := fieldLines(d.Type(), d.Snapshot())
	after := fieldLines(d.Type(), d.Fields())
	if before == after {
		return ""
	}

	diff := udiff.Unified("saved", "draft", before, after)

	var kept []string
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n")
}

// fieldLines renders a field set as one "label: value" line per non-empty
// field, in catalog order so the diff is stable. Unknown fields (server
// extras) follow, sorted by name.
func fieldLines(t record.Type, fields record.Fields) string {
	var b strings.Builder
	seen := make(map[string]bool)

	for _, step := range record.Steps(t) {
		for _, spec := range step.Fields {
			seen[spec.Name] = true
			switch spec.Kind {
			case record.FieldFlag:
				if fields.Bool(spec.Name) {
					fmt.Fprintf(&b, "%s: yes\n", spec.Label)
				}
			default:
				if v := fields.String(spec.Name); v != "" {
					fmt.Fprintf(&b, "%s: %s\n", spec.Label, v)
				}
			}
		}
	}

	var extras []string
	for _, name := range fields.Names() {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		if v := fields.String(name); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, v)
		}
	}

	return b.String()
}
