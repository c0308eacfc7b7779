package record

import (
	"github.com/registradesk/registra/internal/logger"
)

// Draft is the in-progress field set for one record being added or edited.
// It is the single source of truth for the wizard session: current values,
// field-level validation errors, and the last-committed snapshot used for
// unsaved-change detection.
type Draft struct {
	typ      Type
	fields   Fields
	snapshot Fields
	errors   map[string]string

	// Pending out-of-band change that cannot be diffed structurally
	// (e.g. a document attachment queued for upload).
	pendingAttachment bool
}

// NewDraft creates a draft for add mode: every catalog field present with
// its prefill default (empty string, declared default, or false).
func NewDraft(t Type) *Draft {
	d := &Draft{
		typ:    t,
		fields: defaults(t),
		errors: make(map[string]string),
	}
	d.snapshot = d.fields.Clone()
	return d
}

// NewDraftFrom creates a draft for edit mode, pre-populated by copying an
// existing record's fields. Server-absent fields get prefill defaults so
// every catalog field is present.
func NewDraftFrom(t Type, existing Fields) *Draft {
	fields := defaults(t)
	for k, v := range existing {
		fields[k] = v
	}
	d := &Draft{
		typ:    t,
		fields: fields,
		errors: make(map[string]string),
	}
	d.snapshot = d.fields.Clone()
	return d
}

// defaults builds the prefill field map for a record type.
func defaults(t Type) Fields {
	fields := make(Fields)
	for _, step := range Steps(t) {
		for _, f := range step.Fields {
			switch f.Kind {
			case FieldFlag:
				fields[f.Name] = false
			default:
				fields[f.Name] = f.Default
			}
		}
	}
	return fields
}

// Type returns the record type of this draft.
func (d *Draft) Type() Type {
	return d.typ
}

// Fields returns a copy of the current field values.
func (d *Draft) Fields() Fields {
	return d.fields.Clone()
}

// String returns the string value of a field.
func (d *Draft) String(name string) string {
	return d.fields.String(name)
}

// Bool returns the boolean value of a field.
func (d *Draft) Bool(name string) bool {
	return d.fields.Bool(name)
}

// Set replaces one field value. The previous field map is never mutated;
// callers holding a Fields() copy see a stable view. Setting a field clears
// its validation error. Returns true if the field is part of the identity
// subset and its value changed, which should schedule a duplicate probe.
func (d *Draft) Set(name string, value any) bool {
	spec, known := SpecFor(d.typ, name)
	if !known {
		// Unknown names are accepted; a field the catalog doesn't know
		// about points at a caller bug worth seeing in the logs.
		logger.Warn("Draft.Set: unknown field %q on %s record", name, d.typ)
	}

	next := d.fields.Clone()
	prev := next[name]
	next[name] = value
	d.fields = next

	delete(d.errors, name)

	return known && spec.Identity && prev != value
}

// Errors returns a copy of the current field-level validation errors.
func (d *Draft) Errors() map[string]string {
	out := make(map[string]string, len(d.errors))
	for k, v := range d.errors {
		out[k] = v
	}
	return out
}

// Error returns the validation error for one field, or "".
func (d *Draft) Error(name string) string {
	return d.errors[name]
}

// SetErrors merges field-level errors into the draft, replacing any
// existing message for the same field. Used for both client validation
// results and authoritative server-side errors.
func (d *Draft) SetErrors(errs map[string]string) {
	for k, v := range errs {
		d.errors[k] = v
	}
}

// ClearErrors removes all field-level errors.
func (d *Draft) ClearErrors() {
	d.errors = make(map[string]string)
}

// IdentityValues returns the identity fields as trimmed strings, and
// whether all of them are non-empty.
func (d *Draft) IdentityValues() (map[string]string, bool) {
	values := make(map[string]string)
	complete := true
	for _, name := range IdentityFields(d.typ) {
		v := d.fields.String(name)
		values[name] = v
		if v == "" {
			complete = false
		}
	}
	return values, complete
}

// SetPendingAttachment marks or clears an out-of-band pending change.
func (d *Draft) SetPendingAttachment(pending bool) {
	d.pendingAttachment = pending
}

// Dirty reports whether the draft diverges from the last-committed
// snapshot. Computed structurally on every call, never cached: the user may
// have reverted all edits back to the original values.
func (d *Draft) Dirty() bool {
	if d.pendingAttachment {
		return true
	}
	return !d.fields.Equal(d.snapshot)
}

// Snapshot returns a copy of the last-committed field values.
func (d *Draft) Snapshot() Fields {
	return d.snapshot.Clone()
}

// Commit replaces the last-committed snapshot with the canonical field
// values returned by the registry and resets the dirty state.
func (d *Draft) Commit(canonical Fields) {
	fields := defaults(d.typ)
	for k, v := range canonical {
		fields[k] = v
	}
	d.fields = fields
	d.snapshot = fields.Clone()
	d.pendingAttachment = false
	d.errors = make(map[string]string)
}
