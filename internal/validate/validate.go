// Package validate implements the per-step validation rules for record
// drafts. Validation is pure: no I/O, deterministic for a given draft.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/registradesk/registra/internal/record"
)

// ErrorMap maps field name to a human-readable validation message.
// An empty map means the step passed.
type ErrorMap map[string]string

// OK reports whether validation passed.
func (e ErrorMap) OK() bool {
	return len(e) == 0
}

// Aggregate builds the single checklist message listing every failing rule
// for a step, in catalog field order. Field-level marking and the aggregate
// message are both intentional: the aggregate is the checklist, the
// field-level errors focus attention.
func (e ErrorMap) Aggregate(t record.Type, stepNumber int) string {
	if len(e) == 0 {
		return ""
	}

	var lines []string
	seen := make(map[string]bool)
	for _, step := range record.Steps(t) {
		if step.Number != stepNumber && stepNumber != 0 {
			continue
		}
		for _, f := range step.Fields {
			if msg, ok := e[f.Name]; ok {
				lines = append(lines, fmt.Sprintf("• %s: %s", f.Label, msg))
				seen[f.Name] = true
			}
		}
	}

	// Server-injected errors may name fields outside the catalog.
	var extra []string
	for name, msg := range e {
		if !seen[name] {
			extra = append(extra, fmt.Sprintf("• %s: %s", record.LabelFor(t, name), msg))
		}
	}
	sort.Strings(extra)
	lines = append(lines, extra...)

	return "Please correct the following:\n" + strings.Join(lines, "\n")
}

// Step validates one step of a draft and returns the error map.
func Step(t record.Type, stepNumber int, d record.Fields) ErrorMap {
	errs := make(ErrorMap)

	var step record.Step
	found := false
	for _, s := range record.Steps(t) {
		if s.Number == stepNumber {
			step = s
			found = true
			break
		}
	}
	if !found {
		return errs
	}

	for _, f := range step.Fields {
		checkField(f, d, errs)
	}

	for _, r := range conditionalRules[t] {
		if r.step != stepNumber {
			continue
		}
		if _, dup := errs[r.field]; dup {
			continue
		}
		if msg := r.check(d); msg != "" {
			errs[r.field] = msg
		}
	}

	return errs
}

// All validates every step in order. Returns the number of the first
// failing step and its error map, or (0, empty) when all steps pass.
func All(t record.Type, d record.Fields) (int, ErrorMap) {
	for _, step := range record.Steps(t) {
		if errs := Step(t, step.Number, d); !errs.OK() {
			return step.Number, errs
		}
	}
	return 0, make(ErrorMap)
}

// checkField applies the generic rules derived from the field spec.
func checkField(f record.FieldSpec, d record.Fields, errs ErrorMap) {
	value := strings.TrimSpace(d.String(f.Name))

	if f.Required && value == "" {
		errs[f.Name] = "required"
		return
	}
	if value == "" {
		return
	}

	switch f.Kind {
	case record.FieldDate:
		if _, err := time.Parse(record.DateLayout, value); err != nil {
			errs[f.Name] = "must be a valid date (YYYY-MM-DD)"
		}
	case record.FieldSelect:
		for _, opt := range f.Options {
			if value == opt {
				return
			}
		}
		errs[f.Name] = fmt.Sprintf("must be one of: %s", strings.Join(f.Options, ", "))
	}
}

// rule is a conditional requirement evaluated against the whole draft.
type rule struct {
	step  int
	field string
	check func(d record.Fields) string
}

var conditionalRules = map[record.Type][]rule{
	record.TypeDeath: {
		{step: 1, field: "date_of_death", check: deathAfterBirth},
		{step: 3, field: "attendant_other", check: requiredWhenEquals("attendant", "Other", "attendant_other", "required when attendant is Other")},
		{step: 4, field: "maternal_condition", check: maternalConditionRequired},
	},
	record.TypeMarriage: {
		{step: 3, field: "ceremony_type_other", check: requiredWhenEquals("ceremony_type", "Other", "ceremony_type_other", "required when ceremony type is Other")},
		{step: 4, field: "husband_consent_giver", check: consentRequired("husband_date_of_birth", "husband_consent_giver")},
		{step: 4, field: "husband_consent_relationship", check: consentRequired("husband_date_of_birth", "husband_consent_relationship")},
		{step: 4, field: "wife_consent_giver", check: consentRequired("wife_date_of_birth", "wife_consent_giver")},
		{step: 4, field: "wife_consent_relationship", check: consentRequired("wife_date_of_birth", "wife_consent_relationship")},
	},
}

// requiredWhenEquals makes target required when selector holds trigger.
func requiredWhenEquals(selector, trigger, target, msg string) func(record.Fields) string {
	return func(d record.Fields) string {
		if d.String(selector) == trigger && strings.TrimSpace(d.String(target)) == "" {
			return msg
		}
		return ""
	}
}

// deathAfterBirth rejects a date of death earlier than the date of birth.
// Only fires once both dates parse; format errors are caught by the
// generic date rule.
func deathAfterBirth(d record.Fields) string {
	birth, err1 := time.Parse(record.DateLayout, d.String("date_of_birth"))
	death, err2 := time.Parse(record.DateLayout, d.String("date_of_death"))
	if err1 != nil || err2 != nil {
		return ""
	}
	if death.Before(birth) {
		return "cannot be before date of birth"
	}
	return ""
}

// maternalConditionRequired unlocks the maternal-condition selector for
// female decedents of reproductive age (15-49 at death).
func maternalConditionRequired(d record.Fields) string {
	if d.String("sex") != "Female" {
		return ""
	}
	age := record.AgeAt(d.String("date_of_birth"), d.String("date_of_death"))
	if age >= 15 && age <= 49 && strings.TrimSpace(d.String("maternal_condition")) == "" {
		return "required for female decedents aged 15-49"
	}
	return ""
}

// consentRequired makes the consent fields required when the party was
// under 21 on the date of marriage.
func consentRequired(birthField, target string) func(record.Fields) string {
	return func(d record.Fields) string {
		age := record.AgeAt(d.String(birthField), d.String("date_of_marriage"))
		if age >= 0 && age < 21 && strings.TrimSpace(d.String(target)) == "" {
			return "required for a party under 21"
		}
		return ""
	}
}
