package validate

import (
	"strings"
	"testing"

	"github.com/registradesk/registra/internal/record"
)

// validDeathStep1 returns fields passing the decedent step.
func validDeathStep1() record.Fields {
	return record.Fields{
		"first_name":    "Juan",
		"last_name":     "Cruz",
		"sex":           "Male",
		"date_of_birth": "1950-01-15",
		"date_of_death": "2024-03-02",
	}
}

func TestStepRequiredFields(t *testing.T) {
	fields := validDeathStep1()
	delete(fields, "date_of_birth")

	errs := Step(record.TypeDeath, 1, fields)
	if errs.OK() {
		t.Fatalf("Expected step 1 to fail without date_of_birth")
	}
	if got := errs["date_of_birth"]; got != "required" {
		t.Errorf("Expected 'required' for date_of_birth, got %q", got)
	}

	// Only the missing field is flagged
	if len(errs) != 1 {
		t.Errorf("Expected exactly one error, got %v", errs)
	}
}

func TestStepPassesWhenComplete(t *testing.T) {
	if errs := Step(record.TypeDeath, 1, validDeathStep1()); !errs.OK() {
		t.Errorf("Expected step 1 to pass, got %v", errs)
	}
}

func TestStepDateFormat(t *testing.T) {
	fields := validDeathStep1()
	fields["date_of_birth"] = "15/01/1950"

	errs := Step(record.TypeDeath, 1, fields)
	if got := errs["date_of_birth"]; got != "must be a valid date (YYYY-MM-DD)" {
		t.Errorf("Expected date format error, got %q", got)
	}
}

func TestStepSelectOption(t *testing.T) {
	fields := validDeathStep1()
	fields["sex"] = "Unknown"

	errs := Step(record.TypeDeath, 1, fields)
	if !strings.HasPrefix(errs["sex"], "must be one of:") {
		t.Errorf("Expected option error for sex, got %q", errs["sex"])
	}
}

func TestDeathBeforeBirth(t *testing.T) {
	fields := validDeathStep1()
	fields["date_of_birth"] = "2024-03-02"
	fields["date_of_death"] = "1950-01-15"

	errs := Step(record.TypeDeath, 1, fields)
	if got := errs["date_of_death"]; got != "cannot be before date of birth" {
		t.Errorf("Expected ordering error, got %q", got)
	}
}

func TestAttendantOtherRequiresSpecify(t *testing.T) {
	fields := record.Fields{
		"place_of_death": "Manila",
		"cause_of_death": "Cardiac arrest",
		"attendant":      "Other",
	}
	errs := Step(record.TypeDeath, 3, fields)
	if got := errs["attendant_other"]; got != "required when attendant is Other" {
		t.Errorf("Expected conditional requirement, got %q", got)
	}

	// Any other attendant leaves the specify field optional
	fields["attendant"] = "Nurse"
	errs = Step(record.TypeDeath, 3, fields)
	if _, ok := errs["attendant_other"]; ok {
		t.Errorf("Expected no attendant_other error for non-Other attendant")
	}
}

func TestMaternalConditionRule(t *testing.T) {
	tests := []struct {
		name     string
		sex      string
		birth    string
		death    string
		value    string
		wantFail bool
	}{
		{"female in range missing", "Female", "1990-01-01", "2024-01-01", "", true},
		{"female in range provided", "Female", "1990-01-01", "2024-01-01", "None", false},
		{"female too young", "Female", "2015-01-01", "2024-01-01", "", false},
		{"female too old", "Female", "1950-01-01", "2024-01-01", "", false},
		{"male in range", "Male", "1990-01-01", "2024-01-01", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := record.Fields{
				"sex":                tt.sex,
				"date_of_birth":      tt.birth,
				"date_of_death":      tt.death,
				"manner_of_death":    "Natural",
				"maternal_condition": tt.value,
			}
			errs := Step(record.TypeDeath, 4, fields)
			_, failed := errs["maternal_condition"]
			if failed != tt.wantFail {
				t.Errorf("maternal_condition failed=%v, want %v (errs=%v)", failed, tt.wantFail, errs)
			}
		})
	}
}

func TestConsentRequiredUnder21(t *testing.T) {
	fields := record.Fields{
		"husband_date_of_birth": "2005-06-01",
		"wife_date_of_birth":    "1995-06-01",
		"date_of_marriage":      "2024-01-15",
	}

	errs := Step(record.TypeMarriage, 4, fields)
	if _, ok := errs["husband_consent_giver"]; !ok {
		t.Errorf("Expected consent giver required for 18-year-old husband")
	}
	if _, ok := errs["husband_consent_relationship"]; !ok {
		t.Errorf("Expected consent relationship required for 18-year-old husband")
	}
	if _, ok := errs["wife_consent_giver"]; ok {
		t.Errorf("Expected no consent requirement for 28-year-old wife")
	}

	// Filled consent fields satisfy the rule
	fields["husband_consent_giver"] = "Pedro Cruz"
	fields["husband_consent_relationship"] = "Father"
	errs = Step(record.TypeMarriage, 4, fields)
	if !errs.OK() {
		t.Errorf("Expected consent step to pass, got %v", errs)
	}
}

func TestCeremonyOtherRequiresSpecify(t *testing.T) {
	fields := record.Fields{
		"date_of_marriage":  "2024-01-15",
		"place_of_marriage": "Quezon City",
		"ceremony_type":     "Other",
		"license_number":    "ML-2024-0001",
	}
	errs := Step(record.TypeMarriage, 3, fields)
	if got := errs["ceremony_type_other"]; got != "required when ceremony type is Other" {
		t.Errorf("Expected ceremony conditional requirement, got %q", got)
	}
}

func TestAllReturnsFirstFailingStep(t *testing.T) {
	// Step 1 valid, step 2 missing residence
	fields := validDeathStep1()
	fields["civil_status"] = "Married"

	stepNo, errs := All(record.TypeDeath, fields)
	if stepNo != 2 {
		t.Errorf("Expected first failing step 2, got %d", stepNo)
	}
	if _, ok := errs["residence"]; !ok {
		t.Errorf("Expected residence error, got %v", errs)
	}
}

func TestAggregateMessage(t *testing.T) {
	fields := record.Fields{"last_name": "Cruz"}
	errs := Step(record.TypeDeath, 1, fields)

	msg := errs.Aggregate(record.TypeDeath, 1)
	if !strings.HasPrefix(msg, "Please correct the following:") {
		t.Errorf("Unexpected aggregate prefix: %q", msg)
	}
	if !strings.Contains(msg, "• First Name: required") {
		t.Errorf("Expected labeled line for first_name, got %q", msg)
	}

	// Catalog order: First Name before Sex before dates
	first := strings.Index(msg, "First Name")
	sex := strings.Index(msg, "Sex")
	if first == -1 || sex == -1 || first > sex {
		t.Errorf("Expected catalog ordering in aggregate, got %q", msg)
	}
}

func TestAggregateEmptyForCleanMap(t *testing.T) {
	if msg := (ErrorMap{}).Aggregate(record.TypeDeath, 1); msg != "" {
		t.Errorf("Expected empty aggregate, got %q", msg)
	}
}

func TestAggregateUnknownFieldFallsBackToName(t *testing.T) {
	errs := ErrorMap{"some_server_field": "rejected"}
	msg := errs.Aggregate(record.TypeDeath, 0)
	if !strings.Contains(msg, "• some_server_field: rejected") {
		t.Errorf("Expected raw name for unknown field, got %q", msg)
	}
}
