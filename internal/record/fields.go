package record

// FieldKind describes how a field is entered and validated.
type FieldKind int

const (
	FieldText   FieldKind = iota // Free text input
	FieldDate                    // ISO date (YYYY-MM-DD)
	FieldSelect                  // One of a fixed option list
	FieldFlag                    // Boolean toggle
)

// FieldSpec describes one field owned by a wizard step.
type FieldSpec struct {
	Name     string
	Label    string
	Kind     FieldKind
	Options  []string // For FieldSelect
	Required bool
	Identity bool   // Part of the duplicate-detection identity subset
	Default  string // Prefill value for add mode and server-absent fields
	Editor   bool   // Free text editable via $EDITOR
}

// Step is one ordered step of the intake wizard for a record type.
// Steps are numbered 1..N and statically ordered.
type Step struct {
	Number int
	Title  string
	Fields []FieldSpec
}

// Common option lists.
var (
	sexOptions         = []string{"Male", "Female"}
	civilStatusOptions = []string{"Single", "Married", "Widowed", "Divorced", "Separated"}
	attendantOptions   = []string{"Private Physician", "Public Health Officer", "Hospital Authority", "Nurse", "Midwife", "Traditional Hilot", "Other"}
	mannerOptions      = []string{"Natural", "Accident", "Homicide", "Suicide", "Undetermined"}
	maternalOptions    = []string{"None", "Pregnant, not in labour", "Pregnant, in labour", "Less than 42 days after delivery", "42 days to 1 year after delivery", "Unknown"}
	ceremonyOptions    = []string{"Religious", "Civil", "Tribal", "Other"}
)

var deathSteps = []Step{
	{Number: 1, Title: "Decedent", Fields: []FieldSpec{
		{Name: "first_name", Label: "First Name", Kind: FieldText, Required: true, Identity: true},
		{Name: "middle_name", Label: "Middle Name", Kind: FieldText},
		{Name: "last_name", Label: "Last Name", Kind: FieldText, Required: true, Identity: true},
		{Name: "sex", Label: "Sex", Kind: FieldSelect, Options: sexOptions, Required: true},
		{Name: "date_of_birth", Label: "Date of Birth", Kind: FieldDate, Required: true, Identity: true},
		{Name: "date_of_death", Label: "Date of Death", Kind: FieldDate, Required: true, Identity: true},
	}},
	{Number: 2, Title: "Personal Circumstances", Fields: []FieldSpec{
		{Name: "citizenship", Label: "Citizenship", Kind: FieldText, Default: "Filipino"},
		{Name: "civil_status", Label: "Civil Status", Kind: FieldSelect, Options: civilStatusOptions, Required: true},
		{Name: "religion", Label: "Religion", Kind: FieldText},
		{Name: "occupation", Label: "Occupation", Kind: FieldText},
		{Name: "residence", Label: "Residence", Kind: FieldText, Required: true},
	}},
	{Number: 3, Title: "Death Particulars", Fields: []FieldSpec{
		{Name: "place_of_death", Label: "Place of Death", Kind: FieldText, Required: true},
		{Name: "cause_of_death", Label: "Cause of Death", Kind: FieldText, Required: true},
		{Name: "attendant", Label: "Attendant", Kind: FieldSelect, Options: attendantOptions, Required: true},
		{Name: "attendant_other", Label: "Attendant (specify)", Kind: FieldText},
		{Name: "autopsy", Label: "Autopsy Performed", Kind: FieldFlag},
	}},
	{Number: 4, Title: "Medical Certification", Fields: []FieldSpec{
		{Name: "manner_of_death", Label: "Manner of Death", Kind: FieldSelect, Options: mannerOptions, Required: true},
		{Name: "external_cause", Label: "External Cause", Kind: FieldText},
		{Name: "maternal_condition", Label: "Maternal Condition", Kind: FieldSelect, Options: maternalOptions},
	}},
	{Number: 5, Title: "Informant", Fields: []FieldSpec{
		{Name: "informant_name", Label: "Informant Name", Kind: FieldText, Required: true},
		{Name: "informant_relationship", Label: "Relationship to Decedent", Kind: FieldText, Required: true},
		{Name: "informant_address", Label: "Informant Address", Kind: FieldText, Required: true},
	}},
	{Number: 6, Title: "Registration", Fields: []FieldSpec{
		{Name: "date_of_registration", Label: "Date of Registration", Kind: FieldDate, Required: true},
		{Name: "prepared_by", Label: "Prepared By", Kind: FieldText, Required: true},
		{Name: "remarks", Label: "Remarks", Kind: FieldText, Editor: true},
	}},
}

var marriageSteps = []Step{
	{Number: 1, Title: "Husband", Fields: []FieldSpec{
		{Name: "husband_first_name", Label: "First Name", Kind: FieldText, Required: true, Identity: true},
		{Name: "husband_middle_name", Label: "Middle Name", Kind: FieldText},
		{Name: "husband_last_name", Label: "Last Name", Kind: FieldText, Required: true, Identity: true},
		{Name: "husband_date_of_birth", Label: "Date of Birth", Kind: FieldDate, Required: true},
		{Name: "husband_citizenship", Label: "Citizenship", Kind: FieldText, Default: "Filipino"},
		{Name: "husband_civil_status", Label: "Civil Status", Kind: FieldSelect, Options: civilStatusOptions, Required: true},
	}},
	{Number: 2, Title: "Wife", Fields: []FieldSpec{
		{Name: "wife_first_name", Label: "First Name", Kind: FieldText, Required: true, Identity: true},
		{Name: "wife_middle_name", Label: "Middle Name", Kind: FieldText},
		{Name: "wife_last_name", Label: "Last Name", Kind: FieldText, Required: true, Identity: true},
		{Name: "wife_date_of_birth", Label: "Date of Birth", Kind: FieldDate, Required: true},
		{Name: "wife_citizenship", Label: "Citizenship", Kind: FieldText, Default: "Filipino"},
		{Name: "wife_civil_status", Label: "Civil Status", Kind: FieldSelect, Options: civilStatusOptions, Required: true},
	}},
	{Number: 3, Title: "Marriage Particulars", Fields: []FieldSpec{
		{Name: "date_of_marriage", Label: "Date of Marriage", Kind: FieldDate, Required: true, Identity: true},
		{Name: "place_of_marriage", Label: "Place of Marriage", Kind: FieldText, Required: true},
		{Name: "ceremony_type", Label: "Ceremony Type", Kind: FieldSelect, Options: ceremonyOptions, Required: true},
		{Name: "ceremony_type_other", Label: "Ceremony Type (specify)", Kind: FieldText},
		{Name: "license_number", Label: "Marriage License No.", Kind: FieldText, Required: true},
	}},
	{Number: 4, Title: "Consent", Fields: []FieldSpec{
		{Name: "husband_consent_giver", Label: "Consent Giver (Husband)", Kind: FieldText},
		{Name: "husband_consent_relationship", Label: "Relationship (Husband)", Kind: FieldText},
		{Name: "wife_consent_giver", Label: "Consent Giver (Wife)", Kind: FieldText},
		{Name: "wife_consent_relationship", Label: "Relationship (Wife)", Kind: FieldText},
	}},
	{Number: 5, Title: "Witnesses", Fields: []FieldSpec{
		{Name: "witness_one_name", Label: "First Witness", Kind: FieldText, Required: true},
		{Name: "witness_two_name", Label: "Second Witness", Kind: FieldText, Required: true},
		{Name: "solemnizing_officer", Label: "Solemnizing Officer", Kind: FieldText, Required: true},
	}},
	{Number: 6, Title: "Registration", Fields: []FieldSpec{
		{Name: "date_of_registration", Label: "Date of Registration", Kind: FieldDate, Required: true},
		{Name: "prepared_by", Label: "Prepared By", Kind: FieldText, Required: true},
		{Name: "remarks", Label: "Remarks", Kind: FieldText, Editor: true},
	}},
}

// Steps returns the ordered step catalog for a record type.
func Steps(t Type) []Step {
	switch t {
	case TypeDeath:
		return deathSteps
	case TypeMarriage:
		return marriageSteps
	}
	return nil
}

// StepCount returns the number of steps for a record type.
func StepCount(t Type) int {
	return len(Steps(t))
}

// IdentityFields returns the field names that define "the same real-world
// event" for duplicate detection, in catalog order.
func IdentityFields(t Type) []string {
	var names []string
	for _, step := range Steps(t) {
		for _, f := range step.Fields {
			if f.Identity {
				names = append(names, f.Name)
			}
		}
	}
	return names
}

// SpecFor looks up the field spec for a field name within a record type.
func SpecFor(t Type, name string) (FieldSpec, bool) {
	for _, step := range Steps(t) {
		for _, f := range step.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return FieldSpec{}, false
}

// LabelFor returns the human-readable label for a field, falling back to the
// raw field name for unknown fields.
func LabelFor(t Type, name string) string {
	if spec, ok := SpecFor(t, name); ok {
		return spec.Label
	}
	return name
}
