package catalog

import "github.com/simp-lee/casedesk/internal/schema"

// Field sets mirror the binding tags on the domain types; the server stays
// authoritative.

var (
	genders = []string{"female", "male"}

	fullName  = schema.Field{Name: "full_name", Label: "Full name", Kind: schema.String, Required: true, Rule: "min=2,max=100", Searchable: true}
	gender    = schema.Field{Name: "gender", Label: "Gender", Kind: schema.Enum, Required: true, Options: genders, Filterable: true}
	birthDate = schema.Field{Name: "birth_date", Label: "Birth date", Kind: schema.Date, Required: true}
	region    = schema.Field{Name: "region", Label: "Region", Kind: schema.String, Rule: "max=100", Searchable: true}
)

var addictionCaseSchema = schema.New("addiction_cases",
	fullName,
	gender,
	birthDate,
	schema.Field{
		Name: "substance", Label: "Substance", Kind: schema.Enum, Required: true, Filterable: true,
		Options: []string{"alcohol", "opioids", "cannabis", "stimulants", "sedatives", "other"},
	},
	schema.Field{
		Name: "status", Label: "Status", Kind: schema.Enum, Required: true, Filterable: true, Default: "intake",
		Options: []string{"intake", "treatment", "recovery", "relapse", "closed"},
	},
	schema.Field{Name: "admission_date", Label: "Admitted", Kind: schema.Date, Required: true},
	region,
	schema.Field{Name: "notes", Label: "Notes", Kind: schema.String, Rule: "max=1000"},
)

var studentSchema = schema.New("students",
	fullName,
	gender,
	birthDate,
	schema.Field{Name: "school", Label: "School", Kind: schema.String, Required: true, Rule: "max=150", Searchable: true},
	schema.Field{Name: "grade", Label: "Grade", Kind: schema.Integer, Required: true, Rule: "gte=1,lte=12"},
	schema.Field{
		Name: "status", Label: "Status", Kind: schema.Enum, Required: true, Filterable: true, Default: "enrolled",
		Options: []string{"enrolled", "at_risk", "dropped_out", "graduated"},
	},
	schema.Field{Name: "guardian_phone", Label: "Guardian phone", Kind: schema.String, Rule: "e164"},
)

var elderlyBeneficiarySchema = schema.New("elderly_beneficiaries",
	fullName,
	gender,
	birthDate,
	schema.Field{Name: "national_id", Label: "National ID", Kind: schema.String, Required: true, Rule: "alphanum,min=6,max=32", Searchable: true},
	region,
	schema.Field{
		Name: "living_situation", Label: "Living situation", Kind: schema.Enum, Required: true, Filterable: true,
		Options: []string{"alone", "family", "care_home"},
	},
	schema.Field{Name: "monthly_allowance", Label: "Allowance", Kind: schema.Number, Rule: "gte=0", Default: "0"},
	schema.Field{
		Name: "status", Label: "Status", Kind: schema.Enum, Required: true, Filterable: true, Default: "active",
		Options: []string{"active", "suspended", "closed"},
	},
)
