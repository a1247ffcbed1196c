package domain

// AddictionCase is a health-domain case record for a person in an addiction
// treatment programme.
type AddictionCase struct {
	BaseModel
	FullName      string `gorm:"size:100;not null;index" json:"full_name" binding:"required,min=2,max=100"`
	Gender        string `gorm:"size:16;not null" json:"gender" binding:"required,oneof=female male"`
	BirthDate     Date   `json:"birth_date" binding:"required"`
	Substance     string `gorm:"size:32;not null" json:"substance" binding:"required,oneof=alcohol opioids cannabis stimulants sedatives other"`
	Status        string `gorm:"size:32;not null;index" json:"status" binding:"required,oneof=intake treatment recovery relapse closed"`
	AdmissionDate Date   `json:"admission_date" binding:"required"`
	Region        string `gorm:"size:100" json:"region" binding:"max=100"`
	Notes         string `gorm:"size:1000" json:"notes" binding:"max=1000"`
}

// Student is an education-domain record in the school retention programme.
type Student struct {
	BaseModel
	FullName      string `gorm:"size:100;not null;index" json:"full_name" binding:"required,min=2,max=100"`
	Gender        string `gorm:"size:16;not null" json:"gender" binding:"required,oneof=female male"`
	BirthDate     Date   `json:"birth_date" binding:"required"`
	School        string `gorm:"size:150;not null" json:"school" binding:"required,max=150"`
	Grade         int    `gorm:"not null" json:"grade" binding:"required,gte=1,lte=12"`
	Status        string `gorm:"size:32;not null;index" json:"status" binding:"required,oneof=enrolled at_risk dropped_out graduated"`
	GuardianPhone string `gorm:"size:20" json:"guardian_phone" binding:"omitempty,e164"`
}

// ElderlyBeneficiary is a social-justice record for an elderly person
// receiving a monthly allowance.
type ElderlyBeneficiary struct {
	BaseModel
	FullName        string `gorm:"size:100;not null;index" json:"full_name" binding:"required,min=2,max=100"`
	Gender          string `gorm:"size:16;not null" json:"gender" binding:"required,oneof=female male"`
	BirthDate       Date   `json:"birth_date" binding:"required"`
	NationalID      string `gorm:"size:32;uniqueIndex;not null" json:"national_id" binding:"required,alphanum,min=6,max=32"`
	Region          string `gorm:"size:100" json:"region" binding:"max=100"`
	LivingSituation string `gorm:"size:32;not null" json:"living_situation" binding:"required,oneof=alone family care_home"`
	// MonthlyAllowance is nil when no allowance is recorded. A null in an
	// update clears it.
	MonthlyAllowance *float64 `json:"monthly_allowance" binding:"omitempty,gte=0"`
	Status           string   `gorm:"size:32;not null;index" json:"status" binding:"required,oneof=active suspended closed"`
}
