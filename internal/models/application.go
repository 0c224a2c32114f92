package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/sma-admission-api/pkg/steps"
)

// ApplicationStatus tracks the admission lifecycle.
type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "DRAFT"
	ApplicationStatusSubmitted ApplicationStatus = "SUBMITTED"
	ApplicationStatusAccepted  ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
)

// Application is the authoritative admission record, filled in across eight
// steps. Progress is derived server-side after every mutation and is never
// accepted from a caller.
type Application struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"studentId"`
	UserID    string `db:"user_id" json:"userId"`
	SchoolID  string `db:"school_id" json:"schoolId"`

	// Step 0: identity.
	Surname   string `db:"surname" json:"surname"`
	FirstName string `db:"first_name" json:"firstName"`
	Email     string `db:"email" json:"email"`

	// Step 1: personal.
	DateOfBirth *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Nationality *string    `db:"nationality" json:"nationality,omitempty"`
	Sex         *string    `db:"sex" json:"sex,omitempty"`

	// Step 2: language and religion.
	LanguagesSpoken pq.StringArray `db:"languages_spoken" json:"languagesSpoken,omitempty"`
	Religion        *string        `db:"religion" json:"religion,omitempty"`

	// Step 3: ward.
	LivesWith          *string `db:"lives_with" json:"livesWith,omitempty"`
	GuardianName       *string `db:"guardian_name" json:"guardianName,omitempty"`
	GuardianOccupation *string `db:"guardian_occupation" json:"guardianOccupation,omitempty"`
	GuardianPhone      *string `db:"guardian_phone" json:"guardianPhone,omitempty"`

	// Step 4: contact and emergency.
	PostalAddress         *string `db:"postal_address" json:"postalAddress,omitempty"`
	ResidentialAddress    *string `db:"residential_address" json:"residentialAddress,omitempty"`
	Phone                 *string `db:"phone" json:"phone,omitempty"`
	EmergencyContactName  *string `db:"emergency_contact_name" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string `db:"emergency_contact_phone" json:"emergencyContactPhone,omitempty"`

	// Step 5: medical.
	BloodGroup  *string `db:"blood_group" json:"bloodGroup,omitempty"`
	Allergies   *string `db:"allergies" json:"allergies,omitempty"`
	DoctorName  *string `db:"doctor_name" json:"doctorName,omitempty"`
	DoctorPhone *string `db:"doctor_phone" json:"doctorPhone,omitempty"`

	// Step 7: declaration and fees.
	DeclarationAccepted bool    `db:"declaration_accepted" json:"declarationAccepted"`
	FeePaymentMethod    *string `db:"fee_payment_method" json:"feePaymentMethod,omitempty"`

	Progress int               `db:"progress" json:"progress"`
	Status   ApplicationStatus `db:"status" json:"status"`
	ClassID  *string           `db:"class_id" json:"classId,omitempty"`
	GradeID  *string           `db:"grade_id" json:"gradeId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Step 6: nested collections, loaded separately and replaced as a unit.
	PreviousSchools []PreviousSchool `db:"-" json:"previousSchools"`
	FamilyMembers   []FamilyMember   `db:"-" json:"familyMembers"`
}

// PreviousSchool is a child row owned by exactly one application.
type PreviousSchool struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"applicationId"`
	Name          string    `db:"name" json:"name"`
	Location      string    `db:"location" json:"location"`
	StartDate     time.Time `db:"start_date" json:"startDate"`
	EndDate       time.Time `db:"end_date" json:"endDate"`
}

// FamilyMember is a child row owned by exactly one application.
type FamilyMember struct {
	ID                 string `db:"id" json:"id"`
	ApplicationID      string `db:"application_id" json:"applicationId"`
	Relation           string `db:"relation" json:"relation"`
	Name               string `db:"name" json:"name"`
	PostalAddress      string `db:"postal_address" json:"postalAddress"`
	ResidentialAddress string `db:"residential_address" json:"residentialAddress"`
}

// ApplicationFilter captures back-office listing criteria.
type ApplicationFilter struct {
	SchoolID    string
	Status      ApplicationStatus
	ClassID     string
	MinProgress *int
	MaxProgress *int
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// AdmissionStats summarises applications for the back-office dashboard.
type AdmissionStats struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"byStatus"`
	AverageProgress float64        `json:"averageProgress"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}

// Values projects the record into the flat field view consumed by the step
// registry and progress calculator.
func (a *Application) Values() steps.Values {
	v := steps.Values{
		"surname":             a.Surname,
		"firstName":           a.FirstName,
		"email":               a.Email,
		"declarationAccepted": a.DeclarationAccepted,
	}
	if a.DateOfBirth != nil {
		v["dateOfBirth"] = *a.DateOfBirth
	}
	putString(v, "nationality", a.Nationality)
	putString(v, "sex", a.Sex)
	if len(a.LanguagesSpoken) > 0 {
		v["languagesSpoken"] = []string(a.LanguagesSpoken)
	}
	putString(v, "religion", a.Religion)
	putString(v, "livesWith", a.LivesWith)
	putString(v, "guardianName", a.GuardianName)
	putString(v, "guardianOccupation", a.GuardianOccupation)
	putString(v, "guardianPhone", a.GuardianPhone)
	putString(v, "postalAddress", a.PostalAddress)
	putString(v, "residentialAddress", a.ResidentialAddress)
	putString(v, "phone", a.Phone)
	putString(v, "emergencyContactName", a.EmergencyContactName)
	putString(v, "emergencyContactPhone", a.EmergencyContactPhone)
	putString(v, "bloodGroup", a.BloodGroup)
	putString(v, "allergies", a.Allergies)
	putString(v, "doctorName", a.DoctorName)
	putString(v, "doctorPhone", a.DoctorPhone)
	putString(v, "feePaymentMethod", a.FeePaymentMethod)

	schools := make([]steps.Values, 0, len(a.PreviousSchools))
	for _, s := range a.PreviousSchools {
		schools = append(schools, steps.Values{
			"name":      s.Name,
			"location":  s.Location,
			"startDate": s.StartDate,
			"endDate":   s.EndDate,
		})
	}
	if len(schools) > 0 {
		v["previousSchools"] = schools
	}

	members := make([]steps.Values, 0, len(a.FamilyMembers))
	for _, m := range a.FamilyMembers {
		members = append(members, steps.Values{
			"relation":           m.Relation,
			"name":               m.Name,
			"postalAddress":      m.PostalAddress,
			"residentialAddress": m.ResidentialAddress,
		})
	}
	if len(members) > 0 {
		v["familyMembers"] = members
	}

	return v
}

func putString(v steps.Values, key string, s *string) {
	if s != nil {
		v[key] = *s
	}
}
