package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-admission-api/internal/models"
	appErrors "github.com/noah-isme/sma-admission-api/pkg/errors"
	"github.com/noah-isme/sma-admission-api/pkg/export"
	"github.com/noah-isme/sma-admission-api/pkg/steps"
)

type applicationRepository interface {
	CreateWithIdentity(ctx context.Context, user *models.User, student *models.Student, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindComposite(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	SaveStep(ctx context.Context, app *models.Application, identity *models.User, schools *[]models.PreviousSchool, members *[]models.FamilyMember, recompute func(*models.Application) int) (*models.Application, error)
	UpdateAssignment(ctx context.Context, appID, studentID, classID string, gradeID *string) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, schoolID string) (*models.AdmissionStats, error)
}

type classResolver interface {
	Get(ctx context.Context, id string) (*models.Class, error)
	SelectGrade(class *models.Class, requestedGradeID string) (*models.Grade, error)
}

// CreateApplicationRequest carries the step-0 identity payload.
type CreateApplicationRequest struct {
	Surname   string  `json:"surname" validate:"required"`
	FirstName string  `json:"firstName" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	ClassID   *string `json:"classId"`
}

// CreateApplicationResult identifies the freshly created admission.
type CreateApplicationResult struct {
	ApplicationID string `json:"applicationId"`
	StudentID     string `json:"studentId"`
}

// PreviousSchoolInput is the wire shape of one previous-school row.
type PreviousSchoolInput struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// FamilyMemberInput is the wire shape of one family-member row.
type FamilyMemberInput struct {
	Relation           string `json:"relation"`
	Name               string `json:"name"`
	PostalAddress      string `json:"postalAddress"`
	ResidentialAddress string `json:"residentialAddress"`
}

// UpdateStepRequest is a partial step payload. Every field is a pointer:
// nil means "not in this request" and leaves the stored value untouched,
// which for the nested collections is the contract that distinguishes
// "leave unchanged" from "clear all rows".
type UpdateStepRequest struct {
	Step *int `json:"step"`

	Surname   *string `json:"surname"`
	FirstName *string `json:"firstName"`
	Email     *string `json:"email"`

	DateOfBirth *string `json:"dateOfBirth"`
	Nationality *string `json:"nationality"`
	Sex         *string `json:"sex"`

	LanguagesSpoken *[]string `json:"languagesSpoken"`
	Religion        *string   `json:"religion"`

	LivesWith          *string `json:"livesWith"`
	GuardianName       *string `json:"guardianName"`
	GuardianOccupation *string `json:"guardianOccupation"`
	GuardianPhone      *string `json:"guardianPhone"`

	PostalAddress         *string `json:"postalAddress"`
	ResidentialAddress    *string `json:"residentialAddress"`
	Phone                 *string `json:"phone"`
	EmergencyContactName  *string `json:"emergencyContactName"`
	EmergencyContactPhone *string `json:"emergencyContactPhone"`

	BloodGroup  *string `json:"bloodGroup"`
	Allergies   *string `json:"allergies"`
	DoctorName  *string `json:"doctorName"`
	DoctorPhone *string `json:"doctorPhone"`

	DeclarationAccepted *bool   `json:"declarationAccepted"`
	FeePaymentMethod    *string `json:"feePaymentMethod"`

	ClassID *string `json:"classId"`

	PreviousSchools *[]PreviousSchoolInput `json:"previousSchools"`
	FamilyMembers   *[]FamilyMemberInput   `json:"familyMembers"`
}

// AssignmentRequest binds an application to a class and optionally a grade.
type AssignmentRequest struct {
	ClassID string  `json:"classId" validate:"required"`
	GradeID *string `json:"gradeId"`
}

// DecisionRequest records the back-office outcome for a submitted application.
type DecisionRequest struct {
	Decision models.ApplicationStatus `json:"decision" validate:"required,oneof=ACCEPTED REJECTED"`
}

// AdmissionService orchestrates the admission application lifecycle: the
// one-time create, per-step updates, class/grade assignment, and the
// back-office views over the draft pool.
type AdmissionService struct {
	apps      applicationRepository
	classes   classResolver
	cache     *CacheService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
	statsTTL  time.Duration
}

// NewAdmissionService constructs AdmissionService.
func NewAdmissionService(apps applicationRepository, classes classResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger, statsTTL time.Duration) *AdmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if statsTTL <= 0 {
		statsTTL = 5 * time.Minute
	}
	return &AdmissionService{
		apps:      apps,
		classes:   classes,
		cache:     cache,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		statsTTL:  statsTTL,
	}
}

// Create runs the step-0 submission: user, student, and application rows in
// a single transaction. It must be called exactly once per admission; the
// client store guarantees that by never re-issuing Create once it holds an
// application ID.
func (s *AdmissionService) Create(ctx context.Context, schoolID string, req CreateApplicationRequest) (*CreateApplicationResult, error) {
	if schoolID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	var classID *string
	if req.ClassID != nil && *req.ClassID != "" {
		class, err := s.classes.Get(ctx, *req.ClassID)
		if err != nil {
			return nil, err
		}
		if class.SchoolID != schoolID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		classID = &class.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		SchoolID:     schoolID,
		Email:        req.Email,
		PasswordHash: string(hash),
		Surname:      req.Surname,
		FirstName:    req.FirstName,
		Role:         models.RoleStudent,
		Active:       true,
	}
	student := &models.Student{SchoolID: schoolID, ClassID: classID}
	app := &models.Application{
		SchoolID:  schoolID,
		Surname:   req.Surname,
		FirstName: req.FirstName,
		Email:     req.Email,
		Status:    models.ApplicationStatusDraft,
		ClassID:   classID,
	}
	app.Progress = steps.Progress(app.Values())

	if err := s.apps.CreateWithIdentity(ctx, user, student, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("application created",
		zap.String("application_id", app.ID),
		zap.String("school_id", schoolID),
		zap.Int("progress", app.Progress))

	return &CreateApplicationResult{ApplicationID: app.ID, StudentID: app.StudentID}, nil
}

// UpdateStep validates and persists one step submission atomically, then
// returns the application with its freshly recomputed progress.
func (s *AdmissionService) UpdateStep(ctx context.Context, schoolID, appID string, req UpdateStepRequest) (*models.Application, error) {
	if schoolID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if appID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "application id is required")
	}
	if req.Step == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "step is required")
	}
	step := *req.Step
	if step < 0 || step >= steps.Count() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("step must be between 0 and %d", steps.Count()-1))
	}

	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.SchoolID != schoolID {
		return nil, appErrors.ErrForbidden
	}

	if fieldErrs := steps.Validate(step, req.payloadValues()); len(fieldErrs) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, toDetails(fieldErrs))
	}

	if req.ClassID != nil && *req.ClassID != "" {
		class, err := s.classes.Get(ctx, *req.ClassID)
		if err != nil {
			return nil, err
		}
		if class.SchoolID != schoolID {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
	}

	updated := *app
	identity, schools, members, err := req.apply(&updated)
	if err != nil {
		return nil, err
	}

	fresh, err := s.apps.SaveStep(ctx, &updated, identity, schools, members, func(a *models.Application) int {
		return steps.Progress(a.Values())
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save step")
	}

	s.logger.Info("application step saved",
		zap.String("application_id", fresh.ID),
		zap.Int("step", step),
		zap.Int("progress", fresh.Progress))

	return fresh, nil
}

// Get returns the composite application for the caller's school.
func (s *AdmissionService) Get(ctx context.Context, schoolID, appID string) (*models.Application, error) {
	app, err := s.apps.FindComposite(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.SchoolID != schoolID {
		return nil, appErrors.ErrForbidden
	}
	return app, nil
}

// List returns applications for the back office with pagination metadata.
func (s *AdmissionService) List(ctx context.Context, schoolID string, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error) {
	filter.SchoolID = schoolID
	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Delete removes an application and its nested collections.
func (s *AdmissionService) Delete(ctx context.Context, schoolID, appID string) error {
	app, err := s.loadOwned(ctx, schoolID, appID)
	if err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, app.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete application")
	}
	return nil
}

// Assign binds the application to a class and a capacity-checked grade.
// When no grade is requested the first grade with remaining capacity is
// used; if every grade is full no assignment occurs.
func (s *AdmissionService) Assign(ctx context.Context, schoolID, appID string, req AssignmentRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	app, err := s.loadOwned(ctx, schoolID, appID)
	if err != nil {
		return nil, err
	}

	class, err := s.classes.Get(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if class.SchoolID != schoolID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	requested := ""
	if req.GradeID != nil {
		requested = *req.GradeID
	}
	grade, err := s.classes.SelectGrade(class, requested)
	if err != nil {
		return nil, err
	}
	if grade == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "no grade with remaining capacity")
	}

	if err := s.apps.UpdateAssignment(ctx, app.ID, app.StudentID, class.ID, &grade.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign class")
	}
	return s.Get(ctx, schoolID, appID)
}

// Submit finalizes a complete draft.
func (s *AdmissionService) Submit(ctx context.Context, schoolID, appID string) (*models.Application, error) {
	app, err := s.loadOwned(ctx, schoolID, appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already submitted")
	}
	if app.Progress < 100 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application is incomplete")
	}
	if err := s.apps.UpdateStatus(ctx, app.ID, models.ApplicationStatusSubmitted); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit application")
	}
	return s.Get(ctx, schoolID, appID)
}

// Decide records the back-office outcome for a submitted application.
func (s *AdmissionService) Decide(ctx context.Context, schoolID, appID string, req DecisionRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	app, err := s.loadOwned(ctx, schoolID, appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusSubmitted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application is not awaiting a decision")
	}
	if err := s.apps.UpdateStatus(ctx, app.ID, req.Decision); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}
	return s.Get(ctx, schoolID, appID)
}

// Stats returns admission aggregates, served from the cache when warm.
func (s *AdmissionService) Stats(ctx context.Context, schoolID string) (*models.AdmissionStats, error) {
	key := "admission:stats:" + schoolID
	if cached, ok := s.cache.Get(ctx, key); ok {
		var stats models.AdmissionStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.apps.Stats(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate applications")
	}
	if encoded, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, key, string(encoded), s.statsTTL)
	}
	return stats, nil
}

// ExportCSV renders the school's applications as CSV.
func (s *AdmissionService) ExportCSV(ctx context.Context, schoolID string) ([]byte, error) {
	apps, _, err := s.apps.List(ctx, models.ApplicationFilter{SchoolID: schoolID, PageSize: 100, SortBy: "created_at", SortOrder: "ASC"})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	data := export.Dataset{Headers: []string{"ID", "Surname", "First Name", "Email", "Status", "Progress"}}
	for _, app := range apps {
		data.Rows = append(data.Rows, map[string]string{
			"ID":         app.ID,
			"Surname":    app.Surname,
			"First Name": app.FirstName,
			"Email":      app.Email,
			"Status":     string(app.Status),
			"Progress":   strconv.Itoa(app.Progress),
		})
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return out, nil
}

// SummaryPDF renders a one-page summary of a single application.
func (s *AdmissionService) SummaryPDF(ctx context.Context, schoolID, appID string) ([]byte, error) {
	app, err := s.Get(ctx, schoolID, appID)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: []string{"Field", "Value"}}
	addRow := func(field, value string) {
		data.Rows = append(data.Rows, map[string]string{"Field": field, "Value": value})
	}
	addRow("Application", app.ID)
	addRow("Name", app.Surname+" "+app.FirstName)
	addRow("Email", app.Email)
	addRow("Status", string(app.Status))
	addRow("Progress", strconv.Itoa(app.Progress)+"%")
	addRow("Previous schools", strconv.Itoa(len(app.PreviousSchools)))
	addRow("Family members", strconv.Itoa(len(app.FamilyMembers)))

	out, err := s.pdf.Render(data, "Admission Application")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return out, nil
}

func (s *AdmissionService) loadOwned(ctx context.Context, schoolID, appID string) (*models.Application, error) {
	if schoolID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.SchoolID != schoolID {
		return nil, appErrors.ErrForbidden
	}
	return app, nil
}

// payloadValues projects the present request fields into the flat view the
// step registry validates. Fields outside the target step's schema are
// carried along but ignored by validation.
func (r UpdateStepRequest) payloadValues() steps.Values {
	v := steps.Values{}
	putPresent(v, "surname", r.Surname)
	putPresent(v, "firstName", r.FirstName)
	putPresent(v, "email", r.Email)
	putPresent(v, "dateOfBirth", r.DateOfBirth)
	putPresent(v, "nationality", r.Nationality)
	putPresent(v, "sex", r.Sex)
	if r.LanguagesSpoken != nil {
		v["languagesSpoken"] = *r.LanguagesSpoken
	}
	putPresent(v, "religion", r.Religion)
	putPresent(v, "livesWith", r.LivesWith)
	putPresent(v, "guardianName", r.GuardianName)
	putPresent(v, "guardianOccupation", r.GuardianOccupation)
	putPresent(v, "guardianPhone", r.GuardianPhone)
	putPresent(v, "postalAddress", r.PostalAddress)
	putPresent(v, "residentialAddress", r.ResidentialAddress)
	putPresent(v, "phone", r.Phone)
	putPresent(v, "emergencyContactName", r.EmergencyContactName)
	putPresent(v, "emergencyContactPhone", r.EmergencyContactPhone)
	putPresent(v, "bloodGroup", r.BloodGroup)
	putPresent(v, "allergies", r.Allergies)
	putPresent(v, "doctorName", r.DoctorName)
	putPresent(v, "doctorPhone", r.DoctorPhone)
	if r.DeclarationAccepted != nil {
		v["declarationAccepted"] = *r.DeclarationAccepted
	}
	putPresent(v, "feePaymentMethod", r.FeePaymentMethod)

	if r.PreviousSchools != nil {
		elements := make([]steps.Values, 0, len(*r.PreviousSchools))
		for _, s := range *r.PreviousSchools {
			elements = append(elements, steps.Values{
				"name":      s.Name,
				"location":  s.Location,
				"startDate": s.StartDate,
				"endDate":   s.EndDate,
			})
		}
		v["previousSchools"] = elements
	}
	if r.FamilyMembers != nil {
		elements := make([]steps.Values, 0, len(*r.FamilyMembers))
		for _, m := range *r.FamilyMembers {
			elements = append(elements, steps.Values{
				"relation":           m.Relation,
				"name":               m.Name,
				"postalAddress":      m.PostalAddress,
				"residentialAddress": m.ResidentialAddress,
			})
		}
		v["familyMembers"] = elements
	}
	return v
}

// apply copies present payload fields onto the record and returns the
// identity update (when step-0 fields are touched) plus the nested
// collection replacements. Nil return values mean "not in this request".
func (r UpdateStepRequest) apply(app *models.Application) (*models.User, *[]models.PreviousSchool, *[]models.FamilyMember, error) {
	var identity *models.User
	if r.Surname != nil || r.FirstName != nil || r.Email != nil {
		setPresent(&app.Surname, r.Surname)
		setPresent(&app.FirstName, r.FirstName)
		setPresent(&app.Email, r.Email)
		identity = &models.User{Surname: app.Surname, FirstName: app.FirstName, Email: app.Email}
	}

	if r.DateOfBirth != nil {
		dob, err := steps.ParseDate(*r.DateOfBirth)
		if err != nil {
			return nil, nil, nil, appErrors.WithDetails(appErrors.ErrValidation,
				[]appErrors.FieldError{{Path: "dateOfBirth", Message: "must be a date (YYYY-MM-DD)"}})
		}
		app.DateOfBirth = &dob
	}
	setOptional(&app.Nationality, r.Nationality)
	setOptional(&app.Sex, r.Sex)
	if r.LanguagesSpoken != nil {
		app.LanguagesSpoken = *r.LanguagesSpoken
	}
	setOptional(&app.Religion, r.Religion)
	setOptional(&app.LivesWith, r.LivesWith)
	setOptional(&app.GuardianName, r.GuardianName)
	setOptional(&app.GuardianOccupation, r.GuardianOccupation)
	setOptional(&app.GuardianPhone, r.GuardianPhone)
	setOptional(&app.PostalAddress, r.PostalAddress)
	setOptional(&app.ResidentialAddress, r.ResidentialAddress)
	setOptional(&app.Phone, r.Phone)
	setOptional(&app.EmergencyContactName, r.EmergencyContactName)
	setOptional(&app.EmergencyContactPhone, r.EmergencyContactPhone)
	setOptional(&app.BloodGroup, r.BloodGroup)
	setOptional(&app.Allergies, r.Allergies)
	setOptional(&app.DoctorName, r.DoctorName)
	setOptional(&app.DoctorPhone, r.DoctorPhone)
	if r.DeclarationAccepted != nil {
		app.DeclarationAccepted = *r.DeclarationAccepted
	}
	setOptional(&app.FeePaymentMethod, r.FeePaymentMethod)
	if r.ClassID != nil {
		app.ClassID = r.ClassID
	}

	var schools *[]models.PreviousSchool
	if r.PreviousSchools != nil {
		rows := make([]models.PreviousSchool, 0, len(*r.PreviousSchools))
		for i, input := range *r.PreviousSchools {
			start, err := steps.ParseDate(input.StartDate)
			if err != nil {
				return nil, nil, nil, appErrors.WithDetails(appErrors.ErrValidation,
					[]appErrors.FieldError{{Path: fmt.Sprintf("previousSchools[%d].startDate", i), Message: "must be a date (YYYY-MM-DD)"}})
			}
			end, err := steps.ParseDate(input.EndDate)
			if err != nil {
				return nil, nil, nil, appErrors.WithDetails(appErrors.ErrValidation,
					[]appErrors.FieldError{{Path: fmt.Sprintf("previousSchools[%d].endDate", i), Message: "must be a date (YYYY-MM-DD)"}})
			}
			rows = append(rows, models.PreviousSchool{
				Name:      input.Name,
				Location:  input.Location,
				StartDate: start,
				EndDate:   end,
			})
		}
		schools = &rows
	}

	var members *[]models.FamilyMember
	if r.FamilyMembers != nil {
		rows := make([]models.FamilyMember, 0, len(*r.FamilyMembers))
		for _, input := range *r.FamilyMembers {
			rows = append(rows, models.FamilyMember{
				Relation:           input.Relation,
				Name:               input.Name,
				PostalAddress:      input.PostalAddress,
				ResidentialAddress: input.ResidentialAddress,
			})
		}
		members = &rows
	}

	return identity, schools, members, nil
}

func toDetails(fieldErrs []steps.FieldError) []appErrors.FieldError {
	details := make([]appErrors.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, appErrors.FieldError{Path: fe.Path, Message: fe.Message})
	}
	return details
}

func putPresent(v steps.Values, key string, s *string) {
	if s != nil {
		v[key] = *s
	}
}

func setPresent(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setOptional(dst **string, src *string) {
	if src != nil {
		*dst = src
	}
}
