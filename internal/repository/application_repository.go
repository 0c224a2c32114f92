package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-admission-api/internal/models"
)

const applicationColumns = `id, student_id, user_id, school_id, surname, first_name, email,
date_of_birth, nationality, sex, languages_spoken, religion,
lives_with, guardian_name, guardian_occupation, guardian_phone,
postal_address, residential_address, phone, emergency_contact_name, emergency_contact_phone,
blood_group, allergies, doctor_name, doctor_phone,
declaration_accepted, fee_payment_method, progress, status, class_id, grade_id,
created_at, updated_at`

const applicationUpdateSet = `surname = :surname, first_name = :first_name, email = :email,
date_of_birth = :date_of_birth, nationality = :nationality, sex = :sex,
languages_spoken = :languages_spoken, religion = :religion,
lives_with = :lives_with, guardian_name = :guardian_name,
guardian_occupation = :guardian_occupation, guardian_phone = :guardian_phone,
postal_address = :postal_address, residential_address = :residential_address, phone = :phone,
emergency_contact_name = :emergency_contact_name, emergency_contact_phone = :emergency_contact_phone,
blood_group = :blood_group, allergies = :allergies, doctor_name = :doctor_name, doctor_phone = :doctor_phone,
declaration_accepted = :declaration_accepted, fee_payment_method = :fee_payment_method,
class_id = :class_id, updated_at = :updated_at`

// ApplicationRepository handles persistence of admission applications and
// their nested collections. Every multi-row mutation runs inside a single
// transaction so a failure never leaves a partial write behind.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// CreateWithIdentity persists the user, student, and application rows of a
// brand new admission in one transaction.
func (r *ApplicationRepository) CreateWithIdentity(ctx context.Context, user *models.User, student *models.Student, app *models.Application) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	user.CreatedAt, user.UpdatedAt = now, now
	student.UserID = user.ID
	student.CreatedAt, student.UpdatedAt = now, now
	app.UserID = user.ID
	app.StudentID = student.ID
	app.CreatedAt, app.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create application: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const userQuery = `INSERT INTO users (id, school_id, email, password_hash, surname, first_name, role, active, created_at, updated_at)
VALUES (:id, :school_id, :email, :password_hash, :surname, :first_name, :role, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	const studentQuery = `INSERT INTO students (id, school_id, user_id, class_id, grade_id, created_at, updated_at)
VALUES (:id, :school_id, :user_id, :class_id, :grade_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, studentQuery, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	appQuery := fmt.Sprintf(`INSERT INTO applications (%s) VALUES (%s)`,
		applicationColumns, namedPlaceholders(applicationColumns))
	if _, err := tx.NamedExecContext(ctx, appQuery, app); err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create application: %w", err)
	}
	committed = true
	return nil
}

// FindByID returns the application row without its nested collections.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// FindComposite returns the application together with its nested collections.
func (r *ApplicationRepository) FindComposite(ctx context.Context, id string) (*models.Application, error) {
	app, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := loadChildren(ctx, r.db, app); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns applications for a school filtered by the provided criteria.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	conditions := []string{"school_id = $1"}
	args := []interface{}{filter.SchoolID}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.MinProgress != nil {
		conditions = append(conditions, fmt.Sprintf("progress >= $%d", len(args)+1))
		args = append(args, *filter.MinProgress)
	}
	if filter.MaxProgress != nil {
		conditions = append(conditions, fmt.Sprintf("progress <= $%d", len(args)+1))
		args = append(args, *filter.MaxProgress)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(surname ILIKE $%d OR first_name ILIKE $%d OR email ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := " WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"created_at": "created_at",
		"progress":   "progress",
		"surname":    "surname",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM applications%s ORDER BY %s %s LIMIT %d OFFSET %d`,
		applicationColumns, clause, orderBy, order, size, offset)

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM applications" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// SaveStep applies a validated step mutation in one transaction: identity
// and class updates when the payload touches them, the application row
// itself, the nested collection replacement for each supplied kind, and the
// progress recompute over the freshly reloaded composite. A nil slice
// pointer leaves the corresponding collection untouched; a pointer to an
// empty slice clears it.
func (r *ApplicationRepository) SaveStep(
	ctx context.Context,
	app *models.Application,
	identity *models.User,
	schools *[]models.PreviousSchool,
	members *[]models.FamilyMember,
	recompute func(*models.Application) int,
) (*models.Application, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save step: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	app.UpdatedAt = now

	if identity != nil {
		const query = `UPDATE users SET surname = $2, first_name = $3, email = $4, updated_at = $5 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, app.UserID, identity.Surname, identity.FirstName, identity.Email, now); err != nil {
			return nil, fmt.Errorf("update user identity: %w", err)
		}
	}

	if app.ClassID != nil {
		const query = `UPDATE students SET class_id = $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, app.StudentID, *app.ClassID, now); err != nil {
			return nil, fmt.Errorf("update student class: %w", err)
		}
	}

	appQuery := fmt.Sprintf(`UPDATE applications SET %s WHERE id = :id`, applicationUpdateSet)
	if _, err := tx.NamedExecContext(ctx, appQuery, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	if schools != nil {
		if err := replacePreviousSchools(ctx, tx, app.ID, *schools); err != nil {
			return nil, err
		}
	}
	if members != nil {
		if err := replaceFamilyMembers(ctx, tx, app.ID, *members); err != nil {
			return nil, err
		}
	}

	// Progress must be derived from the post-write state, children included.
	fresh := &models.Application{}
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	if err := sqlx.GetContext(ctx, tx, fresh, query, app.ID); err != nil {
		return nil, fmt.Errorf("reload application: %w", err)
	}
	if err := loadChildren(ctx, tx, fresh); err != nil {
		return nil, err
	}

	progress := recompute(fresh)
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("recomputed progress %d out of range", progress)
	}
	if progress != fresh.Progress {
		if _, err := tx.ExecContext(ctx, `UPDATE applications SET progress = $2 WHERE id = $1`, fresh.ID, progress); err != nil {
			return nil, fmt.Errorf("persist progress: %w", err)
		}
		fresh.Progress = progress
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save step: %w", err)
	}
	committed = true
	return fresh, nil
}

// UpdateAssignment binds the application and its student to a class/grade.
func (r *ApplicationRepository) UpdateAssignment(ctx context.Context, appID, studentID, classID string, gradeID *string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE applications SET class_id = $2, grade_id = $3, updated_at = $4 WHERE id = $1`,
		appID, classID, gradeID, now); err != nil {
		return fmt.Errorf("assign application: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE students SET class_id = $2, grade_id = $3, updated_at = $4 WHERE id = $1`,
		studentID, classID, gradeID, now); err != nil {
		return fmt.Errorf("assign student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment: %w", err)
	}
	committed = true
	return nil
}

// UpdateStatus moves the application through its lifecycle.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// Delete removes the application and both nested collections.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete application: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM previous_schools WHERE application_id = $1`, id); err != nil {
		return fmt.Errorf("delete previous schools: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM family_members WHERE application_id = $1`, id); err != nil {
		return fmt.Errorf("delete family members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete application: %w", err)
	}
	committed = true
	return nil
}

// Stats aggregates applications for the back-office dashboard.
func (r *ApplicationRepository) Stats(ctx context.Context, schoolID string) (*models.AdmissionStats, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT status, COUNT(*) AS count FROM applications WHERE school_id = $1 GROUP BY status`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("aggregate application statuses: %w", err)
	}
	defer rows.Close()

	stats := &models.AdmissionStats{ByStatus: map[string]int{}, GeneratedAt: time.Now().UTC()}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	if err := r.db.GetContext(ctx, &stats.AverageProgress,
		`SELECT COALESCE(AVG(progress), 0) FROM applications WHERE school_id = $1`, schoolID); err != nil {
		return nil, fmt.Errorf("average progress: %w", err)
	}
	return stats, nil
}

// replacePreviousSchools deletes every existing row for the application and
// recreates the supplied set. An empty slice clears the collection.
func replacePreviousSchools(ctx context.Context, tx *sqlx.Tx, appID string, rows []models.PreviousSchool) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM previous_schools WHERE application_id = $1`, appID); err != nil {
		return fmt.Errorf("clear previous schools: %w", err)
	}
	const query = `INSERT INTO previous_schools (id, application_id, name, location, start_date, end_date)
VALUES (:id, :application_id, :name, :location, :start_date, :end_date)`
	for i := range rows {
		rows[i].ApplicationID = appID
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, rows[i]); err != nil {
			return fmt.Errorf("insert previous school: %w", err)
		}
	}
	return nil
}

func replaceFamilyMembers(ctx context.Context, tx *sqlx.Tx, appID string, rows []models.FamilyMember) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM family_members WHERE application_id = $1`, appID); err != nil {
		return fmt.Errorf("clear family members: %w", err)
	}
	const query = `INSERT INTO family_members (id, application_id, relation, name, postal_address, residential_address)
VALUES (:id, :application_id, :relation, :name, :postal_address, :residential_address)`
	for i := range rows {
		rows[i].ApplicationID = appID
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, rows[i]); err != nil {
			return fmt.Errorf("insert family member: %w", err)
		}
	}
	return nil
}

func loadChildren(ctx context.Context, q sqlx.QueryerContext, app *models.Application) error {
	const schoolsQuery = `SELECT id, application_id, name, location, start_date, end_date
FROM previous_schools WHERE application_id = $1 ORDER BY start_date, name`
	if err := sqlx.SelectContext(ctx, q, &app.PreviousSchools, schoolsQuery, app.ID); err != nil {
		return fmt.Errorf("load previous schools: %w", err)
	}
	const membersQuery = `SELECT id, application_id, relation, name, postal_address, residential_address
FROM family_members WHERE application_id = $1 ORDER BY name`
	if err := sqlx.SelectContext(ctx, q, &app.FamilyMembers, membersQuery, app.ID); err != nil {
		return fmt.Errorf("load family members: %w", err)
	}
	return nil
}

// namedPlaceholders rewrites "a, b, c" into ":a, :b, :c" for named inserts.
func namedPlaceholders(columns string) string {
	parts := strings.Split(columns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, ":"+strings.TrimSpace(p))
	}
	return strings.Join(out, ", ")
}
