package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admission-api/internal/models"
)

func newApplicationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var applicationColumnList = []string{
	"id", "student_id", "user_id", "school_id", "surname", "first_name", "email",
	"date_of_birth", "nationality", "sex", "languages_spoken", "religion",
	"lives_with", "guardian_name", "guardian_occupation", "guardian_phone",
	"postal_address", "residential_address", "phone", "emergency_contact_name", "emergency_contact_phone",
	"blood_group", "allergies", "doctor_name", "doctor_phone",
	"declaration_accepted", "fee_payment_method", "progress", "status", "class_id", "grade_id",
	"created_at", "updated_at",
}

func applicationRow(id string, progress int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(applicationColumnList).AddRow(
		id, "stu-1", "usr-1", "sch-1", "A", "B", "b@a.com",
		nil, nil, nil, "{}", nil,
		nil, nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil, nil, nil, nil,
		false, nil, progress, models.ApplicationStatusDraft, nil, nil,
		now, now,
	)
}

func emptySchoolRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "application_id", "name", "location", "start_date", "end_date"})
}

func emptyMemberRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "application_id", "relation", "name", "postal_address", "residential_address"})
}

func TestApplicationRepositoryCreateWithIdentity(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO applications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.User{SchoolID: "sch-1", Email: "b@a.com", Role: models.RoleStudent, Active: true}
	student := &models.Student{SchoolID: "sch-1"}
	app := &models.Application{SchoolID: "sch-1", Surname: "A", FirstName: "B", Email: "b@a.com", Status: models.ApplicationStatusDraft}

	require.NoError(t, repo.CreateWithIdentity(context.Background(), user, student, app))
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, user.ID, app.UserID)
	assert.Equal(t, student.ID, app.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreateWithIdentityRollsBack(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").WillReturnError(errors.New("student insert failed"))
	mock.ExpectRollback()

	err := repo.CreateWithIdentity(context.Background(),
		&models.User{}, &models.Student{}, &models.Application{})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositorySaveStepReplacesCollections(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	app := &models.Application{ID: "app-1", StudentID: "stu-1", UserID: "usr-1", SchoolID: "sch-1", Progress: 75}
	schools := []models.PreviousSchool{{Name: "PS1", Location: "L1", StartDate: time.Now(), EndDate: time.Now()}}
	members := []models.FamilyMember{{Relation: "Father", Name: "John", PostalAddress: "A", ResidentialAddress: "A"}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM previous_schools WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO previous_schools").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM family_members WHERE application_id = $1")).
		WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO family_members").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM applications WHERE id").WithArgs("app-1").WillReturnRows(applicationRow("app-1", 75))
	mock.ExpectQuery("FROM previous_schools WHERE application_id").WithArgs("app-1").
		WillReturnRows(emptySchoolRows().AddRow("ps-1", "app-1", "PS1", "L1", time.Now(), time.Now()))
	mock.ExpectQuery("FROM family_members WHERE application_id").WithArgs("app-1").
		WillReturnRows(emptyMemberRows().AddRow("fm-1", "app-1", "Father", "John", "A", "A"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET progress = $2 WHERE id = $1")).
		WithArgs("app-1", 88).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	fresh, err := repo.SaveStep(context.Background(), app, nil, &schools, &members, func(a *models.Application) int {
		require.Len(t, a.PreviousSchools, 1)
		require.Len(t, a.FamilyMembers, 1)
		return 88
	})
	require.NoError(t, err)
	assert.Equal(t, 88, fresh.Progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositorySaveStepLeavesAbsentCollectionsUntouched(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	app := &models.Application{ID: "app-1", StudentID: "stu-1", UserID: "usr-1", SchoolID: "sch-1", Progress: 13}

	// No DELETE or INSERT on either child table is expected: nil pointers
	// mean the collections were not part of this request.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM applications WHERE id").WithArgs("app-1").WillReturnRows(applicationRow("app-1", 13))
	mock.ExpectQuery("FROM previous_schools WHERE application_id").WithArgs("app-1").WillReturnRows(emptySchoolRows())
	mock.ExpectQuery("FROM family_members WHERE application_id").WithArgs("app-1").WillReturnRows(emptyMemberRows())
	mock.ExpectCommit()

	fresh, err := repo.SaveStep(context.Background(), app, nil, nil, nil, func(a *models.Application) int {
		return 13
	})
	require.NoError(t, err)
	assert.Equal(t, 13, fresh.Progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositorySaveStepRollsBackOnChildFailure(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	app := &models.Application{ID: "app-1", StudentID: "stu-1", UserID: "usr-1", SchoolID: "sch-1"}
	schools := []models.PreviousSchool{{Name: "PS1"}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM previous_schools").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO previous_schools").WillReturnError(errors.New("malformed row"))
	mock.ExpectRollback()

	_, err := repo.SaveStep(context.Background(), app, nil, &schools, nil, func(a *models.Application) int {
		t.Fatal("recompute must not run after a failed write")
		return 0
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositorySaveStepRejectsOutOfRangeProgress(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	app := &models.Application{ID: "app-1", StudentID: "stu-1", UserID: "usr-1", SchoolID: "sch-1"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM applications WHERE id").WithArgs("app-1").WillReturnRows(applicationRow("app-1", 13))
	mock.ExpectQuery("FROM previous_schools WHERE application_id").WithArgs("app-1").WillReturnRows(emptySchoolRows())
	mock.ExpectQuery("FROM family_members WHERE application_id").WithArgs("app-1").WillReturnRows(emptyMemberRows())
	mock.ExpectRollback()

	_, err := repo.SaveStep(context.Background(), app, nil, nil, nil, func(a *models.Application) int {
		return 101
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM previous_schools").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM family_members").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM applications").WithArgs("app-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "app-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryList(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	min := 50
	mock.ExpectQuery("FROM applications WHERE school_id").
		WithArgs("sch-1", models.ApplicationStatusDraft, min).
		WillReturnRows(applicationRow("app-1", 75))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications")).
		WithArgs("sch-1", models.ApplicationStatusDraft, min).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{
		SchoolID:    "sch-1",
		Status:      models.ApplicationStatusDraft,
		MinProgress: &min,
	})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryStats(t *testing.T) {
	db, mock, cleanup := newApplicationRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT status, COUNT").WithArgs("sch-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("DRAFT", 3).
			AddRow("SUBMITTED", 2))
	mock.ExpectQuery("SELECT COALESCE").WithArgs("sch-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(62.5))

	stats, err := repo.Stats(context.Background(), "sch-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.ByStatus["DRAFT"])
	assert.InDelta(t, 62.5, stats.AverageProgress, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
