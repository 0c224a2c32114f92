package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-admission-api/internal/middleware"
	"github.com/noah-isme/sma-admission-api/internal/models"
	"github.com/noah-isme/sma-admission-api/internal/service"
	appErrors "github.com/noah-isme/sma-admission-api/pkg/errors"
)

type admissionServiceMock struct {
	createResp *service.CreateApplicationResult
	createErr  error
	updateResp *models.Application
	updateErr  error
	getResp    *models.Application
	getErr     error

	lastSchool string
	lastAppID  string
	lastUpdate service.UpdateStepRequest
}

func (m *admissionServiceMock) Create(ctx context.Context, schoolID string, req service.CreateApplicationRequest) (*service.CreateApplicationResult, error) {
	m.lastSchool = schoolID
	return m.createResp, m.createErr
}

func (m *admissionServiceMock) UpdateStep(ctx context.Context, schoolID, appID string, req service.UpdateStepRequest) (*models.Application, error) {
	m.lastSchool, m.lastAppID, m.lastUpdate = schoolID, appID, req
	return m.updateResp, m.updateErr
}

func (m *admissionServiceMock) Get(ctx context.Context, schoolID, appID string) (*models.Application, error) {
	return m.getResp, m.getErr
}

func (m *admissionServiceMock) List(ctx context.Context, schoolID string, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error) {
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *admissionServiceMock) Delete(ctx context.Context, schoolID, appID string) error {
	return nil
}

func (m *admissionServiceMock) Assign(ctx context.Context, schoolID, appID string, req service.AssignmentRequest) (*models.Application, error) {
	return m.updateResp, m.updateErr
}

func (m *admissionServiceMock) Submit(ctx context.Context, schoolID, appID string) (*models.Application, error) {
	return m.updateResp, m.updateErr
}

func (m *admissionServiceMock) Decide(ctx context.Context, schoolID, appID string, req service.DecisionRequest) (*models.Application, error) {
	return m.updateResp, m.updateErr
}

func (m *admissionServiceMock) Stats(ctx context.Context, schoolID string) (*models.AdmissionStats, error) {
	return &models.AdmissionStats{Total: 1}, nil
}

func (m *admissionServiceMock) ExportCSV(ctx context.Context, schoolID string) ([]byte, error) {
	return []byte("ID,Surname\n"), nil
}

func (m *admissionServiceMock) SummaryPDF(ctx context.Context, schoolID, appID string) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func testContext(t *testing.T, method, target string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "usr-1", SchoolID: "sch-1", Role: models.RoleAdmin}
}

func TestAdmissionHandlerCreate(t *testing.T) {
	mockSvc := &admissionServiceMock{
		createResp: &service.CreateApplicationResult{ApplicationID: "app-1", StudentID: "stu-1"},
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	body, _ := json.Marshal(service.CreateApplicationRequest{
		Surname: "A", FirstName: "B", Email: "b@a.com", Password: "secret-pass",
	})
	c, w := testContext(t, http.MethodPost, "/admissions", body, adminClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "sch-1", mockSvc.lastSchool)

	var envelope struct {
		Data service.CreateApplicationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "app-1", envelope.Data.ApplicationID)
}

func TestAdmissionHandlerCreateWithoutTenant(t *testing.T) {
	handler := NewAdmissionHandler(&admissionServiceMock{}, nil)

	c, w := testContext(t, http.MethodPost, "/admissions", []byte(`{}`), nil)

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmissionHandlerCreateInvalidBody(t *testing.T) {
	handler := NewAdmissionHandler(&admissionServiceMock{}, nil)

	c, w := testContext(t, http.MethodPost, "/admissions", []byte(`{"surname":`), adminClaims())

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmissionHandlerUpdate(t *testing.T) {
	mockSvc := &admissionServiceMock{
		updateResp: &models.Application{ID: "app-1", Progress: 88, Status: models.ApplicationStatusDraft},
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPatch, "/admissions/app-1",
		[]byte(`{"step":6,"previousSchools":[],"familyMembers":[{"relation":"Father","name":"John","postalAddress":"A","residentialAddress":"A"}]}`),
		adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "app-1", mockSvc.lastAppID)

	// The JSON distinction between an absent array and an empty one must
	// survive decoding into the request struct.
	require.NotNil(t, mockSvc.lastUpdate.PreviousSchools)
	assert.Empty(t, *mockSvc.lastUpdate.PreviousSchools)
	require.NotNil(t, mockSvc.lastUpdate.FamilyMembers)
	assert.Len(t, *mockSvc.lastUpdate.FamilyMembers, 1)

	var envelope struct {
		Data models.Application `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 88, envelope.Data.Progress)
}

func TestAdmissionHandlerUpdateOmittedCollectionStaysNil(t *testing.T) {
	mockSvc := &admissionServiceMock{updateResp: &models.Application{ID: "app-1"}}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPatch, "/admissions/app-1",
		[]byte(`{"step":6,"familyMembers":[]}`), adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, mockSvc.lastUpdate.PreviousSchools)
	require.NotNil(t, mockSvc.lastUpdate.FamilyMembers)
}

func TestAdmissionHandlerUpdateValidationDetails(t *testing.T) {
	mockSvc := &admissionServiceMock{
		updateErr: appErrors.WithDetails(appErrors.ErrValidation,
			[]appErrors.FieldError{{Path: "dateOfBirth", Message: "must be a date (YYYY-MM-DD)"}}),
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPatch, "/admissions/app-1",
		[]byte(`{"step":1,"dateOfBirth":"nope"}`), adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Update(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				Path string `json:"path"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	require.Len(t, envelope.Error.Details, 1)
	assert.Equal(t, "dateOfBirth", envelope.Error.Details[0].Path)
}

func TestAdmissionHandlerUpdateForbidden(t *testing.T) {
	mockSvc := &admissionServiceMock{updateErr: appErrors.ErrForbidden}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPatch, "/admissions/app-1", []byte(`{"step":1}`), adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Update(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmissionHandlerStatsWithoutTenant(t *testing.T) {
	handler := NewAdmissionHandler(&admissionServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/admissions/stats", nil, nil)

	handler.Stats(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmissionHandlerExportCSV(t *testing.T) {
	handler := NewAdmissionHandler(&admissionServiceMock{}, nil)

	c, w := testContext(t, http.MethodGet, "/admissions/export", nil, adminClaims())

	handler.ExportCSV(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "applications.csv")
}
