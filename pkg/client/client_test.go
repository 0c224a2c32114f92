package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ admissionAPI = (*APIClient)(nil)

func TestAPIClientCreateApplication(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admissions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "A", payload["surname"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"applicationId":"app-1","studentId":"stu-1"}}`)) //nolint:errcheck
	}))
	defer server.Close()

	api := NewAPIClient(server.URL, "tok")
	result, err := api.CreateApplication(context.Background(), map[string]interface{}{"surname": "A"})
	require.NoError(t, err)
	assert.Equal(t, "app-1", result.ApplicationID)
	assert.Equal(t, "stu-1", result.StudentID)
}

func TestAPIClientUpdateStepAddsStepToBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/admissions/app-1", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(6), payload["step"])

		w.Write([]byte(`{"data":{"id":"app-1","status":"DRAFT","progress":88}}`)) //nolint:errcheck
	}))
	defer server.Close()

	api := NewAPIClient(server.URL, "tok")
	admission, err := api.UpdateStep(context.Background(), "app-1", 6, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 88, admission.Progress)
}

func TestAPIClientSurfacesEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"VALIDATION_ERROR","message":"validation failed","status":400,"details":[{"path":"dateOfBirth","message":"must be a date (YYYY-MM-DD)"}]}}`)) //nolint:errcheck
	}))
	defer server.Close()

	api := NewAPIClient(server.URL, "tok")
	_, err := api.UpdateStep(context.Background(), "app-1", 1, map[string]interface{}{"dateOfBirth": "nope"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	require.Len(t, apiErr.Details, 1)
	assert.Equal(t, "dateOfBirth", apiErr.Details[0].Path)
}
