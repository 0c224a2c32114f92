package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/noah-isme/sma-admission-api/pkg/steps"
)

// State is the client-side lifecycle of one admission draft. Transitions
// only move forward; a failed step submission leaves the state where it was.
type State string

const (
	StateEmpty     State = "EMPTY"
	StateDrafting  State = "DRAFTING"
	StateCreated   State = "CREATED"
	StateFinalized State = "FINALIZED"
)

// admissionAPI is the slice of APIClient the store depends on.
type admissionAPI interface {
	CreateApplication(ctx context.Context, payload map[string]interface{}) (*CreateResult, error)
	UpdateStep(ctx context.Context, applicationID string, step int, payload map[string]interface{}) (*Admission, error)
	Submit(ctx context.Context, applicationID string) (*Admission, error)
}

// Store holds the local form state for one admission draft and keeps it
// synchronized with the server. The local progress value is an estimate
// computed with the same step registry the server uses; it may diverge
// momentarily from the authoritative value until the next round trip, at
// which point the server's number wins.
type Store struct {
	mu sync.Mutex

	api  admissionAPI
	form steps.Values
	errs map[string]string

	applicationID string
	studentID     string
	created       bool
	progress      int
	lastStep      int
	state         State
}

// NewStore constructs an empty Store bound to an API client.
func NewStore(api admissionAPI) *Store {
	return &Store{
		api:      api,
		form:     steps.Values{},
		errs:     map[string]string{},
		lastStep: -1,
		state:    StateEmpty,
	}
}

// SetField mutates local form state synchronously and refreshes the local
// progress estimate. Any previously recorded error for the field is cleared.
func (s *Store) SetField(name string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form[name] = value
	delete(s.errs, name)
	s.progress = steps.Progress(s.form)
	if s.state == StateEmpty {
		s.state = StateDrafting
	}
}

// Field returns the current local value for a form field.
func (s *Store) Field(name string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.form[name]
	return v, ok
}

// FormData returns a copy of the local form state.
func (s *Store) FormData() steps.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(steps.Values, len(s.form))
	for k, v := range s.form {
		out[k] = v
	}
	return out
}

// Errors returns a copy of the field-keyed failure messages.
func (s *Store) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// Progress returns the most recent progress value, which is the server's
// authoritative number after any successful round trip.
func (s *Store) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// ApplicationID returns the server-assigned application ID, empty until the
// create round trip has succeeded.
func (s *Store) ApplicationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applicationID
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CompleteStep submits one step to the server. Step 0 with no application ID
// yet issues the one-time create; every other call is an update against the
// held application ID. Create is never re-issued once an ID exists, so a
// retried step 0 cannot produce duplicate identities. On success the
// server-returned fields are merged into local state.
func (s *Store) CompleteStep(ctx context.Context, step int) error {
	s.mu.Lock()
	if step < 0 || step >= steps.Count() {
		s.mu.Unlock()
		return fmt.Errorf("step %d out of range", step)
	}
	doCreate := step == 0 && !s.created
	payload := s.stepPayloadLocked(step, doCreate)
	appID := s.applicationID
	s.mu.Unlock()

	if doCreate {
		result, err := s.api.CreateApplication(ctx, payload)
		if err != nil {
			s.recordFailure(err)
			return err
		}
		s.mu.Lock()
		s.applicationID = result.ApplicationID
		s.studentID = result.StudentID
		s.created = true
		s.state = StateCreated
		s.lastStep = 0
		s.progress = steps.Progress(s.form)
		s.mu.Unlock()
		return nil
	}

	if appID == "" {
		return fmt.Errorf("step %d submitted before the application was created", step)
	}

	admission, err := s.api.UpdateStep(ctx, appID, step, payload)
	if err != nil {
		s.recordFailure(err)
		return err
	}

	s.mu.Lock()
	s.progress = admission.Progress
	if step > s.lastStep {
		s.lastStep = step
	}
	s.mu.Unlock()
	return nil
}

// Finalize submits the completed draft.
func (s *Store) Finalize(ctx context.Context) error {
	s.mu.Lock()
	appID := s.applicationID
	s.mu.Unlock()
	if appID == "" {
		return fmt.Errorf("no application to finalize")
	}

	admission, err := s.api.Submit(ctx, appID)
	if err != nil {
		s.recordFailure(err)
		return err
	}

	s.mu.Lock()
	s.progress = admission.Progress
	s.state = StateFinalized
	s.mu.Unlock()
	return nil
}

// OptimisticUpdate applies updater to a field immediately, fires apiCall, and
// on rejection restores exactly the prior value (including deleting the key
// if the field was absent before) and records the failure under the field.
func (s *Store) OptimisticUpdate(ctx context.Context, field string, updater func(interface{}) interface{}, apiCall func(context.Context) error) error {
	s.mu.Lock()
	prior, existed := s.form[field]
	s.form[field] = updater(prior)
	s.progress = steps.Progress(s.form)
	s.mu.Unlock()

	if err := apiCall(ctx); err != nil {
		s.mu.Lock()
		if existed {
			s.form[field] = prior
		} else {
			delete(s.form, field)
		}
		s.progress = steps.Progress(s.form)
		s.errs[field] = err.Error()
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	delete(s.errs, field)
	s.mu.Unlock()
	return nil
}

// stepPayloadLocked builds the wire payload for a step from the local form:
// the step schema's fields that are present locally, plus the create-only
// credential and class selection when the step-0 create is being issued.
func (s *Store) stepPayloadLocked(step int, creating bool) map[string]interface{} {
	payload := map[string]interface{}{}
	schema, ok := steps.At(step)
	if !ok {
		return payload
	}
	for _, f := range schema.Fields {
		if v, present := s.form[f.Name]; present {
			payload[f.Name] = v
		}
	}
	if creating {
		for _, extra := range []string{"password", "classId"} {
			if v, present := s.form[extra]; present {
				payload[extra] = v
			}
		}
	}
	return payload
}

// recordFailure fans an API error's field details out into the error map.
func (s *Store) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if apiErr, ok := err.(*APIError); ok && len(apiErr.Details) > 0 {
		for _, d := range apiErr.Details {
			s.errs[d.Path] = d.Message
		}
		return
	}
	s.errs["_request"] = err.Error()
}