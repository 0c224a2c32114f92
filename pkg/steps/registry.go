package steps

import (
	"fmt"
	"strings"
	"time"
)

// Values is a flat, wire-named view of admission form fields. Both the
// server (from the persisted record) and the client store (from local form
// state) project into this shape before consulting the registry.
type Values map[string]interface{}

// Kind enumerates the completeness rules a field can carry.
type Kind int

const (
	// String is complete when non-empty after trimming.
	String Kind = iota
	// StringArray is complete when it has at least one element.
	StringArray
	// Bool is complete only when explicitly true.
	Bool
	// Date is complete when it holds a non-zero date value.
	Date
	// ObjectArray is complete when non-empty and every element satisfies
	// the field's sub-schema.
	ObjectArray
)

// Field declares one schema-owned field and its completeness rule.
type Field struct {
	Name string
	Kind Kind
	Sub  []Field
}

// Schema is the ordered field set owned by a single admission step.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldError pinpoints an invalid payload field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// registry holds the eight admission steps in submission order. The order
// and field ownership are authoritative: progress and per-step validation
// both derive from this table.
var registry = []Schema{
	{Name: "identity", Fields: []Field{
		{Name: "surname", Kind: String},
		{Name: "firstName", Kind: String},
		{Name: "email", Kind: String},
	}},
	{Name: "personal", Fields: []Field{
		{Name: "dateOfBirth", Kind: Date},
		{Name: "nationality", Kind: String},
		{Name: "sex", Kind: String},
	}},
	{Name: "language", Fields: []Field{
		{Name: "languagesSpoken", Kind: StringArray},
		{Name: "religion", Kind: String},
	}},
	{Name: "ward", Fields: []Field{
		{Name: "livesWith", Kind: String},
		{Name: "guardianName", Kind: String},
		{Name: "guardianOccupation", Kind: String},
		{Name: "guardianPhone", Kind: String},
	}},
	{Name: "contact", Fields: []Field{
		{Name: "postalAddress", Kind: String},
		{Name: "residentialAddress", Kind: String},
		{Name: "phone", Kind: String},
		{Name: "emergencyContactName", Kind: String},
		{Name: "emergencyContactPhone", Kind: String},
	}},
	{Name: "medical", Fields: []Field{
		{Name: "bloodGroup", Kind: String},
		{Name: "allergies", Kind: String},
		{Name: "doctorName", Kind: String},
		{Name: "doctorPhone", Kind: String},
	}},
	{Name: "background", Fields: []Field{
		{Name: "previousSchools", Kind: ObjectArray, Sub: []Field{
			{Name: "name", Kind: String},
			{Name: "location", Kind: String},
			{Name: "startDate", Kind: Date},
			{Name: "endDate", Kind: Date},
		}},
		{Name: "familyMembers", Kind: ObjectArray, Sub: []Field{
			{Name: "relation", Kind: String},
			{Name: "name", Kind: String},
			{Name: "postalAddress", Kind: String},
			{Name: "residentialAddress", Kind: String},
		}},
	}},
	{Name: "declaration", Fields: []Field{
		{Name: "declarationAccepted", Kind: Bool},
		{Name: "feePaymentMethod", Kind: String},
	}},
}

// Count returns the number of admission steps.
func Count() int {
	return len(registry)
}

// All returns the ordered step schemas.
func All() []Schema {
	return registry
}

// At returns the schema for a step index.
func At(index int) (Schema, bool) {
	if index < 0 || index >= len(registry) {
		return Schema{}, false
	}
	return registry[index], true
}

// Complete reports whether every field the schema owns is complete in values.
func (s Schema) Complete(values Values) bool {
	for _, f := range s.Fields {
		if !f.Complete(values[f.Name]) {
			return false
		}
	}
	return true
}

// Complete applies the field's completeness predicate to a single value.
func (f Field) Complete(v interface{}) bool {
	switch f.Kind {
	case String:
		s, ok := asString(v)
		return ok && strings.TrimSpace(s) != ""
	case StringArray:
		items, ok := asStringSlice(v)
		return ok && len(items) > 0
	case Bool:
		b, ok := asBool(v)
		return ok && b
	case Date:
		t, ok := asDate(v)
		return ok && !t.IsZero()
	case ObjectArray:
		elements, ok := asValuesSlice(v)
		if !ok || len(elements) == 0 {
			return false
		}
		for _, element := range elements {
			for _, sub := range f.Sub {
				if !sub.Complete(element[sub.Name]) {
					return false
				}
			}
		}
		return true
	}
	return false
}

// Validate checks a partial step payload against the schema for stepIndex.
// Only fields present in the payload are checked: a step submission may
// legitimately omit fields (absence means "leave unchanged"), but anything
// it does carry has to be well-formed. An empty ObjectArray is valid here
// (it clears the collection) even though it never counts as complete.
func Validate(stepIndex int, payload Values) []FieldError {
	schema, ok := At(stepIndex)
	if !ok {
		return []FieldError{{Path: "step", Message: fmt.Sprintf("step %d out of range", stepIndex)}}
	}
	var errs []FieldError
	for _, f := range schema.Fields {
		v, present := payload[f.Name]
		if !present {
			continue
		}
		errs = append(errs, validateField(f, f.Name, v)...)
	}
	return errs
}

func validateField(f Field, path string, v interface{}) []FieldError {
	switch f.Kind {
	case String:
		s, ok := asString(v)
		if !ok || strings.TrimSpace(s) == "" {
			return []FieldError{{Path: path, Message: "must be a non-empty string"}}
		}
	case StringArray:
		items, ok := asStringSlice(v)
		if !ok {
			return []FieldError{{Path: path, Message: "must be an array of strings"}}
		}
		for i, item := range items {
			if strings.TrimSpace(item) == "" {
				return []FieldError{{Path: fmt.Sprintf("%s[%d]", path, i), Message: "must be a non-empty string"}}
			}
		}
	case Bool:
		b, ok := asBool(v)
		if !ok || !b {
			return []FieldError{{Path: path, Message: "must be true"}}
		}
	case Date:
		if _, ok := asDate(v); !ok {
			return []FieldError{{Path: path, Message: "must be a date (YYYY-MM-DD)"}}
		}
	case ObjectArray:
		elements, ok := asValuesSlice(v)
		if !ok {
			return []FieldError{{Path: path, Message: "must be an array of objects"}}
		}
		var errs []FieldError
		for i, element := range elements {
			for _, sub := range f.Sub {
				subPath := fmt.Sprintf("%s[%d].%s", path, i, sub.Name)
				sv, present := element[sub.Name]
				if !present {
					errs = append(errs, FieldError{Path: subPath, Message: "is required"})
					continue
				}
				errs = append(errs, validateField(sub, subPath, sv)...)
			}
		}
		return errs
	}
	return nil
}

// ParseDate coerces the wire representation of a date.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	}
	return "", false
}

func asBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case *bool:
		if b == nil {
			return false, false
		}
		return *b, true
	}
	return false, false
}

func asDate(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		parsed, err := ParseDate(t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func asStringSlice(v interface{}) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asValuesSlice(v interface{}) ([]Values, bool) {
	switch elements := v.(type) {
	case []Values:
		return elements, true
	case []map[string]interface{}:
		out := make([]Values, 0, len(elements))
		for _, element := range elements {
			out = append(out, Values(element))
		}
		return out, true
	case []interface{}:
		out := make([]Values, 0, len(elements))
		for _, element := range elements {
			m, ok := element.(map[string]interface{})
			if !ok {
				return nil, false
			}
			out = append(out, Values(m))
		}
		return out, true
	}
	return nil, false
}
