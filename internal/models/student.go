package models

import "time"

// Student is the enrollment record backing an admission application. It is
// created exactly once, alongside the application, and only its class and
// grade bindings change afterwards.
type Student struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"schoolId"`
	UserID    string    `db:"user_id" json:"userId"`
	ClassID   *string   `db:"class_id" json:"classId,omitempty"`
	GradeID   *string   `db:"grade_id" json:"gradeId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
