package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-admission-api/internal/models"
)

// ClassRepository reads class/grade reference data. Grade enrollment is
// always counted live from assigned students so capacity checks never act
// on a stale counter.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns the classes for a school without their grades.
func (r *ClassRepository) List(ctx context.Context, schoolID string) ([]models.Class, error) {
	const query = `SELECT id, school_id, name, created_at, updated_at FROM classes WHERE school_id = $1 ORDER BY name`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, schoolID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class with its grades in declaration order, each
// carrying a derived enrolled count.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const classQuery = `SELECT id, school_id, name, created_at, updated_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, classQuery, id); err != nil {
		return nil, err
	}

	const gradesQuery = `SELECT g.id, g.class_id, g.name, g.position, g.capacity, COUNT(s.id) AS enrolled
FROM grades g
LEFT JOIN students s ON s.grade_id = g.id
WHERE g.class_id = $1
GROUP BY g.id, g.class_id, g.name, g.position, g.capacity
ORDER BY g.position`
	if err := r.db.SelectContext(ctx, &class.Grades, gradesQuery, id); err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}
	return &class, nil
}
