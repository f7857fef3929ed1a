package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"rfp-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNoRows = sql.ErrNoRows

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `SELECT * FROM projects WHERE id = $1`

	err := r.db.Get(&project, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}
