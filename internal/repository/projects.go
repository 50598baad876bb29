package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

func (r *Repository) CreateProject(project *domain.Project) error {
	query := `
		INSERT INTO projects (code, name, description, min_capacity, max_capacity, required_gpa)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{project.Code, project.Name, project.Description, project.MinCapacity, project.MaxCapacity, project.RequiredGPA}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&project.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetProjectByID(id int64) (*domain.Project, error) {
	query := `
		SELECT code, name, description, min_capacity, max_capacity, required_gpa
		FROM projects WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	project := &domain.Project{
		ID: id,
	}

	dst := []any{&project.Code, &project.Name, &project.Description, &project.MinCapacity, &project.MaxCapacity, &project.RequiredGPA}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return project, nil
}

func (r *Repository) GetAllProjects() ([]*domain.Project, error) {
	query := `
		SELECT id, code, name, description, min_capacity, max_capacity, required_gpa FROM projects ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project := &domain.Project{}
		dst := []any{&project.ID, &project.Code, &project.Name, &project.Description, &project.MinCapacity, &project.MaxCapacity, &project.RequiredGPA}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *Repository) UpdateProject(project *domain.Project) error {
	query := `
		UPDATE projects
		SET
			code = $1,
			name = $2,
			description = $3,
			min_capacity = $4,
			max_capacity = $5,
			required_gpa = $6
		WHERE id = $7
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{project.Code, project.Name, project.Description, project.MinCapacity, project.MaxCapacity, project.RequiredGPA, project.ID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&project.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteProject(id int64) error {
	query := `
		DELETE FROM projects WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
