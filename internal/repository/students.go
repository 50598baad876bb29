package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

func (r *Repository) CreateStudent(student *domain.Student) error {
	query := `
		INSERT INTO students (student_number, full_name, email, gpa, partner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{student.StudentNumber, student.FullName, student.Email, student.GPA, student.PartnerID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&student.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetStudentByID(id int64) (*domain.Student, error) {
	query := `
		SELECT student_number, full_name, email, gpa, partner_id
		FROM students WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	student := &domain.Student{
		ID: id,
	}

	dst := []any{&student.StudentNumber, &student.FullName, &student.Email, &student.GPA, &student.PartnerID}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return student, nil
}

func (r *Repository) GetAllStudents() ([]*domain.Student, error) {
	query := `
		SELECT id, student_number, full_name, email, gpa, partner_id FROM students ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]*domain.Student, 0)
	for rows.Next() {
		student := &domain.Student{}
		dst := []any{&student.ID, &student.StudentNumber, &student.FullName, &student.Email, &student.GPA, &student.PartnerID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func (r *Repository) UpdateStudent(student *domain.Student) error {
	query := `
		UPDATE students
		SET
			student_number = $1,
			full_name = $2,
			email = $3,
			gpa = $4,
			partner_id = $5
		WHERE id = $6
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{student.StudentNumber, student.FullName, student.Email, student.GPA, student.PartnerID, student.ID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&student.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteStudent(id int64) error {
	query := `
		DELETE FROM students WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
