package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

func (r *Repository) GetAllPreferences() ([]*domain.Preference, error) {
	query := `
		SELECT id, student_id, project_id, rank FROM preferences ORDER BY student_id, rank
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preferences := make([]*domain.Preference, 0)
	for rows.Next() {
		pref := &domain.Preference{}
		if err := rows.Scan(&pref.ID, &pref.StudentID, &pref.ProjectID, &pref.Rank); err != nil {
			return nil, err
		}
		preferences = append(preferences, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}

func (r *Repository) GetPreferencesByStudentID(studentID int64) ([]*domain.Preference, error) {
	query := `
		SELECT id, student_id, project_id, rank FROM preferences WHERE student_id = $1 ORDER BY rank
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preferences := make([]*domain.Preference, 0)
	for rows.Next() {
		pref := &domain.Preference{}
		if err := rows.Scan(&pref.ID, &pref.StudentID, &pref.ProjectID, &pref.Rank); err != nil {
			return nil, err
		}
		preferences = append(preferences, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}

// ReplaceStudentPreferences 在一个事务中替换某个学生的全部志愿
func (r *Repository) ReplaceStudentPreferences(studentID int64, preferences []*domain.Preference) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先删除该学生已有的志愿
	query := `DELETE FROM preferences WHERE student_id = $1`
	if _, err := tx.ExecContext(ctx, query, studentID); err != nil {
		return err
	}

	query = `
		INSERT INTO preferences (student_id, project_id, rank)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for _, pref := range preferences {
		pref.StudentID = studentID
		if err := tx.QueryRowContext(ctx, query, pref.StudentID, pref.ProjectID, pref.Rank).Scan(&pref.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
