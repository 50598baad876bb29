package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

func (r *Repository) CreateAlgorithmRun(run *domain.AlgorithmRun) error {
	query := `
		INSERT INTO algorithm_runs (run_timestamp, population_size, generations, mutation_rate, crossover_rate, best_fitness, execution_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{run.RunTimestamp, run.PopulationSize, run.Generations, run.MutationRate, run.CrossoverRate, run.BestFitness, run.ExecutionTimeMs}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAlgorithmRunByID(id int64) (*domain.AlgorithmRun, error) {
	query := `
		SELECT run_timestamp, population_size, generations, mutation_rate, crossover_rate, best_fitness, execution_time_ms
		FROM algorithm_runs WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run := &domain.AlgorithmRun{
		ID: id,
	}

	dst := []any{&run.RunTimestamp, &run.PopulationSize, &run.Generations, &run.MutationRate, &run.CrossoverRate, &run.BestFitness, &run.ExecutionTimeMs}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return run, nil
}

func (r *Repository) GetAllAlgorithmRuns() ([]*domain.AlgorithmRun, error) {
	query := `
		SELECT id, run_timestamp, population_size, generations, mutation_rate, crossover_rate, best_fitness, execution_time_ms
		FROM algorithm_runs ORDER BY run_timestamp DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.AlgorithmRun, 0)
	for rows.Next() {
		run := &domain.AlgorithmRun{}
		dst := []any{&run.ID, &run.RunTimestamp, &run.PopulationSize, &run.Generations, &run.MutationRate, &run.CrossoverRate, &run.BestFitness, &run.ExecutionTimeMs}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

func (r *Repository) GetLatestAlgorithmRun() (*domain.AlgorithmRun, error) {
	query := `
		SELECT id, run_timestamp, population_size, generations, mutation_rate, crossover_rate, best_fitness, execution_time_ms
		FROM algorithm_runs ORDER BY run_timestamp DESC LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	run := &domain.AlgorithmRun{}
	dst := []any{&run.ID, &run.RunTimestamp, &run.PopulationSize, &run.Generations, &run.MutationRate, &run.CrossoverRate, &run.BestFitness, &run.ExecutionTimeMs}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	return run, nil
}

func (r *Repository) DeleteAlgorithmRun(id int64) error {
	query := `
		DELETE FROM algorithm_runs WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

// InsertCompletedRun 在一个事务中写入运行记录、最终分配和各代统计
func (r *Repository) InsertCompletedRun(run *domain.AlgorithmRun, assignments []*domain.Assignment, stats []*domain.GenerationStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO algorithm_runs (run_timestamp, population_size, generations, mutation_rate, crossover_rate, best_fitness, execution_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	args := []any{run.RunTimestamp, run.PopulationSize, run.Generations, run.MutationRate, run.CrossoverRate, run.BestFitness, run.ExecutionTimeMs}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&run.ID); err != nil {
		return err
	}

	query = `
		INSERT INTO assignments (run_id, student_id, project_id, preference_rank)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for _, assignment := range assignments {
		assignment.RunID = run.ID
		if err := tx.QueryRowContext(ctx, query, assignment.RunID, assignment.StudentID, assignment.ProjectID, assignment.PreferenceRank).Scan(&assignment.ID); err != nil {
			return err
		}
	}

	query = `
		INSERT INTO generation_stats (run_id, generation, best_fitness, average_fitness, worst_fitness, standard_deviation, valid_count, best_ever_fitness)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	for _, s := range stats {
		s.RunID = run.ID
		args := []any{s.RunID, s.Generation, s.BestFitness, s.AverageFitness, s.WorstFitness, s.StandardDeviation, s.ValidCount, s.BestEverFitness}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&s.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAssignmentsByRunID(runID int64) ([]*domain.Assignment, error) {
	query := `
		SELECT id, run_id, student_id, project_id, preference_rank
		FROM assignments WHERE run_id = $1 ORDER BY student_id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.Assignment, 0)
	for rows.Next() {
		assignment := &domain.Assignment{}
		dst := []any{&assignment.ID, &assignment.RunID, &assignment.StudentID, &assignment.ProjectID, &assignment.PreferenceRank}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *Repository) GetGenerationStatsByRunID(runID int64) ([]*domain.GenerationStats, error) {
	query := `
		SELECT id, run_id, generation, best_fitness, average_fitness, worst_fitness, standard_deviation, valid_count, best_ever_fitness
		FROM generation_stats WHERE run_id = $1 ORDER BY generation
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]*domain.GenerationStats, 0)
	for rows.Next() {
		s := &domain.GenerationStats{}
		dst := []any{&s.ID, &s.RunID, &s.Generation, &s.BestFitness, &s.AverageFitness, &s.WorstFitness, &s.StandardDeviation, &s.ValidCount, &s.BestEverFitness}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
