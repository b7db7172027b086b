package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbia-ai/orbia/internal/domain"
)

// LearningJobRepository queues chat turns for asynchronous learning.
type LearningJobRepository struct {
	db dbtx
}

func NewLearningJobRepository(pool *pgxpool.Pool) *LearningJobRepository {
	return &LearningJobRepository{db: pool}
}

func NewLearningJobRepositoryWithTx(tx pgx.Tx) *LearningJobRepository {
	return &LearningJobRepository{db: tx}
}

func (r *LearningJobRepository) Create(ctx context.Context, job *domain.LearningJob) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO learning_jobs (id, owner_id, question, response, interaction_type, status, retries, error, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.OwnerID, job.Question, job.Response, job.InteractionType,
		job.Status, job.Retries, job.Error, job.CreatedAt, job.ProcessedAt,
	)
	return err
}

// Enqueue is Create under the name the orchestrator's queue interface uses.
func (r *LearningJobRepository) Enqueue(ctx context.Context, job *domain.LearningJob) error {
	return r.Create(ctx, job)
}

func (r *LearningJobRepository) GetByID(ctx context.Context, id string) (*domain.LearningJob, error) {
	var job domain.LearningJob
	var errMsg pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, question, response, interaction_type, status, retries, error, created_at, processed_at
		 FROM learning_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.OwnerID, &job.Question, &job.Response, &job.InteractionType,
		&job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLearningJobNotFound
		}
		return nil, err
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

// ClaimPending atomically moves a batch of pending jobs to processing,
// skipping rows locked by concurrent workers.
func (r *LearningJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.LearningJob, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM learning_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE learning_jobs
		 SET status = $3,
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE learning_jobs.id = cte.id
		 RETURNING learning_jobs.id, learning_jobs.owner_id, learning_jobs.question, learning_jobs.response,
		           learning_jobs.interaction_type, learning_jobs.status, learning_jobs.retries,
		           learning_jobs.error, learning_jobs.created_at, learning_jobs.processed_at`,
		domain.LearningJobStatusPending, limit, domain.LearningJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.LearningJob
	for rows.Next() {
		var job domain.LearningJob
		var errMsg pgtype.Text
		if err := rows.Scan(&job.ID, &job.OwnerID, &job.Question, &job.Response, &job.InteractionType,
			&job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			job.Error = errMsg.String
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// UpdateStatus records a terminal or retryable outcome. Terminal states get a
// processed_at timestamp.
func (r *LearningJobRepository) UpdateStatus(ctx context.Context, id string, status domain.LearningJobStatus, errMsg string) error {
	var processedAt *time.Time
	switch status {
	case domain.LearningJobStatusCompleted, domain.LearningJobStatusFailed, domain.LearningJobStatusSkipped:
		now := time.Now().UTC()
		processedAt = &now
	}

	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE learning_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, errPtr, processedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrLearningJobNotFound
	}
	return nil
}

func (r *LearningJobRepository) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE learning_jobs SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrLearningJobNotFound
	}
	return nil
}

// CountByStatus reports queue depth per status, for the health endpoint.
func (r *LearningJobRepository) CountByStatus(ctx context.Context) (map[domain.LearningJobStatus]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*) FROM learning_jobs GROUP BY status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LearningJobStatus]int)
	for rows.Next() {
		var status domain.LearningJobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
