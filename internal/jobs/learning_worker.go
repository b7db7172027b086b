package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/orbia-ai/orbia/internal/domain"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// claimBatchSize bounds how many jobs a single poll claims
	claimBatchSize = 50
)

// LearningJobRepository defines the interface for learning job persistence
type LearningJobRepository interface {
	// ClaimPending atomically claims up to limit pending jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.LearningJob, error)

	// UpdateStatus updates the status of a learning job
	UpdateStatus(ctx context.Context, id string, status domain.LearningJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, id string) error
}

// Learner evaluates one interaction and stores it when valuable enough.
// A nil entry with a nil error means the interaction was not worth keeping.
type Learner interface {
	Learn(ctx context.Context, ownerID, question, response string, interactionType domain.InteractionType) (*domain.KnowledgeEntry, error)
}

// LearningWorker processes queued learning jobs
type LearningWorker struct {
	repo    LearningJobRepository
	learner Learner
}

// NewLearningWorker creates a new LearningWorker instance
func NewLearningWorker(repo LearningJobRepository, learner Learner) *LearningWorker {
	return &LearningWorker{
		repo:    repo,
		learner: learner,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *LearningWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending learning jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *LearningWorker) processJob(ctx context.Context, job *domain.LearningJob) error {
	entry, err := w.learner.Learn(ctx, job.OwnerID, job.Question, job.Response, job.InteractionType)
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if entry == nil {
		// interaction scored below the admission gate
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusSkipped, ""); err != nil {
			return fmt.Errorf("failed to update job status to skipped: %w", err)
		}
		log.Printf("Job %s skipped: interaction not valuable enough", job.ID)
		return nil
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed: learned entry %s", job.ID, entry.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *LearningWorker) handleJobFailure(ctx context.Context, job *domain.LearningJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	// Reset to pending so a later poll retries it
	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
