package domain

import (
	"fmt"
	"time"
)

// LearningJobStatus represents the status of a learning job
type LearningJobStatus string

const (
	LearningJobStatusPending    LearningJobStatus = "pending"
	LearningJobStatusProcessing LearningJobStatus = "processing"
	LearningJobStatusCompleted  LearningJobStatus = "completed"
	LearningJobStatusFailed     LearningJobStatus = "failed"
	LearningJobStatusSkipped    LearningJobStatus = "skipped"
)

// LearningJob queues one interaction for the knowledge learning path. Jobs
// are processed off the request path so a learning failure never fails the
// user-visible response.
type LearningJob struct {
	ID              string
	OwnerID         string
	Question        string
	Response        string
	InteractionType InteractionType
	Status          LearningJobStatus
	Retries         int32
	Error           string
	CreatedAt       time.Time
	ProcessedAt     *time.Time
}

// NewLearningJob creates a new pending LearningJob instance.
func NewLearningJob(
	id, ownerID, question, response string,
	interactionType InteractionType,
	createdAt time.Time,
) *LearningJob {
	return &LearningJob{
		ID:              id,
		OwnerID:         ownerID,
		Question:        question,
		Response:        response,
		InteractionType: interactionType,
		Status:          LearningJobStatusPending,
		Retries:         0,
		Error:           "",
		CreatedAt:       createdAt,
		ProcessedAt:     nil,
	}
}

// ValidateLearningJob validates a LearningJob instance.
func ValidateLearningJob(j *LearningJob) error {
	if j == nil {
		return fmt.Errorf("learning job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("learning job ID is required")
	}

	if j.OwnerID == "" {
		return fmt.Errorf("learning job OwnerID is required")
	}

	if j.Question == "" {
		return fmt.Errorf("learning job Question is required")
	}

	if !isValidLearningJobStatus(j.Status) {
		return fmt.Errorf("learning job Status is invalid: %s", j.Status)
	}

	if j.Retries < 0 {
		return fmt.Errorf("learning job Retries cannot be negative")
	}

	return nil
}

// isValidLearningJobStatus checks if a LearningJobStatus is valid.
func isValidLearningJobStatus(s LearningJobStatus) bool {
	switch s {
	case LearningJobStatusPending, LearningJobStatusProcessing,
		LearningJobStatusCompleted, LearningJobStatusFailed, LearningJobStatusSkipped:
		return true
	}
	return false
}
