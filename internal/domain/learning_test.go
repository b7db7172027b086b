package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLearningJob(t *testing.T) {
	now := time.Now()
	job := NewLearningJob("j1", "user1", "question", "response", InteractionWebSearch, now)

	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, "user1", job.OwnerID)
	assert.Equal(t, LearningJobStatusPending, job.Status)
	assert.Equal(t, int32(0), job.Retries)
	assert.Empty(t, job.Error)
	assert.Equal(t, now, job.CreatedAt)
	assert.Nil(t, job.ProcessedAt)
}

func TestValidateLearningJob(t *testing.T) {
	valid := func() *LearningJob {
		return NewLearningJob("j1", "user1", "q", "r", InteractionRAGConversation, time.Now())
	}

	t.Run("valid job passes", func(t *testing.T) {
		require.NoError(t, ValidateLearningJob(valid()))
	})

	t.Run("nil job fails", func(t *testing.T) {
		assert.Error(t, ValidateLearningJob(nil))
	})

	tests := []struct {
		name   string
		mutate func(*LearningJob)
	}{
		{"missing ID", func(j *LearningJob) { j.ID = "" }},
		{"missing OwnerID", func(j *LearningJob) { j.OwnerID = "" }},
		{"missing Question", func(j *LearningJob) { j.Question = "" }},
		{"invalid status", func(j *LearningJob) { j.Status = "paused" }},
		{"negative retries", func(j *LearningJob) { j.Retries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := valid()
			tt.mutate(job)
			assert.Error(t, ValidateLearningJob(job))
		})
	}
}
