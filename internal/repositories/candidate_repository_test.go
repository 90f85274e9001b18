package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicehire/internal/models"
	"voicehire/internal/testhelpers"
)

func TestGetCandidateByAccessToken(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &CandidateRepository{DB: db}
	candidate := seedCandidate(t, db)

	got, err := repo.GetCandidateByAccessToken(candidate.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, candidate.ID, got.ID)
	// The job is preloaded so the portal can show its title and questions.
	assert.Equal(t, "Backend Engineer", got.Job.Title)

	_, err = repo.GetCandidateByAccessToken("no-such-token")
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestUpdateStatusRejectsUnknownCandidate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &CandidateRepository{DB: db}

	err := repo.UpdateStatus(999, models.CandidateStatusCompleted)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestDeleteCandidateCascades(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &CandidateRepository{DB: db}
	interviews := &InterviewRepository{DB: db}
	transcripts := &TranscriptRepository{DB: db}
	candidate := seedCandidate(t, db)

	interview, err := interviews.CreateOrResume(candidate.ID)
	require.NoError(t, err)
	idx := 0
	require.NoError(t, transcripts.Append(context.Background(), interview.ID, models.SpeakerAI, "Tell me about yourself", &idx))

	require.NoError(t, repo.DeleteCandidate(candidate.ID))

	_, err = repo.GetCandidateByID(candidate.ID)
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	var interviewCount, transcriptCount int64
	require.NoError(t, db.Model(&models.Interview{}).Where("candidate_id = ?", candidate.ID).Count(&interviewCount).Error)
	require.NoError(t, db.Model(&models.TranscriptEntry{}).Where("interview_id = ?", interview.ID).Count(&transcriptCount).Error)
	assert.Zero(t, interviewCount)
	assert.Zero(t, transcriptCount)
}

func TestTranscriptAppendPreservesOrder(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	transcripts := &TranscriptRepository{DB: db}
	interviews := &InterviewRepository{DB: db}
	candidate := seedCandidate(t, db)

	interview, err := interviews.CreateOrResume(candidate.ID)
	require.NoError(t, err)

	ctx := context.Background()
	q0 := 0
	require.NoError(t, transcripts.Append(ctx, interview.ID, models.SpeakerAI, "Tell me about yourself", &q0))
	require.NoError(t, transcripts.Append(ctx, interview.ID, models.SpeakerCandidate, "I build backends", &q0))

	entries, err := transcripts.ListByInterview(interview.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.SpeakerAI, entries[0].Speaker)
	assert.Equal(t, models.SpeakerCandidate, entries[1].Speaker)
}
