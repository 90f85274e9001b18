package rooms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicehire/internal/models"
	"voicehire/internal/session"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

type failingTransport struct{}

func (failingTransport) Connect(ctx context.Context, cred session.Credential) (<-chan session.TransportEvent, error) {
	return nil, errors.New("connect refused")
}

func (failingTransport) Close() error { return nil }

type nopStore struct{}

func (nopStore) MarkInterviewStarted(context.Context, uint, time.Time) error   { return nil }
func (nopStore) MarkInterviewCompleted(context.Context, uint, time.Time) error { return nil }
func (nopStore) MarkInterviewFailed(context.Context, uint, string) error       { return nil }
func (nopStore) MarkCandidateCompleted(context.Context, uint) error            { return nil }

type nopAppender struct{}

func (nopAppender) Append(context.Context, uint, models.Speaker, string, *int) error { return nil }

func shortLivedController() *session.Controller {
	return session.New(session.Config{},
		session.Interview{ID: 1, CandidateID: 7, Status: models.InterviewStatusPending},
		[]string{"q"},
		session.Credential{},
		session.Deps{Transport: failingTransport{}, Store: nopStore{}, Transcripts: nopAppender{}})
}

func TestAcquireBlocksSecondInstance(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	first := NewRegistry(client, nil, time.Minute)
	second := NewRegistry(client, nil, time.Minute)

	require.NoError(t, first.Acquire(ctx, 7))
	assert.ErrorIs(t, second.Acquire(ctx, 7), ErrSessionActive)

	// A different candidate is unaffected.
	require.NoError(t, second.Acquire(ctx, 8))
}

func TestAcquireIsExclusivePerCandidate(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	// Even the holding instance cannot double-acquire: one candidate, one
	// session, full stop.
	reg := NewRegistry(client, nil, time.Minute)
	require.NoError(t, reg.Acquire(ctx, 7))
	assert.ErrorIs(t, reg.Acquire(ctx, 7), ErrSessionActive)

	reg.Release(ctx, 7)
	require.NoError(t, reg.Acquire(ctx, 7))
}

func TestReleaseOnlyDropsOwnLock(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	first := NewRegistry(client, nil, time.Minute)
	second := NewRegistry(client, nil, time.Minute)

	require.NoError(t, first.Acquire(ctx, 7))
	second.Release(ctx, 7)
	assert.ErrorIs(t, second.Acquire(ctx, 7), ErrSessionActive)

	first.Release(ctx, 7)
	require.NoError(t, second.Acquire(ctx, 7))
}

func TestLockExpiresAfterTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	first := NewRegistry(client, nil, time.Minute)
	second := NewRegistry(client, nil, time.Minute)

	require.NoError(t, first.Acquire(ctx, 7))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, second.Acquire(ctx, 7))
}

func TestPutReleasesLockWhenStartFails(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	reg := NewRegistry(client, nil, time.Minute)
	require.NoError(t, reg.Acquire(ctx, 7))

	// No questions: the session loop never launches. A failed Start still
	// closes Done, so the watcher must not hold the lock until the TTL.
	ctrl := session.New(session.Config{},
		session.Interview{ID: 1, CandidateID: 7, Status: models.InterviewStatusPending},
		nil,
		session.Credential{},
		session.Deps{Transport: failingTransport{}, Store: nopStore{}, Transcripts: nopAppender{}})
	reg.Put(7, ctrl)
	require.Error(t, ctrl.Start(ctx))

	assert.Eventually(t, func() bool {
		_, ok := reg.Get(7)
		return !ok && reg.Acquire(ctx, 7) == nil
	}, 3*time.Second, 10*time.Millisecond)
}

func TestPutRemovesFinishedSession(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	reg := NewRegistry(client, nil, time.Minute)
	require.NoError(t, reg.Acquire(ctx, 7))

	ctrl := shortLivedController()
	reg.Put(7, ctrl)

	_, ok := reg.Get(7)
	assert.True(t, ok)
	assert.Equal(t, 1, reg.Count())

	// The controller fails fast on connect; registry cleanup follows Done.
	require.NoError(t, ctrl.Start(ctx))
	select {
	case <-ctrl.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("controller never finished")
	}

	assert.Eventually(t, func() bool {
		_, ok := reg.Get(7)
		return !ok && reg.Count() == 0
	}, 3*time.Second, 10*time.Millisecond)

	// The lock was released, so the candidate can start again elsewhere.
	other := NewRegistry(client, nil, time.Minute)
	assert.Eventually(t, func() bool {
		return other.Acquire(ctx, 7) == nil
	}, 3*time.Second, 10*time.Millisecond)
}
