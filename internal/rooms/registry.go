package rooms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"voicehire/internal/session"
)

var ErrSessionActive = errors.New("an interview session is already active for this candidate")

// Registry tracks live interview sessions. Controllers are in-memory and
// per instance; a Redis lock per candidate guarantees at most one active
// session across instances.
type Registry struct {
	rdb        *redis.Client
	logger     *zap.Logger
	lockTTL    time.Duration
	instanceID string

	mu       sync.RWMutex
	sessions map[uint]*session.Controller
}

func NewRegistry(rdb *redis.Client, logger *zap.Logger, lockTTL time.Duration) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		rdb:        rdb,
		logger:     logger,
		lockTTL:    lockTTL,
		instanceID: uuid.New().String(),
		sessions:   make(map[uint]*session.Controller),
	}
}

func (r *Registry) lockKey(candidateID uint) string {
	return fmt.Sprintf("session:lock:%d", candidateID)
}

// Acquire claims the candidate's session slot. The Redis lock expires on
// its own after lockTTL, so a crashed instance cannot strand a candidate.
func (r *Registry) Acquire(ctx context.Context, candidateID uint) error {
	ok, err := r.rdb.SetNX(ctx, r.lockKey(candidateID), r.instanceID, r.lockTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !ok {
		return ErrSessionActive
	}
	return nil
}

// Release drops the candidate's lock. Only our own lock is deleted.
func (r *Registry) Release(ctx context.Context, candidateID uint) {
	holder, err := r.rdb.Get(ctx, r.lockKey(candidateID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("failed to read session lock", zap.Error(err))
		}
		return
	}
	if holder != r.instanceID {
		return
	}
	if err := r.rdb.Del(ctx, r.lockKey(candidateID)).Err(); err != nil {
		r.logger.Warn("failed to release session lock",
			zap.Uint("candidate_id", candidateID), zap.Error(err))
	}
}

// Put registers a running controller and cleans up after it finishes.
// Any previous controller for the candidate is exited first.
func (r *Registry) Put(candidateID uint, ctrl *session.Controller) {
	r.mu.Lock()
	if prev, exists := r.sessions[candidateID]; exists {
		prev.Exit()
	}
	r.sessions[candidateID] = ctrl
	r.mu.Unlock()

	go func() {
		<-ctrl.Done()
		r.mu.Lock()
		if r.sessions[candidateID] == ctrl {
			delete(r.sessions, candidateID)
		}
		r.mu.Unlock()
		r.Release(context.Background(), candidateID)
		r.logger.Info("session removed from registry",
			zap.Uint("candidate_id", candidateID))
	}()
}

func (r *Registry) Get(candidateID uint) (*session.Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctrl, ok := r.sessions[candidateID]
	return ctrl, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Shutdown exits every live session and waits for each loop to finish.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.RLock()
	controllers := make([]*session.Controller, 0, len(r.sessions))
	for _, ctrl := range r.sessions {
		controllers = append(controllers, ctrl)
	}
	r.mu.RUnlock()

	for _, ctrl := range controllers {
		ctrl.Exit()
	}
	for _, ctrl := range controllers {
		select {
		case <-ctrl.Done():
		case <-ctx.Done():
			return
		}
	}
}
