package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chat-guardian-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

// FormSessionRepository tracks open form sessions in Redis so gate bypass
// survives restarts and is shared between instances.
type FormSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFormSessionRepository(rdb *redis.Client, ttl time.Duration) *FormSessionRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &FormSessionRepository{
		rdb: rdb,
		ttl: ttl,
	}
}

func (r *FormSessionRepository) key(sessionID string) string {
	return fmt.Sprintf("form_session:%s", sessionID)
}

// Open marks a form as active for the session. Re-opening refreshes the TTL.
func (r *FormSessionRepository) Open(ctx context.Context, session *store.FormSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(session.SessionID), data, r.ttl).Err()
}

// Get returns the active form session, or nil when the session has no open
// form.
func (r *FormSessionRepository) Get(ctx context.Context, sessionID string) (*store.FormSession, error) {
	data, err := r.rdb.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session store.FormSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Close ends the form session. Closing a session without an open form is a
// no-op.
func (r *FormSessionRepository) Close(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.key(sessionID)).Err()
}
