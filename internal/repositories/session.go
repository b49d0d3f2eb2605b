package repositories

import (
	"context"

	"github.com/desertthunder/onlyhub/internal/services"
)

// SessionCache persists the admin session under the admin_session key.
type SessionCache struct {
	local *LocalStore
}

func NewSessionCache(local *LocalStore) *SessionCache {
	return &SessionCache{local: local}
}

// Load returns the stored session, or nil when none is stored.
func (s *SessionCache) Load(ctx context.Context) (*services.Session, error) {
	var session services.Session
	ok, err := s.local.GetJSON(ctx, KeySession, &session)
	if err != nil || !ok {
		return nil, err
	}
	return &session, nil
}

func (s *SessionCache) Save(ctx context.Context, session *services.Session) error {
	return s.local.PutJSON(ctx, KeySession, session)
}

func (s *SessionCache) Clear(ctx context.Context) error {
	return s.local.Remove(ctx, KeySession)
}
