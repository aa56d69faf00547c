package session

import (
	"context"
	"sync"

	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
)

// Session holds the one authenticated user of a client. It lives in memory
// only and is passed explicitly (or through a context) to whoever needs the
// current user.
type Session struct {
	mu   sync.RWMutex
	user *db.User
}

func New() *Session {
	return &Session{}
}

// Set replaces the current user. Passing nil signs the session out.
func (s *Session) Set(u *db.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

// User returns a copy of the current user, or nil when signed out.
func (s *Session) User() *db.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

func (s *Session) Clear() { s.Set(nil) }

// Require returns the current user or ErrUnauthenticated.
func (s *Session) Require() (db.User, error) {
	if u := s.User(); u != nil {
		return *u, nil
	}
	return db.User{}, svcErr.ErrUnauthenticated
}

type ctxKey struct{}

// NewContext returns a child context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// CurrentUser is the signed-in user of the session in ctx.
func CurrentUser(ctx context.Context) (db.User, error) {
	s := FromContext(ctx)
	if s == nil {
		return db.User{}, svcErr.ErrUnauthenticated
	}
	return s.Require()
}
