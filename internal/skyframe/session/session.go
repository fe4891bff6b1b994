// Package session tracks the authenticated state of a single remote account.
//
// A Session moves Unauthenticated -> Authenticating -> Authenticated. A failed
// login returns it to Unauthenticated so the next caller tries again. Callers
// that arrive while a login is in flight wait for that login instead of
// starting their own.
package session

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// State is the authentication state of a Session.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// LoginFunc performs one authentication attempt against the remote service.
type LoginFunc func(ctx context.Context) error

// Session guards a LoginFunc so that it runs at most once at a time and is
// skipped entirely once it has succeeded.
type Session struct {
	login LoginFunc

	mu    sync.Mutex
	state State
	group singleflight.Group
}

// New returns an unauthenticated Session that authenticates with login.
func New(login LoginFunc) *Session {
	return &Session{login: login}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login runs an authentication attempt even if the session is already
// authenticated. Concurrent calls share the attempt already in flight.
func (s *Session) Login(ctx context.Context) error {
	return s.do(ctx, true)
}

// Ensure authenticates only if the session is not already authenticated.
func (s *Session) Ensure(ctx context.Context) error {
	if s.State() == Authenticated {
		return nil
	}
	return s.do(ctx, false)
}

func (s *Session) do(ctx context.Context, force bool) error {
	// the attempt is shared, so it must outlive the caller that started it
	lctx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("login", func() (any, error) {
		// a login that finished between the caller's check and here counts
		if !force && s.State() == Authenticated {
			return nil, nil
		}
		s.setState(Authenticating)
		if err := s.login(lctx); err != nil {
			s.setState(Unauthenticated)
			return nil, err
		}
		s.setState(Authenticated)
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// Invalidate forgets a previous successful login. A login in flight is not
// affected.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Authenticated {
		s.state = Unauthenticated
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
