package rdp

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SessionState is the open state of a platform session.
type SessionState int

const (
	SessionClosed SessionState = iota
	SessionPending
	SessionOpened
)

func (s SessionState) String() string {
	switch s {
	case SessionPending:
		return "Pending"
	case SessionOpened:
		return "Open"
	default:
		return "Closed"
	}
}

// Session is a platform session for the content layer. Token acquisition is
// internal to the session; content objects only ask it for an authorized call.
type Session struct {
	logger *zap.Logger
	client *Client
	auth   AuthConfig

	mu    sync.Mutex
	state SessionState
	token *Token
}

// NewSession creates a closed session. Call Open before using it.
func NewSession(logger *zap.Logger, client *Client, auth AuthConfig) *Session {
	return &Session{
		logger: logger,
		client: client,
		auth:   auth,
	}
}

// Open signs on with the password grant. On failure the session returns to
// Closed and the error is returned to the caller.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionOpened {
		return nil
	}
	s.state = SessionPending

	token, err := s.client.RequestToken(ctx, s.auth)
	if err != nil {
		s.state = SessionClosed
		s.token = nil
		s.logger.Warn("rdp.session.open_failed", zap.Error(err))
		return err
	}

	s.token = token
	s.state = SessionOpened
	s.logger.Info("rdp.session.opened", zap.Stringer("state", s.state))
	return nil
}

// OpenState reports the current session state.
func (s *Session) OpenState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close drops the session token.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	s.state = SessionClosed
}

func (s *Session) accessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionOpened || s.token == nil {
		return "", ErrSessionNotOpen
	}
	return s.token.AccessToken, nil
}

// getEvents issues an events request authorized by the session token.
func (s *Session) getEvents(ctx context.Context, req EventsRequest) ([]byte, error) {
	token, err := s.accessToken()
	if err != nil {
		return nil, err
	}
	return s.client.GetEvents(ctx, token, req)
}
