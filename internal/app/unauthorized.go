package app

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Veraticus/contractdesk/internal/api"
	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/listview"
)

// ErrSessionExpired is reported after a 401 has cleared the session.
var ErrSessionExpired = errors.New("session expired")

// SessionExpiredMessage is shown when the backend rejects the token.
const SessionExpiredMessage = "Your session has expired. Please log in again."

// SessionClearer drops the persisted session.
type SessionClearer interface {
	Clear() error
}

// UnauthorizedPolicy reacts to a 401 from any API call by clearing the
// session and routing the user to login.
type UnauthorizedPolicy struct {
	session    SessionClearer
	onRedirect func()
	logger     *slog.Logger
	mu         sync.Mutex
}

// NewUnauthorizedPolicy creates a policy that clears session.
func NewUnauthorizedPolicy(session SessionClearer) *UnauthorizedPolicy {
	return &UnauthorizedPolicy{
		session: session,
		logger:  slog.Default().With("component", "auth"),
	}
}

// OnRedirect sets the function that sends the user to login.
func (p *UnauthorizedPolicy) OnRedirect(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRedirect = fn
}

// Handle applies the policy when err is a 401 and reports whether it did.
func (p *UnauthorizedPolicy) Handle(err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}

	if clearErr := p.session.Clear(); clearErr != nil {
		p.logger.Warn("Failed to clear session after 401", "error", clearErr)
	} else {
		p.logger.Info("Session cleared after 401")
	}

	p.mu.Lock()
	redirect := p.onRedirect
	p.mu.Unlock()
	if redirect != nil {
		redirect()
	}
	return true
}

// Expired converts err into a session-expired user error when it is a 401.
// Other errors are returned unchanged. The session itself is cleared by
// Handle, which the API client calls as soon as the 401 arrives.
func (p *UnauthorizedPolicy) Expired(err error) error {
	if !api.IsUnauthorized(err) {
		return err
	}
	return common.NewUserError(SessionExpiredMessage, errors.Join(ErrSessionExpired, err))
}

// Notifier wraps next so every reported 401 shows the session-expired message.
func (p *UnauthorizedPolicy) Notifier(next listview.Notifier) listview.Notifier {
	if next == nil {
		next = listview.NopNotifier{}
	}
	return &policyNotifier{policy: p, next: next}
}

type policyNotifier struct {
	policy *UnauthorizedPolicy
	next   listview.Notifier
}

func (n *policyNotifier) Success(msg string) {
	n.next.Success(msg)
}

func (n *policyNotifier) Error(err error) {
	n.next.Error(n.policy.Expired(err))
}
