package service

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/Lillious-Networks/Frostfire-Forge-Gateway-sub001/domain"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// dashboardSessionTTL is the absolute lifetime of an operator session; each
// validated call slides the expiry forward by this much.
const dashboardSessionTTL = time.Hour

// DashboardAuth guards the operator-facing status view with short-lived
// random tokens. Tokens share the secret space with backend registration but
// have a wholly independent lifecycle from client sessions.
type DashboardAuth struct {
	authKey string
	clock   clockwork.Clock
	logger  log.Logger

	mu     sync.Mutex
	tokens map[string]*domain.DashboardSession
}

// NewDashboardAuth creates a dashboard auth store over the shared secret.
func NewDashboardAuth(authKey string, clock clockwork.Clock, logger log.Logger) *DashboardAuth {
	return &DashboardAuth{
		authKey: authKey,
		clock:   clock,
		logger:  log.WithPrefix(logger, "component", "dashboard_auth"),
		tokens:  make(map[string]*domain.DashboardSession),
	}
}

// Login compares authKey against the shared secret and mints a session token
// with a one-hour expiry. A mismatch yields an unauthorized error.
func (d *DashboardAuth) Login(authKey string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(authKey), []byte(d.authKey)) != 1 {
		return "", NewUnauthorizedError("invalid auth key")
	}

	token := uuid.NewString()
	d.mu.Lock()
	d.tokens[token] = &domain.DashboardSession{
		Token:     token,
		ExpiresAt: d.clock.Now().Add(dashboardSessionTTL),
	}
	d.mu.Unlock()

	level.Info(d.logger).Log("msg", "dashboard login")
	return token, nil
}

// Validate checks the token and, when valid, slides its expiry forward by one
// hour. Expired tokens are purged on sight and rejected, like unknown ones.
func (d *DashboardAuth) Validate(token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.tokens[token]
	if !ok {
		return NewUnauthorizedError("unknown dashboard session")
	}
	now := d.clock.Now()
	if now.After(sess.ExpiresAt) {
		delete(d.tokens, token)
		return NewUnauthorizedError("dashboard session expired")
	}
	sess.ExpiresAt = now.Add(dashboardSessionTTL)
	return nil
}

// Logout removes the token unconditionally.
func (d *DashboardAuth) Logout(token string) {
	d.mu.Lock()
	delete(d.tokens, token)
	d.mu.Unlock()
}

// CheckAuthKey reports whether key matches the shared secret. Used by the
// control-plane handlers, which share the secret space with dashboard login.
func (d *DashboardAuth) CheckAuthKey(key string) bool {
	return subtle.ConstantTimeCompare([]byte(key), []byte(d.authKey)) == 1
}
