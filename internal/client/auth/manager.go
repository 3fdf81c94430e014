package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/client/idp"
	"github.com/AntoDono/utmostatmos-app/internal/client/storage"
)

// operation is the single in-flight login or logout. Concurrent calls join it
// instead of starting a second identity-provider transaction.
type operation struct {
	kind string
	done chan struct{}
	err  error
}

// Manager is the client auth state machine. All transitions are serialized
// under a mutex; at most one login or logout runs at a time.
type Manager struct {
	connector idp.Connector
	store     storage.Store
	logger    *zap.Logger

	mu          sync.Mutex
	state       State
	profile     idp.Profile
	inflight    *operation
	subscribers []chan Snapshot
}

// NewManager constructs a manager in the anonymous state. Call Rehydrate to
// restore state persisted by a previous run.
func NewManager(connector idp.Connector, store storage.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		connector: connector,
		store:     store,
		logger:    logger,
		state:     StateAnonymous,
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Profile returns the cached profile of the authenticated user. Zero-valued
// outside the authenticated state.
func (m *Manager) Profile() idp.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// Subscribe returns a channel receiving a snapshot on every transition.
// Slow receivers miss intermediate snapshots rather than blocking transitions.
func (m *Manager) Subscribe() <-chan Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Snapshot, 8)
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Login runs the identity provider's consent flow. A login or logout already
// in flight is joined: the call logs, waits, and returns that operation's
// error without starting a second provider transaction. Provider cancellation
// returns the machine to its prior state and is not an error.
func (m *Manager) Login(ctx context.Context) error {
	m.mu.Lock()
	if op := m.inflight; op != nil {
		m.mu.Unlock()
		m.logger.Info("auth operation already in flight, joining", zap.String("operation", op.kind))
		<-op.done
		return op.err
	}
	if m.state == StateAuthenticated {
		m.mu.Unlock()
		m.logger.Info("already authenticated, login skipped")
		return nil
	}

	prior := m.state
	op := &operation{kind: "login", done: make(chan struct{})}
	m.inflight = op
	m.transitionLocked(StateAuthenticating, idp.Profile{})
	m.mu.Unlock()

	err := m.login(ctx, prior)

	m.mu.Lock()
	op.err = err
	m.inflight = nil
	m.mu.Unlock()
	close(op.done)
	return err
}

func (m *Manager) login(ctx context.Context, prior State) error {
	creds, err := m.connector.Authorize(ctx)
	if err != nil {
		m.mu.Lock()
		m.transitionLocked(prior, idp.Profile{})
		m.mu.Unlock()

		if errors.Is(err, idp.ErrAuthorizeCancelled) || errors.Is(err, idp.ErrTransactionActive) {
			m.logger.Info("login abandoned", zap.Error(err))
			return nil
		}
		return fmt.Errorf("authorize: %w", err)
	}

	if strings.TrimSpace(creds.AccessToken) == "" {
		m.mu.Lock()
		m.transitionLocked(prior, idp.Profile{})
		m.mu.Unlock()
		return fmt.Errorf("identity provider returned an empty access token")
	}

	if err := m.persistCredentials(ctx, creds); err != nil {
		m.mu.Lock()
		m.transitionLocked(prior, idp.Profile{})
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.transitionLocked(StateAuthenticated, creds.Profile)
	m.mu.Unlock()

	m.logger.Info("login complete", zap.String("subject", creds.Profile.Subject))
	return nil
}

func (m *Manager) persistCredentials(ctx context.Context, creds idp.Credentials) error {
	if err := m.store.Set(ctx, keyAccessToken, []byte(creds.AccessToken)); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	profileJSON, err := json.Marshal(creds.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := m.store.Set(ctx, keyUserProfile, profileJSON); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	if err := m.store.Delete(ctx, keyGuest); err != nil {
		return fmt.Errorf("clear guest flag: %w", err)
	}
	return nil
}

// Logout clears the local credential cache first, transitions to anonymous,
// then makes a best-effort attempt to clear the provider's credentials.
// Provider-side cancellation or conflict is benign: local state is already
// cleared, so the logout is complete from the caller's perspective.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if op := m.inflight; op != nil {
		m.mu.Unlock()
		m.logger.Info("auth operation already in flight, joining", zap.String("operation", op.kind))
		<-op.done
		return op.err
	}

	op := &operation{kind: "logout", done: make(chan struct{})}
	m.inflight = op
	m.transitionLocked(StateLoggingOut, idp.Profile{})
	m.mu.Unlock()

	err := m.logout(ctx)

	m.mu.Lock()
	op.err = err
	m.inflight = nil
	m.mu.Unlock()
	close(op.done)
	return err
}

func (m *Manager) logout(ctx context.Context) error {
	if err := m.clearLocal(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.transitionLocked(StateAnonymous, idp.Profile{})
	m.mu.Unlock()

	if err := m.connector.ClearCredentials(ctx); err != nil {
		if errors.Is(err, idp.ErrAuthorizeCancelled) || errors.Is(err, idp.ErrTransactionActive) {
			m.logger.Info("provider logout abandoned, local session already cleared", zap.Error(err))
		} else {
			m.logger.Warn("provider credential clear failed, local session already cleared", zap.Error(err))
		}
	}
	return nil
}

func (m *Manager) clearLocal(ctx context.Context) error {
	for _, key := range []string{keyAccessToken, keyUserProfile, keyGuest} {
		if err := m.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// ContinueAsGuest persists the guest flag and transitions to guest without
// contacting the identity provider.
func (m *Manager) ContinueAsGuest(ctx context.Context) error {
	if err := m.store.Set(ctx, keyGuest, []byte("true")); err != nil {
		return fmt.Errorf("persist guest flag: %w", err)
	}

	m.mu.Lock()
	m.transitionLocked(StateGuest, idp.Profile{})
	m.mu.Unlock()
	return nil
}

// AccessToken returns the current bearer token, refreshing it through the
// connector when needed. In the anonymous or guest state it fails with
// ErrNotLoggedIn rather than returning an empty token. A refresh that yields
// an empty token is a hard failure and leaves the state unchanged.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	if state != StateAuthenticated {
		return "", ErrNotLoggedIn
	}

	creds, err := m.connector.Credentials(ctx)
	if err != nil {
		// The connector holds credentials in memory only. After a restart the
		// persisted token is all the client has until the server rejects it
		// and the user logs in again.
		if errors.Is(err, idp.ErrNoCredentials) {
			return m.cachedAccessToken(ctx)
		}
		return "", fmt.Errorf("retrieve credentials: %w", err)
	}
	if strings.TrimSpace(creds.AccessToken) == "" {
		return "", fmt.Errorf("identity provider returned an empty access token")
	}

	if err := m.store.Set(ctx, keyAccessToken, []byte(creds.AccessToken)); err != nil {
		return "", fmt.Errorf("cache access token: %w", err)
	}
	return creds.AccessToken, nil
}

func (m *Manager) cachedAccessToken(ctx context.Context) (string, error) {
	cached, err := m.store.Get(ctx, keyAccessToken)
	if err != nil {
		return "", fmt.Errorf("read cached token: %w", err)
	}
	token := strings.TrimSpace(string(cached))
	if token == "" {
		return "", fmt.Errorf("retrieve credentials: %w", idp.ErrNoCredentials)
	}
	return token, nil
}

// Rehydrate derives the current state from the persisted token, profile, and
// guest flag. The guest flag takes precedence over a cached token.
func (m *Manager) Rehydrate(ctx context.Context) error {
	guest, err := m.store.Get(ctx, keyGuest)
	if err != nil {
		return fmt.Errorf("read guest flag: %w", err)
	}
	token, err := m.store.Get(ctx, keyAccessToken)
	if err != nil {
		return fmt.Errorf("read cached token: %w", err)
	}
	profileJSON, err := m.store.Get(ctx, keyUserProfile)
	if err != nil {
		return fmt.Errorf("read cached profile: %w", err)
	}

	state := StateAnonymous
	var profile idp.Profile
	switch {
	case len(guest) > 0:
		state = StateGuest
	case len(token) > 0:
		state = StateAuthenticated
		if len(profileJSON) > 0 {
			if err := json.Unmarshal(profileJSON, &profile); err != nil {
				m.logger.Warn("cached profile is unreadable, continuing without it", zap.Error(err))
				profile = idp.Profile{}
			}
		}
	}

	m.mu.Lock()
	m.transitionLocked(state, profile)
	m.mu.Unlock()
	return nil
}

// transitionLocked updates state and notifies subscribers. Callers hold mu.
func (m *Manager) transitionLocked(state State, profile idp.Profile) {
	m.state = state
	m.profile = profile

	snapshot := Snapshot{State: state, Profile: profile}
	for _, ch := range m.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
