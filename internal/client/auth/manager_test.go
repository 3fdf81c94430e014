package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AntoDono/utmostatmos-app/internal/client/idp"
	"github.com/AntoDono/utmostatmos-app/internal/client/storage"
)

type fakeConnector struct {
	mu             sync.Mutex
	authorizeCalls int
	clearCalls     int

	creds        idp.Credentials
	authorizeErr error
	credsErr     error
	clearErr     error

	// when set, Authorize blocks until released
	started chan struct{}
	release chan struct{}
}

func (f *fakeConnector) Authorize(ctx context.Context) (idp.Credentials, error) {
	f.mu.Lock()
	f.authorizeCalls++
	started := f.started
	release := f.release
	f.mu.Unlock()

	if started != nil {
		close(started)
		f.mu.Lock()
		f.started = nil
		f.mu.Unlock()
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return idp.Credentials{}, idp.ErrAuthorizeCancelled
		}
	}
	if f.authorizeErr != nil {
		return idp.Credentials{}, f.authorizeErr
	}
	return f.creds, nil
}

func (f *fakeConnector) Credentials(context.Context) (idp.Credentials, error) {
	if f.credsErr != nil {
		return idp.Credentials{}, f.credsErr
	}
	return f.creds, nil
}

func (f *fakeConnector) ClearCredentials(context.Context) error {
	f.mu.Lock()
	f.clearCalls++
	f.mu.Unlock()
	return f.clearErr
}

func (f *fakeConnector) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorizeCalls
}

func validCredentials() idp.Credentials {
	return idp.Credentials{
		AccessToken: "tok-abc",
		Expiry:      time.Now().Add(time.Hour),
		Profile: idp.Profile{
			Subject:   "auth0|user-1",
			Email:     "jane@example.com",
			GivenName: "Jane",
		},
	}
}

func newTestManager(t *testing.T, connector idp.Connector) (*Manager, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewManager(connector, store, zaptest.NewLogger(t)), store
}

func TestLoginTransitionsToAuthenticated(t *testing.T) {
	connector := &fakeConnector{creds: validCredentials()}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	require.Equal(t, StateAuthenticated, manager.State())
	require.Equal(t, "auth0|user-1", manager.Profile().Subject)

	token, err := store.Get(ctx, "auth.access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("tok-abc"), token)

	profileJSON, err := store.Get(ctx, "auth.user_profile")
	require.NoError(t, err)
	var profile idp.Profile
	require.NoError(t, json.Unmarshal(profileJSON, &profile))
	require.Equal(t, "jane@example.com", profile.Email)
}

func TestLoginClearsGuestFlag(t *testing.T) {
	connector := &fakeConnector{creds: validCredentials()}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, manager.ContinueAsGuest(ctx))
	require.Equal(t, StateGuest, manager.State())

	require.NoError(t, manager.Login(ctx))
	require.Equal(t, StateAuthenticated, manager.State())

	guest, err := store.Get(ctx, "auth.guest")
	require.NoError(t, err)
	require.Nil(t, guest)
}

func TestConcurrentLoginStartsOneTransaction(t *testing.T) {
	connector := &fakeConnector{
		creds:   validCredentials(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	manager, _ := newTestManager(t, connector)
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- manager.Login(ctx) }()
	<-connector.started

	go func() { errs <- manager.Login(ctx) }()
	time.Sleep(20 * time.Millisecond)
	close(connector.release)

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	require.Equal(t, 1, connector.calls())
	require.Equal(t, StateAuthenticated, manager.State())
}

func TestLoginCancellationReturnsToPriorState(t *testing.T) {
	connector := &fakeConnector{authorizeErr: idp.ErrAuthorizeCancelled}
	manager, _ := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, manager.ContinueAsGuest(ctx))
	require.NoError(t, manager.Login(ctx))
	require.Equal(t, StateGuest, manager.State())
}

func TestLoginFailureSurfacesError(t *testing.T) {
	connector := &fakeConnector{authorizeErr: errors.New("provider unavailable")}
	manager, _ := newTestManager(t, connector)

	err := manager.Login(context.Background())
	require.Error(t, err)
	require.Equal(t, StateAnonymous, manager.State())
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	connector := &fakeConnector{creds: idp.Credentials{AccessToken: "   "}}
	manager, _ := newTestManager(t, connector)

	err := manager.Login(context.Background())
	require.Error(t, err)
	require.Equal(t, StateAnonymous, manager.State())
}

func TestAccessTokenRejectsAnonymousAndGuest(t *testing.T) {
	connector := &fakeConnector{creds: validCredentials()}
	manager, _ := newTestManager(t, connector)
	ctx := context.Background()

	_, err := manager.AccessToken(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, manager.ContinueAsGuest(ctx))
	_, err = manager.AccessToken(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAccessTokenRefreshesAndCaches(t *testing.T) {
	connector := &fakeConnector{creds: validCredentials()}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))

	connector.creds.AccessToken = "tok-refreshed"
	token, err := manager.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-refreshed", token)

	cached, err := store.Get(ctx, "auth.access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("tok-refreshed"), cached)
}

func TestAccessTokenServesCachedTokenAfterRestart(t *testing.T) {
	connector := &fakeConnector{credsErr: idp.ErrNoCredentials}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	profileJSON, err := json.Marshal(idp.Profile{Subject: "auth0|user-2", Email: "sam@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "auth.access_token", []byte("tok-persisted")))
	require.NoError(t, store.Set(ctx, "auth.user_profile", profileJSON))

	require.NoError(t, manager.Rehydrate(ctx))
	require.Equal(t, StateAuthenticated, manager.State())

	token, err := manager.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-persisted", token)
}

func TestAccessTokenWithoutConnectorOrCache(t *testing.T) {
	connector := &fakeConnector{credsErr: idp.ErrNoCredentials}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth.access_token", []byte("tok-persisted")))
	require.NoError(t, manager.Rehydrate(ctx))
	require.NoError(t, store.Delete(ctx, "auth.access_token"))

	_, err := manager.AccessToken(ctx)
	require.ErrorIs(t, err, idp.ErrNoCredentials)
}

func TestAccessTokenEmptyRefreshIsHardFailure(t *testing.T) {
	connector := &fakeConnector{creds: validCredentials()}
	manager, _ := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))

	connector.creds.AccessToken = ""
	_, err := manager.AccessToken(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotLoggedIn)
	require.Equal(t, StateAuthenticated, manager.State())
}

func TestLogoutClearsLocalDespiteProviderConflict(t *testing.T) {
	connector := &fakeConnector{creds: validCredentials(), clearErr: idp.ErrTransactionActive}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, manager.Login(ctx))
	require.NoError(t, manager.Logout(ctx))
	require.Equal(t, StateAnonymous, manager.State())

	for _, key := range []string{"auth.access_token", "auth.user_profile", "auth.guest"} {
		value, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.Nil(t, value)
	}
}

func TestRehydrateGuestFlagWinsOverStaleToken(t *testing.T) {
	connector := &fakeConnector{}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth.access_token", []byte("stale")))
	require.NoError(t, store.Set(ctx, "auth.guest", []byte("true")))

	require.NoError(t, manager.Rehydrate(ctx))
	require.Equal(t, StateGuest, manager.State())
}

func TestRehydrateRestoresAuthenticatedState(t *testing.T) {
	connector := &fakeConnector{}
	manager, store := newTestManager(t, connector)
	ctx := context.Background()

	profileJSON, err := json.Marshal(idp.Profile{Subject: "auth0|user-2", Email: "sam@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "auth.access_token", []byte("tok")))
	require.NoError(t, store.Set(ctx, "auth.user_profile", profileJSON))

	require.NoError(t, manager.Rehydrate(ctx))
	require.Equal(t, StateAuthenticated, manager.State())
	require.Equal(t, "sam@example.com", manager.Profile().Email)
}

func TestRehydrateEmptyStoreIsAnonymous(t *testing.T) {
	connector := &fakeConnector{}
	manager, _ := newTestManager(t, connector)

	require.NoError(t, manager.Rehydrate(context.Background()))
	require.Equal(t, StateAnonymous, manager.State())
}

func TestSubscribeObservesTransitions(t *testing.T) {
	connector := &fakeConnector{creds: validCredentials()}
	manager, _ := newTestManager(t, connector)
	ctx := context.Background()

	updates := manager.Subscribe()
	require.NoError(t, manager.Login(ctx))

	require.Equal(t, StateAuthenticating, (<-updates).State)
	authenticated := <-updates
	require.Equal(t, StateAuthenticated, authenticated.State)
	require.Equal(t, "auth0|user-1", authenticated.Profile.Subject)
}
