package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studyhub/internal/identity"
	"studyhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	mu   sync.Mutex
	cbs  map[int]identity.AuthCallback
	next int

	GetSessionFunc func(ctx context.Context, token string) (*identity.Session, error)
	SignInFunc     func(ctx context.Context, email, password string) (*identity.Session, error)
}

func newStubProvider() *stubProvider {
	return &stubProvider{cbs: map[int]identity.AuthCallback{}}
}

type stubSub struct{ cancel func() }

func (s stubSub) Unsubscribe() { s.cancel() }

func (p *stubProvider) OnAuthStateChange(cb identity.AuthCallback) identity.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	id := p.next
	p.cbs[id] = cb
	return stubSub{cancel: func() {
		p.mu.Lock()
		delete(p.cbs, id)
		p.mu.Unlock()
	}}
}

func (p *stubProvider) subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cbs)
}

func (p *stubProvider) emit(event identity.Event, s *identity.Session) {
	p.mu.Lock()
	cbs := make([]identity.AuthCallback, 0, len(p.cbs))
	for _, cb := range p.cbs {
		cbs = append(cbs, cb)
	}
	p.mu.Unlock()
	for _, cb := range cbs {
		cb(event, s)
	}
}

func (p *stubProvider) GetSession(ctx context.Context, token string) (*identity.Session, error) {
	if p.GetSessionFunc != nil {
		return p.GetSessionFunc(ctx, token)
	}
	return nil, nil
}

func (p *stubProvider) SignUp(context.Context, string, string, identity.SignUpData) (*identity.Session, error) {
	return nil, errors.New("not implemented")
}

func (p *stubProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	s, err := p.SignInFunc(ctx, email, password)
	if err == nil {
		p.emit(identity.SignedIn, s)
	}
	return s, err
}

func (p *stubProvider) SignOut(_ context.Context, token string) error {
	p.emit(identity.SignedOut, &identity.Session{User: identity.SessionUser{ID: userForToken(token)}})
	return nil
}

func userForToken(token string) uint {
	if token == "tok-2" {
		return 2
	}
	return 1
}

type stubProfiles struct {
	profiles map[uint]models.Profile
	failGet  bool
}

func (s *stubProfiles) GetProfile(_ context.Context, id uint) (*models.Profile, error) {
	if s.failGet {
		return nil, errors.New("boom")
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, models.NewNotFoundError("Profile", id)
	}
	return &p, nil
}

func (s *stubProfiles) UpdateProfile(_ context.Context, id uint, updates map[string]any) (*models.Profile, error) {
	p := s.profiles[id]
	if bio, ok := updates["bio"].(string); ok {
		p.Bio = bio
	}
	s.profiles[id] = p
	return &p, nil
}

func session(id uint, token string) *identity.Session {
	return &identity.Session{AccessToken: token, User: identity.SessionUser{ID: id}}
}

func TestContext_BootstrapResolvesSessionAndProfile(t *testing.T) {
	provider := newStubProvider()
	provider.GetSessionFunc = func(_ context.Context, token string) (*identity.Session, error) {
		return session(1, token), nil
	}
	profiles := &stubProfiles{profiles: map[uint]models.Profile{1: {ID: 1, FullName: "Ada"}}}

	c := New(provider, profiles, Options{})
	defer c.Close()
	assert.True(t, c.Snapshot().Loading)

	require.NoError(t, c.Bootstrap(context.Background(), "tok-1"))

	state := c.Snapshot()
	assert.False(t, state.Loading)
	assert.Equal(t, uint(1), state.UserID())
	require.NotNil(t, state.Profile)
	assert.Equal(t, "Ada", state.Profile.FullName)

	state.Profile.FullName = "mutated"
	assert.Equal(t, "Ada", c.Snapshot().Profile.FullName)
}

func TestContext_BootstrapSignedOut(t *testing.T) {
	provider := newStubProvider()
	provider.GetSessionFunc = func(context.Context, string) (*identity.Session, error) {
		return nil, models.NewNotAuthenticatedError()
	}
	c := New(provider, &stubProfiles{}, Options{})
	defer c.Close()

	require.NoError(t, c.Bootstrap(context.Background(), "expired"))
	state := c.Snapshot()
	assert.False(t, state.Loading)
	assert.Nil(t, state.Session)
	assert.Zero(t, state.UserID())
}

func TestContext_BootstrapTimeout(t *testing.T) {
	provider := newStubProvider()
	provider.GetSessionFunc = func(ctx context.Context, _ string) (*identity.Session, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := New(provider, &stubProfiles{}, Options{BootstrapTimeout: 20 * time.Millisecond})
	defer c.Close()

	err := c.Bootstrap(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrBootstrapTimeout)
	assert.False(t, c.Snapshot().Loading)
	assert.Nil(t, c.Snapshot().Session)
}

func TestContext_AuthEvents(t *testing.T) {
	provider := newStubProvider()
	provider.SignInFunc = func(context.Context, string, string) (*identity.Session, error) {
		return session(1, "tok-1"), nil
	}
	profiles := &stubProfiles{profiles: map[uint]models.Profile{
		1: {ID: 1, FullName: "Ada"},
		2: {ID: 2, FullName: "Grace"},
	}}
	c := New(provider, profiles, Options{})
	defer c.Close()
	require.NoError(t, c.Bootstrap(context.Background(), ""))

	// Another client's sign-in does not leak into this context.
	provider.emit(identity.SignedIn, session(2, "tok-2"))
	assert.Zero(t, c.Snapshot().UserID())

	require.NoError(t, c.SignIn(context.Background(), "ada@uni.edu", "pw"))
	assert.Equal(t, uint(1), c.Snapshot().UserID())
	assert.Equal(t, "Ada", c.Snapshot().Profile.FullName)

	provider.emit(identity.SignedOut, session(2, ""))
	assert.Equal(t, uint(1), c.Snapshot().UserID())

	require.NoError(t, c.SignOut(context.Background()))
	assert.Nil(t, c.Snapshot().Session)
	assert.Nil(t, c.Snapshot().Profile)
}

func TestContext_UserUpdatedKeepsProfileWhenRefetchFails(t *testing.T) {
	provider := newStubProvider()
	provider.GetSessionFunc = func(_ context.Context, token string) (*identity.Session, error) {
		return session(1, token), nil
	}
	profiles := &stubProfiles{profiles: map[uint]models.Profile{1: {ID: 1, FullName: "Ada"}}}
	c := New(provider, profiles, Options{})
	defer c.Close()
	require.NoError(t, c.Bootstrap(context.Background(), "tok-1"))

	profiles.failGet = true
	provider.emit(identity.UserUpdated, session(1, "tok-1b"))

	state := c.Snapshot()
	assert.Equal(t, "tok-1b", state.Session.AccessToken)
	require.NotNil(t, state.Profile)
	assert.Equal(t, "Ada", state.Profile.FullName)
}

func TestContext_UpdateProfile(t *testing.T) {
	provider := newStubProvider()
	profiles := &stubProfiles{profiles: map[uint]models.Profile{1: {ID: 1, FullName: "Ada"}}}
	c := New(provider, profiles, Options{})
	defer c.Close()

	bio := "mathematician"
	err := c.UpdateProfile(context.Background(), models.ProfilePatch{Bio: &bio})
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	provider.GetSessionFunc = func(_ context.Context, token string) (*identity.Session, error) {
		return session(1, token), nil
	}
	require.NoError(t, c.Bootstrap(context.Background(), "tok-1"))
	require.NoError(t, c.UpdateProfile(context.Background(), models.ProfilePatch{Bio: &bio}))

	state := c.Snapshot()
	assert.Equal(t, "mathematician", state.Profile.Bio)
	assert.Equal(t, "Ada", state.Profile.FullName)
}

func TestContext_CloseUnsubscribes(t *testing.T) {
	provider := newStubProvider()
	c := New(provider, &stubProfiles{}, Options{})
	require.NoError(t, c.Bootstrap(context.Background(), ""))
	assert.Equal(t, 1, provider.subscribers())

	c.Close()
	c.Close()
	assert.Zero(t, provider.subscribers())
	assert.ErrorIs(t, c.Bootstrap(context.Background(), ""), ErrClosed)
	assert.ErrorIs(t, c.SignIn(context.Background(), "a", "b"), ErrClosed)
}
