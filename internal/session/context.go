// Package session holds the signed-in user's session and profile for one client.
//
// A Context is created explicitly, bootstrapped once, and closed when its owner goes away.
// Its state is replaced only by auth-state callbacks and confirmed profile updates;
// everybody else reads immutable snapshots.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"studyhub/internal/identity"
	"studyhub/internal/middleware"
	"studyhub/internal/models"
)

// ErrBootstrapTimeout means the initial session could not be resolved in time.
// Callers should treat it as signed out and send the user to the login page.
var ErrBootstrapTimeout = errors.New("session bootstrap timed out")

// ErrClosed is returned by operations on a closed Context.
var ErrClosed = errors.New("session context closed")

const defaultBootstrapTimeout = 5 * time.Second

// ProfileStore loads and updates profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uint) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uint, updates map[string]any) (*models.Profile, error)
}

// Options configures a Context.
type Options struct {
	BootstrapTimeout time.Duration
}

// State is a point-in-time copy of the session. Mutating it has no effect on the Context.
type State struct {
	Session *identity.Session
	Profile *models.Profile
	Loading bool
}

// UserID returns the signed-in user, or 0.
func (s State) UserID() uint {
	if s.Session == nil {
		return 0
	}
	return s.Session.User.ID
}

// Context tracks one client's session.
type Context struct {
	provider identity.Provider
	profiles ProfileStore
	timeout  time.Duration

	mu       sync.RWMutex
	state    State
	sub      identity.Subscription
	awaiting int
	closed   bool
}

// New creates a Context in the loading state. Call Bootstrap before reading it.
func New(provider identity.Provider, profiles ProfileStore, opts Options) *Context {
	if opts.BootstrapTimeout <= 0 {
		opts.BootstrapTimeout = defaultBootstrapTimeout
	}
	return &Context{
		provider: provider,
		profiles: profiles,
		timeout:  opts.BootstrapTimeout,
		state:    State{Loading: true},
	}
}

// Bootstrap subscribes to auth changes and resolves the session for token.
// An empty token bootstraps a signed-out Context.
func (c *Context) Bootstrap(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.sub == nil {
		c.sub = c.provider.OnAuthStateChange(c.onAuthStateChange)
	}
	c.mu.Unlock()

	bootCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		session *identity.Session
		profile *models.Profile
		err     error
	}
	done := make(chan result, 1)
	go func() {
		session, err := c.provider.GetSession(bootCtx, token)
		if err != nil || session == nil {
			done <- result{err: err}
			return
		}
		profile := c.loadProfile(bootCtx, session.User.ID)
		done <- result{session: session, profile: profile}
	}()

	select {
	case <-bootCtx.Done():
		c.set(State{})
		if errors.Is(bootCtx.Err(), context.DeadlineExceeded) {
			return ErrBootstrapTimeout
		}
		return bootCtx.Err()
	case res := <-done:
		if errors.Is(res.err, context.DeadlineExceeded) {
			c.set(State{})
			return ErrBootstrapTimeout
		}
		if res.err != nil {
			middleware.Logger.WarnContext(ctx, "Error getting session", "error", res.err)
		}
		c.set(State{Session: res.session, Profile: res.profile})
		return nil
	}
}

// Snapshot returns a copy of the current state.
func (c *Context) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyState(c.state)
}

// UserID returns the signed-in user, or 0.
func (c *Context) UserID() uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.UserID()
}

// SignIn signs in through the provider; the session arrives via the auth callback.
func (c *Context) SignIn(ctx context.Context, email, password string) error {
	done, err := c.await()
	if err != nil {
		return err
	}
	defer done()
	_, err = c.provider.SignInWithPassword(ctx, email, password)
	return err
}

// SignUp registers a new account and signs it in.
func (c *Context) SignUp(ctx context.Context, email, password string, data identity.SignUpData) error {
	done, err := c.await()
	if err != nil {
		return err
	}
	defer done()
	_, err = c.provider.SignUp(ctx, email, password, data)
	return err
}

// SignOut ends the current session. It is a no-op when signed out.
func (c *Context) SignOut(ctx context.Context) error {
	state := c.Snapshot()
	if state.Session == nil {
		return nil
	}
	return c.provider.SignOut(ctx, state.Session.AccessToken)
}

// UpdateProfile stores patch and, once the store confirms, publishes the stored profile.
func (c *Context) UpdateProfile(ctx context.Context, patch models.ProfilePatch) error {
	userID := c.Snapshot().UserID()
	if userID == 0 {
		return models.NewNotAuthenticatedError()
	}
	stored, err := c.profiles.UpdateProfile(ctx, userID, patch.Updates())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.UserID() != userID {
		return nil
	}
	profile := *stored
	c.state.Profile = &profile
	return nil
}

// Close cancels the auth subscription. Later calls are no-ops.
func (c *Context) Close() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.closed = true
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (c *Context) onAuthStateChange(event identity.Event, session *identity.Session) {
	c.mu.RLock()
	current := c.state.UserID()
	awaiting := c.awaiting > 0
	closed := c.closed
	c.mu.RUnlock()

	if closed || session == nil {
		return
	}

	switch event {
	case identity.SignedIn:
		if !awaiting && current != session.User.ID {
			return
		}
	case identity.SignedOut:
		if current == 0 || current != session.User.ID {
			return
		}
		c.set(State{})
		return
	case identity.UserUpdated:
		if current != session.User.ID {
			return
		}
	default:
		return
	}

	c.mu.Lock()
	c.state.Loading = true
	c.mu.Unlock()

	profile := c.loadProfile(context.Background(), session.User.ID)
	if profile == nil && current == session.User.ID {
		profile = c.Snapshot().Profile
	}
	c.set(State{Session: session, Profile: profile})
}

func (c *Context) loadProfile(ctx context.Context, userID uint) *models.Profile {
	profile, err := c.profiles.GetProfile(ctx, userID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Error fetching profile", "user_id", userID, "error", err)
		return nil
	}
	return profile
}

func (c *Context) await() (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	c.awaiting++
	return func() {
		c.mu.Lock()
		c.awaiting--
		c.mu.Unlock()
	}, nil
}

func (c *Context) set(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = copyState(state)
}

func copyState(s State) State {
	out := State{Loading: s.Loading}
	if s.Session != nil {
		session := *s.Session
		out.Session = &session
	}
	if s.Profile != nil {
		profile := *s.Profile
		out.Profile = &profile
	}
	return out
}
