// Package identity issues and verifies user sessions and announces auth-state changes.
package identity

import (
	"context"
	"time"
)

// Event names an auth-state transition.
type Event string

const (
	SignedIn    Event = "SIGNED_IN"
	SignedOut   Event = "SIGNED_OUT"
	UserUpdated Event = "USER_UPDATED"
)

// SessionUser is the identity carried by a session.
type SessionUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated session backed by a signed access token.
type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        SessionUser `json:"user"`
}

// SignUpData carries the profile fields captured at registration.
type SignUpData struct {
	FullName string `json:"full_name"`
	Username string `json:"username,omitempty"`
}

// AuthCallback receives auth-state changes. For SignedOut the session only identifies the user.
type AuthCallback func(event Event, session *Session)

// Subscription is returned by OnAuthStateChange.
type Subscription interface {
	Unsubscribe()
}

// Provider is the session and identity contract the rest of the application depends on.
type Provider interface {
	// GetSession resolves token to a live session. An empty token yields (nil, nil).
	GetSession(ctx context.Context, token string) (*Session, error)
	OnAuthStateChange(cb AuthCallback) Subscription
	SignUp(ctx context.Context, email, password string, data SignUpData) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}
