package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"studyhub/internal/cache"
	"studyhub/internal/models"
	"studyhub/internal/repository"
	"studyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(event Event, _ *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) seen() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func newTestProvider(t *testing.T, now func() time.Time) *LocalProvider {
	t.Helper()
	db := testutil.NewTestDB(t)
	p, err := NewLocalProvider(repository.NewUserRepository(db), Options{
		Secret:     "test-secret-test-secret-test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        now,
	})
	require.NoError(t, err)
	return p
}

func TestNewLocalProvider_RequiresSecret(t *testing.T) {
	_, err := NewLocalProvider(nil, Options{})
	assert.Error(t, err)
}

func TestLocalProvider_SignUpSignInSession(t *testing.T) {
	p := newTestProvider(t, nil)
	ctx := context.Background()

	rec := &recorder{}
	sub := p.OnAuthStateChange(rec.record)
	defer sub.Unsubscribe()

	session, err := p.SignUp(ctx, " Ada@Uni.edu ", "lovelace1815", SignUpData{FullName: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "ada@uni.edu", session.User.Email)
	assert.NotEmpty(t, session.AccessToken)

	_, err = p.SignUp(ctx, "ada@uni.edu", "lovelace1815", SignUpData{})
	assert.True(t, models.HasCode(err, models.CodeDuplicateConstraint))

	_, err = p.SignInWithPassword(ctx, "ada@uni.edu", "wrong-password1")
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	_, err = p.SignInWithPassword(ctx, "nobody@uni.edu", "lovelace1815")
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	signedIn, err := p.SignInWithPassword(ctx, "ADA@uni.edu", "lovelace1815")
	require.NoError(t, err)

	got, err := p.GetSession(ctx, signedIn.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.User.ID, got.User.ID)

	uid, err := p.VerifyToken(ctx, signedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, uid)

	assert.Equal(t, []Event{SignedIn, SignedIn}, rec.seen())
}

func TestLocalProvider_SignUpDerivesProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := repository.NewUserRepository(db)
	p, err := NewLocalProvider(users, Options{Secret: "s", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := p.SignUp(ctx, "sam@uni.edu", "password123", SignUpData{FullName: "Sam One"})
	require.NoError(t, err)
	second, err := p.SignUp(ctx, "sam@college.edu", "password123", SignUpData{FullName: "Sam Two"})
	require.NoError(t, err)

	one, err := users.GetProfile(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "sam", one.Username)
	assert.Equal(t, "Sam One", one.FullName)

	two, err := users.GetProfile(ctx, second.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "sam", two.Username)
	assert.Contains(t, two.Username, "sam_")
}

func TestLocalProvider_SignUpValidation(t *testing.T) {
	p := newTestProvider(t, nil)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "not-an-email", "password123", SignUpData{})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = p.SignUp(ctx, "a@uni.edu", "short", SignUpData{})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = p.SignUp(ctx, "a@uni.edu", "password123", SignUpData{Username: "_bad"})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestLocalProvider_GetSessionRejectsBadTokens(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	p := newTestProvider(t, clock)
	ctx := context.Background()

	none, err := p.GetSession(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, none)

	_, err = p.GetSession(ctx, "garbage")
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	session, err := p.SignUp(ctx, "tim@uni.edu", "password123", SignUpData{})
	require.NoError(t, err)

	other, err := NewLocalProvider(p.users, Options{Secret: "another-secret", Now: clock})
	require.NoError(t, err)
	_, err = other.VerifyToken(ctx, session.AccessToken)
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	now = now.Add(2 * time.Hour)
	_, err = p.GetSession(ctx, session.AccessToken)
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))
}

func TestLocalProvider_SignOutRevokesToken(t *testing.T) {
	mr, rdb := testutil.NewTestRedis(t)
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	p := newTestProvider(t, nil)
	ctx := context.Background()
	rec := &recorder{}
	p.OnAuthStateChange(rec.record)

	session, err := p.SignUp(ctx, "rev@uni.edu", "password123", SignUpData{})
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, session.AccessToken))
	assert.Len(t, mr.Keys(), 1)

	_, err = p.VerifyToken(ctx, session.AccessToken)
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	assert.Equal(t, []Event{SignedIn, SignedOut}, rec.seen())

	err = p.SignOut(ctx, "garbage")
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))
}

func TestLocalProvider_SignOutWithoutRedis(t *testing.T) {
	cache.SetClient(nil)
	p := newTestProvider(t, nil)
	ctx := context.Background()

	session, err := p.SignUp(ctx, "nor@uni.edu", "password123", SignUpData{})
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx, session.AccessToken))

	// Without a revocation store the token stays valid until it expires.
	_, err = p.VerifyToken(ctx, session.AccessToken)
	assert.NoError(t, err)
}

func TestLocalProvider_UpdatePassword(t *testing.T) {
	p := newTestProvider(t, nil)
	ctx := context.Background()
	rec := &recorder{}
	p.OnAuthStateChange(rec.record)

	session, err := p.SignUp(ctx, "pw@uni.edu", "password123", SignUpData{})
	require.NoError(t, err)

	require.NoError(t, p.UpdatePassword(ctx, session.AccessToken, "newpassword456"))
	_, err = p.SignInWithPassword(ctx, "pw@uni.edu", "password123")
	assert.Error(t, err)
	_, err = p.SignInWithPassword(ctx, "pw@uni.edu", "newpassword456")
	assert.NoError(t, err)

	assert.Equal(t, []Event{SignedIn, UserUpdated, SignedIn}, rec.seen())
}

func TestLocalProvider_Unsubscribe(t *testing.T) {
	p := newTestProvider(t, nil)
	rec := &recorder{}
	sub := p.OnAuthStateChange(rec.record)
	sub.Unsubscribe()
	sub.Unsubscribe()

	_, err := p.SignUp(context.Background(), "quiet@uni.edu", "password123", SignUpData{})
	require.NoError(t, err)
	assert.Empty(t, rec.seen())
}
