package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"studyhub/internal/cache"
	"studyhub/internal/database"
	"studyhub/internal/middleware"
	"studyhub/internal/models"
	"studyhub/internal/repository"
	"studyhub/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "studyhub"

var errInvalidCredentials = &models.AppError{
	Code:    models.CodeNotAuthenticated,
	Message: "Invalid login credentials",
}

// Options configures a LocalProvider.
type Options struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// LocalProvider implements Provider over the users and profiles tables with HS256 access tokens.
// Revoked token IDs are kept in Redis when a client is configured.
type LocalProvider struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	mu     sync.RWMutex
	subs   map[uint64]AuthCallback
	nextID uint64
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a LocalProvider.
func NewLocalProvider(users repository.UserRepository, opts Options) (*LocalProvider, error) {
	if opts.Secret == "" {
		return nil, errors.New("identity: token secret not configured")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &LocalProvider{
		users:  users,
		secret: []byte(opts.Secret),
		ttl:    opts.TokenTTL,
		cost:   opts.BcryptCost,
		now:    opts.Now,
		subs:   make(map[uint64]AuthCallback),
	}, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, data SignUpData) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	username := strings.TrimSpace(data.Username)
	derived := username == ""
	if derived {
		username = validation.UsernameFromEmail(email)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := p.users.GetByEmail(ctx, email); err == nil {
		return nil, models.NewDuplicateError("User", nil)
	} else if !models.HasCode(err, models.CodeNotFound) {
		return nil, models.NewRemoteError("Error checking existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Email: email, Password: string(hash)}
	profile := &models.Profile{Username: username, FullName: strings.TrimSpace(data.FullName)}
	err = p.users.CreateWithProfile(ctx, user, profile)
	if err != nil && derived && database.IsDuplicateKey(err) {
		user = &models.User{Email: email, Password: string(hash)}
		profile.Username = username + "_" + uuid.NewString()[:6]
		err = p.users.CreateWithProfile(ctx, user, profile)
	}
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, models.NewDuplicateError("User", err)
		}
		return nil, models.NewRemoteError("Error creating user", err)
	}

	session, err := p.issue(user)
	if err != nil {
		return nil, err
	}
	p.emit(SignedIn, session)
	return session, nil
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, models.NewRemoteError("Error loading user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	session, err := p.issue(user)
	if err != nil {
		return nil, err
	}
	p.emit(SignedIn, session)
	return session, nil
}

// SignOut revokes token until it would have expired and notifies subscribers.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return models.NewNotAuthenticatedError()
	}
	p.revoke(ctx, claims)
	userID, _ := strconv.ParseUint(claims.Subject, 10, 64)
	p.emit(SignedOut, &Session{User: SessionUser{ID: uint(userID)}})
	return nil
}

func (p *LocalProvider) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, userID, err := p.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotAuthenticatedError()
		}
		return nil, models.NewRemoteError("Error loading session user", err)
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        SessionUser{ID: user.ID, Email: user.Email},
	}, nil
}

// UpdatePassword changes the password of the token's user and announces USER_UPDATED.
func (p *LocalProvider) UpdatePassword(ctx context.Context, token, password string) error {
	session, err := p.GetSession(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return models.NewNotAuthenticatedError()
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.NewValidationError(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := p.users.UpdatePassword(ctx, session.User.ID, string(hash)); err != nil {
		return models.NewRemoteError("Error updating password", err)
	}
	p.emit(UserUpdated, session)
	return nil
}

// VerifyToken returns the user a live token was issued for.
func (p *LocalProvider) VerifyToken(ctx context.Context, token string) (uint, error) {
	_, userID, err := p.verify(ctx, token)
	return userID, err
}

// OnAuthStateChange registers cb until the returned subscription is cancelled.
func (p *LocalProvider) OnAuthStateChange(cb AuthCallback) Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.subs[id] = cb
	return &subscription{cancel: func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}}
}

func (p *LocalProvider) emit(event Event, session *Session) {
	p.mu.RLock()
	callbacks := make([]AuthCallback, 0, len(p.subs))
	for _, cb := range p.subs {
		callbacks = append(callbacks, cb)
	}
	p.mu.RUnlock()

	for _, cb := range callbacks {
		cb(event, session)
	}
}

func (p *LocalProvider) issue(user *models.User) (*Session, error) {
	now := p.now()
	expires := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("sign token: %w", err))
	}
	return &Session{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expires,
		User:        SessionUser{ID: user.ID, Email: user.Email},
	}, nil
}

func (p *LocalProvider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (p *LocalProvider) verify(ctx context.Context, token string) (*jwt.RegisteredClaims, uint, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, 0, models.NewNotAuthenticatedError()
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, 0, models.NewNotAuthenticatedError()
	}
	if p.revoked(ctx, claims.ID) {
		return nil, 0, models.NewNotAuthenticatedError()
	}
	return claims, uint(userID), nil
}

func (p *LocalProvider) revoke(ctx context.Context, claims *jwt.RegisteredClaims) {
	rdb := cache.GetClient()
	if rdb == nil || claims.ID == "" {
		return
	}
	ttl := claims.ExpiresAt.Sub(p.now())
	if ttl <= 0 {
		return
	}
	if err := rdb.Set(ctx, cache.RevokedTokenKey(claims.ID), "1", ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record revoked token", "error", err)
	}
}

func (p *LocalProvider) revoked(ctx context.Context, jti string) bool {
	rdb := cache.GetClient()
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, cache.RevokedTokenKey(jti)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "revocation check failed", "error", err)
		return false
	}
	return n > 0
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}
