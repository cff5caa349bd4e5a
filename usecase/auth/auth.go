package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// Config controls token signing and session lifetimes.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	MaxTTL time.Duration
}

// Claims are carried by every access token. The session id ties the token to
// a server-side session so logout takes effect before the token expires.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Credentials is what a login or refresh hands back to the client.
type Credentials struct {
	Session   *domain.Session `json:"session"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.MaxTTL < cfg.TTL {
		cfg.MaxTTL = cfg.TTL
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Login opens a session for userID and signs a token for it.
func (uc *UseCase) Login(ctx context.Context, userID string, ttl time.Duration) (*Credentials, error) {
	if userID == "" {
		return nil, domain.ErrInvalidPayload
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != "" && !user.IsActive() {
		return nil, domain.ErrForbidden
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.clampTTL(ttl)),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	uc.logger.Info("session created", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return uc.issue(session)
}

// Refresh extends a live session and signs a fresh token for it.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string, ttl time.Duration) (*Credentials, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ttl = uc.clampTTL(ttl)
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.now().Add(ttl)
	return uc.issue(session)
}

// GetSession returns a live session, purging it when already expired.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Logout revokes one session.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrSessionNotFound
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// LogoutAll revokes every session of userID.
func (uc *UseCase) LogoutAll(ctx context.Context, userID string) (int, error) {
	removed, err := uc.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("sessions revoked", zap.String("user_id", userID), zap.Int("count", removed))
	return removed, nil
}

// Authenticate verifies token and resolves the session it was issued for.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.ParseToken(token)
	if err != nil {
		return nil, err
	}
	session, err := uc.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// ParseToken validates the signature, issuer and expiry of token.
func (uc *UseCase) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(uc.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if uc.cfg.Issuer != "" && !claims.VerifyIssuer(uc.cfg.Issuer, true) {
		return nil, domain.ErrUnauthorized
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (uc *UseCase) issue(session *domain.Session) (*Credentials, error) {
	claims := Claims{
		UserID:    session.UserID,
		SessionID: session.ID,
		Role:      session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.cfg.Issuer,
			Subject:   session.UserID,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(uc.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.cfg.Secret))
	if err != nil {
		return nil, err
	}
	return &Credentials{
		Session:   session,
		Token:     signed,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (uc *UseCase) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return uc.cfg.TTL
	}
	if ttl > uc.cfg.MaxTTL {
		return uc.cfg.MaxTTL
	}
	return ttl
}
