package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dosetrack/dosetrack-backend/internal/clients/redis"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/apierr"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Timezone string `json:"timezone"`
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*types.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	VerifyAccessToken(ctx context.Context, tokenString string) (uuid.UUID, error)
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type authService struct {
	users    repos.UserRepo
	tokens   repos.UserTokenRepo
	denylist redis.TokenDenylist
	clock    Clock
	cfg      AuthConfig
	log      *logger.Logger
}

// NewAuthService wires token issuance and verification. denylist may be
// nil; logout then only removes the refresh token row.
func NewAuthService(
	users repos.UserRepo,
	tokens repos.UserTokenRepo,
	denylist redis.TokenDenylist,
	clock Clock,
	cfg AuthConfig,
	baseLog *logger.Logger,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		denylist: denylist,
		clock:    clock,
		cfg:      cfg,
		log:      baseLog.With("service", "AuthService"),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*types.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, nil, apierr.New(http.StatusUnprocessableEntity, "invalid_email", fmt.Errorf("email required"))
	}
	timezone := strings.TrimSpace(input.Timezone)
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, nil, apierr.New(http.StatusUnprocessableEntity, "invalid_timezone", fmt.Errorf("unknown timezone %q", timezone))
		}
	}

	exists, err := s.users.EmailExists(dbctx.New(ctx), email)
	if err != nil {
		return nil, nil, apierr.New(http.StatusInternalServerError, "create_user_failed", err)
	}
	if exists {
		return nil, nil, apierr.New(http.StatusConflict, "email_taken", fmt.Errorf("email already registered"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apierr.New(http.StatusInternalServerError, "hash_failed", err)
	}

	user := &types.User{
		Email:    email,
		Password: string(hashed),
		Name:     strings.TrimSpace(input.Name),
		Timezone: timezone,
		Language: "en",
	}
	if _, err := s.users.Create(dbctx.New(ctx), []*types.User{user}); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil, nil, apierr.New(http.StatusConflict, "email_taken", fmt.Errorf("email already registered"))
		}
		return nil, nil, apierr.New(http.StatusInternalServerError, "create_user_failed", err)
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("user registered", "user_id", user.ID.String())
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.New(http.StatusUnauthorized, "invalid_credentials", fmt.Errorf("invalid email or password"))
		}
		return nil, nil, apierr.New(http.StatusInternalServerError, "login_failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apierr.New(http.StatusUnauthorized, "invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	row, err := s.tokens.GetByRefreshToken(dbctx.New(ctx), refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusUnauthorized, "invalid_refresh_token", fmt.Errorf("unknown refresh token"))
		}
		return nil, apierr.New(http.StatusInternalServerError, "refresh_failed", err)
	}
	if s.clock.Now().After(row.ExpiresAt) {
		_ = s.tokens.DeleteByIDs(dbctx.New(ctx), []uuid.UUID{row.ID})
		return nil, apierr.New(http.StatusUnauthorized, "refresh_token_expired", fmt.Errorf("refresh token expired"))
	}

	// Rotate: the old refresh token is single use.
	if err := s.tokens.DeleteByIDs(dbctx.New(ctx), []uuid.UUID{row.ID}); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "refresh_failed", err)
	}
	return s.issueTokens(ctx, row.UserID)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	dbc := dbctx.New(ctx)
	row, err := s.tokens.GetByAccessToken(dbc, accessToken)
	if err == nil {
		if delErr := s.tokens.DeleteByIDs(dbc, []uuid.UUID{row.ID}); delErr != nil {
			return apierr.New(http.StatusInternalServerError, "logout_failed", delErr)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.New(http.StatusInternalServerError, "logout_failed", err)
	}

	if s.denylist != nil {
		ttl := s.cfg.AccessTTL
		if err == nil {
			ttl = row.ExpiresAt.Sub(s.clock.Now())
		}
		if revErr := s.denylist.Revoke(ctx, accessToken, ttl); revErr != nil {
			s.log.Warn("token denylist revoke failed", "error", revErr)
		}
	}
	return nil
}

func (s *authService) VerifyAccessToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, tokenString)
		if err != nil {
			s.log.Warn("token denylist check failed", "error", err)
		} else if revoked {
			return uuid.Nil, apierr.New(http.StatusUnauthorized, "token_revoked", fmt.Errorf("token revoked"))
		}
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("invalid access token"))
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("invalid subject claim"))
	}
	return userID, nil
}

func (s *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "token_sign_failed", err)
	}

	// One active session per user.
	if err := s.tokens.DeleteByUserIDs(dbctx.New(ctx), []uuid.UUID{userID}); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "token_store_failed", err)
	}

	refreshToken := uuid.NewString() + uuid.NewString()
	row := &types.UserToken{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.cfg.RefreshTTL),
	}
	if _, err := s.tokens.Create(dbctx.New(ctx), []*types.UserToken{row}); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "token_store_failed", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
