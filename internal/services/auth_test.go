package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos/testutil"
)

func authFixture(t *testing.T, now time.Time) AuthService {
	t.Helper()
	db := testutil.DB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	return NewAuthService(set.User, set.UserToken, nil, FixedClock{At: now}, AuthConfig{
		JWTSecret:  "test-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	}, testutil.Logger(t))
}

func TestAuthRegisterLogin(t *testing.T) {
	now := time.Date(2025, 12, 26, 12, 0, 0, 0, time.UTC)
	svc := authFixture(t, now)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, RegisterInput{
		Name:     "Ana",
		Email:    "AuthSvc@Example.com",
		Password: "correct horse",
		Timezone: "America/Sao_Paulo",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "authsvc@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("tokens not issued")
	}

	// Duplicate registration conflicts.
	if _, _, err := svc.Register(ctx, RegisterInput{
		Name:     "Ana",
		Email:    "authsvc@example.com",
		Password: "correct horse",
	}); err == nil {
		t.Fatalf("expected conflict on duplicate email")
	} else if got := apiStatus(t, err); got != http.StatusConflict {
		t.Fatalf("status = %d, want 409", got)
	}

	gotUser, _, err := svc.Login(ctx, "authsvc@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotUser.ID != user.ID {
		t.Fatalf("login resolved wrong user")
	}

	if _, _, err := svc.Login(ctx, "authsvc@example.com", "wrong"); err == nil {
		t.Fatalf("expected invalid credentials")
	} else if got := apiStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", got)
	}

	// Logging in replaced the session issued at registration.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatalf("expected stale refresh token rejected after login")
	}
}

func TestAuthRegisterRejectsUnknownTimezone(t *testing.T) {
	now := time.Date(2025, 12, 26, 12, 0, 0, 0, time.UTC)
	svc := authFixture(t, now)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "authsvc-tz@example.com",
		Password: "correct horse",
		Timezone: "Mars/Olympus",
	})
	if err == nil {
		t.Fatalf("expected invalid timezone error")
	}
	if got := apiStatus(t, err); got != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", got)
	}
}

func TestAuthVerifyAccessToken(t *testing.T) {
	now := time.Date(2025, 12, 26, 12, 0, 0, 0, time.UTC)
	svc := authFixture(t, now)
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, RegisterInput{
		Name:     "Ana",
		Email:    "authsvc-verify@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	userID, err := svc.VerifyAccessToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("verified wrong user")
	}

	if _, err := svc.VerifyAccessToken(ctx, "not-a-jwt"); err == nil {
		t.Fatalf("expected invalid token error")
	}

	// A clock past the access TTL rejects the same token.
	late := authFixture(t, now.Add(time.Hour))
	if _, err := late.VerifyAccessToken(ctx, pair.AccessToken); err == nil {
		t.Fatalf("expected expired token error")
	}
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	now := time.Date(2025, 12, 26, 12, 0, 0, 0, time.UTC)
	svc := authFixture(t, now)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, RegisterInput{
		Name:     "Ana",
		Email:    "authsvc-refresh@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh token not rotated")
	}

	// The old refresh token is single use.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatalf("expected rejected replay")
	} else if got := apiStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", got)
	}
}

func TestAuthLogoutRemovesRefreshToken(t *testing.T) {
	now := time.Date(2025, 12, 26, 12, 0, 0, 0, time.UTC)
	svc := authFixture(t, now)
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, RegisterInput{
		Name:     "Ana",
		Email:    "authsvc-logout@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatalf("expected refresh rejected after logout")
	}
}
