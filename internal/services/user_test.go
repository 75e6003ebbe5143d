package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos/testutil"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
)

func TestUserUpdateProfile(t *testing.T) {
	db := testutil.DB(t)
	svc := NewUserService(repos.NewSet(db, testutil.Logger(t)).User, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, db, "usersvc@example.com")

	updated, err := svc.UpdateProfile(ctx, owner.ID, UpdateProfileInput{
		Name:     "Ana Souza",
		Timezone: "America/Sao_Paulo",
		Language: "pt-BR",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ana Souza" || updated.Timezone != "America/Sao_Paulo" || updated.Language != "pt-BR" {
		t.Fatalf("UpdateProfile: unexpected user %+v", updated)
	}

	cases := []struct {
		name  string
		input UpdateProfileInput
	}{
		{"empty name", UpdateProfileInput{Name: "  "}},
		{"bad timezone", UpdateProfileInput{Name: "Ana", Timezone: "Mars/Olympus"}},
		{"bad language", UpdateProfileInput{Name: "Ana", Language: "fr"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, owner.ID, tc.input)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := apiStatus(t, err); got != 422 {
				t.Fatalf("status: expected 422, got %d", got)
			}
		})
	}

	if _, err := svc.Get(ctx, uuid.New()); err == nil {
		t.Fatalf("Get: expected not found for unknown user")
	}

	// Language defaults when omitted.
	updated, err = svc.UpdateProfile(ctx, owner.ID, UpdateProfileInput{Name: "Ana"})
	if err != nil {
		t.Fatalf("UpdateProfile default language: %v", err)
	}
	if updated.Language != "en" {
		t.Fatalf("Language: expected en, got %q", updated.Language)
	}
}

func TestUserChangePassword(t *testing.T) {
	db := testutil.DB(t)
	set := repos.NewSet(db, testutil.Logger(t))
	svc := NewUserService(set.User, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, db, "usersvc-password@example.com")
	hashed, err := bcrypt.GenerateFromPassword([]byte("old secret"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := set.User.UpdatePassword(dbctx.New(ctx), owner.ID, string(hashed)); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	if err := svc.ChangePassword(ctx, owner.ID, ChangePasswordInput{
		CurrentPassword: "wrong",
		NewPassword:     "brand new secret",
	}); err == nil {
		t.Fatalf("expected rejection for wrong current password")
	} else if got := apiStatus(t, err); got != 401 {
		t.Fatalf("status: expected 401, got %d", got)
	}

	if err := svc.ChangePassword(ctx, owner.ID, ChangePasswordInput{
		CurrentPassword: "old secret",
		NewPassword:     "short",
	}); err == nil {
		t.Fatalf("expected rejection for short password")
	} else if got := apiStatus(t, err); got != 422 {
		t.Fatalf("status: expected 422, got %d", got)
	}

	if err := svc.ChangePassword(ctx, owner.ID, ChangePasswordInput{
		CurrentPassword: "old secret",
		NewPassword:     "brand new secret",
	}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	stored, err := svc.Get(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("brand new secret")); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
}
