package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/apierr"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type UpdateProfileInput struct {
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone"`
	Language string `json:"language"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type UserService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*types.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
}

var supportedLanguages = map[string]bool{
	"en":    true,
	"pt-BR": true,
}

type userService struct {
	users repos.UserRepo
	log   *logger.Logger
}

func NewUserService(users repos.UserRepo, baseLog *logger.Logger) UserService {
	return &userService{
		users: users,
		log:   baseLog.With("service", "UserService"),
	}
}

func (s *userService) Get(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	found, err := s.users.GetByIDs(dbctx.New(ctx), []uuid.UUID{userID})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "get_user_failed", err)
	}
	if len(found) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("user not found"))
	}
	return found[0], nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*types.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_name", fmt.Errorf("name required"))
	}

	timezone := strings.TrimSpace(input.Timezone)
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_timezone", fmt.Errorf("unknown timezone %q", timezone))
		}
	}

	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = "en"
	}
	if !supportedLanguages[language] {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_language", fmt.Errorf("unsupported language %q", language))
	}

	if err := s.users.UpdateProfile(dbctx.New(ctx), userID, name, timezone, language); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "user_not_found", err)
		}
		return nil, apierr.New(http.StatusInternalServerError, "update_profile_failed", err)
	}
	return s.Get(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if len(input.NewPassword) < 8 {
		return apierr.New(http.StatusUnprocessableEntity, "invalid_password", fmt.Errorf("password must be at least 8 characters"))
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		return apierr.New(http.StatusUnauthorized, "invalid_credentials", fmt.Errorf("current password does not match"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apierr.New(http.StatusInternalServerError, "hash_failed", err)
	}
	if err := s.users.UpdatePassword(dbctx.New(ctx), userID, string(hashed)); err != nil {
		return apierr.New(http.StatusInternalServerError, "update_password_failed", err)
	}
	s.log.Info("password changed", "user_id", userID.String())
	return nil
}
