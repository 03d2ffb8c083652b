package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

// UserService handles chat user records
type UserService interface {
	// GetOrCreate returns the user with the given chat id, creating it on first
	// contact. Non-empty info values replace the stored ones.
	GetOrCreate(ctx context.Context, externalID string, info models.UserInfo) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, now: time.Now}
}

func (s *userService) GetOrCreate(ctx context.Context, externalID string, info models.UserInfo) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("resolving user: external_id=%s", externalID)

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.NewValidationError("external_id", "cannot be empty")
	}

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		log.WithError(err).Error("failed to get user")
		return nil, errors.NewStoreError(err)
	}

	if user == nil {
		user = &models.User{
			ExternalID: externalID,
			Name:       info.Name,
			Username:   info.Username,
			CreatedAt:  s.now().UTC(),
		}
		id, err := s.userRepo.Insert(ctx, *user)
		if err != nil {
			log.WithError(err).Error("failed to create user")
			return nil, errors.NewStoreError(err)
		}
		user.ID = id
		log.Info("user created: id=%d, external_id=%s", id, externalID)
		return user, nil
	}

	merged := models.UserInfo{Name: user.Name, Username: user.Username}
	if info.Name != "" {
		merged.Name = info.Name
	}
	if info.Username != "" {
		merged.Username = info.Username
	}
	if merged.Name != user.Name || merged.Username != user.Username {
		if err := s.userRepo.UpdateInfo(ctx, user.ID, merged); err != nil {
			log.WithError(err).Error("failed to update user info")
			return nil, errors.NewStoreError(err)
		}
		user.Name, user.Username = merged.Name, merged.Username
	}

	return user, nil
}
