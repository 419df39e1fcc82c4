package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kali/internal/auth"
	"kali/internal/authz"
	"kali/internal/cache"
	apperrors "kali/internal/errors"
	"kali/internal/logger"
	"kali/internal/model"
	"kali/internal/repository"
	"kali/internal/storage"
)

const userCacheTTL = time.Minute

// userCache is the subset of *cache.Client the service uses.
type userCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	AddJSON(ctx context.Context, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, keys ...string)
}

// UserService exposes the operations on existing user records. Every method
// takes the verified requester explicitly.
type UserService interface {
	GetAll(ctx context.Context, requester auth.Principal) ([]model.User, error)
	GetByID(ctx context.Context, requester auth.Principal, id string) (*model.User, error)
	Update(ctx context.Context, requester auth.Principal, id string, user *model.User) (*model.User, error)
	Delete(ctx context.Context, requester auth.Principal, id string) error
	UploadAsset(ctx context.Context, requester auth.Principal, id string, data []byte, filename string) (string, error)
	MakeAdmin(ctx context.Context, requester auth.Principal, id string) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	assets storage.AssetStore
	cache  userCache
}

// NewUserService builds a UserService with repository, asset store and cache.
// A nil cache disables caching.
func NewUserService(repo repository.UserRepository, assets storage.AssetStore, cache *cache.Client) UserService {
	return &userService{repo: repo, assets: assets, cache: cache}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) GetAll(ctx context.Context, requester auth.Principal) ([]model.User, error) {
	if err := authorize(requester, "", authz.ActionList); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetByID(ctx context.Context, requester auth.Principal, id string) (*model.User, error) {
	if err := authorize(requester, id, authz.ActionRead); err != nil {
		return nil, err
	}

	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// A read only fills an empty slot; writers overwrite it, so a record
	// loaded before a concurrent update cannot replace the fresh one.
	s.cache.AddJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

// Update replaces the profile fields of the stored record with those of user.
// Credentials, role, asset and reference lists are kept from the stored record.
func (s *userService) Update(ctx context.Context, requester auth.Principal, id string, user *model.User) (*model.User, error) {
	if !requester.Authenticated() {
		return nil, apperrors.ErrUnauthenticated
	}
	if user == nil || user.ID != id {
		return nil, apperrors.ErrIDMismatch
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(requester, existing.ID, authz.ActionUpdate); err != nil {
		return nil, err
	}

	user.Email = normalizeEmail(user.Email)
	if user.Email != existing.Email {
		other, err := s.repo.FindByEmail(ctx, user.Email)
		switch {
		case err == nil && other.ID != existing.ID:
			return nil, apperrors.ErrDuplicateEmail
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("check email: %w", err)
		}
	}

	existing.ApplyProfile(user)
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), existing, userCacheTTL)

	return existing, nil
}

func (s *userService) Delete(ctx context.Context, requester auth.Principal, id string) error {
	if !requester.Authenticated() {
		return apperrors.ErrUnauthenticated
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(requester, existing.ID, authz.ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.cache.Delete(ctx, s.cacheKey(id))
	s.removeAsset(ctx, existing.AssetPath)

	logger.InfoContext(ctx, "user deleted", "id", id, "by", requester.UserID)
	return nil
}

// UploadAsset stores data as the user's profile picture, replacing any
// previous one, and returns the stored path.
func (s *userService) UploadAsset(ctx context.Context, requester auth.Principal, id string, data []byte, filename string) (string, error) {
	if !requester.Authenticated() {
		return "", apperrors.ErrUnauthenticated
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := authorize(requester, user.ID, authz.ActionUpload); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", apperrors.ErrEmptyUpload
	}

	assetPath, err := storage.AssetPath(user.ID, filename, data)
	if err != nil {
		return "", err
	}

	s.removeAsset(ctx, user.AssetPath)

	if err := s.assets.Write(ctx, assetPath, data); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}

	user.AssetPath = assetPath
	if err := s.repo.Update(ctx, user); err != nil {
		return "", fmt.Errorf("update user: %w", err)
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)

	return assetPath, nil
}

// MakeAdmin grants the admin role to the user. The requester's role is
// checked by the transport before this is called.
func (s *userService) MakeAdmin(ctx context.Context, requester auth.Principal, id string) (*model.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsAdmin = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)

	logger.InfoContext(ctx, "admin granted", "id", id, "by", requester.UserID)
	return user, nil
}

// load reads the record from the store, bypassing the cache, so the
// credential hash is present when the record is written back.
func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// removeAsset deletes a previous asset. Failures are logged and ignored.
func (s *userService) removeAsset(ctx context.Context, assetPath string) {
	if assetPath == "" {
		return
	}
	exists, err := s.assets.Exists(ctx, assetPath)
	if err != nil {
		logger.WarnContext(ctx, "check previous asset failed", "path", assetPath, "error", err)
		return
	}
	if !exists {
		return
	}
	if err := s.assets.Delete(ctx, assetPath); err != nil {
		logger.WarnContext(ctx, "delete previous asset failed", "path", assetPath, "error", err)
	}
}

func authorize(requester auth.Principal, ownerID string, action authz.Action) error {
	if !requester.Authenticated() {
		return apperrors.ErrUnauthenticated
	}
	if authz.Authorize(requester, ownerID, action) == authz.Deny {
		return apperrors.ErrForbidden
	}
	return nil
}
