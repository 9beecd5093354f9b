package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"teeup/internal/util"
	"teeup/pkg/domain"
	"teeup/pkg/storage"
	"teeup/pkg/store"
)

// ErrAvatarsUnavailable is returned when no object store is configured.
var ErrAvatarsUnavailable = errors.New("avatar storage not configured")

// ProfileForUser resolves the profile linked to an authenticated user id.
func (a *App) ProfileForUser(ctx context.Context, userID string) (domain.Profile, error) {
	p, ok, err := a.store.GetProfileByUserID(userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

// GetProfile returns a profile by id.
func (a *App) GetProfile(ctx context.Context, profileID string) (domain.Profile, error) {
	p, ok, err := a.store.GetProfileByID(profileID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

// UpdateProfile applies the given field updates to the caller's profile and
// returns the result. Handicap values are clamped into the supported range by
// the caller before reaching here.
func (a *App) UpdateProfile(ctx context.Context, callerProfileID string, updates store.ProfileUpdate) (domain.Profile, error) {
	if callerProfileID == "" {
		return domain.Profile{}, ErrNotAuthenticated
	}
	if err := a.store.UpdateProfile(callerProfileID, updates); err != nil {
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return a.GetProfile(ctx, callerProfileID)
}

// UploadAvatar stores a new avatar image, points the profile at its URL and
// drops the previously stored object so replaced avatars do not accumulate.
func (a *App) UploadAvatar(ctx context.Context, callerProfileID string, r io.Reader, size int64, contentType string) (domain.Profile, error) {
	if callerProfileID == "" {
		return domain.Profile{}, ErrNotAuthenticated
	}
	if a.avatars == nil {
		return domain.Profile{}, ErrAvatarsUnavailable
	}
	profile, err := a.GetProfile(ctx, callerProfileID)
	if err != nil {
		return domain.Profile{}, err
	}
	prevKey := storage.KeyFromURL(profile.AvatarURL)
	key, err := a.avatars.Upload(ctx, profile.UserID, r, size, contentType)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("store avatar: %w", err)
	}
	url, err := a.avatars.URL(ctx, key)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("presign avatar: %w", err)
	}
	updated, err := a.UpdateProfile(ctx, callerProfileID, store.ProfileUpdate{AvatarURL: &url})
	if err != nil {
		return domain.Profile{}, err
	}
	if prevKey != "" {
		if err := a.avatars.Remove(ctx, prevKey); err != nil {
			util.LoggerFromContext(ctx).Warn("failed to remove replaced avatar", "key", prevKey, "err", err)
		}
	}
	return updated, nil
}
