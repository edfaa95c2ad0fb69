package profile

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertProfile records identity fields from the auth provider. The family
// link is owned by the family and invitation workflows and is never touched.
func (s *Service) UpsertProfile(ctx context.Context, userID, username, avatarURL string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	profile := Profile{ID: userID}
	if username = strings.TrimSpace(username); username != "" {
		profile.Username = &username
	}
	if avatarURL = strings.TrimSpace(avatarURL); avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	return s.repo.UpsertProfile(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}
