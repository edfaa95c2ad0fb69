package invitation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const codeAttempts = 10

type Service struct {
	repo   Repository
	sender Sender
	ttl    time.Duration
	now    func() time.Time
}

type CreateInput struct {
	UserID      string
	InviterName string
	Email       string
}

func NewService(repo Repository) *Service {
	return NewServiceWithConfig(repo, Config{TTL: DefaultTTL}, nil)
}

func NewServiceWithConfig(repo Repository, cfg Config, sender Sender) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sender == nil {
		sender = noopSender{}
	}

	return &Service{
		repo:   repo,
		sender: sender,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Check answers the signup pre-check through the database function, skipping
// the round trip for malformed input.
func (s *Service) Check(ctx context.Context, raw string) (bool, error) {
	format := ValidateFormat(raw)
	if !format.IsValid {
		return false, nil
	}

	valid, err := s.repo.IsCodeValid(ctx, format.CleanCode)
	if err != nil {
		return false, fmt.Errorf("check invitation code: %w", err)
	}
	return valid, nil
}

func (s *Service) Verify(ctx context.Context, raw string) (Verification, error) {
	return verify(ctx, s.repo, raw, s.now())
}

func (s *Service) Redeem(ctx context.Context, userID, raw string) (Redemption, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Redemption{}, fmt.Errorf("user id is required")
	}

	format := ValidateFormat(raw)
	if !format.IsValid {
		return Redemption{}, &FormatError{Result: format}
	}

	var familyID string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		verification, err := verify(ctx, tx, format.CleanCode, s.now())
		if err != nil {
			return err
		}
		if !verification.Valid {
			return verification.Err()
		}

		inFamily, err := tx.IsUserInFamily(ctx, userID)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if inFamily {
			return ErrAlreadyInFamily
		}

		consumed, err := tx.MarkUsed(ctx, verification.Invitation.ID)
		if err != nil {
			return fmt.Errorf("mark invitation used: %w", err)
		}
		if !consumed {
			return ErrInvitationNotFound
		}

		if err := tx.SetProfileFamily(ctx, userID, verification.FamilyID); err != nil {
			return fmt.Errorf("link profile: %w", err)
		}
		if err := tx.AddMember(ctx, verification.FamilyID, userID, joinRole); err != nil {
			return fmt.Errorf("add member: %w", err)
		}

		familyID = verification.FamilyID
		return nil
	})
	if err != nil {
		return Redemption{}, err
	}

	return Redemption{Success: true, FamilyID: familyID}, nil
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Invitation, error) {
	email := strings.TrimSpace(input.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidEmail
		}
	}

	familyID, err := s.repo.GetFamilyIDByUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	created, err := Issue(ctx, s.repo.CreateInvitation, familyID, input.UserID, s.now().Add(s.ttl))
	if err != nil {
		return nil, err
	}

	if email == "" {
		return created, nil
	}

	notice := Notice{
		To:          email,
		InvitedBy:   strings.TrimSpace(input.InviterName),
		DisplayCode: FormatForDisplay(created.Code),
		ExpiresAt:   created.ExpiresAt,
	}
	if err := s.sender.SendInvitation(ctx, notice); err != nil {
		return created, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return created, nil
}

func (s *Service) ListForFamily(ctx context.Context, userID string, filter ListFilter) ([]Invitation, error) {
	familyID, err := s.repo.GetFamilyIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var activeAt *time.Time
	if !filter.IncludeInactive {
		now := s.now()
		activeAt = &now
	}

	return s.repo.ListByFamily(ctx, familyID, activeAt)
}

// Issue stores a freshly generated invitation through create, drawing a new
// code whenever the store reports ErrCodeTaken.
func Issue(ctx context.Context, create func(context.Context, *Invitation) error, familyID, createdBy string, expiresAt time.Time) (*Invitation, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}

		invitation := &Invitation{
			ID:        uuid.NewString(),
			Code:      code,
			FamilyID:  familyID,
			CreatedBy: createdBy,
			ExpiresAt: expiresAt.UTC(),
		}

		err = create(ctx, invitation)
		if err == nil {
			return invitation, nil
		}
		if !errors.Is(err, ErrCodeTaken) {
			return nil, err
		}
	}
	return nil, ErrCodeGenerationFailed
}

func verify(ctx context.Context, repo Repository, raw string, now time.Time) (Verification, error) {
	format := ValidateFormat(raw)
	if !format.IsValid {
		return Verification{Error: format.FirstError(), reason: &FormatError{Result: format}}, nil
	}

	found, err := repo.GetUnusedByCode(ctx, format.CleanCode)
	if err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return Verification{Error: MessageInvalidCode, reason: ErrInvitationNotFound}, nil
		}
		return Verification{}, fmt.Errorf("lookup invitation: %w", err)
	}

	// Expired rows are reported, never mutated.
	if found.IsExpired(now) {
		return Verification{Error: MessageExpiredCode, reason: ErrInvitationExpired}, nil
	}

	return Verification{
		Valid:      true,
		FamilyID:   found.FamilyID,
		Invitation: found,
	}, nil
}
