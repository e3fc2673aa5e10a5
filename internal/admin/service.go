package admin

import (
	"context"
	"fmt"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/services"
	"github.com/rs/zerolog/log"
)

type Identity interface {
	Invite(ctx context.Context, email, fullName string) (IdentityUser, error)
	CreateUser(ctx context.Context, email, password, fullName string) (IdentityUser, error)
}

type Family interface {
	EnsureFamily(ctx context.Context, userID string) (string, error)
	Join(ctx context.Context, p model.Profile, familyID string) (model.Profile, error)
}

// InviteRequest asks to bring Email into the family of InviterID.
type InviteRequest struct {
	InviterID string `json:"inviter_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FullName  string `json:"full_name"`
}

type CreateUserRequest struct {
	InviterID string `json:"inviter_id" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FullName  string `json:"full_name"`
}

// Service registers new users with the identity provider and places them in
// the inviter's family group.
type Service struct {
	identity Identity
	family   Family
}

func NewService(identity Identity, family Family) *Service {
	return &Service{
		identity: identity,
		family:   family,
	}
}

func (s *Service) Invite(ctx context.Context, req InviteRequest) (model.Profile, error) {
	return s.register(ctx, req.InviterID, req.Email, req.FullName, func() (IdentityUser, error) {
		return s.identity.Invite(ctx, req.Email, req.FullName)
	})
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (model.Profile, error) {
	return s.register(ctx, req.InviterID, req.Email, req.FullName, func() (IdentityUser, error) {
		return s.identity.CreateUser(ctx, req.Email, req.Password, req.FullName)
	})
}

// register resolves the inviter's family before the provider is called; an
// unknown inviter creates no account.
func (s *Service) register(ctx context.Context, inviterID, email, fullName string, call func() (IdentityUser, error)) (model.Profile, error) {
	if inviterID == "" || email == "" {
		return model.Profile{}, fmt.Errorf("%w: inviter_id and email are required", services.ErrInvalidRequest)
	}
	familyID, err := s.family.EnsureFamily(ctx, inviterID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("resolve inviter family: %w", err)
	}

	user, err := call()
	if err != nil {
		return model.Profile{}, err
	}

	profile, err := s.family.Join(ctx, model.Profile{
		ID:       user.ID,
		Email:    email,
		FullName: fullName,
	}, familyID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("store profile: %w", err)
	}

	log.Info().
		Str("inviter_id", inviterID).
		Str("user_id", profile.ID).
		Str("family_id", familyID).
		Msg("user added to family")
	return profile, nil
}
