package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/internal/repository"
	"github.com/nimasrn/household-ledger/pkg/logger"
)

type ProfileStore interface {
	Get(ctx context.Context, id string) (model.Profile, error)
	Upsert(ctx context.Context, p model.Profile) (model.Profile, error)
	SetFamilyID(ctx context.Context, id string, familyID string) error
	ListByFamily(ctx context.Context, familyID string) ([]model.Profile, error)
}

// FamilyService decides whose records a user sees: their own, or those of
// every profile in their family group.
type FamilyService struct {
	profiles ProfileStore
}

func NewFamilyService(profiles ProfileStore) *FamilyService {
	return &FamilyService{
		profiles: profiles,
	}
}

func (s *FamilyService) OwnerIDs(ctx context.Context, userID string) ([]string, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return []string{userID}, nil
		}
		return nil, err
	}
	if p.FamilyID == nil || *p.FamilyID == "" {
		return []string{userID}, nil
	}

	members, err := s.profiles.ListByFamily(ctx, *p.FamilyID)
	if err != nil {
		return nil, err
	}
	ids := []string{userID}
	for _, m := range members {
		if m.ID != userID {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// EnsureFamily returns the family id of userID, allocating one when the user
// has none yet.
func (s *FamilyService) EnsureFamily(ctx context.Context, userID string) (string, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if p.FamilyID != nil && *p.FamilyID != "" {
		return *p.FamilyID, nil
	}

	familyID := uuid.NewString()
	if err := s.profiles.SetFamilyID(ctx, userID, familyID); err != nil {
		return "", fmt.Errorf("set family id: %w", err)
	}
	logger.Info("[family] family group created", "user_id", userID, "family_id", familyID)
	return familyID, nil
}

// Join stores p as a member of familyID.
func (s *FamilyService) Join(ctx context.Context, p model.Profile, familyID string) (model.Profile, error) {
	if p.ID == "" || p.Email == "" {
		return model.Profile{}, invalid(errors.New("profile id and email are required"))
	}
	p.FamilyID = &familyID
	return s.profiles.Upsert(ctx, p)
}
