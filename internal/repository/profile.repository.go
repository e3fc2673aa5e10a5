package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/household-ledger/internal/model"
	"github.com/nimasrn/household-ledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository struct {
	*pg.DB
}

func NewProfileRepository(db *pg.DB) *ProfileRepository {
	return &ProfileRepository{
		db,
	}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (model.Profile, error) {
	var entity ProfileEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}
	return toProfileModel(&entity), nil
}

// Upsert inserts p or overwrites the email, name and family of an existing profile.
func (r *ProfileRepository) Upsert(ctx context.Context, p model.Profile) (model.Profile, error) {
	entity := toProfileEntity(p)
	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "family_id"}),
		}).
		Create(entity).
		Error
	if err != nil {
		return model.Profile{}, err
	}
	return r.Get(ctx, p.ID)
}

func (r *ProfileRepository) SetFamilyID(ctx context.Context, id string, familyID string) error {
	result := r.Write(ctx).
		Model(&ProfileEntity{}).
		Where("id = ?", id).
		Update("family_id", familyID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) ListByFamily(ctx context.Context, familyID string) ([]model.Profile, error) {
	var entities []*ProfileEntity
	err := r.Read(ctx).
		Where("family_id = ?", familyID).
		Order("created_at ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Profile, len(entities))
	for i, e := range entities {
		out[i] = toProfileModel(e)
	}
	return out, nil
}
