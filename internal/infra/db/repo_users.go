package db

import (
	"context"
	"errors"
	"time"

	"herald/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository is the gorm-backed view onto the user store. Role tags
// are serialized to a comma-joined column only at this edge.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ domain.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return userFromModel(model), nil
}

func (r *UserRepository) FindByIdentity(ctx context.Context, identity string) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "identity = ?", identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return userFromModel(model), nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if user == nil {
		return errors.New("user is required")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	model := UserModel{
		ID:        user.ID,
		Identity:  user.Identity,
		Email:     user.Email,
		Phone:     user.Phone,
		Roles:     user.Roles.String(),
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"identity", "email", "phone", "roles", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return err
	}
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func userFromModel(model UserModel) *domain.User {
	return &domain.User{
		ID:        model.ID,
		Identity:  model.Identity,
		Email:     model.Email,
		Phone:     model.Phone,
		Roles:     domain.ParseRoleSet(model.Roles),
		UpdatedAt: model.UpdatedAt,
	}
}
