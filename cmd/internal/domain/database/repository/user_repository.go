package repository

import (
	"errors"
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(id string) (*entity.User, error) {
	var user entity.User
	err := u.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// Upsert inserts the user on first sign-in. Later sign-ins only refresh the
// email, so profile edits made in the app are not overwritten by the provider.
func (u *DefaultUserRepository) Upsert(user *entity.User) error {
	return u.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
	}).Create(user).Error
}

// CreateIfMissing inserts the user unless a row with the same id exists. It
// reports whether a row was written.
func (u *DefaultUserRepository) CreateIfMissing(user *entity.User) (bool, error) {
	res := u.db.Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	return res.RowsAffected > 0, res.Error
}

func (u *DefaultUserRepository) Save(user *entity.User) error {
	return u.db.Save(user).Error
}
