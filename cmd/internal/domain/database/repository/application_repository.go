package repository

import (
	"errors"
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *DefaultApplicationRepository {
	return &DefaultApplicationRepository{db: db}
}

// Create files an application. Users that already participate are refused
// with ErrAlreadyParticipant; a second application hits the unique index.
func (a *DefaultApplicationRepository) Create(application *entity.Application) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		var joined int64
		err := tx.Model(&entity.Participation{}).
			Where("gathering_id = ? AND user_id = ?", application.GatheringID, application.UserID).
			Count(&joined).Error
		if err != nil {
			return err
		}
		if joined > 0 {
			return ErrAlreadyParticipant
		}
		return tx.Omit("User").Create(application).Error
	})
}

func (a *DefaultApplicationRepository) Find(gatheringID int64, userID string) (*entity.Application, error) {
	var application entity.Application
	err := a.db.Where("gathering_id = ? AND user_id = ?", gatheringID, userID).First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &application, err
}

// FindByGathering lists pending applications with their applicants, oldest first.
func (a *DefaultApplicationRepository) FindByGathering(gatheringID int64) ([]*entity.Application, error) {
	var applications []*entity.Application
	err := a.db.Preload("User").
		Where("gathering_id = ?", gatheringID).
		Order("created_at asc").
		Order("id asc").
		Find(&applications).Error
	return applications, err
}

func (a *DefaultApplicationRepository) Delete(gatheringID int64, userID string) (int64, error) {
	res := a.db.Where("gathering_id = ? AND user_id = ?", gatheringID, userID).
		Delete(&entity.Application{})
	return res.RowsAffected, res.Error
}

// Approve turns the application into a participation. The capacity-guarded
// insert and the application delete commit together or not at all.
func (a *DefaultApplicationRepository) Approve(application *entity.Application, participation *entity.Participation) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := insertGuarded(tx, participation); err != nil {
			return err
		}
		return tx.Where("gathering_id = ? AND user_id = ?", application.GatheringID, application.UserID).
			Delete(&entity.Application{}).Error
	})
}
