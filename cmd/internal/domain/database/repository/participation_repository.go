package repository

import (
	"errors"
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrGatheringFull is returned by guarded inserts when the gathering
	// already holds as many participations as its capacity.
	ErrGatheringFull = errors.New("gathering is at capacity")

	// ErrAlreadyParticipant is returned when an application is filed by a
	// user who already holds a participation in the gathering.
	ErrAlreadyParticipant = errors.New("user already participates in gathering")
)

// guardedInsertSQL inserts only while the participation count is below
// capacity. The casts keep PostgreSQL from typing the parameters as text.
const guardedInsertSQL = `INSERT INTO participations (gathering_id, user_id, status, created_at)
SELECT CAST(? AS BIGINT), CAST(? AS VARCHAR(64)), CAST(? AS VARCHAR(16)), CAST(? AS BIGINT)
WHERE (SELECT COUNT(*) FROM participations WHERE gathering_id = ?) < ?`

type DefaultParticipationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) *DefaultParticipationRepository {
	return &DefaultParticipationRepository{db: db}
}

// Create inserts without a capacity guard. Used for the host's own
// participation, which is always the first row of a new gathering.
func (p *DefaultParticipationRepository) Create(participation *entity.Participation) error {
	return p.db.Omit("User").Create(participation).Error
}

// CreateGuarded inserts the participation only if the gathering has room.
// A pending application by the same user is removed in the same
// transaction; withdrawn reports whether there was one.
func (p *DefaultParticipationRepository) CreateGuarded(participation *entity.Participation) (withdrawn bool, err error) {
	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := insertGuarded(tx, participation); err != nil {
			return err
		}

		res := tx.Where("gathering_id = ? AND user_id = ?", participation.GatheringID, participation.UserID).
			Delete(&entity.Application{})
		withdrawn = res.RowsAffected > 0
		return res.Error
	})
	return withdrawn, err
}

func (p *DefaultParticipationRepository) Exists(gatheringID int64, userID string) (bool, error) {
	var count int64
	err := p.db.Model(&entity.Participation{}).
		Where("gathering_id = ? AND user_id = ?", gatheringID, userID).
		Count(&count).Error
	return count > 0, err
}

func (p *DefaultParticipationRepository) CountByGathering(gatheringID int64) (int64, error) {
	var count int64
	err := p.db.Model(&entity.Participation{}).
		Where("gathering_id = ?", gatheringID).
		Count(&count).Error
	return count, err
}

func (p *DefaultParticipationRepository) FindByGathering(gatheringID int64) ([]*entity.Participation, error) {
	var participations []*entity.Participation
	err := p.db.Where("gathering_id = ?", gatheringID).
		Order("created_at asc").
		Find(&participations).Error
	return participations, err
}

// insertGuarded must run inside a transaction. The gathering row is locked
// first (a no-op on SQLite, where the single connection already serializes
// writers) so concurrent joins on the same gathering queue up behind it.
func insertGuarded(tx *gorm.DB, participation *entity.Participation) error {
	var gathering entity.Gathering
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "capacity").
		First(&gathering, participation.GatheringID).Error
	if err != nil {
		return err
	}

	var existing int64
	err = tx.Model(&entity.Participation{}).
		Where("gathering_id = ? AND user_id = ?", participation.GatheringID, participation.UserID).
		Count(&existing).Error
	if err != nil {
		return err
	}
	if existing > 0 {
		return gorm.ErrDuplicatedKey
	}

	res := tx.Exec(guardedInsertSQL,
		participation.GatheringID,
		participation.UserID,
		participation.Status,
		participation.CreatedAt,
		participation.GatheringID,
		gathering.Capacity,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrGatheringFull
	}

	return tx.Where("gathering_id = ? AND user_id = ?", participation.GatheringID, participation.UserID).
		First(participation).Error
}
