package repository

import (
	"errors"
	"strings"
	"wemakedo/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

// countColumns adds the read-only ParticipantCount and LikeCount columns.
const countColumns = "gatherings.*, " +
	"(SELECT COUNT(*) FROM participations p WHERE p.gathering_id = gatherings.id) AS participant_count, " +
	"(SELECT COUNT(*) FROM likes l WHERE l.gathering_id = gatherings.id) AS like_count"

// GatheringFilter narrows ListGatherings. Zero values disable a filter.
type GatheringFilter struct {
	Category    string
	Query       string
	MeetsAfter  int64
	MeetsBefore int64
	Status      entity.GatheringStatus
	OrderByMeet bool
}

type DefaultGatheringRepository struct {
	db *gorm.DB
}

func NewGatheringRepository(db *gorm.DB) *DefaultGatheringRepository {
	return &DefaultGatheringRepository{db: db}
}

func (g *DefaultGatheringRepository) FindByID(id int64) (*entity.Gathering, error) {
	var gathering entity.Gathering
	err := g.db.First(&gathering, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &gathering, err
}

// FindDetail loads a gathering with its host, participants, comments and counts.
func (g *DefaultGatheringRepository) FindDetail(id int64) (*entity.Gathering, error) {
	var gathering entity.Gathering
	err := g.db.Model(&entity.Gathering{}).
		Select(countColumns).
		Preload("Host").
		Preload("Participations", func(db *gorm.DB) *gorm.DB {
			return db.Order("participations.created_at asc").Order("participations.id asc")
		}).
		Preload("Participations.User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at asc").Order("comments.id asc")
		}).
		Preload("Comments.User").
		Where("gatherings.id = ?", id).
		First(&gathering).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &gathering, err
}

func (g *DefaultGatheringRepository) List(filter GatheringFilter) ([]*entity.Gathering, error) {
	query := g.db.Model(&entity.Gathering{}).
		Select(countColumns).
		Preload("Host")

	if filter.Category != "" {
		query = query.Where("gatherings.category = ?", filter.Category)
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("(LOWER(gatherings.title) LIKE ? OR LOWER(gatherings.content) LIKE ?)", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("gatherings.status = ?", filter.Status)
	}
	if filter.MeetsAfter != 0 {
		query = query.Where("gatherings.meet_at >= ?", filter.MeetsAfter)
	}
	if filter.MeetsBefore != 0 {
		query = query.Where("gatherings.meet_at <= ?", filter.MeetsBefore)
	}

	if filter.OrderByMeet {
		query = query.Order("gatherings.meet_at asc")
	} else {
		query = query.Order("gatherings.created_at desc").Order("gatherings.id desc")
	}

	var gatherings []*entity.Gathering
	err := query.Find(&gatherings).Error
	return gatherings, err
}

func (g *DefaultGatheringRepository) FindByHost(hostID string) ([]*entity.Gathering, error) {
	var gatherings []*entity.Gathering
	err := g.db.Model(&entity.Gathering{}).
		Select(countColumns).
		Where("gatherings.host_id = ?", hostID).
		Order("gatherings.created_at desc").
		Find(&gatherings).Error
	return gatherings, err
}

func (g *DefaultGatheringRepository) FindJoinedBy(userID string) ([]*entity.Gathering, error) {
	var gatherings []*entity.Gathering
	err := g.db.Model(&entity.Gathering{}).
		Select(countColumns).
		Preload("Host").
		Joins("JOIN participations jp ON jp.gathering_id = gatherings.id").
		Where("jp.user_id = ? AND jp.status = ?", userID, entity.ParticipationJoined).
		Order("jp.created_at desc").
		Find(&gatherings).Error
	return gatherings, err
}

func (g *DefaultGatheringRepository) FindLikedBy(userID string) ([]*entity.Gathering, error) {
	var gatherings []*entity.Gathering
	err := g.db.Model(&entity.Gathering{}).
		Select(countColumns).
		Preload("Host").
		Joins("JOIN likes lk ON lk.gathering_id = gatherings.id").
		Where("lk.user_id = ?", userID).
		Order("lk.created_at desc").
		Find(&gatherings).Error
	return gatherings, err
}

func (g *DefaultGatheringRepository) Create(gathering *entity.Gathering) error {
	return g.db.Omit("Host").Create(gathering).Error
}

func (g *DefaultGatheringRepository) Save(gathering *entity.Gathering) error {
	return g.db.Omit("Host").Save(gathering).Error
}

// Delete removes the gathering and every dependent row in one transaction.
// The FK cascades would do the same; deleting explicitly keeps the behaviour
// identical on stores where foreign keys are not enforced.
func (g *DefaultGatheringRepository) Delete(id int64) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		dependents := []any{
			&entity.Participation{},
			&entity.Application{},
			&entity.Comment{},
			&entity.Like{},
			&entity.ChatMessage{},
			&entity.Review{},
		}
		for _, model := range dependents {
			if err := tx.Where("gathering_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entity.Gathering{}, id).Error
	})
}
