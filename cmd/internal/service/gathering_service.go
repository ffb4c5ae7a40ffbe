package service

import (
	"errors"
	"math/rand/v2"
	"sort"
	"time"
	"wemakedo/cmd/internal/domain/database/repository"
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/metrics"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

const (
	lightningWindow = 90 * time.Minute
	lightningRadius = 1000.0

	hostParticipationWarning = "host participation could not be recorded, join your gathering again"
)

type GatheringRepository interface {
	Create(gathering *entity.Gathering) error
	Save(gathering *entity.Gathering) error
	Delete(id int64) error
	FindByID(id int64) (*entity.Gathering, error)
	FindDetail(id int64) (*entity.Gathering, error)
	List(filter repository.GatheringFilter) ([]*entity.Gathering, error)
	FindByHost(hostID string) ([]*entity.Gathering, error)
	FindJoinedBy(userID string) ([]*entity.Gathering, error)
	FindLikedBy(userID string) ([]*entity.Gathering, error)
}

type ParticipationRepository interface {
	Create(participation *entity.Participation) error
	CreateGuarded(participation *entity.Participation) (withdrawn bool, err error)
	Exists(gatheringID int64, userID string) (bool, error)
	CountByGathering(gatheringID int64) (int64, error)
	FindByGathering(gatheringID int64) ([]*entity.Participation, error)
}

type CreateGatheringRequest struct {
	Title     string   `json:"title" validate:"required,notblank,max=100"`
	Content   *string  `json:"content" validate:"omitempty,max=2000"`
	Location  string   `json:"location" validate:"required,notblank,max=200"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	MeetAt    string   `json:"meet_at" validate:"required,iso8601"`
	Capacity  int      `json:"capacity" validate:"required,min=2,max=100"`
	Category  string   `json:"category" validate:"required,category"`
	ImageURL  *string  `json:"image_url" validate:"omitempty,url"`
}

// UpdateGatheringRequest is a partial update: nil fields are left untouched.
type UpdateGatheringRequest struct {
	Title     *string  `json:"title" validate:"omitempty,notblank,max=100"`
	Content   *string  `json:"content" validate:"omitempty,max=2000"`
	Location  *string  `json:"location" validate:"omitempty,notblank,max=200"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	MeetAt    *string  `json:"meet_at" validate:"omitempty,iso8601"`
	Capacity  *int     `json:"capacity" validate:"omitempty,min=2,max=100"`
	Category  *string  `json:"category" validate:"omitempty,category"`
	ImageURL  *string  `json:"image_url" validate:"omitempty,url"`
	Status    *string  `json:"status" validate:"omitempty,gathstatus"`
}

type ListGatheringsRequest struct {
	Category string `query:"category"`
	Query    string `query:"q" validate:"max=100"`
	Status   string `query:"status" validate:"omitempty,oneof=open all"`
}

type DefaultGatheringService struct {
	GatheringRepo     GatheringRepository
	ParticipationRepo ParticipationRepository
	ApplicationRepo   ApplicationRepository
	LikeRepo          LikeRepository
	Validate          *validator.Validate
	Feed              realtime.Publisher
	Clock             func() time.Time
}

func NewGatheringService(
	gatheringRepo GatheringRepository,
	participationRepo ParticipationRepository,
	applicationRepo ApplicationRepository,
	likeRepo LikeRepository,
	validate *validator.Validate,
	feed realtime.Publisher,
) *DefaultGatheringService {
	return &DefaultGatheringService{
		GatheringRepo:     gatheringRepo,
		ParticipationRepo: participationRepo,
		ApplicationRepo:   applicationRepo,
		LikeRepo:          likeRepo,
		Validate:          validate,
		Feed:              feed,
		Clock:             time.Now,
	}
}

// CreateGathering stores the gathering and then, as a separate step, the
// host's participation. The second step failing leaves the gathering in
// place and is reported as a warning.
func (g *DefaultGatheringService) CreateGathering(req *CreateGatheringRequest, callerID string) (*CreateGatheringResponse, apierror.ErrorResponse) {
	if callerID == "" {
		return nil, apierror.UnauthenticatedError
	}

	utils.Sanitize(req)
	if err := g.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	meetAt, err := utils.FromEpoch(req.MeetAt)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}
	if meetAt <= g.Clock().UnixMilli() {
		return nil, apierror.MeetAtInPastError
	}

	now := utils.NowUTC()
	gathering := &entity.Gathering{
		HostID:    callerID,
		Title:     req.Title,
		Content:   req.Content,
		Location:  req.Location,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		MeetAt:    meetAt,
		Capacity:  req.Capacity,
		Category:  req.Category,
		ImageURL:  req.ImageURL,
		Status:    entity.GatheringRecruiting,
		CreatedAt: now,
	}

	if err := g.GatheringRepo.Create(gathering); err != nil {
		return nil, storeFailure(err, "failed to create gathering for user %s", callerID)
	}
	metrics.Transition("gathering_created")

	resp := &CreateGatheringResponse{GatheringResponse: toGatheringResponse(gathering)}

	host := &entity.Participation{
		GatheringID: gathering.ID,
		UserID:      callerID,
		Status:      entity.ParticipationJoined,
		CreatedAt:   now,
	}
	if err := g.ParticipationRepo.Create(host); err != nil {
		log.Warnf("gathering %d created without host participation: %v", gathering.ID, err)
		resp.Warnings = append(resp.Warnings, hostParticipationWarning)
	} else {
		metrics.Transition("host_joined")
	}

	publish(g.Feed, realtime.NewEvent(realtime.GatheringsTopic, realtime.TableGatherings, realtime.ActionInsert, "gathering_created", resp.GatheringResponse))
	return resp, nil
}

func (g *DefaultGatheringService) UpdateGathering(gatheringID int64, req *UpdateGatheringRequest, callerID string) (*GatheringResponse, apierror.ErrorResponse) {
	gathering, apierr := g.hostedGathering(gatheringID, callerID)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := g.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	if req.Capacity != nil && *req.Capacity < gathering.Capacity {
		count, err := g.ParticipationRepo.CountByGathering(gatheringID)
		if err != nil {
			return nil, storeFailure(err, "failed to count participants of gathering %d", gatheringID)
		}
		if int64(*req.Capacity) < count {
			return nil, apierror.CapacityBelowParticipantsError
		}
	}

	if req.Title != nil {
		gathering.Title = *req.Title
	}
	if req.Content != nil {
		gathering.Content = req.Content
	}
	if req.Location != nil {
		gathering.Location = *req.Location
	}
	if req.Latitude != nil {
		gathering.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		gathering.Longitude = req.Longitude
	}
	if req.MeetAt != nil {
		meetAt, err := utils.FromEpoch(*req.MeetAt)
		if err != nil {
			return nil, apierror.MalformedBodyError
		}
		gathering.MeetAt = meetAt
	}
	if req.Capacity != nil {
		gathering.Capacity = *req.Capacity
	}
	if req.Category != nil {
		gathering.Category = *req.Category
	}
	if req.ImageURL != nil {
		gathering.ImageURL = req.ImageURL
	}
	if req.Status != nil && entity.GatheringStatus(*req.Status) != gathering.Status {
		gathering.Status = entity.GatheringStatus(*req.Status)
		metrics.Transition("gathering_" + *req.Status)
	}

	if err := g.GatheringRepo.Save(gathering); err != nil {
		return nil, storeFailure(err, "failed to update gathering %d", gatheringID)
	}

	resp := toGatheringResponse(gathering)
	publish(g.Feed, realtime.NewEvent(realtime.GatheringsTopic, realtime.TableGatherings, realtime.ActionUpdate, "gathering_updated", resp))
	return &resp, nil
}

func (g *DefaultGatheringService) DeleteGathering(gatheringID int64, callerID string) apierror.ErrorResponse {
	if _, apierr := g.hostedGathering(gatheringID, callerID); apierr != nil {
		return apierr
	}

	if err := g.GatheringRepo.Delete(gatheringID); err != nil {
		return storeFailure(err, "failed to delete gathering %d", gatheringID)
	}
	metrics.Transition("gathering_deleted")

	publish(g.Feed, realtime.NewEvent(realtime.GatheringsTopic, realtime.TableGatherings, realtime.ActionDelete, "gathering_deleted", deletedRecord{ID: gatheringID}))
	return nil
}

// GetGathering is public; callerID only adds the caller's own state.
func (g *DefaultGatheringService) GetGathering(gatheringID int64, callerID string) (*GatheringDetail, apierror.ErrorResponse) {
	gathering, err := g.GatheringRepo.FindDetail(gatheringID)
	if err != nil {
		return nil, storeFailure(err, "failed to fetch gathering %d", gatheringID)
	}
	if gathering == nil {
		return nil, apierror.NotFoundError
	}

	detail := &GatheringDetail{
		GatheringWithCounts: *toGatheringWithCounts(gathering),
		Participants:        make([]*UserSummary, 0, len(gathering.Participations)),
		Comments:            make([]*CommentResponse, len(gathering.Comments)),
		IsHost:              callerID != "" && callerID == gathering.HostID,
		MyState:             StateNone,
	}

	for _, p := range gathering.Participations {
		if summary := toUserSummary(&p.User); summary != nil {
			detail.Participants = append(detail.Participants, summary)
		}
		if p.UserID == callerID {
			detail.MyState = StateJoined
		}
	}
	for i := range gathering.Comments {
		detail.Comments[i] = toCommentResponse(&gathering.Comments[i])
	}

	if callerID == "" {
		return detail, nil
	}

	detail.LikedByMe, err = g.LikeRepo.Exists(gatheringID, callerID)
	if err != nil {
		return nil, storeFailure(err, "failed to check like of user %s on gathering %d", callerID, gatheringID)
	}

	if detail.MyState == StateNone {
		app, err := g.ApplicationRepo.Find(gatheringID, callerID)
		if err != nil {
			return nil, storeFailure(err, "failed to check application of user %s on gathering %d", callerID, gatheringID)
		}
		if app != nil {
			detail.MyState = StateApplied
		}
	}
	return detail, nil
}

func (g *DefaultGatheringService) ListGatherings(req *ListGatheringsRequest) ([]*GatheringWithCounts, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := g.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	filter := repository.GatheringFilter{Query: req.Query}
	if req.Category != "" && req.Category != "all" {
		filter.Category = req.Category
	}
	if req.Status == "open" {
		filter.MeetsAfter = g.Clock().UnixMilli()
	}

	gatherings, err := g.GatheringRepo.List(filter)
	if err != nil {
		return nil, storeFailure(err, "failed to list gatherings")
	}
	return toGatheringList(gatherings), nil
}

// ListLightning returns recruiting gatherings that meet within the next 90
// minutes. With a position, only those within 1 km are kept, nearest first.
func (g *DefaultGatheringService) ListLightning(lat, lon *float64) ([]*GatheringWithCounts, apierror.ErrorResponse) {
	now := g.Clock()
	gatherings, err := g.GatheringRepo.List(repository.GatheringFilter{
		Status:      entity.GatheringRecruiting,
		MeetsAfter:  now.UnixMilli(),
		MeetsBefore: now.Add(lightningWindow).UnixMilli(),
		OrderByMeet: true,
	})
	if err != nil {
		return nil, storeFailure(err, "failed to list lightning gatherings")
	}

	resp := toGatheringList(gatherings)
	if lat == nil || lon == nil {
		return resp, nil
	}

	nearby := make([]*GatheringWithCounts, 0, len(resp))
	for _, row := range resp {
		if row.Latitude == nil || row.Longitude == nil {
			continue
		}
		distance := utils.DistanceMeters(*lat, *lon, *row.Latitude, *row.Longitude)
		if distance <= lightningRadius {
			row.DistanceMeters = &distance
			nearby = append(nearby, row)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return *nearby[i].DistanceMeters < *nearby[j].DistanceMeters
	})
	return nearby, nil
}

// ListLunch returns today's recruiting lunch gatherings, soonest first.
func (g *DefaultGatheringService) ListLunch() ([]*GatheringWithCounts, apierror.ErrorResponse) {
	start, end := utils.DayBounds(g.Clock())
	gatherings, err := g.GatheringRepo.List(repository.GatheringFilter{
		Category:    "lunch",
		Status:      entity.GatheringRecruiting,
		MeetsAfter:  start,
		MeetsBefore: end,
		OrderByMeet: true,
	})
	if err != nil {
		return nil, storeFailure(err, "failed to list lunch gatherings")
	}
	return toGatheringList(gatherings), nil
}

func (g *DefaultGatheringService) RandomIceBreaker() string {
	return iceBreakers[rand.IntN(len(iceBreakers))]
}

// hostedGathering loads the gathering and checks that callerID hosts it.
func (g *DefaultGatheringService) hostedGathering(gatheringID int64, callerID string) (*entity.Gathering, apierror.ErrorResponse) {
	return findHosted(g.GatheringRepo, gatheringID, callerID)
}

func findHosted(repo GatheringRepository, gatheringID int64, callerID string) (*entity.Gathering, apierror.ErrorResponse) {
	if callerID == "" {
		return nil, apierror.UnauthenticatedError
	}

	gathering, err := repo.FindByID(gatheringID)
	if err != nil {
		return nil, storeFailure(err, "failed to fetch gathering %d", gatheringID)
	}
	if gathering == nil {
		return nil, apierror.NotFoundError
	}
	if gathering.HostID != callerID {
		return nil, apierror.ForbiddenError
	}
	return gathering, nil
}

type deletedRecord struct {
	ID int64 `json:"id"`
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
