package service

import (
	"fmt"
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
)

type CommentRepository interface {
	Create(comment *entity.Comment) error
	FindByID(id int64) (*entity.Comment, error)
	DeleteOwn(id int64, userID string) (int64, error)
}

type LikeRepository interface {
	Toggle(gatheringID int64, userID string, now int64) (bool, error)
	Exists(gatheringID int64, userID string) (bool, error)
}

type UserFinder interface {
	FindByID(id string) (*entity.User, error)
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=500"`
}

type LikeResponse struct {
	GatheringID int64 `json:"gathering_id"`
	Liked       bool  `json:"liked"`
}

type DefaultCommunityService struct {
	CommentRepo   CommentRepository
	LikeRepo      LikeRepository
	GatheringRepo GatheringRepository
	UserRepo      UserFinder
	Notifier      *Notifier
	Feed          realtime.Publisher
	Validate      *validator.Validate
}

func NewCommunityService(
	commentRepo CommentRepository,
	likeRepo LikeRepository,
	gatheringRepo GatheringRepository,
	userRepo UserFinder,
	notifier *Notifier,
	feed realtime.Publisher,
	validate *validator.Validate,
) *DefaultCommunityService {
	return &DefaultCommunityService{
		CommentRepo:   commentRepo,
		LikeRepo:      likeRepo,
		GatheringRepo: gatheringRepo,
		UserRepo:      userRepo,
		Notifier:      notifier,
		Feed:          feed,
		Validate:      validate,
	}
}

func (c *DefaultCommunityService) AddComment(gatheringID int64, req *CommentRequest, callerID string) (*CommentResponse, apierror.ErrorResponse) {
	if callerID == "" {
		return nil, apierror.UnauthenticatedError
	}

	utils.Sanitize(req)
	if err := c.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	gathering, err := c.GatheringRepo.FindByID(gatheringID)
	if err != nil {
		return nil, storeFailure(err, "failed to fetch gathering %d", gatheringID)
	}
	if gathering == nil {
		return nil, apierror.NotFoundError
	}

	comment := &entity.Comment{
		GatheringID: gatheringID,
		UserID:      callerID,
		Content:     req.Content,
		CreatedAt:   utils.NowUTC(),
	}
	if err := c.CommentRepo.Create(comment); err != nil {
		return nil, storeFailure(err, "failed to store comment of user %s on gathering %d", callerID, gatheringID)
	}

	if author, err := c.UserRepo.FindByID(callerID); err == nil && author != nil {
		comment.User = *author
	}
	resp := toCommentResponse(comment)

	publish(c.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableComments, "gathering_id", gatheringID),
		realtime.TableComments, realtime.ActionInsert, "comment_added", resp,
	))
	c.Notifier.Notify(gathering.HostID, callerID, entity.NotifyCommentAdded, gatheringID,
		"New comment", fmt.Sprintf("Someone commented on \"%s\"", gathering.Title))
	return resp, nil
}

// DeleteComment removes the caller's own comment. Comments by others are
// reported as missing.
func (c *DefaultCommunityService) DeleteComment(commentID int64, callerID string) apierror.ErrorResponse {
	if callerID == "" {
		return apierror.UnauthenticatedError
	}

	comment, err := c.CommentRepo.FindByID(commentID)
	if err != nil {
		return storeFailure(err, "failed to fetch comment %d", commentID)
	}
	if comment == nil {
		return apierror.NotFoundError
	}

	rows, err := c.CommentRepo.DeleteOwn(commentID, callerID)
	if err != nil {
		return storeFailure(err, "failed to delete comment %d", commentID)
	}
	if rows == 0 {
		return apierror.NotFoundError
	}

	publish(c.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableComments, "gathering_id", comment.GatheringID),
		realtime.TableComments, realtime.ActionDelete, "comment_deleted", deletedRecord{ID: commentID},
	))
	return nil
}

func (c *DefaultCommunityService) ToggleLike(gatheringID int64, callerID string) (*LikeResponse, apierror.ErrorResponse) {
	if callerID == "" {
		return nil, apierror.UnauthenticatedError
	}

	gathering, err := c.GatheringRepo.FindByID(gatheringID)
	if err != nil {
		return nil, storeFailure(err, "failed to fetch gathering %d", gatheringID)
	}
	if gathering == nil {
		return nil, apierror.NotFoundError
	}

	liked, err := c.LikeRepo.Toggle(gatheringID, callerID, utils.NowUTC())
	if err != nil {
		return nil, storeFailure(err, "failed to toggle like of user %s on gathering %d", callerID, gatheringID)
	}

	resp := &LikeResponse{GatheringID: gatheringID, Liked: liked}
	action := realtime.ActionInsert
	if !liked {
		action = realtime.ActionDelete
	}
	publish(c.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableLikes, "gathering_id", gatheringID),
		realtime.TableLikes, action, "like_toggled", resp,
	))
	return resp, nil
}
