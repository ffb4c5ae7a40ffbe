package service

import (
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/metrics"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
)

type ReviewRepository interface {
	Create(review *entity.Review) error
	FindByReviewer(reviewerID string, gatheringID int64) ([]*entity.Review, error)
}

type ReviewRequest struct {
	RevieweeID string `json:"reviewee_id" validate:"required,nospaces,max=64"`
	Score      int    `json:"score" validate:"required,oneof=-1 1"`
}

type DefaultReviewService struct {
	ReviewRepo        ReviewRepository
	GatheringRepo     GatheringRepository
	ParticipationRepo ParticipationRepository
	Notifier          *Notifier
	Feed              realtime.Publisher
	Validate          *validator.Validate
}

func NewReviewService(
	reviewRepo ReviewRepository,
	gatheringRepo GatheringRepository,
	participationRepo ParticipationRepository,
	notifier *Notifier,
	feed realtime.Publisher,
	validate *validator.Validate,
) *DefaultReviewService {
	return &DefaultReviewService{
		ReviewRepo:        reviewRepo,
		GatheringRepo:     gatheringRepo,
		ParticipationRepo: participationRepo,
		Notifier:          notifier,
		Feed:              feed,
		Validate:          validate,
	}
}

// SubmitReview records a +1/-1 manner vote from one participant to another.
// The reviewee's manner score moves by half a point per vote, applied by the
// store together with the insert.
func (r *DefaultReviewService) SubmitReview(gatheringID int64, req *ReviewRequest, callerID string) apierror.ErrorResponse {
	if callerID == "" {
		return apierror.UnauthenticatedError
	}

	utils.Sanitize(req)
	if req.RevieweeID == callerID {
		metrics.Rejection("review", "self")
		return apierror.SelfReviewError
	}
	if err := r.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	gathering, err := r.GatheringRepo.FindByID(gatheringID)
	if err != nil {
		return storeFailure(err, "failed to fetch gathering %d", gatheringID)
	}
	if gathering == nil {
		return apierror.NotFoundError
	}

	for _, userID := range []string{callerID, req.RevieweeID} {
		joined, err := r.ParticipationRepo.Exists(gatheringID, userID)
		if err != nil {
			return storeFailure(err, "failed to check participation of user %s in gathering %d", userID, gatheringID)
		}
		if !joined {
			metrics.Rejection("review", "not_participant")
			return apierror.NotParticipantError
		}
	}

	review := &entity.Review{
		ReviewerID:  callerID,
		RevieweeID:  req.RevieweeID,
		GatheringID: gatheringID,
		Score:       req.Score,
		CreatedAt:   utils.NowUTC(),
	}
	if err := r.ReviewRepo.Create(review); err != nil {
		if isDuplicate(err) {
			metrics.Rejection("review", "already_reviewed")
			return apierror.AlreadyReviewedError
		}
		return storeFailure(err, "failed to store review by %s of %s in gathering %d", callerID, req.RevieweeID, gatheringID)
	}
	metrics.Transition("reviewed")

	publish(r.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableReviews, "reviewee_id", req.RevieweeID),
		realtime.TableReviews, realtime.ActionInsert, "review_received",
		&ReviewResponse{RevieweeID: req.RevieweeID, Score: req.Score},
	))
	// Votes are anonymous: the actor is recorded, the message does not name them.
	r.Notifier.Notify(req.RevieweeID, callerID, entity.NotifyReviewReceived, gatheringID,
		"New manner review", "Someone reviewed you after \""+gathering.Title+"\"")
	return nil
}

// ListMyReviews returns the votes the caller cast in a gathering. Anonymous
// callers get an empty list.
func (r *DefaultReviewService) ListMyReviews(gatheringID int64, callerID string) ([]*ReviewResponse, apierror.ErrorResponse) {
	if callerID == "" {
		return []*ReviewResponse{}, nil
	}

	reviews, err := r.ReviewRepo.FindByReviewer(callerID, gatheringID)
	if err != nil {
		return nil, storeFailure(err, "failed to list reviews by %s in gathering %d", callerID, gatheringID)
	}

	resp := make([]*ReviewResponse, len(reviews))
	for i, review := range reviews {
		resp[i] = &ReviewResponse{RevieweeID: review.RevieweeID, Score: review.Score}
	}
	return resp, nil
}
