package routes

import (
	"net/http"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type ReviewService interface {
	SubmitReview(gatheringID int64, req *service.ReviewRequest, callerID string) apierror.ErrorResponse
	ListMyReviews(gatheringID int64, callerID string) ([]*service.ReviewResponse, apierror.ErrorResponse)
}

type DefaultReviewRoute struct {
	ReviewService ReviewService
}

func NewReviewDefault(reviewService ReviewService) *DefaultReviewRoute {
	return &DefaultReviewRoute{ReviewService: reviewService}
}

func (r *DefaultReviewRoute) SubmitReview(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	if apierr := r.ReviewService.SubmitReview(id, &req, caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusCreated)
}

func (r *DefaultReviewRoute) ListMyReviews(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	reviews, apierr := r.ReviewService.ListMyReviews(id, caller)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"reviews": reviews}
	return c.JSON(http.StatusOK, &resp)
}
