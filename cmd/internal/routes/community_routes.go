package routes

import (
	"net/http"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type CommunityService interface {
	AddComment(gatheringID int64, req *service.CommentRequest, callerID string) (*service.CommentResponse, apierror.ErrorResponse)
	DeleteComment(commentID int64, callerID string) apierror.ErrorResponse
	ToggleLike(gatheringID int64, callerID string) (*service.LikeResponse, apierror.ErrorResponse)
}

type DefaultCommunityRoute struct {
	CommunityService CommunityService
}

func NewCommunityDefault(communityService CommunityService) *DefaultCommunityRoute {
	return &DefaultCommunityRoute{CommunityService: communityService}
}

func (cr *DefaultCommunityRoute) AddComment(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.CommentRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	comment, apierr := cr.CommunityService.AddComment(id, &req, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (cr *DefaultCommunityRoute) DeleteComment(c echo.Context) error {
	id, apierr := int64Param(c, "commentId")
	if apierr != nil {
		return fail(c, apierr)
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	if apierr := cr.CommunityService.DeleteComment(id, caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (cr *DefaultCommunityRoute) ToggleLike(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	like, apierr := cr.CommunityService.ToggleLike(id, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, like)
}
