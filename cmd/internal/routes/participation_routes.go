package routes

import (
	"net/http"
	"strings"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type ParticipationService interface {
	JoinOrApply(gatheringID int64, callerID string) (*service.JoinResponse, apierror.ErrorResponse)
	CancelApplication(gatheringID int64, callerID string) apierror.ErrorResponse
	ApproveApplication(gatheringID int64, applicantID, callerID string) apierror.ErrorResponse
	RejectApplication(gatheringID int64, applicantID, callerID string) apierror.ErrorResponse
	ListApplications(gatheringID int64, callerID string) ([]*service.ApplicationWithUser, apierror.ErrorResponse)
}

type DefaultParticipationRoute struct {
	ParticipationService ParticipationService
}

func NewParticipationDefault(participationService ParticipationService) *DefaultParticipationRoute {
	return &DefaultParticipationRoute{ParticipationService: participationService}
}

func (p *DefaultParticipationRoute) Join(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp, apierr := p.ParticipationService.JoinOrApply(id, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (p *DefaultParticipationRoute) CancelApplication(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	if apierr := p.ParticipationService.CancelApplication(id, caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *DefaultParticipationRoute) ListApplications(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	applications, apierr := p.ParticipationService.ListApplications(id, caller)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"applications": applications}
	return c.JSON(http.StatusOK, &resp)
}

func (p *DefaultParticipationRoute) ApproveApplication(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	applicant := strings.TrimSpace(c.Param("userId"))
	if applicant == "" {
		return fail(c, apierror.NewMissingParamError("userId"))
	}

	if apierr := p.ParticipationService.ApproveApplication(id, applicant, caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (p *DefaultParticipationRoute) RejectApplication(c echo.Context) error {
	id, caller, apierr := gatheringAndCaller(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	applicant := strings.TrimSpace(c.Param("userId"))
	if applicant == "" {
		return fail(c, apierror.NewMissingParamError("userId"))
	}

	if apierr := p.ParticipationService.RejectApplication(id, applicant, caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func gatheringAndCaller(c echo.Context) (int64, string, apierror.ErrorResponse) {
	id, apierr := int64Param(c, "id")
	if apierr != nil {
		return 0, "", apierr
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return 0, "", apierr
	}
	return id, caller, nil
}
