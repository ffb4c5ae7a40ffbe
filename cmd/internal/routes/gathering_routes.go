package routes

import (
	"net/http"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type GatheringService interface {
	CreateGathering(req *service.CreateGatheringRequest, callerID string) (*service.CreateGatheringResponse, apierror.ErrorResponse)
	UpdateGathering(gatheringID int64, req *service.UpdateGatheringRequest, callerID string) (*service.GatheringResponse, apierror.ErrorResponse)
	DeleteGathering(gatheringID int64, callerID string) apierror.ErrorResponse
	GetGathering(gatheringID int64, callerID string) (*service.GatheringDetail, apierror.ErrorResponse)
	ListGatherings(req *service.ListGatheringsRequest) ([]*service.GatheringWithCounts, apierror.ErrorResponse)
	ListLightning(lat, lon *float64) ([]*service.GatheringWithCounts, apierror.ErrorResponse)
	ListLunch() ([]*service.GatheringWithCounts, apierror.ErrorResponse)
	RandomIceBreaker() string
}

type DefaultGatheringRoute struct {
	GatheringService GatheringService
}

func NewGatheringDefault(gatheringService GatheringService) *DefaultGatheringRoute {
	return &DefaultGatheringRoute{GatheringService: gatheringService}
}

func (g *DefaultGatheringRoute) ListGatherings(c echo.Context) error {
	var req service.ListGatheringsRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	gatherings, apierr := g.GatheringService.ListGatherings(&req)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"gatherings": gatherings}
	return c.JSON(http.StatusOK, &resp)
}

func (g *DefaultGatheringRoute) ListLightning(c echo.Context) error {
	lat, apierr := floatQuery(c, "lat")
	if apierr != nil {
		return fail(c, apierr)
	}
	lon, apierr := floatQuery(c, "lon")
	if apierr != nil {
		return fail(c, apierr)
	}

	gatherings, apierr := g.GatheringService.ListLightning(lat, lon)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"gatherings": gatherings}
	return c.JSON(http.StatusOK, &resp)
}

func (g *DefaultGatheringRoute) ListLunch(c echo.Context) error {
	gatherings, apierr := g.GatheringService.ListLunch()
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"gatherings": gatherings}
	return c.JSON(http.StatusOK, &resp)
}

func (g *DefaultGatheringRoute) GetIceBreaker(c echo.Context) error {
	resp := echo.Map{"question": g.GatheringService.RandomIceBreaker()}
	return c.JSON(http.StatusOK, &resp)
}

func (g *DefaultGatheringRoute) GetGathering(c echo.Context) error {
	id, apierr := int64Param(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	detail, apierr := g.GatheringService.GetGathering(id, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, detail)
}

func (g *DefaultGatheringRoute) CreateGathering(c echo.Context) error {
	var req service.CreateGatheringRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	gathering, apierr := g.GatheringService.CreateGathering(&req, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusCreated, gathering)
}

func (g *DefaultGatheringRoute) UpdateGathering(c echo.Context) error {
	id, apierr := int64Param(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.UpdateGatheringRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	gathering, apierr := g.GatheringService.UpdateGathering(id, &req, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, gathering)
}

func (g *DefaultGatheringRoute) DeleteGathering(c echo.Context) error {
	id, apierr := int64Param(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	if apierr := g.GatheringService.DeleteGathering(id, caller); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}
