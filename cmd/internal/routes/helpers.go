package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

// callerID returns the verified caller, or "" for anonymous requests.
// A token that is present but fails verification is always an error, even
// on public endpoints.
func callerID(c echo.Context) (string, apierror.ErrorResponse) {
	data, err := utils.ParseTokenDataCtx(c)
	if errors.Is(err, utils.ErrNoToken) {
		return "", nil
	}
	if err != nil || data == nil {
		return "", apierror.InvalidAuthTokenError
	}
	return data.Sub, nil
}

func int64Param(c echo.Context, name string) (int64, apierror.ErrorResponse) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.NewInvalidParamTypeError(name, "int64")
	}
	return id, nil
}

func floatQuery(c echo.Context, name string) (*float64, apierror.ErrorResponse) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError(name, "float")
	}
	return &v, nil
}

func fail(c echo.Context, apierr apierror.ErrorResponse) error {
	return c.JSON(apierr.Code(), apierr)
}

func malformed(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
}
