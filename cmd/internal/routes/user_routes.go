package routes

import (
	"context"
	"net/http"
	"strings"
	"time"
	"wemakedo/cmd/internal/service"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	stateCookie   = "oauth_state"
	stateLifetime = 10 * time.Minute
)

type UserService interface {
	LoginURL(state, provider string) (string, apierror.ErrorResponse)
	ExchangeCode(ctx context.Context, req *service.AuthCallbackRequest) (*service.SessionResponse, apierror.ErrorResponse)
	SignOut(ctx context.Context, accessToken string) apierror.ErrorResponse
	GetUser(id, callerID string) (*service.ProfileResponse, apierror.ErrorResponse)
	GetMyPage(callerID string) (*service.MyPageResponse, apierror.ErrorResponse)
	UpdateProfile(req *service.UpdateProfileRequest, callerID string) (*service.ProfileResponse, apierror.ErrorResponse)
	EnsureProfile(identity *utils.TokenData) apierror.ErrorResponse
}

type DefaultUserRoute struct {
	UserService UserService
}

func NewUserDefault(userService UserService) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService}
}

// Login redirects to the hosted sign-in page. The state is echoed back by
// the provider and checked against a short-lived cookie on callback.
func (u *DefaultUserRoute) Login(c echo.Context) error {
	state := uuid.NewString()
	url, apierr := u.UserService.LoginURL(state, c.QueryParam("provider"))
	if apierr != nil {
		return fail(c, apierr)
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		Expires:  time.Now().Add(stateLifetime),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, url)
}

// Callback only exchanges the code when the state matches the cookie set
// by Login in this browser.
func (u *DefaultUserRoute) Callback(c echo.Context) error {
	cookie, err := c.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return fail(c, apierror.NewInvalidParamTypeError("state", "the value issued at login"))
	}

	var req service.AuthCallbackRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	session, apierr := u.UserService.ExchangeCode(c.Request().Context(), &req)
	if apierr != nil {
		return fail(c, apierr)
	}

	c.SetCookie(&http.Cookie{Name: stateCookie, Path: "/api/auth", MaxAge: -1})
	return c.JSON(http.StatusOK, session)
}

func (u *DefaultUserRoute) SignOut(c echo.Context) error {
	if apierr := u.UserService.SignOut(c.Request().Context(), utils.RawBearerToken(c)); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (u *DefaultUserRoute) GetUser(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return fail(c, apierror.NewMissingParamError("id"))
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	user, apierr := u.UserService.GetUser(id, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, user)
}

func (u *DefaultUserRoute) GetMyPage(c echo.Context) error {
	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	page, apierr := u.UserService.GetMyPage(caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, page)
}

func (u *DefaultUserRoute) UpdateProfile(c echo.Context) error {
	var req service.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return malformed(c)
	}

	caller, apierr := callerID(c)
	if apierr != nil {
		return fail(c, apierr)
	}

	profile, apierr := u.UserService.UpdateProfile(&req, caller)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, profile)
}
