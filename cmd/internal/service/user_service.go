package service

import (
	"context"
	"errors"
	"wemakedo/cmd/internal/domain/entity"
	cognitoclient "wemakedo/cmd/internal/integration/aws/cognito"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/oauth2"
)

type UserRepository interface {
	FindByID(id string) (*entity.User, error)
	Upsert(user *entity.User) error
	CreateIfMissing(user *entity.User) (bool, error)
	Save(user *entity.User) error
}

type AuthCallbackRequest struct {
	Code string `json:"code" query:"code" validate:"required,nospaces,max=2048"`
}

type UpdateProfileRequest struct {
	Name      string  `json:"name" validate:"required,notblank,max=80"`
	Company   *string `json:"company" validate:"omitempty,max=80"`
	JobTitle  *string `json:"job_title" validate:"omitempty,max=80"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

type SessionResponse struct {
	AccessToken  string           `json:"access_token"`
	IDToken      string           `json:"id_token"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	ExpiresAt    string           `json:"expires_at"`
	User         *ProfileResponse `json:"user"`
}

type DefaultUserService struct {
	UserRepo      UserRepository
	GatheringRepo GatheringRepository
	Validate      *validator.Validate
	Cognito       cognitoclient.CognitoInterface
}

func NewUserService(userRepo UserRepository, gatheringRepo GatheringRepository, validate *validator.Validate, cogClient cognitoclient.CognitoInterface) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, GatheringRepo: gatheringRepo, Validate: validate, Cognito: cogClient}
}

func (u *DefaultUserService) LoginURL(state, provider string) (string, apierror.ErrorResponse) {
	if u.Cognito == nil {
		return "", apierror.IDPFailedError
	}
	return u.Cognito.LoginURL(state, provider), nil
}

// ExchangeCode completes the hosted-UI sign-in: the authorization code is
// traded for tokens, and the provider profile is copied into users so the
// rest of the app can reference the account.
func (u *DefaultUserService) ExchangeCode(ctx context.Context, req *AuthCallbackRequest) (*SessionResponse, apierror.ErrorResponse) {
	if u.Cognito == nil {
		return nil, apierror.IDPFailedError
	}

	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	session, err := u.Cognito.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, handleCodeExchange(err)
	}

	profile, err := u.Cognito.GetUser(ctx, session.AccessToken)
	if err != nil {
		return nil, handleIDPError("get user", err)
	}

	now := utils.NowUTC()
	user := &entity.User{
		ID:          profile.Sub,
		Email:       optional(profile.Email),
		Name:        optional(profile.Name),
		AvatarURL:   optional(profile.Picture),
		MannerScore: entity.DefaultMannerScore,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.UserRepo.Upsert(user); err != nil {
		log.Errorf("failed to sync user %s: %v", profile.Sub, err)
		return nil, apierror.InternalServerError
	}

	stored, err := u.UserRepo.FindByID(profile.Sub)
	if err != nil || stored == nil {
		log.Errorf("failed to reload user %s after sync: %v", profile.Sub, err)
		return nil, apierror.InternalServerError
	}

	return &SessionResponse{
		AccessToken:  session.AccessToken,
		IDToken:      session.IDToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    utils.FormatEpoch(session.ExpiresAt.UnixMilli()),
		User:         toProfileResponse(stored),
	}, nil
}

func (u *DefaultUserService) SignOut(ctx context.Context, accessToken string) apierror.ErrorResponse {
	if accessToken == "" {
		return apierror.UnauthenticatedError
	}
	if u.Cognito == nil {
		// Development tokens are not revocable; signing out is client side.
		return nil
	}

	if err := u.Cognito.SignOut(ctx, accessToken); err != nil {
		return handleIDPError("global sign out", err)
	}
	return nil
}

// GetUser returns a public profile. "@me" resolves to the caller.
func (u *DefaultUserService) GetUser(id, callerID string) (*ProfileResponse, apierror.ErrorResponse) {
	if id == "@me" {
		if callerID == "" {
			return nil, apierror.UnauthenticatedError
		}
		id = callerID
	}

	user, err := u.UserRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to find user %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.NotFoundError
	}

	resp := toProfileResponse(user)
	if user.ID != callerID {
		resp.Email = nil
	}
	return resp, nil
}

func (u *DefaultUserService) GetMyPage(callerID string) (*MyPageResponse, apierror.ErrorResponse) {
	profile, apierr := u.GetUser("@me", callerID)
	if apierr != nil {
		return nil, apierr
	}

	hosted, err := u.GatheringRepo.FindByHost(callerID)
	if err != nil {
		return nil, storeFailure(err, "failed to list gatherings hosted by %s", callerID)
	}
	joined, err := u.GatheringRepo.FindJoinedBy(callerID)
	if err != nil {
		return nil, storeFailure(err, "failed to list gatherings joined by %s", callerID)
	}
	liked, err := u.GatheringRepo.FindLikedBy(callerID)
	if err != nil {
		return nil, storeFailure(err, "failed to list gatherings liked by %s", callerID)
	}

	return &MyPageResponse{
		Profile: profile,
		Hosted:  toGatheringList(hosted),
		Joined:  toGatheringList(joined),
		Liked:   toGatheringList(liked),
	}, nil
}

// EnsureProfile gives a verified identity its users row the first time it is
// seen, filled from the token claims. Existing profiles are left untouched.
func (u *DefaultUserService) EnsureProfile(identity *utils.TokenData) apierror.ErrorResponse {
	if identity == nil || identity.Sub == "" {
		return apierror.UnauthenticatedError
	}

	now := utils.NowUTC()
	created, err := u.UserRepo.CreateIfMissing(&entity.User{
		ID:          identity.Sub,
		Email:       optional(identity.Email),
		Name:        optional(identity.Name),
		MannerScore: entity.DefaultMannerScore,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		log.Errorf("failed to provision profile of user %s: %v", identity.Sub, err)
		return apierror.InternalServerError
	}
	if created {
		log.Infof("provisioned profile for user %s", identity.Sub)
	}
	return nil
}

func (u *DefaultUserService) UpdateProfile(req *UpdateProfileRequest, callerID string) (*ProfileResponse, apierror.ErrorResponse) {
	if callerID == "" {
		return nil, apierror.UnauthenticatedError
	}

	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByID(callerID)
	if err != nil {
		log.Errorf("failed to find user %s: %v", callerID, err)
		return nil, apierror.InternalServerError
	}

	now := utils.NowUTC()
	isNew := user == nil
	if isNew {
		user = &entity.User{ID: callerID, MannerScore: entity.DefaultMannerScore, CreatedAt: now}
	}

	user.Name = &req.Name
	user.Company = blankToNil(req.Company)
	user.JobTitle = blankToNil(req.JobTitle)
	user.AvatarURL = blankToNil(req.AvatarURL)
	user.UpdatedAt = now

	if isNew {
		_, err = u.UserRepo.CreateIfMissing(user)
	} else {
		err = u.UserRepo.Save(user)
	}
	if err != nil {
		log.Errorf("failed to update profile of user %s: %v", callerID, err)
		return nil, apierror.InternalServerError
	}
	return toProfileResponse(user), nil
}

func handleCodeExchange(err error) apierror.ErrorResponse {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		switch retrieveErr.ErrorCode {
		case "invalid_grant":
			return apierror.IDPInvalidCodeError
		default:
			log.Errorf("code exchange failed: %s - %s", retrieveErr.ErrorCode, retrieveErr.ErrorDescription)
			return apierror.IDPFailedError
		}
	}

	log.Errorf("failed to exchange authorization code: %v", err)
	return apierror.IDPFailedError
}

func handleIDPError(operation string, err error) apierror.ErrorResponse {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotAuthorizedException":
			return apierror.InvalidAuthTokenError
		case "UserNotFoundException":
			return apierror.NotFoundError
		case "TooManyRequestsException":
			return apierror.TooManyRequestsError
		default:
			log.Errorf("%s failed: %s - %s", operation, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return apierror.IDPFailedError
		}
	}

	log.Errorf("failed to %s: %v", operation, err)
	return apierror.IDPFailedError
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
