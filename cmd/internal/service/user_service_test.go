package service

import (
	"context"
	"testing"
	"time"
	"wemakedo/cmd/internal/config"
	"wemakedo/cmd/internal/domain/entity"
	cognitoclient "wemakedo/cmd/internal/integration/aws/cognito"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeCognito struct {
	profile     *cognitoclient.Profile
	exchangeErr error
	getUserErr  error
	signedOut   []string
}

func (f *fakeCognito) LoginURL(state, provider string) string {
	return "https://auth.example.com/oauth2/authorize?state=" + state + "&identity_provider=" + provider
}

func (f *fakeCognito) ExchangeCode(_ context.Context, code string) (*cognitoclient.Session, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &cognitoclient.Session{
		AccessToken: "access-" + code,
		IDToken:     "id-" + code,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeCognito) GetUser(context.Context, string) (*cognitoclient.Profile, error) {
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	return f.profile, nil
}

func (f *fakeCognito) SignOut(_ context.Context, accessToken string) error {
	f.signedOut = append(f.signedOut, accessToken)
	return nil
}

func TestExchangeCodeCreatesThenKeepsProfile(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	idp := &fakeCognito{profile: &cognitoclient.Profile{Sub: "dave-sub", Email: "dave@example.com", Name: "Dave"}}
	f.profiles.Cognito = idp

	session, apierr := f.profiles.ExchangeCode(context.Background(), &AuthCallbackRequest{Code: "abc"})
	require.Nil(t, apierr)
	assert.Equal(t, "access-abc", session.AccessToken)
	assert.Equal(t, "dave-sub", session.User.ID)
	assert.Equal(t, entity.DefaultMannerScore, session.User.MannerScore)

	_, apierr = f.profiles.UpdateProfile(&UpdateProfileRequest{Name: "David"}, "dave-sub")
	require.Nil(t, apierr)

	// A later sign-in refreshes the email but keeps the edited name.
	idp.profile = &cognitoclient.Profile{Sub: "dave-sub", Email: "david@example.com", Name: "Dave"}
	session, apierr = f.profiles.ExchangeCode(context.Background(), &AuthCallbackRequest{Code: "def"})
	require.Nil(t, apierr)
	assert.Equal(t, "David", *session.User.Name)
	assert.Equal(t, "david@example.com", *session.User.Email)
}

func TestExchangeCodeErrors(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)

	_, apierr := f.profiles.ExchangeCode(context.Background(), &AuthCallbackRequest{Code: "abc"})
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindIdentityProvider, apierr.Kind(), "no identity provider configured")

	f.profiles.Cognito = &fakeCognito{exchangeErr: &oauth2.RetrieveError{ErrorCode: "invalid_grant"}}
	_, apierr = f.profiles.ExchangeCode(context.Background(), &AuthCallbackRequest{Code: "abc"})
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.IDPInvalidCodeError, apierr)

	f.profiles.Cognito = &fakeCognito{getUserErr: &smithy.GenericAPIError{Code: "NotAuthorizedException", Message: "expired"}}
	_, apierr = f.profiles.ExchangeCode(context.Background(), &AuthCallbackRequest{Code: "abc"})
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindInvalidAuthToken, apierr.Kind())

	_, apierr = f.profiles.ExchangeCode(context.Background(), &AuthCallbackRequest{Code: ""})
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindValidationFailed, apierr.Kind())
}

func TestSignOut(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)

	apierr := f.profiles.SignOut(context.Background(), "")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindUnauthenticated, apierr.Kind())

	require.Nil(t, f.profiles.SignOut(context.Background(), "dev-token"))

	idp := &fakeCognito{}
	f.profiles.Cognito = idp
	require.Nil(t, f.profiles.SignOut(context.Background(), "access-abc"))
	assert.Equal(t, []string{"access-abc"}, idp.signedOut)
}

func TestGetUserHidesEmailFromOthers(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	email := "alice@example.com"
	require.NoError(t, f.db.Model(&entity.User{}).Where("id = ?", aliceID).Update("email", email).Error)

	self, apierr := f.profiles.GetUser("@me", aliceID)
	require.Nil(t, apierr)
	require.NotNil(t, self.Email)
	assert.Equal(t, email, *self.Email)

	other, apierr := f.profiles.GetUser(aliceID, bobID)
	require.Nil(t, apierr)
	assert.Nil(t, other.Email)
	assert.Equal(t, entity.DefaultMannerScore, other.MannerScore)

	_, apierr = f.profiles.GetUser("nobody", bobID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotFound, apierr.Kind())

	_, apierr = f.profiles.GetUser("@me", "")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindUnauthenticated, apierr.Kind())
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)

	company := "  Acme  "
	blank := ""
	profile, apierr := f.profiles.UpdateProfile(&UpdateProfileRequest{Name: "Alice K", Company: &company, JobTitle: &blank}, aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, "Alice K", *profile.Name)
	assert.Equal(t, "Acme", *profile.Company)
	assert.Nil(t, profile.JobTitle)

	_, apierr = f.profiles.UpdateProfile(&UpdateProfileRequest{Name: " "}, aliceID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindValidationFailed, apierr.Kind())

	created, apierr := f.profiles.UpdateProfile(&UpdateProfileRequest{Name: "Newcomer"}, "newcomer-sub")
	require.Nil(t, apierr)
	assert.Equal(t, "Newcomer", *created.Name)
	assert.Equal(t, entity.DefaultMannerScore, created.MannerScore)

	stored, err := f.users.FindByID("newcomer-sub")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Newcomer", *stored.Name)
}

func TestEnsureProfileLetsFreshIdentityWrite(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	const fresh = "fresh-sub"

	_, apierr := f.gatherings.CreateGathering(&CreateGatheringRequest{
		Title:    "Sunrise hike",
		Location: "Inwangsan trailhead",
		MeetAt:   time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		Capacity: 5,
		Category: "workout",
	}, fresh)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindProfileMissing, apierr.Kind())

	require.Nil(t, f.profiles.EnsureProfile(&utils.TokenData{Sub: fresh, Name: "Fresh", Email: "fresh@example.com"}))

	resp, apierr := f.gatherings.CreateGathering(&CreateGatheringRequest{
		Title:    "Sunrise hike",
		Location: "Inwangsan trailhead",
		MeetAt:   time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		Capacity: 5,
		Category: "workout",
	}, fresh)
	require.Nil(t, apierr)
	assert.Empty(t, resp.Warnings)

	_, apierr = f.joins.JoinOrApply(f.createGathering(t, 4), fresh)
	require.Nil(t, apierr)

	// A second call keeps what the user already edited.
	_, apierr = f.profiles.UpdateProfile(&UpdateProfileRequest{Name: "Edited"}, fresh)
	require.Nil(t, apierr)
	require.Nil(t, f.profiles.EnsureProfile(&utils.TokenData{Sub: fresh, Name: "Fresh"}))

	profile, apierr := f.profiles.GetUser("@me", fresh)
	require.Nil(t, apierr)
	assert.Equal(t, "Edited", *profile.Name)
	assert.Equal(t, "fresh@example.com", *profile.Email)

	assert.Equal(t, apierror.UnauthenticatedError, f.profiles.EnsureProfile(nil))
}

func TestGetMyPage(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	hosted := f.createGathering(t, 4)
	_, apierr := f.joins.JoinOrApply(hosted, aliceID)
	require.Nil(t, apierr)
	_, apierr = f.community.ToggleLike(hosted, aliceID)
	require.Nil(t, apierr)

	page, apierr := f.profiles.GetMyPage(aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, aliceID, page.Profile.ID)
	assert.Empty(t, page.Hosted)
	require.Len(t, page.Joined, 1)
	assert.Equal(t, hosted, page.Joined[0].ID)
	require.Len(t, page.Liked, 1)

	page, apierr = f.profiles.GetMyPage(hostID)
	require.Nil(t, apierr)
	require.Len(t, page.Hosted, 1)
	assert.EqualValues(t, 2, page.Hosted[0].ParticipantCount)
	assert.EqualValues(t, 1, page.Hosted[0].LikeCount)
	assert.Len(t, page.Joined, 1, "the host participates in their own gathering")

	_, apierr = f.profiles.GetMyPage("")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindUnauthenticated, apierr.Kind())
}
