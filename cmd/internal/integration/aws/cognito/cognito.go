package cognitoclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var ErrMissingSubject = errors.New("cognito user has no sub attribute")

// CognitoInterface is the slice of the identity provider the services use.
type CognitoInterface interface {
	LoginURL(state, provider string) string
	ExchangeCode(ctx context.Context, code string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*Profile, error)
	SignOut(ctx context.Context, accessToken string) error
}

type Session struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Profile holds the standard attributes of a user pool user.
type Profile struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

type Settings struct {
	Region       string
	ClientID     string
	ClientSecret string
	// Domain is the hosted UI domain, with or without scheme.
	Domain      string
	RedirectURL string
}

type Client struct {
	idp   *cognitoidentityprovider.Client
	oauth *oauth2.Config
}

func InitCognitoClient(ctx context.Context, settings Settings) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(settings.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	domain := settings.Domain
	if !strings.HasPrefix(domain, "https://") && !strings.HasPrefix(domain, "http://") {
		domain = "https://" + domain
	}
	domain = strings.TrimSuffix(domain, "/")

	return &Client{
		idp: cognitoidentityprovider.NewFromConfig(cfg),
		oauth: &oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			RedirectURL:  settings.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   domain + "/oauth2/authorize",
				TokenURL:  domain + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
	}, nil
}

// LoginURL points at the hosted UI. A non-empty provider skips the provider
// picker and goes straight to that federated identity provider.
func (c *Client) LoginURL(state, provider string) string {
	if provider == "" {
		return c.oauth.AuthCodeURL(state)
	}
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("identity_provider", provider))
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	idToken, _ := token.Extra("id_token").(string)
	return &Session{
		AccessToken:  token.AccessToken,
		IDToken:      idToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*Profile, error) {
	out, err := c.idp.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, err
	}

	profile := &Profile{}
	for _, attr := range out.UserAttributes {
		value := aws.ToString(attr.Value)
		switch aws.ToString(attr.Name) {
		case "sub":
			profile.Sub = value
		case "email":
			profile.Email = value
		case "name":
			profile.Name = value
		case "picture":
			profile.Picture = value
		}
	}

	if profile.Sub == "" {
		return nil, ErrMissingSubject
	}
	return profile, nil
}

// SignOut revokes every token issued to the user.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.idp.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return err
}

// NewJWKSKeyfunc verifies RS256 tokens against the user pool signing keys.
// Keys are fetched in the background and refreshed until ctx is done.
func NewJWKSKeyfunc(ctx context.Context, issuer string) (jwt.Keyfunc, error) {
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{issuer + "/.well-known/jwks.json"})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	return jwks.Keyfunc, nil
}
