package utils

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const tokenDataKey = "token_data"

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// TokenData is the caller identity extracted from a verified bearer token.
type TokenData struct {
	Sub   string
	Email string
	Name  string
}

type tokenResult struct {
	data *TokenData
	err  error
}

// NewHMACKeyfunc verifies HS256 tokens signed with secret.
func NewHMACKeyfunc(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}
}

// IdentityMiddleware verifies the bearer token, when there is one, and stores
// the outcome for ParseTokenDataCtx. Requests without a token pass through;
// deciding whether an operation needs a caller is up to the service.
func IdentityMiddleware(keyfunc jwt.Keyfunc, issuer string) echo.MiddlewareFunc {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "HS256"}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				c.Set(tokenDataKey, &tokenResult{err: ErrNoToken})
				return next(c)
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(raw, claims, keyfunc)
			if err != nil || !token.Valid {
				c.Set(tokenDataKey, &tokenResult{err: ErrInvalidToken})
				return next(c)
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				c.Set(tokenDataKey, &tokenResult{err: ErrInvalidToken})
				return next(c)
			}

			data := &TokenData{Sub: sub}
			data.Email, _ = claims["email"].(string)
			data.Name, _ = claims["name"].(string)
			c.Set(tokenDataKey, &tokenResult{data: data})
			return next(c)
		}
	}
}

// ParseTokenDataCtx returns the identity verified by IdentityMiddleware.
func ParseTokenDataCtx(c echo.Context) (*TokenData, error) {
	res, ok := c.Get(tokenDataKey).(*tokenResult)
	if !ok {
		return nil, ErrNoToken
	}
	return res.data, res.err
}

// bearerToken returns the raw token from the Authorization header or, for
// WebSocket upgrades where browsers cannot set headers, the access_token
// query parameter.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return c.QueryParam("access_token")
}

// RawBearerToken exposes the unverified token string, for calls that forward
// it to the identity provider (sign-out, profile fetch).
func RawBearerToken(c echo.Context) string {
	return bearerToken(c)
}
