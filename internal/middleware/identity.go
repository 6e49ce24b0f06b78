package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"farmverify/internal/auth"
	apperrors "farmverify/internal/errors"
)

const identityKey = "identity"

// Authenticate requires a valid bearer token. The verified identity is
// stored on the context for the rest of the request and is the only source
// of the caller's id and role.
func Authenticate(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return jwtService.Verify(raw)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var missing *echojwt.TokenExtractionError
			if errors.As(err, &missing) {
				return apperrors.ErrUnauthenticated
			}
			return apperrors.ErrInvalidToken
		},
	})
}

// Identity returns the caller verified by Authenticate, or nil.
func Identity(c echo.Context) *auth.Identity {
	identity, _ := c.Get(identityKey).(*auth.Identity)
	return identity
}

// SetIdentity attaches identity to the context.
func SetIdentity(c echo.Context, identity *auth.Identity) {
	c.Set(identityKey, identity)
}
