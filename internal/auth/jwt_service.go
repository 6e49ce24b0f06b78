package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "farmverify/internal/errors"
	"farmverify/internal/model"
)

// SessionTokenExpiry is the fixed lifetime of a session token.
const SessionTokenExpiry = 7 * 24 * time.Hour

// Identity is the verified caller attached to a request. Every authorization
// decision in that request is taken against this value.
type Identity struct {
	UserID uuid.UUID  `json:"id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// IsAdmin reports whether the caller has the ADMIN role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == model.RoleAdmin
}

// Claims represents JWT claims.
type Claims struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Token is a signed session token and its expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// JWTService handles session token issuance and validation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token for identity that expires SessionTokenExpiry from now.
func (s *JWTService) Issue(identity Identity) (Token, error) {
	now := s.now()
	expiresAt := now.Add(SessionTokenExpiry)
	claims := &Claims{
		ID:    identity.UserID.String(),
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify validates a token and returns the identity it asserts. Any failure
// (bad signature, wrong algorithm, malformed claims, expiry) yields
// ErrInvalidToken.
func (s *JWTService) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.ID)
	if err != nil || claims.Email == "" || !claims.Role.Valid() {
		return nil, apperrors.ErrInvalidToken
	}

	return &Identity{
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
