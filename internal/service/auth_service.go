package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"farmverify/internal/auth"
	"farmverify/internal/cache"
	apperrors "farmverify/internal/errors"
	"farmverify/internal/geo"
	"farmverify/internal/model"
	"farmverify/internal/repository"
)

// RegisterInput is a farmer self-registration.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	FarmSize  decimal.Decimal
	CropType  string
	Latitude  *float64
	Longitude *float64
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	cache      *cache.Client
	bcryptCost int
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, cacheClient *cache.Client, bcryptCost int) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		cache:      cacheClient,
		bcryptCost: bcryptCost,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a FARMER user and its farmer profile atomically. The new
// farmer starts PENDING with no audit fields.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)
	in.FarmSize = model.NormalizeFarmSize(in.FarmSize)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleFarmer,
		Farmer: &model.Farmer{
			Name:                strings.TrimSpace(in.Name),
			FarmSize:            in.FarmSize,
			CropType:            strings.TrimSpace(in.CropType),
			CertificationStatus: model.StatusPending,
			Latitude:            in.Latitude,
			Longitude:           in.Longitude,
		},
	}
	if err := user.Farmer.CheckInvariants(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration took the email after the lookup above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	_ = s.cache.Delete(ctx, statsCacheKey)

	return s.issue(user)
}

// Login authenticates a user. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.Issue(auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token.Value}, nil
}

func validateRegistration(in RegisterInput) error {
	switch {
	case len(strings.TrimSpace(in.Name)) < 2:
		return apperrors.Validation("name must be at least 2 characters")
	case len(in.Password) < 6:
		return apperrors.Validation("password must be at least 6 characters")
	case !in.FarmSize.IsPositive():
		return apperrors.Validation("farm size must be positive")
	case in.FarmSize.GreaterThanOrEqual(model.MaxFarmSize):
		return apperrors.Validation("farm size must be less than 100000000")
	case strings.TrimSpace(in.CropType) == "":
		return apperrors.Validation("crop type is required")
	case (in.Latitude == nil) != (in.Longitude == nil):
		return apperrors.Validation("latitude and longitude must be provided together")
	case in.Latitude != nil && !geo.ValidateBounds(*in.Latitude, *in.Longitude):
		return apperrors.ErrInvalidCoordinates
	}
	return nil
}
