package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"farmverify/internal/events"
	"farmverify/internal/model"
	"farmverify/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockFarmerRepository is a mock implementation of FarmerRepository.
type MockFarmerRepository struct {
	mock.Mock
}

func (m *MockFarmerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Farmer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Farmer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerRepository) List(ctx context.Context, filter repository.FarmerFilter) ([]model.Farmer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Farmer), args.Error(1)
}

func (m *MockFarmerRepository) CountByStatus(ctx context.Context) (map[model.CertificationStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.CertificationStatus]int64), args.Error(1)
}

func (m *MockFarmerRepository) UpdateCertification(ctx context.Context, farmer *model.Farmer) error {
	args := m.Called(ctx, farmer)
	return args.Error(0)
}

func (m *MockFarmerRepository) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, address string) error {
	args := m.Called(ctx, id, lat, lon, address)
	return args.Error(0)
}

// MockResolver is a mock implementation of geo.Resolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	args := m.Called(ctx, lat, lon)
	return args.String(0)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCertificationDecided(ctx context.Context, event events.CertificationDecided) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
