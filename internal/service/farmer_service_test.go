package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	apperrors "farmverify/internal/errors"
	"farmverify/internal/events"
	"farmverify/internal/geo"
	"farmverify/internal/model"
	"farmverify/internal/repository"
)

var fixedNow = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func pendingFarmer() *model.Farmer {
	return &model.Farmer{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		Name:                "John Kamau",
		FarmSize:            decimal.NewFromFloat(5.5),
		CropType:            "Maize",
		CertificationStatus: model.StatusPending,
		CreatedAt:           fixedNow.Add(-24 * time.Hour),
		User:                &model.User{Email: "john.kamau@example.com"},
	}
}

func newTestFarmerService(t *testing.T, repo *MockFarmerRepository, resolver geo.Resolver, pub events.Publisher) *farmerService {
	svc := NewFarmerService(repo, resolver, pub, nil, zaptest.NewLogger(t)).(*farmerService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestFarmerService_SetStatus(t *testing.T) {
	adminID := uuid.New()

	tests := []struct {
		name    string
		prior   func(f *model.Farmer)
		status  model.CertificationStatus
		reason  string
		wantErr error
		check   func(t *testing.T, f *model.Farmer)
	}{
		{
			name:   "certify pending farmer",
			prior:  func(f *model.Farmer) {},
			status: model.StatusCertified,
			reason: "ignored",
			check: func(t *testing.T, f *model.Farmer) {
				assert.Equal(t, model.StatusCertified, f.CertificationStatus)
				require.NotNil(t, f.CertifiedAt)
				assert.Equal(t, fixedNow, *f.CertifiedAt)
				assert.Equal(t, adminID.String(), *f.CertifiedBy)
				assert.Nil(t, f.DeclinedAt)
				assert.Nil(t, f.DeclinedBy)
				assert.Nil(t, f.DeclineReason)
			},
		},
		{
			name:   "certify previously declined farmer clears decline triad",
			prior:  func(f *model.Farmer) { f.Decline(uuid.NewString(), "blurry photos", fixedNow.Add(-time.Hour)) },
			status: model.StatusCertified,
			check: func(t *testing.T, f *model.Farmer) {
				assert.Equal(t, model.StatusCertified, f.CertificationStatus)
				assert.NotNil(t, f.CertifiedAt)
				assert.Nil(t, f.DeclinedAt)
				assert.Nil(t, f.DeclinedBy)
				assert.Nil(t, f.DeclineReason)
			},
		},
		{
			name:   "decline certified farmer clears certification pair",
			prior:  func(f *model.Farmer) { f.Certify(uuid.NewString(), fixedNow.Add(-time.Hour)) },
			status: model.StatusDeclined,
			reason: "missing documents",
			check: func(t *testing.T, f *model.Farmer) {
				assert.Equal(t, model.StatusDeclined, f.CertificationStatus)
				require.NotNil(t, f.DeclinedAt)
				assert.Equal(t, fixedNow, *f.DeclinedAt)
				assert.Equal(t, adminID.String(), *f.DeclinedBy)
				require.NotNil(t, f.DeclineReason)
				assert.Equal(t, "missing documents", *f.DeclineReason)
				assert.Nil(t, f.CertifiedAt)
				assert.Nil(t, f.CertifiedBy)
			},
		},
		{
			name:   "decline without reason stores null",
			prior:  func(f *model.Farmer) {},
			status: model.StatusDeclined,
			check: func(t *testing.T, f *model.Farmer) {
				assert.NotNil(t, f.DeclinedAt)
				assert.Nil(t, f.DeclineReason)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			farmer := pendingFarmer()
			tt.prior(farmer)

			repo := new(MockFarmerRepository)
			repo.On("FindByID", mock.Anything, farmer.ID).Return(farmer, nil)
			repo.On("UpdateCertification", mock.Anything, farmer).Return(nil)
			pub := new(MockPublisher)
			pub.On("PublishCertificationDecided", mock.Anything, mock.MatchedBy(func(ev events.CertificationDecided) bool {
				return ev.FarmerID == farmer.ID.String() && ev.Status == tt.status && ev.DecidedBy == adminID.String()
			})).Return(nil)

			svc := newTestFarmerService(t, repo, nil, pub)
			got, err := svc.SetStatus(context.Background(), farmer.ID, adminID, tt.status, tt.reason)

			require.NoError(t, err)
			tt.check(t, got)
			assert.NoError(t, got.CheckInvariants())
			assert.Equal(t, "john.kamau@example.com", got.User.Email)
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestFarmerService_SetStatus_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		status    model.CertificationStatus
		setupMock func(m *MockFarmerRepository, id uuid.UUID)
		wantErr   error
	}{
		{
			name:      "pending is not settable",
			status:    model.StatusPending,
			setupMock: func(m *MockFarmerRepository, id uuid.UUID) {},
			wantErr:   apperrors.ErrStatusNotSettable,
		},
		{
			name:      "unknown status",
			status:    "ARCHIVED",
			setupMock: func(m *MockFarmerRepository, id uuid.UUID) {},
			wantErr:   apperrors.ErrValidation,
		},
		{
			name:   "missing farmer",
			status: model.StatusCertified,
			setupMock: func(m *MockFarmerRepository, id uuid.UUID) {
				m.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrFarmerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			repo := new(MockFarmerRepository)
			tt.setupMock(repo, id)
			svc := newTestFarmerService(t, repo, nil, nil)

			got, err := svc.SetStatus(context.Background(), id, uuid.New(), tt.status, "")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
			repo.AssertNotCalled(t, "UpdateCertification", mock.Anything, mock.Anything)
		})
	}
}

func TestFarmerService_SetStatus_PublishFailureIsAbsorbed(t *testing.T) {
	farmer := pendingFarmer()
	repo := new(MockFarmerRepository)
	repo.On("FindByID", mock.Anything, farmer.ID).Return(farmer, nil)
	repo.On("UpdateCertification", mock.Anything, farmer).Return(nil)
	pub := new(MockPublisher)
	pub.On("PublishCertificationDecided", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := newTestFarmerService(t, repo, nil, pub)
	got, err := svc.SetStatus(context.Background(), farmer.ID, uuid.New(), model.StatusCertified, "")

	require.NoError(t, err)
	assert.Equal(t, model.StatusCertified, got.CertificationStatus)
}

func TestFarmerService_Stats(t *testing.T) {
	repo := new(MockFarmerRepository)
	repo.On("CountByStatus", mock.Anything).Return(map[model.CertificationStatus]int64{
		model.StatusPending:   4,
		model.StatusCertified: 2,
	}, nil)
	svc := newTestFarmerService(t, repo, nil, nil)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.FarmerStats{Total: 6, Pending: 4, Certified: 2, Declined: 0}, stats)
	assert.Equal(t, stats.Total, stats.Pending+stats.Certified+stats.Declined)
}

func TestFarmerService_List(t *testing.T) {
	repo := new(MockFarmerRepository)
	repo.On("List", mock.Anything, repository.FarmerFilter{Status: model.StatusPending, Search: "kamau"}).
		Return([]model.Farmer{*pendingFarmer()}, nil)
	svc := newTestFarmerService(t, repo, nil, nil)

	farmers, err := svc.List(context.Background(), model.StatusPending, "kamau")
	require.NoError(t, err)
	assert.Len(t, farmers, 1)

	_, err = svc.List(context.Background(), "ARCHIVED", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestFarmerService_GetByUserID_NotFound(t *testing.T) {
	userID := uuid.New()
	repo := new(MockFarmerRepository)
	repo.On("FindByUserID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
	svc := newTestFarmerService(t, repo, nil, nil)

	_, err := svc.GetByUserID(context.Background(), userID)
	assert.ErrorIs(t, err, apperrors.ErrFarmerNotFound)
}

func TestFarmerService_UpdateLocation(t *testing.T) {
	tests := []struct {
		name        string
		lat, lon    float64
		resolved    string
		wantErr     error
		wantAddress string
	}{
		{name: "resolved address", lat: -1.2921, lon: 36.8219, resolved: "Nairobi, Kenya", wantAddress: "Nairobi, Kenya"},
		{name: "geocoder failure still persists", lat: -1.2921, lon: 36.8219, resolved: geo.AddressUnavailable, wantAddress: geo.AddressUnavailable},
		{name: "latitude out of range", lat: 95, lon: 36.8, wantErr: apperrors.ErrInvalidCoordinates},
		{name: "longitude out of range", lat: 0, lon: -180.01, wantErr: apperrors.ErrInvalidCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			farmer := pendingFarmer()
			repo := new(MockFarmerRepository)
			resolver := new(MockResolver)
			if tt.wantErr == nil {
				repo.On("FindByID", mock.Anything, farmer.ID).Return(farmer, nil)
				resolver.On("ReverseGeocode", mock.Anything, tt.lat, tt.lon).Return(tt.resolved)
				repo.On("UpdateLocation", mock.Anything, farmer.ID, tt.lat, tt.lon, tt.wantAddress).Return(nil)
			}
			svc := newTestFarmerService(t, repo, resolver, nil)

			got, err := svc.UpdateLocation(context.Background(), farmer.ID, tt.lat, tt.lon)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
				repo.AssertNotCalled(t, "UpdateLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, *got.Latitude)
			assert.Equal(t, tt.lon, *got.Longitude)
			assert.Equal(t, tt.wantAddress, *got.LocationAddress)
			repo.AssertExpectations(t)
			resolver.AssertExpectations(t)
		})
	}
}

func TestFarmerService_CertificateData(t *testing.T) {
	svc := newTestFarmerService(t, new(MockFarmerRepository), nil, nil)

	farmer := pendingFarmer()
	_, err := svc.CertificateData(farmer)
	assert.ErrorIs(t, err, apperrors.ErrNotCertified)

	farmer.Decline(uuid.NewString(), "missing documents", fixedNow)
	_, err = svc.CertificateData(farmer)
	assert.ErrorIs(t, err, apperrors.ErrNotCertified)

	farmer.Certify(uuid.NewString(), fixedNow)
	lat, lon, unresolved := -1.2921, 36.8219, geo.AddressUnavailable
	farmer.Latitude, farmer.Longitude, farmer.LocationAddress = &lat, &lon, &unresolved

	data, err := svc.CertificateData(farmer)
	require.NoError(t, err)
	assert.Equal(t, "John Kamau", data.FarmerName)
	assert.Equal(t, fixedNow, data.IssueDate)
	assert.Regexp(t, `^CERT-[A-Z0-9]{8}$`, data.CertificateID)
	assert.Empty(t, data.LocationAddress)
	assert.Equal(t, "-1.2921, 36.8219", data.LocationLine())
	assert.NoError(t, data.Validate())
}
