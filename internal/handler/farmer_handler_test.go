package handler

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"farmverify/internal/auth"
	"farmverify/internal/certificate"
	"farmverify/internal/errors"
	"farmverify/internal/middleware"
	"farmverify/internal/model"
)

// MockFarmerService is a mock implementation of service.FarmerService.
type MockFarmerService struct {
	mock.Mock
}

func (m *MockFarmerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Farmer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerService) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Farmer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerService) List(ctx context.Context, status model.CertificationStatus, search string) ([]model.Farmer, error) {
	args := m.Called(ctx, status, search)
	return args.Get(0).([]model.Farmer), args.Error(1)
}

func (m *MockFarmerService) Stats(ctx context.Context) (model.FarmerStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.FarmerStats), args.Error(1)
}

func (m *MockFarmerService) SetStatus(ctx context.Context, farmerID, adminID uuid.UUID, status model.CertificationStatus, reason string) (*model.Farmer, error) {
	args := m.Called(ctx, farmerID, adminID, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerService) UpdateLocation(ctx context.Context, farmerID uuid.UUID, lat, lon float64) (*model.Farmer, error) {
	args := m.Called(ctx, farmerID, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerService) CertificateData(farmer *model.Farmer) (certificate.Data, error) {
	args := m.Called(farmer)
	return args.Get(0).(certificate.Data), args.Error(1)
}

func TestFarmerHandler_GetCertificate(t *testing.T) {
	farmer := &model.Farmer{ID: uuid.New(), UserID: uuid.New(), CertificationStatus: model.StatusCertified}
	data := certificate.Data{
		FarmerName:    "John Kamau",
		FarmSize:      decimal.RequireFromString("5.5"),
		CropType:      "Maize",
		IssueDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		CertificateID: certificate.ID(farmer.ID.String()),
	}

	tests := []struct {
		name       string
		render     func(certificate.Data) ([]byte, error)
		wantStatus int
		wantPDF    bool
	}{
		{
			name:       "document sent once built",
			render:     certificate.Bytes,
			wantStatus: http.StatusOK,
			wantPDF:    true,
		},
		{
			name: "build failure becomes an error response",
			render: func(certificate.Data) ([]byte, error) {
				return nil, stderrors.New("font table corrupt")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := renderCertificate
			renderCertificate = tt.render
			t.Cleanup(func() { renderCertificate = original })

			svc := new(MockFarmerService)
			svc.On("GetByID", mock.Anything, farmer.ID).Return(farmer, nil)
			svc.On("CertificateData", farmer).Return(data, nil)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(farmer.ID.String())
			middleware.SetIdentity(c, &auth.Identity{UserID: farmer.UserID, Role: model.RoleFarmer})

			err := NewFarmerHandler(svc, nil).GetCertificate(c)

			if !tt.wantPDF {
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, tt.wantStatus, he.Code)
				assert.Equal(t, "INTERNAL_ERROR", he.Message.(errors.ErrorResponse).Code)
				assert.False(t, c.Response().Committed)
				assert.Empty(t, rec.Header().Get(echo.HeaderContentDisposition))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
			assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), data.CertificateID)
			assert.Contains(t, rec.Body.String(), "John Kamau")
			svc.AssertExpectations(t)
		})
	}
}
