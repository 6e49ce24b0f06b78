package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"farmverify/internal/cache"
	"farmverify/internal/certificate"
	apperrors "farmverify/internal/errors"
	"farmverify/internal/events"
	"farmverify/internal/geo"
	"farmverify/internal/model"
	"farmverify/internal/repository"
)

const (
	statsCacheKey = "farmers:stats"
	statsCacheTTL = 30 * time.Second
)

// FarmerService owns the certification lifecycle and the farmer read paths.
type FarmerService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Farmer, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Farmer, error)
	List(ctx context.Context, status model.CertificationStatus, search string) ([]model.Farmer, error)
	Stats(ctx context.Context) (model.FarmerStats, error)
	SetStatus(ctx context.Context, farmerID, adminID uuid.UUID, status model.CertificationStatus, reason string) (*model.Farmer, error)
	UpdateLocation(ctx context.Context, farmerID uuid.UUID, lat, lon float64) (*model.Farmer, error)
	CertificateData(farmer *model.Farmer) (certificate.Data, error)
}

type farmerService struct {
	farmerRepo repository.FarmerRepository
	resolver   geo.Resolver
	publisher  events.Publisher
	cache      *cache.Client
	log        *zap.Logger
	now        func() time.Time
}

// NewFarmerService creates a new farmer service.
func NewFarmerService(
	farmerRepo repository.FarmerRepository,
	resolver geo.Resolver,
	publisher events.Publisher,
	cacheClient *cache.Client,
	log *zap.Logger,
) FarmerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &farmerService{
		farmerRepo: farmerRepo,
		resolver:   resolver,
		publisher:  publisher,
		cache:      cacheClient,
		log:        log,
		now:        time.Now,
	}
}

// GetByID returns a farmer with its owning account.
func (s *farmerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Farmer, error) {
	farmer, err := s.farmerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "find farmer")
	}
	return farmer, nil
}

// GetByUserID returns the farmer owned by userID.
func (s *farmerService) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Farmer, error) {
	farmer, err := s.farmerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "find farmer by user")
	}
	return farmer, nil
}

// List returns farmers newest first, optionally filtered by exact status and
// a case-insensitive search over name and owner email.
func (s *farmerService) List(ctx context.Context, status model.CertificationStatus, search string) ([]model.Farmer, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validation("status must be one of PENDING, CERTIFIED, DECLINED")
	}
	farmers, err := s.farmerRepo.List(ctx, repository.FarmerFilter{Status: status, Search: search})
	if err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	return farmers, nil
}

// Stats counts farmers per status from one grouped read. Results are cached
// briefly and invalidated on every write that changes a bucket.
func (s *farmerService) Stats(ctx context.Context) (model.FarmerStats, error) {
	var cached model.FarmerStats
	if s.cache.GetJSON(ctx, statsCacheKey, &cached) {
		return cached, nil
	}

	counts, err := s.farmerRepo.CountByStatus(ctx)
	if err != nil {
		return model.FarmerStats{}, fmt.Errorf("count farmers: %w", err)
	}
	stats := model.NewFarmerStats(counts)
	_ = s.cache.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL)
	return stats, nil
}

// SetStatus records an admin decision. CERTIFIED and DECLINED may be applied
// from any prior state; PENDING cannot be re-entered. Concurrent decisions on
// the same farmer resolve as last write wins.
func (s *farmerService) SetStatus(ctx context.Context, farmerID, adminID uuid.UUID, status model.CertificationStatus, reason string) (*model.Farmer, error) {
	switch status {
	case model.StatusCertified, model.StatusDeclined:
	case model.StatusPending:
		return nil, apperrors.ErrStatusNotSettable
	default:
		return nil, apperrors.Validation("status must be one of PENDING, CERTIFIED, DECLINED")
	}

	farmer, err := s.GetByID(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if status == model.StatusCertified {
		farmer.Certify(adminID.String(), at)
	} else {
		farmer.Decline(adminID.String(), reason, at)
	}
	if err := farmer.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("farmer %s: %w", farmer.ID, err)
	}

	if err := s.farmerRepo.UpdateCertification(ctx, farmer); err != nil {
		return nil, fmt.Errorf("update certification: %w", err)
	}
	_ = s.cache.Delete(ctx, statsCacheKey)

	if err := s.publisher.PublishCertificationDecided(ctx, events.NewCertificationDecided(farmer)); err != nil {
		s.log.Warn("publish certification decision",
			zap.String("farmer_id", farmer.ID.String()),
			zap.String("status", string(farmer.CertificationStatus)),
			zap.Error(err),
		)
	}

	s.log.Info("certification decided",
		zap.String("farmer_id", farmer.ID.String()),
		zap.String("status", string(farmer.CertificationStatus)),
		zap.String("admin_id", adminID.String()),
	)
	return farmer, nil
}

// UpdateLocation stores new coordinates with a best-effort address. An
// unresolvable address never blocks the update.
func (s *farmerService) UpdateLocation(ctx context.Context, farmerID uuid.UUID, lat, lon float64) (*model.Farmer, error) {
	if !geo.ValidateBounds(lat, lon) {
		return nil, apperrors.ErrInvalidCoordinates
	}

	farmer, err := s.GetByID(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	address := geo.AddressUnavailable
	if s.resolver != nil {
		address = s.resolver.ReverseGeocode(ctx, lat, lon)
	}

	if err := s.farmerRepo.UpdateLocation(ctx, farmer.ID, lat, lon, address); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}

	farmer.Latitude = &lat
	farmer.Longitude = &lon
	farmer.LocationAddress = &address
	return farmer, nil
}

// CertificateData builds the certificate snapshot for a CERTIFIED farmer.
func (s *farmerService) CertificateData(farmer *model.Farmer) (certificate.Data, error) {
	if farmer.CertificationStatus != model.StatusCertified {
		return certificate.Data{}, apperrors.ErrNotCertified
	}

	issued := farmer.UpdatedAt
	if farmer.CertifiedAt != nil {
		issued = *farmer.CertifiedAt
	}

	data := certificate.Data{
		FarmerName:    farmer.Name,
		FarmSize:      farmer.FarmSize,
		CropType:      farmer.CropType,
		IssueDate:     issued,
		CertificateID: certificate.ID(farmer.ID.String()),
		Latitude:      farmer.Latitude,
		Longitude:     farmer.Longitude,
	}
	// A sentinel is not an address; coordinates print instead.
	if farmer.LocationAddress != nil && !geo.IsSentinel(*farmer.LocationAddress) {
		data.LocationAddress = *farmer.LocationAddress
	}
	return data, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrFarmerNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
