package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmverify/internal/model"
)

// FarmerFilter narrows a farmer listing. Zero values mean no filter.
type FarmerFilter struct {
	Status model.CertificationStatus
	Search string
}

// FarmerRepository defines farmer persistence operations. Read methods
// preload the owning user.
type FarmerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Farmer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Farmer, error)
	List(ctx context.Context, filter FarmerFilter) ([]model.Farmer, error)
	CountByStatus(ctx context.Context) (map[model.CertificationStatus]int64, error)
	UpdateCertification(ctx context.Context, farmer *model.Farmer) error
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, address string) error
}

type farmerRepository struct {
	db *gorm.DB
}

// NewFarmerRepository creates a new farmer repository.
func NewFarmerRepository(db *gorm.DB) FarmerRepository {
	return &farmerRepository{db: db}
}

// FindByID finds a farmer by ID.
func (r *farmerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Farmer, error) {
	var farmer model.Farmer
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&farmer).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

// FindByUserID finds the farmer profile owned by a user.
func (r *farmerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Farmer, error) {
	var farmer model.Farmer
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&farmer).Error; err != nil {
		return nil, err
	}
	return &farmer, nil
}

// List returns farmers newest first. Search matches the farmer name or the
// owner's email, case-insensitively.
func (r *farmerRepository) List(ctx context.Context, filter FarmerFilter) ([]model.Farmer, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Farmer{}).
		Preload("User").
		Joins("JOIN users ON users.id = farmers.user_id")

	if filter.Status != "" {
		q = q.Where("farmers.certification_status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where("LOWER(farmers.name) LIKE ? OR LOWER(users.email) LIKE ?", pattern, pattern)
	}

	farmers := make([]model.Farmer, 0)
	if err := q.Order("farmers.created_at DESC").Find(&farmers).Error; err != nil {
		return nil, err
	}
	return farmers, nil
}

type statusCount struct {
	Status model.CertificationStatus
	Count  int64
}

// CountByStatus counts farmers per status in a single grouped query, so the
// buckets always describe the same snapshot.
func (r *farmerRepository) CountByStatus(ctx context.Context) (map[model.CertificationStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&model.Farmer{}).
		Select("certification_status AS status, COUNT(*) AS count").
		Group("certification_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.CertificationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// UpdateCertification writes the status and all five audit columns. Cleared
// fields are written as NULL.
func (r *farmerRepository) UpdateCertification(ctx context.Context, farmer *model.Farmer) error {
	return r.db.WithContext(ctx).
		Model(&model.Farmer{}).
		Where("id = ?", farmer.ID).
		Updates(map[string]interface{}{
			"certification_status": farmer.CertificationStatus,
			"certified_at":         farmer.CertifiedAt,
			"certified_by":         farmer.CertifiedBy,
			"declined_at":          farmer.DeclinedAt,
			"declined_by":          farmer.DeclinedBy,
			"decline_reason":       farmer.DeclineReason,
		}).Error
}

// UpdateLocation stores coordinates and the resolved address together.
func (r *farmerRepository) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, address string) error {
	return r.db.WithContext(ctx).
		Model(&model.Farmer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"latitude":         lat,
			"longitude":        lon,
			"location_address": address,
		}).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
