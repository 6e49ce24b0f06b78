package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"farmverify/internal/geo"
)

func init() {
	// Clients read farmSize as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// CertificationStatus is the lifecycle state of a farmer's certification.
type CertificationStatus string

const (
	StatusPending   CertificationStatus = "PENDING"
	StatusCertified CertificationStatus = "CERTIFIED"
	StatusDeclined  CertificationStatus = "DECLINED"
)

// Farm sizes are stored as decimal(10,2).
const FarmSizeScale = 2

// MaxFarmSize is the first value the farm size column cannot hold.
var MaxFarmSize = decimal.New(1, 8)

// NormalizeFarmSize rounds a farm size to the stored precision.
func NormalizeFarmSize(size decimal.Decimal) decimal.Decimal {
	return size.Round(FarmSizeScale)
}

// Statuses lists every certification status in display order.
var Statuses = []CertificationStatus{StatusPending, StatusCertified, StatusDeclined}

// Valid reports whether s is a known certification status.
func (s CertificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCertified, StatusDeclined:
		return true
	}
	return false
}

// Farmer is the farm profile owned by a FARMER user.
type Farmer struct {
	ID                  uuid.UUID           `json:"id" gorm:"type:char(36);primaryKey"`
	UserID              uuid.UUID           `json:"userId" gorm:"type:char(36);uniqueIndex;not null"`
	Name                string              `json:"name" gorm:"size:255;not null;index"`
	FarmSize            decimal.Decimal     `json:"farmSize" gorm:"type:decimal(10,2);not null"`
	CropType            string              `json:"cropType" gorm:"size:255;not null"`
	CertificationStatus CertificationStatus `json:"certificationStatus" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	Latitude            *float64            `json:"latitude,omitempty"`
	Longitude           *float64            `json:"longitude,omitempty"`
	LocationAddress     *string             `json:"locationAddress,omitempty" gorm:"size:512"`
	CertifiedAt         *time.Time          `json:"certifiedAt,omitempty"`
	CertifiedBy         *string             `json:"certifiedBy,omitempty" gorm:"type:char(36)"`
	DeclinedAt          *time.Time          `json:"declinedAt,omitempty"`
	DeclinedBy          *string             `json:"declinedBy,omitempty" gorm:"type:char(36)"`
	DeclineReason       *string             `json:"declineReason,omitempty" gorm:"type:text"`
	CreatedAt           time.Time           `json:"createdAt" gorm:"index"`
	UpdatedAt           time.Time           `json:"updatedAt"`

	// Owning account, loaded on read paths.
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (f *Farmer) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CertificationStatus == "" {
		f.CertificationStatus = StatusPending
	}
	return nil
}

// Certify records an admin's approval. The decline triad is cleared.
func (f *Farmer) Certify(adminID string, at time.Time) {
	f.CertificationStatus = StatusCertified
	f.CertifiedAt = &at
	f.CertifiedBy = &adminID
	f.DeclinedAt = nil
	f.DeclinedBy = nil
	f.DeclineReason = nil
}

// Decline records an admin's rejection. An empty reason is stored as null.
// The certification pair is cleared.
func (f *Farmer) Decline(adminID string, reason string, at time.Time) {
	f.CertificationStatus = StatusDeclined
	f.DeclinedAt = &at
	f.DeclinedBy = &adminID
	f.DeclineReason = nil
	if r := strings.TrimSpace(reason); r != "" {
		f.DeclineReason = &r
	}
	f.CertifiedAt = nil
	f.CertifiedBy = nil
}

// HasLocation reports whether both coordinates are set.
func (f *Farmer) HasLocation() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// CheckInvariants verifies the record-level rules every persisted farmer obeys.
func (f *Farmer) CheckInvariants() error {
	if !f.FarmSize.IsPositive() {
		return errors.New("farm size must be positive")
	}
	if !f.FarmSize.Equal(NormalizeFarmSize(f.FarmSize)) || f.FarmSize.GreaterThanOrEqual(MaxFarmSize) {
		return errors.New("farm size must be below 100000000 with at most two decimals")
	}
	if strings.TrimSpace(f.CropType) == "" {
		return errors.New("crop type is required")
	}
	if (f.Latitude == nil) != (f.Longitude == nil) {
		return errors.New("latitude and longitude must be set together")
	}
	if f.HasLocation() && !geo.ValidateBounds(*f.Latitude, *f.Longitude) {
		return errors.New("coordinates out of range")
	}

	certified := f.CertifiedAt != nil || f.CertifiedBy != nil
	declined := f.DeclinedAt != nil || f.DeclinedBy != nil || f.DeclineReason != nil
	if certified && declined {
		return errors.New("certification and decline fields are both set")
	}
	switch f.CertificationStatus {
	case StatusPending:
		if certified || declined {
			return errors.New("pending farmer carries decision fields")
		}
	case StatusCertified:
		if f.CertifiedAt == nil || f.CertifiedBy == nil {
			return errors.New("certified farmer lacks certification fields")
		}
	case StatusDeclined:
		if f.DeclinedAt == nil || f.DeclinedBy == nil {
			return errors.New("declined farmer lacks decline fields")
		}
	default:
		return errors.New("unknown certification status")
	}
	return nil
}
