// Package events defines the certification decision event and moves it over
// RabbitMQ.
package events

import (
	"context"
	"fmt"
	"time"

	"farmverify/internal/model"
)

// CertificationDecidedQueue is the durable queue decisions are published to.
const CertificationDecidedQueue = "farmer.certification.decided"

// CertificationDecided is published after an admin certifies or declines a
// farmer. It carries enough to notify the farmer without a database read.
type CertificationDecided struct {
	FarmerID   string                    `json:"farmerId"`
	UserID     string                    `json:"userId"`
	Email      string                    `json:"email"`
	FarmerName string                    `json:"farmerName"`
	Status     model.CertificationStatus `json:"status"`
	DecidedBy  string                    `json:"decidedBy"`
	DecidedAt  time.Time                 `json:"decidedAt"`
	Reason     string                    `json:"reason,omitempty"`
}

// NewCertificationDecided builds the event from a farmer that has just been
// decided. The owning user must be loaded for the email to be set.
func NewCertificationDecided(f *model.Farmer) CertificationDecided {
	ev := CertificationDecided{
		FarmerID:   f.ID.String(),
		UserID:     f.UserID.String(),
		FarmerName: f.Name,
		Status:     f.CertificationStatus,
	}
	if f.User != nil {
		ev.Email = f.User.Email
	}
	switch f.CertificationStatus {
	case model.StatusCertified:
		if f.CertifiedBy != nil {
			ev.DecidedBy = *f.CertifiedBy
		}
		if f.CertifiedAt != nil {
			ev.DecidedAt = *f.CertifiedAt
		}
	case model.StatusDeclined:
		if f.DeclinedBy != nil {
			ev.DecidedBy = *f.DeclinedBy
		}
		if f.DeclinedAt != nil {
			ev.DecidedAt = *f.DeclinedAt
		}
		if f.DeclineReason != nil {
			ev.Reason = *f.DeclineReason
		}
	}
	return ev
}

// Message is the notification text sent to the farmer.
func (e CertificationDecided) Message() string {
	switch e.Status {
	case model.StatusCertified:
		return fmt.Sprintf("Congratulations %s, your farm has been certified. Your certificate is ready to download.", e.FarmerName)
	case model.StatusDeclined:
		if e.Reason != "" {
			return fmt.Sprintf("Dear %s, your certification application was declined: %s", e.FarmerName, e.Reason)
		}
		return fmt.Sprintf("Dear %s, your certification application was declined.", e.FarmerName)
	}
	return fmt.Sprintf("Dear %s, your certification status is now %s.", e.FarmerName, e.Status)
}

// Publisher delivers certification events.
type Publisher interface {
	PublishCertificationDecided(ctx context.Context, event CertificationDecided) error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

// PublishCertificationDecided does nothing.
func (NopPublisher) PublishCertificationDecided(context.Context, CertificationDecided) error {
	return nil
}
