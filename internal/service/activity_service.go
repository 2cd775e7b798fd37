package service

import (
	"fmt"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"gorm.io/gorm"
)

// ActivityEvent is one typed feed event. The formatter renders it; the
// ledger and balance math never depend on it.
type ActivityEvent struct {
	Verb      string
	ActorRole string
	ActorID   uint
	ActorName string
	Amount    models.Money
}

// Describe renders the feed line, e.g. "Credited ₹70.00 for Ravi" or
// "Paid ₹450.00 to Ravi".
func (e ActivityEvent) Describe() string {
	preposition := "for"
	switch e.Verb {
	case constants.ActivityVerbApproved, constants.ActivityVerbPaid:
		preposition = "to"
	}
	return fmt.Sprintf("%s ₹%s %s %s", e.Verb, e.Amount.String(), preposition, e.ActorName)
}

// ActivityService appends and lists feed entries.
type ActivityService struct {
	repo repository.ActivityRepository
}

// NewActivityService creates the activity feed service.
func NewActivityService(repo repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record appends one feed entry. Feed failures are logged, never
// propagated; the feed is display only.
func (s *ActivityService) Record(tx *gorm.DB, event ActivityEvent) {
	entry := &models.ActivityLog{
		Verb:        event.Verb,
		ActorRole:   event.ActorRole,
		ActorID:     event.ActorID,
		ActorName:   event.ActorName,
		Amount:      event.Amount,
		Description: event.Describe(),
	}
	if err := s.repo.WithTx(tx).Create(entry); err != nil {
		logger.Warnw("activity_record_failed",
			"verb", event.Verb,
			"actor_role", event.ActorRole,
			"actor_id", event.ActorID,
			"error", err,
		)
	}
}

// List returns feed entries newest-first.
func (s *ActivityService) List(filter repository.ActivityListFilter) ([]models.ActivityLog, int64, error) {
	return s.repo.List(filter)
}
