package services

import (
	"errors"

	"classquest_go/database"
	"classquest_go/models"

	"gorm.io/gorm"
)

// EventService awards event participation points. Same discipline as
// check-ins: the participation row and its ledger entry are one transaction,
// with the (event_id, student_id) unique index arbitrating duplicates.
type EventService struct {
	ledger *LedgerService
}

func NewEventService() *EventService {
	return &EventService{ledger: NewLedgerService()}
}

// Participate records a student joining an event and awards its points.
func (es *EventService) Participate(eventID, studentID, recordedByID uint) (*models.EventParticipation, error) {
	var event models.Event
	if err := database.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	participation := models.EventParticipation{
		EventID:   eventID,
		StudentID: studentID,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&participation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyParticipated
			}
			return err
		}

		_, err := es.ledger.AppendTx(tx, studentID, event.AwardPoints,
			"Event participation: "+event.Title, models.SourceEvent, nil, &recordedByID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &participation, nil
}
