// file: internals/features/events/model/event_registrations_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRegistration struct {
	EventRegistrationID      uuid.UUID  `gorm:"type:uuid;primaryKey;column:event_registration_id" json:"event_registration_id"`
	EventRegistrationEventID uuid.UUID  `gorm:"type:uuid;not null;index:idx_event_registrations_event_user,priority:1;column:event_registration_event_id" json:"event_registration_event_id"`
	EventRegistrationUserID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_event_registrations_event_user,priority:2;column:event_registration_user_id" json:"event_registration_user_id"`
	EventRegistrationSubID   *uuid.UUID `gorm:"type:uuid;column:event_registration_sub_event_id" json:"event_registration_sub_event_id,omitempty"`

	Event    *Event    `gorm:"foreignKey:EventRegistrationEventID;references:EventID;constraint:OnDelete:CASCADE" json:"-"`
	SubEvent *SubEvent `gorm:"foreignKey:EventRegistrationSubID;references:SubEventID;constraint:OnDelete:CASCADE" json:"-"`

	EventRegistrationCreatedAt time.Time `gorm:"column:event_registration_created_at;autoCreateTime" json:"event_registration_created_at"`
}

func (EventRegistration) TableName() string { return "event_registrations" }

func (m *EventRegistration) BeforeCreate(tx *gorm.DB) error {
	if m.EventRegistrationID == uuid.Nil {
		m.EventRegistrationID = uuid.New()
	}
	return nil
}

// MatchesSubEvent: nil berarti tidak dibatasi sub-event.
func (m *EventRegistration) MatchesSubEvent(subEventID *uuid.UUID) bool {
	if subEventID == nil {
		return true
	}
	return m.EventRegistrationSubID != nil && *m.EventRegistrationSubID == *subEventID
}
