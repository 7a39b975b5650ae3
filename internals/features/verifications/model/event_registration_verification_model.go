// file: internals/features/verifications/model/event_registration_verification_model.go
package model

import (
	"github.com/google/uuid"

	eventModel "compsphere_backend/internals/features/events/model"
)

const VariantEventRegistration = "event_registration"

// EventRegistrationVerification attests a participant's registration (event / sub-event check-in).
type EventRegistrationVerification struct {
	VerificationCore `gorm:"embedded"`

	SubjectRegistrationID uuid.UUID `gorm:"type:uuid;not null;column:event_registration_id;index:idx_erv_registration" json:"event_registration_id"`

	EventRegistration *eventModel.EventRegistration `gorm:"foreignKey:SubjectRegistrationID;references:EventRegistrationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (EventRegistrationVerification) TableName() string { return "event_registration_verifications" }

func NewEventRegistrationSubject(registrationID uuid.UUID) *EventRegistrationVerification {
	return &EventRegistrationVerification{SubjectRegistrationID: registrationID}
}

func (m *EventRegistrationVerification) SubjectColumns() map[string]any {
	return map[string]any{"event_registration_id": m.SubjectRegistrationID}
}

func (m *EventRegistrationVerification) Variant() string { return VariantEventRegistration }
