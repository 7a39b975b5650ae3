// file: internals/features/events/model/events_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   Event & SubEvent
   ========================================================= */

type Event struct {
	EventID   uuid.UUID `gorm:"type:uuid;primaryKey;column:event_id" json:"event_id"`
	EventCode string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_events_code;column:event_code" json:"event_code"`
	EventName string    `gorm:"type:varchar(160);not null;column:event_name" json:"event_name"`
	// hackathon track punya tim & aktivitas; event biasa cukup registrasi
	EventHasTeams bool `gorm:"not null;default:false;column:event_has_teams" json:"event_has_teams"`

	EventCreatedAt time.Time `gorm:"column:event_created_at;autoCreateTime" json:"event_created_at"`
	EventUpdatedAt time.Time `gorm:"column:event_updated_at;autoUpdateTime" json:"event_updated_at"`
}

func (Event) TableName() string { return "events" }

func (m *Event) BeforeCreate(tx *gorm.DB) error {
	if m.EventID == uuid.Nil {
		m.EventID = uuid.New()
	}
	return nil
}

type SubEvent struct {
	SubEventID      uuid.UUID `gorm:"type:uuid;primaryKey;column:sub_event_id" json:"sub_event_id"`
	SubEventEventID uuid.UUID `gorm:"type:uuid;not null;index;column:sub_event_event_id" json:"sub_event_event_id"`
	SubEventName    string    `gorm:"type:varchar(160);not null;column:sub_event_name" json:"sub_event_name"`

	Event *Event `gorm:"foreignKey:SubEventEventID;references:EventID;constraint:OnDelete:CASCADE" json:"-"`

	SubEventCreatedAt time.Time `gorm:"column:sub_event_created_at;autoCreateTime" json:"sub_event_created_at"`
}

func (SubEvent) TableName() string { return "sub_events" }

func (m *SubEvent) BeforeCreate(tx *gorm.DB) error {
	if m.SubEventID == uuid.Nil {
		m.SubEventID = uuid.New()
	}
	return nil
}
