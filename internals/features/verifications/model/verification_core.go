// file: internals/features/verifications/model/verification_core.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Status ===================== */

type VerificationStatus string

const (
	StatusActive  VerificationStatus = "active"
	StatusUsed    VerificationStatus = "used"
	StatusExpired VerificationStatus = "expired"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusUsed, StatusExpired:
		return true
	}
	return false
}

/* ===================== Core columns ===================== */

// VerificationCore holds the columns shared by every verification table.
// Embedded (by value) into each variant model.
type VerificationCore struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	VerificationToken string             `gorm:"type:varchar(32);not null;uniqueIndex;column:verification_token" json:"verification_token"`
	Status            VerificationStatus `gorm:"type:varchar(16);not null;default:active;index;column:status" json:"status"`

	// diisi bersamaan, sekali saja, saat active → used
	VerifiedAt   *time.Time        `gorm:"column:verified_at" json:"verified_at,omitempty"`
	VerifiedBy   *uuid.UUID        `gorm:"type:uuid;column:verified_by" json:"verified_by,omitempty"`
	VerifiedMeta datatypes.JSONMap `gorm:"column:verified_meta" json:"verified_meta,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *VerificationCore) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	return nil
}

func (c *VerificationCore) Core() *VerificationCore { return c }

func (c *VerificationCore) IsActive() bool { return c.Status == StatusActive }

// ActiveSubjectIndexes: partial unique index "satu active per subject".
// Ditulis manual karena dipakai apa adanya di Postgres maupun SQLite.
func ActiveSubjectIndexes() []string {
	return []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_tav_team_activity_active
			ON team_activity_verifications (team_id, activity_id) WHERE status = 'active'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_erv_registration_active
			ON event_registration_verifications (event_registration_id) WHERE status = 'active'`,
	}
}
