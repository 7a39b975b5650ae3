// file: internals/features/verifications/model/team_activity_verification_model.go
package model

import (
	"github.com/google/uuid"

	eventModel "compsphere_backend/internals/features/events/model"
)

const VariantTeamActivity = "team_activity"

// TeamActivityVerification attests that a team completed an activity.
// Maksimal satu baris active per (team_id, activity_id); baris lama tetap ada sebagai riwayat.
type TeamActivityVerification struct {
	VerificationCore `gorm:"embedded"`

	// nama field beda dari PK parent: relasi dibaca belongs-to, FK + cascade ada di tabel ini
	SubjectTeamID     uuid.UUID `gorm:"type:uuid;not null;column:team_id;index:idx_tav_team" json:"team_id"`
	SubjectActivityID uuid.UUID `gorm:"type:uuid;not null;column:activity_id;index:idx_tav_activity" json:"activity_id"`

	Team     *eventModel.Team     `gorm:"foreignKey:SubjectTeamID;references:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Activity *eventModel.Activity `gorm:"foreignKey:SubjectActivityID;references:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TeamActivityVerification) TableName() string { return "team_activity_verifications" }

func NewTeamActivitySubject(teamID, activityID uuid.UUID) *TeamActivityVerification {
	return &TeamActivityVerification{SubjectTeamID: teamID, SubjectActivityID: activityID}
}

func (m *TeamActivityVerification) SubjectColumns() map[string]any {
	return map[string]any{
		"team_id":     m.SubjectTeamID,
		"activity_id": m.SubjectActivityID,
	}
}

func (m *TeamActivityVerification) Variant() string { return VariantTeamActivity }
