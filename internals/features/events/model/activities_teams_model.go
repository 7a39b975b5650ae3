// file: internals/features/events/model/activities_teams_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity = pos/kegiatan di dalam event yang harus "diselesaikan" tiap tim (check-in via QR).
type Activity struct {
	ActivityID      uuid.UUID `gorm:"type:uuid;primaryKey;column:activity_id" json:"activity_id"`
	ActivityEventID uuid.UUID `gorm:"type:uuid;not null;column:activity_event_id;uniqueIndex:uq_activities_event_code,priority:1" json:"activity_event_id"`
	ActivityCode    string    `gorm:"type:varchar(64);not null;column:activity_code;uniqueIndex:uq_activities_event_code,priority:2" json:"activity_code"`
	ActivityName    string    `gorm:"type:varchar(160);not null;column:activity_name" json:"activity_name"`

	Event *Event `gorm:"foreignKey:ActivityEventID;references:EventID;constraint:OnDelete:CASCADE" json:"-"`

	ActivityCreatedAt time.Time `gorm:"column:activity_created_at;autoCreateTime" json:"activity_created_at"`
}

func (Activity) TableName() string { return "activities" }

func (m *Activity) BeforeCreate(tx *gorm.DB) error {
	if m.ActivityID == uuid.Nil {
		m.ActivityID = uuid.New()
	}
	return nil
}

type Team struct {
	TeamID      uuid.UUID `gorm:"type:uuid;primaryKey;column:team_id" json:"team_id"`
	TeamEventID uuid.UUID `gorm:"type:uuid;not null;column:team_event_id;uniqueIndex:uq_teams_event_code,priority:1" json:"team_event_id"`
	TeamCode    string    `gorm:"type:varchar(64);not null;column:team_code;uniqueIndex:uq_teams_event_code,priority:2" json:"team_code"`
	TeamName    string    `gorm:"type:varchar(160);not null;column:team_name" json:"team_name"`

	Event *Event `gorm:"foreignKey:TeamEventID;references:EventID;constraint:OnDelete:CASCADE" json:"-"`

	TeamCreatedAt time.Time `gorm:"column:team_created_at;autoCreateTime" json:"team_created_at"`
}

func (Team) TableName() string { return "teams" }

func (m *Team) BeforeCreate(tx *gorm.DB) error {
	if m.TeamID == uuid.Nil {
		m.TeamID = uuid.New()
	}
	return nil
}

type TeamMember struct {
	TeamMemberTeamID uuid.UUID `gorm:"type:uuid;primaryKey;column:team_member_team_id" json:"team_member_team_id"`
	TeamMemberUserID uuid.UUID `gorm:"type:uuid;primaryKey;index;column:team_member_user_id" json:"team_member_user_id"`
	TeamMemberIsLead bool      `gorm:"not null;default:false;column:team_member_is_lead" json:"team_member_is_lead"`

	Team *Team `gorm:"foreignKey:TeamMemberTeamID;references:TeamID;constraint:OnDelete:CASCADE" json:"-"`

	TeamMemberJoinedAt time.Time `gorm:"column:team_member_joined_at;autoCreateTime" json:"team_member_joined_at"`
}

func (TeamMember) TableName() string { return "team_members" }
