// Package testutil berisi helper DB in-memory untuk test (glebarez/sqlite, tanpa cgo).
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "compsphere_backend/internals/databases"
	eventModel "compsphere_backend/internals/features/events/model"
)

// NewDB opens a private in-memory database with every table and index migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := database.OpenSQLite(dsn, gormLogger.Discard)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixture is one event with a team, one activity, a lead member and a registration.
type Fixture struct {
	Event        eventModel.Event
	SubEvent     eventModel.SubEvent
	Activity     eventModel.Activity
	Team         eventModel.Team
	LeadUserID   uuid.UUID
	Registration eventModel.EventRegistration
}

func Seed(t testing.TB, db *gorm.DB) *Fixture {
	t.Helper()

	f := &Fixture{LeadUserID: uuid.New()}
	f.Event = eventModel.Event{EventCode: "hackfest-" + uuid.NewString()[:8], EventName: "Hackfest", EventHasTeams: true}
	require.NoError(t, db.Create(&f.Event).Error)

	f.SubEvent = eventModel.SubEvent{SubEventEventID: f.Event.EventID, SubEventName: "Day 1"}
	require.NoError(t, db.Create(&f.SubEvent).Error)

	f.Activity = eventModel.Activity{ActivityEventID: f.Event.EventID, ActivityCode: "checkpoint-1", ActivityName: "Checkpoint 1"}
	require.NoError(t, db.Create(&f.Activity).Error)

	f.Team = eventModel.Team{TeamEventID: f.Event.EventID, TeamCode: "team-alpha", TeamName: "Team Alpha"}
	require.NoError(t, db.Create(&f.Team).Error)

	require.NoError(t, db.Create(&eventModel.TeamMember{
		TeamMemberTeamID: f.Team.TeamID,
		TeamMemberUserID: f.LeadUserID,
		TeamMemberIsLead: true,
	}).Error)

	subID := f.SubEvent.SubEventID
	f.Registration = eventModel.EventRegistration{
		EventRegistrationEventID: f.Event.EventID,
		EventRegistrationUserID:  f.LeadUserID,
		EventRegistrationSubID:   &subID,
	}
	require.NoError(t, db.Create(&f.Registration).Error)

	return f
}

// AddActivity creates another activity in the fixture's event.
func (f *Fixture) AddActivity(t testing.TB, db *gorm.DB, code string) eventModel.Activity {
	t.Helper()
	a := eventModel.Activity{ActivityEventID: f.Event.EventID, ActivityCode: code, ActivityName: code}
	require.NoError(t, db.Create(&a).Error)
	return a
}
