package events

import (
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	model "compsphere_backend/internals/features/events/model"
)

type MemberSeed struct {
	UserID uuid.UUID `json:"user_id"`
	IsLead bool      `json:"is_lead"`
}

type CodeNameSeed struct {
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Members []MemberSeed `json:"members,omitempty"`
}

type RegistrationSeed struct {
	UserID   uuid.UUID `json:"user_id"`
	SubEvent string    `json:"sub_event,omitempty"` // nama sub-event, kosong = tanpa sub-event
}

type EventSeed struct {
	EventCode     string             `json:"event_code"`
	EventName     string             `json:"event_name"`
	EventHasTeams bool               `json:"event_has_teams"`
	SubEvents     []string           `json:"sub_events"`
	Activities    []CodeNameSeed     `json:"activities"`
	Teams         []CodeNameSeed     `json:"teams"`
	Registrations []RegistrationSeed `json:"registrations"`
}

// SeedEventsFromJSON bersifat idempotent: event yang kodenya sudah ada dilewati.
func SeedEventsFromJSON(db *gorm.DB, filePath string) error {
	log.Println("📥 Membaca file:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("baca file seed: %w", err)
	}
	var events []EventSeed
	if err := sonic.Unmarshal(file, &events); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	for _, e := range events {
		var n int64
		if err := db.Model(&model.Event{}).Where("event_code = ?", e.EventCode).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			log.Printf("ℹ️ Event %s sudah ada, lewati...", e.EventCode)
			continue
		}
		if err := db.Transaction(func(tx *gorm.DB) error { return seedEvent(tx, e) }); err != nil {
			return fmt.Errorf("seed event %s: %w", e.EventCode, err)
		}
		log.Printf("✅ Berhasil insert event %s (%s)", e.EventName, e.EventCode)
	}
	return nil
}

func seedEvent(tx *gorm.DB, e EventSeed) error {
	ev := model.Event{EventCode: e.EventCode, EventName: e.EventName, EventHasTeams: e.EventHasTeams}
	if err := tx.Create(&ev).Error; err != nil {
		return err
	}

	subByName := map[string]uuid.UUID{}
	for _, name := range e.SubEvents {
		sub := model.SubEvent{SubEventEventID: ev.EventID, SubEventName: name}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		subByName[name] = sub.SubEventID
	}

	for _, a := range e.Activities {
		if err := tx.Create(&model.Activity{ActivityEventID: ev.EventID, ActivityCode: a.Code, ActivityName: a.Name}).Error; err != nil {
			return err
		}
	}

	for _, t := range e.Teams {
		team := model.Team{TeamEventID: ev.EventID, TeamCode: t.Code, TeamName: t.Name}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		for _, m := range t.Members {
			if err := tx.Create(&model.TeamMember{
				TeamMemberTeamID: team.TeamID,
				TeamMemberUserID: m.UserID,
				TeamMemberIsLead: m.IsLead,
			}).Error; err != nil {
				return err
			}
		}
	}

	for _, r := range e.Registrations {
		reg := model.EventRegistration{EventRegistrationEventID: ev.EventID, EventRegistrationUserID: r.UserID}
		if r.SubEvent != "" {
			id, ok := subByName[r.SubEvent]
			if !ok {
				return fmt.Errorf("sub_event %q tidak dikenal", r.SubEvent)
			}
			reg.EventRegistrationSubID = &id
		}
		if err := tx.Create(&reg).Error; err != nil {
			return err
		}
	}
	return nil
}
