package seeds

import (
	"log"

	"gorm.io/gorm"

	"compsphere_backend/internals/seeds/events"
)

func RunAllSeeds(db *gorm.DB) {
	//* Events (event, sub-event, activity, team, registrasi)
	if err := events.SeedEventsFromJSON(db, "internals/seeds/events/data_events.json"); err != nil {
		log.Printf("❌ Seed events gagal: %v", err)
	}
}
