package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"compsphere_backend/internals/configs"
	eventModel "compsphere_backend/internals/features/events/model"
	verifModel "compsphere_backend/internals/features/verifications/model"
)

var DB *gorm.DB

func ConnectDB() {
	var (
		db  *gorm.DB
		err error
	)
	switch configs.DBDriver {
	case "sqlite":
		path := configs.GetEnv("DB_SQLITE_PATH")
		log.Printf("🔌 Connecting to SQLite (%s)...", sqliteLabel(path))
		db, err = OpenSQLite(SQLiteDSN(path), configs.NewGormLogger())
	default:
		log.Println("🔌 Connecting to PostgreSQL...")
		db, err = OpenPostgres(postgresDSN())
	}
	if err != nil {
		log.Fatalf("❌ DB connect failed: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

// statement_timeout selaras dengan HTTP timeout guard di main.go
func postgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=compsphere&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		configs.GetEnv("DB_SSLMODE", "require"),
	)
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // aman untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}

// SQLiteDSN: path kosong → in-memory shared cache (dev/test).
func SQLiteDSN(path string) string {
	if path == "" {
		return "file::memory:?cache=shared&_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func OpenSQLite(dsn string, logger gormLogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite cuma punya satu writer; satu koneksi menghindari SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func sqliteLabel(path string) string {
	if path == "" {
		return "in-memory"
	}
	return path
}

func TunePool() {
	if configs.DBDriver == "sqlite" {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond) // beri waktu server naik
		if err := Ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Migrate membuat tabel event (collaborator) dulu, baru tabel verifikasi yang punya FK ke sana.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&eventModel.Event{},
		&eventModel.SubEvent{},
		&eventModel.Activity{},
		&eventModel.Team{},
		&eventModel.TeamMember{},
		&eventModel.EventRegistration{},
	); err != nil {
		return fmt.Errorf("migrate events: %w", err)
	}
	if err := db.AutoMigrate(
		&verifModel.TeamActivityVerification{},
		&verifModel.EventRegistrationVerification{},
	); err != nil {
		return fmt.Errorf("migrate verifications: %w", err)
	}
	for _, stmt := range verifModel.ActiveSubjectIndexes() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create active-subject index: %w", err)
		}
	}
	return nil
}
