package configs

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret  string
	AppBaseURL string
	// AdminPrefix selalu tanpa slash di depan/belakang, mis. "admin"
	AdminPrefix string

	DBDriver    string
	AutoMigrate bool
	RunSeeds    bool

	// 0 = verifikasi aktif tidak pernah kedaluwarsa otomatis
	VerificationTTL           time.Duration
	VerificationSweepInterval time.Duration
	VerificationSweepBatch    int
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env not found, using system ENV")
		} else {
			log.Println("✅ .env loaded")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	AppBaseURL = strings.TrimRight(GetEnv("APP_BASE_URL", "http://localhost:3000"), "/")
	AdminPrefix = NormalizePrefix(GetEnv("ADMIN_PREFIX", "admin"))

	DBDriver = strings.ToLower(GetEnv("DB_DRIVER", "postgres"))
	AutoMigrate = GetEnvBool("DB_AUTO_MIGRATE", false)
	RunSeeds = GetEnvBool("RUN_SEEDS", false)

	VerificationTTL = time.Duration(GetEnvInt("VERIFICATION_TTL_HOURS", 0)) * time.Hour
	VerificationSweepInterval = GetEnvDuration("VERIFICATION_SWEEP_INTERVAL", time.Hour)
	VerificationSweepBatch = GetEnvInt("VERIFICATION_SWEEP_BATCH", 500)

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	} else {
		log.Println("✅ JWT_SECRET loaded.")
	}
	if VerificationTTL > 0 {
		log.Printf("[INFO] verification TTL=%s sweep=%s", VerificationTTL, VerificationSweepInterval)
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvInt(key string, def int) int {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s=%q is not an integer, fallback %d", key, v, def)
		return def
	}
	return n
}

func GetEnvBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// GetEnvDuration menerima format time.ParseDuration ("90s", "1h").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("⚠️ %s=%q is not a valid duration, fallback %s", key, v, def)
		return def
	}
	return d
}

func NormalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "admin"
	}
	return p
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Warn
	if GetEnvBool("DB_LOG_QUERIES", false) {
		level = gormLogger.Info
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && !errors.Is(err, gormLogger.ErrRecordNotFound):
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
