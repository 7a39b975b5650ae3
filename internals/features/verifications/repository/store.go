// file: internals/features/verifications/repository/store.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	model "compsphere_backend/internals/features/verifications/model"
	"compsphere_backend/internals/features/verifications/token"
)

// Record is implemented by every verification variant model (pointer receiver).
type Record interface {
	schema.Tabler
	Core() *model.VerificationCore
	SubjectColumns() map[string]any
	Variant() string
}

// Store persists one verification variant. T is the model struct, PT its pointer.
type Store[T any, PT interface {
	*T
	Record
}] struct {
	DB        *gorm.DB
	Generator *token.Generator

	inTx bool
}

type (
	TeamActivityStore      = Store[model.TeamActivityVerification, *model.TeamActivityVerification]
	EventRegistrationStore = Store[model.EventRegistrationVerification, *model.EventRegistrationVerification]
)

func NewStore[T any, PT interface {
	*T
	Record
}](db *gorm.DB, gen *token.Generator) *Store[T, PT] {
	if gen == nil {
		gen = token.NewGenerator()
	}
	return &Store[T, PT]{DB: db, Generator: gen}
}

func NewTeamActivityStore(db *gorm.DB, gen *token.Generator) *TeamActivityStore {
	return NewStore[model.TeamActivityVerification, *model.TeamActivityVerification](db, gen)
}

func NewEventRegistrationStore(db *gorm.DB, gen *token.Generator) *EventRegistrationStore {
	return NewStore[model.EventRegistrationVerification, *model.EventRegistrationVerification](db, gen)
}

// WithTx returns a copy bound to tx (dipakai di dalam DB.Transaction).
func (s *Store[T, PT]) WithTx(tx *gorm.DB) *Store[T, PT] {
	return &Store[T, PT]{DB: tx, Generator: s.Generator, inTx: true}
}

func (s *Store[T, PT]) Variant() string { return PT(new(T)).Variant() }

func (s *Store[T, PT]) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

func (s *Store[T, PT]) model() PT { return PT(new(T)) }

func (s *Store[T, PT]) findErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("query %s verification: %w", s.Variant(), err)
}

/* =========================
   Reads
   ========================= */

func (s *Store[T, PT]) TokenExists(ctx context.Context, tok string) (bool, error) {
	var n int64
	if err := s.db(ctx).Model(s.model()).
		Where("verification_token = ?", tok).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store[T, PT]) FindByToken(ctx context.Context, tok string) (PT, error) {
	rec := s.model()
	if err := s.db(ctx).Where("verification_token = ?", tok).Take(rec).Error; err != nil {
		return nil, s.findErr(err)
	}
	return rec, nil
}

func (s *Store[T, PT]) FindActiveBySubject(ctx context.Context, subject PT) (PT, error) {
	rec := s.model()
	if err := s.db(ctx).
		Where(subject.SubjectColumns()).
		Where("status = ?", string(model.StatusActive)).
		Take(rec).Error; err != nil {
		return nil, s.findErr(err)
	}
	return rec, nil
}

// FindLatestBySubject returns the newest record of any status.
func (s *Store[T, PT]) FindLatestBySubject(ctx context.Context, subject PT) (PT, error) {
	rec := s.model()
	if err := s.db(ctx).
		Where(subject.SubjectColumns()).
		Order("created_at DESC").
		First(rec).Error; err != nil {
		return nil, s.findErr(err)
	}
	return rec, nil
}

// IsActive is read-only; "tidak ada" dan "bukan active" sama-sama false.
func (s *Store[T, PT]) IsActive(ctx context.Context, tok string) (bool, error) {
	var n int64
	if err := s.db(ctx).Model(s.model()).
		Where("verification_token = ? AND status = ?", tok, string(model.StatusActive)).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("check %s verification: %w", s.Variant(), err)
	}
	return n > 0, nil
}

type ListFilter struct {
	Subject map[string]any
	Status  model.VerificationStatus
	Scopes  []func(*gorm.DB) *gorm.DB
	Offset  int
	Limit   int
}

func (s *Store[T, PT]) List(ctx context.Context, f ListFilter) ([]T, int64, error) {
	q := s.db(ctx).Model(s.model())
	if len(f.Subject) > 0 {
		q = q.Where(f.Subject)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if len(f.Scopes) > 0 {
		q = q.Scopes(f.Scopes...)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s verifications: %w", s.Variant(), err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	rows := make([]T, 0, limit)
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s verifications: %w", s.Variant(), err)
	}
	return rows, total, nil
}

/* =========================
   Writes
   ========================= */

// Create inserts subject as a fresh active record with a new token.
// subject diisi in-place dan dikembalikan.
func (s *Store[T, PT]) Create(ctx context.Context, subject PT) (PT, error) {
	tok, err := s.Generator.Generate(ctx, s.TokenExists)
	if err != nil {
		return nil, err
	}

	core := subject.Core()
	*core = model.VerificationCore{
		VerificationToken: tok,
		Status:            model.StatusActive,
	}

	if err := s.insert(ctx, subject); err != nil {
		if !isDuplicateKey(err) {
			return nil, fmt.Errorf("create %s verification: %w", s.Variant(), err)
		}
		_, ferr := s.FindActiveBySubject(ctx, subject)
		switch {
		case ferr == nil:
			return nil, ErrDuplicateActiveSubject
		case errors.Is(ferr, ErrNotFound):
			return nil, ErrTokenCollision
		default:
			return nil, fmt.Errorf("create %s verification: %w", s.Variant(), err)
		}
	}
	return subject, nil
}

const createSavepoint = "verification_create"

// insert: di dalam transaksi INSERT dibungkus savepoint. Unique violation di Postgres
// membatalkan transaksi; setelah RollbackTo, query berikutnya di tx yang sama tetap jalan.
func (s *Store[T, PT]) insert(ctx context.Context, subject PT) error {
	db := s.db(ctx)
	if !s.inTx {
		return db.Create(subject).Error
	}
	if err := db.SavePoint(createSavepoint).Error; err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	err := db.Create(subject).Error
	if err == nil {
		return nil
	}
	if rerr := db.RollbackTo(createSavepoint).Error; rerr != nil {
		return fmt.Errorf("rollback to savepoint: %v (insert: %w)", rerr, err)
	}
	return err
}

// Consume is the only active → used transition. It is a single conditional UPDATE so two
// concurrent calls on one token cannot both succeed; zero affected rows means the token is
// unknown (ErrNotFound) or no longer active (ErrAlreadyConsumed, record returned as-is).
func (s *Store[T, PT]) Consume(ctx context.Context, tok string, actor uuid.UUID, at time.Time, meta datatypes.JSONMap) (PT, error) {
	updates := map[string]any{
		"status":      string(model.StatusUsed),
		"verified_at": at,
		"verified_by": actor,
		"updated_at":  at,
	}
	if len(meta) > 0 {
		updates["verified_meta"] = meta
	}

	res := s.db(ctx).Model(s.model()).
		Where("verification_token = ? AND status = ?", tok, string(model.StatusActive)).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("consume %s verification: %w", s.Variant(), res.Error)
	}

	rec, err := s.FindByToken(ctx, tok)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return rec, ErrAlreadyConsumed
	}
	return rec, nil
}

func (s *Store[T, PT]) expire(q *gorm.DB, at time.Time) (int64, error) {
	res := q.Model(s.model()).
		Where("status = ?", string(model.StatusActive)).
		Updates(map[string]any{
			"status":     string(model.StatusExpired),
			"updated_at": at,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("expire %s verification: %w", s.Variant(), res.Error)
	}
	return res.RowsAffected, nil
}

// ExpireActiveBySubject supersedes the subject's active record (regenerate).
func (s *Store[T, PT]) ExpireActiveBySubject(ctx context.Context, subject PT, at time.Time) (int64, error) {
	return s.expire(s.db(ctx).Where(subject.SubjectColumns()), at)
}

// ExpireIssuedBefore expires at most limit active records created before cutoff.
func (s *Store[T, PT]) ExpireIssuedBefore(ctx context.Context, cutoff time.Time, limit int, at time.Time) (int64, error) {
	if limit <= 0 {
		limit = 500
	}
	var ids []uuid.UUID
	if err := s.db(ctx).Model(s.model()).
		Where("status = ? AND created_at < ?", string(model.StatusActive), cutoff).
		Order("created_at").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("select stale %s verifications: %w", s.Variant(), err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.expire(s.db(ctx).Where("id IN ?", ids), at)
}
